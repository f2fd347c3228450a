package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RequestDurationCount   uint64
	RequestDurationTotalNs int64
	AppointmentsCreated    uint64
	AppointmentsUpdated    uint64
	AppointmentsDeleted    uint64
	AppointmentConflicts   uint64
	PlacesCreated          uint64
	LoginsSucceeded        uint64
	LoginsFailed           uint64
	LoginsThrottled        uint64
	SessionsExpired        uint64
}

// InMemoryRecorder keeps counters in process memory. It backs /metrics
// and is used by tests to assert recorded events.
type InMemoryRecorder struct {
	requestDurationCount   uint64
	requestDurationTotalNs int64
	appointmentsCreated    uint64
	appointmentsUpdated    uint64
	appointmentsDeleted    uint64
	appointmentConflicts   uint64
	placesCreated          uint64
	loginsSucceeded        uint64
	loginsFailed           uint64
	loginsThrottled        uint64
	sessionsExpired        uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RequestDurationCount:   atomic.LoadUint64(&m.requestDurationCount),
		RequestDurationTotalNs: atomic.LoadInt64(&m.requestDurationTotalNs),
		AppointmentsCreated:    atomic.LoadUint64(&m.appointmentsCreated),
		AppointmentsUpdated:    atomic.LoadUint64(&m.appointmentsUpdated),
		AppointmentsDeleted:    atomic.LoadUint64(&m.appointmentsDeleted),
		AppointmentConflicts:   atomic.LoadUint64(&m.appointmentConflicts),
		PlacesCreated:          atomic.LoadUint64(&m.placesCreated),
		LoginsSucceeded:        atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:           atomic.LoadUint64(&m.loginsFailed),
		LoginsThrottled:        atomic.LoadUint64(&m.loginsThrottled),
		SessionsExpired:        atomic.LoadUint64(&m.sessionsExpired),
	}
}

// ObserveRequestDuration records request duration.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	atomic.AddUint64(&m.requestDurationCount, 1)
	atomic.AddInt64(&m.requestDurationTotalNs, duration.Nanoseconds())
}

// IncAppointmentCreated increments the appointment created counter.
func (m *InMemoryRecorder) IncAppointmentCreated() {
	atomic.AddUint64(&m.appointmentsCreated, 1)
}

// IncAppointmentUpdated increments the appointment updated counter.
func (m *InMemoryRecorder) IncAppointmentUpdated() {
	atomic.AddUint64(&m.appointmentsUpdated, 1)
}

// IncAppointmentDeleted increments the appointment deleted counter.
func (m *InMemoryRecorder) IncAppointmentDeleted() {
	atomic.AddUint64(&m.appointmentsDeleted, 1)
}

// IncAppointmentConflict increments the rejected double-booking counter.
func (m *InMemoryRecorder) IncAppointmentConflict() {
	atomic.AddUint64(&m.appointmentConflicts, 1)
}

// IncPlaceCreated increments the place created counter.
func (m *InMemoryRecorder) IncPlaceCreated() {
	atomic.AddUint64(&m.placesCreated, 1)
}

// IncLogin increments the counter for the given outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	switch status {
	case LoginSuccess:
		atomic.AddUint64(&m.loginsSucceeded, 1)
	case LoginFailed:
		atomic.AddUint64(&m.loginsFailed, 1)
	case LoginThrottled:
		atomic.AddUint64(&m.loginsThrottled, 1)
	}
}

// AddSessionsExpired adds n swept sessions.
func (m *InMemoryRecorder) AddSessionsExpired(n int) {
	if n > 0 {
		atomic.AddUint64(&m.sessionsExpired, uint64(n))
	}
}
