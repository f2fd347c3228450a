package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequestDuration is a no-op.
func (n *NoopRecorder) ObserveRequestDuration(duration time.Duration) {}

// IncAppointmentCreated is a no-op.
func (n *NoopRecorder) IncAppointmentCreated() {}

// IncAppointmentUpdated is a no-op.
func (n *NoopRecorder) IncAppointmentUpdated() {}

// IncAppointmentDeleted is a no-op.
func (n *NoopRecorder) IncAppointmentDeleted() {}

// IncAppointmentConflict is a no-op.
func (n *NoopRecorder) IncAppointmentConflict() {}

// IncPlaceCreated is a no-op.
func (n *NoopRecorder) IncPlaceCreated() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// AddSessionsExpired is a no-op.
func (n *NoopRecorder) AddSessionsExpired(count int) {}
