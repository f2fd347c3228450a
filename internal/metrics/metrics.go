// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// HTTP metrics
	ObserveRequestDuration(duration time.Duration)

	// Appointment metrics
	IncAppointmentCreated()
	IncAppointmentUpdated()
	IncAppointmentDeleted()
	IncAppointmentConflict()

	// Catalog metrics
	IncPlaceCreated()

	// Session metrics
	IncLogin(status string) // status: "success", "failed" or "throttled"
	AddSessionsExpired(n int)
}

// Login outcomes accepted by IncLogin.
const (
	LoginSuccess   = "success"
	LoginFailed    = "failed"
	LoginThrottled = "throttled"
)

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
