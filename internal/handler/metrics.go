package handler

import (
	"fmt"
	"net/http"

	"github.com/agendacitas/agenda/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "agenda_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "agenda_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)

	writeMetric(w, "agenda_appointments_created_total %d\n", snap.AppointmentsCreated)
	writeMetric(w, "agenda_appointments_updated_total %d\n", snap.AppointmentsUpdated)
	writeMetric(w, "agenda_appointments_deleted_total %d\n", snap.AppointmentsDeleted)
	writeMetric(w, "agenda_appointment_conflicts_total %d\n", snap.AppointmentConflicts)
	writeMetric(w, "agenda_places_created_total %d\n", snap.PlacesCreated)

	writeMetric(w, "agenda_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "agenda_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "agenda_logins_total{status=\"throttled\"} %d\n", snap.LoginsThrottled)

	writeMetric(w, "agenda_sessions_expired_total %d\n", snap.SessionsExpired)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
