package handler

import (
	"fmt"
	"net/http"

	"github.com/rolodex/rolodex/internal/metrics"
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

	writeMetric(w, "rolodex_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "rolodex_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "rolodex_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "rolodex_token_refreshes_total{status=\"success\"} %d\n", snap.RefreshesSucceeded)
	writeMetric(w, "rolodex_token_refreshes_total{status=\"failed\"} %d\n", snap.RefreshesFailed)
	writeMetric(w, "rolodex_avatars_uploaded_total %d\n", snap.AvatarsUploaded)
	writeMetric(w, "rolodex_auth_duration_seconds_count %d\n", snap.AuthDurationCount)
	writeMetric(w, "rolodex_auth_duration_seconds_sum %.6f\n", float64(snap.AuthDurationTotalNs)/1e9)

	writeMetric(w, "rolodex_contacts_created_total %d\n", snap.ContactsCreated)
	writeMetric(w, "rolodex_contacts_updated_total %d\n", snap.ContactsUpdated)
	writeMetric(w, "rolodex_contacts_deleted_total %d\n", snap.ContactsDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
