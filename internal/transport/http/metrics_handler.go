package http

import (
	"net/http"

	apierrors "quizreport/internal/errors"
)

// MetricsHandler serves the Prometheus exposition
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter handler. A nil exporter means metrics
// are disabled and the endpoint answers 503.
func NewMetricsHandler(exporter http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		exporter:     exporter,
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE",
			"Metrics are disabled",
			map[string]string{"setting": "telemetry.enable_metrics"},
		))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
