package api

import (
	"net/http"
)

// LivenessChecker reports whether the stream consumer is connected.
type LivenessChecker interface {
	Healthy() bool
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	consumer LivenessChecker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(consumer LivenessChecker) *HealthHandler {
	return &HealthHandler{consumer: consumer}
}

type healthResponse struct {
	Status   string `json:"status"`
	Consumer string `json:"consumer"`
}

// HandleHealth handles GET /healthz. It fails with 503 while the consumer
// cannot reach the brokers.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	if h.consumer == nil || !h.consumer.Healthy() {
		writeError(w, http.StatusServiceUnavailable, "consumer_down", ErrConsumerDown)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Consumer: "up"})
}
