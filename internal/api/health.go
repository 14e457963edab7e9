package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthTimeout = 5 * time.Second

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string `json:"status"`
	ServiceName string `json:"service_name"`
}

// HandleHealth reports UP when the store answers a probe query and DOWN
// with 503 otherwise.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health probe failed", zap.Error(err))
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "DOWN", ServiceName: ServiceName})
		return
	}
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "UP", ServiceName: ServiceName})
}
