package handlers

import (
	"encoding/json"
	"net/http"
)

// PingResponse represents the health-check response
// swagger:model PingResponse
type PingResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// Message
	// default: pong!
	Message string `json:"message"`
}

// NewPingHandler returns an HTTP handler for the health check.
// @Summary Health check
// @Description Sanity-check endpoint
// @Tags users
// @Produce json
// @Success 200 {object} handlers.PingResponse
// @Router /users/ping [get]
func NewPingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(PingResponse{
			Status:  "success",
			Message: "pong!",
		})
	}
}
