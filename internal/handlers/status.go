package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/users-service/internal/middlewares"
	"github.com/sbilibin2017/users-service/internal/models"
)

// StatusResponse represents the authenticated-user status response
// swagger:model StatusResponse
type StatusResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// Message
	// default: Success.
	Message string `json:"message"`

	// Public user projection
	Data models.UserJSON `json:"data"`
}

// StatusErrorResponse represents an error response for the status check
// swagger:model StatusErrorResponse
type StatusErrorResponse struct {
	// Status
	// default: fail
	Status string `json:"status"`

	// Message
	// default: Invalid token. Log in again
	Message string `json:"message"`
}

// NewStatusHandler returns an HTTP handler reporting the authenticated
// user. The route sits behind the auth guard, which resolved the token
// subject and stored the user in the request context.
// @Summary Auth status
// @Description Returns the public projection of the authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.StatusResponse "Authenticated user"
// @Failure 401 {object} handlers.StatusErrorResponse "Token expired or invalid"
// @Failure 403 {object} handlers.StatusErrorResponse "Missing auth header"
// @Router /auth/status [get]
// @Security BearerAuth
func NewStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		user := middlewares.GetUserFromContext(r.Context())
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(StatusErrorResponse{
				Status:  "fail",
				Message: "Invalid token. Log in again",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(StatusResponse{
			Status:  "success",
			Message: "Success.",
			Data:    user.ToJSON(),
		})
	}
}
