package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/users-service/internal/jwt"
	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/middlewares"
)

// Logouter defines the interface that the logout service must implement.
type Logouter interface {
	Logout(ctx context.Context, tokenString string) error
}

// LogoutResponse represents a successful logout response
// swagger:model LogoutResponse
type LogoutResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// Message
	// default: Successfully logged out.
	Message string `json:"message"`
}

// LogoutErrorResponse represents an error response for logout
// swagger:model LogoutErrorResponse
type LogoutErrorResponse struct {
	// Status
	// default: fail
	Status string `json:"status"`

	// Message
	// default: Provide a valid auth token.
	Message string `json:"message"`
}

// NewLogoutHandler returns an HTTP handler for logout. The route sits
// behind the auth guard, which has already validated the token and stored
// it in the request context; the service revokes it for its remaining
// lifetime.
// @Summary User logout
// @Description Revokes the presented auth token
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.LogoutResponse "Successfully logged out"
// @Failure 401 {object} handlers.LogoutErrorResponse "Token expired or invalid"
// @Failure 403 {object} handlers.LogoutErrorResponse "Missing auth header"
// @Router /auth/logout [get]
// @Security BearerAuth
func NewLogoutHandler(svc Logouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()

		tokenString := middlewares.GetTokenFromContext(ctx)

		if err := svc.Logout(ctx, tokenString); err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(LogoutErrorResponse{
					Status:  "fail",
					Message: "Signature expired. Log in again",
				})
			case errors.Is(err, jwt.ErrTokenInvalid):
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(LogoutErrorResponse{
					Status:  "fail",
					Message: "Invalid token. Log in again",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(LogoutErrorResponse{
					Status:  "fail",
					Message: "Try again.",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(LogoutResponse{
			Status:  "success",
			Message: "Successfully logged out.",
		})
	}
}
