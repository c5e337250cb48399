package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/services"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// Message
	// default: Successfully logged in.
	Message string `json:"message"`

	// Auth token
	AuthToken string `json:"auth_token"`
}

// LoginErrorResponse represents an error response for login
// swagger:model LoginErrorResponse
type LoginErrorResponse struct {
	// Status
	// default: fail
	Status string `json:"status"`

	// Message
	// default: User does not exist.
	Message string `json:"message"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticate a user by email and password and return an auth token
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login request"
// @Success 200 {object} handlers.LoginResponse "Auth token returned"
// @Failure 400 {object} handlers.LoginErrorResponse "Invalid payload"
// @Failure 401 {object} handlers.LoginErrorResponse "Invalid email or password"
// @Failure 404 {object} handlers.LoginErrorResponse "User does not exist"
// @Failure 500 {object} handlers.LoginErrorResponse "Internal server error"
// @Router /auth/login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(LoginErrorResponse{
				Status:  "fail",
				Message: "Invalid payload.",
			})
			return
		}

		token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidPayload):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(LoginErrorResponse{
					Status:  "fail",
					Message: "Invalid payload.",
				})
			case errors.Is(err, services.ErrUserDoesNotExist):
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(LoginErrorResponse{
					Status:  "fail",
					Message: "User does not exist.",
				})
			case errors.Is(err, services.ErrInvalidCredentials):
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(LoginErrorResponse{
					Status:  "fail",
					Message: "Invalid email or password.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(LoginErrorResponse{
					Status:  "fail",
					Message: "Try again.",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(LoginResponse{
			Status:    "success",
			Message:   "Successfully logged in.",
			AuthToken: token,
		})
	}
}
