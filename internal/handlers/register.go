package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/services"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, email, password string) (string, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// Message
	// default: Successfully registered.
	Message string `json:"message"`

	// Auth token
	AuthToken string `json:"auth_token"`
}

// RegisterErrorResponse represents an error response for registration
// swagger:model RegisterErrorResponse
type RegisterErrorResponse struct {
	// Status
	// default: fail
	Status string `json:"status"`

	// Message
	// default: Sorry. That user already exists.
	Message string `json:"message"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account with unique username and email and returns an auth token.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.RegisterResponse "User successfully registered"
// @Failure 400 {object} handlers.RegisterErrorResponse "Invalid payload or user already exists"
// @Failure 500 {object} handlers.RegisterErrorResponse "Internal server error"
// @Router /auth/register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(RegisterErrorResponse{
				Status:  "fail",
				Message: "Invalid payload.",
			})
			return
		}

		token, err := svc.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidPayload):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(RegisterErrorResponse{
					Status:  "fail",
					Message: "Invalid payload.",
				})
			case errors.Is(err, services.ErrUserAlreadyExists):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(RegisterErrorResponse{
					Status:  "fail",
					Message: "Sorry. That user already exists.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(RegisterErrorResponse{
					Status:  "fail",
					Message: "Try again.",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(RegisterResponse{
			Status:    "success",
			Message:   "Successfully registered.",
			AuthToken: token,
		})
	}
}
