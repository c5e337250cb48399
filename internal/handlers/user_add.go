package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/services"
)

// UserCreator defines the interface that the user service must implement.
type UserCreator interface {
	Create(ctx context.Context, username, email, password string) error
}

// AddUserRequest represents the JSON body for adding a user
// swagger:model AddUserRequest
type AddUserRequest struct {
	// Username
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// default: secret123
	Password string `json:"password"`
}

// AddUserResponse represents a successful add-user response
// swagger:model AddUserResponse
type AddUserResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// Message
	// default: john@example.com was added!
	Message string `json:"message"`
}

// AddUserErrorResponse represents an error response for adding a user
// swagger:model AddUserErrorResponse
type AddUserErrorResponse struct {
	// Status
	// default: fail
	Status string `json:"status"`

	// Message
	// default: Sorry. That email already exists.
	Message string `json:"message"`
}

// NewAddUserHandler returns an HTTP handler for adding a user without
// issuing a token. Existence is checked by email only, unlike registration.
// @Summary Add a user
// @Description Creates a user record; the password field is optional
// @Tags users
// @Accept json
// @Produce json
// @Param addUserRequest body handlers.AddUserRequest true "Add user request"
// @Success 201 {object} handlers.AddUserResponse "User added"
// @Failure 400 {object} handlers.AddUserErrorResponse "Invalid payload or duplicate email"
// @Failure 500 {object} handlers.AddUserErrorResponse "Internal server error"
// @Router /users [post]
func NewAddUserHandler(svc UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req AddUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(AddUserErrorResponse{
				Status:  "fail",
				Message: "Invalid payload.",
			})
			return
		}

		if err := svc.Create(r.Context(), req.Username, req.Email, req.Password); err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidPayload):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(AddUserErrorResponse{
					Status:  "fail",
					Message: "Invalid payload.",
				})
			case errors.Is(err, services.ErrEmailAlreadyExists):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(AddUserErrorResponse{
					Status:  "fail",
					Message: "Sorry. That email already exists.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(AddUserErrorResponse{
					Status:  "fail",
					Message: "Try again.",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(AddUserResponse{
			Status:  "success",
			Message: fmt.Sprintf("%s was added!", req.Email),
		})
	}
}
