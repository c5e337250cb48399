package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/models"
	"github.com/sbilibin2017/users-service/internal/services"
)

// UserGetter defines the interface that the user lookup service must implement.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.UserDB, error)
}

// GetUserResponse represents a single-user response
// swagger:model GetUserResponse
type GetUserResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// Public user projection
	Data models.UserJSON `json:"data"`
}

// GetUserErrorResponse represents an error response for a single-user lookup
// swagger:model GetUserErrorResponse
type GetUserErrorResponse struct {
	// Status
	// default: fail
	Status string `json:"status"`

	// Message
	// default: User does not exist
	Message string `json:"message"`
}

// NewGetUserHandler returns an HTTP handler for fetching a single user.
// Non-numeric ids are treated the same as unknown ids.
// @Summary Get user
// @Description Returns the public projection of a single user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} handlers.GetUserResponse "User found"
// @Failure 404 {object} handlers.GetUserErrorResponse "User does not exist"
// @Router /users/{id} [get]
func NewGetUserHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		notFound := func() {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(GetUserErrorResponse{
				Status:  "fail",
				Message: "User does not exist",
			})
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			notFound()
			return
		}

		user, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				notFound()
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(GetUserErrorResponse{
				Status:  "fail",
				Message: "Try again.",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(GetUserResponse{
			Status: "success",
			Data:   user.ToJSON(),
		})
	}
}
