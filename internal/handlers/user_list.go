package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/models"
)

// UserListerSvc defines the interface that the user listing service must implement.
type UserListerSvc interface {
	List(ctx context.Context) ([]models.UserDB, error)
}

// ListUsersData wraps the user collection
// swagger:model ListUsersData
type ListUsersData struct {
	Users []models.UserJSON `json:"users"`
}

// ListUsersResponse represents the all-users response
// swagger:model ListUsersResponse
type ListUsersResponse struct {
	// Status
	// default: success
	Status string `json:"status"`

	// User collection in insertion order
	Data ListUsersData `json:"data"`
}

// ListUsersErrorResponse represents an error response for the user listing
// swagger:model ListUsersErrorResponse
type ListUsersErrorResponse struct {
	// Status
	// default: fail
	Status string `json:"status"`

	// Message
	// default: Try again.
	Message string `json:"message"`
}

// NewListUsersHandler returns an HTTP handler listing all users in
// ascending id order, password hashes excluded.
// @Summary List users
// @Description Returns all users in insertion order
// @Tags users
// @Produce json
// @Success 200 {object} handlers.ListUsersResponse "All users"
// @Failure 500 {object} handlers.ListUsersErrorResponse "Internal server error"
// @Router /users [get]
func NewListUsersHandler(svc UserListerSvc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		users, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(ListUsersErrorResponse{
				Status:  "fail",
				Message: "Try again.",
			})
			return
		}

		projections := make([]models.UserJSON, 0, len(users))
		for i := range users {
			projections = append(projections, users[i].ToJSON())
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ListUsersResponse{
			Status: "success",
			Data:   ListUsersData{Users: projections},
		})
	}
}
