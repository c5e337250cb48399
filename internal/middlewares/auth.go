package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/users-service/internal/jwt"
	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/models"
)

// Tokener defines the token operations needed by the guard.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetUserID(ctx context.Context, tokenString string) (int64, error)
}

// UserGetter resolves a token subject to a user record.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.UserDB, error)
}

// Blocklister checks whether a token has been revoked.
type Blocklister interface {
	Contains(ctx context.Context, token string) (bool, error)
}

// authErrorResponse is the fail envelope written by the guard.
type authErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	msgProvideValidToken = "Provide a valid auth token."
	msgTokenExpired      = "Signature expired. Log in again"
	msgTokenInvalid      = "Invalid token. Log in again"
)

// AuthMiddleware returns the bearer-token guard shared by all protected
// endpoints. A missing or malformed Authorization header answers 403; an
// expired, revoked or otherwise invalid token answers 401 with a message
// distinguishing expiry from invalidity. On success the resolved user and
// the raw token are stored in the request context.
//
// The blocklist argument is optional; nil skips revocation checks.
func AuthMiddleware(tokener Tokener, users UserGetter, blocklist Blocklister) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				writeAuthError(w, http.StatusForbidden, msgProvideValidToken)
				return
			}

			if blocklist != nil {
				revoked, err := blocklist.Contains(ctx, tokenString)
				if err != nil {
					logger.Log.Errorw("blocklist lookup failed", "err", err)
					writeAuthError(w, http.StatusUnauthorized, msgTokenInvalid)
					return
				}
				if revoked {
					logger.Log.Infow("revoked token rejected")
					writeAuthError(w, http.StatusUnauthorized, msgTokenInvalid)
					return
				}
			}

			userID, err := tokener.GetUserID(ctx, tokenString)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAuthError(w, http.StatusUnauthorized, msgTokenExpired)
				} else {
					writeAuthError(w, http.StatusUnauthorized, msgTokenInvalid)
				}
				return
			}

			user, err := users.GetByID(ctx, userID)
			if err != nil {
				logger.Log.Errorw("failed to resolve token subject", "user_id", userID, "err", err)
				writeAuthError(w, http.StatusUnauthorized, msgTokenInvalid)
				return
			}
			if user == nil {
				logger.Log.Infow("token subject does not exist", "user_id", userID)
				writeAuthError(w, http.StatusUnauthorized, msgTokenInvalid)
				return
			}

			ctx = SetUserToContext(ctx, user)
			ctx = SetTokenToContext(ctx, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(authErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

type userContextKey struct{}
type tokenContextKey struct{}

// SetUserToContext stores the authenticated user in the context.
func SetUserToContext(ctx context.Context, user *models.UserDB) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext returns the authenticated user stored by the guard, or
// nil if the request did not pass through it.
func GetUserFromContext(ctx context.Context) *models.UserDB {
	user, _ := ctx.Value(userContextKey{}).(*models.UserDB)
	return user
}

// SetTokenToContext stores the raw bearer token in the context.
func SetTokenToContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// GetTokenFromContext returns the raw bearer token stored by the guard.
func GetTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}
