package services

import (
	"context"
	"errors"
	"time"

	"github.com/sbilibin2017/users-service/internal/jwt"
	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/models"
	"github.com/sbilibin2017/users-service/internal/repositories"
)

// Error variables
var (
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username *string, email *string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, email, passwordHash string) (int64, error)
}

// Tokener defines token operations needed by the auth service.
type Tokener interface {
	Generate(ctx context.Context, userID int64) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// PasswordHasher defines password hashing and verification.
type PasswordHasher interface {
	Hash(ctx context.Context, raw string) (string, error)
	Check(ctx context.Context, raw, hash string) bool
}

// TokenBlocklister stores revoked tokens until their natural expiry.
type TokenBlocklister interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
}

// EventPublisher emits user lifecycle events.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, userID int64, username, email string) error
}

// AuthService handles registration, login and logout.
type AuthService struct {
	reader    UserReader
	writer    UserWriter
	jwt       Tokener
	hasher    PasswordHasher
	blocklist TokenBlocklister
	events    EventPublisher
}

// NewAuthService creates a new AuthService instance. The blocklist and
// events arguments are optional; nil disables logout revocation and event
// publishing respectively.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	jwt Tokener,
	hasher PasswordHasher,
	blocklist TokenBlocklister,
	events EventPublisher,
) *AuthService {
	return &AuthService{
		reader:    reader,
		writer:    writer,
		jwt:       jwt,
		hasher:    hasher,
		blocklist: blocklist,
		events:    events,
	}
}

// Register creates a new user and returns a token for it. Existence is
// checked by username OR email; a concurrent insert racing past that check
// is caught via the unique constraint and reported the same way.
func (svc *AuthService) Register(ctx context.Context, username, email, password string) (string, error) {
	if username == "" || email == "" || password == "" {
		return "", ErrInvalidPayload
	}

	user, err := svc.reader.GetByUsernameOrEmail(ctx, &username, &email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return "", err
	}
	if user != nil {
		logger.Log.Infow("user already exists", "username", username, "email", email)
		return "", ErrUserAlreadyExists
	}

	passwordHash, err := svc.hasher.Hash(ctx, password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return "", err
	}

	id, err := svc.writer.Save(ctx, username, email, passwordHash)
	if err != nil {
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return "", ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return "", err
	}

	token, err := svc.jwt.Generate(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", err
	}

	if svc.events != nil {
		if err := svc.events.PublishUserRegistered(ctx, id, username, email); err != nil {
			// Event delivery must not fail the registration.
			logger.Log.Errorw("failed to publish registration event", "err", err)
		}
	}

	return token, nil
}

// Login authenticates a user by email and returns a freshly minted token.
func (svc *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidPayload
	}

	user, err := svc.reader.GetByUsernameOrEmail(ctx, nil, &email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Infow("user does not exist", "email", email)
		return "", ErrUserDoesNotExist
	}

	if !svc.hasher.Check(ctx, password, user.PasswordHash) {
		logger.Log.Infow("invalid credentials", "email", email)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", err
	}

	return token, nil
}

// Logout validates the token and revokes it for its remaining lifetime.
// Without a configured blocklist the token stays valid until natural expiry.
func (svc *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := svc.jwt.GetClaims(ctx, tokenString)
	if err != nil {
		return err
	}

	if svc.blocklist != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := svc.blocklist.Add(ctx, tokenString, ttl); err != nil {
			logger.Log.Errorw("failed to blocklist token", "err", err)
			return err
		}
	}

	return nil
}
