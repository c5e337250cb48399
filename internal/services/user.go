package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/models"
	"github.com/sbilibin2017/users-service/internal/repositories"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// UserLister defines listing and lookup operations for users.
type UserLister interface {
	GetByUsernameOrEmail(ctx context.Context, username *string, email *string) (*models.UserDB, error)
	GetByID(ctx context.Context, id int64) (*models.UserDB, error)
	List(ctx context.Context) ([]models.UserDB, error)
}

// UserService handles the plain user CRUD surface.
type UserService struct {
	reader UserLister
	writer UserWriter
	hasher PasswordHasher
}

// NewUserService creates a new UserService instance.
func NewUserService(reader UserLister, writer UserWriter, hasher PasswordHasher) *UserService {
	return &UserService{
		reader: reader,
		writer: writer,
		hasher: hasher,
	}
}

// Create adds a user without issuing a token. Unlike registration, the
// existence check is by email only; username collisions are still caught by
// the unique constraint.
func (svc *UserService) Create(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" {
		return ErrInvalidPayload
	}

	user, err := svc.reader.GetByUsernameOrEmail(ctx, nil, &email)
	if err != nil {
		logger.Log.Errorw("failed to check email exists", "err", err)
		return err
	}
	if user != nil {
		logger.Log.Infow("email already exists", "email", email)
		return ErrEmailAlreadyExists
	}

	passwordHash, err := svc.hasher.Hash(ctx, password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if _, err := svc.writer.Save(ctx, username, email, passwordHash); err != nil {
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return ErrEmailAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	return nil
}

// GetByID returns the user with the given id.
func (svc *UserService) GetByID(ctx context.Context, id int64) (*models.UserDB, error) {
	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get user", "id", id, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List returns all users in insertion order.
func (svc *UserService) List(ctx context.Context) ([]models.UserDB, error) {
	users, err := svc.reader.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	return users, nil
}
