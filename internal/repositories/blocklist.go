package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/users-service/internal/logger"
)

// blocklistKeyPrefix namespaces revoked tokens in redis.
const blocklistKeyPrefix = "auth:blocklist:"

// TokenBlocklistRepository stores revoked tokens in redis until their
// natural expiry. Logged-out tokens live here so the guard can reject them
// before they expire on their own.
type TokenBlocklistRepository struct {
	client *redis.Client
}

func NewTokenBlocklistRepository(client *redis.Client) *TokenBlocklistRepository {
	return &TokenBlocklistRepository{client: client}
}

// Add puts a token on the block list for the given TTL. A non-positive TTL
// means the token already expired and there is nothing to store.
func (r *TokenBlocklistRepository) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	err := r.client.Set(ctx, blocklistKeyPrefix+token, "revoked", ttl).Err()

	logger.Log.Infow(
		"op", "blocklist.add",
		"ttl", ttl,
		"error", err,
	)

	return err
}

// Contains reports whether a token has been revoked.
func (r *TokenBlocklistRepository) Contains(ctx context.Context, token string) (bool, error) {
	err := r.client.Get(ctx, blocklistKeyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
