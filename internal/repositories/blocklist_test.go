package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "6379")

	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port.Int()),
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	teardown := func() {
		client.Close()
		container.Terminate(context.Background())
	}

	return client, teardown
}

func TestTokenBlocklistRepository(t *testing.T) {
	client, teardown := setupRedisContainer(t)
	defer teardown()

	repo := NewTokenBlocklistRepository(client)
	ctx := context.Background()

	t.Run("AddAndContains", func(t *testing.T) {
		err := repo.Add(ctx, "sometoken", time.Minute)
		assert.NoError(t, err)

		revoked, err := repo.Contains(ctx, "sometoken")
		assert.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		revoked, err := repo.Contains(ctx, "neverseen")
		assert.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("NonPositiveTTLIsNoop", func(t *testing.T) {
		err := repo.Add(ctx, "alreadyexpired", 0)
		assert.NoError(t, err)

		revoked, err := repo.Contains(ctx, "alreadyexpired")
		assert.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("EntryExpiresWithTTL", func(t *testing.T) {
		err := repo.Add(ctx, "shortlived", time.Second)
		assert.NoError(t, err)

		revoked, err := repo.Contains(ctx, "shortlived")
		assert.NoError(t, err)
		assert.True(t, revoked)

		time.Sleep(1500 * time.Millisecond)

		revoked, err = repo.Contains(ctx, "shortlived")
		assert.NoError(t, err)
		assert.False(t, revoked)
	})
}
