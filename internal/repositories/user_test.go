package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupUserPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(128) NOT NULL UNIQUE,
		email VARCHAR(128) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_date TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	repo := NewUserWriteRepository(db, nil)
	ctx := context.Background()

	id, err := repo.Save(ctx, "alice", "alice@example.com", "hashedpw")
	assert.NoError(t, err)
	assert.Positive(t, id)

	var user struct {
		Username     string `db:"username"`
		Email        string `db:"email"`
		PasswordHash string `db:"password_hash"`
		Active       bool   `db:"active"`
	}
	err = db.Get(&user, "SELECT username, email, password_hash, active FROM users WHERE id=$1", id)
	assert.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hashedpw", user.PasswordHash)
	assert.True(t, user.Active)
}

func TestUserWriteRepository_Save_UniqueViolation(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	repo := NewUserWriteRepository(db, nil)
	ctx := context.Background()

	_, err := repo.Save(ctx, "bob", "bob@example.com", "hashedpw")
	assert.NoError(t, err)

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := repo.Save(ctx, "robert", "bob@example.com", "hashedpw")
		assert.ErrorIs(t, err, ErrUniqueViolation)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := repo.Save(ctx, "bob", "other@example.com", "hashedpw")
		assert.ErrorIs(t, err, ErrUniqueViolation)
	})
}

func TestUserWriteRepository_Save_UsesContextTransaction(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	ctx := context.Background()

	tx, err := db.Beginx()
	assert.NoError(t, err)

	txGetter := func(context.Context) *sqlx.Tx { return tx }
	repo := NewUserWriteRepository(db, txGetter)

	_, err = repo.Save(ctx, "ghost", "ghost@example.com", "hashedpw")
	assert.NoError(t, err)

	assert.NoError(t, tx.Rollback())

	var count int
	err = db.Get(&count, "SELECT COUNT(*) FROM users WHERE username=$1", "ghost")
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func TestUserReadRepository_GetByUsernameOrEmail(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	writeRepo.Save(ctx, "charlie", "charlie@example.com", "secret")
	writeRepo.Save(ctx, "dave", "dave@example.com", "secret2")

	t.Run("ByUsername", func(t *testing.T) {
		username := "charlie"
		user, err := readRepo.GetByUsernameOrEmail(ctx, &username, nil)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "charlie", user.Username)
	})

	t.Run("ByEmail", func(t *testing.T) {
		email := "dave@example.com"
		user, err := readRepo.GetByUsernameOrEmail(ctx, nil, &email)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "dave", user.Username)
	})

	t.Run("EitherSideMatches", func(t *testing.T) {
		username := "charlie"
		email := "nosuch@example.com"
		user, err := readRepo.GetByUsernameOrEmail(ctx, &username, &email)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "charlie", user.Username)
	})

	t.Run("NotFound", func(t *testing.T) {
		username := "nonexistent"
		user, err := readRepo.GetByUsernameOrEmail(ctx, &username, nil)
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUserReadRepository_GetByID(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	id, err := writeRepo.Save(ctx, "erin", "erin@example.com", "secret")
	assert.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		user, err := readRepo.GetByID(ctx, id)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "erin", user.Username)
		assert.Equal(t, "erin@example.com", user.Email)
		assert.True(t, user.Active)
		assert.False(t, user.CreatedDate.IsZero())
	})

	t.Run("NotFound", func(t *testing.T) {
		user, err := readRepo.GetByID(ctx, id+1000)
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUserReadRepository_List(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		users, err := readRepo.List(ctx)
		assert.NoError(t, err)
		assert.Empty(t, users)
	})

	writeRepo.Save(ctx, "frank", "frank@example.com", "secret")
	writeRepo.Save(ctx, "grace", "grace@example.com", "secret")
	writeRepo.Save(ctx, "heidi", "heidi@example.com", "secret")

	t.Run("InsertionOrder", func(t *testing.T) {
		users, err := readRepo.List(ctx)
		assert.NoError(t, err)
		assert.Len(t, users, 3)
		assert.Equal(t, "frank", users[0].Username)
		assert.Equal(t, "grace", users[1].Username)
		assert.Equal(t, "heidi", users[2].Username)
	})
}
