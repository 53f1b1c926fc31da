package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/splitex/internal/migrations"
	"github.com/magabrotheeeer/splitex/internal/models"
)

// setupTestDB поднимает PostgreSQL в контейнере и накатывает миграции.
func setupTestDB(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	storage, err := New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	return storage
}

// createTestUser сохраняет пользователя с заданным username.
func createTestUser(t *testing.T, s *Storage, username string) models.User {
	t.Helper()
	u := models.User{
		Email:        username + "@example.com",
		Username:     username,
		Name:         username,
		PasswordHash: "hash",
		IPAddress:    models.DefaultIPAddress,
	}
	id, err := s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	u.ID = id
	return u
}

func mustExpense(t *testing.T, s *Storage, id uuid.UUID) *models.Expense {
	t.Helper()
	e, err := s.Expense(context.Background(), id)
	require.NoError(t, err)
	return e
}
