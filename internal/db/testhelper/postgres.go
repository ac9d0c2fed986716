// Package testhelper starts throwaway containers for integration tests.
package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hackgods/carepulse-appointments/internal/db"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// SetupPostgres starts one migrated PostgreSQL container per test binary and
// returns a fresh pool to it. The pool is closed via t.Cleanup.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pgOnce.Do(func() {
		pgDSN, pgErr = startPostgres()
	})
	if pgErr != nil {
		t.Fatalf("testhelper: setup postgres: %v", pgErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, pgDSN)
	if err != nil {
		t.Fatalf("testhelper: connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "carepulse",
				"POSTGRES_PASSWORD": "carepulse",
				"POSTGRES_DB":       "carepulse",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://carepulse:carepulse@%s:%s/carepulse?sslmode=disable", host, port.Port())

	if _, err := db.Migrate(ctx, dsn); err != nil {
		return "", err
	}
	return dsn, nil
}
