//go:build integration

// Package containers starts throwaway backing services for integration
// tests.
package containers

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"sanctionwatch/internal/platform/postgres"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// NewPostgresDB starts a shared PostgreSQL container (once per test
// run), applies the embedded migrations, and returns a connection to
// it. The connection is closed via t.Cleanup; the container lives
// until the process exits and is reaped by Ryuk.
func NewPostgresDB(t *testing.T) *sql.DB {
	t.Helper()

	pgOnce.Do(func() {
		pgDSN, pgErr = startPostgres()
	})
	if pgErr != nil {
		t.Fatalf("failed to start postgres container: %v", pgErr)
	}

	db, err := postgres.Open(pgDSN)
	if err != nil {
		t.Fatalf("failed to connect to postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("sanctionwatch_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		tcpostgres.BasicWaitStrategies(),
		tcpostgres.WithSQLDriver("postgres"),
	)
	if err != nil {
		return "", err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", err
	}

	db, err := postgres.Open(dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()
	if err := postgres.Migrate(db); err != nil {
		return "", err
	}
	return dsn, nil
}
