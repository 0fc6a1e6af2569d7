package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/decisiontrace/decisiontrace/internal/config"
	"github.com/decisiontrace/decisiontrace/internal/pkg/database"
)

// getTestDB returns a database connection for integration tests.
// Returns nil if the database is not available (skips tests).
func getTestDB(t *testing.T) *database.PostgresDB {
	// Check if we're running integration tests
	if os.Getenv("POSTGRES_TEST_HOST") == "" {
		t.Skip("Skipping integration test: POSTGRES_TEST_HOST not set")
		return nil
	}

	cfg := config.PostgresConfig{
		Host:     os.Getenv("POSTGRES_TEST_HOST"),
		Port:     5432,
		User:     os.Getenv("POSTGRES_TEST_USER"),
		Password: os.Getenv("POSTGRES_TEST_PASS"),
		Database: os.Getenv("POSTGRES_TEST_DB"),
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	if cfg.Database == "" {
		cfg.Database = "test_decisiontrace"
	}
	if cfg.User == "" {
		cfg.User = "postgres"
	}

	db, err := database.NewPostgres(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to PostgreSQL: %v", err)
		return nil
	}

	return db
}

// cleanupSessions removes test sessions and their responses
func cleanupSessions(t *testing.T, db *database.PostgresDB, ids ...uuid.UUID) {
	ctx := context.Background()
	for _, id := range ids {
		_, _ = db.Pool.Exec(ctx, "DELETE FROM scenario_responses WHERE session_id = $1", id)
		_, _ = db.Pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	}
}

// cleanupExperiments removes test experiments from the database
func cleanupExperiments(t *testing.T, db *database.PostgresDB, names ...string) {
	ctx := context.Background()
	for _, name := range names {
		_, _ = db.Pool.Exec(ctx, "DELETE FROM experiments WHERE name = $1", name)
	}
}

// cleanupScenarios removes test scenarios from the database
func cleanupScenarios(t *testing.T, db *database.PostgresDB, titles ...string) {
	ctx := context.Background()
	for _, title := range titles {
		_, _ = db.Pool.Exec(ctx, "DELETE FROM scenarios WHERE title = $1", title)
	}
}
