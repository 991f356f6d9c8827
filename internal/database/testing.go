package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/keiba-advisor/internal/config"
)

// TestDSNEnv names the variable holding the config file of an integration database
const TestDSNEnv = "KEIBA_ADVISOR_TEST_CONFIG"

// SetupTestDB connects to the integration database, skipping the test when none is configured
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestDSNEnv)
	if path == "" {
		t.Skipf("integration database not configured, set %s", TestDSNEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Initialize(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}

	if _, err := db.GetPool().Exec(ctx, "TRUNCATE recommendations, purchase_history"); err != nil {
		t.Fatalf("failed to reset test database: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
