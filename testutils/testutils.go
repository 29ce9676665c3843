// Package testutils holds helpers shared by tests that need a live MongoDB.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"atomichabits/config"
	"atomichabits/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
)

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// SetupTestDB connects to TEST_MONGO_URI and returns a client together with
// a database config pointing at a throwaway database. The test is skipped
// when TEST_MONGO_URI is unset. The database is dropped on cleanup.
func SetupTestDB(t *testing.T) (*mongo.Client, config.DatabaseConfig) {
	t.Helper()

	if root := findProjectRoot(); root != "" {
		_ = godotenv.Load(filepath.Join(root, ".env"))
	}

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	cfg := config.LoadDatabaseConfig()
	cfg.URI = uri
	cfg.MinPoolSize = 0
	cfg.DatabaseName = "atomichabits_test_" + uuid.NewString()[:8]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := repository.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := repository.SetupIndexes(ctx, client.Database(cfg.DatabaseName), cfg); err != nil {
		t.Fatalf("failed to set up indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Database(cfg.DatabaseName).Drop(ctx); err != nil {
			t.Logf("failed to drop test database %s: %v", cfg.DatabaseName, err)
		}
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("failed to disconnect: %v", err)
		}
	})

	return client, cfg
}
