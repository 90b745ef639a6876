// Shared test server setup utilities, which simplify the API tests.

package testutil

import (
	"testing"

	"imagedeck/internal/api"
	"imagedeck/internal/config"
	"imagedeck/internal/core"
)

// SetupTestApp builds a core.App wired to an in-memory database and the
// given backend URL, which is usually a MockBackend server.
func SetupTestApp(t *testing.T, backendURL string) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := &config.Config{}
	cfg.Backend.URL = backendURL
	cfg.Backend.TimeoutSeconds = 5
	cfg.Sync.PageSize = 30
	cfg.Cache.Path = t.TempDir()

	app, err := core.NewApp("test", cfg, db)
	if err != nil {
		t.Fatalf("Failed to assemble test app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

// SetupTestServer initializes a full core.App and api.Server for
// integration testing.
func SetupTestServer(t *testing.T, backendURL string) (*api.Server, *core.App) {
	t.Helper()
	app := SetupTestApp(t, backendURL)
	server := api.NewServer(app)
	return server, app
}
