// This test file verifies the configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		// Ensure no config file exists for this test
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if default values are set
		if cfg.Port != 8390 {
			t.Errorf("Expected default port 8390, got %d", cfg.Port)
		}
		if cfg.Backend.URL != "http://127.0.0.1:8000" {
			t.Errorf("Expected default backend url, got '%s'", cfg.Backend.URL)
		}
		if cfg.Sync.PollIntervalMs != 2000 {
			t.Errorf("Expected default poll interval 2000ms, got %d", cfg.Sync.PollIntervalMs)
		}
		if cfg.Viewer.MaxScale != 20.0 {
			t.Errorf("Expected default max scale 20, got %f", cfg.Viewer.MaxScale)
		}
		if cfg.Viewer.SwipeThreshold != 50.0 || cfg.Viewer.EdgeSwipeThreshold != 65.0 {
			t.Errorf("Expected swipe thresholds 50/65, got %f/%f",
				cfg.Viewer.SwipeThreshold, cfg.Viewer.EdgeSwipeThreshold)
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		configContent := `
port: 9999
backend:
  url: "http://192.168.1.20:8000"
database:
  path: "/tmp/test.db"
sync:
  poll_interval_ms: 500
unknown_setting: "should be ignored"
`
		// Create the config file in the current directory so Viper can find it.
		// Note: `t.TempDir()` is not used here because Viper looks in the CWD.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		// Clean up the file after the test
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if values from the file were loaded
		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.Backend.URL != "http://192.168.1.20:8000" {
			t.Errorf("Expected backend url from file, got '%s'", cfg.Backend.URL)
		}
		if cfg.Database.Path != "/tmp/test.db" {
			t.Errorf("Expected db path '/tmp/test.db', got '%s'", cfg.Database.Path)
		}
		if cfg.Sync.PollIntervalMs != 500 {
			t.Errorf("Expected poll interval 500ms, got %d", cfg.Sync.PollIntervalMs)
		}
		// Keys absent from the file keep their defaults.
		if cfg.Sync.IdleResyncSeconds != 12 {
			t.Errorf("Expected default idle resync of 12s, got %d", cfg.Sync.IdleResyncSeconds)
		}
	})
}
