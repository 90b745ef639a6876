// This file defines the configuration structure for the workbench.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port         int `mapstructure:"port"`
	ScanInterval int `mapstructure:"scan_interval"` // minutes, 0 disables the scheduled backend rescan
	Backend      struct {
		URL            string `mapstructure:"url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"backend"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Cache struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"cache"`
	Sync struct {
		PollIntervalMs       int `mapstructure:"poll_interval_ms"`
		CompletionDebounceMs int `mapstructure:"completion_debounce_ms"`
		IdleResyncSeconds    int `mapstructure:"idle_resync_seconds"`
		PageSize             int `mapstructure:"page_size"`
	} `mapstructure:"sync"`
	Viewer struct {
		MaxScale             float64 `mapstructure:"max_scale"`
		ZoomStep             float64 `mapstructure:"zoom_step"`
		WheelSwitchThreshold float64 `mapstructure:"wheel_switch_threshold"`
		SwipeThreshold       float64 `mapstructure:"swipe_threshold"`
		EdgeSwipeThreshold   float64 `mapstructure:"edge_swipe_threshold"`
	} `mapstructure:"viewer"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with an "IMAGEDECK_"
	// prefix. e.g., IMAGEDECK_BACKEND_URL will override the `backend.url` key.
	viper.SetEnvPrefix("IMAGEDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8390)
	viper.SetDefault("scan_interval", 10)
	viper.SetDefault("backend.url", "http://127.0.0.1:8000")
	viper.SetDefault("backend.timeout_seconds", 20)
	viper.SetDefault("database.path", "./imagedeck.db")
	viper.SetDefault("cache.path", "./.thumbs")
	viper.SetDefault("sync.poll_interval_ms", 2000)
	viper.SetDefault("sync.completion_debounce_ms", 750)
	viper.SetDefault("sync.idle_resync_seconds", 12)
	viper.SetDefault("sync.page_size", 30)
	viper.SetDefault("viewer.max_scale", 20.0)
	viper.SetDefault("viewer.zoom_step", 1.1)
	// The swipe thresholds are tunable feel constants, not load-bearing
	// precision: 50px at fit scale, 65px for edge-swipe while zoomed in
	// (panning has already absorbed part of the drag by then).
	viper.SetDefault("viewer.wheel_switch_threshold", 40.0)
	viper.SetDefault("viewer.swipe_threshold", 50.0)
	viper.SetDefault("viewer.edge_swipe_threshold", 65.0)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
