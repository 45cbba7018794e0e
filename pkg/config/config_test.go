package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	// Test default values
	if config.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("Expected default requests per minute to be 60, got %d", config.RateLimit.RequestsPerMinute)
	}

	if config.Mirror.BaseDirectory != "./photos" {
		t.Errorf("Expected default output directory to be ./photos, got %s", config.Mirror.BaseDirectory)
	}

	if config.Mirror.DownloadDelay != 0 {
		t.Errorf("Expected default download delay to be 0, got %v", config.Mirror.DownloadDelay)
	}

	if !config.Plex.InsecureSkipVerify {
		t.Error("Expected TLS verification to be skipped by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Set test environment variables
	os.Setenv("PLEXMIRROR_BASE_URL", "http://plex.local:32400")
	os.Setenv("PLEXMIRROR_TOKEN", "test-token")
	os.Setenv("PLEXMIRROR_REQUESTS_PER_MINUTE", "30")
	os.Setenv("PLEXMIRROR_OUTPUT_DIR", "/tmp/test-photos")
	os.Setenv("PLEXMIRROR_ALBUMS", "Holidays, Family ,")
	os.Setenv("PLEXMIRROR_DOWNLOAD_DELAY", "1500ms")
	os.Setenv("PLEXMIRROR_NOTIFICATIONS_ENABLED", "false")
	os.Setenv("PLEXMIRROR_LOG_LEVEL", "debug")

	defer func() {
		// Clean up environment variables
		os.Unsetenv("PLEXMIRROR_BASE_URL")
		os.Unsetenv("PLEXMIRROR_TOKEN")
		os.Unsetenv("PLEXMIRROR_REQUESTS_PER_MINUTE")
		os.Unsetenv("PLEXMIRROR_OUTPUT_DIR")
		os.Unsetenv("PLEXMIRROR_ALBUMS")
		os.Unsetenv("PLEXMIRROR_DOWNLOAD_DELAY")
		os.Unsetenv("PLEXMIRROR_NOTIFICATIONS_ENABLED")
		os.Unsetenv("PLEXMIRROR_LOG_LEVEL")
	}()

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	// Test loaded values
	if config.Plex.BaseURL != "http://plex.local:32400" {
		t.Errorf("Expected base URL to be http://plex.local:32400, got %s", config.Plex.BaseURL)
	}

	if config.Plex.Token != "test-token" {
		t.Errorf("Expected token to be test-token, got %s", config.Plex.Token)
	}

	if config.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("Expected requests per minute to be 30, got %d", config.RateLimit.RequestsPerMinute)
	}

	if config.Mirror.BaseDirectory != "/tmp/test-photos" {
		t.Errorf("Expected output directory to be /tmp/test-photos, got %s", config.Mirror.BaseDirectory)
	}

	if len(config.Mirror.Albums) != 2 || config.Mirror.Albums[0] != "Holidays" || config.Mirror.Albums[1] != "Family" {
		t.Errorf("Expected albums to be [Holidays Family], got %v", config.Mirror.Albums)
	}

	if config.Mirror.DownloadDelay != 1500*time.Millisecond {
		t.Errorf("Expected download delay to be 1.5s, got %v", config.Mirror.DownloadDelay)
	}

	if config.Notifications.Enabled != false {
		t.Errorf("Expected notifications to be disabled, got %v", config.Notifications.Enabled)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Plex: PlexConfig{
				BaseURL:         "http://plex.local:32400",
				Token:           "test-token",
				RequestTimeout:  30 * time.Second,
				DownloadTimeout: 5 * time.Minute,
			},
			Mirror: MirrorConfig{
				BaseDirectory: "./photos",
			},
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				BurstSize:         10,
			},
			Retry: RetryConfig{
				MaxAttempts: 3,
				Multiplier:  2.0,
			},
			Notifications: NotificationConfig{
				NotificationType: "terminal",
			},
			Logging: LoggingConfig{
				Level: "info",
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing base URL",
			mutate:    func(c *Config) { c.Plex.BaseURL = "" },
			wantError: true,
		},
		{
			name:      "malformed base URL",
			mutate:    func(c *Config) { c.Plex.BaseURL = "not-a-url" },
			wantError: true,
		},
		{
			name:      "missing token",
			mutate:    func(c *Config) { c.Plex.Token = "" },
			wantError: true,
		},
		{
			name:      "negative download delay",
			mutate:    func(c *Config) { c.Mirror.DownloadDelay = -1 * time.Second },
			wantError: true,
		},
		{
			name:      "zero retry attempts",
			mutate:    func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
		{
			name:      "invalid notification type",
			mutate:    func(c *Config) { c.Notifications.NotificationType = "carrier-pigeon" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"server":        "http://flag.local:32400",
		"token":         "flag-token",
		"output":        "/flag/output",
		"albums":        []string{"Trips"},
		"delay":         3 * time.Second,
		"dry-run":       true,
		"notifications": false,
		"log-level":     "error",
	}

	config.MergeCommandLineFlags(flags)

	// Test merged values
	if config.Plex.BaseURL != "http://flag.local:32400" {
		t.Errorf("Expected base URL to be http://flag.local:32400, got %s", config.Plex.BaseURL)
	}

	if config.Plex.Token != "flag-token" {
		t.Errorf("Expected token to be flag-token, got %s", config.Plex.Token)
	}

	if config.Mirror.BaseDirectory != "/flag/output" {
		t.Errorf("Expected output directory to be /flag/output, got %s", config.Mirror.BaseDirectory)
	}

	if len(config.Mirror.Albums) != 1 || config.Mirror.Albums[0] != "Trips" {
		t.Errorf("Expected albums to be [Trips], got %v", config.Mirror.Albums)
	}

	if config.Mirror.DownloadDelay != 3*time.Second {
		t.Errorf("Expected download delay to be 3s, got %v", config.Mirror.DownloadDelay)
	}

	if !config.Mirror.DryRun {
		t.Error("Expected dry-run to be enabled")
	}

	if config.Notifications.Enabled {
		t.Error("Expected notifications to be disabled")
	}

	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	// Create temporary directory for testing
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	// Create a config and save it
	config := DefaultConfig()
	config.Plex.BaseURL = "http://save.local:32400"
	config.Plex.Token = "save-test-token"
	config.Mirror.Albums = []string{"Holidays", "Family"}
	config.Mirror.DownloadDelay = 2 * time.Second

	err := config.Save(configPath)
	if err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Load the saved config
	loadedConfig := DefaultConfig()
	err = loadedConfig.LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify loaded values
	if loadedConfig.Plex.BaseURL != "http://save.local:32400" {
		t.Errorf("Expected loaded base URL to be http://save.local:32400, got %s", loadedConfig.Plex.BaseURL)
	}

	if loadedConfig.Plex.Token != "save-test-token" {
		t.Errorf("Expected loaded token to be save-test-token, got %s", loadedConfig.Plex.Token)
	}

	if len(loadedConfig.Mirror.Albums) != 2 {
		t.Errorf("Expected 2 albums, got %d", len(loadedConfig.Mirror.Albums))
	}

	if loadedConfig.Mirror.DownloadDelay != 2*time.Second {
		t.Errorf("Expected loaded download delay to be 2s, got %v", loadedConfig.Mirror.DownloadDelay)
	}
}
