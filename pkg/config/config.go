package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Plex mirror tool
type Config struct {
	// Plex server connection
	Plex PlexConfig `yaml:"plex" json:"plex"`

	// Mirror settings
	Mirror MirrorConfig `yaml:"mirror" json:"mirror"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behavior for catalog requests
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PlexConfig holds Plex server connection configuration
type PlexConfig struct {
	BaseURL            string        `yaml:"base_url" json:"base_url"`
	Token              string        `yaml:"token" json:"token"`
	RequestTimeout     time.Duration `yaml:"request_timeout" json:"request_timeout"`
	DownloadTimeout    time.Duration `yaml:"download_timeout" json:"download_timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// MirrorConfig holds mirror run configuration
type MirrorConfig struct {
	BaseDirectory string        `yaml:"base_directory" json:"base_directory"`
	Albums        []string      `yaml:"albums" json:"albums"`
	DownloadDelay time.Duration `yaml:"download_delay" json:"download_delay"`
	DryRun        bool          `yaml:"dry_run" json:"dry_run"`
	ReportFile    string        `yaml:"report_file" json:"report_file"`
}

// RateLimitConfig holds rate limiting configuration for catalog requests
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// RetryConfig holds retry configuration for transient catalog failures
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay" json:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	ProgressInterval int    `yaml:"progress_interval" json:"progress_interval"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Plex: PlexConfig{
			RequestTimeout:  30 * time.Second,
			DownloadTimeout: 5 * time.Minute,
			// Plex servers on a LAN commonly present self-signed certificates
			InsecureSkipVerify: true,
		},
		Mirror: MirrorConfig{
			BaseDirectory: "./photos",
			Albums:        nil,
			DownloadDelay: 0,
			DryRun:        false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          true,
			ProgressInterval: 10,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Plex connection
	if baseURL := os.Getenv("PLEXMIRROR_BASE_URL"); baseURL != "" {
		c.Plex.BaseURL = baseURL
	}
	if token := os.Getenv("PLEXMIRROR_TOKEN"); token != "" {
		c.Plex.Token = token
	}
	if insecure := os.Getenv("PLEXMIRROR_INSECURE_SKIP_VERIFY"); insecure != "" {
		c.Plex.InsecureSkipVerify = strings.ToLower(insecure) == "true"
	}

	// Mirror settings
	if outputDir := os.Getenv("PLEXMIRROR_OUTPUT_DIR"); outputDir != "" {
		c.Mirror.BaseDirectory = outputDir
	}
	if albums := os.Getenv("PLEXMIRROR_ALBUMS"); albums != "" {
		var parsed []string
		for _, a := range strings.Split(albums, ",") {
			if a = strings.TrimSpace(a); a != "" {
				parsed = append(parsed, a)
			}
		}
		c.Mirror.Albums = parsed
	}
	if delay := os.Getenv("PLEXMIRROR_DOWNLOAD_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Mirror.DownloadDelay = d
		}
	}

	// Rate limiting
	if rpm := os.Getenv("PLEXMIRROR_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	// Notifications
	if notifEnabled := os.Getenv("PLEXMIRROR_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	// Logging level
	if logLevel := os.Getenv("PLEXMIRROR_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".plexmirror.yaml",
		".plexmirror.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "plexmirror", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "plexmirror", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".plexmirror.yaml"),
		filepath.Join(os.Getenv("HOME"), ".plexmirror.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Validate Plex connection
	if c.Plex.BaseURL == "" {
		errs = append(errs, errors.New("Plex server base URL is required"))
	} else if u, err := url.Parse(c.Plex.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("Plex server base URL must be a valid http(s) URL"))
	}
	if c.Plex.Token == "" {
		errs = append(errs, errors.New("Plex token is required"))
	}
	if c.Plex.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Plex.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	// Validate mirror settings
	if c.Mirror.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Mirror.DownloadDelay < 0 {
		errs = append(errs, errors.New("download delay cannot be negative"))
	}

	// Validate rate limiting
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	// Validate retry settings
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.Multiplier < 1.0 {
		errs = append(errs, errors.New("retry multiplier must be at least 1.0"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	// Validate notification type
	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map override; callers pass the flags the user
// actually changed.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["server"].(string); ok && baseURL != "" {
		c.Plex.BaseURL = baseURL
	}
	if token, ok := flags["token"].(string); ok && token != "" {
		c.Plex.Token = token
	}
	if insecure, ok := flags["insecure"].(bool); ok {
		c.Plex.InsecureSkipVerify = insecure
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Mirror.BaseDirectory = outputDir
	}
	if albums, ok := flags["albums"].([]string); ok && len(albums) > 0 {
		c.Mirror.Albums = albums
	}
	if delay, ok := flags["delay"].(time.Duration); ok && delay >= 0 {
		c.Mirror.DownloadDelay = delay
	}
	if dryRun, ok := flags["dry-run"].(bool); ok {
		c.Mirror.DryRun = dryRun
	}
	if report, ok := flags["report"].(string); ok && report != "" {
		c.Mirror.ReportFile = report
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".plexmirror.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// The catalog client joins keys onto the base URL directly
	config.Plex.BaseURL = strings.TrimRight(config.Plex.BaseURL, "/")

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
