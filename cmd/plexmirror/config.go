package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"plexmirror/pkg/config"
	"plexmirror/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Plex Mirror configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'plexmirror.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like the Plex token will be masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "plexmirror.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# Plex Mirror Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with PLEXMIRROR_
# For example: PLEXMIRROR_BASE_URL, PLEXMIRROR_TOKEN

# Plex server connection
plex:
  # Base URL of the Plex server (required)
  # Include the scheme and port, e.g. https://192.168.1.50:32400
  base_url: "https://192.168.1.50:32400"

  # Plex authentication token (required)
  # Run 'plexmirror auth login' to store it securely instead,
  # or see 'plexmirror auth' for how to find it
  token: "YOUR_PLEX_TOKEN"

  # Timeout for catalog requests
  request_timeout: 30s

  # Timeout for a single photo download
  download_timeout: 5m

  # Skip TLS certificate verification
  # Plex servers on a LAN usually present self-signed certificates
  insecure_skip_verify: true

# Mirror settings
mirror:
  # Directory the photo tree is mirrored into
  base_directory: "./photos"

  # Only mirror these top-level albums
  # Leave empty to mirror everything
  albums: []

  # Pause after each successful download
  download_delay: 0s

  # Plan the run without downloading anything
  dry_run: false

  # Write a JSON run report to this path after every run
  # Leave empty to skip the report
  report_file: ""

# Rate limiting for catalog requests
rate_limit:
  # Requests per minute
  requests_per_minute: 60

  # Number of requests allowed in a burst
  burst_size: 10

# Retry behavior for transient catalog failures
retry:
  # Maximum number of attempts per request
  max_attempts: 3

  # Initial backoff duration
  initial_delay: 1s

  # Maximum backoff duration
  max_delay: 30s

  # Backoff multiplier
  multiplier: 2.0

# Notification preferences
notifications:
  # Enable notifications
  enabled: true

  # Notify when a run completes
  on_complete: true

  # Notify when a run fails
  on_error: true

  # Progress notification interval (percent)
  progress_interval: 10

  # Notification type: terminal, desktop, none
  notification_type: "terminal"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""

  # Maximum log file size in MB
  max_size: 100

  # Maximum number of old log files to keep
  max_backups: 3

  # Maximum age of log files in days
  max_age: 7

  # Compress rotated log files
  compress: false
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and add your Plex server URL and token")
	fmt.Println("2. Run 'plexmirror config validate' to check the configuration")
	fmt.Println("3. Start mirroring with 'plexmirror mirror'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Compose the configuration without requiring credentials, so show
	// works before anything is set up
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		ui.PrintError("Failed to load configuration file", err.Error())
		os.Exit(1)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		ui.PrintError("Failed to load environment variables", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	// Mask the token
	if displayCfg.Plex.Token != "" {
		if len(displayCfg.Plex.Token) > 8 {
			displayCfg.Plex.Token = displayCfg.Plex.Token[:4] + "..." + displayCfg.Plex.Token[len(displayCfg.Plex.Token)-4:]
		} else {
			displayCfg.Plex.Token = "***"
		}
	}

	// Convert to YAML for display
	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (PLEXMIRROR_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	// Check if config file is specified
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"plexmirror.yaml",
			"plexmirror.yml",
			".plexmirror.yaml",
			".plexmirror.yml",
			filepath.Join(os.Getenv("HOME"), ".plexmirror.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "plexmirror", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	// Try to load and validate configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	// Perform additional validation checks
	warnings := []string{}
	errors := []string{}

	// Check for placeholder values
	if cfg.Plex.Token == "YOUR_PLEX_TOKEN" {
		warnings = append(warnings, "Plex token looks like a placeholder; run 'plexmirror auth login'")
	}
	if !strings.HasPrefix(cfg.Plex.BaseURL, "http://") && !strings.HasPrefix(cfg.Plex.BaseURL, "https://") {
		errors = append(errors, "base_url must start with http:// or https://")
	}

	// Check paths
	if cfg.Mirror.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Mirror.BaseDirectory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	// Check logging file path
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	// Check value ranges
	if cfg.RateLimit.RequestsPerMinute < 1 || cfg.RateLimit.RequestsPerMinute > 600 {
		errors = append(errors, "requests_per_minute must be between 1 and 600")
	}
	if cfg.Retry.MaxAttempts < 1 || cfg.Retry.MaxAttempts > 10 {
		errors = append(errors, "max_attempts must be between 1 and 10")
	}
	if cfg.Notifications.ProgressInterval < 0 || cfg.Notifications.ProgressInterval > 100 {
		errors = append(errors, "progress_interval must be between 0 and 100")
	}

	// Display results
	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	// Show summary
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Server: %s\n", cfg.Plex.BaseURL)
	fmt.Printf("  Output directory: %s\n", cfg.Mirror.BaseDirectory)
	if len(cfg.Mirror.Albums) > 0 {
		fmt.Printf("  Album filter: %s\n", strings.Join(cfg.Mirror.Albums, ", "))
	} else {
		fmt.Println("  Album filter: (all albums)")
	}
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
