package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"plexmirror/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	noColor       bool
	notifications bool
	quiet         bool
	progressOnly  bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plexmirror",
	Short: "Mirror the photo libraries of a Plex server to local disk",
	Long: `Plex Mirror is a command-line tool for downloading every photo library
of a Plex Media Server into a local directory tree.

Features:
  - Secure token storage using system keychain
  - Idempotent runs: existing files are skipped, only new photos transfer
  - Album folder structure preserved, nested albums included
  - Smart rate limiting and automatic retry with exponential backoff
  - Progress tracking with beautiful UI
  - Desktop notifications for run events
  - JSON run reports for automation

For more information and examples, see the project README.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Progress mode is default unless verbose is specified
		if !verbose && !quiet {
			progressOnly = true
		}

		// Set quiet mode if requested or log level is error
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}

		// Set progress-only mode
		if progressOnly {
			ui.SetProgressOnlyMode(true)
			// Also set log level to error to suppress logs
			logLevel = "error"
		}

		ui.SetColorEnabled(!noColor)

		// Don't show logo for certain commands
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.plexmirror.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&progressOnly, "progress", "p", false, "show only progress bar and essential info")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show all output (logo, logs, progress)")

	// Version template
	rootCmd.SetVersionTemplate(`Plex Mirror {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
