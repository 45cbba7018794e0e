package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"plexmirror/pkg/auth"
	"plexmirror/pkg/config"
	"plexmirror/pkg/logger"
	"plexmirror/pkg/mirror"
	"plexmirror/pkg/ui"
	"plexmirror/pkg/ui/tui"
)

var (
	// Mirror command flags
	serverURL   string
	plexToken   string
	insecure    bool
	outputDir   string
	albumList   []string
	delay       time.Duration
	dryRun      bool
	reportFile  string
	accountName string
	useTUI      bool
)

// mirrorCmd represents the mirror command
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror all photo libraries to the output directory",
	Long: `Mirror every photo library of a Plex server into a local directory tree.

The server connection comes from (in order of priority):
  - Command line flags (--server, --token)
  - Environment variables (PLEXMIRROR_BASE_URL and PLEXMIRROR_TOKEN)
  - A stored server entry (use 'plexmirror auth login' to store)
  - Configuration file

Each photo section becomes a directory, each album a subdirectory, and
photos keep a stable "{id}_{title}.{ext}" name, so rerunning the command
only downloads what is new.`,
	Example: `  # Mirror using stored credentials or environment variables
  plexmirror mirror

  # Mirror to a specific directory from a specific server
  plexmirror mirror --server https://192.168.1.50:32400 --token abc123 --output ~/PlexPhotos

  # Only mirror selected albums, pausing between downloads
  plexmirror mirror --albums "2022-01" --albums "Trip to Spain" --delay 500ms

  # See what would be downloaded without transferring anything
  plexmirror mirror --dry-run

  # Watch the run in the interactive terminal UI
  plexmirror mirror --tui`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runMirror(cmd)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mirrorCmd)

	// Local flags for mirror command
	mirrorCmd.Flags().StringVarP(&serverURL, "server", "s", "", "Plex server base URL (e.g. https://192.168.1.50:32400)")
	mirrorCmd.Flags().StringVarP(&plexToken, "token", "t", "", "Plex authentication token")
	mirrorCmd.Flags().BoolVar(&insecure, "insecure", true, "skip TLS certificate verification")
	mirrorCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for the mirror (default ./photos)")
	mirrorCmd.Flags().StringSliceVarP(&albumList, "albums", "a", nil, "only mirror these top-level albums (repeatable)")
	mirrorCmd.Flags().DurationVar(&delay, "delay", 0, "pause after each successful download")
	mirrorCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the run without downloading anything")
	mirrorCmd.Flags().StringVar(&reportFile, "report", "", "write a JSON run report to this path")
	mirrorCmd.Flags().StringVar(&accountName, "account", "", "use a stored server entry (see 'plexmirror auth')")
	mirrorCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")

	// Also add these flags to the root command so a bare 'plexmirror'
	// invocation works without the subcommand
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "", "Plex server base URL (e.g. https://192.168.1.50:32400)")
	rootCmd.Flags().StringVarP(&plexToken, "token", "t", "", "Plex authentication token")
	rootCmd.Flags().BoolVar(&insecure, "insecure", true, "skip TLS certificate verification")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for the mirror (default ./photos)")
	rootCmd.Flags().StringSliceVarP(&albumList, "albums", "a", nil, "only mirror these top-level albums (repeatable)")
	rootCmd.Flags().DurationVar(&delay, "delay", 0, "pause after each successful download")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the run without downloading anything")
	rootCmd.Flags().StringVar(&reportFile, "report", "", "write a JSON run report to this path")
	rootCmd.Flags().StringVar(&accountName, "account", "", "use a stored server entry (see 'plexmirror auth')")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
}

func runMirror(cmd *cobra.Command) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if serverURL != "" {
		flags["server"] = serverURL
	}
	if plexToken != "" {
		flags["token"] = plexToken
	}
	if cmd.Flags().Changed("insecure") {
		flags["insecure"] = insecure
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if len(albumList) > 0 {
		flags["albums"] = albumList
	}
	if cmd.Flags().Changed("delay") {
		flags["delay"] = delay
	}
	if dryRun {
		flags["dry-run"] = true
	}
	if reportFile != "" {
		flags["report"] = reportFile
	}
	if !notifications {
		flags["notifications"] = false
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// A named server entry overrides nothing the user typed, but fills
	// in the connection details
	if accountName != "" {
		credManager, err := auth.NewManager()
		if err != nil {
			ui.PrintError("Failed to initialize credential manager", err.Error())
			os.Exit(1)
		}
		account, err := credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Server entry not found", accountName)
			ui.PrintInfo("Available entries", "Use 'plexmirror auth list' to see stored servers")
			os.Exit(1)
		}
		applyAccount(flags, account)
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil && accountName == "" {
		// The default stored entry may supply the missing connection
		// details; retry with it before giving up
		if credManager, cerr := auth.NewManager(); cerr == nil {
			if account, aerr := credManager.RetrieveDefault(); aerr == nil {
				applyAccount(flags, account)
				cfg, err = config.Load(configFile, flags)
			}
		}
	}
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		fmt.Println("\nTo store server credentials securely, run:")
		fmt.Println("  plexmirror auth login")
		fmt.Println("\nYou can also set environment variables:")
		fmt.Println("  export PLEXMIRROR_BASE_URL=https://your-server:32400")
		fmt.Println("  export PLEXMIRROR_TOKEN=your_plex_token")
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("Plex Mirror starting")

	if !useTUI {
		ui.PrintInfo("Server", cfg.Plex.BaseURL)
		ui.PrintInfo("Output", cfg.Mirror.BaseDirectory)
		if len(cfg.Mirror.Albums) > 0 {
			ui.PrintInfo("Albums", strings.Join(cfg.Mirror.Albums, ", "))
		}
	}

	// Ctrl-C finishes the current download, records what completed, and
	// leaves the rest for the next run
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := mirror.New(cfg, nil)
	if err != nil {
		ui.PrintError("Failed to initialize mirror", err.Error())
		os.Exit(1)
	}

	if useTUI {
		runWithTUI(ctx, m)
		return
	}

	if ui.IsProgressOnlyMode() {
		debug := strings.ToLower(cfg.Logging.Level) == "debug"
		m.SetProgress(ui.NewProgressDisplay(cfg.Mirror.BaseDirectory, 0, debug))
	}

	rep, err := m.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Mirror run failed")
		ui.PrintError("MIRROR FAILED", err.Error())
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"downloaded": rep.Downloaded,
		"failed":     rep.Failed,
		"skipped":    rep.Skipped,
	}).Info("Mirror run completed")
}

// runWithTUI drives the run behind the interactive terminal UI.
func runWithTUI(ctx context.Context, m *mirror.Mirror) {
	terminal := tui.NewTUI()
	m.SetTUI(terminal)

	mirrorDone := make(chan error, 1)
	go func() {
		_, err := m.Run(ctx)
		mirrorDone <- err
	}()

	tuiDone := make(chan error, 1)
	go func() {
		tuiDone <- terminal.Start()
	}()

	// Wait for either to finish
	select {
	case err := <-mirrorDone:
		terminal.Stop()
		<-tuiDone // Wait for TUI to finish
		if err != nil {
			logger.WithError(err).Error("Mirror run failed")
			os.Exit(1)
		}
	case err := <-tuiDone:
		if err != nil {
			logger.WithError(err).Error("TUI failed")
			os.Exit(1)
		}
	}

	logger.Info("Mirror run completed")
}

// applyAccount injects a stored server entry into the flag map without
// overriding anything the user passed explicitly.
func applyAccount(flags map[string]interface{}, account *auth.Account) {
	if _, ok := flags["server"]; !ok {
		flags["server"] = account.BaseURL
	}
	if _, ok := flags["token"]; !ok {
		flags["token"] = account.Token
	}
	logger.WithField("server", account.Name).Info("Using stored credentials")
	ui.PrintInfo("Using server entry", account.Name)
}

// Make mirror the default command when no subcommand is specified
func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			runMirror(cmd)
			return nil
		}
		return cmd.Help()
	}
	rootCmd.Args = cobra.ArbitraryArgs
}
