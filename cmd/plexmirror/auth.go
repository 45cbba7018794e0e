package main

import (
	"bufio"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"plexmirror/pkg/auth"
	"plexmirror/pkg/plex"
	"plexmirror/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Plex server credentials",
	Long: `Manage stored Plex server credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (for one-off runs)

Never share your token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store Plex server credentials securely",
	Long: `Store Plex server credentials securely in the system keychain or encrypted file.

You will be prompted for:
  - A name for the server entry (if not provided)
  - The server base URL, e.g. https://192.168.1.50:32400
  - The X-Plex-Token for that server

To find your token:
1. Open Plex Web and browse to any item
2. Click ... > Get Info > View XML
3. Copy the X-Plex-Token value from the opened URL`,
	Example: `  # Interactive login
  plexmirror auth login

  # Login with a named entry
  plexmirror auth login home-server`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove stored credentials",
	Long: `Remove stored Plex server credentials.

If no name is provided, you will be shown a list of stored servers
to choose from. You can also remove all servers at once.`,
	Example: `  # Interactive logout
  plexmirror auth logout

  # Logout specific server
  plexmirror auth logout home-server`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored servers",
	Long:  `List all stored Plex servers with sanitized credential information.`,
	Run:   runList,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Check that stored credentials still work",
	Long: `Check a stored server entry by listing its libraries.

If no name is provided, the default entry is checked. A rejected token
usually means it was regenerated; run 'plexmirror auth login' again.`,
	Example: `  # Check the default entry
  plexmirror auth status

  # Check a specific server
  plexmirror auth status home-server`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	// Interactive prompts
	reader := bufio.NewReader(os.Stdin)

	// Show the token guide first
	auth.ShowTokenGuide()

	// Ask if ready to continue
	fmt.Print("Ready to enter your server details? (Y/n): ")
	ready, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(ready)) == "n" {
		fmt.Println("\nRun 'plexmirror auth login' when you're ready.")
		return
	}

	fmt.Println() // Add spacing

	if name == "" {
		fmt.Print("🏷  Server entry name (press Enter for 'default'): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read server name", err.Error())
			os.Exit(1)
		}
		name = strings.TrimSpace(input)
		if name == "" {
			name = "default"
		}
	}

	// Check if entry already exists
	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("\n⚠️  Server '%s' already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	// Get the base URL with validation
	var baseURL string
	for {
		fmt.Print("\n🌐 Server base URL: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read server URL", err.Error())
			os.Exit(1)
		}
		baseURL = strings.TrimRight(strings.TrimSpace(input), "/")

		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			fmt.Println("\n❌ That doesn't look like a server URL.")
			fmt.Println("   It should include the scheme and port.")
			fmt.Println("   Example: https://192.168.1.50:32400")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	fmt.Println("\n🔐 Enter your token (it will be hidden as you type):")

	// Get the token with validation
	var token string
	for {
		fmt.Print("\nX-Plex-Token value: ")
		token, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read token", err.Error())
			os.Exit(1)
		}

		// Basic validation
		if len(token) < 8 || strings.ContainsAny(token, " \t") {
			fmt.Println("\n❌ That doesn't look like a valid token.")
			fmt.Println("   It should be a short alphanumeric string without spaces.")
			fmt.Println("   Example: s9fJk2mPq8xWn3vYbT7c")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	// Show what we're about to do
	fmt.Println("\n📋 Summary:")
	fmt.Printf("   Server: %s\n", name)
	fmt.Printf("   URL: %s\n", baseURL)
	fmt.Printf("   Token: %s...%s (hidden)\n", token[:4], token[len(token)-4:])

	// Create server entry
	account := &auth.Account{
		Name:         name,
		BaseURL:      baseURL,
		Token:        token,
		LastModified: time.Now(),
	}

	// Store credentials
	fmt.Println("\n💾 Storing credentials securely...")
	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	// Note when it is the only entry
	accounts, _ := manager.List()
	if len(accounts) == 1 {
		fmt.Printf("✅ '%s' is now the default server\n", name)
	}

	fmt.Println("\n🎉 Credentials stored successfully!")
	ui.PrintSuccess(fmt.Sprintf("Server saved: %s", name))

	// Show where credentials are stored
	fmt.Println("\n🔒 Security Information:")
	fmt.Println("   Your token is encrypted and stored in:")
	fmt.Println("   • System keychain (when available)")
	fmt.Println("   • Encrypted file (backup)")

	// Show how to use
	fmt.Println("\n📖 Quick Start Guide:")
	fmt.Println("   Mirror every photo library:")
	fmt.Printf("   $ plexmirror mirror\n")
	fmt.Println("\n   Use this server explicitly:")
	fmt.Printf("   $ plexmirror mirror --account %s\n", name)
	fmt.Println("\n   Check the credentials still work:")
	fmt.Printf("   $ plexmirror auth status %s\n", name)
	fmt.Println("\n⚠️  Never share your token or config files!")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) == 0 {
		// List servers and ask which to remove
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			ui.PrintError("No stored servers found", "")
			return
		}

		if len(accounts) == 1 {
			// Only one server, confirm deletion
			account := accounts[0]
			reader := bufio.NewReader(os.Stdin)
			fmt.Printf("Remove server '%s'? (y/N): ", account.Name)
			input, _ := reader.ReadString('\n')
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
				return
			}

			if err := manager.Delete(account.Name); err != nil {
				ui.PrintError("Failed to remove server", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Server removed: " + account.Name)
			return
		}

		// Multiple servers, show menu
		fmt.Println("Select server to remove:")
		for i, account := range accounts {
			fmt.Printf("  %d. %s\n", i+1, account.Name)
		}
		fmt.Printf("  %d. Remove all servers\n", len(accounts)+1)
		fmt.Printf("  0. Cancel\n\n")

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Choice: ")
		input, _ := reader.ReadString('\n')

		var choice int
		fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

		if choice == 0 {
			return
		} else if choice == len(accounts)+1 {
			// Remove all
			fmt.Print("Remove ALL servers? This cannot be undone! (yes/N): ")
			confirm, _ := reader.ReadString('\n')
			if strings.TrimSpace(confirm) != "yes" {
				return
			}

			if err := manager.DeleteAll(); err != nil {
				ui.PrintError("Failed to remove all servers", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("All servers removed")
			return
		} else if choice > 0 && choice <= len(accounts) {
			account := accounts[choice-1]
			if err := manager.Delete(account.Name); err != nil {
				ui.PrintError("Failed to remove server", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Server removed: " + account.Name)
			return
		} else {
			ui.PrintError("Invalid choice", "")
			os.Exit(1)
		}
	}

	// Name provided as argument
	name := args[0]
	if err := manager.Delete(name); err != nil {
		ui.PrintError("Failed to remove server", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Server removed: " + name)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list servers", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored servers", "Use 'plexmirror auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored Servers")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Server: %s\n", i+1, sanitized.Name)
		fmt.Printf("   URL: %s\n", sanitized.BaseURL)
		fmt.Printf("   Token: %s\n", sanitized.Token)
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var account *auth.Account
	if len(args) > 0 {
		account, err = manager.Retrieve(args[0])
		if err != nil {
			ui.PrintError("Server entry not found", args[0])
			os.Exit(1)
		}
	} else {
		account, err = manager.RetrieveDefault()
		if err != nil {
			ui.PrintError("No stored servers found", "Use 'plexmirror auth login' to add one")
			os.Exit(1)
		}
	}

	endpoint := plex.SectionsURL(account.BaseURL, account.Token)
	ui.PrintInfo("Checking server", account.Name)
	ui.PrintInfo("Endpoint", plex.RedactURL(endpoint))

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	resp, err := client.Get(endpoint)
	if err != nil {
		ui.PrintError("Server unreachable", err.Error())
		os.Exit(1)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		ui.PrintError("Token rejected", "Run 'plexmirror auth login' to store a fresh token")
		os.Exit(1)
	case resp.StatusCode != http.StatusOK:
		ui.PrintError("Unexpected server response", resp.Status)
		os.Exit(1)
	}

	// Count the photo libraries while we have the section listing
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ui.PrintError("Failed to read server response", err.Error())
		os.Exit(1)
	}

	var container plex.MediaContainer
	if err := xml.Unmarshal(body, &container); err != nil {
		ui.PrintError("Failed to parse section listing", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Token is valid")
	photoSections := container.PhotoSections()
	ui.PrintInfo("Libraries", fmt.Sprintf("%d total, %d photo", len(container.Directories), len(photoSections)))
	for _, section := range photoSections {
		fmt.Printf("   • %s\n", section.Title)
	}
}

// readPassword reads a token from stdin without echoing
func readPassword() (string, error) {
	// Try to read without echo
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after password
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
