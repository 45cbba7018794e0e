package auth

import (
	"fmt"
	"strings"
)

// ShowTokenGuide displays step-by-step instructions for finding a Plex
// authentication token
func ShowTokenGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 PLEX TOKEN GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("This tool needs your X-Plex-Token to talk to the server.")
	fmt.Println("Follow these steps to find it:")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open Plex Web")
	fmt.Println("   - Go to https://app.plex.tv or your server's web UI")
	fmt.Println("   - Sign in and browse to any library item")
	fmt.Println()

	fmt.Println("🔍 STEP 2: View the item's XML")
	fmt.Println("   1. Click the ⋯ (more) button on any photo or video")
	fmt.Println("   2. Choose 'Get Info'")
	fmt.Println("   3. Click 'View XML' at the bottom of the dialog")
	fmt.Println()

	fmt.Println("🔑 STEP 3: Copy the token")
	fmt.Println("   - A new tab opens; look at its address bar")
	fmt.Println("   - The URL ends with: ...&X-Plex-Token=YOUR_TOKEN_HERE")
	fmt.Println("   - Copy everything after the = sign")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • Tokens are typically 20 characters of letters and digits")
	fmt.Println("   • Tokens survive server restarts but are revoked when you sign out")
	fmt.Println("   • On a LAN you can also read the token from Preferences.xml")
	fmt.Println("     in the Plex Media Server data directory")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • The token gives FULL access to your Plex account")
	fmt.Println("   • NEVER share it or commit it to a repository")
	fmt.Println("   • Store it with 'plexmirror auth login' (this tool encrypts it)")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickTokenGuide shows a condensed version for experienced users
func ShowQuickTokenGuide() {
	fmt.Println("\n🔑 Quick Guide: Plex Web → any item → ⋯ → Get Info → View XML → copy X-Plex-Token from the URL")
	fmt.Println("   Type 'help' for detailed instructions")
}
