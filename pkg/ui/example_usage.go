// Package ui provides terminal UI components for the Plex photo mirror
// This file demonstrates example usage of the UI components
package ui

/*
Example usage of the UI components:

// Terminal colors and output
ui.PrintLogo()                                      // Print ASCII logo
ui.PrintInfo("Server", "https://plex.local:32400")  // Cyan label, yellow value
ui.PrintSuccess("QUEUED 100_Beach.jpg")             // Green success message
ui.PrintError("ERROR: cannot access album 'Trip' -> timeout") // Red error message
ui.PrintWarning("SKIP (album not in include list) Archive")   // Yellow warning message
ui.PrintHighlight("Section: Photos")                // Magenta highlight message
ui.PrintDim("SKIP (exists) 100_Beach.jpg")          // Dimmed message
ui.PrintStatus("Downloading 1 of 12 - 2022-01/100_Beach.jpg") // Plain status line

// Output modes
ui.SetQuietMode(true)        // Suppress everything except errors
ui.SetProgressOnlyMode(true) // Suppress per-file lines, keep the progress display
ui.SetColorEnabled(false)    // Disable ANSI colors

// Progress tracking
tracker := ui.NewStatusTracker()
tracker.IncrementDownloaded()                    // Count a completed download
tracker.IncrementFailed()                        // Count a failed download
rate := tracker.GetDownloadRate()                // Average photos per minute

// Notifications (cross-platform)
notifier := ui.NewNotifier()
notifier.SendNotification("Plex mirror finished", "120 photos downloaded, 2 failed")
notifier.SendError("Plex mirror failed", "retrieving library sections: timeout")
notifier.SendSuccess("Plex mirror finished", "120 photos downloaded")

// Direct color usage
fmt.Printf("%s: %s\n", ui.Cyan("Album"), ui.Yellow("2022-01"))
fmt.Println(ui.Green("✓ Success"))
fmt.Println(ui.Red("✗ Failed"))
*/
