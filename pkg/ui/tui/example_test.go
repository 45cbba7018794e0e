package tui_test

import (
	"fmt"
	"time"

	"plexmirror/pkg/ui/tui"
)

func ExampleTUI() {
	terminal := tui.NewTUI()

	// Start the TUI in a goroutine
	go func() {
		if err := terminal.Start(); err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
	}()

	// Simulate a sequential mirror run
	terminal.LogInfo("Requesting library sections...")

	for i := 1; i <= 10; i++ {
		id := fmt.Sprintf("2022-01/%d_photo%d.jpg", 100+i, i)
		terminal.StartDownload(id, "2022-01", fmt.Sprintf("%d_photo%d.jpg", 100+i, i), 1024*1024)

		time.Sleep(200 * time.Millisecond)

		// Complete or fail
		if i%3 == 0 {
			terminal.FailDownload(id, fmt.Errorf("simulated error"))
		} else {
			terminal.CompleteDownload(id)
		}
	}

	// Add some logs
	terminal.LogSuccess("QUEUED 111_photo11.jpg")
	terminal.LogWarning("SKIP (album not in include list) Archive")
	terminal.LogError("ERROR: cannot access album 'Trip' -> timeout")
	terminal.LogSuccess("Mirror complete: 7 downloaded, 3 failed in 2.1s")

	// Keep running for demo
	time.Sleep(10 * time.Second)
	terminal.Stop()
}
