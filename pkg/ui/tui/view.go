package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Build the UI layout
	var sections []string

	// Logo
	sections = append(sections, m.renderLogo())

	// Main content area with two columns
	leftColumn := m.renderLeftColumn()
	rightColumn := m.renderRightColumn()

	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftColumn,
		"  ", // spacing
		rightColumn,
	)
	sections = append(sections, mainContent)

	// Help
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	// Join all sections vertically
	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the logo banner
func (m *Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════════╗
║      ██████╗ ██╗     ███████╗██╗  ██╗        ║
║      ██╔══██╗██║     ██╔════╝╚██╗██╔╝        ║
║      ██████╔╝██║     █████╗   ╚███╔╝         ║
║      ██╔═══╝ ██║     ██╔══╝   ██╔██╗         ║
║      ██║     ███████╗███████╗██╔╝ ██╗        ║
║      ╚═╝     ╚══════╝╚══════╝╚═╝  ╚═╝        ║
║    MIRROR - PHOTO LIBRARY SYNC UTILITY v1.0  ║
╚══════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

// renderLeftColumn renders the left side of the UI
func (m *Model) renderLeftColumn() string {
	width := (m.width - 4) / 2

	var sections []string

	// Stats panel
	sections = append(sections, m.renderStatsPanel(width))

	// Active downloads panel
	sections = append(sections, m.renderActiveDownloadsPanel(width))

	// Queue panel
	sections = append(sections, m.renderQueuePanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderRightColumn renders the right side of the UI
func (m *Model) renderRightColumn() string {
	width := (m.width - 4) / 2

	var sections []string

	// Albums panel
	sections = append(sections, m.renderAlbumsPanel(width))

	// Logs panel
	sections = append(sections, m.renderLogsPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatsPanel renders the statistics panel
func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" SESSION STATS ")

	elapsed := time.Since(m.sessionStartTime)
	avgSpeed, eta := m.GetDownloadStats()

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Session Time:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Downloaded:"), statsValueStyle.Render(fmt.Sprintf("%d files", m.totalDownloaded))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Failed:"), statsValueStyle.Render(fmt.Sprintf("%d files", m.totalFailed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Total Size:"), statsValueStyle.Render(FormatBytes(m.totalSize))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Average Speed:"), speedStyle.Render(FormatSpeed(avgSpeed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("ETA:"), statsValueStyle.Render(formatDuration(eta))),
	}

	if m.isPaused {
		stats = append(stats, warningStyle.Render("⏸  PAUSED"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, stats...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderActiveDownloadsPanel renders the active downloads
func (m *Model) renderActiveDownloadsPanel(width int) string {
	title := titleStyle.Render(" ACTIVE DOWNLOAD ")

	active := m.GetActiveDownloads()

	if len(active) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("No active download")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	var downloads []string
	for _, download := range active {
		downloads = append(downloads, m.renderDownloadItem(download, width-4))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, downloads...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderDownloadItem renders a single active download
func (m *Model) renderDownloadItem(item *DownloadItem, width int) string {
	name := item.Filename
	if maxLen := width - 10; maxLen > 3 && len(name) > maxLen {
		name = name[:maxLen-3] + "..."
	}

	info := fmt.Sprintf("%s %s",
		m.spinner.View(),
		queueItemActiveStyle.Render(name),
	)

	detail := item.Album
	if item.Size > 0 {
		detail += " • " + FormatBytes(item.Size)
	}
	detail += " • " + formatDuration(time.Since(item.StartTime))

	return lipgloss.JoinVertical(lipgloss.Left,
		info,
		queueItemStyle.Foreground(dimWhite).Render(detail),
	)
}

// renderQueuePanel renders the download queue
func (m *Model) renderQueuePanel(width int) string {
	title := titleStyle.Render(" DOWNLOAD QUEUE ")

	pending := m.GetPendingDownloads()
	completed := m.GetCompletedDownloads()

	var items []string

	// Overall completion bar: processed tasks over queued tasks
	m.mu.RLock()
	total := len(m.downloadOrder)
	active := m.activeDownloads
	m.mu.RUnlock()
	if total > 0 {
		bar := m.progressBar
		if w := width - 6; w > 0 {
			bar.Width = w
		}
		processed := float64(total-len(pending)-active) / float64(total)
		items = append(items, bar.ViewAs(processed), "")
	}

	// Show some pending items
	pendingCount := len(pending)
	if pendingCount > 0 {
		items = append(items, warningStyle.Render(fmt.Sprintf("⏳ %d pending", pendingCount)))
		for i := 0; i < 3 && i < pendingCount; i++ {
			items = append(items, queueItemStyle.Render("• "+pending[i].Filename))
		}
		if pendingCount > 3 {
			items = append(items, lipgloss.NewStyle().Foreground(dimWhite).Render(fmt.Sprintf("  ... and %d more", pendingCount-3)))
		}
	}

	// Show recent completed
	completedCount := len(completed)
	if completedCount > 0 {
		items = append(items, "", successStyle.Render(fmt.Sprintf("✓ %d completed", completedCount)))
		start := completedCount - 3
		if start < 0 {
			start = 0
		}
		for i := start; i < completedCount; i++ {
			items = append(items, queueItemCompletedStyle.Render("✓ "+completed[i].Filename))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderAlbumsPanel renders per-album outcome counts
func (m *Model) renderAlbumsPanel(width int) string {
	title := titleStyle.Render(" ALBUMS ")

	stats := m.GetAlbumStats()

	if len(stats) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("No albums yet...")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	// Show the most recent albums; the walk is sequential so the last
	// entries are the ones being worked on.
	shown := len(stats)
	if shown > 6 {
		shown = 6
	}

	var items []string
	if len(stats) > shown {
		items = append(items, lipgloss.NewStyle().Foreground(dimWhite).Render(fmt.Sprintf("... %d earlier albums", len(stats)-shown)))
	}
	for _, stat := range stats[len(stats)-shown:] {
		line := fmt.Sprintf("%s %s",
			statsValueStyle.Render(stat.Title),
			successStyle.Render(fmt.Sprintf("%d✓", stat.Completed)),
		)
		if stat.Failed > 0 {
			line += " " + errorStyle.Render(fmt.Sprintf("%d✗", stat.Failed))
		}
		if stat.Active > 0 {
			line += " " + warningStyle.Render("⏳")
		}
		items = append(items, line)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderLogsPanel renders the logs panel
func (m *Model) renderLogsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" SYSTEM LOGS ")

	// Get recent logs
	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(log.Message)

		// Truncate message if too long
		maxMsgLen := width - 25
		if len(message) > maxMsgLen {
			message = message[:maxMsgLen-3] + "..."
		}

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	// Calculate height for logs panel to fill remaining space
	logsHeight := m.height - 35 // Approximate calculation
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m *Model) renderHelp() string {
	help := `
  Navigation:
    q/Q      - Quit the application
    p/P      - Pause/Resume downloads
    ?        - Toggle this help

  Status Indicators:
    ` + successStyle.Render("Green") + `    - Active/Healthy
    ` + warningStyle.Render("Orange") + `   - Warning/Pending
    ` + errorStyle.Render("Red") + `      - Error/Critical

  Icons:
    ⏳       - Pending download
    ✓        - Completed download
    ✗        - Failed download
    ⏸        - Paused
`

	return panelStyle.Width(m.width).Render(help)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
