package mirror

import (
	"context"
	"fmt"

	"plexmirror/internal/transfer"
	"plexmirror/pkg/config"
	"plexmirror/pkg/logger"
	"plexmirror/pkg/paths"
	"plexmirror/pkg/plex"
	"plexmirror/pkg/report"
	"plexmirror/pkg/storage"
	"plexmirror/pkg/ui"
)

// Mirror ties the planner and the transfer runner together for a full
// run against one Plex server.
type Mirror struct {
	client   *plex.Client
	storage  *storage.Manager
	tracker  *ui.StatusTracker
	notifier *ui.Notifier
	progress *ui.ProgressDisplay
	tui      ui.TUI
	config   *config.Config
	logger   logger.Logger
}

// New creates a Mirror from the given configuration. The base
// directory is created immediately so a misconfigured output path
// fails before any catalog request.
func New(cfg *config.Config, log logger.Logger) (*Mirror, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	store, err := storage.NewManager(cfg.Mirror.BaseDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	return &Mirror{
		client:   plex.NewClientWithConfig(cfg, log),
		storage:  store,
		tracker:  ui.NewStatusTracker(),
		notifier: ui.NewNotifier(),
		config:   cfg,
		logger:   log,
	}, nil
}

// SetTUI sets the terminal UI for the run.
func (m *Mirror) SetTUI(tui ui.TUI) {
	m.tui = tui
}

// SetProgress sets a single-line progress display used instead of
// per-task console lines.
func (m *Mirror) SetProgress(progress *ui.ProgressDisplay) {
	m.progress = progress
}

// Run performs one full mirror pass: plan the catalog walk, execute the
// transfers, and summarize. The returned report is always populated,
// even when the run aborted; the error is non-nil only for the aborting
// cases (sections listing failure or cancellation).
func (m *Mirror) Run(ctx context.Context) (*report.Report, error) {
	rep := report.New(m.config.Plex.BaseURL, m.storage.BaseDir())
	rep.DryRun = m.config.Mirror.DryRun

	m.logger.InfoWithFields("starting mirror run", map[string]interface{}{
		"run_id":   rep.RunID,
		"base_url": m.config.Plex.BaseURL,
		"base_dir": m.storage.BaseDir(),
		"albums":   len(m.config.Mirror.Albums),
		"dry_run":  m.config.Mirror.DryRun,
	})

	planner := NewPlanner(m.client, m.storage, m.config.Mirror.Albums, m.logger)
	if m.tui != nil {
		planner.SetTUI(m.tui)
	}

	plan, err := planner.BuildPlan(ctx)
	if err != nil {
		rep.Finish()
		m.writeReport(rep)
		m.notifyError(err)
		return rep, err
	}

	rep.Sections = plan.Sections
	rep.Planned = len(plan.Tasks)
	rep.Skipped = plan.Skipped
	rep.Filtered = plan.Filtered
	rep.MissingParts = plan.MissingParts
	rep.FailedNodes = plan.FailedNodes

	if plan.Sections == 0 {
		rep.Finish()
		m.writeReport(rep)
		return rep, nil
	}

	if len(plan.Tasks) == 0 {
		if m.tui != nil {
			m.tui.LogSuccess("All files already exist locally. Nothing to download.")
		} else {
			ui.PrintSuccess("\nAll files already exist locally. Nothing to download.")
		}
		if rep.FailedNodes > 0 {
			m.reportFailedNodes(rep.FailedNodes)
		}
		m.logger.InfoWithFields("nothing to download", map[string]interface{}{
			"skipped": rep.Skipped,
		})
		rep.Finish()
		m.writeReport(rep)
		return rep, nil
	}

	if m.tui != nil {
		m.tui.LogInfo("Total files to download: %d", len(plan.Tasks))
	} else {
		ui.PrintHighlight(fmt.Sprintf("\nTotal files to download: %d\n", len(plan.Tasks)))
	}

	if m.config.Mirror.DryRun {
		if m.tui != nil {
			m.tui.LogWarning("Dry run - nothing was downloaded.")
		} else {
			ui.PrintWarning("Dry run - nothing was downloaded.")
		}
		m.logger.InfoWithFields("dry run complete", map[string]interface{}{
			"would_download": len(plan.Tasks),
		})
		rep.Finish()
		m.writeReport(rep)
		return rep, nil
	}

	if m.progress != nil {
		m.progress.UpdateTotal(len(plan.Tasks))
	}

	runner := transfer.NewRunner(m.client, m.storage, m.config.Mirror.DownloadDelay, m.logger)
	if m.tui != nil {
		runner.SetTUI(m.tui)
	}
	if m.progress != nil {
		runner.SetProgress(m.progress)
	}

	results := runner.Run(ctx, m.transferTasks(plan.Tasks))

	for _, result := range results {
		if result.Err != nil {
			rep.AddFailure(result.Task.DisplayPath, result.Err)
			m.tracker.IncrementFailed()
			continue
		}
		rep.Downloaded++
		rep.Bytes += result.Bytes
		m.tracker.IncrementDownloaded()
	}

	rep.Finish()
	m.printSummary(rep)
	m.writeReport(rep)

	if err := ctx.Err(); err != nil {
		m.logger.WarnWithFields("mirror run interrupted", map[string]interface{}{
			"run_id":    rep.RunID,
			"completed": len(results),
			"total":     rep.Planned,
		})
		m.notifyError(err)
		return rep, err
	}

	m.logger.InfoWithFields("mirror run complete", map[string]interface{}{
		"run_id":     rep.RunID,
		"downloaded": rep.Downloaded,
		"failed":     rep.Failed,
		"bytes":      rep.Bytes,
	})
	m.notifyComplete(rep)

	return rep, nil
}

// transferTasks maps planned downloads onto executor tasks, resolving
// each display path once.
func (m *Mirror) transferTasks(tasks []DownloadTask) []transfer.Task {
	out := make([]transfer.Task, len(tasks))
	for i, t := range tasks {
		out[i] = transfer.Task{
			Album:       t.AlbumTitle,
			Filename:    t.Filename,
			URL:         t.DownloadURL,
			Path:        t.LocalPath,
			DisplayPath: paths.DisplayPath(m.storage.BaseDir(), t.LocalPath),
			Size:        t.Size,
		}
	}
	return out
}

// printSummary reports the run outcome on the console. The TUI shows
// its own live state, so only a closing line is sent there.
func (m *Mirror) printSummary(rep *report.Report) {
	if m.tui != nil {
		m.tui.LogSuccess("Mirror complete: %d downloaded, %d failed in %s", rep.Downloaded, rep.Failed, rep.Duration)
		return
	}

	if m.progress != nil {
		m.progress.Complete()
	}

	ui.PrintSuccess(fmt.Sprintf("\nMirror complete in %s", rep.Duration))
	ui.PrintInfo("Downloaded", fmt.Sprintf("%d of %d", rep.Downloaded, rep.Planned))
	ui.PrintInfo("Already present", fmt.Sprintf("%d", rep.Skipped))
	if rep.Downloaded > 0 {
		ui.PrintInfo("Average rate", fmt.Sprintf("%.1f photos/min", m.tracker.GetDownloadRate()))
	}
	if rep.Failed > 0 {
		ui.PrintWarning(fmt.Sprintf("%d downloads failed", rep.Failed))
	}
	if rep.FailedNodes > 0 {
		m.reportFailedNodes(rep.FailedNodes)
	}
}

func (m *Mirror) reportFailedNodes(count int) {
	if m.tui != nil {
		m.tui.LogWarning("%d albums could not be listed", count)
		return
	}
	ui.PrintWarning(fmt.Sprintf("%d albums could not be listed", count))
}

// writeReport persists the run report when a report file is
// configured. A write failure is reported but never fails the run.
func (m *Mirror) writeReport(rep *report.Report) {
	if m.config.Mirror.ReportFile == "" {
		return
	}

	if err := rep.Save(m.config.Mirror.ReportFile); err != nil {
		ui.PrintWarning("Failed to write report", err)
		m.logger.ErrorWithFields("failed to write report", map[string]interface{}{
			"path":  m.config.Mirror.ReportFile,
			"error": err.Error(),
		})
		return
	}

	m.logger.InfoWithFields("report written", map[string]interface{}{
		"path": m.config.Mirror.ReportFile,
	})
}

func (m *Mirror) notifyComplete(rep *report.Report) {
	if !m.config.Notifications.Enabled || !m.config.Notifications.OnComplete {
		return
	}

	if rep.Failed > 0 {
		m.notifier.SendNotification("Plex mirror finished",
			fmt.Sprintf("%d photos downloaded, %d failed", rep.Downloaded, rep.Failed))
		return
	}
	m.notifier.SendSuccess("Plex mirror finished",
		fmt.Sprintf("%d photos downloaded", rep.Downloaded))
}

func (m *Mirror) notifyError(err error) {
	if !m.config.Notifications.Enabled || !m.config.Notifications.OnError {
		return
	}
	m.notifier.SendError("Plex mirror failed", err.Error())
}
