package transfer

import (
	"context"
	"fmt"
	"io"
	"time"

	"plexmirror/pkg/logger"
	"plexmirror/pkg/ui"
)

// Task is one file to fetch and write, fully resolved by the planner.
type Task struct {
	Album       string // album title, for progress reporting
	Filename    string // basename of the destination file
	URL         string // fully formed download URL
	Path        string // local destination path
	DisplayPath string // shown in progress and error lines
	Size        int64  // expected size, 0 when unknown
}

// Result records the outcome of a single transfer.
type Result struct {
	Task     Task
	Err      error
	Bytes    int64
	Duration time.Duration
}

// Fetcher streams a photo binary from the server.
type Fetcher interface {
	Download(url string) (io.ReadCloser, int64, error)
}

// FileStore writes a fetched stream to the local tree.
type FileStore interface {
	WriteStream(path string, r io.Reader) (int64, error)
}

// Runner executes a task queue strictly in order, one transfer at a
// time. A failed task is logged and the queue moves on; the optional
// delay paces successful transfers only.
type Runner struct {
	fetcher  Fetcher
	store    FileStore
	delay    time.Duration
	logger   logger.Logger
	progress *ui.ProgressDisplay
	tui      ui.TUI
}

// NewRunner creates a transfer runner with the given inter-task delay.
func NewRunner(fetcher Fetcher, store FileStore, delay time.Duration, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Runner{
		fetcher: fetcher,
		store:   store,
		delay:   delay,
		logger:  log,
	}
}

// SetProgress replaces the per-task console lines with a single-line
// progress display.
func (r *Runner) SetProgress(progress *ui.ProgressDisplay) {
	r.progress = progress
}

// SetTUI routes the runner's output to a terminal UI.
func (r *Runner) SetTUI(tui ui.TUI) {
	r.tui = tui
}

// Run transfers every task in queue order and returns one result per
// attempted task. Cancelling the context stops the queue between
// transfers; results for tasks not yet attempted are simply absent.
func (r *Runner) Run(ctx context.Context, tasks []Task) []Result {
	total := len(tasks)
	results := make([]Result, 0, total)

	r.logger.InfoWithFields("starting transfers", map[string]interface{}{
		"total": total,
		"delay": r.delay.String(),
	})

	for i, task := range tasks {
		if !r.waitWhilePaused(ctx) || ctx.Err() != nil {
			r.logger.WarnWithFields("transfer run cancelled", map[string]interface{}{
				"completed": len(results),
				"total":     total,
			})
			return results
		}

		r.startTask(i+1, total, task)
		result := r.transfer(task)
		results = append(results, result)

		if result.Err != nil {
			r.failTask(task, result.Err)
			continue
		}

		r.completeTask(task, result)

		if r.delay > 0 && !sleep(ctx, r.delay) {
			return results
		}
	}

	return results
}

// transfer fetches one file and streams it to disk. The write is not
// atomic: a failure mid-copy leaves a truncated file behind, which the
// next run's existence check treats as present.
func (r *Runner) transfer(task Task) Result {
	start := time.Now()

	body, size, err := r.fetcher.Download(task.URL)
	if err != nil {
		return Result{
			Task:     task,
			Err:      fmt.Errorf("download failed: %w", err),
			Duration: time.Since(start),
		}
	}
	defer body.Close()

	n, err := r.store.WriteStream(task.Path, body)
	if err != nil {
		return Result{
			Task:     task,
			Err:      fmt.Errorf("write failed: %w", err),
			Bytes:    n,
			Duration: time.Since(start),
		}
	}

	r.logger.DebugWithFields("transfer complete", map[string]interface{}{
		"file":          task.DisplayPath,
		"bytes":         n,
		"expected_size": size,
		"duration":      time.Since(start).String(),
	})

	return Result{
		Task:     task,
		Bytes:    n,
		Duration: time.Since(start),
	}
}

func (r *Runner) startTask(i, total int, task Task) {
	if r.tui != nil {
		r.tui.StartDownload(task.DisplayPath, task.Album, task.Filename, task.Size)
	} else if r.progress != nil {
		r.progress.StartDownload(task.DisplayPath)
	} else {
		ui.PrintStatus(fmt.Sprintf("Downloading %d of %d - %s", i, total, task.DisplayPath))
	}
	r.logger.InfoWithFields("downloading file", map[string]interface{}{
		"index": i,
		"total": total,
		"file":  task.DisplayPath,
	})
}

func (r *Runner) completeTask(task Task, result Result) {
	if r.tui != nil {
		r.tui.CompleteDownload(task.DisplayPath)
	} else if r.progress != nil {
		r.progress.CompleteDownload(task.DisplayPath, result.Bytes)
	}
}

func (r *Runner) failTask(task Task, err error) {
	if r.tui != nil {
		r.tui.FailDownload(task.DisplayPath, err)
	} else if r.progress != nil {
		r.progress.FailDownload(task.DisplayPath, err)
	} else {
		ui.PrintError(fmt.Sprintf("ERROR downloading %s -> %v", task.DisplayPath, err))
	}
	r.logger.ErrorWithFields("download failed", map[string]interface{}{
		"file":  task.DisplayPath,
		"error": err.Error(),
	})
}

// waitWhilePaused blocks while the TUI holds the run paused. It reports
// false when the context was cancelled during the wait.
func (r *Runner) waitWhilePaused(ctx context.Context) bool {
	for r.tui != nil && r.tui.IsPaused() {
		if !sleep(ctx, 100*time.Millisecond) {
			return false
		}
	}
	return true
}

// sleep blocks for d and reports false if the context was cancelled
// first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
