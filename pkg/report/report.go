// Package report builds the per-run summary of a mirror pass and
// optionally persists it as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Report summarizes one mirror run. The Plex token never appears in a
// report; only the server base URL is recorded.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Duration   string    `json:"duration"`

	BaseURL string `json:"base_url"`
	BaseDir string `json:"base_directory"`
	DryRun  bool   `json:"dry_run,omitempty"`

	// Plan phase
	Sections     int `json:"sections"`
	Planned      int `json:"planned"`
	Skipped      int `json:"skipped_existing"`
	Filtered     int `json:"skipped_filtered,omitempty"`
	MissingParts int `json:"missing_parts,omitempty"`
	FailedNodes  int `json:"failed_nodes,omitempty"`

	// Transfer phase
	Downloaded int   `json:"downloaded"`
	Failed     int   `json:"failed"`
	Bytes      int64 `json:"bytes_downloaded"`

	Failures []Failure `json:"failures,omitempty"`
}

// Failure records one failed transfer by its display path.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// New starts a report for a run against the given server and local
// tree.
func New(baseURL, baseDir string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		BaseURL:   baseURL,
		BaseDir:   baseDir,
	}
}

// AddFailure records a failed transfer.
func (r *Report) AddFailure(path string, err error) {
	r.Failed++
	r.Failures = append(r.Failures, Failure{
		Path:  path,
		Error: err.Error(),
	})
}

// Finish stamps the end of the run.
func (r *Report) Finish() {
	r.FinishedAt = time.Now()
	r.Duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
}

// Save writes the report to a JSON file, creating parent directories
// as needed.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}

// Load reads a report back from a JSON file.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &r, nil
}
