package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewReport(t *testing.T) {
	r := New("http://plex.local:32400", "/data/photos")

	if r.RunID == "" {
		t.Error("Expected a run ID")
	}
	if r.StartedAt.IsZero() {
		t.Error("Expected a start timestamp")
	}
	if r.BaseURL != "http://plex.local:32400" {
		t.Errorf("Unexpected base URL: %q", r.BaseURL)
	}
	if r.BaseDir != "/data/photos" {
		t.Errorf("Unexpected base dir: %q", r.BaseDir)
	}

	other := New("http://plex.local:32400", "/data/photos")
	if other.RunID == r.RunID {
		t.Error("Expected run IDs to be unique")
	}
}

func TestAddFailure(t *testing.T) {
	r := New("http://plex.local:32400", "/data/photos")

	r.AddFailure("2022-01/101_Sunset.jpg", errors.New("download failed"))
	r.AddFailure("Trip/102_Hike.jpg", errors.New("write failed"))

	if r.Failed != 2 {
		t.Errorf("Expected 2 failures, got %d", r.Failed)
	}
	if len(r.Failures) != 2 {
		t.Fatalf("Expected 2 failure entries, got %d", len(r.Failures))
	}
	if r.Failures[0].Path != "2022-01/101_Sunset.jpg" {
		t.Errorf("Unexpected failure path: %q", r.Failures[0].Path)
	}
	if r.Failures[1].Error != "write failed" {
		t.Errorf("Unexpected failure message: %q", r.Failures[1].Error)
	}
}

func TestFinish(t *testing.T) {
	r := New("http://plex.local:32400", "/data/photos")
	r.StartedAt = time.Now().Add(-2 * time.Second)

	r.Finish()

	if r.FinishedAt.Before(r.StartedAt) {
		t.Error("Expected finish after start")
	}
	if r.Duration == "" {
		t.Error("Expected a duration string")
	}
}

func TestSaveAndLoad(t *testing.T) {
	r := New("http://plex.local:32400", "/data/photos")
	r.Sections = 1
	r.Planned = 3
	r.Downloaded = 2
	r.Skipped = 5
	r.Bytes = 4096
	r.AddFailure("2022-01/101_Sunset.jpg", errors.New("download failed"))
	r.Finish()

	// A nested path exercises parent directory creation.
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	if err := r.Save(path); err != nil {
		t.Fatalf("Failed to save report: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load report: %v", err)
	}

	if loaded.RunID != r.RunID {
		t.Errorf("Expected run ID %q, got %q", r.RunID, loaded.RunID)
	}
	if loaded.Downloaded != 2 || loaded.Skipped != 5 || loaded.Bytes != 4096 {
		t.Errorf("Counts did not survive the roundtrip: %+v", loaded)
	}
	if len(loaded.Failures) != 1 || loaded.Failures[0].Error != "download failed" {
		t.Errorf("Failures did not survive the roundtrip: %+v", loaded.Failures)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	if !strings.Contains(string(data), "\"run_id\"") {
		t.Error("Expected snake_case JSON keys")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("Expected an error for a missing report file")
	}
}
