package ui

import (
	"fmt"
	"time"
)

// StatusTracker keeps track of download progress
type StatusTracker struct {
	TotalDownloaded int
	TotalFailed     int
	StartTime       time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		StartTime: time.Now(),
	}
}

// IncrementDownloaded increments the downloaded counter
func (st *StatusTracker) IncrementDownloaded() {
	st.TotalDownloaded++
}

// IncrementFailed increments the failed counter
func (st *StatusTracker) IncrementFailed() {
	st.TotalFailed++
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetDownloadRate returns the average download rate (items per minute)
func (st *StatusTracker) GetDownloadRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.TotalDownloaded) / elapsed
}

// PrintProgress prints the current progress status
func (st *StatusTracker) PrintProgress() {
	if suppressed() {
		return
	}
	fmt.Printf("\r%s Downloaded: %d | Failed: %d",
		Green("[MIRROR]"),
		st.TotalDownloaded,
		st.TotalFailed)
}

// GetDownloadedCount returns the total number of downloaded items
func (st *StatusTracker) GetDownloadedCount() int {
	return st.TotalDownloaded
}

// GetFailedCount returns the total number of failed items
func (st *StatusTracker) GetFailedCount() int {
	return st.TotalFailed
}
