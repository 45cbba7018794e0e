package ui

// TUI is an interface for terminal user interfaces
type TUI interface {
	StartDownload(id, album, filename string, size int64)
	CompleteDownload(id string)
	FailDownload(id string, err error)
	LogInfo(format string, args ...interface{})
	LogSuccess(format string, args ...interface{})
	LogWarning(format string, args ...interface{})
	LogError(format string, args ...interface{})
	IsPaused() bool
}
