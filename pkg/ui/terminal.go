package ui

import "fmt"

// ASCII logo for the application
const ASCIILogo = `
    ╔══════════════════════════════════════════════╗
    ║      ██████╗ ██╗     ███████╗██╗  ██╗        ║
    ║      ██╔══██╗██║     ██╔════╝╚██╗██╔╝        ║
    ║      ██████╔╝██║     █████╗   ╚███╔╝         ║
    ║      ██╔═══╝ ██║     ██╔══╝   ██╔██╗         ║
    ║      ██║     ███████╗███████╗██╔╝ ██╗        ║
    ║      ╚═╝     ╚══════╝╚══════╝╚═╝  ╚═╝        ║
    ║    MIRROR - PHOTO LIBRARY SYNC UTILITY v1.0  ║
    ╚══════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// Output modes, set once at startup from command line flags.
var (
	colorEnabled     = true
	quietMode        = false
	progressOnlyMode = false
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// SetColorEnabled toggles ANSI colors on all terminal output.
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// SetQuietMode suppresses all terminal output except errors.
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is active.
func IsQuietMode() bool {
	return quietMode
}

// SetProgressOnlyMode suppresses the per-file lines so only the
// progress display renders.
func SetProgressOnlyMode(progressOnly bool) {
	progressOnlyMode = progressOnly
}

// IsProgressOnlyMode reports whether progress-only mode is active.
func IsProgressOnlyMode() bool {
	return progressOnlyMode
}

// suppressed reports whether normal output is currently muted.
func suppressed() bool {
	return quietMode || progressOnlyMode
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if suppressed() {
		return
	}
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints an error message in red. Errors print even in
// quiet mode.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if suppressed() {
		return
	}
	fmt.Println(Green(msg))
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	if suppressed() {
		return
	}
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if suppressed() {
		return
	}
	if len(args) > 0 {
		fmt.Println(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if suppressed() {
		return
	}
	fmt.Println(Magenta(msg))
}

// PrintStatus prints a plain uncolored status line
func PrintStatus(msg string) {
	if suppressed() {
		return
	}
	fmt.Println(msg)
}

// PrintDim prints a de-emphasized message
func PrintDim(msg string) {
	if suppressed() {
		return
	}
	fmt.Println(Dim(msg))
}
