package cmdutil

import (
	"fmt"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"os"
	"time"
	"warden/client/internal/api"
)

var (
	loadingSpinner = spinner.New(spinner.CharSets[14], time.Millisecond*100)
)

func PrintE(message string) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = color.New(color.FgRed).Fprintln(os.Stderr, message)
}

func Print(message string) {
	_, _ = fmt.Fprintln(os.Stdout, message)
}

func PrintS(message string) {
	_, _ = fmt.Fprintln(os.Stdout)
	color.Green(message)
}

// PrintField prints one "label: value" line with the label highlighted.
func PrintField(label, value string) {
	_, _ = fmt.Fprintf(os.Stdout, "%s: %s\n", color.CyanString(label), value)
}

func StartLoading(message string) {
	loadingSpinner.Prefix = message + " "
	loadingSpinner.Start()
}

func StopLoading() {
	loadingSpinner.Stop()
}

func PrintResult(result api.TriggerResult) {
	if result.Success {
		PrintS("Operation succeeded!")
		PrintField("Correlation ID", result.CorrelationID)
		if result.Path != "" {
			PrintField("Path", result.Path)
		}
		return
	}

	PrintE("Operation failed: " + result.Error)
	PrintField("Error code", result.ErrorCode)
	PrintField("Correlation ID", result.CorrelationID)
}
