package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"trading-coach/internal/models"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer   io.Writer
	jsonMode bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode || !isTerminal() {
		color.NoColor = true
	}
	return &Output{
		writer:   cmd.OutOrStdout(),
		jsonMode: jsonMode,
	}
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// JSONMode reports whether JSON output was requested.
func (o *Output) JSONMode() bool {
	return o.jsonMode
}

// JSON writes a value as indented JSON.
func (o *Output) JSON(v interface{}) error {
	enc := json.NewEncoder(o.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Printf writes plain formatted output.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Info writes an informational line.
func (o *Output) Info(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, color.CyanString(format, args...))
}

// Success writes a success line.
func (o *Output) Success(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, color.GreenString(format, args...))
}

// Warning writes a warning line.
func (o *Output) Warning(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, color.YellowString(format, args...))
}

// Error writes an error line.
func (o *Output) Error(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, color.RedString(format, args...))
}

// Header writes a bold section header.
func (o *Output) Header(text string) {
	bold := color.New(color.Bold)
	bold.Fprintln(o.writer, text)
}

// SeverityString colors a severity label.
func SeverityString(s models.Severity) string {
	switch s {
	case models.SeverityCritical:
		return color.New(color.FgRed, color.Bold).Sprint(string(s))
	case models.SeverityHigh:
		return color.RedString(string(s))
	case models.SeverityMedium:
		return color.YellowString(string(s))
	default:
		return color.HiBlackString(string(s))
	}
}
