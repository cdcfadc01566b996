// Package ui renders terminal feedback for long-running commands.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// SyncBar is a single-line progress bar driven by fractional progress
// reports, redrawn in place with the name of the object being synced.
type SyncBar struct {
	writer  io.Writer
	width   int
	noColor bool
}

// SyncBarOptions configures a SyncBar.
type SyncBarOptions struct {
	Width   int // default 40
	NoColor bool
}

// NewSyncBar creates a progress bar writing to w.
func NewSyncBar(w io.Writer, opts SyncBarOptions) *SyncBar {
	width := opts.Width
	if width == 0 {
		width = 40
	}
	return &SyncBar{writer: w, width: width, noColor: opts.NoColor}
}

// Report redraws the bar at the given fraction with a status message.
func (b *SyncBar) Report(fraction float64, message string) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(float64(b.width) * fraction)

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if b.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filled))
	gray.Fprint(&bar, strings.Repeat("░", b.width-filled))
	bar.WriteString("]")

	// Pad the message so a shorter status fully overwrites the
	// previous line.
	fmt.Fprintf(b.writer, "\r%s %3d%% %-40.40s", bar.String(), int(fraction*100), message)
}

// Done finishes the bar with a success message.
func (b *SyncBar) Done(message string) {
	b.Report(1, "")
	fmt.Fprintln(b.writer)
	green := color.New(color.FgGreen, color.Bold)
	if b.noColor {
		green.DisableColor()
	}
	green.Fprintf(b.writer, "✓ %s\n", message)
}

// Fail finishes the bar with an error message.
func (b *SyncBar) Fail(message string) {
	fmt.Fprintln(b.writer)
	red := color.New(color.FgRed, color.Bold)
	if b.noColor {
		red.DisableColor()
	}
	red.Fprintf(b.writer, "❌ %s\n", message)
}

// Warn prints a warning line below the bar.
func (b *SyncBar) Warn(message string) {
	fmt.Fprintln(b.writer)
	yellow := color.New(color.FgYellow)
	if b.noColor {
		yellow.DisableColor()
	}
	yellow.Fprintf(b.writer, "⚠ %s\n", message)
}
