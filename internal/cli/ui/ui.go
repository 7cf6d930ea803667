// Package ui prints the status lines and run summary of the command line.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/syssam/modelbuilder/compiler/gen"
	"github.com/syssam/modelbuilder/compiler/render"
)

var (
	green = color.New(color.FgGreen, color.Bold)
	red   = color.New(color.FgRed, color.Bold)
	cyan  = color.New(color.FgCyan)
)

// Success prints a status line.
func Success(w io.Writer, format string, a ...any) {
	green.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", a...)
}

// Step prints a progress line.
func Step(w io.Writer, format string, a ...any) {
	cyan.Fprintf(w, "→ "+format+"\n", a...)
}

// Error prints err.
func Error(w io.Writer, err error) {
	red.Fprintf(w, "Error: %v\n", err)
}

// Summary prints the counts of a generation run.
func Summary(w io.Writer, stats gen.Stats, m render.Metrics, elapsed time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header("Produced", "Count")
	rows := [][]string{
		{"Option sets", strconv.Itoa(stats.OptionSets)},
		{"Entities", strconv.Itoa(stats.Entities)},
		{"Messages", strconv.Itoa(stats.Messages)},
		{"Message pairs", strconv.Itoa(stats.Pairs)},
		{"Skipped pairs", strconv.Itoa(stats.SkippedPairs)},
		{"Files", strconv.Itoa(m.FilesWritten)},
		{"Bytes", strconv.FormatInt(m.TotalBytes, 10)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	Success(w, "generated in %s", elapsed.Round(time.Millisecond))
	return nil
}
