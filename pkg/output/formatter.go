// Package output writes generated passwords and formats run summaries.
//
// The Writer saves a password set as sorted UTF-8 lines. The Formatter
// renders the statistics of a run as a single line, a table or JSON.
package output

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/otuschhoff/pwcombo/pkg/stat"
)

// Formats accepted by NewFormatter.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

// Formatter renders run statistics in one of the supported formats.
//
// Supported formats: "text" (one summary line), "table" (ASCII table), "json" (JSON).
type Formatter struct {
	format   string // "text", "table", "json"
	noHeader bool   // Omit header row in table output
}

// NewFormatter creates a new Formatter with the specified format.
func NewFormatter(format string, noHeader bool) *Formatter {
	return &Formatter{
		format:   format,
		noHeader: noHeader,
	}
}

// ValidFormat reports whether format is accepted by NewFormatter.
func ValidFormat(format string) bool {
	switch format {
	case FormatText, FormatTable, FormatJSON:
		return true
	}
	return false
}

// Format converts results to the configured output format.
func (f *Formatter) Format(results *stat.Results) string {
	switch f.format {
	case FormatJSON:
		return f.toJSON(results)
	case FormatTable:
		return f.summaryTable(results)
	default:
		return Summary(results) + "\n"
	}
}

// Summary returns the human-readable line reported after a successful run.
func Summary(results *stat.Results) string {
	return fmt.Sprintf("Generated %d passwords, saved to %s", results.Passwords, results.OutputFile)
}

// summaryTable creates a formatted summary table
func (f *Formatter) summaryTable(r *stat.Results) string {
	t := table.NewWriter()

	if !f.noHeader {
		t.AppendHeader(table.Row{"Metric", "Value"})
	}

	t.AppendRows([]table.Row{
		{"Password Length", r.PasswordLength},
		{"Letters", r.Letters},
		{"Case Variants", r.Variants},
		{"Unique Variants", r.UniqueVariants},
		{"Estimated", r.Estimated},
		{"Passwords", r.Passwords},
		{"Output File", r.OutputFile},
		{"Output Size", formatBytes(r.BytesWritten)},
		{"Elapsed", r.Elapsed.String()},
	})

	t.SetStyle(table.StyleColoredDark)
	return fmt.Sprintf("%s\n", t.Render())
}

// toJSON converts data to a JSON string using indented formatting.
func (f *Formatter) toJSON(data interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	return string(b) + "\n"
}

// formatBytes formats bytes to a human-readable string with binary unit suffixes.
// Uses standard binary prefixes (K, M, G, T, P, E).
// Examples: "1.5 KB", "2.3 MB", "1.0 GB"
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
