package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/flatironinstitute/cephdu/internal/attr"
	"github.com/flatironinstitute/cephdu/internal/nav"
	"github.com/flatironinstitute/cephdu/internal/tree"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// Report is the one-shot, non-interactive rendering of a single directory
// level.
type Report struct {
	// Path is the directory the report describes.
	Path string `json:"path"`
	// TotalBytes is the directory's recursive byte count, null when the
	// filesystem does not expose it.
	TotalBytes *uint64 `json:"total_bytes"`
	// TotalEntries is the directory's recursive entry count.
	TotalEntries *uint64 `json:"total_entries"`
	// Sort names the field and direction the entries are ordered by.
	Sort string `json:"sort"`
	// Entries are the immediate children in display order.
	Entries []Row `json:"entries"`
}

// Row is one child entry of a Report.
type Row struct {
	Name             string  `json:"name"`
	Kind             string  `json:"kind"`
	RecursiveBytes   *uint64 `json:"recursive_bytes"`
	RecursiveEntries *uint64 `json:"recursive_entries"`
	DirectBytes      uint64  `json:"direct_bytes"`
	FetchState       string  `json:"fetch_state"`
	AttributeSource  string  `json:"attribute_source"`
	Reason           string  `json:"reason,omitempty"`
}

// NewReport converts a navigator snapshot into a Report.
func NewReport(snap nav.Snapshot) Report {
	direction := "ascending"
	if snap.Sort.Descending {
		direction = "descending"
	}

	report := Report{
		Path:         snap.FocusedPath,
		TotalBytes:   snap.TotalBytes,
		TotalEntries: snap.TotalEntries,
		Sort:         snap.Sort.Field.String() + "/" + direction,
		Entries:      make([]Row, 0, len(snap.Entries)),
	}

	for _, entry := range snap.Entries {
		report.Entries = append(report.Entries, Row{
			Name:             entry.Name,
			Kind:             entry.Kind.String(),
			RecursiveBytes:   entry.RecursiveBytes,
			RecursiveEntries: entry.RecursiveEntries,
			DirectBytes:      entry.DirectBytes,
			FetchState:       entry.State.String(),
			AttributeSource:  entry.Origin.String(),
			Reason:           entry.Reason,
		})
	}

	return report
}

// PrintJSON outputs the report in JSON format.
func PrintJSON(report Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the report in human-readable table format. Approximated
// values are marked with '~', unavailable ones with '?'.
func PrintTable(report Report, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\n",
		report.Path,
		cellBytes(report.TotalBytes, false),
		cellCount(report.TotalEntries, false))
	fmt.Fprintln(w, "\nSIZE\tFILES\tNAME\t")

	for _, row := range report.Entries {
		approx := row.AttributeSource == attr.OriginApproximated.String()

		name := row.Name
		if row.Kind == tree.KindDirectory.String() {
			name += "/"
		}

		if row.Reason != "" {
			name += "\t" + row.Reason
		}

		fmt.Fprintf(w, "%s\t%s\t%s\n",
			cellBytes(row.RecursiveBytes, approx),
			cellCount(row.RecursiveEntries, approx),
			name)
	}

	return w.Flush()
}

func cellBytes(value *uint64, approximated bool) string {
	if value == nil {
		return "?"
	}

	text := humanize.Bytes(*value)
	if approximated {
		text = "~" + text
	}

	return text
}

func cellCount(value *uint64, approximated bool) string {
	if value == nil {
		return "?"
	}

	text := humanize.Comma(int64(*value)) //nolint:gosec // Counts fit in int64
	if approximated {
		text = "~" + text
	}

	return text
}
