package tui

import (
	"strings"

	"github.com/dustin/go-humanize"
)

const gaugeWidth = 12

// sizeCell renders a byte count column value. Missing values show as a gap,
// approximated values are marked so they are never mistaken for native
// subtree totals.
func sizeCell(value *uint64, approximated bool) string {
	if value == nil {
		return "?"
	}

	text := humanize.Bytes(*value)
	if approximated {
		text = "~" + text
	}

	return text
}

// countCell renders an entry count column value.
func countCell(value *uint64, approximated bool) string {
	if value == nil {
		return "?"
	}

	text := humanize.SIWithDigits(float64(*value), 1, "")
	text = strings.TrimSuffix(text, " ")
	if approximated {
		text = "~" + text
	}

	return text
}

// gauge renders a fixed-width bar showing value relative to the column
// maximum, with the share of the directory total appended when known.
func gauge(value *uint64, peak uint64, total *uint64) string {
	if value == nil || peak == 0 {
		return strings.Repeat(" ", gaugeWidth)
	}

	filled := int(float64(*value) / float64(peak) * float64(gaugeWidth))
	if filled > gaugeWidth {
		filled = gaugeWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat(" ", gaugeWidth-filled)

	if total == nil || *total == 0 {
		return bar
	}

	percent := 100 * float64(*value) / float64(*total)

	return bar + padPercent(percent)
}

func padPercent(percent float64) string {
	text := humanize.FtoaWithDigits(percent, 1) + "%"
	if len(text) < 6 {
		text = strings.Repeat(" ", 6-len(text)) + text
	}

	return text
}
