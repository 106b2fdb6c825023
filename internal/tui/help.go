package tui

import (
	"fmt"
	"strings"
)

// helpEntries is the key map shown by the help popup.
var helpEntries = [][2]string{
	{"q, Esc", "Quit"},
	{"Down, j", "Move cursor down"},
	{"Up, k", "Move cursor up"},
	{"PgDn", "Jump cursor down"},
	{"PgUp", "Jump cursor up"},
	{"Home, g", "Select first entry"},
	{"End, G", "Select last entry"},
	{"Enter, l", "Open directory"},
	{"Backspace, h", "Go to parent directory"},
	{"Space", "Jump back to the starting directory"},
	{"n", "Sort by name"},
	{"s", "Sort by size"},
	{"c", "Sort by file count"},
	{"U", "Sort by owner"},
	{"u", "Toggle owner column"},
	{"r", "Refresh the current directory"},
	{"?", "Show this help"},
}

// helpText lays the key map out in two aligned columns.
func helpText() string {
	width := 0
	for _, entry := range helpEntries {
		if len(entry[0]) > width {
			width = len(entry[0])
		}
	}

	var b strings.Builder
	for _, entry := range helpEntries {
		fmt.Fprintf(&b, "%*s  %s\n", width, entry[0], entry[1])
	}

	return b.String()
}
