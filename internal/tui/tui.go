// Package tui is the terminal front end: it renders navigator snapshots
// with tview and decodes tcell key events into navigation commands. The
// engine underneath performs no terminal I/O of its own.
package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/flatironinstitute/cephdu/internal/attr"
	"github.com/flatironinstitute/cephdu/internal/nav"
	"github.com/flatironinstitute/cephdu/internal/tree"
)

const pageBy = 10

// UI owns the tview widgets and the navigator driving them.
type UI struct {
	app       *tview.Application
	navigator *nav.Navigator
	pages     *tview.Pages
	header    *tview.TextView
	message   *tview.TextView
	table     *tview.Table
	version   string

	ctx       context.Context
	showOwner bool
	helpOpen  bool
	notice    string
	cephCache map[string]bool
}

// New assembles the UI around a navigator. Call Run to take over the
// terminal.
func New(navigator *nav.Navigator, version string) *UI {
	u := &UI{
		app:       tview.NewApplication(),
		navigator: navigator,
		version:   version,
		cephCache: make(map[string]bool),
	}

	u.header = tview.NewTextView().SetDynamicColors(true)
	u.message = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)

	u.table = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	u.table.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkSlateGray).
		Bold(true))

	browser := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(u.header, 1, 0, false).
		AddItem(u.message, 1, 0, false).
		AddItem(u.table, 0, 1, true)

	helpView := tview.NewTextView().SetText(helpText())
	helpView.SetBorder(true).SetTitle(" Help ")

	helpPopup := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(helpView, len(helpEntries)+2, 0, true).
			AddItem(nil, 0, 1, false), 52, 0, true).
		AddItem(nil, 0, 1, false)

	u.pages = tview.NewPages().
		AddPage("browser", browser, true, true).
		AddPage("help", helpPopup, true, false)

	u.app.SetRoot(u.pages, true).SetInputCapture(u.handleKey)

	return u
}

// Run draws the initial snapshot and hands control to the event loop until
// the user quits or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	u.ctx = ctx
	u.redraw()

	go func() {
		<-ctx.Done()
		u.app.QueueUpdateDraw(func() {})
		u.app.Stop()
	}()

	return u.app.Run()
}

// handleKey translates key events into navigator commands and local UI
// actions. Handled events are swallowed so tview's own bindings never
// compete with ours.
func (u *UI) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if u.helpOpen {
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyEnter,
			ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == '?'):
			u.helpOpen = false
			u.pages.HidePage("help")
		}

		return nil
	}

	switch {
	case ev.Key() == tcell.KeyEscape,
		ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
		u.app.Stop()

		return nil
	case ev.Key() == tcell.KeyRune && ev.Rune() == '?':
		u.helpOpen = true
		u.pages.ShowPage("help")

		return nil
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'u':
		u.showOwner = !u.showOwner
		u.redraw()

		return nil
	}

	cmd, ok := u.keyCommand(ev)
	if !ok {
		return ev
	}

	u.notice = ""
	if err := u.navigator.Apply(u.ctx, cmd); err != nil {
		u.notice = err.Error()
	}

	u.redraw()

	return nil
}

// keyCommand maps one key event to a navigation command.
func (u *UI) keyCommand(ev *tcell.EventKey) (nav.Command, bool) {
	sort := u.navigator.Sort()

	switch ev.Key() {
	case tcell.KeyDown:
		return nav.Command{Op: nav.OpMove, Delta: 1}, true
	case tcell.KeyUp:
		return nav.Command{Op: nav.OpMove, Delta: -1}, true
	case tcell.KeyPgDn:
		return nav.Command{Op: nav.OpMove, Delta: pageBy}, true
	case tcell.KeyPgUp:
		return nav.Command{Op: nav.OpMove, Delta: -pageBy}, true
	case tcell.KeyHome:
		return nav.Command{Op: nav.OpMoveTo, Index: 0}, true
	case tcell.KeyEnd:
		return nav.Command{Op: nav.OpMoveTo, Index: -1}, true
	case tcell.KeyEnter:
		return nav.Command{Op: nav.OpEnter}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return nav.Command{Op: nav.OpBack}, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			return nav.Command{Op: nav.OpMove, Delta: 1}, true
		case 'k':
			return nav.Command{Op: nav.OpMove, Delta: -1}, true
		case 'g':
			return nav.Command{Op: nav.OpMoveTo, Index: 0}, true
		case 'G':
			return nav.Command{Op: nav.OpMoveTo, Index: -1}, true
		case 'l':
			return nav.Command{Op: nav.OpEnter}, true
		case 'h':
			return nav.Command{Op: nav.OpBack}, true
		case ' ':
			return nav.Command{Op: nav.OpReset}, true
		case 'r':
			return nav.Command{Op: nav.OpRefresh}, true
		case 'n':
			return nav.Command{Op: nav.OpSort, Sort: sort.Toggled(tree.SortByName, false)}, true
		case 's':
			return nav.Command{Op: nav.OpSort, Sort: sort.Toggled(tree.SortByBytes, true)}, true
		case 'c', 'C':
			return nav.Command{Op: nav.OpSort, Sort: sort.Toggled(tree.SortByEntries, true)}, true
		case 'U':
			return nav.Command{Op: nav.OpSort, Sort: sort.Toggled(tree.SortByOwner, false)}, true
		}
	}

	return nav.Command{}, false
}

// redraw rebuilds every widget from a fresh snapshot.
func (u *UI) redraw() {
	snap, err := u.navigator.Snapshot(u.ctx)
	if err != nil && u.notice == "" {
		u.notice = err.Error()
	}

	u.header.SetText(fmt.Sprintf("[::b]cephdu %s[-:-:-]  %s ━━ %s, %s files",
		u.version,
		snap.FocusedPath,
		sizeCell(snap.TotalBytes, false),
		countCell(snap.TotalEntries, false)))

	u.message.SetText(u.statusLine(snap))

	u.table.Clear()
	u.setHeaderRow()

	for i, entry := range snap.Entries {
		u.setEntryRow(i+1, entry, snap)
	}

	if len(snap.Entries) > 0 {
		u.table.Select(snap.Cursor+1, 0)
	}
}

// statusLine picks what the message row shows, most urgent first: the last
// command error, the failure recorded on the entry under the cursor, then a
// standing warning for non-Ceph directories.
func (u *UI) statusLine(snap nav.Snapshot) string {
	if u.notice != "" {
		return "[black:red]" + tview.Escape(u.notice)
	}

	if snap.Cursor < len(snap.Entries) && snap.Entries[snap.Cursor].Reason != "" {
		return "[black:red]" + tview.Escape(snap.Entries[snap.Cursor].Reason)
	}

	if snap.FocusedPath != "" && !u.isCeph(snap.FocusedPath) {
		return "[black:yellow]Warning: not a Ceph directory, recursive sizes unavailable"
	}

	return ""
}

func (u *UI) isCeph(path string) bool {
	if ceph, ok := u.cephCache[path]; ok {
		return ceph
	}

	ceph := attr.IsCeph(path)
	u.cephCache[path] = ceph

	return ceph
}

func (u *UI) setHeaderRow() {
	headers := []string{"SIZE", "", "FILES", "", "NAME"}
	if u.showOwner {
		headers = []string{"SIZE", "", "FILES", "", "OWNER", "NAME"}
	}

	for col, text := range headers {
		cell := tview.NewTableCell("[::b]" + text).
			SetSelectable(false)
		if col == 0 || col == 2 {
			cell.SetAlign(tview.AlignRight)
		}

		u.table.SetCell(0, col, cell)
	}
}

func (u *UI) setEntryRow(row int, entry tree.Summary, snap nav.Snapshot) {
	approx := entry.Origin == attr.OriginApproximated

	name := entry.Name
	if entry.Kind == tree.KindDirectory {
		name += "/"
	}

	count := ""
	if entry.Kind == tree.KindDirectory {
		count = countCell(entry.RecursiveEntries, approx)
	}

	color := tcell.ColorWhite
	switch {
	case entry.Failed():
		color = tcell.ColorRed
		name += " (!)"
	case entry.Kind == tree.KindDirectory:
		color = tcell.ColorLightCyan
	}

	cells := []string{
		sizeCell(entry.RecursiveBytes, approx),
		gauge(entry.RecursiveBytes, snap.MaxBytes, snap.TotalBytes),
		count,
		gauge(entry.RecursiveEntries, snap.MaxEntries, snap.TotalEntries),
		name,
	}
	if u.showOwner {
		owner := attr.UserName(entry.UID) + ":" + attr.GroupName(entry.GID)
		cells = []string{cells[0], cells[1], cells[2], cells[3], owner, name}
	}

	for col, text := range cells {
		cell := tview.NewTableCell(tview.Escape(text)).SetTextColor(color)
		if col == 0 || col == 2 {
			cell.SetAlign(tview.AlignRight)
		}

		if col == len(cells)-1 {
			cell.SetExpansion(1)
		}

		u.table.SetCell(row, col, cell)
	}
}
