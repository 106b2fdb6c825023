// Package nav drives the browser's navigation state machine: which node is
// focused, where the cursor sits among its siblings, and the ancestor stack
// that lets "back" restore the exact prior position. It owns no terminal
// I/O; presentation layers feed it commands and read snapshots.
package nav

import (
	"context"

	"github.com/flatironinstitute/cephdu/internal/tree"
)

// evictAge is how many navigation steps an expanded, unfocused subtree may
// sit untouched before it is collapsed to reclaim memory.
const evictAge = 32

// Op is a logical navigation operation, produced by an external key
// decoder.
type Op uint8

const (
	// OpEnter descends into the directory under the cursor.
	OpEnter Op = iota
	// OpBack returns to the parent, restoring the prior cursor position.
	OpBack
	// OpMove moves the cursor by Delta, clamped, no wraparound.
	OpMove
	// OpMoveTo moves the cursor to Index; a negative Index selects the end.
	OpMoveTo
	// OpSort replaces the active sort; the cursor keeps its position, not
	// its entry.
	OpSort
	// OpRefresh re-expands the focused directory, discarding its children.
	OpRefresh
	// OpReset unwinds the whole ancestor stack back to the root.
	OpReset
)

// Command is one decoded navigation command.
type Command struct {
	Op    Op
	Delta int       // OpMove
	Index int       // OpMoveTo
	Sort  tree.Sort // OpSort
}

// Snapshot is the immutable view handed to a renderer for one tick.
type Snapshot struct {
	FocusedPath string
	Entries     []tree.Summary
	Cursor      int
	Sort        tree.Sort
	AtRoot      bool

	// Totals of the focused directory, for the header. Nil when unknown.
	TotalBytes   *uint64
	TotalEntries *uint64

	// Column maxima across Entries, for gauge scaling.
	MaxBytes   uint64
	MaxEntries uint64

	// Err carries the focused node's recorded failure, if any.
	Err string
}

type frame struct {
	node   tree.ID
	cursor int
}

// Navigator is the state machine over focus, cursor and ancestor stack.
// Not safe for concurrent use; one logical thread of control drives it.
type Navigator struct {
	store   *tree.Store
	builder *tree.Builder
	focus   tree.ID
	cursor  int
	stack   []frame
	sort    tree.Sort
}

// New creates a Navigator focused on the store's root with the cursor at 0.
// The root is not expanded yet; the first Snapshot triggers that.
func New(store *tree.Store, builder *tree.Builder, sort tree.Sort) *Navigator {
	return &Navigator{
		store:   store,
		builder: builder,
		focus:   store.Root(),
		sort:    sort,
	}
}

// Sort returns the active sort.
func (n *Navigator) Sort() tree.Sort { return n.sort }

// Apply executes one command. A non-nil error is always a per-node
// filesystem failure fit for a status line, never a reason to stop the
// session.
func (n *Navigator) Apply(ctx context.Context, cmd Command) error {
	var err error

	switch cmd.Op {
	case OpEnter:
		err = n.enter(ctx)
	case OpBack:
		n.back()
	case OpMove:
		n.cursor = n.clamp(n.cursor + cmd.Delta)
	case OpMoveTo:
		if cmd.Index < 0 {
			n.cursor = n.clamp(n.store.ChildCount(n.focus) - 1)
		} else {
			n.cursor = n.clamp(cmd.Index)
		}
	case OpSort:
		n.sort = cmd.Sort
	case OpRefresh:
		err = n.builder.Refresh(ctx, n.focus)
		n.cursor = n.clamp(n.cursor)
	case OpReset:
		for len(n.stack) > 0 {
			n.back()
		}
	}

	n.store.Touch(n.focus)
	n.store.EvictStale(n.protected(), evictAge)

	return err
}

// enter descends into the directory under the cursor. On a listing failure
// the focus stays put and the error is reported; the failed state is also
// recorded on the target node.
func (n *Navigator) enter(ctx context.Context) error {
	view := n.store.View(n.focus, n.sort)
	if n.cursor >= len(view) {
		return nil
	}

	target := view[n.cursor]
	if target.Kind != tree.KindDirectory {
		return nil
	}

	n.stack = append(n.stack, frame{node: n.focus, cursor: n.cursor})
	n.focus = target.ID
	n.cursor = 0

	if err := n.builder.Expand(ctx, target.ID); err != nil {
		n.back()

		return err
	}

	return nil
}

// back pops one ancestor frame, restoring the exact prior cursor index.
// No-op at the root.
func (n *Navigator) back() {
	if len(n.stack) == 0 {
		return
	}

	top := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	n.focus = top.node
	n.cursor = n.clamp(top.cursor)
}

// clamp bounds a cursor index to the focused view, never wrapping.
func (n *Navigator) clamp(idx int) int {
	last := n.store.ChildCount(n.focus) - 1
	if idx > last {
		idx = last
	}

	if idx < 0 {
		idx = 0
	}

	return idx
}

// protected returns the nodes eviction must never touch: the focus and
// every ancestor on the stack.
func (n *Navigator) protected() map[tree.ID]bool {
	keep := map[tree.ID]bool{n.focus: true}
	for _, f := range n.stack {
		keep[f.node] = true
	}

	return keep
}

// Snapshot expands the focused node if needed and returns the render view.
// The returned error mirrors Snapshot.Err for callers that surface it on a
// status line.
func (n *Navigator) Snapshot(ctx context.Context) (Snapshot, error) {
	var expandErr error

	// A directory whose last listing failed is not retried automatically;
	// entering it again or refreshing does that. A failed attribute query is
	// no obstacle to listing.
	if node, ok := n.store.Get(n.focus); ok && !node.Expanded() && node.ListErr == nil {
		expandErr = n.builder.Expand(ctx, n.focus)
	}

	snap := Snapshot{
		Cursor: n.clamp(n.cursor),
		Sort:   n.sort,
		AtRoot: len(n.stack) == 0,
	}
	n.cursor = snap.Cursor

	node, ok := n.store.Get(n.focus)
	if !ok {
		return snap, expandErr
	}

	snap.FocusedPath = node.Path
	snap.TotalBytes = node.RecursiveBytes
	snap.TotalEntries = node.RecursiveEntries
	switch {
	case node.ListErr != nil:
		snap.Err = node.ListErr.Error()
	case node.Err != nil:
		snap.Err = node.Err.Error()
	}

	snap.Entries = n.store.View(n.focus, n.sort)
	for _, entry := range snap.Entries {
		if b := entry.Bytes(); b > snap.MaxBytes {
			snap.MaxBytes = b
		}

		if e := entry.Entries(); e > snap.MaxEntries {
			snap.MaxEntries = e
		}
	}

	return snap, expandErr
}
