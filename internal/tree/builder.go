package tree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/flatironinstitute/cephdu/internal/attr"
)

// DefaultWorkers bounds how many per-child attribute queries run in
// parallel during one expansion.
const DefaultWorkers = 16

// ExpandError reports that a directory itself could not be listed. The
// failure is also recorded on the node; only that subtree is blocked.
type ExpandError struct {
	Path string
	Err  error
}

func (e *ExpandError) Error() string {
	return fmt.Sprintf("listing %q: %v", e.Path, e.Err)
}

func (e *ExpandError) Unwrap() error { return e.Err }

// logger provides conditional debug output on stderr, which stays usable
// while the terminal UI owns stdout.
type logger struct {
	enabled bool
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Builder materializes directory levels into the store: one listing call
// per expansion, one attribute query per child.
type Builder struct {
	store       *Store
	source      attr.Source
	workers     int
	approximate bool
	log         logger
}

// NewBuilder creates a Builder. workers <= 0 selects DefaultWorkers.
// When approximate is set, directories without native recursive attributes
// get a one-level approximation instead of a blank.
func NewBuilder(store *Store, source attr.Source, workers int, approximate bool) *Builder {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Builder{
		store:       store,
		source:      source,
		workers:     workers,
		approximate: approximate,
	}
}

// EnableDebug turns on debug output for subsequent operations.
func (b *Builder) EnableDebug() {
	b.log.enabled = true
}

// Root resolves path and installs it as the store's root node. This is the
// one place where failure is fatal to the session; everything after it is
// recorded per node instead.
func (b *Builder) Root(ctx context.Context, path string) (ID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", abs, err)
	}

	stat, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("accessing %q: %w", resolved, err)
	}

	if !stat.IsDir() {
		return "", fmt.Errorf("path %q is not a directory", resolved)
	}

	id := b.store.SetRoot(resolved, filepath.Base(resolved))

	info, queryErr := b.query(ctx, resolved, KindDirectory)

	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	node := b.store.nodes[id]
	if queryErr != nil {
		node.setFailed(queryErr)
	} else {
		node.setInfo(info)
	}

	return id, nil
}

// Expand materializes the children of id. It is an idempotent no-op when
// the node is already expanded. A single unreadable child never aborts its
// siblings; only a failure to list the directory itself returns an
// ExpandError.
func (b *Builder) Expand(ctx context.Context, id ID) error {
	b.store.mu.Lock()

	node, ok := b.store.nodes[id]
	if !ok {
		b.store.mu.Unlock()

		return fmt.Errorf("expand: unknown node %q", id)
	}

	if node.Kind != KindDirectory {
		b.store.mu.Unlock()

		return fmt.Errorf("expand: %q is not a directory", node.Path)
	}

	if node.Children != nil {
		b.store.mu.Unlock()

		return nil
	}

	path, gen := node.Path, node.gen
	b.store.mu.Unlock()

	entries, err := os.ReadDir(path)
	if err != nil {
		b.log.printf("[debug]: error listing directory %s: %v\n", path, err)

		b.store.mu.Lock()
		if node, ok := b.store.nodes[id]; ok && node.gen == gen {
			node.ListErr = err
		}
		b.store.mu.Unlock()

		return &ExpandError{Path: path, Err: err}
	}

	b.log.printf("[debug]: expanding %s: %d entries\n", path, len(entries))

	// Queries are independent metadata reads, so they fan out across a
	// bounded pool. The semaphore is taken before the goroutine starts, so
	// the pool bounds live goroutines, not just in-flight queries. Each
	// goroutine writes its own slot, keeping assembly in listing order
	// regardless of completion order.
	results := make([]childResult, len(entries))
	sem := make(chan struct{}, b.workers)

	var wg sync.WaitGroup

	for i, entry := range entries {
		sem <- struct{}{}

		wg.Add(1)

		go func(i int, entry os.DirEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = b.queryChild(ctx, filepath.Join(path, entry.Name()), entry)
		}(i, entry)
	}

	wg.Wait()

	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	node, ok = b.store.nodes[id]
	if !ok || node.gen != gen || node.Children != nil {
		// The node was collapsed, refreshed or released while the queries
		// were in flight; the results no longer have a home.
		return nil
	}

	children := make([]ID, 0, len(results))

	for _, res := range results {
		child := &Node{
			ID:     b.store.newID(),
			Parent: id,
			Path:   res.path,
			Name:   res.name,
			Kind:   res.kind,
		}
		if res.err != nil {
			child.setFailed(res.err)
		} else {
			child.setInfo(res.info)
		}

		b.store.nodes[child.ID] = child
		children = append(children, child.ID)
	}

	node.Children = children
	// A successful listing supersedes any earlier failure to list.
	node.ListErr = nil

	return nil
}

// Refresh discards the materialized children of id and expands it again.
// This is the user-driven retry path; nothing is re-queried automatically.
func (b *Builder) Refresh(ctx context.Context, id ID) error {
	b.store.Collapse(id)

	return b.Expand(ctx, id)
}

type childResult struct {
	path string
	name string
	kind Kind
	info attr.Info
	err  error
}

// queryChild fetches one child's attributes. The result is always stored,
// failed or not, so the listing stays complete.
func (b *Builder) queryChild(ctx context.Context, path string, entry os.DirEntry) childResult {
	res := childResult{path: path, name: entry.Name(), kind: KindOf(entry.Type())}

	info, err := b.query(ctx, path, res.kind)
	if err != nil {
		b.log.printf("[debug]: error querying attributes of %s: %v\n", path, err)
		res.err = err

		return res
	}

	if info.Mode != 0 {
		res.kind = KindOf(info.Mode)
	}

	res.info = info

	return res
}

// query applies the degraded-mode policy around a raw source query: a
// directory without native attributes is either approximated (opt-in) or
// reported as a visible gap, never as a failure.
func (b *Builder) query(ctx context.Context, path string, kind Kind) (attr.Info, error) {
	info, err := b.source.Query(ctx, path)
	if err == nil {
		return info, nil
	}

	var attrErr *attr.Error
	if !errors.As(err, &attrErr) || attrErr.Kind != attr.ErrUnsupported || kind != KindDirectory {
		return attr.Info{}, err
	}

	if b.approximate {
		if approx, approxErr := attr.Approximate(ctx, path); approxErr == nil {
			return approx, nil
		}
	}

	// Keep the stat-derived fields the source managed to read; only the
	// recursive numbers are unavailable.
	info.RecursiveBytes = nil
	info.RecursiveEntries = nil
	info.Origin = attr.OriginNone

	return info, nil
}
