package attr

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/charlievieth/fastwalk"
)

// Approximate computes a shallow substitute for the recursive attributes of
// a directory by summing the direct sizes of its immediate children. Used as
// an opt-in fallback when the filesystem does not expose the attributes; the
// result is flagged OriginApproximated so it is never mistaken for a real
// subtree total.
func Approximate(ctx context.Context, path string) (Info, error) {
	stat, err := os.Lstat(path)
	if err != nil {
		return Info{}, Classify(path, err)
	}

	info := Info{
		DirectBytes: uint64(stat.Size()), //nolint:gosec // Sizes are non-negative
		Mode:        stat.Mode(),
	}
	if sys, ok := stat.Sys().(*syscall.Stat_t); ok {
		info.UID = sys.Uid
		info.GID = sys.Gid
	}

	var (
		mu      sync.Mutex
		bytes   uint64
		entries uint64
	)

	root := filepath.Clean(path)
	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	// fastwalk invokes the callback from multiple goroutines; the counters
	// are merged under a mutex. Descent stops at the first level, so every
	// callback beyond the root sees an immediate child.
	walkErr := fastwalk.Walk(conf, root, func(child string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Unreadable children don't abort the approximation
		}

		if child == root {
			return nil
		}

		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		fileInfo, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Skip entries that vanish mid-walk
		}

		mu.Lock()
		entries++
		bytes += uint64(fileInfo.Size()) //nolint:gosec // Sizes are non-negative
		mu.Unlock()

		if d.IsDir() {
			return filepath.SkipDir
		}

		return nil
	})
	if walkErr != nil {
		return info, Classify(path, walkErr)
	}

	info.RecursiveBytes = &bytes
	info.RecursiveEntries = &entries
	info.Origin = OriginApproximated

	return info, nil
}
