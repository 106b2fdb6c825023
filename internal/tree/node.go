package tree

import (
	"io/fs"

	"github.com/flatironinstitute/cephdu/internal/attr"
)

// ID identifies a node within a Store. Links between nodes are always IDs,
// never pointers, so the parent/child graph has a single owner.
type ID string

// Kind is the coarse entry type; only directories can be expanded.
type Kind uint8

const (
	// KindDirectory is an expandable directory entry.
	KindDirectory Kind = iota
	// KindFile is a regular file.
	KindFile
	// KindOther covers symlinks, devices and everything else.
	KindOther
)

// KindOf derives the entry kind from an lstat mode.
func KindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// String returns a short kind name for display and JSON output.
func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "dir"
	case KindFile:
		return "file"
	default:
		return "other"
	}
}

// FetchState tracks the attribute-query lifecycle of a node.
type FetchState uint8

const (
	// NotFetched means no attribute query has completed yet.
	NotFetched FetchState = iota
	// Fetched means the query completed; recursive numbers may still be
	// absent when the filesystem does not expose them.
	Fetched
	// FetchFailed means the attribute query failed; the reason is recorded
	// on the node.
	FetchFailed
)

// String returns a short state name for display and JSON output.
func (s FetchState) String() string {
	switch s {
	case Fetched:
		return "fetched"
	case FetchFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Node is one filesystem entry in the arena. All fields are guarded by the
// owning Store's lock; callers outside this package observe nodes only
// through Summary copies.
type Node struct {
	ID     ID
	Parent ID // empty for the root
	Path   string
	Name   string
	Kind   Kind

	RecursiveBytes   *uint64
	RecursiveEntries *uint64
	DirectBytes      uint64
	UID              uint32
	GID              uint32
	Origin           attr.Origin

	State FetchState
	Err   error // failure reason when State == FetchFailed

	// ListErr is the most recent failure to list this directory, kept apart
	// from the attribute state so a transient listing error does not taint
	// healthy attributes. Cleared by the next successful expansion.
	ListErr error

	// Children is nil while unexpanded and non-nil (possibly empty) once a
	// listing has been assembled.
	Children []ID

	// gen is bumped by collapse and refresh so that expansion results
	// completing afterwards are discarded instead of resurrecting the
	// subtree.
	gen uint64

	// lastVisit is the navigation step at which the node was last focused,
	// used by the staleness eviction policy.
	lastVisit uint64
}

// Expanded reports whether the node's children have been materialized.
func (n *Node) Expanded() bool { return n.Children != nil }

// setInfo copies an attribute query result onto the node.
func (n *Node) setInfo(info attr.Info) {
	n.RecursiveBytes = info.RecursiveBytes
	n.RecursiveEntries = info.RecursiveEntries
	n.DirectBytes = info.DirectBytes
	n.UID = info.UID
	n.GID = info.GID
	n.Origin = info.Origin
	n.State = Fetched
	n.Err = nil
}

// setFailed records a query failure without touching previously known data.
func (n *Node) setFailed(err error) {
	n.State = FetchFailed
	n.Err = err
}
