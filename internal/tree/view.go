package tree

import (
	"sort"
	"strings"

	"github.com/flatironinstitute/cephdu/internal/attr"
)

// SortField selects the attribute a view is ordered by.
type SortField uint8

const (
	// SortByBytes orders by recursive byte count.
	SortByBytes SortField = iota
	// SortByEntries orders by recursive entry count.
	SortByEntries
	// SortByName orders by entry name, case-sensitive byte order.
	SortByName
	// SortByOwner orders by owner and group names.
	SortByOwner
)

// String returns the flag/config spelling of the field.
func (f SortField) String() string {
	switch f {
	case SortByEntries:
		return "entries"
	case SortByName:
		return "name"
	case SortByOwner:
		return "owner"
	default:
		return "bytes"
	}
}

// ParseSortField maps a flag/config spelling to a SortField.
func ParseSortField(name string) (SortField, bool) {
	switch strings.ToLower(name) {
	case "bytes", "size":
		return SortByBytes, true
	case "entries", "count", "files":
		return SortByEntries, true
	case "name":
		return SortByName, true
	case "owner":
		return SortByOwner, true
	default:
		return SortByBytes, false
	}
}

// Sort is a complete ordering choice.
type Sort struct {
	Field      SortField
	Descending bool
}

// DefaultSort is what the browser opens with: biggest things first.
func DefaultSort() Sort {
	return Sort{Field: SortByBytes, Descending: true}
}

// Toggled returns the sort a repeated keypress on the same field produces:
// same field flips direction, a new field starts from its preferred
// direction.
func (s Sort) Toggled(field SortField, preferDescending bool) Sort {
	if s.Field == field {
		return Sort{Field: field, Descending: !s.Descending}
	}

	return Sort{Field: field, Descending: preferDescending}
}

// Summary is the immutable per-entry projection handed to presentation
// layers and one-shot formatters.
type Summary struct {
	ID   ID     `json:"-"`
	Name string `json:"name"`
	Kind Kind   `json:"-"`

	RecursiveBytes   *uint64     `json:"recursive_bytes"`
	RecursiveEntries *uint64     `json:"recursive_entries"`
	DirectBytes      uint64      `json:"direct_bytes"`
	UID              uint32      `json:"uid"`
	GID              uint32      `json:"gid"`
	Origin           attr.Origin `json:"-"`
	State            FetchState  `json:"-"`

	// Reason is the recorded failure, empty for healthy entries.
	Reason string `json:"reason,omitempty"`
}

// Failed reports whether the entry's query or listing failed.
func (s Summary) Failed() bool { return s.State == FetchFailed }

// Bytes returns the sortable byte count, zero when unknown.
func (s Summary) Bytes() uint64 {
	if s.RecursiveBytes != nil {
		return *s.RecursiveBytes
	}

	return 0
}

// Entries returns the sortable entry count, zero when unknown.
func (s Summary) Entries() uint64 {
	if s.RecursiveEntries != nil {
		return *s.RecursiveEntries
	}

	return 0
}

// summarize copies the display-relevant fields of a node.
func summarize(n *Node) Summary {
	s := Summary{
		ID:               n.ID,
		Name:             n.Name,
		Kind:             n.Kind,
		RecursiveBytes:   n.RecursiveBytes,
		RecursiveEntries: n.RecursiveEntries,
		DirectBytes:      n.DirectBytes,
		UID:              n.UID,
		GID:              n.GID,
		Origin:           n.Origin,
		State:            n.State,
	}
	switch {
	case n.Err != nil:
		s.Reason = n.Err.Error()
	case n.ListErr != nil:
		s.Reason = n.ListErr.Error()
	}

	return s
}

// View projects the children of id into display order. Pure and recomputed
// per call; nothing is maintained incrementally. Failed entries sort last
// under every key so measured entries stay together, and ties always break
// on name, which makes the order total and repeat calls stable.
func (s *Store) View(id ID, order Sort) []Summary {
	s.mu.Lock()

	node, ok := s.nodes[id]
	if !ok || node.Children == nil {
		s.mu.Unlock()

		return nil
	}

	summaries := make([]Summary, 0, len(node.Children))
	for _, childID := range node.Children {
		if child, ok := s.nodes[childID]; ok {
			summaries = append(summaries, summarize(child))
		}
	}
	s.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		return less(summaries[i], summaries[j], order)
	})

	return summaries
}

func less(a, b Summary, order Sort) bool {
	if a.Failed() != b.Failed() {
		return b.Failed()
	}

	cmp := compareField(a, b, order.Field)
	if order.Descending {
		cmp = -cmp
	}

	if cmp != 0 {
		return cmp < 0
	}

	return a.Name < b.Name
}

func compareField(a, b Summary, field SortField) int {
	switch field {
	case SortByEntries:
		return compareUint(a.Entries(), b.Entries())
	case SortByName:
		return strings.Compare(a.Name, b.Name)
	case SortByOwner:
		if cmp := strings.Compare(attr.UserName(a.UID), attr.UserName(b.UID)); cmp != 0 {
			return cmp
		}

		return strings.Compare(attr.GroupName(a.GID), attr.GroupName(b.GID))
	default:
		return compareUint(a.Bytes(), b.Bytes())
	}
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
