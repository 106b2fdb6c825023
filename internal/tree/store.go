package tree

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store is the arena owning every Node. All structural mutation (creation,
// collapse, eviction, expansion commits) is serialized by one lock, which is
// the mutual exclusion the expansion engine relies on.
type Store struct {
	mu      sync.Mutex
	nodes   map[ID]*Node
	root    ID
	entropy *ulid.MonotonicEntropy
	step    uint64
}

// NewStore creates an empty arena.
func NewStore() *Store {
	return &Store{
		nodes:   make(map[ID]*Node),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// newID mints a node identifier. Callers must hold s.mu; the monotonic
// entropy source is not safe for concurrent use.
func (s *Store) newID() ID {
	return ID(ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String())
}

// Root returns the root node's identifier, empty until SetRoot.
func (s *Store) Root() ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.root
}

// SetRoot installs the root node and returns its identifier.
func (s *Store) SetRoot(path, name string) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := &Node{
		ID:   s.newID(),
		Path: path,
		Name: name,
		Kind: KindDirectory,
	}
	s.nodes[node.ID] = node
	s.root = node.ID

	return node.ID
}

// Get returns a copy of the node, so callers never observe concurrent
// mutation. The copy's Children slice is shared but never written in place.
func (s *Store) Get(id ID) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}

	return *node, true
}

// Len reports how many nodes are resident.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.nodes)
}

// ChildCount returns the number of materialized children of id.
func (s *Store) ChildCount(id ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node, ok := s.nodes[id]; ok {
		return len(node.Children)
	}

	return 0
}

// Collapse releases the subtree below id and marks it unexpanded. The node's
// own attributes survive, so a later re-expansion starts from the same
// totals.
func (s *Store) Collapse(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collapseLocked(id)
}

func (s *Store) collapseLocked(id ID) {
	node, ok := s.nodes[id]
	if !ok || node.Children == nil {
		return
	}

	for _, child := range node.Children {
		s.releaseLocked(child)
	}

	node.Children = nil
	node.gen++
}

// releaseLocked removes id and its whole subtree from the arena.
func (s *Store) releaseLocked(id ID) {
	node, ok := s.nodes[id]
	if !ok {
		return
	}

	for _, child := range node.Children {
		s.releaseLocked(child)
	}

	delete(s.nodes, id)
}

// Touch records that id is focused at the current navigation step and
// advances the step counter.
func (s *Store) Touch(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.step++
	if node, ok := s.nodes[id]; ok {
		node.lastVisit = s.step
	}
}

// EvictStale collapses expanded nodes that have not been focused within the
// last maxAge navigation steps. Nodes in keep (the focus node and its
// ancestors) are never evicted, so the path under the user stays resident.
func (s *Store) EvictStale(keep map[ID]bool, maxAge uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Collect first: collapseLocked mutates the map we'd be ranging over.
	var stale []ID

	for id, node := range s.nodes {
		if node.Children == nil || keep[id] {
			continue
		}

		if s.step-node.lastVisit > maxAge {
			stale = append(stale, id)
		}
	}

	for _, id := range stale {
		// The subtree of an earlier victim may already be gone.
		if _, ok := s.nodes[id]; ok {
			s.collapseLocked(id)
		}
	}
}
