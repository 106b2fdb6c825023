package tree

import "testing"

// grow materializes children under parent, marking it expanded, so collapse
// and eviction can be exercised without the builder.
func grow(s *Store, parent ID, names ...string) []ID {
	ids := make([]ID, 0, len(names))
	for _, name := range names {
		ids = append(ids, addChild(s, parent, name, u64(1), u64(1), Fetched, KindDirectory))
	}

	return ids
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/data", "data")

	node, ok := s.Get(root)
	if !ok {
		t.Fatal("root not found")
	}

	node.Name = "mutated"

	if again, _ := s.Get(root); again.Name != "data" {
		t.Errorf("mutation of a returned node leaked into the arena: %q", again.Name)
	}
}

func TestGetMissing(t *testing.T) {
	s := NewStore()

	if _, ok := s.Get(ID("01ARZ3NDEKTSV4RRFFQ69G5FAV")); ok {
		t.Error("unknown id reported present")
	}
}

func TestCollapseReleasesSubtree(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/data", "data")
	kids := grow(s, root, "a", "b")
	grand := grow(s, kids[0], "a1", "a2")

	if s.Len() != 5 {
		t.Fatalf("Len = %d, want 5", s.Len())
	}

	s.Collapse(kids[0])

	if _, ok := s.Get(grand[0]); ok {
		t.Error("grandchild survived collapse of its parent")
	}

	if node, _ := s.Get(kids[0]); node.Expanded() {
		t.Error("collapsed node still expanded")
	}

	s.Collapse(root)

	if s.Len() != 1 {
		t.Errorf("Len after root collapse = %d, want 1", s.Len())
	}

	if root != s.Root() {
		t.Error("root identity changed across collapse")
	}
}

func TestCollapseKeepsOwnAttributes(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/data", "data")
	id := grow(s, root, "a")[0]
	grow(s, id, "a1")

	s.Collapse(id)

	node, _ := s.Get(id)
	if node.RecursiveBytes == nil || *node.RecursiveBytes != 1 {
		t.Error("collapse discarded the node's own attributes")
	}
}

func TestEvictStale(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/data", "data")
	kids := grow(s, root, "a", "b")
	grow(s, kids[0], "a1")
	grow(s, kids[1], "b1")

	keep := map[ID]bool{root: true, kids[1]: true}

	// Age everything but the kept path well past the threshold.
	s.Touch(kids[1])
	for i := 0; i < 40; i++ {
		s.Touch(root)
	}

	s.EvictStale(keep, 32)

	if node, _ := s.Get(kids[0]); node.Expanded() {
		t.Error("stale subtree survived eviction")
	}

	if node, _ := s.Get(kids[1]); !node.Expanded() {
		t.Error("kept node was evicted")
	}

	if node, _ := s.Get(root); !node.Expanded() {
		t.Error("kept root was evicted")
	}
}

func TestEvictStaleSparesRecentlyVisited(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/data", "data")
	kids := grow(s, root, "a")
	grow(s, kids[0], "a1")

	s.Touch(kids[0])
	for i := 0; i < 10; i++ {
		s.Touch(root)
	}

	s.EvictStale(map[ID]bool{root: true}, 32)

	if node, _ := s.Get(kids[0]); !node.Expanded() {
		t.Error("recently visited subtree was evicted")
	}
}
