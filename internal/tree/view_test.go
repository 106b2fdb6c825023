package tree

import (
	"reflect"
	"testing"
)

func u64(v uint64) *uint64 { return &v }

// addChild inserts a fully-specified child node, bypassing the builder, so
// projector behavior can be tested without a filesystem.
func addChild(s *Store, parent ID, name string, bytes, entries *uint64, state FetchState, kind Kind) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := &Node{
		ID:               s.newID(),
		Parent:           parent,
		Path:             "/root/" + name,
		Name:             name,
		Kind:             kind,
		RecursiveBytes:   bytes,
		RecursiveEntries: entries,
		State:            state,
	}
	s.nodes[node.ID] = node

	p := s.nodes[parent]
	if p.Children == nil {
		p.Children = []ID{}
	}

	p.Children = append(p.Children, node.ID)

	return node.ID
}

func names(view []Summary) []string {
	out := make([]string, len(view))
	for i, s := range view {
		out[i] = s.Name
	}

	return out
}

func TestViewBytesDescending(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/root", "root")
	addChild(s, root, "a", u64(100), u64(10), Fetched, KindDirectory)
	addChild(s, root, "b", u64(50), nil, Fetched, KindFile)
	addChild(s, root, "c", u64(200), u64(20), Fetched, KindDirectory)

	got := names(s.View(root, Sort{Field: SortByBytes, Descending: true}))
	want := []string{"c", "a", "b"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("view order = %v, want %v", got, want)
	}
}

func TestViewInterleavesKinds(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/root", "root")
	addChild(s, root, "small-dir", u64(10), u64(1), Fetched, KindDirectory)
	addChild(s, root, "big-file", u64(500), nil, Fetched, KindFile)

	got := names(s.View(root, Sort{Field: SortByBytes, Descending: true}))
	want := []string{"big-file", "small-dir"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("view order = %v, want %v: files and dirs must interleave", got, want)
	}
}

func TestViewFailedAlwaysLast(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/root", "root")
	addChild(s, root, "a", u64(100), u64(10), Fetched, KindDirectory)
	failed := addChild(s, root, "zz-big", u64(9999), u64(9999), FetchFailed, KindDirectory)
	addChild(s, root, "b", u64(50), u64(5), Fetched, KindFile)

	s.mu.Lock()
	s.nodes[failed].RecursiveBytes = nil
	s.mu.Unlock()

	for _, field := range []SortField{SortByBytes, SortByEntries, SortByName} {
		for _, desc := range []bool{false, true} {
			view := s.View(root, Sort{Field: field, Descending: desc})
			if view[len(view)-1].Name != "zz-big" {
				t.Errorf("sort %v/%v: failed entry not last: %v", field, desc, names(view))
			}
		}
	}
}

func TestViewNameTiebreak(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/root", "root")
	addChild(s, root, "beta", u64(100), u64(1), Fetched, KindFile)
	addChild(s, root, "alpha", u64(100), u64(1), Fetched, KindFile)

	got := names(s.View(root, Sort{Field: SortByBytes, Descending: true}))
	want := []string{"alpha", "beta"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("tie order = %v, want %v", got, want)
	}
}

func TestViewTotalOrder(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/root", "root")
	addChild(s, root, "a", u64(100), u64(5), Fetched, KindDirectory)
	addChild(s, root, "b", u64(100), u64(7), Fetched, KindFile)
	addChild(s, root, "c", nil, nil, Fetched, KindDirectory)
	addChild(s, root, "d", u64(3), u64(7), FetchFailed, KindOther)

	for _, field := range []SortField{SortByBytes, SortByEntries, SortByName} {
		for _, desc := range []bool{false, true} {
			order := Sort{Field: field, Descending: desc}
			view := s.View(root, order)

			// Exactly one of less(a,b), less(b,a) for distinct entries.
			for i := range view {
				for j := range view {
					if i == j {
						continue
					}

					ab := less(view[i], view[j], order)
					ba := less(view[j], view[i], order)
					if ab == ba {
						t.Fatalf("sort %v/%v: not a total order for %q vs %q",
							field, desc, view[i].Name, view[j].Name)
					}
				}
			}

			// Re-sorting unchanged data is stable.
			again := s.View(root, order)
			if !reflect.DeepEqual(names(view), names(again)) {
				t.Errorf("sort %v/%v: repeated view differs: %v vs %v",
					field, desc, names(view), names(again))
			}
		}
	}
}

func TestViewUnexpanded(t *testing.T) {
	s := NewStore()
	root := s.SetRoot("/root", "root")

	if view := s.View(root, DefaultSort()); view != nil {
		t.Errorf("view of unexpanded node = %v, want nil", view)
	}
}

func TestSortToggled(t *testing.T) {
	start := Sort{Field: SortByBytes, Descending: true}

	flipped := start.Toggled(SortByBytes, true)
	if flipped.Descending {
		t.Error("repeat on same field must flip direction")
	}

	other := start.Toggled(SortByName, false)
	if other.Field != SortByName || other.Descending {
		t.Errorf("new field = %+v, want name/ascending", other)
	}
}

func TestParseSortField(t *testing.T) {
	tests := []struct {
		in   string
		want SortField
		ok   bool
	}{
		{"bytes", SortByBytes, true},
		{"SIZE", SortByBytes, true},
		{"entries", SortByEntries, true},
		{"name", SortByName, true},
		{"owner", SortByOwner, true},
		{"mtime", SortByBytes, false},
	}

	for _, tt := range tests {
		got, ok := ParseSortField(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSortField(%q) = %v/%v, want %v/%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
