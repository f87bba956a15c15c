package graph

import (
	"errors"
	"strings"
	"testing"
)

// diamond returns the four-unit graph 1 → {2,3} → 4.
func diamond(t *testing.T) *Graph {
	t.Helper()
	g, err := Build([]Unit{
		{ID: "1", Title: "Foundations"},
		{ID: "2", Title: "Branch A", Dependencies: []string{"1"}},
		{ID: "3", Title: "Branch B", Dependencies: []string{"1"}},
		{ID: "4", Title: "Capstone", Dependencies: []string{"2", "3"}},
	}, nil)
	if err != nil {
		t.Fatalf("build diamond: %v", err)
	}
	return g
}

func wantStatuses(t *testing.T, g *Graph, completed map[string]bool, want map[string]Status) {
	t.Helper()
	got := Statuses(g, completed, "")
	for id, w := range want {
		if got[id] != w {
			t.Errorf("status of %q = %v, want %v", id, got[id], w)
		}
	}
}

func TestBuild_InitialStatuses(t *testing.T) {
	g := diamond(t)
	wantStatuses(t, g, nil, map[string]Status{
		"1": StatusAvailable,
		"2": StatusLocked,
		"3": StatusLocked,
		"4": StatusLocked,
	})
}

func TestBuild_PreservesInsertionOrder(t *testing.T) {
	g := diamond(t)
	want := []string{"1", "2", "3", "4"}
	got := g.UnitIDs()
	if len(got) != len(want) {
		t.Fatalf("got %d units, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unit[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuild_MaterializesLinks(t *testing.T) {
	g := diamond(t)
	links := g.Links()
	if len(links) != 4 {
		t.Fatalf("got %d links, want 4", len(links))
	}
	want := []Link{
		{Source: "1", Target: "2"},
		{Source: "1", Target: "3"},
		{Source: "2", Target: "4"},
		{Source: "3", Target: "4"},
	}
	for i, l := range want {
		if links[i] != l {
			t.Errorf("link[%d] = %v, want %v", i, links[i], l)
		}
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	_, err := Build([]Unit{
		{ID: "a", Title: "A"},
		{ID: "a", Title: "A again"},
	}, nil)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StructuralError, got %v", err)
	}
}

func TestBuild_DanglingDependency(t *testing.T) {
	_, err := Build([]Unit{
		{ID: "a", Title: "A", Dependencies: []string{"ghost"}},
	}, nil)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StructuralError, got %v", err)
	}
}

func TestBuild_ReservedSeparatorInID(t *testing.T) {
	_, err := Build([]Unit{
		{ID: "intro/basics", Title: "Basics"},
	}, nil)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StructuralError, got %v", err)
	}
	if !strings.Contains(serr.Error(), "intro/basics") {
		t.Errorf("violation does not name the offending id: %v", serr)
	}
}

func TestBuild_Cycle(t *testing.T) {
	_, err := Build([]Unit{
		{ID: "a", Title: "A", Dependencies: []string{"b"}},
		{ID: "b", Title: "B", Dependencies: []string{"a"}},
	}, nil)
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StructuralError, got %v", err)
	}
}

func TestStatuses_Deterministic(t *testing.T) {
	g := diamond(t)
	completed := map[string]bool{"1": true}
	first := Statuses(g, completed, "")
	second := Statuses(g, completed, "")
	for id, s := range first {
		if second[id] != s {
			t.Errorf("second run disagrees for %q: %v vs %v", id, s, second[id])
		}
	}
}

func TestStatuses_ActiveOverlay(t *testing.T) {
	g := diamond(t)
	got := Statuses(g, nil, "1")
	if got["1"] != StatusActive {
		t.Errorf("active unit status = %v, want Active", got["1"])
	}

	// Active never shadows Completed.
	got = Statuses(g, map[string]bool{"1": true}, "1")
	if got["1"] != StatusCompleted {
		t.Errorf("completed+active unit status = %v, want Completed", got["1"])
	}
}

func TestStatuses_EmptyDependencies(t *testing.T) {
	g, err := Build([]Unit{{ID: "solo", Title: "Solo"}}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := Statuses(g, nil, "")["solo"]; got != StatusAvailable {
		t.Errorf("zero-dep unit = %v, want Available", got)
	}
	if got := Statuses(g, map[string]bool{"solo": true}, "")["solo"]; got != StatusCompleted {
		t.Errorf("completed zero-dep unit = %v, want Completed", got)
	}
}

// Spec-level walkthrough of the diamond: completing 1 unlocks 2 and 3,
// completing 2 and 3 unlocks 4.
func TestComplete_UnlockSequence(t *testing.T) {
	g := diamond(t)
	completed := map[string]bool{}

	out, err := Complete(g, completed, "1")
	if err != nil {
		t.Fatalf("complete 1: %v", err)
	}
	if out.Next != "2" {
		t.Errorf("next after 1 = %q, want %q", out.Next, "2")
	}
	wantStatuses(t, g, completed, map[string]Status{
		"1": StatusCompleted,
		"2": StatusAvailable,
		"3": StatusAvailable,
		"4": StatusLocked,
	})

	if _, err := Complete(g, completed, "2"); err != nil {
		t.Fatalf("complete 2: %v", err)
	}
	wantStatuses(t, g, completed, map[string]Status{"4": StatusLocked})

	out, err = Complete(g, completed, "3")
	if err != nil {
		t.Fatalf("complete 3: %v", err)
	}
	if out.Next != "4" {
		t.Errorf("next after 3 = %q, want %q", out.Next, "4")
	}
	wantStatuses(t, g, completed, map[string]Status{"4": StatusAvailable})
}

func TestComplete_NotFound(t *testing.T) {
	g := diamond(t)
	completed := map[string]bool{"1": true}
	g.Resolve(completed, "")
	before := Statuses(g, completed, "")

	_, err := Complete(g, completed, "99")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(completed) != 1 {
		t.Errorf("completed-set changed: %v", completed)
	}
	after := Statuses(g, completed, "")
	for id, s := range before {
		if after[id] != s {
			t.Errorf("status of %q changed: %v → %v", id, s, after[id])
		}
	}
}

func TestComplete_Idempotent(t *testing.T) {
	g := diamond(t)
	completed := map[string]bool{}

	first, err := Complete(g, completed, "1")
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	second, err := Complete(g, completed, "1")
	if err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if !second.AlreadyDone {
		t.Error("repeat completion not flagged AlreadyDone")
	}
	if second.Next != first.Next {
		t.Errorf("repeat next = %q, want %q", second.Next, first.Next)
	}
	if len(completed) != 1 {
		t.Errorf("completed-set size = %d, want 1", len(completed))
	}
}

func TestComplete_LeafDetection(t *testing.T) {
	g := diamond(t)
	completed := map[string]bool{"1": true, "2": true, "3": true}
	g.Resolve(completed, "")

	out, err := Complete(g, completed, "4")
	if err != nil {
		t.Fatalf("complete 4: %v", err)
	}
	if !out.Leaf {
		t.Error("unit 4 has no dependents, expected Leaf")
	}
	if out.Next != "" {
		t.Errorf("next = %q, want none", out.Next)
	}

	completed = map[string]bool{}
	g2 := diamond(t)
	out, err = Complete(g2, completed, "1")
	if err != nil {
		t.Fatalf("complete 1: %v", err)
	}
	if out.Leaf {
		t.Error("unit 1 has dependents, expected not Leaf")
	}
}

func TestExpand_AppendsUnitsAndEdges(t *testing.T) {
	g, err := Build([]Unit{{ID: "1", Title: "Start"}}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	completed := map[string]bool{"1": true}
	g.Resolve(completed, "")

	ids, err := Expand(g, completed, "1", []Draft{
		{Title: "A"},
		{Title: "B"},
	})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d new ids, want 2", len(ids))
	}
	for _, id := range ids {
		u, ok := g.Unit(id)
		if !ok {
			t.Fatalf("new unit %q missing", id)
		}
		if len(u.Dependencies) != 1 || u.Dependencies[0] != "1" {
			t.Errorf("unit %q deps = %v, want [1]", id, u.Dependencies)
		}
		if u.Status != StatusAvailable {
			t.Errorf("unit %q status = %v, want Available", id, u.Status)
		}
	}
	if len(g.Links()) != 2 {
		t.Errorf("got %d links, want 2", len(g.Links()))
	}
}

func TestExpand_RepeatedExpansionsNeverCollide(t *testing.T) {
	g, err := Build([]Unit{{ID: "1", Title: "Start"}}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	completed := map[string]bool{"1": true}

	seen := map[string]bool{"1": true}
	for round := 0; round < 3; round++ {
		ids, err := Expand(g, completed, "1", []Draft{{Title: "X"}, {Title: "Y"}})
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		for _, id := range ids {
			if seen[id] {
				t.Errorf("round %d minted colliding id %q", round, id)
			}
			seen[id] = true
		}
	}
	if g.Len() != 7 {
		t.Errorf("graph size = %d, want 7", g.Len())
	}
}

func TestExpand_EmptySuggestions(t *testing.T) {
	g := diamond(t)
	completed := map[string]bool{"1": true}
	before := g.Len()

	_, err := Expand(g, completed, "1", nil)
	if !errors.Is(err, ErrNoSuggestions) {
		t.Fatalf("expected ErrNoSuggestions, got %v", err)
	}
	if g.Len() != before {
		t.Errorf("graph mutated on empty suggestions: %d units, want %d", g.Len(), before)
	}
}

func TestExpand_ParentNotCompleted(t *testing.T) {
	g := diamond(t)
	before := g.Len()

	_, err := Expand(g, map[string]bool{}, "1", []Draft{{Title: "A"}})
	if !errors.Is(err, ErrParentNotCompleted) {
		t.Fatalf("expected ErrParentNotCompleted, got %v", err)
	}
	if g.Len() != before {
		t.Errorf("graph mutated on rejected expansion: %d units, want %d", g.Len(), before)
	}
}

func TestExpand_UnknownParent(t *testing.T) {
	g := diamond(t)
	_, err := Expand(g, nil, "ghost", []Draft{{Title: "A"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIsLeaf(t *testing.T) {
	g := diamond(t)
	tests := []struct {
		id   string
		want bool
	}{
		{"1", false},
		{"2", false},
		{"3", false},
		{"4", true},
	}
	for _, tt := range tests {
		if got := g.IsLeaf(tt.id); got != tt.want {
			t.Errorf("IsLeaf(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	g := diamond(t)
	done, total := g.Progress(map[string]bool{"1": true, "3": true})
	if done != 2 || total != 4 {
		t.Errorf("progress = %d/%d, want 2/4", done, total)
	}
}
