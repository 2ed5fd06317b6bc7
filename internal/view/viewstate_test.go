package view

import (
	"testing"

	"github.com/tailpager/tailpager/internal/match"
	"github.com/tailpager/tailpager/internal/store"
	"github.com/tailpager/tailpager/internal/wrap"
)

// renderLines replays the same backward walk the renderer uses, returning the
// text of each painted sub-line's owning GlobalIndex, in top-to-bottom
// order, for assertions about viewport content phrased in terms of
// whole lines.
func renderLines(t *testing.T, v *ViewState, snap *store.Snapshot) []string {
	t.Helper()
	if v.Height <= 0 || snap.Empty() {
		return nil
	}
	idx, skip := v.anchor(snap)
	var collected []store.GlobalIndex
	remaining := v.Height
	first := true
	for idx >= snap.FirstIndex() && remaining > 0 {
		line, ok := snap.Get(idx)
		if !ok {
			break
		}
		if !v.matchesFilter(line) {
			idx--
			continue
		}
		w := wrap.Count(line, v.effectiveWidth())
		skipHere := 0
		if first {
			skipHere = skip
			first = false
		}
		take := w - skipHere
		if take > remaining {
			take = remaining
		}
		for k := 0; k < take; k++ {
			collected = append(collected, idx)
		}
		remaining -= take
		idx--
	}
	// reverse into top-to-bottom order
	out := make([]string, len(collected))
	for i, gi := range collected {
		line, _ := snap.Get(gi)
		out[len(collected)-1-i] = string(line)
	}
	return out
}

func appendLines(s *store.LineStore, lines ...string) {
	for _, l := range lines {
		s.Append([]byte(l))
	}
}

func TestAutoscrollFollowsTail(t *testing.T) {
	s := store.New(1<<20, 8)
	v := New()
	snap := s.View()
	v.SetSize(snap, 20, 3)
	snap.Close()

	appendLines(s, "L0", "L1", "L2", "L3", "L4", "L5", "L6", "L7", "L8", "L9")

	snap = s.View()
	defer snap.Close()
	got := renderLines(t, v, snap)
	want := []string{"L7", "L8", "L9"}
	assertLines(t, got, want)
}

func TestScrollUpThenDownIsIdentity(t *testing.T) {
	s := store.New(1<<20, 8)
	v := New()
	snap := s.View()
	v.SetSize(snap, 20, 3)
	snap.Close()
	appendLines(s, "L0", "L1", "L2", "L3", "L4", "L5", "L6", "L7", "L8", "L9")

	snap = s.View()
	v.ScrollUp(snap)
	got := renderLines(t, v, snap)
	assertLines(t, got, []string{"L6", "L7", "L8"})
	snap.Close()

	snap = s.View()
	v.ScrollDown(snap)
	got = renderLines(t, v, snap)
	assertLines(t, got, []string{"L7", "L8", "L9"})
	if !v.AutoScroll {
		t.Errorf("expected autoscroll re-enabled after returning to the tail")
	}
	snap.Close()
}

func TestFilterHidesNonMatching(t *testing.T) {
	s := store.New(1<<20, 8)
	v := New()
	snap := s.View()
	v.SetSize(snap, 20, 3)
	snap.Close()
	appendLines(s, "apple", "cherry", "apricot", "blueberry", "avocado")

	snap = s.View()
	v.SetFilter(snap, match.NewSubstring("a"))
	got := renderLines(t, v, snap)
	assertLines(t, got, []string{"apple", "apricot", "avocado"})
	snap.Close()
}

func TestJumpToOutOfRangeIsNoOp(t *testing.T) {
	s := store.New(1<<20, 8)
	v := New()
	snap := s.View()
	v.SetSize(snap, 20, 3)
	snap.Close()
	appendLines(s, "a", "b", "c", "d", "e")

	snap = s.View()
	before := *v
	v.JumpTo(snap, 99)
	snap.Close()

	if v.AutoScroll != before.AutoScroll || v.BottomLineIdx != before.BottomLineIdx {
		t.Errorf("out-of-range JumpTo mutated state: got %+v, want unchanged from %+v", v, before)
	}
}

func TestJumpToBoundaries(t *testing.T) {
	s := store.New(1<<20, 8)
	v := New()
	snap := s.View()
	v.SetSize(snap, 20, 3)
	snap.Close()
	appendLines(s, "a", "b", "c", "d", "e")

	snap = s.View()
	v.JumpTo(snap, 0)
	snap.Close()
	if !v.HasCursor || v.CursorIdx != 0 {
		t.Errorf("JumpTo(first_index) should succeed, cursor = %v/%d", v.HasCursor, v.CursorIdx)
	}

	snap = s.View()
	v.JumpTo(snap, snap.LinesCount()-1)
	snap.Close()
	if !v.HasCursor || v.CursorIdx != 4 {
		t.Errorf("JumpTo(lines_count-1) should succeed, cursor = %v/%d", v.HasCursor, v.CursorIdx)
	}
}

func TestToggleLineNumbersIsIdentity(t *testing.T) {
	s := store.New(1<<20, 8)
	v := New()
	snap := s.View()
	v.SetSize(snap, 20, 3)
	snap.Close()
	appendLines(s, "a", "b", "c")

	snap = s.View()
	before := *v
	v.ToggleLineNumbers(snap)
	v.ToggleLineNumbers(snap)
	snap.Close()

	if *v != before {
		t.Errorf("double ToggleLineNumbers is not identity: got %+v, want %+v", v, before)
	}
}

func TestEmptyStoreRendersNothing(t *testing.T) {
	s := store.New(1<<20, 8)
	v := New()
	snap := s.View()
	v.SetSize(snap, 20, 3)
	got := renderLines(t, v, snap)
	snap.Close()
	if len(got) != 0 {
		t.Errorf("expected nothing rendered for an empty store, got %v", got)
	}
}

func TestZeroHeightScrollIsNoOp(t *testing.T) {
	s := store.New(1<<20, 8)
	v := New()
	snap := s.View()
	v.SetSize(snap, 20, 0)
	snap.Close()
	appendLines(s, "a", "b", "c")

	snap = s.View()
	before := *v
	v.ScrollUp(snap)
	v.ScrollDown(snap)
	snap.Close()
	if *v != before {
		t.Errorf("zero-height scroll mutated state: got %+v, want %+v", v, before)
	}
}

func TestEvictionReenablesAutoscroll(t *testing.T) {
	s := store.New(16, 2) // tiny pages force eviction quickly
	v := New()
	snap := s.View()
	// One row, so normalize keeps the anchor on the jumped-to line 0.
	v.SetSize(snap, 20, 1)
	snap.Close()

	appendLines(s, "aaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbb")
	snap = s.View()
	v.JumpTo(snap, 0)
	snap.Close()
	if v.AutoScroll {
		t.Fatal("expected autoscroll off after JumpTo")
	}

	s.Append([]byte("cccccccccccccccc")) // evicts line 0's page
	v.ClampToBounds(s.FirstIndex())
	if !v.AutoScroll {
		t.Errorf("expected autoscroll re-enabled after the anchored line was evicted")
	}
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
