package controller

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tailpager/tailpager/internal/store"
	"github.com/tailpager/tailpager/internal/view"
)

func newTestController(width, height int) *Controller {
	s := store.New(1<<20, 8)
	v := view.New()
	snap := s.View()
	v.SetSize(snap, width, height)
	snap.Close()
	return New(s, v)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func specialKey(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

// A search executed while autoscroll is on moves the cursor to the last
// match but keeps anchoring to the tail.
func TestSearchHighlightsLastMatchUnderAutoscroll(t *testing.T) {
	c := newTestController(10, 6)
	for _, l := range []string{"x1", "hit", "x2", "hit", "x3", "x4"} {
		c.DrainLine([]byte(l))
	}

	c.HandleKey(runeKey(' ')) // SpaceMenu
	c.HandleKey(runeKey('s')) // enter Search
	for _, r := range "hit" {
		c.HandleKey(runeKey(r))
	}
	c.HandleKey(specialKey(tcell.KeyEnter))

	if !c.View.AutoScroll {
		t.Errorf("expected autoscroll to remain on after search")
	}
	if !c.View.HasCursor || c.View.CursorIdx != 3 {
		t.Errorf("expected cursor on GlobalIndex 3, got HasCursor=%v idx=%d", c.View.HasCursor, c.View.CursorIdx)
	}
	if c.Index.Count() != 2 {
		t.Errorf("MatchIndex count = %d, want 2", c.Index.Count())
	}
	rank, total := c.Index.RankAt(3)
	if rank != 2 || total != 2 {
		t.Errorf("RankAt(3) = (%d,%d), want (2,2)", rank, total)
	}
}

// An out-of-range jump leaves ViewState otherwise unchanged and raises a
// 2-second error banner that a later Tick clears.
func TestJumpToOutOfRangeShowsBanner(t *testing.T) {
	fakeNow := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newTestController(10, 3)
	c.SetClock(func() time.Time { return fakeNow })
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		c.DrainLine([]byte(l))
	}

	before := *c.View
	c.HandleKey(runeKey(' '))
	c.HandleKey(runeKey(':'))
	for _, r := range "99" {
		c.HandleKey(runeKey(r))
	}
	c.HandleKey(specialKey(tcell.KeyEnter))

	if c.View.BannerText == "" {
		t.Fatalf("expected an error banner after an out-of-range jump")
	}
	if c.View.AutoScroll != before.AutoScroll || c.View.BottomLineIdx != before.BottomLineIdx {
		t.Errorf("ViewState anchor mutated by an out-of-range jump")
	}

	fakeNow = fakeNow.Add(3 * time.Second)
	c.Tick()
	if c.View.BannerText != "" {
		t.Errorf("expected banner cleared after its 2s expiry passed")
	}
}

func TestRegexCompileErrorLeavesStateUnchanged(t *testing.T) {
	c := newTestController(10, 3)
	c.DrainLine([]byte("hello"))

	c.HandleKey(runeKey(' '))
	c.HandleKey(runeKey('r'))
	c.HandleKey(runeKey('('))
	c.HandleKey(specialKey(tcell.KeyEnter))

	if c.View.BannerText == "" {
		t.Errorf("expected an error banner for an invalid regex")
	}
	if c.View.SearchQuery != nil {
		t.Errorf("a failed regex compile must not install a search query")
	}
}

func TestQuitKey(t *testing.T) {
	c := newTestController(10, 3)
	c.HandleKey(specialKey(tcell.KeyCtrlQ))
	if !c.ShouldQuit() {
		t.Errorf("expected Ctrl-Q to request quit")
	}
}

func TestForwardsPrintableKeysToChild(t *testing.T) {
	c := newTestController(10, 3)
	var written []byte
	c.WriteChild = func(b byte) { written = append(written, b) }

	c.HandleKey(runeKey('g'))
	if string(written) != "g" {
		t.Errorf("expected 'g' forwarded to child, got %q", written)
	}
}

func TestProducerClosedSwallowsForwardedKeys(t *testing.T) {
	c := newTestController(10, 3)
	var written []byte
	c.WriteChild = func(b byte) { written = append(written, b) }

	c.HandleProducerClosed("exit status 1")
	c.HandleKey(runeKey('g'))

	if len(written) != 0 {
		t.Errorf("expected no bytes forwarded after ProducerClosed, got %q", written)
	}
	if c.Store.LinesCount() != 1 {
		t.Errorf("expected the synthetic exit-status line to be appended")
	}
}

func TestClearCommandResetsFilterAndSearch(t *testing.T) {
	c := newTestController(10, 3)
	c.DrainLine([]byte("apple"))
	c.DrainLine([]byte("banana"))

	c.HandleKey(runeKey(' '))
	c.HandleKey(runeKey('f'))
	for _, r := range "apple" {
		c.HandleKey(runeKey(r))
	}
	c.HandleKey(specialKey(tcell.KeyEnter))
	if c.View.Filter == nil {
		t.Fatalf("expected filter installed")
	}

	c.HandleKey(runeKey(' '))
	c.HandleKey(runeKey('c'))
	if c.View.Filter != nil || c.View.SearchQuery != nil {
		t.Errorf("expected clear command to reset filter and search")
	}
}
