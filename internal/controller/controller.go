// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/controller/controller.go
// Summary: Controller is the modal input state machine that turns keystrokes
// and producer events into LineStore/ViewState/MatchIndex mutations, and
// owns the command builder.

package controller

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tailpager/tailpager/internal/match"
	"github.com/tailpager/tailpager/internal/matchindex"
	"github.com/tailpager/tailpager/internal/store"
	"github.com/tailpager/tailpager/internal/view"
)

// Mode is the controller's coarse modal state.
type Mode int

const (
	Normal Mode = iota
	SpaceMenu
	CommandEntry
)

// CommandKind names which command is being entered in CommandEntry mode.
type CommandKind int

const (
	NoCommand CommandKind = iota
	Search
	RegexSearch
	Ignore
	Filter
	JumpTo
)

// ErrorBannerDuration is how long an input-error banner stays visible.
const ErrorBannerDuration = 2 * time.Second

// Controller owns ViewState, MatchIndex and the command builder. It takes
// the LineStore's write lock (through Append) during drain and a read
// snapshot during filter/search (re)evaluation.
type Controller struct {
	Store *store.LineStore
	View  *view.ViewState
	Index *matchindex.MatchIndex

	mode    Mode
	kind    CommandKind
	buffer  []rune
	menu    bool // SpaceMenu overlay is transient and layers atop Normal

	// WriteChild forwards a single byte to the child's stdin; a nil
	// WriteChild makes forwarding a no-op.
	WriteChild func(b byte)
	// ChildExited, once true, swallows forwarded keys instead of writing
	// them. Set when the producer channel closes; never reset.
	ChildExited bool

	quit bool
	now  func() time.Time
}

// New builds a Controller over an already-sized LineStore/ViewState pair.
func New(s *store.LineStore, v *view.ViewState) *Controller {
	return &Controller{
		Store: s,
		View:  v,
		Index: matchindex.New(),
		now:   time.Now,
	}
}

// SetClock overrides the time source (tests only).
func (c *Controller) SetClock(now func() time.Time) { c.now = now }

// ShouldQuit reports whether Ctrl-Q or SpaceMenu's quit key has fired.
func (c *Controller) ShouldQuit() bool { return c.quit }

// Mode reports the current modal state, for the status bar and the menu
// overlay. The SpaceMenu overlay layers atop Normal, so it wins over the
// stored mode unless a command is being entered.
func (c *Controller) Mode() Mode {
	if c.mode == CommandEntry {
		return CommandEntry
	}
	if c.menu {
		return SpaceMenu
	}
	return Normal
}

// CommandBuffer reports the in-progress command text, for the status bar.
func (c *Controller) CommandBuffer() string { return string(c.buffer) }

// Kind reports the command kind currently being entered, for the status bar.
func (c *Controller) Kind() CommandKind { return c.kind }

// DrainLine appends a freshly produced line to the LineStore and applies
// every append-time rule: MatchIndex insertion, cursor-follow under
// autoscroll, and eviction fallout if the append recycled a page.
func (c *Controller) DrainLine(line []byte) {
	firstBefore := c.Store.FirstIndex()
	idx := c.Store.Append(line)

	matched := c.Index.Query() != nil && match.Matches(c.Index.Query(), line)
	c.Index.OnAppend(idx, line)
	c.View.OnAppend(idx, matched)

	if newFirst := c.Store.FirstIndex(); newFirst != firstBefore {
		c.Index.OnEvict(newFirst)
		c.View.ClampToBounds(newFirst)
	}
}

// Tick clears an expired error banner.
func (c *Controller) Tick() {
	c.View.ClearExpiredBanner(c.now())
}

// HandleKey dispatches a key event per the current mode.
func (c *Controller) HandleKey(ev *tcell.EventKey) {
	switch {
	case c.mode == CommandEntry:
		c.handleCommandEntry(ev)
	case c.menu:
		c.handleSpaceMenu(ev)
	default:
		c.handleNormal(ev)
	}
}

func (c *Controller) handleNormal(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlQ {
		c.quit = true
		return
	}
	snap := c.Store.View()
	defer snap.Close()

	switch {
	case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
		c.menu = true
		return
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'j':
		c.View.ScrollDown(snap)
		return
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'k':
		c.View.ScrollUp(snap)
		return
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'n':
		c.jumpToAdjacentMatch(snap, true)
		return
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'N':
		c.jumpToAdjacentMatch(snap, false)
		return
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'a':
		c.View.ToggleAutoscroll(snap)
		return
	}

	c.forwardToChild(ev)
}

// jumpToAdjacentMatch implements 'n'/'N': jump relative to the cursor if
// set, else relative to the current bottom anchor.
func (c *Controller) jumpToAdjacentMatch(snap *store.Snapshot, forward bool) {
	anchor := c.View.BottomLineIdx
	if c.View.HasCursor {
		anchor = c.View.CursorIdx
	}
	var target store.GlobalIndex
	var ok bool
	if forward {
		target, ok = c.Index.NextAfter(anchor)
	} else {
		target, ok = c.Index.PrevBefore(anchor)
	}
	if !ok {
		return
	}
	line, gotLine := snap.Get(target)
	if !gotLine {
		return
	}
	r, _ := c.Index.Query().IsMatch(line)
	c.View.JumpToWithRange(snap, target, r)
}

func (c *Controller) forwardToChild(ev *tcell.EventKey) {
	if c.ChildExited || c.WriteChild == nil {
		return
	}
	if ev.Key() == tcell.KeyRune {
		c.WriteChild(byte(ev.Rune()))
		return
	}
	// Non-printable special keys (arrows, enter, backspace in Normal mode)
	// are out of this component's specified keymap and are dropped rather
	// than guessed at.
}

func (c *Controller) handleSpaceMenu(ev *tcell.EventKey) {
	if ev.Key() != tcell.KeyRune {
		if ev.Key() == tcell.KeyEsc {
			c.menu = false
		}
		return
	}
	switch ev.Rune() {
	case 's':
		c.enterCommand(Search)
	case 'r':
		c.enterCommand(RegexSearch)
	case 'i':
		c.enterCommand(Ignore)
	case 'f':
		c.enterCommand(Filter)
	case ':':
		c.enterCommand(JumpTo)
	case 'n':
		snap := c.Store.View()
		c.View.ToggleLineNumbers(snap)
		snap.Close()
		c.menu = false
	case 'a':
		snap := c.Store.View()
		c.View.ToggleAutoscroll(snap)
		snap.Close()
		c.menu = false
	case 'c':
		c.clearCommand()
		c.menu = false
	case 'q':
		c.quit = true
	}
}

func (c *Controller) enterCommand(kind CommandKind) {
	c.mode = CommandEntry
	c.kind = kind
	c.buffer = c.buffer[:0]
	c.menu = false
}

func (c *Controller) handleCommandEntry(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc:
		c.clearCommand()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(c.buffer) > 0 {
			c.buffer = c.buffer[:len(c.buffer)-1]
		}
	case tcell.KeyEnter:
		c.execute()
	case tcell.KeyRune:
		c.buffer = append(c.buffer, ev.Rune())
	}
}

// clearCommand is the Esc/space-menu 'c' action: clears filter, search,
// cursor, the in-progress buffer, and returns to Normal mode.
func (c *Controller) clearCommand() {
	snap := c.Store.View()
	c.View.SetFilter(snap, nil)
	snap.Close()
	c.View.SetSearchQuery(nil)
	c.View.SetCursor(nil)
	c.Index.Rebuild(nil, nil)
	c.buffer = c.buffer[:0]
	c.mode = Normal
	c.kind = NoCommand
}

func (c *Controller) execute() {
	text := string(c.buffer)
	c.buffer = c.buffer[:0]
	kind := c.kind
	c.mode = Normal
	c.kind = NoCommand

	switch kind {
	case JumpTo:
		c.executeJumpTo(text)
	case Search, RegexSearch, Ignore:
		c.executeSearch(kind, text)
	case Filter:
		c.executeFilter(text)
	}
}

func (c *Controller) executeJumpTo(text string) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		c.raiseError(fmt.Sprintf("invalid line number: %q", text))
		return
	}
	snap := c.Store.View()
	defer snap.Close()
	if n < int64(snap.FirstIndex()) || n >= int64(snap.LinesCount()) {
		c.raiseError(fmt.Sprintf("line %d out of range", n))
		return
	}
	c.View.JumpTo(snap, store.GlobalIndex(n))
}

func (c *Controller) buildQueryMatcher(kind CommandKind, text string) (match.Matcher, error) {
	switch kind {
	case Search, Filter:
		return match.NewSubstring(text), nil
	case RegexSearch:
		return match.NewRegex(text)
	case Ignore:
		return match.Ignore{Inner: match.NewSubstring(text)}, nil
	}
	return nil, fmt.Errorf("unknown command kind %d", kind)
}

func (c *Controller) executeSearch(kind CommandKind, text string) {
	q, err := c.buildQueryMatcher(kind, text)
	if err != nil {
		c.raiseError(fmt.Sprintf("invalid pattern: %v", err))
		return
	}
	snap := c.Store.View()
	defer snap.Close()

	c.Index.Rebuild(q, snap)
	c.View.SetSearchQuery(q)

	last, ok := c.Index.LastAtOrBefore(snap.LinesCount() - 1)
	if !ok {
		return
	}
	if c.View.AutoScroll {
		c.View.SetCursor(&last)
		return
	}
	line, _ := snap.Get(last)
	r, _ := q.IsMatch(line)
	c.View.JumpToWithRange(snap, last, r)
}

func (c *Controller) executeFilter(text string) {
	snap := c.Store.View()
	defer snap.Close()
	c.View.SetFilter(snap, match.NewSubstring(text))
	c.View.SetCursor(nil)
}

// raiseError surfaces a UserInputError as a time-boxed banner; no other
// state changes (regex compile errors leave prior search/filter intact).
func (c *Controller) raiseError(msg string) {
	c.View.SetBanner(msg, c.now().Add(ErrorBannerDuration))
}

// HandleProducerClosed is the one-shot ProducerClosed transition: a
// synthetic exit-status line is appended, and future forwarded keys are
// swallowed.
func (c *Controller) HandleProducerClosed(status string) {
	c.DrainLine([]byte(fmt.Sprintf("[process exited: %s]", status)))
	c.ChildExited = true
}
