// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/view/viewstate.go
// Summary: ViewState is the wrap-aware scroll state machine: viewport
// geometry, autoscroll, bottom-anchor (line index + wrapped-subline skip),
// cursor/highlight, active filter, active search.
// Notes: Anchors are stored by line index plus skip rather than cumulative
// row count, so a width change reshapes wraps without repositioning the
// viewport.

package view

import (
	"time"

	"github.com/tailpager/tailpager/internal/match"
	"github.com/tailpager/tailpager/internal/store"
	"github.com/tailpager/tailpager/internal/wrap"
)

// GutterWidth is the fixed column count reserved for the line-number
// gutter when ShowLineNumbers is on.
const GutterWidth = 6

// ViewState is owned exclusively by the main/controller thread; it is never
// shared across goroutines (see the concurrency model), so it carries no
// lock of its own.
type ViewState struct {
	Width, Height   int
	ShowLineNumbers bool
	AutoScroll      bool

	BottomLineIdx store.GlobalIndex
	BottomSkip    int

	HasCursor      bool
	CursorIdx      store.GlobalIndex
	HasCursorRange bool
	CursorRange    match.Range

	Filter      match.Matcher
	SearchQuery match.Matcher

	BannerText   string
	BannerExpiry time.Time
}

// New returns a ViewState with autoscroll enabled, tracking the tail.
func New() *ViewState {
	return &ViewState{AutoScroll: true}
}

// effectiveWidth is the wrap width used for scroll bookkeeping: the gutter
// is subtracted when line numbers are shown, floored at 1 (wrap.Count
// clamps internally too, but computing it once here keeps the state
// machine's arithmetic honest about what width it's reasoning over).
func (v *ViewState) effectiveWidth() int {
	w := v.Width
	if v.ShowLineNumbers {
		w -= GutterWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (v *ViewState) matchesFilter(line []byte) bool {
	return v.Filter == nil || match.Matches(v.Filter, line)
}

// anchor resolves the effective (index, skip) pair: the live tail under
// autoscroll, or the stored manual anchor otherwise.
func (v *ViewState) anchor(snap *store.Snapshot) (store.GlobalIndex, int) {
	if v.AutoScroll {
		return snap.LinesCount() - 1, 0
	}
	return v.BottomLineIdx, v.BottomSkip
}

func (v *ViewState) prevMatchingLine(snap *store.Snapshot, before store.GlobalIndex) (store.GlobalIndex, bool) {
	for j := before - 1; j >= snap.FirstIndex(); j-- {
		if line, ok := snap.Get(j); ok && v.matchesFilter(line) {
			return j, true
		}
	}
	return 0, false
}

func (v *ViewState) nextMatchingLine(snap *store.Snapshot, after store.GlobalIndex) (store.GlobalIndex, bool) {
	for j := after + 1; j < snap.LinesCount(); j++ {
		if line, ok := snap.Get(j); ok && v.matchesFilter(line) {
			return j, true
		}
	}
	return 0, false
}

// topReached walks backward from the current anchor, summing effective
// sub-line counts of filter-matching lines. If the sum stays below Height
// after exhausting all resident matching lines, the top of the file is
// considered reached.
func (v *ViewState) topReached(snap *store.Snapshot) bool {
	if v.Height <= 0 {
		return true
	}
	idx, skip := v.anchor(snap)
	remaining := v.Height
	first := true
	for idx >= snap.FirstIndex() {
		line, ok := snap.Get(idx)
		if !ok {
			break
		}
		if !v.matchesFilter(line) {
			idx--
			continue
		}
		w := wrap.Count(line, v.effectiveWidth())
		if first {
			w -= skip
			first = false
		}
		if w < 0 {
			w = 0
		}
		remaining -= w
		if remaining <= 0 {
			return false
		}
		idx--
	}
	return remaining > 0
}

// normalize advances the manual anchor forward, matching-line by
// matching-line, until top-reached becomes false or no more lines remain.
// A no-op under autoscroll.
func (v *ViewState) normalize(snap *store.Snapshot) {
	if v.AutoScroll {
		return
	}
	for v.topReached(snap) {
		j, ok := v.nextMatchingLine(snap, v.BottomLineIdx)
		if !ok {
			return
		}
		v.BottomLineIdx = j
		v.BottomSkip = 0
	}
}

// isVisible reports whether GlobalIndex i currently appears in the
// rendered viewport, by replaying the renderer's backward walk from the
// current anchor.
func (v *ViewState) isVisible(snap *store.Snapshot, i store.GlobalIndex) bool {
	idx, skip := v.anchor(snap)
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
		if first {
			w -= skip
			first = false
		}
		if w < 0 {
			w = 0
		}
		if idx == i && w > 0 {
			return true
		}
		remaining -= w
		idx--
	}
	return false
}

// ScrollUp moves the anchor one rendered sub-line toward the top.
func (v *ViewState) ScrollUp(snap *store.Snapshot) {
	if v.Height <= 0 {
		return
	}
	if v.AutoScroll {
		v.AutoScroll = false
		v.BottomLineIdx = snap.LinesCount() - 1
		v.BottomSkip = 0
	}
	if v.topReached(snap) {
		return
	}
	if line, ok := snap.Get(v.BottomLineIdx); ok {
		w := wrap.Count(line, v.effectiveWidth())
		if v.BottomSkip+1 < w {
			v.BottomSkip++
			v.normalize(snap)
			return
		}
	}
	if j, found := v.prevMatchingLine(snap, v.BottomLineIdx); found {
		v.BottomLineIdx = j
		v.BottomSkip = 0
	}
	v.normalize(snap)
}

// ScrollDown moves the anchor one rendered sub-line toward the bottom,
// re-enabling autoscroll once the tail is reached.
func (v *ViewState) ScrollDown(snap *store.Snapshot) {
	if v.Height <= 0 || v.AutoScroll {
		return
	}
	if v.BottomSkip > 0 {
		v.BottomSkip--
		return
	}
	if j, found := v.nextMatchingLine(snap, v.BottomLineIdx); found {
		v.BottomLineIdx = j
		v.BottomSkip = 0
		if j == snap.LinesCount()-1 {
			v.AutoScroll = true
		}
	}
}

// jumpTo is the shared implementation behind JumpTo/JumpToWithRange.
func (v *ViewState) jumpTo(snap *store.Snapshot, i store.GlobalIndex, r match.Range, hasRange bool) {
	if i < snap.FirstIndex() || i >= snap.LinesCount() {
		return
	}
	visible := v.isVisible(snap, i)
	if v.AutoScroll {
		v.AutoScroll = false
		v.BottomLineIdx = snap.LinesCount() - 1
		v.BottomSkip = 0
	}
	if !visible {
		v.BottomLineIdx = i
		v.BottomSkip = 0
	}
	v.HasCursor = true
	v.CursorIdx = i
	v.HasCursorRange = hasRange
	v.CursorRange = r
	v.normalize(snap)
}

// JumpTo moves the cursor to GlobalIndex i, repositioning the viewport only
// if i is not already visible. Out-of-range i is a no-op.
func (v *ViewState) JumpTo(snap *store.Snapshot, i store.GlobalIndex) {
	v.jumpTo(snap, i, match.Range{}, false)
}

// JumpToWithRange is JumpTo plus a highlighted byte range within the target
// line (the "current hit" emphasis).
func (v *ViewState) JumpToWithRange(snap *store.Snapshot, i store.GlobalIndex, r match.Range) {
	v.jumpTo(snap, i, r, true)
}

// SetCursor sets or clears the cursor line without moving the viewport.
func (v *ViewState) SetCursor(i *store.GlobalIndex) {
	if i == nil {
		v.HasCursor = false
		v.HasCursorRange = false
		return
	}
	v.HasCursor = true
	v.CursorIdx = *i
}

// ToggleAutoscroll flips autoscroll. Turning it off first snapshots the
// current tail position into the manual anchor.
func (v *ViewState) ToggleAutoscroll(snap *store.Snapshot) {
	if v.AutoScroll {
		v.BottomLineIdx = snap.LinesCount() - 1
		v.BottomSkip = 0
	}
	v.AutoScroll = !v.AutoScroll
}

// ToggleLineNumbers flips the gutter and reclamps the manual anchor's skip
// to the new effective width.
func (v *ViewState) ToggleLineNumbers(snap *store.Snapshot) {
	v.ShowLineNumbers = !v.ShowLineNumbers
	v.clampSkip(snap)
}

// SetSize updates the viewport dimensions, preserving the anchor by index
// and reclamping its skip to the new width's wrap count.
func (v *ViewState) SetSize(snap *store.Snapshot, w, h int) {
	v.Width, v.Height = w, h
	v.clampSkip(snap)
}

func (v *ViewState) clampSkip(snap *store.Snapshot) {
	if v.AutoScroll {
		return
	}
	line, ok := snap.Get(v.BottomLineIdx)
	if !ok {
		return
	}
	w := wrap.Count(line, v.effectiveWidth())
	if w <= 0 {
		v.BottomSkip = 0
		return
	}
	if v.BottomSkip >= w {
		v.BottomSkip = w - 1
	}
}

func (v *ViewState) alignBottomToFilter(snap *store.Snapshot) {
	if line, ok := snap.Get(v.BottomLineIdx); ok && v.matchesFilter(line) {
		return
	}
	if j, found := v.prevMatchingLine(snap, v.BottomLineIdx+1); found {
		v.BottomLineIdx = j
		v.BottomSkip = 0
		return
	}
	if j, found := v.nextMatchingLine(snap, v.BottomLineIdx-1); found {
		v.BottomLineIdx = j
		v.BottomSkip = 0
	}
}

// SetFilter installs q (nil clears it) as the active filter, relocating the
// manual anchor onto the nearest matching line if needed.
func (v *ViewState) SetFilter(snap *store.Snapshot, q match.Matcher) {
	v.Filter = q
	if !v.AutoScroll {
		v.alignBottomToFilter(snap)
		v.normalize(snap)
	}
}

// SetSearchQuery installs q (nil clears it) as the active search query.
// MatchIndex maintenance is the controller's responsibility; ViewState only
// remembers the query for highlight rendering.
func (v *ViewState) SetSearchQuery(q match.Matcher) {
	v.SearchQuery = q
}

// OnAppend applies the append-time rules from the scroll state machine: if
// the appended line matched the active search query and autoscroll is on,
// the cursor follows the new tail line.
func (v *ViewState) OnAppend(i store.GlobalIndex, matchedQuery bool) {
	if v.AutoScroll && matchedQuery {
		v.HasCursor = true
		v.CursorIdx = i
	}
}

// ClampToBounds re-enables autoscroll if the manual anchor fell below the
// new first-resident index, and drops a cursor that was evicted. Call after
// any eviction, regardless of cause.
func (v *ViewState) ClampToBounds(newFirstIndex store.GlobalIndex) {
	if !v.AutoScroll && v.BottomLineIdx < newFirstIndex {
		v.AutoScroll = true
	}
	if v.HasCursor && v.CursorIdx < newFirstIndex {
		v.HasCursor = false
		v.HasCursorRange = false
	}
}

// SetBanner installs a timed status/error banner, cleared by
// ClearExpiredBanner once now passes expiry.
func (v *ViewState) SetBanner(text string, expiry time.Time) {
	v.BannerText = text
	v.BannerExpiry = expiry
}

// ClearExpiredBanner clears the banner if now is past its expiry, and
// reports whether it did so.
func (v *ViewState) ClearExpiredBanner(now time.Time) bool {
	if v.BannerText == "" {
		return false
	}
	if now.Before(v.BannerExpiry) {
		return false
	}
	v.BannerText = ""
	return true
}
