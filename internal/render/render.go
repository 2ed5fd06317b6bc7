// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/render/render.go
// Summary: Pure per-frame function from ViewState + LineStore snapshot +
// rectangle to a cell buffer: word-wrap, highlight composition, line-number
// gutter.

package render

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/tailpager/tailpager/internal/match"
	"github.com/tailpager/tailpager/internal/store"
	"github.com/tailpager/tailpager/internal/view"
	"github.com/tailpager/tailpager/internal/wrap"
)

// Cell is one terminal cell: a rune plus the style to paint it with.
// Ch 0 marks the trailing cell of a wide glyph; blitters must leave that
// screen cell untouched so the glyph keeps both columns.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// Rect is a target rectangle. Render operates in the rectangle's local
// coordinate space (rows 0..Height-1, columns 0..Width-1); the caller
// translates by X, Y when blitting to a real tcell.Screen.
type Rect struct {
	X, Y, Width, Height int
}

var (
	// DefaultStyle paints ordinary text.
	DefaultStyle = tcell.StyleDefault
	// GutterStyle paints the line-number gutter.
	GutterStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	// MatchStyle paints a filter/search match: yellow background, black
	// foreground.
	MatchStyle = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	// CurrentHitStyle paints the cursor's highlighted range: green
	// background, black foreground.
	CurrentHitStyle = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	// CursorStyle paints a cursor line with no highlighted range: yellow
	// foreground.
	CursorStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// paintedSubLine is one row collected by the backward walk, carrying
// enough context (owning line, the highlight ranges that apply to it) for
// paintRow to compose styles without re-deriving anything.
type paintedSubLine struct {
	idx         store.GlobalIndex
	line        []byte
	sub         wrap.SubLine
	matchRange  match.Range
	hasMatch    bool
	isCursor    bool
	cursorRange match.Range
	hasCurRange bool
}

// Render paints a ViewState snapshot into a cell grid of rect.Height rows
// by rect.Width columns. Returns nil if there is nothing to paint (empty
// store, zero height/width, or a gutter that consumes the whole width).
func Render(v *view.ViewState, snap *store.Snapshot, rect Rect) [][]Cell {
	if snap.Empty() || rect.Height <= 0 || rect.Width <= 0 {
		return nil
	}
	gutter := 0
	if v.ShowLineNumbers {
		gutter = view.GutterWidth
	}
	effectiveWidth := rect.Width - gutter
	if effectiveWidth <= 0 {
		return nil
	}

	rows := collect(v, snap, rect.Height, effectiveWidth)
	if len(rows) == 0 {
		return nil
	}

	grid := blank(rect.Width, rect.Height)
	startRow := rect.Height - len(rows)
	for i, pl := range rows {
		y := startRow + i
		x := 0
		if v.ShowLineNumbers {
			paintGutter(grid[y], pl.idx)
			x = gutter
		}
		paintRow(grid[y], x, rect.Width, pl)
	}
	return grid
}

func blank(width, height int) [][]Cell {
	grid := make([][]Cell, height)
	for y := range grid {
		grid[y] = make([]Cell, width)
		for x := range grid[y] {
			grid[y][x] = Cell{Ch: ' ', Style: DefaultStyle}
		}
	}
	return grid
}

// collect walks backward from the anchor, honoring the filter, emitting
// wrapped sub-lines until height rows are gathered, then reverses the
// result into top-to-bottom order.
func collect(v *view.ViewState, snap *store.Snapshot, height, width int) []paintedSubLine {
	idx, skip := anchorOf(v, snap)
	var out []paintedSubLine
	first := true
	for idx >= snap.FirstIndex() && len(out) < height {
		line, ok := snap.Get(idx)
		if !ok {
			break
		}
		if v.Filter != nil && !match.Matches(v.Filter, line) {
			idx--
			continue
		}
		subs := wrap.Wrap(line, width)
		matchRange, hasMatch := locateHighlight(v, line)
		isCursor := v.HasCursor && v.CursorIdx == idx

		// The skip counts from the bottom of the anchor line: the bottom
		// row shows sub-line W-1-skip, and the rows above it continue
		// toward the line's start.
		from := len(subs) - 1
		if first {
			from -= skip
			first = false
		}
		for i := from; i >= 0 && len(out) < height; i-- {
			out = append(out, paintedSubLine{
				idx:         idx,
				line:        line,
				sub:         subs[i],
				matchRange:  matchRange,
				hasMatch:    hasMatch,
				isCursor:    isCursor,
				cursorRange: v.CursorRange,
				hasCurRange: isCursor && v.HasCursorRange,
			})
		}
		idx--
	}
	reverse(out)
	return out
}

func anchorOf(v *view.ViewState, snap *store.Snapshot) (store.GlobalIndex, int) {
	if v.AutoScroll {
		return snap.LinesCount() - 1, 0
	}
	return v.BottomLineIdx, v.BottomSkip
}

// locateHighlight finds the search-query match on line if a search is
// active, else the filter's match (a filtered line always matches its
// filter, so this recovers the range that made it visible).
func locateHighlight(v *view.ViewState, line []byte) (match.Range, bool) {
	if v.SearchQuery != nil {
		if r, ok := v.SearchQuery.IsMatch(line); ok {
			return r, true
		}
	}
	if v.Filter != nil {
		if r, ok := v.Filter.IsMatch(line); ok {
			return r, true
		}
	}
	return match.Range{}, false
}

func reverse(s []paintedSubLine) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func paintGutter(row []Cell, idx store.GlobalIndex) {
	label := fmt.Sprintf("%*d", view.GutterWidth-1, idx)
	if len(label) > view.GutterWidth-1 {
		label = label[len(label)-(view.GutterWidth-1):]
	}
	col := 0
	for _, r := range label {
		if col >= view.GutterWidth-1 {
			break
		}
		row[col] = Cell{Ch: r, Style: GutterStyle}
		col++
	}
	// the GutterWidth-1'th column is left blank as a separator.
}

// unit is one decoded original-line rune, together with the rendered text
// it expands to (tabs -> four spaces, CR -> nothing) and the original byte
// range it occupies. This is the same rule wrap.Wrap applies, recomputed here so
// highlight intersection can be done per original byte, not per rendered
// rune.
type unit struct {
	start, end int
	text       string
}

func decodeUnits(line []byte, start, end int) []unit {
	var out []unit
	i := start
	for i < end {
		r, size := utf8.DecodeRune(line[i:])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		out = append(out, unit{start: i, end: i + size, text: renderRune(r)})
		i += size
	}
	return out
}

func renderRune(r rune) string {
	switch r {
	case '\t':
		return "    "
	case '\r':
		return ""
	}
	return string(r)
}

// intersects reports whether [a, b) and [c, d) overlap (half-open).
func intersects(a, b, c, d int) bool {
	lo, hi := a, b
	if c > lo {
		lo = c
	}
	if d < hi {
		hi = d
	}
	return lo < hi
}

// paintRow composes the highlight style for one sub-line and writes its
// runes into row starting at xOffset. Style priority: current-hit range,
// then filter/search match, then whole-line cursor emphasis, then default.
func paintRow(row []Cell, xOffset, rowWidth int, pl paintedSubLine) {
	units := decodeUnits(pl.line, pl.sub.Start, pl.sub.End)
	col := xOffset
	for _, u := range units {
		if col >= rowWidth {
			break
		}
		style := DefaultStyle
		switch {
		case pl.hasCurRange && intersects(u.start, u.end, pl.cursorRange.Start, pl.cursorRange.End):
			style = CurrentHitStyle
		case pl.hasMatch && intersects(u.start, u.end, pl.matchRange.Start, pl.matchRange.End):
			style = MatchStyle
		case pl.isCursor:
			style = CursorStyle
		}
		for _, r := range u.text {
			if col >= rowWidth {
				break
			}
			// Cell accounting must agree with the wrap layer: wide glyphs
			// own two columns (the second holds a zero filler), combining
			// marks own none.
			w := runewidth.RuneWidth(r)
			if r == utf8.RuneError {
				w = 1
			}
			if w == 0 {
				continue
			}
			row[col] = Cell{Ch: r, Style: style}
			if w == 2 && col+1 < rowWidth {
				row[col+1] = Cell{Ch: 0, Style: style}
			}
			col += w
		}
	}
}
