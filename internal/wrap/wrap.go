// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/wrap/wrap.go
// Summary: Width-aware word wrap with byte-range-exact sub-line tracking.
// Notes: Display width counts East Asian wide glyphs as two cells and
// zero-width combining marks as zero; tabs expand to four spaces.

package wrap

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// SubLine is one visual row produced by wrapping a Line to a width. Start
// and End are a half-open byte range into the original line; Text is the
// text to paint for this row.
type SubLine struct {
	Start, End int
	Text       string
}

// rchar is a decoded rune together with its byte offset/size and display
// width, used internally to locate break points without re-scanning bytes.
type rchar struct {
	off, size int
	r         rune
	w         int
	isSpace   bool
}

// Wrap breaks line into sub-lines that each fit within width display cells.
// Breaking prefers whitespace; a word exceeding width breaks at the width
// boundary. The concatenation of the returned ranges always covers
// [0, len(line)) exactly, including any inter-word whitespace consumed at a
// break point.
func Wrap(line []byte, width int) []SubLine {
	if width < 1 {
		width = 1
	}
	chars := decode(line)
	if len(chars) == 0 {
		return []SubLine{{Start: 0, End: 0, Text: ""}}
	}

	var out []SubLine
	segStart := 0 // index into chars
	col := 0
	lastSpace := -1 // index into chars of most recent whitespace char

	i := 0
	for i < len(chars) {
		c := chars[i]
		if col+c.w > width && col > 0 {
			end := i
			if lastSpace >= 0 {
				end = lastSpace + 1
			}
			out = append(out, buildSubLine(line, chars, segStart, end))
			segStart = end
			col = 0
			lastSpace = -1
			i = end
			continue
		}
		col += c.w
		if c.isSpace {
			lastSpace = i
		}
		i++
	}

	if segStart < len(chars) || len(out) == 0 {
		out = append(out, buildSubLine(line, chars, segStart, len(chars)))
	}
	return out
}

// Count returns the number of wrapped sub-lines line produces at width.
func Count(line []byte, width int) int {
	return len(Wrap(line, width))
}

func decode(line []byte) []rchar {
	out := make([]rchar, 0, len(line))
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRune(line[i:])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		out = append(out, rchar{
			off:     i,
			size:    size,
			r:       r,
			w:       displayWidth(r),
			isSpace: r == ' ' || r == '\t',
		})
		i += size
	}
	return out
}

func displayWidth(r rune) int {
	switch r {
	case '\t':
		return 4
	case '\r':
		return 0
	}
	if r == utf8.RuneError {
		return 1
	}
	return runewidth.RuneWidth(r)
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

func buildSubLine(line []byte, chars []rchar, from, to int) SubLine {
	startByte := len(line)
	if from < len(chars) {
		startByte = chars[from].off
	}
	endByte := len(line)
	if to < len(chars) {
		endByte = chars[to].off
	} else if to > 0 {
		last := chars[to-1]
		endByte = last.off + last.size
	} else {
		endByte = startByte
	}

	var sb strings.Builder
	for j := from; j < to; j++ {
		sb.WriteString(renderRune(chars[j].r))
	}
	return SubLine{Start: startByte, End: endByte, Text: sb.String()}
}
