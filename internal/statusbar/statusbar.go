// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/statusbar/statusbar.go
// Summary: The one-line status/help bar painted below the content
// viewport: mode, autoscroll state, line-number toggle, match rank, and the
// error banner.

package statusbar

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/tailpager/tailpager/internal/controller"
	"github.com/tailpager/tailpager/internal/matchindex"
	"github.com/tailpager/tailpager/internal/render"
	"github.com/tailpager/tailpager/internal/view"
)

var (
	baseStyle  = tcell.StyleDefault.Reverse(true)
	errorStyle = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite)
)

// sizeLabel renders a byte count with a 1024-based suffix for the
// resident-history indicator.
func sizeLabel(n int) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%dGB", n>>30)
	case n >= 1<<20:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

func modeLabel(m controller.Mode, kind controller.CommandKind) string {
	switch m {
	case controller.SpaceMenu:
		return "MENU"
	case controller.CommandEntry:
		return commandKindLabel(kind)
	default:
		return "NORMAL"
	}
}

func commandKindLabel(kind controller.CommandKind) string {
	switch kind {
	case controller.Search:
		return "SEARCH"
	case controller.RegexSearch:
		return "REGEX"
	case controller.Ignore:
		return "IGNORE"
	case controller.Filter:
		return "FILTER"
	case controller.JumpTo:
		return "GOTO"
	default:
		return "CMD"
	}
}

// Render paints a single status row of width cells summarizing v's state,
// c's mode and command buffer, and idx's rank at the current cursor.
func Render(c *controller.Controller, v *view.ViewState, idx *matchindex.MatchIndex, width int) []render.Cell {
	row := make([]render.Cell, width)
	for i := range row {
		row[i] = render.Cell{Ch: ' ', Style: baseStyle}
	}

	var left strings.Builder
	fmt.Fprintf(&left, " %s", modeLabel(c.Mode(), c.Kind()))
	if c.Mode() == controller.CommandEntry {
		fmt.Fprintf(&left, ": %s_", c.CommandBuffer())
	}
	if v.AutoScroll {
		left.WriteString(" | follow")
	}
	if v.ShowLineNumbers {
		left.WriteString(" | #")
	}
	left.WriteString(" | " + sizeLabel(c.Store.ResidentBytes()))
	if idx.Count() > 0 {
		anchor := v.BottomLineIdx
		if v.HasCursor {
			anchor = v.CursorIdx
		}
		rank, total := idx.RankAt(anchor)
		fmt.Fprintf(&left, " | match %d/%d", rank, total)
	}

	text := left.String()
	style := baseStyle
	if v.BannerText != "" {
		text = " " + v.BannerText
		style = errorStyle
	}

	col := 0
	for _, r := range text {
		if col >= width {
			break
		}
		row[col] = render.Cell{Ch: r, Style: style}
		col++
	}
	return row
}

