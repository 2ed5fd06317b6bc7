// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/app/menu.go
// Summary: The transient space-menu overlay, painted over the viewport
// while the menu is open.

package app

import (
	"github.com/gdamore/tcell/v2"
)

type menuEntry struct {
	Shortcut rune
	Title    string
}

var menuEntries = []menuEntry{
	{'s', "search (substring)"},
	{'r', "search (regex)"},
	{'i', "ignore (invert substring search)"},
	{'f', "filter"},
	{':', "go to line"},
	{'n', "toggle line numbers"},
	{'a', "toggle autoscroll"},
	{'c', "clear search and filter"},
	{'q', "quit"},
}

var (
	menuStyle     = tcell.StyleDefault.Reverse(true)
	menuKeyStyle  = tcell.StyleDefault.Reverse(true).Bold(true)
	menuEdgeStyle = tcell.StyleDefault.Reverse(true).Dim(true)
)

// paintMenu draws the entry list as a solid box in the top-left corner of
// the content area, clipped to whatever room the screen gives it.
func paintMenu(screen tcell.Screen, maxWidth, maxHeight int) {
	boxW := 0
	for _, e := range menuEntries {
		if w := len(e.Title) + 6; w > boxW {
			boxW = w
		}
	}
	if boxW > maxWidth {
		boxW = maxWidth
	}
	boxH := len(menuEntries) + 2
	if boxH > maxHeight {
		boxH = maxHeight
	}
	if boxW <= 0 || boxH <= 0 {
		return
	}

	for y := 0; y < boxH; y++ {
		for x := 0; x < boxW; x++ {
			screen.SetContent(x, y, ' ', nil, menuStyle)
		}
	}
	putText(screen, 1, 0, " menu ", menuEdgeStyle, boxW-1)
	for i, e := range menuEntries {
		y := i + 1
		if y >= boxH-1 {
			break
		}
		putText(screen, 2, y, string(e.Shortcut), menuKeyStyle, boxW-1)
		putText(screen, 5, y, e.Title, menuStyle, boxW-1)
	}
}

func putText(screen tcell.Screen, x, y int, text string, style tcell.Style, limit int) {
	for _, r := range text {
		if x >= limit {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
