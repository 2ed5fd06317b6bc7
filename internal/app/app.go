// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/app/app.go
// Summary: The terminal runner: owns the tcell screen, pumps input events,
// drains produced lines at frame boundaries, and paints the viewport, the
// status bar, and the menu overlay every frame.

package app

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tailpager/tailpager/internal/controller"
	"github.com/tailpager/tailpager/internal/render"
	"github.com/tailpager/tailpager/internal/statusbar"
)

// FramePeriod is the frame ticker's period: the loop wakes at least once
// per frame, and every tick runs the controller's Tick.
const FramePeriod = 64 * time.Millisecond

// Producer is the supervisor surface the runner needs: a line channel that
// closes when the child's stdout disconnects, resize propagation, and the
// reaped exit status once the channel has drained to closed.
type Producer interface {
	LineChan() <-chan string
	SetSize(cols, rows int) error
	ExitStatus() string
	Stop()
}

var screenFactory = tcell.NewScreen

// SetScreenFactory overrides the screen factory used by Run. Passing nil
// restores the default.
func SetScreenFactory(factory func() (tcell.Screen, error)) {
	if factory == nil {
		screenFactory = tcell.NewScreen
		return
	}
	screenFactory = factory
}

// App wires the controller and the child producer to a live tcell screen.
type App struct {
	ctrl  *controller.Controller
	child Producer

	screen tcell.Screen
	lines  <-chan string
}

// New builds a runner over an already-wired controller and producer.
func New(ctrl *controller.Controller, child Producer) *App {
	return &App{ctrl: ctrl, child: child, lines: child.LineChan()}
}

// Run initializes the screen, enters the frame loop, and blocks until quit.
// The screen is torn down (mouse capture off, alternate screen exited)
// before it returns.
func (a *App) Run() error {
	screen, err := screenFactory()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	a.screen = screen
	defer screen.Fini()
	screen.EnableMouse()
	defer screen.DisableMouse()
	screen.HideCursor()
	screen.Clear()

	w, h := screen.Size()
	a.resize(w, h)

	events := make(chan tcell.Event, 10)
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	frame := time.NewTicker(FramePeriod)
	defer frame.Stop()

	for !a.ctrl.ShouldQuit() {
		a.drainLines()
		a.draw()

		select {
		case ev := <-events:
			a.handleEvent(ev)
		case <-frame.C:
			a.ctrl.Tick()
		}
	}
	return nil
}

// drainLines moves every already-produced line into the store before the
// frame is painted, so the user always sees the most recent possible tail.
// Channel closure is the one-shot child-exit transition: the exit status is
// appended as a synthetic line and further key forwarding stops.
func (a *App) drainLines() {
	if a.lines == nil {
		return
	}
	for {
		select {
		case l, ok := <-a.lines:
			if !ok {
				a.lines = nil
				a.ctrl.HandleProducerClosed(a.child.ExitStatus())
				log.Printf("app: child exited: %s", a.child.ExitStatus())
				return
			}
			a.ctrl.DrainLine([]byte(l))
		default:
			return
		}
	}
}

func (a *App) handleEvent(ev tcell.Event) {
	switch tev := ev.(type) {
	case *tcell.EventKey:
		a.ctrl.HandleKey(tev)
	case *tcell.EventMouse:
		a.handleMouse(tev)
	case *tcell.EventResize:
		w, h := tev.Size()
		a.resize(w, h)
	}
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	mask := ev.Buttons()
	snap := a.ctrl.Store.View()
	defer snap.Close()
	if mask&tcell.WheelUp != 0 {
		a.ctrl.View.ScrollUp(snap)
	}
	if mask&tcell.WheelDown != 0 {
		a.ctrl.View.ScrollDown(snap)
	}
}

// resize gives the bottom row to the status bar and the rest to the
// viewport, and propagates the new size to the child's pty.
func (a *App) resize(w, h int) {
	content := h - 1
	if content < 0 {
		content = 0
	}
	snap := a.ctrl.Store.View()
	a.ctrl.View.SetSize(snap, w, content)
	snap.Close()
	if err := a.child.SetSize(w, content); err != nil {
		log.Printf("app: pty resize: %v", err)
	}
}

func (a *App) draw() {
	screen := a.screen
	w, h := screen.Size()
	screen.Clear()

	snap := a.ctrl.Store.View()
	grid := render.Render(a.ctrl.View, snap, render.Rect{Width: w, Height: h - 1})
	snap.Close()
	for y, row := range grid {
		for x, cell := range row {
			if cell.Ch == 0 {
				// Trailing half of a wide glyph; the glyph at x-1 owns
				// this screen cell.
				continue
			}
			screen.SetContent(x, y, cell.Ch, nil, cell.Style)
		}
	}

	if h > 0 {
		status := statusbar.Render(a.ctrl, a.ctrl.View, a.ctrl.Index, w)
		for x, cell := range status {
			screen.SetContent(x, h-1, cell.Ch, nil, cell.Style)
		}
	}

	if a.ctrl.Mode() == controller.SpaceMenu {
		paintMenu(screen, w, h-1)
	}

	screen.Show()
}
