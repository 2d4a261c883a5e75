// Package term is the terminal frontend: it draws snapshots with tcell and turns
// key presses into game input.
package term

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

// Poster queues a closure on the game loop. *sched.Loop satisfies it.
type Poster interface {
	Post(fn func()) bool
}

// InputSink receives frontend commands. *game.Controller satisfies it; Input is
// only ever called on the game loop.
type InputSink interface {
	Input(in structs.Input)
}

// Frontend owns the screen. Only Run's goroutine draws.
type Frontend struct {
	screen tcell.Screen
	loop   Poster
	sink   InputSink
	frames chan structs.Snapshot
}

func New(screen tcell.Screen, loop Poster, sink InputSink) *Frontend {
	return &Frontend{
		screen: screen,
		loop:   loop,
		sink:   sink,
		frames: make(chan structs.Snapshot, 1),
	}
}

// Push hands a frame to the drawing goroutine. It never blocks; an undrawn
// frame is replaced by the newer one.
func (f *Frontend) Push(snap structs.Snapshot) {
	for {
		select {
		case f.frames <- snap:
			return
		default:
		}
		select {
		case <-f.frames:
		default:
		}
	}
}

// Run draws frames and forwards keys until Esc, Ctrl-C or ctx ends. The caller
// owns screen.Init and screen.Fini.
func (f *Frontend) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := f.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-f.frames:
			Draw(f.screen, snap)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !f.handleKey(ev.Key(), ev.Rune()) {
					return nil
				}
			case *tcell.EventResize:
				f.screen.Sync()
			}
		}
	}
}

// handleKey posts the input to the loop. Returns false on quit.
func (f *Frontend) handleKey(key tcell.Key, r rune) bool {
	in, quit := keyInput(key, r)
	if quit {
		return false
	}
	return f.loop.Post(func() { f.sink.Input(in) })
}

// keyInput maps arrows and WASD to directions. Every other key is InputOther,
// which only matters as the restart signal.
func keyInput(key tcell.Key, r rune) (in structs.Input, quit bool) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return structs.InputOther, true
	case tcell.KeyUp:
		return structs.InputUp, false
	case tcell.KeyDown:
		return structs.InputDown, false
	case tcell.KeyLeft:
		return structs.InputLeft, false
	case tcell.KeyRight:
		return structs.InputRight, false
	case tcell.KeyRune:
		switch r {
		case 'w', 'W':
			return structs.InputUp, false
		case 's', 'S':
			return structs.InputDown, false
		case 'a', 'A':
			return structs.InputLeft, false
		case 'd', 'D':
			return structs.InputRight, false
		}
	}
	return structs.InputOther, false
}
