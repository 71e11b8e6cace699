// Command sarview is a terminal viewer for a running sarsim.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/sarsim/internal/command"
	"github.com/udisondev/sarsim/internal/comms"
	"github.com/udisondev/sarsim/internal/world"
)

type viewer struct {
	screen tcell.Screen
	client *client

	snap     world.Snapshot
	msgs     []comms.Message
	lastErr  error
	errUntil time.Time
}

// errorHold is how long an error stays on the status line.
const errorHold = 3 * time.Second

func newViewer(c *client) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return &viewer{screen: screen, client: c}, nil
}

func (v *viewer) run(refresh time.Duration) {
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	v.refresh()
	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}
		case <-ticker.C:
			v.refresh()
		}
	}
}

func (v *viewer) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	snap, err := v.client.snapshot(ctx)
	if err == nil {
		v.snap = snap
		v.msgs, err = v.client.messages(ctx)
	}
	if err != nil {
		v.setErr(err)
	} else if time.Now().After(v.errUntil) {
		v.lastErr = nil
	}
	draw(v.screen, v.snap, v.msgs, v.lastErr)
}

func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 's':
			v.broadcast(v.snap.Scouts, command.Scout)
		case 'r':
			v.broadcast(v.snap.Scouts, command.Return)
			v.broadcast(v.snap.Rescuers, command.Return)
		case 'a':
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			if err := v.client.addVictim(ctx); err != nil {
				v.setErr(err)
			}
			cancel()
		}
		v.refresh()

	case *tcell.EventResize:
		v.screen.Sync()
		draw(v.screen, v.snap, v.msgs, v.lastErr)
	}
	return true
}

func (v *viewer) broadcast(agents []world.AgentView, cmd string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, a := range agents {
		res, err := v.client.command(ctx, a.ID, cmd, nil)
		if err == nil {
			err = res.Err()
		}
		if err != nil {
			v.setErr(err)
			return
		}
	}
}

func (v *viewer) setErr(err error) {
	v.lastErr = err
	v.errUntil = time.Now().Add(errorHold)
}

func main() {
	addr := flag.String("addr", "http://127.0.0.1:5000", "sarsim API base URL")
	refresh := flag.Duration("refresh", 200*time.Millisecond, "poll interval")
	flag.Parse()

	v, err := newViewer(newClient(*addr, os.Getenv("SARSIM_TOKEN")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer v.screen.Fini()

	v.run(*refresh)
}
