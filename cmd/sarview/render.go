package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/sarsim/internal/comms"
	"github.com/udisondev/sarsim/internal/model"
	"github.com/udisondev/sarsim/internal/world"
)

// Map area is 1400×800 world units; the bottom two rows are the status bar.
const (
	worldWidth  = 1400.0
	worldHeight = 800.0
	statusRows  = 2
)

var (
	styleDefault = tcell.StyleDefault
	styleStation = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleVictim  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleFound   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleBoat    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	styleMessage = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	scoutByState = map[model.AgentState]tcell.Style{
		model.StateIdle:       tcell.StyleDefault.Foreground(tcell.ColorWhite),
		model.StateScouting:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
		model.StateMonitoring: tcell.StyleDefault.Foreground(tcell.ColorYellow),
		model.StateReturning:  tcell.StyleDefault.Foreground(tcell.ColorPurple),
	}
)

// toCell maps a world position onto a w×h character grid.
func toCell(p model.Position, w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	x := int(math.Floor(p.X / worldWidth * float64(w)))
	y := int(math.Floor(p.Y / worldHeight * float64(h)))
	return min(max(x, 0), w-1), min(max(y, 0), h-1)
}

func draw(screen tcell.Screen, snap world.Snapshot, msgs []comms.Message, lastErr error) {
	screen.Clear()
	width, height := screen.Size()
	mapHeight := height - statusRows
	if mapHeight <= 0 {
		screen.Show()
		return
	}

	for _, st := range snap.Stations {
		x, y := toCell(st.Position, width, mapHeight)
		screen.SetContent(x, y, 'H', nil, styleStation)
	}

	for _, v := range snap.Victims {
		if !v.Active {
			continue
		}
		style := styleVictim
		if v.Discovered {
			style = styleFound
		}
		x, y := toCell(v.Position, width, mapHeight)
		screen.SetContent(x, y, '*', nil, style)
	}

	for _, b := range snap.Rescuers {
		x, y := toCell(b.Position, width, mapHeight)
		screen.SetContent(x, y, 'B', nil, styleBoat)
	}

	for _, s := range snap.Scouts {
		style, ok := scoutByState[s.State]
		if !ok {
			style = styleDefault
		}
		x, y := toCell(s.Position, width, mapHeight)
		screen.SetContent(x, y, 'U', nil, style)
	}

	status := fmt.Sprintf(" tick %d  found %d  rescued %d  active %d  dist %.0f  [s]cout all  [r]eturn all  [a]dd victim  [q]uit",
		snap.Tick, snap.Stats.VictimsDiscovered, snap.Stats.VictimsRescued, snap.Stats.ActiveVictims, snap.Stats.TotalDistance)
	drawText(screen, 0, height-2, width, status, styleStatus)

	line := ""
	switch {
	case lastErr != nil:
		line = " error: " + lastErr.Error()
	case len(msgs) > 0:
		m := msgs[len(msgs)-1]
		line = fmt.Sprintf(" %s → %s: %s", m.Sender, m.Receiver, m.Content)
	}
	drawText(screen, 0, height-1, width, line, styleMessage)

	screen.Show()
}

func drawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			return
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
	for ; col < maxWidth; col++ {
		screen.SetContent(x+col, y, ' ', nil, style)
	}
}
