// Package agent implements per-tick behavior of scouts, rescuers and victims:
// the shared motion model, victim drift, and the agent state machines.
package agent

import (
	"github.com/paulmach/orb"

	"github.com/udisondev/sarsim/internal/config"
	"github.com/udisondev/sarsim/internal/model"
)

// Rules are the immutable parameters behavior is evaluated against.
type Rules struct {
	Region   orb.Bound
	Stations []model.Position

	// ArrivalThreshold is the distance below which a mover stops advancing.
	// The same distance advances a scout's sweep cursor.
	ArrivalThreshold float64

	HeadingChangeTicks int

	Lanes          int
	PatternSpacing float64
}

// RulesFromConfig derives Rules from the process configuration.
func RulesFromConfig(cfg config.Config) Rules {
	stations := make([]model.Position, len(cfg.Stations))
	for i, s := range cfg.Stations {
		stations[i] = model.NewPosition(s.X, s.Y)
	}

	return Rules{
		Region:             cfg.Region.RescueBounds(),
		Stations:           stations,
		ArrivalThreshold:   cfg.Simulation.ArrivalThreshold,
		HeadingChangeTicks: cfg.Victims.HeadingChangeTicks,
		Lanes:              max(cfg.Scouts.Count, 1),
		PatternSpacing:     cfg.Simulation.PatternSpacing,
	}
}

// Station returns the coordinates of station index.
// ok is false for an index outside the station list.
func (r Rules) Station(index int) (model.Position, bool) {
	if index < 0 || index >= len(r.Stations) {
		return model.Position{}, false
	}
	return r.Stations[index], true
}
