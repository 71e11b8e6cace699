package agent

import (
	"fmt"

	"github.com/udisondev/sarsim/internal/model"
)

// Scout handles the "scout" command. Scouts start their sweep; rescuers have
// no pattern and only change state.
func Scout(a model.Agent, rules Rules) error {
	switch a := a.(type) {
	case *model.Scout:
		return StartScouting(a, rules)
	case *model.Rescuer:
		a.SetState(model.StateScouting)
		return nil
	default:
		return fmt.Errorf("unsupported agent type %T", a)
	}
}

// Monitor holds the agent over p in MONITORING state.
// A scout stops tracking whatever victim it was following.
func Monitor(a model.Agent, p model.Position) {
	if s, ok := a.(*model.Scout); ok {
		s.StopFollowing()
	}
	e := a.Base()
	e.SetTarget(p)
	e.SetState(model.StateMonitoring)
}

// GoTo sends the agent to p. A rescuer goes out RESCUING. A scout is
// flown by hand: it drops its sweep, track or trip home and holds IDLE at
// the new target until the next command.
func GoTo(a model.Agent, p model.Position) {
	switch a := a.(type) {
	case *model.Rescuer:
		a.SetTarget(p)
		a.SetState(model.StateRescuing)
	case *model.Scout:
		a.StopFollowing()
		a.SetTarget(p)
		a.SetState(model.StateIdle)
	}
}

// Return sends the agent back to its home station.
func Return(a model.Agent, rules Rules) error {
	e := a.Base()
	station, ok := rules.Station(e.HomeStation())
	if !ok {
		return fmt.Errorf("agent %s has no station %d", e.ID(), e.HomeStation())
	}

	if s, ok := a.(*model.Scout); ok {
		s.StopFollowing()
	}
	e.SetTarget(station)
	e.SetState(model.StateReturning)
	return nil
}

func arrivedHome(e *model.Entity, rules Rules) bool {
	station, ok := rules.Station(e.HomeStation())
	if !ok {
		return false
	}
	return HasArrived(e, station, rules.ArrivalThreshold)
}
