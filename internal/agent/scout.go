package agent

import (
	"fmt"
	"time"

	"github.com/udisondev/sarsim/internal/coverage"
	"github.com/udisondev/sarsim/internal/model"
)

// VictimIndex resolves victims for detection and tracking.
type VictimIndex interface {
	// Victim looks a victim up by id, active or not.
	Victim(id string) (*model.Victim, bool)
	// VictimsWithin returns active victims within radius of p, in creation order.
	VictimsWithin(p model.Position, radius float64) []*model.Victim
}

// ScoutOutcome reports what happened to a scout during one tick.
type ScoutOutcome struct {
	Discovered []*model.Victim
	// Followed is the victim the scout started tracking this tick.
	Followed *model.Victim
	// LostTrack is the id of a tracked victim that left the simulation.
	LostTrack string
	Returned  bool
	Distance  float64
}

// StepScout runs one tick of the scout state machine followed by motion.
func StepScout(s *model.Scout, victims VictimIndex, rules Rules, now time.Time) ScoutOutcome {
	var out ScoutOutcome

	switch s.State() {
	case model.StateMonitoring:
		trackVictim(s, victims, rules, &out)
	case model.StateScouting:
		detectVictims(s, victims, now, &out)
		if s.State() == model.StateScouting {
			followPattern(s, rules)
		}
	}

	out.Distance = MoveTowardTarget(&s.Entity, rules.ArrivalThreshold)

	if s.State() == model.StateReturning && arrivedHome(&s.Entity, rules) {
		s.SetState(model.StateIdle)
		s.ClearTarget()
		out.Returned = true
	}

	return out
}

// detectVictims marks every unseen victim in range discovered and binds the first one
// if the scout is not tracking anything yet.
func detectVictims(s *model.Scout, victims VictimIndex, now time.Time, out *ScoutOutcome) {
	for _, v := range victims.VictimsWithin(s.Position(), s.DetectionRadius()) {
		if !v.Discover(now) {
			continue
		}
		out.Discovered = append(out.Discovered, v)

		if _, following := s.FollowingVictim(); following {
			continue
		}
		s.Follow(v.ID())
		s.SetState(model.StateMonitoring)
		s.SetTarget(v.Position())
		out.Followed = v
	}
}

// followPattern points the scout at its sweep cursor, advancing it once the
// current point is reached. An empty pattern leaves the scout untouched.
func followPattern(s *model.Scout, rules Rules) {
	next, ok := s.CurrentPatternPoint()
	if !ok {
		return
	}

	if s.Position().DistanceTo(next) <= rules.ArrivalThreshold {
		s.AdvancePattern()
		next, _ = s.CurrentPatternPoint()
	}
	s.SetTarget(next)
}

func trackVictim(s *model.Scout, victims VictimIndex, rules Rules, out *ScoutOutcome) {
	id, following := s.FollowingVictim()
	if !following {
		// Monitoring a fixed point set by command.
		return
	}

	v, ok := victims.Victim(id)
	if ok && v.IsActive() {
		s.SetTarget(v.Position())
		return
	}

	out.LostTrack = id
	if err := StopMonitoring(s, rules); err != nil {
		s.SetState(model.StateIdle)
		s.ClearTarget()
		return
	}
	followPattern(s, rules)
}

// DetectableCount returns how many active, not yet discovered victims are
// within the scout's radius: the set detection would act on this tick.
// Nothing is marked discovered.
func DetectableCount(s *model.Scout, victims VictimIndex) int {
	n := 0
	for _, v := range victims.VictimsWithin(s.Position(), s.DetectionRadius()) {
		if !v.IsDiscovered() {
			n++
		}
	}
	return n
}

// EnsureScanPattern generates the scout's sweep on first use.
// An existing pattern is never regenerated.
func EnsureScanPattern(s *model.Scout, rules Rules) error {
	if s.HasScanPattern() {
		return nil
	}

	lanes := max(rules.Lanes, 1)
	pattern, err := coverage.Generate(rules.Region, s.Lane()%lanes, lanes, s.DetectionRadius(), rules.PatternSpacing)
	if err != nil {
		return fmt.Errorf("generating scan pattern for %s: %w", s.ID(), err)
	}
	s.SetScanPattern(pattern)
	return nil
}

// StartScouting switches a scout to SCOUTING from the first sweep point.
func StartScouting(s *model.Scout, rules Rules) error {
	if err := EnsureScanPattern(s, rules); err != nil {
		return err
	}

	s.StopFollowing()
	s.ResetPattern()
	s.SetState(model.StateScouting)
	if p, ok := s.CurrentPatternPoint(); ok {
		s.SetTarget(p)
	}
	return nil
}

// StopMonitoring releases the tracked victim and resumes the sweep where it left off.
func StopMonitoring(s *model.Scout, rules Rules) error {
	if err := EnsureScanPattern(s, rules); err != nil {
		return err
	}

	s.StopFollowing()
	s.SetState(model.StateScouting)
	return nil
}

// ReleaseFollowers hands every scout tracking victimID back to its sweep.
// Returns the ids of the released scouts.
func ReleaseFollowers(scouts []*model.Scout, victimID string, rules Rules) []string {
	var released []string
	for _, s := range scouts {
		id, following := s.FollowingVictim()
		if !following || id != victimID {
			continue
		}
		if err := StopMonitoring(s, rules); err != nil {
			s.StopFollowing()
			s.SetState(model.StateIdle)
			s.ClearTarget()
		}
		released = append(released, s.ID())
	}
	return released
}
