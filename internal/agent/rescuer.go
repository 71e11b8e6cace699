package agent

import "github.com/udisondev/sarsim/internal/model"

// RescuerOutcome reports what happened to a rescuer during one tick.
type RescuerOutcome struct {
	Rescued []*model.Victim
	// Full is set when the last pickup filled the boat and it turned for home.
	Full     bool
	Returned bool
	Unloaded int
	Distance float64
}

// StepRescuer moves a rescuer and applies the pickup and arrival policies.
//
// While RESCUING, every discovered victim within the detection radius is taken
// aboard until capacity is reached; a full boat heads home. A RETURNING boat
// that reaches its station unloads and goes IDLE.
func StepRescuer(r *model.Rescuer, victims VictimIndex, rules Rules) RescuerOutcome {
	var out RescuerOutcome

	out.Distance = MoveTowardTarget(&r.Entity, rules.ArrivalThreshold)

	switch r.State() {
	case model.StateRescuing:
		for _, v := range DetectVictims(r, victims) {
			if !v.IsDiscovered() {
				continue
			}
			if !r.TakeAboard() {
				break
			}
			v.Deactivate()
			out.Rescued = append(out.Rescued, v)
		}
		if r.IsFull() {
			if err := Return(r, rules); err == nil {
				out.Full = true
			}
		}

	case model.StateReturning:
		if arrivedHome(&r.Entity, rules) {
			r.SetState(model.StateIdle)
			r.ClearTarget()
			out.Unloaded = r.Unload()
			out.Returned = true
		}
	}

	return out
}

// DetectVictims reports active victims within the rescuer's radius.
// Pure query: nothing is mutated.
func DetectVictims(r *model.Rescuer, victims VictimIndex) []*model.Victim {
	return victims.VictimsWithin(r.Position(), r.DetectionRadius())
}
