package world

import (
	"time"

	"github.com/udisondev/sarsim/internal/agent"
	"github.com/udisondev/sarsim/internal/model"
)

// AgentView is a read-only copy of one agent's observable state.
type AgentView struct {
	ID          string           `json:"id"`
	Kind        model.Kind       `json:"kind"`
	Position    model.Position   `json:"position"`
	State       model.AgentState `json:"state"`
	Target      *model.Position  `json:"target,omitempty"`
	HomeStation int              `json:"home_station"`
	Velocity    float64          `json:"velocity"`
	Radius      float64          `json:"detection_radius"`

	// DetectedVictims is the number of active victims inside the detection radius.
	DetectedVictims int `json:"detected_victims"`

	// Scout only.
	FollowingVictim string `json:"following_victim,omitempty"`
	PatternIndex    int    `json:"pattern_index,omitempty"`

	// Rescuer only.
	Onboard  int `json:"onboard,omitempty"`
	Rescued  int `json:"rescued,omitempty"`
	Capacity int `json:"capacity,omitempty"`
}

// VictimView is a read-only copy of one victim.
type VictimView struct {
	ID            string         `json:"id"`
	Position      model.Position `json:"position"`
	DistressLevel int            `json:"distress_level"`
	Discovered    bool           `json:"discovered"`
	DiscoveredAt  *time.Time     `json:"discovered_at,omitempty"`
	Active        bool           `json:"active"`
}

// Snapshot is a consistent copy of the world between two ticks.
type Snapshot struct {
	Tick     uint64          `json:"tick"`
	Scouts   []AgentView     `json:"uavs"`
	Rescuers []AgentView     `json:"boats"`
	Victims  []VictimView    `json:"victims"`
	Stations []model.Station `json:"stations"`
	Stats    Stats           `json:"stats"`
}

// Snapshot copies the observable state of every entity.
// Entities appear in creation order.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := victimIndex{w}
	snap := Snapshot{
		Tick:     w.tick,
		Scouts:   make([]AgentView, 0, len(w.scouts)),
		Rescuers: make([]AgentView, 0, len(w.rescuers)),
		Victims:  make([]VictimView, 0, len(w.victims)),
		Stations: make([]model.Station, 0, len(w.rules.Stations)),
		Stats:    w.stats,
	}
	snap.Stats.ActiveVictims = w.activeVictimsLocked()

	for _, s := range w.scouts {
		view := agentView(&s.Entity)
		view.Radius = s.DetectionRadius()
		view.DetectedVictims = agent.DetectableCount(s, idx)
		view.FollowingVictim, _ = s.FollowingVictim()
		view.PatternIndex = s.PatternIndex()
		snap.Scouts = append(snap.Scouts, view)
	}

	for _, r := range w.rescuers {
		view := agentView(&r.Entity)
		view.Radius = r.DetectionRadius()
		view.DetectedVictims = len(agent.DetectVictims(r, idx))
		view.Onboard = r.Onboard()
		view.Rescued = r.RescuedCount()
		view.Capacity = r.RescueCapacity()
		snap.Rescuers = append(snap.Rescuers, view)
	}

	for _, v := range w.victims {
		snap.Victims = append(snap.Victims, victimView(v))
	}

	for i, p := range w.rules.Stations {
		snap.Stations = append(snap.Stations, model.Station{Index: i, Position: p})
	}

	return snap
}

// VictimFilter narrows Victims. Zero value matches every victim.
type VictimFilter struct {
	Active     bool // skip rescued and removed victims
	Discovered bool // skip victims no scout has found yet
}

func (f VictimFilter) match(v *model.Victim) bool {
	if f.Active && !v.IsActive() {
		return false
	}
	if f.Discovered && !v.IsDiscovered() {
		return false
	}
	return true
}

// Victims returns a copy of every victim matching f, in creation order.
func (w *World) Victims(f VictimFilter) []VictimView {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]VictimView, 0, len(w.victims))
	for _, v := range w.victims {
		if f.match(v) {
			out = append(out, victimView(v))
		}
	}
	return out
}

func agentView(e *model.Entity) AgentView {
	view := AgentView{
		ID:          e.ID(),
		Kind:        e.Kind(),
		Position:    e.Position(),
		State:       e.State(),
		HomeStation: e.HomeStation(),
		Velocity:    e.Velocity(),
	}
	if t, ok := e.Target(); ok {
		view.Target = &t
	}
	return view
}

func victimView(v *model.Victim) VictimView {
	view := VictimView{
		ID:            v.ID(),
		Position:      v.Position(),
		DistressLevel: v.DistressLevel(),
		Discovered:    v.IsDiscovered(),
		Active:        v.IsActive(),
	}
	if v.IsDiscovered() {
		t := v.DiscoveryTime()
		view.DiscoveredAt = &t
	}
	return view
}
