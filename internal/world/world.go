// Package world owns every simulated entity and advances them one tick at a time.
//
// All entity state is guarded by a single mutex: a tick, a command and a
// snapshot never interleave, so readers always see a state between ticks.
package world

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/udisondev/sarsim/internal/agent"
	"github.com/udisondev/sarsim/internal/config"
	"github.com/udisondev/sarsim/internal/model"
)

var (
	// ErrOutOfRegion is returned when a victim is placed outside the rescue region.
	ErrOutOfRegion = errors.New("position outside rescue region")
	// ErrRegionSaturated is returned when no spawn point respects the minimum separation.
	ErrRegionSaturated = errors.New("no free spawn position")
)

// Stats are cumulative mission counters.
type Stats struct {
	VictimsDiscovered int     `json:"victims_discovered"`
	VictimsRescued    int     `json:"victims_rescued"`
	ActiveVictims     int     `json:"active_victims"`
	TotalDistance     float64 `json:"total_distance"`
}

// World holds the simulation state.
type World struct {
	mu sync.Mutex

	cfg   config.Config
	rules agent.Rules
	rng   *rand.Rand
	clock func() time.Time
	ids   *IDGenerator

	scouts   []*model.Scout
	rescuers []*model.Rescuer
	victims  []*model.Victim

	agents     map[string]model.Agent
	victimByID map[string]int // id → index in victims

	grid  *Grid
	tick  uint64
	stats Stats

	sinksMu sync.RWMutex
	sinks   []EventSink

	// beforeUpdate runs ahead of every entity update; tests use it to inject faults.
	beforeUpdate func(entityID string)
}

// Option customizes a World at construction.
type Option func(*World)

// WithClock replaces the wall clock used for discovery and event timestamps.
func WithClock(clock func() time.Time) Option {
	return func(w *World) { w.clock = clock }
}

// WithRand replaces the random source used for drift and spawning.
func WithRand(rng *rand.Rand) Option {
	return func(w *World) { w.rng = rng }
}

// WithSink subscribes sink to world events from the first tick.
func WithSink(sink EventSink) Option {
	return func(w *World) { w.sinks = append(w.sinks, sink) }
}

// New builds a world and populates it from cfg.
//
// Agents are assigned round-robin to stations (agent i → station i mod N) and
// start IDLE there. Victims are spread over the rescue region at least
// MinSeparation apart.
func New(cfg config.Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rules := agent.RulesFromConfig(cfg)
	w := &World{
		cfg:        cfg,
		rules:      rules,
		clock:      time.Now,
		ids:        NewIDGenerator(),
		agents:     make(map[string]model.Agent, cfg.Scouts.Count+cfg.Rescuers.Count),
		victimByID: make(map[string]int, cfg.Victims.Count),
		grid:       NewGrid(rules.Region, max(cfg.Scouts.DetectionRadius, cfg.Rescuers.DetectionRadius)),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		seed := cfg.Simulation.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		w.rng = rand.New(rand.NewPCG(seed, seed))
	}

	for i := range cfg.Scouts.Count {
		id := w.ids.NextScoutID()
		station := i % len(rules.Stations)
		s := model.NewScout(id, rules.Stations[station], station,
			cfg.Scouts.Speed, cfg.Scouts.DetectionRadius, LaneForID(id, rules.Lanes))
		w.scouts = append(w.scouts, s)
		w.agents[id] = s
	}

	for i := range cfg.Rescuers.Count {
		id := w.ids.NextRescuerID()
		station := i % len(rules.Stations)
		r := model.NewRescuer(id, rules.Stations[station], station,
			cfg.Rescuers.Speed, cfg.Rescuers.DetectionRadius, cfg.Rescuers.Capacity)
		w.rescuers = append(w.rescuers, r)
		w.agents[id] = r
	}

	for range cfg.Victims.Count {
		pos, err := w.freeSpawnPosition()
		if err != nil {
			return nil, fmt.Errorf("spawning victims: %w", err)
		}
		w.spawnVictim(pos)
	}

	w.reindex()

	slog.Info("world created",
		"scouts", len(w.scouts),
		"rescuers", len(w.rescuers),
		"victims", len(w.victims),
		"region", fmt.Sprintf("%v..%v", rules.Region.Min, rules.Region.Max))

	return w, nil
}

// Rules returns the movement and behavior parameters of this world.
func (w *World) Rules() agent.Rules {
	return w.rules
}

// Subscribe registers sink for events published after subsequent ticks.
func (w *World) Subscribe(sink EventSink) {
	w.sinksMu.Lock()
	w.sinks = append(w.sinks, sink)
	w.sinksMu.Unlock()
}

// Tick implements the tick manager's controller contract.
func (w *World) Tick() {
	w.Step()
}

// Step advances the world by one tick.
//
// Order within a tick: victims drift, the spatial index is rebuilt, scouts
// act, then rescuers act. Each entity is updated at most once. A panic while
// updating one entity is logged and the tick goes on with the rest.
func (w *World) Step() {
	w.mu.Lock()
	events := w.stepLocked()
	w.mu.Unlock()

	w.publish(events)
}

func (w *World) stepLocked() []Event {
	w.tick++
	now := w.clock()
	idx := victimIndex{w}

	var events []Event
	emit := func(kind EventKind, agentID, victimID string, pos model.Position, detail string) {
		events = append(events, Event{
			Tick:     w.tick,
			At:       now,
			Kind:     kind,
			AgentID:  agentID,
			VictimID: victimID,
			Position: pos,
			Detail:   detail,
		})
	}

	for _, v := range w.victims {
		if !v.IsActive() {
			continue
		}
		w.guard(v.ID(), func() {
			agent.DriftVictim(v, w.rules, w.rng)
		})
	}

	w.reindex()

	for _, s := range w.scouts {
		w.guard(s.ID(), func() {
			out := agent.StepScout(s, idx, w.rules, now)
			w.stats.TotalDistance += out.Distance

			for _, v := range out.Discovered {
				w.stats.VictimsDiscovered++
				emit(EventVictimDiscovered, s.ID(), v.ID(), v.Position(), fmt.Sprintf("distress=%d", v.DistressLevel()))
			}
			if out.Followed != nil {
				emit(EventMonitoringStarted, s.ID(), out.Followed.ID(), s.Position(), "")
			}
			if out.LostTrack != "" {
				emit(EventTrackLost, s.ID(), out.LostTrack, s.Position(), "")
			}
			if out.Returned {
				emit(EventAgentReturned, s.ID(), "", s.Position(), fmt.Sprintf("station=%d", s.HomeStation()))
			}
		})
	}

	for _, r := range w.rescuers {
		w.guard(r.ID(), func() {
			out := agent.StepRescuer(r, idx, w.rules)
			w.stats.TotalDistance += out.Distance

			for _, v := range out.Rescued {
				w.stats.VictimsRescued++
				released := agent.ReleaseFollowers(w.scouts, v.ID(), w.rules)
				detail := ""
				if len(released) > 0 {
					detail = "released=" + strings.Join(released, ",")
				}
				emit(EventVictimRescued, r.ID(), v.ID(), v.Position(), detail)
			}
			if out.Returned {
				emit(EventAgentReturned, r.ID(), "", r.Position(), fmt.Sprintf("station=%d unloaded=%d", r.HomeStation(), out.Unloaded))
			}
		})
	}

	w.stats.ActiveVictims = w.activeVictimsLocked()

	if len(events) > 0 || w.tick%uint64(max(w.cfg.Simulation.TickRate, 1)) == 0 {
		slog.Debug("world tick",
			"tick", w.tick,
			"events", len(events),
			"active_victims", w.stats.ActiveVictims)
	}

	return events
}

// guard runs fn and turns a panic into a log record.
func (w *World) guard(entityID string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("entity update panicked",
				"entity", entityID,
				"tick", w.tick,
				"panic", r)
		}
	}()
	if w.beforeUpdate != nil {
		w.beforeUpdate(entityID)
	}
	fn()
}

// reindex rebuilds the spatial grid from active victim positions.
func (w *World) reindex() {
	w.grid.Clear()
	for i, v := range w.victims {
		if v.IsActive() {
			w.grid.Insert(i, v.Position())
		}
	}
}

func (w *World) activeVictimsLocked() int {
	n := 0
	for _, v := range w.victims {
		if v.IsActive() {
			n++
		}
	}
	return n
}

// Emit stamps ev with the current tick and time if unset and publishes it.
func (w *World) Emit(ev Event) {
	w.mu.Lock()
	if ev.Tick == 0 {
		ev.Tick = w.tick
	}
	w.mu.Unlock()
	if ev.At.IsZero() {
		ev.At = w.clock()
	}
	w.publish([]Event{ev})
}

func (w *World) publish(events []Event) {
	if len(events) == 0 {
		return
	}

	w.sinksMu.RLock()
	sinks := w.sinks
	w.sinksMu.RUnlock()

	for _, ev := range events {
		switch ev.Kind {
		case EventVictimDiscovered, EventVictimRescued:
			slog.Info(strings.ReplaceAll(string(ev.Kind), "_", " "),
				"tick", ev.Tick,
				"agent", ev.AgentID,
				"victim", ev.VictimID,
				"position", ev.Position.String())
		}
		for _, sink := range sinks {
			sink.Publish(ev)
		}
	}
}

// WithAgent runs fn on the agent with id while holding the world lock.
// found is false when no scout or rescuer has that id.
func (w *World) WithAgent(id string, fn func(model.Agent) error) (found bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.agents[id]
	if !ok {
		return false, nil
	}
	return true, fn(a)
}

// AddVictim spawns a victim at a random free position in the rescue region.
func (w *World) AddVictim() (VictimView, error) {
	w.mu.Lock()
	pos, err := w.freeSpawnPosition()
	if err != nil {
		w.mu.Unlock()
		return VictimView{}, err
	}
	view, ev := w.addVictimLocked(pos)
	w.mu.Unlock()

	w.publish([]Event{ev})
	return view, nil
}

// AddVictimAt spawns a victim at pos. The minimum separation does not apply
// to explicit placement.
func (w *World) AddVictimAt(pos model.Position) (VictimView, error) {
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || !pos.Within(w.rules.Region) {
		return VictimView{}, fmt.Errorf("%w: %s", ErrOutOfRegion, pos)
	}

	w.mu.Lock()
	view, ev := w.addVictimLocked(pos)
	w.mu.Unlock()

	w.publish([]Event{ev})
	return view, nil
}

func (w *World) addVictimLocked(pos model.Position) (VictimView, Event) {
	v := w.spawnVictim(pos)
	w.grid.Insert(w.victimByID[v.ID()], v.Position())
	w.stats.ActiveVictims = w.activeVictimsLocked()

	ev := Event{
		Tick:     w.tick,
		At:       w.clock(),
		Kind:     EventVictimAdded,
		VictimID: v.ID(),
		Position: v.Position(),
		Detail:   fmt.Sprintf("distress=%d", v.DistressLevel()),
	}
	return victimView(v), ev
}

func (w *World) spawnVictim(pos model.Position) *model.Victim {
	v := model.NewVictim(
		w.ids.NextVictimID(),
		pos,
		w.cfg.Victims.Speed,
		1+w.rng.IntN(5),
		w.rng.Float64()*2*math.Pi,
	)
	w.victimByID[v.ID()] = len(w.victims)
	w.victims = append(w.victims, v)
	return v
}

// freeSpawnPosition samples the rescue region until a point is at least
// MinSeparation away from every active victim.
func (w *World) freeSpawnPosition() (model.Position, error) {
	region := w.rules.Region
	attempts := max(w.cfg.Victims.SpawnAttempts, 1)

	for range attempts {
		p := model.NewPosition(
			region.Min[0]+w.rng.Float64()*(region.Max[0]-region.Min[0]),
			region.Min[1]+w.rng.Float64()*(region.Max[1]-region.Min[1]),
		)
		if w.isFree(p) {
			return p, nil
		}
	}
	return model.Position{}, fmt.Errorf("%w after %d attempts", ErrRegionSaturated, attempts)
}

func (w *World) isFree(p model.Position) bool {
	for _, v := range w.victims {
		if v.IsActive() && v.Position().DistanceTo(p) < w.cfg.Victims.MinSeparation {
			return false
		}
	}
	return true
}

// NearestVictim returns the active victim closest to p.
func (w *World) NearestVictim(p model.Position) (VictimView, float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var (
		best     *model.Victim
		bestDist = math.Inf(1)
	)
	for _, v := range w.victims {
		if !v.IsActive() {
			continue
		}
		if d := v.Position().DistanceTo(p); d < bestDist {
			best, bestDist = v, d
		}
	}
	if best == nil {
		return VictimView{}, 0, false
	}
	return victimView(best), bestDist, true
}

// RemoveNearestVictim deactivates the active victim closest to p without
// counting it as rescued. Scouts tracking it go back to their sweep at once.
func (w *World) RemoveNearestVictim(p model.Position) (VictimView, bool) {
	w.mu.Lock()

	var (
		best     *model.Victim
		bestDist = math.Inf(1)
	)
	for _, v := range w.victims {
		if v.IsActive() {
			if d := v.Position().DistanceTo(p); d < bestDist {
				best, bestDist = v, d
			}
		}
	}
	if best == nil {
		w.mu.Unlock()
		return VictimView{}, false
	}
	best.Deactivate()
	w.stats.ActiveVictims = w.activeVictimsLocked()

	released := agent.ReleaseFollowers(w.scouts, best.ID(), w.rules)
	events := make([]Event, 0, len(released))
	now := w.clock()
	for _, id := range released {
		a := w.agents[id]
		events = append(events, Event{
			Tick:     w.tick,
			At:       now,
			Kind:     EventTrackLost,
			AgentID:  id,
			VictimID: best.ID(),
			Position: a.Base().Position(),
			Detail:   "victim removed",
		})
	}
	view := victimView(best)
	w.mu.Unlock()

	w.publish(events)
	return view, true
}

// CurrentTick returns the number of completed ticks.
func (w *World) CurrentTick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Stats returns the cumulative mission counters.
func (w *World) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.stats
	s.ActiveVictims = w.activeVictimsLocked()
	return s
}

// ScanPatterns returns the sweep of every scout that has generated one.
func (w *World) ScanPatterns() map[string][]model.Position {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string][]model.Position, len(w.scouts))
	for _, s := range w.scouts {
		if s.HasScanPattern() {
			out[s.ID()] = s.ScanPattern()
		}
	}
	return out
}

// victimIndex exposes victim lookups to agent behavior. Used under w.mu only.
type victimIndex struct {
	w *World
}

func (x victimIndex) Victim(id string) (*model.Victim, bool) {
	i, ok := x.w.victimByID[id]
	if !ok {
		return nil, false
	}
	return x.w.victims[i], true
}

func (x victimIndex) VictimsWithin(p model.Position, radius float64) []*model.Victim {
	var out []*model.Victim
	for _, i := range x.w.grid.Query(p, radius) {
		v := x.w.victims[i]
		if v.IsActive() && v.Position().DistanceTo(p) <= radius {
			out = append(out, v)
		}
	}
	return out
}
