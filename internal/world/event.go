package world

import (
	"time"

	"github.com/udisondev/sarsim/internal/model"
)

// EventKind classifies world events.
type EventKind string

const (
	EventVictimDiscovered  EventKind = "victim_discovered"
	EventMonitoringStarted EventKind = "monitoring_started"
	EventTrackLost         EventKind = "track_lost"
	EventVictimRescued     EventKind = "victim_rescued"
	EventAgentReturned     EventKind = "agent_returned"
	EventVictimAdded       EventKind = "victim_added"
	EventCommand           EventKind = "command"
)

// Event is something observable that happened in the world.
type Event struct {
	Tick     uint64         `json:"tick"`
	At       time.Time      `json:"at"`
	Kind     EventKind      `json:"kind"`
	AgentID  string         `json:"agent_id,omitempty"`
	VictimID string         `json:"victim_id,omitempty"`
	Position model.Position `json:"position"`
	Detail   string         `json:"detail,omitempty"`
}

// EventSink receives world events after the tick that produced them.
// Publish must not block and must be safe for concurrent use.
type EventSink interface {
	Publish(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }
