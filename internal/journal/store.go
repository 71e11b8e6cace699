// Package journal records what happened during a run: discoveries, rescues,
// returns and operator commands. It is an audit trail only; a world is never
// restored from it.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/sarsim/internal/config"
	"github.com/udisondev/sarsim/internal/model"
	"github.com/udisondev/sarsim/internal/world"
)

// ErrUnknownRun is returned when appending to a run that was never started.
var ErrUnknownRun = errors.New("unknown run")

// Run describes one simulation run.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Seed      uint64
	Scouts    int
	Rescuers  int
	Victims   int
}

// NewRun describes a run starting now with the given configuration.
func NewRun(cfg config.Config, startedAt time.Time) Run {
	return Run{
		ID:        uuid.New(),
		StartedAt: startedAt,
		Seed:      cfg.Simulation.Seed,
		Scouts:    cfg.Scouts.Count,
		Rescuers:  cfg.Rescuers.Count,
		Victims:   cfg.Victims.Count,
	}
}

// Record is one journaled event. Seq is unique and increasing within a run.
type Record struct {
	Seq      int64
	Tick     uint64
	At       time.Time
	Kind     world.EventKind
	AgentID  string
	VictimID string
	Position model.Position
	Detail   string
}

// RecordFromEvent converts a world event into a record with sequence number seq.
func RecordFromEvent(seq int64, ev world.Event) Record {
	return Record{
		Seq:      seq,
		Tick:     ev.Tick,
		At:       ev.At,
		Kind:     ev.Kind,
		AgentID:  ev.AgentID,
		VictimID: ev.VictimID,
		Position: ev.Position,
		Detail:   ev.Detail,
	}
}

// Store persists runs and their records.
type Store interface {
	// Init prepares the backend (connects, migrates). Safe to call twice.
	Init(ctx context.Context) error
	StartRun(ctx context.Context, run Run) error
	Append(ctx context.Context, runID uuid.UUID, records []Record) error
	// Records returns every record of runID ordered by Seq.
	Records(ctx context.Context, runID uuid.UUID) ([]Record, error)
	Close() error
}

// NewStore creates the backend selected by cfg.Backend. The store is not initialized.
func NewStore(cfg config.Journal) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath), nil
	case "postgres":
		return NewPostgresStore(cfg.Database.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported journal backend: %s", cfg.Backend)
	}
}

// Open creates and initializes the backend selected by cfg.
func Open(ctx context.Context, cfg config.Journal) (Store, error) {
	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initializing %s journal: %w", backendName(cfg.Backend), err)
	}
	return store, nil
}

func backendName(b string) string {
	if b == "" {
		return "memory"
	}
	return b
}
