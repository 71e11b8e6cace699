package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/udisondev/sarsim/internal/model"
	"github.com/udisondev/sarsim/internal/world"
)

// SQLiteStore keeps the journal in a single SQLite file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging %s: %w", s.path, err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := runMigrations(ctx, db, "sqlite3"); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) StartRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO journal_runs (id, started_at, seed, scouts, rescuers, victims)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.StartedAt.UnixNano(), int64(run.Seed), run.Scouts, run.Rescuers, run.Victims)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, runID uuid.UUID, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_runs WHERE id = ?`, runID.String()).Scan(&exists); err != nil {
		return fmt.Errorf("checking run %s: %w", runID, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_events (run_id, seq, tick, at, kind, agent_id, victim_id, x, y, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			runID.String(), r.Seq, int64(r.Tick), r.At.UnixNano(), string(r.Kind),
			r.AgentID, r.VictimID, r.Position.X, r.Position.Y, r.Detail)
		if err != nil {
			return fmt.Errorf("inserting record %d: %w", r.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Records(ctx context.Context, runID uuid.UUID) ([]Record, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT seq, tick, at, kind, agent_id, victim_id, x, y, detail
		FROM journal_events WHERE run_id = ? ORDER BY seq
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("querying records of %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			tick, at int64
			kind     string
			x, y     float64
		)
		if err := rows.Scan(&r.Seq, &tick, &at, &kind, &r.AgentID, &r.VictimID, &x, &y, &r.Detail); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Tick = uint64(tick)
		r.At = time.Unix(0, at).UTC()
		r.Kind = world.EventKind(kind)
		r.Position = model.NewPosition(x, y)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}
