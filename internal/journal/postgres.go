package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/udisondev/sarsim/internal/model"
	"github.com/udisondev/sarsim/internal/world"
)

var eventColumns = []string{"run_id", "seq", "tick", "at", "kind", "agent_id", "victim_id", "x", "y", "detail"}

// PostgresStore keeps the journal in PostgreSQL. Batches are written with COPY.
type PostgresStore struct {
	dsn string

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

func NewPostgresStore(dsn string) *PostgresStore {
	return &PostgresStore{dsn: dsn}
}

// Init migrates the schema and connects the pool.
func (s *PostgresStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		return nil
	}

	if err := s.migrate(ctx); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pinging database: %w", err)
	}

	s.pool = pool
	slog.Info("journal database connected")
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	sqlDB, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return runMigrations(ctx, sqlDB, "postgres")
}

func (s *PostgresStore) StartRun(ctx context.Context, run Run) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO journal_runs (id, started_at, seed, scouts, rescuers, victims)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID.String(), run.StartedAt.UnixNano(), int64(run.Seed), run.Scouts, run.Rescuers, run.Victims,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, runID uuid.UUID, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "run", runID, "err", err)
		}
	}()

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_runs WHERE id = $1)`, runID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking run %s: %w", runID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}

	id := runID.String()
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			id, r.Seq, int64(r.Tick), r.At.UnixNano(), string(r.Kind),
			r.AgentID, r.VictimID, r.Position.X, r.Position.Y, r.Detail,
		})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"journal_events"}, eventColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copying %d records: %w", len(rows), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Records(ctx context.Context, runID uuid.UUID) ([]Record, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx,
		`SELECT seq, tick, at, kind, agent_id, victim_id, x, y, detail
		 FROM journal_events WHERE run_id = $1 ORDER BY seq`, runID.String())
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

func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

func (s *PostgresStore) getPool() (*pgxpool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pool == nil {
		return nil, errors.New("postgres store is not initialized")
	}
	return s.pool, nil
}
