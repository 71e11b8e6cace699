package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/sarsim/internal/config"
	"github.com/udisondev/sarsim/internal/testutil"
	"github.com/udisondev/sarsim/internal/world"
)

func TestWriter_FlushesOnCancel(t *testing.T) {
	store := NewMemoryStore()
	run := NewRun(config.Default(), testStart)
	require.NoError(t, store.StartRun(context.Background(), run))

	w := NewWriter(store, run.ID, 16, time.Hour)
	for i := range 5 {
		w.Publish(world.Event{Tick: uint64(i + 1), Kind: world.EventVictimDiscovered, AgentID: "uav1"})
	}

	ctx, cancel := testutil.ContextWithCancel(t)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(w.queue) == 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	records, err := store.Records(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, r := range records {
		assert.Equal(t, int64(i+1), r.Seq)
		assert.Equal(t, uint64(i+1), r.Tick)
	}
	assert.Equal(t, uint64(5), w.Written())
}

func TestWriter_PeriodicFlush(t *testing.T) {
	store := NewMemoryStore()
	run := NewRun(config.Default(), testStart)
	require.NoError(t, store.StartRun(context.Background(), run))

	w := NewWriter(store, run.ID, 16, 5*time.Millisecond)
	ctx, cancel := testutil.ContextWithCancel(t)
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	w.Publish(world.Event{Kind: world.EventVictimRescued, AgentID: "boat1", VictimID: "victim1"})

	require.Eventually(t, func() bool {
		records, err := store.Records(context.Background(), run.ID)
		return err == nil && len(records) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestWriter_DropsWhenFull(t *testing.T) {
	w := NewWriter(NewMemoryStore(), uuid.New(), 2, time.Hour)

	for range 5 {
		w.Publish(world.Event{Kind: world.EventCommand})
	}

	assert.Equal(t, uint64(3), w.Dropped())
	assert.Len(t, w.queue, 2)
}

// failingStore rejects every append.
type failingStore struct {
	*MemoryStore
	mu    sync.Mutex
	calls int
}

func (s *failingStore) Append(context.Context, uuid.UUID, []Record) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return errors.New("disk full")
}

func TestWriter_StoreErrorsDoNotStopWriter(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore()}
	w := NewWriter(store, uuid.New(), 16, 2*time.Millisecond)

	ctx, cancel := testutil.ContextWithCancel(t)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.Publish(world.Event{Kind: world.EventCommand})
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.calls >= 1
	}, time.Second, time.Millisecond)

	w.Publish(world.Event{Kind: world.EventCommand})
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.calls >= 2
	}, time.Second, time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, uint64(0), w.Written())
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		backend string
		want    any
		wantErr bool
	}{
		{"", &MemoryStore{}, false},
		{"memory", &MemoryStore{}, false},
		{"sqlite", &SQLiteStore{}, false},
		{"postgres", &PostgresStore{}, false},
		{"mongo", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.Default().Journal
			cfg.Backend = tt.backend

			store, err := NewStore(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := config.Default().Journal
	cfg.Backend = "sqlite"
	cfg.SQLitePath = t.TempDir() + "/open.db"

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	run := NewRun(config.Default(), testStart)
	require.NoError(t, store.StartRun(context.Background(), run))
}
