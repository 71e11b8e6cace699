package journal

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[uuid.UUID]Run
	records map[uuid.UUID][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:    make(map[uuid.UUID]Run),
		records: make(map[uuid.UUID][]Record),
	}
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) StartRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("run %s already started", run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) Append(_ context.Context, runID uuid.UUID, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	s.records[runID] = append(s.records[runID], records...)
	return nil
}

func (s *MemoryStore) Records(_ context.Context, runID uuid.UUID) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.records[runID])
	slices.SortStableFunc(out, func(a, b Record) int { return cmp.Compare(a.Seq, b.Seq) })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
