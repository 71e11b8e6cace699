package journal

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/sarsim/internal/world"
)

// flushTimeout bounds the final flush after the run context is canceled.
const flushTimeout = 5 * time.Second

// Writer buffers world events and appends them to a Store in batches.
// Publish never blocks the tick loop: when the queue is full the event is dropped.
type Writer struct {
	store         Store
	runID         uuid.UUID
	queue         chan world.Event
	flushInterval time.Duration

	seq     int64
	written atomic.Uint64
	dropped atomic.Uint64
}

// NewWriter creates a writer for runID. Call Run to start flushing.
func NewWriter(store Store, runID uuid.UUID, queueSize int, flushInterval time.Duration) *Writer {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if flushInterval <= 0 {
		flushInterval = 250 * time.Millisecond
	}
	return &Writer{
		store:         store,
		runID:         runID,
		queue:         make(chan world.Event, queueSize),
		flushInterval: flushInterval,
	}
}

// Publish implements world.EventSink.
func (w *Writer) Publish(ev world.Event) {
	select {
	case w.queue <- ev:
	default:
		if n := w.dropped.Add(1); n == 1 || n%100 == 0 {
			slog.Warn("journal queue full, dropping events", "dropped", n)
		}
	}
}

// Run flushes queued events until ctx is canceled, then drains what is left.
func (w *Writer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	slog.Info("journal writer started", "run", w.runID, "flush_interval", w.flushInterval)

	var batch []Record
	for {
		select {
		case <-ctx.Done():
			batch = w.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			w.flush(flushCtx, batch)
			cancel()
			slog.Info("journal writer stopped",
				"written", w.written.Load(),
				"dropped", w.dropped.Load())
			return ctx.Err()

		case ev := <-w.queue:
			batch = append(batch, w.record(ev))

		case <-ticker.C:
			w.flush(ctx, batch)
			batch = batch[:0]
		}
	}
}

func (w *Writer) drain(batch []Record) []Record {
	for {
		select {
		case ev := <-w.queue:
			batch = append(batch, w.record(ev))
		default:
			return batch
		}
	}
}

func (w *Writer) record(ev world.Event) Record {
	w.seq++
	return RecordFromEvent(w.seq, ev)
}

func (w *Writer) flush(ctx context.Context, batch []Record) {
	if len(batch) == 0 {
		return
	}
	if err := w.store.Append(ctx, w.runID, batch); err != nil {
		slog.Error("journal flush failed", "run", w.runID, "records", len(batch), "err", err)
		return
	}
	w.written.Add(uint64(len(batch)))
}

// Written returns how many records reached the store.
func (w *Writer) Written() uint64 {
	return w.written.Load()
}

// Dropped returns how many events were discarded because the queue was full.
func (w *Writer) Dropped() uint64 {
	return w.dropped.Load()
}
