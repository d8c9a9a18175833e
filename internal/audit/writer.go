package audit

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/indiandesillm/inference-core/internal/resilience"
)

// Recorder is the narrow dependency of the async writer. *Store satisfies it.
type Recorder interface {
	RecordTurn(ctx context.Context, rec TurnRecord) error
}

// Writer decouples turn archiving from the request path. Records are queued
// on a bounded channel and written by a single background goroutine; when the
// queue is full the record is dropped with a warning rather than blocking a
// turn.
type Writer struct {
	log     *slog.Logger
	store   Recorder
	breaker *resilience.CircuitBreaker
	ch      chan TurnRecord

	g      *errgroup.Group
	cancel context.CancelFunc
}

// NewWriter returns a writer with the given queue depth. Call [Writer.Start]
// before enqueueing.
func NewWriter(store Recorder, log *slog.Logger, buffer int) *Writer {
	if buffer <= 0 {
		buffer = 256
	}
	return &Writer{
		log:     log,
		store:   store,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "audit"}),
		ch:      make(chan TurnRecord, buffer),
	}
}

// Start launches the background drain goroutine.
func (w *Writer) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.g, ctx = errgroup.WithContext(ctx)
	w.g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case rec, ok := <-w.ch:
				if !ok {
					return nil
				}
				err := w.breaker.Execute(func() error {
					return w.store.RecordTurn(ctx, rec)
				})
				switch {
				case errors.Is(err, resilience.ErrCircuitOpen):
					// Archive is unhealthy; drop quietly until it recovers.
				case err != nil:
					w.log.Warn("audit write failed",
						"session_id", rec.SessionID,
						"turn_index", rec.TurnIndex,
						"error", err)
				}
			}
		}
	})
}

// Enqueue queues a record without blocking. A full queue drops the record.
func (w *Writer) Enqueue(rec TurnRecord) {
	select {
	case w.ch <- rec:
	default:
		w.log.Warn("audit queue full, dropping record",
			"session_id", rec.SessionID,
			"turn_index", rec.TurnIndex)
	}
}

// Close stops the drain goroutine after the queue empties.
func (w *Writer) Close() error {
	close(w.ch)
	err := w.g.Wait()
	if w.cancel != nil {
		w.cancel()
	}
	return err
}
