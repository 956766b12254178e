// Package feedback delivers bullet up/down votes to telemetry sinks without ever
// blocking the tailoring session.
package feedback

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/resume-review/internal/types"
)

// DefaultBuffer is the emitter queue size used when none is given
const DefaultBuffer = 256

const sendTimeout = 5 * time.Second

// Sink receives feedback events
type Sink interface {
	Send(ctx context.Context, fb types.BulletFeedback) error
}

// Emitter queues feedback and forwards it to a Sink from a background goroutine.
// Emit never blocks: when the queue is full the event is dropped and counted.
type Emitter struct {
	sink   Sink
	logger *slog.Logger
	queue  chan types.BulletFeedback
	done   chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewEmitter starts an emitter. A nil logger uses slog.Default().
func NewEmitter(sink Sink, buffer int, logger *slog.Logger) *Emitter {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Emitter{
		sink:   sink,
		logger: logger,
		queue:  make(chan types.BulletFeedback, buffer),
		done:   make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Emitter) run() {
	defer close(e.done)
	for fb := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := e.sink.Send(ctx, fb); err != nil {
			e.failed.Add(1)
			e.logger.Warn("feedback delivery failed",
				"session_id", fb.SessionID,
				"role_key", fb.RoleKey,
				"error", err)
		}
		cancel()
	}
}

// Emit queues an event and reports whether it was accepted.
func (e *Emitter) Emit(fb types.BulletFeedback) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.dropped.Add(1)
		return false
	}

	select {
	case e.queue <- fb:
		return true
	default:
		e.dropped.Add(1)
		return false
	}
}

// Dropped returns how many events were discarded because the queue was full or closed
func (e *Emitter) Dropped() int64 {
	return e.dropped.Load()
}

// Failed returns how many events the sink rejected
func (e *Emitter) Failed() int64 {
	return e.failed.Load()
}

// Close stops accepting events and waits for queued ones to be delivered.
func (e *Emitter) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()
	<-e.done
}
