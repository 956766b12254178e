package feedback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonathan/resume-review/internal/types"
)

// LogSink writes feedback as structured log records
type LogSink struct {
	Logger *slog.Logger
}

// Send implements Sink.
func (s LogSink) Send(ctx context.Context, fb types.BulletFeedback) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "bullet feedback",
		"session_id", fb.SessionID,
		"role_key", fb.RoleKey,
		"bullet_index", fb.BulletIndex,
		"source", fb.Source,
		"vote", fb.Vote)
	return nil
}

// Recorder persists feedback; implemented by the database stores
type Recorder interface {
	RecordFeedback(ctx context.Context, fb *types.BulletFeedback) error
}

// StoreSink records feedback through a Recorder
type StoreSink struct {
	Store Recorder
}

// Send implements Sink.
func (s StoreSink) Send(ctx context.Context, fb types.BulletFeedback) error {
	return s.Store.RecordFeedback(ctx, &fb)
}

// MultiSink delivers to every sink and joins their errors
type MultiSink []Sink

// Send implements Sink.
func (m MultiSink) Send(ctx context.Context, fb types.BulletFeedback) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Send(ctx, fb); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
