package suggest

import (
	"context"
	"time"

	"github.com/jonathan/resume-review/internal/types"
)

// StaticSuggester returns canned suggestions. It serves offline CLI runs and tests.
type StaticSuggester struct {
	// ByRole holds suggestions per role; roles not listed get Default.
	ByRole  map[types.RoleKey][]string
	Default []string
	// Delay simulates model latency and honors context cancellation.
	Delay time.Duration
	// Err, when set, is returned instead of suggestions.
	Err error
}

// Suggest implements Suggester.
func (s *StaticSuggester) Suggest(ctx context.Context, req Request) ([]string, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}

	bullets, ok := s.ByRole[req.RoleKey]
	if !ok {
		bullets = s.Default
	}
	return append([]string(nil), bullets...), nil
}
