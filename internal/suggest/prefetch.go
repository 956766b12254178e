package suggest

import (
	"context"
	"time"

	"github.com/jonathan/resume-review/internal/types"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one role's fetch. Err is set when the role's
// suggestions are unavailable.
type Result struct {
	Bullets []string
	Err     error
}

// Prefetch fetches suggestions for several roles concurrently, at most limit at a
// time, each bounded by timeout. A failing role never cancels the others.
func Prefetch(ctx context.Context, s Suggester, reqs []Request, limit int, timeout time.Duration) map[types.RoleKey]Result {
	if limit <= 0 {
		limit = 4
	}

	results := make([]Result, len(reqs))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, req := range reqs {
		g.Go(func() error {
			fetchCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			bullets, err := s.Suggest(fetchCtx, req)
			results[i] = Result{Bullets: bullets, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[types.RoleKey]Result, len(reqs))
	for i, req := range reqs {
		out[req.RoleKey] = results[i]
	}
	return out
}
