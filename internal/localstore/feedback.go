package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/resume-review/internal/types"
)

// RecordFeedback stores one bullet rating
func (s *Store) RecordFeedback(ctx context.Context, fb *types.BulletFeedback) error {
	if fb.Vote != types.VoteUp && fb.Vote != types.VoteDown {
		return fmt.Errorf("localstore: invalid vote %q", fb.Vote)
	}
	at := fb.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (session_id, role_key, bullet_index, source, text, vote, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fb.SessionID.String(), string(fb.RoleKey), fb.BulletIndex, fb.Source, fb.Text, string(fb.Vote),
		at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("localstore: record feedback: %w", err)
	}
	return nil
}

// FeedbackCounts returns the number of up and down votes across all sessions
func (s *Store) FeedbackCounts(ctx context.Context) (up, down int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(CASE WHEN vote = 'up' THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN vote = 'down' THEN 1 ELSE 0 END), 0)
		 FROM feedback`,
	).Scan(&up, &down)
	if err != nil {
		return 0, 0, fmt.Errorf("localstore: count feedback: %w", err)
	}
	return up, down, nil
}
