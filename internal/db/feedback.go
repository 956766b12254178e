package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-review/internal/types"
)

// RecordFeedback stores one bullet rating
func (db *DB) RecordFeedback(ctx context.Context, fb *types.BulletFeedback) error {
	if fb.Vote != types.VoteUp && fb.Vote != types.VoteDown {
		return fmt.Errorf("invalid vote %q", fb.Vote)
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO bullet_feedback (session_id, role_key, bullet_index, source, text, vote, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		fb.SessionID, string(fb.RoleKey), fb.BulletIndex, fb.Source, fb.Text, string(fb.Vote), fb.At,
	)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	return nil
}

// TallyFeedback counts up and down votes recorded for a session
func (db *DB) TallyFeedback(ctx context.Context, sessionID uuid.UUID) (FeedbackTally, error) {
	var tally FeedbackTally
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE vote = 'up'), COUNT(*) FILTER (WHERE vote = 'down')
		 FROM bullet_feedback WHERE session_id = $1`,
		sessionID,
	).Scan(&tally.Up, &tally.Down)
	if err != nil {
		return tally, fmt.Errorf("failed to tally feedback: %w", err)
	}
	return tally, nil
}
