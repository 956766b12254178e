package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-review/internal/types"
)

// SnapshotSummary is a listing row for saved snapshots
type SnapshotSummary struct {
	ID          uuid.UUID `json:"id"`
	JobTitle    string    `json:"job_title"`
	Company     string    `json:"company"`
	BulletTotal int       `json:"bullet_total"`
	Score       *float64  `json:"score,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

// SaveSnapshot stores a snapshot as a JSON body with indexed listing columns
func (s *Store) SaveSnapshot(ctx context.Context, snap *types.TailoredSnapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("localstore: marshal snapshot: %w", err)
	}

	var score *float64
	if snap.ATS != nil {
		score = &snap.ATS.Score
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, session_id, job_title, company, summary, body, bullet_total, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   summary = excluded.summary, body = excluded.body,
		   bullet_total = excluded.bullet_total, score = excluded.score`,
		snap.ID.String(), snap.SessionID.String(), snap.JobTitle, snap.Company, snap.Summary,
		string(body), snap.BulletTotal(), score, snap.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("localstore: save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves a snapshot by ID
func (s *Store) GetSnapshot(ctx context.Context, id uuid.UUID) (*types.TailoredSnapshot, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE id = ?`, id.String()).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("localstore: get snapshot: %w", err)
	}

	var snap types.TailoredSnapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return nil, fmt.Errorf("localstore: unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots returns the most recent snapshots first
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]SnapshotSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_title, company, bullet_total, score, created_at
		 FROM snapshots ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("localstore: list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []SnapshotSummary{}
	for rows.Next() {
		var (
			sum   SnapshotSummary
			id    string
			score sql.NullFloat64
		)
		if err := rows.Scan(&id, &sum.JobTitle, &sum.Company, &sum.BulletTotal, &score, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("localstore: scan snapshot: %w", err)
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("localstore: snapshot id %q: %w", id, err)
		}
		if score.Valid {
			sum.Score = &score.Float64
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
