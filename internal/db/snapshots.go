package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-review/internal/types"
)

// DefaultListLimit bounds ListSnapshots when no limit is given
const DefaultListLimit = 50

// SaveSnapshot inserts a snapshot, replacing any earlier row with the same ID
func (db *DB) SaveSnapshot(ctx context.Context, snap *types.TailoredSnapshot) error {
	cols, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO tailored_snapshots
		   (id, session_id, job_title, company, summary, skills, roles, ats, bullet_total, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   summary = EXCLUDED.summary, skills = EXCLUDED.skills, roles = EXCLUDED.roles,
		   ats = EXCLUDED.ats, bullet_total = EXCLUDED.bullet_total`,
		snap.ID, snap.SessionID, snap.JobTitle, snap.Company, snap.Summary,
		cols.Skills, cols.Roles, cols.ATS, snap.BulletTotal(), snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// GetSnapshot retrieves a snapshot by ID
func (db *DB) GetSnapshot(ctx context.Context, id uuid.UUID) (*types.TailoredSnapshot, error) {
	snap := &types.TailoredSnapshot{}
	var cols snapshotColumns
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, job_title, company, summary, skills, roles, ats, created_at
		 FROM tailored_snapshots WHERE id = $1`,
		id,
	).Scan(&snap.ID, &snap.SessionID, &snap.JobTitle, &snap.Company, &snap.Summary,
		&cols.Skills, &cols.Roles, &cols.ATS, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}

	if err := decodeSnapshot(cols, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns the most recent snapshots first
func (db *DB) ListSnapshots(ctx context.Context, limit int) ([]SnapshotSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, job_title, company, bullet_total, (ats->>'score')::float8, created_at
		 FROM tailored_snapshots
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotSummary
	for rows.Next() {
		var s SnapshotSummary
		if err := rows.Scan(&s.ID, &s.SessionID, &s.JobTitle, &s.Company, &s.BulletTotal, &s.Score, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return out, nil
}

func encodeSnapshot(snap *types.TailoredSnapshot) (snapshotColumns, error) {
	var cols snapshotColumns
	skills := snap.Skills
	if skills == nil {
		skills = []string{}
	}
	roles := snap.Roles
	if roles == nil {
		roles = []types.TailoredRole{}
	}

	var err error
	if cols.Skills, err = json.Marshal(skills); err != nil {
		return cols, fmt.Errorf("failed to marshal skills: %w", err)
	}
	if cols.Roles, err = json.Marshal(roles); err != nil {
		return cols, fmt.Errorf("failed to marshal roles: %w", err)
	}
	if snap.ATS != nil {
		if cols.ATS, err = json.Marshal(snap.ATS); err != nil {
			return cols, fmt.Errorf("failed to marshal ats score: %w", err)
		}
	}
	return cols, nil
}

func decodeSnapshot(cols snapshotColumns, snap *types.TailoredSnapshot) error {
	if err := json.Unmarshal(cols.Skills, &snap.Skills); err != nil {
		return fmt.Errorf("failed to unmarshal skills: %w", err)
	}
	if err := json.Unmarshal(cols.Roles, &snap.Roles); err != nil {
		return fmt.Errorf("failed to unmarshal roles: %w", err)
	}
	if len(cols.ATS) > 0 {
		snap.ATS = &types.ATSScore{}
		if err := json.Unmarshal(cols.ATS, snap.ATS); err != nil {
			return fmt.Errorf("failed to unmarshal ats score: %w", err)
		}
	}
	return nil
}
