package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/ats"
	"github.com/jonathan/resume-review/internal/types"
)

// SnapshotStore persists saved tailoring results
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *types.TailoredSnapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (*types.TailoredSnapshot, error)
}

// Snapshot flattens the current state into a saveable record with a narrative
// summary, a skill list, and the ATS score of the materialized bullets.
func (s *Session) Snapshot(summary string, skills []string) *types.TailoredSnapshot {
	roles := s.Materialize()
	score := ats.Score(roles, s.keywords)

	cleaned := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, skill)
	}

	return &types.TailoredSnapshot{
		ID:        uuid.New(),
		SessionID: s.ID,
		JobTitle:  s.JobTitle,
		Company:   s.Company,
		Summary:   strings.TrimSpace(summary),
		Skills:    cleaned,
		Roles:     roles,
		ATS:       &score,
		CreatedAt: s.opts.Now().UTC(),
	}
}

// Save snapshots the session and persists it. The snapshot is returned even when
// the store fails, so callers can fall back to exporting it.
func (s *Session) Save(ctx context.Context, store SnapshotStore, summary string, skills []string) (*types.TailoredSnapshot, error) {
	snap := s.Snapshot(summary, skills)
	if store == nil {
		return snap, nil
	}
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		return snap, &Error{Message: "failed to save snapshot", Cause: err}
	}
	s.logger.Info("snapshot saved", "snapshot_id", snap.ID, "bullets", snap.BulletTotal())
	return snap, nil
}
