package db

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotSummary is a listing row for saved snapshots
type SnapshotSummary struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	JobTitle    string    `json:"job_title"`
	Company     string    `json:"company"`
	BulletTotal int       `json:"bullet_total"`
	Score       *float64  `json:"score,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedbackTally counts votes for one session
type FeedbackTally struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

// snapshotColumns is the JSONB-encoded form of a snapshot's nested fields
type snapshotColumns struct {
	Skills []byte
	Roles  []byte
	ATS    []byte
}
