// Package types provides type definitions for structured data used throughout the resume-review system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// TailoredRole is one role of the materialized document: the selected bullets,
// edit-resolved, in selection order.
type TailoredRole struct {
	RoleKey   RoleKey  `json:"role_key"`
	Company   string   `json:"company"`
	Title     string   `json:"title"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Bullets   []string `json:"bullets"`
}

// ATSScore is the keyword-overlap score of a materialized document against a job description
type ATSScore struct {
	Score    float64  `json:"score"`
	Matched  []string `json:"matched"`
	Missing  []string `json:"missing"`
	Keywords int      `json:"keywords"`
}

// TailoredSnapshot is the flattened record persisted when the user saves a tailoring session
type TailoredSnapshot struct {
	ID        uuid.UUID      `json:"id"`
	SessionID uuid.UUID      `json:"session_id"`
	JobTitle  string         `json:"job_title,omitempty"`
	Company   string         `json:"company,omitempty"`
	Summary   string         `json:"summary,omitempty"`
	Skills    []string       `json:"skills"`
	Roles     []TailoredRole `json:"roles"`
	ATS       *ATSScore      `json:"ats,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// BulletTotal returns the number of bullets across all roles of the snapshot
func (s *TailoredSnapshot) BulletTotal() int {
	total := 0
	for _, r := range s.Roles {
		total += len(r.Bullets)
	}
	return total
}
