// Package types provides type definitions for structured data used throughout the resume-review system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a thumbs-up/thumbs-down rating on a candidate bullet
type Vote string

// Vote values
const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// BulletFeedback is a single telemetry record of a user rating a candidate bullet
type BulletFeedback struct {
	SessionID   uuid.UUID `json:"session_id"`
	RoleKey     RoleKey   `json:"role_key"`
	BulletIndex int       `json:"bullet_index"`
	Source      string    `json:"source"`
	Text        string    `json:"text"`
	Vote        Vote      `json:"vote"`
	At          time.Time `json:"at"`
}
