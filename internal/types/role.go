// Package types provides type definitions for structured data used throughout the resume-review system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
)

// RoleSet is the on-disk and over-the-wire container for imported work history
type RoleSet struct {
	Roles []Role `json:"roles"`
}

// Role represents one employment entry from the master resume.
// Dates are free text ("Apr 2023", "Present") and are never strictly parsed here.
type Role struct {
	Company   string   `json:"company"`
	Title     string   `json:"title"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Bullets   []string `json:"bullets"`
}

// RoleKey identifies a role across the engine, API paths, and persisted snapshots
type RoleKey string

var folder = cases.Fold()

// IdentityTuple returns the case-folded (company, title, start, end) tuple used for
// duplicate detection. Surrounding whitespace is ignored.
func (r Role) IdentityTuple() string {
	parts := []string{r.Company, r.Title, r.StartDate, r.EndDate}
	for i, p := range parts {
		parts[i] = folder.String(strings.TrimSpace(p))
	}
	return strings.Join(parts, "\x1f")
}

// Key returns a stable, URL-safe identity for the role.
func (r Role) Key() RoleKey {
	sum := sha256.Sum256([]byte(r.IdentityTuple()))
	return RoleKey(hex.EncodeToString(sum[:6]))
}

// Clone returns a deep copy of the role
func (r Role) Clone() Role {
	out := r
	out.Bullets = append([]string(nil), r.Bullets...)
	return out
}
