// Package types provides type definitions for structured data used throughout the resume-review system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ApplicationStatus is the lifecycle state of a tracked job application
type ApplicationStatus string

// Application statuses
const (
	StatusSaved     ApplicationStatus = "saved"
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
)

// ParseApplicationStatus normalizes a status string; ok is false for unknown values.
// An empty string maps to StatusSaved.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusSaved, true
	}
	switch ApplicationStatus(s) {
	case StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return ApplicationStatus(s), true
	}
	return "", false
}

// Application is a job the user is tracking, optionally linked to a saved tailored snapshot
type Application struct {
	ID         int64             `json:"id"`
	Title      string            `json:"title"`
	Company    string            `json:"company"`
	URL        string            `json:"url,omitempty"`
	Status     ApplicationStatus `json:"status"`
	Notes      string            `json:"notes,omitempty"`
	SnapshotID string            `json:"snapshot_id,omitempty"`
	CreatedAt  string            `json:"created_at"`
	UpdatedAt  string            `json:"updated_at"`
}
