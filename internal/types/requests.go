// Package types provides type definitions for structured data used throughout the resume-review system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CreateSessionRequest starts a tailoring session for one job posting.
type CreateSessionRequest struct {
	JobTitle       string `json:"job_title,omitempty"`
	Company        string `json:"company,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	Roles          []Role `json:"roles" validate:"required,min=1,dive"`
}

// ActivateRoleRequest toggles a role in or out of the tailored document.
type ActivateRoleRequest struct {
	RoleKey RoleKey `json:"role_key" validate:"required"`
}

// EditBulletRequest sets the replacement text for one candidate bullet.
type EditBulletRequest struct {
	Text string `json:"text" validate:"required,max=600"`
}

// ReorderRequest moves a selected bullet within a role. ToRoleKey, when set to a
// different role, describes a cross-role drag.
type ReorderRequest struct {
	From      int     `json:"from" validate:"min=0"`
	To        int     `json:"to" validate:"min=0"`
	ToRoleKey RoleKey `json:"to_role_key,omitempty"`
}

// FeedbackRequest rates a candidate bullet.
type FeedbackRequest struct {
	RoleKey     RoleKey `json:"role_key" validate:"required"`
	BulletIndex int     `json:"bullet_index" validate:"min=0"`
	Vote        Vote    `json:"vote" validate:"required,oneof=up down"`
}

// SaveRequest persists the current session as a snapshot.
type SaveRequest struct {
	Summary string   `json:"summary,omitempty" validate:"max=2000"`
	Skills  []string `json:"skills,omitempty" validate:"max=50,dive,required"`
}

// Validate validates the CreateSessionRequest using the validator.
func (r *CreateSessionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ActivateRoleRequest using the validator.
func (r *ActivateRoleRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate trims Text and validates the EditBulletRequest using the validator.
func (r *EditBulletRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ReorderRequest using the validator.
func (r *ReorderRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the FeedbackRequest using the validator.
func (r *FeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SaveRequest using the validator.
func (r *SaveRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
