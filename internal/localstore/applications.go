package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/resume-review/internal/types"
)

// AddApplicationInput describes a job to start tracking
type AddApplicationInput struct {
	Title      string `json:"title" validate:"required"`
	Company    string `json:"company" validate:"required"`
	URL        string `json:"url,omitempty" validate:"omitempty,url"`
	Status     string `json:"status,omitempty"`
	Notes      string `json:"notes,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty" validate:"omitempty,uuid"`
}

// ListApplicationsResult is a page of tracked applications plus the total match count
type ListApplicationsResult struct {
	Applications []types.Application `json:"applications"`
	Total        int                 `json:"total"`
}

const applicationColumns = `id, title, company, url, status, notes, snapshot_id, created_at, updated_at`

// AddApplication saves a new job application to the tracker
func (s *Store) AddApplication(ctx context.Context, input AddApplicationInput) (*types.Application, error) {
	title := strings.TrimSpace(input.Title)
	company := strings.TrimSpace(input.Company)
	if title == "" || company == "" {
		return nil, errors.New("localstore: title and company are required")
	}
	status, ok := types.ParseApplicationStatus(input.Status)
	if !ok {
		return nil, fmt.Errorf("localstore: invalid status %q (valid: saved, applied, interview, offer, rejected)", input.Status)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (title, company, url, status, notes, snapshot_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		title, company, input.URL, string(status), input.Notes, input.SnapshotID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("localstore: insert application: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("localstore: application id: %w", err)
	}
	return s.getApplication(ctx, id)
}

// ListApplications returns tracked applications, most recently updated first,
// optionally filtered by status.
func (s *Store) ListApplications(ctx context.Context, status string, limit int) (*ListApplicationsResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	where, args := "", []any{}
	if status != "" {
		st, ok := types.ParseApplicationStatus(status)
		if !ok {
			return nil, fmt.Errorf("localstore: invalid status %q", status)
		}
		where, args = " WHERE status = ?", append(args, string(st))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("localstore: count applications: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications`+where+` ORDER BY updated_at DESC, id DESC LIMIT ?`,
		append(args, limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("localstore: list applications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := &ListApplicationsResult{Applications: []types.Application{}, Total: total}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result.Applications = append(result.Applications, *app)
	}
	return result, rows.Err()
}

// UpdateApplicationStatus changes the status of a tracked application and,
// when notes is non-empty, replaces its notes.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id int64, status, notes string) (*types.Application, error) {
	if id <= 0 {
		return nil, errors.New("localstore: application id is required")
	}
	if status == "" && notes == "" {
		return nil, errors.New("localstore: at least one of status or notes must be provided")
	}

	sets, args := []string{"updated_at = ?"}, []any{time.Now().UTC().Format(time.RFC3339)}
	if status != "" {
		st, ok := types.ParseApplicationStatus(status)
		if !ok {
			return nil, fmt.Errorf("localstore: invalid status %q", status)
		}
		sets, args = append(sets, "status = ?"), append(args, string(st))
	}
	if notes != "" {
		sets, args = append(sets, "notes = ?"), append(args, notes)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE applications SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		append(args, id)...,
	)
	if err != nil {
		return nil, fmt.Errorf("localstore: update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("application %d: %w", id, ErrNotFound)
	}
	return s.getApplication(ctx, id)
}

func (s *Store) getApplication(ctx context.Context, id int64) (*types.Application, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %d: %w", id, ErrNotFound)
	}
	return app, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*types.Application, error) {
	var (
		app                    types.Application
		status                 string
		url, notes, snapshotID sql.NullString
	)
	if err := row.Scan(&app.ID, &app.Title, &app.Company, &url, &status, &notes, &snapshotID, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("localstore: scan application: %w", err)
	}
	app.Status = types.ApplicationStatus(status)
	app.URL = url.String
	app.Notes = notes.String
	app.SnapshotID = snapshotID.String
	return &app, nil
}
