package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/localstore"
	"github.com/jonathan/resume-review/internal/types"
)

// Tracker stores job applications linked to saved snapshots
type Tracker interface {
	AddApplication(ctx context.Context, input localstore.AddApplicationInput) (*types.Application, error)
	ListApplications(ctx context.Context, status string, limit int) (*localstore.ListApplicationsResult, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status, notes string) (*types.Application, error)
}

// ---------------------------------------------------------------------
// Snapshot Handlers
// ---------------------------------------------------------------------

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid snapshot ID")
		return
	}

	snap, err := s.snapshots.GetSnapshot(r.Context(), id)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// ---------------------------------------------------------------------
// Application Tracker Handlers
// ---------------------------------------------------------------------

type updateApplicationRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" {
		if _, ok := types.ParseApplicationStatus(status); !ok {
			s.errorResponse(w, http.StatusBadRequest, "Invalid status")
			return
		}
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	result, err := s.tracker.ListApplications(r.Context(), status, limit)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleAddApplication(w http.ResponseWriter, r *http.Request) {
	var input localstore.AddApplicationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.New().Struct(input); err != nil {
		s.errorFrom(w, validationError(err))
		return
	}
	if _, ok := types.ParseApplicationStatus(input.Status); !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid status")
		return
	}

	app, err := s.tracker.AddApplication(r.Context(), input)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "Invalid application ID")
		return
	}
	var req updateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" && req.Notes == "" {
		s.errorResponse(w, http.StatusBadRequest, "Status or notes is required")
		return
	}
	if req.Status != "" {
		if _, ok := types.ParseApplicationStatus(req.Status); !ok {
			s.errorResponse(w, http.StatusBadRequest, "Invalid status")
			return
		}
	}

	app, err := s.tracker.UpdateApplicationStatus(r.Context(), id, req.Status, req.Notes)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}
