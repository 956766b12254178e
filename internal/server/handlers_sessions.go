package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/selection"
	"github.com/jonathan/resume-review/internal/session"
	"github.com/jonathan/resume-review/internal/types"
)

// ---------------------------------------------------------------------
// Session Handlers
// ---------------------------------------------------------------------

// mutationResponse reports the outcome of a selection change. Budget
// rejections are a normal result, not an error.
type mutationResponse struct {
	Outcome       selection.Outcome `json:"outcome"`
	RoleKey       types.RoleKey     `json:"role_key,omitempty"`
	Active        *bool             `json:"active,omitempty"`
	TotalSelected int               `json:"total_selected"`
	MaxSelected   int               `json:"max_selected"`
}

func (s *Server) mutation(sess *session.Session, key types.RoleKey, outcome selection.Outcome) mutationResponse {
	return mutationResponse{
		Outcome:       outcome,
		RoleKey:       key,
		TotalSelected: selection.TotalSelected(sess.State()),
		MaxSelected:   selection.MaxTotalBullets,
	}
}

// lookupSession resolves the {id} path value, writing an error response when
// it does not name a live session.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) *session.Session {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return nil
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.errorFrom(w, err)
		return nil
	}
	return sess
}

// bulletPath parses the {role_key} and {index} path values
func (s *Server) bulletPath(w http.ResponseWriter, r *http.Request) (types.RoleKey, int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		s.errorResponse(w, http.StatusBadRequest, "Invalid bullet index")
		return "", 0, false
	}
	return types.RoleKey(r.PathValue("role_key")), index, true
}

// decode reads a JSON body into req and validates it
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req interface{ Validate() error }) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := req.Validate(); err != nil {
		s.errorFrom(w, validationError(err))
		return false
	}
	return true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess := s.sessions.Create(session.Params{
		JobTitle:       req.JobTitle,
		Company:        req.Company,
		JobDescription: req.JobDescription,
		Roles:          req.Roles,
		Keywords:       s.keywords.Keywords(r.Context(), req.JobDescription),
	})

	s.jsonResponse(w, http.StatusCreated, sess.View())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return
	}
	if !s.sessions.Delete(id) {
		s.errorFrom(w, session.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateRole(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req types.ActivateRoleRequest
	if !s.decode(w, r, &req) {
		return
	}

	outcome, err := sess.Activate(req.RoleKey)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	resp := s.mutation(sess, req.RoleKey, outcome)
	active := sess.State().IsActive(req.RoleKey)
	resp.Active = &active
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	candidates, err := sess.Candidates(types.RoleKey(r.PathValue("role_key")))
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"candidates": candidates})
}

func (s *Server) handleToggleBullet(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	key, index, ok := s.bulletPath(w, r)
	if !ok {
		return
	}

	outcome, err := sess.Toggle(key, index)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.mutation(sess, key, outcome))
}

func (s *Server) handleEditBullet(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	key, index, ok := s.bulletPath(w, r)
	if !ok {
		return
	}
	var req types.EditBulletRequest
	if !s.decode(w, r, &req) {
		return
	}

	outcome, err := sess.Edit(key, index, req.Text)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.mutation(sess, key, outcome))
}

func (s *Server) handleClearEdit(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	key, index, ok := s.bulletPath(w, r)
	if !ok {
		return
	}

	outcome, err := sess.ClearEdit(key, index)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.mutation(sess, key, outcome))
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	key := types.RoleKey(r.PathValue("role_key"))
	var req types.ReorderRequest
	if !s.decode(w, r, &req) {
		return
	}

	outcome, err := sess.Reorder(key, req.From, req.To, req.ToRoleKey)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	status := http.StatusOK
	if outcome == selection.RejectedCrossRole {
		status = http.StatusConflict
	}
	s.jsonResponse(w, status, s.mutation(sess, key, outcome))
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	roles := sess.Materialize()
	total := 0
	for _, role := range roles {
		total += len(role.Bullets)
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"roles":          roles,
		"total_selected": total,
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Score())
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req types.FeedbackRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := sess.Feedback(req.RoleKey, req.BulletIndex, req.Vote); err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req types.SaveRequest
	if !s.decode(w, r, &req) {
		return
	}

	snap, err := sess.Save(r.Context(), s.snapshots, req.Summary, req.Skills)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"snapshot":  snap,
		"persisted": s.snapshots != nil,
	})
}

// handleSessionEvents streams suggestion arrivals. The first event is the
// current view so clients never miss a state change between load and subscribe.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	// Subscribe before the first write so nothing published in between is lost
	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	stream, err := newEventStream(w, sseRetry)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := stream.send("state", sess.View()); err != nil {
		return
	}

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = stream.send("closed", map[string]string{"session_id": sess.ID.String()})
				return
			}
			if err := stream.send(string(ev.Type), ev); err != nil {
				s.logger.Debug("event stream ended", "session_id", sess.ID, "error", err)
				return
			}
		case <-ticker.C:
			if err := stream.comment("keep-alive"); err != nil {
				return
			}
		}
	}
}
