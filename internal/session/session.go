// Package session owns a tailoring session: one job, one user, one selection
// state. Mutations are serialized; AI suggestions are fetched concurrently and
// applied only if the role they were fetched for is still the same activation.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/ats"
	"github.com/jonathan/resume-review/internal/experience"
	"github.com/jonathan/resume-review/internal/selection"
	"github.com/jonathan/resume-review/internal/suggest"
	"github.com/jonathan/resume-review/internal/types"
)

// DefaultSuggestTimeout bounds one role's suggestion fetch
const DefaultSuggestTimeout = 30 * time.Second

// FeedbackEmitter accepts bullet votes without blocking
type FeedbackEmitter interface {
	Emit(fb types.BulletFeedback) bool
}

// Options tune session behavior. Zero values select defaults.
type Options struct {
	SuggestTimeout time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SuggestTimeout <= 0 {
		o.SuggestTimeout = DefaultSuggestTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Params describe the job being tailored for and the user's work history.
type Params struct {
	JobTitle       string
	Company        string
	JobDescription string
	Roles          []types.Role
	// Keywords overrides the keywords extracted from JobDescription for scoring.
	Keywords []string
}

// Session is one tailoring session. All methods are safe for concurrent use.
type Session struct {
	ID             uuid.UUID
	JobTitle       string
	Company        string
	JobDescription string
	CreatedAt      time.Time

	roles     []types.Role
	available map[types.RoleKey]types.Role
	keywords  []string

	suggester suggest.Suggester
	feedback  FeedbackEmitter
	opts      Options
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       selection.State
	generations map[types.RoleKey]uint64
	nextGen     uint64
	closed      bool

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// New creates a session over the normalized form of p.Roles. A nil suggester
// yields no suggestions; a nil feedback emitter discards votes.
func New(p Params, suggester suggest.Suggester, feedback FeedbackEmitter, opts Options) *Session {
	opts = opts.withDefaults()
	if suggester == nil {
		suggester = &suggest.StaticSuggester{}
	}

	now := opts.Now()
	roles := experience.NormalizeRoles(p.Roles, now)
	available := make(map[types.RoleKey]types.Role, len(roles))
	for _, r := range roles {
		available[r.Key()] = r
	}

	keywords := p.Keywords
	if len(keywords) == 0 {
		keywords = ats.ExtractKeywords(p.JobDescription, ats.DefaultKeywordLimit)
	}

	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:             id,
		JobTitle:       strings.TrimSpace(p.JobTitle),
		Company:        strings.TrimSpace(p.Company),
		JobDescription: p.JobDescription,
		CreatedAt:      now.UTC(),
		roles:          roles,
		available:      available,
		keywords:       keywords,
		suggester:      suggester,
		feedback:       feedback,
		opts:           opts,
		logger:         opts.Logger.With("session_id", id),
		ctx:            ctx,
		cancel:         cancel,
		state:          selection.NewState(),
		generations:    make(map[types.RoleKey]uint64),
		subs:           make(map[int]chan Event),
	}
}

// Roles returns the session's normalized roles, most recent first
func (s *Session) Roles() []types.Role {
	out := make([]types.Role, len(s.roles))
	for i, r := range s.roles {
		out[i] = r.Clone()
	}
	return out
}

// Keywords returns the job keywords the session scores against
func (s *Session) Keywords() []string {
	return append([]string(nil), s.keywords...)
}

// State returns the current selection state. States are immutable, so the
// result is a consistent snapshot.
func (s *Session) State() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activate toggles a role into the session and starts its suggestion fetch.
// Activating an active role removes it. Unknown role keys are an error.
func (s *Session) Activate(key types.RoleKey) (selection.Outcome, error) {
	role, ok := s.available[key]
	if !ok {
		return selection.NoOp, &Error{Message: fmt.Sprintf("role %s", key), Cause: selection.ErrUnknownRole}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return selection.NoOp, ErrSessionClosed
	}

	next, outcome, err := selection.Apply(s.state, selection.ActivateAction{Role: role, MasterBullets: role.Bullets})
	if err != nil {
		s.mu.Unlock()
		return selection.NoOp, err
	}
	s.state = next

	var gen uint64
	switch outcome {
	case selection.Applied:
		s.nextGen++
		gen = s.nextGen
		s.generations[key] = gen
		s.wg.Add(1)
	case selection.Removed:
		delete(s.generations, key)
	}
	s.mu.Unlock()

	s.logger.Debug("role activation", "role_key", key, "outcome", outcome)
	if outcome == selection.Applied {
		go s.fetch(key, gen, role)
	}
	return outcome, nil
}

// ActivateRecent activates the n most recent roles that are not yet active and
// returns their keys.
func (s *Session) ActivateRecent(n int) ([]types.RoleKey, error) {
	var keys []types.RoleKey
	for _, r := range s.roles {
		if len(keys) == n {
			break
		}
		key := r.Key()
		if s.State().IsActive(key) {
			continue
		}
		if _, err := s.Activate(key); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Deactivate removes a role. Its pending suggestions are discarded on arrival.
func (s *Session) Deactivate(key types.RoleKey) selection.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, outcome := selection.DeactivateRole(s.state, key)
	s.state = next
	delete(s.generations, key)
	return outcome
}

func (s *Session) fetch(key types.RoleKey, gen uint64, role types.Role) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.opts.SuggestTimeout)
	defer cancel()

	bullets, err := s.suggester.Suggest(ctx, suggest.RequestForRole(role, s.JobDescription))
	s.complete(key, gen, bullets, err)
}

func (s *Session) complete(key types.RoleKey, gen uint64, bullets []string, fetchErr error) {
	s.mu.Lock()
	if s.closed || s.generations[key] != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding stale suggestions", "role_key", key, "generation", gen)
		return
	}

	var action selection.Action = selection.ResolveAction{Key: key, Bullets: bullets}
	if fetchErr != nil {
		action = selection.FailAction{Key: key}
	}
	s.state, _, _ = selection.Apply(s.state, action)
	s.mu.Unlock()

	event := Event{Type: EventSuggestions, RoleKey: key, Count: len(bullets)}
	if fetchErr != nil {
		s.logger.Warn("suggestions unavailable", "role_key", key, "error", fetchErr)
		event = Event{Type: EventSuggestions, RoleKey: key, Unavailable: true, Error: fetchErr.Error()}
	}
	s.publish(event)
}

func (s *Session) apply(action selection.Action) (selection.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, outcome, err := selection.Apply(s.state, action)
	if err != nil {
		return selection.NoOp, err
	}
	s.state = next
	s.logger.Debug("applied", "action", action.String(), "outcome", outcome)
	return outcome, nil
}

// Toggle selects or deselects a candidate bullet
func (s *Session) Toggle(key types.RoleKey, index int) (selection.Outcome, error) {
	return s.apply(selection.ToggleAction{Key: key, Index: index})
}

// Edit sets replacement text for a candidate bullet. Text that is blank once
// trimmed is rejected with ErrBlankEdit; use ClearEdit to drop an overlay.
func (s *Session) Edit(key types.RoleKey, index int, text string) (selection.Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return selection.NoOp, ErrBlankEdit
	}
	return s.apply(selection.EditAction{Key: key, Index: index, Text: text})
}

// ClearEdit restores a candidate's original text
func (s *Session) ClearEdit(key types.RoleKey, index int) (selection.Outcome, error) {
	return s.apply(selection.ClearEditAction{Key: key, Index: index})
}

// Reorder moves a selected bullet. A toKey naming another role is rejected.
func (s *Session) Reorder(key types.RoleKey, from, to int, toKey types.RoleKey) (selection.Outcome, error) {
	return s.apply(selection.ReorderAction{Key: key, From: from, To: to, ToKey: toKey})
}

// Candidates lists a role's candidate pool
func (s *Session) Candidates(key types.RoleKey) ([]selection.Candidate, error) {
	return selection.Candidates(s.State(), key)
}

// Materialize returns the tailored document for the current state
func (s *Session) Materialize() []types.TailoredRole {
	return selection.Materialize(s.State())
}

// Score scores the current tailored document against the job keywords
func (s *Session) Score() types.ATSScore {
	return ats.Score(s.Materialize(), s.keywords)
}

// Feedback records a vote on a candidate. Delivery is asynchronous and lossy.
func (s *Session) Feedback(key types.RoleKey, index int, vote types.Vote) error {
	candidates, err := s.Candidates(key)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(candidates) {
		return &Error{Message: fmt.Sprintf("feedback on candidate %d of role %s", index, key), Cause: selection.ErrIndexOutOfRange}
	}
	if s.feedback == nil {
		return nil
	}

	c := candidates[index]
	accepted := s.feedback.Emit(types.BulletFeedback{
		SessionID:   s.ID,
		RoleKey:     key,
		BulletIndex: index,
		Source:      string(c.Source),
		Text:        c.Text,
		Vote:        vote,
		At:          s.opts.Now().UTC(),
	})
	if !accepted {
		s.logger.Debug("feedback dropped", "role_key", key, "index", index)
	}
	return nil
}

// Wait blocks until all outstanding suggestion fetches have finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels outstanding fetches, waits for them, and ends all subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.subsMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
}
