package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/selection"
	"github.com/jonathan/resume-review/internal/suggest"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }

func sampleParams() Params {
	return Params{
		JobTitle:       " Staff Engineer ",
		Company:        "Initech",
		JobDescription: "Go services on Kubernetes with PostgreSQL. Go experience required.",
		Roles: []types.Role{
			{Company: "Acme", Title: "Engineer", StartDate: "Jan 2018", EndDate: "Dec 2020",
				Bullets: []string{"Built billing in Python", "Ran on-call", "Wrote docs", "Mentored interns"}},
			{Company: "Globex", Title: "Senior Engineer", StartDate: "Jan 2021", EndDate: "Present",
				Bullets: []string{"Built Go services", "+8 skills", "Ran Kubernetes clusters"}},
			{Company: "Acme", Title: "engineer", StartDate: "Jan 2018", EndDate: "Dec 2020",
				Bullets: []string{"duplicate"}},
		},
	}
}

type result struct {
	bullets []string
	err     error
}

type call struct {
	req   suggest.Request
	reply chan result
}

// gatedSuggester hands each fetch to the test, which decides when and how it completes.
type gatedSuggester struct {
	calls chan call
}

func newGated() *gatedSuggester {
	return &gatedSuggester{calls: make(chan call)}
}

func (g *gatedSuggester) Suggest(ctx context.Context, req suggest.Request) ([]string, error) {
	c := call{req: req, reply: make(chan result, 1)}
	select {
	case g.calls <- c:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-c.reply:
		return r.bullets, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fakeEmitter struct {
	mu  sync.Mutex
	got []types.BulletFeedback
}

func (f *fakeEmitter) Emit(fb types.BulletFeedback) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, fb)
	return true
}

func newSession(t *testing.T, s suggest.Suggester, fb FeedbackEmitter) *Session {
	t.Helper()
	sess := New(sampleParams(), s, fb, Options{Now: fixedNow, SuggestTimeout: time.Second})
	t.Cleanup(sess.Close)
	return sess
}

func roleKey(t *testing.T, s *Session, company string) types.RoleKey {
	t.Helper()
	for _, r := range s.Roles() {
		if r.Company == company {
			return r.Key()
		}
	}
	t.Fatalf("no role for %s", company)
	return ""
}

func TestNew_NormalizesRoles(t *testing.T) {
	s := newSession(t, nil, nil)

	roles := s.Roles()
	require.Len(t, roles, 2)
	assert.Equal(t, "Globex", roles[0].Company)
	assert.Equal(t, []string{"Built Go services", "Ran Kubernetes clusters"}, roles[0].Bullets)
	assert.Equal(t, "Acme", roles[1].Company)
	assert.Equal(t, "Staff Engineer", s.JobTitle)
	assert.Equal(t, fixedNow(), s.CreatedAt)
	assert.Contains(t, s.Keywords(), "go")
}

func TestActivate_ResolvesSuggestions(t *testing.T) {
	s := newSession(t, &suggest.StaticSuggester{Default: []string{"AI idea"}}, nil)
	events, stop := s.Subscribe()
	defer stop()
	key := roleKey(t, s, "Globex")

	outcome, err := s.Activate(key)
	require.NoError(t, err)
	assert.Equal(t, selection.Applied, outcome)
	s.Wait()

	rs, ok := s.State().Role(key)
	require.True(t, ok)
	assert.False(t, rs.Loading)
	assert.Equal(t, []string{"AI idea"}, rs.AIBullets)
	assert.Equal(t, []int{0, 1}, rs.Selected)

	ev := <-events
	assert.Equal(t, Event{Type: EventSuggestions, RoleKey: key, Count: 1}, ev)
}

func TestActivate_UnknownRole(t *testing.T) {
	s := newSession(t, nil, nil)

	_, err := s.Activate("nope")
	assert.ErrorIs(t, err, selection.ErrUnknownRole)
}

func TestActivate_StaleResultsDiscarded(t *testing.T) {
	g := newGated()
	s := newSession(t, g, nil)
	events, stop := s.Subscribe()
	defer stop()
	key := roleKey(t, s, "Acme")

	_, err := s.Activate(key)
	require.NoError(t, err)
	first := <-g.calls

	assert.Equal(t, selection.Removed, s.Deactivate(key))
	_, err = s.Activate(key)
	require.NoError(t, err)
	second := <-g.calls

	// The old fetch lands last-but-one; it belongs to a dead activation.
	first.reply <- result{bullets: []string{"old"}}
	second.reply <- result{bullets: []string{"new"}}
	s.Wait()

	rs, ok := s.State().Role(key)
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, rs.AIBullets)
	assert.Equal(t, "Engineer", first.req.Title)

	require.Len(t, events, 1)
	assert.Equal(t, 1, (<-events).Count)
}

func TestActivate_ResultForDeactivatedRoleDropped(t *testing.T) {
	g := newGated()
	s := newSession(t, g, nil)
	key := roleKey(t, s, "Acme")

	_, err := s.Activate(key)
	require.NoError(t, err)
	pending := <-g.calls
	s.Deactivate(key)
	pending.reply <- result{bullets: []string{"late"}}
	s.Wait()

	assert.False(t, s.State().IsActive(key))
	assert.Empty(t, s.Materialize())
}

func TestActivate_FetchFailureMarksUnavailable(t *testing.T) {
	s := newSession(t, &suggest.StaticSuggester{Err: errors.New("quota")}, nil)
	events, stop := s.Subscribe()
	defer stop()
	key := roleKey(t, s, "Acme")

	_, err := s.Activate(key)
	require.NoError(t, err)
	s.Wait()

	rs, _ := s.State().Role(key)
	assert.False(t, rs.Loading)
	assert.True(t, rs.AIUnavailable)
	assert.Equal(t, []int{0, 1, 2}, rs.Selected)

	ev := <-events
	assert.True(t, ev.Unavailable)
	assert.Equal(t, "quota", ev.Error)
}

func TestActivate_FetchTimeout(t *testing.T) {
	s := New(sampleParams(), &suggest.StaticSuggester{Delay: time.Hour}, nil,
		Options{Now: fixedNow, SuggestTimeout: 20 * time.Millisecond})
	defer s.Close()
	key := roleKey(t, s, "Acme")

	_, err := s.Activate(key)
	require.NoError(t, err)
	s.Wait()

	rs, _ := s.State().Role(key)
	assert.True(t, rs.AIUnavailable)
}

func TestMutationsWhileFetchOutstanding(t *testing.T) {
	g := newGated()
	s := newSession(t, g, nil)
	key := roleKey(t, s, "Acme")

	_, err := s.Activate(key)
	require.NoError(t, err)
	pending := <-g.calls

	outcome, err := s.Toggle(key, 3)
	require.NoError(t, err)
	assert.Equal(t, selection.Applied, outcome)
	_, err = s.Edit(key, 0, "  Built billing in Go  ")
	require.NoError(t, err)
	_, err = s.Reorder(key, 3, 0, "")
	require.NoError(t, err)

	pending.reply <- result{bullets: []string{"AI"}}
	s.Wait()

	doc := s.Materialize()
	require.Len(t, doc, 1)
	assert.Equal(t, []string{"Mentored interns", "Built billing in Go", "Ran on-call", "Wrote docs"}, doc[0].Bullets)
	rs, _ := s.State().Role(key)
	assert.Equal(t, []string{"AI"}, rs.AIBullets)
}

func TestEdit_RejectsBlankText(t *testing.T) {
	s := newSession(t, nil, nil)
	key := roleKey(t, s, "Acme")
	_, err := s.Activate(key)
	require.NoError(t, err)
	s.Wait()

	for _, text := range []string{"", "   ", "\t\n"} {
		outcome, err := s.Edit(key, 0, text)
		require.ErrorIs(t, err, ErrBlankEdit)
		assert.Equal(t, selection.NoOp, outcome)
	}

	candidates, err := s.Candidates(key)
	require.NoError(t, err)
	assert.False(t, candidates[0].Edited)
	assert.Equal(t, candidates[0].Original, candidates[0].Text)
}

func TestReorder_CrossRoleRejected(t *testing.T) {
	s := newSession(t, nil, nil)
	a, g := roleKey(t, s, "Acme"), roleKey(t, s, "Globex")
	_, err := s.Activate(a)
	require.NoError(t, err)
	_, err = s.Activate(g)
	require.NoError(t, err)
	s.Wait()

	outcome, err := s.Reorder(a, 0, 1, g)
	require.NoError(t, err)
	assert.Equal(t, selection.RejectedCrossRole, outcome)
}

func TestScore_ReflectsEdits(t *testing.T) {
	s := newSession(t, nil, nil)
	key := roleKey(t, s, "Acme")
	_, err := s.Activate(key)
	require.NoError(t, err)
	s.Wait()

	before := s.Score()
	_, err = s.Edit(key, 0, "Built Go services on Kubernetes backed by PostgreSQL")
	require.NoError(t, err)
	after := s.Score()

	assert.Greater(t, after.Score, before.Score)
	assert.Contains(t, after.Matched, "kubernetes")
}

func TestFeedback(t *testing.T) {
	fb := &fakeEmitter{}
	s := newSession(t, &suggest.StaticSuggester{Default: []string{"AI idea"}}, fb)
	key := roleKey(t, s, "Globex")
	_, err := s.Activate(key)
	require.NoError(t, err)
	s.Wait()

	require.NoError(t, s.Feedback(key, 2, types.VoteDown))
	assert.ErrorIs(t, s.Feedback(key, 9, types.VoteUp), selection.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Feedback("missing", 0, types.VoteUp), selection.ErrUnknownRole)

	require.Len(t, fb.got, 1)
	got := fb.got[0]
	assert.Equal(t, s.ID, got.SessionID)
	assert.Equal(t, "ai", got.Source)
	assert.Equal(t, "AI idea", got.Text)
	assert.Equal(t, types.VoteDown, got.Vote)
	assert.Equal(t, fixedNow(), got.At)
}

func TestActivateRecent(t *testing.T) {
	s := newSession(t, nil, nil)

	keys, err := s.ActivateRecent(5)
	require.NoError(t, err)
	s.Wait()

	assert.Len(t, keys, 2)
	assert.Equal(t, s.State().Order(), keys)
	assert.Equal(t, 5, selection.TotalSelected(s.State()))
}

func TestView(t *testing.T) {
	s := newSession(t, nil, nil)
	key := roleKey(t, s, "Acme")
	_, err := s.Activate(key)
	require.NoError(t, err)
	s.Wait()

	v := s.View()
	require.Len(t, v.Roles, 2)
	assert.False(t, v.Roles[0].Active)
	assert.Empty(t, v.Roles[0].Candidates)
	assert.True(t, v.Roles[1].Active)
	assert.Len(t, v.Roles[1].Candidates, 4)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, selection.MaxTotalBullets, v.Max)
}

type memStore struct {
	saved map[uuid.UUID]*types.TailoredSnapshot
	err   error
}

func (m *memStore) SaveSnapshot(_ context.Context, snap *types.TailoredSnapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saved[snap.ID] = snap
	return nil
}

func (m *memStore) GetSnapshot(_ context.Context, id uuid.UUID) (*types.TailoredSnapshot, error) {
	return m.saved[id], nil
}

func TestSave(t *testing.T) {
	s := newSession(t, nil, nil)
	_, err := s.ActivateRecent(1)
	require.NoError(t, err)
	s.Wait()
	store := &memStore{saved: map[uuid.UUID]*types.TailoredSnapshot{}}

	snap, err := s.Save(t.Context(), store, "  Backend engineer. ", []string{"Go", " go ", "", "Kubernetes"})

	require.NoError(t, err)
	assert.Equal(t, "Backend engineer.", snap.Summary)
	assert.Equal(t, []string{"Go", "Kubernetes"}, snap.Skills)
	assert.Equal(t, s.ID, snap.SessionID)
	assert.Equal(t, "Initech", snap.Company)
	assert.Equal(t, 2, snap.BulletTotal())
	require.NotNil(t, snap.ATS)
	assert.Equal(t, s.Score(), *snap.ATS)
	assert.Same(t, snap, store.saved[snap.ID])

	store.err = errors.New("disk full")
	snap, err = s.Save(t.Context(), store, "", nil)
	assert.Error(t, err)
	assert.NotNil(t, snap)
}

func TestClose(t *testing.T) {
	g := newGated()
	s := New(sampleParams(), g, nil, Options{Now: fixedNow})
	events, _ := s.Subscribe()
	key := roleKey(t, s, "Acme")
	_, err := s.Activate(key)
	require.NoError(t, err)
	<-g.calls

	s.Close()

	rs, _ := s.State().Role(key)
	assert.True(t, rs.Loading)
	_, open := <-events
	assert.False(t, open)
	_, err = s.Activate(roleKey(t, s, "Globex"))
	assert.ErrorIs(t, err, ErrSessionClosed)

	late, _ := s.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestManager(t *testing.T) {
	m := NewManager(nil, nil, Options{Now: fixedNow})
	defer m.Close()

	s := m.Create(sampleParams())
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.True(t, m.Delete(s.ID))
	assert.False(t, m.Delete(s.ID))
	assert.Zero(t, m.Len())
}
