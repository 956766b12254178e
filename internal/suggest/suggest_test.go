package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/resume-review/internal/llm"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	tiers   []llm.ModelTier
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	return f.reply, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake" }
func (f *fakeClient) Close() error                  { return nil }

func sampleRequest() Request {
	return Request{
		RoleKey:         "abc",
		Title:           "Senior Engineer",
		Company:         "Acme",
		ExistingBullets: []string{"Built the billing pipeline", "Led a team of 4"},
		JobDescription:  "Go, Kubernetes, PostgreSQL",
	}
}

func TestLLMSuggester_Suggest(t *testing.T) {
	client := &fakeClient{reply: "```json\n" + `{"bullets": [
		"- Cut deploy time by [X%] with Kubernetes",
		"built the billing pipeline",
		"  ",
		"Migrated reporting to PostgreSQL",
		"Cut deploy time by [X%] with Kubernetes"
	]}` + "\n```"}
	s := NewLLMSuggester(client)

	bullets, err := s.Suggest(t.Context(), sampleRequest())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"Cut deploy time by [X%] with Kubernetes",
		"Migrated reporting to PostgreSQL",
	}, bullets)
	require.Len(t, client.prompts, 1)
	assert.Equal(t, llm.TierStandard, client.tiers[0])
	assert.Contains(t, client.prompts[0], "Senior Engineer at Acme")
	assert.Contains(t, client.prompts[0], "- Led a team of 4")
	assert.Contains(t, client.prompts[0], "Go, Kubernetes, PostgreSQL")
	assert.Contains(t, client.prompts[0], "up to 5 NEW")
}

func TestLLMSuggester_CapsCount(t *testing.T) {
	client := &fakeClient{reply: `["a","b","c","d","e","f","g"]`}
	s := NewLLMSuggester(client, WithMaxSuggestions(3), WithTier(llm.TierLite))

	bullets, err := s.Suggest(t.Context(), Request{Title: "T", Company: "C"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, bullets)
	assert.Equal(t, llm.TierLite, client.tiers[0])
}

func TestLLMSuggester_ClientError(t *testing.T) {
	cause := errors.New("quota exceeded")
	s := NewLLMSuggester(&fakeClient{err: cause})

	_, err := s.Suggest(t.Context(), sampleRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	var sErr *Error
	assert.ErrorAs(t, err, &sErr)
}

func TestLLMSuggester_BadReply(t *testing.T) {
	s := NewLLMSuggester(&fakeClient{reply: "I cannot help with that."})

	_, err := s.Suggest(t.Context(), sampleRequest())

	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "I cannot help with that.", pErr.Raw)
}

func TestLLMSuggester_RateLimitHonorsContext(t *testing.T) {
	s := NewLLMSuggester(&fakeClient{reply: `[]`}, WithRateLimit(time.Hour, 1))

	_, err := s.Suggest(t.Context(), sampleRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Suggest(ctx, sampleRequest())
	assert.Error(t, err)
}

func TestBuildPrompt_NoExistingNoJob(t *testing.T) {
	prompt, err := BuildPrompt(Request{Title: "Engineer", Company: "Acme"}, 5)

	require.NoError(t, err)
	assert.Contains(t, prompt, "(none)")
	assert.NotContains(t, prompt, "applying for this job")
	assert.NotContains(t, prompt, "{{.")
}

func TestRequestForRole(t *testing.T) {
	role := types.Role{Company: "Acme", Title: "Engineer", Bullets: []string{"x"}}

	req := RequestForRole(role, "jd")

	assert.Equal(t, role.Key(), req.RoleKey)
	assert.Equal(t, "Engineer", req.Title)
	assert.Equal(t, []string{"x"}, req.ExistingBullets)
	assert.Equal(t, "jd", req.JobDescription)
}

func TestStaticSuggester(t *testing.T) {
	s := &StaticSuggester{
		ByRole:  map[types.RoleKey][]string{"a": {"for a"}},
		Default: []string{"default"},
	}

	got, err := s.Suggest(t.Context(), Request{RoleKey: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"for a"}, got)

	got, err = s.Suggest(t.Context(), Request{RoleKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, got)

	s.Delay = time.Hour
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = s.Suggest(ctx, Request{RoleKey: "a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrefetch_PartialFailure(t *testing.T) {
	failing := errors.New("boom")
	s := suggesterFunc(func(ctx context.Context, req Request) ([]string, error) {
		if req.RoleKey == "bad" {
			return nil, failing
		}
		if req.RoleKey == "slow" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []string{string(req.RoleKey) + " idea"}, nil
	})

	results := Prefetch(t.Context(), s, []Request{
		{RoleKey: "good"}, {RoleKey: "bad"}, {RoleKey: "slow"}, {RoleKey: "also"},
	}, 2, 50*time.Millisecond)

	require.Len(t, results, 4)
	assert.Equal(t, []string{"good idea"}, results["good"].Bullets)
	assert.Equal(t, []string{"also idea"}, results["also"].Bullets)
	assert.ErrorIs(t, results["bad"].Err, failing)
	assert.ErrorIs(t, results["slow"].Err, context.DeadlineExceeded)
}

type suggesterFunc func(ctx context.Context, req Request) ([]string, error)

func (f suggesterFunc) Suggest(ctx context.Context, req Request) ([]string, error) {
	return f(ctx, req)
}
