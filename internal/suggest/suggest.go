// Package suggest produces AI-suggested bullets for a role. Suggestions are
// advisory: a failed or empty fetch never blocks tailoring.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-review/internal/llm"
	"github.com/jonathan/resume-review/internal/prompts"
	"github.com/jonathan/resume-review/internal/types"
	"golang.org/x/time/rate"
)

// MaxSuggestions caps how many suggestions one fetch returns
const MaxSuggestions = 5

// maxBulletChars drops runaway suggestions
const maxBulletChars = 300

// Request describes the role to suggest bullets for.
type Request struct {
	RoleKey         types.RoleKey
	Title           string
	Company         string
	ExistingBullets []string
	JobDescription  string
}

// RequestForRole builds a Request from a normalized role.
func RequestForRole(role types.Role, jobDescription string) Request {
	return Request{
		RoleKey:         role.Key(),
		Title:           role.Title,
		Company:         role.Company,
		ExistingBullets: role.Bullets,
		JobDescription:  jobDescription,
	}
}

// Suggester fetches suggested bullets for one role.
type Suggester interface {
	Suggest(ctx context.Context, req Request) ([]string, error)
}

// LLMSuggester asks a language model for bullets.
type LLMSuggester struct {
	client  llm.Client
	tier    llm.ModelTier
	max     int
	limiter *rate.Limiter
}

// Option configures an LLMSuggester
type Option func(*LLMSuggester)

// WithTier selects the model tier (default TierStandard)
func WithTier(tier llm.ModelTier) Option {
	return func(s *LLMSuggester) { s.tier = tier }
}

// WithMaxSuggestions overrides MaxSuggestions
func WithMaxSuggestions(n int) Option {
	return func(s *LLMSuggester) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithRateLimit throttles outgoing model calls to one every interval with the given burst.
func WithRateLimit(every time.Duration, burst int) Option {
	return func(s *LLMSuggester) {
		s.limiter = rate.NewLimiter(rate.Every(every), burst)
	}
}

// NewLLMSuggester creates a suggester backed by client. By default it allows
// two calls per second with a burst of four.
func NewLLMSuggester(client llm.Client, opts ...Option) *LLMSuggester {
	s := &LLMSuggester{
		client:  client,
		tier:    llm.TierStandard,
		max:     MaxSuggestions,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 4),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest implements Suggester.
func (s *LLMSuggester) Suggest(ctx context.Context, req Request) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &Error{Message: "rate limiter", Cause: err}
	}

	prompt, err := BuildPrompt(req, s.max)
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	raw, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("suggestions for %s at %s", req.Title, req.Company), Cause: err}
	}

	bullets, err := ParseSuggestions(raw)
	if err != nil {
		return nil, err
	}
	return Clean(bullets, req.ExistingBullets, s.max), nil
}

// BuildPrompt renders the suggestion prompt for a role.
func BuildPrompt(req Request, count int) (string, error) {
	existing := "(none)"
	if len(req.ExistingBullets) > 0 {
		var sb strings.Builder
		for _, b := range req.ExistingBullets {
			sb.WriteString("- ")
			sb.WriteString(b)
			sb.WriteString("\n")
		}
		existing = strings.TrimRight(sb.String(), "\n")
	}

	jobContext := ""
	if jd := strings.TrimSpace(req.JobDescription); jd != "" {
		var err error
		jobContext, err = prompts.Render(prompts.SuggestionsFile, "job-context", map[string]string{
			"JobDescription": jd,
		})
		if err != nil {
			return "", err
		}
	}

	return prompts.Render(prompts.SuggestionsFile, "suggest-bullets", map[string]string{
		"Title":           req.Title,
		"Company":         req.Company,
		"ExistingBullets": existing,
		"JobContext":      jobContext,
		"Count":           strconv.Itoa(count),
	})
}

type suggestionResponse struct {
	Bullets []string `json:"bullets"`
}

// ParseSuggestions decodes a model reply. Both {"bullets": [...]} and a bare
// array are accepted.
func ParseSuggestions(raw string) ([]string, error) {
	cleaned := llm.CleanJSONBlock(raw)

	var resp suggestionResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err == nil {
		return resp.Bullets, nil
	}

	var bare []string
	if err := json.Unmarshal([]byte(cleaned), &bare); err != nil {
		return nil, &ParseError{Message: "failed to parse suggestions", Raw: raw, Cause: err}
	}
	return bare, nil
}

// Clean trims suggestions, strips list markers, and drops blanks, duplicates,
// restatements of existing bullets, and overlong lines. At most max remain.
func Clean(bullets, existing []string, max int) []string {
	seen := make(map[string]bool, len(bullets)+len(existing))
	for _, b := range existing {
		seen[fold(b)] = true
	}

	result := make([]string, 0, min(len(bullets), max))
	for _, b := range bullets {
		b = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(b), "-•*·"))
		if b == "" || len(b) > maxBulletChars {
			continue
		}
		key := fold(b)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, b)
		if len(result) == max {
			break
		}
	}
	return result
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
