package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-review/internal/llm"
)

type keywordResponse struct {
	Keywords []string `json:"keywords"`
}

// ExtractKeywordsLLM asks a model for the skills a job description calls for.
// Terms are canonicalized and deduplicated in the model's order.
func ExtractKeywordsLLM(ctx context.Context, client llm.Client, jobDescription string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	prompt := llm.BuildExtractionPrompt(llm.JobKeywordsSchema(), jobDescription)
	raw, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("keyword extraction failed: %w", err)
	}

	var resp keywordResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse keyword response: %w", err)
	}

	seen := make(map[string]bool, len(resp.Keywords))
	keywords := make([]string, 0, min(limit, len(resp.Keywords)))
	for _, kw := range resp.Keywords {
		kw = NormalizeTerm(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
		if len(keywords) == limit {
			break
		}
	}
	return keywords, nil
}

// Extractor picks the keywords a job description is scored against. With a
// Client it asks the model first; a nil Extractor or Client uses ExtractKeywords.
type Extractor struct {
	Client llm.Client
	Limit  int
	Logger *slog.Logger
}

// Keywords returns the scoring keywords for jobDescription. Model failures and
// empty model answers fall back to ExtractKeywords.
func (e *Extractor) Keywords(ctx context.Context, jobDescription string) []string {
	limit := DefaultKeywordLimit
	if e != nil && e.Limit > 0 {
		limit = e.Limit
	}
	if e == nil || e.Client == nil || jobDescription == "" {
		return ExtractKeywords(jobDescription, limit)
	}

	keywords, err := ExtractKeywordsLLM(ctx, e.Client, jobDescription, limit)
	if err == nil && len(keywords) > 0 {
		return keywords
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("falling back to heuristic keywords", "error", err, "model_keywords", len(keywords))
	return ExtractKeywords(jobDescription, limit)
}
