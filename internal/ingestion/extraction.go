package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-review/internal/llm"
	"github.com/jonathan/resume-review/internal/types"
)

// ExtractRoles uses an LLM to pull structured work history out of free resume text
func ExtractRoles(ctx context.Context, client llm.Client, text string) (*types.RoleSet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Source: "resume", Message: "role extraction", Cause: ErrNoContent}
	}

	prompt := llm.BuildExtractionPrompt(llm.RoleExtractionSchema(), text)

	// Verbatim copying is a simple task; the lite tier is enough
	jsonResp, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	var set types.RoleSet
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(jsonResp)), &set); err != nil {
		return nil, &Error{Source: "resume", Message: "failed to unmarshal extracted roles", Cause: err}
	}
	if len(set.Roles) == 0 {
		return nil, &Error{Source: "resume", Message: "no roles extracted"}
	}

	for i := range set.Roles {
		set.Roles[i].Bullets = cleanBullets(set.Roles[i].Bullets)
	}
	return &set, nil
}

func cleanBullets(bullets []string) []string {
	out := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if text := bulletText(b); text != "" {
			out = append(out, text)
		}
	}
	return out
}
