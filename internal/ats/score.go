package ats

import (
	"math"
	"strings"

	"github.com/jonathan/resume-review/internal/types"
)

// Score computes keyword coverage of the materialized roles. Score is the
// percentage of keywords found in the bullet text, rounded to one decimal. A
// keyword of several words matches only as a contiguous phrase.
func Score(roles []types.TailoredRole, keywords []string) types.ATSScore {
	result := types.ATSScore{
		Matched:  []string{},
		Missing:  []string{},
		Keywords: len(keywords),
	}
	if len(keywords) == 0 {
		return result
	}

	var sb strings.Builder
	sb.WriteString(" ")
	for _, role := range roles {
		for _, bullet := range role.Bullets {
			for _, term := range tokenize(bullet) {
				sb.WriteString(term)
				sb.WriteString(" ")
			}
		}
	}
	text := sb.String()

	for _, kw := range keywords {
		phrase := strings.Join(tokenize(kw), " ")
		if phrase != "" && strings.Contains(text, " "+phrase+" ") {
			result.Matched = append(result.Matched, kw)
		} else {
			result.Missing = append(result.Missing, kw)
		}
	}

	ratio := float64(len(result.Matched)) / float64(len(keywords))
	result.Score = math.Round(ratio*1000) / 10
	return result
}
