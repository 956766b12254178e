// Package experience loads imported work history and normalizes it before tailoring.
package experience

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-review/internal/types"
)

// maxListLineChars is the length below which a comma-separated line without a
// period is treated as a pasted skill list rather than an achievement.
const maxListLineChars = 100

// maxListItemWords bounds the words per item of a line classified as a list.
// Comma clauses longer than this are prose, as in "Built X using Y, increasing Z by 20%".
const maxListItemWords = 3

var (
	plusSkillsPattern   = regexp.MustCompile(`(?i)\+\s*\d+\s+skills?\b`)
	endsInSkillsPattern = regexp.MustCompile(`(?i)\bskills\W*$`)
	yearPattern         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	isoMonthPattern     = regexp.MustCompile(`^\s*((?:19|20)\d{2})-(\d{1,2})\s*$`)
	wordPattern         = regexp.MustCompile(`[a-z]+`)
)

var monthsByToken = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// NormalizeRoles runs the full ingestion pass: noise stripping, de-duplication,
// then recency ordering. It never fails; malformed input degrades.
func NormalizeRoles(roles []types.Role, now time.Time) []types.Role {
	stripped := make([]types.Role, 0, len(roles))
	for _, role := range roles {
		stripped = append(stripped, StripNoiseLines(role))
	}
	return SortByRecency(Deduplicate(stripped), now)
}

// Deduplicate removes repeated roles (same company, title, start and end,
// compared case-insensitively), keeping the first occurrence. Roles with a blank
// title are dropped.
func Deduplicate(roles []types.Role) []types.Role {
	result := make([]types.Role, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))

	for _, role := range roles {
		if strings.TrimSpace(role.Title) == "" {
			continue
		}
		key := role.IdentityTuple()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, role.Clone())
	}

	return result
}

// SortByRecency orders roles by start date, most recent first. Ties keep their
// input order.
func SortByRecency(roles []types.Role, now time.Time) []types.Role {
	type dated struct {
		role  types.Role
		start time.Time
	}
	items := make([]dated, len(roles))
	for i, role := range roles {
		items[i] = dated{role: role, start: ParseRoleDate(role.StartDate, now)}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].start.After(items[b].start)
	})

	sorted := make([]types.Role, len(items))
	for i, item := range items {
		sorted[i] = item.role
	}
	return sorted
}

// ParseRoleDate parses a free-text resume date. "present" and "current" mean now.
// Month/year tokens ("Apr 2023", "april 2023"), a bare year and YYYY-MM are accepted.
// Anything else yields January 1 of now's year.
func ParseRoleDate(s string, now time.Time) time.Time {
	fallback := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return fallback
	}
	if strings.Contains(lower, "present") || strings.Contains(lower, "current") {
		return now
	}

	if m := isoMonthPattern.FindStringSubmatch(lower); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		}
		return fallback
	}

	yearStr := yearPattern.FindString(lower)
	if yearStr == "" {
		return fallback
	}
	year, _ := strconv.Atoi(yearStr)

	month := time.January
	for _, word := range wordPattern.FindAllString(lower, -1) {
		if m, ok := monthsByToken[word]; ok {
			month = m
			break
		}
	}

	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// StripNoiseLines drops bullet lines that look like import artifacts instead of
// real content. This is a heuristic; some misclassification is expected.
func StripNoiseLines(role types.Role) types.Role {
	out := role
	out.Bullets = make([]string, 0, len(role.Bullets))
	for _, line := range role.Bullets {
		if IsNoiseLine(line) {
			continue
		}
		out.Bullets = append(out.Bullets, strings.TrimSpace(line))
	}
	return out
}

// IsNoiseLine reports whether a bullet line is an import artifact.
func IsNoiseLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if plusSkillsPattern.MatchString(trimmed) {
		return true
	}
	if endsInSkillsPattern.MatchString(trimmed) {
		return true
	}
	return looksLikeList(trimmed)
}

// looksLikeList matches short lines such as "Go, Kubernetes, Terraform".
func looksLikeList(line string) bool {
	if len(line) >= maxListLineChars {
		return false
	}
	if !strings.Contains(line, ",") || strings.Contains(line, ".") {
		return false
	}
	for _, item := range strings.Split(line, ",") {
		if len(strings.Fields(item)) > maxListItemWords {
			return false
		}
	}
	return true
}
