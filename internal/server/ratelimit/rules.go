package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Rule limits one route. Pattern uses the same syntax as http.ServeMux:
// "POST /sessions/{id}/save", where each {name} matches a single path segment.
type Rule struct {
	Pattern string
	Limit   int // requests per Window; 0 means unlimited
	Window  time.Duration
	Burst   int // defaults to Limit
}

// match reports whether method and path satisfy the rule's pattern
func (r Rule) match(method, path string) bool {
	ruleMethod, rulePath, ok := strings.Cut(r.Pattern, " ")
	if !ok || ruleMethod != method {
		return false
	}

	want := strings.Split(strings.Trim(rulePath, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

// Match returns the first rule whose pattern matches the request, or nil.
func Match(method, path string, rules []Rule) *Rule {
	for i := range rules {
		if rules[i].match(method, path) {
			return &rules[i]
		}
	}
	return nil
}

// DefaultRules covers the routes that cost more than a read. Unlisted routes
// fall back to the default limit.
func DefaultRules() []Rule {
	const bullet = "/sessions/{id}/roles/{role_key}/bullets/{index}"
	return []Rule{
		{Pattern: http.MethodGet + " /health"},

		// Session creation starts AI suggestion fetches
		{Pattern: "POST /sessions", Limit: 30, Window: time.Hour, Burst: 5},
		{Pattern: "POST /sessions/{id}/roles/activate", Limit: 120, Window: time.Minute, Burst: 20},
		{Pattern: "DELETE /sessions/{id}", Limit: 60, Window: time.Minute, Burst: 10},
		{Pattern: "GET /sessions/{id}/events", Limit: 30, Window: time.Minute, Burst: 10},

		// Editing is interactive, so bursts are generous
		{Pattern: "POST " + bullet + "/toggle", Limit: 600, Window: time.Minute, Burst: 60},
		{Pattern: "PUT " + bullet + "/edit", Limit: 300, Window: time.Minute, Burst: 30},
		{Pattern: "DELETE " + bullet + "/edit", Limit: 300, Window: time.Minute, Burst: 30},
		{Pattern: "POST /sessions/{id}/roles/{role_key}/reorder", Limit: 600, Window: time.Minute, Burst: 60},
		{Pattern: "POST /sessions/{id}/feedback", Limit: 300, Window: time.Minute, Burst: 30},
		{Pattern: "POST /sessions/{id}/save", Limit: 30, Window: time.Minute, Burst: 5},

		{Pattern: "POST /applications", Limit: 100, Window: time.Minute, Burst: 10},
		{Pattern: "PATCH /applications/{id}", Limit: 100, Window: time.Minute, Burst: 10},
	}
}
