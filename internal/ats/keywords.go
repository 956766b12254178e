// Package ats scores a tailored document against a job description by keyword
// overlap. It only ever sees materialized bullet text, so edits are always
// reflected in the score.
package ats

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultKeywordLimit bounds how many job keywords are scored
const DefaultKeywordLimit = 30

var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9+#./-]*`)

// termAliases maps common variants to one canonical term
var termAliases = map[string]string{
	"golang":       "go",
	"k8s":          "kubernetes",
	"js":           "javascript",
	"ts":           "typescript",
	"react.js":     "react",
	"reactjs":      "react",
	"vue.js":       "vue",
	"vuejs":        "vue",
	"nodejs":       "node.js",
	"node":         "node.js",
	"postgres":     "postgresql",
	"psql":         "postgresql",
	"mongo":        "mongodb",
	"py":           "python",
	"tf":           "terraform",
	"gcp":          "google-cloud",
	"ml":           "machine-learning",
	"ci":           "ci/cd",
	"cicd":         "ci/cd",
	"restful":      "rest",
	"microservice": "microservices",
}

var stopwords = toSet(`a about above across after all also an and any are as at be been being both but by
can could did do does doing during each either etc for from had has have having he her here his how i if in
into is it its itself just may me more most must my no nor not of off on once only or other our ours out over
own per same she should so some such than that the their them then there these they this those through to
too under until up us very via was we well were what when where which while who whom why will with within
without would you your yours
ability able applicant applicants apply benefits bonus candidate candidates company competitive culture day
degree equal employer environment excellent experience experienced familiarity years year including ideal
job join knowledge looking make new opportunity plus preferred qualifications required requirements
responsibilities role skills strong team teams understanding using work working world great good help
build building want like`)

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// tokenize lowercases text and returns canonical terms in order of appearance.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.TrimRight(tok, "./-")
		if tok == "" {
			continue
		}
		terms = append(terms, NormalizeTerm(tok))
	}
	return terms
}

// NormalizeTerm maps a lowercase term to its canonical form
func NormalizeTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if canonical, ok := termAliases[term]; ok {
		return canonical
	}
	return term
}

func isKeyword(term string) bool {
	if len(term) < 2 || stopwords[term] {
		return false
	}
	return strings.ContainsAny(term, "abcdefghijklmnopqrstuvwxyz")
}

// ExtractKeywords returns the distinct content terms of a job description,
// most frequent first and ties in order of first appearance. At most limit terms
// are returned; limit <= 0 means DefaultKeywordLimit.
func ExtractKeywords(jobDescription string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	type entry struct {
		term  string
		count int
		first int
	}
	entries := make(map[string]*entry)
	for i, term := range tokenize(jobDescription) {
		if !isKeyword(term) {
			continue
		}
		if e, ok := entries[term]; ok {
			e.count++
			continue
		}
		entries[term] = &entry{term: term, count: 1, first: i}
	}

	ordered := make([]*entry, 0, len(entries))
	for _, e := range entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].first < ordered[j].first
	})

	keywords := make([]string, 0, min(limit, len(ordered)))
	for _, e := range ordered {
		if len(keywords) == limit {
			break
		}
		keywords = append(keywords, e.term)
	}
	return keywords
}
