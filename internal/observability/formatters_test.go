package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/resume-review/internal/ats"
	"github.com/jonathan/resume-review/internal/selection"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintRoles(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	role := types.Role{
		Company:   "Acme Corp",
		Title:     "Senior Engineer",
		StartDate: "Jan 2020",
		EndDate:   "Present",
		Bullets:   []string{"Shipped things.", "Fixed things."},
	}
	p.PrintRoles([]types.Role{role})
	output := buf.String()

	assert.Contains(t, output, "NORMALIZED ROLES (1)")
	assert.Contains(t, output, "Senior Engineer @ Acme Corp")
	assert.Contains(t, output, string(role.Key()))
	assert.Contains(t, output, "2 bullets")
}

func TestPrintRoles_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRoles(nil)

	assert.Empty(t, buf.String())
}

func TestPrintCandidates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCandidates("Engineer @ Acme", []selection.Candidate{
		{Index: 0, Text: "Led the migration.", Source: selection.SourceMaster, Selected: true},
		{Index: 1, Text: "Drafted by the model.", Source: selection.SourceAI, Edited: true},
	})
	output := buf.String()

	assert.Contains(t, output, "CANDIDATES: Engineer @ Acme")
	assert.Contains(t, output, "✓  0 [master] Led the migration.")
	assert.Contains(t, output, "1 [ai,edited] Drafted by the model.")
}

func TestPrintTailored(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTailored([]types.TailoredRole{
		{Company: "Acme", Title: "Engineer", Bullets: []string{"One.", "Two."}},
		{Company: "Globex", Title: "Intern", Bullets: []string{"Three."}},
	}, 12)
	output := buf.String()

	assert.Contains(t, output, "Selected 3 of 12 bullets")
	assert.Contains(t, output, "Engineer @ Acme")
	assert.Contains(t, output, "• Three.")
}

func TestPrintScore(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScore(&types.ATSScore{
		Score:    25,
		Matched:  []string{"go", "kafka"},
		Missing:  []string{"rust", "terraform", "gcp", "bigquery", "dbt", "airflow"},
		Keywords: 8,
	})
	output := buf.String()

	assert.Contains(t, output, "Score: 25.0% (2/8 keywords)")
	assert.Contains(t, output, "✓ kafka")
	assert.Contains(t, output, "✗ rust")
	assert.Contains(t, output, "... and 1 more")
	assert.NotContains(t, output, "airflow")
}

func TestPrintScore_FromATSScore(t *testing.T) {
	var buf bytes.Buffer
	roles := []types.TailoredRole{{Title: "Engineer", Bullets: []string{"Built Go services on Kafka."}}}
	score := ats.Score(roles, []string{"go", "kafka", "rust"})

	NewPrinter(&buf).PrintScore(&score)
	output := buf.String()

	assert.Contains(t, output, "Score: 66.7% (2/3 keywords)")
	assert.NotContains(t, output, "6670")
}

func TestPrintScore_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintScore(nil)
	assert.Empty(t, buf.String())
}

func TestPrintApplications(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintApplications([]types.Application{
		{ID: 3, Title: "Staff Engineer", Company: "Initech", Status: types.StatusInterview},
	}, 4)
	output := buf.String()

	assert.Contains(t, output, "APPLICATIONS (4)")
	assert.Contains(t, output, "#3 interview")
	assert.Contains(t, output, "... and 3 more")

	buf.Reset()
	p.PrintApplications(nil, 0)
	assert.Equal(t, "No applications tracked.\n", buf.String())
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRoles([]types.Role{{
		Company: "A Very Long Company Name That Should Be Truncated To Fit The Box",
		Title:   "Senior Staff Principal Distinguished Engineer Level 99",
	}})
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "..."))
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}
