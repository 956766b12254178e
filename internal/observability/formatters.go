// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-review/internal/selection"
	"github.com/jonathan/resume-review/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, boxWidth-4)
		pad := boxWidth - 4 - utf8.RuneCountInString(line)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", pad))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRoles outputs the normalized roles with their keys and bullet counts.
func (p *Printer) PrintRoles(roles []types.Role) {
	if len(roles) == 0 {
		return
	}

	var sb strings.Builder
	for i, r := range roles {
		dates := strings.TrimSpace(r.StartDate + " - " + r.EndDate)
		sb.WriteString(fmt.Sprintf("%s @ %s\n", r.Title, r.Company))
		sb.WriteString(fmt.Sprintf("  %s  [%s]  %d bullets", dates, r.Key(), len(r.Bullets)))
		if i < len(roles)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("NORMALIZED ROLES (%d)", len(roles)), sb.String())
}

// PrintCandidates outputs one role's candidate pool, marking selected and edited entries.
func (p *Printer) PrintCandidates(title string, candidates []selection.Candidate) {
	if len(candidates) == 0 {
		return
	}

	var sb strings.Builder
	for i, c := range candidates {
		mark := " "
		if c.Selected {
			mark = "✓"
		}
		tag := string(c.Source)
		if c.Edited {
			tag += ",edited"
		}
		sb.WriteString(fmt.Sprintf("%s %2d [%s] %s", mark, c.Index, tag, c.Text))
		if i < len(candidates)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CANDIDATES: "+title, sb.String())
}

// PrintTailored outputs the materialized bullets per role against the session budget.
func (p *Printer) PrintTailored(roles []types.TailoredRole, maxTotal int) {
	total := 0
	for _, r := range roles {
		total += len(r.Bullets)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Selected %d of %d bullets\n", total, maxTotal))
	for _, r := range roles {
		sb.WriteString(fmt.Sprintf("\n%s @ %s\n", r.Title, r.Company))
		for _, b := range r.Bullets {
			sb.WriteString(fmt.Sprintf("• %s\n", b))
		}
	}

	p.printBox("TAILORED BULLETS", strings.TrimRight(sb.String(), "\n"))
}

// PrintScore outputs keyword coverage of the tailored bullets.
func (p *Printer) PrintScore(score *types.ATSScore) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %.1f%% (%d/%d keywords)\n", score.Score, len(score.Matched), score.Keywords))

	if len(score.Matched) > 0 {
		sb.WriteString("\nMatched:\n")
		writeList(&sb, score.Matched, "✓")
	}
	if len(score.Missing) > 0 {
		sb.WriteString("\nMissing:\n")
		writeList(&sb, score.Missing, "✗")
	}

	p.printBox("ATS KEYWORD SCORE", strings.TrimRight(sb.String(), "\n"))
}

// PrintApplications outputs tracked job applications.
func (p *Printer) PrintApplications(apps []types.Application, total int) {
	if len(apps) == 0 {
		fmt.Fprintln(p.out, "No applications tracked.") //nolint:errcheck
		return
	}

	var sb strings.Builder
	for i, a := range apps {
		sb.WriteString(fmt.Sprintf("#%d %-10s %s @ %s", a.ID, a.Status, a.Title, a.Company))
		if i < len(apps)-1 {
			sb.WriteString("\n")
		}
	}
	if total > len(apps) {
		sb.WriteString(fmt.Sprintf("\n... and %d more", total-len(apps)))
	}

	p.printBox(fmt.Sprintf("APPLICATIONS (%d)", total), sb.String())
}

func writeList(sb *strings.Builder, items []string, mark string) {
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  %s %s\n", mark, item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
