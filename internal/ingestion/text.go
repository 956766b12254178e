// Package ingestion turns external documents (job postings, profile pages,
// uploaded resumes) into cleaned text and work-history roles.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	blankLineRun = regexp.MustCompile(`\n\n\n+`)
	bulletPrefix = []string{"- ", "* ", "• ", "· "}
)

const bulletGlyphs = "-*•·▪◦"

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankLineRun.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	// Markdown headings lose their indentation
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}

	content := spaceRun.ReplaceAllString(strings.TrimSpace(line), " ")
	return strings.Repeat(" ", indent) + content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range bulletPrefix {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// bulletText strips a leading bullet glyph and surrounding whitespace.
// ASCII markers only count when followed by a space so "-20% latency" survives.
func bulletText(line string) string {
	line = strings.TrimSpace(line)
	r, size := utf8.DecodeRuneInString(line)
	if size == 0 || !strings.ContainsRune(bulletGlyphs, r) {
		return line
	}
	rest := line[size:]
	if (r == '-' || r == '*') && rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return line
	}
	return strings.TrimSpace(rest)
}

// JobFromFile reads a job description file, cleans it, and returns cleaned text with metadata
func JobFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	cleanedText := CleanText(string(content))
	meta := newMetadata(SourceFile, cleanedText)
	meta.Path = path
	return cleanedText, meta, nil
}
