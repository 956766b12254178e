package llm

import (
	"fmt"
	"strings"
)

// MaxExtractionInput caps the characters of source text sent for extraction.
// Resumes and postings longer than this are cut at a line boundary.
const MaxExtractionInput = 30000

// ExtractionSchema describes a JSON object for the model to fill from text
type ExtractionSchema struct {
	Name        string // e.g. "WorkHistory"
	Description string // task instructions placed before the output shape
	Fields      []SchemaField
}

// SchemaField is one top-level key of the extraction output
type SchemaField struct {
	Name        string
	Type        string // JSON shape hint; defaults to "string"
	Description string
	Required    bool
}

// BuildExtractionPrompt renders the instructions, the expected output object,
// and the (possibly truncated) input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(schema.Description))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Respond with a single JSON object (%s) with these keys:\n", schema.Name)
	for _, field := range schema.Fields {
		shape := field.Type
		if shape == "" {
			shape = "string"
		}
		need := "optional"
		if field.Required {
			need = "required"
		}
		fmt.Fprintf(&sb, "- %q (%s): %s", field.Name, need, shape)
		if field.Description != "" {
			fmt.Fprintf(&sb, " - %s", field.Description)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nRules:\n")
	sb.WriteString("- Use only information present in the text. Never invent or summarize.\n")
	sb.WriteString("- Output the JSON object alone: no markdown fences, no commentary.\n\n")

	text, truncated := truncateInput(inputText, MaxExtractionInput)
	sb.WriteString("Text:\n\"\"\"\n")
	sb.WriteString(text)
	sb.WriteString("\n\"\"\"\n")
	if truncated {
		sb.WriteString("(The text was truncated; extract what is present.)\n")
	}

	return sb.String()
}

// truncateInput cuts text to at most limit bytes, backing up to the last
// newline so no line is split.
func truncateInput(text string, limit int) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text, false
	}
	cut := text[:limit]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut), true
}

// RoleExtractionSchema returns the extraction schema for pulling work history out
// of resume or profile text. The output feeds the normalizer, so bullets are
// copied as-is and noise is left for it to strip.
func RoleExtractionSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "WorkHistory",
		Description: `You are an expert resume parser. COPY TEXT VERBATIM - do not paraphrase, summarize, or reword.
Your task is to extract every position from the work history in the text below, most recent first.
Each position has a company, a title, a start date, an end date, and the bullet points listed under it.
Use "Present" as the end date for current positions. Use an empty string for any date that is not stated.
EXCLUDE: Education, certifications, contact details, and skill lists that are not attached to a position.`,
		Fields: []SchemaField{
			{
				Name:        "roles",
				Type:        `[{"company": "string", "title": "string", "start_date": "string", "end_date": "string", "bullets": ["string"]}]`,
				Description: "One entry per position, bullets copied verbatim",
				Required:    true,
			},
		},
	}
}

// JobKeywordsSchema returns the extraction schema for the skills and technologies
// a job posting asks for.
func JobKeywordsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobKeywords",
		Description: `You are an expert job posting parser.
Your task is to list the concrete skills, tools, and technologies a job posting asks for.
Use the shortest common form of each term (e.g. "kubernetes", "go", "postgresql").`,
		Fields: []SchemaField{
			{
				Name:        "keywords",
				Type:        `["string"]`,
				Description: "Lowercase skill and technology terms, most important first",
				Required:    true,
			},
		},
	}
}
