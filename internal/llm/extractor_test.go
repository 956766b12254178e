package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := ExtractionSchema{
		Name:        "Test",
		Description: "Extract things.",
		Fields: []SchemaField{
			{Name: "a", Type: `"string"`, Description: "first", Required: true},
			{Name: "b"},
		},
	}

	prompt := BuildExtractionPrompt(schema, "some input")

	assert.Contains(t, prompt, "Extract things.")
	assert.Contains(t, prompt, "single JSON object (Test)")
	assert.Contains(t, prompt, `- "a" (required): "string" - first`)
	assert.Contains(t, prompt, `- "b" (optional): string`)
	assert.Contains(t, prompt, "\"\"\"\nsome input\n\"\"\"")
	assert.NotContains(t, prompt, "truncated")
}

func TestBuildExtractionPrompt_TruncatesLongInput(t *testing.T) {
	line := strings.Repeat("x", 99) + "\n"
	input := strings.Repeat(line, MaxExtractionInput/100+50)

	prompt := BuildExtractionPrompt(RoleExtractionSchema(), input)

	assert.Contains(t, prompt, "The text was truncated")
	assert.Less(t, len(prompt), MaxExtractionInput+2000)
}

func TestTruncateInput(t *testing.T) {
	text, cut := truncateInput("first line\nsecond line", 15)
	assert.True(t, cut)
	assert.Equal(t, "first line", text)

	text, cut = truncateInput("  short  ", 15)
	assert.False(t, cut)
	assert.Equal(t, "short", text)
}

func TestRoleExtractionSchema(t *testing.T) {
	schema := RoleExtractionSchema()

	assert.Equal(t, "WorkHistory", schema.Name)
	if assert.Len(t, schema.Fields, 1) {
		assert.Equal(t, "roles", schema.Fields[0].Name)
		assert.True(t, schema.Fields[0].Required)
		assert.Contains(t, schema.Fields[0].Type, "start_date")
	}
}

func TestJobKeywordsSchema(t *testing.T) {
	schema := JobKeywordsSchema()
	prompt := BuildExtractionPrompt(schema, "We use Go and Kubernetes")

	assert.Contains(t, prompt, `- "keywords" (required): ["string"]`)
	assert.Contains(t, prompt, "We use Go and Kubernetes")
}
