package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-review/internal/ingestion"
	"github.com/jonathan/resume-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linkedInFixture = "../../internal/ingestion/testdata/linkedin_public.html"

func TestImportLinkedIn_RequiresSource(t *testing.T) {
	_, err := runCommand(t, importLinkedInCmd)
	require.Error(t, err)
}

func TestImportLinkedIn_SourcesMutuallyExclusive(t *testing.T) {
	_, err := runCommand(t, importLinkedInCmd, "--url", "https://www.linkedin.com/in/someone", "--html", linkedInFixture)
	require.Error(t, err)
}

func TestImportLinkedIn_SavedHTML(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "roles.json")

	out, err := runCommand(t, importLinkedInCmd, "--html", linkedInFixture, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 roles")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var set types.RoleSet
	require.NoError(t, json.Unmarshal(data, &set))
	require.Len(t, set.Roles, 3)
	assert.Equal(t, "Acme Corp", set.Roles[0].Company)
}

func TestImportJob_TextFile(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "job")
	job := writeJobFile(t, "Senior Go Engineer\n\nWe need Go, PostgreSQL and Kubernetes experience.\n")

	out, err := runCommand(t, importJobCmd, "--text-file", job, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully ingested job posting")

	cleaned, err := os.ReadFile(filepath.Join(outDir, "job_posting.cleaned.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(cleaned), "PostgreSQL")

	meta, err := ingestion.LoadJobMeta(outDir)
	require.NoError(t, err)
	assert.Equal(t, ingestion.SourceFile, meta.Source)
	assert.Equal(t, job, meta.Path)
	assert.True(t, meta.Matches(string(cleaned)))
}

func TestImportResume_MissingInput(t *testing.T) {
	_, err := runCommand(t, importResumeCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}
