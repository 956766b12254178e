package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCommand_MissingInputFlag(t *testing.T) {
	_, err := runCommand(t, normalizeCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestNormalizeCommand_InvalidInputFile(t *testing.T) {
	_, err := runCommand(t, normalizeCmd, "--in", "/nonexistent/roles.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read roles file")
}

func TestNormalizeCommand_SchemaViolation(t *testing.T) {
	_, err := runCommand(t, normalizeCmd, "--in", "../../testdata/invalid/unknown_field.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid roles file")
}

func TestNormalizeCommand_DropsBlankTitleRoles(t *testing.T) {
	out, err := runCommand(t, normalizeCmd, "-i", "../../testdata/valid/blank_title.json")
	require.NoError(t, err)

	var set types.RoleSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.Roles, 1)
	assert.Equal(t, "Engineer", set.Roles[0].Title)
}

func TestNormalizeCommand_WritesNormalizedRoles(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "normalized.json")

	out, err := runCommand(t, normalizeCmd, "--in", noisyRolesPath, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Normalized 2 roles (3 in input)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var set types.RoleSet
	require.NoError(t, json.Unmarshal(data, &set))
	require.Len(t, set.Roles, 2)

	assert.Equal(t, "Apr 2023", set.Roles[0].StartDate, "most recent role first")
	for _, role := range set.Roles {
		for _, b := range role.Bullets {
			assert.NotContains(t, b, "+8 skills")
		}
	}
}

func TestNormalizeCommand_Stdout(t *testing.T) {
	out, err := runCommand(t, normalizeCmd, "-i", validRolesPath)
	require.NoError(t, err)

	var set types.RoleSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	assert.NotEmpty(t, set.Roles)
}
