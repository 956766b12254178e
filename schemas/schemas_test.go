package schemas_test

import (
	"encoding/json"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	validation "github.com/jonathan/resume-review/internal/schemas"
	"github.com/jonathan/resume-review/schemas"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	names, err := fs.Glob(schemas.FS, "*.schema.json")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{schemas.Roles, schemas.Snapshot}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			data, err := schemas.FS.ReadFile(name)
			require.NoError(t, err)

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj), "schema file should be valid JSON: %s", name)

			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schemaObj["$schema"])
			assert.Equal(t, "object", schemaObj["type"])
			assert.Contains(t, schemaObj, "properties")
		})
	}
}

func TestEmbeddedMatchesDisk(t *testing.T) {
	for _, name := range []string{schemas.Roles, schemas.Snapshot} {
		embedded, err := schemas.FS.ReadFile(name)
		require.NoError(t, err)
		onDisk, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, string(onDisk), string(embedded))
	}
}

func TestRolesSchema_AcceptsNormalizerFixture(t *testing.T) {
	data, err := os.ReadFile("../internal/experience/testdata/roles.json")
	require.NoError(t, err)
	assert.NoError(t, validation.ValidateRoles(data))
}

func TestSnapshotSchema_ReferencesResolvable(t *testing.T) {
	s, err := validation.Embedded(schemas.Snapshot)
	require.NoError(t, err)
	assert.NoError(t, s.ValidateFile("../testdata/valid/snapshot.json"))
}
