//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_KeyIgnoresCaseAndWhitespace(t *testing.T) {
	a := Role{Company: "Acme", Title: "Engineer", StartDate: "Jan 2020", EndDate: "Mar 2021"}
	b := Role{Company: " ACME ", Title: "engineer", StartDate: "jan 2020", EndDate: "MAR 2021"}

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.IdentityTuple(), b.IdentityTuple())
	assert.Len(t, string(a.Key()), 12)
}

func TestRole_KeyDiffersByDates(t *testing.T) {
	a := Role{Company: "Acme", Title: "Engineer", StartDate: "Jan 2020", EndDate: "Mar 2021"}
	b := Role{Company: "Acme", Title: "Engineer", StartDate: "Apr 2023", EndDate: "Present"}

	assert.NotEqual(t, a.Key(), b.Key())
}

func TestRole_KeyIgnoresBullets(t *testing.T) {
	a := Role{Company: "Acme", Title: "Engineer", Bullets: []string{"one"}}
	b := Role{Company: "Acme", Title: "Engineer", Bullets: []string{"two", "three"}}

	assert.Equal(t, a.Key(), b.Key())
}

func TestRole_CloneIsDeep(t *testing.T) {
	orig := Role{Company: "Acme", Title: "Engineer", Bullets: []string{"one", "two"}}
	clone := orig.Clone()
	clone.Bullets[0] = "changed"

	assert.Equal(t, "one", orig.Bullets[0])
}

func TestRoleSet_JSONUnmarshaling(t *testing.T) {
	jsonInput := `{
		"roles": [
			{
				"company": "Acme",
				"title": "Engineer",
				"start_date": "Apr 2023",
				"end_date": "Present",
				"bullets": ["Built X", "Shipped Y"]
			}
		]
	}`

	var set RoleSet
	err := json.Unmarshal([]byte(jsonInput), &set)
	require.NoError(t, err)
	require.Len(t, set.Roles, 1)
	assert.Equal(t, "Acme", set.Roles[0].Company)
	assert.Equal(t, "Present", set.Roles[0].EndDate)
	assert.Equal(t, []string{"Built X", "Shipped Y"}, set.Roles[0].Bullets)
}

func TestTailoredSnapshot_BulletTotal(t *testing.T) {
	snap := &TailoredSnapshot{
		Roles: []TailoredRole{
			{Bullets: []string{"a", "b"}},
			{Bullets: []string{"c"}},
			{},
		},
	}
	assert.Equal(t, 3, snap.BulletTotal())
}
