package experience

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/resume-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func TestDeduplicate_ThenSortByRecency(t *testing.T) {
	roles := []types.Role{
		{Company: "Acme", Title: "Eng", StartDate: "Jan 2020", EndDate: "Mar 2021"},
		{Company: "Acme", Title: "Eng", StartDate: "Jan 2020", EndDate: "Mar 2021"},
		{Company: "Acme", Title: "Eng", StartDate: "Apr 2023", EndDate: "Present"},
	}

	result := SortByRecency(Deduplicate(roles), fixedNow)

	require.Len(t, result, 2)
	assert.Equal(t, "Apr 2023", result[0].StartDate)
	assert.Equal(t, "Present", result[0].EndDate)
	assert.Equal(t, "Jan 2020", result[1].StartDate)
	assert.Equal(t, "Mar 2021", result[1].EndDate)
}

func TestDeduplicate_CaseInsensitiveKeepsFirst(t *testing.T) {
	roles := []types.Role{
		{Company: "Acme", Title: "Engineer", StartDate: "Jan 2020", Bullets: []string{"first"}},
		{Company: "ACME", Title: "engineer", StartDate: "jan 2020", Bullets: []string{"second"}},
	}

	result := Deduplicate(roles)

	require.Len(t, result, 1)
	assert.Equal(t, []string{"first"}, result[0].Bullets)
}

func TestDeduplicate_DropsBlankTitles(t *testing.T) {
	roles := []types.Role{
		{Company: "Acme", Title: "   "},
		{Company: "Acme", Title: ""},
		{Company: "Globex", Title: "Analyst"},
	}

	result := Deduplicate(roles)

	require.Len(t, result, 1)
	assert.Equal(t, "Globex", result[0].Company)
}

func TestDeduplicate_PreservesRelativeOrder(t *testing.T) {
	roles := []types.Role{
		{Company: "C", Title: "T"},
		{Company: "A", Title: "T"},
		{Company: "C", Title: "T"},
		{Company: "B", Title: "T"},
	}

	result := Deduplicate(roles)

	require.Len(t, result, 3)
	assert.Equal(t, "C", result[0].Company)
	assert.Equal(t, "A", result[1].Company)
	assert.Equal(t, "B", result[2].Company)
}

func TestDeduplicate_DoesNotShareBullets(t *testing.T) {
	roles := []types.Role{{Company: "A", Title: "T", Bullets: []string{"x"}}}

	result := Deduplicate(roles)
	result[0].Bullets[0] = "y"

	assert.Equal(t, "x", roles[0].Bullets[0])
}

func TestSortByRecency_PresentSortsFirst(t *testing.T) {
	roles := []types.Role{
		{Title: "Old", StartDate: "June 2015"},
		{Title: "Ongoing", StartDate: "Current"},
		{Title: "Mid", StartDate: "2019"},
	}

	result := SortByRecency(roles, fixedNow)

	assert.Equal(t, "Ongoing", result[0].Title)
	assert.Equal(t, "Mid", result[1].Title)
	assert.Equal(t, "Old", result[2].Title)
}

func TestSortByRecency_StableForTies(t *testing.T) {
	roles := []types.Role{
		{Title: "First", StartDate: "Apr 2020"},
		{Title: "Second", StartDate: "april 2020"},
	}

	result := SortByRecency(roles, fixedNow)

	assert.Equal(t, "First", result[0].Title)
	assert.Equal(t, "Second", result[1].Title)
}

func TestSortByRecency_MalformedDateDefaultsToStartOfYear(t *testing.T) {
	roles := []types.Role{
		{Title: "Earlier this year", StartDate: "Mar 2026"},
		{Title: "Malformed", StartDate: "sometime"},
		{Title: "Last year", StartDate: "Dec 2025"},
	}

	result := SortByRecency(roles, fixedNow)

	assert.Equal(t, "Earlier this year", result[0].Title)
	assert.Equal(t, "Malformed", result[1].Title)
	assert.Equal(t, "Last year", result[2].Title)
}

func TestParseRoleDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"short month", "Apr 2023", time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{"long month", "April 2023", time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{"upper case", "SEPT 2018", time.Date(2018, time.September, 1, 0, 0, 0, 0, time.UTC)},
		{"bare year", "2019", time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"iso month", "2021-07", time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"present", "Present", fixedNow},
		{"current", "current", fixedNow},
		{"empty", "", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"garbage", "n/a", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"bad iso month", "2021-13", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRoleDate(tt.input, fixedNow))
		})
	}
}

func TestStripNoiseLines_KeepsAchievementDropsSkillArtifact(t *testing.T) {
	role := types.Role{
		Title: "Engineer",
		Bullets: []string{
			"Built X using Y, increasing Z by 20%",
			"Sales, Marketing, Leadership +8 skills",
		},
	}

	result := StripNoiseLines(role)

	assert.Equal(t, []string{"Built X using Y, increasing Z by 20%"}, result.Bullets)
	assert.Len(t, role.Bullets, 2, "input must not be modified")
}

func TestIsNoiseLine(t *testing.T) {
	tests := []struct {
		line  string
		noise bool
	}{
		{"", true},
		{"   ", true},
		{"Go, Kubernetes and +3 skills", true},
		{"+12 Skills", true},
		{"Communication and leadership skills", true},
		{"Go, Kubernetes, Terraform", true},
		{"Reduced cloud spend by 30%.", false},
		{"Owned the on-call rotation for payments, ledger, and refunds services.", false},
		{"Built X using Y, increasing Z by 20%", false},
		{"Designed a skills matrix used by 40 engineers to plan growth", false},
		{"Led platform team of eight, owned hiring", false},
		{"Python, SQL, Machine Learning", true},
		{"Led the platform team, Go", false},
		{"Go, Kubernetes, Terraform, AWS, GCP, Azure, Docker, Helm, Kafka, Redis, PostgreSQL, MySQL, Spark, dbt", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.noise, IsNoiseLine(tt.line))
		})
	}
}

func TestStripNoiseLines_KeepsCommaAchievements(t *testing.T) {
	role := types.Role{Company: "Acme", Title: "Engineer", Bullets: []string{
		"Built X using Y, increasing Z by 20%",
		"Led platform team of eight, owned hiring",
		"Sales, Marketing, Leadership +8 skills",
		"Sales, Marketing, Leadership",
	}}

	got := StripNoiseLines(role)

	assert.Equal(t, []string{
		"Built X using Y, increasing Z by 20%",
		"Led platform team of eight, owned hiring",
	}, got.Bullets)
}

func TestNormalizeRoles_FromFixture(t *testing.T) {
	set, err := LoadRoles(filepath.Join("testdata", "roles.json"))
	require.NoError(t, err)

	result := NormalizeRoles(set.Roles, fixedNow)

	require.Len(t, result, 2)
	assert.Equal(t, "Apr 2023", result[0].StartDate)
	assert.Equal(t, []string{"Built X using Y, increasing Z by 20%"}, result[1].Bullets)
}
