package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-review/internal/types"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestParseLinkedInHTML_PublicLayout(t *testing.T) {
	set, err := ParseLinkedInHTML(readFixture(t, "linkedin_public.html"))
	require.NoError(t, err)
	require.Len(t, set.Roles, 3)

	assert.Equal(t, types.Role{
		Company:   "Acme Corp",
		Title:     "Staff Software Engineer",
		StartDate: "Apr 2023",
		EndDate:   "Present",
		Bullets: []string{
			"Led the migration of billing to Go",
			"Cut p99 latency by 40%",
			"Mentored six engineers",
			"Skills: Go · Kubernetes +8 skills",
		},
	}, set.Roles[0])

	globex := set.Roles[1]
	assert.Equal(t, "Globex", globex.Company)
	assert.Equal(t, "Senior Engineer", globex.Title)
	assert.Equal(t, "Jan 2020", globex.StartDate)
	assert.Equal(t, "Mar 2023", globex.EndDate)
	assert.Equal(t, []string{"Built the event pipeline on Kafka", "Owned on-call for payments"}, globex.Bullets)

	early := set.Roles[2]
	assert.Equal(t, "Globex", early.Company)
	assert.Equal(t, "2018", early.StartDate)
	assert.Equal(t, "2019", early.EndDate)
	assert.Empty(t, early.Bullets)
}

func TestParseLinkedInHTML_SavedLayout(t *testing.T) {
	set, err := ParseLinkedInHTML(readFixture(t, "linkedin_saved.html"))
	require.NoError(t, err)
	require.Len(t, set.Roles, 2)

	assert.Equal(t, types.Role{
		Company:   "Initech",
		Title:     "Platform Engineer",
		StartDate: "Feb 2021",
		EndDate:   "Present",
		Bullets: []string{
			"Automated fleet upgrades with Terraform",
			"Reduced deploy time from 40 to 6 minutes",
			"Skills: Terraform · AWS +8 skills",
		},
	}, set.Roles[0])

	assert.Equal(t, "Hooli", set.Roles[1].Company)
	assert.Equal(t, "2019", set.Roles[1].StartDate)
	assert.Empty(t, set.Roles[1].EndDate)
	assert.Empty(t, set.Roles[1].Bullets)
}

func TestParseLinkedInHTML_NoExperience(t *testing.T) {
	_, err := ParseLinkedInHTML(`<html><body><main>Sign in to view</main></body></html>`)
	var ingestErr *Error
	require.ErrorAs(t, err, &ingestErr)
	assert.Contains(t, err.Error(), "no experience entries")
}

func TestSplitDateRange(t *testing.T) {
	tests := []struct {
		in         string
		start, end string
	}{
		{"Jan 2020 - Present · 5 yrs 2 mos", "Jan 2020", "Present"},
		{"2018–2019", "2018", "2019"},
		{"Mar 2017 — Dec 2018", "Mar 2017", "Dec 2018"},
		{"2019", "2019", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			start, end := splitDateRange(tt.in)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestFetchLinkedIn_StaticPage(t *testing.T) {
	html := readFixture(t, "linkedin_public.html")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	set, err := fetchLinkedIn(t.Context(), server.URL, nil)
	require.NoError(t, err)
	assert.Len(t, set.Roles, 3)
}

func TestFetchLinkedIn_RendersShell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="app"></div></body></html>`))
	}))
	defer server.Close()

	rendered := readFixture(t, "linkedin_saved.html")
	set, err := fetchLinkedIn(t.Context(), server.URL, func(context.Context, string) (string, error) {
		return rendered, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Initech", set.Roles[0].Company)
}

func TestFetchLinkedIn_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := fetchLinkedIn(t.Context(), server.URL, nil)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
}
