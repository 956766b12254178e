//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request CreateSessionRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid request",
			request: CreateSessionRequest{
				JobTitle: "Backend Engineer",
				Roles:    []Role{{Company: "Acme", Title: "Engineer"}},
			},
		},
		{
			name:    "missing roles",
			request: CreateSessionRequest{JobTitle: "Backend Engineer"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name: "empty roles",
			request: CreateSessionRequest{
				Roles: []Role{},
			},
			wantErr: true,
			errMsg:  "min",
		},
		{
			name: "role without title is accepted and dropped later",
			request: CreateSessionRequest{
				Roles: []Role{{Company: "Acme"}, {Company: "Globex", Title: "Engineer"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEditBulletRequest_Validation(t *testing.T) {
	assert.NoError(t, (&EditBulletRequest{Text: "Led migration to Go"}).Validate())
	assert.Error(t, (&EditBulletRequest{}).Validate())
	assert.Error(t, (&EditBulletRequest{Text: strings.Repeat("x", 601)}).Validate())
	assert.Error(t, (&EditBulletRequest{Text: " \t\n "}).Validate())

	padded := EditBulletRequest{Text: "  Led migration to Go \n"}
	require.NoError(t, padded.Validate())
	assert.Equal(t, "Led migration to Go", padded.Text)
}

func TestReorderRequest_Validation(t *testing.T) {
	assert.NoError(t, (&ReorderRequest{From: 0, To: 2}).Validate())
	assert.Error(t, (&ReorderRequest{From: -1, To: 2}).Validate())
}

func TestFeedbackRequest_Validation(t *testing.T) {
	valid := FeedbackRequest{RoleKey: "abc", BulletIndex: 1, Vote: VoteUp}
	assert.NoError(t, valid.Validate())

	badVote := FeedbackRequest{RoleKey: "abc", Vote: "sideways"}
	err := badVote.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")

	noRole := FeedbackRequest{Vote: VoteDown}
	assert.Error(t, noRole.Validate())
}

func TestSaveRequest_Validation(t *testing.T) {
	assert.NoError(t, (&SaveRequest{Summary: "Go engineer", Skills: []string{"Go"}}).Validate())
	assert.NoError(t, (&SaveRequest{}).Validate())
	assert.Error(t, (&SaveRequest{Skills: []string{""}}).Validate())
}

func TestActivateRoleRequest_Validation(t *testing.T) {
	assert.NoError(t, (&ActivateRoleRequest{RoleKey: "abc"}).Validate())
	assert.Error(t, (&ActivateRoleRequest{}).Validate())
}

func TestParseApplicationStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   ApplicationStatus
		wantOK bool
	}{
		{"", StatusSaved, true},
		{"Applied", StatusApplied, true},
		{" interview ", StatusInterview, true},
		{"offer", StatusOffer, true},
		{"REJECTED", StatusRejected, true},
		{"ghosted", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseApplicationStatus(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
