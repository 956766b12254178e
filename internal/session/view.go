package session

import (
	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/selection"
	"github.com/jonathan/resume-review/internal/types"
)

// RoleView is one role as the review screen shows it
type RoleView struct {
	RoleKey       types.RoleKey         `json:"role_key"`
	Company       string                `json:"company"`
	Title         string                `json:"title"`
	StartDate     string                `json:"start_date"`
	EndDate       string                `json:"end_date"`
	Active        bool                  `json:"active"`
	Loading       bool                  `json:"loading"`
	AIUnavailable bool                  `json:"ai_unavailable"`
	Selected      []int                 `json:"selected"`
	Candidates    []selection.Candidate `json:"candidates"`
}

// View is a read-only snapshot of the whole session
type View struct {
	ID       uuid.UUID  `json:"id"`
	JobTitle string     `json:"job_title"`
	Company  string     `json:"company"`
	Roles    []RoleView `json:"roles"`
	Total    int        `json:"total_selected"`
	Max      int        `json:"max_selected"`
}

// View returns every normalized role, active or not, with candidates for the
// active ones.
func (s *Session) View() View {
	state := s.State()

	roles := make([]RoleView, 0, len(s.roles))
	for _, r := range s.roles {
		key := r.Key()
		rv := RoleView{
			RoleKey:    key,
			Company:    r.Company,
			Title:      r.Title,
			StartDate:  r.StartDate,
			EndDate:    r.EndDate,
			Selected:   []int{},
			Candidates: []selection.Candidate{},
		}
		if rs, ok := state.Role(key); ok {
			rv.Active = true
			rv.Loading = rs.Loading
			rv.AIUnavailable = rs.AIUnavailable
			rv.Selected = rs.Selected
			rv.Candidates, _ = selection.Candidates(state, key)
		}
		roles = append(roles, rv)
	}

	return View{
		ID:       s.ID,
		JobTitle: s.JobTitle,
		Company:  s.Company,
		Roles:    roles,
		Total:    selection.TotalSelected(state),
		Max:      selection.MaxTotalBullets,
	}
}
