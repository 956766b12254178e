package selection

import (
	"github.com/jonathan/resume-review/internal/types"
)

// Materialize produces the tailored document: active roles in engine order, each
// with its selected bullets in selection order, edit overlay applied. It has no side
// effects and allocates fresh slices on every call.
func Materialize(s State) []types.TailoredRole {
	result := make([]types.TailoredRole, 0, len(s.order))

	for _, key := range s.order {
		rs := s.roles[key]

		bullets := make([]string, 0, len(rs.Selected))
		for _, index := range rs.Selected {
			if text, ok := s.edits[EditKey{Role: key, Index: index}]; ok {
				bullets = append(bullets, text)
				continue
			}
			bullets = append(bullets, rs.poolText(index))
		}

		result = append(result, types.TailoredRole{
			RoleKey:   key,
			Company:   rs.Role.Company,
			Title:     rs.Role.Title,
			StartDate: rs.Role.StartDate,
			EndDate:   rs.Role.EndDate,
			Bullets:   bullets,
		})
	}

	return result
}
