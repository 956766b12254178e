package selection

import (
	"fmt"

	"github.com/jonathan/resume-review/internal/types"
)

// Action is a state transition expressed as a value, so sequences of user events
// can be replayed, logged, or generated in tests.
type Action interface {
	apply(s State) (State, Outcome, error)
	fmt.Stringer
}

// Apply runs one action against a state
func Apply(s State, a Action) (State, Outcome, error) {
	return a.apply(s)
}

// ApplyAll runs actions in order, stopping at the first precondition error.
// Soft rejections do not stop the run; their outcomes are returned alongside.
func ApplyAll(s State, actions ...Action) (State, []Outcome, error) {
	outcomes := make([]Outcome, 0, len(actions))
	for i, a := range actions {
		next, outcome, err := a.apply(s)
		if err != nil {
			return s, outcomes, &Error{
				Message: fmt.Sprintf("action %d (%s)", i, a),
				Cause:   err,
			}
		}
		s = next
		outcomes = append(outcomes, outcome)
	}
	return s, outcomes, nil
}

// ActivateAction toggles a role into (or out of) the session
type ActivateAction struct {
	Role          types.Role
	MasterBullets []string
}

func (a ActivateAction) apply(s State) (State, Outcome, error) {
	next, outcome := ActivateRole(s, a.Role, a.MasterBullets)
	return next, outcome, nil
}

func (a ActivateAction) String() string {
	return fmt.Sprintf("activate %s", a.Role.Key())
}

// ResolveAction delivers AI suggestions for a role
type ResolveAction struct {
	Key     types.RoleKey
	Bullets []string
}

func (a ResolveAction) apply(s State) (State, Outcome, error) {
	next, outcome := ResolveAiBullets(s, a.Key, a.Bullets)
	return next, outcome, nil
}

func (a ResolveAction) String() string {
	return fmt.Sprintf("resolve %s (+%d)", a.Key, len(a.Bullets))
}

// FailAction records a failed suggestion fetch for a role
type FailAction struct {
	Key types.RoleKey
}

func (a FailAction) apply(s State) (State, Outcome, error) {
	next, outcome := FailAiBullets(s, a.Key)
	return next, outcome, nil
}

func (a FailAction) String() string {
	return fmt.Sprintf("fail %s", a.Key)
}

// ToggleAction selects or deselects a candidate
type ToggleAction struct {
	Key   types.RoleKey
	Index int
}

func (a ToggleAction) apply(s State) (State, Outcome, error) {
	return ToggleBullet(s, a.Key, a.Index)
}

func (a ToggleAction) String() string {
	return fmt.Sprintf("toggle %s[%d]", a.Key, a.Index)
}

// EditAction sets replacement text for a candidate
type EditAction struct {
	Key   types.RoleKey
	Index int
	Text  string
}

func (a EditAction) apply(s State) (State, Outcome, error) {
	return EditBullet(s, a.Key, a.Index, a.Text)
}

func (a EditAction) String() string {
	return fmt.Sprintf("edit %s[%d]", a.Key, a.Index)
}

// ClearEditAction drops a candidate's replacement text
type ClearEditAction struct {
	Key   types.RoleKey
	Index int
}

func (a ClearEditAction) apply(s State) (State, Outcome, error) {
	return ClearEdit(s, a.Key, a.Index)
}

func (a ClearEditAction) String() string {
	return fmt.Sprintf("clear-edit %s[%d]", a.Key, a.Index)
}

// ReorderAction moves a selected bullet. An empty ToKey means the same role.
type ReorderAction struct {
	Key   types.RoleKey
	From  int
	To    int
	ToKey types.RoleKey
}

func (a ReorderAction) apply(s State) (State, Outcome, error) {
	toKey := a.ToKey
	if toKey == "" {
		toKey = a.Key
	}
	return ReorderAcross(s, a.Key, a.From, toKey, a.To)
}

func (a ReorderAction) String() string {
	return fmt.Sprintf("reorder %s %d->%d", a.Key, a.From, a.To)
}
