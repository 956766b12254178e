// Package selection maintains the per-role bullet selection of a tailoring session
// and materializes it into the final ordered document.
package selection

import (
	"fmt"
	"slices"

	"github.com/jonathan/resume-review/internal/types"
)

const (
	// MaxTotalBullets is the global cap on selected bullets across all roles
	MaxTotalBullets = 12
	// MaxMasterBullets caps how many master bullets a role surfaces as candidates
	MaxMasterBullets = 8
	// DefaultInitialSelection is how many master bullets start selected on activation
	DefaultInitialSelection = 3
)

// Source tags where a candidate bullet came from
type Source string

// Candidate sources
const (
	SourceMaster Source = "master"
	SourceAI     Source = "ai"
)

// Outcome describes what a state transition did.
type Outcome string

// Transition outcomes. Rejections leave the state unchanged.
const (
	Applied           Outcome = "applied"
	Removed           Outcome = "removed"
	NoOp              Outcome = "noop"
	RejectedBudget    Outcome = "rejected_budget"
	RejectedCrossRole Outcome = "rejected_cross_role"
)

// Candidate is one selectable bullet of a role's pool. Index is its identity.
type Candidate struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Original string `json:"original"`
	Source   Source `json:"source"`
	Edited   bool   `json:"edited"`
	Selected bool   `json:"selected"`
}

// RoleState is the tailoring state of one active role. The candidate pool is
// MasterBullets followed by AIBullets; AI bullets are only ever appended.
type RoleState struct {
	Role          types.Role `json:"role"`
	MasterBullets []string   `json:"master_bullets"`
	AIBullets     []string   `json:"ai_bullets"`
	Selected      []int      `json:"selected"`
	Loading       bool       `json:"loading"`
	AIUnavailable bool       `json:"ai_unavailable"`
}

// PoolSize returns the number of candidates currently in the pool
func (r *RoleState) PoolSize() int {
	return len(r.MasterBullets) + len(r.AIBullets)
}

func (r *RoleState) poolText(index int) string {
	if index < len(r.MasterBullets) {
		return r.MasterBullets[index]
	}
	return r.AIBullets[index-len(r.MasterBullets)]
}

func (r *RoleState) source(index int) Source {
	if index < len(r.MasterBullets) {
		return SourceMaster
	}
	return SourceAI
}

func (r *RoleState) clone() *RoleState {
	out := *r
	out.Role = r.Role.Clone()
	out.MasterBullets = slices.Clone(r.MasterBullets)
	out.AIBullets = slices.Clone(r.AIBullets)
	out.Selected = slices.Clone(r.Selected)
	return &out
}

// EditKey addresses one entry of the edit overlay
type EditKey struct {
	Role  types.RoleKey
	Index int
}

// State is an immutable snapshot of a tailoring session. Every operation in this
// package returns a new State and leaves its input untouched. The zero value is an
// empty session.
type State struct {
	order []types.RoleKey
	roles map[types.RoleKey]*RoleState
	edits map[EditKey]string
}

// NewState returns an empty state
func NewState() State {
	return State{}
}

func (s State) clone() State {
	out := State{
		order: slices.Clone(s.order),
		roles: make(map[types.RoleKey]*RoleState, len(s.roles)+1),
		edits: make(map[EditKey]string, len(s.edits)),
	}
	for k, v := range s.roles {
		out.roles[k] = v
	}
	for k, v := range s.edits {
		out.edits[k] = v
	}
	return out
}

// withRole returns a copy of s in which the given role may be mutated freely.
func (s State) withRole(key types.RoleKey) (State, *RoleState) {
	out := s.clone()
	rs := out.roles[key].clone()
	out.roles[key] = rs
	return out, rs
}

func (s State) lookup(key types.RoleKey) (*RoleState, error) {
	rs, ok := s.roles[key]
	if !ok {
		return nil, &Error{
			Message: fmt.Sprintf("role %s", key),
			Cause:   ErrUnknownRole,
		}
	}
	return rs, nil
}

func (s State) lookupIndex(key types.RoleKey, index int) (*RoleState, error) {
	rs, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= rs.PoolSize() {
		return nil, &Error{
			Message: fmt.Sprintf("candidate %d of role %s (pool size %d)", index, key, rs.PoolSize()),
			Cause:   ErrIndexOutOfRange,
		}
	}
	return rs, nil
}

// IsActive reports whether the role is part of the session
func (s State) IsActive(key types.RoleKey) bool {
	_, ok := s.roles[key]
	return ok
}

// Order returns the active role keys in engine order (activation order)
func (s State) Order() []types.RoleKey {
	return slices.Clone(s.order)
}

// Role returns a copy of one role's state
func (s State) Role(key types.RoleKey) (RoleState, bool) {
	rs, ok := s.roles[key]
	if !ok {
		return RoleState{}, false
	}
	return *rs.clone(), true
}

// TotalSelected returns the number of selected bullets across all roles
func TotalSelected(s State) int {
	total := 0
	for _, rs := range s.roles {
		total += len(rs.Selected)
	}
	return total
}

// ActivateRole adds a role to the session with up to MaxMasterBullets master
// bullets and the first DefaultInitialSelection of them selected, fewer when
// less of the MaxTotalBullets budget remains. The AI half of the pool starts
// empty and Loading is set. Activating a role that is already active removes
// it (toggle-off) and reports Removed; callers that only want to add should
// check IsActive first.
func ActivateRole(s State, role types.Role, masterBullets []string) (State, Outcome) {
	key := role.Key()
	if s.IsActive(key) {
		return deactivate(s, key), Removed
	}

	if len(masterBullets) > MaxMasterBullets {
		masterBullets = masterBullets[:MaxMasterBullets]
	}

	initial := min(DefaultInitialSelection, len(masterBullets), max(0, MaxTotalBullets-TotalSelected(s)))
	selected := make([]int, initial)
	for i := range selected {
		selected[i] = i
	}

	out := s.clone()
	out.order = append(out.order, key)
	out.roles[key] = &RoleState{
		Role:          role.Clone(),
		MasterBullets: slices.Clone(masterBullets),
		AIBullets:     []string{},
		Selected:      selected,
		Loading:       true,
	}
	return out, Applied
}

// DeactivateRole removes a role and its edit overlay. Unknown roles are a NoOp.
func DeactivateRole(s State, key types.RoleKey) (State, Outcome) {
	if !s.IsActive(key) {
		return s, NoOp
	}
	return deactivate(s, key), Removed
}

func deactivate(s State, key types.RoleKey) State {
	out := s.clone()
	delete(out.roles, key)
	out.order = slices.DeleteFunc(out.order, func(k types.RoleKey) bool { return k == key })
	for ek := range out.edits {
		if ek.Role == key {
			delete(out.edits, ek)
		}
	}
	return out
}

// ResolveAiBullets appends fetched suggestions to the role's pool and clears
// Loading. Selection indices stay valid because the pool only grows at the end.
// Results for roles that are no longer active are ignored.
func ResolveAiBullets(s State, key types.RoleKey, bullets []string) (State, Outcome) {
	if !s.IsActive(key) {
		return s, NoOp
	}
	out, rs := s.withRole(key)
	rs.AIBullets = append(rs.AIBullets, bullets...)
	rs.Loading = false
	rs.AIUnavailable = false
	return out, Applied
}

// FailAiBullets records that suggestions for the role could not be fetched.
func FailAiBullets(s State, key types.RoleKey) (State, Outcome) {
	if !s.IsActive(key) {
		return s, NoOp
	}
	out, rs := s.withRole(key)
	rs.Loading = false
	rs.AIUnavailable = len(rs.AIBullets) == 0
	return out, Applied
}

// ToggleBullet deselects a selected candidate, or appends an unselected one to the
// end of the role's selection. Selecting is refused with RejectedBudget when the
// session already holds MaxTotalBullets; deselecting is always allowed.
func ToggleBullet(s State, key types.RoleKey, index int) (State, Outcome, error) {
	rs, err := s.lookupIndex(key, index)
	if err != nil {
		return s, NoOp, err
	}

	if pos := slices.Index(rs.Selected, index); pos >= 0 {
		out, mutable := s.withRole(key)
		mutable.Selected = slices.Delete(mutable.Selected, pos, pos+1)
		return out, Applied, nil
	}

	if TotalSelected(s) >= MaxTotalBullets {
		return s, RejectedBudget, nil
	}

	out, mutable := s.withRole(key)
	mutable.Selected = append(mutable.Selected, index)
	return out, Applied, nil
}

// EditBullet sets replacement text for a candidate. Selection and pool membership
// are unaffected.
func EditBullet(s State, key types.RoleKey, index int, text string) (State, Outcome, error) {
	if _, err := s.lookupIndex(key, index); err != nil {
		return s, NoOp, err
	}
	out := s.clone()
	out.edits[EditKey{Role: key, Index: index}] = text
	return out, Applied, nil
}

// ClearEdit removes a candidate's replacement text, restoring the pool text.
func ClearEdit(s State, key types.RoleKey, index int) (State, Outcome, error) {
	if _, err := s.lookupIndex(key, index); err != nil {
		return s, NoOp, err
	}
	ek := EditKey{Role: key, Index: index}
	if _, ok := s.edits[ek]; !ok {
		return s, NoOp, nil
	}
	out := s.clone()
	delete(out.edits, ek)
	return out, Applied, nil
}

// CancelEdit is ClearEdit under the name the editing surface uses.
func CancelEdit(s State, key types.RoleKey, index int) (State, Outcome, error) {
	return ClearEdit(s, key, index)
}

// ReorderSelected moves the selected entry at position from to position to within
// the same role's selection (remove, then reinsert).
func ReorderSelected(s State, key types.RoleKey, from, to int) (State, Outcome, error) {
	rs, err := s.lookup(key)
	if err != nil {
		return s, NoOp, err
	}
	n := len(rs.Selected)
	if from < 0 || from >= n || to < 0 || to >= n {
		return s, NoOp, &Error{
			Message: fmt.Sprintf("reorder %d -> %d in role %s (selection size %d)", from, to, key, n),
			Cause:   ErrIndexOutOfRange,
		}
	}
	if from == to {
		return s, NoOp, nil
	}

	out, mutable := s.withRole(key)
	moved := mutable.Selected[from]
	mutable.Selected = slices.Delete(mutable.Selected, from, from+1)
	mutable.Selected = slices.Insert(mutable.Selected, to, moved)
	return out, Applied, nil
}

// ReorderAcross handles a drag whose source and target may be different roles.
// Same-role drags reorder; cross-role drags are refused with RejectedCrossRole.
func ReorderAcross(s State, fromKey types.RoleKey, from int, toKey types.RoleKey, to int) (State, Outcome, error) {
	if fromKey == toKey {
		return ReorderSelected(s, fromKey, from, to)
	}
	if _, err := s.lookup(fromKey); err != nil {
		return s, NoOp, err
	}
	if _, err := s.lookup(toKey); err != nil {
		return s, NoOp, err
	}
	return s, RejectedCrossRole, nil
}

// ResolveText returns the text every consumer must display for a candidate: the
// edit overlay if present, otherwise the pool text.
func ResolveText(s State, key types.RoleKey, index int) (string, error) {
	rs, err := s.lookupIndex(key, index)
	if err != nil {
		return "", err
	}
	if text, ok := s.edits[EditKey{Role: key, Index: index}]; ok {
		return text, nil
	}
	return rs.poolText(index), nil
}

// Candidates lists a role's pool with source tags, resolved text and selection flags
func Candidates(s State, key types.RoleKey) ([]Candidate, error) {
	rs, err := s.lookup(key)
	if err != nil {
		return nil, err
	}

	result := make([]Candidate, rs.PoolSize())
	for i := range result {
		original := rs.poolText(i)
		text, edited := s.edits[EditKey{Role: key, Index: i}]
		if !edited {
			text = original
		}
		result[i] = Candidate{
			Index:    i,
			Text:     text,
			Original: original,
			Source:   rs.source(i),
			Edited:   edited,
			Selected: slices.Contains(rs.Selected, i),
		}
	}
	return result, nil
}
