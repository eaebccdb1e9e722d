// Stability tracks how predictable both sides have been. Consistent play
// converges it toward 10, alternation collapses it toward 1, and a single
// defection after a long cooperative run costs roughly half the scale in
// one turn.
package game

import "github.com/kuitang/brink-sub001/internal/matrix"

// updateStability applies the per-turn stability rule: decay toward the
// neutral anchor, then adjust by how many sides switched action type
// relative to their own previous turn. Turn 1 has no previous actions and
// makes no update.
func (e *Engine) updateStability(a, b matrix.Choice) {
	s := &e.state
	if s.PrevChoiceA == nil || s.PrevChoiceB == nil {
		return
	}

	switches := 0
	if *s.PrevChoiceA != a {
		switches++
	}
	if *s.PrevChoiceB != b {
		switches++
	}

	v := s.Stability*e.p.StabilityDecay + e.p.StabilityAnchor
	switch switches {
	case 0:
		v += e.p.StabilityConsistent
	case 1:
		v += e.p.StabilityOneSwitch
	default:
		v += e.p.StabilityTwoSwitch
	}

	s.Stability = clampf(v, 1, 10)
}
