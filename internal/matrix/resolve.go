// Outcome resolution — turning a matrix cell into concrete turn deltas and
// cooperation-surplus effects.
package matrix

import (
	"fmt"

	"github.com/kuitang/brink-sub001/internal/params"
)

// Point pins the exact delta inside a cell's bounds, used when a scenario
// overrides the midpoint. Validated against the cell at load time.
type Point struct {
	PosA     float64 `yaml:"pos_a" json:"pos_a"`
	PosB     float64 `yaml:"pos_b" json:"pos_b"`
	ResCostA float64 `yaml:"res_cost_a" json:"res_cost_a"`
	ResCostB float64 `yaml:"res_cost_b" json:"res_cost_b"`
	Risk     float64 `yaml:"risk" json:"risk"`
}

// CheckPoint verifies that a pinned point lies inside a cell's bounds.
func CheckPoint(c Cell, pt Point) error {
	checks := []struct {
		name string
		b    Bounds
		v    float64
	}{
		{"pos_a", c.PosA, pt.PosA},
		{"pos_b", c.PosB, pt.PosB},
		{"res_cost_a", c.ResCostA, pt.ResCostA},
		{"res_cost_b", c.ResCostB, pt.ResCostB},
		{"risk", c.Risk, pt.Risk},
	}
	for _, ch := range checks {
		if !ch.b.Contains(ch.v) {
			return fmt.Errorf("point %s=%.3f outside bounds [%.2f,%.2f]",
				ch.name, ch.v, ch.b.Min, ch.b.Max)
		}
	}
	return nil
}

// Result is everything one resolved turn changes, before clamping. The
// engine applies it to the state; this package never mutates anything.
type Result struct {
	Outcome Outcome `json:"outcome"`

	// Act-scaled state deltas. Resource deltas are already negated costs.
	DPosA float64 `json:"d_pos_a"`
	DPosB float64 `json:"d_pos_b"`
	DResA float64 `json:"d_res_a"`
	DResB float64 `json:"d_res_b"`
	DRisk float64 `json:"d_risk"`

	// Surplus bookkeeping after this turn.
	SurplusAfter float64 `json:"surplus_after"` // cooperation surplus pool
	StreakAfter  int     `json:"streak_after"`  // consecutive CC count
	CapturedA    float64 `json:"captured_a"`    // pool value captured by A this turn
	CapturedB    float64 `json:"captured_b"`

	// Shared trust movement: +1 on CC, -1 on DD, 0 otherwise. One-sided
	// defection shows up through capture and the stability drop instead.
	CoopDelta float64 `json:"coop_delta"`
}

// Resolve computes the deltas for one simultaneous pair of choices.
//
// The nominal delta is the cell midpoint, or the pinned point when the
// scenario supplies one (pt non-nil, already validated at load). Deltas are
// scaled by the act multiplier; surplus effects and the CC/DD risk
// adjustments are applied unscaled on top.
func Resolve(t Template, a, b Choice, pt *Point, turn int, pool float64, streak int, p params.Params) Result {
	out := OutcomeOf(a, b)
	cell := t.Cell(out)
	mult := p.ActMultiplier(turn)

	var d Point
	if pt != nil {
		d = *pt
	} else {
		d = Point{
			PosA:     cell.PosA.Mid(),
			PosB:     cell.PosB.Mid(),
			ResCostA: cell.ResCostA.Mid(),
			ResCostB: cell.ResCostB.Mid(),
			Risk:     cell.Risk.Mid(),
		}
	}

	r := Result{
		Outcome:      out,
		DPosA:        d.PosA * mult,
		DPosB:        d.PosB * mult,
		DResA:        -d.ResCostA * mult,
		DResB:        -d.ResCostB * mult,
		DRisk:        d.Risk * mult,
		SurplusAfter: pool,
		StreakAfter:  streak,
	}

	switch out {
	case CC:
		r.SurplusAfter = pool + p.CCSurplusBase + p.CCStreakBonus*float64(streak)
		r.StreakAfter = streak + 1
		r.DRisk -= p.CCRiskReduction
		r.CoopDelta = 1
	case CD:
		// B defected alone and captures from the pool.
		r.CapturedB = pool * p.CaptureRate
		r.SurplusAfter = pool - r.CapturedB
		r.StreakAfter = 0
	case DC:
		r.CapturedA = pool * p.CaptureRate
		r.SurplusAfter = pool - r.CapturedA
		r.StreakAfter = 0
	case DD:
		r.SurplusAfter = pool - pool*p.DDBurnRate
		r.StreakAfter = 0
		r.DRisk += p.DDRiskIncrease
		r.CoopDelta = -1
	}

	return r
}
