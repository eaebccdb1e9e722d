// Delta templates — bounded state changes per matrix cell, validated at
// definition time so resolution can never produce an out-of-range delta.
package matrix

import "fmt"

// Authoring limits for a single pre-scaling turn delta. Templates violating
// these are configuration errors, rejected before any game runs.
const (
	MaxPositionSwing = 1.5  // |position change| per player per turn
	MaxResourceCost  = 1.0  // resource cost per player per turn
	MinRiskDelta     = -1.0 // shared risk change per turn
	MaxRiskDelta     = 2.0
	ZeroSumTolerance = 0.01 // |mid(posA)+mid(posB)| allowed per cell
)

// Bounds is an inclusive [Min,Max] range for one delta component.
type Bounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Mid returns the midpoint, the nominal delta used unless a scenario pins
// an explicit point inside the bounds.
func (b Bounds) Mid() float64 {
	return (b.Min + b.Max) / 2
}

// Contains reports whether v lies inside the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Cell holds the bounded deltas for one outcome of a matrix.
type Cell struct {
	PosA     Bounds `yaml:"pos_a" json:"pos_a"`
	PosB     Bounds `yaml:"pos_b" json:"pos_b"`
	ResCostA Bounds `yaml:"res_cost_a" json:"res_cost_a"`
	ResCostB Bounds `yaml:"res_cost_b" json:"res_cost_b"`
	Risk     Bounds `yaml:"risk" json:"risk"`
}

// Template is the validated set of four cells for one matrix kind.
// Construct only through NewTemplate or BuiltinTemplate.
type Template struct {
	Kind Kind
	CC   Cell
	CD   Cell
	DC   Cell
	DD   Cell
}

// Cell returns the cell for an outcome.
func (t Template) Cell(o Outcome) Cell {
	switch o {
	case CC:
		return t.CC
	case CD:
		return t.CD
	case DC:
		return t.DC
	default:
		return t.DD
	}
}

// NewTemplate validates and assembles a template. Position midpoints in
// every cell must cancel to within ZeroSumTolerance, and every bound must
// sit inside the authoring limits.
func NewTemplate(kind Kind, cc, cd, dc, dd Cell) (Template, error) {
	t := Template{Kind: kind, CC: cc, CD: cd, DC: dc, DD: dd}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Validate checks the zero-sum invariant and authoring limits for all four
// cells. A failure is a configuration error, not a runtime condition.
func (t Template) Validate() error {
	if !Known(t.Kind) {
		return fmt.Errorf("template: unknown matrix kind %q", t.Kind)
	}
	for _, o := range Outcomes() {
		c := t.Cell(o)
		if err := validateCell(c); err != nil {
			return fmt.Errorf("template %s cell %s: %w", t.Kind, o, err)
		}
		sum := c.PosA.Mid() + c.PosB.Mid()
		if sum > ZeroSumTolerance || sum < -ZeroSumTolerance {
			return fmt.Errorf("template %s cell %s: position midpoints sum to %+.3f, want 0 (±%.2f)",
				t.Kind, o, sum, ZeroSumTolerance)
		}
	}
	return nil
}

func validateCell(c Cell) error {
	for _, b := range []struct {
		name   string
		b      Bounds
		lo, hi float64
	}{
		{"pos_a", c.PosA, -MaxPositionSwing, MaxPositionSwing},
		{"pos_b", c.PosB, -MaxPositionSwing, MaxPositionSwing},
		{"res_cost_a", c.ResCostA, 0, MaxResourceCost},
		{"res_cost_b", c.ResCostB, 0, MaxResourceCost},
		{"risk", c.Risk, MinRiskDelta, MaxRiskDelta},
	} {
		if b.b.Min > b.b.Max {
			return fmt.Errorf("%s: min %.2f > max %.2f", b.name, b.b.Min, b.b.Max)
		}
		if b.b.Min < b.lo || b.b.Max > b.hi {
			return fmt.Errorf("%s: bounds [%.2f,%.2f] outside authoring limit [%.2f,%.2f]",
				b.name, b.b.Min, b.b.Max, b.lo, b.hi)
		}
	}
	return nil
}
