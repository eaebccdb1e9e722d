// Package scenario defines the per-game configuration: which matrix is in
// play each turn, the action roster, and starting-state overrides.
//
// All validation happens at load time. A scenario that passes Validate can
// never produce an out-of-range delta or an unknown matrix at runtime.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kuitang/brink-sub001/internal/matrix"
)

// Action type and category names accepted in scenario files.
const (
	TypeCooperative = "cooperative"
	TypeCompetitive = "competitive"

	CategoryStandard       = "standard"
	CategorySettlement     = "settlement"
	CategoryReconnaissance = "reconnaissance"
	CategoryInspection     = "inspection"
	CategoryCostlySignal   = "costly_signal"
)

// Start holds the initial state overrides. Nil fields fall back to the
// engine defaults; an explicit zero is honored, so a crisis may begin at
// risk 0 or cooperation 0.
type Start struct {
	PositionA  *float64 `yaml:"position_a" json:"position_a,omitempty"`
	PositionB  *float64 `yaml:"position_b" json:"position_b,omitempty"`
	ResourcesA *float64 `yaml:"resources_a" json:"resources_a,omitempty"`
	ResourcesB *float64 `yaml:"resources_b" json:"resources_b,omitempty"`
	Risk       *float64 `yaml:"risk" json:"risk,omitempty"`
	Coop       *float64 `yaml:"cooperation" json:"cooperation,omitempty"`
	Stability  *float64 `yaml:"stability" json:"stability,omitempty"`
}

// TurnSpec configures one scheduled turn: the matrix kind and optional
// pinned delta points per outcome cell.
type TurnSpec struct {
	Matrix matrix.Kind                     `yaml:"matrix" json:"matrix"`
	Points map[matrix.Outcome]matrix.Point `yaml:"points,omitempty" json:"points,omitempty"`
}

// ActionSpec declares one action available to players. Actions are data:
// they select a matrix column, they never compute outcomes.
type ActionSpec struct {
	Name      string  `yaml:"name" json:"name"`
	Type      string  `yaml:"type" json:"type"`
	Category  string  `yaml:"category" json:"category"`
	Cost      float64 `yaml:"cost" json:"cost"`
	MinRisk   float64 `yaml:"min_risk" json:"min_risk"`
	MaxRisk   float64 `yaml:"max_risk" json:"max_risk"`
	Narrative string  `yaml:"narrative" json:"narrative"`
}

// Scenario is a full validated game configuration.
type Scenario struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
	Start       Start        `yaml:"start" json:"start"`
	Schedule    []TurnSpec   `yaml:"schedule" json:"schedule"`
	Actions     []ActionSpec `yaml:"actions" json:"actions"`
}

// Load reads and validates a YAML scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates YAML scenario bytes.
func Parse(raw []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("scenario yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the whole scenario against the matrix templates and
// roster rules. Any failure is a configuration error.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario: name is required")
	}
	if len(s.Schedule) == 0 {
		return fmt.Errorf("scenario %s: schedule is empty", s.Name)
	}
	for i, ts := range s.Schedule {
		if !matrix.Known(ts.Matrix) {
			return fmt.Errorf("scenario %s: turn %d: unknown matrix kind %q", s.Name, i+1, ts.Matrix)
		}
		tmpl, err := matrix.BuiltinTemplate(ts.Matrix)
		if err != nil {
			return fmt.Errorf("scenario %s: turn %d: %w", s.Name, i+1, err)
		}
		for out, pt := range ts.Points {
			switch out {
			case matrix.CC, matrix.CD, matrix.DC, matrix.DD:
			default:
				return fmt.Errorf("scenario %s: turn %d: unknown outcome %q", s.Name, i+1, out)
			}
			if err := matrix.CheckPoint(tmpl.Cell(out), pt); err != nil {
				return fmt.Errorf("scenario %s: turn %d cell %s: %w", s.Name, i+1, out, err)
			}
		}
	}

	if len(s.Actions) == 0 {
		return fmt.Errorf("scenario %s: no actions defined", s.Name)
	}
	names := make(map[string]bool, len(s.Actions))
	for i, a := range s.Actions {
		if a.Name == "" {
			return fmt.Errorf("scenario %s: action %d: name is required", s.Name, i)
		}
		if names[a.Name] {
			return fmt.Errorf("scenario %s: duplicate action %q", s.Name, a.Name)
		}
		names[a.Name] = true
		if a.Type != TypeCooperative && a.Type != TypeCompetitive {
			return fmt.Errorf("scenario %s: action %q: type must be %q or %q",
				s.Name, a.Name, TypeCooperative, TypeCompetitive)
		}
		switch a.Category {
		case CategoryStandard, CategorySettlement, CategoryReconnaissance,
			CategoryInspection, CategoryCostlySignal:
		default:
			return fmt.Errorf("scenario %s: action %q: unknown category %q", s.Name, a.Name, a.Category)
		}
		if a.Cost < 0 || a.Cost > 10 {
			return fmt.Errorf("scenario %s: action %q: cost %.2f outside [0,10]", s.Name, a.Name, a.Cost)
		}
		if a.MinRisk < 0 || a.MaxRisk > 10 || (a.MaxRisk != 0 && a.MinRisk > a.MaxRisk) {
			return fmt.Errorf("scenario %s: action %q: risk window [%.1f,%.1f] invalid",
				s.Name, a.Name, a.MinRisk, a.MaxRisk)
		}
	}

	if err := checkStart(s.Start); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return nil
}

func checkStart(st Start) error {
	checks := []struct {
		name   string
		v      *float64
		lo, hi float64
	}{
		{"position_a", st.PositionA, 0, 10},
		{"position_b", st.PositionB, 0, 10},
		{"resources_a", st.ResourcesA, 0, 10},
		{"resources_b", st.ResourcesB, 0, 10},
		{"risk", st.Risk, 0, 10},
		{"cooperation", st.Coop, 0, 10},
		{"stability", st.Stability, 0, 10},
	}
	for _, c := range checks {
		if c.v == nil {
			continue
		}
		if *c.v < c.lo || *c.v > c.hi {
			return fmt.Errorf("start %s=%.2f outside [%.0f,%.0f]", c.name, *c.v, c.lo, c.hi)
		}
	}
	return nil
}

// TurnSpecFor returns the schedule entry for a 1-based turn number. The
// last entry repeats when the game outruns the schedule.
func (s *Scenario) TurnSpecFor(turn int) TurnSpec {
	if turn < 1 {
		turn = 1
	}
	idx := turn - 1
	if idx >= len(s.Schedule) {
		idx = len(s.Schedule) - 1
	}
	return s.Schedule[idx]
}
