// Actions are immutable data: they select a matrix column, they never
// compute an outcome. The scenario roster is resolved into typed Actions
// once at game creation, so the per-turn path never branches on strings.
package game

import (
	"fmt"

	"github.com/kuitang/brink-sub001/internal/matrix"
	"github.com/kuitang/brink-sub001/internal/scenario"
)

// Category groups actions by how the engine routes them.
type Category uint8

const (
	CategoryStandard Category = iota
	CategorySettlement
	CategoryReconnaissance
	CategoryInspection
	CategoryCostlySignal
)

func (c Category) String() string {
	switch c {
	case CategorySettlement:
		return "settlement"
	case CategoryReconnaissance:
		return "reconnaissance"
	case CategoryInspection:
		return "inspection"
	case CategoryCostlySignal:
		return "costly_signal"
	default:
		return "standard"
	}
}

// Action is one selectable move. The Choice field is its matrix reading;
// MinRisk/MaxRisk bound the risk levels at which it is available
// (MaxRisk 0 means no ceiling).
type Action struct {
	Name      string
	Choice    matrix.Choice
	Category  Category
	Cost      float64
	MinRisk   float64
	MaxRisk   float64
	Narrative string
}

// actionFromSpec converts a validated scenario roster entry. The spec has
// already passed scenario.Validate, so unknown strings are defects.
func actionFromSpec(sp scenario.ActionSpec) (Action, error) {
	a := Action{
		Name:      sp.Name,
		Cost:      sp.Cost,
		MinRisk:   sp.MinRisk,
		MaxRisk:   sp.MaxRisk,
		Narrative: sp.Narrative,
	}

	switch sp.Type {
	case scenario.TypeCooperative:
		a.Choice = matrix.Cooperate
	case scenario.TypeCompetitive:
		a.Choice = matrix.Defect
	default:
		return Action{}, fmt.Errorf("action %q: unknown type %q", sp.Name, sp.Type)
	}

	switch sp.Category {
	case scenario.CategoryStandard:
		a.Category = CategoryStandard
	case scenario.CategorySettlement:
		a.Category = CategorySettlement
	case scenario.CategoryReconnaissance:
		a.Category = CategoryReconnaissance
	case scenario.CategoryInspection:
		a.Category = CategoryInspection
	case scenario.CategoryCostlySignal:
		a.Category = CategoryCostlySignal
	default:
		return Action{}, fmt.Errorf("action %q: unknown category %q", sp.Name, sp.Category)
	}

	return a, nil
}
