package scenario

import "github.com/kuitang/brink-sub001/internal/matrix"

func fptr(v float64) *float64 { return &v }

// Default returns the baseline crisis scenario used for balance runs and
// as a starting point for authored scenarios: an escalation arc from
// coordination games into brinkmanship.
func Default() *Scenario {
	s := &Scenario{
		Name:        "standoff",
		Description: "Two powers at the edge of open conflict over a contested frontier.",
		Start: Start{
			PositionA:  fptr(5),
			PositionB:  fptr(5),
			ResourcesA: fptr(8),
			ResourcesB: fptr(8),
			Risk:       fptr(2),
			Coop:       fptr(5),
			Stability:  fptr(5),
		},
		Schedule: []TurnSpec{
			{Matrix: matrix.StagHunt},
			{Matrix: matrix.PrisonersDilemma},
			{Matrix: matrix.Reconnaissance},
			{Matrix: matrix.SecurityDilemma},
			{Matrix: matrix.PrisonersDilemma},
			{Matrix: matrix.Inspection},
			{Matrix: matrix.WarOfAttrition},
			{Matrix: matrix.Chicken},
			{Matrix: matrix.SecurityDilemma},
			{Matrix: matrix.VolunteersDilemma},
			{Matrix: matrix.Chicken},
			{Matrix: matrix.PrisonersDilemma},
		},
		Actions: []ActionSpec{
			{Name: "hold_position", Type: TypeCooperative, Category: CategoryStandard,
				Narrative: "Maintain current posture and signal restraint."},
			{Name: "open_channel", Type: TypeCooperative, Category: CategoryStandard, Cost: 0.2,
				Narrative: "Open a back channel for quiet coordination."},
			{Name: "mobilize", Type: TypeCompetitive, Category: CategoryStandard, Cost: 0.5,
				Narrative: "Move forces forward and raise the stakes."},
			{Name: "ultimatum", Type: TypeCompetitive, Category: CategoryStandard, Cost: 0.3, MinRisk: 3,
				Narrative: "Issue a public ultimatum. Only credible once the crisis is hot."},
			{Name: "recon_flight", Type: TypeCompetitive, Category: CategoryReconnaissance, Cost: 0.2,
				Narrative: "Probe the other side's dispositions."},
			{Name: "share_findings", Type: TypeCooperative, Category: CategoryReconnaissance, Cost: 0.1,
				Narrative: "Exchange intelligence to reduce miscalculation."},
			{Name: "admit_inspectors", Type: TypeCooperative, Category: CategoryInspection, Cost: 0.1,
				Narrative: "Allow verification of declared capabilities."},
			{Name: "conceal_program", Type: TypeCompetitive, Category: CategoryInspection, Cost: 0.2,
				Narrative: "Obstruct inspections and keep capabilities ambiguous."},
			{Name: "unilateral_standdown", Type: TypeCooperative, Category: CategoryCostlySignal, Cost: 1.0,
				Narrative: "Visibly stand down a deployed capability. Expensive, hard to fake."},
			{Name: "offer_terms", Type: TypeCooperative, Category: CategorySettlement,
				Narrative: "Put a negotiated division on the table."},
		},
	}
	if err := s.Validate(); err != nil {
		panic("builtin scenario invalid: " + err.Error())
	}
	return s
}
