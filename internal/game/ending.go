// Ending rules — the ordered predicate chain run after every resolved
// turn. Order is part of the contract: mutual destruction outranks
// position loss, which outranks resource loss, which outranks the
// probabilistic and turn-cap endings.
package game

import (
	"fmt"
	"math/rand"

	"github.com/kuitang/brink-sub001/internal/params"
	"github.com/kuitang/brink-sub001/internal/variance"
)

// EndingKind names how a game ended.
type EndingKind string

const (
	EndingMutualDestruction EndingKind = "mutual_destruction"
	EndingPositionLossA     EndingKind = "position_loss_a"
	EndingPositionLossB     EndingKind = "position_loss_b"
	EndingResourceLossA     EndingKind = "resource_loss_a"
	EndingResourceLossB     EndingKind = "resource_loss_b"
	EndingCrisisTermination EndingKind = "crisis_termination"
	EndingMaxTurns          EndingKind = "max_turns"
	EndingSettlement        EndingKind = "settlement"
)

// Ending is the immutable terminal result of a game. VP totals can exceed
// 100 once captured surplus is added.
type Ending struct {
	Kind        EndingKind `json:"kind"`
	VPA         float64    `json:"vp_a"`
	VPB         float64    `json:"vp_b"`
	Description string     `json:"description"`
}

// evaluateEnding runs the predicate chain over a post-turn state. Returns
// nil when the game continues. The stream is consumed only by the crisis
// termination draw and by final resolution, keeping (state, seed) pairs
// reproducible.
func evaluateEnding(s State, p params.Params, rng *rand.Rand) *Ending {
	if s.RiskLevel >= 10 {
		return &Ending{
			Kind:        EndingMutualDestruction,
			Description: "The crisis passed the point of no return. Both sides lose everything, including all accumulated surplus.",
		}
	}

	if s.PositionA <= 0 {
		return positionLoss(s, p, SideA)
	}
	if s.PositionB <= 0 {
		return positionLoss(s, p, SideB)
	}

	if s.ResourcesA <= 0 {
		return resourceLoss(s, p, SideA)
	}
	if s.ResourcesB <= 0 {
		return resourceLoss(s, p, SideB)
	}

	if s.Turn >= p.CrisisTurnGate && s.RiskLevel > p.CrisisRiskGate {
		prob := (s.RiskLevel - p.CrisisRiskGate) * p.CrisisProbPerRisk
		if rng.Float64() < prob {
			res := resolveFinal(s, p, rng)
			return &Ending{
				Kind: EndingCrisisTermination,
				VPA:  res.VPA,
				VPB:  res.VPB,
				Description: fmt.Sprintf(
					"Outside events forced the crisis to a head at risk %.1f; the standing balance decided the outcome.",
					s.RiskLevel),
			}
		}
	}

	if s.Turn >= s.MaxTurns {
		res := resolveFinal(s, p, rng)
		return &Ending{
			Kind:        EndingMaxTurns,
			VPA:         res.VPA,
			VPB:         res.VPB,
			Description: "The window for maneuvering closed; positions were settled as they stood.",
		}
	}

	return nil
}

// positionLoss builds the ending for a side eliminated on position. The
// winner keeps their captured surplus; the loser's is forfeit.
func positionLoss(s State, p params.Params, loser Side) *Ending {
	e := &Ending{
		Description: fmt.Sprintf("Side %s's position collapsed entirely.", loser),
	}
	winner := loser.Other()
	if loser == SideA {
		e.Kind = EndingPositionLossA
		e.VPA = p.PositionLossLoserVP
		e.VPB = p.PositionLossWinnerVP + s.SurplusCaptured(winner)
	} else {
		e.Kind = EndingPositionLossB
		e.VPB = p.PositionLossLoserVP
		e.VPA = p.PositionLossWinnerVP + s.SurplusCaptured(winner)
	}
	return e
}

func resourceLoss(s State, p params.Params, loser Side) *Ending {
	e := &Ending{
		Description: fmt.Sprintf("Side %s ran out of resources to sustain the crisis.", loser),
	}
	winner := loser.Other()
	if loser == SideA {
		e.Kind = EndingResourceLossA
		e.VPA = p.ResourceLossLoserVP
		e.VPB = p.ResourceLossWinnerVP + s.SurplusCaptured(winner)
	} else {
		e.Kind = EndingResourceLossB
		e.VPB = p.ResourceLossLoserVP
		e.VPA = p.ResourceLossWinnerVP + s.SurplusCaptured(winner)
	}
	return e
}

// resolveFinal converts the standing position into a VP split using the
// shared-sigma noise model.
func resolveFinal(s State, p params.Params, rng *rand.Rand) variance.Resolution {
	sigma := variance.SharedSigma(p, s.RiskLevel, s.CooperationScore, s.Stability, s.Turn)
	return variance.FinalResolution(p,
		s.PositionA, s.PositionB,
		s.SurplusCapturedA, s.SurplusCapturedB,
		sigma, rng)
}
