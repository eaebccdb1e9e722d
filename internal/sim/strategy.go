// Package sim runs batches of self-play games for balance validation.
// Each game gets its own engine, its own derived random stream, and runs
// start to finish on one goroutine, so batches are reproducible for a
// fixed base seed regardless of worker count.
package sim

import (
	"math/rand"

	"github.com/kuitang/brink-sub001/internal/game"
	"github.com/kuitang/brink-sub001/internal/matrix"
)

// Strategy picks a matrix reading each turn for one side. Strategies see
// the public state and history, never the hidden turn cap.
type Strategy interface {
	Name() string
	Choose(side game.Side, st game.State, history []game.TurnRecord, rng *rand.Rand) matrix.Choice
}

// AlwaysCooperate plays the cooperative reading every turn.
type AlwaysCooperate struct{}

func (AlwaysCooperate) Name() string { return "always_cooperate" }

func (AlwaysCooperate) Choose(game.Side, game.State, []game.TurnRecord, *rand.Rand) matrix.Choice {
	return matrix.Cooperate
}

// AlwaysDefect plays the competitive reading every turn.
type AlwaysDefect struct{}

func (AlwaysDefect) Name() string { return "always_defect" }

func (AlwaysDefect) Choose(game.Side, game.State, []game.TurnRecord, *rand.Rand) matrix.Choice {
	return matrix.Defect
}

// TitForTat opens cooperatively, then mirrors the opponent's last choice.
type TitForTat struct{}

func (TitForTat) Name() string { return "tit_for_tat" }

func (TitForTat) Choose(side game.Side, _ game.State, history []game.TurnRecord, _ *rand.Rand) matrix.Choice {
	if len(history) == 0 {
		return matrix.Cooperate
	}
	last := history[len(history)-1].Outcome
	if side == game.SideA {
		return last.ChoiceB()
	}
	return last.ChoiceA()
}

// fairShare is a responder's notion of an even deal from its own seat,
// mirroring the engine's suggested-offer slope without the coop bonus.
func fairShare(p game.Proposal, s game.State) float64 {
	me := p.Proposer.Other()
	return 50 + (s.Position(me)-s.Position(p.Proposer))*5
}

// Evaluate makes AlwaysCooperate settlement-minded: an offer within the
// engine's spread of an even deal beats gambling on resolution noise.
func (AlwaysCooperate) Evaluate(p game.Proposal, s game.State, _ bool) game.Response {
	if float64(100-p.VP) >= fairShare(p, s)-10 {
		return game.Accept
	}
	return game.Reject
}

// Evaluate lets TitForTat haggle: near-fair offers are taken, lowball
// final offers refused, anything else answered with a counter.
func (TitForTat) Evaluate(p game.Proposal, s game.State, final bool) game.Response {
	switch {
	case float64(100-p.VP) >= fairShare(p, s)-10:
		return game.Accept
	case final:
		return game.Reject
	default:
		return game.Counter
	}
}

// GrimTrigger cooperates until the opponent defects once, then defects
// forever.
type GrimTrigger struct{}

func (GrimTrigger) Name() string { return "grim_trigger" }

func (GrimTrigger) Choose(side game.Side, _ game.State, history []game.TurnRecord, _ *rand.Rand) matrix.Choice {
	for _, rec := range history {
		var opp matrix.Choice
		if side == game.SideA {
			opp = rec.Outcome.ChoiceB()
		} else {
			opp = rec.Outcome.ChoiceA()
		}
		if opp == matrix.Defect {
			return matrix.Defect
		}
	}
	return matrix.Cooperate
}

// Random defects with probability P each turn.
type Random struct {
	P float64 // defection probability
}

func (Random) Name() string { return "random" }

func (r Random) Choose(_ game.Side, _ game.State, _ []game.TurnRecord, rng *rand.Rand) matrix.Choice {
	if rng.Float64() < r.P {
		return matrix.Defect
	}
	return matrix.Cooperate
}

// ByName resolves a strategy from its CLI name.
func ByName(name string) (Strategy, bool) {
	switch name {
	case "always_cooperate":
		return AlwaysCooperate{}, true
	case "always_defect":
		return AlwaysDefect{}, true
	case "tit_for_tat":
		return TitForTat{}, true
	case "grim_trigger":
		return GrimTrigger{}, true
	case "random":
		return Random{P: 0.5}, true
	default:
		return nil, false
	}
}
