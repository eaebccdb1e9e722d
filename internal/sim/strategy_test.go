package sim

import (
	"testing"

	"github.com/kuitang/brink-sub001/internal/game"
)

func TestEvaluateOffers(t *testing.T) {
	even := game.State{PositionA: 5, PositionB: 5}
	// Side B answers from well behind, so its notion of fair shrinks.
	behind := game.State{PositionA: 7, PositionB: 3}

	tests := []struct {
		name  string
		r     game.Responder
		prop  game.Proposal
		st    game.State
		final bool
		want  game.Response
	}{
		{"cooperator takes a fair split", AlwaysCooperate{}, game.Proposal{Proposer: game.SideA, VP: 60}, even, false, game.Accept},
		{"cooperator refuses a lowball", AlwaysCooperate{}, game.Proposal{Proposer: game.SideA, VP: 75}, even, false, game.Reject},
		{"tit_for_tat takes a fair split", TitForTat{}, game.Proposal{Proposer: game.SideA, VP: 58}, even, false, game.Accept},
		{"tit_for_tat counters a lowball", TitForTat{}, game.Proposal{Proposer: game.SideA, VP: 75}, even, false, game.Counter},
		{"tit_for_tat refuses a lowball final", TitForTat{}, game.Proposal{Proposer: game.SideA, VP: 75, Final: true}, even, true, game.Reject},
		{"trailing responder settles for less", TitForTat{}, game.Proposal{Proposer: game.SideA, VP: 75}, behind, false, game.Accept},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Evaluate(tt.prop, tt.st, tt.final); got != tt.want {
				t.Errorf("Evaluate = %q, want %q", got, tt.want)
			}
		})
	}
}
