// Settlement protocol — the player-initiated alternate path to a
// negotiated ending. The engine validates numeric bounds and computes the
// fairness zone; persuasion and argument text belong to the callers.
package game

import (
	"fmt"
	"math"
)

// Response is a collaborator's answer to a pending offer.
type Response string

const (
	Accept  Response = "accept"
	Counter Response = "counter"
	Reject  Response = "reject"
)

// Proposal is one settlement offer on the table. VP is the proposer's
// share of 100; the responder receives the remainder. Captured surplus is
// added per side on acceptance.
type Proposal struct {
	Proposer Side `json:"proposer"`
	VP       int  `json:"vp"`
	Turn     int  `json:"turn"`  // turn count when offered
	Final    bool `json:"final"` // proposer will not entertain a counter
}

// Zone is the fairness band for a proposer: the suggested fair value and
// the offer range the engine will accept around it.
type Zone struct {
	Suggested int `json:"suggested"`
	Min       int `json:"min"`
	Max       int `json:"max"`
}

// Responder evaluates settlement offers for one side. Implemented by
// opponent collaborators; the engine drives the loop, the responder only
// decides.
type Responder interface {
	Evaluate(p Proposal, s State, final bool) Response
}

// SettlementEligible reports whether offers are currently allowed:
// only after the opening act, and only while behavior is predictable
// enough for terms to be credible.
func (e *Engine) SettlementEligible() error {
	if e.ending != nil {
		return ErrGameOver
	}
	if e.state.Turn <= e.p.SettlementMinTurn {
		return fmt.Errorf("%w: available after turn %d", ErrSettlementIneligible, e.p.SettlementMinTurn)
	}
	if e.state.Stability <= e.p.SettlementMinStability {
		return fmt.Errorf("%w: stability %.1f too low (need > %.1f)",
			ErrSettlementIneligible, e.state.Stability, e.p.SettlementMinStability)
	}
	return nil
}

// SuggestOffer computes the fairness zone for a proposer. A contradictory
// zone (possible at extreme position gaps) is surfaced as
// ErrNoSettlementZone rather than silently clamped away.
func (e *Engine) SuggestOffer(side Side) (Zone, error) {
	if err := e.SettlementEligible(); err != nil {
		return Zone{}, err
	}

	positionDiff := e.state.Position(side) - e.state.Position(side.Other())
	coopBonus := (e.state.CooperationScore - 5) * e.p.CoopBonusSlope
	suggested := int(math.Round(50 + positionDiff*e.p.PositionSlope + coopBonus))

	z := Zone{
		Suggested: suggested,
		Min:       max(e.p.OfferFloor, suggested-e.p.OfferSpread),
		Max:       min(e.p.OfferCeiling, suggested+e.p.OfferSpread),
	}
	if z.Min > z.Max {
		return Zone{}, fmt.Errorf("%w: suggested %d leaves range [%d,%d]",
			ErrNoSettlementZone, suggested, z.Min, z.Max)
	}
	return z, nil
}

// Propose places an offer on the table. Out-of-range submissions are
// clamped into the engine's global offer window before use.
func (e *Engine) Propose(side Side, vp int, final bool) (Proposal, error) {
	if err := e.SettlementEligible(); err != nil {
		return Proposal{}, err
	}
	if e.pending != nil {
		return Proposal{}, ErrOfferPending
	}

	if vp < e.p.OfferFloor {
		vp = e.p.OfferFloor
	}
	if vp > e.p.OfferCeiling {
		vp = e.p.OfferCeiling
	}

	prop := Proposal{Proposer: side, VP: vp, Turn: e.state.Turn, Final: final}
	e.pending = &prop
	return prop, nil
}

// Pending returns the open offer, or nil.
func (e *Engine) Pending() *Proposal {
	if e.pending == nil {
		return nil
	}
	p := *e.pending
	return &p
}

// Respond answers the pending offer on behalf of a side. Accepting ends
// the game immediately with the agreed split plus each side's captured
// surplus, bypassing the ending predicate chain. Countering replaces the
// offer with one from the responder; rejecting clears the table.
func (e *Engine) Respond(side Side, resp Response, counterVP int) (*Ending, *Proposal, error) {
	if e.ending != nil {
		return nil, nil, ErrGameOver
	}
	if e.pending == nil {
		return nil, nil, ErrNoPendingOffer
	}
	if e.pending.Proposer == side {
		return nil, nil, ErrNotYourOffer
	}

	switch resp {
	case Accept:
		ending := e.settle(*e.pending)
		e.pending = nil
		e.ending = ending
		return ending, nil, nil

	case Counter:
		if e.pending.Final {
			e.pending = nil
			return nil, nil, fmt.Errorf("%w: final offers cannot be countered", ErrNoPendingOffer)
		}
		e.pending = nil
		prop, err := e.Propose(side, counterVP, false)
		if err != nil {
			return nil, nil, err
		}
		return nil, &prop, nil

	case Reject:
		e.pending = nil
		return nil, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown settlement response %q", resp)
	}
}

// Negotiate drives one full settlement exchange: the proposer places vp
// on the table and the responder's collaborator answers it. A counter
// comes back at the responder's fair value; the proposer takes it when
// the resulting share still falls inside its own zone. The table is
// always clear when Negotiate returns, and the ending is non-nil exactly
// when the exchange settled the game.
func (e *Engine) Negotiate(proposer Side, vp int, final bool, r Responder) (*Ending, error) {
	prop, err := e.Propose(proposer, vp, final)
	if err != nil {
		return nil, err
	}
	responder := proposer.Other()

	switch r.Evaluate(prop, e.state, prop.Final) {
	case Accept:
		ending, _, err := e.Respond(responder, Accept, 0)
		return ending, err

	case Counter:
		zone, zerr := e.SuggestOffer(responder)
		if zerr != nil {
			_, _, err := e.Respond(responder, Reject, 0)
			return nil, err
		}
		_, counter, err := e.Respond(responder, Counter, zone.Suggested)
		if counter == nil || err != nil {
			// Countering a final offer lapses it and clears the table.
			return nil, nil
		}
		own, zerr := e.SuggestOffer(proposer)
		if zerr == nil && 100-counter.VP >= own.Min {
			ending, _, err := e.Respond(proposer, Accept, 0)
			return ending, err
		}
		_, _, err = e.Respond(proposer, Reject, 0)
		return nil, err

	default:
		_, _, err := e.Respond(responder, Reject, 0)
		return nil, err
	}
}

// settle builds the negotiated ending for an accepted proposal.
func (e *Engine) settle(prop Proposal) *Ending {
	s := e.state
	ending := &Ending{
		Kind: EndingSettlement,
		Description: fmt.Sprintf("Terms agreed: side %s takes %d of the table, side %s the remainder.",
			prop.Proposer, prop.VP, prop.Proposer.Other()),
	}
	if prop.Proposer == SideA {
		ending.VPA = float64(prop.VP) + s.SurplusCapturedA
		ending.VPB = float64(100-prop.VP) + s.SurplusCapturedB
	} else {
		ending.VPB = float64(prop.VP) + s.SurplusCapturedB
		ending.VPA = float64(100-prop.VP) + s.SurplusCapturedA
	}
	return ending
}
