// The turn driver: validates submissions, resolves the scheduled matrix,
// applies deltas, updates stability and trust, records history, and runs
// the ending rules.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/kuitang/brink-sub001/internal/matrix"
	"github.com/kuitang/brink-sub001/internal/params"
	"github.com/kuitang/brink-sub001/internal/scenario"
)

// Engine drives one game from creation to ending. Not safe for concurrent
// use; batch simulation runs one Engine per goroutine.
type Engine struct {
	p   params.Params
	scn *scenario.Scenario
	rng *rand.Rand

	state   State
	actions map[string]Action
	roster  []Action // scenario order, for deterministic selection
	history []TurnRecord
	ending  *Ending
	pending *Proposal
}

// New creates a game from a validated scenario. The stream seeds every
// stochastic decision in this game: the hidden turn cap, crisis
// termination draws, and final resolution noise.
func New(scn *scenario.Scenario, p params.Params, rng *rand.Rand) (*Engine, error) {
	actions := make(map[string]Action, len(scn.Actions))
	roster := make([]Action, 0, len(scn.Actions))
	for _, sp := range scn.Actions {
		a, err := actionFromSpec(sp)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scn.Name, err)
		}
		actions[a.Name] = a
		roster = append(roster, a)
	}

	st := startState(scn.Start)
	st.MaxTurns = p.MaxTurnsMin + rng.Intn(p.MaxTurnsMax-p.MaxTurnsMin+1)

	return &Engine{
		p:       p,
		scn:     scn,
		rng:     rng,
		state:   st,
		actions: actions,
		roster:  roster,
	}, nil
}

// startState applies scenario overrides over the engine defaults.
func startState(s scenario.Start) State {
	st := State{
		PositionA:  5,
		PositionB:  5,
		ResourcesA: 8,
		ResourcesB: 8,
		RiskLevel:  2,

		CooperationScore: 5,
		Stability:        5,
	}
	// Nil means unset, so a scenario may pin any value to an explicit zero.
	if s.PositionA != nil {
		st.PositionA = *s.PositionA
	}
	if s.PositionB != nil {
		st.PositionB = *s.PositionB
	}
	if s.ResourcesA != nil {
		st.ResourcesA = *s.ResourcesA
	}
	if s.ResourcesB != nil {
		st.ResourcesB = *s.ResourcesB
	}
	if s.Risk != nil {
		st.RiskLevel = *s.Risk
	}
	if s.Coop != nil {
		st.CooperationScore = *s.Coop
	}
	if s.Stability != nil {
		st.Stability = *s.Stability
	}
	st.clamp()
	return st
}

// State returns a copy of the current game state.
func (e *Engine) State() State { return e.state }

// Ending returns the terminal result, or nil while the game is live.
func (e *Engine) Ending() *Ending { return e.ending }

// History returns the recorded turns in order.
func (e *Engine) History() []TurnRecord { return e.history }

// Scenario returns the scenario this game was created from.
func (e *Engine) Scenario() *scenario.Scenario { return e.scn }

// Action resolves a roster action by name.
func (e *Engine) Action(name string) (Action, error) {
	a, ok := e.actions[name]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return a, nil
}

// Playable returns the first roster action a side can legally submit this
// turn with the given matrix reading. Scans in scenario order, so the
// selection is deterministic. Used by automated opponents.
func (e *Engine) Playable(side Side, c matrix.Choice) (Action, error) {
	if e.ending != nil {
		return Action{}, ErrGameOver
	}
	spec := e.scn.TurnSpecFor(e.state.Turn + 1)
	var lastErr error
	for _, a := range e.roster {
		if a.Choice != c {
			continue
		}
		if err := e.validate(side, a, spec); err != nil {
			lastErr = err
			continue
		}
		return a, nil
	}
	if lastErr != nil {
		return Action{}, fmt.Errorf("no playable %s action: %w", c, lastErr)
	}
	return Action{}, fmt.Errorf("no playable %s action for side %s", c, side)
}

// SubmitActions plays one full turn with the given simultaneous choices.
// On any validation error the state is left untouched. The returned ending
// is non-nil exactly when this turn finished the game; after that every
// further submission fails with ErrGameOver.
func (e *Engine) SubmitActions(actionA, actionB Action) (TurnRecord, *Ending, error) {
	if e.ending != nil {
		return TurnRecord{}, nil, ErrGameOver
	}

	turn := e.state.Turn + 1
	spec := e.scn.TurnSpecFor(turn)

	if err := e.validate(SideA, actionA, spec); err != nil {
		return TurnRecord{}, nil, err
	}
	if err := e.validate(SideB, actionB, spec); err != nil {
		return TurnRecord{}, nil, err
	}

	tmpl, err := matrix.BuiltinTemplate(spec.Matrix)
	if err != nil {
		// Unreachable after scenario validation; treat as a defect.
		return TurnRecord{}, nil, fmt.Errorf("turn %d: %w", turn, err)
	}

	out := matrix.OutcomeOf(actionA.Choice, actionB.Choice)
	var pt *matrix.Point
	if p, ok := spec.Points[out]; ok {
		pt = &p
	}

	before := e.state
	res := matrix.Resolve(tmpl, actionA.Choice, actionB.Choice, pt, turn,
		e.state.CooperationSurplus, e.state.CooperationStreak, e.p)

	e.apply(res, actionA, actionB)
	e.updateStability(actionA.Choice, actionB.Choice)
	e.rememberChoices(actionA.Choice, actionB.Choice)
	e.state.Turn = turn
	e.state.clamp()

	record := TurnRecord{
		Turn:    turn,
		Matrix:  spec.Matrix,
		ActionA: actionA.Name,
		ActionB: actionB.Name,
		Outcome: res.Outcome,
		Result:  res,
		Before:  before,
		After:   e.state,
	}
	e.history = append(e.history, record)

	ending := evaluateEnding(e.state, e.p, e.rng)
	if ending != nil {
		e.ending = ending
		slog.Debug("game ended",
			"turn", turn,
			"kind", ending.Kind,
			"vp_a", fmt.Sprintf("%.1f", ending.VPA),
			"vp_b", fmt.Sprintf("%.1f", ending.VPB),
		)
	}

	return record, ending, nil
}

// validate rejects a submission without touching state.
func (e *Engine) validate(side Side, a Action, spec scenario.TurnSpec) error {
	if _, ok := e.actions[a.Name]; !ok {
		return fmt.Errorf("side %s: %w: %q", side, ErrUnknownAction, a.Name)
	}
	if a.Category == CategorySettlement {
		return fmt.Errorf("side %s: %w", side, ErrSettlementAction)
	}
	if a.Category == CategoryReconnaissance && spec.Matrix != matrix.Reconnaissance {
		return fmt.Errorf("side %s: %w: %q needs a reconnaissance turn", side, ErrWrongArena, a.Name)
	}
	if a.Category == CategoryInspection && spec.Matrix != matrix.Inspection {
		return fmt.Errorf("side %s: %w: %q needs an inspection turn", side, ErrWrongArena, a.Name)
	}
	if a.Cost > e.state.Resources(side) {
		return fmt.Errorf("side %s: %w: %q costs %.1f, have %.1f",
			side, ErrInsufficientResources, a.Name, a.Cost, e.state.Resources(side))
	}
	if e.state.RiskLevel < a.MinRisk {
		return fmt.Errorf("side %s: %w: %q needs risk >= %.1f",
			side, ErrActionUnavailable, a.Name, a.MinRisk)
	}
	if a.MaxRisk > 0 && e.state.RiskLevel > a.MaxRisk {
		return fmt.Errorf("side %s: %w: %q needs risk <= %.1f",
			side, ErrActionUnavailable, a.Name, a.MaxRisk)
	}
	return nil
}

// apply folds a resolution and the action costs into the state.
func (e *Engine) apply(res matrix.Result, actionA, actionB Action) {
	s := &e.state
	s.PositionA += res.DPosA
	s.PositionB += res.DPosB
	s.ResourcesA += res.DResA - actionA.Cost
	s.ResourcesB += res.DResB - actionB.Cost
	s.RiskLevel += res.DRisk
	s.CooperationScore += res.CoopDelta
	s.CooperationSurplus = res.SurplusAfter
	s.CooperationStreak = res.StreakAfter
	s.SurplusCapturedA += res.CapturedA
	s.SurplusCapturedB += res.CapturedB
}

func (e *Engine) rememberChoices(a, b matrix.Choice) {
	ca, cb := a, b
	e.state.PrevChoiceA = &ca
	e.state.PrevChoiceB = &cb
}
