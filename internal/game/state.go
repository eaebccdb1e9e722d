// Package game implements the crisis-negotiation engine: the shared game
// state, the turn driver, stability and cooperation updates, the ordered
// ending rules, and the settlement protocol.
//
// The engine is single-threaded and owns exactly one State per game. A
// turn is a pure transformation of (state, action_a, action_b); the only
// randomness comes from the stream injected at game creation.
package game

import (
	"github.com/kuitang/brink-sub001/internal/matrix"
	"github.com/kuitang/brink-sub001/internal/params"
)

// Side identifies one of the two players.
type Side uint8

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	if s == SideA {
		return "a"
	}
	return "b"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// State is the single mutable record driving one game. All bounded fields
// are clamped to their documented ranges after every update.
type State struct {
	PositionA float64 `json:"position_a"` // relative standing, [0,10]; 0 eliminates
	PositionB float64 `json:"position_b"`

	ResourcesA float64 `json:"resources_a"` // spendable capacity, [0,10]; 0 eliminates
	ResourcesB float64 `json:"resources_b"`

	RiskLevel        float64 `json:"risk_level"`        // shared crisis intensity, [0,10]; 10 destroys both
	CooperationScore float64 `json:"cooperation_score"` // shared trust, [0,10]
	Stability        float64 `json:"stability"`         // predictability, [1,10]

	Turn     int `json:"turn"` // completed turns
	MaxTurns int `json:"-"`    // hidden turn cap, drawn at game creation

	CooperationSurplus float64 `json:"cooperation_surplus"` // pool built by CC turns
	SurplusCapturedA   float64 `json:"surplus_captured_a"`  // pool value banked by each side
	SurplusCapturedB   float64 `json:"surplus_captured_b"`
	CooperationStreak  int     `json:"cooperation_streak"` // consecutive CC turns

	// Previous-turn choices, needed for stability switch detection.
	// Nil before the first turn resolves.
	PrevChoiceA *matrix.Choice `json:"-"`
	PrevChoiceB *matrix.Choice `json:"-"`
}

// Act returns the current coarse phase (1, 2 or 3) for the next turn.
func (s State) Act(p params.Params) int {
	return p.Act(s.Turn + 1)
}

// Position returns the named side's position.
func (s State) Position(side Side) float64 {
	if side == SideA {
		return s.PositionA
	}
	return s.PositionB
}

// Resources returns the named side's resources.
func (s State) Resources(side Side) float64 {
	if side == SideA {
		return s.ResourcesA
	}
	return s.ResourcesB
}

// SurplusCaptured returns the named side's banked surplus.
func (s State) SurplusCaptured(side Side) float64 {
	if side == SideA {
		return s.SurplusCapturedA
	}
	return s.SurplusCapturedB
}

// clamp forces every bounded field back into its documented range. Called
// after every state mutation; a large excursion before clamping indicates
// a delta-application bug, not a legal game event.
func (s *State) clamp() {
	s.PositionA = clampf(s.PositionA, 0, 10)
	s.PositionB = clampf(s.PositionB, 0, 10)
	s.ResourcesA = clampf(s.ResourcesA, 0, 10)
	s.ResourcesB = clampf(s.ResourcesB, 0, 10)
	s.RiskLevel = clampf(s.RiskLevel, 0, 10)
	s.CooperationScore = clampf(s.CooperationScore, 0, 10)
	s.Stability = clampf(s.Stability, 1, 10)
	if s.CooperationSurplus < 0 {
		s.CooperationSurplus = 0
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
