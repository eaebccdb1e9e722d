// Package params holds every tunable constant of the crisis engine in one
// immutable struct. A Params value is built once at process start and passed
// explicitly to the resolution functions; nothing in the engine reads
// package-level mutable state.
package params

// Params is the full tuning surface of the engine. The zero value is not
// usable; start from Defaults().
type Params struct {
	// Variance model.
	BaseSigmaFloor     float64 // sigma at zero risk
	BaseSigmaRiskSlope float64 // sigma gained per point of risk
	ChaosCeiling       float64 // chaos factor at zero cooperation
	ChaosCoopDivisor   float64 // cooperation points per unit of chaos reduction
	InstabilityDivisor float64 // stability shortfall points per unit of sigma inflation
	ActEarlyMult       float64 // act I multiplier (deltas and sigma)
	ActMidMult         float64 // act II multiplier
	ActLateMult        float64 // act III multiplier
	VPFloor            float64 // per-side clamp floor on resolved VP
	VPCeiling          float64 // per-side clamp ceiling on resolved VP

	// Cooperation surplus bookkeeping.
	CCSurplusBase   float64 // surplus created by one mutual-cooperation turn
	CCStreakBonus   float64 // extra surplus per turn of unbroken CC streak
	CCRiskReduction float64 // shared risk relief on CC, applied after template deltas
	CaptureRate     float64 // fraction of the pool a lone defector captures
	DDBurnRate      float64 // fraction of the pool destroyed on mutual defection
	DDRiskIncrease  float64 // shared risk added on DD, applied after template deltas

	// Stability update.
	StabilityDecay      float64 // multiplicative pull toward the anchor each turn
	StabilityAnchor     float64 // additive anchor term
	StabilityConsistent float64 // bonus when neither side switched type
	StabilityOneSwitch  float64 // penalty when one side switched
	StabilityTwoSwitch  float64 // penalty when both sides switched

	// Ending rules.
	CrisisTurnGate       int     // probabilistic termination only at or after this turn
	CrisisRiskGate       float64 // and only above this risk level
	CrisisProbPerRisk    float64 // termination probability per point of risk above the gate
	PositionLossLoserVP  float64
	PositionLossWinnerVP float64
	ResourceLossLoserVP  float64
	ResourceLossWinnerVP float64

	// Settlement protocol.
	SettlementMinTurn      int     // offers allowed strictly after this turn
	SettlementMinStability float64 // offers allowed strictly above this stability
	OfferFloor             int     // lowest offer the engine will accept
	OfferCeiling           int     // highest offer the engine will accept
	OfferSpread            int     // half-width of the valid zone around the fair value
	PositionSlope          float64 // VP per point of position advantage
	CoopBonusSlope         float64 // VP per point of cooperation above neutral

	// Game length.
	MaxTurnsMin int // inclusive lower bound on the hidden turn cap
	MaxTurnsMax int // inclusive upper bound
	ActIEnd     int // last turn of act I
	ActIIEnd    int // last turn of act II
}

// Defaults returns the baseline tuning used for balance validation.
func Defaults() Params {
	return Params{
		BaseSigmaFloor:     8.0,
		BaseSigmaRiskSlope: 1.2,
		ChaosCeiling:       1.2,
		ChaosCoopDivisor:   50.0,
		InstabilityDivisor: 20.0,
		ActEarlyMult:       0.7,
		ActMidMult:         1.0,
		ActLateMult:        1.3,
		VPFloor:            5.0,
		VPCeiling:          95.0,

		CCSurplusBase:   1.0,
		CCStreakBonus:   0.25,
		CCRiskReduction: 0.3,
		CaptureRate:     0.5,
		DDBurnRate:      0.5,
		DDRiskIncrease:  0.5,

		StabilityDecay:      0.8,
		StabilityAnchor:     1.0,
		StabilityConsistent: 1.5,
		StabilityOneSwitch:  -3.5,
		StabilityTwoSwitch:  -5.5,

		CrisisTurnGate:       10,
		CrisisRiskGate:       7.0,
		CrisisProbPerRisk:    0.08,
		PositionLossLoserVP:  10,
		PositionLossWinnerVP: 90,
		ResourceLossLoserVP:  15,
		ResourceLossWinnerVP: 85,

		SettlementMinTurn:      4,
		SettlementMinStability: 2.0,
		OfferFloor:             20,
		OfferCeiling:           80,
		OfferSpread:            10,
		PositionSlope:          5.0,
		CoopBonusSlope:         2.0,

		MaxTurnsMin: 12,
		MaxTurnsMax: 16,
		ActIEnd:     4,
		ActIIEnd:    8,
	}
}

// ActMultiplier returns the delta/variance scale for a turn number.
func (p Params) ActMultiplier(turn int) float64 {
	switch {
	case turn <= p.ActIEnd:
		return p.ActEarlyMult
	case turn <= p.ActIIEnd:
		return p.ActMidMult
	default:
		return p.ActLateMult
	}
}

// Act returns the coarse game phase (1, 2 or 3) for a turn number.
func (p Params) Act(turn int) int {
	switch {
	case turn <= p.ActIEnd:
		return 1
	case turn <= p.ActIIEnd:
		return 2
	default:
		return 3
	}
}
