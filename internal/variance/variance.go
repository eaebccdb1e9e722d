// Package variance computes the shared noise model: how much chaos the
// current situation injects into final scoring. All functions are pure;
// randomness enters only through an injected stream.
package variance

import (
	"math/rand"

	"github.com/kuitang/brink-sub001/internal/params"
)

// BaseSigma grows linearly with crisis risk: [8,20] over risk [0,10].
func BaseSigma(p params.Params, risk float64) float64 {
	return p.BaseSigmaFloor + risk*p.BaseSigmaRiskSlope
}

// ChaosFactor shrinks as trust builds: [1.0,1.2] over cooperation [10,0].
func ChaosFactor(p params.Params, cooperation float64) float64 {
	return p.ChaosCeiling - cooperation/p.ChaosCoopDivisor
}

// InstabilityFactor inflates noise as behavior becomes erratic:
// [1.0,1.45] over stability [10,1].
func InstabilityFactor(p params.Params, stability float64) float64 {
	return 1 + (10-stability)/p.InstabilityDivisor
}

// SharedSigma is the single standard deviation applied to both sides at
// resolution. It is a property of the situation, not of either player.
func SharedSigma(p params.Params, risk, cooperation, stability float64, turn int) float64 {
	return BaseSigma(p, risk) *
		ChaosFactor(p, cooperation) *
		InstabilityFactor(p, stability) *
		p.ActMultiplier(turn)
}

// Resolution is the outcome of converting relative position into victory
// points at game end.
type Resolution struct {
	EVA   float64 // expected VP for side A before noise
	EVB   float64
	Noise float64 // the single Gaussian draw applied to both sides
	VPA   float64 // clamped VP plus captured surplus
	VPB   float64
}

// FinalResolution splits 100 VP by relative position, perturbed by one
// Gaussian draw at the shared sigma. The same draw moves both sides in
// opposite directions; each side is then clamped to [VPFloor,VPCeiling]
// independently, so the post-clamp halves need not sum to 100, and no
// renormalization is applied. Captured surplus is added after clamping,
// so totals above 100 are possible.
func FinalResolution(p params.Params, posA, posB, capturedA, capturedB, sigma float64, rng *rand.Rand) Resolution {
	evA := 50.0
	if posA+posB > 0 {
		evA = posA / (posA + posB) * 100
	}
	evB := 100 - evA

	noise := rng.NormFloat64() * sigma

	vpA := clamp(evA+noise, p.VPFloor, p.VPCeiling)
	vpB := clamp(evB-noise, p.VPFloor, p.VPCeiling)

	return Resolution{
		EVA:   evA,
		EVB:   evB,
		Noise: noise,
		VPA:   vpA + capturedA,
		VPB:   vpB + capturedB,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
