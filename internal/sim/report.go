// Balance report aggregation.
package sim

import (
	"sort"

	"github.com/kuitang/brink-sub001/internal/game"
)

// Report summarizes a finished batch.
type Report struct {
	Scenario  string `json:"scenario"`
	StrategyA string `json:"strategy_a"`
	StrategyB string `json:"strategy_b"`
	Games     int    `json:"games"`
	Seed      int64  `json:"seed"`

	Endings map[game.EndingKind]int `json:"endings"`

	MeanTurns   float64 `json:"mean_turns"`
	MeanVPA     float64 `json:"mean_vp_a"`
	MeanVPB     float64 `json:"mean_vp_b"`
	MeanSurplus float64 `json:"mean_surplus_built"` // pool high-water mark
	MeanRisk    float64 `json:"mean_final_risk"`
	WinsA       int     `json:"wins_a"` // games where A out-scored B
	WinsB       int     `json:"wins_b"`
	Draws       int     `json:"draws"`
}

// Aggregate folds per-game results into a report.
func Aggregate(cfg Config, results []GameResult) Report {
	r := Report{
		Scenario:  cfg.Scenario.Name,
		StrategyA: cfg.StrategyA.Name(),
		StrategyB: cfg.StrategyB.Name(),
		Games:     len(results),
		Seed:      cfg.Seed,
		Endings:   make(map[game.EndingKind]int),
	}
	if len(results) == 0 {
		return r
	}

	var turns, vpA, vpB, surplus, risk float64
	for _, res := range results {
		r.Endings[res.Ending.Kind]++
		turns += float64(res.Turns)
		vpA += res.Ending.VPA
		vpB += res.Ending.VPB
		surplus += res.SurplusBuilt
		risk += res.FinalState.RiskLevel

		switch {
		case res.Ending.VPA > res.Ending.VPB:
			r.WinsA++
		case res.Ending.VPB > res.Ending.VPA:
			r.WinsB++
		default:
			r.Draws++
		}
	}

	n := float64(len(results))
	r.MeanTurns = turns / n
	r.MeanVPA = vpA / n
	r.MeanVPB = vpB / n
	r.MeanSurplus = surplus / n
	r.MeanRisk = risk / n
	return r
}

// EndingKinds returns the kinds present in the report, sorted for stable
// output.
func (r Report) EndingKinds() []game.EndingKind {
	kinds := make([]game.EndingKind, 0, len(r.Endings))
	for k := range r.Endings {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Rate returns the fraction of games that ended with the given kind.
func (r Report) Rate(kind game.EndingKind) float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Endings[kind]) / float64(r.Games)
}
