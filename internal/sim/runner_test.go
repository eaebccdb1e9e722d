package sim

import (
	"reflect"
	"testing"

	"github.com/kuitang/brink-sub001/internal/game"
	"github.com/kuitang/brink-sub001/internal/params"
	"github.com/kuitang/brink-sub001/internal/scenario"
)

func batchConfig(games, workers int, a, b Strategy) Config {
	return Config{
		Scenario:  scenario.Default(),
		Params:    params.Defaults(),
		Games:     games,
		Seed:      1234,
		Workers:   workers,
		StrategyA: a,
		StrategyB: b,
	}
}

func TestRunValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nil scenario", func(c *Config) { c.Scenario = nil }},
		{"zero games", func(c *Config) { c.Games = 0 }},
		{"missing strategy a", func(c *Config) { c.StrategyA = nil }},
		{"missing strategy b", func(c *Config) { c.StrategyB = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := batchConfig(10, 1, AlwaysCooperate{}, AlwaysCooperate{})
			tt.mutate(&cfg)
			if _, err := Run(cfg); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestRunReproducibleForSameSeed(t *testing.T) {
	cfg := batchConfig(50, 2, TitForTat{}, Random{P: 0.3})
	a, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed, different reports:\n%+v\n%+v", a, b)
	}
}

func TestRunWorkerCountDoesNotAffectReport(t *testing.T) {
	serial, err := Run(batchConfig(40, 1, GrimTrigger{}, Random{P: 0.5}))
	if err != nil {
		t.Fatalf("Run(1 worker): %v", err)
	}
	parallel, err := Run(batchConfig(40, 4, GrimTrigger{}, Random{P: 0.5}))
	if err != nil {
		t.Fatalf("Run(4 workers): %v", err)
	}
	if !reflect.DeepEqual(serial, parallel) {
		t.Errorf("worker count changed the report:\n%+v\n%+v", serial, parallel)
	}
}

func TestRunAllCooperateBatchSettles(t *testing.T) {
	rep, err := Run(batchConfig(30, 2, AlwaysCooperate{}, AlwaysCooperate{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Games != 30 {
		t.Errorf("games = %d, want 30", rep.Games)
	}
	if n := rep.Endings[game.EndingMutualDestruction]; n != 0 {
		t.Errorf("%d mutual destructions in an all-cooperate batch", n)
	}
	// Offers open after turn 4; at full cooperation side A's suggested 60
	// leaves B a share inside its fairness spread, so every game settles
	// on the first eligible turn.
	if rep.Rate(game.EndingSettlement) != 1 {
		t.Errorf("all-cooperate games should all settle: %+v", rep.Endings)
	}
	p := params.Defaults()
	if rep.MeanTurns != float64(p.SettlementMinTurn+1) {
		t.Errorf("mean turns %.2f, want settlement on turn %d", rep.MeanTurns, p.SettlementMinTurn+1)
	}
	if rep.MeanVPA != 60 || rep.MeanVPB != 40 {
		t.Errorf("mean VP = %.1f/%.1f, want 60/40", rep.MeanVPA, rep.MeanVPB)
	}
	if rep.MeanSurplus <= 0 {
		t.Errorf("mean surplus %.2f, want positive pool growth", rep.MeanSurplus)
	}
	if rep.MeanRisk > 2 {
		t.Errorf("mean final risk %.2f, cooperation should bleed risk off", rep.MeanRisk)
	}
}

func TestRunHardlinerBatchNeverSettles(t *testing.T) {
	rep, err := Run(batchConfig(20, 2, AlwaysDefect{}, AlwaysDefect{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := rep.Endings[game.EndingSettlement]; n != 0 {
		t.Errorf("%d settlements between strategies that never negotiate", n)
	}
}

func TestAggregateCountsWins(t *testing.T) {
	cfg := batchConfig(3, 1, AlwaysCooperate{}, AlwaysDefect{})
	results := []GameResult{
		{Ending: game.Ending{Kind: game.EndingMaxTurns, VPA: 60, VPB: 40}, Turns: 12},
		{Ending: game.Ending{Kind: game.EndingPositionLossA, VPA: 10, VPB: 90}, Turns: 8},
		{Ending: game.Ending{Kind: game.EndingSettlement, VPA: 50, VPB: 50}, Turns: 9},
	}

	rep := Aggregate(cfg, results)
	if rep.WinsA != 1 || rep.WinsB != 1 || rep.Draws != 1 {
		t.Errorf("wins/draws = %d/%d/%d, want 1/1/1", rep.WinsA, rep.WinsB, rep.Draws)
	}
	if rep.MeanVPA != 40 || rep.MeanVPB != 60 {
		t.Errorf("mean VP = %.1f/%.1f, want 40/60", rep.MeanVPA, rep.MeanVPB)
	}
	if got := rep.EndingKinds(); len(got) != 3 {
		t.Errorf("ending kinds = %v", got)
	}
	if rep.Rate(game.EndingSettlement) != 1.0/3 {
		t.Errorf("settlement rate = %.3f", rep.Rate(game.EndingSettlement))
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"always_cooperate", "always_defect", "tit_for_tat", "grim_trigger", "random"} {
		s, ok := ByName(name)
		if !ok || s.Name() == "" {
			t.Errorf("ByName(%q) = %v, %v", name, s, ok)
		}
		if name != "random" && s.Name() != name {
			t.Errorf("ByName(%q).Name() = %q", name, s.Name())
		}
	}
	if _, ok := ByName("clairvoyant"); ok {
		t.Error("unknown strategy resolved")
	}
}
