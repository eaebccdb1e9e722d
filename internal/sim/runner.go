// Batch runner — plays N independent games across a worker pool.
package sim

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kuitang/brink-sub001/internal/entropy"
	"github.com/kuitang/brink-sub001/internal/game"
	"github.com/kuitang/brink-sub001/internal/matrix"
	"github.com/kuitang/brink-sub001/internal/params"
	"github.com/kuitang/brink-sub001/internal/scenario"
)

// safetyTurnCap aborts a game loop that fails to terminate. The ending
// rules guarantee termination at max_turns, so hitting this is a defect.
const safetyTurnCap = 64

// Config describes one batch.
type Config struct {
	Scenario  *scenario.Scenario
	Params    params.Params
	Games     int
	Seed      int64 // base seed; per-game streams derive from it
	Workers   int   // goroutines; <=0 means 1
	StrategyA Strategy
	StrategyB Strategy
}

// GameResult is the outcome of one simulated game.
type GameResult struct {
	Index        int
	Ending       game.Ending
	Turns        int
	FinalState   game.State
	SurplusBuilt float64 // pool high-water mark over the game
}

// Run plays the configured batch and aggregates a report. Results are
// collected by game index, so the report is identical for any worker
// count.
func Run(cfg Config) (Report, error) {
	if cfg.Scenario == nil {
		return Report{}, fmt.Errorf("sim: scenario is required")
	}
	if cfg.Games <= 0 {
		return Report{}, fmt.Errorf("sim: games must be positive, got %d", cfg.Games)
	}
	if cfg.StrategyA == nil || cfg.StrategyB == nil {
		return Report{}, fmt.Errorf("sim: both strategies are required")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]GameResult, cfg.Games)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	// Striped work split: worker w plays games w, w+workers, ... Nothing
	// is shared between games, so the stripe choice only affects timing.
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for idx := w; idx < cfg.Games; idx += workers {
				res, err := playOne(cfg, idx)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("game %d: %w", idx, err)
					}
					mu.Unlock()
					return
				}
				results[idx] = res
			}
		}(w)
	}
	wg.Wait()
	if firstErr != nil {
		return Report{}, firstErr
	}

	slog.Info("batch complete",
		"games", cfg.Games,
		"scenario", cfg.Scenario.Name,
		"strategy_a", cfg.StrategyA.Name(),
		"strategy_b", cfg.StrategyB.Name(),
	)
	return Aggregate(cfg, results), nil
}

// playOne runs a single game to its ending on the caller's goroutine.
func playOne(cfg Config, idx int) (GameResult, error) {
	rng := entropy.GameStream(cfg.Seed, idx)
	eng, err := game.New(cfg.Scenario, cfg.Params, rng)
	if err != nil {
		return GameResult{}, err
	}

	highWater := 0.0
	for turn := 0; eng.Ending() == nil; turn++ {
		if turn >= safetyTurnCap {
			return GameResult{}, fmt.Errorf("no ending after %d turns", safetyTurnCap)
		}

		st := eng.State()
		choiceA := cfg.StrategyA.Choose(game.SideA, st, eng.History(), rng)
		choiceB := cfg.StrategyB.Choose(game.SideB, st, eng.History(), rng)

		actionA, err := playable(eng, game.SideA, choiceA)
		if err != nil {
			return GameResult{}, err
		}
		actionB, err := playable(eng, game.SideB, choiceB)
		if err != nil {
			return GameResult{}, err
		}

		if _, _, err := eng.SubmitActions(actionA, actionB); err != nil {
			return GameResult{}, err
		}
		if s := eng.State().CooperationSurplus; s > highWater {
			highWater = s
		}
		if eng.Ending() == nil {
			if err := trySettle(eng, cfg); err != nil {
				return GameResult{}, err
			}
		}
	}

	final := eng.State()
	return GameResult{
		Index:        idx,
		Ending:       *eng.Ending(),
		Turns:        final.Turn,
		FinalState:   final,
		SurplusBuilt: highWater,
	}, nil
}

// trySettle lets negotiation-minded pairings close a game early. Once
// offers are allowed, side A puts its fair value on the table and side
// B's strategy answers it. Both strategies must implement game.Responder,
// so hardliner matchups never settle.
func trySettle(eng *game.Engine, cfg Config) error {
	if _, ok := cfg.StrategyA.(game.Responder); !ok {
		return nil
	}
	rb, ok := cfg.StrategyB.(game.Responder)
	if !ok {
		return nil
	}
	zone, err := eng.SuggestOffer(game.SideA)
	if err != nil {
		return nil // not yet eligible, or no workable zone this turn
	}
	_, err = eng.Negotiate(game.SideA, zone.Suggested, false, rb)
	return err
}

// playable resolves the preferred reading, falling back to the opposite
// one when nothing affordable carries it. A strategy that wants to defect
// but cannot pay for any competitive action holds instead of forfeiting.
func playable(eng *game.Engine, side game.Side, c matrix.Choice) (game.Action, error) {
	a, err := eng.Playable(side, c)
	if err == nil {
		return a, nil
	}
	return eng.Playable(side, otherChoice(c))
}

func otherChoice(c matrix.Choice) matrix.Choice {
	if c == matrix.Cooperate {
		return matrix.Defect
	}
	return matrix.Cooperate
}
