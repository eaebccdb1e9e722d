// Command brinksim plays batches of self-play games and prints a balance
// report. Runs are fully reproducible: the same seed, scenario and
// strategies always produce the same report.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kuitang/brink-sub001/internal/params"
	"github.com/kuitang/brink-sub001/internal/persistence"
	"github.com/kuitang/brink-sub001/internal/scenario"
	"github.com/kuitang/brink-sub001/internal/sim"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "YAML scenario file (default: built-in standoff)")
		games        = flag.Int("games", 1000, "number of games to play")
		seed         = flag.Int64("seed", 1, "base seed for the batch")
		workers      = flag.Int("workers", runtime.NumCPU(), "concurrent games")
		stratAName   = flag.String("a", "tit_for_tat", "strategy for side A")
		stratBName   = flag.String("b", "tit_for_tat", "strategy for side B")
		dbPath       = flag.String("db", "", "optionally store the report in this SQLite database")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	scn := scenario.Default()
	if *scenarioPath != "" {
		loaded, err := scenario.Load(*scenarioPath)
		if err != nil {
			slog.Error("load scenario failed", "path", *scenarioPath, "error", err)
			os.Exit(1)
		}
		scn = loaded
	}

	stratA, ok := sim.ByName(*stratAName)
	if !ok {
		slog.Error("unknown strategy", "name", *stratAName)
		os.Exit(1)
	}
	stratB, ok := sim.ByName(*stratBName)
	if !ok {
		slog.Error("unknown strategy", "name", *stratBName)
		os.Exit(1)
	}

	start := time.Now()
	report, err := sim.Run(sim.Config{
		Scenario:  scn,
		Params:    params.Defaults(),
		Games:     *games,
		Seed:      *seed,
		Workers:   *workers,
		StrategyA: stratA,
		StrategyB: stratB,
	})
	if err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	fmt.Printf("Scenario %q: %s games, %s vs %s (seed %d) in %s\n",
		report.Scenario,
		humanize.Comma(int64(report.Games)),
		report.StrategyA, report.StrategyB,
		report.Seed,
		elapsed.Round(time.Millisecond),
	)
	fmt.Printf("Mean turns %.1f, mean VP %.1f / %.1f, mean surplus built %.2f, mean final risk %.1f\n",
		report.MeanTurns, report.MeanVPA, report.MeanVPB, report.MeanSurplus, report.MeanRisk)
	fmt.Printf("Wins A/B/draw: %s / %s / %s\n",
		humanize.Comma(int64(report.WinsA)),
		humanize.Comma(int64(report.WinsB)),
		humanize.Comma(int64(report.Draws)),
	)
	fmt.Println("Endings:")
	for _, kind := range report.EndingKinds() {
		fmt.Printf("  %-22s %7s  (%.1f%%)\n",
			kind,
			humanize.Comma(int64(report.Endings[kind])),
			report.Rate(kind)*100,
		)
	}

	if *dbPath != "" {
		db, err := persistence.Open(*dbPath)
		if err != nil {
			slog.Error("open database failed", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.SaveReport(report); err != nil {
			slog.Error("save report failed", "error", err)
			os.Exit(1)
		}
	}
}
