package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ChizhovVadim/eloarena/internal/config"
	"github.com/ChizhovVadim/eloarena/internal/estimate"
	"github.com/ChizhovVadim/eloarena/internal/harness"
)

var (
	versionName = "dev"
	buildDate   = "(null)"
	gitRevision = "(null)"
)

func main() {
	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	var err = newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "eloarena:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "eloarena",
		Usage:   "estimate the rating of a UCI chess engine",
		Version: versionName,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error"},
			&cli.StringFlag{Name: "game-log", Usage: "append finished games to this file"},
			&cli.StringFlag{Name: "game-log-format", Usage: "text or pgn"},
			&cli.IntFlag{Name: "max-plies", Usage: "adjudicate a draw after this many plies"},
			&cli.DurationFlag{Name: "move-timeout", Usage: "time to wait for bestmove"},
		},
		Commands: []*cli.Command{
			{
				Name:  "estimate",
				Usage: "find the rating of an engine against a reference engine",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "engine", Usage: "candidate engine `PATH`"},
					&cli.StringFlag{Name: "reference", Usage: "reference engine `PATH`"},
					&cli.StringFlag{Name: "ratings-file", Usage: "rating to strength table"},
					&cli.IntFlag{Name: "min-rating"},
					&cli.IntFlag{Name: "max-rating"},
					&cli.IntFlag{Name: "step"},
					&cli.IntFlag{Name: "max-games", Usage: "stop after this many games"},
					&cli.IntFlag{Name: "candidate-movetime", Usage: "candidate time per move, ms"},
					&cli.IntFlag{Name: "candidate-depth", Usage: "candidate depth per move"},
				},
				Action: estimateAction,
			},
			{
				Name:  "match",
				Usage: "play a fixed number of games between two engines",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "engine", Usage: "engine A `PATH`"},
					&cli.StringFlag{Name: "opponent", Usage: "engine B `PATH`"},
					&cli.IntFlag{Name: "games"},
					&cli.IntFlag{Name: "candidate-movetime", Usage: "time per move, ms"},
					&cli.IntFlag{Name: "candidate-depth", Usage: "depth per move"},
				},
				Action: matchAction,
			},
		},
	}
}

var (
	stringFlags   = []string{"log-level", "game-log", "game-log-format", "engine", "reference", "opponent", "ratings-file"}
	intFlags      = []string{"max-plies", "min-rating", "max-rating", "step", "max-games", "games", "candidate-movetime", "candidate-depth"}
	durationFlags = []string{"move-timeout"}
)

// overrides collects the flags given on the command line as config keys.
func overrides(c *cli.Context) map[string]any {
	var result = make(map[string]any)
	var key = func(name string) string {
		return strings.ReplaceAll(name, "-", "_")
	}
	for _, name := range stringFlags {
		if c.IsSet(name) {
			result[key(name)] = c.String(name)
		}
	}
	for _, name := range intFlags {
		if c.IsSet(name) {
			result[key(name)] = c.Int(name)
		}
	}
	for _, name := range durationFlags {
		if c.IsSet(name) {
			result[key(name)] = c.Duration(name)
		}
	}
	return result
}

func setup(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	var cfg, err = config.Load(c.String("config"), overrides(c))
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.Level()).
		With().Timestamp().Logger()
	logger.Info().
		Str("version", versionName).
		Str("buildDate", buildDate).
		Str("gitRevision", gitRevision).
		Str("runtime", runtime.Version()).
		Msg("eloarena")
	return cfg, logger, nil
}

func estimateAction(c *cli.Context) error {
	var cfg, logger, err = setup(c)
	if err != nil {
		return err
	}
	h, err := harness.New(c.Context, cfg, harness.EstimateEngines(cfg), logger)
	if err != nil {
		return err
	}
	defer closeHarness(h, logger)

	est, err := h.Estimate(c.Context)
	if err != nil && !errors.Is(err, estimate.ErrGameBudget) {
		return err
	}
	fmt.Printf("Games: %v, failed: %v, interval [%v, %v]\n",
		est.Games, est.Failed, est.Interval.Min, est.Interval.Max)
	if err != nil {
		fmt.Printf("No verdict after %v games, current rating %v\n", est.Games, est.Interval.Current)
		return nil
	}
	fmt.Println(est)
	return nil
}

func matchAction(c *cli.Context) error {
	var cfg, logger, err = setup(c)
	if err != nil {
		return err
	}
	h, err := harness.New(c.Context, cfg, harness.MatchEngines(cfg), logger)
	if err != nil {
		return err
	}
	defer closeHarness(h, logger)

	summary, err := h.Match(c.Context)
	fmt.Println(summary)
	var stat = summary.Stat()
	fmt.Printf("Elo difference: %.1f +/- %.1f, LOS: %.1f %%\n",
		stat.EloDifference, stat.ErrorMargin, stat.LOS*100)
	return err
}

func closeHarness(h *harness.Harness, logger zerolog.Logger) {
	if err := h.Close(); err != nil {
		logger.Warn().Err(err).Msg("shutdown")
	}
}
