// Package harness owns the engine processes of a run and plays the games
// requested by the strength search and the match runner.
package harness

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/ChizhovVadim/eloarena/internal/arena"
	"github.com/ChizhovVadim/eloarena/internal/config"
	"github.com/ChizhovVadim/eloarena/internal/estimate"
	"github.com/ChizhovVadim/eloarena/internal/game"
	"github.com/ChizhovVadim/eloarena/internal/gamelog"
	"github.com/ChizhovVadim/eloarena/internal/outcome"
	"github.com/ChizhovVadim/eloarena/internal/strength"
	"github.com/ChizhovVadim/eloarena/pkg/uci"
)

type EngineSpec struct {
	Name string
	Path string
	Args []string
	Env  []string
}

// EstimateEngines returns the candidate and the reference engine.
func EstimateEngines(cfg *config.Config) []EngineSpec {
	return []EngineSpec{
		{Name: "candidate", Path: cfg.Engine},
		{Name: "reference", Path: cfg.Reference},
	}
}

// MatchEngines returns engine A and engine B.
func MatchEngines(cfg *config.Config) []EngineSpec {
	return []EngineSpec{
		{Name: engineName(cfg.Engine, "A"), Path: cfg.Engine},
		{Name: engineName(cfg.Opponent, "B"), Path: cfg.Opponent},
	}
}

func engineName(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return filepath.Base(path)
}

type Harness struct {
	cfg      *config.Config
	log      zerolog.Logger
	runID    uuid.UUID
	engines  []EngineSpec
	clients  []*uci.Client
	games    *gamelog.Writer
	table    *strength.Table
	driver   *game.Driver
	restarts int
}

// New starts all engines concurrently. If any of them fails to start, the
// others are closed and the error is returned.
func New(ctx context.Context, cfg *config.Config, engines []EngineSpec, logger zerolog.Logger) (*Harness, error) {
	if len(engines) != 2 {
		return nil, fmt.Errorf("need two engines, got %v", len(engines))
	}
	for _, e := range engines {
		if e.Path == "" {
			return nil, fmt.Errorf("no path for engine %v", e.Name)
		}
	}
	var table, err = cfg.Ratings()
	if err != nil {
		return nil, err
	}
	games, err := gamelog.Open(cfg.GameLog, cfg.LogFormat())
	if err != nil {
		return nil, err
	}

	var runID = uuid.New()
	logger = logger.With().Str("run", runID.String()).Logger()
	var h = &Harness{
		cfg:     cfg,
		log:     logger,
		runID:   runID,
		engines: engines,
		clients: make([]*uci.Client, len(engines)),
		games:   games,
		table:   table,
		driver:  &game.Driver{MaxPlies: cfg.MaxPlies, Logger: logger},
	}

	var g, gctx = errgroup.WithContext(ctx)
	for i := range engines {
		var i = i
		g.Go(func() error {
			var client, err = h.start(gctx, i)
			if err != nil {
				return err
			}
			h.clients[i] = client
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, multierr.Append(err, h.Close())
	}
	h.log.Info().Msg("engines started")
	return h, nil
}

func (h *Harness) start(ctx context.Context, slot int) (*uci.Client, error) {
	var spec = h.engines[slot]
	var options = h.cfg.ClientOptions(spec.Name, h.log)
	options.Args = spec.Args
	options.Env = spec.Env
	return uci.Start(ctx, spec.Path, options)
}

func (h *Harness) RunID() uuid.UUID {
	return h.runID
}

// Close quits all engines and closes the game log.
func (h *Harness) Close() error {
	var errs = make([]error, len(h.clients))
	var g errgroup.Group
	for i, client := range h.clients {
		if client == nil {
			continue
		}
		var i, client = i, client
		g.Go(func() error {
			errs[i] = client.Close()
			return nil
		})
	}
	var _ = g.Wait()
	return multierr.Append(multierr.Combine(errs...), h.games.Close())
}

// restartDead replaces every engine that failed during the last game, so
// that its stale output cannot leak into the next one.
func (h *Harness) restartDead(ctx context.Context) error {
	for i, client := range h.clients {
		if client.Alive() {
			continue
		}
		if err := client.Close(); err != nil {
			h.log.Debug().Err(err).Str("engine", client.Name()).Msg("close failed engine")
		}
		var restarted, err = h.start(ctx, i)
		if err != nil {
			return fmt.Errorf("restart %v: %w", h.engines[i].Name, err)
		}
		h.clients[i] = restarted
		h.restarts++
		h.log.Info().Str("engine", restarted.Name()).Msg("engine restarted")
	}
	return nil
}

func (h *Harness) play(ctx context.Context, mode string, first, second game.Player) (game.Result, error) {
	var result, err = h.driver.Play(ctx, first, second)
	if err != nil {
		if !game.IsGameFailure(err) {
			return game.Result{}, err
		}
		if restartErr := h.restartDead(ctx); restartErr != nil {
			return game.Result{}, restartErr
		}
		return game.Result{}, err
	}
	var id, logErr = h.games.Write(gamelog.Record{
		Mode:   mode,
		First:  first.Name(),
		Second: second.Name(),
		Moves:  result.Moves,
		Status: result.Status,
		Reason: result.Reason,
	})
	if logErr != nil {
		return game.Result{}, fmt.Errorf("write game log: %w", logErr)
	}
	h.log.Debug().
		Str("game", id.String()).
		Str("mode", mode).
		Int("plies", len(result.Moves)).
		Str("result", result.Status.ResultTag()).
		Str("reason", result.Reason).
		Msg("game logged")
	return result, nil
}

// Estimate runs the strength search of engine 0 against reference engine 1.
func (h *Harness) Estimate(ctx context.Context) (estimate.Estimate, error) {
	var play = func(ctx context.Context, rating int, candidateFirst bool) (outcome.Points, error) {
		var s, err = h.table.Lookup(rating)
		if err != nil {
			return outcome.Points{}, err
		}
		var candidate game.Player = &game.EnginePlayer{
			Engine: h.clients[0],
			Limits: h.cfg.CandidateLimits(),
		}
		var reference game.Player = &game.ReferencePlayer{
			Engine:      h.clients[1],
			Strength:    s,
			SkillOption: h.cfg.SkillOption,
		}
		var first, second = candidate, reference
		if !candidateFirst {
			first, second = reference, candidate
		}
		h.log.Debug().Str("strength", s.String()).Bool("candidateFirst", candidateFirst).Msg("game started")
		result, err := h.play(ctx, fmt.Sprintf("estimate %v", rating), first, second)
		if err != nil {
			return outcome.Points{}, err
		}
		return outcome.Score(result.Status, candidateFirst), nil
	}
	return estimate.Run(ctx, h.cfg.Search(), play, h.log)
}

// Match plays engine 0 (A) against engine 1 (B).
func (h *Harness) Match(ctx context.Context) (arena.Summary, error) {
	var play = func(ctx context.Context, number int, engineAFirst bool) (outcome.Points, error) {
		var a game.Player = &game.EnginePlayer{Engine: h.clients[0], Limits: h.cfg.CandidateLimits()}
		var b game.Player = &game.EnginePlayer{Engine: h.clients[1], Limits: h.cfg.CandidateLimits()}
		var first, second = a, b
		if !engineAFirst {
			first, second = b, a
		}
		var result, err = h.play(ctx, "match", first, second)
		if err != nil {
			return outcome.Points{}, err
		}
		return outcome.Score(result.Status, engineAFirst), nil
	}
	return arena.Run(ctx, h.cfg.Match(), play, h.log)
}
