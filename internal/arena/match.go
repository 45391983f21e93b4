// Package arena plays a fixed number of games between two engines.
package arena

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/eloarena/internal/game"
	"github.com/ChizhovVadim/eloarena/internal/outcome"
)

// GameFunc plays game number (1-based, counting completed games) and scores
// it for engine A.
type GameFunc func(ctx context.Context, number int, engineAFirst bool) (outcome.Points, error)

type Config struct {
	Games int
	// MaxFailures is the number of consecutive failed games tolerated.
	MaxFailures int
}

func DefaultConfig() Config {
	return Config{
		Games:       10,
		MaxFailures: 3,
	}
}

type Summary struct {
	Games  int
	WinsA  int
	WinsB  int
	Draws  int
	Failed int
}

func (s *Summary) add(p outcome.Points) {
	s.Games++
	switch {
	case p.Win():
		s.WinsA++
	case p.Loss():
		s.WinsB++
	default:
		s.Draws++
	}
}

func (s Summary) ScoreA() float64 {
	return float64(s.WinsA) + 0.5*float64(s.Draws)
}

func (s Summary) ScoreB() float64 {
	return float64(s.WinsB) + 0.5*float64(s.Draws)
}

func (s Summary) PercentA() float64    { return s.percent(s.WinsA) }
func (s Summary) PercentB() float64    { return s.percent(s.WinsB) }
func (s Summary) PercentDraw() float64 { return s.percent(s.Draws) }

func (s Summary) percent(n int) float64 {
	if s.Games == 0 {
		return 0
	}
	return 100 * float64(n) / float64(s.Games)
}

func (s Summary) String() string {
	return fmt.Sprintf("Match result: %v - %v (+%v -%v =%v) A %.1f%% B %.1f%% draws %.1f%%",
		s.ScoreA(), s.ScoreB(), s.WinsA, s.WinsB, s.Draws,
		s.PercentA(), s.PercentB(), s.PercentDraw())
}

// Run plays config.Games completed games. Engine A moves first in the 1st,
// 3rd, 5th... game. A failed game is replayed with the same colors and is
// not counted.
func Run(ctx context.Context, config Config, play GameFunc, logger zerolog.Logger) (Summary, error) {
	if config.Games < 0 || config.MaxFailures < 0 {
		return Summary{}, fmt.Errorf("bad match config %+v", config)
	}
	logger.Info().Int("games", config.Games).Msg("match started")

	var summary Summary
	var consecutiveFailures = 0
	for summary.Games < config.Games {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		var number = summary.Games + 1
		var engineAFirst = summary.Games%2 == 0
		var points, err = play(ctx, number, engineAFirst)
		if err != nil {
			if !game.IsGameFailure(err) {
				return summary, err
			}
			consecutiveFailures++
			summary.Failed++
			logger.Warn().Err(err).
				Int("game", number).
				Int("consecutiveFailures", consecutiveFailures).
				Msg("game excluded")
			if consecutiveFailures > config.MaxFailures {
				return summary, fmt.Errorf("%v consecutive failed games: %w", consecutiveFailures, err)
			}
			continue
		}
		consecutiveFailures = 0
		summary.add(points)

		var stat = summary.Stat()
		logger.Info().
			Int("game", number).
			Bool("engineAFirst", engineAFirst).
			Str("result", points.String()).
			Str("score", fmt.Sprintf("%v - %v - %v", summary.WinsA, summary.WinsB, summary.Draws)).
			Float64("winningFraction", stat.WinningFraction).
			Msg("game finished")
	}

	var stat = summary.Stat()
	logger.Info().
		Float64("eloDifference", stat.EloDifference).
		Float64("errorMargin", stat.ErrorMargin).
		Float64("los", stat.LOS).
		Msg("match finished")
	return summary, nil
}
