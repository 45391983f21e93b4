// Package estimate finds the rating of a candidate engine by playing it
// against a reference engine of increasing strength.
package estimate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/eloarena/internal/game"
	"github.com/ChizhovVadim/eloarena/internal/outcome"
)

var ErrGameBudget = errors.New("game budget exhausted")

type Config struct {
	MinRating int
	MaxRating int
	Step      int
	// Margin is the score difference (in points) needed for a verdict.
	Margin float64
	// MaxFailures is the number of consecutive failed games tolerated.
	MaxFailures int
	// MaxGames stops the search after that many completed games. Zero means no limit.
	MaxGames int
}

func DefaultConfig() Config {
	return Config{
		MinRating:   550,
		MaxRating:   3250,
		Step:        100,
		Margin:      2,
		MaxFailures: 3,
	}
}

func (c Config) validate() error {
	if c.MinRating > c.MaxRating {
		return fmt.Errorf("min rating %v is above max rating %v", c.MinRating, c.MaxRating)
	}
	if c.Step <= 0 {
		return fmt.Errorf("step must be positive, got %v", c.Step)
	}
	if c.Margin <= 0 {
		return fmt.Errorf("margin must be positive, got %v", c.Margin)
	}
	if c.MaxFailures < 0 || c.MaxGames < 0 {
		return errors.New("negative failure or game limit")
	}
	return nil
}

// PlayFunc plays one game against the reference at rating and scores it.
type PlayFunc func(ctx context.Context, rating int, candidateFirst bool) (outcome.Points, error)

type Interval struct {
	Min     int
	Max     int
	Current int
}

type Accumulator struct {
	Candidate float64
	Reference float64
}

func (a *Accumulator) Add(p outcome.Points) {
	a.Candidate += p.Candidate
	a.Reference += p.Opponent
}

type Decision int

const (
	Continue Decision = iota
	Stronger
	Weaker
)

func (d Decision) String() string {
	switch d {
	case Stronger:
		return "stronger"
	case Weaker:
		return "weaker"
	}
	return "continue"
}

// Step records one completed game and the decision taken after it.
type Step struct {
	Game           int
	Rating         int
	CandidateFirst bool
	Points         outcome.Points
	Score          Accumulator
	Decision       Decision
	Interval       Interval
}

type Estimate struct {
	// Rating is valid unless BelowLowerBound is set.
	Rating          int
	BelowLowerBound bool
	Interval        Interval
	Games           int
	Failed          int
	Steps           []Step
}

func (e Estimate) String() string {
	if e.BelowLowerBound {
		return fmt.Sprintf("estimated rating is below %v", e.Interval.Min)
	}
	return fmt.Sprintf("estimated rating %v", e.Rating)
}

type search struct {
	config         Config
	play           PlayFunc
	log            zerolog.Logger
	interval       Interval
	score          Accumulator
	candidateFirst bool
	result         Estimate
}

// Run plays games until the candidate loses by Margin at some rating.
// Winning by Margin moves the lower bound up to the current rating and the
// current rating up by Step. There is no way back down, and at MaxRating
// the search keeps playing at MaxRating.
func Run(ctx context.Context, config Config, play PlayFunc, logger zerolog.Logger) (Estimate, error) {
	if err := config.validate(); err != nil {
		return Estimate{}, err
	}
	var s = &search{
		config: config,
		play:   play,
		log:    logger,
		interval: Interval{
			Min:     config.MinRating,
			Max:     config.MaxRating,
			Current: config.MinRating,
		},
		candidateFirst: true,
	}
	return s.run(ctx)
}

func (s *search) run(ctx context.Context) (Estimate, error) {
	var consecutiveFailures = 0
	for {
		if err := ctx.Err(); err != nil {
			return s.snapshot(), err
		}
		var rating = s.interval.Current
		var points, err = s.play(ctx, rating, s.candidateFirst)
		if err != nil {
			if !game.IsGameFailure(err) {
				return s.snapshot(), err
			}
			consecutiveFailures++
			s.result.Failed++
			s.log.Warn().Err(err).
				Int("rating", rating).
				Int("consecutiveFailures", consecutiveFailures).
				Msg("game excluded")
			if consecutiveFailures > s.config.MaxFailures {
				return s.snapshot(), fmt.Errorf("%v consecutive failed games: %w", consecutiveFailures, err)
			}
			continue
		}
		consecutiveFailures = 0
		s.result.Games++
		s.score.Add(points)

		var step = Step{
			Game:           s.result.Games,
			Rating:         rating,
			CandidateFirst: s.candidateFirst,
			Points:         points,
			Score:          s.score,
		}
		s.candidateFirst = !s.candidateFirst
		step.Decision = s.decide()
		var done = s.apply(step.Decision)
		step.Interval = s.interval
		s.result.Steps = append(s.result.Steps, step)

		s.log.Info().
			Int("game", step.Game).
			Int("rating", rating).
			Bool("candidateFirst", step.CandidateFirst).
			Str("result", points.String()).
			Float64("candidate", step.Score.Candidate).
			Float64("reference", step.Score.Reference).
			Str("decision", step.Decision.String()).
			Msg("game finished")

		if done {
			return s.snapshot(), nil
		}
		if s.config.MaxGames > 0 && s.result.Games >= s.config.MaxGames {
			return s.snapshot(), ErrGameBudget
		}
	}
}

func (s *search) decide() Decision {
	if s.score.Candidate-s.score.Reference >= s.config.Margin {
		return Stronger
	}
	if s.score.Reference-s.score.Candidate >= s.config.Margin {
		return Weaker
	}
	return Continue
}

// apply updates the interval and reports whether the search is over.
func (s *search) apply(d Decision) bool {
	switch d {
	case Stronger:
		s.interval.Min = s.interval.Current
		s.interval.Current += s.config.Step
		if s.interval.Current > s.interval.Max {
			s.interval.Current = s.interval.Max
		}
		s.score = Accumulator{}
		s.log.Info().Int("min", s.interval.Min).Int("next", s.interval.Current).Msg("candidate is stronger")
	case Weaker:
		s.interval.Max = s.interval.Current
		if s.interval.Current == s.config.MinRating {
			s.result.BelowLowerBound = true
		} else {
			s.result.Rating = (s.interval.Min + s.interval.Max) / 2
		}
		return true
	}
	return false
}

func (s *search) snapshot() Estimate {
	var result = s.result
	result.Interval = s.interval
	return result
}
