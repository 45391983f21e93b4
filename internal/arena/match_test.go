package arena

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChizhovVadim/eloarena/internal/game"
	"github.com/ChizhovVadim/eloarena/internal/outcome"
	"github.com/ChizhovVadim/eloarena/pkg/uci"
)

var (
	foolsMate   = []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	scholarMate = []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"}
)

type bookPlayer struct {
	name string
	book []string
}

func (p *bookPlayer) Name() string                      { return p.name }
func (p *bookPlayer) NewGame(ctx context.Context) error { return nil }

func (p *bookPlayer) Move(ctx context.Context, moves []string) (string, error) {
	return p.book[len(moves)], nil
}

type gameCall struct {
	number       int
	engineAFirst bool
}

func TestCheckmateEachWay(t *testing.T) {
	// Game 1 is won by the first mover (A), game 2 by the first mover (B).
	var books = [][]string{scholarMate, scholarMate}
	var calls []gameCall
	var play = func(ctx context.Context, number int, engineAFirst bool) (outcome.Points, error) {
		calls = append(calls, gameCall{number, engineAFirst})
		var a = &bookPlayer{name: "A", book: books[number-1]}
		var b = &bookPlayer{name: "B", book: books[number-1]}
		var first, second game.Player = a, b
		if !engineAFirst {
			first, second = b, a
		}
		var result, err = (&game.Driver{}).Play(ctx, first, second)
		if err != nil {
			return outcome.Points{}, err
		}
		return outcome.Score(result.Status, engineAFirst), nil
	}

	var summary, err = Run(context.Background(), Config{Games: 2}, play, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []gameCall{{1, true}, {2, false}}, calls)
	require.Equal(t, Summary{Games: 2, WinsA: 1, WinsB: 1}, summary)
	require.Equal(t, 50.0, summary.PercentA())
	require.Equal(t, 50.0, summary.PercentB())
	require.Equal(t, 0.0, summary.PercentDraw())
	require.Equal(t, "Match result: 1 - 1 (+1 -1 =0) A 50.0% B 50.0% draws 0.0%", summary.String())
}

func TestSecondMoverMateCountsForA(t *testing.T) {
	var play = func(ctx context.Context, number int, engineAFirst bool) (outcome.Points, error) {
		var a = &bookPlayer{name: "A", book: foolsMate}
		var b = &bookPlayer{name: "B", book: foolsMate}
		var result, err = (&game.Driver{}).Play(ctx, b, a)
		if err != nil {
			return outcome.Points{}, err
		}
		return outcome.Score(result.Status, false), nil
	}
	var summary, err = Run(context.Background(), Config{Games: 1}, play, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 1, summary.WinsA)
	require.Equal(t, 100.0, summary.PercentA())
}

func TestColorsAlternate(t *testing.T) {
	for _, games := range []int{1, 2, 5, 8} {
		var firsts int
		var play = func(ctx context.Context, number int, engineAFirst bool) (outcome.Points, error) {
			require.Equal(t, number%2 == 1, engineAFirst)
			if engineAFirst {
				firsts++
			}
			return outcome.Points{Candidate: 0.5, Opponent: 0.5}, nil
		}
		var summary, err = Run(context.Background(), Config{Games: games}, play, zerolog.Nop())
		require.NoError(t, err)
		require.Equal(t, (games+1)/2, firsts)
		require.Equal(t, games, summary.Draws)
		require.Equal(t, float64(games)/2, summary.ScoreA())
	}
}

func TestFailedGamesAreReplayed(t *testing.T) {
	var failure = &game.EngineFailure{Player: "B", Err: uci.ErrProtocolTimeout}
	var calls []gameCall
	var play = func(ctx context.Context, number int, engineAFirst bool) (outcome.Points, error) {
		calls = append(calls, gameCall{number, engineAFirst})
		if len(calls) == 2 {
			return outcome.Points{}, failure
		}
		return outcome.Points{Candidate: 1}, nil
	}
	var summary, err = Run(context.Background(), Config{Games: 2, MaxFailures: 1}, play, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []gameCall{{1, true}, {2, false}, {2, false}}, calls)
	require.Equal(t, Summary{Games: 2, WinsA: 2, Failed: 1}, summary)
}

func TestTooManyFailures(t *testing.T) {
	var play = func(ctx context.Context, number int, engineAFirst bool) (outcome.Points, error) {
		return outcome.Points{}, &game.InvalidMoveError{Player: "A", Move: "a1a1"}
	}
	var summary, err = Run(context.Background(), Config{Games: 4, MaxFailures: 1}, play, zerolog.Nop())
	require.Error(t, err)
	require.Equal(t, 2, summary.Failed)
	require.Zero(t, summary.Games)
}

func TestCanceledMatch(t *testing.T) {
	var ctx, cancel = context.WithCancel(context.Background())
	var play = func(ctx context.Context, number int, engineAFirst bool) (outcome.Points, error) {
		cancel()
		return outcome.Points{Opponent: 1}, nil
	}
	var summary, err = Run(ctx, Config{Games: 10}, play, zerolog.Nop())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, summary.WinsB)
}

func TestStat(t *testing.T) {
	var s = Summary{Games: 10, WinsA: 6, WinsB: 2, Draws: 2}.Stat()
	require.InDelta(t, 0.7, s.WinningFraction, 1e-9)
	require.InDelta(t, 147.19, s.EloDifference, 0.01)
	require.InDelta(t, 0.9214, s.LOS, 0.0001)
	require.Greater(t, s.ErrorMargin, 0.0)

	s = Summary{Games: 4, WinsA: 1, WinsB: 1, Draws: 2}.Stat()
	require.InDelta(t, 0, s.EloDifference, 1e-9)
	require.InDelta(t, 0.5, s.LOS, 1e-9)

	s = Summary{Games: 3, WinsA: 3}.Stat()
	require.True(t, math.IsInf(s.EloDifference, 1))

	s = Summary{}.Stat()
	require.Equal(t, 0.5, s.LOS)
}
