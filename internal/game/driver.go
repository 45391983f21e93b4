// Package game plays one game between two players.
package game

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/eloarena/internal/rules"
)

type Side int

const (
	FirstMover Side = iota
	SecondMover
)

func (s Side) String() string {
	if s == FirstMover {
		return "first mover"
	}
	return "second mover"
}

func (s Side) Opponent() Side {
	return s ^ 1
}

// Result is always expressed in first/second mover terms.
type Result struct {
	Moves  []string
	Status rules.Status
	Reason string
}

type Driver struct {
	// MaxPlies adjudicates a draw after that many plies. Zero means no limit.
	MaxPlies int
	// OnMove is called after every applied move.
	OnMove func(ply int, player, move string)
	Logger zerolog.Logger
}

// Play resets both players and plays until the rules report a terminal
// status. A failing player aborts the game with EngineFailure or
// InvalidMoveError; such games have no result.
func (d *Driver) Play(ctx context.Context, first, second Player) (Result, error) {
	var players = [2]Player{first, second}
	for i, p := range players {
		if err := p.NewGame(ctx); err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			return Result{}, &EngineFailure{Side: Side(i), Player: p.Name(), Err: err}
		}
	}

	var g = rules.NewGame()
	for side := FirstMover; ; side = side.Opponent() {
		var p = players[side]
		var moves = g.Moves()
		var move, err = p.Move(ctx, moves)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			return Result{}, &EngineFailure{Side: side, Player: p.Name(), Ply: len(moves), Err: err}
		}
		if move == "" {
			return Result{}, &EngineFailure{Side: side, Player: p.Name(), Ply: len(moves), Err: ErrNoMove}
		}
		if err = g.Apply(move); err != nil {
			return Result{}, &InvalidMoveError{Side: side, Player: p.Name(), Move: move, Moves: moves, Err: err}
		}
		d.Logger.Trace().Int("ply", g.Ply()).Str("player", p.Name()).Str("move", move).Msg("move")
		if d.OnMove != nil {
			d.OnMove(g.Ply(), p.Name(), move)
		}

		var status, reason = g.Status()
		if status != rules.Ongoing {
			return Result{Moves: g.Moves(), Status: status, Reason: reason}, nil
		}
		if d.MaxPlies > 0 && g.Ply() >= d.MaxPlies {
			return Result{Moves: g.Moves(), Status: rules.Draw, Reason: "max plies"}, nil
		}
	}
}
