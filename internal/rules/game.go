// Package rules adapts github.com/notnil/chess to the harness: an
// append-only move list from the start position and a terminal status
// expressed in first/second mover terms.
package rules

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"
)

var ErrInvalidMove = errors.New("invalid move")

type Status int

const (
	Ongoing Status = iota
	FirstMoverWins
	SecondMoverWins
	Draw
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case FirstMoverWins:
		return "first mover wins"
	case SecondMoverWins:
		return "second mover wins"
	case Draw:
		return "draw"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ResultTag is the PGN result token.
func (s Status) ResultTag() string {
	switch s {
	case FirstMoverWins:
		return "1-0"
	case SecondMoverWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	}
	return "*"
}

type Game struct {
	game  *chess.Game
	moves []string
}

func NewGame() *Game {
	return &Game{
		game: chess.NewGame(chess.UseNotation(chess.UCINotation{})),
	}
}

// Replay applies moves from the start position.
func Replay(moves []string) (*Game, error) {
	var g = NewGame()
	for _, move := range moves {
		if err := g.Apply(move); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Apply appends a move in coordinate notation. Illegal or malformed tokens
// return ErrInvalidMove and leave the game unchanged.
func (g *Game) Apply(move string) error {
	if g.game.Outcome() != chess.NoOutcome {
		return fmt.Errorf("%w %q: game is over", ErrInvalidMove, move)
	}
	if err := g.game.MoveStr(move); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidMove, move, err)
	}
	g.moves = append(g.moves, move)
	return nil
}

// Moves returns a copy of the move list.
func (g *Game) Moves() []string {
	return append([]string(nil), g.moves...)
}

func (g *Game) Ply() int {
	return len(g.moves)
}

// Status reports the terminal status and a short reason. Claimable draws
// (threefold repetition, fifty-move rule) count as terminal even though
// nobody claimed them.
func (g *Game) Status() (Status, string) {
	switch g.game.Outcome() {
	case chess.WhiteWon:
		return FirstMoverWins, methodReason(g.game.Method())
	case chess.BlackWon:
		return SecondMoverWins, methodReason(g.game.Method())
	case chess.Draw:
		return Draw, methodReason(g.game.Method())
	}
	for _, method := range g.game.EligibleDraws() {
		switch method {
		case chess.ThreefoldRepetition, chess.FiftyMoveRule:
			return Draw, methodReason(method)
		}
	}
	return Ongoing, ""
}

// SAN returns the moves in standard algebraic notation.
func (g *Game) SAN() []string {
	var positions = g.game.Positions()
	var moves = g.game.Moves()
	var result = make([]string, len(moves))
	for i, move := range moves {
		result[i] = chess.AlgebraicNotation{}.Encode(positions[i], move)
	}
	return result
}

func methodReason(method chess.Method) string {
	switch method {
	case chess.Checkmate:
		return "checkmate"
	case chess.Stalemate:
		return "stalemate"
	case chess.ThreefoldRepetition:
		return "threefold repetition"
	case chess.FivefoldRepetition:
		return "fivefold repetition"
	case chess.FiftyMoveRule:
		return "fifty-move rule"
	case chess.SeventyFiveMoveRule:
		return "seventy-five-move rule"
	case chess.InsufficientMaterial:
		return "insufficient material"
	}
	return ""
}
