package game

import (
	"errors"
	"fmt"
)

var ErrNoMove = errors.New("no move returned")

// EngineFailure aborts a game because a player did not answer
// (timeout, crash or reset failure).
type EngineFailure struct {
	Side   Side
	Player string
	Ply    int
	Err    error
}

func (e *EngineFailure) Error() string {
	return fmt.Sprintf("engine failure: %v (%v) at ply %v: %v", e.Player, e.Side, e.Ply, e.Err)
}

func (e *EngineFailure) Unwrap() error {
	return e.Err
}

// InvalidMoveError aborts a game because a player returned a move the rules
// reject.
type InvalidMoveError struct {
	Side   Side
	Player string
	Move   string
	Moves  []string
	Err    error
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("engine %v (%v) played %q at ply %v: %v", e.Player, e.Side, e.Move, len(e.Moves), e.Err)
}

func (e *InvalidMoveError) Unwrap() error {
	return e.Err
}

// IsGameFailure reports whether err only invalidates the current game.
func IsGameFailure(err error) bool {
	var engineFailure *EngineFailure
	var invalidMove *InvalidMoveError
	return errors.As(err, &engineFailure) || errors.As(err, &invalidMove)
}
