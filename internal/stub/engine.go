// Package stub is a tiny deterministic UCI engine used to exercise the
// harness without a real chess engine.
package stub

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/eloarena/pkg/uci"
)

type Behavior string

const (
	// Normal answers every request with a legal move.
	Normal Behavior = "normal"
	// Silent never answers "go".
	Silent Behavior = "silent"
	// ExitOnGo terminates the process when asked to search.
	ExitOnGo Behavior = "exit-on-go"
	// ExitAtStart terminates before the handshake.
	ExitAtStart Behavior = "exit-at-start"
	// Deaf never answers "isready".
	Deaf Behavior = "deaf"
	// Illegal answers with a move that is never legal.
	Illegal Behavior = "illegal"
	// Stubborn plays normally but does not exit on "quit".
	Stubborn Behavior = "stubborn"
)

const (
	name    = "Stub"
	author  = "eloarena"
	version = "1.0"
)

// JournalEnv names a file that receives one line per "go" with the skill
// and the limits the engine was given.
const JournalEnv = "ELOARENA_STUB_JOURNAL"

// defaultDepth bounds a search that has no depth limit.
const defaultDepth = 4

type Engine struct {
	Behavior Behavior
	Skill    int
	Seed     int
	// LimitStrength enables Skill. Without it the engine always takes a mate.
	LimitStrength bool
	Journal       io.Writer
	rnd           *rand.Rand
}

func NewEngine(behavior Behavior) *Engine {
	var e = &Engine{
		Behavior:      behavior,
		Skill:         20,
		Seed:          1,
		LimitStrength: true,
	}
	e.Clear()
	return e
}

func (e *Engine) Prepare() {
	if e.Behavior == Deaf {
		select {}
	}
}

func (e *Engine) Clear() {
	e.rnd = rand.New(rand.NewSource(int64(e.Seed)*31 + int64(e.Skill)))
}

// Search picks its move up front and then reports it once per depth until
// a limit is reached. An infinite search waits for "stop".
func (e *Engine) Search(ctx context.Context, params uci.SearchParams) uci.SearchInfo {
	var start = time.Now()
	if e.Journal != nil {
		fmt.Fprintf(e.Journal, "skill %v %v\n", e.Skill, params.Limits)
	}
	switch e.Behavior {
	case Silent:
		<-ctx.Done()
		return uci.SearchInfo{}
	case ExitOnGo:
		os.Exit(3)
	case Illegal:
		return uci.SearchInfo{Depth: 1, MainLine: []string{"a1a1"}}
	}

	var game, err = replay(params)
	if err != nil {
		return uci.SearchInfo{}
	}
	var moves = game.ValidMoves()
	if len(moves) == 0 {
		return uci.SearchInfo{MainLine: []string{"0000"}}
	}
	var best = e.pick(game.Position(), moves)
	var mate = 0
	if game.Position().Update(best).Status() == chess.Checkmate {
		mate = 1
	}

	var limits = params.Limits
	var maxDepth = limits.Depth
	if maxDepth <= 0 {
		maxDepth = defaultDepth
	}
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = start.Add(time.Duration(limits.MoveTime) * time.Millisecond)
	}
	var info uci.SearchInfo
	for depth := 1; depth <= maxDepth; depth++ {
		info = uci.SearchInfo{
			Depth:    depth,
			Mate:     mate,
			Nodes:    int64(depth * len(moves)),
			Time:     time.Since(start),
			MainLine: []string{chess.UCINotation{}.Encode(game.Position(), best)},
		}
		if params.Progress != nil {
			params.Progress(info)
		}
		if ctx.Err() != nil ||
			!deadline.IsZero() && !time.Now().Before(deadline) ||
			limits.Nodes > 0 && info.Nodes >= int64(limits.Nodes) {
			break
		}
	}
	if limits.Infinite {
		<-ctx.Done()
	}
	return info
}

// pick prefers a mating move when the skill allows it, otherwise a
// pseudo-random legal move drawn from the seeded generator.
func (e *Engine) pick(pos *chess.Position, moves []*chess.Move) *chess.Move {
	if !e.LimitStrength || e.Skill >= 10 {
		for _, m := range moves {
			if pos.Update(m).Status() == chess.Checkmate {
				return m
			}
		}
	}
	return moves[e.rnd.Intn(len(moves))]
}

func replay(params uci.SearchParams) (*chess.Game, error) {
	var options = []func(*chess.Game){chess.UseNotation(chess.UCINotation{})}
	if params.Fen != "" {
		var fen, err = chess.FEN(params.Fen)
		if err != nil {
			return nil, err
		}
		options = append(options, fen)
	}
	var game = chess.NewGame(options...)
	for _, move := range params.Moves {
		if err := game.MoveStr(move); err != nil {
			return nil, err
		}
	}
	return game, nil
}

// Main runs the engine on the given streams and returns the process exit code.
func Main(behavior Behavior, in io.Reader, out io.Writer) int {
	if behavior == "" {
		behavior = Normal
	}
	if behavior == ExitAtStart {
		return 1
	}
	var logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
	var engine = NewEngine(behavior)
	if path := os.Getenv(JournalEnv); path != "" {
		var journal, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			logger.Error().Err(err).Msg("open journal")
			return 1
		}
		defer journal.Close()
		engine.Journal = journal
	}
	var protocol = uci.New(name, author, version, engine,
		[]uci.Option{
			&uci.IntOption{Name: "Skill Level", Min: 0, Max: 20, Value: &engine.Skill},
			&uci.BoolOption{Name: "UCI_LimitStrength", Value: &engine.LimitStrength},
			&uci.IntOption{Name: "Seed", Min: 0, Max: 1 << 30, Value: &engine.Seed},
		},
	)
	if err := protocol.Run(in, out, logger); err != nil {
		logger.Error().Err(err).Msg("protocol stopped")
		return 2
	}
	if behavior == Stubborn {
		time.Sleep(time.Hour)
	}
	return 0
}
