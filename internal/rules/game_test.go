package rules

import (
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"
)

var (
	scholarsMate = []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"}
	foolsMate    = []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	knightDance  = []string{"b1c3", "b8c6", "c3b1", "c6b8", "b1c3", "b8c6", "c3b1", "c6b8"}
)

func TestStatus(t *testing.T) {
	var tests = []struct {
		name   string
		moves  []string
		status Status
		reason string
	}{
		{"start", nil, Ongoing, ""},
		{"open game", []string{"e2e4", "e7e5", "g1f3"}, Ongoing, ""},
		{"scholars mate", scholarsMate, FirstMoverWins, "checkmate"},
		{"fools mate", foolsMate, SecondMoverWins, "checkmate"},
		{"threefold repetition", knightDance, Draw, "threefold repetition"},
		{"twofold repetition", knightDance[:4], Ongoing, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var g, err = Replay(test.moves)
			require.NoError(t, err)
			var status, reason = g.Status()
			require.Equal(t, test.status, status)
			require.Equal(t, test.reason, reason)
		})
	}
}

func TestApplyRejectsInvalidMoves(t *testing.T) {
	var g = NewGame()
	require.ErrorIs(t, g.Apply("e2e5"), ErrInvalidMove)
	require.ErrorIs(t, g.Apply("zz"), ErrInvalidMove)
	require.ErrorIs(t, g.Apply("0000"), ErrInvalidMove)
	require.Equal(t, 0, g.Ply())

	require.NoError(t, g.Apply("e2e4"))
	require.ErrorIs(t, g.Apply("e2e4"), ErrInvalidMove)
	require.Equal(t, []string{"e2e4"}, g.Moves())
}

func TestFiftyMoveRule(t *testing.T) {
	var fen, err = chess.FEN("8/8/4k3/8/8/4K3/8/R7 w - - 99 80")
	require.NoError(t, err)
	var g = &Game{game: chess.NewGame(fen, chess.UseNotation(chess.UCINotation{}))}

	var status, reason = g.Status()
	require.Equal(t, Ongoing, status)
	require.Equal(t, "", reason)

	require.NoError(t, g.Apply("a1a2"))
	status, reason = g.Status()
	require.Equal(t, Draw, status)
	require.Equal(t, "fifty-move rule", reason)
}

func TestApplyAfterMate(t *testing.T) {
	var g, err = Replay(foolsMate)
	require.NoError(t, err)
	require.ErrorIs(t, g.Apply("e1f2"), ErrInvalidMove)
}

func TestPromotion(t *testing.T) {
	var g, err = Replay([]string{"a2a4", "b7b5", "a4b5", "a7a6", "b5a6", "c8b7", "a6b7", "b8c6", "b7a8q"})
	require.NoError(t, err)
	require.Equal(t, "b7a8q", g.Moves()[8])
	var status, _ = g.Status()
	require.Equal(t, Ongoing, status)
}

func TestMovesIsCopy(t *testing.T) {
	var g, err = Replay([]string{"d2d4"})
	require.NoError(t, err)
	var moves = g.Moves()
	moves[0] = "e2e4"
	require.Equal(t, []string{"d2d4"}, g.Moves())
}

func TestSAN(t *testing.T) {
	var g, err = Replay(foolsMate)
	require.NoError(t, err)
	require.Equal(t, []string{"f3", "e5", "g4", "Qh4#"}, g.SAN())
}

func TestResultTag(t *testing.T) {
	require.Equal(t, "1-0", FirstMoverWins.ResultTag())
	require.Equal(t, "0-1", SecondMoverWins.ResultTag())
	require.Equal(t, "1/2-1/2", Draw.ResultTag())
	require.Equal(t, "*", Ongoing.ResultTag())
}
