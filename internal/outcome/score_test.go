package outcome

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChizhovVadim/eloarena/internal/rules"
)

func TestScore(t *testing.T) {
	var tests = []struct {
		status         rules.Status
		candidateFirst bool
		want           Points
	}{
		{rules.FirstMoverWins, true, Points{1, 0}},
		{rules.FirstMoverWins, false, Points{0, 1}},
		{rules.SecondMoverWins, true, Points{0, 1}},
		{rules.SecondMoverWins, false, Points{1, 0}},
		{rules.Draw, true, Points{0.5, 0.5}},
		{rules.Draw, false, Points{0.5, 0.5}},
	}
	for _, test := range tests {
		var got = Score(test.status, test.candidateFirst)
		require.Equal(t, test.want, got, "%v candidateFirst=%v", test.status, test.candidateFirst)
		require.Equal(t, 1.0, got.Candidate+got.Opponent)
	}
}

func TestScoreOngoingPanics(t *testing.T) {
	defer func() {
		var r = recover()
		require.NotNil(t, r)
		var violation, ok = r.(*InvariantViolation)
		require.True(t, ok)
		require.Equal(t, rules.Ongoing, violation.Status)
	}()
	Score(rules.Ongoing, true)
	t.Fatal("expected panic")
}

func TestPointsString(t *testing.T) {
	require.Equal(t, "1-0", Points{1, 0}.String())
	require.Equal(t, "0-1", Points{0, 1}.String())
	require.Equal(t, "1/2-1/2", Points{0.5, 0.5}.String())
	require.True(t, Points{0.5, 0.5}.Draw())
}
