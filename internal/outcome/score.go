package outcome

import (
	"fmt"

	"github.com/ChizhovVadim/eloarena/internal/rules"
)

// Points is a game result from the candidate's point of view.
// Candidate+Opponent is always 1.
type Points struct {
	Candidate float64
	Opponent  float64
}

// InvariantViolation is raised (as a panic value) when a finished game is
// expected but the status says otherwise.
type InvariantViolation struct {
	Status rules.Status
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: cannot score a game with status %v", e.Status)
}

func Score(status rules.Status, candidateFirst bool) Points {
	switch status {
	case rules.Draw:
		return Points{Candidate: 0.5, Opponent: 0.5}
	case rules.FirstMoverWins:
		if candidateFirst {
			return Points{Candidate: 1}
		}
		return Points{Opponent: 1}
	case rules.SecondMoverWins:
		if candidateFirst {
			return Points{Opponent: 1}
		}
		return Points{Candidate: 1}
	}
	panic(&InvariantViolation{Status: status})
}

func (p Points) Win() bool {
	return p.Candidate == 1
}

func (p Points) Loss() bool {
	return p.Opponent == 1
}

func (p Points) Draw() bool {
	return p.Candidate == 0.5
}

func (p Points) String() string {
	switch {
	case p.Win():
		return "1-0"
	case p.Loss():
		return "0-1"
	}
	return "1/2-1/2"
}
