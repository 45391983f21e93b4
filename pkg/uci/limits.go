package uci

import (
	"strconv"
	"strings"
)

// Limits are the search limits of the "go" command the harness sends.
// MoveTime is in milliseconds. The zero value is a bare "go".
type Limits struct {
	Infinite bool
	Depth    int
	Nodes    int
	MoveTime int
}

func (l Limits) String() string {
	var sb = &strings.Builder{}
	sb.WriteString("go")
	var add = func(name string, v int) {
		if v != 0 {
			sb.WriteString(" ")
			sb.WriteString(name)
			sb.WriteString(" ")
			sb.WriteString(strconv.Itoa(v))
		}
	}
	add("depth", l.Depth)
	add("nodes", l.Nodes)
	add("movetime", l.MoveTime)
	if l.Infinite {
		sb.WriteString(" infinite")
	}
	return sb.String()
}

// parseLimits reads the arguments of "go". Clock arguments are skipped
// together with their values.
func parseLimits(args []string) (result Limits) {
	var intArg = func(i int) int {
		if i >= len(args) {
			return 0
		}
		var v, _ = strconv.Atoi(args[i])
		return v
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime", "btime", "winc", "binc", "movestogo", "mate":
			i++
		case "depth":
			result.Depth = intArg(i + 1)
			i++
		case "nodes":
			result.Nodes = intArg(i + 1)
			i++
		case "movetime":
			result.MoveTime = intArg(i + 1)
			i++
		case "infinite":
			result.Infinite = true
		}
	}
	return
}

func positionCommand(moves []string) string {
	if len(moves) == 0 {
		return "position startpos"
	}
	return "position startpos moves " + strings.Join(moves, " ")
}
