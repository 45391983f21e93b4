package uci

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProtocolTimeout     = errors.New("protocol timeout")
	ErrProtocolTermination = errors.New("engine output closed")
)

// SpawnError means the engine process could not be started or died before
// completing the handshake.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %v: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ProtocolError describes a failed exchange with an engine.
// Output holds the engine lines received since the exchange started.
type ProtocolError struct {
	Engine  string
	Command string
	Kind    error
	Err     error
	Output  []string
}

const errorOutputTail = 3

func (e *ProtocolError) Error() string {
	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "engine %v: %v", e.Engine, e.Kind)
	if e.Err != nil {
		fmt.Fprintf(sb, ": %v", e.Err)
	}
	if e.Command != "" {
		fmt.Fprintf(sb, " (last command %q)", e.Command)
	}
	if len(e.Output) != 0 {
		var tail = e.Output
		if len(tail) > errorOutputTail {
			tail = tail[len(tail)-errorOutputTail:]
		}
		fmt.Fprintf(sb, " output: %v", strings.Join(tail, " | "))
	}
	return sb.String()
}

func (e *ProtocolError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
