package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Engine is the searching side behind Protocol.
type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, searchParams SearchParams) SearchInfo
}

type SearchParams struct {
	// Fen is empty for the standard start position.
	Fen      string
	Moves    []string
	Limits   Limits
	Progress func(si SearchInfo)
}

type SearchInfo struct {
	Depth    int
	Score    int
	Mate     int
	Nodes    int64
	Time     time.Duration
	MainLine []string
}

// Protocol serves UCI commands for an Engine. It is used to build small
// engines for testing the harness.
type Protocol struct {
	name         string
	author       string
	version      string
	options      []Option
	engine       Engine
	fen          string
	moves        []string
	thinking     bool
	engineOutput chan SearchInfo
	cancel       context.CancelFunc
	out          *bufio.Writer
	logger       zerolog.Logger
}

func New(name, author, version string, engine Engine, options []Option) *Protocol {
	return &Protocol{
		name:    name,
		author:  author,
		version: version,
		engine:  engine,
		options: options,
		logger:  zerolog.Nop(),
	}
}

// Run reads commands from in until "quit" or EOF.
func (uci *Protocol) Run(in io.Reader, out io.Writer, logger zerolog.Logger) error {
	uci.out = bufio.NewWriter(out)
	uci.logger = logger
	var commands = make(chan string)

	go func() {
		defer close(commands)
		readCommands(in, commands)
	}()

	var searchResult SearchInfo
	for {
		select {
		case si, ok := <-uci.engineOutput:
			if ok {
				uci.println(searchInfoToUci(si))
				searchResult = si
			} else {
				if len(searchResult.MainLine) != 0 {
					uci.println("bestmove " + searchResult.MainLine[0])
				}
				uci.thinking = false
				uci.cancel = nil
				uci.engineOutput = nil
				searchResult = SearchInfo{}
			}
		case commandLine, ok := <-commands:
			if !ok {
				if uci.cancel != nil {
					uci.cancel()
				}
				return uci.out.Flush()
			}
			var err = uci.handle(commandLine)
			if err != nil {
				logger.Debug().Err(err).Str("command", commandLine).Msg("uci command failed")
			}
		}
		if err := uci.out.Flush(); err != nil {
			return err
		}
	}
}

func readCommands(in io.Reader, commands chan<- string) {
	var scanner = bufio.NewScanner(in)
	for scanner.Scan() {
		var commandLine = strings.TrimSpace(scanner.Text())
		if commandLine == "quit" {
			return
		}
		if commandLine != "" {
			commands <- commandLine
		}
	}
}

func (uci *Protocol) println(line string) {
	uci.out.WriteString(line)
	uci.out.WriteByte('\n')
}

func (uci *Protocol) handle(commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var commandName = fields[0]
	fields = fields[1:]

	if uci.thinking {
		if commandName == "stop" {
			uci.cancel()
			return nil
		}
		if commandName != "isready" {
			return errors.New("search still run")
		}
	}

	var h func(fields []string) error

	switch commandName {
	case "uci":
		h = uci.uciCommand
	case "setoption":
		h = uci.setOptionCommand
	case "isready":
		h = uci.isReadyCommand
	case "position":
		h = uci.positionCommand
	case "go":
		h = uci.goCommand
	case "ucinewgame":
		h = uci.uciNewGameCommand
	case "stop":
		return nil
	}

	if h == nil {
		return fmt.Errorf("command not found %v", commandName)
	}

	return h(fields)
}

func (uci *Protocol) uciCommand(fields []string) error {
	uci.println(fmt.Sprintf("id name %s %s", uci.name, uci.version))
	uci.println(fmt.Sprintf("id author %s", uci.author))
	for _, option := range uci.options {
		uci.println(option.UciString())
	}
	uci.println("uciok")
	return nil
}

func (uci *Protocol) setOptionCommand(fields []string) error {
	var name, value, err = parseSetOption(fields)
	if err != nil {
		return err
	}
	var option = findOption(uci.options, name)
	if option == nil {
		return fmt.Errorf("unhandled option %v", name)
	}
	return option.Set(value)
}

func (uci *Protocol) isReadyCommand(fields []string) error {
	if !uci.thinking {
		uci.engine.Prepare()
	}
	uci.println("readyok")
	return nil
}

func (uci *Protocol) positionCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("unknown position command")
	}
	var token = fields[0]
	var fen string
	var movesIndex = findIndexString(fields, "moves")
	if token == "startpos" {
		fen = ""
	} else if token == "fen" {
		if movesIndex == -1 {
			fen = strings.Join(fields[1:], " ")
		} else {
			fen = strings.Join(fields[1:movesIndex], " ")
		}
	} else {
		return errors.New("unknown position command")
	}
	var moves []string
	if movesIndex >= 0 && movesIndex+1 < len(fields) {
		moves = append(moves, fields[movesIndex+1:]...)
	}
	uci.fen = fen
	uci.moves = moves
	return nil
}

func (uci *Protocol) goCommand(fields []string) error {
	var limits = parseLimits(fields)
	var ctx, cancel = context.WithCancel(context.Background())
	uci.cancel = cancel
	uci.thinking = true
	var engineOutput = make(chan SearchInfo, 3)
	uci.engineOutput = engineOutput
	var params = SearchParams{
		Fen:    uci.fen,
		Moves:  uci.moves,
		Limits: limits,
		Progress: func(si SearchInfo) {
			select {
			case engineOutput <- si:
			default:
			}
		},
	}
	go func() {
		defer cancel()
		var searchResult = uci.engine.Search(ctx, params)
		engineOutput <- searchResult
		close(engineOutput)
	}()
	return nil
}

func (uci *Protocol) uciNewGameCommand(fields []string) error {
	uci.engine.Clear()
	return nil
}

func searchInfoToUci(si SearchInfo) string {
	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "info depth %v", si.Depth)
	if si.Mate != 0 {
		fmt.Fprintf(sb, " score mate %v", si.Mate)
	} else {
		fmt.Fprintf(sb, " score cp %v", si.Score)
	}
	var timeMs = si.Time.Milliseconds()
	var nps = si.Nodes * 1000 / (timeMs + 1)
	fmt.Fprintf(sb, " nodes %v time %v nps %v", si.Nodes, timeMs, nps)
	if len(si.MainLine) != 0 {
		fmt.Fprintf(sb, " pv %v", strings.Join(si.MainLine, " "))
	}
	return sb.String()
}
