package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

var (
	uciOkPattern    = regexp.MustCompile(`^uciok\b`)
	readyOkPattern  = regexp.MustCompile(`^readyok\b`)
	bestMovePattern = regexp.MustCompile(`^bestmove\s+(\S+)`)
)

type Options struct {
	// Name identifies the engine in errors and logs. Defaults to the file name.
	Name         string
	Args         []string
	Env          []string
	MoveTimeout  time.Duration
	ReadyTimeout time.Duration
	QuitTimeout  time.Duration
	OutputLines  int
	Logger       zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		MoveTimeout:  60 * time.Second,
		ReadyTimeout: 10 * time.Second,
		QuitTimeout:  2 * time.Second,
		OutputLines:  64,
		Logger:       zerolog.Nop(),
	}
}

// Client talks to one engine process. It is not safe for concurrent use:
// requests must be issued one at a time.
type Client struct {
	name        string
	path        string
	options     Options
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	writer      *bufio.Writer
	lines       chan string
	done        chan struct{}
	before      *outputBuffer
	lastCommand string
	alive       bool
	closed      bool
	log         zerolog.Logger
}

// Start launches the engine and performs the uci/uciok handshake.
func Start(ctx context.Context, path string, options Options) (*Client, error) {
	var defaults = DefaultOptions()
	if options.MoveTimeout <= 0 {
		options.MoveTimeout = defaults.MoveTimeout
	}
	if options.ReadyTimeout <= 0 {
		options.ReadyTimeout = defaults.ReadyTimeout
	}
	if options.QuitTimeout <= 0 {
		options.QuitTimeout = defaults.QuitTimeout
	}
	if options.OutputLines <= 0 {
		options.OutputLines = defaults.OutputLines
	}
	if options.Name == "" {
		options.Name = filepath.Base(path)
	}

	var resolved, err = exec.LookPath(path)
	if err != nil {
		return nil, &SpawnError{Path: path, Err: err}
	}
	var cmd = exec.Command(resolved, options.Args...)
	if len(options.Env) != 0 {
		cmd.Env = append(os.Environ(), options.Env...)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Path: path, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Path: path, Err: err}
	}
	if err = cmd.Start(); err != nil {
		return nil, &SpawnError{Path: path, Err: err}
	}

	var c = &Client{
		name:    options.Name,
		path:    path,
		options: options,
		cmd:     cmd,
		stdin:   stdin,
		writer:  bufio.NewWriter(stdin),
		lines:   make(chan string),
		done:    make(chan struct{}),
		before:  newOutputBuffer(options.OutputLines),
		alive:   true,
		log:     options.Logger.With().Str("engine", options.Name).Logger(),
	}
	go c.readLines(stdout)

	c.log.Debug().Int("pid", cmd.Process.Pid).Str("path", resolved).Msg("engine started")

	if err = c.handshake(ctx); err != nil {
		var closeErr = c.Close()
		if closeErr != nil {
			c.log.Debug().Err(closeErr).Msg("close after failed handshake")
		}
		return nil, &SpawnError{Path: path, Err: err}
	}
	return c, nil
}

func (c *Client) readLines(r io.Reader) {
	defer close(c.lines)
	var scanner = bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line = strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		select {
		case c.lines <- line:
		case <-c.done:
			return
		}
	}
}

func (c *Client) handshake(ctx context.Context) error {
	c.before.Reset()
	if err := c.send("uci"); err != nil {
		return err
	}
	var _, err = c.expect(ctx, uciOkPattern, c.options.ReadyTimeout)
	return err
}

func (c *Client) Name() string {
	return c.name
}

// Alive reports whether the engine can still be used. It turns false after
// any failed exchange.
func (c *Client) Alive() bool {
	return c.alive && !c.closed
}

// ResetGame starts a new game and waits until the engine is ready.
func (c *Client) ResetGame(ctx context.Context) error {
	c.before.Reset()
	if err := c.send("ucinewgame"); err != nil {
		return err
	}
	if err := c.send("isready"); err != nil {
		return err
	}
	var _, err = c.expect(ctx, readyOkPattern, c.options.ReadyTimeout)
	return err
}

func (c *Client) SetOption(name, value string) error {
	return c.send(fmt.Sprintf("setoption name %v value %v", name, value))
}

// RequestMove sends the whole move history from the start position and
// waits for the bestmove line. The move token is returned verbatim.
func (c *Client) RequestMove(ctx context.Context, moves []string, limits Limits) (string, error) {
	c.before.Reset()
	if err := c.send(positionCommand(moves)); err != nil {
		return "", err
	}
	if err := c.send(limits.String()); err != nil {
		return "", err
	}
	var match, err = c.expect(ctx, bestMovePattern, c.options.MoveTimeout)
	if err != nil {
		return "", err
	}
	return match[1], nil
}

func (c *Client) send(command string) error {
	if !c.Alive() {
		return c.protocolError(ErrProtocolTermination, nil)
	}
	c.lastCommand = command
	c.log.Trace().Msg(">> " + command)
	if _, err := c.writer.WriteString(command + "\n"); err != nil {
		c.alive = false
		return c.protocolError(ErrProtocolTermination, err)
	}
	if err := c.writer.Flush(); err != nil {
		c.alive = false
		return c.protocolError(ErrProtocolTermination, err)
	}
	return nil
}

func (c *Client) expect(ctx context.Context, pattern *regexp.Regexp, timeout time.Duration) ([]string, error) {
	var timer = time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			c.alive = false
			return nil, ctx.Err()
		case <-timer.C:
			c.alive = false
			return nil, c.protocolError(ErrProtocolTimeout, nil)
		case line, ok := <-c.lines:
			if !ok {
				c.alive = false
				return nil, c.protocolError(ErrProtocolTermination, nil)
			}
			c.log.Trace().Msg("<< " + line)
			if match := pattern.FindStringSubmatch(line); match != nil {
				return match, nil
			}
			c.before.Add(line)
		}
	}
}

func (c *Client) protocolError(kind, err error) *ProtocolError {
	return &ProtocolError{
		Engine:  c.name,
		Command: c.lastCommand,
		Kind:    kind,
		Err:     err,
		Output:  c.before.Lines(),
	}
}

// drain discards output until the reader stops. It reports false if
// timeout fires first.
func (c *Client) drain(timeout <-chan time.Time) bool {
	for {
		select {
		case _, ok := <-c.lines:
			if !ok {
				return true
			}
		case <-timeout:
			return false
		}
	}
}

// Close asks the engine to quit and kills it if it does not exit within
// the quit timeout.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	if c.alive {
		if err := c.send("quit"); err != nil {
			c.log.Trace().Err(err).Msg("send quit")
		}
	}
	c.closed = true
	c.alive = false

	var result error
	if err := c.stdin.Close(); err != nil {
		c.log.Trace().Err(err).Msg("close stdin")
	}

	var killed = false
	var timer = time.NewTimer(c.options.QuitTimeout)
	defer timer.Stop()
	if !c.drain(timer.C) {
		c.log.Warn().Msg("engine did not quit, killing")
		if err := c.cmd.Process.Kill(); err != nil {
			result = multierr.Append(result, fmt.Errorf("kill %v: %w", c.name, err))
		}
		killed = true
		// Wait closes stdout, so the reader has to finish first.
		timer.Reset(c.options.QuitTimeout)
		if !c.drain(timer.C) {
			c.log.Warn().Msg("engine output still open after kill")
		}
	}
	close(c.done)

	if err := c.cmd.Wait(); err != nil && !killed {
		result = multierr.Append(result, fmt.Errorf("engine %v exit: %w", c.name, err))
	}
	c.log.Debug().Msg("engine stopped")
	return result
}
