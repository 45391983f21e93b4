// Package gamelog appends finished games to a log file.
package gamelog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ChizhovVadim/eloarena/internal/rules"
)

type Format string

const (
	FormatText Format = "text"
	FormatPGN  Format = "pgn"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatPGN:
		return FormatPGN, nil
	}
	return "", fmt.Errorf("unknown game log format %q", s)
}

// Record is one finished game.
type Record struct {
	// ID is generated when zero.
	ID     uuid.UUID
	Mode   string
	First  string
	Second string
	Moves  []string
	Status rules.Status
	Reason string
	Date   time.Time
}

type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	format Format
}

// Open opens path for appending. The file is created if needed and
// existing content is never rewritten. An empty path discards all records.
func Open(path string, format Format) (*Writer, error) {
	if path == "" {
		return &Writer{w: io.Discard, format: format}, nil
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open game log: %w", err)
	}
	return &Writer{w: file, closer: file, format: format}, nil
}

// NewWriter writes records to w.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// Write appends one record and returns its id.
func (l *Writer) Write(rec Record) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Date.IsZero() {
		rec.Date = time.Now()
	}
	var sb strings.Builder
	switch l.format {
	case FormatPGN:
		if err := writePGN(&sb, &rec); err != nil {
			return rec.ID, err
		}
	default:
		writeText(&sb, &rec)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var _, err = io.WriteString(l.w, sb.String())
	return rec.ID, err
}

func (l *Writer) Close() error {
	if l.closer == nil {
		return nil
	}
	var err = l.closer.Close()
	l.closer = nil
	return err
}

func writeText(sb *strings.Builder, rec *Record) {
	fmt.Fprintf(sb, "\n### Game Mode: %v ###\n", rec.Mode)
	fmt.Fprintf(sb, "[Id %v]\n", rec.ID)
	fmt.Fprintf(sb, "[Players %v - %v]\n", rec.First, rec.Second)
	for i := 0; i < len(rec.Moves); i += 2 {
		fmt.Fprintf(sb, "%v. %v", i/2+1, rec.Moves[i])
		if i+1 < len(rec.Moves) {
			fmt.Fprintf(sb, " %v", rec.Moves[i+1])
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(sb, "\nResult: %v", rec.Status.ResultTag())
	if rec.Reason != "" {
		fmt.Fprintf(sb, " (%v)", rec.Reason)
	}
	sb.WriteString("\n")
}

const pgnLineWidth = 80

func writePGN(sb *strings.Builder, rec *Record) error {
	var g, err = rules.Replay(rec.Moves)
	if err != nil {
		return fmt.Errorf("game %v: %w", rec.ID, err)
	}
	var result = rec.Status.ResultTag()
	var tags = [][2]string{
		{"Event", rec.Mode},
		{"Site", "eloarena"},
		{"Date", rec.Date.Format("2006.01.02")},
		{"Round", "-"},
		{"White", rec.First},
		{"Black", rec.Second},
		{"Result", result},
		{"GameId", rec.ID.String()},
	}
	if rec.Reason != "" {
		tags = append(tags, [2]string{"Termination", rec.Reason})
	}
	for _, tag := range tags {
		fmt.Fprintf(sb, "[%v %q]\n", tag[0], tag[1])
	}
	sb.WriteString("\n")

	var width = 0
	var token = func(s string) {
		if width > 0 && width+1+len(s) > pgnLineWidth {
			sb.WriteString("\n")
			width = 0
		} else if width > 0 {
			sb.WriteString(" ")
			width++
		}
		sb.WriteString(s)
		width += len(s)
	}
	for i, san := range g.SAN() {
		if i%2 == 0 {
			token(fmt.Sprintf("%v.", i/2+1))
		}
		token(san)
	}
	token(result)
	sb.WriteString("\n\n")
	return nil
}
