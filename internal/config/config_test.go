package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChizhovVadim/eloarena/internal/estimate"
	"github.com/ChizhovVadim/eloarena/internal/gamelog"
	"github.com/ChizhovVadim/eloarena/pkg/uci"
)

func TestDefaults(t *testing.T) {
	var cfg, err = Load("", nil)
	require.NoError(t, err)
	require.Equal(t, estimate.DefaultConfig(), cfg.Search())
	require.Equal(t, 60*time.Second, cfg.MoveTimeout)
	require.Equal(t, 10*time.Second, cfg.ReadyTimeout)
	require.Equal(t, "Skill Level", cfg.SkillOption)
	require.Equal(t, "stockfish", cfg.Reference)
	require.Equal(t, uci.Limits{MoveTime: 1000}, cfg.CandidateLimits())
	require.Equal(t, gamelog.FormatText, cfg.LogFormat())
	require.Equal(t, zerolog.InfoLevel, cfg.Level())

	table, err := cfg.Ratings()
	require.NoError(t, err)
	require.Equal(t, 1350, table.Threshold)
}

func TestFileEnvAndOverrides(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "eloarena.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine: ./counter
min_rating: 650
max_rating: 2000
move_timeout: 5s
game_log_format: pgn
log_level: debug
`), 0644))
	t.Setenv("ELOARENA_MAX_RATING", "2400")
	t.Setenv("ELOARENA_STEP", "50")

	var cfg, err = Load(path, map[string]any{"step": 25, "games": 4})
	require.NoError(t, err)
	require.Equal(t, "./counter", cfg.Engine)
	require.Equal(t, 650, cfg.MinRating)
	require.Equal(t, 2400, cfg.MaxRating)
	require.Equal(t, 25, cfg.Step)
	require.Equal(t, 4, cfg.Match().Games)
	require.Equal(t, 5*time.Second, cfg.MoveTimeout)
	require.Equal(t, gamelog.FormatPGN, cfg.LogFormat())
	require.Equal(t, zerolog.DebugLevel, cfg.Level())

	var options = cfg.ClientOptions("candidate", zerolog.Nop())
	require.Equal(t, "candidate", options.Name)
	require.Equal(t, 5*time.Second, options.MoveTimeout)
}

func TestInvalid(t *testing.T) {
	var tests = []map[string]any{
		{"game_log_format": "json"},
		{"log_level": "loud"},
		{"move_timeout": 0},
		{"candidate_movetime": -1},
		{"candidate_depth": -2},
		{"games": -1},
	}
	for _, overrides := range tests {
		var _, err = Load("", overrides)
		require.Error(t, err, overrides)
	}
}

func TestMissingFile(t *testing.T) {
	var _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestRatingsFile(t *testing.T) {
	var _, err = (&Config{RatingsFile: filepath.Join(t.TempDir(), "none.yaml")}).Ratings()
	require.Error(t, err)
}

func TestBareGo(t *testing.T) {
	var cfg, err = Load("", map[string]any{"candidate_movetime": 0})
	require.NoError(t, err)
	require.Equal(t, uci.Limits{}, cfg.CandidateLimits())
	require.Equal(t, "go", cfg.CandidateLimits().String())
}
