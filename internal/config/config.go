// Package config reads harness settings from defaults, an optional YAML
// file, ELOARENA_* environment variables and command line overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ChizhovVadim/eloarena/internal/arena"
	"github.com/ChizhovVadim/eloarena/internal/estimate"
	"github.com/ChizhovVadim/eloarena/internal/gamelog"
	"github.com/ChizhovVadim/eloarena/internal/strength"
	"github.com/ChizhovVadim/eloarena/pkg/uci"
)

const EnvPrefix = "ELOARENA"

type Config struct {
	Engine    string `mapstructure:"engine"`
	Reference string `mapstructure:"reference"`
	Opponent  string `mapstructure:"opponent"`
	Games     int    `mapstructure:"games"`

	MoveTimeout  time.Duration `mapstructure:"move_timeout"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
	QuitTimeout  time.Duration `mapstructure:"quit_timeout"`

	SkillOption string `mapstructure:"skill_option"`
	// Candidate search limits, in milliseconds and plies.
	CandidateMoveTime int `mapstructure:"candidate_movetime"`
	CandidateDepth    int `mapstructure:"candidate_depth"`

	MinRating   int     `mapstructure:"min_rating"`
	MaxRating   int     `mapstructure:"max_rating"`
	Step        int     `mapstructure:"step"`
	Margin      float64 `mapstructure:"margin"`
	MaxFailures int     `mapstructure:"max_failures"`
	MaxGames    int     `mapstructure:"max_games"`
	MaxPlies    int     `mapstructure:"max_plies"`

	RatingsFile   string `mapstructure:"ratings_file"`
	GameLog       string `mapstructure:"game_log"`
	GameLogFormat string `mapstructure:"game_log_format"`
	LogLevel      string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	var search = estimate.DefaultConfig()
	var client = uci.DefaultOptions()
	v.SetDefault("engine", "")
	v.SetDefault("reference", "stockfish")
	v.SetDefault("opponent", "")
	v.SetDefault("games", arena.DefaultConfig().Games)
	v.SetDefault("move_timeout", client.MoveTimeout)
	v.SetDefault("ready_timeout", client.ReadyTimeout)
	v.SetDefault("quit_timeout", client.QuitTimeout)
	v.SetDefault("skill_option", "Skill Level")
	v.SetDefault("candidate_movetime", 1000)
	v.SetDefault("candidate_depth", 0)
	v.SetDefault("min_rating", search.MinRating)
	v.SetDefault("max_rating", search.MaxRating)
	v.SetDefault("step", search.Step)
	v.SetDefault("margin", search.Margin)
	v.SetDefault("max_failures", search.MaxFailures)
	v.SetDefault("max_games", search.MaxGames)
	v.SetDefault("max_plies", 0)
	v.SetDefault("ratings_file", "")
	v.SetDefault("game_log", "games.log")
	v.SetDefault("game_log_format", string(gamelog.FormatText))
	v.SetDefault("log_level", "info")
}

// Load builds the configuration. path may be empty. Non-nil overrides
// take precedence over every other source.
func Load(path string, overrides map[string]any) (*Config, error) {
	var v = viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %v: %w", path, err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MoveTimeout <= 0 || c.ReadyTimeout <= 0 || c.QuitTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.Games < 0 || c.MaxPlies < 0 {
		return fmt.Errorf("games and max_plies must not be negative")
	}
	if c.CandidateMoveTime < 0 || c.CandidateDepth < 0 {
		return fmt.Errorf("candidate_movetime and candidate_depth must not be negative")
	}
	if _, err := gamelog.ParseFormat(c.GameLogFormat); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("bad log_level: %w", err)
	}
	return nil
}

func (c *Config) Level() zerolog.Level {
	var level, err = zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func (c *Config) Search() estimate.Config {
	return estimate.Config{
		MinRating:   c.MinRating,
		MaxRating:   c.MaxRating,
		Step:        c.Step,
		Margin:      c.Margin,
		MaxFailures: c.MaxFailures,
		MaxGames:    c.MaxGames,
	}
}

func (c *Config) Match() arena.Config {
	return arena.Config{
		Games:       c.Games,
		MaxFailures: c.MaxFailures,
	}
}

func (c *Config) ClientOptions(name string, logger zerolog.Logger) uci.Options {
	var options = uci.DefaultOptions()
	options.Name = name
	options.MoveTimeout = c.MoveTimeout
	options.ReadyTimeout = c.ReadyTimeout
	options.QuitTimeout = c.QuitTimeout
	options.Logger = logger
	return options
}

// CandidateLimits is a bare "go" when both limits are zero. The engine then
// decides how long to think, bounded by move_timeout.
func (c *Config) CandidateLimits() uci.Limits {
	return uci.Limits{MoveTime: c.CandidateMoveTime, Depth: c.CandidateDepth}
}

// Ratings returns the rating table from RatingsFile or the built-in one.
func (c *Config) Ratings() (*strength.Table, error) {
	if c.RatingsFile == "" {
		return strength.Default(), nil
	}
	return strength.Load(c.RatingsFile)
}

func (c *Config) LogFormat() gamelog.Format {
	var format, _ = gamelog.ParseFormat(c.GameLogFormat)
	return format
}
