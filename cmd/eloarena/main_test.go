package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestOverrides(t *testing.T) {
	var got map[string]any
	var app = newApp()
	app.Commands[0].Action = func(c *cli.Context) error {
		got = overrides(c)
		return nil
	}
	var err = app.Run([]string{"eloarena", "--log-level", "debug", "--move-timeout", "3s",
		"estimate", "--engine", "./counter", "--max-games", "8"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"log_level":    "debug",
		"move_timeout": 3 * time.Second,
		"engine":       "./counter",
		"max_games":    8,
	}, got)
}

func TestEstimateNeedsEngine(t *testing.T) {
	var err = newApp().RunContext(context.Background(), []string{"eloarena", "--game-log", "", "estimate"})
	require.ErrorContains(t, err, "no path for engine candidate")
}

func TestBadConfig(t *testing.T) {
	var err = newApp().Run([]string{"eloarena", "match", "--games", "-1"})
	require.Error(t, err)
}
