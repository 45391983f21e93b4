package game

import (
	"context"
	"strconv"

	"github.com/ChizhovVadim/eloarena/internal/strength"
	"github.com/ChizhovVadim/eloarena/pkg/uci"
)

// Player is one side of a game.
type Player interface {
	Name() string
	NewGame(ctx context.Context) error
	Move(ctx context.Context, moves []string) (string, error)
}

// Engine is the part of uci.Client used by the players.
type Engine interface {
	Name() string
	ResetGame(ctx context.Context) error
	SetOption(name, value string) error
	RequestMove(ctx context.Context, moves []string, limits uci.Limits) (string, error)
}

// EnginePlayer searches every move with the same limits.
type EnginePlayer struct {
	Engine Engine
	Limits uci.Limits
}

func (p *EnginePlayer) Name() string {
	return p.Engine.Name()
}

func (p *EnginePlayer) NewGame(ctx context.Context) error {
	return p.Engine.ResetGame(ctx)
}

func (p *EnginePlayer) Move(ctx context.Context, moves []string) (string, error) {
	return p.Engine.RequestMove(ctx, moves, p.Limits)
}

// ReferencePlayer plays at a given strength. The skill option is sent
// before every move.
type ReferencePlayer struct {
	Engine      Engine
	Strength    strength.Strength
	SkillOption string
}

func (p *ReferencePlayer) Name() string {
	return p.Engine.Name()
}

func (p *ReferencePlayer) NewGame(ctx context.Context) error {
	return p.Engine.ResetGame(ctx)
}

func (p *ReferencePlayer) Move(ctx context.Context, moves []string) (string, error) {
	if p.SkillOption != "" {
		if err := p.Engine.SetOption(p.SkillOption, strconv.Itoa(p.Strength.Skill)); err != nil {
			return "", err
		}
	}
	return p.Engine.RequestMove(ctx, moves, p.Strength.Limits())
}
