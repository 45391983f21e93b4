// Package strength maps a rating to the settings of the reference engine.
package strength

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChizhovVadim/eloarena/pkg/uci"
)

//go:embed ratings.yaml
var defaultRatings []byte

var ErrRatingOutOfRange = errors.New("rating out of range")

type Tier struct {
	Skill  int `yaml:"skill"`
	Rating int `yaml:"rating"`
}

type FineEntry struct {
	Rating   int `yaml:"rating"`
	MoveTime int `yaml:"movetime"`
	Depth    int `yaml:"depth"`
}

type Table struct {
	Threshold int         `yaml:"threshold"`
	MoveTime  int         `yaml:"movetime"`
	MinSkill  int         `yaml:"min_skill"`
	Tiers     []Tier      `yaml:"tiers"`
	Fine      []FineEntry `yaml:"fine"`
}

// Strength is the reference engine configuration for one game.
type Strength struct {
	Rating   int
	Skill    int
	MoveTime time.Duration
	Depth    int
}

func (s Strength) Limits() uci.Limits {
	return uci.Limits{
		MoveTime: int(s.MoveTime / time.Millisecond),
		Depth:    s.Depth,
	}
}

func (s Strength) String() string {
	return fmt.Sprintf("rating %v skill %v movetime %v depth %v", s.Rating, s.Skill, s.MoveTime, s.Depth)
}

func Default() *Table {
	var t, err = Parse(defaultRatings)
	if err != nil {
		panic(err)
	}
	return t
}

func Load(path string) (*Table, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return t, nil
}

func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) validate() error {
	if len(t.Tiers) == 0 {
		return errors.New("rating table has no tiers")
	}
	for i := 1; i < len(t.Tiers); i++ {
		if t.Tiers[i].Rating <= t.Tiers[i-1].Rating || t.Tiers[i].Skill <= t.Tiers[i-1].Skill {
			return fmt.Errorf("tiers are not monotonic at skill %v", t.Tiers[i].Skill)
		}
	}
	for i := 1; i < len(t.Fine); i++ {
		if t.Fine[i].Rating <= t.Fine[i-1].Rating {
			return fmt.Errorf("fine table is not sorted at rating %v", t.Fine[i].Rating)
		}
	}
	if len(t.Fine) != 0 && t.Fine[0].Rating >= t.Threshold {
		return errors.New("fine table starts above threshold")
	}
	return nil
}

// Lookup returns the settings for rating. At or above the threshold the
// nearest tier wins (the lower one on ties). Below it the greatest fine
// entry not above rating is used.
func (t *Table) Lookup(rating int) (Strength, error) {
	if rating >= t.Threshold || len(t.Fine) == 0 {
		var best = t.Tiers[0]
		for _, tier := range t.Tiers[1:] {
			if abs(tier.Rating-rating) < abs(best.Rating-rating) {
				best = tier
			}
		}
		return Strength{
			Rating:   rating,
			Skill:    best.Skill,
			MoveTime: time.Duration(t.MoveTime) * time.Millisecond,
		}, nil
	}
	var found = -1
	for i := range t.Fine {
		if t.Fine[i].Rating <= rating {
			found = i
		}
	}
	if found == -1 {
		return Strength{}, fmt.Errorf("%w: %v is below %v", ErrRatingOutOfRange, rating, t.Fine[0].Rating)
	}
	var entry = t.Fine[found]
	return Strength{
		Rating:   rating,
		Skill:    t.MinSkill,
		MoveTime: time.Duration(entry.MoveTime) * time.Millisecond,
		Depth:    entry.Depth,
	}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
