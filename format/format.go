/*
Package format provides match-format presets and TOML file loading.

PURPOSE:
  Converts format definitions into engine.MatchFormat values. Clubs play
  more than one flavor of limited-overs cricket; an administrator can
  describe a house format in a TOML file without a code change, the same
  way the built-in presets are described here.

FILE SCHEMA:
  [[format]]
  name = "Sunday 10-over bash"
  overs = 10
  players_per_team = 8
  max_overs_per_bowler = 2

USAGE:
  formats := format.Defaults()
  extra, err := format.Load("formats.toml")
*/
package format

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/pavilion/scoring-engine/engine"
)

// T20 is the standard twenty-over format.
func T20() engine.MatchFormat {
	return engine.MatchFormat{
		Name:              "T20",
		OversLimit:        20,
		PlayersPerTeam:    11,
		MaxOversPerBowler: 4,
	}
}

// OneDay is the fifty-over format.
func OneDay() engine.MatchFormat {
	return engine.MatchFormat{
		Name:              "One Day",
		OversLimit:        50,
		PlayersPerTeam:    11,
		MaxOversPerBowler: 10,
	}
}

// Defaults returns the built-in presets.
func Defaults() []engine.MatchFormat {
	return []engine.MatchFormat{T20(), OneDay()}
}

// file is the TOML document shape.
type file struct {
	Formats []definition `toml:"format"`
}

type definition struct {
	Name              string `toml:"name"`
	Overs             int    `toml:"overs"`
	PlayersPerTeam    int    `toml:"players_per_team"`
	MaxOversPerBowler int    `toml:"max_overs_per_bowler"`
}

// Load reads additional formats from a TOML file. Every entry is validated
// with the engine's format rules before being returned.
func Load(path string) ([]engine.MatchFormat, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to read formats file %s: %w", path, err)
	}

	out := make([]engine.MatchFormat, 0, len(f.Formats))
	for _, d := range f.Formats {
		mf := engine.MatchFormat{
			Name:              d.Name,
			OversLimit:        d.Overs,
			PlayersPerTeam:    d.PlayersPerTeam,
			MaxOversPerBowler: d.MaxOversPerBowler,
		}
		if d.Name == "" {
			return nil, fmt.Errorf("%w: format entries need a name", engine.ErrInvalidFormat)
		}
		if err := mf.Validate(); err != nil {
			return nil, fmt.Errorf("format %q: %w", d.Name, err)
		}
		out = append(out, mf)
	}
	return out, nil
}

// ByName finds a format in a list, case-sensitively.
func ByName(formats []engine.MatchFormat, name string) (engine.MatchFormat, bool) {
	for _, f := range formats {
		if f.Name == name {
			return f, true
		}
	}
	return engine.MatchFormat{}, false
}
