/*
match.go - The match aggregate: two teams, a format, two innings

PURPOSE:
  A match fixes the format at creation (overs limit, players per team,
  bowler quota - immutable afterwards) and owns an ordered list of at
  most two innings. The second innings chases first-innings runs + 1.
*/
package engine

import (
	"fmt"
	"time"
)

// Team is a roster of eligible players as supplied by the club's
// team-management collaborator.
type Team struct {
	ID      TeamID
	Name    string
	Players []PlayerID
}

// Match binds two teams to a format and holds the innings in order.
type Match struct {
	ID        MatchID
	Format    MatchFormat
	Teams     [2]Team
	Innings   []*Innings
	CreatedAt time.Time
}

// NewMatch validates the format and rosters and creates the match.
func NewMatch(id MatchID, f MatchFormat, home, away Team) (*Match, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if home.ID == "" || away.ID == "" || home.ID == away.ID {
		return nil, fmt.Errorf("%w: a match needs two distinct teams", ErrInvalidFormat)
	}
	for _, t := range []Team{home, away} {
		if len(t.Players) != f.PlayersPerTeam {
			return nil, fmt.Errorf("%w: team %s has %d players, format requires %d",
				ErrInvalidRoster, t.ID, len(t.Players), f.PlayersPerTeam)
		}
		seen := make(map[PlayerID]bool, len(t.Players))
		for _, p := range t.Players {
			if p == "" || seen[p] {
				return nil, &RosterError{Player: p, Team: t.ID, Role: "unique squad member"}
			}
			seen[p] = true
		}
	}
	return &Match{
		ID:        id,
		Format:    f,
		Teams:     [2]Team{home, away},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Team returns the named team's roster.
func (m *Match) Team(id TeamID) (Team, bool) {
	for _, t := range m.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// StartInnings opens the next innings of the match. The second innings may
// only start once the first is closed, must invert the batting side, and
// receives first-innings runs + 1 as its target.
func (m *Match) StartInnings(id InningsID, battingTeam, bowlingTeam TeamID) (*Innings, error) {
	batting, ok := m.Team(battingTeam)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotInMatch, battingTeam)
	}
	bowling, ok := m.Team(bowlingTeam)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotInMatch, bowlingTeam)
	}
	if battingTeam == bowlingTeam {
		return nil, fmt.Errorf("%w: a team cannot bat against itself", ErrTeamNotInMatch)
	}

	target := 0
	switch len(m.Innings) {
	case 0:
	case 1:
		first := m.Innings[0]
		if first.Status() != StatusClosed {
			return nil, ErrPreviousInningsOpen
		}
		if battingTeam == first.BattingTeam {
			return nil, fmt.Errorf("%w: %s already batted", ErrTeamNotInMatch, battingTeam)
		}
		target = ComputeTotals(first.Ledger()).Runs + 1
	default:
		return nil, ErrMatchComplete
	}

	in := NewInnings(id, m.ID, m.Format, batting, bowling, target)
	m.Innings = append(m.Innings, in)
	return in, nil
}
