/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Structural validation (missing fields, bad enum strings) happens in the
  handlers; the engine re-validates every domain rule, so nothing slips
  through even if a handler is lax.
*/
package api

import (
	"time"

	"github.com/pavilion/scoring-engine/engine"
)

// =============================================================================
// FORMATS / TEAMS / MATCHES
// =============================================================================

// FormatDTO represents a match format.
type FormatDTO struct {
	Name              string `json:"name"`
	Overs             int    `json:"overs"`
	PlayersPerTeam    int    `json:"players_per_team"`
	MaxOversPerBowler int    `json:"max_overs_per_bowler"`
}

func toFormatDTO(f engine.MatchFormat) FormatDTO {
	return FormatDTO{
		Name:              f.Name,
		Overs:             f.OversLimit,
		PlayersPerTeam:    f.PlayersPerTeam,
		MaxOversPerBowler: f.MaxOversPerBowler,
	}
}

func (d FormatDTO) toFormat() engine.MatchFormat {
	return engine.MatchFormat{
		Name:              d.Name,
		OversLimit:        d.Overs,
		PlayersPerTeam:    d.PlayersPerTeam,
		MaxOversPerBowler: d.MaxOversPerBowler,
	}
}

// TeamDTO represents a team roster.
type TeamDTO struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Players []string `json:"players"`
}

func (d TeamDTO) toTeam() engine.Team {
	players := make([]engine.PlayerID, len(d.Players))
	for i, p := range d.Players {
		players[i] = engine.PlayerID(p)
	}
	return engine.Team{ID: engine.TeamID(d.ID), Name: d.Name, Players: players}
}

func toTeamDTO(t engine.Team) TeamDTO {
	players := make([]string, len(t.Players))
	for i, p := range t.Players {
		players[i] = string(p)
	}
	return TeamDTO{ID: string(t.ID), Name: t.Name, Players: players}
}

// StartMatchRequest creates a match. Format names a preset from the loaded
// format list; custom_format supplies an ad-hoc one instead.
type StartMatchRequest struct {
	Format       string     `json:"format,omitempty"`
	CustomFormat *FormatDTO `json:"custom_format,omitempty"`
	Home         TeamDTO    `json:"home"`
	Away         TeamDTO    `json:"away"`
}

// MatchDTO represents a match in API responses.
type MatchDTO struct {
	ID        string              `json:"id"`
	Format    FormatDTO           `json:"format"`
	Teams     []TeamDTO           `json:"teams"`
	Innings   []InningsSummaryDTO `json:"innings"`
	CreatedAt string              `json:"created_at"`
}

func toMatchDTO(m *engine.Match) MatchDTO {
	dto := MatchDTO{
		ID:        string(m.ID),
		Format:    toFormatDTO(m.Format),
		Teams:     []TeamDTO{toTeamDTO(m.Teams[0]), toTeamDTO(m.Teams[1])},
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	for _, in := range m.Innings {
		dto.Innings = append(dto.Innings, toSummaryDTO(in.Summary()))
	}
	return dto
}

// =============================================================================
// INNINGS OPERATIONS
// =============================================================================

// StartInningsRequest opens the next innings of a match.
type StartInningsRequest struct {
	BattingTeam string `json:"batting_team"`
	BowlingTeam string `json:"bowling_team"`
}

// SetBatsmenRequest serves both flows: striker+non_striker names the
// openers, batsman alone supplies the replacement after a wicket.
type SetBatsmenRequest struct {
	Striker    string `json:"striker,omitempty"`
	NonStriker string `json:"non_striker,omitempty"`
	Batsman    string `json:"batsman,omitempty"`
}

// SetBowlerRequest names the bowler for the next delivery.
type SetBowlerRequest struct {
	Bowler string `json:"bowler"`
}

// RecordBallRequest is one delivery as entered by the scorer. extra_runs
// are the runs beyond the automatic wide/no-ball penalty.
type RecordBallRequest struct {
	Runs      int    `json:"runs"`
	Extra     string `json:"extra,omitempty"`
	ExtraRuns int    `json:"extra_runs,omitempty"`
	Wicket    string `json:"wicket,omitempty"`
	Dismissed string `json:"dismissed,omitempty"`
}

func (r RecordBallRequest) toProposal() engine.BallProposal {
	return engine.BallProposal{
		Runs:      r.Runs,
		Extra:     engine.ExtraKind(r.Extra),
		ExtraRuns: r.ExtraRuns,
		Wicket:    engine.DismissalType(r.Wicket),
		Dismissed: engine.PlayerID(r.Dismissed),
	}
}

// =============================================================================
// OUTCOMES AND SUMMARIES
// =============================================================================

// BallOutcomeDTO reports what a recorded ball did.
type BallOutcomeDTO struct {
	Seq            int               `json:"seq"`
	OverComplete   bool              `json:"over_complete"`
	WicketFell     bool              `json:"wicket_fell"`
	CreditedBowler string            `json:"credited_bowler,omitempty"`
	InningsClosed  bool              `json:"innings_closed"`
	ClosedReason   string            `json:"closed_reason,omitempty"`
	Summary        InningsSummaryDTO `json:"summary"`
}

func toOutcomeDTO(out engine.BallOutcome) BallOutcomeDTO {
	return BallOutcomeDTO{
		Seq:            out.Ball.Seq,
		OverComplete:   out.OverComplete,
		WicketFell:     out.WicketFell,
		CreditedBowler: string(out.CreditedBowler),
		InningsClosed:  out.InningsClosed,
		ClosedReason:   string(out.ClosedReason),
		Summary:        toSummaryDTO(out.Summary),
	}
}

// BatsmanDTO is one line of the batting card.
type BatsmanDTO struct {
	Player    string `json:"player"`
	Runs      int    `json:"runs"`
	Balls     int    `json:"balls"`
	Fours     int    `json:"fours"`
	Sixes     int    `json:"sixes"`
	HowOut    string `json:"how_out"`
	OutBowler string `json:"out_bowler,omitempty"`
}

// BowlerDTO is one line of the bowling figures.
type BowlerDTO struct {
	Player  string `json:"player"`
	Overs   string `json:"overs"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Maidens int    `json:"maidens"`
}

// InningsSummaryDTO is the live-screen read model.
type InningsSummaryDTO struct {
	InningsID       string       `json:"innings_id"`
	BattingTeam     string       `json:"batting_team"`
	BowlingTeam     string       `json:"bowling_team"`
	Status          string       `json:"status"`
	ClosedReason    string       `json:"closed_reason,omitempty"`
	Runs            int          `json:"runs"`
	Wickets         int          `json:"wickets"`
	LegalBalls      int          `json:"legal_balls"`
	Overs           string       `json:"overs"`
	RunRate         float64      `json:"run_rate"`
	Target          int          `json:"target,omitempty"`
	RequiredRunRate *float64     `json:"required_run_rate,omitempty"`
	Striker         string       `json:"striker,omitempty"`
	NonStriker      string       `json:"non_striker,omitempty"`
	Bowler          string       `json:"bowler,omitempty"`
	Batting         []BatsmanDTO `json:"batting"`
	Bowling         []BowlerDTO  `json:"bowling"`
}

func toSummaryDTO(s engine.Summary) InningsSummaryDTO {
	rr, _ := s.RunRate.Float64()
	dto := InningsSummaryDTO{
		InningsID:    string(s.InningsID),
		BattingTeam:  string(s.BattingTeam),
		BowlingTeam:  string(s.BowlingTeam),
		Status:       string(s.Status),
		ClosedReason: string(s.Closed),
		Runs:         s.Runs,
		Wickets:      s.Wickets,
		LegalBalls:   s.LegalBalls,
		Overs:        s.Overs,
		RunRate:      rr,
		Target:       s.Target,
		Striker:      string(s.Striker),
		NonStriker:   string(s.NonStriker),
		Bowler:       string(s.Bowler),
	}
	if s.RequiredRunRate != nil {
		rrr, _ := s.RequiredRunRate.Float64()
		dto.RequiredRunRate = &rrr
	}
	for _, b := range s.Batting {
		line := BatsmanDTO{
			Player: string(b.Player),
			Runs:   b.Runs,
			Balls:  b.Balls,
			Fours:  b.Fours,
			Sixes:  b.Sixes,
			HowOut: "not out",
		}
		if b.Dismissal != nil {
			line.HowOut = string(b.Dismissal.Type)
			line.OutBowler = string(b.Dismissal.Bowler)
		}
		dto.Batting = append(dto.Batting, line)
	}
	for _, b := range s.Bowling {
		dto.Bowling = append(dto.Bowling, BowlerDTO{
			Player:  string(b.Player),
			Overs:   b.Overs(),
			Runs:    b.Runs,
			Wickets: b.Wickets,
			Maidens: b.Maidens,
		})
	}
	return dto
}

// SyncFailureDTO surfaces a backend write that exhausted its retries.
type SyncFailureDTO struct {
	InningsID string `json:"innings_id"`
	Seq       int    `json:"seq"`
	Desc      string `json:"desc"`
	Error     string `json:"error"`
	At        string `json:"at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
