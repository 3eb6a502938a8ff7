/*
Package engine implements the live ball-by-ball scoring engine.

PURPOSE:
  This package contains the core types and state machine for scoring a
  limited-overs cricket innings. The Ball Ledger is the single source of
  truth: every delivery is recorded exactly once, and all other state
  (batting cards, bowling figures, over counters, innings totals) is a
  pure function of the ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - BallRecord: An immutable ledger entry recording one delivery
  - Extra / Wicket: Tagged variants for extras and dismissals
  - MatchFormat: Overs limit, players per team, bowler quota
  - BatsmanRecord / BowlerRecord: Derived per-player innings figures

DESIGN PRINCIPLES:
  1. Immutability: Ball records are never modified, only truncated by undo
  2. Single mutation source: the ledger append is the only write path
  3. Type Safety: Strong typing for IDs prevents mixing player/team IDs
  4. Exhaustiveness: extras and dismissals are closed enumerations, so
     every consumer must handle wide | no-ball | bye | leg-bye | none

SEE ALSO:
  - ledger.go: Ball Ledger append/truncate/replay
  - innings.go: State machine and operation contracts
  - aggregate.go: Totals and run-rate arithmetic
*/
package engine

import "fmt"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type MatchID string
type InningsID string
type TeamID string
type PlayerID string

// =============================================================================
// MATCH FORMAT - Immutable after match creation
// =============================================================================

// MatchFormat fixes the shape of a limited-overs match. The fields are
// immutable once a match is created.
type MatchFormat struct {
	Name              string
	OversLimit        int
	PlayersPerTeam    int
	MaxOversPerBowler int
}

func (f MatchFormat) Validate() error {
	if f.OversLimit <= 0 {
		return fmt.Errorf("%w: overs limit must be positive", ErrInvalidFormat)
	}
	if f.PlayersPerTeam < 2 {
		return fmt.Errorf("%w: need at least two players per team", ErrInvalidFormat)
	}
	if f.MaxOversPerBowler <= 0 || f.MaxOversPerBowler > f.OversLimit {
		return fmt.Errorf("%w: max overs per bowler must be in [1, overs limit]", ErrInvalidFormat)
	}
	return nil
}

// BallsLimit is the number of legal deliveries in a full innings.
func (f MatchFormat) BallsLimit() int { return f.OversLimit * BallsPerOver }

// MaxBallsPerBowler is the bowler quota in legal deliveries.
func (f MatchFormat) MaxBallsPerBowler() int { return f.MaxOversPerBowler * BallsPerOver }

// WicketsToClose is the number of wickets that ends the innings (all out).
func (f MatchFormat) WicketsToClose() int { return f.PlayersPerTeam - 1 }

// BallsPerOver is fixed for the formats this engine supports.
const BallsPerOver = 6

// =============================================================================
// EXTRAS - Tagged variant, ExtraNone means a plain delivery
// =============================================================================

type ExtraKind string

const (
	ExtraNone   ExtraKind = ""
	ExtraWide   ExtraKind = "wide"
	ExtraNoBall ExtraKind = "no_ball"
	ExtraBye    ExtraKind = "bye"
	ExtraLegBye ExtraKind = "leg_bye"
)

// Extra carries the runs attributed to the extra itself. For wides and
// no-balls this includes the automatic one-run penalty.
type Extra struct {
	Kind ExtraKind
	Runs int
}

func (k ExtraKind) Valid() bool {
	switch k {
	case ExtraNone, ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye:
		return true
	}
	return false
}

// =============================================================================
// DISMISSALS
// =============================================================================

type DismissalType string

const (
	DismissalBowled      DismissalType = "bowled"
	DismissalCaught      DismissalType = "caught"
	DismissalLBW         DismissalType = "lbw"
	DismissalStumped     DismissalType = "stumped"
	DismissalHitWicket   DismissalType = "hit_wicket"
	DismissalRunOut      DismissalType = "run_out"
	DismissalObstructing DismissalType = "obstructing_field"
)

func (d DismissalType) Valid() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped,
		DismissalHitWicket, DismissalRunOut, DismissalObstructing:
		return true
	}
	return false
}

// EitherEnd reports whether the dismissal may target the non-striker.
// Everything else must name the batter on strike.
func (d DismissalType) EitherEnd() bool {
	return d == DismissalRunOut || d == DismissalObstructing
}

// NoBallProtected reports whether a no-ball voids the bowler's credit for
// this dismissal type.
func (d DismissalType) NoBallProtected() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalStumped, DismissalHitWicket, DismissalLBW:
		return true
	}
	return false
}

// Wicket records a dismissal on a delivery. Nil on a BallRecord means no
// wicket fell.
type Wicket struct {
	Type      DismissalType
	Dismissed PlayerID
}

// =============================================================================
// BALL RECORD - Atomic, immutable unit of the ledger
// =============================================================================

// BallRecord is one delivery as it entered the ledger. Striker, non-striker
// and bowler are captured as they stood when the ball was bowled, which is
// what makes replay (and undo) deterministic from the ledger alone.
type BallRecord struct {
	Seq        int
	Bowler     PlayerID
	Striker    PlayerID
	NonStriker PlayerID
	Runs       int // off the bat, credited to the striker
	Extra      Extra
	Wicket     *Wicket
}

// IsLegal reports whether the delivery counts toward the six-ball over.
func (b BallRecord) IsLegal() bool {
	return b.Extra.Kind != ExtraWide && b.Extra.Kind != ExtraNoBall
}

// TotalRuns is the amount this delivery adds to the team total.
func (b BallRecord) TotalRuns() int { return b.Runs + b.Extra.Runs }

// BowlerRuns is the amount charged against the bowler: off-bat runs plus
// wides and no-balls. Byes and leg-byes count for the team only.
func (b BallRecord) BowlerRuns() int {
	switch b.Extra.Kind {
	case ExtraWide, ExtraNoBall:
		return b.Runs + b.Extra.Runs
	case ExtraBye, ExtraLegBye:
		return 0
	default:
		return b.Runs
	}
}

// CountsAsBallFaced reports whether the striker's balls-faced tally moves.
// Wides do not count as a ball faced; no-balls do.
func (b BallRecord) CountsAsBallFaced() bool { return b.Extra.Kind != ExtraWide }

// =============================================================================
// BALL PROPOSAL - Input for RecordBall, validated before the ledger mutates
// =============================================================================

// BallProposal describes the next delivery as entered by the scorer. The
// engine fills in striker/non-striker/bowler from current state and
// normalizes the wide/no-ball penalty into the extra runs.
type BallProposal struct {
	Runs      int
	Extra     ExtraKind
	ExtraRuns int // runs beyond the automatic wide/no-ball penalty
	Wicket    DismissalType
	Dismissed PlayerID
}

// =============================================================================
// DERIVED PER-PLAYER RECORDS
// =============================================================================

// Dismissal freezes how a batter got out. An empty Bowler means no bowler
// was credited (run out, obstructing the field, or a protected no-ball).
type Dismissal struct {
	Type   DismissalType
	Bowler PlayerID
}

// BatsmanRecord is a batter's line in the scorecard. Created lazily the
// first time a player appears at the crease, frozen on dismissal.
type BatsmanRecord struct {
	Player    PlayerID
	Runs      int
	Balls     int
	Fours     int
	Sixes     int
	Dismissal *Dismissal // nil while not out
}

// BowlerRecord is a bowler's figures. A maiden requires six legal balls in
// one over with zero runs charged to the bowler; byes and leg-byes are not
// charged to the bowler and therefore do not break a maiden.
type BowlerRecord struct {
	Player     PlayerID
	LegalBalls int
	Runs       int
	Wickets    int
	Maidens    int
}

// Overs renders the bowler's legal balls in overs.balls notation, e.g. "3.4".
func (r BowlerRecord) Overs() string { return OversString(r.LegalBalls) }

// OversString formats a legal-ball count as completed overs plus balls.
func OversString(legalBalls int) string {
	return fmt.Sprintf("%d.%d", legalBalls/BallsPerOver, legalBalls%BallsPerOver)
}

// =============================================================================
// INNINGS STATUS
// =============================================================================

type Status string

const (
	StatusNotStarted      Status = "not_started"
	StatusAwaitingOpeners Status = "awaiting_openers"
	StatusLive            Status = "live"
	StatusOverBoundary    Status = "over_boundary"
	StatusAwaitingBatsman Status = "awaiting_batsman"
	StatusClosed          Status = "closed"
)

type ClosedReason string

const (
	ClosedAllOut         ClosedReason = "all_out"
	ClosedOversExhausted ClosedReason = "overs_exhausted"
	ClosedTargetReached  ClosedReason = "target_reached"
)
