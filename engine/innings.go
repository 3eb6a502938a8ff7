/*
innings.go - The innings aggregate and its state machine

PURPOSE:
  Owns one innings end to end: the ball ledger, the derived batting /
  bowling / over state, and the status transitions

    AwaitingOpeners -> Live <-> OverBoundary -> Closed
                         \-> AwaitingBatsman -/

  All mutation flows through RecordBall and UndoLastBall; there is no
  ambient assignment. Consumers read via Summary(), a pure view over the
  current ledger.

VALIDATION BEFORE MUTATION:
  Every precondition (openers named, bowler named, over change done,
  replacement batter in, quota intact, dismissal targets the crease) is
  checked before the ledger is touched. A rejected ball leaves the
  innings byte-for-byte unchanged.

UNDO:
  Undo pops the ledger and replays the remainder through the same apply
  path used for live scoring. The crease and bowler as they stood before
  the undone ball are carried on the removed record itself, so nothing
  beyond the ledger is needed to restore them. A fingerprint taken
  before each append is compared after replay; a mismatch poisons the
  innings and every further mutation returns ErrReplayDivergence.
*/
package engine

// Innings is the aggregate for one team's turn at batting.
type Innings struct {
	ID          InningsID
	MatchID     MatchID
	BattingTeam TeamID
	BowlingTeam TeamID
	Format      MatchFormat

	// Target is first-innings runs + 1 for a chase, 0 for a first innings.
	Target int

	ledger  *BallLedger
	batting *BattingState
	bowling *BowlingState
	over    OverState
	totals  Totals

	status   Status
	closed   ClosedReason
	poisoned bool

	battingRoster map[PlayerID]bool
	bowlingRoster map[PlayerID]bool

	// fingerprint of derived state before each appended ball, parallel to
	// the ledger; consumed by the defensive check in UndoLastBall.
	snapshots []snapshot
}

type snapshot struct {
	Totals      Totals
	Striker     PlayerID
	NonStriker  PlayerID
	Bowler      PlayerID
	BallsInOver int
	Completed   int
}

// BallOutcome reports what a recorded ball did to the innings.
type BallOutcome struct {
	Ball           BallRecord
	OverComplete   bool
	WicketFell     bool
	CreditedBowler PlayerID
	InningsClosed  bool
	ClosedReason   ClosedReason
	Summary        Summary
}

// NewInnings creates an innings in AwaitingOpeners. Rosters come from the
// match; the innings never accepts a player outside them.
func NewInnings(id InningsID, matchID MatchID, f MatchFormat, batting, bowling Team, target int) *Innings {
	in := &Innings{
		ID:            id,
		MatchID:       matchID,
		BattingTeam:   batting.ID,
		BowlingTeam:   bowling.ID,
		Format:        f,
		Target:        target,
		ledger:        NewBallLedger(),
		batting:       newBattingState(),
		bowling:       newBowlingState(),
		status:        StatusAwaitingOpeners,
		battingRoster: make(map[PlayerID]bool, len(batting.Players)),
		bowlingRoster: make(map[PlayerID]bool, len(bowling.Players)),
	}
	for _, p := range batting.Players {
		in.battingRoster[p] = true
	}
	for _, p := range bowling.Players {
		in.bowlingRoster[p] = true
	}
	return in
}

// Status returns the current state-machine position.
func (in *Innings) Status() Status { return in.status }

// ClosedReason reports why the innings ended, if it has.
func (in *Innings) ClosedReason() ClosedReason { return in.closed }

// Ledger returns a copy of the recorded balls.
func (in *Innings) Ledger() []BallRecord { return in.ledger.Balls() }

// =============================================================================
// ROSTER ASSIGNMENT
// =============================================================================

// SetBatsmen names the two openers. Only valid before the first ball; once
// the innings is underway, batters change via SetBatsman after a wicket.
func (in *Innings) SetBatsmen(striker, nonStriker PlayerID) error {
	if err := in.guardMutable(); err != nil {
		return err
	}
	if in.ledger.Len() > 0 || in.batting.AwaitingReplacement() {
		return ErrOpenersAlreadySet
	}
	if striker == nonStriker {
		return &RosterError{Player: striker, Team: in.BattingTeam, Role: "pair (striker and non-striker must differ)"}
	}
	for _, p := range []PlayerID{striker, nonStriker} {
		if !in.battingRoster[p] {
			return &RosterError{Player: p, Team: in.BattingTeam, Role: "batsman"}
		}
	}
	in.batting.Striker = striker
	in.batting.NonStriker = nonStriker
	in.refreshStatus()
	return nil
}

// SetBatsman supplies the replacement after a dismissal.
func (in *Innings) SetBatsman(p PlayerID) error {
	if err := in.guardMutable(); err != nil {
		return err
	}
	if !in.batting.AwaitingReplacement() {
		return ErrNoReplacementDue
	}
	if !in.battingRoster[p] {
		return &RosterError{Player: p, Team: in.BattingTeam, Role: "batsman"}
	}
	if r, ok := in.batting.Record(p); ok && r.Dismissal != nil {
		return &RosterError{Player: p, Team: in.BattingTeam, Role: "batsman (already dismissed)"}
	}
	if in.batting.AtCrease(p) {
		return &RosterError{Player: p, Team: in.BattingTeam, Role: "batsman (already at the crease)"}
	}
	in.batting.setReplacement(p)
	in.refreshStatus()
	return nil
}

// SetBowler names the bowler for the next delivery. Rejected when the quota
// is spent or when it would give the previous over's bowler back-to-back
// overs.
func (in *Innings) SetBowler(p PlayerID) error {
	if err := in.guardMutable(); err != nil {
		return err
	}
	if !in.bowlingRoster[p] {
		return &RosterError{Player: p, Team: in.BowlingTeam, Role: "bowler"}
	}
	if err := in.bowling.setBowler(p, in.Format); err != nil {
		return err
	}
	in.refreshStatus()
	return nil
}

// SwapBatsmen exchanges striker and non-striker. A pure correction for a
// running mix-up: no ledger entry, no effect on the over tracker.
func (in *Innings) SwapBatsmen() error {
	if err := in.guardMutable(); err != nil {
		return err
	}
	if !in.batting.Ready() {
		return ErrBatsmenNotSet
	}
	in.batting.rotate()
	return nil
}

// =============================================================================
// RECORD BALL
// =============================================================================

// RecordBall validates the proposal against current state, appends it to
// the ledger, and applies it to the derived state. On any error the ledger
// and derived state are untouched.
func (in *Innings) RecordBall(p BallProposal) (BallOutcome, error) {
	b, err := in.validateProposal(p)
	if err != nil {
		return BallOutcome{}, err
	}

	in.snapshots = append(in.snapshots, in.fingerprint())
	b = in.ledger.Append(b)
	out := in.apply(b)
	out.Summary = in.Summary()
	return out, nil
}

func (in *Innings) guardMutable() error {
	if in.poisoned {
		return ErrReplayDivergence
	}
	if in.status == StatusClosed {
		return ErrInningsClosed
	}
	return nil
}

// validateProposal checks every precondition and, on success, builds the
// ball record with the current crease and bowler stamped in.
func (in *Innings) validateProposal(p BallProposal) (BallRecord, error) {
	var zero BallRecord
	if err := in.guardMutable(); err != nil {
		return zero, err
	}
	if !in.batting.Ready() {
		if in.batting.AwaitingReplacement() {
			return zero, ErrBatsmanRequired
		}
		return zero, ErrBatsmenNotSet
	}
	if in.bowling.ChangeRequired {
		return zero, ErrOverChangeRequired
	}
	bowler := in.bowling.Current
	if bowler == "" {
		return zero, ErrBowlerNotSet
	}
	if bowler == in.batting.Striker || bowler == in.batting.NonStriker {
		return zero, errInvalidBall("bowler cannot also be at the crease")
	}
	if err := in.bowling.checkQuota(bowler, in.Format); err != nil {
		return zero, err
	}

	if p.Runs < 0 || p.ExtraRuns < 0 {
		return zero, errInvalidBall("runs cannot be negative")
	}
	if !p.Extra.Valid() {
		return zero, errInvalidBall("unknown extra kind %q", p.Extra)
	}

	var extra Extra
	switch p.Extra {
	case ExtraNone:
		if p.ExtraRuns != 0 {
			return zero, errInvalidBall("extra runs on a delivery with no extra")
		}
	case ExtraWide:
		if p.Runs != 0 {
			return zero, errInvalidBall("no runs off the bat on a wide")
		}
		extra = Extra{Kind: ExtraWide, Runs: 1 + p.ExtraRuns}
	case ExtraNoBall:
		extra = Extra{Kind: ExtraNoBall, Runs: 1 + p.ExtraRuns}
	case ExtraBye, ExtraLegBye:
		if p.Runs != 0 {
			return zero, errInvalidBall("byes are not credited off the bat")
		}
		if p.ExtraRuns < 1 {
			return zero, errInvalidBall("a %s requires at least one run", p.Extra)
		}
		extra = Extra{Kind: p.Extra, Runs: p.ExtraRuns}
	}

	var wicket *Wicket
	if p.Wicket != "" {
		if !p.Wicket.Valid() {
			return zero, errInvalidBall("unknown dismissal type %q", p.Wicket)
		}
		dismissed := p.Dismissed
		if dismissed == "" {
			dismissed = in.batting.Striker
		}
		if !in.batting.AtCrease(dismissed) {
			return zero, &DismissalError{Type: p.Wicket, Dismissed: dismissed, Reason: "player is not at the crease"}
		}
		if !p.Wicket.EitherEnd() && dismissed != in.batting.Striker {
			return zero, &DismissalError{Type: p.Wicket, Dismissed: dismissed, Reason: "only the striker can be out this way"}
		}
		wicket = &Wicket{Type: p.Wicket, Dismissed: dismissed}
	}

	return BallRecord{
		Bowler:     bowler,
		Striker:    in.batting.Striker,
		NonStriker: in.batting.NonStriker,
		Runs:       p.Runs,
		Extra:      extra,
		Wicket:     wicket,
	}, nil
}

// apply is the single update path shared by live scoring and replay.
// Records reaching it have already been validated, so it cannot fail.
func (in *Innings) apply(b BallRecord) BallOutcome {
	in.batting.applyBall(b)
	in.bowling.applyBall(b)

	overComplete := false
	if b.IsLegal() {
		overComplete = in.over.applyLegal()
	}
	if overComplete {
		// Over-end rotation is unconditional and evaluated after the
		// runs-based rotation; the two do not cancel.
		in.batting.rotate()
		in.bowling.completeOver(b.Bowler)
	}

	var credited PlayerID
	if b.Wicket != nil {
		credited = in.bowling.creditWicket(b)
		in.batting.dismiss(*b.Wicket, credited)
	}

	in.totals.Runs += b.TotalRuns()
	if b.IsLegal() {
		in.totals.LegalBalls++
	}
	if b.Wicket != nil {
		in.totals.Wickets++
	}

	in.checkClosure()
	in.refreshStatus()

	return BallOutcome{
		Ball:           b,
		OverComplete:   overComplete,
		WicketFell:     b.Wicket != nil,
		CreditedBowler: credited,
		InningsClosed:  in.status == StatusClosed,
		ClosedReason:   in.closed,
	}
}

func (in *Innings) checkClosure() {
	switch {
	case in.Target > 0 && in.totals.Runs >= in.Target:
		in.close(ClosedTargetReached)
	case in.totals.Wickets >= in.Format.WicketsToClose():
		in.close(ClosedAllOut)
	case in.totals.LegalBalls >= in.Format.BallsLimit():
		in.close(ClosedOversExhausted)
	}
}

func (in *Innings) close(reason ClosedReason) {
	in.status = StatusClosed
	in.closed = reason
}

func (in *Innings) refreshStatus() {
	if in.status == StatusClosed {
		return
	}
	switch {
	case in.batting.AwaitingReplacement():
		in.status = StatusAwaitingBatsman
	case in.bowling.ChangeRequired:
		in.status = StatusOverBoundary
	case in.batting.Ready() && in.bowling.Current != "":
		in.status = StatusLive
	default:
		in.status = StatusAwaitingOpeners
	}
}

// =============================================================================
// UNDO
// =============================================================================

// UndoLastBall removes the most recent ball and rebuilds all derived state
// by replaying the truncated ledger from empty. The crease and bowler as
// they stood before the undone ball come from the removed record itself.
func (in *Innings) UndoLastBall() (Summary, error) {
	if in.poisoned {
		return Summary{}, ErrReplayDivergence
	}
	removed, err := in.ledger.TruncateLast()
	if err != nil {
		return Summary{}, err
	}
	want := in.snapshots[len(in.snapshots)-1]
	in.snapshots = in.snapshots[:len(in.snapshots)-1]

	in.rebuild(removed)

	if got := in.fingerprint(); got != want {
		in.poisoned = true
		return Summary{}, ErrReplayDivergence
	}
	return in.Summary(), nil
}

// rebuild replays the remaining ledger through apply and restores the
// roster assignment carried on the removed record.
func (in *Innings) rebuild(removed BallRecord) {
	in.batting = newBattingState()
	in.bowling = newBowlingState()
	in.over = OverState{}
	in.totals = Totals{}
	in.status = StatusAwaitingOpeners
	in.closed = ""

	for _, b := range in.ledger.Balls() {
		in.apply(b)
	}

	in.batting.Striker = removed.Striker
	in.batting.NonStriker = removed.NonStriker
	in.batting.record(removed.Striker)
	in.batting.record(removed.NonStriker)
	in.bowling.Current = removed.Bowler
	in.bowling.ChangeRequired = false
	in.bowling.record(removed.Bowler)
	in.refreshStatus()
}

// Restore rehydrates the innings from the persisted layout: the net ball
// ledger plus the current roster assignment. Replays through the same
// apply path, rebuilding the per-ball fingerprints so undo keeps working.
// nextSeq is forwarded to the ledger so numbering resumes past any voided
// balls the net ledger no longer shows; pass 0 to derive it from the balls.
func (in *Innings) Restore(balls []BallRecord, a Assignment, nextSeq int) {
	in.batting = newBattingState()
	in.bowling = newBowlingState()
	in.over = OverState{}
	in.totals = Totals{}
	in.status = StatusAwaitingOpeners
	in.closed = ""
	in.ledger.Restore(balls, nextSeq)
	in.snapshots = in.snapshots[:0]

	for _, b := range in.ledger.Balls() {
		// The fingerprint before each ball carries the crease/bowler the
		// ball was bowled with, which the record itself preserves.
		in.snapshots = append(in.snapshots, snapshot{
			Totals:      in.totals,
			Striker:     b.Striker,
			NonStriker:  b.NonStriker,
			Bowler:      b.Bowler,
			BallsInOver: in.over.BallsInOver,
			Completed:   in.over.Completed,
		})
		in.apply(b)
	}

	if a.Striker != "" {
		in.batting.Striker = a.Striker
		in.batting.record(a.Striker)
	}
	if a.NonStriker != "" {
		in.batting.NonStriker = a.NonStriker
		in.batting.record(a.NonStriker)
	}
	if a.Bowler != "" {
		in.bowling.Current = a.Bowler
		in.bowling.ChangeRequired = false
		in.bowling.record(a.Bowler)
	}
	in.refreshStatus()
}

func (in *Innings) fingerprint() snapshot {
	return snapshot{
		Totals:      in.totals,
		Striker:     in.batting.Striker,
		NonStriker:  in.batting.NonStriker,
		Bowler:      in.bowling.Current,
		BallsInOver: in.over.BallsInOver,
		Completed:   in.over.Completed,
	}
}

// =============================================================================
// SUMMARY - Pull-model read over the ledger
// =============================================================================

// Summary recomputes totals and rates from the ledger. Nothing here is
// cached across mutations.
func (in *Innings) Summary() Summary {
	balls := in.ledger.Balls()
	t := ComputeTotals(balls)

	s := Summary{
		InningsID:   in.ID,
		BattingTeam: in.BattingTeam,
		BowlingTeam: in.BowlingTeam,
		Status:      in.status,
		Closed:      in.closed,
		Runs:        t.Runs,
		Wickets:     t.Wickets,
		LegalBalls:  t.LegalBalls,
		Overs:       OversString(t.LegalBalls),
		RunRate:     RunRate(t.Runs, t.LegalBalls),
		Target:      in.Target,
		Striker:     in.batting.Striker,
		NonStriker:  in.batting.NonStriker,
		Bowler:      in.bowling.Current,
		Batting:     in.batting.Card(),
		Bowling:     in.bowling.Figures(),
	}
	if in.Target > 0 {
		rrr := RequiredRunRate(in.Target, t.Runs, t.LegalBalls, in.Format.BallsLimit())
		s.RequiredRunRate = &rrr
	}
	return s
}
