/*
bowling.go - Bowling state: figures, quota, and over-change rules

PURPOSE:
  Tracks the active bowler's figures (legal balls, runs conceded,
  wickets, maidens) and cumulative quota usage per bowler. The quota
  invariant is enforced before the ledger mutates: a bowler is never
  allowed to start a delivery that the format forbids.

WICKET CREDIT:
  A wicket goes on the bowler's figures unless the dismissal is a
  run-out or obstructing the field (no bowler is ever credited), or the
  delivery was a no-ball and the dismissal is one a no-ball protects
  against (bowled, caught, stumped, hit-wicket, LBW). The extra kind is
  carried on the ball record specifically so this decision stays local.
*/
package engine

// BowlingState holds the derived bowling figures and the bowler assignment.
type BowlingState struct {
	Current PlayerID
	// LastOverBowler is who bowled the over that just completed; the same
	// player may not bowl any part of the next one. Cleared once a legal
	// delivery of the new over has been bowled.
	LastOverBowler PlayerID
	// ChangeRequired is set at an over boundary and cleared by SetBowler.
	ChangeRequired bool

	records map[PlayerID]*BowlerRecord
	order   []PlayerID

	// currentOverRuns accumulates runs charged to the bowler in the over
	// in progress, for maiden detection.
	currentOverRuns int
	// currentOverBowler is who started the over in progress; overShared is
	// set when a different bowler finishes it, which forfeits the maiden.
	currentOverBowler PlayerID
	overShared        bool
}

func newBowlingState() *BowlingState {
	return &BowlingState{records: make(map[PlayerID]*BowlerRecord)}
}

func (s *BowlingState) record(p PlayerID) *BowlerRecord {
	if r, ok := s.records[p]; ok {
		return r
	}
	r := &BowlerRecord{Player: p}
	s.records[p] = r
	s.order = append(s.order, p)
	return r
}

// Record returns a copy of the bowler's figures, if the player has bowled.
func (s *BowlingState) Record(p PlayerID) (BowlerRecord, bool) {
	r, ok := s.records[p]
	if !ok {
		return BowlerRecord{}, false
	}
	return *r, true
}

// Figures returns all bowlers' figures in order of first spell.
func (s *BowlingState) Figures() []BowlerRecord {
	out := make([]BowlerRecord, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, *s.records[p])
	}
	return out
}

// LegalBallsBowled returns the bowler's cumulative legal-ball count.
func (s *BowlingState) LegalBallsBowled(p PlayerID) int {
	if r, ok := s.records[p]; ok {
		return r.LegalBalls
	}
	return 0
}

// checkQuota rejects a bowler who has no legal balls left under the format.
func (s *BowlingState) checkQuota(p PlayerID, f MatchFormat) error {
	if used := s.LegalBallsBowled(p); used >= f.MaxBallsPerBowler() {
		return &QuotaError{Bowler: p, LegalBalls: used, MaxBalls: f.MaxBallsPerBowler()}
	}
	return nil
}

// setBowler assigns the bowler for the next delivery, enforcing the quota
// and the consecutive-overs rule. The ban on the previous over's bowler
// holds however many times the selection changes hands before a ball is
// bowled; it lifts only once the new over is underway.
func (s *BowlingState) setBowler(p PlayerID, f MatchFormat) error {
	if err := s.checkQuota(p, f); err != nil {
		return err
	}
	if p == s.LastOverBowler {
		return ErrSameBowlerConsecutiveOvers
	}
	s.Current = p
	s.ChangeRequired = false
	s.record(p)
	return nil
}

// applyBall updates the bowler's figures for one delivery.
func (s *BowlingState) applyBall(b BallRecord) {
	r := s.record(b.Bowler)
	charged := b.BowlerRuns()
	r.Runs += charged
	s.currentOverRuns += charged
	if s.currentOverBowler == "" {
		s.currentOverBowler = b.Bowler
	} else if s.currentOverBowler != b.Bowler {
		s.overShared = true
	}
	if b.IsLegal() {
		r.LegalBalls++
		// The new over is underway; the previous over's bowler ban lifts.
		s.LastOverBowler = ""
	}
}

// creditWicket decides bowler credit for a dismissal on this delivery and
// returns the credited bowler, or "" when no bowler is credited.
func (s *BowlingState) creditWicket(b BallRecord) PlayerID {
	w := b.Wicket
	if w == nil || w.Type.EitherEnd() {
		return ""
	}
	if b.Extra.Kind == ExtraNoBall && w.Type.NoBallProtected() {
		return ""
	}
	s.record(b.Bowler).Wickets++
	return b.Bowler
}

// completeOver closes out the over in progress: maiden detection, the
// mandatory bowler change, and resetting the per-over accumulators. An
// over handed over mid-way is a maiden for nobody, whatever it cost.
func (s *BowlingState) completeOver(bowler PlayerID) {
	if s.currentOverRuns == 0 && !s.overShared {
		s.record(bowler).Maidens++
	}
	s.currentOverRuns = 0
	s.currentOverBowler = ""
	s.overShared = false
	s.LastOverBowler = bowler
	s.Current = ""
	s.ChangeRequired = true
}
