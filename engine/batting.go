/*
batting.go - Batting state: the two batters at the crease

PURPOSE:
  Tracks striker and non-striker, their individual runs/balls/boundaries,
  and strike rotation. Exactly two batters are at the crease while the
  innings is live; a dismissal empties one end until a replacement is
  named.

STRIKE ROTATION:
  Two independent rotations can apply to a single delivery, in order:
  1. Odd off-bat runs swap the batters.
  2. Over completion swaps them again, unconditionally.
  They do not cancel by fiat - the over-boundary rotation is evaluated
  after the runs-based one, so an odd single off the last ball of an
  over leaves the same batter on strike for the next over.
*/
package engine

// BattingState holds the derived batting card and the crease assignment.
type BattingState struct {
	Striker    PlayerID
	NonStriker PlayerID

	records map[PlayerID]*BatsmanRecord
	order   []PlayerID
}

func newBattingState() *BattingState {
	return &BattingState{records: make(map[PlayerID]*BatsmanRecord)}
}

// record returns the batter's card, creating it lazily on first appearance.
func (s *BattingState) record(p PlayerID) *BatsmanRecord {
	if r, ok := s.records[p]; ok {
		return r
	}
	r := &BatsmanRecord{Player: p}
	s.records[p] = r
	s.order = append(s.order, p)
	return r
}

// Record returns a copy of the batter's card, if the player has batted.
func (s *BattingState) Record(p PlayerID) (BatsmanRecord, bool) {
	r, ok := s.records[p]
	if !ok {
		return BatsmanRecord{}, false
	}
	return *r, true
}

// Card returns the batting card in order of appearance.
func (s *BattingState) Card() []BatsmanRecord {
	out := make([]BatsmanRecord, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, *s.records[p])
	}
	return out
}

// AtCrease reports whether the player currently occupies either end.
func (s *BattingState) AtCrease(p PlayerID) bool {
	return p != "" && (p == s.Striker || p == s.NonStriker)
}

// Ready reports whether both ends are occupied.
func (s *BattingState) Ready() bool {
	return s.Striker != "" && s.NonStriker != "" && s.Striker != s.NonStriker
}

// rotate swaps the striker and non-striker.
func (s *BattingState) rotate() {
	s.Striker, s.NonStriker = s.NonStriker, s.Striker
}

// applyBall credits the striker and applies the runs-based rotation.
// Over-boundary rotation is applied separately by the innings, after this.
func (s *BattingState) applyBall(b BallRecord) {
	r := s.record(b.Striker)
	s.record(b.NonStriker)

	r.Runs += b.Runs
	if b.CountsAsBallFaced() {
		r.Balls++
	}
	switch b.Runs {
	case 4:
		r.Fours++
	case 6:
		r.Sixes++
	}

	if b.Runs%2 == 1 {
		s.rotate()
	}
}

// dismiss freezes the dismissed batter's card and empties their end.
// Called after all rotations for the delivery have been applied, so the
// dismissed player is removed from whichever end they finished at.
func (s *BattingState) dismiss(w Wicket, creditedBowler PlayerID) {
	r := s.record(w.Dismissed)
	r.Dismissal = &Dismissal{Type: w.Type, Bowler: creditedBowler}

	switch w.Dismissed {
	case s.Striker:
		s.Striker = ""
	case s.NonStriker:
		s.NonStriker = ""
	}
}

// AwaitingReplacement reports whether a wicket has left an end empty.
func (s *BattingState) AwaitingReplacement() bool {
	return (s.Striker == "") != (s.NonStriker == "")
}

// setReplacement fills the empty end with the incoming batter.
func (s *BattingState) setReplacement(p PlayerID) {
	if s.Striker == "" {
		s.Striker = p
	} else {
		s.NonStriker = p
	}
	s.record(p)
}
