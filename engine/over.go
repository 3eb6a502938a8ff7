/*
over.go - Over and legal-ball tracking

PURPOSE:
  Derives over/ball-within-over counters from the stream of ball records
  and decides when an over is complete. Wides and no-balls add runs but
  never advance the over; exactly six legal deliveries complete it.
*/
package engine

// OverState tracks progress through the current over.
type OverState struct {
	// BallsInOver is the count of legal deliveries so far in the current
	// over, always in [0, 6). Reaching 6 is the over-completion transition,
	// which resets it to 0.
	BallsInOver int
	// Completed is the number of finished overs this innings.
	Completed int
}

// applyLegal advances the over by one legal delivery and reports whether
// that delivery completed the over.
func (o *OverState) applyLegal() (overComplete bool) {
	o.BallsInOver++
	if o.BallsInOver == BallsPerOver {
		o.BallsInOver = 0
		o.Completed++
		return true
	}
	return false
}

// LegalBalls is the total legal deliveries bowled this innings.
func (o OverState) LegalBalls() int {
	return o.Completed*BallsPerOver + o.BallsInOver
}

// Overs renders progress in overs.balls notation, e.g. "16.4".
func (o OverState) Overs() string { return OversString(o.LegalBalls()) }

// LegalBallsInOver counts legal deliveries since the last over boundary in
// a ledger slice. This is the stateless form used by the aggregator and by
// tests to cross-check the incremental counter.
func LegalBallsInOver(balls []BallRecord) int {
	n := 0
	for _, b := range balls {
		if b.IsLegal() {
			n = (n + 1) % BallsPerOver
		}
	}
	return n
}
