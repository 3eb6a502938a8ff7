/*
ledger.go - Append-only ball ledger

PURPOSE:
  The Ball Ledger is the source of truth for an innings. Every delivery
  is appended exactly once; everything else - batting cards, bowling
  figures, over counters, totals - is derived by folding over it.

CRITICAL INVARIANTS:
  1. APPEND-ONLY during play: records are never modified in place
  2. SEQUENCED: sequence numbers are assigned monotonically from 1 and
     are the idempotency key for backend persistence. A number is never
     handed out twice: an undone ball's seq stays burned, so a later
     correction can never collide with the durable row (or the void
     marker) the undone ball left behind
  3. UNDO = TRUNCATE + REPLAY: the only removal is popping the most
     recent record, after which all derived state is rebuilt by replay
     through the same apply path used for live scoring

WHY TRUNCATE + REPLAY?
  Maintaining inverse deltas for every delivery shape (wide with
  overthrows, run out off a no-ball at the non-striker's end, ...) is a
  breeding ground for undo drift. Replaying a few hundred balls is
  cheap, and forward application is the code path that is tested.

SEE ALSO:
  - innings.go: replayState, the fold that consumes this ledger
  - store.go: durable persistence of the same records
*/
package engine

// BallLedger is the ordered, in-memory sequence of recorded balls for one
// innings. It is the only mutation target in the engine.
type BallLedger struct {
	balls   []BallRecord
	nextSeq int
}

func NewBallLedger() *BallLedger {
	return &BallLedger{nextSeq: 1}
}

// NextSeq is the sequence number the next appended ball will carry.
// Sequence numbers are never reused: undo burns the undone number, so the
// durable void marker keyed by it can never shadow a later correction.
func (l *BallLedger) NextSeq() int { return l.nextSeq }

// Len returns the number of recorded balls.
func (l *BallLedger) Len() int { return len(l.balls) }

// Append stamps the record with the next sequence number and appends it.
// Validation happens before this is called; Append itself cannot fail.
func (l *BallLedger) Append(b BallRecord) BallRecord {
	b.Seq = l.nextSeq
	l.nextSeq++
	l.balls = append(l.balls, b)
	return b
}

// TruncateLast removes and returns the most recent record. The removed
// sequence number stays burned.
func (l *BallLedger) TruncateLast() (BallRecord, error) {
	if len(l.balls) == 0 {
		return BallRecord{}, ErrNothingToUndo
	}
	last := l.balls[len(l.balls)-1]
	l.balls = l.balls[:len(l.balls)-1]
	return last, nil
}

// Last returns the most recent record without removing it.
func (l *BallLedger) Last() (BallRecord, bool) {
	if len(l.balls) == 0 {
		return BallRecord{}, false
	}
	return l.balls[len(l.balls)-1], true
}

// Balls returns a copy of the ledger contents in order.
func (l *BallLedger) Balls() []BallRecord {
	out := make([]BallRecord, len(l.balls))
	copy(out, l.balls)
	return out
}

// Restore replaces the ledger contents. Used when rehydrating an innings
// from the persistence collaborator. Numbering resumes from nextSeq when it
// exceeds the highest restored sequence number; pass 0 to derive it from the
// balls alone. A store-sourced nextSeq accounts for voided balls that the
// net ledger no longer contains.
func (l *BallLedger) Restore(balls []BallRecord, nextSeq int) {
	l.balls = make([]BallRecord, len(balls))
	copy(l.balls, balls)
	for _, b := range balls {
		if b.Seq >= nextSeq {
			nextSeq = b.Seq + 1
		}
	}
	if nextSeq < 1 {
		nextSeq = 1
	}
	l.nextSeq = nextSeq
}
