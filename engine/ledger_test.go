package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion/scoring-engine/engine"
)

func TestBallLedger_AppendAssignsMonotonicSequence(t *testing.T) {
	l := engine.NewBallLedger()
	assert.Equal(t, 1, l.NextSeq())

	b1 := l.Append(engine.BallRecord{Bowler: "l1", Striker: "t1", NonStriker: "t2", Runs: 4})
	b2 := l.Append(engine.BallRecord{Bowler: "l1", Striker: "t1", NonStriker: "t2"})

	assert.Equal(t, 1, b1.Seq)
	assert.Equal(t, 2, b2.Seq)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 3, l.NextSeq())
}

func TestBallLedger_TruncateLast(t *testing.T) {
	l := engine.NewBallLedger()
	l.Append(engine.BallRecord{Runs: 1})
	l.Append(engine.BallRecord{Runs: 2})

	removed, err := l.TruncateLast()
	require.NoError(t, err)
	assert.Equal(t, 2, removed.Runs)
	assert.Equal(t, 2, removed.Seq)
	assert.Equal(t, 1, l.Len())

	// The truncated sequence number stays burned: the durable void marker
	// refers to it, so the next append gets a fresh one.
	assert.Equal(t, 3, l.NextSeq())
	b := l.Append(engine.BallRecord{Runs: 3})
	assert.Equal(t, 3, b.Seq)
}

func TestBallLedger_TruncateEmpty(t *testing.T) {
	l := engine.NewBallLedger()
	_, err := l.TruncateLast()
	assert.ErrorIs(t, err, engine.ErrNothingToUndo)
}

func TestBallLedger_BallsReturnsACopy(t *testing.T) {
	l := engine.NewBallLedger()
	l.Append(engine.BallRecord{Runs: 4})

	balls := l.Balls()
	balls[0].Runs = 99

	again := l.Balls()
	assert.Equal(t, 4, again[0].Runs, "mutating the copy must not reach the ledger")
}

func TestBallLedger_Restore(t *testing.T) {
	l := engine.NewBallLedger()
	l.Restore([]engine.BallRecord{
		{Seq: 1, Runs: 1},
		{Seq: 2, Runs: 4},
	}, 0)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 3, l.NextSeq())

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, 4, last.Runs)
}

func TestBallLedger_RestoreResumesPastVoidedSequenceNumbers(t *testing.T) {
	// The net ledger ends at seq 2, but seq 3 was appended and voided
	// before the restart. Numbering must resume at 4, not 3.
	l := engine.NewBallLedger()
	l.Restore([]engine.BallRecord{
		{Seq: 1, Runs: 1},
		{Seq: 2, Runs: 4},
	}, 4)
	assert.Equal(t, 4, l.NextSeq())

	b := l.Append(engine.BallRecord{Runs: 6})
	assert.Equal(t, 4, b.Seq)
}
