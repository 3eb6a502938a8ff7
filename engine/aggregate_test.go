package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavilion/scoring-engine/engine"
)

func TestComputeTotals(t *testing.T) {
	balls := []engine.BallRecord{
		{Runs: 4},
		{Runs: 1},
		{Extra: engine.Extra{Kind: engine.ExtraWide, Runs: 1}},
		{Extra: engine.Extra{Kind: engine.ExtraNoBall, Runs: 1}, Runs: 2},
		{Extra: engine.Extra{Kind: engine.ExtraBye, Runs: 2}},
		{Wicket: &engine.Wicket{Type: engine.DismissalBowled, Dismissed: "t1"}},
	}

	got := engine.ComputeTotals(balls)
	assert.Equal(t, engine.Totals{Runs: 11, Wickets: 1, LegalBalls: 4}, got)
}

func TestRunRate(t *testing.T) {
	assert.True(t, engine.RunRate(0, 0).IsZero(), "no rate before the first legal ball")
	assert.Equal(t, "6", engine.RunRate(6, 6).String())
	assert.Equal(t, "7.5", engine.RunRate(15, 12).String())
	// Rounds to two decimal places.
	assert.Equal(t, "4.8", engine.RunRate(8, 10).String())
	assert.Equal(t, "5.54", engine.RunRate(12, 13).String())
}

func TestRequiredRunRate(t *testing.T) {
	// 30 needed off 20 balls.
	assert.Equal(t, "9", engine.RequiredRunRate(180, 150, 100, 120).String())
	// Target met: clamped to zero.
	assert.True(t, engine.RequiredRunRate(100, 100, 50, 120).IsZero())
	assert.True(t, engine.RequiredRunRate(100, 140, 50, 120).IsZero())
	// No balls remaining: the chase is dead, rate reads zero.
	assert.True(t, engine.RequiredRunRate(180, 150, 120, 120).IsZero())
}

func TestOversString(t *testing.T) {
	assert.Equal(t, "0.0", engine.OversString(0))
	assert.Equal(t, "0.5", engine.OversString(5))
	assert.Equal(t, "1.0", engine.OversString(6))
	assert.Equal(t, "16.4", engine.OversString(100))
}

func TestBallRecord_RunAttribution(t *testing.T) {
	cases := []struct {
		name      string
		ball      engine.BallRecord
		total     int
		bowler    int
		legal     bool
		ballFaced bool
	}{
		{"plain boundary", engine.BallRecord{Runs: 4}, 4, 4, true, true},
		{"wide", engine.BallRecord{Extra: engine.Extra{Kind: engine.ExtraWide, Runs: 1}}, 1, 1, false, false},
		{"wide with overthrows", engine.BallRecord{Extra: engine.Extra{Kind: engine.ExtraWide, Runs: 3}}, 3, 3, false, false},
		{"no-ball hit for two", engine.BallRecord{Runs: 2, Extra: engine.Extra{Kind: engine.ExtraNoBall, Runs: 1}}, 3, 3, false, true},
		{"leg byes", engine.BallRecord{Extra: engine.Extra{Kind: engine.ExtraLegBye, Runs: 2}}, 2, 0, true, true},
		{"byes", engine.BallRecord{Extra: engine.Extra{Kind: engine.ExtraBye, Runs: 4}}, 4, 0, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.total, tc.ball.TotalRuns(), "team total")
			assert.Equal(t, tc.bowler, tc.ball.BowlerRuns(), "charged to the bowler")
			assert.Equal(t, tc.legal, tc.ball.IsLegal())
			assert.Equal(t, tc.ballFaced, tc.ball.CountsAsBallFaced())
		})
	}
}

func TestMatchFormat_DerivedLimits(t *testing.T) {
	f := t20()
	assert.Equal(t, 120, f.BallsLimit())
	assert.Equal(t, 24, f.MaxBallsPerBowler())
	assert.Equal(t, 10, f.WicketsToClose())
}
