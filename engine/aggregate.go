/*
aggregate.go - Innings aggregator: totals and rate arithmetic

PURPOSE:
  Rolls the ledger up into innings totals. The aggregator is stateless
  on purpose: totals, run rate, and required run rate are always
  recomputed from the ledger, never cached across mutations, so there is
  nothing to drift.

PRECISION:
  Rates use decimal arithmetic rather than raw float64. "9.00 required"
  on a chase is a number a scorer reads out loud; it should not wobble
  in the last digit because of binary floating point.
*/
package engine

import "github.com/shopspring/decimal"

// Totals are the rolled-up innings numbers.
type Totals struct {
	Runs       int
	Wickets    int
	LegalBalls int
}

// ComputeTotals folds the ledger into innings totals.
func ComputeTotals(balls []BallRecord) Totals {
	var t Totals
	for _, b := range balls {
		t.Runs += b.TotalRuns()
		if b.IsLegal() {
			t.LegalBalls++
		}
		if b.Wicket != nil {
			t.Wickets++
		}
	}
	return t
}

var six = decimal.NewFromInt(BallsPerOver)

// RunRate is runs per over: runs / legalBalls * 6. Zero before the first
// legal delivery.
func RunRate(runs, legalBalls int) decimal.Decimal {
	if legalBalls == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(runs)).
		Mul(six).
		DivRound(decimal.NewFromInt(int64(legalBalls)), 2)
}

// RequiredRunRate is the rate the chasing side must sustain:
// (target - runs) / remainingBalls * 6, clamped to zero once the target is
// met. Remaining balls are floored at zero; with no balls left and runs
// still needed the chase is arithmetically dead and the rate is zero too.
func RequiredRunRate(target, runs, legalBalls, ballsLimit int) decimal.Decimal {
	needed := target - runs
	if needed <= 0 {
		return decimal.Zero
	}
	remaining := ballsLimit - legalBalls
	if remaining <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(needed)).
		Mul(six).
		DivRound(decimal.NewFromInt(int64(remaining)), 2)
}

// =============================================================================
// SUMMARY - The read model the scoring screen renders
// =============================================================================

// Summary is a point-in-time view over one innings. RequiredRunRate is nil
// for a first innings.
type Summary struct {
	InningsID   InningsID
	BattingTeam TeamID
	BowlingTeam TeamID
	Status      Status
	Closed      ClosedReason

	Runs       int
	Wickets    int
	LegalBalls int
	Overs      string

	RunRate         decimal.Decimal
	Target          int
	RequiredRunRate *decimal.Decimal

	Striker    PlayerID
	NonStriker PlayerID
	Bowler     PlayerID

	Batting []BatsmanRecord
	Bowling []BowlerRecord
}
