/*
errors.go - Centralized error types for the scoring engine

PURPOSE:
  All engine errors in one place for consistency and discoverability.
  The error taxonomy matters operationally: a live scorer has to know,
  in the moment, whether a rejected ball means "fix your input" or
  "stop scoring, something is wrong".

ERROR CATEGORIES:
  1. Precondition errors - rejected before any mutation, always
     recoverable by correcting the input and retrying
  2. Backend sync errors - persistence failures; local state stays
     authoritative and the failure is surfaced, never rolled back
  3. Internal invariant violations - fatal; the innings refuses further
     mutation and requires manual reconciliation

USAGE:
  if engine.IsPrecondition(err) {
      // show the scorer what to correct; the ledger is untouched
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidFormat is returned when a match format fails validation.
	ErrInvalidFormat = errors.New("invalid match format")

	// ErrMatchNotFound / ErrInningsNotFound report unknown identifiers.
	ErrMatchNotFound   = errors.New("match not found")
	ErrInningsNotFound = errors.New("innings not found")

	// ErrInningsClosed is returned when a mutation targets a closed innings.
	ErrInningsClosed = errors.New("innings is closed")

	// ErrBatsmenNotSet is returned when a ball is proposed before both
	// openers have been named.
	ErrBatsmenNotSet = errors.New("select both batsmen before recording a ball")

	// ErrBowlerNotSet is returned when a ball is proposed with no bowler.
	ErrBowlerNotSet = errors.New("select a bowler before recording this ball")

	// ErrBatsmanRequired is returned after a wicket until a replacement
	// batter has been supplied.
	ErrBatsmanRequired = errors.New("select a replacement batsman before recording a ball")

	// ErrOverChangeRequired is returned at an over boundary until a new
	// bowler has been supplied.
	ErrOverChangeRequired = errors.New("over complete: select the next bowler")

	// ErrSameBowlerConsecutiveOvers rejects re-selecting the bowler who
	// bowled the previous over.
	ErrSameBowlerConsecutiveOvers = errors.New("a bowler cannot bowl consecutive overs")

	// ErrQuotaExceeded rejects a bowler who has used the full overs quota.
	ErrQuotaExceeded = errors.New("bowler has exhausted the overs quota")

	// ErrInvalidRoster reports a player who is not eligible for the role.
	ErrInvalidRoster = errors.New("player is not on the eligible roster")

	// ErrInvalidBall reports a malformed ball proposal.
	ErrInvalidBall = errors.New("invalid ball")

	// ErrNotAtCrease rejects a dismissal naming a player who is not one of
	// the two batters at the crease.
	ErrNotAtCrease = errors.New("dismissed player is not at the crease")

	// ErrOpenersAlreadySet rejects SetBatsmen once the innings is underway;
	// batters then change only through the replacement flow.
	ErrOpenersAlreadySet = errors.New("openers already set; replace batsmen after a wicket")

	// ErrNoReplacementDue rejects SetBatsman when no end is empty.
	ErrNoReplacementDue = errors.New("no replacement batsman is due")

	// ErrPreviousInningsOpen rejects starting the second innings while the
	// first is still live.
	ErrPreviousInningsOpen = errors.New("previous innings is still open")

	// ErrMatchComplete rejects a third innings.
	ErrMatchComplete = errors.New("match already has two innings")

	// ErrTeamNotInMatch reports a team id outside the match.
	ErrTeamNotInMatch = errors.New("team is not part of this match")

	// ErrNothingToUndo is the no-op error for undo on an empty ledger.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrDuplicateBall is returned by stores when a ball with the same
	// sequence number already exists. Expected on at-least-once retries.
	ErrDuplicateBall = errors.New("ball already recorded for this sequence number")

	// ErrReplayDivergence is fatal: derived state recomputed after undo did
	// not match the snapshot taken before the undone ball. The innings
	// refuses further mutation until manually reconciled.
	ErrReplayDivergence = errors.New("replay produced divergent derived state")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// QuotaError reports exactly how much of the bowler quota is used.
type QuotaError struct {
	Bowler     PlayerID
	LegalBalls int
	MaxBalls   int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("bowler %s has bowled %s of a maximum %s",
		e.Bowler, OversString(e.LegalBalls), OversString(e.MaxBalls))
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// DismissalError reports why a wicket proposal was rejected.
type DismissalError struct {
	Type      DismissalType
	Dismissed PlayerID
	Reason    string
}

func (e *DismissalError) Error() string {
	return fmt.Sprintf("cannot record %s of %s: %s", e.Type, e.Dismissed, e.Reason)
}

func (e *DismissalError) Unwrap() error { return ErrNotAtCrease }

// RosterError names the player and the role they were rejected for.
type RosterError struct {
	Player PlayerID
	Team   TeamID
	Role   string
}

func (e *RosterError) Error() string {
	return fmt.Sprintf("%s is not an eligible %s for team %s", e.Player, e.Role, e.Team)
}

func (e *RosterError) Unwrap() error { return ErrInvalidRoster }

// errInvalidBall wraps ErrInvalidBall with the specific malformation, so
// the scorer sees what to correct rather than a generic failure.
func errInvalidBall(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidBall, fmt.Sprintf(format, args...))
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsPrecondition returns true if the error is a rejected precondition: the
// ledger is untouched and the operation can be retried after correction.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrBatsmenNotSet) ||
		errors.Is(err, ErrBowlerNotSet) ||
		errors.Is(err, ErrBatsmanRequired) ||
		errors.Is(err, ErrOverChangeRequired) ||
		errors.Is(err, ErrSameBowlerConsecutiveOvers) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrInvalidRoster) ||
		errors.Is(err, ErrInvalidBall) ||
		errors.Is(err, ErrNotAtCrease) ||
		errors.Is(err, ErrOpenersAlreadySet) ||
		errors.Is(err, ErrNoReplacementDue) ||
		errors.Is(err, ErrInningsClosed)
}

// IsNotFound returns true if the error indicates an unknown identifier.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMatchNotFound) || errors.Is(err, ErrInningsNotFound)
}

// IsConflict returns true for rejections that map to HTTP 409: the request
// was well-formed but the current innings state forbids it.
func IsConflict(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrOverChangeRequired) ||
		errors.Is(err, ErrSameBowlerConsecutiveOvers) ||
		errors.Is(err, ErrInningsClosed)
}

// IsFatal returns true if the innings must refuse further mutation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrReplayDivergence)
}
