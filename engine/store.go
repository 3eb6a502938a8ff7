/*
store.go - Persistence interface for the scoring backend

PURPOSE:
  Defines the interface between the engine and the persistence
  collaborator. The in-memory ledger is authoritative for the live
  screen; the store is the durable record the backend keeps.

APPEND-ONLY CONTRACT:
  Ball history is append-only. Undo does not delete the row - it appends
  a void marker referencing the undone sequence number, and LoadBalls
  returns the net (non-voided) ledger. The durable history stays
  complete while replay sees exactly the balls that currently stand.

IDEMPOTENCY:
  The backend call is retried with at-least-once semantics, so every
  write is idempotent per (innings, sequence number): AppendBall returns
  ErrDuplicateBall when the row already exists, and the caller treats
  that as success. VoidBall is a no-op when the marker already exists.

IMPLEMENTATIONS:
  - store/memory.go: in-memory, for tests and development
  - store/sqlite (top level): production SQLite
*/
package engine

import (
	"context"
	"time"
)

// InningsMeta is the persisted identity of an innings.
type InningsMeta struct {
	ID          InningsID
	MatchID     MatchID
	BattingTeam TeamID
	BowlingTeam TeamID
	Target      int
	CreatedAt   time.Time
}

// Assignment is the current crease and bowler. Together with the ball
// ledger it is sufficient to deterministically rebuild all derived state.
type Assignment struct {
	Striker    PlayerID
	NonStriker PlayerID
	Bowler     PlayerID
}

// Store is the persistence collaborator.
type Store interface {
	// SaveMatch persists the match identity, format, and rosters.
	SaveMatch(ctx context.Context, m *Match) error

	// SaveInnings persists the innings identity.
	SaveInnings(ctx context.Context, meta InningsMeta) error

	// AppendBall persists one ball. Returns ErrDuplicateBall if a ball with
	// this sequence number already exists for the innings.
	AppendBall(ctx context.Context, inningsID InningsID, b BallRecord) error

	// VoidBall marks the given sequence number as undone. Idempotent.
	VoidBall(ctx context.Context, inningsID InningsID, seq int) error

	// LoadBalls returns the net ledger (voided balls excluded), ordered by
	// sequence number.
	LoadBalls(ctx context.Context, inningsID InningsID) ([]BallRecord, error)

	// SaveAssignment upserts the current crease/bowler assignment.
	SaveAssignment(ctx context.Context, inningsID InningsID, a Assignment) error

	// LoadAssignment returns the current assignment for the innings.
	LoadAssignment(ctx context.Context, inningsID InningsID) (Assignment, error)

	// LoadMatch returns a persisted match, rosters included. Returns
	// ErrMatchNotFound when the identifier is unknown.
	LoadMatch(ctx context.Context, id MatchID) (*Match, error)

	// LoadInnings returns the persisted innings identity. Returns
	// ErrInningsNotFound when the identifier is unknown.
	LoadInnings(ctx context.Context, id InningsID) (InningsMeta, error)

	// NextSeq returns one past the highest sequence number ever appended
	// for the innings, voided balls included; 1 when none exist. Sequence
	// numbers are never reissued, so rehydration must resume past voids.
	NextSeq(ctx context.Context, inningsID InningsID) (int, error)
}
