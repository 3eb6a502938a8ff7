/*
engine.go - The top-level engine consumed by the API

PURPOSE:
  Owns the live matches and innings, assigns identifiers, and serializes
  mutations. There is exactly one logical thread of ball events per
  innings: a per-innings mutex enforces a single outstanding mutation,
  so a new ball cannot be appended while the previous one is still being
  validated, and undo never races an in-flight append.

PERSISTENCE:
  The local state is authoritative. Match and innings creation are
  persisted inline (a failure is logged, not fatal); ball appends, voids
  and assignment changes go through the Recorder asynchronously.

REHYDRATION:
  A lookup for an unknown innings falls back to the store: the persisted
  ledger and assignment are replayed back into a live innings on first
  touch after a restart, so a scorer can resume mid-innings.
*/
package engine

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Engine is the entry point for all scoring operations.
type Engine struct {
	mu      sync.Mutex
	store   Store
	rec     *Recorder
	matches map[MatchID]*Match
	innings map[InningsID]*inningsHandle
}

// inningsHandle pairs an innings with the mutex that serializes its
// mutations.
type inningsHandle struct {
	mu sync.Mutex
	in *Innings
}

// New creates an engine. The recorder may be nil, in which case nothing is
// persisted asynchronously (useful in unit tests).
func New(store Store, rec *Recorder) *Engine {
	return &Engine{
		store:   store,
		rec:     rec,
		matches: make(map[MatchID]*Match),
		innings: make(map[InningsID]*inningsHandle),
	}
}

// StartMatch creates a match with the given format and rosters.
func (e *Engine) StartMatch(ctx context.Context, f MatchFormat, home, away Team) (*Match, error) {
	m, err := NewMatch(MatchID(uuid.NewString()), f, home, away)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.matches[m.ID] = m
	e.mu.Unlock()

	if err := e.store.SaveMatch(ctx, m); err != nil {
		// Local state is authoritative; persistence problems are surfaced,
		// not allowed to block scoring.
		log.Printf("[Engine] failed to persist match %s: %v", m.ID, err)
	}
	return m, nil
}

// Match returns a live match by id, falling back to the store after a
// restart.
func (e *Engine) Match(ctx context.Context, id MatchID) (*Match, error) {
	e.mu.Lock()
	m, ok := e.matches[id]
	e.mu.Unlock()
	if ok {
		return m, nil
	}

	m, err := e.store.LoadMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.matches[id]; ok {
		return cached, nil
	}
	e.matches[id] = m
	return m, nil
}

// StartInnings opens the next innings of the match.
func (e *Engine) StartInnings(ctx context.Context, matchID MatchID, battingTeam, bowlingTeam TeamID) (*Innings, error) {
	m, err := e.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	in, err := m.StartInnings(InningsID(uuid.NewString()), battingTeam, bowlingTeam)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.innings[in.ID] = &inningsHandle{in: in}
	e.mu.Unlock()

	meta := InningsMeta{
		ID:          in.ID,
		MatchID:     matchID,
		BattingTeam: in.BattingTeam,
		BowlingTeam: in.BowlingTeam,
		Target:      in.Target,
	}
	if err := e.store.SaveInnings(ctx, meta); err != nil {
		log.Printf("[Engine] failed to persist innings %s: %v", in.ID, err)
	}
	return in, nil
}

func (e *Engine) handle(ctx context.Context, id InningsID) (*inningsHandle, error) {
	e.mu.Lock()
	h, ok := e.innings[id]
	e.mu.Unlock()
	if ok {
		return h, nil
	}
	return e.loadInnings(ctx, id)
}

// loadInnings rehydrates a persisted innings: the net ball ledger and the
// saved assignment, replayed through the live apply path. This is how a
// restarted server resumes scoring mid-innings.
func (e *Engine) loadInnings(ctx context.Context, id InningsID) (*inningsHandle, error) {
	meta, err := e.store.LoadInnings(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := e.Match(ctx, meta.MatchID)
	if err != nil {
		return nil, err
	}
	batting, ok := m.Team(meta.BattingTeam)
	if !ok {
		return nil, ErrTeamNotInMatch
	}
	bowling, ok := m.Team(meta.BowlingTeam)
	if !ok {
		return nil, ErrTeamNotInMatch
	}

	balls, err := e.store.LoadBalls(ctx, id)
	if err != nil {
		return nil, err
	}
	a, err := e.store.LoadAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := e.store.NextSeq(ctx, id)
	if err != nil {
		return nil, err
	}

	in := NewInnings(id, meta.MatchID, m.Format, batting, bowling, meta.Target)
	in.Restore(balls, a, next)

	e.mu.Lock()
	defer e.mu.Unlock()
	if h, ok := e.innings[id]; ok {
		return h, nil
	}
	h := &inningsHandle{in: in}
	e.innings[id] = h
	attached := false
	for _, existing := range m.Innings {
		if existing.ID == id {
			attached = true
			break
		}
	}
	if !attached {
		m.Innings = append(m.Innings, in)
	}
	log.Printf("[Engine] restored innings %s (%d balls)", id, len(balls))
	return h, nil
}

// SetBatsmen names the opening pair.
func (e *Engine) SetBatsmen(ctx context.Context, id InningsID, striker, nonStriker PlayerID) error {
	return e.assign(ctx, id, func(in *Innings) error { return in.SetBatsmen(striker, nonStriker) })
}

// SetBatsman supplies the replacement batter after a wicket.
func (e *Engine) SetBatsman(ctx context.Context, id InningsID, p PlayerID) error {
	return e.assign(ctx, id, func(in *Innings) error { return in.SetBatsman(p) })
}

// SetBowler names the bowler for the next delivery.
func (e *Engine) SetBowler(ctx context.Context, id InningsID, p PlayerID) error {
	return e.assign(ctx, id, func(in *Innings) error { return in.SetBowler(p) })
}

// SwapBatsmen corrects a running mix-up without touching the ledger.
func (e *Engine) SwapBatsmen(ctx context.Context, id InningsID) error {
	return e.assign(ctx, id, func(in *Innings) error { return in.SwapBatsmen() })
}

// assign runs a roster mutation under the innings lock and syncs the
// resulting assignment.
func (e *Engine) assign(ctx context.Context, id InningsID, fn func(*Innings) error) error {
	h, err := e.handle(ctx, id)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := fn(h.in); err != nil {
		return err
	}
	e.syncAssignment(h.in)
	return nil
}

// RecordBall validates and records one delivery.
func (e *Engine) RecordBall(ctx context.Context, id InningsID, p BallProposal) (BallOutcome, error) {
	h, err := e.handle(ctx, id)
	if err != nil {
		return BallOutcome{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	out, err := h.in.RecordBall(p)
	if err != nil {
		return BallOutcome{}, err
	}
	if e.rec != nil {
		e.rec.BallAppended(id, out.Ball)
	}
	e.syncAssignment(h.in)
	return out, nil
}

// UndoLastBall reverts the most recent delivery and returns the restored
// summary.
func (e *Engine) UndoLastBall(ctx context.Context, id InningsID) (Summary, error) {
	h, err := e.handle(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	last, ok := h.in.ledger.Last()
	if !ok {
		return Summary{}, ErrNothingToUndo
	}
	s, err := h.in.UndoLastBall()
	if err != nil {
		return Summary{}, err
	}
	if e.rec != nil {
		e.rec.BallVoided(id, last.Seq)
	}
	e.syncAssignment(h.in)
	return s, nil
}

// InningsSummary returns the current read model for the scoring screen.
func (e *Engine) InningsSummary(ctx context.Context, id InningsID) (Summary, error) {
	h, err := e.handle(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.in.Summary(), nil
}

func (e *Engine) syncAssignment(in *Innings) {
	if e.rec == nil {
		return
	}
	e.rec.AssignmentChanged(in.ID, Assignment{
		Striker:    in.batting.Striker,
		NonStriker: in.batting.NonStriker,
		Bowler:     in.bowling.Current,
	})
}
