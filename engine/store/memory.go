// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/pavilion/scoring-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	matches     map[engine.MatchID]*engine.Match
	innings     map[engine.InningsID]engine.InningsMeta
	balls       map[engine.InningsID][]engine.BallRecord
	voided      map[ballKey]bool
	assignments map[engine.InningsID]engine.Assignment
}

type ballKey struct {
	Innings engine.InningsID
	Seq     int
}

func NewMemory() *Memory {
	return &Memory{
		matches:     make(map[engine.MatchID]*engine.Match),
		innings:     make(map[engine.InningsID]engine.InningsMeta),
		balls:       make(map[engine.InningsID][]engine.BallRecord),
		voided:      make(map[ballKey]bool),
		assignments: make(map[engine.InningsID]engine.Assignment),
	}
}

func (m *Memory) SaveMatch(_ context.Context, match *engine.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[match.ID] = match
	return nil
}

func (m *Memory) SaveInnings(_ context.Context, meta engine.InningsMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.innings[meta.ID] = meta
	return nil
}

// AppendBall is idempotent per (innings, seq): a duplicate sequence number
// is rejected with ErrDuplicateBall, which retrying callers treat as done.
func (m *Memory) AppendBall(_ context.Context, inningsID engine.InningsID, b engine.BallRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.balls[inningsID] {
		if existing.Seq == b.Seq {
			return engine.ErrDuplicateBall
		}
	}
	m.balls[inningsID] = append(m.balls[inningsID], b)
	return nil
}

func (m *Memory) VoidBall(_ context.Context, inningsID engine.InningsID, seq int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voided[ballKey{Innings: inningsID, Seq: seq}] = true
	return nil
}

func (m *Memory) LoadBalls(_ context.Context, inningsID engine.InningsID) ([]engine.BallRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.BallRecord
	for _, b := range m.balls[inningsID] {
		if !m.voided[ballKey{Innings: inningsID, Seq: b.Seq}] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) SaveAssignment(_ context.Context, inningsID engine.InningsID, a engine.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[inningsID] = a
	return nil
}

func (m *Memory) LoadAssignment(_ context.Context, inningsID engine.InningsID) (engine.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assignments[inningsID], nil
}

func (m *Memory) LoadMatch(_ context.Context, id engine.MatchID) (*engine.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, engine.ErrMatchNotFound
	}
	return match, nil
}

func (m *Memory) LoadInnings(_ context.Context, id engine.InningsID) (engine.InningsMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.innings[id]
	if !ok {
		return engine.InningsMeta{}, engine.ErrInningsNotFound
	}
	return meta, nil
}

// NextSeq counts voided balls too: an undone sequence number stays burned.
func (m *Memory) NextSeq(_ context.Context, inningsID engine.InningsID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	next := 1
	for _, b := range m.balls[inningsID] {
		if b.Seq >= next {
			next = b.Seq + 1
		}
	}
	return next, nil
}

// BallCount reports how many non-voided balls are stored for an innings.
// Test helper.
func (m *Memory) BallCount(inningsID engine.InningsID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, b := range m.balls[inningsID] {
		if !m.voided[ballKey{Innings: inningsID, Seq: b.Seq}] {
			n++
		}
	}
	return n
}
