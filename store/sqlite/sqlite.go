/*
Package sqlite provides the SQLite-backed persistence collaborator.

PURPOSE:
  Durable record of matches, innings, and the ball-by-ball ledger. The
  engine's in-memory state stays authoritative for the live screen; this
  store is what survives a restart and what the rest of the club site
  reads from.

APPEND-ONLY ENFORCEMENT:
  The balls table is never updated or deleted. Undo appends a row to
  ball_voids referencing the undone sequence number; LoadBalls joins the
  two and returns only the balls that currently stand.

IDEMPOTENCY:
  PRIMARY KEY (innings_id, seq) on balls makes AppendBall idempotent per
  sequence number: an at-least-once retry that lands twice is answered
  with ErrDuplicateBall, which the recorder treats as success.

WAL MODE:
  SQLite is opened with WAL so the club site's readers don't block the
  single scoring writer.

USAGE:
  store, err := sqlite.New("./data/scoring.db")
  defer store.Close()
  eng := engine.New(store, engine.NewRecorder(store))

SEE ALSO:
  - engine/store.go: interface definition
  - engine/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pavilion/scoring-engine/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		format_name TEXT NOT NULL,
		overs_limit INTEGER NOT NULL,
		players_per_team INTEGER NOT NULL,
		max_overs_per_bowler INTEGER NOT NULL,
		teams_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS innings (
		id TEXT PRIMARY KEY,
		match_id TEXT NOT NULL,
		batting_team TEXT NOT NULL,
		bowling_team TEXT NOT NULL,
		target INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_innings_match ON innings(match_id);

	-- Ball ledger (append-only: no UPDATE, no DELETE)
	CREATE TABLE IF NOT EXISTS balls (
		innings_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		bowler TEXT NOT NULL,
		striker TEXT NOT NULL,
		non_striker TEXT NOT NULL,
		runs INTEGER NOT NULL,
		extra_kind TEXT NOT NULL DEFAULT '',
		extra_runs INTEGER NOT NULL DEFAULT 0,
		wicket_type TEXT,
		dismissed TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (innings_id, seq)
	);

	-- Undo markers, also append-only. A ball with a void row no longer
	-- stands but its history is preserved.
	CREATE TABLE IF NOT EXISTS ball_voids (
		innings_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (innings_id, seq)
	);

	-- Current crease/bowler assignment (mutable state, not ledger)
	CREATE TABLE IF NOT EXISTS assignments (
		innings_id TEXT PRIMARY KEY,
		striker TEXT NOT NULL DEFAULT '',
		non_striker TEXT NOT NULL DEFAULT '',
		bowler TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// MATCHES / INNINGS
// =============================================================================

func (s *Store) SaveMatch(ctx context.Context, m *engine.Match) error {
	teams, err := json.Marshal(m.Teams)
	if err != nil {
		return fmt.Errorf("failed to encode rosters: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches (id, format_name, overs_limit, players_per_team, max_overs_per_bowler, teams_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		string(m.ID), m.Format.Name, m.Format.OversLimit, m.Format.PlayersPerTeam,
		m.Format.MaxOversPerBowler, string(teams), m.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) LoadMatch(ctx context.Context, id engine.MatchID) (*engine.Match, error) {
	m := &engine.Match{ID: id}
	var teamsJSON, created string
	err := s.db.QueryRowContext(ctx, `
		SELECT format_name, overs_limit, players_per_team, max_overs_per_bowler, teams_json, created_at
		FROM matches WHERE id = ?`,
		string(id)).Scan(&m.Format.Name, &m.Format.OversLimit, &m.Format.PlayersPerTeam,
		&m.Format.MaxOversPerBowler, &teamsJSON, &created)
	if err == sql.ErrNoRows {
		return nil, engine.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(teamsJSON), &m.Teams); err != nil {
		return nil, fmt.Errorf("failed to decode rosters: %w", err)
	}
	if at, err := time.Parse(time.RFC3339, created); err == nil {
		m.CreatedAt = at
	}
	return m, nil
}

func (s *Store) SaveInnings(ctx context.Context, meta engine.InningsMeta) error {
	created := meta.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO innings (id, match_id, batting_team, bowling_team, target, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		string(meta.ID), string(meta.MatchID), string(meta.BattingTeam),
		string(meta.BowlingTeam), meta.Target, created.Format(time.RFC3339))
	return err
}

func (s *Store) LoadInnings(ctx context.Context, id engine.InningsID) (engine.InningsMeta, error) {
	meta := engine.InningsMeta{ID: id}
	var matchID, batting, bowling, created string
	err := s.db.QueryRowContext(ctx, `
		SELECT match_id, batting_team, bowling_team, target, created_at
		FROM innings WHERE id = ?`,
		string(id)).Scan(&matchID, &batting, &bowling, &meta.Target, &created)
	if err == sql.ErrNoRows {
		return meta, engine.ErrInningsNotFound
	}
	if err != nil {
		return meta, err
	}
	meta.MatchID = engine.MatchID(matchID)
	meta.BattingTeam = engine.TeamID(batting)
	meta.BowlingTeam = engine.TeamID(bowling)
	if at, err := time.Parse(time.RFC3339, created); err == nil {
		meta.CreatedAt = at
	}
	return meta, nil
}

// =============================================================================
// BALL LEDGER
// =============================================================================

func (s *Store) AppendBall(ctx context.Context, inningsID engine.InningsID, b engine.BallRecord) error {
	var wicketType, dismissed sql.NullString
	if b.Wicket != nil {
		wicketType = sql.NullString{String: string(b.Wicket.Type), Valid: true}
		dismissed = sql.NullString{String: string(b.Wicket.Dismissed), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balls (innings_id, seq, bowler, striker, non_striker, runs, extra_kind, extra_runs, wicket_type, dismissed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(inningsID), b.Seq, string(b.Bowler), string(b.Striker), string(b.NonStriker),
		b.Runs, string(b.Extra.Kind), b.Extra.Runs, wicketType, dismissed,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return engine.ErrDuplicateBall
	}
	return err
}

func (s *Store) VoidBall(ctx context.Context, inningsID engine.InningsID, seq int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ball_voids (innings_id, seq, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(innings_id, seq) DO NOTHING`,
		string(inningsID), seq, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) LoadBalls(ctx context.Context, inningsID engine.InningsID) ([]engine.BallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.seq, b.bowler, b.striker, b.non_striker, b.runs, b.extra_kind, b.extra_runs, b.wicket_type, b.dismissed
		FROM balls b
		LEFT JOIN ball_voids v ON v.innings_id = b.innings_id AND v.seq = b.seq
		WHERE b.innings_id = ? AND v.seq IS NULL
		ORDER BY b.seq`,
		string(inningsID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.BallRecord
	for rows.Next() {
		var b engine.BallRecord
		var bowler, striker, nonStriker, extraKind string
		var wicketType, dismissed sql.NullString
		if err := rows.Scan(&b.Seq, &bowler, &striker, &nonStriker, &b.Runs, &extraKind, &b.Extra.Runs, &wicketType, &dismissed); err != nil {
			return nil, err
		}
		b.Bowler = engine.PlayerID(bowler)
		b.Striker = engine.PlayerID(striker)
		b.NonStriker = engine.PlayerID(nonStriker)
		b.Extra.Kind = engine.ExtraKind(extraKind)
		if wicketType.Valid {
			b.Wicket = &engine.Wicket{
				Type:      engine.DismissalType(wicketType.String),
				Dismissed: engine.PlayerID(dismissed.String),
			}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// NextSeq counts voided balls too: an undone sequence number stays burned,
// so a rehydrated innings must not hand it out again.
func (s *Store) NextSeq(ctx context.Context, inningsID engine.InningsID) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM balls WHERE innings_id = ?`,
		string(inningsID)).Scan(&next)
	return next, err
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (s *Store) SaveAssignment(ctx context.Context, inningsID engine.InningsID, a engine.Assignment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (innings_id, striker, non_striker, bowler, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(innings_id) DO UPDATE SET
			striker = excluded.striker,
			non_striker = excluded.non_striker,
			bowler = excluded.bowler,
			updated_at = excluded.updated_at`,
		string(inningsID), string(a.Striker), string(a.NonStriker), string(a.Bowler),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) LoadAssignment(ctx context.Context, inningsID engine.InningsID) (engine.Assignment, error) {
	var a engine.Assignment
	var striker, nonStriker, bowler string
	err := s.db.QueryRowContext(ctx, `
		SELECT striker, non_striker, bowler FROM assignments WHERE innings_id = ?`,
		string(inningsID)).Scan(&striker, &nonStriker, &bowler)
	if err == sql.ErrNoRows {
		return a, nil
	}
	if err != nil {
		return a, err
	}
	a.Striker = engine.PlayerID(striker)
	a.NonStriker = engine.PlayerID(nonStriker)
	a.Bowler = engine.PlayerID(bowler)
	return a, nil
}

// Compile-time check.
var _ engine.Store = (*Store)(nil)
