// Package store persists the event and match archive in a local sqlite
// database. The archive is write-mostly during sync and read-only during
// replay and simulation.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/CarlColglazier/frc-elo/internal/frc"
	"github.com/CarlColglazier/frc-elo/internal/telemetry"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite archive. Writes are serialized through one mutex;
// sync workers hand their results to a single writer anyway, so contention
// is not a concern.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS events (
			id         TEXT PRIMARY KEY,
			name       TEXT,
			event_type INTEGER,
			official   INTEGER,
			start_date TEXT,
			week       INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id           TEXT PRIMARY KEY,
			comp_level   TEXT,
			match_number INTEGER,
			set_number   INTEGER,
			event_id     TEXT REFERENCES events(id),
			red_score    INTEGER,
			blue_score   INTEGER,
			red1  TEXT,
			red2  TEXT,
			red3  TEXT,
			blue1 TEXT,
			blue2 TEXT,
			blue3 TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_event ON matches(event_id)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// exec runs one write with a single retry after a short back-off. sqlite
// under WAL occasionally reports transient busy errors even with the
// busy_timeout pragma.
func (s *Store) exec(query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(query, args...)
	if err == nil {
		return nil
	}
	telemetry.Warnf("store: write failed, retrying: %v", err)
	time.Sleep(100 * time.Millisecond)
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("store write: %w", err)
	}
	return nil
}

// UpsertEvent inserts or replaces an event row by primary key.
func (s *Store) UpsertEvent(e frc.Event) error {
	official := 0
	if e.Official {
		official = 1
	}
	return s.exec(
		`INSERT OR REPLACE INTO events (id, name, event_type, official, start_date, week)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.EventType, official, e.StartDate, e.Week,
	)
}

// UpsertMatch inserts or replaces a match row by primary key. Empty third
// robots are stored as NULL.
func (s *Store) UpsertMatch(m frc.Match) error {
	return s.exec(
		`INSERT OR REPLACE INTO matches
		 (id, comp_level, match_number, set_number, event_id,
		  red_score, blue_score, red1, red2, red3, blue1, blue2, blue3)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CompLevel, m.MatchNumber, m.SetNumber, m.EventID,
		m.RedScore, m.BlueScore,
		m.Red1, m.Red2, nullable(m.Red3),
		m.Blue1, m.Blue2, nullable(m.Blue3),
	)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// TrainingEvents returns all official, non-offseason events in replay
// order: start date, then event type, then id.
func (s *Store) TrainingEvents() ([]frc.Event, error) {
	rows, err := s.db.Query(
		`SELECT id, name, event_type, official, start_date, week
		 FROM events
		 WHERE official = 1 AND event_type < ?
		 ORDER BY start_date, event_type, id`,
		frc.UnofficialEventType,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []frc.Event
	for rows.Next() {
		var e frc.Event
		var official int
		if err := rows.Scan(&e.ID, &e.Name, &e.EventType, &official, &e.StartDate, &e.Week); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Official = official == 1
		events = append(events, e)
	}
	return events, rows.Err()
}

// Event looks up a single event by id.
func (s *Store) Event(id string) (frc.Event, bool, error) {
	row := s.db.QueryRow(
		`SELECT id, name, event_type, official, start_date, week FROM events WHERE id = ?`, id)

	var e frc.Event
	var official int
	err := row.Scan(&e.ID, &e.Name, &e.EventType, &official, &e.StartDate, &e.Week)
	if err == sql.ErrNoRows {
		return frc.Event{}, false, nil
	}
	if err != nil {
		return frc.Event{}, false, fmt.Errorf("scan event: %w", err)
	}
	e.Official = official == 1
	return e, true, nil
}

// EventMatches returns an event's played matches in replay order.
func (s *Store) EventMatches(eventID string) ([]frc.Match, error) {
	matches, err := s.matches(`SELECT `+matchColumns+` FROM matches WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, err
	}
	matches = frc.FilterPlayed(matches)
	frc.SortMatches(matches)
	return matches, nil
}

// Schedule returns an event's full qualification schedule, including
// unplayed slots, in match-number order.
func (s *Store) Schedule(eventID string) ([]frc.Match, error) {
	return s.matches(
		`SELECT `+matchColumns+` FROM matches
		 WHERE event_id = ? AND comp_level = ?
		 ORDER BY match_number`,
		eventID, frc.LevelQualification,
	)
}

// Unplayed returns every scheduled-but-unplayed match of an event, any
// competition level, in replay order. Playoff matches show up here once
// alliance selection fills their rosters.
func (s *Store) Unplayed(eventID string) ([]frc.Match, error) {
	matches, err := s.matches(
		`SELECT `+matchColumns+` FROM matches
		 WHERE event_id = ? AND (red_score < 0 OR blue_score < 0)`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	frc.SortMatches(matches)
	return matches, nil
}

const matchColumns = `id, comp_level, match_number, set_number, event_id,
	red_score, blue_score, red1, red2, red3, blue1, blue2, blue3`

func (s *Store) matches(query string, args ...any) ([]frc.Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []frc.Match
	for rows.Next() {
		var m frc.Match
		var red3, blue3 sql.NullString
		if err := rows.Scan(
			&m.ID, &m.CompLevel, &m.MatchNumber, &m.SetNumber, &m.EventID,
			&m.RedScore, &m.BlueScore,
			&m.Red1, &m.Red2, &red3, &m.Blue1, &m.Blue2, &blue3,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.Red3 = red3.String
		m.Blue3 = blue3.String
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
