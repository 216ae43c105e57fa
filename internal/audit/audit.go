// Package audit keeps an append-only operational log of workflow events in
// SQLite or Postgres. The flat JSON collections stay the source of truth;
// this trail exists so an operator can reconstruct who did what and when.
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	timestamp BIGINT NOT NULL,
	actor TEXT NOT NULL,
	action TEXT NOT NULL,
	subject TEXT NOT NULL,
	detail TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_events_actor ON audit_events (actor, timestamp);
`

type Event struct {
	Timestamp int64  `db:"timestamp" json:"timestamp"`
	Actor     string `db:"actor" json:"actor"`
	Action    string `db:"action" json:"action"`
	Subject   string `db:"subject" json:"subject"`
	Detail    string `db:"detail" json:"detail"`
}

// Recorder is what the workflow services depend on.
type Recorder interface {
	Record(event Event) error
}

// Nop discards events, for deployments without an audit database.
type Nop struct{}

func (Nop) Record(Event) error { return nil }

type Store struct {
	DB        *sqlx.DB
	converter func(string) string
}

// Open connects to the audit database, picking the driver from the DSN
// prefix, and applies the schema.
func Open(dsn string) (*Store, error) {
	driver := "sqlite3"
	converter := func(query string) string { return query }
	if strings.HasPrefix(dsn, "postgres") {
		driver = "postgres"
		converter = func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply audit schema: %w", err)
	}

	return &Store{DB: db, converter: converter}, nil
}

func (s *Store) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *Store) Record(event Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO audit_events (timestamp, actor, action, subject, detail)
		VALUES (:timestamp, :actor, :action, :subject, :detail)
	`, event)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// ListByActor returns an actor's events, oldest first.
func (s *Store) ListByActor(actor string) ([]Event, error) {
	var events []Event
	query := s.converter(`
		SELECT timestamp, actor, action, subject, detail
		FROM audit_events
		WHERE actor = ?
		ORDER BY timestamp ASC
	`)
	if err := s.DB.Select(&events, query, actor); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return events, nil
}

// Recent returns the newest events up to limit.
func (s *Store) Recent(limit int) ([]Event, error) {
	var events []Event
	query := s.converter(`
		SELECT timestamp, actor, action, subject, detail
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT ?
	`)
	if err := s.DB.Select(&events, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch recent audit events: %w", err)
	}
	return events, nil
}
