// Package audit retains candidates that never became observations: raw
// tuples no alias matched (fodder for alias-table maintenance) and
// duplicate candidates that lost consolidation tie-breaks.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/consolidate"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/pkg/metrics"
)

// Audit entry kinds.
const (
	KindUnresolved = "unresolved"
	KindDiscarded  = "discarded"
)

const schema = `
CREATE TABLE IF NOT EXISTS candidate_audit (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	kind          TEXT NOT NULL,
	document_id   TEXT NOT NULL,
	patient_id    TEXT NOT NULL,
	raw_name      TEXT NOT NULL,
	raw_value     REAL NOT NULL,
	raw_unit      TEXT NOT NULL DEFAULT '',
	category_hint TEXT NOT NULL DEFAULT '',
	metric_id     TEXT NOT NULL DEFAULT '',
	observed_date TEXT NOT NULL DEFAULT '',
	reason        TEXT NOT NULL DEFAULT '',
	recorded_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_audit_kind ON candidate_audit (kind, recorded_at);
`

// Entry is one audit row read back from the store.
type Entry struct {
	ID           int64   `db:"id"`
	Kind         string  `db:"kind"`
	DocumentID   string  `db:"document_id"`
	PatientID    string  `db:"patient_id"`
	RawName      string  `db:"raw_name"`
	RawValue     float64 `db:"raw_value"`
	RawUnit      string  `db:"raw_unit"`
	CategoryHint string  `db:"category_hint"`
	MetricID     string  `db:"metric_id"`
	ObservedDate string  `db:"observed_date"`
	Reason       string  `db:"reason"`
	RecordedAt   string  `db:"recorded_at"`
}

// Store is the SQLite-backed audit log.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock overrides the wall clock used for recorded_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (and migrates) the audit database at dsn. Use ":memory:"
// for an ephemeral store.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const insertStmt = `
INSERT INTO candidate_audit
	(kind, document_id, patient_id, raw_name, raw_value, raw_unit, category_hint, metric_id, observed_date, reason, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// RecordUnresolved stores a candidate whose name/unit matched no alias.
func (s *Store) RecordUnresolved(ctx context.Context, doc model.Document, cand model.RawMetricCandidate) error {
	_, err := s.db.ExecContext(ctx, insertStmt,
		KindUnresolved, doc.DocumentID, doc.PatientID,
		cand.RawName, cand.RawValue, cand.RawUnit, cand.CategoryHint,
		"", "", "no alias matched", s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record unresolved candidate: %w", err)
	}
	metrics.RecordAuditWrite(KindUnresolved)
	return nil
}

// RecordDiscarded stores a duplicate candidate that lost the tie-break.
func (s *Store) RecordDiscarded(ctx context.Context, doc model.Document, d consolidate.Discard) error {
	_, err := s.db.ExecContext(ctx, insertStmt,
		KindDiscarded, doc.DocumentID, doc.PatientID,
		d.Candidate.RawName, d.Candidate.RawValue, d.Candidate.RawUnit, d.Candidate.CategoryHint,
		string(d.Metric), d.ObservedDate.String(), d.Reason, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record discarded candidate: %w", err)
	}
	metrics.RecordAuditWrite(KindDiscarded)
	return nil
}

// List returns the most recent entries of one kind, newest first.
func (s *Store) List(ctx context.Context, kind string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT * FROM candidate_audit WHERE kind = ? ORDER BY id DESC LIMIT ?`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries of one kind.
func (s *Store) Count(ctx context.Context, kind string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM candidate_audit WHERE kind = ?`, kind); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}
