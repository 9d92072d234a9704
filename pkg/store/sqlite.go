// Package store persists narration and probe run history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"text2audio/pkg/db"
	"text2audio/pkg/probe"
)

// Narration is one completed narration pipeline run.
type Narration struct {
	UUID           string
	SourceFile     string
	OutputFile     string
	TargetLanguage string
	Translated     bool
	TTSModel       string
	Voice          string
	Format         string
	Speed          float64
	Chars          int
	Duration       time.Duration
	CreatedAt      time.Time
}

// ProbeRun is one completed voice probe with its failure detail.
type ProbeRun struct {
	UUID        string
	TTSModel    string
	VoicesTotal int
	VoicesOK    int
	Failures    []probe.Failure
	CreatedAt   time.Time
}

// Store defines the history repository interface.
type Store interface {
	RecordNarration(ctx context.Context, n *Narration) error
	RecentNarrations(ctx context.Context, limit int) ([]*Narration, error)
	RecordProbeRun(ctx context.Context, model string, report probe.Report) error
	RecentProbeRuns(ctx context.Context, limit int) ([]*ProbeRun, error)

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordNarration inserts a narration record, assigning a UUID if unset.
func (s *SQLiteStore) RecordNarration(ctx context.Context, n *Narration) error {
	if n.UUID == "" {
		n.UUID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO narrations (uuid, source_file, output_file, target_language, translated, tts_model, voice, format, speed, chars, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UUID, n.SourceFile, n.OutputFile, n.TargetLanguage, n.Translated,
		n.TTSModel, n.Voice, n.Format, n.Speed, n.Chars, n.Duration.Milliseconds())
	return err
}

// RecentNarrations returns the newest narration records, newest first.
func (s *SQLiteStore) RecentNarrations(ctx context.Context, limit int) ([]*Narration, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT uuid, source_file, output_file, target_language, translated, tts_model, voice, format, speed, chars, duration_ms, created_at
		 FROM narrations ORDER BY created_at DESC, uuid LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Narration
	for rows.Next() {
		var n Narration
		var durationMs int64
		var createdAt sql.NullTime
		if err := rows.Scan(&n.UUID, &n.SourceFile, &n.OutputFile, &n.TargetLanguage, &n.Translated,
			&n.TTSModel, &n.Voice, &n.Format, &n.Speed, &n.Chars, &durationMs, &createdAt); err != nil {
			return nil, err
		}
		n.Duration = time.Duration(durationMs) * time.Millisecond
		if createdAt.Valid {
			n.CreatedAt = createdAt.Time
		}
		result = append(result, &n)
	}
	return result, rows.Err()
}

// RecordProbeRun inserts a probe report. Failures are stored as JSON.
func (s *SQLiteStore) RecordProbeRun(ctx context.Context, model string, report probe.Report) error {
	failures, err := json.Marshal(report.Failed)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO probe_runs (uuid, tts_model, voices_total, voices_ok, failures)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), model, len(report.Succeeded)+len(report.Failed), len(report.Succeeded), string(failures))
	return err
}

// RecentProbeRuns returns the newest probe runs, newest first.
func (s *SQLiteStore) RecentProbeRuns(ctx context.Context, limit int) ([]*ProbeRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT uuid, tts_model, voices_total, voices_ok, failures, created_at
		 FROM probe_runs ORDER BY created_at DESC, uuid LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*ProbeRun
	for rows.Next() {
		var r ProbeRun
		var failures string
		var createdAt sql.NullTime
		if err := rows.Scan(&r.UUID, &r.TTSModel, &r.VoicesTotal, &r.VoicesOK, &failures, &createdAt); err != nil {
			return nil, err
		}
		if failures != "" {
			if err := json.Unmarshal([]byte(failures), &r.Failures); err != nil {
				return nil, err
			}
		}
		if createdAt.Valid {
			r.CreatedAt = createdAt.Time
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}
