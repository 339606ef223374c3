// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package acp

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jllopis/argonaut/pkg/errors"
)

// SQLiteRunStore persists runs in SQLite.
type SQLiteRunStore struct {
	db *sql.DB
}

// OpenSQLiteRunStore opens (or creates) the run database at path and ensures
// the schema.
func OpenSQLiteRunStore(path string) (*SQLiteRunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.CodeConfig, "failed to open run store", err).
			WithContext("path", path)
	}
	store, err := NewSQLiteRunStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteRunStore creates a SQLite-backed run store and ensures schema.
func NewSQLiteRunStore(db *sql.DB) (*SQLiteRunStore, error) {
	if db == nil {
		return nil, errors.New(errors.CodeConfig, "db is nil", nil)
	}
	if err := ensureRunSchema(db); err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to ensure run schema", err)
	}
	return &SQLiteRunStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}

// Create registers a new run.
func (s *SQLiteRunStore) Create(ctx context.Context, run RunStateless) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_runs (run_id, agent_id, status, output_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.RunID,
		run.AgentID,
		string(run.Status),
		"null",
		run.CreatedAt.UTC(),
		run.UpdatedAt.UTC(),
	)
	if err != nil {
		return errors.New(errors.CodeInternal, "failed to store run", err).
			WithContext("run_id", run.RunID)
	}
	return nil
}

// Get returns the run record by id.
func (s *SQLiteRunStore) Get(ctx context.Context, runID string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, agent_id, status, output_json, created_at, updated_at
		FROM agent_runs WHERE run_id = ?
	`, runID)
	rec, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return RunRecord{}, errors.New(errors.CodeNotFound, "run not found", nil).
			WithContext("run_id", runID)
	}
	if err != nil {
		return RunRecord{}, errors.New(errors.CodeInternal, "failed to load run", err).
			WithContext("run_id", runID)
	}
	return rec, nil
}

// Complete stores the terminal status and output of a run.
func (s *SQLiteRunStore) Complete(ctx context.Context, runID string, status RunStatus, output RunOutput) error {
	payload, err := encodeRunOutput(&output)
	if err != nil {
		return errors.New(errors.CodeInternal, "failed to encode run output", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE agent_runs SET status = ?, output_json = ?, updated_at = ? WHERE run_id = ?
	`, string(status), string(payload), time.Now().UTC(), runID)
	if err != nil {
		return errors.New(errors.CodeInternal, "failed to update run", err).
			WithContext("run_id", runID)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return errors.New(errors.CodeNotFound, "run not found", nil).
			WithContext("run_id", runID)
	}
	return nil
}

// List returns runs matching the filter ordered by creation time.
func (s *SQLiteRunStore) List(ctx context.Context, filter RunFilter) ([]RunRecord, error) {
	query := `
		SELECT run_id, agent_id, status, output_json, created_at, updated_at
		FROM agent_runs
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.AgentID != "" {
		addFilter("agent_id = ?", filter.AgentID)
	}
	if filter.Status != "" {
		addFilter("status = ?", string(filter.Status))
	}
	query += where + " ORDER BY created_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to list runs", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows.Scan)
		if err != nil {
			return nil, errors.New(errors.CodeInternal, "failed to scan run", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to list runs", err)
	}
	return records, nil
}

func scanRun(scan func(dest ...any) error) (RunRecord, error) {
	var (
		rec        RunRecord
		status     string
		outputJSON string
		created    sql.NullTime
		updated    sql.NullTime
	)
	if err := scan(
		&rec.Run.RunID,
		&rec.Run.AgentID,
		&status,
		&outputJSON,
		&created,
		&updated,
	); err != nil {
		return RunRecord{}, err
	}
	rec.Run.Status = RunStatus(status)
	if created.Valid {
		rec.Run.CreatedAt = created.Time
	}
	if updated.Valid {
		rec.Run.UpdatedAt = updated.Time
	}
	output, err := decodeRunOutput([]byte(outputJSON))
	if err != nil {
		return RunRecord{}, err
	}
	rec.Output = output
	return rec, nil
}

func ensureRunSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS agent_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			agent_id TEXT NOT NULL,
			status TEXT NOT NULL,
			output_json TEXT,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_agent_runs_agent ON agent_runs(agent_id);
		CREATE INDEX IF NOT EXISTS idx_agent_runs_status ON agent_runs(status);
	`)
	return err
}
