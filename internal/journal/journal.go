// Package journal keeps an SQLite audit trail of cleaning runs and every
// cell rewrite they performed.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/staffclean-cli/internal/cleaner"
	"github.com/KaramelBytes/staffclean-cli/internal/utils"
)

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run summarizes one pipeline execution.
type Run struct {
	ID         string    `json:"id"`
	InputPath  string    `json:"input_path"`
	OutputPath string    `json:"output_path"`
	Rows       int       `json:"rows"`
	Operations int       `json:"operations"`
	Warnings   []string  `json:"warnings,omitempty"`
	IDWidth    string    `json:"id_width"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRun starts a run record with a fresh ID.
func NewRun(input, output string) Run {
	return Run{ID: uuid.NewString(), InputPath: input, OutputPath: output, StartedAt: time.Now().UTC()}
}

// Finish fills the run totals from a pipeline result.
func (r *Run) Finish(res *cleaner.Result) {
	r.Rows = res.Table.Len()
	r.Operations = len(res.Operations)
	r.Warnings = append([]string(nil), res.Warnings...)
	r.IDWidth = res.Table.IDWidth.String()
	r.FinishedAt = time.Now().UTC()
}

// Journal is a handle to the audit database.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the journal at path and migrates its schema.
func Open(path string, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure journal: %w", err)
	}
	j := &Journal{db: db, logger: logger.With(zap.String("journal", path))}
	if err := j.migrateUp(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the database.
func (j *Journal) Close() error { return j.db.Close() }

// RecordRun stores the run and its operations in one transaction.
func (j *Journal) RecordRun(ctx context.Context, run Run, ops []cleaner.Operation) (err error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, input_path, output_path, row_count, op_count, warn_count, id_width, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.OutputPath, run.Rows, len(ops), len(run.Warnings), run.IDWidth,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO operations (run_id, row_index, column_name, original_value, new_value, kind, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare operation insert: %w", err)
	}
	defer stmt.Close()
	for _, op := range ops {
		if _, err = stmt.ExecContext(ctx, run.ID, op.Row, op.Column, op.Original, op.New, op.Kind, op.Reason); err != nil {
			return fmt.Errorf("insert operation: %w", err)
		}
	}

	for i, w := range run.Warnings {
		if _, err = tx.ExecContext(ctx, `INSERT INTO warnings (run_id, seq, message) VALUES (?, ?, ?)`, run.ID, i, w); err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	j.logger.Info("run recorded", zap.String("run_id", run.ID), zap.Int("operations", len(ops)))
	return nil
}

const runColumns = `id, input_path, output_path, row_count, op_count, id_width, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var started, finished string
	if err := s.Scan(&r.ID, &r.InputPath, &r.OutputPath, &r.Rows, &r.Operations, &r.IDWidth, &started, &finished); err != nil {
		return Run{}, err
	}
	var err error
	if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return r, nil
}

// Runs lists the most recent runs first; limit <= 0 returns all.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run loads one run, including its warnings.
func (j *Journal) Run(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("load run: %w", err)
	}
	rows, err := j.db.QueryContext(ctx, `SELECT message FROM warnings WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return Run{}, fmt.Errorf("scan warning: %w", err)
		}
		r.Warnings = append(r.Warnings, w)
	}
	return r, rows.Err()
}

// Operations returns the cell rewrites of a run in the order they happened.
func (j *Journal) Operations(ctx context.Context, runID string) ([]cleaner.Operation, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT row_index, column_name, original_value, new_value, kind, reason
		FROM operations WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()
	var out []cleaner.Operation
	for rows.Next() {
		var op cleaner.Operation
		if err := rows.Scan(&op.Row, &op.Column, &op.Original, &op.New, &op.Kind, &op.Reason); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		out = append(out, op)
	}
	return out, rows.Err()
}
