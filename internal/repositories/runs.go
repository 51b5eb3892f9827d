package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

// RunRepository persists [models.SyncRun] records and their item failures.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a completed run and its failure rows in one transaction.
func (r *RunRepository) Create(run *models.SyncRun, failures []models.ItemFailure) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sync_runs (id, source_account, dest_account, started_at, finished_at, success, applied, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SourceAccount, run.DestAccount, run.StartedAt, run.FinishedAt, run.Success, run.Applied, run.Skipped, run.Failed)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range failures {
		_, err = tx.Exec(`
			INSERT INTO item_failures (run_id, category, item_id, item_name, kind, action, cause)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, string(f.Category), f.ItemID, f.ItemName, string(f.Kind), string(f.Action), f.Cause)
		if err != nil {
			return fmt.Errorf("failed to insert failure: %w", err)
		}
	}

	return tx.Commit()
}

// Get retrieves a run by its ID.
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	row := r.db.QueryRow(`
		SELECT id, source_account, dest_account, started_at, finished_at, success, applied, skipped, failed
		FROM sync_runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List retrieves the most recent runs, newest first.
func (r *RunRepository) List(limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, source_account, dest_account, started_at, finished_at, success, applied, skipped, failed
		FROM sync_runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Failures retrieves the recorded item failures for one run.
func (r *RunRepository) Failures(runID string) ([]models.ItemFailure, error) {
	rows, err := r.db.Query(`
		SELECT run_id, category, item_id, item_name, kind, action, cause
		FROM item_failures WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list failures: %w", err)
	}
	defer rows.Close()

	var failures []models.ItemFailure
	for rows.Next() {
		var f models.ItemFailure
		var category, kind, action string
		if err := rows.Scan(&f.RunID, &category, &f.ItemID, &f.ItemName, &kind, &action, &f.Cause); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		f.Category = models.Category(category)
		f.Kind = models.ItemKind(kind)
		f.Action = models.ItemAction(action)
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.Scan(
		&run.ID, &run.SourceAccount, &run.DestAccount,
		&run.StartedAt, &run.FinishedAt, &run.Success,
		&run.Applied, &run.Skipped, &run.Failed,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
