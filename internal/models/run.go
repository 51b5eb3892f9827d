package models

import (
	"fmt"
	"time"
)

// SyncRun is a completed run as stored in the run-history database.
type SyncRun struct {
	ID            string
	SourceAccount string
	DestAccount   string
	StartedAt     time.Time
	FinishedAt    time.Time
	Success       bool
	Applied       int
	Skipped       int
	Failed        int
}

// Validate checks that the run has the fields the store requires.
func (r *SyncRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("sync run missing id")
	}
	if r.SourceAccount == "" || r.DestAccount == "" {
		return fmt.Errorf("sync run missing account names")
	}
	return nil
}

// ItemFailure is one failed mutation as stored in the run-history database.
// It carries enough detail (identity, kind, action, cause) for a later run to
// retry just the failed items.
type ItemFailure struct {
	RunID    string
	Category Category
	ItemID   string
	ItemName string
	Kind     ItemKind
	Action   ItemAction
	Cause    string
}

// NewSyncRun converts a run result into its persisted form plus the failure
// rows to store alongside it.
func NewSyncRun(result *RunResult) (*SyncRun, []ItemFailure) {
	applied, skipped, failed := result.Totals()
	run := &SyncRun{
		ID:            result.ID,
		SourceAccount: result.SourceAccount,
		DestAccount:   result.DestAccount,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		Success:       result.Succeeded(),
		Applied:       applied,
		Skipped:       skipped,
		Failed:        failed,
	}

	var failures []ItemFailure
	for _, category := range Categories() {
		report := result.Report(category)
		if report == nil {
			continue
		}
		for _, f := range report.Failures {
			cause := ""
			if f.Err != nil {
				cause = f.Err.Error()
			}
			failures = append(failures, ItemFailure{
				RunID:    result.ID,
				Category: category,
				ItemID:   f.Item.ID,
				ItemName: f.Item.Name,
				Kind:     f.Item.Kind,
				Action:   f.Action,
				Cause:    cause,
			})
		}
	}

	return run, failures
}
