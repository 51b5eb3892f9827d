package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

// reconcile applies a diff against the destination session and reports the
// per-item outcomes. Subscriptions use the bulk endpoint; friends and saved
// items are applied one call at a time, continuing past individual failures.
func (e *Engine) reconcile(ctx context.Context, diff models.Diff, progress chan<- ProgressUpdate) *models.ReconcileReport {
	switch diff.Category {
	case models.CategorySubscriptions:
		return e.reconcileSubscriptions(ctx, diff, progress)
	case models.CategoryFriends:
		return e.reconcileFriends(ctx, diff, progress)
	case models.CategorySaved:
		return e.reconcileSaved(ctx, diff, progress)
	default:
		report := models.NewReconcileReport(diff.Category)
		report.FetchErr = fmt.Errorf("%w: cannot reconcile category %q", shared.ErrInvalidArgument, diff.Category)
		return report
	}
}

// reconcileSubscriptions issues at most one bulk call per direction. The
// remote API takes a distinguished primary subreddit plus an auxiliary list,
// so an empty set means no call at all: there is no valid way to express it.
//
// Bulk subscribe exhibits read-after-write lag on the remote, so the reported
// success is trusted as-is; re-fetching to verify would read stale state.
func (e *Engine) reconcileSubscriptions(ctx context.Context, diff models.Diff, progress chan<- ProgressUpdate) *models.ReconcileReport {
	report := models.NewReconcileReport(diff.Category)

	apply := func(items []models.Item, action models.ItemAction) {
		if len(items) == 0 {
			return
		}

		e.sendProgress(progress, applyBulkUpdate(diff.Category, action, len(items)))

		primary := items[0].Name
		others := make([]string, 0, len(items)-1)
		for _, item := range items[1:] {
			others = append(others, item.Name)
		}

		var err error
		if action == models.ActionAdd {
			err = e.dest.Subscribe(ctx, primary, others)
		} else {
			err = e.dest.Unsubscribe(ctx, primary, others)
		}

		for _, item := range items {
			report.Record(models.ItemResult{Item: item, Action: action, Status: statusFor(err), Err: err})
		}
	}

	apply(diff.ToAdd, models.ActionAdd)
	apply(diff.ToRemove, models.ActionRemove)

	return report
}

// reconcileFriends adds and removes friends one call at a time. Calls are
// independent: a failure is recorded and processing continues.
func (e *Engine) reconcileFriends(ctx context.Context, diff models.Diff, progress chan<- ProgressUpdate) *models.ReconcileReport {
	report := models.NewReconcileReport(diff.Category)
	total := len(diff.ToAdd) + len(diff.ToRemove)
	step := 0

	for _, item := range diff.ToAdd {
		step++
		e.sendProgress(progress, applyItemUpdate(diff.Category, step, total, item, models.ActionAdd))
		err := e.dest.Friend(ctx, item.Name)
		report.Record(models.ItemResult{Item: item, Action: models.ActionAdd, Status: statusFor(err), Err: err})
	}

	for _, item := range diff.ToRemove {
		step++
		e.sendProgress(progress, applyItemUpdate(diff.Category, step, total, item, models.ActionRemove))
		err := e.dest.Unfriend(ctx, item.Name)
		report.Record(models.ItemResult{Item: item, Action: models.ActionRemove, Status: statusFor(err), Err: err})
	}

	return report
}

// reconcileSaved saves and unsaves items one call at a time, dispatched by the
// post/comment discriminant. An unrecognized kind is recorded as a failure,
// never silently dropped.
func (e *Engine) reconcileSaved(ctx context.Context, diff models.Diff, progress chan<- ProgressUpdate) *models.ReconcileReport {
	report := models.NewReconcileReport(diff.Category)
	total := len(diff.ToAdd) + len(diff.ToRemove)
	step := 0

	apply := func(item models.Item, action models.ItemAction) {
		step++
		e.sendProgress(progress, applyItemUpdate(diff.Category, step, total, item, action))

		if item.Kind != models.KindPost && item.Kind != models.KindComment {
			err := fmt.Errorf("%w: %q", shared.ErrUnsupportedItemKind, item.Kind)
			report.Record(models.ItemResult{Item: item, Action: action, Status: models.StatusFailed, Err: err})
			return
		}

		var err error
		if action == models.ActionAdd {
			err = e.dest.Save(ctx, item)
		} else {
			err = e.dest.Unsave(ctx, item)
		}
		report.Record(models.ItemResult{Item: item, Action: action, Status: statusFor(err), Err: err})
	}

	for _, item := range diff.ToAdd {
		apply(item, models.ActionAdd)
	}
	for _, item := range diff.ToRemove {
		apply(item, models.ActionRemove)
	}

	return report
}

// copyPreferences reads the source's full preference mapping and writes it to
// the destination as one wholesale overwrite. No per-key diffing; re-applying
// is idempotent.
func (e *Engine) copyPreferences(ctx context.Context, progress chan<- ProgressUpdate) *models.PreferenceReport {
	report := &models.PreferenceReport{}

	prefs, err := e.source.Preferences(ctx)
	if err != nil {
		report.Err = fmt.Errorf("failed to read preferences from %s: %w", e.source.Name(), err)
		return report
	}

	e.sendProgress(progress, copyPrefsUpdate(e.dest.Name()))

	if err := e.dest.SetPreferences(ctx, prefs); err != nil {
		report.Err = fmt.Errorf("failed to write preferences to %s: %w", e.dest.Name(), err)
		return report
	}

	report.Copied = len(prefs)
	return report
}

// statusFor classifies a mutation error: nil applied, already-in-state
// skipped (a race beat us to the terminal state), anything else failed.
func statusFor(err error) models.ItemStatus {
	switch {
	case err == nil:
		return models.StatusApplied
	case errors.Is(err, shared.ErrAlreadyExists):
		return models.StatusSkipped
	default:
		return models.StatusFailed
	}
}
