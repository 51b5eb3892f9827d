package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/services"
	"github.com/desertthunder/rdx/internal/shared"
)

// SyncEngine defines operations for synchronizing account state between two sessions.
type SyncEngine interface {
	// Run performs a full source → destination sync over the given categories
	// (all categories when nil) and reports per-item outcomes. The returned
	// error covers engine misuse only; remote failures land in the result.
	Run(ctx context.Context, progress chan<- ProgressUpdate, categories []models.Category) (*models.RunResult, error)

	// Plan computes the per-category diffs without applying anything.
	Plan(ctx context.Context, progress chan<- ProgressUpdate, categories []models.Category) (map[models.Category]models.Diff, error)
}

// Engine implements SyncEngine for one (source, destination) account pair.
// The source is authoritative: the destination converges to it.
type Engine struct {
	source services.Session
	dest   services.Session
}

// NewEngine creates an Engine reconciling dest against source.
func NewEngine(source, dest services.Session) *Engine {
	return &Engine{source: source, dest: dest}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// fetchPair snapshots one category on both accounts. The two sessions never
// share state, so the fetches run concurrently; writes elsewhere stay serial
// behind each session's rate limiter.
func (e *Engine) fetchPair(ctx context.Context, category models.Category, progress chan<- ProgressUpdate) (src, dst *models.Snapshot, err error) {
	e.sendProgress(progress, fetchSourceUpdate(category, e.source.Name()))
	e.sendProgress(progress, fetchDestUpdate(category, e.dest.Name()))

	var srcErr, dstErr error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		src, srcErr = FetchSnapshot(ctx, e.source, category)
	}()
	go func() {
		defer wg.Done()
		dst, dstErr = FetchSnapshot(ctx, e.dest, category)
	}()
	wg.Wait()

	if srcErr != nil {
		return nil, nil, srcErr
	}
	if dstErr != nil {
		return nil, nil, dstErr
	}
	return src, dst, nil
}

// resolveCategories validates the requested categories, defaulting to all of
// them in run order.
func resolveCategories(categories []models.Category) ([]models.Category, error) {
	if len(categories) == 0 {
		return models.Categories(), nil
	}

	seen := make(map[models.Category]bool)
	var resolved []models.Category
	for _, category := range models.Categories() {
		for _, requested := range categories {
			if requested == category && !seen[category] {
				seen[category] = true
				resolved = append(resolved, category)
			}
		}
	}

	for _, requested := range categories {
		if !seen[requested] {
			return nil, fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, requested)
		}
	}

	return resolved, nil
}

// Run performs a full sync across the requested categories in fixed order:
// subscriptions, friends, saved, preferences. Category failures are isolated;
// the run always returns a result describing what succeeded, was skipped,
// and failed.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, categories []models.Category) (*models.RunResult, error) {
	if e.source == nil || e.dest == nil {
		return nil, fmt.Errorf("%w: session not initialized", shared.ErrNotAuthenticated)
	}

	resolved, err := resolveCategories(categories)
	if err != nil {
		return nil, err
	}

	result := &models.RunResult{
		ID:            shared.GenerateID(),
		SourceAccount: e.source.Name(),
		DestAccount:   e.dest.Name(),
		StartedAt:     time.Now().UTC(),
		Reports:       make(map[models.Category]*models.ReconcileReport),
	}

	for _, category := range resolved {
		if category == models.CategoryPreferences {
			result.Preferences = e.copyPreferences(ctx, progress)
			continue
		}

		src, dst, err := e.fetchPair(ctx, category, progress)
		if err != nil {
			// Nothing to diff against; skip reconciliation for this
			// category and keep going.
			report := models.NewReconcileReport(category)
			report.FetchErr = err
			result.Reports[category] = report
			e.sendProgress(progress, categoryDoneUpdate(report))
			continue
		}

		diff := DiffSnapshots(src, dst)
		e.sendProgress(progress, compareUpdate(diff))

		report := e.reconcile(ctx, diff, progress)
		result.Reports[category] = report
		e.sendProgress(progress, categoryDoneUpdate(report))
	}

	result.FinishedAt = time.Now().UTC()
	e.sendProgress(progress, runDoneUpdate(result))
	return result, nil
}

// Plan computes the per-category diffs without mutating the destination.
// Preferences are excluded: they are copied wholesale, never diffed.
func (e *Engine) Plan(ctx context.Context, progress chan<- ProgressUpdate, categories []models.Category) (map[models.Category]models.Diff, error) {
	if e.source == nil || e.dest == nil {
		return nil, fmt.Errorf("%w: session not initialized", shared.ErrNotAuthenticated)
	}

	resolved, err := resolveCategories(categories)
	if err != nil {
		return nil, err
	}

	diffs := make(map[models.Category]models.Diff)
	for _, category := range resolved {
		if category == models.CategoryPreferences {
			continue
		}

		src, dst, err := e.fetchPair(ctx, category, progress)
		if err != nil {
			return nil, err
		}

		diff := DiffSnapshots(src, dst)
		e.sendProgress(progress, compareUpdate(diff))
		diffs[category] = diff
	}

	return diffs, nil
}
