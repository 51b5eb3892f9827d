package tasks

import (
	"fmt"

	"github.com/desertthunder/rdx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase    Phase           // Operation phase
	Category models.Category // Category being processed, empty for run-level events
	Step     int             // Current step number within phase
	Total    int             // Total steps in this phase
	Message  string          // Human-readable message for display
	Data     any             // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchDest
	Compare
	Apply
	CopyPrefs
	CategoryDone
	RunDone
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchDest:
		return "fetch_dest"
	case Compare:
		return "compare"
	case Apply:
		return "apply"
	case CopyPrefs:
		return "copy_prefs"
	case CategoryDone:
		return "category_done"
	case RunDone:
		return "run_done"
	default:
		return ""
	}
}

func fetchSourceUpdate(category models.Category, account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    FetchSource,
		Category: category,
		Step:     1,
		Total:    2,
		Message:  fmt.Sprintf("Fetching %s from /u/%s...", category, account),
	}
}

func fetchDestUpdate(category models.Category, account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    FetchDest,
		Category: category,
		Step:     2,
		Total:    2,
		Message:  fmt.Sprintf("Fetching %s from /u/%s...", category, account),
	}
}

func compareUpdate(diff models.Diff) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Compare,
		Category: diff.Category,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("%s: %d to add, %d to remove", diff.Category, len(diff.ToAdd), len(diff.ToRemove)),
		Data:     diff,
	}
}

func applyItemUpdate(category models.Category, step, total int, item models.Item, action models.ItemAction) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Apply,
		Category: category,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] %s %s", step, total, action, item.Display()),
	}
}

func applyBulkUpdate(category models.Category, action models.ItemAction, count int) ProgressUpdate {
	verb := "Subscribing to"
	if action == models.ActionRemove {
		verb = "Unsubscribing from"
	}
	return ProgressUpdate{
		Phase:    Apply,
		Category: category,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("%s %d subreddits...", verb, count),
	}
}

func copyPrefsUpdate(account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    CopyPrefs,
		Category: models.CategoryPreferences,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Copying preferences to /u/%s...", account),
	}
}

func categoryDoneUpdate(report *models.ReconcileReport) ProgressUpdate {
	msg := fmt.Sprintf("%s: %d applied, %d skipped, %d failed",
		report.Category, report.Applied, report.Skipped, report.Failed)
	if report.FetchErr != nil {
		msg = fmt.Sprintf("%s: fetch failed: %v", report.Category, report.FetchErr)
	}
	return ProgressUpdate{
		Phase:    CategoryDone,
		Category: report.Category,
		Step:     1,
		Total:    1,
		Message:  msg,
		Data:     report,
	}
}

func runDoneUpdate(result *models.RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunDone,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync complete: /u/%s → /u/%s", result.SourceAccount, result.DestAccount),
		Data:    result,
	}
}
