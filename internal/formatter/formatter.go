// package formatter renders run results and diffs to various formats (Markdown, CSV, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

// ReportToText renders a run result as an aligned plain-text summary.
func ReportToText(result *models.RunResult) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Sync %s\n", result.ID)
	fmt.Fprintf(&buf, "  /u/%s -> /u/%s\n", result.SourceAccount, result.DestAccount)
	fmt.Fprintf(&buf, "  started %s, took %s\n\n",
		result.StartedAt.Format("2006-01-02 15:04:05"),
		result.FinishedAt.Sub(result.StartedAt).Round(1e9))

	fmt.Fprintf(&buf, "%-15s %8s %8s %8s\n", "category", "applied", "skipped", "failed")
	for _, category := range models.SetCategories() {
		report := result.Report(category)
		if report == nil {
			continue
		}
		if report.FetchErr != nil {
			fmt.Fprintf(&buf, "%-15s fetch failed: %v\n", category, report.FetchErr)
			continue
		}
		fmt.Fprintf(&buf, "%-15s %8d %8d %8d\n", category, report.Applied, report.Skipped, report.Failed)
	}

	if result.Preferences != nil {
		if result.Preferences.Err != nil {
			fmt.Fprintf(&buf, "%-15s copy failed: %v\n", models.CategoryPreferences, result.Preferences.Err)
		} else {
			fmt.Fprintf(&buf, "%-15s %8d keys copied\n", models.CategoryPreferences, result.Preferences.Copied)
		}
	}

	if _, _, failed := result.Totals(); failed > 0 {
		fmt.Fprintf(&buf, "\nFailures:\n")
		for _, category := range models.SetCategories() {
			report := result.Report(category)
			if report == nil {
				continue
			}
			for _, f := range report.Failures {
				fmt.Fprintf(&buf, "  %s %s %s: %v\n", f.Action, category, f.Item.Display(), f.Err)
			}
		}
	}

	return buf.Bytes()
}

// ReportToMarkdown renders a run result as a Markdown document.
func ReportToMarkdown(result *models.RunResult) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Sync report\n\n")
	fmt.Fprintf(&buf, "- **Run**: `%s`\n", result.ID)
	fmt.Fprintf(&buf, "- **Source**: /u/%s\n", result.SourceAccount)
	fmt.Fprintf(&buf, "- **Destination**: /u/%s\n", result.DestAccount)
	fmt.Fprintf(&buf, "- **Started**: %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST"))

	status := "succeeded"
	if !result.Succeeded() {
		status = "completed with failures"
	}
	fmt.Fprintf(&buf, "- **Status**: %s\n\n", status)

	buf.WriteString("| Category | Applied | Skipped | Failed |\n")
	buf.WriteString("|----------|--------:|--------:|-------:|\n")
	for _, category := range models.SetCategories() {
		report := result.Report(category)
		if report == nil {
			continue
		}
		if report.FetchErr != nil {
			fmt.Fprintf(&buf, "| %s | — | — | fetch failed |\n", category)
			continue
		}
		fmt.Fprintf(&buf, "| %s | %d | %d | %d |\n", category, report.Applied, report.Skipped, report.Failed)
	}

	if result.Preferences != nil {
		if result.Preferences.Err != nil {
			fmt.Fprintf(&buf, "| %s | — | — | copy failed |\n", models.CategoryPreferences)
		} else {
			fmt.Fprintf(&buf, "| %s | %d keys | — | 0 |\n", models.CategoryPreferences, result.Preferences.Copied)
		}
	}

	if _, _, failed := result.Totals(); failed > 0 {
		buf.WriteString("\n## Failures\n\n")
		for _, category := range models.SetCategories() {
			report := result.Report(category)
			if report == nil {
				continue
			}
			for _, f := range report.Failures {
				fmt.Fprintf(&buf, "- `%s` %s **%s**: %v\n", category, f.Action, f.Item.Display(), f.Err)
			}
		}
	}

	return buf.Bytes()
}

// FailuresToCSV renders a run's recorded failures as CSV with columns:
// Category, ItemID, Name, Kind, Action, Cause
func FailuresToCSV(result *models.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Category", "ItemID", "Name", "Kind", "Action", "Cause"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, category := range models.SetCategories() {
		report := result.Report(category)
		if report == nil {
			continue
		}
		for _, f := range report.Failures {
			cause := ""
			if f.Err != nil {
				cause = f.Err.Error()
			}
			record := []string{
				string(category),
				f.Item.ID,
				f.Item.Name,
				string(f.Item.Kind),
				string(f.Action),
				cause,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// DiffsToText renders a dry-run plan as plain text.
func DiffsToText(diffs map[models.Category]models.Diff) []byte {
	var buf bytes.Buffer

	for _, category := range models.SetCategories() {
		diff, ok := diffs[category]
		if !ok {
			continue
		}

		fmt.Fprintf(&buf, "%s: %d to add, %d to remove\n", category, len(diff.ToAdd), len(diff.ToRemove))
		for _, item := range diff.ToAdd {
			fmt.Fprintf(&buf, "  + %s\n", item.Display())
		}
		for _, item := range diff.ToRemove {
			fmt.Fprintf(&buf, "  - %s\n", item.Display())
		}
	}

	if buf.Len() == 0 {
		buf.WriteString("Nothing to do: destination already matches source.\n")
	}

	return buf.Bytes()
}

// SnapshotsToMarkdown renders one account's snapshots as a Markdown document.
func SnapshotsToMarkdown(account string, snapshots map[models.Category]*models.Snapshot) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# /u/%s\n\n", account)

	for _, category := range models.SetCategories() {
		snapshot, ok := snapshots[category]
		if !ok {
			continue
		}

		title := strings.ToUpper(string(category)[:1]) + string(category)[1:]
		fmt.Fprintf(&buf, "## %s (%d)\n\n", title, snapshot.Len())
		for _, item := range snapshot.Items() {
			if item.Kind == models.KindPost || item.Kind == models.KindComment {
				fmt.Fprintf(&buf, "- %s (%s)\n", item.ID, item.Kind)
			} else {
				fmt.Fprintf(&buf, "- %s\n", item.Display())
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// WriteReport writes a run result to path in the named format (markdown, csv, json, txt).
func WriteReport(result *models.RunResult, format, path string) error {
	var data []byte
	var err error

	switch format {
	case "markdown", "md":
		data = ReportToMarkdown(result)
	case "csv":
		data, err = FailuresToCSV(result)
	case "json":
		data, err = shared.MarshalJSON(result, true)
	case "txt", "text", "":
		data = ReportToText(result)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
