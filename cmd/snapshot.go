package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
	"github.com/desertthunder/rdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Snapshot fetches and prints one account's state across the set categories.
func (r *Runner) Snapshot(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	account := cmd.Args().Get(0)
	if account == "" {
		return fmt.Errorf("%w: snapshot requires <account>", shared.ErrMissingArgument)
	}

	categories, err := parseCategories(cmd)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		categories = models.SetCategories()
	}

	session, err := r.sessionFor(ctx, account)
	if err != nil {
		return err
	}

	snapshots := make(map[models.Category]*models.Snapshot)
	for _, category := range categories {
		if category == models.CategoryPreferences {
			continue
		}

		r.logger.Info("fetching snapshot", "account", account, "category", category)
		snapshot, err := tasks.FetchSnapshot(ctx, session, category)
		if err != nil {
			return err
		}
		snapshots[category] = snapshot
	}

	if cmd.Bool("json") {
		out := make(map[models.Category][]models.Item, len(snapshots))
		for category, snapshot := range snapshots {
			out[category] = snapshot.Items()
		}
		return r.writeJSON(out, true)
	}

	if cmd.Bool("markdown") {
		return r.writePlain("%s", formatter.SnapshotsToMarkdown(session.Name(), snapshots))
	}

	for _, category := range models.SetCategories() {
		snapshot, ok := snapshots[category]
		if !ok {
			continue
		}
		r.writePlain("%s (%d):\n", category, snapshot.Len())
		for _, item := range snapshot.Items() {
			r.writePlain("  %s\n", item.Display())
		}
	}

	return nil
}
