package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/repositories"
	"github.com/desertthunder/rdx/internal/shared"
	"github.com/desertthunder/rdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync reconciles the destination account's state to match the source account.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	source := cmd.Args().Get(0)
	dest := cmd.Args().Get(1)
	if source == "" || dest == "" {
		return fmt.Errorf("%w: sync requires <source-account> <dest-account>", shared.ErrMissingArgument)
	}
	if source == dest {
		return fmt.Errorf("%w: source and destination must differ", shared.ErrInvalidArgument)
	}

	categories, err := parseCategories(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("starting sync", "source", source, "dest", dest)

	sourceSession, err := r.sessionFor(ctx, source)
	if err != nil {
		return err
	}
	destSession, err := r.sessionFor(ctx, dest)
	if err != nil {
		return err
	}

	engine := tasks.NewEngine(sourceSession, destSession)

	if cmd.Bool("dry-run") {
		diffs, err := engine.Plan(ctx, nil, categories)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(diffs, true)
		}
		return r.writePlain("%s", formatter.DiffsToText(diffs))
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource, tasks.FetchDest:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Compare:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.Apply, tasks.CopyPrefs:
				r.writePlain("   %s\n", update.Message)
			case tasks.CategoryDone:
				r.writePlain("✓  %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh, categories)
	close(progressCh)
	<-drained
	if err != nil {
		return err
	}

	if !cmd.Bool("no-history") {
		if err := r.recordRun(result); err != nil {
			r.logger.Warn("failed to record run in history", "error", err)
		}
	}

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteReport(result, cmd.String("format"), output); err != nil {
			return err
		}
		r.logger.Info("report written", "path", output)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlainln("%s", formatter.ReportToText(result))

	if !result.Succeeded() {
		applied, _, failed := result.Totals()
		r.logger.Warn("sync completed with failures", "applied", applied, "failed", failed)
	}
	return nil
}

// recordRun persists the run and its failures to the history database.
func (r *Runner) recordRun(result *models.RunResult) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	run, failures := models.NewSyncRun(result)
	return repositories.NewRunRepository(db).Create(run, failures)
}
