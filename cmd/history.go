package main

import (
	"context"
	"time"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/repositories"
	"github.com/urfave/cli/v3"
)

// History lists recent runs from the local database, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	runs, err := repo.List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if !cmd.Bool("failures") {
			return r.writeJSON(runs, true)
		}

		type runWithFailures struct {
			models.SyncRun
			Failures []models.ItemFailure `json:"failures,omitempty"`
		}
		out := make([]runWithFailures, 0, len(runs))
		for _, run := range runs {
			failures, err := repo.Failures(run.ID)
			if err != nil {
				return err
			}
			out = append(out, runWithFailures{SyncRun: run, Failures: failures})
		}
		return r.writeJSON(out, true)
	}

	if len(runs) == 0 {
		return r.writePlainln("No runs recorded yet. Run `rdx sync` first.")
	}

	for _, run := range runs {
		status := "ok"
		if !run.Success {
			status = "failed"
		}
		r.writePlain("%s  %s -> %s  %s  applied=%d skipped=%d failed=%d  [%s]\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.SourceAccount, run.DestAccount,
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
			run.Applied, run.Skipped, run.Failed, status)

		if !cmd.Bool("failures") || run.Failed == 0 {
			continue
		}
		failures, err := repo.Failures(run.ID)
		if err != nil {
			return err
		}
		for _, f := range failures {
			r.writePlain("    %s %s %s: %s\n", f.Action, f.Category, f.ItemName, f.Cause)
		}
	}

	return nil
}
