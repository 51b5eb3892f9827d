package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rdx/internal/shared"
	"github.com/desertthunder/rdx/internal/tasks"
	"github.com/desertthunder/rdx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs an interactive sync: compute the plan, show it, and apply on
// confirmation with live progress.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	source := cmd.Args().Get(0)
	dest := cmd.Args().Get(1)
	if source == "" || dest == "" {
		return fmt.Errorf("%w: tui requires <source> <dest>", shared.ErrMissingArgument)
	}
	if source == dest {
		return fmt.Errorf("%w: source and destination must differ", shared.ErrInvalidArgument)
	}

	categories, err := parseCategories(cmd)
	if err != nil {
		return err
	}

	// The alternate screen owns stdout, so logs go to a file for the
	// duration of the program.
	logger, err := shared.NewFileLogger("./tmp/rdx-tui.log")
	if err != nil {
		return err
	}
	r.SetLogger(logger)

	sourceSession, err := r.sessionFor(ctx, source)
	if err != nil {
		return err
	}
	destSession, err := r.sessionFor(ctx, dest)
	if err != nil {
		return err
	}

	engine := tasks.NewEngine(sourceSession, destSession)
	model := ui.NewModel(ctx, engine, source, dest, categories)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui exited with an error: %w", err)
	}

	return nil
}
