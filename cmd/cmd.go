// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func categoriesFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "categories",
		Usage: "Comma-separated categories to process (subscriptions, friends, saved, preferences)",
	}
}

// setupCommand initializes config and the run-history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the run-history database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// syncCommand runs a full source → destination reconciliation
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Sync subscriptions, friends, saved items, and preferences between two accounts",
		ArgsUsage: "<source-account> <dest-account>",
		Flags: []cli.Flag{
			configFlag(),
			categoriesFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Compute and print the mutation plan without applying it",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run result as JSON",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the run report to a file",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report file format: txt, markdown, csv, json",
				Value: "txt",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Skip recording the run in the history database",
			},
		},
		Action: r.Sync,
	}
}

// snapshotCommand dumps one account's state
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "snapshot",
		Usage:     "Fetch and print one account's subscriptions, friends, and saved items",
		ArgsUsage: "<account>",
		Flags: []cli.Flag{
			configFlag(),
			categoriesFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Output Markdown",
			},
		},
		Action: r.Snapshot,
	}
}

// historyCommand lists past runs from the history database
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past sync runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "failures",
				Usage: "Include the recorded item failures for each run",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand launches the interactive interface
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Review and apply a sync interactively",
		ArgsUsage: "<source-account> <dest-account>",
		Flags: []cli.Flag{
			configFlag(),
			categoriesFlag(),
		},
		Action: r.TUI,
	}
}
