package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/services"
	"github.com/desertthunder/rdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SessionFactory builds an unauthenticated session from account credentials.
// Injected so tests can substitute doubles for the real Reddit client.
type SessionFactory func(credentials map[string]string) (services.Session, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	sessions SessionFactory
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Output   io.Writer
	Sessions SessionFactory
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Sessions == nil {
		opts.Sessions = func(credentials map[string]string) (services.Session, error) {
			return services.NewRedditSession(credentials)
		}
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		sessions: opts.Sessions,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, syncCommand, snapshotCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger (used by the TUI to log to a file).
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// loadConfig reloads the runner's config from the command's --config flag
// when the file exists.
func (r *Runner) loadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current", "path", path, "error", err)
		return
	}
	r.config = config
}

// sessionFor builds and authenticates a session for the named account.
func (r *Runner) sessionFor(ctx context.Context, account string) (services.Session, error) {
	creds, err := r.config.Account(account)
	if err != nil {
		return nil, err
	}

	session, err := r.sessions(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", account, err)
	}

	if err := session.Authenticate(ctx, creds); err != nil {
		return nil, fmt.Errorf("failed to authenticate %s: %w", account, err)
	}

	return session, nil
}

// openDatabase opens the run-history database and applies pending migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// parseCategories resolves the --categories flag, empty meaning all.
func parseCategories(cmd *cli.Command) ([]models.Category, error) {
	raw := cmd.String("categories")
	if raw == "" {
		return nil, nil
	}

	var categories []models.Category
	for _, part := range strings.Split(raw, ",") {
		category, ok := models.ParseCategory(part)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", shared.ErrInvalidFlag, part)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
