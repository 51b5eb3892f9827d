package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	PlanView
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.Engine
	source       string
	dest         string
	categories   []models.Category
	plan         map[models.Category]models.Diff
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	recent       []string
	result       *models.RunResult
	err          error
	width        int
	height       int
	help         help.Model
	keys         keyMap
}

type planComputedMsg struct {
	plan map[models.Category]models.Diff
	err  error
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	result *models.RunResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.Engine, source, dest string, categories []models.Category) *Model {
	return &Model{
		ctx:        ctx,
		view:       LoadingView,
		engine:     engine,
		source:     source,
		dest:       dest,
		categories: categories,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init computes the mutation plan before anything is applied.
func (m *Model) Init() tea.Cmd {
	return m.computePlan()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlanView:
			return m.handlePlanKeys(msg)
		case ResultView, LoadingView:
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		case SyncView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case planComputedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.plan = msg.plan
		m.view = PlanView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		m.recent = append(m.recent, m.progress.Message)
		if len(m.recent) > 10 {
			m.recent = m.recent[len(m.recent)-10:]
		}
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case PlanView:
		return m.renderPlan()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		return m, tea.Quit
	case "y":
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) computePlan() tea.Cmd {
	return func() tea.Msg {
		plan, err := m.engine.Plan(m.ctx, nil, m.categories)
		return planComputedMsg{plan: plan, err: err}
	}
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Run(m.ctx, m.progressChan, m.categories)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render(fmt.Sprintf("rdx: /u/%s → /u/%s", m.source, m.dest))
	return fmt.Sprintf("%s\nFetching snapshots from both accounts...\n\n%s",
		title, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderPlan() string {
	title := styles.title.Render(fmt.Sprintf("Sync plan: /u/%s → /u/%s", m.source, m.dest))

	var b strings.Builder
	empty := true
	for _, category := range models.SetCategories() {
		diff, ok := m.plan[category]
		if !ok {
			continue
		}
		if !diff.Empty() {
			empty = false
		}
		b.WriteString(fmt.Sprintf("%s: %s%s\n",
			category,
			styles.ok.Render(fmt.Sprintf("+%d", len(diff.ToAdd))),
			styles.warn.Render(fmt.Sprintf(" -%d", len(diff.ToRemove))),
		))
	}
	b.WriteString(fmt.Sprintf("%s: copied wholesale\n", models.CategoryPreferences))

	prompt := "Apply these changes?"
	if empty {
		prompt = "Set categories already match; preferences will still be copied. Continue?"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, b.String(), prompt, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchSource, tasks.FetchDest:
		phase = fmt.Sprintf("Fetching %s...", m.progress.Category)
	case tasks.Apply:
		phase = fmt.Sprintf("Applying %s (%d/%d)", m.progress.Category, m.progress.Step, m.progress.Total)
	case tasks.CopyPrefs:
		phase = "Copying preferences..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, phase, strings.Join(m.recent, "\n"))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Sync failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Sync complete")
	if !m.result.Succeeded() {
		title = styles.warn.Render("Sync completed with failures")
	}

	var b strings.Builder
	for _, category := range models.SetCategories() {
		report := m.result.Report(category)
		if report == nil {
			continue
		}
		if report.FetchErr != nil {
			b.WriteString(fmt.Sprintf("%s: %s\n", category, styles.err.Render(fmt.Sprintf("fetch failed: %v", report.FetchErr))))
			continue
		}
		line := fmt.Sprintf("%s: %d applied, %d skipped", category, report.Applied, report.Skipped)
		if report.Failed > 0 {
			line += styles.err.Render(fmt.Sprintf(", %d failed", report.Failed))
		}
		b.WriteString(line + "\n")
	}

	if prefs := m.result.Preferences; prefs != nil {
		if prefs.Err != nil {
			b.WriteString(fmt.Sprintf("%s: %s\n", models.CategoryPreferences, styles.err.Render(fmt.Sprintf("copy failed: %v", prefs.Err))))
		} else {
			b.WriteString(fmt.Sprintf("%s: %d keys copied\n", models.CategoryPreferences, prefs.Copied))
		}
	}

	var failed string
	for _, category := range models.SetCategories() {
		report := m.result.Report(category)
		if report == nil {
			continue
		}
		for _, f := range report.Failures {
			failed += fmt.Sprintf("\n  • %s %s: %v", f.Action, f.Item.Display(), f.Err)
		}
	}
	if failed != "" {
		failed = "\n" + styles.warn.Render("Failures:") + failed + "\n"
	}

	return fmt.Sprintf("%s\n%s%s\n%s", title, b.String(), failed, helpView)
}
