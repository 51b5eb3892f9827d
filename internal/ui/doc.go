// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow for account synchronization:
//  1. [PlanView] : Review the per-category mutation plan before applying
//  2. [SyncView] : Monitor real-time progress updates while the run applies
//  3. [ResultView] : Display the per-category report and any failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the sync Engine, providing non-blocking status reporting during the run.
//
// Keyboard navigation uses vim-style bindings (enter, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
