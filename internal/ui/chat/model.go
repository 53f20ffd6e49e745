// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaynouOliver/onfin-tui/internal/config"
	"github.com/JaynouOliver/onfin-tui/internal/history"
	"github.com/JaynouOliver/onfin-tui/internal/session"
	"github.com/JaynouOliver/onfin-tui/internal/ui/components"
	"github.com/JaynouOliver/onfin-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady   State = iota // Ready for input
	StateWaiting              // Request in flight
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Session
	ctrl           *session.Controller
	timeout        time.Duration
	cancelInflight context.CancelFunc

	// Backend health probe, optional.
	health        func(context.Context) error
	backendStatus string

	// History sidebar data
	hist *history.List

	// UI components
	viewport   *components.ChatViewport
	sidebar    *components.Sidebar
	statusbar  *components.StatusBar
	input      textinput.Model
	spinner    spinner.Model
	sidebarOn  bool

	// Config
	cfg *config.Config
}

// New creates the chat model wired to the given controller.
func New(ctrl *session.Controller, hist *history.List, cfg *config.Config) Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Ask a compliance question..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	vp := components.NewChatViewport(theme)
	if cfg.UI.Markdown {
		vp.SetMarkdownRenderer(components.NewMarkdownRenderer(theme.IsDark, 72))
	}
	vp.SetShowTimestamps(cfg.UI.Timestamps)

	m := Model{
		state:     StateReady,
		theme:     theme,
		ctrl:      ctrl,
		timeout:   cfg.Timeout(),
		hist:      hist,
		viewport:  vp,
		sidebar:   components.NewSidebar(hist, theme),
		statusbar: components.NewStatusBar(theme),
		input:     input,
		spinner:   sp,
		sidebarOn: true,
		cfg:       cfg,
	}

	if cfg.UI.Greeting != "" {
		ctrl.Store().AppendSystem(cfg.UI.Greeting)
	}
	m.refresh()
	return m
}

// WithHealthCheck sets a backend probe that runs once at startup. The result
// shows as backend up/down in the status bar.
func (m Model) WithHealthCheck(check func(context.Context) error) Model {
	m.health = check
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.health != nil {
		cmds = append(cmds, healthCmd(m.health))
	}
	return tea.Batch(cmds...)
}

// refresh re-reads the session store into the view components.
func (m *Model) refresh() {
	snap := m.ctrl.Store().Snapshot()

	m.viewport.SetMessages(snap.Messages)
	m.sidebar.SetCurrentTitle(m.ctrl.Store().Title())
	m.statusbar.SetWaiting(snap.Pending)
	m.statusbar.SetBackendStatus(m.backendStatus)
	m.statusbar.SetSessionInfo(shortThread(snap.ThreadID), len(snap.Messages))

	if snap.Pending {
		m.state = StateWaiting
	} else {
		m.state = StateReady
	}
}

// shortThread abbreviates a thread UUID for display.
func shortThread(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// State returns the current view state. Exposed for tests.
func (m Model) State() State {
	return m.state
}
