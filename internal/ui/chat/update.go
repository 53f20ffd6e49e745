// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaynouOliver/onfin-tui/internal/export"
	"github.com/JaynouOliver/onfin-tui/internal/session"
	"github.com/JaynouOliver/onfin-tui/internal/ui/components"
	"github.com/JaynouOliver/onfin-tui/internal/ui/styles"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ReplyMsg:
		// A reply from a superseded session must not release the context of
		// the request currently in flight.
		if msg.Result.Generation == m.ctrl.Store().Generation() && m.cancelInflight != nil {
			m.cancelInflight()
			m.cancelInflight = nil
		}
		m.ctrl.Resolve(msg.Result, msg.Reply, msg.Err)
		m.refresh()
		return m, nil

	case HealthMsg:
		if msg.Err != nil {
			m.backendStatus = components.BackendOffline
		} else {
			m.backendStatus = components.BackendOnline
		}
		m.refresh()
		return m, nil

	case StoreChangedMsg:
		m.refresh()
		return m, nil

	case NewSessionMsg:
		m.startNewSession()
		return m, nil

	case ConfigReloadedMsg:
		themeChanged := msg.Config.UI.Theme != m.cfg.UI.Theme
		m.cfg = msg.Config
		m.timeout = msg.Config.Timeout()
		if themeChanged {
			m.setTheme(msg.Config.UI.Theme)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey routes key presses to the input, the viewport, or actions.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "ctrl+n":
		m.startNewSession()
		return m, nil

	case "ctrl+s":
		m.saveTranscript()
		return m, nil

	case "ctrl+t":
		if m.theme.IsDark {
			m.setTheme("light")
		} else {
			m.setTheme("dark")
		}
		return m, nil

	case "ctrl+b":
		m.sidebarOn = !m.sidebarOn
		m.resize(m.width, m.height)
		return m, nil

	case "enter":
		return m.submitInput()

	case "up", "down", "pgup", "pgdn", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput runs request admission for the current input line. Rejected
// submissions (empty input, request already in flight) leave everything
// untouched; the input keeps its text so nothing is lost.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	res, err := m.ctrl.Begin(m.input.Value())
	if err != nil {
		if errors.Is(err, session.ErrEmptyInput) {
			m.input.SetValue("")
		}
		return m, nil
	}

	m.input.SetValue("")
	m.refresh()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	m.cancelInflight = cancel

	return m, tea.Batch(
		dispatchCmd(ctx, m.ctrl, res),
		m.spinner.Tick,
	)
}

// saveTranscript writes the conversation to a Markdown file in the current
// directory and reports the result as a system message.
func (m *Model) saveTranscript() {
	snap := m.ctrl.Store().Snapshot()
	if len(snap.Messages) == 0 {
		return
	}

	t := &export.Transcript{
		Title:    m.ctrl.Store().Title(),
		ThreadID: snap.ThreadID,
		Messages: snap.Messages,
	}
	path, err := export.ToFile(t, export.NewMarkdownExporter(nil), nil)
	if err != nil {
		m.ctrl.Store().AppendSystem("Save failed: " + err.Error())
	} else {
		m.ctrl.Store().AppendSystem("Transcript saved to " + path)
	}
	m.refresh()
}

// setTheme rebuilds the styled components for the given theme mode,
// preserving transcript and session state.
func (m *Model) setTheme(mode string) {
	m.theme = styles.NewTheme(mode)

	m.viewport = components.NewChatViewport(m.theme)
	if m.cfg.UI.Markdown {
		m.viewport.SetMarkdownRenderer(components.NewMarkdownRenderer(m.theme.IsDark, 72))
	}
	m.viewport.SetShowTimestamps(m.cfg.UI.Timestamps)
	m.sidebar = components.NewSidebar(m.hist, m.theme)
	m.statusbar = components.NewStatusBar(m.theme)
	m.input.PromptStyle = m.theme.InputPrompt
	m.input.PlaceholderStyle = m.theme.InputPlaceholder
	m.spinner.Style = m.theme.Spinner

	m.resize(m.width, m.height)
	m.refresh()
}

// startNewSession archives the current conversation title and resets the
// session. The in-flight request, if any, is cancelled; a response that
// already left the backend settles as stale and is discarded.
func (m *Model) startNewSession() {
	if m.cancelInflight != nil {
		m.cancelInflight()
		m.cancelInflight = nil
	}
	m.hist.Add(m.ctrl.Store().Title())
	m.ctrl.StartNewSession()

	if m.cfg.UI.Greeting != "" {
		m.ctrl.Store().AppendSystem(m.cfg.UI.Greeting)
	}
	m.refresh()
}

// resize propagates new terminal dimensions to every component.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	chatWidth := width
	if m.showSidebar() {
		chatWidth -= sidebarColumnWidth()
	}

	// Header, input, and status bar each take vertical space.
	viewportHeight := height - 6
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	m.viewport.SetSize(chatWidth-2, viewportHeight)
	m.sidebar.SetHeight(viewportHeight)
	m.statusbar.SetWidth(width)
	m.input.Width = chatWidth - 6
}

// showSidebar reports whether the sidebar is enabled and the layout is wide
// enough for it.
func (m *Model) showSidebar() bool {
	return m.sidebarOn && m.theme.GetLayoutMode() == styles.LayoutWide
}
