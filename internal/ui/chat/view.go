// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JaynouOliver/onfin-tui/internal/ui/components"
)

// sidebarColumnWidth returns the horizontal space the sidebar column takes.
func sidebarColumnWidth() int {
	return components.SidebarWidth
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := m.renderHeader()
	transcript := m.viewport.View()
	input := m.renderInput()
	status := m.statusbar.View()

	main := lipgloss.JoinVertical(lipgloss.Left, transcript, input)

	var body string
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	} else {
		body = main
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

// renderHeader renders the title bar.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("onfin")
	subtitle := m.theme.HeaderSubtitle.Render("SEBI compliance assistant")
	return m.theme.Header.Width(m.width - 2).Render(title + "  " + subtitle)
}

// renderInput renders the input line, replaced by the spinner while a
// request is in flight.
func (m Model) renderInput() string {
	var line string
	if m.state == StateWaiting {
		line = m.spinner.View() + " " + m.theme.ThinkingText.Render("waiting for the agent...")
	} else {
		line = m.input.View()
	}

	width := m.width
	if m.showSidebar() {
		width -= sidebarColumnWidth()
	}

	return m.theme.InputContainer.Width(maxIntChat(width-2, 10)).Render(line)
}

// maxIntChat returns the larger of two ints.
func maxIntChat(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// TranscriptText returns the rendered transcript stripped of styling.
// Exposed for tests.
func (m Model) TranscriptText() string {
	var sb strings.Builder
	for _, msg := range m.ctrl.Store().Messages() {
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
