// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JaynouOliver/onfin-tui/internal/ui/styles"
)

// Backend connectivity states shown in the status bar.
const (
	BackendUnknown = ""
	BackendOnline  = "online"
	BackendOffline = "offline"
)

// StatusBar renders the bottom status line: session state, backend
// connectivity, and session info on the left, key hints on the right.
type StatusBar struct {
	width       int
	waiting     bool
	backend     string
	threadShort string
	msgCount    int
	theme       *styles.Theme
}

// NewStatusBar creates a new StatusBar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{width: 80, theme: theme}
}

// SetWidth sets the bar width.
func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// SetWaiting marks whether a request is in flight.
func (sb *StatusBar) SetWaiting(waiting bool) {
	sb.waiting = waiting
}

// SetBackendStatus records the last known backend connectivity.
func (sb *StatusBar) SetBackendStatus(status string) {
	sb.backend = status
}

// SetSessionInfo records the short thread identifier and message count.
func (sb *StatusBar) SetSessionInfo(threadShort string, msgCount int) {
	sb.threadShort = threadShort
	sb.msgCount = msgCount
}

// View renders the status bar.
func (sb *StatusBar) View() string {
	state := sb.theme.StatusReady.Render("ready")
	if sb.waiting {
		state = sb.theme.StatusWait.Render("waiting")
	}

	switch sb.backend {
	case BackendOnline:
		state += sb.theme.ShortcutDesc.Render("  |  ") + sb.theme.StatusReady.Render("backend up")
	case BackendOffline:
		state += sb.theme.ShortcutDesc.Render("  |  ") + sb.theme.StatusWait.Render("backend down")
	}

	if sb.threadShort != "" {
		state += sb.theme.ShortcutDesc.Render(
			fmt.Sprintf("  |  %s  %d msgs", sb.threadShort, sb.msgCount))
	}

	hints := strings.Join([]string{
		sb.theme.ShortcutKey.Render("enter") + sb.theme.ShortcutDesc.Render(" send"),
		sb.theme.ShortcutKey.Render("ctrl+n") + sb.theme.ShortcutDesc.Render(" new session"),
		sb.theme.ShortcutKey.Render("ctrl+s") + sb.theme.ShortcutDesc.Render(" save"),
		sb.theme.ShortcutKey.Render("ctrl+c") + sb.theme.ShortcutDesc.Render(" quit"),
	}, "  ")

	gap := sb.width - lipgloss.Width(state) - lipgloss.Width(hints) - 2
	if gap < 1 {
		gap = 1
	}

	return sb.theme.StatusBar.
		Width(sb.width).
		Render(state + strings.Repeat(" ", gap) + hints)
}
