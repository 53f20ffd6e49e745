// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/JaynouOliver/onfin-tui/internal/history"
	"github.com/JaynouOliver/onfin-tui/internal/ui/styles"
	"github.com/JaynouOliver/onfin-tui/internal/util"
)

// SidebarWidth is the fixed column width of the sidebar.
const SidebarWidth = 28

// Sidebar lists the current conversation and past conversation titles.
// It is display-only; past conversations cannot be reopened.
type Sidebar struct {
	history      *history.List
	currentTitle string
	height       int
	theme        *styles.Theme
}

// NewSidebar creates a sidebar backed by the given history list.
func NewSidebar(hist *history.List, theme *styles.Theme) *Sidebar {
	return &Sidebar{
		history:      hist,
		currentTitle: "New Conversation",
		height:       20,
		theme:        theme,
	}
}

// SetCurrentTitle updates the label for the active conversation.
func (s *Sidebar) SetCurrentTitle(title string) {
	s.currentTitle = title
}

// SetHeight sets the sidebar height.
func (s *Sidebar) SetHeight(height int) {
	s.height = height
}

// View renders the sidebar column.
func (s *Sidebar) View() string {
	innerWidth := SidebarWidth - 3

	var b strings.Builder
	b.WriteString(s.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n\n")

	b.WriteString(s.theme.SidebarItemCurrent.Render(
		"> " + util.TruncateWidth(s.currentTitle, innerWidth-2)))
	b.WriteString("\n")

	lines := 4
	for _, entry := range s.history.Entries() {
		if lines >= s.height-1 {
			break
		}
		b.WriteString(s.theme.SidebarItem.Render(
			"  " + util.TruncateWidth(entry.Title, innerWidth-2)))
		b.WriteString("\n")
		lines++
	}

	return s.theme.Sidebar.
		Width(SidebarWidth - 2).
		Height(s.height).
		Render(b.String())
}
