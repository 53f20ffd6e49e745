// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaynouOliver/onfin-tui/internal/session"
)

// dispatchCmd performs the network step of an admitted request off the
// update loop and reports the outcome as a ReplyMsg. Settlement happens in
// Update so all state changes flow through one place. The context is owned
// by the model so a session reset can cancel the request early.
func dispatchCmd(ctx context.Context, ctrl *session.Controller, res session.BeginResult) tea.Cmd {
	return func() tea.Msg {
		reply, err := ctrl.Dispatch(ctx, res)
		return ReplyMsg{Result: res, Reply: reply, Err: err}
	}
}

// healthCmd probes the backend once at startup.
func healthCmd(check func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return HealthMsg{Err: check(context.Background())}
	}
}
