// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaynouOliver/onfin-tui/internal/session"
)

// SubscribeProgram registers a store observer that forwards every mutation to
// the program as a StoreChangedMsg.
//
// The forward runs on its own goroutine. Store observers fire synchronously
// from every mutation, including the ones Update itself makes (Begin,
// Resolve, reset); Program.Send blocks until the event loop receives the
// message, and the event loop is busy running Update at that moment, so a
// synchronous send from the observer would deadlock the interface on the
// first accepted request.
func SubscribeProgram(store *session.Store, send func(tea.Msg)) {
	store.Subscribe(func() {
		go send(StoreChangedMsg{})
	})
}
