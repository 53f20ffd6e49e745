// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface.
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"github.com/JaynouOliver/onfin-tui/internal/config"
	"github.com/JaynouOliver/onfin-tui/internal/session"
)

// ReplyMsg delivers the outcome of a dispatched request. The zero reply plus
// a non-nil error settles as the fallback message.
type ReplyMsg struct {
	Result session.BeginResult
	Reply  string
	Err    error
}

// StoreChangedMsg signals that the session store changed outside the update
// loop (e.g. via an observer callback). The view re-reads the store.
type StoreChangedMsg struct{}

// ConfigReloadedMsg delivers a freshly reloaded configuration from the
// config file watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// NewSessionMsg requests a session reset.
type NewSessionMsg struct{}

// HealthMsg delivers the outcome of the startup backend probe.
type HealthMsg struct {
	Err error
}
