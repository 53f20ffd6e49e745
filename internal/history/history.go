// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history tracks titles of past conversations for the sidebar.
//
// History lives in memory only; conversations are not persisted across
// program runs. The list seeds from a few example entries so the sidebar
// never renders empty on first launch.
package history

import (
	"sync"
	"time"
)

// MaxEntries caps how many past conversations the sidebar lists.
const MaxEntries = 20

// Entry is one past conversation.
type Entry struct {
	Title string
	Ended time.Time
}

// List holds past conversation titles, most recent first.
type List struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewList returns a list seeded with placeholder entries.
func NewList() *List {
	now := time.Now()
	return &List{
		entries: []Entry{
			{Title: "Disclosure requirements for promoters", Ended: now.Add(-26 * time.Hour)},
			{Title: "Insider trading regulations 2015", Ended: now.Add(-3 * 24 * time.Hour)},
			{Title: "Mutual fund advertising code", Ended: now.Add(-6 * 24 * time.Hour)},
		},
	}
}

// Add records a finished conversation at the front of the list. Empty or
// default titles are ignored; there is nothing worth listing for them.
func (l *List) Add(title string) {
	if title == "" || title == "New Conversation" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Entry{{Title: title, Ended: time.Now()}}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
}

// Entries returns a copy of the list, most recent first.
func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
