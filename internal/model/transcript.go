// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and messages.
package model

import "time"

// MaxMessages is the maximum number of messages to keep in a transcript.
// When exceeded, the oldest non-system messages are pruned to prevent
// unbounded memory growth over a very long session.
const MaxMessages = 1000

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript holds the ordered sequence of messages exchanged in one session.
// It is append-only during a session and cleared wholesale on session reset.
// Transcript is not safe for concurrent use; ownership and locking belong to
// the session store.
type Transcript struct {
	messages  []*Message
	startedAt time.Time
	updatedAt time.Time
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	now := time.Now()
	return &Transcript{
		messages:  make([]*Message, 0),
		startedAt: now,
		updatedAt: now,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(msg *Message) {
	t.messages = append(t.messages, msg)
	t.updatedAt = time.Now()
	t.prune()
}

// Clear removes all messages from the transcript.
func (t *Transcript) Clear() {
	t.messages = make([]*Message, 0)
	t.startedAt = time.Now()
	t.updatedAt = t.startedAt
}

// Messages returns a copy of the message slice. Callers may iterate freely
// without holding the store lock; the *Message values themselves are
// immutable.
func (t *Transcript) Messages() []*Message {
	out := make([]*Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns the most recent message, or nil if the transcript is empty.
func (t *Transcript) Last() *Message {
	if len(t.messages) == 0 {
		return nil
	}
	return t.messages[len(t.messages)-1]
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// IsEmpty returns true if there are no messages.
func (t *Transcript) IsEmpty() bool {
	return len(t.messages) == 0
}

// StartedAt returns when the transcript was created or last cleared.
func (t *Transcript) StartedAt() time.Time {
	return t.startedAt
}

// UpdatedAt returns when the transcript was last mutated.
func (t *Transcript) UpdatedAt() time.Time {
	return t.updatedAt
}

// =============================================================================
// TITLE / PREVIEW
// =============================================================================

// Title derives a display title from the first user message, or a default
// for a transcript with no user messages yet.
func (t *Transcript) Title() string {
	for _, msg := range t.messages {
		if msg.Role == RoleUser {
			return msg.Preview(50)
		}
	}
	return "New Conversation"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// prune removes the oldest non-system messages once MaxMessages is exceeded.
// System messages are never dropped, and every surviving message keeps its
// original position: transcript order is the sole ordering key.
func (t *Transcript) prune() {
	overflow := len(t.messages) - MaxMessages
	if overflow <= 0 {
		return
	}

	kept := make([]*Message, 0, MaxMessages)
	for _, msg := range t.messages {
		if overflow > 0 && msg.Role != RoleSystem {
			overflow--
			continue
		}
		kept = append(kept, msg)
	}
	t.messages = kept
}
