// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage_GeneratesUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewUserMessage("hello")
		if msg.ID == "" {
			t.Fatal("message ID should not be empty")
		}
		if !strings.HasPrefix(msg.ID, "msg_") {
			t.Errorf("message ID %q should have msg_ prefix", msg.ID)
		}
		if seen[msg.ID] {
			t.Fatalf("duplicate message ID generated: %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestMessage_Constructors(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
		role Role
	}{
		{"user", NewUserMessage("hi"), RoleUser},
		{"agent", NewAgentMessage("hi"), RoleAgent},
		{"system", NewSystemMessage("hi"), RoleSystem},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.msg.Role != tc.role {
				t.Errorf("Role = %q, want %q", tc.msg.Role, tc.role)
			}
			if tc.msg.Content != "hi" {
				t.Errorf("Content = %q, want %q", tc.msg.Content, "hi")
			}
			if tc.msg.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
		})
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short content unchanged", "hello", 50, "hello"},
		{"long content truncated", strings.Repeat("a", 60), 10, "aaaaaaa..."},
		{"unicode safe", strings.Repeat("é", 60), 10, strings.Repeat("é", 7) + "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewUserMessage(tc.input)
			if got := msg.Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAgent, RoleSystem} {
		if !r.Valid() {
			t.Errorf("Role %q should be valid", r)
		}
	}
	if Role("assistant").Valid() {
		t.Error("unknown role should not be valid")
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendPreservesOrder(t *testing.T) {
	tr := NewTranscript()

	contents := []string{"one", "two", "three"}
	for _, c := range contents {
		tr.Append(NewUserMessage(c))
	}

	msgs := tr.Messages()
	if len(msgs) != len(contents) {
		t.Fatalf("Len = %d, want %d", len(msgs), len(contents))
	}
	for i, c := range contents {
		if msgs[i].Content != c {
			t.Errorf("messages[%d].Content = %q, want %q", i, msgs[i].Content, c)
		}
	}
}

func TestTranscript_Clear(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewUserMessage("hello"))
	tr.Append(NewAgentMessage("hi"))

	tr.Clear()

	if !tr.IsEmpty() {
		t.Error("transcript should be empty after Clear")
	}
	if tr.Last() != nil {
		t.Error("Last should return nil for an empty transcript")
	}
}

func TestTranscript_MessagesReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewUserMessage("hello"))

	msgs := tr.Messages()
	msgs[0] = NewUserMessage("mutated")

	if tr.Messages()[0].Content != "hello" {
		t.Error("mutating the returned slice should not affect the transcript")
	}
}

func TestTranscript_Title(t *testing.T) {
	tr := NewTranscript()
	if tr.Title() != "New Conversation" {
		t.Errorf("empty transcript Title = %q, want default", tr.Title())
	}

	tr.Append(NewSystemMessage("welcome"))
	tr.Append(NewUserMessage("what are the disclosure rules?"))

	if tr.Title() != "what are the disclosure rules?" {
		t.Errorf("Title = %q, want first user message", tr.Title())
	}
}

func TestTranscript_PruneKeepsSystemMessages(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewSystemMessage("welcome"))

	for i := 0; i < MaxMessages+50; i++ {
		tr.Append(NewUserMessage("filler"))
	}

	msgs := tr.Messages()
	if len(msgs) != MaxMessages {
		t.Fatalf("Len = %d, want %d", len(msgs), MaxMessages)
	}
	if msgs[0].Role != RoleSystem {
		t.Error("system message should survive pruning at the front")
	}
}

func TestTranscript_PrunePreservesOrder(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewSystemMessage("welcome"))
	for i := 0; i < MaxMessages; i++ {
		tr.Append(NewUserMessage("filler"))
	}
	tr.Append(NewSystemMessage("saved notice"))
	tr.Append(NewUserMessage("after notice"))

	msgs := tr.Messages()
	if len(msgs) > MaxMessages {
		t.Fatalf("Len = %d, want at most %d", len(msgs), MaxMessages)
	}
	if msgs[0].Content != "welcome" {
		t.Errorf("first message = %q, want the seeded welcome", msgs[0].Content)
	}

	// A system notice added mid-conversation must keep its position relative
	// to its neighbors after pruning, not get hoisted to the front.
	last := msgs[len(msgs)-1]
	prev := msgs[len(msgs)-2]
	if prev.Content != "saved notice" || last.Content != "after notice" {
		t.Errorf("pruning reordered the tail: got %q, %q", prev.Content, last.Content)
	}
}
