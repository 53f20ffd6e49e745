// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JaynouOliver/onfin-tui/internal/api"
	"github.com/JaynouOliver/onfin-tui/internal/session"
	"github.com/JaynouOliver/onfin-tui/internal/ui/components"
)

func newTestController(reply string, err error) *session.Controller {
	store := session.NewStore()
	chatter := session.ChatFunc(func(ctx context.Context, message, threadID string) (string, error) {
		return reply, err
	})
	return session.NewController(store, chatter)
}

func TestHandleSlashCommandNew(t *testing.T) {
	ctrl := newTestController("hi", nil)
	before := ctrl.Store().ThreadID()

	if !handleSlashCommand("/new", ctrl) {
		t.Fatal("handleSlashCommand(/new) should not exit")
	}
	if ctrl.Store().ThreadID() == before {
		t.Error("expected /new to mint a fresh thread ID")
	}
}

func TestHandleSlashCommandQuit(t *testing.T) {
	ctrl := newTestController("hi", nil)
	for _, cmd := range []string{"/quit", "/q", "/exit"} {
		if handleSlashCommand(cmd, ctrl) {
			t.Errorf("handleSlashCommand(%s) should exit", cmd)
		}
	}
}

func TestHandleSlashCommandUnknown(t *testing.T) {
	ctrl := newTestController("hi", nil)
	if !handleSlashCommand("/bogus", ctrl) {
		t.Error("unknown command should not exit")
	}
}

func TestProcessMessageSuccess(t *testing.T) {
	ctrl := newTestController("the answer", nil)
	md := components.NewMarkdownRenderer(true, 80)

	processMessage(ctrl, "what is rule 12?", 5*time.Second, false, md)

	if got := lastAgentReply(ctrl); got != "the answer" {
		t.Errorf("lastAgentReply = %q, want %q", got, "the answer")
	}
}

func TestProcessMessageFailureShowsFallback(t *testing.T) {
	ctrl := newTestController("", errors.New("connection refused"))
	md := components.NewMarkdownRenderer(true, 80)

	processMessage(ctrl, "hello", 5*time.Second, false, md)

	if got := lastAgentReply(ctrl); got != session.FallbackReply {
		t.Errorf("lastAgentReply = %q, want fallback", got)
	}
	if ctrl.Store().Pending() {
		t.Error("pending flag should be cleared after failure")
	}
}

func TestLastAgentReplyEmptyTranscript(t *testing.T) {
	ctrl := newTestController("hi", nil)
	if got := lastAgentReply(ctrl); got != "" {
		t.Errorf("lastAgentReply on empty transcript = %q, want empty", got)
	}
}

func TestRunHealthUnreachable(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:1")
	if err := RunHealth(client); err == nil {
		t.Error("expected error for unreachable backend")
	}
}
