// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaynouOliver/onfin-tui/internal/config"
	"github.com/JaynouOliver/onfin-tui/internal/history"
	"github.com/JaynouOliver/onfin-tui/internal/session"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	return newTestModelWith(t, session.ChatFunc(func(ctx context.Context, message, threadID string) (string, error) {
		return "canned reply", nil
	}))
}

func newTestModelWith(t *testing.T, chatter session.Chatter) Model {
	t.Helper()

	cfg := config.Default()
	cfg.UI.Greeting = "" // keep transcripts minimal in tests
	cfg.UI.Markdown = false

	ctrl := session.NewController(session.NewStore(), chatter)
	m := New(ctrl, history.NewList(), cfg)

	// Simulate initial terminal size.
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

// runDispatch executes a submit command (possibly a batch) and returns the
// ReplyMsg its dispatch produced.
func runDispatch(t *testing.T, cmd tea.Cmd) ReplyMsg {
	t.Helper()
	switch msg := cmd().(type) {
	case ReplyMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if reply, ok := c().(ReplyMsg); ok {
				return reply
			}
		}
	}
	t.Fatal("command produced no ReplyMsg")
	return ReplyMsg{}
}

func typeString(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	return m
}

func pressKey(t *testing.T, m Model, key tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: key})
	return updated.(Model), cmd
}

func TestSubmit_AppendsUserMessageAndWaits(t *testing.T) {
	m := newTestModel(t)
	m = typeString(t, m, "what is rule 7?")

	m, cmd := pressKey(t, m, tea.KeyEnter)

	if m.State() != StateWaiting {
		t.Errorf("state = %v, want StateWaiting", m.State())
	}
	if cmd == nil {
		t.Fatal("submit should produce a dispatch command")
	}

	msgs := m.ctrl.Store().Messages()
	if len(msgs) != 1 || msgs[0].Content != "what is rule 7?" {
		t.Errorf("transcript = %+v, want the submitted message", msgs)
	}
	if m.input.Value() != "" {
		t.Errorf("input should clear on successful submit, got %q", m.input.Value())
	}
}

func TestSubmit_EmptyInputIsNoop(t *testing.T) {
	m := newTestModel(t)
	m = typeString(t, m, "   ")

	m, cmd := pressKey(t, m, tea.KeyEnter)

	if cmd != nil {
		t.Error("empty submit should not dispatch")
	}
	if m.State() != StateReady {
		t.Errorf("state = %v, want StateReady", m.State())
	}
	if len(m.ctrl.Store().Messages()) != 0 {
		t.Error("empty submit must not touch the transcript")
	}
}

func TestSubmit_WhileWaitingKeepsInput(t *testing.T) {
	m := newTestModel(t)
	m = typeString(t, m, "first")
	m, _ = pressKey(t, m, tea.KeyEnter)

	m = typeString(t, m, "second")
	m, cmd := pressKey(t, m, tea.KeyEnter)

	if cmd != nil {
		t.Error("submit while waiting should not dispatch")
	}
	if m.input.Value() != "second" {
		t.Errorf("input = %q, want preserved text", m.input.Value())
	}
	if len(m.ctrl.Store().Messages()) != 1 {
		t.Error("second submission must not append while one is in flight")
	}
}

func TestReply_SettlesAndReturnsToReady(t *testing.T) {
	m := newTestModel(t)
	m = typeString(t, m, "question")
	m, _ = pressKey(t, m, tea.KeyEnter)

	res := session.BeginResult{
		Content:    "question",
		ThreadID:   m.ctrl.Store().ThreadID(),
		Generation: m.ctrl.Store().Generation(),
	}
	updated, _ := m.Update(ReplyMsg{Result: res, Reply: "the answer"})
	m = updated.(Model)

	if m.State() != StateReady {
		t.Errorf("state = %v, want StateReady after settlement", m.State())
	}
	if !strings.Contains(m.TranscriptText(), "the answer") {
		t.Error("transcript should contain the agent reply")
	}
}

func TestReply_FailureShowsFallback(t *testing.T) {
	m := newTestModel(t)
	m = typeString(t, m, "question")
	m, _ = pressKey(t, m, tea.KeyEnter)

	res := session.BeginResult{
		Content:    "question",
		ThreadID:   m.ctrl.Store().ThreadID(),
		Generation: m.ctrl.Store().Generation(),
	}
	updated, _ := m.Update(ReplyMsg{Result: res, Err: errors.New("connect: refused")})
	m = updated.(Model)

	if !strings.Contains(m.TranscriptText(), session.FallbackReply) {
		t.Error("transcript should contain the fallback reply")
	}
	if m.State() != StateReady {
		t.Error("a failed request must still release the session")
	}
}

func TestCtrlN_ResetsSessionAndDiscardsLateReply(t *testing.T) {
	m := newTestModel(t)
	m = typeString(t, m, "question")
	m, _ = pressKey(t, m, tea.KeyEnter)

	res := session.BeginResult{
		Content:    "question",
		ThreadID:   m.ctrl.Store().ThreadID(),
		Generation: m.ctrl.Store().Generation(),
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = updated.(Model)

	if m.State() != StateReady {
		t.Errorf("state = %v, want StateReady after reset", m.State())
	}
	if len(m.ctrl.Store().Messages()) != 0 {
		t.Error("reset should clear the transcript")
	}

	// The late reply from the old session must be discarded.
	updated, _ = m.Update(ReplyMsg{Result: res, Reply: "stale answer"})
	m = updated.(Model)

	if strings.Contains(m.TranscriptText(), "stale answer") {
		t.Error("stale reply leaked into the new session")
	}
}

func TestStaleReply_DoesNotCancelNewRequest(t *testing.T) {
	chatter := session.ChatFunc(func(ctx context.Context, message, threadID string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "fresh answer", nil
	})
	m := newTestModelWith(t, chatter)

	// First send, then a reset while its reply is still in transit.
	m = typeString(t, m, "first question")
	m, _ = pressKey(t, m, tea.KeyEnter)
	staleRes := session.BeginResult{
		Content:    "first question",
		ThreadID:   m.ctrl.Store().ThreadID(),
		Generation: m.ctrl.Store().Generation(),
	}
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = updated.(Model)

	// Second send in the new session.
	m = typeString(t, m, "second question")
	m, cmd := pressKey(t, m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("second submit should dispatch")
	}

	// The old session's reply arrives while the new request is in flight.
	updated, _ = m.Update(ReplyMsg{Result: staleRes, Reply: "stale answer"})
	m = updated.(Model)

	if m.cancelInflight == nil {
		t.Fatal("stale reply must not release the in-flight request context")
	}

	// The in-flight dispatch must still see a live context and settle with
	// the real answer, not the fallback.
	updated, _ = m.Update(runDispatch(t, cmd))
	m = updated.(Model)

	text := m.TranscriptText()
	if !strings.Contains(text, "fresh answer") {
		t.Errorf("transcript missing the live reply: %q", text)
	}
	if strings.Contains(text, session.FallbackReply) {
		t.Error("live request settled with the fallback reply")
	}
	if m.State() != StateReady {
		t.Errorf("state = %v, want StateReady after settlement", m.State())
	}
}

func TestHealthMsg_UpdatesBackendStatus(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(HealthMsg{Err: nil})
	m = updated.(Model)
	if m.backendStatus != "online" {
		t.Errorf("backendStatus = %q, want online", m.backendStatus)
	}

	updated, _ = m.Update(HealthMsg{Err: errors.New("connect: refused")})
	m = updated.(Model)
	if m.backendStatus != "offline" {
		t.Errorf("backendStatus = %q, want offline", m.backendStatus)
	}
}

func TestCtrlB_TogglesSidebar(t *testing.T) {
	m := newTestModel(t)
	if !m.showSidebar() {
		t.Fatal("sidebar should be visible at 100 columns")
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = updated.(Model)
	if m.showSidebar() {
		t.Error("ctrl+b should hide the sidebar")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = updated.(Model)
	if !m.showSidebar() {
		t.Error("ctrl+b should show the sidebar again")
	}
}

func TestCtrlT_TogglesThemeKeepingTranscript(t *testing.T) {
	m := newTestModel(t)
	m = typeString(t, m, "question")
	m, _ = pressKey(t, m, tea.KeyEnter)

	wasDark := m.theme.IsDark
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = updated.(Model)

	if m.theme.IsDark == wasDark {
		t.Error("ctrl+t should flip the theme")
	}
	if !strings.Contains(m.TranscriptText(), "question") {
		t.Error("theme switch must not lose the transcript")
	}
}

func TestView_RendersWithoutSize(t *testing.T) {
	chatter := session.ChatFunc(func(ctx context.Context, message, threadID string) (string, error) {
		return "", nil
	})
	cfg := config.Default()
	cfg.UI.Markdown = false
	m := New(session.NewController(session.NewStore(), chatter), history.NewList(), cfg)

	if m.View() == "" {
		t.Error("View should render a placeholder before the first resize")
	}
}
