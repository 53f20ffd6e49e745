// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaynouOliver/onfin-tui/internal/session"
)

func TestSubscribeProgram_NeverBlocksMutations(t *testing.T) {
	store := session.NewStore()

	// A send that blocks forever, like Program.Send does while the event
	// loop is busy executing Update.
	stuck := make(chan tea.Msg)
	SubscribeProgram(store, func(msg tea.Msg) { stuck <- msg })

	done := make(chan struct{})
	go func() {
		store.AppendSystem("first notice")
		store.AppendSystem("second notice")
		store.Reset()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("store mutation blocked on the program send")
	}
}

func TestSubscribeProgram_ForwardsEveryMutation(t *testing.T) {
	store := session.NewStore()

	var got atomic.Int32
	SubscribeProgram(store, func(msg tea.Msg) {
		if _, ok := msg.(StoreChangedMsg); !ok {
			t.Errorf("forwarded %T, want StoreChangedMsg", msg)
		}
		got.Add(1)
	})

	store.AppendSystem("notice")
	store.Reset()

	deadline := time.Now().Add(2 * time.Second)
	for got.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got.Load() < 2 {
		t.Fatalf("forwarded %d change(s), want 2", got.Load())
	}
}
