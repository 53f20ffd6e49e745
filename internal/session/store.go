// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the conversation state of a single chat session and
// the lifecycle of requests against the agent backend.
//
// The Store is the single source of truth for the transcript and the pending
// flag; all mutation goes through it under one mutex. The Controller layers
// the request lifecycle on top: admission, optimistic append, dispatch, and
// guaranteed settlement.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/JaynouOliver/onfin-tui/internal/model"
)

// Observer is notified after every state change of the Store. Callbacks run
// outside the store lock; it is safe to call back into the Store from one.
type Observer func()

// Snapshot is a consistent view of the session state at one instant.
type Snapshot struct {
	Messages   []*model.Message
	Pending    bool
	ThreadID   string
	Generation uint64
}

// Store holds the state of one chat session: the ordered transcript, the
// pending flag for the in-flight request, the server-side thread identifier,
// and the session generation counter.
//
// CONCURRENCY: All fields are guarded by mu. Observers are invoked after the
// lock is released so they may re-enter the store.
type Store struct {
	mu         sync.RWMutex
	transcript *model.Transcript
	pending    bool
	threadID   string
	generation uint64
	observers  []Observer
}

// NewStore creates a store for a fresh session with an empty transcript and
// a newly minted thread identifier.
func NewStore() *Store {
	return &Store{
		transcript: model.NewTranscript(),
		threadID:   newThreadID(),
	}
}

// newThreadID mints a server-side conversation identifier. Each session gets
// its own so the backend never mixes context across resets.
func newThreadID() string {
	return uuid.NewString()
}

// Subscribe registers an observer that fires after every state change.
func (s *Store) Subscribe(obs Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, obs)
	s.mu.Unlock()
}

// notify invokes all observers. Must be called without holding mu.
func (s *Store) notify() {
	s.mu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, obs := range observers {
		obs()
	}
}

// Snapshot returns a consistent copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Messages:   s.transcript.Messages(),
		Pending:    s.pending,
		ThreadID:   s.threadID,
		Generation: s.generation,
	}
}

// Messages returns a copy of the transcript in insertion order.
func (s *Store) Messages() []*model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.Messages()
}

// Pending reports whether a request is currently in flight.
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// ThreadID returns the server-side conversation identifier for this session.
func (s *Store) ThreadID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threadID
}

// Generation returns the current session generation. The generation changes
// on every reset; responses carrying an older generation are stale.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Title returns a short label for the session derived from the transcript.
func (s *Store) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.Title()
}

// AppendSystem adds a system message to the transcript. Used for greetings
// and inline notices; it does not interact with the pending flag.
func (s *Store) AppendSystem(content string) *model.Message {
	msg := model.NewSystemMessage(content)
	s.mu.Lock()
	s.transcript.Append(msg)
	s.mu.Unlock()

	s.notify()
	return msg
}

// beginRequest atomically appends the user message and raises the pending
// flag, returning the generation the request belongs to. It fails when
// another request is already pending.
func (s *Store) beginRequest(content string) (*model.Message, uint64, bool) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, 0, false
	}

	msg := model.NewUserMessage(content)
	s.transcript.Append(msg)
	s.pending = true
	gen := s.generation
	s.mu.Unlock()

	s.notify()
	return msg, gen, true
}

// settleRequest appends the agent reply and lowers the pending flag, but
// only if the request still belongs to the current session generation. A
// stale settlement is discarded without touching any state.
func (s *Store) settleRequest(gen uint64, content string) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}

	s.transcript.Append(model.NewAgentMessage(content))
	s.pending = false
	s.mu.Unlock()

	s.notify()
	return true
}

// Reset clears the session for a fresh conversation: empty transcript,
// pending flag lowered, a new thread identifier, and a bumped generation so
// any still-in-flight response settles as stale.
func (s *Store) Reset() {
	s.mu.Lock()
	s.transcript.Clear()
	s.pending = false
	s.threadID = newThreadID()
	s.generation++
	s.mu.Unlock()

	s.notify()
}
