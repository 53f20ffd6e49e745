// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// FallbackReply is shown in place of the agent's answer whenever a request
// fails for any reason. The transcript never records raw transport errors.
const FallbackReply = "Sorry, I encountered an error while processing your request. Please try again."

// Error variables for request admission.
var (
	// ErrEmptyInput indicates the input was empty after trimming whitespace.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy indicates a request is already in flight for this session.
	ErrBusy = errors.New("a request is already in flight")
)

// Chatter is the slice of the backend client the controller needs.
// Tests substitute fakes; production wraps *api.Client with ChatFunc.
type Chatter interface {
	Chat(ctx context.Context, message, threadID string) (reply string, err error)
}

// ChatFunc adapts a plain function to the Chatter interface.
type ChatFunc func(ctx context.Context, message, threadID string) (string, error)

// Chat implements Chatter.
func (f ChatFunc) Chat(ctx context.Context, message, threadID string) (string, error) {
	return f(ctx, message, threadID)
}

// BeginResult describes an admitted request: the user message that was
// appended, the thread to send it on, and the generation it belongs to.
type BeginResult struct {
	Content    string
	ThreadID   string
	Generation uint64
}

// Controller drives the request lifecycle for one session.
//
// Every request moves through the same stages: trim and admit, optimistic
// user append with the pending flag raised, network dispatch, and a
// settlement that is guaranteed to run exactly once. Begin and Resolve are
// the synchronous halves; Send composes them around a blocking network call
// for callers without an event loop.
type Controller struct {
	store   *Store
	chatter Chatter
}

// NewController creates a controller bound to the given store and backend.
func NewController(store *Store, chatter Chatter) *Controller {
	return &Controller{store: store, chatter: chatter}
}

// Store returns the session store this controller drives.
func (c *Controller) Store() *Store {
	return c.store
}

// Begin admits a new request. The raw input is trimmed; empty input and
// submission while a request is pending are rejected. On success the user
// message is already in the transcript and the pending flag is raised.
func (c *Controller) Begin(raw string) (BeginResult, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return BeginResult{}, ErrEmptyInput
	}

	_, gen, ok := c.store.beginRequest(content)
	if !ok {
		return BeginResult{}, ErrBusy
	}

	return BeginResult{
		Content:    content,
		ThreadID:   c.store.ThreadID(),
		Generation: gen,
	}, nil
}

// Dispatch performs the network step of an admitted request. It does not
// touch session state; the caller settles the result with Resolve.
func (c *Controller) Dispatch(ctx context.Context, res BeginResult) (string, error) {
	return c.chatter.Chat(ctx, res.Content, res.ThreadID)
}

// Resolve settles a request begun with Begin. A nil err appends the agent's
// reply; any error appends FallbackReply instead. Either way the pending
// flag is lowered, unless the session was reset in the meantime, in which
// case the settlement is discarded.
func (c *Controller) Resolve(res BeginResult, reply string, err error) {
	content := reply
	if err != nil {
		log.Warn().Err(err).Msg("request failed, using fallback reply")
		content = FallbackReply
	}

	if !c.store.settleRequest(res.Generation, content) {
		log.Debug().
			Uint64("generation", res.Generation).
			Msg("discarding stale response after session reset")
	}
}

// Send runs the full request lifecycle synchronously: admit, dispatch,
// settle. It returns the admission error if the request was rejected, and
// the transport error after settlement if the request failed (the transcript
// already holds the fallback reply by then).
func (c *Controller) Send(ctx context.Context, raw string) error {
	res, err := c.Begin(raw)
	if err != nil {
		return err
	}

	reply, err := c.Dispatch(ctx, res)
	c.Resolve(res, reply, err)
	return err
}

// StartNewSession abandons the current conversation and starts a fresh one.
// Any in-flight request keeps running but its response will settle as stale.
func (c *Controller) StartNewSession() {
	c.store.Reset()
	log.Info().Str("thread_id", c.store.ThreadID()).Msg("started new session")
}
