// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and messages.
//
// The model package is purely passive: it defines Message (one utterance by
// the user, the remote agent, or the client itself) and Transcript (the
// ordered, append-only sequence of messages in one session). All mutation
// policy — who may append, when the transcript is cleared, how observers are
// notified — lives in the session package; model types carry no locking and
// perform no I/O.
package model
