// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracker is the Request Tracker (spec §4.9): a concurrent mapping
// from (session-id, exchange-id) to the running Agent Loop task for that
// exchange, so an external Cancel request can find and stop it. It applies
// internal/csync's generic concurrent map to a new domain; all mutation is
// serialized behind the map's single lock, held only for the insert/lookup
// itself, never across an await (spec §4.9).
package tracker

import (
	"context"
	"fmt"

	"github.com/weftrun/weftcore/internal/csync"
)

// Handle is what the tracker stores per running exchange: the
// cancellation function for its context and a Done channel for callers
// that need to block until the task is done (e.g. a synchronous Cancel
// response).
type Handle struct {
	Cancel context.CancelFunc
	Done   <-chan struct{}
}

func key(sessionID, exchangeID string) string {
	return sessionID + "/" + exchangeID
}

// Tracker is the Request Tracker: track registers a running task, Cancel
// looks it up and trips its token, and lookup is O(1).
type Tracker struct {
	running *csync.Map[string, Handle]
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{running: csync.NewMap[string, Handle]()}
}

// Track registers handle as the running task for (sessionID, exchangeID).
func (t *Tracker) Track(sessionID, exchangeID string, handle Handle) {
	t.running.Set(key(sessionID, exchangeID), handle)
}

// Untrack drops the tracked task once its exchange reaches a terminal
// state (spec §3's Lifecycle: "dropped when the exchange reaches a
// terminal state").
func (t *Tracker) Untrack(sessionID, exchangeID string) {
	t.running.Delete(key(sessionID, exchangeID))
}

// Cancel trips the cancellation token for (sessionID, exchangeID) if a task
// is currently tracked for it. It returns false if no task is running,
// which callers should treat as an idempotent no-op rather than an error
// (spec §6's cancel request returns {done: bool} either way).
func (t *Tracker) Cancel(sessionID, exchangeID string) bool {
	handle, ok := t.running.Get(key(sessionID, exchangeID))
	if !ok {
		return false
	}
	handle.Cancel()
	return true
}

// IsRunning reports whether a task is currently tracked for the exchange.
func (t *Tracker) IsRunning(sessionID, exchangeID string) bool {
	_, ok := t.running.Get(key(sessionID, exchangeID))
	return ok
}

// MustTrack is a convenience for callers that create the context
// themselves and just need a formatted key for logging.
func MustTrack(sessionID, exchangeID string) string {
	return fmt.Sprintf("%s/%s", sessionID, exchangeID)
}
