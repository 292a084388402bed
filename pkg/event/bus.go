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
package event

import (
	"sync"

	"github.com/weftrun/weftcore/internal/csync"
)

// Sink is a write-only handle to a session's event stream. It is cheap to
// clone (holds only a channel reference) and is shared by reference between
// the Agent Loop, Tools, and Parsers; none of them hold a back-reference to
// each other (spec §9's cyclic-reference note).
type Sink interface {
	// Publish enqueues env for delivery. It never blocks: the underlying
	// channel is unbounded (spec §5's "senders never block").
	Publish(env Envelope)
}

// unboundedChan is a minimal unbounded MPSC channel: a mutex-guarded slice
// plus a one-slot notify channel that wakes the consumer, which then takes
// everything queued in one drain. This keeps producers (parsers, tools)
// from ever blocking on a slow SSE writer.
type unboundedChan struct {
	mu     sync.Mutex
	buf    []Envelope
	notify chan struct{}
	closed bool
}

func newUnboundedChan() *unboundedChan {
	return &unboundedChan{notify: make(chan struct{}, 1)}
}

func (u *unboundedChan) push(env Envelope) {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.buf = append(u.buf, env)
	u.mu.Unlock()
	select {
	case u.notify <- struct{}{}:
	default:
	}
}

func (u *unboundedChan) drain() []Envelope {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.buf) == 0 {
		return nil
	}
	out := u.buf
	u.buf = nil
	return out
}

func (u *unboundedChan) close() {
	u.mu.Lock()
	u.closed = true
	u.mu.Unlock()
	select {
	case u.notify <- struct{}{}:
	default:
	}
}

// Bus fans out UI events per session. Each session gets one unbounded
// channel; a single consumer (an SSE writer) drains it in FIFO order.
// Delivery order within a session is guaranteed; across sessions there is
// no ordering guarantee (spec §5).
type Bus struct {
	sessions *csync.Map[string, *unboundedChan]
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{sessions: csync.NewMap[string, *unboundedChan]()}
}

// sessionSink adapts one session's unboundedChan to the Sink interface.
type sessionSink struct {
	ch *unboundedChan
}

func (s sessionSink) Publish(env Envelope) { s.ch.push(env) }

// SinkFor returns a cloneable Sink for sessionID, creating its channel if
// this is the first publisher or subscriber for that session.
func (b *Bus) SinkFor(sessionID string) Sink {
	ch, _ := b.sessions.GetOrSet(sessionID, func() *unboundedChan { return newUnboundedChan() })
	return sessionSink{ch: ch}
}

// Wait returns sessionID's notify channel, which receives a signal after
// new events are queued; callers typically call Drain each time it fires.
// Close removes the session's channel once the session ends.
func (b *Bus) Wait(sessionID string) <-chan struct{} {
	ch, _ := b.sessions.GetOrSet(sessionID, func() *unboundedChan { return newUnboundedChan() })
	return ch.notify
}

// Drain returns and clears all events queued for sessionID since the last
// Drain call.
func (b *Bus) Drain(sessionID string) []Envelope {
	ch, ok := b.sessions.Get(sessionID)
	if !ok {
		return nil
	}
	return ch.drain()
}

// Close tears down sessionID's channel, unblocking any Wait callers.
func (b *Bus) Close(sessionID string) {
	if ch, ok := b.sessions.Get(sessionID); ok {
		ch.close()
		b.sessions.Del(sessionID)
	}
}
