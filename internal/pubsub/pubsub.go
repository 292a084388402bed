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
// Package pubsub provides event pub/sub types compatible with Crush's interface.
package pubsub

import (
	"context"
	"sync"
)

// EventType represents the type of event.
type EventType int

const (
	// CreatedEvent indicates a new item was created.
	CreatedEvent EventType = iota
	// UpdatedEvent indicates an existing item was updated.
	UpdatedEvent
	// DeletedEvent indicates an item was deleted.
	DeletedEvent
)

// Event wraps an event with type information.
// Matches Crush's pubsub.Event[T] pattern.
type Event[T any] struct {
	Type    EventType
	Payload T
}

// NewCreatedEvent creates a new "created" event.
func NewCreatedEvent[T any](payload T) Event[T] {
	return Event[T]{Type: CreatedEvent, Payload: payload}
}

// NewUpdatedEvent creates a new "updated" event.
func NewUpdatedEvent[T any](payload T) Event[T] {
	return Event[T]{Type: UpdatedEvent, Payload: payload}
}

// NewDeletedEvent creates a new "deleted" event.
func NewDeletedEvent[T any](payload T) Event[T] {
	return Event[T]{Type: DeletedEvent, Payload: payload}
}

// UpdateAvailableMsg is sent when an update is available.
type UpdateAvailableMsg struct {
	CurrentVersion string
	LatestVersion  string
	IsDevelopment  bool
}

// DefaultSubscriberBuffer is the channel capacity given to each Subscribe
// call; a slow subscriber that fills its buffer has later publishes to it
// dropped rather than blocking the publisher.
const DefaultSubscriberBuffer = 64

// Broker is a minimal in-process fan-out publisher: every call to Publish
// is delivered to every channel returned by an outstanding Subscribe call.
// It has no notion of topics or filters; callers that need routing should
// wrap it (as pkg/event.Bus does, keyed by session id).
type Broker[T any] struct {
	mu   sync.Mutex
	subs map[chan Event[T]]struct{}
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[chan Event[T]]struct{})}
}

// Subscribe returns a channel that receives every event published after
// this call, until ctx is done, at which point the channel is closed and
// unregistered.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	ch := make(chan Event[T], DefaultSubscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish wraps payload in an Event of the given type and sends it to every
// current subscriber. A subscriber whose buffer is full is skipped rather
// than blocking the publisher.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	evt := Event[T]{Type: eventType, Payload: payload}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
