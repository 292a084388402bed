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

// Package session is the Session / Exchange Store (spec §4.7): an
// append-only log of exchanges, scoped by session, that enforces the
// monotonic state lattice from spec §3 and supports resume, cancel, and
// undo. It generalizes the teacher's internal/session.Session (a bare
// title/cost/token record with no turn-by-turn structure) into the
// spec's Session-owns-Exchanges-owns-Messages ownership model; a Message's
// parts use this package's own MessagePart type (message.go).
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weftrun/weftcore/internal/csync"
	"github.com/weftrun/weftcore/internal/pubsub"
)

// ExchangeRole is the role of an Exchange within a Session.
type ExchangeRole string

const (
	RoleUser       ExchangeRole = "user"
	RoleAgent      ExchangeRole = "agent"
	RoleToolOutput ExchangeRole = "tool-output"
)

// ExchangeState is a node in the monotonic lattice described in spec §3:
//
//	pending -> inference -> {in-review | cancelled} -> {accepted | finished | cancelled}
//
// From accepted/finished/cancelled there are no outgoing transitions.
type ExchangeState string

const (
	StatePending   ExchangeState = "pending"
	StateInference ExchangeState = "inference"
	StateInReview  ExchangeState = "in-review"
	StateAccepted  ExchangeState = "accepted"
	StateFinished  ExchangeState = "finished"
	StateCancelled ExchangeState = "cancelled"
)

// terminal reports whether a state has no outgoing transitions.
func (s ExchangeState) terminal() bool {
	switch s {
	case StateAccepted, StateFinished, StateCancelled:
		return true
	default:
		return false
	}
}

// validTransitions enumerates the lattice edges. A transition not listed
// here is rejected by Store.SetState.
var validTransitions = map[ExchangeState][]ExchangeState{
	StatePending:   {StateInference},
	StateInference: {StateInReview, StateCancelled, StateAccepted, StateFinished},
	StateInReview:  {StateAccepted, StateFinished, StateCancelled},
}

// ErrInvalidTransition is returned by SetState when the requested
// transition isn't an edge of the lattice.
type ErrInvalidTransition struct {
	From, To ExchangeState
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("session: invalid exchange state transition %s -> %s", e.From, e.To)
}

// Payload is the sum-typed body of an Exchange: chat text, tool input, tool
// output, or a plan. Exactly one field is meaningful per exchange; which
// one is determined by Role and by which tool, if any, produced it.
type Payload struct {
	ChatText   string
	ToolName   string
	ToolInput  map[string]interface{}
	ToolOutput interface{}
	PlanStepID string
}

// Exchange is one user turn, agent turn, or tool-result, per spec §3.
type Exchange struct {
	ID        string
	SessionID string
	Index     int // insertion order within the session, 0-based
	Role      ExchangeRole
	State     ExchangeState
	Payload   Payload
	Messages  []Message
	CreatedAt time.Time

	cancel context.CancelFunc
	ctx    context.Context
}

// Token returns the exchange's cancellation context; tools and parsers
// observe ctx.Done() at their suspension points (spec §5).
func (e *Exchange) Token() context.Context { return e.ctx }

// Session owns an ordered sequence of Exchanges and a session-wide
// cancellation scope. It is created on first user input; neither Session
// nor Store has a Close method, so it lives until process shutdown.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.RWMutex
	exchanges []*Exchange
}

// EventPayload is published on Subscribe whenever an exchange is created or
// its state changes.
type EventPayload struct {
	SessionID  string
	ExchangeID string
	State      ExchangeState
}

// Store is the Session/Exchange Store: in-memory state with pub/sub
// notifications, optionally backed by a Persister (see sqlite.go) for
// crash-consistent append-only logging.
type Store struct {
	sessions  *csync.Map[string, *Session]
	persist   Persister
	broker    *pubsub.Broker[EventPayload]
}

// Persister is the narrow interface the Store uses for optional,
// crash-consistent persistence of exchanges (spec §4.7's "an exchange
// either appears fully or not at all").
type Persister interface {
	AppendExchange(ctx context.Context, row ExchangeRow) error
	UpdateExchangeState(ctx context.Context, sessionID, exchangeID string, state ExchangeState) error
}

// ExchangeRow is the persisted shape of one exchange (spec §6).
type ExchangeRow struct {
	SessionID string
	ExchangeID string
	Role      ExchangeRole
	State     ExchangeState
	Payload   Payload
	CreatedAt time.Time
}

// NewStore creates an empty store. persist may be nil to disable
// persistence entirely (spec §4.7 says persistence is optional).
func NewStore(persist Persister) *Store {
	return &Store{
		sessions: csync.NewMap[string, *Session](),
		persist:  persist,
		broker:   pubsub.NewBroker[EventPayload](),
	}
}

// NewSession creates a session, or returns the existing one for id if it
// already exists (idempotent resume).
func (s *Store) NewSession(id string) *Session {
	sess, _ := s.sessions.GetOrSet(id, func() *Session {
		return &Session{ID: id, CreatedAt: time.Now()}
	})
	return sess
}

// Get returns the session for id, if it exists.
func (s *Store) Get(id string) (*Session, bool) {
	return s.sessions.Get(id)
}

// NewExchange creates a new exchange in StatePending, owned by session
// sessionID, and returns its id. It is the one entry point named
// `new-exchange` in spec §4.7.
func (s *Store) NewExchange(ctx context.Context, sessionID string, role ExchangeRole, payload Payload) (string, error) {
	sess := s.NewSession(sessionID)

	sess.mu.Lock()
	exchangeCtx, cancel := context.WithCancel(ctx)
	ex := &Exchange{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Index:     len(sess.exchanges),
		Role:      role,
		State:     StatePending,
		Payload:   payload,
		CreatedAt: time.Now(),
		cancel:    cancel,
		ctx:       exchangeCtx,
	}
	sess.exchanges = append(sess.exchanges, ex)
	sess.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.AppendExchange(ctx, ExchangeRow{
			SessionID:  sessionID,
			ExchangeID: ex.ID,
			Role:       role,
			State:      StatePending,
			Payload:    payload,
			CreatedAt:  ex.CreatedAt,
		}); err != nil {
			return "", fmt.Errorf("session: persist new exchange: %w", err)
		}
	}

	s.broker.Publish(pubsub.CreatedEvent, EventPayload{SessionID: sessionID, ExchangeID: ex.ID, State: StatePending})
	return ex.ID, nil
}

// SetState enforces the monotonic lattice from spec §3: a transition that
// isn't an edge of validTransitions is rejected, and once an exchange
// reaches a terminal state, every further SetState call is a no-op success
// (this is what makes Cancel idempotent per spec §4.7).
func (s *Store) SetState(sessionID, exchangeID string, next ExchangeState) error {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("session: unknown session %s", sessionID)
	}

	sess.mu.Lock()
	ex := findExchange(sess.exchanges, exchangeID)
	if ex == nil {
		sess.mu.Unlock()
		return fmt.Errorf("session: unknown exchange %s", exchangeID)
	}
	if ex.State.terminal() {
		sess.mu.Unlock()
		return nil
	}
	if next != ex.State && !transitionAllowed(ex.State, next) {
		sess.mu.Unlock()
		return &ErrInvalidTransition{From: ex.State, To: next}
	}
	ex.State = next
	sess.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.UpdateExchangeState(context.Background(), sessionID, exchangeID, next); err != nil {
			return fmt.Errorf("session: persist state transition: %w", err)
		}
	}

	s.broker.Publish(pubsub.UpdatedEvent, EventPayload{SessionID: sessionID, ExchangeID: exchangeID, State: next})
	return nil
}

func transitionAllowed(from, to ExchangeState) bool {
	for _, candidate := range validTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AppendMessage appends msg to the exchange's message history.
func (s *Store) AppendMessage(sessionID, exchangeID string, msg Message) error {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("session: unknown session %s", sessionID)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	ex := findExchange(sess.exchanges, exchangeID)
	if ex == nil {
		return fmt.Errorf("session: unknown exchange %s", exchangeID)
	}
	ex.Messages = append(ex.Messages, msg)
	return nil
}

// List returns all exchanges for sessionID, in insertion order.
func (s *Store) List(sessionID string) []*Exchange {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil
	}
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	out := make([]*Exchange, len(sess.exchanges))
	copy(out, sess.exchanges)
	return out
}

// GetExchange returns one exchange by id.
func (s *Store) GetExchange(sessionID, exchangeID string) (*Exchange, bool) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, false
	}
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	ex := findExchange(sess.exchanges, exchangeID)
	return ex, ex != nil
}

// Cancel trips the exchange's cancellation token and transitions it to
// StateCancelled. It is idempotent: cancelling an already-terminal exchange
// is a no-op (spec §4.7, §8).
func (s *Store) Cancel(sessionID, exchangeID string) error {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("session: unknown session %s", sessionID)
	}
	sess.mu.Lock()
	ex := findExchange(sess.exchanges, exchangeID)
	if ex == nil {
		sess.mu.Unlock()
		return fmt.Errorf("session: unknown exchange %s", exchangeID)
	}
	if ex.cancel != nil {
		ex.cancel()
	}
	sess.mu.Unlock()

	return s.SetState(sessionID, exchangeID, StateCancelled)
}

// Undo creates an inverse exchange for an edit exchange; it never rewrites
// history (spec §4.7). inversePayload is supplied by the caller (pkg/edit
// computes the inverse patch).
func (s *Store) Undo(ctx context.Context, sessionID, exchangeID string, inversePayload Payload) (string, error) {
	if _, ok := s.GetExchange(sessionID, exchangeID); !ok {
		return "", fmt.Errorf("session: unknown exchange %s", exchangeID)
	}
	return s.NewExchange(ctx, sessionID, RoleAgent, inversePayload)
}

// Subscribe returns a channel of exchange lifecycle events across all
// sessions.
func (s *Store) Subscribe(ctx context.Context) <-chan pubsub.Event[EventPayload] {
	return s.broker.Subscribe(ctx)
}

func findExchange(exchanges []*Exchange, id string) *Exchange {
	for _, ex := range exchanges {
		if ex.ID == id {
			return ex
		}
	}
	return nil
}
