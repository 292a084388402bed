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
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"

	"github.com/weftrun/weftcore/internal/log"
)

// KeepAliveInterval is how often a keep-alive frame is written to an SSE
// stream, whether or not events were sent in between, per spec §6.
const KeepAliveInterval = 3 * time.Second

type keepAliveFrame struct {
	KeepAlive string `json:"keep_alive"`
}

// SSEWriter is the single consumer per session: it drains a Bus session
// channel and re-emits each Envelope as one SSE `data:` frame via
// r3labs/sse's stream server, plus a keep-alive frame on every
// KeepAliveInterval tick.
type SSEWriter struct {
	bus    *Bus
	server *sse.Server
}

// NewSSEWriter wraps an sse.Server (already mounted at the caller's HTTP
// route) with a Bus drain loop per session.
func NewSSEWriter(bus *Bus, server *sse.Server) *SSEWriter {
	return &SSEWriter{bus: bus, server: server}
}

// Serve registers sessionID as an SSE stream and blocks, draining bus
// events for that session until ctx is done. Call it from the handler for
// the session's SSE route, after the client has subscribed.
func (w *SSEWriter) Serve(ctx context.Context, sessionID string) {
	w.server.CreateStream(sessionID)
	defer w.server.RemoveStream(sessionID)

	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()

	notify := w.bus.Wait(sessionID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			w.flush(sessionID)
		case <-ticker.C:
			w.publishKeepAlive(sessionID)
		}
	}
}

func (w *SSEWriter) flush(sessionID string) {
	for _, env := range w.bus.Drain(sessionID) {
		data, err := json.Marshal(env)
		if err != nil {
			log.Error("event: failed to marshal envelope", zap.Error(err), zap.String("session_id", sessionID))
			continue
		}
		w.server.Publish(sessionID, &sse.Event{Data: data})
	}
}

func (w *SSEWriter) publishKeepAlive(sessionID string) {
	data, _ := json.Marshal(keepAliveFrame{KeepAlive: "alive"})
	w.server.Publish(sessionID, &sse.Event{Data: data})
}

// NewServer builds an r3labs/sse server configured for one-writer-per-
// stream fan-out, suitable for mounting at an HTTP route with ServeHTTP.
func NewServer() *sse.Server {
	s := sse.New()
	s.AutoReplay = false
	return s
}

// Handler adapts an *sse.Server to http.Handler for mounting under a mux.
func Handler(s *sse.Server) http.Handler {
	return s
}
