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
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/weftrun/weftcore/internal/agentloop"
	"github.com/weftrun/weftcore/internal/config"
	"github.com/weftrun/weftcore/internal/log"
	"github.com/weftrun/weftcore/pkg/event"
	"github.com/weftrun/weftcore/pkg/llm/anthropic"
	"github.com/weftrun/weftcore/pkg/llm/bedrock"
	"github.com/weftrun/weftcore/pkg/llm/broker"
	"github.com/weftrun/weftcore/pkg/llm/openai"
	"github.com/weftrun/weftcore/pkg/lsp"
	"github.com/weftrun/weftcore/pkg/session"
	"github.com/weftrun/weftcore/pkg/shuttle"
	"github.com/weftrun/weftcore/pkg/shuttle/builtin"
	"github.com/weftrun/weftcore/pkg/tracker"

	sse "github.com/r3labs/sse/v2"
)

// serverConfig carries the flags newServer needs to wire up providers and
// storage.
type serverConfig struct {
	workDir        string
	dbPath         string
	provider       string
	backupProvider string
	tier           string
	anthropicKey   string
	openaiKey      string
	bedrockRegion  string
	model          string
	lspCommand     string
}

// server owns every long-lived collaborator the Agent Loop and the HTTP
// interface share.
type server struct {
	loop      *agentloop.Loop
	store     *session.Store
	tracker   *tracker.Tracker
	bus       *event.Bus
	sse       *event.SSEWriter
	sseServer *sse.Server
	persist   *session.SQLitePersister
	assembly  *config.Assembly
	provider  string
	backup    string
}

func newServer(cfg serverConfig) (*server, error) {
	var persist *session.SQLitePersister
	if cfg.dbPath != "" {
		var err error
		persist, err = session.OpenSQLitePersister(cfg.dbPath)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
	}

	// Passing a typed-nil *SQLitePersister straight through would produce a
	// non-nil Persister interface value and crash the store's "if persist
	// != nil" checks; only hand over a Persister when one was opened.
	var storePersist session.Persister
	if persist != nil {
		storePersist = persist
	}
	store := session.NewStore(storePersist)
	bus := event.NewBus()
	trk := tracker.New()

	registry := shuttle.NewRegistry()
	for _, tool := range builtinTools(cfg.workDir, cfg.lspCommand) {
		registry.Register(tool)
	}
	executor := shuttle.NewExecutor(registry)

	b := broker.New()
	registerProviders(b, cfg)

	loop := agentloop.New(b, registry, executor, bus, store, trk)

	sseServer := event.NewServer()
	sseWriter := event.NewSSEWriter(bus, sseServer)

	tier := config.TierSlow
	if config.ModelTier(cfg.tier) == config.TierFast {
		tier = config.TierFast
	}
	assembly := config.New(config.DefaultCatalog(), config.Defaults{
		Provider:       config.ProviderTag(cfg.provider),
		BackupProvider: config.ProviderTag(cfg.backupProvider),
		Tier:           tier,
	})

	return &server{
		loop:      loop,
		store:     store,
		tracker:   trk,
		bus:       bus,
		sse:       sseWriter,
		sseServer: sseServer,
		persist:   persist,
		assembly:  assembly,
		provider:  cfg.provider,
		backup:    cfg.backupProvider,
	}, nil
}

// historyHeadroom is the "answer headroom" H of spec §4.8.1: tokens
// reserved for the model's own reply so trimming never sizes history right
// up to the model's hard context limit.
const historyHeadroom = 8_000

func (s *server) Close() {
	if s.persist != nil {
		s.persist.Close()
	}
}

// builtinTools builds the full tool set the Agent Loop dispatches against.
// The lsp_* tools share one Client; if lspCommand names a language server
// binary it's launched and connected in the background so startup never
// blocks on (or fails because of) an unavailable language server.
func builtinTools(workDir, lspCommand string) []shuttle.Tool {
	lspClient := lsp.NewClient()
	if lspCommand != "" {
		go func() {
			if err := lspClient.Connect(context.Background(), lspCommand, nil, "file://"+workDir); err != nil {
				log.Error("weftd: lsp connect failed", zap.String("command", lspCommand), zap.Error(err))
			}
		}()
	}
	return []shuttle.Tool{
		builtin.NewCodeEditTool(workDir),
		builtin.NewSearchAndReplaceTool(workDir),
		builtin.NewTerminalCommandTool(workDir),
		builtin.NewTestRunnerTool(workDir),
		builtin.NewFileFindTool(workDir),
		builtin.NewFileOpenTool(workDir),
		builtin.NewListFilesTool(workDir),
		builtin.NewRepoMapTool(workDir),
		builtin.NewSemanticSearchTool(workDir),
		builtin.NewLSPDiagnosticsTool(lspClient, workDir),
		builtin.NewLSPGotoDefinitionTool(lspClient, workDir),
		builtin.NewLSPGotoReferencesTool(lspClient, workDir),
		builtin.NewLSPGotoImplementationTool(lspClient, workDir),
		builtin.NewLSPInlayHintsTool(lspClient, workDir),
		builtin.NewAttemptCompletionTool(),
		builtin.NewAskFollowupQuestionTool(),
	}
}

// registerProviders wires every Provider Client the daemon has credentials
// for. A tag with no credentials simply isn't registered; the Broker
// reports a clear error if a request names it.
func registerProviders(b *broker.Broker, cfg serverConfig) {
	if cfg.anthropicKey != "" {
		client := anthropic.NewClient(anthropic.Config{APIKey: cfg.anthropicKey, Model: cfg.model})
		b.Register("anthropic", client)
	}
	if cfg.openaiKey != "" {
		client := openai.NewClient(openai.Config{APIKey: cfg.openaiKey, Model: cfg.model})
		b.Register("openai", client)
	}
	if cfg.bedrockRegion != "" {
		if client, err := bedrock.NewClient(bedrock.Config{Region: cfg.bedrockRegion, ModelID: cfg.model}); err == nil {
			b.Register("bedrock", client)
		} else {
			log.Error("weftd: bedrock client init failed", zap.Error(err))
		}
	}
}

// requestBody is the incoming-request shape of spec §6. user_context and
// model_config are themselves JSON objects (spec §6), not strings, so they
// decode as raw message bytes and are parsed by their own package.
type requestBody struct {
	SessionID   string          `json:"session_id"`
	ExchangeID  string          `json:"exchange_id"`
	Query       string          `json:"query"`
	UserContext json.RawMessage `json:"user_context"`
	ModelConfig json.RawMessage `json:"model_config"`
	EditorURL   string          `json:"editor_url"`
}

// cancelBody is the cancel-request shape of spec §6.
type cancelBody struct {
	SessionID  string `json:"session_id"`
	ExchangeID string `json:"exchange_id"`
}

func (s *server) httpServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/request", s.handleRequest)
	mux.HandleFunc("/v1/cancel", s.handleCancel)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.Handle("/v1/stream", event.Handler(s.sseServer))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses run indefinitely
	}
}

func (s *server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.SessionID == "" || body.Query == "" {
		http.Error(w, "session_id and query are required", http.StatusBadRequest)
		return
	}

	userCtx, err := session.ParseUserContext(body.UserContext)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	modelCfg, err := config.ParseRequestModelConfig(body.ModelConfig)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resolved := s.assembly.Resolve(modelCfg)

	maxHistory := 0
	if resolved.ContextWindow > historyHeadroom {
		maxHistory = resolved.ContextWindow - historyHeadroom
	}

	go func() {
		exchangeID, err := s.loop.Run(r.Context(), agentloop.Params{
			SessionID:        body.SessionID,
			Query:            body.Query,
			UserContext:      userCtx,
			Provider:         string(resolved.Provider),
			BackupProvider:   string(resolved.BackupProvider),
			Model:            resolved.ModelID,
			MaxHistoryTokens: maxHistory,
		})
		if err != nil {
			log.Error("weftd: agent loop turn failed", zap.String("session_id", body.SessionID), zap.String("exchange_id", exchangeID), zap.Error(err))
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"session_id": body.SessionID, "status": "accepted"})
}

func (s *server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body cancelBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	done := s.tracker.Cancel(body.SessionID, body.ExchangeID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"done": done})
}

// handleEvents serves the session's SSE stream: it registers the stream
// with the underlying sse.Server, then blocks draining the bus until the
// client disconnects.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	go s.sse.Serve(r.Context(), sessionID)

	r.URL.RawQuery = fmt.Sprintf("stream=%s", sessionID)
	s.sseServer.ServeHTTP(w, r)
}
