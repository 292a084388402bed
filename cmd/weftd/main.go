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

// weftd is the daemon entrypoint: it wires the LLM Broker, Tool Registry,
// UI Event Bus, Session Store, and Request Tracker into the Agent Loop and
// exposes them over the HTTP+SSE interface of spec §6.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weftrun/weftcore/internal/config"
	"github.com/weftrun/weftcore/internal/log"
	"github.com/weftrun/weftcore/internal/version"
)

var (
	httpAddr       string
	workDir        string
	dbPath         string
	configFile     string
	provider       string
	backupProvider string
	tier           string
	anthropicKey   string
	bedrockRegion  string
	openaiKey      string
	model          string
	lspCommand     string
)

var rootCmd = &cobra.Command{
	Use:     "weftd",
	Short:   "weftd runs the agentic code-editing runtime as a standalone daemon",
	Version: version.Get(),
	RunE:    runDaemon,
}

func init() {
	rootCmd.Flags().StringVar(&httpAddr, "addr", ":8090", "HTTP listen address")
	rootCmd.Flags().StringVar(&workDir, "workdir", ".", "Workspace root the tools operate against")
	rootCmd.Flags().StringVar(&dbPath, "db", "weftd.sqlite", "Path to the session persistence database; empty disables persistence")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to a weftd.yaml config file; if empty, ./weftd.yaml, ~/.weftd/weftd.yaml, and /etc/weftd/ are searched")
	rootCmd.Flags().StringVar(&provider, "provider", "anthropic", "Primary LLM provider tag (anthropic, openai, bedrock)")
	rootCmd.Flags().StringVar(&backupProvider, "backup-provider", "", "Backup provider tag used on alternating retries")
	rootCmd.Flags().StringVar(&tier, "tier", "slow", "Default model tier when a request's model_config doesn't name one (fast, slow)")
	rootCmd.Flags().StringVar(&anthropicKey, "anthropic-api-key", os.Getenv("ANTHROPIC_API_KEY"), "Anthropic API key")
	rootCmd.Flags().StringVar(&openaiKey, "openai-api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key")
	rootCmd.Flags().StringVar(&bedrockRegion, "bedrock-region", os.Getenv("AWS_REGION"), "AWS region for Bedrock")
	rootCmd.Flags().StringVar(&model, "model", "", "Model id override; defaults to each provider's built-in default")
	rootCmd.Flags().StringVar(&lspCommand, "lsp-command", "", "Language server command (e.g. \"gopls\"); empty leaves the lsp_* tools disconnected")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "weftd: %v\n", err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	defer log.Sync()

	fd, err := config.LoadFileDefaults(configFile)
	if err != nil {
		return fmt.Errorf("weftd: load config: %w", err)
	}
	// Flags explicitly set on the command line win; otherwise the config
	// file/environment value fills in, and the flag's built-in default is
	// the last resort (spec §4.9's Configuration Assembly precedence).
	if !cmd.Flags().Changed("provider") && fd.Provider != "" {
		provider = fd.Provider
	}
	if !cmd.Flags().Changed("backup-provider") && fd.BackupProvider != "" {
		backupProvider = fd.BackupProvider
	}
	if !cmd.Flags().Changed("model") && fd.Model != "" {
		model = fd.Model
	}
	if !cmd.Flags().Changed("tier") && fd.Tier != "" {
		tier = fd.Tier
	}
	if anthropicKey == "" {
		anthropicKey = fd.AnthropicAPIKey
	}
	if openaiKey == "" {
		openaiKey = fd.OpenAIAPIKey
	}
	if bedrockRegion == "" {
		bedrockRegion = fd.BedrockRegion
	}

	srv, err := newServer(serverConfig{
		workDir:        workDir,
		dbPath:         dbPath,
		provider:       provider,
		backupProvider: backupProvider,
		tier:           tier,
		anthropicKey:   anthropicKey,
		openaiKey:      openaiKey,
		bedrockRegion:  bedrockRegion,
		model:          model,
		lspCommand:     lspCommand,
	})
	if err != nil {
		return fmt.Errorf("weftd: build server: %w", err)
	}
	defer srv.Close()

	httpSrv := srv.httpServer(httpAddr)

	errCh := make(chan error, 1)
	go func() {
		log.Info("weftd: listening", zap.String("addr", httpAddr))
		if err := httpSrv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("weftd: shutting down")
	}

	shutdownDeadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(shutdownDeadline) {
		if err := httpSrv.Close(); err == nil {
			break
		}
	}
	return nil
}
