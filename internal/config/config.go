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

// Package config is Configuration Assembly (spec §4.9, §2's 6% share): it
// resolves which model and provider apply to a given
// exchange from the incoming request's model_config object (spec §6),
// choosing between a fast and a slow model tier, and reports the
// resolved model's context window so the Agent Loop can size its history
// budget (spec §4.8.1). A static provider/model catalog backs the
// resolution when a request names only a tier, not a concrete model.
package config

import (
	"encoding/json"
	"fmt"
)

// ModelTier mirrors spec §3's "fast-model vs slow-model selection".
type ModelTier string

const (
	TierFast ModelTier = "fast"
	TierSlow ModelTier = "slow"
)

// ProviderTag identifies a Provider Client implementation, matching the
// tags pkg/llm/broker.Broker registers clients under.
type ProviderTag string

const (
	ProviderAnthropic ProviderTag = "anthropic"
	ProviderOpenAI    ProviderTag = "openai"
	ProviderBedrock   ProviderTag = "bedrock"
)

// Model is one catalog entry: enough to pick a wire encoding and size a
// token budget. Pricing is informational only; the core does no billing
// (spec §1 Non-goals).
type Model struct {
	Provider        ProviderTag
	ID              string
	Name            string
	ContextWindow   int
	MaxOutputTokens int
}

// Catalog is the static provider/model table Configuration Assembly
// consults when a request selects a tier but not a concrete model id.
type Catalog struct {
	fast map[ProviderTag]Model
	slow map[ProviderTag]Model
	byID map[string]Model
}

// DefaultCatalog returns the built-in provider/model table. It is small on
// purpose: the core doesn't attempt to track every vendor's lineup, only
// the handful the bundled Provider Clients speak to.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		fast: make(map[ProviderTag]Model),
		slow: make(map[ProviderTag]Model),
		byID: make(map[string]Model),
	}
	c.add(ModelTier(TierSlow), Model{Provider: ProviderAnthropic, ID: "claude-opus-4-20250514", Name: "Claude Opus 4", ContextWindow: 200_000, MaxOutputTokens: 32_000})
	c.add(ModelTier(TierFast), Model{Provider: ProviderAnthropic, ID: "claude-haiku-4-20250514", Name: "Claude Haiku 4", ContextWindow: 200_000, MaxOutputTokens: 8_192})
	c.add(ModelTier(TierSlow), Model{Provider: ProviderOpenAI, ID: "gpt-5", Name: "GPT-5", ContextWindow: 272_000, MaxOutputTokens: 32_000})
	c.add(ModelTier(TierFast), Model{Provider: ProviderOpenAI, ID: "gpt-5-mini", Name: "GPT-5 Mini", ContextWindow: 272_000, MaxOutputTokens: 16_000})
	c.add(ModelTier(TierSlow), Model{Provider: ProviderBedrock, ID: "anthropic.claude-opus-4-20250514-v1:0", Name: "Claude Opus 4 (Bedrock)", ContextWindow: 200_000, MaxOutputTokens: 32_000})
	c.add(ModelTier(TierFast), Model{Provider: ProviderBedrock, ID: "anthropic.claude-haiku-4-20250514-v1:0", Name: "Claude Haiku 4 (Bedrock)", ContextWindow: 200_000, MaxOutputTokens: 8_192})
	return c
}

func (c *Catalog) add(tier ModelTier, m Model) {
	switch tier {
	case TierFast:
		c.fast[m.Provider] = m
	case TierSlow:
		c.slow[m.Provider] = m
	}
	c.byID[m.ID] = m
}

// Lookup resolves an explicit model id, falling back to false if the
// catalog doesn't carry it (the caller may still use the id verbatim; the
// Provider Client doesn't require catalog membership to function, only
// Configuration Assembly's context-window estimate does).
func (c *Catalog) Lookup(id string) (Model, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// ByTier returns the catalog's default model for a provider and tier.
func (c *Catalog) ByTier(provider ProviderTag, tier ModelTier) (Model, bool) {
	var table map[ProviderTag]Model
	if tier == TierFast {
		table = c.fast
	} else {
		table = c.slow
	}
	m, ok := table[provider]
	return m, ok
}

// RequestModelConfig is the wire shape of the incoming request's
// model_config object (spec §6): primary and backup provider tags plus
// slow/fast model selection. It carries no credentials; the provider
// tags only select among already-loaded Provider Clients.
type RequestModelConfig struct {
	Provider       string `json:"provider,omitempty"`
	BackupProvider string `json:"backup_provider,omitempty"`
	FastModel      string `json:"fast_model,omitempty"`
	SlowModel      string `json:"slow_model,omitempty"`
	UseFastModel   bool   `json:"use_fast_model,omitempty"`
}

// ParseRequestModelConfig decodes a raw model_config JSON object. An empty or absent body
// decodes to the zero value, which Resolve then fills from Defaults.
func ParseRequestModelConfig(raw []byte) (RequestModelConfig, error) {
	var rmc RequestModelConfig
	if len(raw) == 0 {
		return rmc, nil
	}
	if err := json.Unmarshal(raw, &rmc); err != nil {
		return rmc, fmt.Errorf("config: parse model_config: %w", err)
	}
	return rmc, nil
}

// Defaults is the daemon-wide fallback Configuration Assembly applies when
// a request's model_config is silent on a field — set once at startup from
// CLI flags/env and read-shared thereafter (spec §5: "no global mutable
// state in the core").
type Defaults struct {
	Provider       ProviderTag
	BackupProvider ProviderTag
	Tier           ModelTier
}

// Resolved is what the Agent Loop needs out of Configuration Assembly for
// one exchange: the primary and failover LLM Properties' provider tags,
// the concrete model id to request, and the context window to size the
// history budget against.
type Resolved struct {
	Provider       ProviderTag
	BackupProvider ProviderTag
	ModelID        string
	ContextWindow  int
}

// Assembly is Configuration Assembly's entry point: Catalog plus Defaults.
type Assembly struct {
	Catalog  *Catalog
	Defaults Defaults
}

// New builds an Assembly over the given catalog and startup defaults.
func New(catalog *Catalog, defaults Defaults) *Assembly {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Assembly{Catalog: catalog, Defaults: defaults}
}

// Resolve applies spec §4.9: pick the primary/backup provider tags (the
// request's if named, else the daemon defaults), pick a concrete model id
// for the requested tier, and report that model's context window. An
// explicit fast_model/slow_model id in the request wins over the catalog's
// per-tier default for that provider.
func (a *Assembly) Resolve(rmc RequestModelConfig) Resolved {
	provider := a.Defaults.Provider
	if rmc.Provider != "" {
		provider = ProviderTag(rmc.Provider)
	}
	backup := a.Defaults.BackupProvider
	if rmc.BackupProvider != "" {
		backup = ProviderTag(rmc.BackupProvider)
	}

	tier := a.Defaults.Tier
	if tier == "" {
		tier = TierSlow
	}
	if rmc.UseFastModel {
		tier = TierFast
	}

	explicit := rmc.SlowModel
	if tier == TierFast {
		explicit = rmc.FastModel
	}

	var model Model
	var ok bool
	if explicit != "" {
		model, ok = a.Catalog.Lookup(explicit)
		if !ok {
			// Unknown to the catalog; still honor the caller's explicit
			// choice, just without a context-window estimate to size
			// history trimming against.
			return Resolved{Provider: provider, BackupProvider: backup, ModelID: explicit, ContextWindow: 0}
		}
	} else {
		model, ok = a.Catalog.ByTier(provider, tier)
		if !ok {
			return Resolved{Provider: provider, BackupProvider: backup}
		}
	}
	return Resolved{Provider: provider, BackupProvider: backup, ModelID: model.ID, ContextWindow: model.ContextWindow}
}
