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
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// FileDefaults is the daemon's file/env-sourced configuration, merged under
// explicit CLI flags (priority: CLI flags > env vars > config file >
// built-in defaults; viper ranks AutomaticEnv values above the file).
type FileDefaults struct {
	Provider        string `mapstructure:"provider"`
	BackupProvider  string `mapstructure:"backup_provider"`
	Tier            string `mapstructure:"tier"`
	Model           string `mapstructure:"model"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	BedrockRegion   string `mapstructure:"bedrock_region"`
}

// LoadFileDefaults reads weftd's optional YAML config file (explicit path,
// or discovered from ./weftd.yaml, ~/.weftd/weftd.yaml, /etc/weftd/) and
// WEFTD_-prefixed environment variables into FileDefaults. A missing config
// file is not an error — the daemon runs fine on flags and env vars alone.
func LoadFileDefaults(configPath string) (FileDefaults, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("$HOME/.weftd")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/weftd/")
		v.SetConfigName("weftd")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("WEFTD")
	v.AutomaticEnv()

	v.SetDefault("provider", string(ProviderAnthropic))
	v.SetDefault("tier", string(TierSlow))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return FileDefaults{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var fd FileDefaults
	if err := v.Unmarshal(&fd); err != nil {
		return FileDefaults{}, fmt.Errorf("config: unmarshal config: %w", err)
	}
	return fd, nil
}
