// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the gateway configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/actionhub/actionhub/internal/base"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the gateway configuration.
type Config struct {
	Addr string `env:"ADDR" envDefault:"127.0.0.1:3400"`
	// IntegrationsDir is the integrations tree on disk. Empty means the
	// descriptors built into the binary.
	IntegrationsDir  string           `env:"INTEGRATIONS_DIR"`
	DefaultLanguage  string           `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	LogLevel         string           `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string           `env:"LOG_FORMAT" envDefault:"text"`
	Env              base.Environment `env:"ENV" envDefault:"dev"`
	HTTPTimeout      time.Duration    `env:"HTTP_TIMEOUT" envDefault:"30s"`
	RedisAddr        string           `env:"REDIS_ADDR"`
	CredentialPrefix string           `env:"CREDENTIAL_PREFIX" envDefault:"GATEWAY_KEY_"`
	// SessionMode is "passthrough" to trust caller identities or "store"
	// to resolve them from sessions registered over HTTP.
	SessionMode      string           `env:"SESSION_MODE" envDefault:"passthrough"`
	SendGridBaseURL  string           `env:"SENDGRID_BASE_URL" envDefault:"https://api.sendgrid.com"`
	JSONBinBaseURL   string           `env:"JSONBIN_BASE_URL" envDefault:"https://api.jsonbin.io"`
}

// Prefix is prepended to every variable name.
const Prefix = "GATEWAY_"

// Session modes.
const (
	SessionModePassthrough = "passthrough"
	SessionModeStore       = "store"
)

// Load reads the configuration from the environment, after loading
// dotenvFile if it exists. Variables already set are not overridden.
func Load(dotenvFile string) (*Config, error) {
	if dotenvFile != "" {
		if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", dotenvFile, err)
		}
	}
	return parse(env.Options{Prefix: Prefix})
}

// FromMap reads the configuration from vars instead of the process
// environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case base.EnvironmentDev, base.EnvironmentProd:
	default:
		return fmt.Errorf("%sENV: unknown environment %q", Prefix, c.Env)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%sLOG_FORMAT: want text or json, got %q", Prefix, c.LogFormat)
	}
	switch c.SessionMode {
	case SessionModePassthrough, SessionModeStore:
	default:
		return fmt.Errorf("%sSESSION_MODE: want %s or %s, got %q", Prefix, SessionModePassthrough, SessionModeStore, c.SessionMode)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%sHTTP_TIMEOUT must be positive", Prefix)
	}
	return nil
}

// ReloadIntegrations reports whether the integrations tree should be
// rescanned on every catalog request. This holds in the dev environment
// when integrations are read from disk; embedded descriptors never change.
func (c *Config) ReloadIntegrations() bool {
	return c.Env == base.EnvironmentDev && c.IntegrationsDir != ""
}

// IntegrationsFS returns the on-disk integrations tree, or fallback when
// IntegrationsDir is empty.
func (c *Config) IntegrationsFS(fallback fs.FS) fs.FS {
	if c.IntegrationsDir == "" {
		return fallback
	}
	return os.DirFS(c.IntegrationsDir)
}
