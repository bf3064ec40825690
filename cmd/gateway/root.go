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

package main

import (
	"context"
	"io"

	"github.com/actionhub/actionhub/config"
	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/core/tracing"
	"github.com/actionhub/actionhub/credentials"
	"github.com/actionhub/actionhub/discovery"
	"github.com/actionhub/actionhub/dispatch"
	"github.com/actionhub/actionhub/integrations"
	"github.com/actionhub/actionhub/registry"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// flags shared by every command.
type globalFlags struct {
	dotenv          string
	integrationsDir string
	lang            string
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Discover integration actions and dispatch calls to them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.dotenv, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&g.integrationsDir, "integrations", "", "integrations directory (default: built-in integrations)")
	root.PersistentFlags().StringVar(&g.lang, "lang", "", "language of catalog strings (default: GATEWAY_DEFAULT_LANGUAGE)")
	root.AddCommand(
		newServeCmd(&g),
		newMCPCmd(&g),
		newDiscoverCmd(&g),
		newCallCmd(&g),
	)
	return root
}

// app is the composition root shared by the commands.
type app struct {
	cfg    *config.Config
	reg    *registry.Registry
	disc   *discovery.Service
	disp   *dispatch.Dispatcher
	tstate *tracing.State
	close  func() error

	// sessions is set in the store session mode.
	sessions *dispatch.SessionStore
}

// newApp loads the configuration and wires the gateway. logOut receives
// the logs; the mcp command sends them to stderr so stdout stays clean.
func newApp(ctx context.Context, g *globalFlags, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(g.dotenv)
	if err != nil {
		return nil, err
	}
	if g.integrationsDir != "" {
		cfg.IntegrationsDir = g.integrationsDir
	}
	if g.lang != "" {
		cfg.DefaultLanguage = g.lang
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logger.Configure(logOut, level, cfg.LogFormat)
	log.Debug("configuration loaded", "env", cfg.Env, "integrationsDir", cfg.IntegrationsDir)

	a := &app{cfg: cfg, close: func() error { return nil }}

	var store credentials.Store = credentials.EnvStore{Prefix: cfg.CredentialPrefix}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, err
		}
		store = credentials.NewRedisStore(client)
		a.close = client.Close
	}

	a.reg = registry.New(cfg.IntegrationsFS(integrations.FS))
	integrations.Register(a.reg, integrations.Deps{
		Credentials:     store,
		Timeout:         cfg.HTTPTimeout,
		SendGridBaseURL: cfg.SendGridBaseURL,
		JSONBinBaseURL:  cfg.JSONBinBaseURL,
	})
	a.disc = discovery.New(a.reg, cfg.DefaultLanguage)
	if cfg.ReloadIntegrations() {
		log.Info("rescanning integrations on every request", "dir", cfg.IntegrationsDir)
		a.disc.SetReload(true)
	}

	a.tstate = tracing.NewState()
	a.tstate.RegisterSpanProcessor(tracing.NewLogProcessor(log))
	var resolver dispatch.SessionResolver = dispatch.PassthroughResolver{Language: cfg.DefaultLanguage}
	if cfg.SessionMode == config.SessionModeStore {
		a.sessions = dispatch.NewSessionStore()
		resolver = a.sessions
	}
	a.disp = dispatch.New(a.disc, resolver, a.tstate)
	return a, nil
}

func (a *app) shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	if err := a.tstate.Shutdown(ctx); err != nil {
		log.Warn("tracing shutdown", "err", err)
	}
	if err := a.close(); err != nil {
		log.Warn("closing credential store", "err", err)
	}
}
