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
	"os"
	"strings"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/dispatch"
	"github.com/actionhub/actionhub/internal/base"
	"github.com/actionhub/actionhub/mcpserver"
	"github.com/actionhub/actionhub/server"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and action endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, g, os.Stderr)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)
			if addr == "" {
				addr = a.cfg.Addr
			}
			return server.Start(ctx, addr, server.NewHandler(a.disc, a.disp, a.sessions))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: GATEWAY_ADDR)")
	return cmd
}

func newMCPCmd(g *globalFlags) *cobra.Command {
	var (
		actx    core.ActionContext
		allowed []string
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve allowed actions as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, g, os.Stderr)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)
			if actx.Language == "" {
				actx.Language = a.cfg.DefaultLanguage
			}
			actx.Stateless = true
			s := mcpserver.New(ctx, a.disc, a.disp, actx, mcpserver.Options{
				Name:           "actionhub",
				AllowedActions: allowed,
			})
			return s.ServeStdio()
		},
	}
	cmd.Flags().StringVar(&actx.CompanyID, "company", "", "company whose credentials tool calls use")
	cmd.Flags().StringVar(&actx.SessionID, "session", "", "session id passed to actions")
	cmd.Flags().StringSliceVar(&allowed, "allow", nil, "action ids to expose (default: all)")
	return cmd
}

func newDiscoverCmd(g *globalFlags) *cobra.Command {
	var (
		lean   bool
		fields string
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Print the integration catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, g, os.Stderr)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)
			var out any
			if lean {
				var fs []string
				if fields != "" {
					fs = strings.Split(fields, ",")
				}
				out = a.disc.IntegrationsLean(ctx, g.lang, fs...)
			} else {
				out = a.disc.Integrations(ctx, g.lang)
			}
			_, err = cmd.OutOrStdout().Write([]byte(base.PrettyJSONString(out) + "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&lean, "lean", false, "print the lean projection")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields of the lean projection")
	return cmd
}

func newCallCmd(g *globalFlags) *cobra.Command {
	var (
		actx    core.ActionContext
		allowed []string
	)
	cmd := &cobra.Command{
		Use:   "call <function> [arguments-json]",
		Short: "Dispatch one function call and print the result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, g, os.Stderr)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)
			call := dispatchCall(args)
			if len(allowed) == 0 {
				allowed = []string{call.Function.Name}
			}
			if actx.Language == "" {
				actx.Language = a.cfg.DefaultLanguage
			}
			res := a.disp.ExecuteFunctionCallWithContext(ctx, call, &actx, allowed)
			if _, err := cmd.OutOrStdout().Write([]byte(base.PrettyJSONString(res) + "\n")); err != nil {
				return err
			}
			if res.Error != nil {
				return res.Error
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&actx.CompanyID, "company", "", "company whose credentials the action uses")
	cmd.Flags().StringVar(&actx.SessionID, "session", "", "session id passed to the action")
	cmd.Flags().StringSliceVar(&allowed, "allow", nil, "allowed action ids (default: the called function)")
	return cmd
}

func dispatchCall(args []string) dispatch.FunctionCall {
	call := dispatch.FunctionCall{Function: dispatch.FunctionSpec{Name: args[0]}}
	if len(args) > 1 {
		call.Function.Arguments = args[1]
	}
	return call
}
