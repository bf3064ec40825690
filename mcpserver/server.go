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

// Package mcpserver exposes gateway actions as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/discovery"
	"github.com/actionhub/actionhub/dispatch"
	"github.com/actionhub/actionhub/internal/base"
	"github.com/actionhub/actionhub/internal/naming"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options configures a Server.
type Options struct {
	// Name and Version identify the server to MCP clients.
	Name    string
	Version string
	// AllowedActions are the action ids exposed as tools. If empty,
	// every action in the catalog is exposed.
	AllowedActions []string
}

// Server serves the allowed actions of one identity over MCP.
type Server struct {
	disc    *discovery.Service
	disp    *dispatch.Dispatcher
	actx    core.ActionContext
	allowed []string
	tools   []mcp.Tool
	mcp     *server.MCPServer
}

// New builds a Server whose tool calls run as actx.
func New(ctx context.Context, disc *discovery.Service, disp *dispatch.Dispatcher, actx core.ActionContext, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "actionhub"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	s := &Server{
		disc: disc,
		disp: disp,
		actx: actx,
		mcp: server.NewMCPServer(opts.Name, opts.Version,
			server.WithToolCapabilities(true)),
	}
	var actions []*discovery.ActionInfo
	for _, a := range disc.Actions(ctx, actx.Language) {
		if len(opts.AllowedActions) == 0 || slices.Contains(opts.AllowedActions, a.ID) {
			actions = append(actions, a)
		}
	}
	for _, a := range actions {
		s.allowed = append(s.allowed, a.ID)
	}
	for _, a := range actions {
		tool := s.convertAction(a)
		s.tools = append(s.tools, tool)
		s.mcp.AddTool(tool, s.toolHandler(a.ID))
	}
	logger.FromContext(ctx).Info("MCP tools registered", "count", len(s.tools))
	return s
}

// Tools returns the tools the Server offers.
func (s *Server) Tools() []mcp.Tool { return s.tools }

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio serves MCP over standard input and output until it is closed.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) convertAction(a *discovery.ActionInfo) mcp.Tool {
	schema, err := json.Marshal(a.Parameters)
	if err != nil {
		schema = []byte(`{"type":"object"}`)
	}
	return mcp.NewToolWithRawSchema(naming.SanitizeFunctionName(a.ID), a.Description, schema)
}

func (s *Server) toolHandler(id string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args string
		if request.Params.Arguments != nil {
			b, err := json.Marshal(request.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			args = string(b)
		}
		actx := s.actx // each call gets its own copy
		call := dispatch.FunctionCall{Function: dispatch.FunctionSpec{Name: id, Arguments: args}}
		res := s.disp.ExecuteFunctionCallWithContext(ctx, call, &actx, s.allowed)
		if res.Error != nil {
			return mcp.NewToolResultError(res.Error.Message), nil
		}
		if f, ok := res.Result.(interface{ Failed() bool }); ok && f.Failed() {
			return mcp.NewToolResultError(base.JSONString(res.Result)), nil
		}
		switch v := res.Result.(type) {
		case string:
			return mcp.NewToolResultText(v), nil
		case nil:
			return mcp.NewToolResultText(""), nil
		default:
			return mcp.NewToolResultText(base.JSONString(v)), nil
		}
	}
}
