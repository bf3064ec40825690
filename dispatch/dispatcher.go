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

// Package dispatch executes function calls against the actions a caller
// is allowed to use.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/core/tracing"
	"github.com/actionhub/actionhub/discovery"
	"github.com/actionhub/actionhub/internal/metrics"
	"github.com/actionhub/actionhub/internal/naming"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// argKeysAttr lists the argument names of a dispatch. Argument values
// (message bodies, stored records) are kept off spans.
const argKeysAttr = "actionhub:argKeys"

// FunctionCall is the wire form of a dispatch request.
type FunctionCall struct {
	Function FunctionSpec `json:"function"`
}

// FunctionSpec names the function to call and carries its arguments as a
// JSON-encoded object.
type FunctionSpec struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// UnmarshalJSON accepts arguments either as a JSON string or as an
// inline JSON object.
func (f *FunctionSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Name = raw.Name
	f.Arguments = ""
	args := bytes.TrimSpace(raw.Arguments)
	switch {
	case len(args) == 0 || bytes.Equal(args, []byte("null")):
	case args[0] == '"':
		return json.Unmarshal(args, &f.Arguments)
	default:
		f.Arguments = string(args)
	}
	return nil
}

// CallResult is the outcome of a dispatch: exactly one of Result and
// Error is meaningful.
type CallResult struct {
	Result any
	Error  *CallError
}

// CallError reports a failed dispatch.
type CallError struct {
	Message string          `json:"message"`
	Status  core.StatusName `json:"status"`
}

func (e *CallError) Error() string { return e.Message }

// MarshalJSON encodes r as {"result": ...} or {"error": {...}}.
func (r CallResult) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			Error *CallError `json:"error"`
		}{r.Error})
	}
	return json.Marshal(struct {
		Result any `json:"result"`
	}{r.Result})
}

func errorResult(err error) CallResult {
	status := core.INTERNAL
	if e, ok := core.AsError(err); ok {
		status = e.Status
	}
	return CallResult{Error: &CallError{Message: err.Error(), Status: status}}
}

// Dispatcher resolves identities, builds the allowed functions and runs
// the requested one.
type Dispatcher struct {
	factory  *Factory
	sessions SessionResolver
	tstate   *tracing.State
}

// New returns a Dispatcher. A nil sessions trusts the identity it is
// given; a nil tstate records spans nowhere.
func New(d *discovery.Service, sessions SessionResolver, tstate *tracing.State) *Dispatcher {
	if sessions == nil {
		sessions = PassthroughResolver{}
	}
	if tstate == nil {
		tstate = tracing.NewState()
	}
	return &Dispatcher{
		factory:  NewFactory(d),
		sessions: sessions,
		tstate:   tstate,
	}
}

// Factory returns the function factory the Dispatcher uses.
func (d *Dispatcher) Factory() *Factory { return d.factory }

// ExecuteFunctionCall resolves sessionID and companyID into an
// ActionContext and then behaves like ExecuteFunctionCallWithContext.
func (d *Dispatcher) ExecuteFunctionCall(ctx context.Context, call FunctionCall, sessionID, companyID string, allowedIDs []string) CallResult {
	actx, err := d.sessions.Resolve(ctx, sessionID, companyID)
	if err != nil {
		logger.FromContext(ctx).Info("session resolution failed", "session", sessionID, "err", err)
		return errorResult(err)
	}
	return d.ExecuteFunctionCallWithContext(ctx, call, actx, allowedIDs)
}

// ExecuteFunctionCallWithContext runs call with a pre-built ActionContext.
// Only functions whose action ids appear in allowedIDs can be called.
// The returned value of the function is passed through uninterpreted.
func (d *Dispatcher) ExecuteFunctionCallWithContext(ctx context.Context, call FunctionCall, actx *core.ActionContext, allowedIDs []string) CallResult {
	if actx == nil {
		actx = &core.ActionContext{}
	}
	log := logger.FromContext(ctx).With("callID", uuid.NewString(), "function", call.Function.Name)
	ctx = logger.WithContext(ctx, log)
	ctx = core.WithActionContext(ctx, actx)
	start := time.Now()

	name := naming.SanitizeFunctionName(call.Function.Name)
	meta := &tracing.SpanMetadata{
		Name:        name,
		Type:        "dispatch",
		Attributes:  map[string]string{"actionhub:company": actx.CompanyID},
		OmitPayload: true,
	}
	out, err := tracing.RunInNewSpan(ctx, d.tstate, meta, call.Function.Arguments,
		func(ctx context.Context, rawArgs string) (any, error) {
			fd, ok := d.factory.Create(ctx, actx, allowedIDs)[name]
			if !ok {
				return nil, core.NewError(core.UNIMPLEMENTED, "Function %s not implemented in the factory", call.Function.Name)
			}
			args, err := parseArguments(rawArgs)
			if err != nil {
				return nil, err
			}
			trace.SpanFromContext(ctx).SetAttributes(
				attribute.StringSlice(argKeysAttr, slices.Sorted(maps.Keys(args))))
			if err := core.ValidateArguments(args, fd.Parameters, fd.Strict); err != nil {
				if fd.Strict {
					return nil, core.NewValidationError(err.Error(), nil)
				}
				logger.FromContext(ctx).Warn("arguments do not match parameters", "err", err)
			}
			return invoke(ctx, fd, args)
		})
	latency := time.Since(start)
	if err != nil {
		res := errorResult(err)
		metrics.WriteDispatchFailure(ctx, name, latency, string(res.Error.Status))
		log.Info("dispatch failed", "status", res.Error.Status, "err", err, "duration", latency)
		return res
	}
	metrics.WriteDispatchSuccess(ctx, name, latency)
	log.Debug("dispatch succeeded", "duration", latency)
	return CallResult{Result: out}
}

// parseArguments decodes the argument object. Empty or null arguments mean {}.
func parseArguments(raw string) (map[string]any, error) {
	if raw = strings.TrimSpace(raw); raw == "" || raw == "null" {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, core.NewValidationError(fmt.Sprintf("arguments are not valid JSON: %v", err), nil)
	}
	args, ok := v.(map[string]any)
	if !ok {
		return nil, core.NewValidationError(fmt.Sprintf("arguments must be a JSON object, got %T", v), nil)
	}
	return args, nil
}

func invoke(ctx context.Context, fd *core.FunctionDefinition, args map[string]any) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("function panicked: %v", p)
		}
	}()
	return fd.Fn(ctx, args)
}
