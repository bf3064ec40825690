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

package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/actionhub/actionhub/internal/base"
)

// ActionFunc is the callable behind a FunctionDefinition. args is the
// parsed argument object. The returned value is either a raw value or an
// [ActionResult]; callers above the dispatcher interpret it.
type ActionFunc func(ctx context.Context, args map[string]any) (any, error)

// FunctionDefinition is the executable unit behind an action.
type FunctionDefinition struct {
	// Title overrides the humanized action key shown in the catalog.
	Title string `json:"title,omitempty"`
	// Description is required for the action to be listed.
	Description string `json:"description"`
	// Parameters is the JSON schema of the argument object.
	Parameters map[string]any `json:"parameters"`
	// Strict rejects arguments that do not match Parameters, including
	// undeclared properties.
	Strict bool `json:"strict,omitempty"`
	// Fn runs the action.
	Fn ActionFunc `json:"-"`
}

// ActionSet maps action keys to their definitions, as returned by an
// integration's action creator.
type ActionSet map[string]*FunctionDefinition

// DefineFunction returns a FunctionDefinition whose parameters are inferred
// from In and whose argument object is decoded into In before fn runs.
func DefineFunction[In, Out any](description string, fn func(context.Context, In) (Out, error)) *FunctionDefinition {
	var in In
	return &FunctionDefinition{
		Description: description,
		Parameters:  InferParameters(in),
		Fn: func(ctx context.Context, args map[string]any) (any, error) {
			input, err := base.ConvertJSON[In](args)
			if err != nil {
				return nil, NewValidationError(fmt.Sprintf("invalid arguments: %v", err), nil)
			}
			return fn(ctx, input)
		},
	}
}

// InferParameters returns the JSON schema of v's type in object form.
func InferParameters(v any) map[string]any {
	if v == nil {
		return map[string]any{"type": "object"}
	}
	return base.SchemaAsMap(base.InferJSONSchema(v))
}

// ValidateArguments checks args against params. In strict mode undeclared
// properties are rejected as well.
func ValidateArguments(args map[string]any, params map[string]any, strict bool) error {
	if len(params) == 0 {
		return nil
	}
	schema := params
	if strict {
		schema = maps.Clone(params)
		schema["additionalProperties"] = false
	}
	return base.ValidateValue(args, schema)
}
