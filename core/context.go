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

	"github.com/actionhub/actionhub/internal/base"
)

// ActionContext is the identity an action creator is built for.
// A fresh ActionContext is made for every dispatch; it is never shared
// between calls. Discovery builds actions with the zero ActionContext.
type ActionContext struct {
	SessionID string `json:"sessionId,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
	Language  string `json:"language,omitempty"`
	Stateless bool   `json:"isStateless,omitempty"`
}

// IsZero reports whether c carries no identity, as during discovery.
func (c *ActionContext) IsZero() bool {
	return c == nil || *c == ActionContext{}
}

var actionCtxKey = base.NewContextKey[*ActionContext]()

// WithActionContext returns a new Context carrying actx.
func WithActionContext(ctx context.Context, actx *ActionContext) context.Context {
	return actionCtxKey.NewContext(ctx, actx)
}

// FromContext returns the ActionContext stored in ctx, or nil.
func FromContext(ctx context.Context) *ActionContext {
	return actionCtxKey.FromContext(ctx)
}
