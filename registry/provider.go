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

package registry

import "github.com/actionhub/actionhub/core"

// Provider builds the actions of one integration. A descriptor binds to
// the Provider whose Name equals its actionCreator.
//
// Actions must not perform I/O: discovery calls it with an empty
// ActionContext just to read descriptions and schemas. Side effects
// belong in the returned functions.
type Provider interface {
	Name() string
	Actions(actx *core.ActionContext) core.ActionSet
}

type providerFunc struct {
	name string
	fn   func(*core.ActionContext) core.ActionSet
}

func (p *providerFunc) Name() string { return p.name }

func (p *providerFunc) Actions(actx *core.ActionContext) core.ActionSet { return p.fn(actx) }

// NewProvider returns a Provider named name that builds its actions with fn.
func NewProvider(name string, fn func(*core.ActionContext) core.ActionSet) Provider {
	return &providerFunc{name: name, fn: fn}
}
