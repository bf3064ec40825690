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

package dispatch

import (
	"context"
	"maps"
	"slices"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/discovery"
	"github.com/actionhub/actionhub/internal/naming"
)

// Factory builds the callable functions a caller is allowed to invoke.
type Factory struct {
	disc *discovery.Service
}

// NewFactory returns a Factory over the catalog of d.
func NewFactory(d *discovery.Service) *Factory {
	return &Factory{disc: d}
}

// Create returns the functions whose action ids appear in allowedIDs,
// keyed by their sanitized names. Ids are matched exactly, before
// sanitization. Ids that name no registered action are left out.
// Each integration's provider is invoked once, with actx.
func (f *Factory) Create(ctx context.Context, actx *core.ActionContext, allowedIDs []string) map[string]*core.FunctionDefinition {
	log := logger.FromContext(ctx)
	out := map[string]*core.FunctionDefinition{}
	if len(allowedIDs) == 0 {
		return out
	}
	allowed := make(map[string]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = true
	}
	lang := ""
	if actx != nil {
		lang = actx.Language
	}
	byService := map[string][]*discovery.ActionInfo{}
	for _, a := range f.disc.Actions(ctx, lang) {
		if allowed[a.ID] {
			byService[a.Service] = append(byService[a.Service], a)
		}
	}
	for _, svc := range slices.Sorted(maps.Keys(byService)) {
		set, err := f.disc.Build(ctx, svc, actx)
		if err != nil {
			log.Error("building actions", "integration", svc, "err", err)
			continue
		}
		for _, a := range byService[svc] {
			fd := set[a.Key()]
			if fd == nil || fd.Fn == nil {
				log.Warn("action missing from provider output", "id", a.ID)
				continue
			}
			name := naming.SanitizeFunctionName(a.ID)
			if _, ok := out[name]; ok {
				log.Error("sanitized function name collision", "name", name, "id", a.ID)
				continue
			}
			out[name] = fd
		}
	}
	return out
}
