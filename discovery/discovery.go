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

// Package discovery builds the localized catalog of integrations and
// actions from a [registry.Registry].
package discovery

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/internal/naming"
	"github.com/actionhub/actionhub/registry"
)

// Integration is the resolved, localized view of a registered integration.
// ID depends only on the descriptor name, never on the language.
type Integration struct {
	ID              string                    `json:"id"`
	Name            string                    `json:"name"`
	DisplayName     string                    `json:"displayName"`
	Description     string                    `json:"description"`
	Icon            string                    `json:"icon,omitempty"`
	Category        string                    `json:"category,omitempty"`
	Actions         []*ActionInfo             `json:"actions"`
	RequiredAPIKeys []registry.RequiredAPIKey `json:"requiredApiKeys"`
}

// ActionInfo describes one callable action. ID is "{Service}.{key}".
type ActionInfo struct {
	ID          string         `json:"id"`
	ServiceName string         `json:"serviceName"`
	ActionTitle string         `json:"actionTitle"`
	Description string         `json:"description"`
	Icon        string         `json:"icon,omitempty"`
	Service     string         `json:"service"`
	Parameters  map[string]any `json:"parameters"`
}

// Key returns the action key within its integration.
func (a *ActionInfo) Key() string {
	return strings.TrimPrefix(a.ID, a.Service+".")
}

// ActionID joins an integration id and an action key.
func ActionID(integrationID, key string) string {
	return integrationID + "." + key
}

// Service builds catalogs on demand. Every call re-invokes the providers
// with an empty ActionContext, so the catalog always reflects the registry.
type Service struct {
	reg         *registry.Registry
	defaultLang string
	reload      atomic.Bool
}

// New returns a Service over reg. defaultLang is used when a call passes
// no language.
func New(reg *registry.Registry, defaultLang string) *Service {
	return &Service{reg: reg, defaultLang: defaultLang}
}

// SetReload controls whether every catalog lookup first drops the
// registry's memoized scan, so descriptors added or edited on disk are
// picked up without a restart.
func (s *Service) SetReload(on bool) { s.reload.Store(on) }

func (s *Service) refresh() {
	if s.reload.Load() {
		s.reg.Invalidate()
	}
}

// Registry returns the registry the Service reads.
func (s *Service) Registry() *registry.Registry { return s.reg }

// Integrations returns every integration that builds successfully, sorted
// by id. An integration whose provider panics is logged and omitted.
func (s *Service) Integrations(ctx context.Context, lang string) []*Integration {
	s.refresh()
	lang = s.language(lang)
	out := []*Integration{}
	for _, e := range s.reg.Entries(ctx) {
		in, err := s.integration(ctx, e, lang)
		if err != nil {
			logger.FromContext(ctx).Error("omitting integration from catalog", "id", e.ID, "err", err)
			continue
		}
		out = append(out, in)
	}
	return out
}

// Actions returns the flattened actions of every integration.
// A duplicate action id is a configuration error; the first one wins.
func (s *Service) Actions(ctx context.Context, lang string) []*ActionInfo {
	out := []*ActionInfo{}
	seen := map[string]bool{}
	for _, in := range s.Integrations(ctx, lang) {
		for _, a := range in.Actions {
			if seen[a.ID] {
				logger.FromContext(ctx).Error("duplicate action id", "id", a.ID)
				continue
			}
			seen[a.ID] = true
			out = append(out, a)
		}
	}
	return out
}

// IntegrationByID returns the integration with the given id.
func (s *Service) IntegrationByID(ctx context.Context, id, lang string) (*Integration, bool) {
	s.refresh()
	e, ok := s.reg.Entry(ctx, id)
	if !ok {
		return nil, false
	}
	in, err := s.integration(ctx, e, s.language(lang))
	if err != nil {
		logger.FromContext(ctx).Error("building integration", "id", id, "err", err)
		return nil, false
	}
	return in, true
}

// ActionByID returns the action with the given "{integration}.{key}" id.
func (s *Service) ActionByID(ctx context.Context, id, lang string) (*ActionInfo, bool) {
	integrationID, _, ok := strings.Cut(id, ".")
	if !ok {
		return nil, false
	}
	in, ok := s.IntegrationByID(ctx, integrationID, lang)
	if !ok {
		return nil, false
	}
	for _, a := range in.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Build invokes the provider of integration id with actx and returns its
// actions. A panicking provider is reported as an error.
func (s *Service) Build(ctx context.Context, id string, actx *core.ActionContext) (core.ActionSet, error) {
	e, ok := s.reg.Entry(ctx, id)
	if !ok {
		return nil, fmt.Errorf("integration %q is not registered", id)
	}
	return buildActions(e, actx)
}

func buildActions(e *registry.Entry, actx *core.ActionContext) (set core.ActionSet, err error) {
	defer func() {
		if p := recover(); p != nil {
			set, err = nil, fmt.Errorf("provider %s panicked: %v", e.Provider.Name(), p)
		}
	}()
	return e.Provider.Actions(actx), nil
}

func (s *Service) language(lang string) string {
	if lang == "" {
		return s.defaultLang
	}
	return lang
}

func (s *Service) integration(ctx context.Context, e *registry.Entry, lang string) (*Integration, error) {
	set, err := buildActions(e, &core.ActionContext{})
	if err != nil {
		return nil, err
	}
	cfg := e.Config
	tr := loadTranslation(ctx, s.reg.FS(), e.Dir, lang)
	if tr == nil {
		tr = &translation{}
	}
	in := &Integration{
		ID:              e.ID,
		Name:            cfg.Name,
		DisplayName:     pick(tr.DisplayName, cfg.DisplayName, cfg.Name),
		Description:     pick(tr.Description, cfg.Description),
		Icon:            cfg.Icon,
		Category:        cfg.Category,
		Actions:         []*ActionInfo{},
		RequiredAPIKeys: cfg.RequiredAPIKeys,
	}
	if in.RequiredAPIKeys == nil {
		in.RequiredAPIKeys = []registry.RequiredAPIKey{}
	}
	serviceName := pick(tr.ServiceName, in.DisplayName)
	for _, key := range slices.Sorted(maps.Keys(set)) {
		fd := set[key]
		if fd == nil || fd.Description == "" {
			logger.FromContext(ctx).Debug("skipping action without description", "integration", e.ID, "key", key)
			continue
		}
		at := tr.action(key)
		params := fd.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		in.Actions = append(in.Actions, &ActionInfo{
			ID:          ActionID(e.ID, key),
			ServiceName: serviceName,
			ActionTitle: pick(at.Title, fd.Title, naming.Humanize(key)),
			Description: pick(at.Description, fd.Description),
			Icon:        cfg.Icon,
			Service:     e.ID,
			Parameters:  params,
		})
	}
	return in, nil
}
