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

// Package registry scans a tree of integration folders and binds each
// descriptor to a registered Provider.
//
// The set of registered integrations is decided in one place: a folder
// counts if its descriptor parses, validates and names a registered
// provider. The credential-key index and discovery both read that set.
package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/internal/naming"
)

// Entry is one registered integration.
type Entry struct {
	ID       string // normalized from Config.Name
	Dir      string // folder in the registry's file system
	Config   *Config
	Provider Provider
}

// Registry holds the providers registered at startup and a memoized scan
// of the integration tree. It is safe for concurrent use.
type Registry struct {
	fsys fs.FS

	mu        sync.RWMutex
	providers map[string]Provider
	snap      *snapshot // nil until the first scan or after Invalidate
}

type snapshot struct {
	entries []*Entry          // sorted by ID
	byID    map[string]*Entry // id -> entry
	keys    map[string]string // credential key -> Config.Name
	configs map[string]*Config
}

// New returns a Registry reading integration folders from fsys.
func New(fsys fs.FS) *Registry {
	return &Registry{
		fsys:      fsys,
		providers: map[string]Provider{},
	}
}

// FS returns the file system the registry scans.
func (r *Registry) FS() fs.FS { return r.fsys }

// Register records providers. It panics if a provider with the same name
// is already registered.
func (r *Registry) Register(providers ...Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range providers {
		name := p.Name()
		if _, ok := r.providers[name]; ok {
			panic(fmt.Sprintf("provider %q is already registered", name))
		}
		r.providers[name] = p
		slog.Debug("RegisterProvider", "name", name)
	}
	r.snap = nil
}

// Invalidate drops the memoized scan. The next lookup rescans the tree.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = nil
}

// Entries returns the registered integrations sorted by id.
func (r *Registry) Entries(ctx context.Context) []*Entry {
	return slices.Clone(r.load(ctx).entries)
}

// Entry returns the integration with the given normalized id.
func (r *Registry) Entry(ctx context.Context, id string) (*Entry, bool) {
	e, ok := r.load(ctx).byID[id]
	return e, ok
}

// BuildAPIKeyMapping returns a map from credential key to the name of the
// integration that declares it.
func (r *Registry) BuildAPIKeyMapping(ctx context.Context) map[string]string {
	return maps.Clone(r.load(ctx).keys)
}

// IntegrationIDForAPIKey returns the name of the integration declaring key.
func (r *Registry) IntegrationIDForAPIKey(ctx context.Context, key string) (string, bool) {
	name, ok := r.load(ctx).keys[key]
	return name, ok
}

// AllConfigs returns every registered descriptor keyed by its name.
func (r *Registry) AllConfigs(ctx context.Context) map[string]*Config {
	return maps.Clone(r.load(ctx).configs)
}

func (r *Registry) load(ctx context.Context) *snapshot {
	r.mu.RLock()
	s := r.snap
	r.mu.RUnlock()
	if s != nil {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		r.snap = r.scan(ctx)
	}
	return r.snap
}

// scan must be called with r.mu held.
func (r *Registry) scan(ctx context.Context) *snapshot {
	log := logger.FromContext(ctx)
	s := &snapshot{
		byID:    map[string]*Entry{},
		keys:    map[string]string{},
		configs: map[string]*Config{},
	}
	dirs, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		log.Error("reading integrations root", "err", err)
		return s
	}
	// ReadDir sorts by name, so later folders win key collisions deterministically.
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		dir := d.Name()
		p := findDescriptor(r.fsys, dir)
		if p == "" {
			log.Debug("no descriptor, skipping folder", "dir", dir)
			continue
		}
		cfg, err := ReadConfig(r.fsys, p, dir)
		if err != nil {
			log.Error("skipping integration", "dir", dir, "err", err)
			continue
		}
		prov, ok := r.providers[cfg.ActionCreator]
		if !ok {
			log.Warn("no provider registered for integration", "dir", dir, "actionCreator", cfg.ActionCreator)
			continue
		}
		id := naming.NormalizeID(cfg.Name)
		if prev, ok := s.byID[id]; ok {
			log.Error("duplicate integration id, skipping", "id", id, "dir", dir, "previous", prev.Dir)
			continue
		}
		e := &Entry{ID: id, Dir: dir, Config: cfg, Provider: prov}
		s.byID[id] = e
		s.entries = append(s.entries, e)
		s.configs[cfg.Name] = cfg
		for _, k := range cfg.RequiredAPIKeys {
			if owner, ok := s.keys[k.Key]; ok && owner != cfg.Name {
				log.Warn("credential key declared by two integrations; the later one wins",
					"key", k.Key, "previous", owner, "integration", cfg.Name)
			}
			s.keys[k.Key] = cfg.Name
		}
	}
	slices.SortFunc(s.entries, func(a, b *Entry) int { return strings.Compare(a.ID, b.ID) })
	log.Debug("scanned integrations", "count", len(s.entries), "credentialKeys", len(s.keys))
	return s
}
