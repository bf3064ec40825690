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

// Package credentials looks up the API keys integrations use to call
// their services.
package credentials

import (
	"context"
	"os"
	"strings"
	"sync"
)

// Store returns the value of a credential key for a company.
// ok is false when the company has no value for key.
type Store interface {
	APIKey(ctx context.Context, companyID, key string) (value string, ok bool, err error)
}

// MemoryStore keeps credentials in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]map[string]string // company -> key -> value
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: map[string]map[string]string{}}
}

// Set records value for key under companyID.
func (s *MemoryStore) Set(companyID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.keys[companyID]
	if m == nil {
		m = map[string]string{}
		s.keys[companyID] = m
	}
	m[key] = value
}

func (s *MemoryStore) APIKey(_ context.Context, companyID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.keys[companyID][key]
	return v, ok, nil
}

// EnvStore reads credentials from environment variables. For company
// "acme" and key "sendgrid_api_key" with prefix "GATEWAY_KEY_" it tries
// GATEWAY_KEY_ACME_SENDGRID_API_KEY, then GATEWAY_KEY_SENDGRID_API_KEY.
type EnvStore struct {
	Prefix string
	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

func (s EnvStore) APIKey(_ context.Context, companyID, key string) (string, bool, error) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var names []string
	if companyID != "" {
		names = append(names, envName(s.Prefix, companyID+"_"+key))
	}
	names = append(names, envName(s.Prefix, key))
	for _, name := range names {
		if v, ok := lookup(name); ok && v != "" {
			return v, true, nil
		}
	}
	return "", false, nil
}

func envName(prefix, s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z':
			return r - 'a' + 'A'
		case 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			return r
		}
		return '_'
	}, s)
	return prefix + s
}
