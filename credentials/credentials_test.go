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

package credentials

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.Set("acme", "sendgrid_api_key", "SG.x")
	ctx := context.Background()
	v, ok, err := s.APIKey(ctx, "acme", "sendgrid_api_key")
	if err != nil || !ok || v != "SG.x" {
		t.Errorf("got %q, %v, %v", v, ok, err)
	}
	if _, ok, _ := s.APIKey(ctx, "other", "sendgrid_api_key"); ok {
		t.Error("key leaked across companies")
	}
}

func TestEnvStore(t *testing.T) {
	env := map[string]string{
		"GATEWAY_KEY_SENDGRID_API_KEY":      "global",
		"GATEWAY_KEY_ACME_SENDGRID_API_KEY": "acme-only",
		"GATEWAY_KEY_JSONBIN_API_KEY":       "",
	}
	s := EnvStore{
		Prefix: "GATEWAY_KEY_",
		Lookup: func(k string) (string, bool) { v, ok := env[k]; return v, ok },
	}
	ctx := context.Background()
	tests := []struct {
		company, key string
		want         string
		wantOK       bool
	}{
		{"acme", "sendgrid_api_key", "acme-only", true},
		{"globex", "sendgrid_api_key", "global", true},
		{"", "sendgrid_api_key", "global", true},
		{"acme", "jsonbin_api_key", "", false},
		{"acme", "missing", "", false},
	}
	for _, tc := range tests {
		got, ok, err := s.APIKey(ctx, tc.company, tc.key)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("%s/%s: got %q, %v, want %q, %v", tc.company, tc.key, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestEnvStoreDefaultLookup(t *testing.T) {
	t.Setenv("TESTPFX_MY_KEY", "v")
	v, ok, _ := EnvStore{Prefix: "TESTPFX_"}.APIKey(context.Background(), "", "my-key")
	if !ok || v != "v" {
		t.Errorf("got %q, %v", v, ok)
	}
}
