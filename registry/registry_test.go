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

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/actionhub/actionhub/core"
	"github.com/google/go-cmp/cmp"
)

func testProvider(name string) Provider {
	return NewProvider(name, func(*core.ActionContext) core.ActionSet {
		return core.ActionSet{"noop": {Description: "does nothing"}}
	})
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"sendgrid/integration.yaml": {Data: []byte(`
name: SendGrid
displayName: SendGrid
actionCreator: createSendGridActions
requiredApiKeys:
  - key: sendgrid_api_key
    label: API key
    type: secret
`)},
		"jsonbin/integration.json": {Data: []byte(`{
  "name": "JSONBin",
  "actionCreator": "createJSONBinActions",
  "requiredApiKeys": [{"key": "jsonbin_api_key", "label": "Master key"}]
}`)},
		"broken/integration.yaml":   {Data: []byte("name: [unterminated")},
		"invalid/integration.yaml":  {Data: []byte("name: Invalid\n")}, // no actionCreator
		"unbound/integration.yaml":  {Data: []byte("name: Unbound\nactionCreator: createNothing\n")},
		"no-descriptor/README.md":   {Data: []byte("hello")},
		"badkey/integration.yaml":   {Data: []byte("name: BadKey\nactionCreator: createSendGridActions2\nrequiredApiKeys:\n  - key: k\n    type: password\n")},
		"stray.yaml":                {Data: []byte("name: Stray")},
	}
}

func newTestRegistry() *Registry {
	r := New(testFS())
	r.Register(
		testProvider("createSendGridActions"),
		testProvider("createJSONBinActions"),
		testProvider("createSendGridActions2"),
	)
	return r
}

func TestEntries(t *testing.T) {
	r := newTestRegistry()
	var got []string
	for _, e := range r.Entries(context.Background()) {
		got = append(got, e.ID)
	}
	want := []string{"json_bin", "send_grid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestIntegrationIDForAPIKey(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	got, ok := r.IntegrationIDForAPIKey(ctx, "sendgrid_api_key")
	if !ok || got != "SendGrid" {
		t.Errorf("got %q, %v, want SendGrid", got, ok)
	}
	if _, ok := r.IntegrationIDForAPIKey(ctx, "nope"); ok {
		t.Error("unknown key resolved")
	}
	want := map[string]string{
		"sendgrid_api_key": "SendGrid",
		"jsonbin_api_key":  "JSONBin",
	}
	if diff := cmp.Diff(want, r.BuildAPIKeyMapping(ctx)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAllConfigs(t *testing.T) {
	r := newTestRegistry()
	cfgs := r.AllConfigs(context.Background())
	if len(cfgs) != 2 {
		t.Fatalf("got %d configs, want 2", len(cfgs))
	}
	if got := cfgs["JSONBin"].RequiredAPIKeys[0].Type; got != "secret" {
		t.Errorf("default key type: got %q, want secret", got)
	}
}

func TestInvalidate(t *testing.T) {
	fsys := testFS()
	r := New(fsys)
	r.Register(testProvider("createSendGridActions"), testProvider("createJSONBinActions"))
	ctx := context.Background()
	if n := len(r.Entries(ctx)); n != 2 {
		t.Fatalf("got %d entries, want 2", n)
	}
	fsys["maps/integration.yaml"] = &fstest.MapFile{Data: []byte("name: Google Maps\nactionCreator: createJSONBinActions\n")}
	if n := len(r.Entries(ctx)); n != 2 {
		t.Errorf("cached scan changed: got %d entries", n)
	}
	r.Invalidate()
	if _, ok := r.Entry(ctx, "google_maps"); !ok {
		t.Error("rescan did not pick up google_maps")
	}
}

func TestCredentialKeyCollision(t *testing.T) {
	fsys := fstest.MapFS{
		"a/integration.yaml": {Data: []byte("name: Alpha\nactionCreator: p\nrequiredApiKeys:\n  - key: shared\n")},
		"b/integration.yaml": {Data: []byte("name: Beta\nactionCreator: p\nrequiredApiKeys:\n  - key: shared\n")},
	}
	r := New(fsys)
	r.Register(testProvider("p"))
	got, _ := r.IntegrationIDForAPIKey(context.Background(), "shared")
	if got != "Beta" {
		t.Errorf("got %q, want the later folder Beta", got)
	}
}

func TestDuplicateIDSkipped(t *testing.T) {
	fsys := fstest.MapFS{
		"a/integration.yaml": {Data: []byte("name: SendGrid\nactionCreator: p\n")},
		"b/integration.yaml": {Data: []byte("name: send_grid\nactionCreator: p\n")},
	}
	r := New(fsys)
	r.Register(testProvider("p"))
	entries := r.Entries(context.Background())
	if len(entries) != 1 || entries[0].Dir != "a" {
		t.Errorf("got %v, want only folder a", entries)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic on duplicate provider")
		}
	}()
	r := New(fstest.MapFS{})
	r.Register(testProvider("p"), testProvider("p"))
}

func TestDefaultNameFromFolder(t *testing.T) {
	fsys := fstest.MapFS{
		"Fly/integration.yaml": {Data: []byte("actionCreator: p\n")},
	}
	r := New(fsys)
	r.Register(testProvider("p"))
	if _, ok := r.Entry(context.Background(), "fly"); !ok {
		t.Error("folder name not used as integration name")
	}
}
