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

package integrations

import (
	"context"
	"testing"

	"github.com/actionhub/actionhub/discovery"
	"github.com/actionhub/actionhub/registry"
	"github.com/google/go-cmp/cmp"
)

func newTestRegistry() *registry.Registry {
	reg := registry.New(FS)
	Register(reg, Deps{})
	return reg
}

func TestBuiltinCatalog(t *testing.T) {
	d := discovery.New(newTestRegistry(), "en")
	var ids []string
	for _, a := range d.Actions(context.Background(), "") {
		ids = append(ids, a.ID)
	}
	want := []string{
		"json_bin.createBin",
		"json_bin.readBin",
		"json_bin.updateBin",
		"send_grid.sendEmail",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinCredentialKeys(t *testing.T) {
	reg := newTestRegistry()
	want := map[string]string{
		"sendgrid_api_key": "SendGrid",
		"jsonbin_api_key":  "JSONBin",
	}
	if diff := cmp.Diff(want, reg.BuildAPIKeyMapping(context.Background())); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinTranslations(t *testing.T) {
	d := discovery.New(newTestRegistry(), "en")
	for _, in := range d.Integrations(context.Background(), "es") {
		for _, a := range in.Actions {
			if a.Description == "" || a.ActionTitle == "" {
				t.Errorf("%s: missing translated strings", a.ID)
			}
		}
	}
	a, ok := d.ActionByID(context.Background(), "send_grid.sendEmail", "es")
	if !ok {
		t.Fatal("send_grid.sendEmail not found")
	}
	if a.ActionTitle != "Enviar correo" {
		t.Errorf("got title %q", a.ActionTitle)
	}
}
