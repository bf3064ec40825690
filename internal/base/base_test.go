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

package base

import (
	"context"
	"strings"
	"testing"
)

func TestContextKey(t *testing.T) {
	k1 := NewContextKey[string]()
	k2 := NewContextKey[string]()
	ctx := k1.NewContext(context.Background(), "one")
	if got := k1.FromContext(ctx); got != "one" {
		t.Errorf("got %q, want %q", got, "one")
	}
	if got := k2.FromContext(ctx); got != "" {
		t.Errorf("distinct key leaked value %q", got)
	}
}

func TestConvertJSON(t *testing.T) {
	type target struct {
		To    string `json:"to"`
		Count int    `json:"count"`
	}
	got, err := ConvertJSON[target](map[string]any{"to": "a@b.c", "count": 2.0})
	if err != nil {
		t.Fatal(err)
	}
	if got.To != "a@b.c" || got.Count != 2 {
		t.Errorf("got %+v", got)
	}

	if _, err := ConvertJSON[target]("not an object"); err == nil {
		t.Error("got nil error converting a string to a struct")
	}
}

func TestValidateValue(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{"type": "string"},
		},
		"required": []any{"to"},
	}
	tests := []struct {
		name    string
		data    any
		wantErr string
	}{
		{"valid", map[string]any{"to": "x"}, ""},
		{"missing required", map[string]any{}, "to is required"},
		{"wrong type", map[string]any{"to": 3}, "Invalid type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateValue(tc.data, schema)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got error %v, want it to contain %q", err, tc.wantErr)
			}
		})
	}

	if err := ValidateValue(map[string]any{"anything": true}, nil); err != nil {
		t.Errorf("empty schema rejected value: %v", err)
	}
}

func TestInferJSONSchema(t *testing.T) {
	type args struct {
		Name string `json:"name" jsonschema:"description=who to greet"`
		Tags []any  `json:"tags,omitempty"`
	}
	m := SchemaAsMap(InferJSONSchema(args{}))
	if m["type"] != "object" {
		t.Fatalf("type = %v, want object", m["type"])
	}
	props, ok := m["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties missing: %v", m)
	}
	name, _ := props["name"].(map[string]any)
	if name["description"] != "who to greet" {
		t.Errorf("name.description = %v", name["description"])
	}
	tags, _ := props["tags"].(map[string]any)
	if tags["type"] != "array" {
		t.Errorf("tags.type = %v, want array", tags["type"])
	}
}
