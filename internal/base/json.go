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
	"encoding/json"
	"fmt"
	"log"
	"reflect"

	"github.com/invopop/jsonschema"
)

// JSONString returns json.Marshal(x) as a string. If json.Marshal returns
// an error, JSONString returns the error text as a JSON string beginning "ERROR:".
func JSONString(x any) string {
	bytes, err := json.Marshal(x)
	if err != nil {
		bytes, _ = json.Marshal(fmt.Sprintf("ERROR: %v", err))
	}
	return string(bytes)
}

// PrettyJSONString is like JSONString but indented.
func PrettyJSONString(x any) string {
	bytes, err := json.MarshalIndent(x, "", "  ")
	if err != nil {
		bytes, _ = json.MarshalIndent(fmt.Sprintf("ERROR: %v", err), "", "  ")
	}
	return string(bytes)
}

// ConvertJSON converts v to T by round-tripping it through JSON.
func ConvertJSON[T any](v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	var out T
	bytes, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("value is not a valid JSON type: %w", err)
	}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return out, fmt.Errorf("cannot convert %T to %T: %w", v, out, err)
	}
	return out, nil
}

// InferJSONSchema reflects a JSON schema from the type of x.
func InferJSONSchema(x any) (s *jsonschema.Schema) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			// []any generates `{ type: "array", items: true }` which is not valid JSON schema.
			if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Interface {
				return &jsonschema.Schema{
					Type: "array",
					Items: &jsonschema.Schema{
						AdditionalProperties: jsonschema.TrueSchema,
					},
				}
			}
			return nil
		},
	}
	s = r.Reflect(x)
	s.Version = ""
	return s
}

// SchemaAsMap converts a schema struct to its JSON object form.
func SchemaAsMap(s *jsonschema.Schema) map[string]any {
	jsb, err := s.MarshalJSON()
	if err != nil {
		log.Panicf("failed to marshal schema: %v", err)
	}
	// "true" is the empty schema.
	if string(jsb) == "true" {
		return make(map[string]any)
	}
	var m map[string]any
	if err := json.Unmarshal(jsb, &m); err != nil {
		log.Panicf("failed to unmarshal schema: %v", err)
	}
	return m
}
