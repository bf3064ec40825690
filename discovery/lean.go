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

package discovery

import "context"

// DefaultLeanFields are the fields IntegrationsLean returns when none are given.
var DefaultLeanFields = []string{"id", "name", "displayName", "description", "icon", "actions"}

// IntegrationsLean returns each integration projected onto fields.
// Actions are trimmed to id, title and description. Unknown fields are ignored.
func (s *Service) IntegrationsLean(ctx context.Context, lang string, fields ...string) []map[string]any {
	if len(fields) == 0 {
		fields = DefaultLeanFields
	}
	integrations := s.Integrations(ctx, lang)
	out := make([]map[string]any, 0, len(integrations))
	for _, in := range integrations {
		out = append(out, project(in, fields))
	}
	return out
}

func project(in *Integration, fields []string) map[string]any {
	m := map[string]any{}
	for _, f := range fields {
		switch f {
		case "id":
			m[f] = in.ID
		case "name":
			m[f] = in.Name
		case "displayName":
			m[f] = in.DisplayName
		case "description":
			m[f] = in.Description
		case "icon":
			m[f] = in.Icon
		case "category":
			m[f] = in.Category
		case "requiredApiKeys":
			m[f] = in.RequiredAPIKeys
		case "actions":
			actions := make([]map[string]any, 0, len(in.Actions))
			for _, a := range in.Actions {
				actions = append(actions, map[string]any{
					"id":          a.ID,
					"title":       a.ActionTitle,
					"description": a.Description,
				})
			}
			m[f] = actions
		}
	}
	return m
}
