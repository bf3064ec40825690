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
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Descriptor file names, in order of preference.
var descriptorNames = []string{"integration.yaml", "integration.yml", "integration.json"}

// Config is the declarative descriptor of one integration, read from
// integration.yaml (or .yml/.json) in the integration's folder.
type Config struct {
	// Name seeds the integration id. It defaults to the folder name.
	Name        string `yaml:"name" json:"name" validate:"required"`
	DisplayName string `yaml:"displayName" json:"displayName,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
	Icon        string `yaml:"icon" json:"icon,omitempty"`
	Category    string `yaml:"category" json:"category,omitempty"`
	// ActionCreator names the registered Provider that builds the actions.
	ActionCreator string `yaml:"actionCreator" json:"actionCreator" validate:"required"`
	// ActionsFile is kept for descriptor compatibility; providers are bound
	// by ActionCreator.
	ActionsFile     string           `yaml:"actionsFile" json:"actionsFile,omitempty"`
	RequiredAPIKeys []RequiredAPIKey `yaml:"requiredApiKeys" json:"requiredApiKeys,omitempty" validate:"dive"`
}

// RequiredAPIKey declares a credential an integration needs.
type RequiredAPIKey struct {
	Key         string `yaml:"key" json:"key" validate:"required"`
	Label       string `yaml:"label" json:"label"`
	Type        string `yaml:"type" json:"type" validate:"omitempty,oneof=secret text"`
	Placeholder string `yaml:"placeholder" json:"placeholder,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
	HelpURL     string `yaml:"helpUrl" json:"helpUrl,omitempty"`
}

var validate = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// findDescriptor returns the path of the descriptor in dir, or "".
func findDescriptor(fsys fs.FS, dir string) string {
	for _, name := range descriptorNames {
		p := path.Join(dir, name)
		if fi, err := fs.Stat(fsys, p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// ReadConfig parses and validates the descriptor at p. dir is the folder
// name used when the descriptor has no name.
func ReadConfig(fsys fs.FS, p, dir string) (*Config, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if strings.HasSuffix(p, ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p, err)
	}
	if cfg.Name == "" {
		cfg.Name = dir
	}
	for i := range cfg.RequiredAPIKeys {
		if cfg.RequiredAPIKeys[i].Type == "" {
			cfg.RequiredAPIKeys[i].Type = "secret"
		}
	}
	if err := validate().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid descriptor %s: %w", p, err)
	}
	return &cfg, nil
}
