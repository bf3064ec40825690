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

import (
	"context"
	"encoding/json"
	"io/fs"
	"path"
	"strings"

	"github.com/actionhub/actionhub/core/logger"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// translation is one locale table of an integration, read from
// {folder}/locales/{lang}.yaml (or .yml/.json).
type translation struct {
	ServiceName string                       `yaml:"serviceName" json:"serviceName"`
	DisplayName string                       `yaml:"displayName" json:"displayName"`
	Description string                       `yaml:"description" json:"description"`
	Actions     map[string]actionTranslation `yaml:"actions" json:"actions"`
}

type actionTranslation struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

func (t *translation) action(key string) actionTranslation {
	if t == nil {
		return actionTranslation{}
	}
	return t.Actions[key]
}

// pick returns the first non-empty string.
func pick(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadTranslation returns the locale table of dir that best matches lang,
// or nil. Missing or broken tables are logged and never fail discovery.
func loadTranslation(ctx context.Context, fsys fs.FS, dir, lang string) *translation {
	if lang == "" {
		return nil
	}
	log := logger.FromContext(ctx)
	want, err := language.Parse(lang)
	if err != nil {
		log.Debug("unparseable language", "lang", lang, "err", err)
		return nil
	}
	files, _ := fs.Glob(fsys, path.Join(dir, "locales", "*"))
	var (
		tags  []language.Tag
		paths []string
	)
	for _, f := range files {
		base := path.Base(f)
		ext := path.Ext(base)
		switch ext {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(base, ext))
		if err != nil {
			log.Debug("ignoring locale file", "file", f, "err", err)
			continue
		}
		tags = append(tags, tag)
		paths = append(paths, f)
	}
	if len(tags) == 0 {
		return nil
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return nil
	}
	p := paths[idx]
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		log.Warn("reading locale table", "file", p, "err", err)
		return nil
	}
	var t translation
	if path.Ext(p) == ".json" {
		err = json.Unmarshal(data, &t)
	} else {
		err = yaml.Unmarshal(data, &t)
	}
	if err != nil {
		log.Warn("parsing locale table", "file", p, "err", err)
		return nil
	}
	return &t
}
