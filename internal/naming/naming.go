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

// Package naming derives the identifiers the gateway uses for integrations
// and their callable functions.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transliterate folds accented Latin letters to their unaccented form,
// e.g. "Café Señor" becomes "Cafe Senor". Other characters are unchanged.
func Transliterate(s string) string {
	// Transformers carry state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeFunctionName turns an action id such as "send_grid.sendEmail" into
// a name that tool-calling protocols accept ("send_grid_sendEmail").
// Every run of characters outside [A-Za-z0-9] becomes a single underscore
// and leading and trailing underscores are dropped. The mapping is
// deterministic and idempotent but not injective.
func SanitizeFunctionName(name string) string {
	name = Transliterate(name)
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isASCIIAlnum(c) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteByte(c)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// NormalizeID converts an integration name into its canonical snake_case id:
// "SendGrid" → "send_grid", "JSONBin" → "json_bin", "Fly.io" → "fly_io".
// NormalizeID(NormalizeID(s)) == NormalizeID(s) for every s.
func NormalizeID(name string) string {
	words := splitWords(Transliterate(name))
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// Humanize renders an action key as a title: "sendEmail" → "Send Email".
func Humanize(key string) string {
	words := splitWords(key)
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// splitWords splits s at separators and case changes. An uppercase run
// followed by a lowercase letter ends one word before the last capital,
// so "JSONBin" yields "JSON" and "Bin".
func splitWords(s string) []string {
	var (
		words []string
		cur   []byte
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isASCIIAlnum(c) {
			flush()
			continue
		}
		if len(cur) > 0 && isUpper(c) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(s) && isLower(s[i+1])
			if isLower(prev) || isDigit(prev) || (isUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, c)
	}
	flush()
	return words
}

func isASCIIAlnum(c byte) bool { return isLower(c) || isUpper(c) || isDigit(c) }
func isLower(c byte) bool      { return 'a' <= c && c <= 'z' }
func isUpper(c byte) bool      { return 'A' <= c && c <= 'Z' }
func isDigit(c byte) bool      { return '0' <= c && c <= '9' }
