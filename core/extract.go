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

package core

import (
	"encoding/json"
	"fmt"

	"github.com/actionhub/actionhub/internal/base"
	"github.com/jmespath/go-jmespath"
)

// PathExtractor returns a DataExtractor for [ActionOptions] that evaluates
// the JMESPath expression expr over the JSON form of the service response
// and converts the match to R. It panics if expr does not compile.
func PathExtractor[S, R any](expr string) func(S) (R, error) {
	compiled := jmespath.MustCompile(expr)
	return func(resp S) (R, error) {
		b, err := json.Marshal(resp)
		if err != nil {
			return base.Zero[R](), fmt.Errorf("response is not JSON: %w", err)
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			return base.Zero[R](), err
		}
		v, err := compiled.Search(doc)
		if err != nil {
			return base.Zero[R](), fmt.Errorf("evaluating %q: %w", expr, err)
		}
		return base.ConvertJSON[R](v)
	}
}
