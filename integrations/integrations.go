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

// Package integrations bundles the integrations built into the gateway.
package integrations

import (
	"embed"
	"io/fs"
	"time"

	"github.com/actionhub/actionhub/credentials"
	"github.com/actionhub/actionhub/integrations/jsonbin"
	"github.com/actionhub/actionhub/integrations/sendgrid"
	"github.com/actionhub/actionhub/registry"
)

//go:embed */integration.yaml */locales/*.yaml
var descriptors embed.FS

// FS is the integrations tree of the built-in integrations: one folder
// per integration holding its descriptor and locale tables.
var FS fs.FS = descriptors

// Deps are the collaborators the built-in integrations need.
type Deps struct {
	Credentials     credentials.Store
	Timeout         time.Duration
	SendGridBaseURL string
	JSONBinBaseURL  string
}

// Register registers the providers of every built-in integration with reg.
func Register(reg *registry.Registry, deps Deps) {
	reg.Register(
		sendgrid.New(sendgrid.Options{
			BaseURL:     deps.SendGridBaseURL,
			Timeout:     deps.Timeout,
			Credentials: deps.Credentials,
		}),
		jsonbin.New(jsonbin.Options{
			BaseURL:     deps.JSONBinBaseURL,
			Timeout:     deps.Timeout,
			Credentials: deps.Credentials,
		}),
	)
}
