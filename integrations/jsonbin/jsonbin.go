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

// Package jsonbin stores JSON documents in JSONBin.io bins.
package jsonbin

import (
	"context"
	"time"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/credentials"
	"github.com/actionhub/actionhub/integrations/upstream"
	"github.com/actionhub/actionhub/registry"
	"github.com/go-resty/resty/v2"
	"github.com/yosida95/uritemplate/v3"
)

const (
	// ProviderName is the actionCreator the JSONBin descriptor names.
	ProviderName = "createJSONBinActions"
	// CredentialKey is the credential holding the JSONBin master key.
	CredentialKey = "jsonbin_api_key"

	serviceName    = "JSONBin"
	defaultBaseURL = "https://api.jsonbin.io"
)

var (
	binsPath   = uritemplate.MustNew("/v3/b")
	binPath    = uritemplate.MustNew("/v3/b/{binId}")
	binVersion = uritemplate.MustNew("/v3/b/{binId}/{version}")
)

// Options configures the JSONBin provider.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials credentials.Store
}

type provider struct {
	opts   Options
	client *resty.Client
}

// New returns the JSONBin provider.
func New(opts Options) registry.Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	return &provider{opts: opts, client: upstream.NewClient(opts.BaseURL, opts.Timeout)}
}

func (p *provider) Name() string { return ProviderName }

// CreateBinInput is the argument object of createBin.
type CreateBinInput struct {
	Name    string         `json:"name,omitempty" jsonschema:"description=Bin name shown in the dashboard"`
	Private *bool          `json:"private,omitempty" jsonschema:"description=Whether the bin needs the key to be read"`
	Record  map[string]any `json:"record" jsonschema:"description=JSON document to store"`
}

// ReadBinInput is the argument object of readBin.
type ReadBinInput struct {
	BinID   string `json:"binId"`
	Version string `json:"version,omitempty" jsonschema:"description=Version number or latest"`
}

// UpdateBinInput is the argument object of updateBin.
type UpdateBinInput struct {
	BinID  string         `json:"binId"`
	Record map[string]any `json:"record"`
}

// Bin is a stored document with its id.
type Bin struct {
	ID     string         `json:"id"`
	Record map[string]any `json:"record"`
}

// binResponse is the body JSONBin returns for every bin operation.
type binResponse struct {
	Record   map[string]any `json:"record"`
	Metadata struct {
		ID        string `json:"id"`
		ParentID  string `json:"parentId"`
		Private   bool   `json:"private"`
		CreatedAt string `json:"createdAt"`
	} `json:"metadata"`
}

func (p *provider) Actions(*core.ActionContext) core.ActionSet {
	create := core.DefineFunction("Create a JSONBin bin holding a JSON document",
		func(ctx context.Context, in CreateBinInput) (core.ActionResult[Bin], error) {
			return core.ExecuteAction(ctx, "createBin",
				func(ctx context.Context) (*binResponse, error) { return p.createBin(ctx, in) },
				core.ActionOptions[*binResponse, Bin]{
					ServiceName:    serviceName,
					DataExtractor:  core.PathExtractor[*binResponse, Bin]("{id: metadata.id, record: record}"),
					SuccessMessage: "Bin created",
				}), nil
		})
	read := core.DefineFunction("Read the JSON document stored in a JSONBin bin",
		func(ctx context.Context, in ReadBinInput) (core.ActionResult[map[string]any], error) {
			return core.ExecuteAction(ctx, "readBin",
				func(ctx context.Context) (*binResponse, error) { return p.readBin(ctx, in) },
				core.ActionOptions[*binResponse, map[string]any]{
					ServiceName:   serviceName,
					DataExtractor: core.PathExtractor[*binResponse, map[string]any]("record"),
				}), nil
		})
	update := core.DefineFunction("Replace the JSON document stored in a JSONBin bin",
		func(ctx context.Context, in UpdateBinInput) (core.ActionResult[Bin], error) {
			return core.ExecuteAction(ctx, "updateBin",
				func(ctx context.Context) (*binResponse, error) { return p.updateBin(ctx, in) },
				core.ActionOptions[*binResponse, Bin]{
					ServiceName: serviceName,
					DataExtractor: func(r *binResponse) (Bin, error) {
						return Bin{ID: in.BinID, Record: r.Record}, nil
					},
					SuccessMessage: "Bin updated",
				}), nil
		})
	return core.ActionSet{
		"createBin": create,
		"readBin":   read,
		"updateBin": update,
	}
}

func (p *provider) request(ctx context.Context) (*resty.Request, error) {
	key, err := upstream.APIKey(ctx, p.opts.Credentials, serviceName, CredentialKey)
	if err != nil {
		return nil, err
	}
	return p.client.R().
		SetContext(ctx).
		SetHeader("X-Master-Key", key).
		SetResult(&binResponse{}), nil
}

func (p *provider) createBin(ctx context.Context, in CreateBinInput) (*binResponse, error) {
	if in.Record == nil {
		return nil, core.NewValidationError("record is required", map[string]string{"record": "required"})
	}
	req, err := p.request(ctx)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		req.SetHeader("X-Bin-Name", in.Name)
	}
	if in.Private != nil {
		req.SetHeader("X-Bin-Private", boolString(*in.Private))
	}
	u, err := binsPath.Expand(uritemplate.Values{})
	if err != nil {
		return nil, err
	}
	resp, err := req.SetBody(in.Record).Post(u)
	if err := upstream.Error(serviceName, resp, err); err != nil {
		return nil, err
	}
	return resp.Result().(*binResponse), nil
}

func (p *provider) readBin(ctx context.Context, in ReadBinInput) (*binResponse, error) {
	if in.BinID == "" {
		return nil, core.NewValidationError("binId is required", map[string]string{"binId": "required"})
	}
	req, err := p.request(ctx)
	if err != nil {
		return nil, err
	}
	version := in.Version
	if version == "" {
		version = "latest"
	}
	vals := uritemplate.Values{}
	vals.Set("binId", uritemplate.String(in.BinID))
	vals.Set("version", uritemplate.String(version))
	u, err := binVersion.Expand(vals)
	if err != nil {
		return nil, err
	}
	resp, err := req.Get(u)
	if err := upstream.Error(serviceName, resp, err); err != nil {
		return nil, err
	}
	return resp.Result().(*binResponse), nil
}

func (p *provider) updateBin(ctx context.Context, in UpdateBinInput) (*binResponse, error) {
	fields := map[string]string{}
	if in.BinID == "" {
		fields["binId"] = "required"
	}
	if in.Record == nil {
		fields["record"] = "required"
	}
	if len(fields) > 0 {
		return nil, core.NewValidationError("binId and record are required", fields)
	}
	req, err := p.request(ctx)
	if err != nil {
		return nil, err
	}
	vals := uritemplate.Values{}
	vals.Set("binId", uritemplate.String(in.BinID))
	u, err := binPath.Expand(vals)
	if err != nil {
		return nil, err
	}
	resp, err := req.SetBody(in.Record).Put(u)
	if err := upstream.Error(serviceName, resp, err); err != nil {
		return nil, err
	}
	return resp.Result().(*binResponse), nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
