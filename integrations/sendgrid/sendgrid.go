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

// Package sendgrid sends transactional email through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"net/mail"
	"time"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/credentials"
	"github.com/actionhub/actionhub/integrations/upstream"
	"github.com/actionhub/actionhub/registry"
	"github.com/go-resty/resty/v2"
)

const (
	// ProviderName is the actionCreator the SendGrid descriptor names.
	ProviderName = "createSendGridActions"
	// CredentialKey is the credential holding the SendGrid API key.
	CredentialKey = "sendgrid_api_key"

	serviceName    = "SendGrid"
	defaultBaseURL = "https://api.sendgrid.com"
)

// Options configures the SendGrid provider.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials credentials.Store
}

type provider struct {
	opts   Options
	client *resty.Client
}

// New returns the SendGrid provider.
func New(opts Options) registry.Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	return &provider{opts: opts, client: upstream.NewClient(opts.BaseURL, opts.Timeout)}
}

func (p *provider) Name() string { return ProviderName }

// SendEmailInput is the argument object of sendEmail.
type SendEmailInput struct {
	To      string   `json:"to" jsonschema:"description=Recipient email address"`
	Cc      []string `json:"cc,omitempty" jsonschema:"description=Carbon copy recipients"`
	From    string   `json:"from" jsonschema:"description=Verified sender address"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty" jsonschema:"description=Plain text body"`
	HTML    string   `json:"html,omitempty" jsonschema:"description=HTML body"`
}

// SendEmailOutput is the data of a successful sendEmail.
type SendEmailOutput struct {
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status"`
}

func (p *provider) Actions(*core.ActionContext) core.ActionSet {
	send := core.DefineFunction("Send a transactional email through SendGrid",
		func(ctx context.Context, in SendEmailInput) (core.ActionResult[SendEmailOutput], error) {
			return core.ExecuteAction(ctx, "sendEmail",
				func(ctx context.Context) (core.ServiceResponse[SendEmailOutput], error) {
					return p.sendEmail(ctx, in)
				},
				core.ActionOptions[core.ServiceResponse[SendEmailOutput], SendEmailOutput]{
					ServiceName:    serviceName,
					SuccessMessage: "Email sent",
				}), nil
		})
	send.Title = "Send Email"
	send.Strict = true
	return core.ActionSet{"sendEmail": send}
}

// envelope holds the parsed addresses of a SendEmailInput.
type envelope struct {
	to   address
	cc   []address
	from address
}

func parseAddress(s string) (address, bool) {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return address{}, false
	}
	return address{Email: a.Address, Name: a.Name}, true
}

// validateEmail checks in and returns its addresses in the form SendGrid
// expects: "Ana <ana@example.com>" is sent as the bare address plus a name.
func validateEmail(in SendEmailInput) (envelope, error) {
	var env envelope
	fields := map[string]string{}
	var ok bool
	if env.to, ok = parseAddress(in.To); !ok {
		fields["to"] = "must be a valid email address"
	}
	if env.from, ok = parseAddress(in.From); !ok {
		fields["from"] = "must be a valid email address"
	}
	for _, cc := range in.Cc {
		a, ok := parseAddress(cc)
		if !ok {
			fields["cc"] = "must contain valid email addresses"
			continue
		}
		env.cc = append(env.cc, a)
	}
	if in.Subject == "" {
		fields["subject"] = "is required"
	}
	if in.Text == "" && in.HTML == "" {
		fields["text"] = "text or html is required"
	}
	if len(fields) > 0 {
		return envelope{}, core.NewValidationError("invalid email", fields)
	}
	return env, nil
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type personalization struct {
	To []address `json:"to"`
	Cc []address `json:"cc,omitempty"`
}

type mailSend struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

func (p *provider) sendEmail(ctx context.Context, in SendEmailInput) (core.ServiceResponse[SendEmailOutput], error) {
	var resp core.ServiceResponse[SendEmailOutput]
	env, err := validateEmail(in)
	if err != nil {
		return resp, err
	}
	key, err := upstream.APIKey(ctx, p.opts.Credentials, serviceName, CredentialKey)
	if err != nil {
		return resp, err
	}
	body := mailSend{
		Personalizations: []personalization{{To: []address{env.to}, Cc: env.cc}},
		From:             env.from,
		Subject:          in.Subject,
	}
	if in.Text != "" {
		body.Content = append(body.Content, content{Type: "text/plain", Value: in.Text})
	}
	if in.HTML != "" {
		body.Content = append(body.Content, content{Type: "text/html", Value: in.HTML})
	}
	r, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(key).
		SetBody(body).
		Post("/v3/mail/send")
	if err := upstream.Error(serviceName, r, err); err != nil {
		return resp, err
	}
	resp.Success = true
	resp.Data = SendEmailOutput{
		MessageID: r.Header().Get("X-Message-Id"),
		Status:    "accepted",
	}
	return resp, nil
}
