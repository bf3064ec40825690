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

// Package upstream holds the plumbing integrations share for calling
// their services: HTTP clients, credentials and status mapping.
package upstream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/credentials"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewClient returns a resty client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "actionhub")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// APIKey returns the credential key of service for the company in ctx's
// ActionContext. A missing credential is a FAILED_PRECONDITION service
// error: the gateway is not set up for the company, the input is fine.
func APIKey(ctx context.Context, store credentials.Store, service, key string) (string, error) {
	companyID := ""
	if actx := core.FromContext(ctx); actx != nil {
		companyID = actx.CompanyID
	}
	if store == nil {
		return "", core.NewServiceError(service, core.FAILED_PRECONDITION, "%s credentials are not configured", service)
	}
	v, ok, err := store.APIKey(ctx, companyID, key)
	if err != nil {
		return "", core.NewServiceError(service, core.UNAVAILABLE, "reading %s: %v", key, err)
	}
	if !ok {
		return "", core.NewServiceError(service, core.FAILED_PRECONDITION, "%s is not configured for this company", key)
	}
	return v, nil
}

// Status maps an upstream HTTP status code to a status name.
func Status(code int) core.StatusName {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return core.INVALID_ARGUMENT
	case http.StatusUnauthorized:
		return core.UNAUTHENTICATED
	case http.StatusForbidden:
		return core.PERMISSION_DENIED
	case http.StatusNotFound:
		return core.NOT_FOUND
	case http.StatusConflict:
		return core.ALREADY_EXISTS
	case http.StatusTooManyRequests:
		return core.RESOURCE_EXHAUSTED
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return core.UNAVAILABLE
	case http.StatusGatewayTimeout:
		return core.DEADLINE_EXCEEDED
	}
	return core.INTERNAL
}

// Error converts a failed resty call into a service error. It returns nil
// if the call succeeded.
func Error(service string, resp *resty.Response, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewServiceError(service, core.DEADLINE_EXCEEDED, "request to %s timed out", service)
	}
	if err != nil {
		return core.NewServiceError(service, core.UNAVAILABLE, "calling %s: %v", service, err)
	}
	if resp.IsError() {
		return core.NewServiceError(service, Status(resp.StatusCode()), "%s returned %s: %s",
			service, resp.Status(), truncate(resp.String(), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
