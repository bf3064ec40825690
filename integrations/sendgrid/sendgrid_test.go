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

package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *core.FunctionDefinition {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := credentials.NewMemoryStore()
	store.Set("acme", CredentialKey, "SG.test")
	p := New(Options{BaseURL: srv.URL, Credentials: store})
	return p.Actions(&core.ActionContext{})["sendEmail"]
}

func run(t *testing.T, fd *core.FunctionDefinition, company string, args map[string]any) core.ActionResult[SendEmailOutput] {
	t.Helper()
	ctx := core.WithActionContext(context.Background(), &core.ActionContext{CompanyID: company})
	out, err := fd.Fn(ctx, args)
	require.NoError(t, err)
	return out.(core.ActionResult[SendEmailOutput])
}

var validArgs = map[string]any{
	"to":      "ana@example.com",
	"from":    "noreply@example.com",
	"subject": "Hola",
	"text":    "Hello",
}

func TestSendEmail(t *testing.T) {
	var got mailSend
	fd := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	})
	res := run(t, fd, "acme", validArgs)
	require.True(t, res.Success, "%+v", res)
	assert.Equal(t, SendEmailOutput{MessageID: "msg-1", Status: "accepted"}, res.Data)
	assert.Equal(t, "Email sent", res.Message)
	assert.Equal(t, "ana@example.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, []content{{Type: "text/plain", Value: "Hello"}}, got.Content)
}

func TestSendEmailValidation(t *testing.T) {
	fd := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("service called with invalid input")
	})
	res := run(t, fd, "acme", map[string]any{"to": "nope", "from": "noreply@example.com", "subject": ""})
	assert.False(t, res.Success)
	assert.Equal(t, core.INVALID_ARGUMENT, res.Status)
	assert.Contains(t, res.Errors, "to")
	assert.Contains(t, res.Errors, "subject")
	assert.Contains(t, res.Errors, "text")
}

func TestSendEmailMissingCredential(t *testing.T) {
	fd := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("service called without credentials")
	})
	res := run(t, fd, "globex", validArgs)
	assert.False(t, res.Success)
	assert.Equal(t, core.FAILED_PRECONDITION, res.Status)
	assert.Equal(t, "Service error", res.Message)
	assert.Equal(t, http.StatusInternalServerError, res.HTTPStatus())
}

func TestSendEmailUpstreamFailure(t *testing.T) {
	fd := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"rate limited"}]}`, http.StatusTooManyRequests)
	})
	res := run(t, fd, "acme", validArgs)
	assert.False(t, res.Success)
	assert.Equal(t, "Service error", res.Message)
	assert.Equal(t, core.RESOURCE_EXHAUSTED, res.Status)
	assert.Equal(t, http.StatusInternalServerError, res.HTTPStatus())
	assert.Equal(t, SendEmailOutput{}, res.Data)
}

func TestSendEmailUpstreamRejection(t *testing.T) {
	fd := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"does not contain a valid address"}]}`, http.StatusBadRequest)
	})
	res := run(t, fd, "acme", validArgs)
	assert.False(t, res.Success)
	assert.Equal(t, "Service error", res.Message)
	assert.Equal(t, core.OutcomeServiceFailure, res.Outcome)
	assert.Equal(t, core.INVALID_ARGUMENT, res.Status)
	assert.Equal(t, http.StatusInternalServerError, res.HTTPStatus())
}

func TestSendEmailNamedAddresses(t *testing.T) {
	var got mailSend
	fd := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	})
	res := run(t, fd, "acme", map[string]any{
		"to":      "Ana Perez <ana@example.com>",
		"cc":      []any{"bob@example.com"},
		"from":    "Acme Support <noreply@example.com>",
		"subject": "Hola",
		"text":    "Hello",
	})
	require.True(t, res.Success, "%+v", res)
	assert.Equal(t, []address{{Email: "ana@example.com", Name: "Ana Perez"}}, got.Personalizations[0].To)
	assert.Equal(t, []address{{Email: "bob@example.com"}}, got.Personalizations[0].Cc)
	assert.Equal(t, address{Email: "noreply@example.com", Name: "Acme Support"}, got.From)
}

func TestSchema(t *testing.T) {
	fd := New(Options{}).Actions(&core.ActionContext{})["sendEmail"]
	assert.True(t, fd.Strict)
	assert.ElementsMatch(t, []any{"to", "from", "subject"}, fd.Parameters["required"])
}
