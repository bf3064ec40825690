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

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/discovery"
	"github.com/actionhub/actionhub/dispatch"
	"github.com/actionhub/actionhub/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendInput struct {
	To string `json:"to"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newSessionTestServer(t, nil)
}

// newSessionTestServer resolves dispatch identities from sessions when it
// is not nil.
func newSessionTestServer(t *testing.T, sessions *dispatch.SessionStore) *httptest.Server {
	t.Helper()
	fsys := fstest.MapFS{
		"sendgrid/integration.yaml":  {Data: []byte("name: SendGrid\ndescription: Email\nactionCreator: sendgrid\n")},
		"sendgrid/locales/es.yaml":   {Data: []byte("description: Correo\n")},
	}
	reg := registry.New(fsys)
	reg.Register(registry.NewProvider("sendgrid", func(actx *core.ActionContext) core.ActionSet {
		send := core.DefineFunction("Send an email", func(ctx context.Context, in sendInput) (core.ActionResult[map[string]string], error) {
			return core.ExecuteAction(ctx, "sendEmail",
				func(context.Context) (map[string]string, error) {
					if in.To == "" {
						return nil, core.NewValidationError("recipient is required", map[string]string{"to": "required"})
					}
					return map[string]string{"to": in.To, "company": actx.CompanyID}, nil
				},
				core.ActionOptions[map[string]string, map[string]string]{ServiceName: "SendGrid"}), nil
		})
		return core.ActionSet{"sendEmail": send}
	}))
	d := discovery.New(reg, "en")
	var resolver dispatch.SessionResolver
	if sessions != nil {
		resolver = sessions
	}
	srv := httptest.NewServer(NewHandler(d, dispatch.New(d, resolver, nil), sessions))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, header http.Header) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func post(t *testing.T, url, body string, header http.Header) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest("POST", url, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	code, _ := get(t, srv.URL+"/api/__health", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDiscover(t *testing.T) {
	srv := newTestServer(t)
	code, body := get(t, srv.URL+"/discover", nil)
	require.Equal(t, http.StatusOK, code)
	var integrations []*discovery.Integration
	require.NoError(t, json.Unmarshal(body, &integrations))
	require.Len(t, integrations, 1)
	assert.Equal(t, "send_grid", integrations[0].ID)
	assert.Equal(t, "send_grid.sendEmail", integrations[0].Actions[0].ID)

	_, body = get(t, srv.URL+"/discover", http.Header{"Accept-Language": {"es-ES,es;q=0.9"}})
	require.NoError(t, json.Unmarshal(body, &integrations))
	assert.Equal(t, "Correo", integrations[0].Description)
}

func TestDiscoverLean(t *testing.T) {
	srv := newTestServer(t)
	code, body := get(t, srv.URL+"/discover/lean?fields=id,%20displayName", nil)
	require.Equal(t, http.StatusOK, code)
	var lean []map[string]any
	require.NoError(t, json.Unmarshal(body, &lean))
	assert.Equal(t, []map[string]any{{"id": "send_grid", "displayName": "SendGrid"}}, lean)
}

func TestDiscoverActionAndIntegration(t *testing.T) {
	srv := newTestServer(t)
	code, body := get(t, srv.URL+"/discover/action/send_grid.sendEmail", nil)
	require.Equal(t, http.StatusOK, code)
	var a discovery.ActionInfo
	require.NoError(t, json.Unmarshal(body, &a))
	assert.Equal(t, "send_grid", a.Service)

	code, _ = get(t, srv.URL+"/discover/action/send_grid.nope", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = get(t, srv.URL+"/send_grid?lang=es", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"description":"Correo"`)

	code, _ = get(t, srv.URL+"/ghost", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRunAction(t *testing.T) {
	srv := newTestServer(t)
	hdr := http.Header{"X-Company-Id": {"acme"}}

	code, out := post(t, srv.URL+"/actions/send_grid/sendEmail", `{"to":"a@b.c"}`, hdr)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"to": "a@b.c", "company": "acme"}, out["data"])

	code, out = post(t, srv.URL+"/actions/send_grid/sendEmail", `{}`, hdr)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "recipient is required", out["description"])

	code, out = post(t, srv.URL+"/actions/send_grid/missing", `{}`, hdr)
	assert.Equal(t, http.StatusNotImplemented, code)
	assert.Equal(t, "Function send_grid.missing not implemented in the factory", out["message"])
}

func TestDispatch(t *testing.T) {
	srv := newTestServer(t)
	body := `{
		"function": {"name": "send_grid.sendEmail", "arguments": "{\"to\":\"x@y.z\"}"},
		"allowedActions": ["send_grid.sendEmail"],
		"companyId": "acme"
	}`
	code, out := post(t, srv.URL+"/dispatch", body, nil)
	require.Equal(t, http.StatusOK, code)
	result := out["result"].(map[string]any)
	assert.Equal(t, true, result["success"])

	body = `{"function": {"name": "send_grid.sendEmail", "arguments": "{}"}, "allowedActions": []}`
	code, out = post(t, srv.URL+"/dispatch", body, nil)
	assert.Equal(t, http.StatusNotImplemented, code)
	assert.Contains(t, out, "error")

	code, _ = post(t, srv.URL+"/dispatch", `{"function": 7}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func do(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func TestSessions(t *testing.T) {
	srv := newSessionTestServer(t, dispatch.NewSessionStore())
	dispatchBody := `{
		"function": {"name": "send_grid.sendEmail", "arguments": {"to": "x@y.z"}},
		"allowedActions": ["send_grid.sendEmail"],
		"sessionId": "s1"
	}`

	code, _ := post(t, srv.URL+"/dispatch", dispatchBody, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := do(t, http.MethodPut, srv.URL+"/sessions/s1", `{"language":"es"}`)
	assert.Equal(t, http.StatusBadRequest, code, string(body))

	code, body = do(t, http.MethodPut, srv.URL+"/sessions/s1", `{"companyId":"acme","language":"es"}`)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"sessionId":"s1","companyId":"acme","language":"es"}`, string(body))

	code, out := post(t, srv.URL+"/dispatch", dispatchBody, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "acme", out["result"].(map[string]any)["data"].(map[string]any)["company"])

	code, _ = post(t, srv.URL+"/dispatch", dispatchBody, http.Header{"X-Company-Id": {"globex"}})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, http.MethodDelete, srv.URL+"/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = post(t, srv.URL+"/dispatch", dispatchBody, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
