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

// Package server exposes discovery and dispatch over HTTP.
package server

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/actionhub/actionhub/core"
	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/discovery"
	"github.com/actionhub/actionhub/dispatch"
	"github.com/actionhub/actionhub/internal/base"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/text/language"
)

const (
	sessionHeader = "X-Session-Id"
	companyHeader = "X-Company-Id"

	maxBodyBytes = 1 << 20
)

// NewHandler returns the mux of NewServeMux instrumented with OpenTelemetry.
// If sessions is not nil, the session routes of HandleSessions are served too.
func NewHandler(d *discovery.Service, disp *dispatch.Dispatcher, sessions *dispatch.SessionStore) http.Handler {
	mux := NewServeMux(d, disp)
	if sessions != nil {
		HandleSessions(mux, sessions)
	}
	return otelhttp.NewHandler(mux, "actionhub")
}

// HandleSessions registers routes that record and forget the identities
// behind sessions in store:
//
//	PUT /sessions/{sessionId}     body: {"companyId": ..., "language": ..., "isStateless": ...}
//	DELETE /sessions/{sessionId}
func HandleSessions(mux *http.ServeMux, store *dispatch.SessionStore) {
	handle(mux, "PUT /sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) error {
		var actx core.ActionContext
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&actx); err != nil {
			return &base.HTTPError{Code: http.StatusBadRequest, Err: fmt.Errorf("decoding session: %w", err)}
		}
		if actx.CompanyID == "" {
			return core.NewValidationError("companyId is required", map[string]string{"companyId": "required"})
		}
		actx.SessionID = r.PathValue("sessionId")
		store.Put(actx)
		return writeJSON(r.Context(), w, http.StatusOK, actx)
	})
	handle(mux, "DELETE /sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) error {
		store.Delete(r.PathValue("sessionId"))
		w.WriteHeader(http.StatusNoContent)
		return nil
	})
}

// NewServeMux returns a mux serving the catalog of d and running actions
// through disp.
func NewServeMux(d *discovery.Service, disp *dispatch.Dispatcher) *http.ServeMux {
	s := &server{disc: d, disp: disp}
	mux := http.NewServeMux()
	handle(mux, "GET /api/__health", func(w http.ResponseWriter, _ *http.Request) error {
		w.WriteHeader(http.StatusOK)
		return nil
	})
	handle(mux, "GET /discover", s.handleDiscover)
	handle(mux, "GET /discover/lean", s.handleDiscoverLean)
	handle(mux, "GET /discover/action/{id}", s.handleDiscoverAction)
	handle(mux, "GET /{integrationId}", s.handleIntegration)
	handle(mux, "POST /actions/{integrationName}/{actionName}", s.handleRunAction)
	handle(mux, "POST /dispatch", s.handleDispatch)
	return mux
}

type server struct {
	disc *discovery.Service
	disp *dispatch.Dispatcher
}

func (s *server) handleDiscover(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(r.Context(), w, http.StatusOK, s.disc.Integrations(r.Context(), requestLanguage(r)))
}

func (s *server) handleDiscoverLean(w http.ResponseWriter, r *http.Request) error {
	var fields []string
	for _, f := range strings.Split(r.URL.Query().Get("fields"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return writeJSON(r.Context(), w, http.StatusOK, s.disc.IntegrationsLean(r.Context(), requestLanguage(r), fields...))
}

func (s *server) handleDiscoverAction(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	a, ok := s.disc.ActionByID(r.Context(), id, requestLanguage(r))
	if !ok {
		return core.NewError(core.NOT_FOUND, "action %q not found", id)
	}
	return writeJSON(r.Context(), w, http.StatusOK, a)
}

func (s *server) handleIntegration(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("integrationId")
	in, ok := s.disc.IntegrationByID(r.Context(), id, requestLanguage(r))
	if !ok {
		return core.NewError(core.NOT_FOUND, "integration %q not found", id)
	}
	return writeJSON(r.Context(), w, http.StatusOK, in)
}

// handleRunAction runs one action. The route names the action, so it is
// the only one allowed for the call. The body is the argument object.
func (s *server) handleRunAction(w http.ResponseWriter, r *http.Request) error {
	id := discovery.ActionID(r.PathValue("integrationName"), r.PathValue("actionName"))
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &base.HTTPError{Code: http.StatusBadRequest, Err: err}
	}
	actx := &core.ActionContext{
		SessionID: r.Header.Get(sessionHeader),
		CompanyID: r.Header.Get(companyHeader),
		Language:  requestLanguage(r),
	}
	call := dispatch.FunctionCall{Function: dispatch.FunctionSpec{Name: id, Arguments: string(body)}}
	res := s.disp.ExecuteFunctionCallWithContext(r.Context(), call, actx, []string{id})
	if res.Error != nil {
		return &core.Error{Status: res.Error.Status, Message: res.Error.Message}
	}
	code := http.StatusOK
	if hs, ok := res.Result.(interface{ HTTPStatus() int }); ok {
		code = hs.HTTPStatus()
	}
	return writeJSON(r.Context(), w, code, res.Result)
}

// DispatchRequest is the body of POST /dispatch.
type DispatchRequest struct {
	dispatch.FunctionCall
	AllowedActions []string `json:"allowedActions"`
	SessionID      string   `json:"sessionId,omitempty"`
	CompanyID      string   `json:"companyId,omitempty"`
	// Context, if set, is used as is and no session is resolved.
	Context *core.ActionContext `json:"context,omitempty"`
}

func (s *server) handleDispatch(w http.ResponseWriter, r *http.Request) error {
	var req DispatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return &base.HTTPError{Code: http.StatusBadRequest, Err: fmt.Errorf("decoding request: %w", err)}
	}
	ctx := r.Context()
	var res dispatch.CallResult
	if req.Context != nil {
		res = s.disp.ExecuteFunctionCallWithContext(ctx, req.FunctionCall, req.Context, req.AllowedActions)
	} else {
		sessionID := cmp.Or(req.SessionID, r.Header.Get(sessionHeader))
		companyID := cmp.Or(req.CompanyID, r.Header.Get(companyHeader))
		res = s.disp.ExecuteFunctionCall(ctx, req.FunctionCall, sessionID, companyID, req.AllowedActions)
	}
	code := http.StatusOK
	if res.Error != nil {
		code = core.HTTPStatusCode(res.Error.Status)
	}
	return writeJSON(ctx, w, code, res)
}

// requestLanguage returns the ?lang= parameter or the preferred
// Accept-Language tag, or "" to use the default language.
func requestLanguage(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		tags, _, err := language.ParseAcceptLanguage(al)
		if err == nil && len(tags) > 0 {
			return tags[0].String()
		}
	}
	return ""
}

var requestID atomic.Int64

// handle is like http.ServeMux.HandleFunc, but it logs each request and
// serves errors returned by f as JSON.
func handle(mux *http.ServeMux, pattern string, f func(w http.ResponseWriter, r *http.Request) error) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		id := requestID.Add(1)
		// Create a logger that always outputs the requestID, and store it in the request context.
		log := slog.Default().With("reqID", id)
		log.Info("request start",
			"method", r.Method,
			"path", r.URL.Path)
		r = r.WithContext(logger.WithContext(r.Context(), log))
		var err error
		defer func() {
			if err != nil {
				log.Error("request end", "err", err)
			} else {
				log.Info("request end")
			}
		}()
		err = f(w, r)
		if err != nil {
			writeError(r.Context(), w, err)
		}
	})
}

// writeError serves err. A *core.Error is served with the code of its
// status and an *base.HTTPError with its code; anything else is a 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if e, ok := core.AsError(err); ok {
		writeJSON(ctx, w, e.HTTPCode(), e.ToCallableSerializable())
		return
	}
	var herr *base.HTTPError
	if errors.As(err, &herr) {
		status := core.INTERNAL
		if herr.Code < http.StatusInternalServerError {
			status = core.INVALID_ARGUMENT
		}
		writeJSON(ctx, w, herr.Code, core.HTTPErrorWireFormat{
			Status:  status,
			Message: herr.Err.Error(),
		})
		return
	}
	writeJSON(ctx, w, http.StatusInternalServerError, core.HTTPErrorWireFormat{
		Status:  core.INTERNAL,
		Message: err.Error(),
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(data)
	if err != nil {
		logger.FromContext(ctx).Error("writing output", "err", err)
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
