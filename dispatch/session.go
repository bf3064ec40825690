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

package dispatch

import (
	"context"
	"sync"

	"github.com/actionhub/actionhub/core"
)

// SessionResolver turns a session and company identity into a fresh
// ActionContext for one dispatch.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID, companyID string) (*core.ActionContext, error)
}

// PassthroughResolver trusts the identity it is given.
type PassthroughResolver struct {
	// Language is set on every context it builds.
	Language string
}

func (r PassthroughResolver) Resolve(_ context.Context, sessionID, companyID string) (*core.ActionContext, error) {
	return &core.ActionContext{
		SessionID: sessionID,
		CompanyID: companyID,
		Language:  r.Language,
	}, nil
}

// SessionStore is an in-memory SessionResolver. Each Resolve returns a
// copy, so callers never share a context.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]core.ActionContext
}

// NewSessionStore returns an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]core.ActionContext{}}
}

// Put records the identity behind a session.
func (s *SessionStore) Put(actx core.ActionContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[actx.SessionID] = actx
}

// Delete forgets a session.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Resolve returns the identity recorded for sessionID. A non-empty
// companyID must match the recorded one.
func (s *SessionStore) Resolve(_ context.Context, sessionID, companyID string) (*core.ActionContext, error) {
	s.mu.RLock()
	actx, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, core.NewError(core.UNAUTHENTICATED, "unknown session %q", sessionID)
	}
	if companyID != "" && companyID != actx.CompanyID {
		return nil, core.NewError(core.PERMISSION_DENIED, "session %q does not belong to company %q", sessionID, companyID)
	}
	return &actx, nil
}
