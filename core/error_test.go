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
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeOK},
		{"validation", NewValidationError("bad", nil), OutcomeValidationFailure},
		{"precondition", NewError(FAILED_PRECONDITION, "not ready"), OutcomeValidationFailure},
		{"wrapped validation", fmt.Errorf("calling: %w", NewError(OUT_OF_RANGE, "too big")), OutcomeValidationFailure},
		{"service", NewServiceError("SendGrid", UNAVAILABLE, "down"), OutcomeServiceFailure},
		{"service with client status", NewServiceError("SendGrid", INVALID_ARGUMENT, "returned 400"), OutcomeServiceFailure},
		{"wrapped service precondition", fmt.Errorf("sending: %w", NewServiceError("JSONBin", FAILED_PRECONDITION, "no key")), OutcomeServiceFailure},
		{"plain", errors.New("boom"), OutcomeUnexpected},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestErrorText(t *testing.T) {
	e := NewServiceError("JSONBin", NOT_FOUND, "bin %s not found", "abc")
	if got, want := e.Error(), "JSONBin: bin abc not found"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := e.HTTPCode(), http.StatusNotFound; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
	// No args: the message is taken verbatim.
	if got, want := NewError(INTERNAL, "100%").Message, "100%"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := NewServiceError("", "", "x").Status; got != INTERNAL {
		t.Errorf("got status %q, want %q", got, INTERNAL)
	}
}

func TestValidationErrorFields(t *testing.T) {
	e := NewValidationError("invalid email", map[string]string{"to": "must be an email"})
	if got := e.FieldErrors()["to"]; got != "must be an email" {
		t.Errorf("got %q", got)
	}
	if NewValidationError("x", nil).FieldErrors() != nil {
		t.Error("want nil field errors")
	}
	wire := e.ToCallableSerializable()
	if wire.Status != INVALID_ARGUMENT || wire.Message != "invalid email" {
		t.Errorf("unexpected wire form %+v", wire)
	}
}

func TestHTTPStatusCode(t *testing.T) {
	for name, want := range map[StatusName]int{
		INVALID_ARGUMENT: 400,
		UNIMPLEMENTED:    501,
		INTERNAL:         500,
		"NO_SUCH_STATUS": 500,
	} {
		if got := HTTPStatusCode(name); got != want {
			t.Errorf("%s: got %d, want %d", name, got, want)
		}
	}
}
