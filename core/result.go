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

import "net/http"

// ActionResult is the uniform outcome of an action run through [ExecuteAction].
// A failed result never carries Data.
type ActionResult[R any] struct {
	Success     bool              `json:"success"`
	Data        R                 `json:"data,omitempty"`
	Message     string            `json:"message,omitempty"`
	Description string            `json:"description,omitempty"`
	Status      StatusName        `json:"status,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
	// Outcome is how the run was classified. It is not serialized.
	Outcome Outcome `json:"-"`
}

// Failed reports whether the action did not succeed.
func (r ActionResult[R]) Failed() bool { return !r.Success }

// HTTPStatus returns the status code an HTTP layer should serve for r.
// A service failure is never served as a client fault: a 4xx status
// reported by the service becomes 500.
func (r ActionResult[R]) HTTPStatus() int {
	if r.Success {
		return http.StatusOK
	}
	if r.Status == "" {
		return http.StatusInternalServerError
	}
	code := HTTPStatusCode(r.Status)
	if r.Outcome == OutcomeServiceFailure && code < http.StatusInternalServerError {
		return http.StatusInternalServerError
	}
	return code
}

// DataCarrier is implemented by service responses that wrap their payload.
// [ExecuteAction] extracts ResponseData by default.
type DataCarrier interface {
	ResponseData() any
}

// FailureReporter is implemented by service responses that can report a
// failure in-band. failed is true when the response reports a failure.
type FailureReporter interface {
	ServiceFailure() (description string, failed bool)
}

// ServiceResponse is a generic in-band service response.
type ServiceResponse[T any] struct {
	Success     bool   `json:"success"`
	Data        T      `json:"data,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ResponseData implements [DataCarrier].
func (r ServiceResponse[T]) ResponseData() any { return r.Data }

// ServiceFailure implements [FailureReporter].
func (r ServiceResponse[T]) ServiceFailure() (string, bool) {
	if r.Success {
		return "", false
	}
	if r.Description != "" {
		return r.Description, true
	}
	if r.Error != "" {
		return r.Error, true
	}
	return "service reported failure", true
}
