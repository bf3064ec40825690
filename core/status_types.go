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

// StatusName defines the set of canonical status names.
type StatusName string

// Canonical status names, inspired by gRPC status codes.
const (
	OK                  StatusName = "OK"
	CANCELLED           StatusName = "CANCELLED"
	UNKNOWN             StatusName = "UNKNOWN"
	INVALID_ARGUMENT    StatusName = "INVALID_ARGUMENT"
	DEADLINE_EXCEEDED   StatusName = "DEADLINE_EXCEEDED"
	NOT_FOUND           StatusName = "NOT_FOUND"
	ALREADY_EXISTS      StatusName = "ALREADY_EXISTS"
	PERMISSION_DENIED   StatusName = "PERMISSION_DENIED"
	UNAUTHENTICATED     StatusName = "UNAUTHENTICATED"
	RESOURCE_EXHAUSTED  StatusName = "RESOURCE_EXHAUSTED"
	FAILED_PRECONDITION StatusName = "FAILED_PRECONDITION"
	ABORTED             StatusName = "ABORTED"
	OUT_OF_RANGE        StatusName = "OUT_OF_RANGE"
	UNIMPLEMENTED       StatusName = "UNIMPLEMENTED"
	INTERNAL            StatusName = "INTERNAL_SERVER_ERROR"
	UNAVAILABLE         StatusName = "UNAVAILABLE"
	DATA_LOSS           StatusName = "DATA_LOSS"
)

// statusNameToHTTPCode maps status names to HTTP status codes.
var statusNameToHTTPCode = map[StatusName]int{
	OK:                  http.StatusOK,
	CANCELLED:           499, // Client Closed Request (non-standard but common)
	UNKNOWN:             http.StatusInternalServerError,
	INVALID_ARGUMENT:    http.StatusBadRequest,
	DEADLINE_EXCEEDED:   http.StatusGatewayTimeout,
	NOT_FOUND:           http.StatusNotFound,
	ALREADY_EXISTS:      http.StatusConflict,
	PERMISSION_DENIED:   http.StatusForbidden,
	UNAUTHENTICATED:     http.StatusUnauthorized,
	RESOURCE_EXHAUSTED:  http.StatusTooManyRequests,
	FAILED_PRECONDITION: http.StatusBadRequest,
	ABORTED:             http.StatusConflict,
	OUT_OF_RANGE:        http.StatusBadRequest,
	UNIMPLEMENTED:       http.StatusNotImplemented,
	INTERNAL:            http.StatusInternalServerError,
	UNAVAILABLE:         http.StatusServiceUnavailable,
	DATA_LOSS:           http.StatusInternalServerError,
}

// HTTPStatusCode gets the HTTP status code for a status name.
// Unknown names map to 500.
func HTTPStatusCode(name StatusName) int {
	if code, ok := statusNameToHTTPCode[name]; ok {
		return code
	}
	return http.StatusInternalServerError
}
