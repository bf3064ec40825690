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
)

// HTTPErrorWireFormat is the JSON body served for a failed request.
type HTTPErrorWireFormat struct {
	Details any        `json:"details,omitempty"`
	Message string     `json:"message"`
	Status  StatusName `json:"status"`
}

// ErrorKind records which side of a call an [Error] blames.
type ErrorKind int

const (
	// KindUnspecified errors are classified by their status.
	KindUnspecified ErrorKind = iota
	// KindValidation blames the caller's input.
	KindValidation
	// KindService blames the downstream service or the gateway's setup
	// for it, whatever the status.
	KindService
)

// Error is the error type raised by actions and by the gateway itself.
// Its Kind, or failing that its Status, decides how callers classify it:
// see [Classify].
type Error struct {
	Message string         `json:"message"`
	Status  StatusName     `json:"status"`
	Details map[string]any `json:"details,omitempty"`
	Source  *string        `json:"source,omitempty"` // service that reported the error, if any
	Kind    ErrorKind      `json:"-"`
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	if e.Source != nil && *e.Source != "" {
		return fmt.Sprintf("%s: %s", *e.Source, e.Message)
	}
	return e.Message
}

// HTTPCode returns the HTTP status code for e's status.
func (e *Error) HTTPCode() int {
	return HTTPStatusCode(e.Status)
}

// FieldErrors returns the per-field messages attached by [NewValidationError].
func (e *Error) FieldErrors() map[string]string {
	fe, _ := e.Details[fieldErrorsKey].(map[string]string)
	return fe
}

// ToCallableSerializable returns the JSON form of e served to HTTP callers.
func (e *Error) ToCallableSerializable() HTTPErrorWireFormat {
	return HTTPErrorWireFormat{
		Details: e.Details,
		Status:  e.Status,
		Message: e.Message,
	}
}

const fieldErrorsKey = "fieldErrors"

// NewError creates an Error with a formatted message.
func NewError(status StatusName, message string, args ...any) *Error {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &Error{
		Status:  status,
		Message: message,
	}
}

// NewValidationError reports caller-supplied input that failed a
// precondition before any service call was made. fieldErrors may be nil.
func NewValidationError(message string, fieldErrors map[string]string) *Error {
	e := &Error{Status: INVALID_ARGUMENT, Message: message, Kind: KindValidation}
	if len(fieldErrors) > 0 {
		e.Details = map[string]any{fieldErrorsKey: fieldErrors}
	}
	return e
}

// NewServiceError reports a failure reported by, or detected around, the
// downstream service of an integration. It is a service failure whatever
// its status; the status only describes what the service said. An empty
// status means INTERNAL.
func NewServiceError(service string, status StatusName, message string, args ...any) *Error {
	if status == "" {
		status = INTERNAL
	}
	e := NewError(status, message, args...)
	e.Kind = KindService
	if service != "" {
		e.Source = &service
	}
	return e
}

// AsError returns err as an *Error if one is in its chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
