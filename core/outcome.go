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

// Outcome classifies the result of running an action.
type Outcome int

const (
	// OutcomeOK is a successful run.
	OutcomeOK Outcome = iota
	// OutcomeValidationFailure is a client fault: the input was rejected
	// before any service call. Retrying with corrected input can succeed.
	OutcomeValidationFailure
	// OutcomeServiceFailure is a failure reported by the downstream service
	// or detected around it.
	OutcomeServiceFailure
	// OutcomeUnexpected is any other error. Its text is not shown to callers.
	OutcomeUnexpected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeValidationFailure:
		return "validation_failure"
	case OutcomeServiceFailure:
		return "service_failure"
	case OutcomeUnexpected:
		return "unexpected"
	}
	return "unknown"
}

// Classify maps err to an Outcome. A nil error is OutcomeOK. An [*Error]
// is classified by its Kind. An [*Error] of unspecified kind with
// INVALID_ARGUMENT, FAILED_PRECONDITION or OUT_OF_RANGE is a validation
// failure, and any other [*Error] is a service failure. Everything else is
// unexpected.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	e, ok := AsError(err)
	if !ok {
		return OutcomeUnexpected
	}
	switch e.Kind {
	case KindValidation:
		return OutcomeValidationFailure
	case KindService:
		return OutcomeServiceFailure
	}
	switch e.Status {
	case INVALID_ARGUMENT, FAILED_PRECONDITION, OUT_OF_RANGE:
		return OutcomeValidationFailure
	}
	return OutcomeServiceFailure
}
