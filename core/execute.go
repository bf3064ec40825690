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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/internal/base"
	"github.com/actionhub/actionhub/internal/metrics"
)

// Messages of failed results. Unexpected errors never expose their text.
const (
	validationFailureMessage = "Invalid input"
	serviceFailureMessage    = "Service error"
	unexpectedFailureMessage = "An unexpected error occurred"
)

// ActionOptions configures [ExecuteAction].
type ActionOptions[S, R any] struct {
	// ServiceName names the downstream service, for errors, logs and metrics.
	ServiceName string
	// DataExtractor shapes the service response into the result data.
	// If nil, a [DataCarrier] response yields its ResponseData and any
	// other response is converted to R directly.
	DataExtractor func(S) (R, error)
	// SuccessMessage is attached to successful results.
	SuccessMessage string
}

// ExecuteAction runs serviceCall and normalizes its outcome into an
// [ActionResult]. It always returns a result: errors returned by
// serviceCall, in-band failures reported through [FailureReporter] and
// panics all become failed results, classified by [Classify].
func ExecuteAction[R, S any](
	ctx context.Context,
	actionName string,
	serviceCall func(context.Context) (S, error),
	opts ActionOptions[S, R],
) (result ActionResult[R]) {
	log := logger.FromContext(ctx).With("action", actionName, "service", opts.ServiceName)
	start := time.Now()
	outcome := OutcomeOK
	defer func() {
		if p := recover(); p != nil {
			result, outcome = failedResult[R](log, fmt.Errorf("panic in %s: %v", actionName, p))
		}
		metrics.WriteActionOutcome(ctx, actionName, opts.ServiceName, outcome.String())
		log.Debug("action finished", "success", result.Success, "outcome", outcome, "duration", time.Since(start))
	}()

	resp, err := serviceCall(ctx)
	if err == nil {
		if fr, ok := any(resp).(FailureReporter); ok {
			if desc, failed := fr.ServiceFailure(); failed {
				err = NewServiceError(opts.ServiceName, INTERNAL, "%s", desc)
			}
		}
	}
	var data R
	if err == nil {
		data, err = extractData(resp, opts.DataExtractor)
	}
	if err != nil {
		result, outcome = failedResult[R](log, contextError(err, opts.ServiceName))
		return result
	}
	return ActionResult[R]{
		Success: true,
		Data:    data,
		Message: opts.SuccessMessage,
	}
}

func extractData[S, R any](resp S, extractor func(S) (R, error)) (R, error) {
	if extractor != nil {
		return extractor(resp)
	}
	if dc, ok := any(resp).(DataCarrier); ok {
		return base.ConvertJSON[R](dc.ResponseData())
	}
	return base.ConvertJSON[R](resp)
}

// contextError turns a bare cancellation or deadline into a service error.
func contextError(err error, service string) error {
	if _, ok := AsError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewServiceError(service, DEADLINE_EXCEEDED, "request to %s timed out", serviceOrDefault(service))
	case errors.Is(err, context.Canceled):
		return NewServiceError(service, CANCELLED, "request to %s was cancelled", serviceOrDefault(service))
	}
	return err
}

func serviceOrDefault(service string) string {
	if service == "" {
		return "service"
	}
	return service
}

func failedResult[R any](log *slog.Logger, err error) (ActionResult[R], Outcome) {
	outcome := Classify(err)
	switch outcome {
	case OutcomeValidationFailure:
		e, _ := AsError(err)
		log.Info("action rejected input", "err", e.Message)
		return ActionResult[R]{
			Message:     validationFailureMessage,
			Description: e.Message,
			Status:      e.Status,
			Errors:      e.FieldErrors(),
			Outcome:     outcome,
		}, outcome
	case OutcomeServiceFailure:
		e, _ := AsError(err)
		log.Warn("service call failed", "err", err, "status", e.Status)
		return ActionResult[R]{
			Message:     serviceFailureMessage,
			Description: e.Message,
			Status:      e.Status,
			Outcome:     outcome,
		}, outcome
	default:
		log.Error("action failed unexpectedly", "err", err, "errType", fmt.Sprintf("%T", err), "errJSON", base.JSONString(err))
		return ActionResult[R]{
			Message:     unexpectedFailureMessage,
			Description: unexpectedFailureMessage,
			Status:      INTERNAL,
			Outcome:     OutcomeUnexpected,
		}, OutcomeUnexpected
	}
}
