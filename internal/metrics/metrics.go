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

// Package metrics records OpenTelemetry metrics for dispatches and actions.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metricInstruments struct {
	dispatchCounter   metric.Int64Counter
	dispatchLatencies metric.Int64Histogram
	actionOutcomes    metric.Int64Counter
}

// Delay instrument creation until first use so that the program can
// install a MeterProvider first.
var fetchInstruments = sync.OnceValue(func() *metricInstruments {
	insts, err := initInstruments()
	if err != nil {
		// Do not stop the program because we can't collect metrics.
		slog.Default().Error("metric initialization failed; no metrics will be collected", "err", err)
		return nil
	}
	return insts
})

func initInstruments() (*metricInstruments, error) {
	meter := otel.Meter("actionhub")
	var err error
	insts := &metricInstruments{}
	insts.dispatchCounter, err = meter.Int64Counter("actionhub/dispatch/requests")
	if err != nil {
		return nil, err
	}
	insts.dispatchLatencies, err = meter.Int64Histogram("actionhub/dispatch/latency", metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	insts.actionOutcomes, err = meter.Int64Counter("actionhub/action/outcomes")
	if err != nil {
		return nil, err
	}
	return insts, nil
}

// WriteDispatchSuccess records a dispatch whose function returned normally.
func WriteDispatchSuccess(ctx context.Context, functionName string, latency time.Duration) {
	recordDispatch(ctx, latency,
		attribute.String("name", functionName),
		attribute.String("status", "OK"))
}

// WriteDispatchFailure records a dispatch that ended in an error.
// status is the canonical status name of the failure.
func WriteDispatchFailure(ctx context.Context, functionName string, latency time.Duration, status string) {
	// The error message is left out to keep cardinality bounded.
	recordDispatch(ctx, latency,
		attribute.String("name", functionName),
		attribute.String("status", status))
}

func recordDispatch(ctx context.Context, latency time.Duration, attrs ...attribute.KeyValue) {
	insts := fetchInstruments()
	if insts == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)
	insts.dispatchCounter.Add(ctx, 1, opt)
	insts.dispatchLatencies.Record(ctx, latency.Milliseconds(), opt)
}

// WriteActionOutcome counts one ExecuteAction result by outcome kind.
func WriteActionOutcome(ctx context.Context, actionName, serviceName, outcome string) {
	insts := fetchInstruments()
	if insts == nil {
		return
	}
	insts.actionOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", actionName),
		attribute.String("service", serviceName),
		attribute.String("outcome", outcome)))
}
