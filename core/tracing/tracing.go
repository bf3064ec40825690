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

// Package tracing runs gateway work inside OpenTelemetry spans.
package tracing

import (
	"context"

	"github.com/actionhub/actionhub/core/logger"
	"github.com/actionhub/actionhub/internal/base"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// State holds OpenTelemetry values for creating traces.
type State struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer // returned from tp.Tracer(), cached
}

// NewState returns a State with its own tracer provider. Spans go nowhere
// until a processor is registered.
func NewState() *State {
	tp := sdktrace.NewTracerProvider()
	return &State{
		tp:     tp,
		tracer: tp.Tracer("actionhub-tracer", trace.WithInstrumentationVersion("v1")),
	}
}

// RegisterSpanProcessor adds sp to the State's tracer provider.
func (ts *State) RegisterSpanProcessor(sp sdktrace.SpanProcessor) {
	ts.tp.RegisterSpanProcessor(sp)
}

// Shutdown flushes and stops every registered processor.
func (ts *State) Shutdown(ctx context.Context) error {
	return ts.tp.Shutdown(ctx)
}

const (
	attrPrefix   = "actionhub"
	spanTypeAttr = attrPrefix + ":type"
	subtypeAttr  = attrPrefix + ":subtype"
	inputAttr    = attrPrefix + ":input"
	outputAttr   = attrPrefix + ":output"
	stateAttr    = attrPrefix + ":state"

	inputSizeAttr  = attrPrefix + ":inputBytes"
	outputSizeAttr = attrPrefix + ":outputBytes"
)

// SpanMetadata describes the span RunInNewSpan opens.
type SpanMetadata struct {
	// Name is the span name.
	Name string
	// Type is the kind of span, e.g. "dispatch" or "action".
	Type string
	// Subtype refines Type, e.g. the integration id.
	Subtype string
	// Attributes are set verbatim on the span.
	Attributes map[string]string
	// OmitPayload records only the sizes of the JSON input and output.
	OmitPayload bool
}

// RunInNewSpan runs f on input in a new span described by metadata.
// The JSON forms of input and output are recorded on the span, or only
// their sizes if metadata.OmitPayload is set.
func RunInNewSpan[I, O any](
	ctx context.Context,
	tstate *State,
	metadata *SpanMetadata,
	input I,
	f func(context.Context, I) (O, error),
) (O, error) {
	if metadata == nil {
		metadata = &SpanMetadata{}
	}
	log := logger.FromContext(ctx)
	log.Debug("span start", "name", metadata.Name)
	defer log.Debug("span end", "name", metadata.Name)

	attrs := []attribute.KeyValue{payloadAttr(metadata, inputAttr, inputSizeAttr, input)}
	if metadata.Type != "" {
		attrs = append(attrs, attribute.String(spanTypeAttr, metadata.Type))
	}
	if metadata.Subtype != "" {
		attrs = append(attrs, attribute.String(subtypeAttr, metadata.Subtype))
	}
	for k, v := range metadata.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	ctx, span := tstate.tracer.Start(ctx, metadata.Name, trace.WithAttributes(attrs...))
	defer span.End()

	output, err := f(ctx, input)
	if err != nil {
		span.SetAttributes(attribute.String(stateAttr, "error"))
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return base.Zero[O](), err
	}
	span.SetAttributes(
		attribute.String(stateAttr, "success"),
		payloadAttr(metadata, outputAttr, outputSizeAttr, output),
	)
	return output, nil
}

func payloadAttr(metadata *SpanMetadata, key, sizeKey string, v any) attribute.KeyValue {
	js := base.JSONString(v)
	if metadata.OmitPayload {
		return attribute.Int(sizeKey, len(js))
	}
	return attribute.String(key, js)
}
