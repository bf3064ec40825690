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

package tracing

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogProcessor is a span processor that logs every ended span at debug level.
type LogProcessor struct {
	log *slog.Logger
}

// NewLogProcessor returns a LogProcessor writing to log.
func NewLogProcessor(log *slog.Logger) *LogProcessor {
	return &LogProcessor{log: log}
}

func (p *LogProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *LogProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := []any{
		"name", s.Name(),
		"traceID", s.SpanContext().TraceID().String(),
		"duration", s.EndTime().Sub(s.StartTime()),
		"status", s.Status().Code.String(),
	}
	for _, kv := range s.Attributes() {
		if kv.Key == stateAttr || kv.Key == spanTypeAttr || kv.Key == subtypeAttr {
			attrs = append(attrs, string(kv.Key), kv.Value.Emit())
		}
	}
	p.log.Debug("span", attrs...)
}

func (p *LogProcessor) Shutdown(context.Context) error   { return nil }
func (p *LogProcessor) ForceFlush(context.Context) error { return nil }
