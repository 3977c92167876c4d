// Copyright 2025 The Rivaas Authors
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

package plumber

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityRecorder is an optional external collaborator the router
// reports span-worthy pipeline events to. It is named at its interface
// only: the core never constructs a tracer or exporter itself.
type ObservabilityRecorder interface {
	// RouteMatched is called once a request has been matched to an
	// endpoint, before the filter chain runs.
	RouteMatched(span trace.Span, verb, pattern string)
	// RequestFailed is called when the pipeline transitions to Errored.
	RequestFailed(span trace.Span, stage string, err error)
}

// otelRecorder is an ObservabilityRecorder that holds no tracer of its
// own, annotating the span already active on the request's context (if any)
// rather than starting a new one — the transport owns span lifecycle.
type otelRecorder struct{}

// NewOTelRecorder returns an ObservabilityRecorder that annotates the
// span present on each request's context with route-match and failure
// events, using the otel conventions the rest of the pipeline's
// diagnostics follow.
func NewOTelRecorder() ObservabilityRecorder { return otelRecorder{} }

func (otelRecorder) RouteMatched(span trace.Span, verb, pattern string) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String("http.route", pattern),
		attribute.String("http.method", verb),
	)
}

func (otelRecorder) RequestFailed(span trace.Span, stage string, err error) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent("plumber.pipeline_error", trace.WithAttributes(
		attribute.String("plumber.stage", stage),
		attribute.String("plumber.error", err.Error()),
	))
}

// spanFromRequest returns the span active on req's context, or a no-op
// span if none was ever started by the transport.
func spanFromRequest(req *Request) trace.Span {
	return trace.SpanFromContext(req.Raw.Context())
}
