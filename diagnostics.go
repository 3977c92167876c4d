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
	"context"
	"log/slog"
)

// DiagnosticKind categorizes a diagnostic event. These are informational:
// the router's behavior is identical whether or not anything observes them.
type DiagnosticKind string

const (
	DiagRouteRegistered   DiagnosticKind = "route_registered"
	DiagFilterRegistered  DiagnosticKind = "filter_registered"
	DiagMountRegistered   DiagnosticKind = "mount_registered"
	DiagTrailingRedirect  DiagnosticKind = "trailing_slash_redirect"
	DiagHandlerFailed     DiagnosticKind = "handler_failed"
	DiagFilterFailed      DiagnosticKind = "filter_failed"
	DiagHookFailed        DiagnosticKind = "hook_failed"
	DiagNoRouteMatch      DiagnosticKind = "no_route_match"
	DiagVerbMismatch      DiagnosticKind = "verb_mismatch"
)

// DiagnosticEvent is one observation emitted during build or dispatch.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticHandler receives diagnostic events from a Router. Optional:
// when unset, a Router uses NoopLogger and diagnostics are dropped.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc adapts a function to a DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) { f(e) }

// NoopLogger returns a DiagnosticHandler that discards every event.
func NoopLogger() DiagnosticHandler { return noopDiagnostics{} }

type noopDiagnostics struct{}

func (noopDiagnostics) OnDiagnostic(DiagnosticEvent) {}

// SlogDiagnostics adapts a *slog.Logger into a DiagnosticHandler, logging
// each event at a level derived from its kind.
func SlogDiagnostics(logger *slog.Logger) DiagnosticHandler {
	return DiagnosticHandlerFunc(func(e DiagnosticEvent) {
		level := slog.LevelInfo
		switch e.Kind {
		case DiagHandlerFailed, DiagFilterFailed, DiagHookFailed:
			level = slog.LevelError
		case DiagNoRouteMatch, DiagVerbMismatch:
			level = slog.LevelDebug
		}
		args := make([]any, 0, len(e.Fields)*2+2)
		args = append(args, "kind", string(e.Kind))
		for k, v := range e.Fields {
			args = append(args, k, v)
		}
		logger.Log(context.Background(), level, e.Message, args...)
	})
}
