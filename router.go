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

import "sync"

// Router owns everything §3 assigns it: the ordered filter list, the
// five-bucket hook registry, the route tree, the mount list, a default
// serializer selector, and the error/404/405 handlers. A zero Router is
// not usable; construct one with New or MustNew.
//
// After Freeze is called, registering endpoints, filters, or hooks
// returns ErrRoutesFrozen. Call never freezes the router by itself.
// Mount, MountStatic, Unmount, RemoveHandle, and the Set*Handler methods
// are not blocked by Freeze; they, like dispatch, go through the
// router's read/write locks.
type Router struct {
	mu       sync.RWMutex
	frozen   bool
	tree     *treeNode
	filters  []*Filter
	filterAt map[string]int

	hooks hookRegistry

	mounts  []mount
	mountMu sync.RWMutex

	envs map[string]Environment

	trailingSlash     TrailingSlashMode
	parseBody         bool
	defaultSerializer Serializer
	serializers       map[string]Serializer

	notFound         NotFoundHandler
	methodNotAllowed MethodNotAllowedHandler
	errorHandler     ErrorHandler

	diagnostics   DiagnosticHandler
	observability ObservabilityRecorder
}

// New constructs a Router, applying opts in order. Options are applied
// before any endpoint, filter, hook, or mount is registered.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		tree:             newTreeNode(),
		filterAt:         map[string]int{},
		notFound:         defaultNotFound,
		methodNotAllowed: defaultMethodNotAllowed,
		errorHandler:     defaultErrorHandler,
		diagnostics:      NoopLogger(),
		defaultSerializer: jsonSerializer,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New, panicking on error. Intended for package-level Router
// construction where a build-time misconfiguration should fail fast.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// validate checks invariants that can be verified once at construction
// rather than on every request.
func (r *Router) validate() error {
	if r.defaultSerializer == nil {
		r.defaultSerializer = jsonSerializer
	}
	if r.diagnostics == nil {
		r.diagnostics = NoopLogger()
	}
	if r.notFound == nil {
		r.notFound = defaultNotFound
	}
	if r.methodNotAllowed == nil {
		r.methodNotAllowed = defaultMethodNotAllowed
	}
	if r.errorHandler == nil {
		r.errorHandler = defaultErrorHandler
	}
	return nil
}

func (r *Router) emit(kind DiagnosticKind, message string, fields map[string]any) {
	r.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: message, Fields: fields})
}

// Freeze makes subsequent Handle/HandleDeferred/HandleEndpoint/Filter/
// FilterDeferred/RegisterFilter/RegisterHook calls return
// ErrRoutesFrozen; mounts and RemoveHandle are not blocked. Freeze is
// idempotent. Call
// is safe to use whether or not Freeze was ever called; it exists so a
// server can assert "no more mutation after this point" explicitly.
func (r *Router) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

func (r *Router) checkMutable() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.frozen {
		return ErrRoutesFrozen
	}
	return nil
}
