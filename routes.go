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

import "strings"

// Handle registers an endpoint accepting verbs at path, dispatching to
// handler. ForbiddenArg is returned if opts attach metadata under a key
// reserved for internal use (a "plumber:" prefix). Use HandleEndpoint to
// register a prebuilt Endpoint instead.
func (r *Router) Handle(verbs []string, path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	e, err := NewEndpoint(verbs, path, handler, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.HandleEndpoint(e); err != nil {
		return nil, err
	}
	return e, nil
}

// HandleDeferred registers an endpoint whose handler is a deferred
// expression, resolved the first time the endpoint is invoked against
// the named evaluation environment.
func (r *Router) HandleDeferred(verbs []string, path, expr, envID string, opts ...EndpointOption) (*Endpoint, error) {
	e, err := NewDeferredEndpoint(verbs, path, expr, envID, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.HandleEndpoint(e); err != nil {
		return nil, err
	}
	return e, nil
}

// HandleEndpoint registers a prebuilt Endpoint.
func (r *Router) HandleEndpoint(e *Endpoint) error {
	if err := r.checkMutable(); err != nil {
		return err
	}
	for k := range e.Metadata {
		if strings.HasPrefix(k, "plumber:") {
			return ErrForbiddenArg
		}
	}
	if e.Preempt != "" {
		r.mu.RLock()
		_, ok := r.filterAt[e.Preempt]
		r.mu.RUnlock()
		if !ok {
			return ErrUnknownPreempt
		}
	}

	r.mu.Lock()
	r.tree.insert(e)
	r.mu.Unlock()

	r.emit(DiagRouteRegistered, "endpoint registered", map[string]any{
		"path": e.Path(),
	})
	return nil
}

// Filter appends a named filter to the chain. Names must be unique on
// this router and must not collide with a reserved hook-bucket name.
func (r *Router) Filter(name string, fn FilterFunc) (*Filter, error) {
	f := NewFilter(name, fn)
	if err := r.registerFilter(f); err != nil {
		return nil, err
	}
	return f, nil
}

// FilterDeferred appends a filter whose handler is a deferred expression
// resolved against the named evaluation environment.
func (r *Router) FilterDeferred(name, expr, envID string) (*Filter, error) {
	f := NewDeferredFilter(name, expr, envID)
	if err := r.registerFilter(f); err != nil {
		return nil, err
	}
	return f, nil
}

// RegisterFilter appends a prebuilt Filter.
func (r *Router) RegisterFilter(f *Filter) error { return r.registerFilter(f) }

func (r *Router) registerFilter(f *Filter) error {
	if err := r.checkMutable(); err != nil {
		return err
	}
	if reservedNames[f.Name] {
		return ErrReservedFilterName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.filterAt[f.Name]; dup {
		return ErrDuplicateFilterName
	}
	r.filterAt[f.Name] = len(r.filters)
	r.filters = append(r.filters, f)
	r.emit(DiagFilterRegistered, "filter registered", map[string]any{"name": f.Name})
	return nil
}

// RegisterHook appends fn to the named hook bucket. bucket must be one
// of preroute|postroute|preserialize|postserialize|error.
func (r *Router) RegisterHook(bucket string, fn any) error {
	if err := r.checkMutable(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hooks.register(bucket, fn)
}

// RemoveHandle removes the endpoint registered for verb at path, if any.
// It reports whether something was actually removed; absence is not an
// error (spec: "silently succeeds when absent").
func (r *Router) RemoveHandle(verb, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.remove(verb, path)
}

// Set404Handler overrides the handler used when no route matches.
func (r *Router) Set404Handler(fn NotFoundHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = fn
}

// Set405Handler overrides the handler used when a path matches but the
// verb doesn't.
func (r *Router) Set405Handler(fn MethodNotAllowedHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methodNotAllowed = fn
}

// SetErrorHandler overrides the handler used for an unrecovered pipeline
// failure.
func (r *Router) SetErrorHandler(fn ErrorHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorHandler = fn
}

// RouteInfo is one flattened entry from Router.Routes(): a single
// (verb, path) pair plus the endpoint's optional annotations.
type RouteInfo struct {
	Verb       string
	Path       string
	Preempt    string
	Serializer string
}

// Routes walks the route tree and mount list and returns a flat listing
// of every reachable (verb, path), for diagnostics or OpenAPI-adjacent
// tooling. Mounted subrouters are expanded with their prefix joined onto
// their own Routes() output; static mounts contribute no entries (their
// file set is not known ahead of a request).
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	var out []RouteInfo
	collectNode(r.tree, &out)
	r.mu.RUnlock()

	for _, m := range r.mountsSnapshot() {
		child, ok := m.child.(*Router)
		if !ok {
			continue
		}
		prefix := strings.TrimSuffix(m.prefix, "/")
		for _, ri := range child.Routes() {
			ri.Path = prefix + ri.Path
			out = append(out, ri)
		}
	}
	return out
}

func collectNode(n *treeNode, out *[]RouteInfo) {
	appendBucket(n.endpoint, out)
	appendBucket(n.trailing, out)
	for _, child := range n.literal {
		collectNode(child, out)
	}
	for _, dc := range n.dynamic {
		collectNode(dc.child, out)
	}
}

func appendBucket(bucket map[string]*Endpoint, out *[]RouteInfo) {
	for verb, e := range bucket {
		*out = append(*out, RouteInfo{
			Verb:       verb,
			Path:       e.Path(),
			Preempt:    e.Preempt,
			Serializer: e.Serializer,
		})
	}
}
