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
	"errors"
	"fmt"

	"github.com/JosiahParry/plumber/pattern"
)

// verbSet is an unordered, deduplicated set of accepted HTTP verbs.
type verbSet map[string]bool

var knownVerbs = verbSet{
	"GET": true, "PUT": true, "POST": true, "DELETE": true,
	"HEAD": true, "OPTIONS": true, "PATCH": true,
}

func newVerbSet(verbs []string) (verbSet, error) {
	if len(verbs) == 0 {
		return nil, ErrNoVerbs
	}
	set := make(verbSet, len(verbs))
	for _, v := range verbs {
		if !knownVerbs[v] {
			return nil, fmt.Errorf("plumber: unknown HTTP verb %q", v)
		}
		set[v] = true
	}
	return set, nil
}

// Endpoint is a leaf handler for one (verbs, path) pair. It is immutable
// after registration except via explicit removeHandle.
type Endpoint struct {
	Verbs      verbSet
	Pattern    *pattern.Pattern
	Preempt    string         // optional: filter name to pre-empt up to
	Serializer string         // optional: overrides the router default
	Metadata   map[string]any // free-form documentation bag

	handler deferred[HandlerFunc]
}

// EndpointOption configures optional Endpoint attributes.
type EndpointOption func(*Endpoint)

// WithPreempt names a filter that, together with every filter
// registered before it, is skipped when this endpoint is selected.
func WithPreempt(filterName string) EndpointOption {
	return func(e *Endpoint) { e.Preempt = filterName }
}

// WithSerializer selects a non-default serializer for this endpoint.
func WithSerializer(name string) EndpointOption {
	return func(e *Endpoint) { e.Serializer = name }
}

// WithMetadata attaches free-form documentation metadata to the endpoint.
func WithMetadata(meta map[string]any) EndpointOption {
	return func(e *Endpoint) { e.Metadata = meta }
}

// NewEndpoint compiles path and constructs an Endpoint accepting verbs,
// dispatching directly to handler.
func NewEndpoint(verbs []string, path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	return newEndpoint(verbs, path, directHandler(handler), opts...)
}

// NewDeferredEndpoint is like NewEndpoint but defers resolving the
// handler to an expression evaluated, on first use, in the named
// environment.
func NewDeferredEndpoint(verbs []string, path, expr, envID string, opts ...EndpointOption) (*Endpoint, error) {
	return newEndpoint(verbs, path, deferredHandler[HandlerFunc](expr, envID), opts...)
}

func newEndpoint(verbs []string, path string, h deferred[HandlerFunc], opts ...EndpointOption) (*Endpoint, error) {
	if path == "" {
		return nil, ErrMissingPath
	}
	set, err := newVerbSet(verbs)
	if err != nil {
		return nil, err
	}
	p, err := pattern.Compile(path)
	switch {
	case errors.Is(err, pattern.ErrMalformed):
		return nil, fmt.Errorf("%w: %w", ErrMalformedPattern, err)
	case errors.Is(err, pattern.ErrUnknownType):
		return nil, fmt.Errorf("%w: %w", ErrUnknownTypeTag, err)
	case err != nil:
		return nil, err
	}
	e := &Endpoint{Verbs: set, Pattern: p, handler: h}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Path returns the endpoint's canonical path; it always begins with "/".
func (e *Endpoint) Path() string { return e.Pattern.Canonical() }

// Accepts reports whether the endpoint accepts verb.
func (e *Endpoint) Accepts(verb string) bool { return e.Verbs[verb] }

// exec invokes the handler with the already-bound args, returning its
// value. Errors from the handler are wrapped in a HandlerFailure.
func (e *Endpoint) exec(envs map[string]Environment, args *Args) (any, error) {
	fn, err := e.handler.resolve(envs)
	if err != nil {
		return nil, err
	}
	v, err := fn(args)
	if err != nil {
		return nil, &HandlerFailure{Err: err}
	}
	return v, nil
}
