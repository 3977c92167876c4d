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
	"fmt"
	"sync"
)

// HandlerFunc is an endpoint's handler. It receives the bound Args for
// the request and returns the handler's value (which the endpoint never
// inspects further) or an error, which propagates as a HandlerFailure.
type HandlerFunc func(args *Args) (any, error)

// Environment resolves a deferred-expression handler or filter into its
// runnable form. It models the source system's "evaluation environment"
// that a handler expression is bound into at load time: the annotation
// parser supplies an expr and an env-id; the router looks up the
// Environment for that env-id and asks it to resolve the expr.
//
// Resolve must return either a HandlerFunc (for endpoints/filters
// registered through the Loader Adapter) or a FilterFunc, matching
// what the caller expects; a type mismatch is reported as ErrBadEntrypoint-
// shaped resolution failure at first use.
type Environment interface {
	Resolve(expr string) (any, error)
}

// deferred holds either a directly-supplied callable of type F, or an
// expression to be resolved against a named Environment. Deferred
// handlers are materialized at most once, then cached — the same
// pattern the router uses for everything that is "load once, run many".
type deferred[F any] struct {
	direct   F
	isDirect bool
	expr     string
	envID    string

	once     sync.Once
	resolved F
	err      error
}

// directHandler wraps an already-runnable callable.
func directHandler[F any](fn F) deferred[F] {
	return deferred[F]{direct: fn, isDirect: true}
}

// deferredHandler wraps an expression to be resolved in the named
// environment the first time it is needed.
func deferredHandler[F any](expr, envID string) deferred[F] {
	return deferred[F]{expr: expr, envID: envID}
}

// resolve returns the runnable callable, resolving and caching it on
// first use if it was constructed as deferred.
func (d *deferred[F]) resolve(envs map[string]Environment) (F, error) {
	if d.isDirect {
		return d.direct, nil
	}
	d.once.Do(func() {
		env, ok := envs[d.envID]
		if !ok {
			d.err = fmt.Errorf("plumber: unknown evaluation environment %q", d.envID)
			return
		}
		v, err := env.Resolve(d.expr)
		if err != nil {
			d.err = fmt.Errorf("plumber: resolving %q in environment %q: %w", d.expr, d.envID, err)
			return
		}
		fn, ok := v.(F)
		if !ok {
			d.err = fmt.Errorf("%w: expression %q in environment %q", ErrBadEntrypoint, d.expr, d.envID)
			return
		}
		d.resolved = fn
	})
	return d.resolved, d.err
}
