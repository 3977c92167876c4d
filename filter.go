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

// FilterOutcome is the three-valued result of running a filter. The
// source system this is modeled on signals "forward" with a sentinel
// callable, so that a filter which returns any other value — including
// one where the author simply forgot to call forward() — short-circuits
// the chain with that value as the response. That is an error-prone
// design, preserved here only as documented history: this rewrite uses
// an explicit sum type instead, per the "forward sentinel vs
// value-returning filter" design note, so there is no way to forget.
type FilterOutcome int

const (
	// outcomeForward advances to the next filter (or to route matching
	// if this was the last one). Construct it with Forward().
	outcomeForward FilterOutcome = iota
	// outcomeReply short-circuits the chain; the value becomes the
	// endpoint's value as if a handler had returned it.
	outcomeReply
	// outcomeFail diverts to the error handler.
	outcomeFail
)

// FilterResult is returned by a FilterFunc. Build one with Forward,
// Reply, or Fail; the zero value is equivalent to Forward().
type FilterResult struct {
	outcome FilterOutcome
	value   any
	err     error
}

// Forward signals that the next stage in the chain should run.
func Forward() FilterResult { return FilterResult{outcome: outcomeForward} }

// Reply short-circuits the filter chain with v as the endpoint's value.
func Reply(v any) FilterResult { return FilterResult{outcome: outcomeReply, value: v} }

// Fail diverts the request to the router's error handler.
func Fail(err error) FilterResult { return FilterResult{outcome: outcomeFail, err: err} }

// FilterFunc is a named pipeline stage's handler.
type FilterFunc func(args *Args) FilterResult

// Filter is a named pipeline stage. Order within a router is insertion
// order. Filter names preroute|postroute|preserialize|postserialize are
// reserved for hook buckets and cannot be used.
type Filter struct {
	Name    string
	handler deferred[FilterFunc]
}

// NewFilter constructs a directly-callable filter.
func NewFilter(name string, fn FilterFunc) *Filter {
	return &Filter{Name: name, handler: directHandler(fn)}
}

// NewDeferredFilter constructs a filter whose handler is an expression
// to be resolved, on first use, against the named evaluation environment.
func NewDeferredFilter(name, expr, envID string) *Filter {
	return &Filter{Name: name, handler: deferredHandler[FilterFunc](expr, envID)}
}

// run resolves (if necessary) and invokes the filter's handler.
func (f *Filter) run(envs map[string]Environment, args *Args) FilterResult {
	fn, err := f.handler.resolve(envs)
	if err != nil {
		return Fail(err)
	}
	return fn(args)
}

var reservedNames = map[string]bool{
	"preroute":      true,
	"postroute":     true,
	"preserialize":  true,
	"postserialize": true,
	"error":         true,
}
