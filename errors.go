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

import "errors"

// Build/load-time errors. These are fatal to startup and are never
// surfaced as HTTP responses.
var (
	// ErrMalformedPattern indicates a path pattern has an unbalanced
	// brace or other syntax error.
	ErrMalformedPattern = errors.New("plumber: malformed path pattern")

	// ErrUnknownTypeTag indicates a dynamic segment names a type tag
	// outside {bool, int, double, string, logical, numeric}.
	ErrUnknownTypeTag = errors.New("plumber: unknown type tag")

	// ErrDuplicateFilterName indicates a filter name collides with an
	// already-registered filter on the same router.
	ErrDuplicateFilterName = errors.New("plumber: duplicate filter name")

	// ErrReservedFilterName indicates a filter name collides with a
	// reserved hook bucket name.
	ErrReservedFilterName = errors.New("plumber: filter name is reserved")

	// ErrUnknownPreempt indicates an endpoint names a preempt filter
	// that is not registered on the router.
	ErrUnknownPreempt = errors.New("plumber: preempted filter not found")

	// ErrUnknownHook indicates registerHook was called with a bucket
	// name outside {preroute, postroute, preserialize, postserialize, error}.
	ErrUnknownHook = errors.New("plumber: unknown hook bucket")

	// ErrForbiddenArg indicates handle() was called with an option name
	// reserved for future or internal use.
	ErrForbiddenArg = errors.New("plumber: forbidden argument")

	// ErrConflictingArgs indicates handle() was supplied both a prebuilt
	// endpoint and a (verbs, path, handler) tuple.
	ErrConflictingArgs = errors.New("plumber: conflicting arguments")

	// ErrMissingPath indicates no path was specified for an endpoint.
	ErrMissingPath = errors.New("plumber: no path specified")

	// ErrNoVerbs indicates an endpoint was registered with an empty verb set.
	ErrNoVerbs = errors.New("plumber: endpoint must accept at least one verb")

	// ErrFileNotFound indicates the loader adapter was pointed at a path
	// that does not exist.
	ErrFileNotFound = errors.New("plumber: file not found")

	// ErrIsDirectory indicates the loader adapter was given a directory
	// where a file was required.
	ErrIsDirectory = errors.New("plumber: path is a directory")

	// ErrNoDefinitionFound indicates a directory load found neither an
	// entrypoint nor a default definition file.
	ErrNoDefinitionFound = errors.New("plumber: no definition found in directory")

	// ErrBadEntrypoint indicates an entrypoint script did not return a
	// runnable router.
	ErrBadEntrypoint = errors.New("plumber: entrypoint did not return a router")

	// ErrRoutesFrozen indicates a mutation was attempted after the
	// router's freeze point.
	ErrRoutesFrozen = errors.New("plumber: router is frozen")
)

// Routing-time errors. These never leak past Call; they are translated
// into HTTP responses (404/405) by the dispatch algorithm.
var (
	errNotFound         = errors.New("plumber: not found")
	errMethodNotAllowed = errors.New("plumber: method not allowed")
)

// HandlerFailure wraps an error returned by a handler so the error hook
// and default error handler can distinguish it from filter/hook failures.
type HandlerFailure struct{ Err error }

func (e *HandlerFailure) Error() string { return "plumber: handler failed: " + e.Err.Error() }
func (e *HandlerFailure) Unwrap() error { return e.Err }

// FilterFailure wraps an error returned by a filter's FAIL outcome.
type FilterFailure struct {
	Filter string
	Err    error
}

func (e *FilterFailure) Error() string {
	return "plumber: filter " + e.Filter + " failed: " + e.Err.Error()
}
func (e *FilterFailure) Unwrap() error { return e.Err }

// HookFailure wraps an error returned by a hook callback.
type HookFailure struct {
	Bucket string
	Err    error
}

func (e *HookFailure) Error() string {
	return "plumber: hook " + e.Bucket + " failed: " + e.Err.Error()
}
func (e *HookFailure) Unwrap() error { return e.Err }
