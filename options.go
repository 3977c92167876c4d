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

import "net/http"

// TrailingSlashMode controls how a mismatched trailing slash between a
// registered pattern and an incoming request path is reconciled.
type TrailingSlashMode int

const (
	// TrailingSlashOff compares paths exactly as written; a trailing-slash
	// mismatch is simply no match.
	TrailingSlashOff TrailingSlashMode = iota
	// TrailingSlashStrict404 treats a trailing-slash mismatch as a 404,
	// indistinguishable from no route existing at all.
	TrailingSlashStrict404
	// TrailingSlashRedirect issues a 307 to the canonical path, preserving
	// the raw query string, when only the trailing slash differs.
	TrailingSlashRedirect
)

// NotFoundHandler produces a response body for an unmatched request.
type NotFoundHandler func(req *Request, res *Response) (any, error)

// MethodNotAllowedHandler produces a response body when a path matches
// but the verb doesn't; allowVerbs lists the verbs known at that node.
type MethodNotAllowedHandler func(req *Request, res *Response, allowVerbs []string) (any, error)

// ErrorHandler produces the final response body for an unrecovered
// pipeline failure (one no ErrorHook claimed).
type ErrorHandler func(req *Request, res *Response, err error) (any, error)

// Option configures a Router at construction time.
type Option func(*Router)

// WithTrailingSlash sets the router's trailing-slash reconciliation mode.
// The default is TrailingSlashOff.
func WithTrailingSlash(mode TrailingSlashMode) Option {
	return func(r *Router) { r.trailingSlash = mode }
}

// WithParsePostBody enables or disables request body parsing (§6's
// parse-post-body option). Disabled by default: Request.Body returns nil
// until this is turned on.
func WithParsePostBody(on bool) Option {
	return func(r *Router) { r.parseBody = on }
}

// WithDefaultSerializer installs the router-wide default Serializer. A
// JSON serializer is used if this option is never supplied.
func WithDefaultSerializer(s Serializer) Option {
	return func(r *Router) { r.defaultSerializer = s }
}

// WithNamedSerializer registers a named serializer an Endpoint may select
// via WithSerializer(name) at registration time.
func WithNamedSerializer(name string, s Serializer) Option {
	return func(r *Router) {
		if r.serializers == nil {
			r.serializers = map[string]Serializer{}
		}
		r.serializers[name] = s
	}
}

// WithNotFoundHandler overrides the default 404 handler.
func WithNotFoundHandler(fn NotFoundHandler) Option {
	return func(r *Router) { r.notFound = fn }
}

// WithMethodNotAllowedHandler overrides the default 405 handler.
func WithMethodNotAllowedHandler(fn MethodNotAllowedHandler) Option {
	return func(r *Router) { r.methodNotAllowed = fn }
}

// WithErrorHandler overrides the default error handler.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(r *Router) { r.errorHandler = fn }
}

// WithEvaluationEnvironment registers env under id, for deferred
// expression handlers and filters declared against that id.
func WithEvaluationEnvironment(id string, env Environment) Option {
	return func(r *Router) {
		if r.envs == nil {
			r.envs = map[string]Environment{}
		}
		r.envs[id] = env
	}
}

// WithDiagnostics installs a DiagnosticHandler the router reports
// pipeline events to. NoopLogger() is used if this is never supplied.
func WithDiagnostics(h DiagnosticHandler) Option {
	return func(r *Router) { r.diagnostics = h }
}

// WithObservability installs an ObservabilityRecorder the router reports
// span-worthy pipeline events to. Optional; nil by default.
func WithObservability(rec ObservabilityRecorder) Option {
	return func(r *Router) { r.observability = rec }
}

func defaultNotFound(req *Request, res *Response) (any, error) {
	res.StatusCode = http.StatusNotFound
	return problemDetails(req, http.StatusNotFound, "Not Found", "no route matches "+req.Path()), nil
}

func defaultMethodNotAllowed(req *Request, res *Response, allow []string) (any, error) {
	res.StatusCode = http.StatusMethodNotAllowed
	res.Header.Set("Allow", joinVerbs(allow))
	return problemDetails(req, http.StatusMethodNotAllowed, "Method Not Allowed", req.Verb()+" is not supported at "+req.Path()), nil
}

func defaultErrorHandler(req *Request, res *Response, err error) (any, error) {
	res.StatusCode = http.StatusInternalServerError
	return problemDetails(req, http.StatusInternalServerError, "Internal Server Error", err.Error()), nil
}

func joinVerbs(verbs []string) string {
	out := ""
	for i, v := range verbs {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
