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
	"net/http"
	"strings"
)

// scratchSerializerKey is where execMatched stashes the matched
// endpoint's serializer selector (if any) for finishSerialize to read,
// since the filter chain can short-circuit before the endpoint itself
// ever runs.
const scratchSerializerKey = "_plumber_serializer"

// Call runs the full pipeline for raw and returns the finished
// Response, ready for Response.finalize or direct inspection in tests.
func (r *Router) Call(raw *http.Request) *Response {
	req := newRequest(raw, r.parseBody)
	res := newResponse()
	r.dispatch(req, res)
	return res
}

// ServeHTTP adapts Router to http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Call(req).finalize(w)
}

// Route runs preroute, matching, the filter chain, endpoint execution
// (or 404/405/redirect), and postroute, returning the bare value without
// serializing it — the "route" entry point named in §4.6, useful for
// tests that want to observe the pipeline's value directly.
func (r *Router) Route(req *Request, res *Response) (any, error) {
	if err := r.hooks.runPreroute(req.Scratch, req, res); err != nil {
		return r.fail(req, res, err)
	}
	value, err, handled := r.route(req, res)
	if handled || err != nil {
		return value, err
	}
	return r.hooks.runPostroute(req.Scratch, req, res, value)
}

// dispatch is Router's mountChild implementation: the full per-router
// pipeline, including serialization, so that a mounted child's own
// response is already complete by the time its parent sees the result.
func (r *Router) dispatch(req *Request, res *Response) (any, error) {
	if err := r.hooks.runPreroute(req.Scratch, req, res); err != nil {
		return r.fail(req, res, err)
	}

	value, err, handled := r.route(req, res)
	if handled {
		return value, err
	}
	if err != nil {
		return r.fail(req, res, err)
	}

	value, err = r.hooks.runPostroute(req.Scratch, req, res, value)
	if err != nil {
		return r.fail(req, res, err)
	}
	return r.finishSerialize(req, res, value)
}

// route matches the request against this router's own tree, reconciles
// a trailing-slash-only mismatch, and falls through to mounts, in that
// order — mirroring §4.6's dispatch algorithm. handled reports whether a
// mount fully processed the request (including its own serialization),
// in which case the caller must not run its own postroute/serialize.
func (r *Router) route(req *Request, res *Response) (value any, err error, handled bool) {
	verb := req.Verb()
	path := req.Path()

	r.mu.RLock()
	result, found := r.tree.find(verb, path)
	r.mu.RUnlock()

	if found {
		if result.verbMatched {
			v, e := r.execMatched(req, res, result)
			return v, e, false
		}
		r.emit(DiagVerbMismatch, "verb mismatch", map[string]any{"verb": verb, "path": path})
		v, e := r.methodNotAllowed(req, res, result.allowVerbs)
		return v, e, false
	}

	if v, e, done := r.tryTrailingSlash(req, res, verb, path); done {
		return v, e, false
	}

	for _, m := range r.mountsSnapshot() {
		suffix, ok := matchMountPrefix(path, m.prefix)
		if !ok {
			continue
		}
		childReq := req.rewritten(suffix, req.parseBody)
		if sh, ok := m.child.(*staticHandler); ok {
			v, e := r.dispatchStatic(childReq, res, sh)
			return v, e, true
		}
		v, e := m.child.dispatch(childReq, res)
		return v, e, true
	}

	r.emit(DiagNoRouteMatch, "no route match", map[string]any{"verb": verb, "path": path})
	v, e := r.notFound(req, res)
	return v, e, false
}

// matchMountPrefix reports whether path falls under the normalized
// mount prefix, and if so the mount-relative suffix ("/" when exact).
func matchMountPrefix(path, prefix string) (suffix string, ok bool) {
	base := strings.TrimSuffix(prefix, "/")
	if path == base {
		return "/", true
	}
	if strings.HasPrefix(path, prefix) {
		return "/" + strings.TrimPrefix(path, prefix), true
	}
	return "", false
}

// togglePath flips path's trailing slash: "/a" <-> "/a/".
func togglePath(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/")
	}
	return path + "/"
}

// tryTrailingSlash looks for a route that would match path if only its
// trailing slash were different. done reports whether this router fully
// decided the outcome (redirect or strict 404); when done is false, the
// caller should continue on to mount fallback as if nothing had matched.
func (r *Router) tryTrailingSlash(req *Request, res *Response, verb, path string) (value any, err error, done bool) {
	toggled := togglePath(path)

	r.mu.RLock()
	_, found := r.tree.find(verb, toggled)
	r.mu.RUnlock()
	if !found {
		return nil, nil, false
	}

	switch r.trailingSlash {
	case TrailingSlashRedirect:
		loc := toggled
		if q := req.RawQuery(); q != "" {
			loc += "?" + q
		}
		res.StatusCode = http.StatusTemporaryRedirect
		res.Header.Set("Location", loc)
		r.emit(DiagTrailingRedirect, "trailing slash redirect", map[string]any{"from": path, "to": toggled})
		return nil, nil, true
	case TrailingSlashStrict404:
		v, e := r.notFound(req, res)
		return v, e, true
	default: // TrailingSlashOff
		return nil, nil, false
	}
}

// execMatched runs the filter chain (honoring the endpoint's pre-empted
// filter, if any) and, absent a short-circuiting Reply or Fail, invokes
// the endpoint through the argument binder.
func (r *Router) execMatched(req *Request, res *Response, result *matchResult) (any, error) {
	ep := result.endpoint
	if ep.Serializer != "" {
		req.Scratch[scratchSerializerKey] = ep.Serializer
	}

	r.mu.RLock()
	filters := r.filters
	startAt := 0
	if ep.Preempt != "" {
		if idx, ok := r.filterAt[ep.Preempt]; ok {
			startAt = idx + 1
		}
	}
	envs := r.envs
	r.mu.RUnlock()

	args := buildArgs(req, res, result.captures, ep.Pattern.Captures())

	if r.observability != nil {
		r.observability.RouteMatched(spanFromRequest(req), req.Verb(), ep.Path())
	}

	for _, f := range filters[startAt:] {
		out := f.run(envs, args)
		switch out.outcome {
		case outcomeForward:
			continue
		case outcomeReply:
			return out.value, nil
		case outcomeFail:
			return nil, &FilterFailure{Filter: f.Name, Err: out.err}
		}
	}

	return ep.exec(envs, args)
}

// finishSerialize runs preserialize, selects and invokes the serializer,
// then runs postserialize. It is the tail shared by every outcome that
// this router itself produced (matched endpoint, 404, 405, redirect, or
// a recovered error).
func (r *Router) finishSerialize(req *Request, res *Response, value any) (any, error) {
	value, err := r.hooks.runPreserialize(req.Scratch, req, res, value)
	if err != nil {
		return r.fail(req, res, err)
	}

	serializer := r.defaultSerializer
	if name, ok := req.Scratch[scratchSerializerKey].(string); ok && name != "" {
		r.mu.RLock()
		s, ok := r.serializers[name]
		r.mu.RUnlock()
		if ok {
			serializer = s
		}
	}
	if err := serializer.Serialize(req, res, value); err != nil {
		return r.fail(req, res, err)
	}

	rewritten, err := r.hooks.runPostserialize(req.Scratch, req, res, res)
	if err != nil {
		return r.fail(req, res, err)
	}
	if rewritten != nil && rewritten != res {
		*res = *rewritten
	}
	return value, nil
}

// fail routes a runtime failure to the error hook (if any claims it) or
// the default/installed error handler, then serializes the result like
// any other outcome. The returned error is always nil: runtime failures
// never leak past this point, per §7's propagation policy.
func (r *Router) fail(req *Request, res *Response, cause error) (any, error) {
	if r.observability != nil {
		r.observability.RequestFailed(spanFromRequest(req), "pipeline", cause)
	}
	r.emit(diagKindFor(cause), "pipeline error", map[string]any{"error": cause.Error()})

	if v, ok := r.hooks.runError(req, res, cause); ok {
		return r.finishSerialize(req, res, v)
	}
	v, herr := r.errorHandler(req, res, cause)
	if herr != nil {
		res.StatusCode = http.StatusInternalServerError
		return r.finishSerialize(req, res, nil)
	}
	return r.finishSerialize(req, res, v)
}

func diagKindFor(err error) DiagnosticKind {
	switch err.(type) {
	case *HandlerFailure:
		return DiagHandlerFailed
	case *FilterFailure:
		return DiagFilterFailed
	case *HookFailure:
		return DiagHookFailed
	default:
		return DiagHandlerFailed
	}
}
