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
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"
)

// Request is the narrow view the core observes an incoming HTTP request
// through: verb, path, raw query string, parsed query mapping, raw body
// bytes, parsed body mapping, cookies, headers, client address, plus a
// mutable per-request scratch map. It lives exactly the span of one call.
type Request struct {
	Raw *http.Request

	// Scratch is a free-form mapping threaded through the pipeline.
	// Filters and hooks may read and write it; endpoints read it. It is
	// owned by exactly one request and shared by reference with every
	// stage that observes this request, by design.
	Scratch map[string]any

	parseBody bool

	queryOnce sync.Once
	query     url.Values

	bodyOnce sync.Once
	rawBody  []byte

	bodyMapOnce sync.Once
	bodyMap     map[string]any

	cookiesOnce sync.Once
	cookies     map[string]string
}

// newRequest wraps r into a Request view. parseBody mirrors the
// router's parse-post-body option.
func newRequest(r *http.Request, parseBody bool) *Request {
	return &Request{Raw: r, Scratch: make(map[string]any), parseBody: parseBody}
}

// Verb returns the HTTP method of the request.
func (req *Request) Verb() string { return req.Raw.Method }

// Path returns the request's URL path.
func (req *Request) Path() string { return req.Raw.URL.Path }

// RawQuery returns the request's raw, un-decoded query string.
func (req *Request) RawQuery() string { return req.Raw.URL.RawQuery }

// Query returns the parsed query string as a multi-value mapping. The
// result is parsed once per request and cached.
func (req *Request) Query() url.Values {
	req.queryOnce.Do(func() {
		req.query = req.Raw.URL.Query()
	})
	return req.query
}

// RawBody returns the request body bytes, read once and cached so it can
// be consulted from multiple pipeline stages.
func (req *Request) RawBody() []byte {
	req.bodyOnce.Do(func() {
		if req.Raw.Body == nil {
			return
		}
		b, err := io.ReadAll(req.Raw.Body)
		if err == nil {
			req.rawBody = b
		}
	})
	return req.rawBody
}

// Body returns the request body parsed into a free-form mapping, when
// the router's parse-post-body option is enabled and the Content-Type
// is understood (application/json or application/x-www-form-urlencoded;
// a missing Content-Type is parsed as JSON). Otherwise it returns nil. Values decoded from JSON carry their native
// Go type (float64, bool, string, []any, map[string]any); this is the
// "parser annotates" coercion named in the argument binder contract.
func (req *Request) Body() map[string]any {
	req.bodyMapOnce.Do(func() {
		if !req.parseBody {
			return
		}
		ct, _, _ := mime.ParseMediaType(req.Raw.Header.Get("Content-Type"))
		body := req.RawBody()
		if len(body) == 0 {
			return
		}
		switch ct {
		case "application/json", "":
			var m map[string]any
			if json.Unmarshal(body, &m) == nil {
				req.bodyMap = m
			}
		case "application/x-www-form-urlencoded":
			values, err := url.ParseQuery(string(body))
			if err != nil {
				return
			}
			m := make(map[string]any, len(values))
			for k, v := range values {
				if len(v) > 0 {
					m[k] = v[0]
				}
			}
			req.bodyMap = m
		}
	})
	return req.bodyMap
}

// Cookies returns the request's cookies as a read-only name-to-value
// mapping.
func (req *Request) Cookies() map[string]string {
	req.cookiesOnce.Do(func() {
		cookies := req.Raw.Cookies()
		m := make(map[string]string, len(cookies))
		for _, c := range cookies {
			m[c.Name] = c.Value
		}
		req.cookies = m
	})
	return req.cookies
}

// Headers returns the request's headers.
func (req *Request) Headers() http.Header { return req.Raw.Header }

// ClientAddr returns the remote address that sent the request.
func (req *Request) ClientAddr() string { return req.Raw.RemoteAddr }

// rewritten returns a Request presenting path in place of the original
// URL path, for delegating into a mounted child. The underlying
// *http.Request is shallow-copied so the rewrite is invisible to the
// caller's own view; Scratch is shared by reference since a mount
// delegation is still logically the same request.
func (req *Request) rewritten(path string, parseBody bool) *Request {
	rawCopy := *req.Raw
	urlCopy := *req.Raw.URL
	urlCopy.Path = path
	rawCopy.URL = &urlCopy

	nr := newRequest(&rawCopy, parseBody)
	nr.Scratch = req.Scratch
	return nr
}
