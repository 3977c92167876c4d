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
	"bytes"
	"net/http"
)

// staticHandler mounts static-file byte-serving, an external collaborator
// named at its interface only (spec §1): route() recognizes a static
// mount child and runs it through the owning router's dispatchStatic,
// and the actual byte-serving is deferred to net/http.FileServer.
type staticHandler struct {
	fs http.FileSystem
}

// newStaticHandler returns a mountChild serving files from root.
func newStaticHandler(root string) *staticHandler {
	return &staticHandler{fs: http.Dir(root)}
}

// recorder is a minimal http.ResponseWriter that captures what
// http.FileServer writes so it can be folded into a plumber Response
// instead of writing to the transport directly. dispatchStatic is what
// actually runs the captured bytes through this router's postserialize
// hooks; the recorder only makes that possible by keeping FileServer's
// output in memory instead of on the wire.
type recorder struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func newRecorder() *recorder { return &recorder{header: make(http.Header)} }

func (w *recorder) Header() http.Header { return w.header }

func (w *recorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *recorder) WriteHeader(status int) { w.status = status }

// dispatch is staticHandler's mountChild implementation. It only fills in
// res from whatever http.FileServer wrote; it runs no hooks of its own —
// dispatchStatic (on the owning Router) is what applies postserialize.
func (s *staticHandler) dispatch(req *Request, res *Response) (any, error) {
	rec := newRecorder()
	http.FileServer(s.fs).ServeHTTP(rec, req.Raw)

	if rec.status == http.StatusNotFound {
		return nil, errNotFound
	}

	res.StatusCode = rec.status
	for k, v := range rec.header {
		res.Header[k] = v
	}
	res.Body = rec.body.Bytes()
	return nil, nil
}

// dispatchStatic runs a static mount's file lookup through sh and folds
// the result into this router's own pipeline tail: a file-not-found
// becomes this router's ordinary 404 (full preserialize/serializer/
// postserialize, since a Problem body still needs serializing), and a
// served file is run through postserialize only, since FileServer's
// bytes are already a finished response body, not a handler value for
// preserialize/the serializer to act on. This is what lets a postserialize
// hook (a security-header injector, a response logger) observe bytes
// served through MountStatic the same as any other route's response.
func (r *Router) dispatchStatic(req *Request, res *Response, sh *staticHandler) (any, error) {
	value, err := sh.dispatch(req, res)
	if err == errNotFound {
		r.emit(DiagNoRouteMatch, "static file not found", map[string]any{"path": req.Path()})
		v, e := r.notFound(req, res)
		if e != nil {
			return r.fail(req, res, e)
		}
		return r.finishSerialize(req, res, v)
	}
	if err != nil {
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
