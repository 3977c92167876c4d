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

import "fmt"

// Hook bucket names, in pipeline order. These are also the names
// reserved from use as Filter names.
const (
	HookPreroute      = "preroute"
	HookPostroute     = "postroute"
	HookPreserialize  = "preserialize"
	HookPostserialize = "postserialize"
	HookError         = "error"
)

// PrerouteHook observes the request before route matching begins. It
// may not rewrite anything; a returned error aborts the remaining
// preroute callbacks and transitions the request to Errored.
type PrerouteHook func(scratch map[string]any, req *Request, res *Response) error

// PostrouteHook observes and may rewrite the endpoint's returned value.
type PostrouteHook func(scratch map[string]any, req *Request, res *Response, value any) (any, error)

// PreserializeHook observes and may rewrite the value about to be
// handed to the serializer.
type PreserializeHook func(scratch map[string]any, req *Request, res *Response, value any) (any, error)

// PostserializeHook observes and may rewrite the finished response.
type PostserializeHook func(scratch map[string]any, req *Request, res *Response, response *Response) (*Response, error)

// ErrorHook produces an alternate value or response for a failure
// captured anywhere in the pipeline.
type ErrorHook func(req *Request, res *Response, err error) (any, error)

// hookRegistry holds the five ordered hook buckets. It is additive only:
// once a router is built, hooks may be appended but never removed or
// reordered. Callbacks within a bucket run in registration order, each
// seeing the prior callback's output.
type hookRegistry struct {
	preroute      []PrerouteHook
	postroute     []PostrouteHook
	preserialize  []PreserializeHook
	postserialize []PostserializeHook
	error_        []ErrorHook
}

// register appends fn to the named bucket. fn must be the hook type
// matching bucket, or registration fails with ErrUnknownHook (for a bad
// bucket name) or a type error (for a bucket/fn mismatch) — this is the
// generic entry point the Loader Adapter and Builder Facade both use
// when bridging externally-described hooks by name.
func (h *hookRegistry) register(bucket string, fn any) error {
	switch bucket {
	case HookPreroute:
		f, ok := fn.(PrerouteHook)
		if !ok {
			return fmt.Errorf("plumber: preroute hook must be a PrerouteHook")
		}
		h.preroute = append(h.preroute, f)
	case HookPostroute:
		f, ok := fn.(PostrouteHook)
		if !ok {
			return fmt.Errorf("plumber: postroute hook must be a PostrouteHook")
		}
		h.postroute = append(h.postroute, f)
	case HookPreserialize:
		f, ok := fn.(PreserializeHook)
		if !ok {
			return fmt.Errorf("plumber: preserialize hook must be a PreserializeHook")
		}
		h.preserialize = append(h.preserialize, f)
	case HookPostserialize:
		f, ok := fn.(PostserializeHook)
		if !ok {
			return fmt.Errorf("plumber: postserialize hook must be a PostserializeHook")
		}
		h.postserialize = append(h.postserialize, f)
	case HookError:
		f, ok := fn.(ErrorHook)
		if !ok {
			return fmt.Errorf("plumber: error hook must be an ErrorHook")
		}
		h.error_ = append(h.error_, f)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHook, bucket)
	}
	return nil
}

// runPreroute runs the preroute bucket in order; a failing callback
// aborts the remaining ones in the bucket.
func (h *hookRegistry) runPreroute(scratch map[string]any, req *Request, res *Response) error {
	for _, fn := range h.preroute {
		if err := fn(scratch, req, res); err != nil {
			return &HookFailure{Bucket: HookPreroute, Err: err}
		}
	}
	return nil
}

// runPostroute runs the postroute bucket in order, threading the
// rewritten value from one callback to the next.
func (h *hookRegistry) runPostroute(scratch map[string]any, req *Request, res *Response, value any) (any, error) {
	for _, fn := range h.postroute {
		v, err := fn(scratch, req, res, value)
		if err != nil {
			return nil, &HookFailure{Bucket: HookPostroute, Err: err}
		}
		value = v
	}
	return value, nil
}

// runPreserialize runs the preserialize bucket in order.
func (h *hookRegistry) runPreserialize(scratch map[string]any, req *Request, res *Response, value any) (any, error) {
	for _, fn := range h.preserialize {
		v, err := fn(scratch, req, res, value)
		if err != nil {
			return nil, &HookFailure{Bucket: HookPreserialize, Err: err}
		}
		value = v
	}
	return value, nil
}

// runPostserialize runs the postserialize bucket in order, threading the
// rewritten response from one callback to the next.
func (h *hookRegistry) runPostserialize(scratch map[string]any, req *Request, res *Response, response *Response) (*Response, error) {
	for _, fn := range h.postserialize {
		r, err := fn(scratch, req, res, response)
		if err != nil {
			return nil, &HookFailure{Bucket: HookPostserialize, Err: err}
		}
		response = r
	}
	return response, nil
}

// runError runs the error bucket in order and returns the last
// callback's value, or ok=false if no error hook is registered.
func (h *hookRegistry) runError(req *Request, res *Response, cause error) (value any, ok bool) {
	if len(h.error_) == 0 {
		return nil, false
	}
	var v any
	for _, fn := range h.error_ {
		out, err := fn(req, res, cause)
		if err != nil {
			// An error hook that itself fails falls back to the default
			// error handler rather than recursing.
			return nil, false
		}
		v = out
	}
	return v, true
}
