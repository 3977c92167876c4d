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

// ensureLeadingSlash prepends "/" to path if it lacks one, per §4.7's
// "paths registered without a leading / get one prepended".
func ensureLeadingSlash(path string) string {
	if path == "" || strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// GET registers handler for GET requests at path.
func (r *Router) GET(path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	return r.Handle([]string{"GET"}, ensureLeadingSlash(path), handler, opts...)
}

// POST registers handler for POST requests at path.
func (r *Router) POST(path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	return r.Handle([]string{"POST"}, ensureLeadingSlash(path), handler, opts...)
}

// PUT registers handler for PUT requests at path.
func (r *Router) PUT(path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	return r.Handle([]string{"PUT"}, ensureLeadingSlash(path), handler, opts...)
}

// DELETE registers handler for DELETE requests at path.
func (r *Router) DELETE(path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	return r.Handle([]string{"DELETE"}, ensureLeadingSlash(path), handler, opts...)
}

// HEAD registers handler for HEAD requests at path.
func (r *Router) HEAD(path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	return r.Handle([]string{"HEAD"}, ensureLeadingSlash(path), handler, opts...)
}

// OPTIONS registers handler for OPTIONS requests at path.
func (r *Router) OPTIONS(path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	return r.Handle([]string{"OPTIONS"}, ensureLeadingSlash(path), handler, opts...)
}

// PATCH registers handler for PATCH requests at path.
func (r *Router) PATCH(path string, handler HandlerFunc, opts ...EndpointOption) (*Endpoint, error) {
	return r.Handle([]string{"PATCH"}, ensureLeadingSlash(path), handler, opts...)
}
