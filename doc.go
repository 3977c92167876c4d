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

// Package plumber turns a set of annotated handler functions into a
// running HTTP API. It owns the routing and middleware-pipeline core:
// parsing path patterns into a matcher, matching incoming requests
// against a tree of routes, running a configurable filter and hook
// pipeline around the matched handler, coercing request inputs into
// typed handler arguments, and composing subrouters and static mounts.
//
// # Key features
//
//   - Path matching with literal and typed dynamic segments
//   - An ordered, pre-emptible filter chain with explicit Forward/Reply/Fail results
//   - Five hook buckets (preroute, postroute, preserialize, postserialize, error)
//   - Struct-tag based argument binding from path, query, and body sources
//   - Subrouter and static mounts with parent-shadowing precedence
//
// # Constructor pattern
//
// Routers are built with the functional-options pattern:
//
//	r, err := plumber.New(plumber.WithTrailingSlash(plumber.TrailingSlashRedirect))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Handle([]string{"GET"}, "/hello/<name>", helloHandler)
//	http.ListenAndServe(":8080", r)
//
// Content negotiation/serialization, the HTTP transport, cookie
// encryption, CORS, static byte-serving, OpenAPI generation, and
// CLI/bootstrapping are treated as external collaborators and are
// referenced only at their interfaces.
package plumber
