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

// Response is the mutable view of the outgoing HTTP response passed
// through the pipeline. Handlers may mutate it directly; doing so is the
// only way an Endpoint ever affects status/headers/body (the endpoint
// itself never writes to it on the caller's behalf).
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// newResponse returns a Response with sensible zero values: no status
// set yet (0; the serializer/finalization step defaults to 200) and an
// initialized header map.
func newResponse() *Response {
	return &Response{Header: make(http.Header)}
}

// finalize writes the Response to w. It is the last step of Call,
// executed after the postserialize hook bucket has run.
func (res *Response) finalize(w http.ResponseWriter) {
	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	for k, vals := range res.Header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(status)
	if len(res.Body) > 0 {
		_, _ = w.Write(res.Body)
	}
}
