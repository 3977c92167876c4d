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

import "encoding/json"

// Serializer is the content-negotiation/serialization layer's
// interface, named here only at its boundary (spec §1): the core calls
// it as an opaque mapping from a handler's returned value to an HTTP
// body, never inspecting the value itself.
type Serializer interface {
	Serialize(req *Request, res *Response, value any) error
}

// SerializerFunc adapts a function to a Serializer.
type SerializerFunc func(req *Request, res *Response, value any) error

func (f SerializerFunc) Serialize(req *Request, res *Response, value any) error {
	return f(req, res, value)
}

// jsonSerializer is the router's built-in default. Real deployments are
// expected to supply their own content-negotiating Serializer; this one
// exists so a Router is usable out of the box.
var jsonSerializer Serializer = SerializerFunc(func(req *Request, res *Response, value any) error {
	if value == nil {
		if res.StatusCode == 0 {
			res.StatusCode = 204
		}
		return nil
	}
	if r, ok := value.(*Response); ok && r == res {
		// The handler mutated the response directly and returned it;
		// there is nothing left to serialize.
		return nil
	}
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if res.StatusCode == 0 {
		res.StatusCode = 200
	}
	if res.Header.Get("Content-Type") == "" {
		res.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	res.Body = body
	return nil
})
