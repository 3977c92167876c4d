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
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/JosiahParry/plumber/pattern"
)

// Args is the final argument set the Argument Binder hands to a handler:
// the request, the response, and the merged value set built from the
// request's scratch map, parsed query, path captures, and parsed body,
// in that priority order (earlier source wins on key collision; Req and
// Res are never part of the merge and are never overwritten).
type Args struct {
	Req *Request
	Res *Response

	values map[string]any
}

// Get returns the named value from the merged argument set and whether
// it was present. Unlike [Args.Bind], this performs no restriction to
// declared parameter names — it is the escape hatch for handlers that
// don't declare a typed Args struct.
func (a *Args) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// All returns every entry in the merged argument set. The returned map
// must not be mutated.
func (a *Args) All() map[string]any { return a.values }

// buildArgs merges scratch, query, path captures (type-coerced per the
// matcher's capture descriptors), and the parsed body into a single
// value set, honoring the first-set-wins priority order from §4.5:
// scratch, then query, then path, then body.
func buildArgs(req *Request, res *Response, captures map[string]string, capTypes []pattern.Capture) *Args {
	merged := make(map[string]any, len(req.Scratch)+len(captures))

	addAbsent := func(k string, v any) {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}

	for k, v := range req.Scratch {
		addAbsent(k, v)
	}
	for k, vals := range req.Query() {
		if len(vals) > 0 {
			addAbsent(k, vals[0])
		}
	}
	if len(captures) > 0 {
		typeOf := make(map[string]pattern.Type, len(capTypes))
		for _, c := range capTypes {
			typeOf[c.Name] = c.Type
		}
		for name, raw := range captures {
			addAbsent(name, coerce(typeOf[name], raw))
		}
	}
	for k, v := range req.Body() {
		addAbsent(k, v)
	}

	return &Args{Req: req, Res: res, values: merged}
}

// coerce converts a raw, already-type-validated path capture into its
// typed Go representation. string captures are returned unchanged.
func coerce(t pattern.Type, raw string) any {
	switch t {
	case pattern.Int:
		n, _ := strconv.ParseInt(raw, 10, 64)
		return n
	case pattern.Double:
		f, _ := strconv.ParseFloat(raw, 64)
		return f
	case pattern.Bool:
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			return true
		default:
			return false
		}
	default:
		return raw
	}
}

// --- Struct-tag based argument binding -------------------------------

// argField describes one bindable field of an Args-struct type, resolved
// once via reflection and cached thereafter.
type argField struct {
	index    int
	name     string // key to look up in the merged value set
	variadic bool   // true if this field collects all unconsumed keys
}

// argDescriptor is computed once per Args-struct type (the first time a
// Bind-wrapped handler runs) and consulted on every request without
// re-inspecting the handler itself, per the "handler argument binding
// under duck typing" design note.
type argDescriptor struct {
	fields   []argField
	declared map[string]bool
}

var (
	descriptorMu    sync.Mutex
	descriptorCache = map[reflect.Type]*argDescriptor{}
)

// getArgDescriptor returns the cached descriptor for t, building it on
// first request. t must be a struct type.
func getArgDescriptor(t reflect.Type) (*argDescriptor, error) {
	descriptorMu.Lock()
	defer descriptorMu.Unlock()

	if d, ok := descriptorCache[t]; ok {
		return d, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("plumber: Bind target must be a struct, got %s", t.Kind())
	}

	d := &argDescriptor{declared: make(map[string]bool)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("plumber"); ok && tag == "variadic" {
			if f.Type.Kind() != reflect.Map {
				return nil, fmt.Errorf("plumber: variadic field %s must be a map type", f.Name)
			}
			d.fields = append(d.fields, argField{index: i, variadic: true})
			continue
		}
		name := f.Name
		for _, tagName := range []string{"path", "query", "body", "json"} {
			if v, ok := f.Tag.Lookup(tagName); ok && v != "" {
				name = v
				break
			}
		}
		d.declared[name] = true
		d.fields = append(d.fields, argField{index: i, name: name})
	}
	descriptorCache[t] = d
	return d, nil
}

// populate fills dst (a pointer to the Args-struct type this descriptor
// was built from) from the merged argument set.
func (d *argDescriptor) populate(dst reflect.Value, values map[string]any) {
	elem := dst.Elem()
	for _, f := range d.fields {
		field := elem.Field(f.index)
		if f.variadic {
			rest := reflect.MakeMap(field.Type())
			for k, v := range values {
				if !d.declared[k] {
					rest.SetMapIndex(reflect.ValueOf(k), reflect.ValueOf(v))
				}
			}
			field.Set(rest)
			continue
		}
		v, ok := values[f.name]
		if !ok {
			continue
		}
		assign(field, v)
	}
}

// assign sets field from v, converting between Go's JSON-ish dynamic
// types (string, float64, bool) and the field's static type where a
// direct assignment would otherwise panic.
func assign(field reflect.Value, v any) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return
	}
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return
	}
	if rv.Type().ConvertibleTo(field.Type()) {
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
			field.Set(rv.Convert(field.Type()))
		}
		return
	}
	if s, ok := v.(string); ok {
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				field.SetInt(n)
			}
		case reflect.Float32, reflect.Float64:
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				field.SetFloat(n)
			}
		case reflect.Bool:
			if n, err := strconv.ParseBool(s); err == nil {
				field.SetBool(n)
			}
		}
	}
}

// Bind wraps a handler function that takes typed Args in T, returning a
// HandlerFunc suitable for Router.Handle. T's exported fields are
// bound from the merged argument set by name (or by an explicit
// `path:"..."`, `query:"..."`, `body:"..."` tag); a field tagged
// `plumber:"variadic"` of map type collects every key T's other fields
// did not declare.
//
// T's field layout is inspected once, the first time the returned
// HandlerFunc runs (and cached for every subsequent call with the same
// T) — the binder never reflects on fn itself.
//
// Example:
//
//	type getUserArgs struct {
//	    ID   int64 `path:"id"`
//	    Full bool  `query:"full"`
//	}
//	r.Handle([]string{"GET"}, "/users/<id:int>", plumber.Bind(func(args *plumber.Args, a getUserArgs) (any, error) {
//	    return lookupUser(a.ID, a.Full)
//	}))
func Bind[T any](fn func(args *Args, bound T) (any, error)) HandlerFunc {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return func(args *Args) (any, error) {
		desc, err := getArgDescriptor(t)
		if err != nil {
			return nil, err
		}
		var bound T
		desc.populate(reflect.ValueOf(&bound), args.values)
		return fn(args, bound)
	}
}
