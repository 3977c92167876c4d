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

package pattern

import (
	"errors"
	"strconv"
	"strings"
)

// Errors returned by Compile. Both are build-time failures.
var (
	ErrMalformed     = errors.New("pattern: malformed pattern")
	ErrUnknownType   = errors.New("pattern: unknown type tag")
)

// Type is the type tag carried by a dynamic segment.
type Type int

const (
	// String matches any non-"/" run of characters. It is the default
	// type for a dynamic segment that carries no explicit tag.
	String Type = iota
	Int
	Double
	Bool
)

// String aliases accepted in path syntax. "logical" and "numeric" are
// kept for input-source compatibility and resolve to Bool and Double.
var typeAliases = map[string]Type{
	"":        String,
	"string":  String,
	"int":     Int,
	"double":  Double,
	"numeric": Double,
	"bool":    Bool,
	"logical": Bool,
}

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Double:
		return "double"
	case Bool:
		return "bool"
	default:
		return "string"
	}
}

// segment is one "/"-delimited component of a compiled pattern.
type segment struct {
	literal  string // used when dynamic == false
	dynamic  bool
	name     string
	typ      Type
}

// Capture describes one named, typed dynamic segment in declaration order.
type Capture struct {
	Name string
	Type Type
}

// Segment exposes one parsed path segment to callers outside this
// package that need to build their own structures over a pattern (the
// router's route tree, in particular).
type Segment struct {
	Literal string // valid when Dynamic == false
	Dynamic bool
	Name    string // valid when Dynamic == true
	Type    Type   // valid when Dynamic == true
}

// Segments returns the pattern's parsed segments in declaration order.
func (p *Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	for i, s := range p.segments {
		out[i] = Segment{Literal: s.literal, Dynamic: s.dynamic, Name: s.name, Type: s.typ}
	}
	return out
}

// Validate reports whether raw is an acceptable value for a dynamic
// segment of type t. Exported so callers building their own matching
// structures (such as a route tree) can reuse the matcher's type rules.
func Validate(t Type, raw string) bool { return validate(t, raw) }

// Pattern is a compiled path pattern. The zero value is not usable;
// construct one with Compile.
type Pattern struct {
	raw           string
	segments      []segment
	trailingSlash bool // true if the compiled pattern ends with "/" (and is not bare "/")
}

// HasTrailingSlash reports whether the pattern, as written, ends with a
// "/" after a non-empty segment (e.g. "/a/b/" as opposed to "/a/b").
func (p *Pattern) HasTrailingSlash() bool { return p.trailingSlash }

// String returns the pattern as originally supplied to Compile.
func (p *Pattern) String() string { return p.raw }

// Captures returns the ordered list of named, typed dynamic segments.
func (p *Pattern) Captures() []Capture {
	var out []Capture
	for _, s := range p.segments {
		if s.dynamic {
			out = append(out, Capture{Name: s.name, Type: s.typ})
		}
	}
	return out
}

// Canonical reconstructs the pattern from its parsed segments, always
// starting with "/" regardless of how the original string was written.
// Use this (not String) to satisfy the "path begins with /" invariant.
func (p *Pattern) Canonical() string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if !s.dynamic {
			b.WriteString(s.literal)
			continue
		}
		b.WriteByte('<')
		b.WriteString(s.name)
		if s.typ != String {
			b.WriteByte(':')
			b.WriteString(s.typ.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

// Compile parses a pattern string such as "/a/<name>/b/<id:int>" into a
// Pattern. An empty pattern is equivalent to "/". A leading slash is
// added if absent. Compile fails with ErrMalformed when a "<"/">" pair
// is unbalanced and with ErrUnknownType when a type tag is not one of
// {bool, int, double, string, logical, numeric}.
func Compile(raw string) (*Pattern, error) {
	orig := raw
	if raw == "" {
		raw = "/"
	}
	if raw[0] != '/' {
		raw = "/" + raw
	}

	var segs []segment
	for _, part := range strings.Split(strings.Trim(raw, "/"), "/") {
		if part == "" {
			continue
		}
		if strings.ContainsAny(part, "<>") {
			if strings.Count(part, "<") != 1 || strings.Count(part, ">") != 1 ||
				!strings.HasPrefix(part, "<") || !strings.HasSuffix(part, ">") {
				return nil, ErrMalformed
			}
			inner := part[1 : len(part)-1]
			if inner == "" {
				return nil, ErrMalformed
			}
			name, typTag, hasType := strings.Cut(inner, ":")
			if name == "" {
				return nil, ErrMalformed
			}
			typ, ok := typeAliases[strings.ToLower(typTag)]
			if hasType && !ok {
				return nil, ErrUnknownType
			}
			segs = append(segs, segment{dynamic: true, name: name, typ: typ})
			continue
		}
		segs = append(segs, segment{literal: part})
	}

	trailingSlash := len(segs) > 0 && strings.HasSuffix(raw, "/")
	return &Pattern{raw: orig, segments: segs, trailingSlash: trailingSlash}, nil
}

// MustCompile is like Compile but panics on error. Intended for
// package-level pattern literals, not for user-supplied input.
func MustCompile(raw string) *Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Match attempts a full, literal match of path against the pattern,
// including trailing-slash presence: a pattern compiled from "/a/" does
// not match "/a" and vice versa. It returns the named captures (raw
// strings, type-validated) and ok == true on success. A type-validation
// failure counts as no-match, not an error. Trailing-slash reconciliation
// (redirect/strict-404/off) is a router-level concern, not this method's.
func (p *Pattern) Match(path string) (captures map[string]string, ok bool) {
	caps, rest, matched := p.matchPrefix(path)
	if !matched || rest != "/" {
		return nil, false
	}
	if len(p.segments) > 0 && p.trailingSlash != strings.HasSuffix(path, "/") {
		return nil, false
	}
	return caps, true
}

// MatchPrefix attempts to match path against the pattern as a prefix,
// returning the named captures and the unconsumed suffix (with a
// leading "/", or "/" when nothing remains). Used by subrouter mounts.
func (p *Pattern) MatchPrefix(path string) (captures map[string]string, rest string, ok bool) {
	return p.matchPrefix(path)
}

func (p *Pattern) matchPrefix(path string) (map[string]string, string, bool) {
	trimmed := strings.Trim(path, "/")
	var reqSegs []string
	if trimmed != "" {
		reqSegs = strings.Split(trimmed, "/")
	}

	var captures map[string]string
	i := 0
	for ; i < len(p.segments); i++ {
		if i >= len(reqSegs) {
			return nil, "", false
		}
		seg := p.segments[i]
		raw := reqSegs[i]
		if !seg.dynamic {
			if raw != seg.literal {
				return nil, "", false
			}
			continue
		}
		if !validate(seg.typ, raw) {
			return nil, "", false
		}
		if captures == nil {
			captures = make(map[string]string, len(p.segments))
		}
		captures[seg.name] = raw
	}

	rest := "/" + strings.Join(reqSegs[i:], "/")
	if len(reqSegs) == i {
		rest = "/"
	}
	return captures, rest, true
}

// validate reports whether raw is an acceptable value for a dynamic
// segment of the given type. It never returns an error: a validation
// failure is reported to the caller as no-match.
func validate(t Type, raw string) bool {
	switch t {
	case Int:
		_, err := strconv.ParseInt(raw, 10, 64)
		return err == nil
	case Double:
		_, err := strconv.ParseFloat(raw, 64)
		return err == nil
	case Bool:
		switch strings.ToLower(raw) {
		case "true", "false", "0", "1", "yes", "no":
			return true
		default:
			return false
		}
	default: // String
		return !strings.Contains(raw, "/")
	}
}
