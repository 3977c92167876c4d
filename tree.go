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
	"strings"

	"github.com/JosiahParry/plumber/pattern"
)

// typePriority orders dynamic children by specificity when more than
// one could match the same segment: int/double/bool before string.
// Ties within a priority are broken by registration order (the order
// children were appended, which dynamicChild preserves).
func typePriority(t pattern.Type) int {
	switch t {
	case pattern.Int:
		return 0
	case pattern.Double:
		return 1
	case pattern.Bool:
		return 2
	default: // String
		return 3
	}
}

// dynamicChild is one typed dynamic edge out of a tree node.
type dynamicChild struct {
	name  string
	typ   pattern.Type
	child *treeNode
}

// treeNode is one segment position in the router's own route tree — a
// trie keyed by literal segments with dynamic children bucketed by type
// tag, per §3's Route Tree data model. At most one Endpoint is stored
// per verb at a terminal node; the same Endpoint may be referenced under
// multiple verbs.
type treeNode struct {
	literal  map[string]*treeNode
	dynamic  []*dynamicChild
	endpoint map[string]*Endpoint // verb -> endpoint, at most one per verb
	trailing map[string]*Endpoint // verb -> endpoint, registered with a trailing slash
}

func newTreeNode() *treeNode {
	return &treeNode{endpoint: map[string]*Endpoint{}, trailing: map[string]*Endpoint{}}
}

// insert registers e into the tree under its compiled pattern.
func (n *treeNode) insert(e *Endpoint) {
	cur := n.walkInsert(e.Pattern)
	bucket := cur.endpoint
	if e.Pattern.HasTrailingSlash() {
		bucket = cur.trailing
	}
	for verb := range e.Verbs {
		bucket[verb] = e
	}
}

func (n *treeNode) walkInsert(p *pattern.Pattern) *treeNode {
	cur := n
	for _, seg := range p.Segments() {
		if !seg.Dynamic {
			if cur.literal == nil {
				cur.literal = map[string]*treeNode{}
			}
			next, ok := cur.literal[seg.Literal]
			if !ok {
				next = newTreeNode()
				cur.literal[seg.Literal] = next
			}
			cur = next
			continue
		}
		var next *treeNode
		for _, dc := range cur.dynamic {
			if dc.name == seg.Name && dc.typ == seg.Type {
				next = dc.child
				break
			}
		}
		if next == nil {
			next = newTreeNode()
			cur.dynamic = append(cur.dynamic, &dynamicChild{name: seg.Name, typ: seg.Type, child: next})
		}
		cur = next
	}
	return cur
}

// remove deletes the verb's endpoint registration at path, if present.
// It returns true if something was removed.
func (n *treeNode) remove(verb, path string) bool {
	p, err := pattern.Compile(path)
	if err != nil {
		return false
	}
	cur := n
	for _, seg := range p.Segments() {
		if !seg.Dynamic {
			if cur.literal == nil {
				return false
			}
			next, ok := cur.literal[seg.Literal]
			if !ok {
				return false
			}
			cur = next
			continue
		}
		var next *treeNode
		for _, dc := range cur.dynamic {
			if dc.name == seg.Name && dc.typ == seg.Type {
				next = dc.child
				break
			}
		}
		if next == nil {
			return false
		}
		cur = next
	}
	bucket := cur.endpoint
	if p.HasTrailingSlash() {
		bucket = cur.trailing
	}
	if _, ok := bucket[verb]; !ok {
		return false
	}
	delete(bucket, verb)
	return true
}

// matchResult is what a tree walk yields: either a matched endpoint, or
// a verb-mismatch node (the path matched but not for this verb; the
// caller answers 405 with allowVerbs as the Allow header, without
// consulting mounts).
type matchResult struct {
	endpoint    *Endpoint
	captures    map[string]string
	allowVerbs  []string
	verbMatched bool
}

// find walks the tree for a full match of path under verb, preferring
// literal children, then dynamic children ordered by type specificity,
// with registration order as the final tie-break. It backtracks: if a
// preferred branch's subtree holds no terminal, the next candidate is
// tried.
func (n *treeNode) find(verb, path string) (*matchResult, bool) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 1 && segs[0] == "" {
		segs = nil
	}
	trailing := len(path) > 1 && strings.HasSuffix(path, "/")

	return n.findAt(segs, 0, verb, trailing, map[string]string{})
}

func (n *treeNode) findAt(segs []string, i int, verb string, trailing bool, caps map[string]string) (*matchResult, bool) {
	if i == len(segs) {
		bucket := n.endpoint
		if trailing {
			bucket = n.trailing
		}
		if len(bucket) == 0 {
			return nil, false
		}
		if ep, ok := bucket[verb]; ok {
			out := make(map[string]string, len(caps))
			for k, v := range caps {
				out[k] = v
			}
			return &matchResult{endpoint: ep, captures: out, verbMatched: true}, true
		}
		allow := make([]string, 0, len(bucket))
		for v := range bucket {
			allow = append(allow, v)
		}
		return &matchResult{allowVerbs: allow}, true
	}

	raw := segs[i]
	if n.literal != nil {
		if next, ok := n.literal[raw]; ok {
			if res, ok := next.findAt(segs, i+1, verb, trailing, caps); ok {
				return res, true
			}
		}
	}

	candidates := make([]*dynamicChild, len(n.dynamic))
	copy(candidates, n.dynamic)
	stableSortByPriority(candidates)

	for _, dc := range candidates {
		if !pattern.Validate(dc.typ, raw) {
			continue
		}
		caps[dc.name] = raw
		if res, ok := dc.child.findAt(segs, i+1, verb, trailing, caps); ok {
			return res, true
		}
		delete(caps, dc.name)
	}

	return nil, false
}

func stableSortByPriority(children []*dynamicChild) {
	// Insertion sort: small N (distinct dynamic edges per node is
	// always small in practice) and stable, preserving registration
	// order within a priority bucket.
	for i := 1; i < len(children); i++ {
		j := i
		for j > 0 && typePriority(children[j].typ) < typePriority(children[j-1].typ) {
			children[j], children[j-1] = children[j-1], children[j]
			j--
		}
	}
}
