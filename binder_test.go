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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosiahParry/plumber/pattern"
)

func TestBuildArgs_PriorityOrder(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/?name=fromquery", nil)
	req := newRequest(raw, false)
	req.Scratch["name"] = "fromscratch"

	args := buildArgs(req, newResponse(), map[string]string{"name": "frompath"}, nil)
	v, ok := args.Get("name")
	require.True(t, ok)
	assert.Equal(t, "fromscratch", v, "scratch must win over query, path, and body")
}

func TestBuildArgs_QueryBeatsPath(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/?name=fromquery", nil)
	req := newRequest(raw, false)

	args := buildArgs(req, newResponse(), map[string]string{"name": "frompath"}, nil)
	v, _ := args.Get("name")
	assert.Equal(t, "fromquery", v)
}

func TestBuildArgs_PathCoercedByCaptureType(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/", nil)
	req := newRequest(raw, false)

	args := buildArgs(req, newResponse(),
		map[string]string{"id": "42", "active": "true"},
		[]pattern.Capture{{Name: "id", Type: pattern.Int}, {Name: "active", Type: pattern.Bool}})

	id, _ := args.Get("id")
	assert.Equal(t, int64(42), id)
	active, _ := args.Get("active")
	assert.Equal(t, true, active)
}

func TestBind_PopulatesTaggedFields(t *testing.T) {
	type userArgs struct {
		ID   int64 `path:"id"`
		Full bool  `query:"full"`
	}

	handler := Bind(func(args *Args, a userArgs) (any, error) {
		return a, nil
	})

	raw := httptest.NewRequest(http.MethodGet, "/?full=true", nil)
	req := newRequest(raw, false)
	args := buildArgs(req, newResponse(), map[string]string{"id": "7"},
		[]pattern.Capture{{Name: "id", Type: pattern.Int}})

	out, err := handler(args)
	require.NoError(t, err)
	bound := out.(userArgs)
	assert.Equal(t, int64(7), bound.ID)
	assert.True(t, bound.Full)
}
