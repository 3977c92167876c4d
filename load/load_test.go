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

package load

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosiahParry/plumber"
)

func TestBuild_InlineEndpointsAndFilters(t *testing.T) {
	def := Definition{
		Filters: []FilterDescriptor{{Name: "auth", Handler: "allow", Env: "test"}},
		Endpoints: []EndpointDescriptor{
			{Verbs: []string{"GET"}, Path: "/ping", Handler: "pong", Env: "test"},
		},
	}
	env := fakeEnv{
		"allow": plumber.FilterFunc(func(args *plumber.Args) plumber.FilterResult { return plumber.Forward() }),
		"pong":  plumber.HandlerFunc(func(args *plumber.Args) (any, error) { return "pong", nil }),
	}

	r, err := Build(def, map[string]plumber.Environment{"test": env})
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `"pong"`, string(res.Body))
}

func TestBuild_RejectsEntrypointWithInlineDescriptors(t *testing.T) {
	def := Definition{
		Entrypoint: "whatever",
		Endpoints:  []EndpointDescriptor{{Verbs: []string{"GET"}, Path: "/x", Handler: "h"}},
	}
	_, err := Build(def, nil)
	assert.ErrorIs(t, err, plumber.ErrConflictingArgs)
}

func TestBuild_UnknownEntrypointFails(t *testing.T) {
	def := Definition{Entrypoint: "does-not-exist"}
	_, err := Build(def, nil)
	assert.ErrorIs(t, err, plumber.ErrBadEntrypoint)
}

func TestRegisterEntrypoint_UsedByBuild(t *testing.T) {
	RegisterEntrypoint("test-entry", func() (*plumber.Router, error) {
		r := plumber.MustNew()
		_, err := r.GET("/from-entrypoint", func(args *plumber.Args) (any, error) {
			return "ok", nil
		})
		return r, err
	})

	r, err := Build(Definition{Entrypoint: "test-entry"}, nil)
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/from-entrypoint", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestLoad_DirectoryFallsBackToDefaultDefinitionFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`{
		"endpoints": [{"verbs": ["GET"], "path": "/hello", "handler": "greet", "env": "default"}]
	}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultDefinitionFile), contents, 0o644))

	env := fakeEnv{"greet": plumber.HandlerFunc(func(args *plumber.Args) (any, error) { return "hi", nil })}
	r, err := Load(dir, map[string]plumber.Environment{"default": env})
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestLoad_MissingPathReportsFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), nil)
	assert.ErrorIs(t, err, plumber.ErrFileNotFound)
}

// fakeEnv is a minimal Environment that resolves expressions by exact
// name, standing in for whatever annotation-driven environment a real
// loader would build.
type fakeEnv map[string]any

func (e fakeEnv) Resolve(expr string) (any, error) {
	v, ok := e[expr]
	if !ok {
		return nil, plumber.ErrBadEntrypoint
	}
	return v, nil
}
