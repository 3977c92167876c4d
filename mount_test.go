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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Unmount(t *testing.T) {
	parent := MustNew()
	child := MustNew()
	_, err := child.GET("/", handlerValue("hi"))
	require.NoError(t, err)
	parent.Mount("/sub", child)

	res := parent.Call(httptest.NewRequest(http.MethodGet, "/sub", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)

	assert.True(t, parent.Unmount("/sub"))
	assert.False(t, parent.Unmount("/sub"), "removing an absent mount reports false")

	res = parent.Call(httptest.NewRequest(http.MethodGet, "/sub", nil))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func writeTestFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestRouter_MountStatic_ServesFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "hello.txt", "hello world")

	r := MustNew()
	r.MountStatic("/assets", dir)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/assets/hello.txt", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "hello world", string(res.Body))
}

func TestRouter_MountStatic_MissingFileIsOwnRouter404(t *testing.T) {
	dir := t.TempDir()

	r := MustNew()
	r.MountStatic("/assets", dir)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/assets/nope.txt", nil))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))
}

func TestRouter_MountStatic_PostserializeHookAppliesToServedFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "hello.txt", "hello world")

	r := MustNew()
	r.MountStatic("/assets", dir)
	require.NoError(t, r.RegisterHook(HookPostserialize, PostserializeHook(func(scratch map[string]any, req *Request, res *Response, response *Response) (*Response, error) {
		response.Header.Set("X-Injected", "1")
		return response, nil
	})))

	res := r.Call(httptest.NewRequest(http.MethodGet, "/assets/hello.txt", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "1", res.Header.Get("X-Injected"), "postserialize hooks must observe bytes served through MountStatic")
}

func TestRouter_Routes_ListsOwnAndMountedEndpointsButNotStatic(t *testing.T) {
	child := MustNew()
	_, err := child.GET("/f", handlerValue("leaf"))
	require.NoError(t, err)

	parent := MustNew()
	_, err = parent.GET("/a", handlerValue("a"))
	require.NoError(t, err)
	_, err = parent.POST("/a/b/c/f", handlerValue("ok"))
	require.NoError(t, err)
	parent.Mount("/v/b/c", child)
	parent.MountStatic("/static", t.TempDir())

	routes := parent.Routes()

	seen := map[string]bool{}
	for _, ri := range routes {
		seen[ri.Verb+" "+ri.Path] = true
	}
	assert.True(t, seen["GET /a"])
	assert.True(t, seen["POST /a/b/c/f"])
	assert.True(t, seen["GET /v/b/c/f"], "mounted subrouter routes are expanded with the mount prefix")

	for key := range seen {
		assert.NotContains(t, key, "/static", "static mounts contribute no Routes() entries")
	}
}
