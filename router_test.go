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
)

func handlerValue(v any) HandlerFunc {
	return func(args *Args) (any, error) { return v, nil }
}

func TestRouter_TrailingSlashOff(t *testing.T) {
	r := MustNew()
	_, err := r.GET("/trailslash", handlerValue("ok"))
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/trailslash", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = r.Call(httptest.NewRequest(http.MethodGet, "/trailslash/", nil))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = r.Call(httptest.NewRequest(http.MethodPost, "/trailslash", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, "GET", res.Header.Get("Allow"))
}

func TestRouter_TrailingSlashRedirectPreservesQuery(t *testing.T) {
	r := MustNew(WithTrailingSlash(TrailingSlashRedirect))
	_, err := r.GET("/get/", handlerValue("ok"))
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/get?a=1", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
	assert.Equal(t, "/get/?a=1", res.Header.Get("Location"))
}

func TestRouter_MountShadowedByLaterParentEndpoint(t *testing.T) {
	parent := MustNew()
	child := MustNew()
	_, err := child.GET("/", handlerValue(1))
	require.NoError(t, err)
	parent.Mount("/subpath", child)

	_, err = parent.GET("/subpath/", handlerValue(2))
	require.NoError(t, err)

	res := parent.Call(httptest.NewRequest(http.MethodGet, "/subpath/", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `2`, string(res.Body))
}

func TestRouter_MountDelegatesSuffix(t *testing.T) {
	parent := MustNew()
	child := MustNew()
	_, err := child.GET("/b/c/f", handlerValue("leaf"))
	require.NoError(t, err)
	parent.Mount("/a", child)

	res := parent.Call(httptest.NewRequest(http.MethodGet, "/a/b/c/f", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `"leaf"`, string(res.Body))
}

func TestRouter_HookOrdering(t *testing.T) {
	var log []string
	r := MustNew()
	require.NoError(t, r.RegisterHook(HookPreroute, PrerouteHook(func(scratch map[string]any, req *Request, res *Response) error {
		log = append(log, "preroute")
		return nil
	})))
	require.NoError(t, r.RegisterHook(HookPostroute, PostrouteHook(func(scratch map[string]any, req *Request, res *Response, value any) (any, error) {
		log = append(log, "postroute")
		return value, nil
	})))
	require.NoError(t, r.RegisterHook(HookPreserialize, PreserializeHook(func(scratch map[string]any, req *Request, res *Response, value any) (any, error) {
		log = append(log, "preserialize")
		return value, nil
	})))
	require.NoError(t, r.RegisterHook(HookPostserialize, PostserializeHook(func(scratch map[string]any, req *Request, res *Response, response *Response) (*Response, error) {
		log = append(log, "postserialize")
		return response, nil
	})))
	_, err := r.GET("/", func(args *Args) (any, error) {
		log = append(log, "exec")
		return "ok", nil
	})
	require.NoError(t, err)

	r.Call(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"preroute", "exec", "postroute", "preserialize", "postserialize"}, log)
}

func TestRouter_PostserializeRewritesBody(t *testing.T) {
	r := MustNew()
	require.NoError(t, r.RegisterHook(HookPostserialize, PostserializeHook(func(scratch map[string]any, req *Request, res *Response, response *Response) (*Response, error) {
		response.Body = []byte("new val")
		return response, nil
	})))
	_, err := r.GET("/", handlerValue("ignored"))
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "new val", string(res.Body))
}

func TestRouter_FilterPreemption(t *testing.T) {
	r := MustNew()
	var ran []string
	_, err := r.Filter("auth", func(args *Args) FilterResult {
		ran = append(ran, "auth")
		return Forward()
	})
	require.NoError(t, err)
	_, err = r.Filter("logging", func(args *Args) FilterResult {
		ran = append(ran, "logging")
		return Forward()
	})
	require.NoError(t, err)
	_, err = r.Filter("ratelimit", func(args *Args) FilterResult {
		ran = append(ran, "ratelimit")
		return Forward()
	})
	require.NoError(t, err)

	// Pre-empting "logging" skips it and everything registered before it
	// (auth), leaving only ratelimit to run.
	_, err = r.GET("/skip", handlerValue("ok"), WithPreempt("logging"))
	require.NoError(t, err)

	r.Call(httptest.NewRequest(http.MethodGet, "/skip", nil))
	assert.Equal(t, []string{"ratelimit"}, ran)
}

func TestRouter_FilterReplyShortCircuits(t *testing.T) {
	r := MustNew()
	_, err := r.Filter("block", func(args *Args) FilterResult {
		return Reply("blocked")
	})
	require.NoError(t, err)
	execRan := false
	_, err = r.GET("/", func(args *Args) (any, error) {
		execRan = true
		return "ok", nil
	})
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, execRan)
	assert.JSONEq(t, `"blocked"`, string(res.Body))
}

func TestRouter_TypedCapture(t *testing.T) {
	r := MustNew()
	_, err := r.GET("/users/<id:int>", func(args *Args) (any, error) {
		id, _ := args.Get("id")
		return id, nil
	})
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/users/42", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `42`, string(res.Body))

	res = r.Call(httptest.NewRequest(http.MethodGet, "/users/not-a-number", nil))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRouter_RemoveHandle(t *testing.T) {
	r := MustNew()
	_, err := r.GET("/x", handlerValue("ok"))
	require.NoError(t, err)

	assert.True(t, r.RemoveHandle("GET", "/x"))
	assert.False(t, r.RemoveHandle("GET", "/x"))

	res := r.Call(httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRouter_ErrorHandlerRunsOnHandlerFailure(t *testing.T) {
	r := MustNew()
	_, err := r.GET("/boom", func(args *Args) (any, error) {
		return nil, assert.AnError
	})
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestRouter_NamedSerializerSelectedByEndpoint(t *testing.T) {
	plain := SerializerFunc(func(req *Request, res *Response, value any) error {
		res.StatusCode = http.StatusOK
		res.Header.Set("Content-Type", "text/plain; charset=utf-8")
		res.Body = []byte(value.(string))
		return nil
	})
	r := MustNew(WithNamedSerializer("plain", plain))
	_, err := r.GET("/greeting", handlerValue("hello"), WithSerializer("plain"))
	require.NoError(t, err)
	_, err = r.GET("/default", handlerValue("hello"))
	require.NoError(t, err)

	res := r.Call(httptest.NewRequest(http.MethodGet, "/greeting", nil))
	assert.Equal(t, "text/plain; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Equal(t, "hello", string(res.Body))

	res = r.Call(httptest.NewRequest(http.MethodGet, "/default", nil))
	assert.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))
	assert.JSONEq(t, `"hello"`, string(res.Body))
}

func TestRouter_DuplicateAndReservedFilterNames(t *testing.T) {
	r := MustNew()
	_, err := r.Filter("dup", func(args *Args) FilterResult { return Forward() })
	require.NoError(t, err)
	_, err = r.Filter("dup", func(args *Args) FilterResult { return Forward() })
	assert.ErrorIs(t, err, ErrDuplicateFilterName)

	_, err = r.Filter("preroute", func(args *Args) FilterResult { return Forward() })
	assert.ErrorIs(t, err, ErrReservedFilterName)
}
