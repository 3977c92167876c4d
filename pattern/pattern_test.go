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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_EmptyPatternIsRoot(t *testing.T) {
	p, err := Compile("")
	require.NoError(t, err)
	assert.Equal(t, "", p.String())
	caps, ok := p.Match("/")
	assert.True(t, ok)
	assert.Empty(t, caps)
}

func TestCompile_LeadingSlashAdded(t *testing.T) {
	p, err := Compile("a/b")
	require.NoError(t, err)
	_, ok := p.Match("/a/b")
	assert.True(t, ok)
}

func TestCompile_MalformedBraces(t *testing.T) {
	cases := []string{"/a/<name", "/a/name>", "/a/<<name>>", "/a/<>"}
	for _, c := range cases {
		_, err := Compile(c)
		assert.ErrorIs(t, err, ErrMalformed, "pattern %q", c)
	}
}

func TestCompile_UnknownTypeTag(t *testing.T) {
	_, err := Compile("/a/<id:uuid>")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestCompile_TypeAliases(t *testing.T) {
	p, err := Compile("/a/<flag:logical>/<amount:numeric>")
	require.NoError(t, err)
	caps := p.Captures()
	require.Len(t, caps, 2)
	assert.Equal(t, Bool, caps[0].Type)
	assert.Equal(t, Double, caps[1].Type)
}

func TestMatch_Literal_CaseSensitive(t *testing.T) {
	p := MustCompile("/Hello")
	_, ok := p.Match("/hello")
	assert.False(t, ok)
	_, ok = p.Match("/Hello")
	assert.True(t, ok)
}

func TestMatch_TypedCaptures(t *testing.T) {
	p := MustCompile("/a/<name>/b/<id:int>")
	caps, ok := p.Match("/a/frank/b/42")
	require.True(t, ok)
	assert.Equal(t, "frank", caps["name"])
	assert.Equal(t, "42", caps["id"])

	_, ok = p.Match("/a/frank/b/notanint")
	assert.False(t, ok, "failed type validation must be no-match, not error")
}

func TestMatch_Double(t *testing.T) {
	p := MustCompile("/price/<amount:double>")
	_, ok := p.Match("/price/19.99")
	assert.True(t, ok)
	_, ok = p.Match("/price/19.99e2")
	assert.True(t, ok)
	_, ok = p.Match("/price/nope")
	assert.False(t, ok)
}

func TestMatch_Bool(t *testing.T) {
	p := MustCompile("/flag/<v:bool>")
	for _, v := range []string{"true", "FALSE", "0", "1", "yes", "No"} {
		_, ok := p.Match("/flag/" + v)
		assert.True(t, ok, "value %q should validate as bool", v)
	}
	_, ok := p.Match("/flag/maybe")
	assert.False(t, ok)
}

func TestMatch_StringCapture_NoSlash(t *testing.T) {
	p := MustCompile("/s/<v>")
	_, ok := p.Match("/s/a%2Fb") // encoded, no literal slash
	assert.True(t, ok)
}

func TestMatchPrefix_ForSubrouters(t *testing.T) {
	p := MustCompile("/api")
	caps, rest, ok := p.MatchPrefix("/api/users/1")
	require.True(t, ok)
	assert.Empty(t, caps)
	assert.Equal(t, "/users/1", rest)

	_, rest, ok = p.MatchPrefix("/api")
	require.True(t, ok)
	assert.Equal(t, "/", rest)
}

func TestCaptures_Order(t *testing.T) {
	p := MustCompile("/a/<x>/b/<y:int>/c/<z:bool>")
	caps := p.Captures()
	require.Len(t, caps, 3)
	assert.Equal(t, "x", caps[0].Name)
	assert.Equal(t, "y", caps[1].Name)
	assert.Equal(t, "z", caps[2].Name)
}
