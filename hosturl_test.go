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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHostURL(t *testing.T) {
	cases := []struct {
		name            string
		scheme, host    string
		port            int
		rewriteLoopback bool
		path            []string
		want            string
	}{
		{"plain", "http", "example.com", 80, false, nil, "http://example.com:80"},
		{"no port", "http", "example.com", 0, false, nil, "http://example.com"},
		{"ipv6 bracketed", "http", "::1", 8080, false, nil, "http://[::1]:8080"},
		{"ipv6 already bracketed", "http", "[::1]", 8080, false, nil, "http://[::1]:8080"},
		{"loopback rewrite ipv4", "http", "0.0.0.0", 3000, true, nil, "http://127.0.0.1:3000"},
		{"loopback rewrite ipv6", "http", "::", 3000, true, nil, "http://[::1]:3000"},
		{"no rewrite when disabled", "http", "0.0.0.0", 3000, false, nil, "http://0.0.0.0:3000"},
		{"path appended", "https", "api.example.com", 443, false, []string{"v1", "/users"}, "https://api.example.com:443/v1/users"},
		{"empty path segments skipped", "http", "h", 1, false, []string{"", "a"}, "http://h:1/a"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatHostURL(tc.scheme, tc.host, tc.port, tc.rewriteLoopback, tc.path...)
			assert.Equal(t, tc.want, got)
		})
	}
}
