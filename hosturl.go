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
	"strconv"
	"strings"
)

// FormatHostURL assembles scheme://host[:port][/path] per §6 (":port" is
// left out when port is 0), bracketing
// an IPv6 host literal and, when rewriteLoopback is set, canonicalizing
// the common "listen on every interface" addresses to a host a client
// can actually dial: 0.0.0.0 becomes 127.0.0.1 and :: becomes [::1].
func FormatHostURL(scheme, host string, port int, rewriteLoopback bool, path ...string) string {
	if rewriteLoopback {
		switch host {
		case "0.0.0.0":
			host = "127.0.0.1"
		case "::":
			host = "::1"
		}
	}
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	if port != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(port))
	}
	for _, p := range path {
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			b.WriteByte('/')
		}
		b.WriteString(p)
	}
	return b.String()
}
