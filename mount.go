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

import "strings"

// mountChild is anything a Mount can point at: a subrouter or a static
// handler. req.Raw.URL.Path is already rewritten to the mount-relative
// suffix by the time dispatch is called. A *Router's own dispatch method
// satisfies this interface directly, so a child router's own hooks,
// filters, and 404 handler apply unmodified and it runs its own complete
// pipeline before the parent ever sees a result. A *staticHandler's
// dispatch does none of that — it only fills in res from whatever
// http.FileServer wrote — so route() in dispatch.go special-cases it and
// runs it through the owning router's dispatchStatic instead of treating
// its mountChild.dispatch result as already fully pipelined.
type mountChild interface {
	dispatch(req *Request, res *Response) (any, error)
}

// mount is a (prefix, child) pair. Ordering within a router's mount list
// is insertion order.
type mount struct {
	prefix string
	child  mountChild
}

// normalizeMountPrefix appends "/" if absent, per §3's Mount data model.
func normalizeMountPrefix(prefix string) string {
	if prefix == "" {
		prefix = "/"
	}
	if prefix[0] != '/' {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// Mount attaches child under prefix. The prefix is normalized to end
// with "/"; the root prefix "/" is allowed. Mounting at a prefix that is
// already mounted appends a second entry rather than replacing the
// first — removal is by exact normalized prefix via Unmount.
func (r *Router) Mount(prefix string, child *Router) {
	r.mountMu.Lock()
	defer r.mountMu.Unlock()
	r.mounts = append(r.mounts, mount{prefix: normalizeMountPrefix(prefix), child: child})
}

// MountStatic attaches a static file handler under prefix, serving files
// from root via http.FileServer semantics. See static.go.
func (r *Router) MountStatic(prefix, root string) {
	r.mountMu.Lock()
	defer r.mountMu.Unlock()
	r.mounts = append(r.mounts, mount{prefix: normalizeMountPrefix(prefix), child: newStaticHandler(root)})
}

// Unmount removes the mount registered at prefix (normalized the same
// way Mount normalizes it). It silently succeeds when absent and
// reports whether something was actually removed.
func (r *Router) Unmount(prefix string) bool {
	prefix = normalizeMountPrefix(prefix)
	r.mountMu.Lock()
	defer r.mountMu.Unlock()
	for i, m := range r.mounts {
		if m.prefix == prefix {
			r.mounts = append(r.mounts[:i], r.mounts[i+1:]...)
			return true
		}
	}
	return false
}

// mountsSnapshot returns a copy of the mount list safe to range over
// without holding the lock during delegation.
func (r *Router) mountsSnapshot() []mount {
	r.mountMu.RLock()
	defer r.mountMu.RUnlock()
	out := make([]mount, len(r.mounts))
	copy(out, r.mounts)
	return out
}
