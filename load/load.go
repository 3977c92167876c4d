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

// Package load bridges an external annotation parser's output into
// Router builder calls: it resolves a file-or-directory input, an
// optional entrypoint, and a default definition file, and turns the
// parsed descriptors into Handle/Filter/Mount calls. The parser itself
// (the thing that produces the descriptors from source) is an external
// collaborator, named only at this package's input boundary.
package load

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JosiahParry/plumber"
)

// DefaultDefinitionFile is looked up in a directory when no entrypoint
// is registered for it, case-sensitively first and then case-
// insensitively (§4.8's fallback chain, supplemented per SPEC_FULL §4).
const DefaultDefinitionFile = "plumber.json"

// entrypointBase is the filename stem (sans extension) that marks a
// directory's entrypoint, mirroring the source system's entrypoint.R.
const entrypointBase = "entrypoint"

// EndpointDescriptor is one parsed endpoint definition, as the external
// annotation parser would yield it per spec §6.
type EndpointDescriptor struct {
	Verbs      []string       `json:"verbs"`
	Path       string         `json:"path"`
	Handler    string         `json:"handler"`
	Env        string         `json:"env"`
	Preempt    string         `json:"preempt,omitempty"`
	Serializer string         `json:"serializer,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// FilterDescriptor is one parsed filter definition.
type FilterDescriptor struct {
	Name    string `json:"name"`
	Handler string `json:"handler"`
	Env     string `json:"env"`
}

// StaticMountDescriptor is one parsed static-asset mount.
type StaticMountDescriptor struct {
	LocalPath    string `json:"local_path"`
	PublicPrefix string `json:"public_prefix"`
}

// optionsDescriptor carries the recognized router configuration keys
// from §6 that a definition file may set.
type optionsDescriptor struct {
	TrailingSlash  string `json:"trailing_slash,omitempty"`
	ParsePostBody  bool   `json:"parse_post_body,omitempty"`
}

// Definition is a whole parsed route definition: either a flat set of
// endpoints/filters/mounts, or a reference to a registered entrypoint —
// never both (ConflictingArgs, mirroring the core's own handle() rule).
type Definition struct {
	Entrypoint   string                  `json:"entrypoint,omitempty"`
	Endpoints    []EndpointDescriptor    `json:"endpoints,omitempty"`
	Filters      []FilterDescriptor      `json:"filters,omitempty"`
	StaticMounts []StaticMountDescriptor `json:"static_mounts,omitempty"`
	Options      *optionsDescriptor      `json:"options,omitempty"`
}

// Entrypoint is a build function producing a runnable Router, the Go
// stand-in for the source system's "script that returns a router":
// since this is compiled Go, entrypoints are registered ahead of time
// under a name rather than evaluated from source, the same way
// database/sql drivers or image formats register themselves.
type Entrypoint func() (*plumber.Router, error)

var entrypoints = map[string]Entrypoint{}

// RegisterEntrypoint associates name (the base filename a directory's
// entrypoint marker would carry, e.g. "entrypoint") with build. Load
// looks this registry up when it finds a directory's entrypoint marker.
func RegisterEntrypoint(name string, build Entrypoint) {
	entrypoints[name] = build
}

// Load resolves path (file or directory) into a runnable Router. envs
// supplies the evaluation environments referenced by any deferred
// handler/filter expression in the loaded definition.
func Load(path string, envs map[string]plumber.Environment) (*plumber.Router, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, plumber.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadDir(path, envs)
	}
	return loadFile(path, envs)
}

func loadDir(dir string, envs map[string]plumber.Environment) (*plumber.Router, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if stem != entrypointBase {
			continue
		}
		build, ok := entrypoints[entry.Name()]
		if !ok {
			build, ok = entrypoints[stem]
		}
		if !ok {
			return nil, plumber.ErrBadEntrypoint
		}
		r, err := build()
		if err != nil || r == nil {
			return nil, plumber.ErrBadEntrypoint
		}
		return r, nil
	}

	exact := filepath.Join(dir, DefaultDefinitionFile)
	if _, err := os.Stat(exact); err == nil {
		return loadFile(exact, envs)
	}

	lower := strings.ToLower(DefaultDefinitionFile)
	for _, entry := range entries {
		if !entry.IsDir() && strings.ToLower(entry.Name()) == lower {
			return loadFile(filepath.Join(dir, entry.Name()), envs)
		}
	}

	return nil, plumber.ErrNoDefinitionFound
}

func loadFile(path string, envs map[string]plumber.Environment) (*plumber.Router, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, plumber.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, plumber.ErrIsDirectory
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: reading %s: %w", path, err)
	}

	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("load: decoding %s: %w", path, err)
	}
	return Build(def, envs)
}

// Build turns an already-parsed Definition into a runnable Router. It is
// the seam Load calls into, and is exported so a caller that already has
// a Definition (from a non-file source) can skip file resolution.
func Build(def Definition, envs map[string]plumber.Environment) (*plumber.Router, error) {
	hasEntrypoint := def.Entrypoint != ""
	hasInline := len(def.Endpoints) > 0 || len(def.Filters) > 0 || len(def.StaticMounts) > 0
	if hasEntrypoint && hasInline {
		return nil, plumber.ErrConflictingArgs
	}
	if hasEntrypoint {
		build, ok := entrypoints[def.Entrypoint]
		if !ok {
			return nil, plumber.ErrBadEntrypoint
		}
		r, err := build()
		if err != nil || r == nil {
			return nil, plumber.ErrBadEntrypoint
		}
		return r, nil
	}

	opts := buildOptions(def.Options)
	for id, env := range envs {
		opts = append(opts, plumber.WithEvaluationEnvironment(id, env))
	}

	r, err := plumber.New(opts...)
	if err != nil {
		return nil, err
	}

	for _, f := range def.Filters {
		if _, err := r.FilterDeferred(f.Name, f.Handler, f.Env); err != nil {
			return nil, fmt.Errorf("load: filter %q: %w", f.Name, err)
		}
	}
	for _, sm := range def.StaticMounts {
		r.MountStatic(sm.PublicPrefix, sm.LocalPath)
	}
	for _, e := range def.Endpoints {
		var epOpts []plumber.EndpointOption
		if e.Preempt != "" {
			epOpts = append(epOpts, plumber.WithPreempt(e.Preempt))
		}
		if e.Serializer != "" {
			epOpts = append(epOpts, plumber.WithSerializer(e.Serializer))
		}
		if e.Metadata != nil {
			epOpts = append(epOpts, plumber.WithMetadata(e.Metadata))
		}
		if _, err := r.HandleDeferred(e.Verbs, e.Path, e.Handler, e.Env, epOpts...); err != nil {
			return nil, fmt.Errorf("load: endpoint %s %q: %w", strings.Join(e.Verbs, ","), e.Path, err)
		}
	}

	return r, nil
}

func buildOptions(od *optionsDescriptor) []plumber.Option {
	if od == nil {
		return nil
	}
	var opts []plumber.Option
	switch od.TrailingSlash {
	case "strict-404":
		opts = append(opts, plumber.WithTrailingSlash(plumber.TrailingSlashStrict404))
	case "redirect":
		opts = append(opts, plumber.WithTrailingSlash(plumber.TrailingSlashRedirect))
	}
	if od.ParsePostBody {
		opts = append(opts, plumber.WithParsePostBody(true))
	}
	return opts
}
