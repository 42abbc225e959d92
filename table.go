// Copyright 2026 The Waymark Authors
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

package waymark

import (
	"hash/fnv"
	"net/http"
	"strings"

	"github.com/waymark-dev/waymark/compiler"
	"github.com/waymark-dev/waymark/route"
)

// methodTrees holds per-method tree roots resolved via switch, avoiding
// map hashing in the hot path.
type methodTrees struct {
	get     *node
	post    *node
	put     *node
	delete  *node
	patch   *node
	head    *node
	options *node
}

func (m *methodTrees) tree(method string) *node {
	switch method {
	case http.MethodGet:
		return m.get
	case http.MethodPost:
		return m.post
	case http.MethodPut:
		return m.put
	case http.MethodDelete:
		return m.delete
	case http.MethodPatch:
		return m.patch
	case http.MethodHead:
		return m.head
	case http.MethodOptions:
		return m.options
	default:
		return nil
	}
}

func (m *methodTrees) treeOrCreate(method string) *node {
	if t := m.tree(method); t != nil {
		return t
	}
	n := &node{}
	switch method {
	case http.MethodGet:
		m.get = n
	case http.MethodPost:
		m.post = n
	case http.MethodPut:
		m.put = n
	case http.MethodDelete:
		m.delete = n
	case http.MethodPatch:
		m.patch = n
	case http.MethodHead:
		m.head = n
	case http.MethodOptions:
		m.options = n
	}
	return n
}

// staticEntry is one parameter-free route in the static index. The
// normalized path is kept alongside the definition so a hash collision
// can never resolve to the wrong route.
type staticEntry struct {
	method string
	path   string
	def    *route.Definition
}

// routeTable is the frozen aggregate the engine matches against: the
// static method+path index (with its bloom filter) and the per-method
// dynamic trees. A table is built once during the single-threaded
// startup phase; after that every access is a lock-free read. Rebuilding
// means constructing a new table and atomically swapping it in.
type routeTable struct {
	static map[uint64][]*staticEntry
	bloom  *compiler.BloomFilter
	trees  methodTrees
	names  map[string]*route.Definition
	order  []*route.Definition
}

func newRouteTable() *routeTable {
	return &routeTable{
		static: make(map[uint64][]*staticEntry, 16),
		names:  make(map[string]*route.Definition, 16),
	}
}

// staticKeyHash hashes a method+path static index key with FNV-1a.
func staticKeyHash(method, path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(method))
	h.Write([]byte(path))
	return h.Sum64()
}

// normalizePath reduces a template or request path to its canonical
// lookup form: "/"-joined non-empty segments with a single leading
// slash. Empty components are dropped on both sides of matching, so
// registration and lookup agree.
func normalizePath(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// splitPath breaks a request path into non-empty segments. The returned
// slice aliases the input string; no per-segment allocation beyond the
// slice itself.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	segs := strings.Split(path, "/")
	out := segs[:0]
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// insert adds a compiled definition to the table. Name uniqueness has
// already been checked by the engine.
func (t *routeTable) insert(d *route.Definition) {
	t.order = append(t.order, d)
	if d.Name != "" {
		t.names[d.Name] = d
	}

	if d.Static() {
		key := staticPathOf(d)
		hash := staticKeyHash(d.Method, key)
		bucket := t.static[hash]
		for i, e := range bucket {
			if e.method == d.Method && e.path == key {
				bucket[i] = &staticEntry{method: d.Method, path: key, def: d}
				return
			}
		}
		t.static[hash] = append(bucket, &staticEntry{method: d.Method, path: key, def: d})
		return
	}

	t.trees.treeOrCreate(d.Method).insert(d)
}

// staticPathOf returns the normalized lookup path for a parameter-free
// definition.
func staticPathOf(d *route.Definition) string {
	segs := make([]string, len(d.Segments))
	for i, s := range d.Segments {
		segs[i] = s.Value
	}
	return normalizePath(segs)
}

// compileBloom builds the negative-lookup filter over the static index.
// Called once, at freeze time.
func (t *routeTable) compileBloom(size uint64, hashFuncs int) {
	size = max(size, 100)
	t.bloom = compiler.NewBloomFilter(size, hashFuncs)
	for _, bucket := range t.static {
		for _, e := range bucket {
			t.bloom.AddHash(staticKeyHash(e.method, e.path))
		}
	}
}

// lookupStatic is the O(1) fast path for parameter-free routes. It is
// checked before any tree traversal.
func (t *routeTable) lookupStatic(method, path string) *route.Definition {
	hash := staticKeyHash(method, path)

	// Small tables skip the filter; the map lookup is already cheap.
	if t.bloom != nil && len(t.static) >= 10 && !t.bloom.TestHash(hash) {
		return nil
	}

	for _, e := range t.static[hash] {
		if e.method == method && e.path == path {
			return e.def
		}
	}
	return nil
}

// matchTree runs the dynamic-route walk for one method.
func (t *routeTable) matchTree(method string, segments []string) *route.Definition {
	root := t.trees.tree(method)
	if root == nil {
		return nil
	}
	return root.match(segments)
}

// matchAny reports whether any template under the method matches the
// path structurally, static index included.
func (t *routeTable) matchAny(method, path string, segments []string) bool {
	if t.lookupStatic(method, path) != nil {
		return true
	}
	return t.matchTree(method, segments) != nil
}

// allowedMethods collects every method whose table structurally matches
// the path, in enumeration order.
func (t *routeTable) allowedMethods(path string, segments []string) []string {
	var allowed []string
	for _, m := range route.Methods {
		if t.matchAny(m, path, segments) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}
