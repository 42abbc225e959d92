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
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/waymark-dev/waymark/config"
	"github.com/waymark-dev/waymark/metrics"
	"github.com/waymark-dev/waymark/params"
	"github.com/waymark-dev/waymark/route"
)

// Engine owns one route table for its process lifetime.
//
// Lifecycle: routes are registered during a single-threaded startup
// window, then Freeze publishes the compiled table. After Freeze,
// Match, HasRoute, and URL are pure reads over the frozen table and run
// fully in parallel without locking; registration returns
// ErrTableFrozen. Replacing the table means building a new Engine and
// swapping it in at the callsite.
type Engine struct {
	mu    sync.Mutex // guards build during the registration phase
	build *routeTable

	// table is the published, immutable route table. Nil until Freeze.
	table atomic.Pointer[routeTable]

	cfg     config.Config
	allowed map[string]struct{} // strict-mode subdomain allow-list

	log         *slog.Logger
	rec         *metrics.Recorder
	diagnostics DiagnosticHandler

	bloomSize      uint64
	bloomHashFuncs int
}

// Match is a successful dispatch decision: the handler to invoke and the
// validated path parameters, ready for the external dispatcher.
type Match struct {
	HandlerID string
	Params    map[string]string
	Route     *route.Definition
}

// Option configures an Engine.
type Option func(*Engine)

// New creates an Engine and validates its configuration.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		build:          newRouteTable(),
		log:            slog.Default(),
		bloomSize:      1000,
		bloomHashFuncs: 3,
	}
	for _, o := range opts {
		o(e)
	}

	if e.bloomSize == 0 {
		return nil, ErrBloomFilterSizeZero
	}
	e.bloomHashFuncs = max(1, min(e.bloomHashFuncs, 10))

	e.allowed = make(map[string]struct{}, len(e.cfg.AllowedSubdomains))
	for _, s := range e.cfg.AllowedSubdomains {
		e.allowed[s] = struct{}{}
	}

	return e, nil
}

// MustNew is New but panics on configuration errors. Intended for
// startup code where a bad option is fatal anyway.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// AddRoute registers one route declaration.
//
// All checks run synchronously, in order, each with its own error kind:
// method, leading slash, template length, subdomain syntax and strict
// allow-listing, then duplicate name. A declaration that fails any check
// never becomes observable in the table.
func (e *Engine) AddRoute(method, path, handlerID string, middleware []string, name, subdomain string) error {
	_, err := e.Register(route.Spec{
		Method:     method,
		Path:       path,
		HandlerID:  handlerID,
		Middleware: middleware,
		Name:       name,
		Subdomain:  subdomain,
	})
	return err
}

// Register compiles and registers a declaration, returning the immutable
// definition that entered the table.
func (e *Engine) Register(spec route.Spec) (*route.Definition, error) {
	if e.frozen() {
		return nil, ErrTableFrozen
	}

	d, err := route.Compile(spec)
	if err != nil {
		return nil, err
	}

	if d.Subdomain != "" && e.cfg.StrictSubdomains {
		if _, ok := e.allowed[d.Subdomain]; !ok {
			return nil, fmt.Errorf("%w: %q", route.ErrSubdomainNotAllowed, d.Subdomain)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen() {
		return nil, ErrTableFrozen
	}

	if d.Name != "" {
		if _, taken := e.build.names[d.Name]; taken {
			return nil, fmt.Errorf("%w: %q", route.ErrDuplicateName, d.Name)
		}
	}

	e.build.insert(d)
	e.rec.RecordRegistration()
	e.diag(DiagnosticEvent{
		Kind:    DiagRouteRegistered,
		Message: "route registered",
		Fields:  map[string]any{"method": d.Method, "template": d.Template, "name": d.Name},
	})

	return d, nil
}

// LoadDefinitions bulk-inserts already-compiled definitions, the cache
// restore path. Name uniqueness is still enforced; template-level checks
// ran when the definitions were first compiled.
func (e *Engine) LoadDefinitions(defs []*route.Definition) error {
	if e.frozen() {
		return ErrTableFrozen
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, d := range defs {
		if d.Name != "" {
			if _, taken := e.build.names[d.Name]; taken {
				return fmt.Errorf("%w: %q", route.ErrDuplicateName, d.Name)
			}
		}
		e.build.insert(d)
	}
	return nil
}

// Freeze compiles the static index's bloom filter and publishes the
// table. Idempotent; the first call wins. After Freeze all lookups are
// lock-free.
func (e *Engine) Freeze() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen() {
		return
	}

	t := e.build
	t.compileBloom(e.bloomSize, e.bloomHashFuncs)
	e.table.Store(t)

	if e.cfg.Debug {
		e.log.Debug("route table frozen",
			"routes", len(t.order),
			"static", len(t.static),
			"named", len(t.names))
	}
}

func (e *Engine) frozen() bool {
	return e.table.Load() != nil
}

// Match resolves a request to a dispatch decision.
//
// The static method+path index is consulted first; dynamic routes then
// walk the method's tree with literal-before-parametric priority and
// backtracking. The host's leftmost label is gated before any success is
// returned. Parameter values are validated only after a full structural
// match.
//
// Errors: *SubdomainError (strict mode), *MethodNotAllowedError,
// ErrRouteNotFound, *params.Error, ErrTableNotFrozen.
func (e *Engine) Match(method, host, path string) (*Match, error) {
	t := e.table.Load()
	if t == nil {
		return nil, ErrTableNotFrozen
	}

	start := time.Now()
	m, err := e.match(t, method, host, path)
	e.rec.RecordDispatch(time.Since(start), err == nil)
	return m, err
}

func (e *Engine) match(t *routeTable, method, host, path string) (*Match, error) {
	label := subdomainLabel(host, e.cfg.BaseDomain)

	// Strict mode gates the host before path matching: a label outside
	// the allow-list is rejected even when no subdomain-scoped route
	// exists, with an error distinct from "no route".
	if e.cfg.StrictSubdomains && label != "" {
		if _, ok := e.allowed[label]; !ok {
			e.diag(DiagnosticEvent{
				Kind:    DiagStrictSubdomainReject,
				Message: "host rejected by strict subdomain mode",
				Fields:  map[string]any{"host": host, "label": label},
			})
			return nil, &SubdomainError{Host: host, Label: label}
		}
	}

	segments := splitPath(path)
	norm := normalizePath(segments)

	structural := false

	// Static fast path: exact method+path key, no tree traversal.
	d := t.lookupStatic(method, norm)
	if d == nil {
		d = t.matchTree(method, segments)
	}
	if d != nil {
		structural = true
		if !subdomainAccepts(d.Subdomain, label) {
			d = nil
		}
	}

	if d == nil {
		// The requested method structurally matched but the subdomain
		// constraint did not; other methods are irrelevant then.
		if !structural {
			if allowed := t.allowedMethodsExcept(method, norm, segments); len(allowed) > 0 {
				return nil, &MethodNotAllowedError{Method: method, Path: norm, Allowed: allowed}
			}
		}
		return nil, ErrRouteNotFound
	}

	values, err := bindParams(d, segments)
	if err != nil {
		return nil, err
	}

	return &Match{HandlerID: d.HandlerID, Params: values, Route: d}, nil
}

// bindParams extracts and validates parameter values positionally from
// the matched leaf's compiled segments.
func bindParams(d *route.Definition, segments []string) (map[string]string, error) {
	if len(d.ParamNames) == 0 {
		return nil, nil
	}

	values := make(map[string]string, len(d.ParamNames))
	for i, seg := range d.Segments {
		if !seg.Param {
			continue
		}
		v, err := params.Validate(seg.Value, segments[i], seg.Type)
		if err != nil {
			return nil, err
		}
		values[seg.Value] = v
	}
	return values, nil
}

// subdomainAccepts applies a route's subdomain constraint to the
// extracted host label. A nil constraint accepts any host consistent
// with the configured base domain; a concrete constraint requires exact
// equality.
func subdomainAccepts(constraint, label string) bool {
	if constraint == "" {
		return true
	}
	return constraint == label
}

// allowedMethodsExcept collects methods other than the requested one
// whose tables structurally match the path.
func (t *routeTable) allowedMethodsExcept(method, path string, segments []string) []string {
	var allowed []string
	for _, m := range route.Methods {
		if m == method {
			continue
		}
		if t.matchAny(m, path, segments) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// AllowedMethods returns every method with a template structurally
// matching the path, in the method enumeration's order. Empty when no
// method matches.
func (e *Engine) AllowedMethods(path string) []string {
	t := e.table.Load()
	if t == nil {
		e.mu.Lock()
		t = e.build
		defer e.mu.Unlock()
	}
	segments := splitPath(path)
	return t.allowedMethods(normalizePath(segments), segments)
}

// HasRoute reports whether a template is registered that structurally
// matches the method and path. Before Freeze it consults the build
// table, so startup code can probe its own registrations.
func (e *Engine) HasRoute(method, path string) bool {
	t := e.table.Load()
	if t == nil {
		e.mu.Lock()
		t = e.build
		defer e.mu.Unlock()
	}
	segments := splitPath(path)
	return t.matchAny(method, normalizePath(segments), segments)
}

// Routes returns introspection records for every registered route, in
// registration order.
func (e *Engine) Routes() []route.Info {
	t := e.table.Load()
	if t == nil {
		e.mu.Lock()
		t = e.build
		defer e.mu.Unlock()
	}
	infos := make([]route.Info, 0, len(t.order))
	for _, d := range t.order {
		infos = append(infos, route.InfoFor(d))
	}
	return infos
}

// Definitions returns the registered definitions in registration order,
// the input to cache persistence.
func (e *Engine) Definitions() []*route.Definition {
	t := e.table.Load()
	if t == nil {
		e.mu.Lock()
		t = e.build
		defer e.mu.Unlock()
	}
	return append([]*route.Definition(nil), t.order...)
}

// Metrics returns the engine's dispatch telemetry recorder, or nil if
// none was configured.
func (e *Engine) Metrics() *metrics.Recorder { return e.rec }

func (e *Engine) diag(ev DiagnosticEvent) {
	if e.diagnostics != nil {
		e.diagnostics.OnDiagnostic(ev)
	}
}
