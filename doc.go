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

// Package waymark is a request-routing engine: it turns a registered set
// of method+path templates into a frozen table that deterministically
// resolves each incoming request to exactly one route, extracts and
// validates typed path parameters, and reverse-generates URLs from route
// names.
//
// The engine does not execute handlers, manage transport, or interpret
// middleware. It consumes already-extracted route declarations and
// produces a dispatch decision (handler identifier plus validated
// parameter map) or a typed error.
//
// # Templates
//
// Templates mix literal segments with named, optionally typed parameter
// placeholders:
//
//	/health
//	/user/{id:int}
//	/blog/{year:int}/{month:int}/{slug:slug}
//	/files/{name}
//
// Parameter types are int, slug, and uuid; an omitted type accepts any
// single segment passing the generic security checks.
//
// # Lifecycle
//
// Registration happens during a single-threaded startup window, then
// Freeze publishes the compiled table:
//
//	e := waymark.MustNew()
//	e.AddRoute(http.MethodGet, "/user/{id:int}", "users.show", nil, "users.show", "")
//	e.Freeze()
//
//	m, err := e.Match(http.MethodGet, "example.com", "/user/42")
//	// m.HandlerID == "users.show", m.Params["id"] == "42"
//
// After Freeze the table is immutable; Match, HasRoute, and URL run
// lock-free in parallel across request workers.
//
// Parameter-free templates resolve through an O(1) method+path hash
// index fronted by a bloom filter; parameterized templates walk a
// per-method tree where literal children win over parameter capture and
// the walk backtracks when a deeper match dead-ends.
//
// The cache package persists a compiled table across process restarts;
// the metrics package records dispatch telemetry; the config package
// loads the configuration surface from YAML or TOML.
package waymark
