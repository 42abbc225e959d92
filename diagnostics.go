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

// DiagnosticEvent represents an engine diagnostic or anomaly: an
// informational event that may indicate a configuration issue or a
// security concern. The engine functions correctly whether diagnostics
// are collected or not.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// DiagRouteRegistered is emitted for every successful registration.
	DiagRouteRegistered DiagnosticKind = "route_registered"

	// DiagStrictSubdomainReject is emitted when strict mode rejects a host.
	DiagStrictSubdomainReject DiagnosticKind = "strict_subdomain_reject"
)

// DiagnosticHandler receives diagnostic events. Implementations may log,
// emit metrics, or ignore them. Optional: without a handler, events are
// silently dropped.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}
