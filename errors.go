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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRouteNotFound indicates that no template in the requested method's
	// table matches the path.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMethodNotAllowed indicates that the path matches under a different
	// method. Use errors.As with *MethodNotAllowedError for the allowed set.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrInvalidSubdomain indicates a host whose leftmost label violates the
	// strict-mode allow-list.
	ErrInvalidSubdomain = errors.New("subdomain not allowed")

	// ErrTableFrozen indicates a registration attempted after Freeze.
	ErrTableFrozen = errors.New("route table is frozen")

	// ErrTableNotFrozen indicates a lookup attempted before Freeze.
	ErrTableNotFrozen = errors.New("route table not frozen yet")

	// ErrRouteNameUnknown indicates a reverse-routing lookup for a name that
	// was never registered.
	ErrRouteNameUnknown = errors.New("no route registered under name")

	// ErrMissingParameter indicates a reverse-routing call that did not
	// supply a value for a required template parameter.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrBloomFilterSizeZero indicates a zero bloom filter size option.
	ErrBloomFilterSizeZero = errors.New("bloom filter size must be non-zero")
)

// MethodNotAllowedError reports the set of methods that do match the
// requested path. It unwraps to ErrMethodNotAllowed.
type MethodNotAllowedError struct {
	Method  string   // requested method
	Path    string   // normalized request path
	Allowed []string // methods with a matching template, sorted
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed for %s (allowed: %s)",
		e.Method, e.Path, strings.Join(e.Allowed, ", "))
}

func (e *MethodNotAllowedError) Unwrap() error { return ErrMethodNotAllowed }

// SubdomainError reports a host rejected under strict subdomain mode.
// It unwraps to ErrInvalidSubdomain.
type SubdomainError struct {
	Host  string // inbound host as given
	Label string // extracted leftmost label
}

func (e *SubdomainError) Error() string {
	return fmt.Sprintf("host %q: subdomain label %q not in allow-list", e.Host, e.Label)
}

func (e *SubdomainError) Unwrap() error { return ErrInvalidSubdomain }
