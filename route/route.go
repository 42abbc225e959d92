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

package route

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/waymark-dev/waymark/compiler"
)

// MaxTemplateLength bounds the accepted path template length in bytes.
const MaxTemplateLength = 2048

var (
	// ErrInvalidMethod indicates a method outside the supported enumeration.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrPathNoLeadingSlash indicates a template that does not start with '/'.
	ErrPathNoLeadingSlash = errors.New("path template must start with '/'")

	// ErrPathTooLong indicates a template longer than MaxTemplateLength.
	ErrPathTooLong = errors.New("path template too long")

	// ErrInvalidSubdomain indicates a syntactically invalid subdomain label.
	ErrInvalidSubdomain = errors.New("invalid subdomain label")

	// ErrSubdomainNotAllowed indicates a subdomain outside the configured
	// allow-list under strict subdomain mode.
	ErrSubdomainNotAllowed = errors.New("subdomain not in allow-list")

	// ErrDuplicateName indicates a route name that is already registered.
	ErrDuplicateName = errors.New("duplicate route name")
)

// Methods is the closed set of HTTP methods the engine accepts.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodHead,
	http.MethodOptions,
}

// ValidMethod reports whether m belongs to the supported enumeration.
// Methods are matched case-sensitively, as HTTP requires.
func ValidMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Spec carries one route declaration as handed to the engine by an
// external discovery mechanism. The engine never inspects code artifacts
// itself; it only consumes already-extracted declarations.
type Spec struct {
	Method     string
	Path       string
	HandlerID  string
	Middleware []string
	Name       string
	Subdomain  string
}

// Definition is the immutable, canonical description of one compiled
// route. Definitions are created by Compile during the single-threaded
// startup window and never mutated afterwards.
type Definition struct {
	Method     string             `msgpack:"method"`
	Template   string             `msgpack:"template"`
	Segments   []compiler.Segment `msgpack:"segments"`
	ParamNames []string           `msgpack:"param_names"`
	HandlerID  string             `msgpack:"handler_id"`
	Middleware []string           `msgpack:"middleware"`
	Name       string             `msgpack:"name,omitempty"`
	Subdomain  string             `msgpack:"subdomain,omitempty"`
}

// Static reports whether the route has no parameter segments and is
// therefore eligible for the O(1) static index.
func (d *Definition) Static() bool {
	return compiler.IsStatic(d.Segments)
}

// Compile validates a declaration and derives its segment sequence.
//
// Checks run in a fixed order, each with a distinct error kind: method,
// leading slash, template length, subdomain syntax. The template itself
// is then compiled (duplicate parameter names and unknown type tags
// surface as compiler errors). Name uniqueness and strict-mode
// allow-listing are table-level checks owned by the engine.
func Compile(spec Spec) (*Definition, error) {
	if !ValidMethod(spec.Method) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, spec.Method)
	}

	if len(spec.Path) == 0 || spec.Path[0] != '/' {
		return nil, fmt.Errorf("%w: %q", ErrPathNoLeadingSlash, spec.Path)
	}

	if len(spec.Path) > MaxTemplateLength {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPathTooLong, len(spec.Path), MaxTemplateLength)
	}

	if spec.Subdomain != "" && !ValidSubdomainLabel(spec.Subdomain) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubdomain, spec.Subdomain)
	}

	segments, err := compiler.Compile(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("compile template %q: %w", spec.Path, err)
	}

	d := &Definition{
		Method:     spec.Method,
		Template:   spec.Path,
		Segments:   segments,
		ParamNames: compiler.ParamNames(segments),
		HandlerID:  spec.HandlerID,
		Middleware: append([]string(nil), spec.Middleware...),
		Name:       spec.Name,
		Subdomain:  spec.Subdomain,
	}

	return d, nil
}

// ValidSubdomainLabel reports whether s is a syntactically valid single
// DNS label: 1-63 bytes of lowercase letters, digits, and interior
// hyphens, with no dots. A label containing dots (and in particular
// "..") is never valid here.
func ValidSubdomainLabel(s string) bool {
	if len(s) == 0 || len(s) > 63 {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

// Info describes a registered route for introspection. Used for
// debugging, documentation generation, and monitoring.
type Info struct {
	Method     string   // HTTP method
	Template   string   // Path template (/user/{id:int})
	Name       string   // Route name, empty if unnamed
	HandlerID  string   // Opaque handler identifier
	Middleware []string // Middleware identifiers in order
	Subdomain  string   // Subdomain constraint, empty if none
	ParamCount int      // Number of path parameters
	IsStatic   bool     // True if eligible for the static index
}

// InfoFor builds the introspection record for a definition.
func InfoFor(d *Definition) Info {
	return Info{
		Method:     d.Method,
		Template:   d.Template,
		Name:       d.Name,
		HandlerID:  d.HandlerID,
		Middleware: append([]string(nil), d.Middleware...),
		Subdomain:  d.Subdomain,
		ParamCount: len(d.ParamNames),
		IsStatic:   d.Static(),
	}
}
