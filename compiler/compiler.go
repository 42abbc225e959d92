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

package compiler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedParameter indicates a parameter token that is not of the
	// form {name} or {name:type}.
	ErrMalformedParameter = errors.New("malformed parameter token")

	// ErrDuplicateParameter indicates that the same parameter name appears
	// more than once in a single template.
	ErrDuplicateParameter = errors.New("duplicate parameter name")

	// ErrUnknownParamType indicates an unrecognized type tag in a parameter token.
	ErrUnknownParamType = errors.New("unknown parameter type")
)

// ParamType identifies the grammar a parameter value must satisfy.
type ParamType uint8

const (
	// TypeDefault accepts any token that passes the generic security checks.
	TypeDefault ParamType = iota
	// TypeInt accepts one or more ASCII digits.
	TypeInt
	// TypeSlug accepts lowercase letters, digits, and interior hyphens.
	TypeSlug
	// TypeUUID accepts the canonical hyphenated 8-4-4-4-12 hexadecimal form.
	TypeUUID
)

// String returns the type tag as it appears in templates.
func (t ParamType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeSlug:
		return "slug"
	case TypeUUID:
		return "uuid"
	default:
		return "default"
	}
}

// ParseParamType maps a template type tag to its ParamType.
// An empty tag selects TypeDefault.
func ParseParamType(tag string) (ParamType, error) {
	switch tag {
	case "":
		return TypeDefault, nil
	case "int":
		return TypeInt, nil
	case "slug":
		return TypeSlug, nil
	case "uuid":
		return TypeUUID, nil
	default:
		return TypeDefault, fmt.Errorf("%w: %q", ErrUnknownParamType, tag)
	}
}

// Segment is one compiled piece of a path template: either a literal
// that must match a request segment verbatim, or a named, typed parameter.
// Segment order is significant for matching.
type Segment struct {
	// Param is true for parameter segments, false for literals.
	Param bool `msgpack:"param"`

	// Value holds the literal text, or the parameter name for parameter
	// segments.
	Value string `msgpack:"value"`

	// Type is the parameter grammar. Meaningless for literal segments.
	Type ParamType `msgpack:"type"`
}

// Compile turns a path template into its ordered segment sequence.
//
// The template is split on '/'; each non-empty token either matches the
// parameter form {name} / {name:type} or is kept as a literal. Parameter
// names must be unique within one template, and type tags must be known.
//
// Compile does not check template-level invariants (leading slash, length);
// those are registration-time checks owned by the route package.
//
// Example:
//
//	segs, err := compiler.Compile("/user/{id:int}/posts/{slug:slug}")
//	// [{literal "user"} {param "id" int} {literal "posts"} {param "slug" slug}]
func Compile(template string) ([]Segment, error) {
	trimmed := strings.Trim(template, "/")
	if trimmed == "" {
		return nil, nil
	}

	tokens := strings.Split(trimmed, "/")
	segments := make([]Segment, 0, len(tokens))

	var seen map[string]struct{}

	for _, token := range tokens {
		if token == "" {
			continue
		}

		if !strings.HasPrefix(token, "{") {
			segments = append(segments, Segment{Value: token})
			continue
		}

		name, typ, err := parseParamToken(token)
		if err != nil {
			return nil, err
		}

		if seen == nil {
			seen = make(map[string]struct{}, 4)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q in template %q", ErrDuplicateParameter, name, template)
		}
		seen[name] = struct{}{}

		segments = append(segments, Segment{Param: true, Value: name, Type: typ})
	}

	return segments, nil
}

// parseParamToken parses a {name} or {name:type} token.
func parseParamToken(token string) (string, ParamType, error) {
	if len(token) < 3 || token[len(token)-1] != '}' {
		return "", TypeDefault, fmt.Errorf("%w: %q", ErrMalformedParameter, token)
	}

	body := token[1 : len(token)-1]
	name := body
	tag := ""

	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		name = body[:idx]
		tag = body[idx+1:]
	}

	if name == "" || strings.ContainsAny(name, "{}/:") {
		return "", TypeDefault, fmt.Errorf("%w: %q", ErrMalformedParameter, token)
	}

	typ, err := ParseParamType(tag)
	if err != nil {
		return "", TypeDefault, fmt.Errorf("%w (token %q)", err, token)
	}

	return name, typ, nil
}

// ParamNames returns the parameter names of a segment sequence in order.
func ParamNames(segments []Segment) []string {
	var names []string
	for _, s := range segments {
		if s.Param {
			names = append(names, s.Value)
		}
	}
	return names
}

// IsStatic reports whether a segment sequence contains no parameters,
// making the template eligible for the static hash index.
func IsStatic(segments []Segment) bool {
	for _, s := range segments {
		if s.Param {
			return false
		}
	}
	return true
}
