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

// Package params validates raw path-parameter values before they are
// exposed to any consumer.
//
// Validation is applied only to segments bound as parameters during a
// successful tree walk. The generic security checks (control bytes,
// traversal sequences, length) run on the percent-decoded form of the
// value; the type grammar then runs on the same decoded form.
package params

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/waymark-dev/waymark/compiler"
)

// MaxValueLength bounds parameter values in bytes, after percent-decoding.
const MaxValueLength = 255

var (
	// ErrEmpty indicates an empty raw value. A trailing slash with nothing
	// after it is not a parameter value.
	ErrEmpty = errors.New("empty parameter value")

	// ErrBadEncoding indicates a value whose percent-encoding cannot be decoded.
	ErrBadEncoding = errors.New("undecodable percent-encoding")

	// ErrControlCharacter indicates a NUL byte or other control character.
	ErrControlCharacter = errors.New("control character in parameter value")

	// ErrTraversal indicates a path-traversal sequence in the decoded value.
	ErrTraversal = errors.New("path traversal sequence in parameter value")

	// ErrTooLong indicates a decoded value longer than MaxValueLength.
	ErrTooLong = errors.New("parameter value too long")

	// ErrGrammar indicates a value that fails its type grammar.
	ErrGrammar = errors.New("parameter value does not match type grammar")
)

// Error reports a failed validation with the offending parameter name.
type Error struct {
	Param string // parameter name from the route template
	Value string // raw (pre-decoding) value from the request path
	Err   error  // one of the sentinel errors above
}

func (e *Error) Error() string {
	return fmt.Sprintf("parameter %q: %v", e.Param, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Validate checks a raw path segment bound to the named parameter and
// returns its decoded value. All security checks run before the value is
// returned; a non-nil error means the value must not reach any consumer.
func Validate(name, raw string, typ compiler.ParamType) (string, error) {
	if raw == "" {
		return "", &Error{Param: name, Value: raw, Err: ErrEmpty}
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", &Error{Param: name, Value: raw, Err: ErrBadEncoding}
	}

	for i := 0; i < len(decoded); i++ {
		if decoded[i] < 0x20 || decoded[i] == 0x7f {
			return "", &Error{Param: name, Value: raw, Err: ErrControlCharacter}
		}
	}

	// The traversal check runs on the decoded form so that encoded
	// variants like "..%2F" cannot slip through.
	if strings.Contains(decoded, "..") {
		return "", &Error{Param: name, Value: raw, Err: ErrTraversal}
	}

	if len(decoded) > MaxValueLength {
		return "", &Error{Param: name, Value: raw, Err: ErrTooLong}
	}

	if decoded == "" {
		return "", &Error{Param: name, Value: raw, Err: ErrEmpty}
	}

	if err := checkGrammar(decoded, typ); err != nil {
		return "", &Error{Param: name, Value: raw, Err: err}
	}

	return decoded, nil
}

func checkGrammar(value string, typ compiler.ParamType) error {
	switch typ {
	case compiler.TypeInt:
		if !allDigits(value) {
			return fmt.Errorf("%w: want int, got %q", ErrGrammar, value)
		}
	case compiler.TypeSlug:
		if !validSlug(value) {
			return fmt.Errorf("%w: want slug, got %q", ErrGrammar, value)
		}
	case compiler.TypeUUID:
		if !validUUID(value) {
			return fmt.Errorf("%w: want uuid, got %q", ErrGrammar, value)
		}
	case compiler.TypeDefault:
		// Generic checks only.
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// validSlug accepts lowercase letters, digits, and hyphens, with no
// leading or trailing hyphen.
func validSlug(s string) bool {
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

// validUUID accepts only the canonical hyphenated 8-4-4-4-12 form.
// uuid.Parse alone is too permissive (it accepts braced and urn: forms),
// so the shape is pinned before delegating hex validation.
func validUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
