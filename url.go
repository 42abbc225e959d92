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
	"net/url"
	"strings"
)

// URL builds the URL for a named route, substituting the supplied
// parameter values into the compiled template.
//
// A missing value for any template parameter is an error, never a silent
// empty substitution. Values are path-escaped but not re-validated
// against the parameter's type grammar; supplying legal values is the
// caller's responsibility.
//
// If the route carries a subdomain constraint, the result is an absolute
// URL on that label under the configured base domain. Otherwise the
// result is path-only.
func (e *Engine) URL(name string, values map[string]string) (string, error) {
	return e.buildURL(name, values, "")
}

// URLWithSubdomain is URL with an explicit subdomain override replacing
// the route's own constraint.
func (e *Engine) URLWithSubdomain(name string, values map[string]string, subdomain string) (string, error) {
	return e.buildURL(name, values, subdomain)
}

func (e *Engine) buildURL(name string, values map[string]string, override string) (string, error) {
	t := e.table.Load()
	if t == nil {
		e.mu.Lock()
		t = e.build
		defer e.mu.Unlock()
	}

	d := t.names[name]
	if d == nil {
		return "", fmt.Errorf("%w: %q", ErrRouteNameUnknown, name)
	}

	var buf strings.Builder

	label := override
	if label == "" {
		label = d.Subdomain
	}
	if label != "" {
		buf.WriteString("https://")
		buf.WriteString(label)
		if e.cfg.BaseDomain != "" {
			buf.WriteByte('.')
			buf.WriteString(e.cfg.BaseDomain)
		}
	}

	if len(d.Segments) == 0 {
		buf.WriteByte('/')
		return buf.String(), nil
	}

	for _, seg := range d.Segments {
		buf.WriteByte('/')
		if !seg.Param {
			buf.WriteString(seg.Value)
			continue
		}
		v, ok := values[seg.Value]
		if !ok {
			return "", fmt.Errorf("%w: %q (route %q)", ErrMissingParameter, seg.Value, name)
		}
		buf.WriteString(url.PathEscape(v))
	}

	return buf.String(), nil
}
