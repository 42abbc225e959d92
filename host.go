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

import "strings"

// subdomainLabel extracts the leftmost host label relevant for
// subdomain gating. The host is passed explicitly by the caller; the
// engine never reads ambient request state.
//
// Rules:
//   - the port is stripped (bracketed IPv6 literals included)
//   - a host equal to the base domain has no subdomain label
//   - a host under the base domain yields the leftmost label of the
//     part before the base domain
//   - without a configured base domain there is no subdomain concept
//     and the label is always empty
func subdomainLabel(host, base string) string {
	host = strings.ToLower(stripPort(host))
	if base == "" || host == "" {
		return ""
	}

	base = strings.ToLower(base)
	if host == base {
		return ""
	}

	if rest, ok := strings.CutSuffix(host, "."+base); ok {
		if i := strings.IndexByte(rest, '.'); i >= 0 {
			return rest[:i]
		}
		return rest
	}

	// Host outside the base domain entirely. Take its leftmost label so
	// strict mode can still reject it.
	if i := strings.IndexByte(host, '.'); i >= 0 {
		return host[:i]
	}
	return host
}

func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		// Bracketed IPv6 literal, possibly with a port.
		if end := strings.IndexByte(host, ']'); end >= 0 {
			return host[1:end]
		}
		return host
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}
