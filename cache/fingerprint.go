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

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"time"
)

// SourceInput is one discovery input that contributed route
// declarations: typically a file the external discovery mechanism
// scanned. The fingerprint changes when any input's location or
// modification time changes.
type SourceInput struct {
	Path    string
	ModTime time.Time
}

// Fingerprint computes a stable hash over the discovery inputs that
// produced a route table. Inputs are sorted by path, so callers need
// not worry about discovery order.
func Fingerprint(inputs []SourceInput) string {
	sorted := append([]SourceInput(nil), inputs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	h := sha256.New()
	for _, in := range sorted {
		fmt.Fprintf(h, "%s\x00%d\x00", in.Path, in.ModTime.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FingerprintFiles builds the fingerprint from files on disk, reading
// each file's modification time. Missing files participate with a zero
// mtime rather than failing: a deleted input must change the
// fingerprint, not abort startup.
func FingerprintFiles(paths []string) string {
	inputs := make([]SourceInput, 0, len(paths))
	for _, p := range paths {
		in := SourceInput{Path: p}
		if st, err := os.Stat(p); err == nil {
			in.ModTime = st.ModTime()
		}
		inputs = append(inputs, in)
	}
	return Fingerprint(inputs)
}
