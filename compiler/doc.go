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

// Package compiler turns path templates into compiled segment sequences.
//
// A template like /user/{id:int}/posts/{slug:slug} compiles once, at
// registration time, into an ordered []Segment. The same sequence feeds
// both sides of the engine:
//
//   - parameter-free templates become keys in the static hash index
//   - parameterized templates become paths through the per-method tree
//
// The package also provides the bloom filter the static index uses to
// reject unknown paths before the map lookup.
//
// Parameter tokens take the form {name} or {name:type} where type is one
// of int, slug, or uuid. An omitted type selects the default grammar,
// which only enforces the generic security checks (see the params
// package).
package compiler
