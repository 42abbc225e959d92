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
	"github.com/waymark-dev/waymark/route"
)

// edge is a per-segment literal child (linear scan, no map hashing in the
// hot path).
type edge struct {
	label string
	node  *node
}

// node is one level of a method's dynamic-route tree. Each node has any
// number of literal children and at most one parametric child. Parameter
// names and types are not stored on the node: they are recovered
// positionally from the matched leaf's compiled segments, so two
// templates sharing a parametric position never interfere.
//
// Thread safety: nodes are built during the single-threaded registration
// phase. After Freeze the tree is immutable and read concurrently
// without locking.
type node struct {
	edges []edge
	param *node
	leaf  *route.Definition
}

func (n *node) findChild(segment string) *node {
	for i := range n.edges {
		if n.edges[i].label == segment {
			return n.edges[i].node
		}
	}
	return nil
}

func (n *node) findOrCreateChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := &node{}
	n.edges = append(n.edges, edge{label: segment, node: child})
	return child
}

// insert walks the definition's compiled segments, creating nodes as
// needed, and binds the definition at the final node. Registering the
// same method+template twice replaces the earlier leaf.
func (n *node) insert(d *route.Definition) {
	current := n
	for _, seg := range d.Segments {
		if seg.Param {
			if current.param == nil {
				current.param = &node{}
			}
			current = current.param
		} else {
			current = current.findOrCreateChild(seg.Value)
		}
	}
	current.leaf = d
}

// match walks the tree segment by segment and returns the bound
// definition for a full structural match, or nil.
//
// At each node the literal child is tried first so exact matches always
// win over parameter capture. When the literal branch dead-ends deeper
// in the path, the walk backtracks and retries through the parametric
// child: a shallow literal success does not guarantee the rest of the
// path matches.
//
// Parameter values are not validated here. Validation runs once, against
// the matched leaf's segment types, to avoid wasted work on dead-end
// branches.
func (n *node) match(segments []string) *route.Definition {
	if len(segments) == 0 {
		return n.leaf
	}

	seg := segments[0]

	if child := n.findChild(seg); child != nil {
		if d := child.match(segments[1:]); d != nil {
			return d
		}
	}

	// An empty request segment never binds a parameter.
	if n.param != nil && seg != "" {
		if d := n.param.match(segments[1:]); d != nil {
			return d
		}
	}

	return nil
}

// walk invokes fn for every definition bound in the subtree.
func (n *node) walk(fn func(*route.Definition)) {
	if n.leaf != nil {
		fn(n.leaf)
	}
	for i := range n.edges {
		n.edges[i].node.walk(fn)
	}
	if n.param != nil {
		n.param.walk(fn)
	}
}
