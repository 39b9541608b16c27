// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package spatial models the tree of coordinate systems (scroll frames,
// CSS transforms, reference frames) that primitives are positioned
// relative to. The frame builder only consumes relative transforms
// between nodes; how the tree is produced is the scene builder's
// business.
package spatial

import (
	"honnef.co/go/curve"

	"honnef.co/go/prism/pmath"
)

// NodeIndex identifies a node in the spatial tree.
type NodeIndex int32

// RootNodeIndex is the root of the tree. The root's coordinate space is
// defined to be world space.
const RootNodeIndex NodeIndex = 0

const noParent NodeIndex = -1

type node struct {
	parent NodeIndex
	// local maps this node's space into the parent's space.
	local pmath.Transform
}

// Tree is the spatial tree for one scene. Nodes are appended during scene
// building and addressed by index during frame building.
type Tree struct {
	nodes []node
}

func NewTree() *Tree {
	return &Tree{
		nodes: []node{{parent: noParent, local: pmath.Identity}},
	}
}

// AddNode appends a child of parent with the given local-to-parent
// transform and returns its index.
func (t *Tree) AddNode(parent NodeIndex, local pmath.Transform) NodeIndex {
	idx := NodeIndex(len(t.nodes))
	t.nodes = append(t.nodes, node{parent: parent, local: local})
	return idx
}

// AddNodeAffine is AddNode for scene builders that carry transforms as
// curve.Affine.
func (t *Tree) AddNodeAffine(parent NodeIndex, local curve.Affine) NodeIndex {
	return t.AddNode(parent, pmath.TransformFromKurbo(local))
}

// SetTransform replaces a node's local-to-parent transform.
func (t *Tree) SetTransform(idx NodeIndex, local pmath.Transform) {
	t.nodes[idx].local = local
}

func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

// WorldTransform returns the transform from a node's space to world
// space (the root's space).
func (t *Tree) WorldTransform(idx NodeIndex) pmath.Transform {
	out := pmath.Identity
	for idx != noParent {
		n := t.nodes[idx]
		out = n.local.Mul(out)
		idx = n.parent
	}
	return out
}

// RelativeTransform returns the transform from the child node's space to
// the ancestor node's space. When to is not actually an ancestor of from,
// the transform goes through world space; a non-invertible intermediate
// degrades to identity rather than failing.
func (t *Tree) RelativeTransform(from, to NodeIndex) pmath.Transform {
	if from == to {
		return pmath.Identity
	}
	if to == RootNodeIndex {
		return t.WorldTransform(from)
	}

	// Fast path: walk up from the child looking for the ancestor.
	out := pmath.Identity
	idx := from
	for idx != noParent {
		if idx == to {
			return out
		}
		n := t.nodes[idx]
		out = n.local.Mul(out)
		idx = n.parent
	}

	inv, _ := t.WorldTransform(to).Invert()
	return inv.Mul(t.WorldTransform(from))
}
