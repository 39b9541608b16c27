// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"structs"

	"honnef.co/go/prism/encoding"
	"honnef.co/go/prism/pmath"
	"honnef.co/go/prism/spatial"
)

// TransformData is one palette entry as uploaded to the transform vertex
// texture. Must match the Transform struct in the primitive shaders.
type TransformData struct {
	_ structs.HostLayout

	// Transform maps local space to picture space.
	Transform pmath.Transform
	// InvTransform maps picture space back to local space. It is identity
	// when Transform is not invertible; the inverse only feeds auxiliary
	// computations, never forward transform application.
	InvTransform pmath.Transform
}

func newTransformData(transform pmath.Transform) TransformData {
	inv, ok := transform.Invert()
	if !ok {
		inv = pmath.Identity
	}
	return TransformData{
		Transform:    transform,
		InvTransform: inv,
	}
}

// TransformMetadata caches the per-entry classification so GetID does not
// reclassify on every lookup.
type TransformMetadata struct {
	TransformKind encoding.TransformedRectKind
}

func transformMetadata(transform pmath.Transform) TransformMetadata {
	kind := encoding.TransformedRectKindComplex
	if transform.IsAxisAligned() {
		kind = encoding.TransformedRectKindAxisAligned
	}
	return TransformMetadata{TransformKind: kind}
}

// RelativeTransformKey memoizes palette lookups between two spatial
// nodes.
type RelativeTransformKey struct {
	FromIndex spatial.NodeIndex
	ToIndex   spatial.NodeIndex
}

// TransformPalette collects the set of local-to-picture transforms used
// by all primitives in a frame, so shaders can address them by small
// integer id instead of per-draw-call matrix uniforms.
//
// Slots [0, count) are reserved for the local-to-world transform of each
// spatial node, registered up front via SetWorldTransform; slot 0 (the
// root) is always identity. Transforms between two non-root nodes are
// appended on demand and memoized.
//
// A palette is frame-scoped: build, query, then Finish.
type TransformPalette struct {
	transforms []TransformData
	metadata   []TransformMetadata
	registered map[RelativeTransformKey]int
}

// NewTransformPalette pre-allocates one identity slot per spatial node
// reachable this frame.
func NewTransformPalette(count int) *TransformPalette {
	transforms := make([]TransformData, count, count+8)
	metadata := make([]TransformMetadata, count, count+8)
	identity := newTransformData(pmath.Identity)
	identityMeta := transformMetadata(pmath.Identity)
	for i := range transforms {
		transforms[i] = identity
		metadata[i] = identityMeta
	}
	return &TransformPalette{
		transforms: transforms,
		metadata:   metadata,
		registered: make(map[RelativeTransformKey]int),
	}
}

// SetWorldTransform registers a spatial node's local-to-world transform
// in its reserved slot. The root is the implicit parent: world space and
// the root's space are the same thing.
func (tp *TransformPalette) SetWorldTransform(index spatial.NodeIndex, transform pmath.Transform) {
	tp.setTransform(int(index), transform)
}

func (tp *TransformPalette) setTransform(index int, transform pmath.Transform) {
	tp.transforms[index] = newTransformData(transform)
	tp.metadata[index] = transformMetadata(transform)
}

// GetID resolves the palette id for transforming from one spatial node's
// space into another's. Lookups against the root hit the pre-registered
// slots; everything else is computed once per (from, to) pair per frame
// and memoized.
func (tp *TransformPalette) GetID(from, to spatial.NodeIndex, tree *spatial.Tree) encoding.TransformPaletteID {
	var index int
	switch {
	case to == spatial.RootNodeIndex:
		index = int(from)
	case from == to:
		index = 0
	default:
		index = tp.getCustomIndex(from, to, tree)
	}
	return encoding.NewTransformPaletteID(index, tp.metadata[index].TransformKind)
}

func (tp *TransformPalette) getCustomIndex(from, to spatial.NodeIndex, tree *spatial.Tree) int {
	key := RelativeTransformKey{FromIndex: from, ToIndex: to}
	if index, ok := tp.registered[key]; ok {
		return index
	}
	transform := tree.RelativeTransform(from, to)
	index := len(tp.transforms)
	tp.transforms = append(tp.transforms, newTransformData(transform))
	tp.metadata = append(tp.metadata, transformMetadata(transform))
	tp.registered[key] = index
	return index
}

// Len returns the number of palette entries registered so far.
func (tp *TransformPalette) Len() int {
	return len(tp.transforms)
}

// Finish consumes the palette and returns the flat transform array for
// upload. The palette must not be queried again this frame.
func (tp *TransformPalette) Finish() []TransformData {
	transforms := tp.transforms
	tp.transforms = nil
	tp.metadata = nil
	tp.registered = nil
	return transforms
}
