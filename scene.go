// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package prism

import (
	"honnef.co/go/color"
	"honnef.co/go/curve"

	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/gradient"
	"honnef.co/go/prism/pmath"
	"honnef.co/go/prism/spatial"
)

// ColorStop is one gradient stop as supplied by the scene builder.
type ColorStop struct {
	Offset float32
	Color  *color.Color
}

// LinearGradient describes a linear gradient fill. Start and End are in
// the primitive's local space, relative to its origin.
type LinearGradient struct {
	Start  curve.Point
	End    curve.Point
	Stops  []ColorStop
	Extend gfx.ExtendMode
	// TileSize is the size of one gradient tile. Zero means the whole
	// primitive is a single tile.
	TileSize pmath.Size
	// TileSpacing is the transparent gap between repeated tiles.
	TileSpacing pmath.Size
	// NinePatch slices the primitive border-image style.
	NinePatch *gradient.NinePatchDescriptor
}

type gradientPrimitive struct {
	node        spatial.NodeIndex
	rect        pmath.Rect
	clip        pmath.Rect
	start       pmath.Point
	end         pmath.Point
	stops       []gfx.ColorStopKey
	extend      gfx.ExtendMode
	tileSize    pmath.Size
	tileSpacing pmath.Size
	ninePatch   *gradient.NinePatchDescriptor
}

// Scene accumulates a spatial tree and the primitives positioned in it.
// A scene is built once and can be turned into frames repeatedly; see
// FrameBuilder.
type Scene struct {
	tree  *spatial.Tree
	prims []gradientPrimitive
}

func NewScene() *Scene {
	return &Scene{tree: spatial.NewTree()}
}

// Reset clears the scene for reuse, keeping allocations where possible.
func (s *Scene) Reset() {
	s.tree = spatial.NewTree()
	s.prims = s.prims[:0]
}

// AddNode adds a coordinate space below parent and returns its index.
// Pass spatial.RootNodeIndex to attach directly to world space.
func (s *Scene) AddNode(parent spatial.NodeIndex, transform curve.Affine) spatial.NodeIndex {
	return s.tree.AddNodeAffine(parent, transform)
}

// SetNodeTransform replaces a node's transform, e.g. when scrolling.
func (s *Scene) SetNodeTransform(node spatial.NodeIndex, transform curve.Affine) {
	s.tree.SetTransform(node, pmath.TransformFromKurbo(transform))
}

// DrawLinearGradient places a gradient-filled rect in the given node's
// space, clipped to clip.
func (s *Scene) DrawLinearGradient(node spatial.NodeIndex, rect, clip pmath.Rect, g LinearGradient) {
	stops := make([]gfx.ColorStopKey, len(g.Stops))
	for i, stop := range g.Stops {
		stops[i] = gfx.ColorStopKey{
			Offset: stop.Offset,
			Color:  gfx.ColorKeyOf(stop.Color),
		}
	}
	tileSize := g.TileSize
	if tileSize.IsZero() {
		tileSize = rect.Size()
	}
	s.prims = append(s.prims, gradientPrimitive{
		node:        node,
		rect:        rect,
		clip:        clip,
		start:       pmath.PointFromKurbo(g.Start),
		end:         pmath.PointFromKurbo(g.End),
		stops:       stops,
		extend:      g.Extend,
		tileSize:    tileSize,
		tileSpacing: g.TileSpacing,
		ninePatch:   g.NinePatch,
	})
}
