// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package encoding defines the fixed-layout records shared with GPU
// shaders: primitive headers, per-draw-call instance data, and the packed
// integer ids embedded in them. The bit layouts in this package are a wire
// contract with shader code; changing a shift or a field order here
// produces wrong pixels, not a compile error.
package encoding

import (
	"structs"

	"honnef.co/go/prism/pmath"
)

// ZBufferID is an explicit depth ordering hint assigned to each primitive
// within a frame.
type ZBufferID int32

// ZBufferIDGenerator hands out monotonically increasing z ids. The caller
// sizes maxDepthIDs ahead of time; running out is a capacity-planning bug,
// not a recoverable condition.
type ZBufferIDGenerator struct {
	next        int32
	maxDepthIDs int32
}

func NewZBufferIDGenerator(maxDepthIDs int32) ZBufferIDGenerator {
	return ZBufferIDGenerator{maxDepthIDs: maxDepthIDs}
}

func (g *ZBufferIDGenerator) Next() ZBufferID {
	if g.next >= g.maxDepthIDs {
		panic("z-buffer id space exhausted")
	}
	id := ZBufferID(g.next)
	g.next++
	return id
}

func (g *ZBufferIDGenerator) Reset() {
	g.next = 0
}

// TransformedRectKind classifies a transform for shader fast paths.
type TransformedRectKind uint32

const (
	TransformedRectKindAxisAligned TransformedRectKind = 0
	TransformedRectKindComplex     TransformedRectKind = 1
)

// TransformPaletteID addresses one entry of the frame's transform palette
// from shader code. Layout: (kind << 24) | index.
type TransformPaletteID uint32

// IdentityTransformID refers to palette slot 0, which always holds the
// identity transform.
const IdentityTransformID TransformPaletteID = 0

const transformIndexBits = 24

func NewTransformPaletteID(index int, kind TransformedRectKind) TransformPaletteID {
	return TransformPaletteID(uint32(kind)<<transformIndexBits | uint32(index))
}

func (id TransformPaletteID) Index() int {
	return int(id & (1<<transformIndexBits - 1))
}

func (id TransformPaletteID) Kind() TransformedRectKind {
	return TransformedRectKind(id >> transformIndexBits)
}

// OverrideKind replaces the kind byte while preserving the palette index.
func (id TransformPaletteID) OverrideKind(kind TransformedRectKind) TransformPaletteID {
	return id&(1<<transformIndexBits-1) | TransformPaletteID(uint32(kind)<<transformIndexBits)
}

// PrimitiveHeader is the per-primitive record built during frame
// construction. It is split into a float part and an integer part for
// upload; see PrimitiveHeaders.Push.
type PrimitiveHeader struct {
	LocalRect           pmath.Rect
	LocalClipRect       pmath.Rect
	SpecificPrimAddress GpuCacheAddress
	TransformID         TransformPaletteID
}

// PrimitiveHeaderF is the float half of a primitive header.
// Must match PrimitiveHeaderF in the primitive shaders.
type PrimitiveHeaderF struct {
	_ structs.HostLayout

	LocalRect     [4]float32
	LocalClipRect [4]float32
}

// PrimitiveHeaderI is the integer half of a primitive header.
// Must match PrimitiveHeaderI in the primitive shaders.
type PrimitiveHeaderI struct {
	_ structs.HostLayout

	Z                   ZBufferID
	Unused              int32
	SpecificPrimAddress int32
	TransformID         TransformPaletteID
	UserData            [4]int32
}

// PrimitiveHeaderIndex indexes both header arrays; index parity between
// the float and integer arrays is the addressing scheme.
type PrimitiveHeaderIndex int32

// PrimitiveHeaders accumulates the parallel header arrays for one frame.
type PrimitiveHeaders struct {
	HeadersF []PrimitiveHeaderF
	HeadersI []PrimitiveHeaderI
}

// Push appends one float record and one integer record in lockstep and
// returns the index both were stored at. The index stays valid for the
// rest of the frame.
func (h *PrimitiveHeaders) Push(header *PrimitiveHeader, z ZBufferID, userData [4]int32) PrimitiveHeaderIndex {
	idx := PrimitiveHeaderIndex(len(h.HeadersF))
	h.HeadersF = append(h.HeadersF, PrimitiveHeaderF{
		LocalRect: [4]float32{
			header.LocalRect.Min.X,
			header.LocalRect.Min.Y,
			header.LocalRect.Max.X,
			header.LocalRect.Max.Y,
		},
		LocalClipRect: [4]float32{
			header.LocalClipRect.Min.X,
			header.LocalClipRect.Min.Y,
			header.LocalClipRect.Max.X,
			header.LocalClipRect.Max.Y,
		},
	})
	h.HeadersI = append(h.HeadersI, PrimitiveHeaderI{
		Z:                   z,
		SpecificPrimAddress: int32(header.SpecificPrimAddress),
		TransformID:         header.TransformID,
		UserData:            userData,
	})
	return idx
}

func (h *PrimitiveHeaders) Len() int {
	return len(h.HeadersF)
}

func (h *PrimitiveHeaders) Reset() {
	h.HeadersF = h.HeadersF[:0]
	h.HeadersI = h.HeadersI[:0]
}

// GpuCacheAddress is the block index of a primitive's data in the GPU
// cache texture.
type GpuCacheAddress int32

func (a GpuCacheAddress) AsInt() int32 { return int32(a) }

// RenderTaskAddress identifies a render task's slot in the task texture.
type RenderTaskAddress uint16

// InvalidRenderTaskAddress marks instance words that reference no task.
const InvalidRenderTaskAddress RenderTaskAddress = 0xffff
