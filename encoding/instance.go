// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package encoding

import (
	"math"
	"structs"

	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/pmath"
)

// PrimitiveInstanceData is the fixed-width per-draw-call vertex attribute
// record. Must match the instance layout expected by the brush and text
// shaders.
type PrimitiveInstanceData struct {
	_ structs.HostLayout

	Data [4]int32
}

// EdgeAASegmentMask selects which edges of a segment get anti-aliasing.
type EdgeAASegmentMask uint8

const (
	EdgeAALeft EdgeAASegmentMask = 1 << iota
	EdgeAATop
	EdgeAARight
	EdgeAABottom

	EdgeAAAll = EdgeAALeft | EdgeAATop | EdgeAARight | EdgeAABottom
)

// BrushFlags modify how a brush shader interprets its segment.
type BrushFlags uint8

const (
	// BrushFlagPerspectiveInterpolation forces perspective-correct
	// interpolation of the brush UVs.
	BrushFlagPerspectiveInterpolation BrushFlags = 1 << iota
	// BrushFlagSegmentRelative interprets the segment data as relative to
	// the local rect rather than absolute.
	BrushFlagSegmentRelative
	// BrushFlagSegmentRepeatX repeats the brush horizontally within the
	// segment.
	BrushFlagSegmentRepeatX
	// BrushFlagSegmentRepeatY repeats the brush vertically within the
	// segment.
	BrushFlagSegmentRepeatY
)

// SubpixelDirection is the axis along which a glyph run uses subpixel
// positioning.
type SubpixelDirection uint32

const (
	SubpixelDirectionNone SubpixelDirection = iota
	SubpixelDirectionHorizontal
	SubpixelDirectionVertical
	SubpixelDirectionMixed
)

// ShaderColorMode selects the color path in the brush/text shaders.
type ShaderColorMode uint32

const (
	ShaderColorModeFromTexture ShaderColorMode = iota
	ShaderColorModeAlpha
	ShaderColorModeSubpixelDualSource
	ShaderColorModeImage
)

// AlphaType distinguishes premultiplied from straight alpha image data.
type AlphaType uint32

const (
	AlphaTypePremultiplied AlphaType = iota
	AlphaTypeNonPremultiplied
)

// RasterizationSpace tells the shader which space a cached image was
// rasterized in.
type RasterizationSpace uint32

const (
	RasterizationSpaceLocal RasterizationSpace = iota
	RasterizationSpaceScreen
)

// GlyphInstance references one glyph of a text run.
type GlyphInstance struct {
	PrimHeaderIndex PrimitiveHeaderIndex
}

// Build packs the glyph draw parameters into an instance record.
// Word layout:
//
//	0: primitive header index
//	1: (render task address << 16) | clip task address
//	2: (subpixel direction << 24) | (color mode << 16) | glyph index
//	3: glyph UV rect GPU cache address
func (g GlyphInstance) Build(
	renderTask, clipTask RenderTaskAddress,
	subpxDir SubpixelDirection,
	glyphIndexInRun int32,
	glyphUVRect GpuCacheAddress,
	colorMode ShaderColorMode,
) PrimitiveInstanceData {
	return PrimitiveInstanceData{
		Data: [4]int32{
			int32(g.PrimHeaderIndex),
			int32(renderTask)<<16 | int32(clipTask),
			int32(subpxDir)<<24 | int32(colorMode)<<16 | glyphIndexInRun,
			glyphUVRect.AsInt(),
		},
	}
}

// BrushInstance describes one segment of a brush primitive.
type BrushInstance struct {
	PrimHeaderIndex   PrimitiveHeaderIndex
	RenderTaskAddress RenderTaskAddress
	ClipTaskAddress   RenderTaskAddress
	SegmentIndex      int32
	EdgeFlags         EdgeAASegmentMask
	BrushFlags        BrushFlags
	ResourceAddress   int32
}

// Build packs the brush parameters into an instance record.
// Word layout:
//
//	0: primitive header index
//	1: (render task address << 16) | clip task address
//	2: (brush flags << 24) | (edge flags << 16) | segment index
//	3: resource address
func (b BrushInstance) Build() PrimitiveInstanceData {
	return PrimitiveInstanceData{
		Data: [4]int32{
			int32(b.PrimHeaderIndex),
			int32(b.RenderTaskAddress)<<16 | int32(b.ClipTaskAddress),
			b.SegmentIndex | int32(b.EdgeFlags)<<16 | int32(b.BrushFlags)<<24,
			b.ResourceAddress,
		},
	}
}

// SplitCompositeInstance draws one polygon of a 3D-split picture.
type SplitCompositeInstance struct {
	PrimHeaderIndex   PrimitiveHeaderIndex
	PolygonsAddress   GpuCacheAddress
	Z                 ZBufferID
	RenderTaskAddress RenderTaskAddress
}

func (c SplitCompositeInstance) Build() PrimitiveInstanceData {
	return PrimitiveInstanceData{
		Data: [4]int32{
			int32(c.PrimHeaderIndex),
			c.PolygonsAddress.AsInt(),
			int32(c.Z),
			int32(c.RenderTaskAddress),
		},
	}
}

// CompositeInstance is the float-format record used when compositing a
// cached surface into its parent. Must match the composite shader's
// instance layout.
type CompositeInstance struct {
	_ structs.HostLayout

	Rect     [4]float32
	ClipRect [4]float32
	Color    [4]float32
	Z        float32
	Unused   [3]float32
}

func NewCompositeInstance(rect, clipRect pmath.Rect, color gfx.ColorF, z ZBufferID) CompositeInstance {
	return CompositeInstance{
		Rect:     [4]float32{rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y},
		ClipRect: [4]float32{clipRect.Min.X, clipRect.Min.Y, clipRect.Max.X, clipRect.Max.Y},
		Color:    [4]float32(color),
		Z:        float32(z),
	}
}

// ImageBrushData is the user-data tuple stored in the primitive header of
// image-brush primitives, including gradients composited through the
// image brush path.
type ImageBrushData struct {
	ColorMode   ShaderColorMode
	AlphaType   AlphaType
	RasterSpace RasterizationSpace
	Opacity     float32
}

// Encode packs the brush data into the header's four user-data words.
// Word layout:
//
//	0: (alpha type << 16) | color mode
//	1: rasterization space
//	2: quantized opacity
//	3: unused
func (d ImageBrushData) Encode() [4]int32 {
	return [4]int32{
		int32(d.ColorMode) | int32(d.AlphaType)<<16,
		int32(d.RasterSpace),
		ShaderOpacity(d.Opacity),
		0,
	}
}

// ShaderOpacity quantizes an opacity to the 16-bit fixed-point encoding
// the shaders divide back out. The rounding mode (half away from zero)
// is part of the contract.
func ShaderOpacity(opacity float32) int32 {
	return int32(math.Round(float64(opacity) * 65535))
}
