// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package pmath provides the f32 geometry and transform types that cross
// the CPU/GPU boundary. Types marked with structs.HostLayout are uploaded
// verbatim as vertex texture or buffer data and must match the shader-side
// layouts.
package pmath

import (
	"math"
	"structs"

	"golang.org/x/exp/constraints"
	"honnef.co/go/curve"
)

// Epsilon is the approximate-equality tolerance, in layout pixels. Layout
// arithmetic upstream accumulates rounding error, so axis detection and
// similar geometric predicates must not use exact float comparison.
const Epsilon = 1e-3

func ApproxEq(a, b float32) bool {
	return Abs32(a-b) <= Epsilon
}

func Abs32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}

func Round32(f float32) float32 {
	return float32(math.Round(float64(f)))
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type Point struct {
	X, Y float32
}

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// SwapXY mirrors the point across the x=y diagonal. Used to normalize
// vertical gradients to the horizontal case.
func (p Point) SwapXY() Point { return Point{p.Y, p.X} }

type Size struct {
	Width, Height float32
}

func (s Size) SwapXY() Size    { return Size{s.Height, s.Width} }
func (s Size) IsEmpty() bool   { return s.Width <= 0 || s.Height <= 0 }
func (s Size) IsZero() bool    { return s.Width == 0 && s.Height == 0 }
func (s Size) Add(o Size) Size { return Size{s.Width + o.Width, s.Height + o.Height} }

// Rect is an axis-aligned rectangle in min/max form.
type Rect struct {
	Min, Max Point
}

func RectFromOriginSize(origin Point, size Size) Rect {
	return Rect{
		Min: origin,
		Max: Point{origin.X + size.Width, origin.Y + size.Height},
	}
}

func (r Rect) Width() float32  { return r.Max.X - r.Min.X }
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

func (r Rect) Size() Size { return Size{r.Width(), r.Height()} }

func (r Rect) IsEmpty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Min: Point{max(r.Min.X, o.Min.X), max(r.Min.Y, o.Min.Y)},
		Max: Point{min(r.Max.X, o.Max.X), min(r.Max.Y, o.Max.Y)},
	}
	return out
}

func (r Rect) SwapXY() Rect {
	return Rect{Min: r.Min.SwapXY(), Max: r.Max.SwapXY()}
}

// IntSize is a device-pixel task size.
type IntSize struct {
	Width, Height int32
}

// Transform is a 2D affine transform in the layout used by shaders:
// column-major 2x2 matrix followed by the translation.
type Transform struct {
	_ structs.HostLayout

	Matrix      [4]float32
	Translation [2]float32
}

var Identity = Transform{
	Matrix: [4]float32{1, 0, 0, 1},
}

func (t Transform) Mul(other Transform) Transform {
	return Transform{
		Matrix: [4]float32{
			t.Matrix[0]*other.Matrix[0] + t.Matrix[2]*other.Matrix[1],
			t.Matrix[1]*other.Matrix[0] + t.Matrix[3]*other.Matrix[1],
			t.Matrix[0]*other.Matrix[2] + t.Matrix[2]*other.Matrix[3],
			t.Matrix[1]*other.Matrix[2] + t.Matrix[3]*other.Matrix[3],
		},
		Translation: [2]float32{
			t.Matrix[0]*other.Translation[0] +
				t.Matrix[2]*other.Translation[1] +
				t.Translation[0],
			t.Matrix[1]*other.Translation[0] +
				t.Matrix[3]*other.Translation[1] +
				t.Translation[1],
		},
	}
}

func (t Transform) Apply(p Point) Point {
	return Point{
		t.Matrix[0]*p.X + t.Matrix[2]*p.Y + t.Translation[0],
		t.Matrix[1]*p.X + t.Matrix[3]*p.Y + t.Translation[1],
	}
}

// Invert returns the inverse transform. The second return value reports
// whether the transform was invertible; callers that only need the inverse
// for auxiliary computations fall back to Identity when it is false.
func (t Transform) Invert() (Transform, bool) {
	det := t.Matrix[0]*t.Matrix[3] - t.Matrix[1]*t.Matrix[2]
	if Abs32(det) <= 1e-6 {
		return Identity, false
	}
	inv := 1.0 / det
	m := [4]float32{
		t.Matrix[3] * inv,
		-t.Matrix[1] * inv,
		-t.Matrix[2] * inv,
		t.Matrix[0] * inv,
	}
	return Transform{
		Matrix: m,
		Translation: [2]float32{
			-(m[0]*t.Translation[0] + m[2]*t.Translation[1]),
			-(m[1]*t.Translation[0] + m[3]*t.Translation[1]),
		},
	}, true
}

// IsAxisAligned reports whether the transform maps axis-aligned rectangles
// to axis-aligned rectangles, i.e. it contains no shear and rotations only
// in multiples of 90 degrees.
func (t Transform) IsAxisAligned() bool {
	return (ApproxEq(t.Matrix[1], 0) && ApproxEq(t.Matrix[2], 0)) ||
		(ApproxEq(t.Matrix[0], 0) && ApproxEq(t.Matrix[3], 0))
}

func TransformFromKurbo(transform curve.Affine) Transform {
	c := transform.Coefficients()
	return Transform{
		Matrix:      [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])},
		Translation: [2]float32{float32(c[4]), float32(c[5])},
	}
}

func PointFromKurbo(p curve.Point) Point {
	return Point{float32(p.X), float32(p.Y)}
}

func AlignUp(len int, alignment int) int {
	return (len + alignment - 1) & -alignment
}
