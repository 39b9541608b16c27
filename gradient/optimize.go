// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gradient

import (
	"honnef.co/go/prism/encoding"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/pmath"
)

// minGradientSegmentSize is the extent along the gradient axis below
// which decomposition is not worth the extra instances.
const minGradientSegmentSize = 256

// SimplifyRepeatedPrimitive removes degenerate repetition: if a single
// stride (stretch size plus spacing) covers the primitive on an axis,
// the spacing is dropped and the primitive is clamped to one tile.
func SimplifyRepeatedPrimitive(stretchSize pmath.Size, tileSpacing *pmath.Size, primRect *pmath.Rect) {
	strideW := stretchSize.Width + tileSpacing.Width
	strideH := stretchSize.Height + tileSpacing.Height
	if strideW >= primRect.Width() {
		tileSpacing.Width = 0
		primRect.Max.X = min(primRect.Min.X+stretchSize.Width, primRect.Max.X)
	}
	if strideH >= primRect.Height() {
		tileSpacing.Height = 0
		primRect.Max.Y = min(primRect.Min.Y+stretchSize.Height, primRect.Max.Y)
	}
}

// applyGradientLocalClip shrinks a non-repeated primitive to its local
// clip and returns the offset to add to the gradient endpoints so the
// pattern stays put. Repeated primitives are left alone; moving their
// origin would shift every tile.
func applyGradientLocalClip(primRect *pmath.Rect, tileSize, tileSpacing pmath.Size, clipRect pmath.Rect) pmath.Point {
	if primRect.Width() > tileSize.Width+tileSpacing.Width ||
		primRect.Height() > tileSize.Height+tileSpacing.Height {
		return pmath.Point{}
	}

	oldMin := primRect.Min
	primRect.Min.X = max(primRect.Min.X, clipRect.Min.X)
	primRect.Min.Y = max(primRect.Min.Y, clipRect.Min.Y)
	primRect.Max.X = min(primRect.Max.X, clipRect.Max.X)
	primRect.Max.Y = min(primRect.Max.Y, clipRect.Max.Y)
	// Disjoint rects leave a well-formed empty rect.
	primRect.Max.X = max(primRect.Max.X, primRect.Min.X)
	primRect.Max.Y = max(primRect.Max.Y, primRect.Min.Y)

	return pmath.Point{X: oldMin.X - primRect.Min.X, Y: oldMin.Y - primRect.Min.Y}
}

// OptimizeLinearGradient decomposes a large axis-aligned clamped
// gradient into a run of 2-stop segments, each cheap enough for the
// fast path. The callback receives each segment's rect, endpoints
// relative to the segment origin, its two stops (offsets forced to 0
// and 1) and the anti-aliased edges it owns.
//
// Inputs are normalized in place (tile clamping, repetition removal,
// local clip) whether or not decomposition happens; the stop list is
// never modified. Reports whether the
// gradient was decomposed; if so the caller must not also draw the
// original primitive.
func OptimizeLinearGradient(
	primRect *pmath.Rect,
	tileSize *pmath.Size,
	tileSpacing *pmath.Size,
	clipRect pmath.Rect,
	extendMode gfx.ExtendMode,
	start *pmath.Point,
	end *pmath.Point,
	stops []gfx.ColorStopKey,
	callback func(rect pmath.Rect, start, end pmath.Point, stops [2]gfx.ColorStopKey, edges encoding.EdgeAASegmentMask),
) bool {
	// A tile larger than the primitive behaves like one exactly its size.
	tileSize.Width = min(tileSize.Width, primRect.Width())
	tileSize.Height = min(tileSize.Height, primRect.Height())

	SimplifyRepeatedPrimitive(*tileSize, tileSpacing, primRect)

	vertical := pmath.ApproxEq(start.X, end.X)
	horizontal := pmath.ApproxEq(start.Y, end.Y)

	// Stretching the tile across the primitive is equivalent to repeating
	// it when the gradient is constant along the repeat axis, and
	// stretched tiles qualify for decomposition.
	if primRect.Height() > tileSize.Height && horizontal && tileSpacing.Height == 0 {
		tileSize.Height = primRect.Height()
	}
	if primRect.Width() > tileSize.Width && vertical && tileSpacing.Width == 0 {
		tileSize.Width = primRect.Width()
	}

	offset := applyGradientLocalClip(primRect, *tileSize, *tileSpacing, clipRect)
	start.X += offset.X
	start.Y += offset.Y
	end.X += offset.X
	end.Y += offset.Y

	tiled := primRect.Width() > tileSize.Width || primRect.Height() > tileSize.Height
	if extendMode != gfx.ExtendModeClamp ||
		len(stops) == 0 ||
		(!horizontal && !vertical) ||
		(horizontal && vertical) ||
		!tileSpacing.IsZero() ||
		tiled {
		return false
	}

	axisExtent := primRect.Width()
	if vertical {
		axisExtent = primRect.Height()
	}
	if axisExtent < minGradientSegmentSize {
		return false
	}

	// Work in a horizontal frame; vertical gradients are swapped in and
	// the emitted segments swapped back.
	pr := *primRect
	cr := clipRect
	s := *start
	e := *end
	if vertical {
		pr = pr.SwapXY()
		cr = cr.SwapXY()
		s = s.SwapXY()
		e = e.SwapXY()
	}

	clipped := cr.Intersect(pr)
	if clipped.IsEmpty() {
		return false
	}

	// The caller's stop list is typically retained scene state, so
	// reversal works on a copy.
	reverse := s.X > e.X
	if reverse {
		rev := make([]gfx.ColorStopKey, len(stops))
		for i, stop := range stops {
			rev[len(stops)-1-i] = stop
		}
		stops = rev
		s, e = e, s
	}
	length := e.X - s.X

	// A stop's position along the axis, in primitive-local coordinates.
	// Reversed lists keep their original offsets, measured from the
	// original start point.
	position := func(offset float32) float32 {
		if reverse {
			return s.X + (1-offset)*length
		}
		return s.X + offset*length
	}
	// Inverse of position, for the sentinel stops pinned to the
	// primitive's edges.
	atPosition := func(x float32) float32 {
		if reverse {
			return 1 - (x-s.X)/length
		}
		return (x - s.X) / length
	}

	extended := make([]gfx.ColorStopKey, 0, len(stops)+2)
	extended = append(extended, gfx.ColorStopKey{
		Offset: atPosition(0),
		Color:  stops[0].Color,
	})
	extended = append(extended, stops...)
	extended = append(extended, gfx.ColorStopKey{
		Offset: atPosition(pr.Width()),
		Color:  stops[len(stops)-1].Color,
	})

	for i := 0; i+1 < len(extended); i++ {
		s0 := extended[i]
		s1 := extended[i+1]
		// Nothing to draw between two fully transparent stops.
		if s0.Color.Alpha() == 0 && s1.Color.Alpha() == 0 {
			continue
		}

		x0 := position(s0.Offset)
		x1 := position(s1.Offset)
		segRect := pmath.Rect{
			Min: pmath.Point{X: pr.Min.X + x0, Y: pr.Min.Y},
			Max: pmath.Point{X: pr.Min.X + x1, Y: pr.Max.Y},
		}
		segRect = segRect.Intersect(clipped)
		if segRect.IsEmpty() {
			continue
		}

		segStart := pmath.Point{X: pr.Min.X + x0 - segRect.Min.X}
		segEnd := pmath.Point{X: pr.Min.X + x1 - segRect.Min.X}
		segStops := [2]gfx.ColorStopKey{
			{Offset: 0, Color: s0.Color},
			{Offset: 1, Color: s1.Color},
		}

		var edges encoding.EdgeAASegmentMask
		if pmath.ApproxEq(segRect.Min.X, clipped.Min.X) {
			edges |= encoding.EdgeAALeft
		}
		if pmath.ApproxEq(segRect.Max.X, clipped.Max.X) {
			edges |= encoding.EdgeAARight
		}
		if pmath.ApproxEq(segRect.Min.Y, clipped.Min.Y) {
			edges |= encoding.EdgeAATop
		}
		if pmath.ApproxEq(segRect.Max.Y, clipped.Max.Y) {
			edges |= encoding.EdgeAABottom
		}

		if vertical {
			segRect = segRect.SwapXY()
			segStart = segStart.SwapXY()
			segEnd = segEnd.SwapXY()
			edges = swapEdgeAxes(edges)
		}
		callback(segRect, segStart, segEnd, segStops, edges)
	}
	return true
}

func swapEdgeAxes(m encoding.EdgeAASegmentMask) encoding.EdgeAASegmentMask {
	var out encoding.EdgeAASegmentMask
	if m&encoding.EdgeAALeft != 0 {
		out |= encoding.EdgeAATop
	}
	if m&encoding.EdgeAATop != 0 {
		out |= encoding.EdgeAALeft
	}
	if m&encoding.EdgeAARight != 0 {
		out |= encoding.EdgeAABottom
	}
	if m&encoding.EdgeAABottom != 0 {
		out |= encoding.EdgeAARight
	}
	return out
}
