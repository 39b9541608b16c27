// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gradient

import (
	"testing"

	"honnef.co/go/prism/encoding"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/pmath"
)

var (
	red         = gfx.ColorKey{255, 0, 0, 255}
	blue        = gfx.ColorKey{0, 0, 255, 255}
	green       = gfx.ColorKey{0, 255, 0, 255}
	transparent = gfx.ColorKey{0, 0, 0, 0}
)

func stops2(c0, c1 gfx.ColorKey) []gfx.ColorStopKey {
	return []gfx.ColorStopKey{
		{Offset: 0, Color: c0},
		{Offset: 1, Color: c1},
	}
}

type segment struct {
	rect       pmath.Rect
	start, end pmath.Point
	stops      [2]gfx.ColorStopKey
	edges      encoding.EdgeAASegmentMask
}

func collect(segs *[]segment) func(pmath.Rect, pmath.Point, pmath.Point, [2]gfx.ColorStopKey, encoding.EdgeAASegmentMask) {
	return func(rect pmath.Rect, start, end pmath.Point, stops [2]gfx.ColorStopKey, edges encoding.EdgeAASegmentMask) {
		*segs = append(*segs, segment{rect, start, end, stops, edges})
	}
}

func TestDecomposeSimpleHorizontal(t *testing.T) {
	rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
	clip := rect
	tileSize := rect.Size()
	var tileSpacing pmath.Size
	start := pmath.Point{X: 0, Y: 0}
	end := pmath.Point{X: 512, Y: 0}

	var segs []segment
	ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, clip,
		gfx.ExtendModeClamp, &start, &end, stops2(red, blue), collect(&segs))
	if !ok {
		t.Fatal("expected decomposition")
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	s := segs[0]
	if s.rect != rect {
		t.Errorf("segment rect %v, want full primitive", s.rect)
	}
	if s.stops[0].Offset != 0 || s.stops[1].Offset != 1 {
		t.Errorf("offsets not normalized: %v", s.stops)
	}
	if s.stops[0].Color != red || s.stops[1].Color != blue {
		t.Errorf("colors %v", s.stops)
	}
	if s.edges != encoding.EdgeAAAll {
		t.Errorf("edges %b, want all", s.edges)
	}
}

func TestDecomposeInteriorStops(t *testing.T) {
	rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
	clip := rect
	tileSize := rect.Size()
	var tileSpacing pmath.Size
	start := pmath.Point{X: 128, Y: 0}
	end := pmath.Point{X: 384, Y: 0}

	var segs []segment
	ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, clip,
		gfx.ExtendModeClamp, &start, &end, stops2(red, blue), collect(&segs))
	if !ok {
		t.Fatal("expected decomposition")
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}

	// The segments tile the clipped primitive without gaps or overlap.
	if segs[0].rect.Min.X != 0 || segs[2].rect.Max.X != 512 {
		t.Errorf("segments do not span the primitive: %v .. %v", segs[0].rect, segs[2].rect)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].rect.Min.X != segs[i-1].rect.Max.X {
			t.Errorf("gap between segments %d and %d", i-1, i)
		}
	}
	for i, s := range segs {
		if s.rect.Min.Y != 0 || s.rect.Max.Y != 100 {
			t.Errorf("segment %d does not span the cross axis: %v", i, s.rect)
		}
		if s.edges&(encoding.EdgeAATop|encoding.EdgeAABottom) != encoding.EdgeAATop|encoding.EdgeAABottom {
			t.Errorf("segment %d missing cross-axis edges", i)
		}
	}

	// The extension segments repeat the edge colors.
	if segs[0].stops[0].Color != red || segs[0].stops[1].Color != red {
		t.Errorf("leading segment colors %v", segs[0].stops)
	}
	if segs[2].stops[0].Color != blue || segs[2].stops[1].Color != blue {
		t.Errorf("trailing segment colors %v", segs[2].stops)
	}

	if segs[0].edges&encoding.EdgeAALeft == 0 {
		t.Error("first segment must own the left edge")
	}
	if segs[0].edges&encoding.EdgeAARight != 0 {
		t.Error("first segment must not own the right edge")
	}
	if segs[2].edges&encoding.EdgeAARight == 0 {
		t.Error("last segment must own the right edge")
	}
}

func TestDecomposeSkipsTransparentRuns(t *testing.T) {
	rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
	clip := rect
	tileSize := rect.Size()
	var tileSpacing pmath.Size
	start := pmath.Point{X: 0, Y: 0}
	end := pmath.Point{X: 512, Y: 0}
	stops := []gfx.ColorStopKey{
		{Offset: 0, Color: transparent},
		{Offset: 0.5, Color: transparent},
		{Offset: 1, Color: red},
	}

	var segs []segment
	ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, clip,
		gfx.ExtendModeClamp, &start, &end, stops, collect(&segs))
	if !ok {
		t.Fatal("expected decomposition")
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].rect.Min.X != 256 || segs[0].rect.Max.X != 512 {
		t.Errorf("segment rect %v, want [256, 512]", segs[0].rect)
	}
}

func TestDecomposeVertical(t *testing.T) {
	rect := pmath.Rect{Max: pmath.Point{X: 100, Y: 512}}
	clip := rect
	tileSize := rect.Size()
	var tileSpacing pmath.Size
	start := pmath.Point{X: 0, Y: 0}
	end := pmath.Point{X: 0, Y: 512}

	var segs []segment
	ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, clip,
		gfx.ExtendModeClamp, &start, &end, stops2(red, blue), collect(&segs))
	if !ok {
		t.Fatal("expected decomposition")
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	s := segs[0]
	if s.rect != rect {
		t.Errorf("segment rect %v, want full primitive", s.rect)
	}
	if s.start != (pmath.Point{X: 0, Y: 0}) || s.end != (pmath.Point{X: 0, Y: 512}) {
		t.Errorf("endpoints %v .. %v", s.start, s.end)
	}
	if s.edges != encoding.EdgeAAAll {
		t.Errorf("edges %b, want all", s.edges)
	}
}

func TestDecomposeReversedStops(t *testing.T) {
	rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
	clip := rect
	tileSize := rect.Size()
	var tileSpacing pmath.Size
	start := pmath.Point{X: 512, Y: 0}
	end := pmath.Point{X: 0, Y: 0}

	var segs []segment
	ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, clip,
		gfx.ExtendModeClamp, &start, &end, stops2(red, blue), collect(&segs))
	if !ok {
		t.Fatal("expected decomposition")
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	// The gradient runs right to left, so the left edge is the stop that
	// was listed last.
	if segs[0].stops[0].Color != blue || segs[0].stops[1].Color != red {
		t.Errorf("colors %v, want blue then red", segs[0].stops)
	}
}

func TestDecomposeReversedStopsLeavesInputAlone(t *testing.T) {
	// A scene retains its stop list across frames; decomposing a
	// right-to-left gradient twice with the same slice must yield the
	// same segments both times.
	stops := stops2(red, blue)

	run := func() []segment {
		rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
		tileSize := rect.Size()
		var tileSpacing pmath.Size
		start := pmath.Point{X: 512, Y: 0}
		end := pmath.Point{X: 0, Y: 0}

		var segs []segment
		ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, rect,
			gfx.ExtendModeClamp, &start, &end, stops, collect(&segs))
		if !ok {
			t.Fatal("expected decomposition")
		}
		return segs
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("segment count changed across frames: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d changed across frames: %v -> %v", i, first[i], second[i])
		}
	}
	if stops[0].Color != red || stops[1].Color != blue {
		t.Errorf("input stops modified: %v", stops)
	}
}

func TestDecomposeBailConditions(t *testing.T) {
	base := func() (pmath.Rect, pmath.Size, pmath.Size, pmath.Point, pmath.Point) {
		rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
		return rect, rect.Size(), pmath.Size{}, pmath.Point{X: 0, Y: 0}, pmath.Point{X: 512, Y: 0}
	}

	tests := []struct {
		name   string
		mutate func(*pmath.Rect, *pmath.Size, *pmath.Size, *pmath.Point, *pmath.Point) (gfx.ExtendMode, []gfx.ColorStopKey)
	}{
		{
			"repeat extend mode",
			func(*pmath.Rect, *pmath.Size, *pmath.Size, *pmath.Point, *pmath.Point) (gfx.ExtendMode, []gfx.ColorStopKey) {
				return gfx.ExtendModeRepeat, stops2(red, blue)
			},
		},
		{
			"diagonal gradient",
			func(_ *pmath.Rect, _, _ *pmath.Size, _, end *pmath.Point) (gfx.ExtendMode, []gfx.ColorStopKey) {
				end.Y = 512
				return gfx.ExtendModeClamp, stops2(red, blue)
			},
		},
		{
			"degenerate gradient",
			func(_ *pmath.Rect, _, _ *pmath.Size, start, end *pmath.Point) (gfx.ExtendMode, []gfx.ColorStopKey) {
				*end = *start
				return gfx.ExtendModeClamp, stops2(red, blue)
			},
		},
		{
			"empty stops",
			func(*pmath.Rect, *pmath.Size, *pmath.Size, *pmath.Point, *pmath.Point) (gfx.ExtendMode, []gfx.ColorStopKey) {
				return gfx.ExtendModeClamp, nil
			},
		},
		{
			"below size threshold",
			func(rect *pmath.Rect, tileSize *pmath.Size, _ *pmath.Size, _, end *pmath.Point) (gfx.ExtendMode, []gfx.ColorStopKey) {
				rect.Max.X = 128
				tileSize.Width = 128
				end.X = 128
				return gfx.ExtendModeClamp, stops2(red, blue)
			},
		},
		{
			"remaining tiling",
			func(_ *pmath.Rect, tileSize, tileSpacing *pmath.Size, _, _ *pmath.Point) (gfx.ExtendMode, []gfx.ColorStopKey) {
				tileSize.Width = 128
				tileSpacing.Width = 64
				return gfx.ExtendModeClamp, stops2(red, blue)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rect, tileSize, tileSpacing, start, end := base()
			mode, stops := tt.mutate(&rect, &tileSize, &tileSpacing, &start, &end)
			calls := 0
			ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, rect,
				mode, &start, &end, stops,
				func(pmath.Rect, pmath.Point, pmath.Point, [2]gfx.ColorStopKey, encoding.EdgeAASegmentMask) {
					calls++
				})
			if ok {
				t.Error("expected no decomposition")
			}
			if calls != 0 {
				t.Errorf("callback invoked %d times", calls)
			}
		})
	}
}

func TestStretchedTileDecomposes(t *testing.T) {
	// A horizontal gradient repeated vertically is the same as one
	// stretched tile, which is still decomposable.
	rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 300}}
	clip := rect
	tileSize := pmath.Size{Width: 512, Height: 100}
	var tileSpacing pmath.Size
	start := pmath.Point{X: 0, Y: 0}
	end := pmath.Point{X: 512, Y: 0}

	var segs []segment
	ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, clip,
		gfx.ExtendModeClamp, &start, &end, stops2(red, blue), collect(&segs))
	if !ok {
		t.Fatal("expected decomposition")
	}
	if tileSize.Height != 300 {
		t.Errorf("tile height %v, want stretched to 300", tileSize.Height)
	}
	if len(segs) != 1 || segs[0].rect != rect {
		t.Errorf("segments %v", segs)
	}
}

func TestLocalClipShiftsGradient(t *testing.T) {
	rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
	clip := pmath.Rect{Min: pmath.Point{X: 64, Y: 0}, Max: pmath.Point{X: 512, Y: 100}}
	tileSize := rect.Size()
	var tileSpacing pmath.Size
	start := pmath.Point{X: 0, Y: 0}
	end := pmath.Point{X: 512, Y: 0}

	var segs []segment
	ok := OptimizeLinearGradient(&rect, &tileSize, &tileSpacing, clip,
		gfx.ExtendModeClamp, &start, &end, stops2(red, blue), collect(&segs))
	if !ok {
		t.Fatal("expected decomposition")
	}
	if rect.Min.X != 64 {
		t.Errorf("primitive not clipped: %v", rect)
	}
	// The endpoints move in the opposite direction so the pattern does
	// not shift on screen.
	if start.X != -64 || end.X != 448 {
		t.Errorf("endpoints %v .. %v, want -64 .. 448", start, end)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	s := segs[0]
	if s.rect.Min.X != 64 || s.rect.Max.X != 512 {
		t.Errorf("segment rect %v", s.rect)
	}
	if s.start.X != -64 || s.end.X != 448 {
		t.Errorf("segment endpoints %v .. %v", s.start, s.end)
	}
}

func TestSimplifyRepeatedPrimitive(t *testing.T) {
	rect := pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
	stretch := pmath.Size{Width: 600, Height: 100}
	spacing := pmath.Size{Width: 50, Height: 20}

	SimplifyRepeatedPrimitive(stretch, &spacing, &rect)
	if spacing != (pmath.Size{}) {
		t.Errorf("spacing %v, want zero", spacing)
	}
	if rect.Max.X != 512 || rect.Max.Y != 100 {
		t.Errorf("rect %v", rect)
	}

	// Genuinely repeated primitives are left alone.
	rect = pmath.Rect{Max: pmath.Point{X: 512, Y: 100}}
	stretch = pmath.Size{Width: 100, Height: 100}
	spacing = pmath.Size{Width: 50, Height: 0}
	SimplifyRepeatedPrimitive(stretch, &spacing, &rect)
	if spacing.Width != 50 {
		t.Errorf("spacing %v, want preserved", spacing)
	}
}
