// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package gradient implements the linear gradient primitive pipeline:
// content-keyed interning, decomposition of large simple gradients into
// fast 2-stop segments, and scheduling of cached gradient render tasks.
package gradient

import (
	"honnef.co/go/prism/encoding"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/intern"
	"honnef.co/go/prism/pmath"
	"honnef.co/go/prism/renderer"
)

// maxCachedTaskSize caps each axis of a gradient render task. Gradients
// are visually smooth; rendering above this resolution and letting the
// shader re-expand during sampling is not worth the raster cost.
const maxCachedTaskSize = 1024

// SideOffsets are per-edge widths, used by nine-patch slicing.
type SideOffsets struct {
	Top, Right, Bottom, Left float32
}

// NinePatchDescriptor slices a gradient-filled border image into corner,
// edge and center segments.
type NinePatchDescriptor struct {
	Widths SideOffsets
	// Fill controls whether the center segment is produced.
	Fill bool
}

// BrushSegment is one piece of a segmented brush primitive.
type BrushSegment struct {
	LocalRect  pmath.Rect
	EdgeFlags  encoding.EdgeAASegmentMask
	ExtraData  [4]float32
	BrushFlags encoding.BrushFlags
}

// CreateSegments slices a primitive of the given size into nine-patch
// segments. Degenerate edges (zero widths) produce no segment.
func (d *NinePatchDescriptor) CreateSegments(size pmath.Size) []BrushSegment {
	w := d.Widths
	x := [4]float32{0, w.Left, size.Width - w.Right, size.Width}
	y := [4]float32{0, w.Top, size.Height - w.Bottom, size.Height}

	var segments []BrushSegment
	add := func(x0, y0, x1, y1 float32, edges encoding.EdgeAASegmentMask) {
		r := pmath.Rect{
			Min: pmath.Point{X: x0, Y: y0},
			Max: pmath.Point{X: x1, Y: y1},
		}
		if r.IsEmpty() {
			return
		}
		segments = append(segments, BrushSegment{LocalRect: r, EdgeFlags: edges})
	}

	add(x[0], y[0], x[1], y[1], encoding.EdgeAALeft|encoding.EdgeAATop)
	add(x[1], y[0], x[2], y[1], encoding.EdgeAATop)
	add(x[2], y[0], x[3], y[1], encoding.EdgeAATop|encoding.EdgeAARight)
	add(x[0], y[1], x[1], y[2], encoding.EdgeAALeft)
	if d.Fill {
		add(x[1], y[1], x[2], y[2], 0)
	}
	add(x[2], y[1], x[3], y[2], encoding.EdgeAARight)
	add(x[0], y[2], x[1], y[3], encoding.EdgeAALeft|encoding.EdgeAABottom)
	add(x[1], y[2], x[2], y[3], encoding.EdgeAABottom)
	add(x[2], y[2], x[3], y[3], encoding.EdgeAABottom|encoding.EdgeAARight)
	return segments
}

// LinearGradientKey is the content-derived identity of a linear gradient
// primitive. Two primitives with equal keys intern to one template.
type LinearGradientKey struct {
	PrimRect    pmath.Rect
	ClipRect    pmath.Rect
	StartPoint  pmath.Point
	EndPoint    pmath.Point
	StretchSize pmath.Size
	TileSpacing pmath.Size
	ExtendMode  gfx.ExtendMode
	Stops       []gfx.ColorStopKey
	Reverse     bool
	NinePatch   *NinePatchDescriptor
	// Cached selects rendering through a cached image-brush tile rather
	// than directly by the gradient brush shader.
	Cached bool
}

// WriteKey serializes the key for interning. Every field that affects
// rendering participates; two keys serialize equal iff the primitives
// are interchangeable.
func (k *LinearGradientKey) WriteKey(b *intern.Key) {
	writeRect := func(r pmath.Rect) {
		b.Float32(r.Min.X)
		b.Float32(r.Min.Y)
		b.Float32(r.Max.X)
		b.Float32(r.Max.Y)
	}
	writeRect(k.PrimRect)
	writeRect(k.ClipRect)
	b.Float32(k.StartPoint.X)
	b.Float32(k.StartPoint.Y)
	b.Float32(k.EndPoint.X)
	b.Float32(k.EndPoint.Y)
	b.Float32(k.StretchSize.Width)
	b.Float32(k.StretchSize.Height)
	b.Float32(k.TileSpacing.Width)
	b.Float32(k.TileSpacing.Height)
	b.Uint32(uint32(k.ExtendMode))
	b.Uint32(uint32(len(k.Stops)))
	for _, stop := range k.Stops {
		b.Float32(stop.Offset)
		b.Append(stop.Color[:])
	}
	b.Bool(k.Reverse)
	if k.NinePatch != nil {
		b.Bool(true)
		b.Float32(k.NinePatch.Widths.Top)
		b.Float32(k.NinePatch.Widths.Right)
		b.Float32(k.NinePatch.Widths.Bottom)
		b.Float32(k.NinePatch.Widths.Left)
		b.Bool(k.NinePatch.Fill)
	} else {
		b.Bool(false)
	}
	b.Bool(k.Cached)
}

// LinearGradientTemplate is the interned per-gradient state: resolved
// stops, segmentation, task sizing, and the GPU cache and render task
// handles populated during Update.
type LinearGradientTemplate struct {
	PrimRect      pmath.Rect
	ClipRect      pmath.Rect
	ExtendMode    gfx.ExtendMode
	StartPoint    pmath.Point
	EndPoint      pmath.Point
	StretchSize   pmath.Size
	TileSpacing   pmath.Size
	TaskSize      pmath.IntSize
	Scale         [2]float32
	StopKeys      []gfx.ColorStopKey
	Stops         []gfx.GradientStop
	StopsOpacity  gfx.PrimitiveOpacity
	BrushSegments []BrushSegment
	Orientation   renderer.LineOrientation
	ReverseStops  bool
	IsFastPath    bool
	Cached        bool

	GpuCacheHandle renderer.GpuCacheHandle
	StopsHandle    renderer.GpuCacheHandle
	// SrcColor is the render task the brush samples from; only set for
	// cached gradients, after Update has run.
	SrcColor renderer.RenderTaskID
}

// NewLinearGradientTemplate derives template state from a key. Called
// once per interned key; per-frame work happens in Update.
func NewLinearGradientTemplate(key *LinearGradientKey) *LinearGradientTemplate {
	stops, minAlpha := gfx.ResolveStops(key.Stops)

	t := &LinearGradientTemplate{
		PrimRect:     key.PrimRect,
		ClipRect:     key.ClipRect,
		ExtendMode:   key.ExtendMode,
		StartPoint:   key.StartPoint,
		EndPoint:     key.EndPoint,
		StretchSize:  key.StretchSize,
		TileSpacing:  key.TileSpacing,
		Scale:        [2]float32{1, 1},
		StopKeys:     key.Stops,
		Stops:        stops,
		StopsOpacity: gfx.OpacityFromAlpha(minAlpha),
		ReverseStops: key.Reverse,
		Cached:       key.Cached,
		SrcColor:     renderer.InvalidRenderTaskID,
	}

	if key.NinePatch != nil {
		t.BrushSegments = key.NinePatch.CreateSegments(key.PrimRect.Size())
	}

	vertical := pmath.ApproxEq(key.StartPoint.X, key.EndPoint.X)
	horizontal := pmath.ApproxEq(key.StartPoint.Y, key.EndPoint.Y)
	if vertical && !horizontal {
		t.Orientation = renderer.LineOrientationVertical
	}

	if key.Cached {
		t.TaskSize, t.Scale = clampTaskSize(key.StretchSize)
	}

	if key.Cached && len(stops) == 2 && key.NinePatch == nil && key.TileSpacing.IsZero() {
		if stops[0].Color == stops[1].Color {
			// Both stops are the same color: visually a solid fill. A 1x1
			// task replaces the whole gradient raster.
			t.IsFastPath = true
			t.TaskSize = pmath.IntSize{Width: 1, Height: 1}
			t.Scale = [2]float32{1, 1}
		} else if horizontal != vertical &&
			stops[0].Offset == 0 && stops[1].Offset == 1 &&
			coversStretchSize(key, horizontal) {
			t.IsFastPath = true
		}
		if t.IsFastPath && key.Reverse {
			// The fast path bypasses the general gradient stop builder,
			// so reversal has to happen here.
			t.Stops[0], t.Stops[1] = t.Stops[1], t.Stops[0]
			t.StopKeys = []gfx.ColorStopKey{t.StopKeys[1], t.StopKeys[0]}
		}
	}

	return t
}

func coversStretchSize(key *LinearGradientKey, horizontal bool) bool {
	if horizontal {
		lo := min(key.StartPoint.X, key.EndPoint.X)
		hi := max(key.StartPoint.X, key.EndPoint.X)
		return pmath.ApproxEq(lo, 0) && pmath.ApproxEq(hi, key.StretchSize.Width)
	}
	lo := min(key.StartPoint.Y, key.EndPoint.Y)
	hi := max(key.StartPoint.Y, key.EndPoint.Y)
	return pmath.ApproxEq(lo, 0) && pmath.ApproxEq(hi, key.StretchSize.Height)
}

func clampTaskSize(stretch pmath.Size) (pmath.IntSize, [2]float32) {
	scale := [2]float32{1, 1}
	w := max(stretch.Width, 1)
	h := max(stretch.Height, 1)
	if w > maxCachedTaskSize {
		scale[0] = w / maxCachedTaskSize
		w = maxCachedTaskSize
	}
	if h > maxCachedTaskSize {
		scale[1] = h / maxCachedTaskSize
		h = maxCachedTaskSize
	}
	return pmath.IntSize{Width: int32(w + 0.5), Height: int32(h + 0.5)}, scale
}

// Update writes the template's GPU cache blocks if they are stale and,
// for cached gradients, requests the render task the brush will sample.
// Update is idempotent within a frame; re-running it against valid cache
// state is a no-op.
func (t *LinearGradientTemplate) Update(fs *renderer.FrameState) {
	if req := fs.GpuCache.Request(&t.GpuCacheHandle); req != nil {
		if t.Cached {
			// Image-brush payload: white modulate color, white background,
			// stretch size.
			req.PushColor(gfx.ColorF{1, 1, 1, 1})
			req.PushColor(gfx.ColorF{1, 1, 1, 1})
			req.Push([4]float32{t.StretchSize.Width, t.StretchSize.Height, 0, 0})
		} else {
			// Gradient-brush payload: endpoints, then extend mode packed
			// with the stretch size.
			req.Push([4]float32{t.StartPoint.X, t.StartPoint.Y, t.EndPoint.X, t.EndPoint.Y})
			req.Push([4]float32{float32(t.ExtendMode), t.StretchSize.Width, t.StretchSize.Height, 0})
		}
		for _, seg := range t.BrushSegments {
			req.PushRect(seg.LocalRect)
			req.Push(seg.ExtraData)
		}
	}

	if !t.IsFastPath {
		// Fast path stops travel as vertex attributes, not a stop table.
		if req := fs.GpuCache.Request(&t.StopsHandle); req != nil {
			for _, stop := range t.Stops {
				req.Push([4]float32{stop.Offset, 0, 0, 0})
				req.PushColor(stop.Color.Premultiplied())
			}
		}
	}

	minAlpha := float32(1)
	for _, stop := range t.Stops {
		if stop.Color[3] < minAlpha {
			minAlpha = stop.Color[3]
		}
	}
	t.StopsOpacity = gfx.OpacityFromAlpha(minAlpha)

	if !t.Cached {
		// Drawn directly by the gradient brush shader; no task needed.
		return
	}

	key := t.cacheKey()
	t.SrcColor = fs.TaskCache.RequestRenderTask(key, fs.RgBuilder, func(g *renderer.RenderTaskGraph) renderer.RenderTaskID {
		if t.IsFastPath {
			return g.Add(t.TaskSize, renderer.FastLinearGradientTask{
				Color0:      t.StopKeys[0].Color,
				Color1:      t.StopKeys[1].Color,
				Orientation: t.Orientation,
			})
		}
		stops := t.Stops
		if t.ReverseStops {
			stops = append([]gfx.GradientStop(nil), stops...)
			gfx.ReverseStops(stops)
		}
		return g.Add(t.TaskSize, renderer.LinearGradientTask{
			Start:      t.StartPoint,
			End:        t.EndPoint,
			Scale:      t.Scale,
			ExtendMode: t.ExtendMode,
			Stops:      stops,
		})
	})
}

func (t *LinearGradientTemplate) cacheKey() renderer.RenderTaskCacheKey {
	if t.IsFastPath {
		return renderer.RenderTaskCacheKey{
			Size: t.TaskSize,
			Kind: renderer.RenderTaskCacheKeyFastLinearGradient,
			Fast: renderer.FastLinearGradientCacheKey{
				Color0:      t.StopKeys[0].Color,
				Color1:      t.StopKeys[1].Color,
				Orientation: t.Orientation,
			},
		}
	}
	var sk intern.Key
	for _, stop := range t.StopKeys {
		sk.Float32(stop.Offset)
		sk.Append(stop.Color[:])
	}
	return renderer.RenderTaskCacheKey{
		Size: t.TaskSize,
		Kind: renderer.RenderTaskCacheKeyLinearGradient,
		Linear: renderer.LinearGradientCacheKey{
			Size:          t.TaskSize,
			Start:         renderer.PointKey{X: t.StartPoint.X, Y: t.StartPoint.Y},
			End:           renderer.PointKey{X: t.EndPoint.X, Y: t.EndPoint.Y},
			Scale:         renderer.PointKey{X: t.Scale[0], Y: t.Scale[1]},
			ExtendMode:    t.ExtendMode,
			Stops:         string(sk.Bytes()),
			ReversedStops: t.ReverseStops,
		},
	}
}

// Opacity is the conservative opacity of the whole primitive: opaque
// stops can still leave transparent gaps when tiles are spaced apart.
func (t *LinearGradientTemplate) Opacity() gfx.PrimitiveOpacity {
	if !t.TileSpacing.IsZero() {
		return gfx.PrimitiveOpacity{IsOpaque: false}
	}
	return t.StopsOpacity
}
