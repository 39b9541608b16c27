// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package prism turns scenes of gradient primitives into the GPU-ready
// data an instanced renderer consumes: primitive headers, instance
// records, a transform palette and a recording of resource uploads.
package prism

import (
	"honnef.co/go/safeish"

	"honnef.co/go/prism/encoding"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/gradient"
	"honnef.co/go/prism/intern"
	"honnef.co/go/prism/mem"
	"honnef.co/go/prism/pmath"
	"honnef.co/go/prism/profiler"
	"honnef.co/go/prism/renderer"
	"honnef.co/go/prism/spatial"
)

// FrameConfig sizes the per-frame resources of a FrameBuilder.
type FrameConfig struct {
	// MaxDepthIDs is the number of z-buffer ids available per frame.
	// Zero selects a default of 65536.
	MaxDepthIDs int32
}

// Frame is the output of one BuildFrame call. Slices alias the frame
// builder's internal storage and stay valid until the next BuildFrame.
type Frame struct {
	Headers    *encoding.PrimitiveHeaders
	Instances  []encoding.PrimitiveInstanceData
	Transforms []renderer.TransformData
	GpuBlocks  [][4]float32
	Tasks      []renderer.RenderTask
	Recording  *renderer.Recording
}

// FrameBuilder holds the state that persists across frames: the GPU
// cache, the render task cache and graph, and the gradient interner.
// A FrameBuilder is not safe for concurrent use.
type FrameBuilder struct {
	cfg       FrameConfig
	gpuCache  *renderer.GpuCache
	taskGraph *renderer.RenderTaskGraph
	taskCache *renderer.RenderTaskCache
	gradients *intern.Interner[*gradient.LinearGradientTemplate]
	zGen      encoding.ZBufferIDGenerator
	headers   encoding.PrimitiveHeaders
	arena     *mem.Arena
	key       intern.Key
}

func NewFrameBuilder(cfg FrameConfig) *FrameBuilder {
	if cfg.MaxDepthIDs == 0 {
		cfg.MaxDepthIDs = 1 << 16
	}
	return &FrameBuilder{
		cfg:       cfg,
		gpuCache:  renderer.NewGpuCache(),
		taskGraph: &renderer.RenderTaskGraph{},
		taskCache: renderer.NewRenderTaskCache(),
		gradients: intern.New[*gradient.LinearGradientTemplate](),
		zGen:      encoding.NewZBufferIDGenerator(cfg.MaxDepthIDs),
		arena:     mem.NewArena(),
	}
}

// BuildFrame processes every primitive in the scene and assembles the
// frame data. prof may be nil.
func (fb *FrameBuilder) BuildFrame(scene *Scene, prof profiler.ProfilerGroup) *Frame {
	if prof == nil {
		prof = profiler.Nop{}
	}
	prof = prof.Start("build frame")
	defer prof.End()

	fb.zGen.Reset()
	fb.headers.Reset()
	fb.arena.Reset()

	tree := scene.tree
	palette := renderer.NewTransformPalette(tree.NodeCount())
	for i := 1; i < tree.NodeCount(); i++ {
		idx := spatial.NodeIndex(i)
		palette.SetWorldTransform(idx, tree.WorldTransform(idx))
	}

	fs := &renderer.FrameState{
		GpuCache:  fb.gpuCache,
		RgBuilder: fb.taskGraph,
		TaskCache: fb.taskCache,
	}

	var instances []encoding.PrimitiveInstanceData
	pprof := prof.Start("primitives")
	for i := range scene.prims {
		instances = fb.addGradient(&scene.prims[i], tree, palette, fs, instances)
	}
	pprof.End()

	transforms := palette.Finish()

	rec := &renderer.Recording{}
	rec.UploadTexture("transform palette", 3, uint32(len(transforms)),
		renderer.TextureRGBAF32, safeish.SliceCast[[]byte](transforms))
	blocks := fb.gpuCache.Blocks()
	rec.UploadTexture("gpu cache", uint32(len(blocks)), 1,
		renderer.TextureRGBAF32, safeish.SliceCast[[]byte](blocks))
	rec.Upload("primitive headers f", safeish.SliceCast[[]byte](fb.headers.HeadersF))
	rec.Upload("primitive headers i", safeish.SliceCast[[]byte](fb.headers.HeadersI))
	rec.Upload("instances", safeish.SliceCast[[]byte](instances))

	fb.taskCache.Frame()
	fb.gradients.Maintain()

	hits, misses := fb.taskCache.Stats()
	log().Debug("built frame",
		"primitives", len(scene.prims),
		"headers", fb.headers.Len(),
		"instances", len(instances),
		"palette", len(transforms),
		"task cache hits", hits,
		"task cache misses", misses,
	)

	return &Frame{
		Headers:    &fb.headers,
		Instances:  instances,
		Transforms: transforms,
		GpuBlocks:  blocks,
		Tasks:      fb.taskGraph.Tasks,
		Recording:  rec,
	}
}

// InvalidateGpuCache evicts all GPU cache contents, e.g. after the
// backend lost its device. Templates repopulate their blocks on the next
// frame.
func (fb *FrameBuilder) InvalidateGpuCache() {
	fb.gpuCache.Invalidate()
}

func (fb *FrameBuilder) addGradient(
	prim *gradientPrimitive,
	tree *spatial.Tree,
	palette *renderer.TransformPalette,
	fs *renderer.FrameState,
	instances []encoding.PrimitiveInstanceData,
) []encoding.PrimitiveInstanceData {
	// Repeat gradients go through the gradient brush directly; everything
	// else renders into a cached tile and composites via the image brush.
	cached := prim.extend == gfx.ExtendModeClamp

	rect := prim.rect
	clip := prim.clip
	tileSize := prim.tileSize
	tileSpacing := prim.tileSpacing
	start := prim.start
	end := prim.end

	decomposed := gradient.OptimizeLinearGradient(
		&rect, &tileSize, &tileSpacing, clip, prim.extend, &start, &end, prim.stops,
		func(segRect pmath.Rect, segStart, segEnd pmath.Point, stops [2]gfx.ColorStopKey, edges encoding.EdgeAASegmentMask) {
			key := gradient.LinearGradientKey{
				PrimRect:    segRect,
				ClipRect:    segRect,
				StartPoint:  segStart,
				EndPoint:    segEnd,
				StretchSize: segRect.Size(),
				ExtendMode:  gfx.ExtendModeClamp,
				Stops:       stops[:],
				Cached:      true,
			}
			instances = fb.emitGradient(&key, prim.node, tree, palette, fs, edges, instances)
		},
	)
	if decomposed {
		return instances
	}

	key := gradient.LinearGradientKey{
		PrimRect:    rect,
		ClipRect:    clip,
		StartPoint:  start,
		EndPoint:    end,
		StretchSize: tileSize,
		TileSpacing: tileSpacing,
		ExtendMode:  prim.extend,
		Stops:       prim.stops,
		NinePatch:   prim.ninePatch,
		Cached:      cached,
	}
	return fb.emitGradient(&key, prim.node, tree, palette, fs, encoding.EdgeAAAll, instances)
}

func (fb *FrameBuilder) emitGradient(
	key *gradient.LinearGradientKey,
	node spatial.NodeIndex,
	tree *spatial.Tree,
	palette *renderer.TransformPalette,
	fs *renderer.FrameState,
	edges encoding.EdgeAASegmentMask,
	instances []encoding.PrimitiveInstanceData,
) []encoding.PrimitiveInstanceData {
	fb.key.Reset()
	key.WriteKey(&fb.key)
	handle := fb.gradients.Intern(fb.key.Bytes(), func() *gradient.LinearGradientTemplate {
		return gradient.NewLinearGradientTemplate(key)
	})
	tmpl := *fb.gradients.Get(handle)
	tmpl.Update(fs)

	header := encoding.PrimitiveHeader{
		LocalRect:           key.PrimRect,
		LocalClipRect:       key.ClipRect,
		SpecificPrimAddress: fs.GpuCache.Address(&tmpl.GpuCacheHandle),
		TransformID:         palette.GetID(node, spatial.RootNodeIndex, tree),
	}

	var userData [4]int32
	var resourceAddress int32
	if tmpl.Cached {
		userData = encoding.ImageBrushData{
			ColorMode:   encoding.ShaderColorModeImage,
			AlphaType:   encoding.AlphaTypePremultiplied,
			RasterSpace: encoding.RasterizationSpaceLocal,
			Opacity:     1,
		}.Encode()
	} else {
		stopsAddr := fs.GpuCache.Address(&tmpl.StopsHandle)
		userData = [4]int32{
			stopsAddr.AsInt(),
			int32(tmpl.ExtendMode),
			int32(len(tmpl.Stops)),
			0,
		}
		resourceAddress = stopsAddr.AsInt()
	}

	idx := fb.headers.Push(&header, fb.zGen.Next(), userData)
	taskAddr := fb.taskGraph.Address(tmpl.SrcColor)

	if len(tmpl.BrushSegments) > 0 {
		for i, seg := range tmpl.BrushSegments {
			inst := encoding.BrushInstance{
				PrimHeaderIndex:   idx,
				RenderTaskAddress: taskAddr,
				ClipTaskAddress:   encoding.InvalidRenderTaskAddress,
				SegmentIndex:      int32(i),
				EdgeFlags:         seg.EdgeFlags,
				BrushFlags:        seg.BrushFlags | encoding.BrushFlagSegmentRelative,
				ResourceAddress:   resourceAddress,
			}
			instances = mem.Append(fb.arena, instances, inst.Build())
		}
		return instances
	}

	inst := encoding.BrushInstance{
		PrimHeaderIndex:   idx,
		RenderTaskAddress: taskAddr,
		ClipTaskAddress:   encoding.InvalidRenderTaskAddress,
		SegmentIndex:      0,
		EdgeFlags:         edges,
		ResourceAddress:   resourceAddress,
	}
	return mem.Append(fb.arena, instances, inst.Build())
}
