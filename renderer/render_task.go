// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"honnef.co/go/prism/encoding"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/pmath"
)

// RenderTaskID identifies a task in the render task graph.
type RenderTaskID int32

// InvalidRenderTaskID marks an unscheduled task reference.
const InvalidRenderTaskID RenderTaskID = -1

// LineOrientation distinguishes the two axis-aligned fast-path gradient
// directions.
type LineOrientation uint8

const (
	LineOrientationHorizontal LineOrientation = iota
	LineOrientationVertical
)

// RenderTaskKind describes the off-screen work a task performs.
type RenderTaskKind interface {
	isRenderTaskKind()
}

// FastLinearGradientTask rasterizes a simple 2-stop axis-aligned gradient
// tile. Equal colors collapse to a 1x1 solid tile.
type FastLinearGradientTask struct {
	Color0      gfx.ColorKey
	Color1      gfx.ColorKey
	Orientation LineOrientation
}

// LinearGradientTask rasterizes the general multi-stop gradient path.
type LinearGradientTask struct {
	Start      pmath.Point
	End        pmath.Point
	Scale      [2]float32
	ExtendMode gfx.ExtendMode
	Stops      []gfx.GradientStop
}

func (FastLinearGradientTask) isRenderTaskKind() {}
func (LinearGradientTask) isRenderTaskKind()     {}

// RenderTask is one node of the frame's render task graph.
type RenderTask struct {
	Size pmath.IntSize
	Kind RenderTaskKind
}

// RenderTaskGraph accumulates the off-screen rendering steps later draw
// calls sample from. It persists across frames so that content-addressed
// tasks can be reused; the task cache decides which entries survive.
type RenderTaskGraph struct {
	Tasks []RenderTask
}

func (g *RenderTaskGraph) Add(size pmath.IntSize, kind RenderTaskKind) RenderTaskID {
	id := RenderTaskID(len(g.Tasks))
	g.Tasks = append(g.Tasks, RenderTask{Size: size, Kind: kind})
	return id
}

// Address returns the task-texture address encoded into instance data.
// Task addresses are 16 bits wide; an id that no longer fits would
// silently alias another task, so it panics instead.
func (g *RenderTaskGraph) Address(id RenderTaskID) encoding.RenderTaskAddress {
	if id == InvalidRenderTaskID {
		return encoding.InvalidRenderTaskAddress
	}
	if id < 0 || uint32(id) >= uint32(encoding.InvalidRenderTaskAddress) {
		panic("render task id out of addressable range")
	}
	return encoding.RenderTaskAddress(id)
}

// RenderTaskCacheKeyKind tags which key variant a cache key carries.
type RenderTaskCacheKeyKind uint8

const (
	// RenderTaskCacheKeyFastLinearGradient keys the 2-stop fast path.
	RenderTaskCacheKeyFastLinearGradient RenderTaskCacheKeyKind = iota + 1
	// RenderTaskCacheKeyLinearGradient keys the general multi-stop path.
	RenderTaskCacheKeyLinearGradient
)

// PointKey is a hashable point for cache keys.
type PointKey struct {
	X, Y float32
}

// FastLinearGradientCacheKey is the content key of a fast-path gradient
// tile.
type FastLinearGradientCacheKey struct {
	Color0      gfx.ColorKey
	Color1      gfx.ColorKey
	Orientation LineOrientation
}

// LinearGradientCacheKey is the content key of a general gradient tile.
// Stops holds the serialized stop list; see gradient key building. Key
// equality must track semantic equality of the rendered output exactly:
// a false match paints wrong pixels, a missed match only costs a
// rasterization.
type LinearGradientCacheKey struct {
	Size          pmath.IntSize
	Start         PointKey
	End           PointKey
	Scale         PointKey
	ExtendMode    gfx.ExtendMode
	Stops         string
	ReversedStops bool
}

// RenderTaskCacheKey content-addresses a cached render task.
type RenderTaskCacheKey struct {
	Size pmath.IntSize
	Kind RenderTaskCacheKeyKind

	// Exactly one of the following is meaningful, selected by Kind.
	Fast   FastLinearGradientCacheKey
	Linear LinearGradientCacheKey
}

type renderTaskCacheEntry struct {
	id RenderTaskID
}

// RenderTaskCache reuses render tasks across primitives and frames by
// content key. Entries not requested during a frame are dropped at the
// next Frame call.
type RenderTaskCache struct {
	res    map[RenderTaskCacheKey]renderTaskCacheEntry
	newRes map[RenderTaskCacheKey]renderTaskCacheEntry

	hits   uint64
	misses uint64
}

func NewRenderTaskCache() *RenderTaskCache {
	return &RenderTaskCache{
		res:    make(map[RenderTaskCacheKey]renderTaskCacheEntry),
		newRes: make(map[RenderTaskCacheKey]renderTaskCacheEntry),
	}
}

// RequestRenderTask returns the task for key, invoking build to schedule
// it on a miss. Hits keep the entry alive for the next frame sweep.
func (c *RenderTaskCache) RequestRenderTask(
	key RenderTaskCacheKey,
	g *RenderTaskGraph,
	build func(*RenderTaskGraph) RenderTaskID,
) RenderTaskID {
	if e, ok := c.res[key]; ok {
		c.newRes[key] = e
		c.hits++
		return e.id
	}
	if e, ok := c.newRes[key]; ok {
		c.hits++
		return e.id
	}
	id := build(g)
	c.newRes[key] = renderTaskCacheEntry{id: id}
	c.misses++
	return id
}

// Frame retires entries that were not requested since the previous call.
func (c *RenderTaskCache) Frame() {
	clear(c.res)
	c.res, c.newRes = c.newRes, c.res
}

// Stats returns the hit and miss counts since the cache was created.
func (c *RenderTaskCache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}
