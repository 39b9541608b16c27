// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"honnef.co/go/prism/encoding"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/pmath"
)

// GpuCache stores small fixed-width blocks of primitive data addressable
// from shaders. Handles become stale when the cache is invalidated;
// requesting a stale handle hands back a write request, requesting a
// fresh one is a cheap no-op. Blocks persist across frames until the
// cache evicts them wholesale.
type GpuCache struct {
	epoch  uint64
	blocks [][4]float32
}

// GpuCacheHandle refers to a primitive's block range in the cache. The
// zero value is invalid and will be populated on first request.
type GpuCacheHandle struct {
	epoch   uint64
	address encoding.GpuCacheAddress
}

func (h GpuCacheHandle) valid(c *GpuCache) bool {
	return h.epoch == c.epoch
}

func NewGpuCache() *GpuCache {
	return &GpuCache{epoch: 1}
}

// Invalidate evicts all cache contents. Every handle issued so far
// becomes stale and will be re-requested on next use.
func (c *GpuCache) Invalidate() {
	c.epoch++
	c.blocks = c.blocks[:0]
}

// Request returns a write request for the handle's data if it needs
// (re)populating, or nil if the cached blocks are still valid. The
// handle's address is updated to the new block range when a request is
// issued.
func (c *GpuCache) Request(h *GpuCacheHandle) *GpuDataRequest {
	if h.valid(c) {
		return nil
	}
	h.epoch = c.epoch
	h.address = encoding.GpuCacheAddress(len(c.blocks))
	return &GpuDataRequest{cache: c}
}

// Address returns the shader-visible address for a populated handle.
func (c *GpuCache) Address(h *GpuCacheHandle) encoding.GpuCacheAddress {
	if !h.valid(c) {
		panic("address of stale gpu cache handle")
	}
	return h.address
}

// Blocks returns the flat block array for upload to the cache texture.
func (c *GpuCache) Blocks() [][4]float32 {
	return c.blocks
}

// GpuDataRequest appends 16-byte blocks for one handle.
type GpuDataRequest struct {
	cache *GpuCache
}

func (r *GpuDataRequest) Push(block [4]float32) {
	r.cache.blocks = append(r.cache.blocks, block)
}

func (r *GpuDataRequest) PushRect(rect pmath.Rect) {
	r.Push([4]float32{rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y})
}

func (r *GpuDataRequest) PushColor(c gfx.ColorF) {
	r.Push([4]float32(c))
}
