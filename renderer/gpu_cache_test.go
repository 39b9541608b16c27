// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"testing"

	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/pmath"
)

func TestGpuCacheRequestLifecycle(t *testing.T) {
	c := NewGpuCache()
	var h GpuCacheHandle

	req := c.Request(&h)
	if req == nil {
		t.Fatal("fresh handle must yield a request")
	}
	req.Push([4]float32{1, 2, 3, 4})
	req.PushRect(pmath.Rect{Min: pmath.Point{X: 0, Y: 0}, Max: pmath.Point{X: 5, Y: 6}})
	req.PushColor(gfx.ColorF{1, 0, 0, 1})

	if got := c.Address(&h); got != 0 {
		t.Errorf("address %d, want 0", got)
	}
	if len(c.Blocks()) != 3 {
		t.Errorf("blocks %d, want 3", len(c.Blocks()))
	}
	if c.Blocks()[1] != [4]float32{0, 0, 5, 6} {
		t.Errorf("rect block %v", c.Blocks()[1])
	}

	// Valid handles are a no-op.
	if c.Request(&h) != nil {
		t.Error("valid handle must not yield a request")
	}

	// A second handle lands after the first one's blocks.
	var h2 GpuCacheHandle
	c.Request(&h2).Push([4]float32{})
	if got := c.Address(&h2); got != 3 {
		t.Errorf("second address %d, want 3", got)
	}
}

func TestGpuCacheInvalidate(t *testing.T) {
	c := NewGpuCache()
	var h GpuCacheHandle
	c.Request(&h).Push([4]float32{1, 1, 1, 1})

	c.Invalidate()
	if len(c.Blocks()) != 0 {
		t.Error("invalidate must drop all blocks")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for stale handle address")
			}
		}()
		c.Address(&h)
	}()

	if c.Request(&h) == nil {
		t.Error("stale handle must yield a request")
	}
}
