// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

// FrameState bundles the renderer-owned resources a primitive template
// touches during its per-frame update: the GPU cache for its data blocks
// and the render task graph and cache for off-screen work.
type FrameState struct {
	GpuCache  *GpuCache
	RgBuilder *RenderTaskGraph
	TaskCache *RenderTaskCache
}
