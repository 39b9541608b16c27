// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"honnef.co/go/color"
)

// ColorF is an RGBA color with float32 components in linear sRGB,
// not premultiplied. This is the form gradient stops travel in through
// GPU cache blocks.
type ColorF [4]float32

// Premultiplied returns the color with the RGB components scaled by alpha.
func (c ColorF) Premultiplied() ColorF {
	a := c[3]
	return ColorF{c[0] * a, c[1] * a, c[2] * a, a}
}

// ColorKey is the content-key form of a color: linear sRGB with 8-bit
// components. Two stops with equal keys are the same color for interning
// and render-task cache purposes.
type ColorKey [4]uint8

func (c ColorKey) IsOpaque() bool { return c[3] == 0xff }

// Alpha returns the raw 8-bit alpha component.
func (c ColorKey) Alpha() uint8 { return c[3] }

func (c ColorKey) ToColorF() ColorF {
	return ColorF{
		float32(c[0]) / 255,
		float32(c[1]) / 255,
		float32(c[2]) / 255,
		float32(c[3]) / 255,
	}
}

// ColorKeyOf converts a color into its content-key form.
func ColorKeyOf(c *color.Color) ColorKey {
	cc := c.Convert(color.LinearSRGB)
	quant := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v*255 + 0.5)
	}
	return ColorKey{
		quant(cc.Values[0]),
		quant(cc.Values[1]),
		quant(cc.Values[2]),
		quant(cc.Values[3]),
	}
}
