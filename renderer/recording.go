// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"sync/atomic"
)

var resourceID atomic.Uint64

func nextResourceID() ResourceID {
	return ResourceID(resourceID.Add(1))
}

// ResourceID uniquely identifies a GPU resource across recordings.
type ResourceID uint64

// Recording is the backend-neutral list of upload commands produced for
// one frame. A GPU backend replays it to populate the vertex textures and
// instance buffers the shaders read; this module never talks to a GPU API
// directly.
type Recording struct {
	Commands []Command
}

func (rec *Recording) push(cmd Command) {
	rec.Commands = append(rec.Commands, cmd)
}

// Upload records a buffer upload and returns its proxy.
func (rec *Recording) Upload(name string, data []byte) BufferProxy {
	buf := NewBufferProxy(uint64(len(data)), name)
	rec.push(&Upload{buf, data})
	return buf
}

// UploadTexture records a texture upload, used for the transform palette
// and GPU cache textures, and returns its proxy.
func (rec *Recording) UploadTexture(name string, width, height uint32, format TextureFormat, data []byte) TextureProxy {
	tex := NewTextureProxy(width, height, format, name)
	rec.push(&UploadTexture{tex, data})
	return tex
}

func NewBufferProxy(size uint64, name string) BufferProxy {
	return BufferProxy{Size: size, ID: nextResourceID(), Name: name}
}

func NewTextureProxy(width, height uint32, format TextureFormat, name string) TextureProxy {
	return TextureProxy{
		Width:  width,
		Height: height,
		Format: format,
		ID:     nextResourceID(),
		Name:   name,
	}
}

type BufferProxy struct {
	Size uint64
	ID   ResourceID
	Name string
}

// TextureFormat is the pixel format of an uploaded texture.
type TextureFormat int

const (
	// TextureRGBAF32 holds four float32 components per texel; the layout
	// of the transform palette and GPU cache textures.
	TextureRGBAF32 TextureFormat = iota
	// TextureRGBAI32 holds four int32 components per texel; the layout of
	// the integer primitive header texture.
	TextureRGBAI32
)

type TextureProxy struct {
	Width  uint32
	Height uint32
	Format TextureFormat
	ID     ResourceID
	Name   string
}

// Command is one step of a recording.
type Command interface {
	isCommand()
}

func (*Upload) isCommand()        {}
func (*UploadTexture) isCommand() {}

type Upload struct {
	Buffer BufferProxy
	Data   []byte
}

type UploadTexture struct {
	Texture TextureProxy
	Data    []byte
}
