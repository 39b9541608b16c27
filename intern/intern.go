// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package intern deduplicates primitives by content key. Interning a key
// twice yields the same handle and the same template, which keeps GPU
// cache state stable across frames for unchanged primitives.
package intern

import (
	"encoding/binary"
	"math"
	"strings"

	"honnef.co/go/safeish"
)

// Handle refers to an interned item. The zero Handle is invalid.
type Handle struct {
	index int32
	// generation guards against a handle outliving the slot it points to
	// after the slot has been freed and reused.
	generation uint32
}

func (h Handle) Valid() bool { return h.generation != 0 }

type entry struct {
	index int32
	epoch uint64
}

type slot[T any] struct {
	item       T
	generation uint32
}

// Interner maps content keys to stable slots. Entries that have not been
// interned for a few epochs are freed during Maintain and their slots
// reused.
type Interner[T any] struct {
	epoch   uint64
	mapping map[string]*entry
	slots   []slot[T]
	free    []int32
}

func New[T any]() *Interner[T] {
	return &Interner[T]{
		epoch:   1,
		mapping: make(map[string]*entry),
	}
}

// Intern returns the handle for key, building the item on first use.
// The key must fully determine the built item.
func (in *Interner[T]) Intern(key []byte, build func() T) Handle {
	keyStr := safeish.Cast[string](key)
	if e, ok := in.mapping[keyStr]; ok {
		e.epoch = in.epoch
		return Handle{index: e.index, generation: in.slots[e.index].generation}
	}
	var index int32
	if n := len(in.free); n > 0 {
		index = in.free[n-1]
		in.free = in.free[:n-1]
		in.slots[index].item = build()
		in.slots[index].generation++
	} else {
		index = int32(len(in.slots))
		in.slots = append(in.slots, slot[T]{item: build(), generation: 1})
	}
	// Copy the key so it no longer aliases the caller's scratch buffer.
	in.mapping[strings.Clone(keyStr)] = &entry{index: index, epoch: in.epoch}
	return Handle{index: index, generation: in.slots[index].generation}
}

// Get returns the item for a handle obtained from Intern this epoch or a
// recent one.
func (in *Interner[T]) Get(h Handle) *T {
	s := &in.slots[h.index]
	if s.generation != h.generation {
		panic("interned handle used after its slot was reused")
	}
	return &s.item
}

// Len returns the number of live interned entries.
func (in *Interner[T]) Len() int {
	return len(in.mapping)
}

// retainedEpochs is how many epochs an entry survives without being
// re-interned.
const retainedEpochs = 2

// Maintain advances the epoch and frees entries that have not been used
// recently.
func (in *Interner[T]) Maintain() {
	in.epoch++
	for k, e := range in.mapping {
		if e.epoch+retainedEpochs < in.epoch {
			in.free = append(in.free, e.index)
			delete(in.mapping, k)
		}
	}
}

// Key builds interning keys from primitive fields. Field order matters;
// both sides of a comparison must append fields identically.
type Key struct {
	buf []byte
}

func (k *Key) Reset() { k.buf = k.buf[:0] }

func (k *Key) Bytes() []byte { return k.buf }

func (k *Key) Uint32(v uint32) {
	k.buf = binary.LittleEndian.AppendUint32(k.buf, v)
}

func (k *Key) Int32(v int32) {
	k.Uint32(uint32(v))
}

func (k *Key) Float32(v float32) {
	k.Uint32(math.Float32bits(v))
}

func (k *Key) Bool(v bool) {
	if v {
		k.buf = append(k.buf, 1)
	} else {
		k.buf = append(k.buf, 0)
	}
}

func (k *Key) Append(b []byte) {
	k.buf = append(k.buf, b...)
}
