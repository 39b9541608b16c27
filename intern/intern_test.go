// Copyright 2025 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package intern

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestInternDedup(t *testing.T) {
	in := New[string]()
	builds := 0
	build := func() string {
		builds++
		return "item"
	}

	h1 := in.Intern([]byte("key"), build)
	h2 := in.Intern([]byte("key"), build)
	if h1 != h2 {
		t.Errorf("same key interned to different handles: %v vs %v", h1, h2)
	}
	if builds != 1 {
		t.Errorf("build called %d times, want 1", builds)
	}
	if got := *in.Get(h1); got != "item" {
		t.Errorf("got %q", got)
	}
	if in.Len() != 1 {
		t.Errorf("len %d, want 1", in.Len())
	}

	h3 := in.Intern([]byte("other"), build)
	if h3 == h1 {
		t.Error("different keys interned to the same handle")
	}
	if in.Len() != 2 {
		t.Errorf("len %d, want 2", in.Len())
	}
}

func TestInternKeyCopied(t *testing.T) {
	in := New[int]()
	key := []byte("scratch")
	in.Intern(key, func() int { return 1 })
	// Clobber the caller's buffer; the interner must have its own copy.
	for i := range key {
		key[i] = 'x'
	}
	h := in.Intern([]byte("scratch"), func() int { return 2 })
	if got := *in.Get(h); got != 1 {
		t.Errorf("got %d, want original item 1", got)
	}
}

func TestMaintainFreesStaleEntries(t *testing.T) {
	in := New[string]()
	h := in.Intern([]byte("a"), func() string { return "a" })

	// Entries survive a couple of epochs without use.
	in.Maintain()
	in.Maintain()
	if in.Len() != 1 {
		t.Fatalf("entry freed too early, len %d", in.Len())
	}
	in.Maintain()
	if in.Len() != 0 {
		t.Fatalf("stale entry not freed, len %d", in.Len())
	}

	// The freed slot is reused with a bumped generation.
	h2 := in.Intern([]byte("b"), func() string { return "b" })
	if h2.index != h.index {
		t.Errorf("slot not reused: %d vs %d", h2.index, h.index)
	}
	if h2.generation == h.generation {
		t.Error("generation not bumped on reuse")
	}
	if got := *in.Get(h2); got != "b" {
		t.Errorf("got %q", got)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for handle into a reused slot")
			}
		}()
		in.Get(h)
	}()
}

func TestReinterningKeepsEntryAlive(t *testing.T) {
	in := New[string]()
	in.Intern([]byte("a"), func() string { return "a" })
	for i := 0; i < 10; i++ {
		in.Maintain()
		in.Intern([]byte("a"), func() string {
			t.Error("rebuilt an entry that was kept alive")
			return ""
		})
	}
	if in.Len() != 1 {
		t.Errorf("len %d, want 1", in.Len())
	}
}

func TestKeyLayout(t *testing.T) {
	var k Key
	k.Uint32(0xdeadbeef)
	k.Int32(-1)
	k.Float32(1.5)
	k.Bool(true)
	k.Append([]byte{7})

	b := k.Bytes()
	if len(b) != 4+4+4+1+1 {
		t.Fatalf("len %d", len(b))
	}
	if binary.LittleEndian.Uint32(b[0:4]) != 0xdeadbeef {
		t.Error("uint32 field")
	}
	if int32(binary.LittleEndian.Uint32(b[4:8])) != -1 {
		t.Error("int32 field")
	}
	if math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])) != 1.5 {
		t.Error("float32 field")
	}
	if b[12] != 1 || b[13] != 7 {
		t.Error("trailing fields")
	}

	k.Reset()
	if len(k.Bytes()) != 0 {
		t.Error("reset did not clear the key")
	}
}
