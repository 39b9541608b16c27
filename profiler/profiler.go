// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package profiler defines the hooks through which frame building
// reports timing spans. Implementations decide what to do with them;
// Nop discards everything.
package profiler

type ProfilerGroup interface {
	Start(label string) ProfilerGroup
	End()
}

// Nop is a ProfilerGroup that does nothing.
type Nop struct{}

func (Nop) Start(label string) ProfilerGroup { return Nop{} }
func (Nop) End()                             {}
