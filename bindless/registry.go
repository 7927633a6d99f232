// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bindless implements a fixed-capacity bindless descriptor index
// allocator.
//
// Each descriptor kind owns an independent table of shader-visible slots.
// Index 0 of every table is reserved: it is never handed out and is returned
// when a table is full, so shaders can bind a fallback at slot 0 and callers
// can test for exhaustion with a simple zero check.
//
// Released indices are reused last-in first-out.
package bindless

import (
	"sync"

	"github.com/gogpu/framegraph/device"
)

// DefaultCapacity is the per-kind slot count used by New when capacity is 0.
const DefaultCapacity = 4096

// Registry hands out bindless indices for image and buffer views.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	tables [device.DescriptorKindCount]table
}

type table struct {
	slots []any // index 0 unused
	free  []uint32
	next  uint32
	used  int
}

// New creates a registry with the same capacity for every descriptor kind.
// The capacity includes the reserved index 0.
func New(capacity uint32) *Registry {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	var caps [device.DescriptorKindCount]uint32
	for i := range caps {
		caps[i] = capacity
	}
	return NewWithCapacities(caps)
}

// NewWithCapacities creates a registry with a capacity per descriptor kind.
// A capacity of 1 or less leaves the kind without usable slots.
func NewWithCapacities(caps [device.DescriptorKindCount]uint32) *Registry {
	r := &Registry{}
	for i, c := range caps {
		if c == 0 {
			c = 1
		}
		r.tables[i] = table{slots: make([]any, c), next: 1}
	}
	return r
}

// RegisterImage stores view in the table for kind and returns its index,
// or 0 if the table is full or kind is not an image kind.
func (r *Registry) RegisterImage(kind device.DescriptorKind, view device.ImageView) uint32 {
	if view == nil || (kind != device.DescriptorSampledImage && kind != device.DescriptorStorageImage) {
		return 0
	}
	return r.register(kind, view)
}

// RegisterBuffer stores view in the table for kind and returns its index,
// or 0 if the table is full or kind is not a buffer kind.
func (r *Registry) RegisterBuffer(kind device.DescriptorKind, view device.BufferView) uint32 {
	if view == nil || (kind != device.DescriptorUniformBuffer && kind != device.DescriptorStorageBuffer) {
		return 0
	}
	return r.register(kind, view)
}

func (r *Registry) register(kind device.DescriptorKind, obj any) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &r.tables[kind]
	var idx uint32
	switch {
	case len(t.free) > 0:
		idx = t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
	case int(t.next) < len(t.slots):
		idx = t.next
		t.next++
	default:
		return 0
	}
	t.slots[idx] = obj
	t.used++
	return idx
}

// Release returns idx of kind to the free list. Releasing 0, an unused
// index or an out-of-range index does nothing.
func (r *Registry) Release(kind device.DescriptorKind, idx uint32) {
	if kind >= device.DescriptorKindCount {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &r.tables[kind]
	if idx == 0 || int(idx) >= len(t.slots) || t.slots[idx] == nil {
		return
	}
	t.slots[idx] = nil
	t.free = append(t.free, idx)
	t.used--
}

// Lookup returns the view stored at idx of kind, or nil.
func (r *Registry) Lookup(kind device.DescriptorKind, idx uint32) any {
	if kind >= device.DescriptorKindCount {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &r.tables[kind]
	if int(idx) >= len(t.slots) {
		return nil
	}
	return t.slots[idx]
}

// Len returns the number of indices in use for kind.
func (r *Registry) Len(kind device.DescriptorKind) int {
	if kind >= device.DescriptorKindCount {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tables[kind].used
}

// Capacity returns the number of usable indices for kind.
func (r *Registry) Capacity(kind device.DescriptorKind) int {
	if kind >= device.DescriptorKindCount {
		return 0
	}
	return len(r.tables[kind].slots) - 1
}
