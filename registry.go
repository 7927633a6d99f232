// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/device"
)

// Registry resolves handles to the concrete objects of the current frame
// slot. It is passed to every RecordFunc and is also available through
// Graph.Registry between Execute and NextFrame.
//
// Lookups never panic. Handles of culled resources, resources whose
// allocation failed, handles outside the current frame's tables and
// handles of earlier frames resolve to nil or 0.
type Registry struct {
	g *Graph
}

func (r *Registry) object(h ResourceHandle) *resourceObject {
	f := &r.g.slots[r.g.slot]
	i, ok := handleIndex(uint32(h), r.g.generation(), len(f.resources))
	if !ok {
		return nil
	}
	return &f.resources[i]
}

func (r *Registry) viewObject(h ResourceViewHandle) *viewObject {
	f := &r.g.slots[r.g.slot]
	i, ok := handleIndex(uint32(h), r.g.generation(), len(f.views))
	if !ok {
		return nil
	}
	return &f.views[i]
}

// Image returns the image backing h, or nil.
func (r *Registry) Image(h ResourceHandle) device.Image {
	if o := r.object(h); o != nil {
		return o.image
	}
	return nil
}

// Buffer returns the buffer backing h, or nil.
func (r *Registry) Buffer(h ResourceHandle) device.Buffer {
	if o := r.object(h); o != nil {
		return o.buffer
	}
	return nil
}

// ImageView returns the image view backing h, or nil.
func (r *Registry) ImageView(h ResourceViewHandle) device.ImageView {
	if v := r.viewObject(h); v != nil {
		return v.image
	}
	return nil
}

// BufferView returns the buffer view backing h, or nil.
func (r *Registry) BufferView(h ResourceViewHandle) device.BufferView {
	if v := r.viewObject(h); v != nil {
		return v.buffer
	}
	return nil
}

// BindlessHandle returns the bindless index of h for kind, or 0 if the
// view is not registered as kind.
func (r *Registry) BindlessHandle(h ResourceViewHandle, kind device.DescriptorKind) uint32 {
	if kind >= device.DescriptorKindCount {
		return 0
	}
	if v := r.viewObject(h); v != nil {
		return v.bindless[kind]
	}
	return 0
}

// Culled reports whether h was culled in the executed frame.
func (r *Registry) Culled(h ResourceHandle) bool {
	g := r.g
	i, ok := handleIndex(uint32(h), g.generation(), len(g.resources))
	if !g.executed || !ok {
		return false
	}
	return g.resources[i].culled
}

// Map returns the host memory of the byte range of buffer view h. The
// buffer must be host visible. A view without a backing buffer maps to
// nil.
func (r *Registry) Map(h ResourceViewHandle) ([]byte, error) {
	v := r.viewObject(h)
	if v == nil || v.buffer == nil {
		return nil, nil
	}
	data, err := r.g.dev.MapBuffer(v.buffer.Buffer())
	if err != nil {
		return nil, fmt.Errorf("framegraph: map view %d: %w", h, err)
	}
	d := v.buffer.Descriptor()
	if d.Offset+d.Size > uint64(len(data)) {
		r.g.dev.UnmapBuffer(v.buffer.Buffer())
		return nil, fmt.Errorf("framegraph: map view %d: range %d+%d exceeds %d mapped bytes", h, d.Offset, d.Size, len(data))
	}
	return data[d.Offset : d.Offset+d.Size], nil
}

// Unmap flushes host writes to the buffer of view h.
func (r *Registry) Unmap(h ResourceViewHandle) {
	if v := r.viewObject(h); v != nil && v.buffer != nil {
		r.g.dev.UnmapBuffer(v.buffer.Buffer())
	}
}
