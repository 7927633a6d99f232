// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/gputypes"
)

// materialize culls unused resources and creates device objects and views
// for the rest in the current slot.
func (g *Graph) materialize() {
	f := &g.slots[g.slot]
	log := Logger()

	f.resources = append(f.resources[:0], make([]resourceObject, len(g.resources))...)
	for i := range g.resources {
		r := &g.resources[i]
		n := r.subresources()

		if !r.isExternal() && g.ledger.empty(r.ledgerOffset, n) {
			r.culled = true
			continue
		}

		var states device.ResourceState
		for s := range n {
			for _, u := range g.ledger.usages(r.ledgerOffset + s) {
				states |= u.State | u.FinalState
			}
		}

		obj := &f.resources[i]
		switch {
		case r.kind == KindImage && r.isExternal():
			r.textureUsage = r.image.Usage | device.TextureUsageFor(states)
			obj.image = r.importedImage
			obj.external = true
		case r.kind == KindBuffer && r.isExternal():
			r.bufferUsage = r.buffer.Usage | device.BufferUsageFor(states)
			obj.buffer = r.importedBuffer
			obj.external = true
		case r.kind == KindImage:
			r.textureUsage = r.image.Usage | device.TextureUsageFor(states)
			desc := r.image
			desc.Usage = r.textureUsage
			img, err := g.dev.CreateImage(&desc)
			if err != nil {
				log.Warn("framegraph: image allocation failed", "name", r.name, "err", err)
				continue
			}
			obj.image = img
		default:
			r.bufferUsage = r.buffer.Usage | device.BufferUsageFor(states)
			desc := r.buffer
			desc.Usage = r.bufferUsage
			buf, err := g.dev.CreateBuffer(&desc)
			if err != nil {
				log.Warn("framegraph: buffer allocation failed", "name", r.name, "err", err)
				continue
			}
			obj.buffer = buf
		}
	}

	f.views = append(f.views[:0], make([]viewObject, len(g.views))...)
	for i := range g.views {
		v := &g.views[i]
		r := &g.resources[v.resource.index()]
		obj := &f.resources[v.resource.index()]
		vo := &f.views[i]

		switch {
		case r.culled:
		case obj.image != nil:
			iv, err := g.dev.CreateImageView(obj.image, &v.image)
			if err != nil {
				log.Warn("framegraph: image view allocation failed", "name", v.image.Label, "err", err)
				continue
			}
			vo.image = iv
			g.registerImageView(vo, r.textureUsage)
		case obj.buffer != nil:
			bv, err := g.dev.CreateBufferView(obj.buffer, &v.buffer)
			if err != nil {
				log.Warn("framegraph: buffer view allocation failed", "name", v.buffer.Label, "err", err)
				continue
			}
			vo.buffer = bv
			g.registerBufferView(vo, r.bufferUsage)
		}
	}
}

func (g *Graph) registerImageView(vo *viewObject, usage gputypes.TextureUsage) {
	d := g.opts.descriptors
	if d == nil {
		return
	}
	if usage&gputypes.TextureUsageTextureBinding != 0 {
		g.register(vo, device.DescriptorSampledImage, d.RegisterImage(device.DescriptorSampledImage, vo.image))
	}
	if usage&gputypes.TextureUsageStorageBinding != 0 {
		g.register(vo, device.DescriptorStorageImage, d.RegisterImage(device.DescriptorStorageImage, vo.image))
	}
}

func (g *Graph) registerBufferView(vo *viewObject, usage gputypes.BufferUsage) {
	d := g.opts.descriptors
	if d == nil {
		return
	}
	if usage&gputypes.BufferUsageUniform != 0 {
		g.register(vo, device.DescriptorUniformBuffer, d.RegisterBuffer(device.DescriptorUniformBuffer, vo.buffer))
	}
	if usage&gputypes.BufferUsageStorage != 0 {
		g.register(vo, device.DescriptorStorageBuffer, d.RegisterBuffer(device.DescriptorStorageBuffer, vo.buffer))
	}
}

func (g *Graph) register(vo *viewObject, kind device.DescriptorKind, idx uint32) {
	if idx == 0 {
		Logger().Warn("framegraph: bindless registry exhausted", "kind", kind)
	}
	vo.bindless[kind] = idx
}
