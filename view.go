// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/gputypes"
)

// ResourceViewHandle identifies a view declared in the current frame.
// Like ResourceHandle it carries a 1-based index and the declaring frame's
// generation, and stays valid until NextFrame.
type ResourceViewHandle uint32

// InvalidView is the null view handle.
const InvalidView ResourceViewHandle = 0

// Valid reports whether h is not the null handle.
func (h ResourceViewHandle) Valid() bool { return h != InvalidView }

func (g *Graph) addView(v view) ResourceViewHandle {
	if len(g.views) == handleIndexMask {
		invariant("more than %d views in one frame", handleIndexMask)
	}
	g.views = append(g.views, v)
	return ResourceViewHandle(g.generation()<<handleIndexBits | uint32(len(g.views)))
}

// ImageViewDescription describes a view over a range of an image's
// subresources. Zero counts select every remaining level or layer.
type ImageViewDescription struct {
	Resource ResourceHandle
	Name     string

	// Format overrides the image format. TextureFormatUndefined inherits it.
	Format    gputypes.TextureFormat
	Dimension gputypes.TextureViewDimension

	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// BufferViewDescription describes a byte range of a buffer. Size 0
// selects the rest of the buffer.
type BufferViewDescription struct {
	Resource ResourceHandle
	Name     string

	Offset uint64
	Size   uint64
	Stride uint64
}

type view struct {
	resource ResourceHandle
	kind     ResourceKind
	image    device.ImageViewDescriptor
	buffer   device.BufferViewDescriptor
}

// CreateImageView declares a view over an image declared earlier in the
// frame.
func (g *Graph) CreateImageView(desc ImageViewDescription) ResourceViewHandle {
	g.checkDeclaring()
	r := g.resource(desc.Resource)
	if r.kind != KindImage {
		invariant("image view %q over %v %q", desc.Name, r.kind, r.name)
	}

	if desc.BaseMipLevel >= r.mipLevels || desc.BaseArrayLayer >= r.arrayLayers {
		invariant("image view %q starts outside %q", desc.Name, r.name)
	}
	levels := desc.MipLevelCount
	if levels == 0 {
		levels = r.mipLevels - desc.BaseMipLevel
	}
	layers := desc.ArrayLayerCount
	if layers == 0 {
		layers = r.arrayLayers - desc.BaseArrayLayer
	}
	if desc.BaseMipLevel+levels > r.mipLevels || desc.BaseArrayLayer+layers > r.arrayLayers {
		invariant("image view %q exceeds %q (%d levels, %d layers)", desc.Name, r.name, r.mipLevels, r.arrayLayers)
	}

	dim := desc.Dimension
	if dim == gputypes.TextureViewDimensionUndefined {
		dim = defaultViewDimension(r.image.Dimension, layers)
	}

	return g.addView(view{
		resource: desc.Resource,
		kind:     KindImage,
		image: device.ImageViewDescriptor{
			Label:     desc.Name,
			Format:    desc.Format,
			Dimension: dim,
			Range: device.SubresourceRange{
				BaseMipLevel:    desc.BaseMipLevel,
				MipLevelCount:   levels,
				BaseArrayLayer:  desc.BaseArrayLayer,
				ArrayLayerCount: layers,
			},
		},
	})
}

// CreateBufferView declares a view over a buffer declared earlier in the
// frame.
func (g *Graph) CreateBufferView(desc BufferViewDescription) ResourceViewHandle {
	g.checkDeclaring()
	r := g.resource(desc.Resource)
	if r.kind != KindBuffer {
		invariant("buffer view %q over %v %q", desc.Name, r.kind, r.name)
	}
	size := desc.Size
	if desc.Offset > r.buffer.Size {
		invariant("buffer view %q starts outside %q", desc.Name, r.name)
	}
	if size == 0 {
		size = r.buffer.Size - desc.Offset
	}
	if desc.Offset+size > r.buffer.Size {
		invariant("buffer view %q exceeds %q (%d bytes)", desc.Name, r.name, r.buffer.Size)
	}

	return g.addView(view{
		resource: desc.Resource,
		kind:     KindBuffer,
		buffer: device.BufferViewDescriptor{
			Label:  desc.Name,
			Offset: desc.Offset,
			Size:   size,
			Stride: desc.Stride,
		},
	})
}

// DefaultImageView declares a view over every subresource of an image.
func (g *Graph) DefaultImageView(h ResourceHandle) ResourceViewHandle {
	return g.CreateImageView(ImageViewDescription{Resource: h, Name: g.resource(h).name})
}

// DefaultBufferView declares a view over a whole buffer.
func (g *Graph) DefaultBufferView(h ResourceHandle) ResourceViewHandle {
	return g.CreateBufferView(BufferViewDescription{Resource: h, Name: g.resource(h).name})
}

// view returns the record for h, panicking on invalid or stale handles.
func (g *Graph) view(h ResourceViewHandle) *view {
	i, ok := handleIndex(uint32(h), g.generation(), len(g.views))
	if !ok {
		if h != InvalidView && uint32(h)>>handleIndexBits != g.generation() {
			invariant("stale view handle %#x from an earlier frame", uint32(h))
		}
		invariant("invalid view handle %#x (%d declared)", uint32(h), len(g.views))
	}
	return &g.views[i]
}

func defaultViewDimension(dim gputypes.TextureDimension, layers uint32) gputypes.TextureViewDimension {
	switch {
	case dim == gputypes.TextureDimension1D && layers == 1:
		return gputypes.TextureViewDimension1D
	case dim == gputypes.TextureDimension3D:
		return gputypes.TextureViewDimension3D
	case layers == 1:
		return gputypes.TextureViewDimension2D
	default:
		return gputypes.TextureViewDimension2DArray
	}
}
