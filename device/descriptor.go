// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "github.com/gogpu/gputypes"

// ImageDescriptor describes an image to create.
type ImageDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Dimension is the image dimension (1D, 2D, 3D).
	Dimension gputypes.TextureDimension

	// Size is the image extent. For 1D and 2D images DepthOrArrayLayers
	// is the array layer count; for 3D images it is the depth.
	Size gputypes.Extent3D

	// Format is the texel format.
	Format gputypes.TextureFormat

	// MipLevelCount is the number of mip levels (1+).
	MipLevelCount uint32

	// SampleCount is the number of samples per texel (1 for non-MSAA).
	SampleCount uint32

	// Usage lists every way the image will be accessed.
	Usage gputypes.TextureUsage
}

// ArrayLayers returns the number of array layers of the image.
func (d *ImageDescriptor) ArrayLayers() uint32 {
	if d.Dimension == gputypes.TextureDimension3D || d.Size.DepthOrArrayLayers == 0 {
		return 1
	}
	return d.Size.DepthOrArrayLayers
}

// MipLevels returns the number of mip levels, treating 0 as 1.
func (d *ImageDescriptor) MipLevels() uint32 {
	if d.MipLevelCount == 0 {
		return 1
	}
	return d.MipLevelCount
}

// Subresources returns the number of (mip level, array layer) pairs.
func (d *ImageDescriptor) Subresources() uint32 {
	return d.MipLevels() * d.ArrayLayers()
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage lists every way the buffer will be accessed.
	Usage gputypes.BufferUsage

	// HostVisible requests memory the host can map.
	HostVisible bool

	// Concurrent allows access from several queues without ownership
	// transfers.
	Concurrent bool
}

// SubresourceRange selects mip levels and array layers of an image.
type SubresourceRange struct {
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// ImageViewDescriptor describes an image view to create.
type ImageViewDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Format overrides the image format. TextureFormatUndefined inherits it.
	Format gputypes.TextureFormat

	// Dimension is the view dimension.
	Dimension gputypes.TextureViewDimension

	// Range is the viewed subresource range. Counts are never zero.
	Range SubresourceRange
}

// BufferViewDescriptor describes a buffer view to create.
type BufferViewDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Offset is the first viewed byte.
	Offset uint64

	// Size is the number of viewed bytes.
	Size uint64

	// Stride is the element size in bytes, 0 for raw views.
	Stride uint64
}

// DescriptorKind is the shader-visible binding type a view is registered as
// in a bindless descriptor table.
type DescriptorKind uint8

// Descriptor kinds.
const (
	DescriptorSampledImage DescriptorKind = iota
	DescriptorStorageImage
	DescriptorUniformBuffer
	DescriptorStorageBuffer

	// DescriptorKindCount is the number of descriptor kinds.
	DescriptorKindCount = 4
)

// String returns the descriptor kind name.
func (k DescriptorKind) String() string {
	switch k {
	case DescriptorSampledImage:
		return "sampled-image"
	case DescriptorStorageImage:
		return "storage-image"
	case DescriptorUniformBuffer:
		return "uniform-buffer"
	case DescriptorStorageBuffer:
		return "storage-buffer"
	default:
		return "unknown"
	}
}
