// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/wgpu/hal"
)

// Image wraps a HAL texture.
type Image struct {
	dev  *Device
	tex  hal.Texture
	desc device.ImageDescriptor
}

// Descriptor implements device.Image.
func (i *Image) Descriptor() device.ImageDescriptor { return i.desc }

// Texture returns the underlying HAL texture.
func (i *Image) Texture() hal.Texture { return i.tex }

// Buffer wraps a HAL buffer. Host-visible buffers carry a host shadow that
// UnmapBuffer uploads through the queue.
type Buffer struct {
	dev    *Device
	buf    hal.Buffer
	desc   device.BufferDescriptor
	shadow []byte
}

// Descriptor implements device.Buffer.
func (b *Buffer) Descriptor() device.BufferDescriptor { return b.desc }

// Buffer returns the underlying HAL buffer.
func (b *Buffer) Buffer() hal.Buffer { return b.buf }

// ImageView wraps a HAL texture view.
type ImageView struct {
	image *Image
	view  hal.TextureView
	desc  device.ImageViewDescriptor
}

// Image implements device.ImageView.
func (v *ImageView) Image() device.Image { return v.image }

// Descriptor implements device.ImageView.
func (v *ImageView) Descriptor() device.ImageViewDescriptor { return v.desc }

// TextureView returns the underlying HAL texture view.
func (v *ImageView) TextureView() hal.TextureView { return v.view }

// BufferView is a byte range of a Buffer. WebGPU binds buffers by range,
// so it has no HAL object of its own.
type BufferView struct {
	buffer *Buffer
	desc   device.BufferViewDescriptor
}

// Buffer implements device.BufferView.
func (v *BufferView) Buffer() device.Buffer { return v.buffer }

// Descriptor implements device.BufferView.
func (v *BufferView) Descriptor() device.BufferViewDescriptor { return v.desc }
