// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native runs frame graphs on GPUs through the gogpu/wgpu HAL.
//
// The device exposes the graphics queue only. Image barriers become HAL
// texture usage transitions and buffer barriers buffer usage transitions.
// Host-visible buffers are mapped through a host shadow that is uploaded
// with Queue.WriteBuffer on unmap.
//
// Importing the package registers the "native" backend:
//
//	import _ "github.com/gogpu/framegraph/backend/native"
//
// A device can also share the HAL device of a gogpu window:
//
//	dev, err := native.NewFromProvider(app.GPUContextProvider())
//
// Pass record callbacks reach the HAL encoder through the command list:
//
//	func(reg *framegraph.Registry, cl device.CommandList) {
//		enc := cl.(*native.CommandList).Encoder()
//		pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: "blur"})
//		...
//	}
//
// Build with the nogpu tag to exclude the package.
package native
