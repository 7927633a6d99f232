// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend selects the device.Device a frame graph runs on.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is registered on import of this package; the GPU
// backend registers itself when its package is imported:
//
//	import _ "github.com/gogpu/framegraph/backend/native"
//
// # Backend Selection
//
// Use Default() to open the best available device, or Get() to request
// a specific backend by name:
//
//	dev, name, err := backend.Default()
//
//	// Or request a specific backend
//	dev, err := backend.Get(backend.BackendSoftware)
//
// # Available Backends
//
// - "native": gogpu/wgpu HAL devices (graphics queue only)
// - "software": records and validates submissions without a GPU
package backend
