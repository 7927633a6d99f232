// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/framegraph/device"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or none of the registered backends could open a device.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants.
const (
	// BackendNative is the name of the GPU backend over gogpu/wgpu HAL.
	BackendNative = "native"
	// BackendSoftware is the name of the recording software backend.
	BackendSoftware = "software"
)

// Factory opens a device. It returns an error when the backend cannot run
// on the current system, for example when no adapter is present.
type Factory func() (device.Device, error)
