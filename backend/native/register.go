// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/device"
)

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func() (device.Device, error) {
		return Open()
	})
}
