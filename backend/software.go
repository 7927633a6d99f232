// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"github.com/gogpu/framegraph/backend/software"
	"github.com/gogpu/framegraph/device"
)

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() (device.Device, error) {
		return software.New(), nil
	})
}
