// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("failed to compile shader: SPIR-V size %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// ShaderModule returns a shader module for WGSL source, compiling it on
// first use. Modules are cached by source and live until Destroy, so pass
// record callbacks may request them every frame.
func (d *Device) ShaderModule(label, source string) (hal.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return nil, ErrDestroyed
	}
	if m, ok := d.shaders[source]; ok {
		return m, nil
	}

	spirv, err := compileWGSL(source)
	if err != nil {
		return nil, fmt.Errorf("native: shader %q: %w", label, err)
	}
	m, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, halError(fmt.Sprintf("create shader module %q", label), err)
	}
	d.shaders[source] = m
	return m, nil
}

// ShaderCount returns the number of cached shader modules.
func (d *Device) ShaderCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.shaders)
}
