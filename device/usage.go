// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "github.com/gogpu/gputypes"

// TextureUsageFor returns the texture usage an image needs to be used in
// every state of s.
func TextureUsageFor(s ResourceState) gputypes.TextureUsage {
	var u gputypes.TextureUsage
	if s&StateTextureRead != 0 {
		u |= gputypes.TextureUsageTextureBinding
	}
	if s&StateRWTexture != 0 {
		u |= gputypes.TextureUsageStorageBinding
	}
	if s&(StateColorAttachment|StateDepthRead|StateDepthWrite|StatePresent) != 0 {
		u |= gputypes.TextureUsageRenderAttachment
	}
	if s&StateTransferRead != 0 {
		u |= gputypes.TextureUsageCopySrc
	}
	if s&StateTransferWrite != 0 {
		u |= gputypes.TextureUsageCopyDst
	}
	return u
}

// BufferUsageFor returns the buffer usage a buffer needs to be used in
// every state of s.
func BufferUsageFor(s ResourceState) gputypes.BufferUsage {
	var u gputypes.BufferUsage
	if s&(StateResourceRead|StateRWResource) != 0 {
		u |= gputypes.BufferUsageStorage
	}
	if s&StateConstantBuffer != 0 {
		u |= gputypes.BufferUsageUniform
	}
	if s&StateVertexBuffer != 0 {
		u |= gputypes.BufferUsageVertex
	}
	if s&StateIndexBuffer != 0 {
		u |= gputypes.BufferUsageIndex
	}
	if s&StateIndirectBuffer != 0 {
		u |= gputypes.BufferUsageIndirect
	}
	if s&StateTransferRead != 0 {
		u |= gputypes.BufferUsageCopySrc
	}
	if s&StateTransferWrite != 0 {
		u |= gputypes.BufferUsageCopyDst
	}
	return u
}
