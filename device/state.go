// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"strings"
)

// ResourceState is a bitmask of access states a subresource can be in.
// Image and buffer states share the type; ImageStates and BufferStates
// tell which bits apply to which kind.
type ResourceState uint32

// StateUndefined means the contents are not defined (first use, or
// discarded).
const StateUndefined ResourceState = 0

// Resource states.
const (
	StateTextureRead ResourceState = 1 << iota
	StateDepthRead
	StateDepthWrite
	StateColorAttachment
	StateRWTexture
	StatePresent
	StateTransferRead
	StateTransferWrite
	StateResourceRead
	StateRWResource
	StateConstantBuffer
	StateVertexBuffer
	StateIndexBuffer
	StateIndirectBuffer
)

// State masks per resource kind.
const (
	// ImageStates are the states valid for images.
	ImageStates = StateTextureRead | StateDepthRead | StateDepthWrite |
		StateColorAttachment | StateRWTexture | StatePresent |
		StateTransferRead | StateTransferWrite

	// BufferStates are the states valid for buffers.
	BufferStates = StateTransferRead | StateTransferWrite | StateResourceRead |
		StateRWResource | StateConstantBuffer | StateVertexBuffer |
		StateIndexBuffer | StateIndirectBuffer

	// ImageReadStates are the image states that may be merged with each
	// other when consecutive readers share a queue.
	ImageReadStates = StateTextureRead | StateDepthRead

	// BufferReadStates are the buffer states that may be merged with each
	// other when consecutive readers share a queue.
	// It must not share bits with ImageReadStates.
	BufferReadStates = StateResourceRead | StateConstantBuffer | StateVertexBuffer |
		StateIndexBuffer | StateIndirectBuffer | StateTransferRead
)

var stateNames = [...]string{
	"TEXTURE_READ",
	"DEPTH_READ",
	"DEPTH_WRITE",
	"COLOR_ATTACHMENT",
	"RW_TEXTURE",
	"PRESENT",
	"TRANSFER_READ",
	"TRANSFER_WRITE",
	"RESOURCE_READ",
	"RW_RESOURCE",
	"CONSTANT_BUFFER",
	"VERTEX_BUFFER",
	"INDEX_BUFFER",
	"INDIRECT_BUFFER",
}

// String returns the state bits joined by '|'.
func (s ResourceState) String() string {
	if s == StateUndefined {
		return "UNDEFINED"
	}
	return joinBits(uint32(s), stateNames[:])
}

// PipelineStage is a bitmask of pipeline stages.
type PipelineStage uint32

// StageNone is the empty stage mask.
const StageNone PipelineStage = 0

// Pipeline stages.
const (
	StageTopOfPipe PipelineStage = 1 << iota
	StageDrawIndirect
	StageVertexInput
	StageVertexShader
	StageFragmentShader
	StageEarlyFragmentTests
	StageLateFragmentTests
	StageColorAttachmentOutput
	StageComputeShader
	StageTransfer
	StageBottomOfPipe
	StageHost
	StageAllCommands
)

var stageNames = [...]string{
	"TOP_OF_PIPE",
	"DRAW_INDIRECT",
	"VERTEX_INPUT",
	"VERTEX_SHADER",
	"FRAGMENT_SHADER",
	"EARLY_FRAGMENT_TESTS",
	"LATE_FRAGMENT_TESTS",
	"COLOR_ATTACHMENT_OUTPUT",
	"COMPUTE_SHADER",
	"TRANSFER",
	"BOTTOM_OF_PIPE",
	"HOST",
	"ALL_COMMANDS",
}

// String returns the stage bits joined by '|'.
func (s PipelineStage) String() string {
	if s == StageNone {
		return "NONE"
	}
	return joinBits(uint32(s), stageNames[:])
}

func joinBits(v uint32, names []string) string {
	var parts []string
	for i, name := range names {
		if v&(1<<i) != 0 {
			parts = append(parts, name)
			v &^= 1 << i
		}
	}
	if v != 0 {
		parts = append(parts, "?")
	}
	return strings.Join(parts, "|")
}

// DefaultStage returns the pipeline stages that access a resource in state s
// on queue q. Every set bit of s contributes its stages.
func DefaultStage(s ResourceState, q QueueType) PipelineStage {
	var shader PipelineStage
	switch q {
	case QueueGraphics:
		shader = StageVertexShader | StageFragmentShader
	case QueueCompute:
		shader = StageComputeShader
	default:
		shader = StageAllCommands
	}

	var st PipelineStage
	if s&(StateTextureRead|StateResourceRead|StateConstantBuffer) != 0 {
		st |= shader
	}
	if s&(StateRWTexture|StateRWResource) != 0 {
		if q == QueueGraphics {
			st |= StageFragmentShader
		} else {
			st |= shader
		}
	}
	if s&(StateDepthRead|StateDepthWrite) != 0 {
		st |= StageEarlyFragmentTests | StageLateFragmentTests
	}
	if s&StateColorAttachment != 0 {
		st |= StageColorAttachmentOutput
	}
	if s&StatePresent != 0 {
		st |= StageBottomOfPipe
	}
	if s&(StateTransferRead|StateTransferWrite) != 0 {
		st |= StageTransfer
	}
	if s&(StateVertexBuffer|StateIndexBuffer) != 0 {
		st |= StageVertexInput
	}
	if s&StateIndirectBuffer != 0 {
		st |= StageDrawIndirect
	}
	return st
}

// IsWrite reports whether s includes a state that writes the resource.
func (s ResourceState) IsWrite() bool {
	return s&(StateDepthWrite|StateColorAttachment|StateRWTexture|
		StateTransferWrite|StateRWResource) != 0
}
