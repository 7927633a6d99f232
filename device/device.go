// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device defines the capability set that the frame graph schedules
// against: queues with timeline values, images, buffers, views and command
// lists.
//
// The scheduler depends only on these interfaces. Concrete implementations
// live in the backend packages (backend/native for gogpu/wgpu HAL,
// backend/software for headless validation).
package device

import (
	"errors"
	"time"
)

// Device errors.
var (
	// ErrQueueUnsupported is returned when work targets a queue the device
	// does not expose.
	ErrQueueUnsupported = errors.New("device: queue not supported")

	// ErrOutOfMemory is returned when an object cannot be allocated.
	ErrOutOfMemory = errors.New("device: out of memory")

	// ErrDeviceLost means the device is in an unrecoverable state.
	ErrDeviceLost = errors.New("device: device lost")

	// ErrNotHostVisible is returned when mapping a buffer that was not
	// created host visible.
	ErrNotHostVisible = errors.New("device: buffer is not host visible")
)

// Image is a device image (texture).
type Image interface {
	// Descriptor returns the parameters the image was created with.
	Descriptor() ImageDescriptor
}

// Buffer is a device buffer.
type Buffer interface {
	// Descriptor returns the parameters the buffer was created with.
	Descriptor() BufferDescriptor
}

// ImageView is a typed view over a range of an image's subresources.
type ImageView interface {
	Image() Image
	Descriptor() ImageViewDescriptor
}

// BufferView is a byte range of a buffer with an element stride.
type BufferView interface {
	Buffer() Buffer
	Descriptor() BufferViewDescriptor
}

// CommandList records commands for a single queue.
type CommandList interface {
	// Queue returns the queue the list was begun on.
	Queue() QueueType

	// Barrier records synchronization barriers. The slice is not retained.
	Barrier(b []Barrier)

	// End finishes recording. The list may then be submitted once.
	End() error
}

// SemaphoreWait is a wait on another queue's timeline before the
// given stages of a submission may execute.
type SemaphoreWait struct {
	Queue  QueueType
	Value  uint64
	Stages PipelineStage
}

// Device is the capability interface consumed by the frame graph.
//
// Every queue owns a monotonically increasing timeline. Submit signals a
// value on the submitting queue's timeline once the submitted work has
// completed. Timeline reports the last value handed to Submit and
// Completed the last value the device has observed as finished.
//
// Implementations are not required to be safe for concurrent use, except
// that Wait may be called while no other method is running.
type Device interface {
	// HasQueue reports whether the device exposes the queue type.
	HasQueue(q QueueType) bool

	CreateImage(desc *ImageDescriptor) (Image, error)
	DestroyImage(img Image)

	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	DestroyBuffer(buf Buffer)

	CreateImageView(img Image, desc *ImageViewDescriptor) (ImageView, error)
	DestroyImageView(view ImageView)

	CreateBufferView(buf Buffer, desc *BufferViewDescriptor) (BufferView, error)
	DestroyBufferView(view BufferView)

	// BeginCommandList starts recording a command list for queue q.
	BeginCommandList(q QueueType, label string) (CommandList, error)

	// Submit submits an ended command list. The submission waits for every
	// entry in waits and signals value signal on the list's queue timeline.
	// signal must be greater than Timeline(cl.Queue()).
	Submit(cl CommandList, waits []SemaphoreWait, signal uint64) error

	// Timeline returns the last value submitted for signaling on q.
	Timeline(q QueueType) uint64

	// Completed returns the last value known to be reached on q.
	Completed(q QueueType) uint64

	// Wait blocks until q reaches value or timeout elapses. It reports
	// whether the value was reached.
	Wait(q QueueType, value uint64, timeout time.Duration) (bool, error)

	// MapBuffer returns host memory backing a host-visible buffer.
	MapBuffer(buf Buffer) ([]byte, error)

	// UnmapBuffer flushes writes made through MapBuffer.
	UnmapBuffer(buf Buffer)
}
