// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"

	"github.com/gogpu/framegraph/device"
)

// Image is a software image. It holds no texel storage.
type Image struct {
	dev       *Device
	id        uint64
	desc      device.ImageDescriptor
	destroyed bool
}

// Descriptor implements device.Image.
func (i *Image) Descriptor() device.ImageDescriptor { return i.desc }

// ID returns the device-unique object id.
func (i *Image) ID() uint64 { return i.id }

// Destroyed reports whether the image was destroyed.
func (i *Image) Destroyed() bool {
	i.dev.mu.Lock()
	defer i.dev.mu.Unlock()
	return i.destroyed
}

// Buffer is a software buffer. Host-visible buffers are backed by a byte
// slice.
type Buffer struct {
	dev       *Device
	id        uint64
	desc      device.BufferDescriptor
	data      []byte
	mapped    bool
	destroyed bool
}

// Descriptor implements device.Buffer.
func (b *Buffer) Descriptor() device.BufferDescriptor { return b.desc }

// ID returns the device-unique object id.
func (b *Buffer) ID() uint64 { return b.id }

// Bytes returns the host memory of a host-visible buffer, nil otherwise.
func (b *Buffer) Bytes() []byte { return b.data }

// Mapped reports whether the buffer is currently mapped.
func (b *Buffer) Mapped() bool {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	return b.mapped
}

// Destroyed reports whether the buffer was destroyed.
func (b *Buffer) Destroyed() bool {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	return b.destroyed
}

// ImageView is a software image view.
type ImageView struct {
	image     *Image
	id        uint64
	desc      device.ImageViewDescriptor
	destroyed bool
}

// Image implements device.ImageView.
func (v *ImageView) Image() device.Image { return v.image }

// Descriptor implements device.ImageView.
func (v *ImageView) Descriptor() device.ImageViewDescriptor { return v.desc }

// BufferView is a software buffer view.
type BufferView struct {
	buffer    *Buffer
	id        uint64
	desc      device.BufferViewDescriptor
	destroyed bool
}

// Buffer implements device.BufferView.
func (v *BufferView) Buffer() device.Buffer { return v.buffer }

// Descriptor implements device.BufferView.
func (v *BufferView) Descriptor() device.BufferViewDescriptor { return v.desc }

// CommandKind identifies a recorded command.
type CommandKind uint8

// Command kinds.
const (
	CommandBarrier CommandKind = iota
	CommandMarker
)

// Command is one recorded command.
type Command struct {
	Kind CommandKind

	// Barriers is set for CommandBarrier.
	Barriers []device.Barrier

	// Name is set for CommandMarker.
	Name string
}

// CommandList records commands for later inspection.
type CommandList struct {
	dev       *Device
	queue     device.QueueType
	label     string
	commands  []Command
	ended     bool
	submitted bool
}

// Queue implements device.CommandList.
func (c *CommandList) Queue() device.QueueType { return c.queue }

// Label returns the label the list was begun with.
func (c *CommandList) Label() string { return c.label }

// Barrier implements device.CommandList.
func (c *CommandList) Barrier(b []device.Barrier) {
	if len(b) == 0 {
		return
	}
	if c.ended {
		panic("software: Barrier after End")
	}
	c.commands = append(c.commands, Command{
		Kind:     CommandBarrier,
		Barriers: append([]device.Barrier(nil), b...),
	})
}

// Marker records a named marker. Pass record callbacks use it to leave a
// trace of their execution.
func (c *CommandList) Marker(name string) {
	if c.ended {
		panic("software: Marker after End")
	}
	c.commands = append(c.commands, Command{Kind: CommandMarker, Name: name})
}

// End implements device.CommandList.
func (c *CommandList) End() error {
	if c.ended {
		return fmt.Errorf("%w: %q already ended", ErrListState, c.label)
	}
	c.ended = true
	return nil
}

// Submission is one recorded Submit call.
type Submission struct {
	Queue    device.QueueType
	Label    string
	Waits    []device.SemaphoreWait
	Signal   uint64
	Commands []Command
}

// Barriers returns every barrier of the submission in record order.
func (s *Submission) Barriers() []device.Barrier {
	var out []device.Barrier
	for _, c := range s.Commands {
		if c.Kind == CommandBarrier {
			out = append(out, c.Barriers...)
		}
	}
	return out
}

// Markers returns the marker names of the submission in record order.
func (s *Submission) Markers() []string {
	var out []string
	for _, c := range s.Commands {
		if c.Kind == CommandMarker {
			out = append(out, c.Name)
		}
	}
	return out
}

// EventKind identifies a device event.
type EventKind uint8

// Event kinds.
const (
	EventCreateImage EventKind = iota
	EventDestroyImage
	EventCreateBuffer
	EventDestroyBuffer
	EventCreateView
	EventDestroyView
	EventSubmit
	EventWait
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventCreateImage:
		return "create-image"
	case EventDestroyImage:
		return "destroy-image"
	case EventCreateBuffer:
		return "create-buffer"
	case EventDestroyBuffer:
		return "destroy-buffer"
	case EventCreateView:
		return "create-view"
	case EventDestroyView:
		return "destroy-view"
	case EventSubmit:
		return "submit"
	case EventWait:
		return "wait"
	default:
		return "unknown"
	}
}

// Event is one entry of the device event log.
type Event struct {
	Kind   EventKind
	Label  string
	Object uint64
	Queue  device.QueueType
	Value  uint64
}

// String returns a compact description of the event.
func (e Event) String() string {
	switch e.Kind {
	case EventSubmit, EventWait:
		return fmt.Sprintf("%v %v=%d", e.Kind, e.Queue, e.Value)
	default:
		return fmt.Sprintf("%v %q #%d", e.Kind, e.Label, e.Object)
	}
}
