// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides a headless device.Device that executes nothing
// but records and validates everything submitted to it.
//
// It is the reference backend for CPU-only testing of frame graphs: every
// command list, barrier, wait and signal is kept in submission order, queue
// timelines are checked for monotonicity, and waits on values that were
// never submitted are rejected instead of deadlocking.
//
// By default a submission completes as soon as it is submitted. With
// WithManualCompletion, timelines only advance through Complete, which lets
// tests observe blocking in frame recycling.
package software

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/framegraph/device"
)

// Software device errors.
var (
	// ErrUnsignaledWait is returned by Submit when a wait targets a value
	// that no earlier submission signals.
	ErrUnsignaledWait = errors.New("software: wait on a value that is never signaled")

	// ErrNonMonotonicSignal is returned by Submit when the signal value
	// does not exceed the queue's timeline.
	ErrNonMonotonicSignal = errors.New("software: signal value is not increasing")

	// ErrForeignObject is returned when an object from another device is used.
	ErrForeignObject = errors.New("software: object does not belong to this device")

	// ErrListState is returned when a command list is submitted twice or
	// before End.
	ErrListState = errors.New("software: command list is not ready for submission")
)

// Device is a headless device.Device.
//
// Device is safe for concurrent use.
type Device struct {
	mu   sync.Mutex
	cond *sync.Cond

	queues      [device.QueueCount]bool
	manual      bool
	objectLimit int

	timeline  [device.QueueCount]uint64
	completed [device.QueueCount]uint64

	nextID      uint64
	live        int
	submissions []Submission
	events      []Event
}

// Option configures a Device.
type Option func(*Device)

// WithQueues restricts the exposed queues. The default exposes all queues.
func WithQueues(queues ...device.QueueType) Option {
	return func(d *Device) {
		d.queues = [device.QueueCount]bool{}
		for _, q := range queues {
			if q.Valid() {
				d.queues[q] = true
			}
		}
	}
}

// WithManualCompletion makes timelines advance only through Complete.
func WithManualCompletion() Option {
	return func(d *Device) {
		d.manual = true
	}
}

// WithObjectLimit makes object creation fail with device.ErrOutOfMemory
// once limit images, buffers and views are alive. Zero means unlimited.
func WithObjectLimit(limit int) Option {
	return func(d *Device) {
		d.objectLimit = limit
	}
}

// New creates a software device.
func New(opts ...Option) *Device {
	d := &Device{
		queues: [device.QueueCount]bool{true, true, true},
		nextID: 1,
	}
	d.cond = sync.NewCond(&d.mu)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HasQueue implements device.Device.
func (d *Device) HasQueue(q device.QueueType) bool {
	return q.Valid() && d.queues[q]
}

// allocLocked reserves an object slot and returns its id.
func (d *Device) allocLocked() (uint64, error) {
	if d.objectLimit > 0 && d.live >= d.objectLimit {
		return 0, fmt.Errorf("%w: %d live objects", device.ErrOutOfMemory, d.live)
	}
	d.live++
	id := d.nextID
	d.nextID++
	return id, nil
}

// CreateImage implements device.Device.
func (d *Device) CreateImage(desc *device.ImageDescriptor) (device.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.allocLocked()
	if err != nil {
		return nil, err
	}
	img := &Image{dev: d, id: id, desc: *desc}
	d.eventLocked(Event{Kind: EventCreateImage, Label: desc.Label, Object: id})
	return img, nil
}

// DestroyImage implements device.Device.
func (d *Device) DestroyImage(img device.Image) {
	i, ok := img.(*Image)
	if !ok || i == nil || i.dev != d {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if i.destroyed {
		return
	}
	i.destroyed = true
	d.live--
	d.eventLocked(Event{Kind: EventDestroyImage, Label: i.desc.Label, Object: i.id})
}

// CreateBuffer implements device.Device.
func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.allocLocked()
	if err != nil {
		return nil, err
	}
	buf := &Buffer{dev: d, id: id, desc: *desc}
	if desc.HostVisible {
		buf.data = make([]byte, desc.Size)
	}
	d.eventLocked(Event{Kind: EventCreateBuffer, Label: desc.Label, Object: id})
	return buf, nil
}

// DestroyBuffer implements device.Device.
func (d *Device) DestroyBuffer(buf device.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok || b == nil || b.dev != d {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if b.destroyed {
		return
	}
	b.destroyed = true
	d.live--
	d.eventLocked(Event{Kind: EventDestroyBuffer, Label: b.desc.Label, Object: b.id})
}

// CreateImageView implements device.Device.
func (d *Device) CreateImageView(img device.Image, desc *device.ImageViewDescriptor) (device.ImageView, error) {
	i, ok := img.(*Image)
	if !ok || i.dev != d {
		return nil, ErrForeignObject
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.allocLocked()
	if err != nil {
		return nil, err
	}
	d.eventLocked(Event{Kind: EventCreateView, Label: desc.Label, Object: id})
	return &ImageView{image: i, id: id, desc: *desc}, nil
}

// DestroyImageView implements device.Device.
func (d *Device) DestroyImageView(view device.ImageView) {
	v, ok := view.(*ImageView)
	if !ok || v == nil || v.image.dev != d {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if v.destroyed {
		return
	}
	v.destroyed = true
	d.live--
	d.eventLocked(Event{Kind: EventDestroyView, Label: v.desc.Label, Object: v.id})
}

// CreateBufferView implements device.Device.
func (d *Device) CreateBufferView(buf device.Buffer, desc *device.BufferViewDescriptor) (device.BufferView, error) {
	b, ok := buf.(*Buffer)
	if !ok || b.dev != d {
		return nil, ErrForeignObject
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.allocLocked()
	if err != nil {
		return nil, err
	}
	d.eventLocked(Event{Kind: EventCreateView, Label: desc.Label, Object: id})
	return &BufferView{buffer: b, id: id, desc: *desc}, nil
}

// DestroyBufferView implements device.Device.
func (d *Device) DestroyBufferView(view device.BufferView) {
	v, ok := view.(*BufferView)
	if !ok || v == nil || v.buffer.dev != d {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if v.destroyed {
		return
	}
	v.destroyed = true
	d.live--
	d.eventLocked(Event{Kind: EventDestroyView, Label: v.desc.Label, Object: v.id})
}

// BeginCommandList implements device.Device.
func (d *Device) BeginCommandList(q device.QueueType, label string) (device.CommandList, error) {
	if !d.HasQueue(q) {
		return nil, fmt.Errorf("%w: %v", device.ErrQueueUnsupported, q)
	}
	return &CommandList{dev: d, queue: q, label: label}, nil
}

// Submit implements device.Device.
func (d *Device) Submit(cl device.CommandList, waits []device.SemaphoreWait, signal uint64) error {
	list, ok := cl.(*CommandList)
	if !ok || list.dev != d {
		return ErrForeignObject
	}
	if !list.ended || list.submitted {
		return fmt.Errorf("%w: %q", ErrListState, list.label)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	q := list.queue
	if signal <= d.timeline[q] {
		return fmt.Errorf("%w: %v signal %d, timeline at %d", ErrNonMonotonicSignal, q, signal, d.timeline[q])
	}
	for _, w := range waits {
		if !w.Queue.Valid() || !d.queues[w.Queue] {
			return fmt.Errorf("%w: wait on %v", device.ErrQueueUnsupported, w.Queue)
		}
		if w.Value > d.timeline[w.Queue] {
			return fmt.Errorf("%w: %v waits for %v value %d, timeline at %d",
				ErrUnsignaledWait, q, w.Queue, w.Value, d.timeline[w.Queue])
		}
	}

	list.submitted = true
	d.submissions = append(d.submissions, Submission{
		Queue:    q,
		Label:    list.label,
		Waits:    append([]device.SemaphoreWait(nil), waits...),
		Signal:   signal,
		Commands: list.commands,
	})
	d.timeline[q] = signal
	d.eventLocked(Event{Kind: EventSubmit, Label: list.label, Queue: q, Value: signal})
	if !d.manual {
		d.completed[q] = signal
		d.cond.Broadcast()
	}
	return nil
}

// Timeline implements device.Device.
func (d *Device) Timeline(q device.QueueType) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timeline[q]
}

// Completed implements device.Device.
func (d *Device) Completed(q device.QueueType) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.completed[q]
}

// Complete marks q as having reached value. Values beyond the queue's
// timeline are clamped to it.
func (d *Device) Complete(q device.QueueType, value uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if value > d.timeline[q] {
		value = d.timeline[q]
	}
	if value > d.completed[q] {
		d.completed[q] = value
		d.cond.Broadcast()
	}
}

// CompleteAll marks every queue as having reached its timeline.
func (d *Device) CompleteAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.completed = d.timeline
	d.cond.Broadcast()
}

// Wait implements device.Device.
func (d *Device) Wait(q device.QueueType, value uint64, timeout time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if value > d.timeline[q] {
		return false, fmt.Errorf("%w: %v value %d, timeline at %d", ErrUnsignaledWait, q, value, d.timeline[q])
	}

	expired := false
	if d.completed[q] < value {
		timer := time.AfterFunc(timeout, func() {
			d.mu.Lock()
			expired = true
			d.cond.Broadcast()
			d.mu.Unlock()
		})
		defer timer.Stop()
		for d.completed[q] < value && !expired {
			d.cond.Wait()
		}
	}
	if d.completed[q] < value {
		return false, nil
	}
	d.eventLocked(Event{Kind: EventWait, Queue: q, Value: value})
	return true, nil
}

// MapBuffer implements device.Device.
func (d *Device) MapBuffer(buf device.Buffer) ([]byte, error) {
	b, ok := buf.(*Buffer)
	if !ok || b.dev != d {
		return nil, ErrForeignObject
	}
	if !b.desc.HostVisible {
		return nil, device.ErrNotHostVisible
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	b.mapped = true
	return b.data, nil
}

// UnmapBuffer implements device.Device.
func (d *Device) UnmapBuffer(buf device.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok || b.dev != d {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	b.mapped = false
}

// LiveObjects returns the number of images, buffers and views not yet
// destroyed.
func (d *Device) LiveObjects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// Submissions returns a copy of every submission so far, in order.
func (d *Device) Submissions() []Submission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Submission(nil), d.submissions...)
}

// Events returns a copy of the device event log, in order.
func (d *Device) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

// Reset clears recorded submissions and events. Timelines are kept.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submissions = nil
	d.events = nil
}

func (d *Device) eventLocked(e Event) {
	d.events = append(d.events, e)
}

var _ device.Device = (*Device)(nil)
