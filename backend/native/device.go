// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Polling bounds for Wait.
const (
	minPollInterval = 50 * time.Microsecond
	maxPollInterval = 2 * time.Millisecond
)

// inflight is a submitted command buffer not yet known to be complete.
type inflight struct {
	signal  uint64
	index   uint64
	encoder hal.CommandEncoder
	cmd     hal.CommandBuffer
}

// Device implements device.Device over a HAL device and queue.
//
// WebGPU exposes one queue, so only device.QueueGraphics is available and
// frame graphs built on this device never transfer ownership. The
// graphics timeline is tracked by mapping each signal value to the HAL
// submission index of its command buffer.
//
// Thread Safety: Device is safe for concurrent use.
type Device struct {
	mu    sync.Mutex
	dev   hal.Device
	queue hal.Queue

	timeline  uint64
	completed uint64
	pending   []inflight

	shaders map[string]hal.ShaderModule

	// release destroys the HAL device and instance when this Device
	// opened them itself.
	release   func()
	destroyed bool
}

// New creates a Device on an existing HAL device and queue. The caller
// keeps ownership of both.
func New(dev hal.Device, queue hal.Queue) *Device {
	return &Device{
		dev:     dev,
		queue:   queue,
		shaders: make(map[string]hal.ShaderModule),
	}
}

// NewFromProvider creates a Device sharing the HAL device of a gpucontext
// provider (for example a gogpu window). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("native: provider does not expose HAL types")
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("native: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("native: provider HalQueue is not hal.Queue")
	}
	framegraph.Logger().Info("native: using provider device", "adapter", provider.AdapterInfo().Name)
	return New(dev, queue), nil
}

// Open opens a Device on the best registered HAL backend. The no-op
// backend does not count as a GPU.
func Open() (*Device, error) {
	b, err := hal.SelectBestBackend()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	if b.Variant() == gputypes.BackendEmpty {
		return nil, ErrNoGPU
	}
	return OpenBackend(b)
}

// OpenBackend opens a Device on the first adapter of backend b. The
// returned Device owns the HAL device and instance; Destroy releases them.
func OpenBackend(b hal.Backend) (*Device, error) {
	instance, err := b.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("native: create %v instance: %w", b.Variant(), err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, halError("open adapter "+adapters[0].Info.Name, err)
	}

	d := New(open.Device, open.Queue)
	d.release = func() {
		open.Device.Destroy()
		instance.Destroy()
	}
	framegraph.Logger().Info("native: device opened",
		"backend", b.Variant(), "adapter", adapters[0].Info.Name)
	return d, nil
}

// HAL returns the underlying HAL device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.dev, d.queue }

// HasQueue implements device.Device.
func (d *Device) HasQueue(q device.QueueType) bool { return q == device.QueueGraphics }

// CreateImage implements device.Device.
func (d *Device) CreateImage(desc *device.ImageDescriptor) (device.Image, error) {
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              max(desc.Size.Width, 1),
			Height:             max(desc.Size.Height, 1),
			DepthOrArrayLayers: max(desc.Size.DepthOrArrayLayers, 1),
		},
		MipLevelCount: desc.MipLevels(),
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, halError(fmt.Sprintf("create image %q", desc.Label), err)
	}
	return &Image{dev: d, tex: tex, desc: *desc}, nil
}

// DestroyImage implements device.Device.
func (d *Device) DestroyImage(img device.Image) {
	if i, ok := img.(*Image); ok && i != nil && i.dev == d {
		d.dev.DestroyTexture(i.tex)
	}
}

// CreateBuffer implements device.Device. Host-visible buffers get
// CopyDst usage for the upload performed by UnmapBuffer.
func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (device.Buffer, error) {
	usage := desc.Usage
	if desc.HostVisible {
		usage |= gputypes.BufferUsageCopyDst
	}
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: usage,
	})
	if err != nil {
		return nil, halError(fmt.Sprintf("create buffer %q", desc.Label), err)
	}
	b := &Buffer{dev: d, buf: buf, desc: *desc}
	if desc.HostVisible {
		b.shadow = make([]byte, desc.Size)
	}
	return b, nil
}

// DestroyBuffer implements device.Device.
func (d *Device) DestroyBuffer(buf device.Buffer) {
	if b, ok := buf.(*Buffer); ok && b != nil && b.dev == d {
		d.dev.DestroyBuffer(b.buf)
	}
}

// CreateImageView implements device.Device.
func (d *Device) CreateImageView(img device.Image, desc *device.ImageViewDescriptor) (device.ImageView, error) {
	i, ok := img.(*Image)
	if !ok || i.dev != d {
		return nil, ErrForeignObject
	}
	view, err := d.dev.CreateTextureView(i.tex, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.Format,
		Dimension:       desc.Dimension,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    desc.Range.BaseMipLevel,
		MipLevelCount:   desc.Range.MipLevelCount,
		BaseArrayLayer:  desc.Range.BaseArrayLayer,
		ArrayLayerCount: desc.Range.ArrayLayerCount,
	})
	if err != nil {
		return nil, halError(fmt.Sprintf("create image view %q", desc.Label), err)
	}
	return &ImageView{image: i, view: view, desc: *desc}, nil
}

// DestroyImageView implements device.Device.
func (d *Device) DestroyImageView(view device.ImageView) {
	if v, ok := view.(*ImageView); ok && v != nil && v.image.dev == d {
		d.dev.DestroyTextureView(v.view)
	}
}

// CreateBufferView implements device.Device.
func (d *Device) CreateBufferView(buf device.Buffer, desc *device.BufferViewDescriptor) (device.BufferView, error) {
	b, ok := buf.(*Buffer)
	if !ok || b.dev != d {
		return nil, ErrForeignObject
	}
	return &BufferView{buffer: b, desc: *desc}, nil
}

// DestroyBufferView implements device.Device.
func (d *Device) DestroyBufferView(device.BufferView) {}

// BeginCommandList implements device.Device.
func (d *Device) BeginCommandList(q device.QueueType, label string) (device.CommandList, error) {
	if q != device.QueueGraphics {
		return nil, fmt.Errorf("%w: %v", device.ErrQueueUnsupported, q)
	}
	enc, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, halError("create command encoder "+label, err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		enc.Destroy()
		return nil, halError("begin encoding "+label, err)
	}
	return &CommandList{dev: d, encoder: enc, label: label}, nil
}

// Submit implements device.Device. Waits are on the graphics queue itself
// and are satisfied by submission order.
func (d *Device) Submit(cl device.CommandList, waits []device.SemaphoreWait, signal uint64) error {
	list, ok := cl.(*CommandList)
	if !ok || list.dev != d {
		return ErrForeignObject
	}
	if !list.ended || list.submitted {
		return fmt.Errorf("%w: %q", ErrListState, list.label)
	}
	for _, w := range waits {
		if w.Queue != device.QueueGraphics {
			return fmt.Errorf("%w: wait on %v", device.ErrQueueUnsupported, w.Queue)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return ErrDestroyed
	}
	if signal <= d.timeline {
		return fmt.Errorf("%w: signal %d, timeline at %d", ErrNonMonotonicSignal, signal, d.timeline)
	}

	index, err := d.queue.Submit([]hal.CommandBuffer{list.cmd})
	if err != nil {
		d.dev.FreeCommandBuffer(list.cmd)
		list.encoder.Destroy()
		return halError("submit "+list.label, err)
	}
	list.submitted = true
	d.timeline = signal
	d.pending = append(d.pending, inflight{signal: signal, index: index, encoder: list.encoder, cmd: list.cmd})
	return nil
}

// reapLocked frees the command buffers of completed submissions and
// advances the completed value.
func (d *Device) reapLocked() {
	done := d.queue.PollCompleted()
	n := 0
	for n < len(d.pending) && d.pending[n].index <= done {
		p := &d.pending[n]
		d.dev.FreeCommandBuffer(p.cmd)
		p.encoder.Destroy()
		d.completed = p.signal
		n++
	}
	if n > 0 {
		d.pending = append(d.pending[:0], d.pending[n:]...)
	}
}

// Timeline implements device.Device.
func (d *Device) Timeline(q device.QueueType) uint64 {
	if q != device.QueueGraphics {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timeline
}

// Completed implements device.Device.
func (d *Device) Completed(q device.QueueType) uint64 {
	if q != device.QueueGraphics {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reapLocked()
	return d.completed
}

// Wait implements device.Device by polling the queue's completed
// submission index with exponential backoff.
func (d *Device) Wait(q device.QueueType, value uint64, timeout time.Duration) (bool, error) {
	if q != device.QueueGraphics {
		if value == 0 {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", device.ErrQueueUnsupported, q)
	}

	deadline := time.Now().Add(timeout)
	interval := minPollInterval
	for {
		d.mu.Lock()
		if value > d.timeline {
			d.mu.Unlock()
			return false, fmt.Errorf("native: wait for %d, timeline at %d", value, d.timeline)
		}
		d.reapLocked()
		reached := d.completed >= value
		d.mu.Unlock()

		if reached {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		time.Sleep(min(interval, time.Until(deadline)))
		interval = min(interval*2, maxPollInterval)
	}
}

// MapBuffer implements device.Device. It returns the buffer's host
// shadow; writes reach the GPU buffer on UnmapBuffer.
func (d *Device) MapBuffer(buf device.Buffer) ([]byte, error) {
	b, ok := buf.(*Buffer)
	if !ok || b.dev != d {
		return nil, ErrForeignObject
	}
	if b.shadow == nil {
		return nil, device.ErrNotHostVisible
	}
	return b.shadow, nil
}

// UnmapBuffer implements device.Device by uploading the host shadow.
func (d *Device) UnmapBuffer(buf device.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok || b.dev != d || b.shadow == nil {
		return
	}
	if err := d.queue.WriteBuffer(b.buf, 0, b.shadow); err != nil {
		framegraph.Logger().Warn("native: buffer upload failed", "label", b.desc.Label, "err", err)
	}
}

// Destroy waits for the GPU, frees pending command buffers and cached
// shader modules and, if the Device opened its HAL device, releases it.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	if err := d.dev.WaitIdle(); err != nil {
		framegraph.Logger().Warn("native: wait idle failed", "err", err)
	}
	d.reapLocked()
	for _, p := range d.pending {
		d.dev.FreeCommandBuffer(p.cmd)
		p.encoder.Destroy()
	}
	d.pending = nil
	for key, m := range d.shaders {
		d.dev.DestroyShaderModule(m)
		delete(d.shaders, key)
	}
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.destroyed = true
}

var _ device.Device = (*Device)(nil)
