// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a Device on the noop HAL backend for testing.
func createNoopDevice(t *testing.T) *Device {
	t.Helper()
	d, err := OpenBackend(noop.API{})
	if err != nil {
		t.Fatalf("OpenBackend(noop) failed: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

func TestNativeRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendNative) {
		t.Error("native backend should be registered on import")
	}
}

func TestNativeQueues(t *testing.T) {
	d := createNoopDevice(t)
	if !d.HasQueue(device.QueueGraphics) {
		t.Error("graphics queue missing")
	}
	if d.HasQueue(device.QueueCompute) || d.HasQueue(device.QueueTransfer) {
		t.Error("native device exposes a queue WebGPU does not have")
	}
	if _, err := d.BeginCommandList(device.QueueCompute, "async"); !errors.Is(err, device.ErrQueueUnsupported) {
		t.Errorf("BeginCommandList(compute) error = %v, want ErrQueueUnsupported", err)
	}
}

func TestNativeSubmitTimeline(t *testing.T) {
	d := createNoopDevice(t)

	for signal := uint64(1); signal <= 3; signal++ {
		cl, err := d.BeginCommandList(device.QueueGraphics, "frame")
		if err != nil {
			t.Fatalf("BeginCommandList: %v", err)
		}
		if err := cl.End(); err != nil {
			t.Fatalf("End: %v", err)
		}
		if err := d.Submit(cl, nil, signal*2); err != nil {
			t.Fatalf("Submit(%d): %v", signal*2, err)
		}
	}
	if got := d.Timeline(device.QueueGraphics); got != 6 {
		t.Errorf("Timeline = %d, want 6", got)
	}
	// The noop queue completes every submission immediately.
	if got := d.Completed(device.QueueGraphics); got != 6 {
		t.Errorf("Completed = %d, want 6", got)
	}
	ok, err := d.Wait(device.QueueGraphics, 4, framegraph.DefaultWaitTimeout)
	if !ok || err != nil {
		t.Errorf("Wait(4) = %v, %v", ok, err)
	}
	if _, err := d.Wait(device.QueueGraphics, 7, framegraph.DefaultWaitTimeout); err == nil {
		t.Error("Wait beyond the timeline should fail")
	}
	if ok, err := d.Wait(device.QueueCompute, 0, 0); !ok || err != nil {
		t.Errorf("Wait(compute, 0) = %v, %v", ok, err)
	}
}

func TestNativeSubmitValidation(t *testing.T) {
	d := createNoopDevice(t)

	cl, _ := d.BeginCommandList(device.QueueGraphics, "a")
	if err := d.Submit(cl, nil, 1); !errors.Is(err, ErrListState) {
		t.Errorf("Submit before End error = %v, want ErrListState", err)
	}
	if err := cl.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := cl.End(); !errors.Is(err, ErrListState) {
		t.Errorf("second End error = %v, want ErrListState", err)
	}
	if err := d.Submit(cl, []device.SemaphoreWait{{Queue: device.QueueCompute, Value: 1}}, 1); !errors.Is(err, device.ErrQueueUnsupported) {
		t.Errorf("Submit with compute wait error = %v, want ErrQueueUnsupported", err)
	}
	if err := d.Submit(cl, nil, 1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := d.Submit(cl, nil, 2); !errors.Is(err, ErrListState) {
		t.Errorf("double Submit error = %v, want ErrListState", err)
	}

	cl2, _ := d.BeginCommandList(device.QueueGraphics, "b")
	_ = cl2.End()
	if err := d.Submit(cl2, nil, 1); !errors.Is(err, ErrNonMonotonicSignal) {
		t.Errorf("Submit(1) again error = %v, want ErrNonMonotonicSignal", err)
	}

	other := createNoopDevice(t)
	if err := other.Submit(cl2, nil, 5); !errors.Is(err, ErrForeignObject) {
		t.Errorf("foreign Submit error = %v, want ErrForeignObject", err)
	}
}

func TestNativeMapUnmap(t *testing.T) {
	d := createNoopDevice(t)

	buf, err := d.CreateBuffer(&device.BufferDescriptor{Label: "constants", Size: 16, HostVisible: true})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	defer d.DestroyBuffer(buf)

	data, err := d.MapBuffer(buf)
	if err != nil {
		t.Fatalf("MapBuffer: %v", err)
	}
	for i := range data {
		data[i] = byte(0xA0 + i)
	}
	d.UnmapBuffer(buf)

	// Read back the noop backing store through the HAL mapping.
	m, err := d.dev.MapBuffer(buf.(*Buffer).Buffer(), 0, 16)
	if err != nil {
		t.Fatalf("hal MapBuffer: %v", err)
	}
	got := unsafe.Slice((*byte)(m.Ptr), 16)
	if got[0] != 0xA0 || got[15] != 0xAF {
		t.Errorf("uploaded bytes = %x, want a0..af", got)
	}

	local, _ := d.CreateBuffer(&device.BufferDescriptor{Label: "vertices", Size: 16})
	if _, err := d.MapBuffer(local); !errors.Is(err, device.ErrNotHostVisible) {
		t.Errorf("MapBuffer(device local) error = %v, want ErrNotHostVisible", err)
	}
}

func TestNativeForeignObjects(t *testing.T) {
	d := createNoopDevice(t)
	other := createNoopDevice(t)

	img, err := other.CreateImage(&device.ImageDescriptor{
		Label:  "foreign",
		Size:   gputypes.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	if _, err := d.CreateImageView(img, &device.ImageViewDescriptor{}); !errors.Is(err, ErrForeignObject) {
		t.Errorf("CreateImageView(foreign) error = %v, want ErrForeignObject", err)
	}
}

const doubleWGSL = `
@group(0) @binding(0) var<storage, read_write> data: array<u32>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    data[id.x] = data[id.x] * 2u;
}
`

func TestNativeShaderModuleCache(t *testing.T) {
	d := createNoopDevice(t)

	a, err := d.ShaderModule("double", doubleWGSL)
	if err != nil {
		t.Fatalf("ShaderModule: %v", err)
	}
	b, err := d.ShaderModule("double-again", doubleWGSL)
	if err != nil {
		t.Fatalf("ShaderModule (cached): %v", err)
	}
	if a != b || d.ShaderCount() != 1 {
		t.Errorf("shader not cached: same=%v count=%d", a == b, d.ShaderCount())
	}
	if _, err := d.ShaderModule("broken", "fn main( {"); err == nil {
		t.Error("invalid WGSL should fail to compile")
	}

	d.Destroy()
	if d.ShaderCount() != 0 {
		t.Errorf("ShaderCount after Destroy = %d, want 0", d.ShaderCount())
	}
	if _, err := d.ShaderModule("double", doubleWGSL); !errors.Is(err, ErrDestroyed) {
		t.Errorf("ShaderModule after Destroy error = %v, want ErrDestroyed", err)
	}
}

// halProvider is a gpucontext.DeviceProvider exposing HAL types.
type halProvider struct {
	dev   hal.Device
	queue hal.Queue
}

func (p *halProvider) Device() gpucontext.Device             { return p.dev }
func (p *halProvider) Queue() gpucontext.Queue               { return p.queue }
func (p *halProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (p *halProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *halProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{Name: "noop"} }
func (p *halProvider) HalDevice() any                        { return p.dev }
func (p *halProvider) HalQueue() any                         { return p.queue }

// plainProvider does not expose HAL types.
type plainProvider struct{ halProvider }

func (p *plainProvider) HalDevice() {}

func TestNewFromProvider(t *testing.T) {
	owner := createNoopDevice(t)
	dev, queue := owner.HAL()

	d, err := NewFromProvider(&halProvider{dev: dev, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider: %v", err)
	}
	if got, _ := d.HAL(); got != dev {
		t.Error("provider device not shared")
	}

	if _, err := NewFromProvider(&plainProvider{}); err == nil {
		t.Error("provider without HAL types should be rejected")
	}
	if _, err := NewFromProvider(&halProvider{}); err == nil {
		t.Error("provider with nil HAL device should be rejected")
	}
}

func TestNativeFrameGraph(t *testing.T) {
	d := createNoopDevice(t)
	g := framegraph.New(d)

	color := g.CreateImage(framegraph.ImageDescription{
		Name: "color", Width: 64, Height: 64,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	constants := g.CreateBuffer(framegraph.BufferDescription{Name: "constants", Size: 64, HostVisible: true})
	colorView := g.DefaultImageView(color)
	constView := g.DefaultBufferView(constants)

	var encoded bool
	g.AddPass("draw", device.QueueGraphics, []framegraph.Usage{
		framegraph.Use(colorView, device.StateColorAttachment),
		framegraph.Use(constView, device.StateConstantBuffer),
	}, func(reg *framegraph.Registry, cl device.CommandList) {
		encoded = cl.(*CommandList).Encoder() != nil
		data, err := reg.Map(constView)
		if err != nil {
			t.Errorf("Map: %v", err)
			return
		}
		data[0] = 1
		reg.Unmap(constView)
	})
	g.AddPass("post", device.QueueGraphics, []framegraph.Usage{
		framegraph.Use(colorView, device.StateTextureRead),
	}, nil)

	if err := g.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !encoded {
		t.Error("record callback did not receive a native command list")
	}
	if tex, ok := g.Registry().Image(color).(*Image); !ok || tex.Texture() == nil {
		t.Error("image not backed by a HAL texture")
	}
	if got := d.Timeline(device.QueueGraphics); got != 1 {
		t.Errorf("Timeline = %d, want 1 (one batch)", got)
	}

	for range 3 {
		if err := g.NextFrame(); err != nil {
			t.Fatalf("NextFrame: %v", err)
		}
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
