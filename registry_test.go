// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph/backend/software"
	"github.com/gogpu/framegraph/device"
)

func TestRegistryCulledResource(t *testing.T) {
	g, dev := newTestGraph(t)

	used := g.CreateImage(colorImage("used"))
	unused := g.CreateImage(colorImage("unused"))
	uv := g.DefaultImageView(used)
	xv := g.DefaultImageView(unused)
	g.AddPass("draw", device.QueueGraphics, []Usage{Use(uv, device.StateColorAttachment)}, nil)
	execute(t, g)

	reg := g.Registry()
	if !reg.Culled(unused) || reg.Culled(used) {
		t.Errorf("Culled = %v/%v, want true/false", reg.Culled(unused), reg.Culled(used))
	}
	if reg.Image(unused) != nil || reg.ImageView(xv) != nil {
		t.Error("culled resource resolved to an object")
	}
	if reg.Image(used) == nil || reg.ImageView(uv) == nil {
		t.Error("used resource not materialized")
	}
	// One image and one view.
	if got := dev.LiveObjects(); got != 2 {
		t.Errorf("LiveObjects = %d, want 2", got)
	}
}

func TestRegistryOutOfRange(t *testing.T) {
	g, _ := newTestGraph(t)
	v := g.DefaultImageView(g.CreateImage(colorImage("a")))
	g.AddPass("draw", device.QueueGraphics, []Usage{Use(v, device.StateColorAttachment)}, nil)
	execute(t, g)

	reg := g.Registry()
	if reg.Image(InvalidResource) != nil || reg.Image(99) != nil {
		t.Error("invalid resource handle resolved")
	}
	if reg.ImageView(InvalidView) != nil || reg.BufferView(99) != nil {
		t.Error("invalid view handle resolved")
	}
	if reg.BindlessHandle(v, device.DescriptorKindCount) != 0 {
		t.Error("out-of-range descriptor kind resolved")
	}
	if reg.Culled(99) {
		t.Error("out-of-range handle reported culled")
	}
	if data, err := reg.Map(99); data != nil || err != nil {
		t.Errorf("Map(99) = %v, %v; want nil, nil", data, err)
	}
}

func TestRegistryStaleHandles(t *testing.T) {
	g, _ := newTestGraph(t)
	img := g.CreateImage(colorImage("a"))
	v := g.DefaultImageView(img)
	g.AddPass("draw", device.QueueGraphics, []Usage{Use(v, device.StateColorAttachment)}, nil)
	execute(t, g)
	if err := g.NextFrame(); err != nil {
		t.Fatalf("NextFrame: %v", err)
	}

	// Same table indices, next frame.
	img2 := g.CreateImage(colorImage("b"))
	v2 := g.DefaultImageView(img2)
	if img2 == img || v2 == v {
		t.Fatalf("handles repeat across frames: %#x/%#x, %#x/%#x", img, img2, v, v2)
	}
	g.AddPass("draw", device.QueueGraphics, []Usage{Use(v2, device.StateColorAttachment)}, nil)
	execute(t, g)

	reg := g.Registry()
	if reg.Image(img2) == nil || reg.ImageView(v2) == nil {
		t.Fatal("current frame handles did not resolve")
	}
	if reg.Image(img) != nil || reg.ImageView(v) != nil {
		t.Error("handle of the previous frame resolved")
	}
	if reg.BindlessHandle(v, device.DescriptorSampledImage) != 0 || reg.Culled(img) {
		t.Error("handle of the previous frame resolved")
	}
}

func TestRegistryMapBufferView(t *testing.T) {
	g, _ := newTestGraph(t)

	h := g.CreateBuffer(BufferDescription{Name: "constants", Size: 256, HostVisible: true})
	v := g.CreateBufferView(BufferViewDescription{Resource: h, Offset: 64, Size: 16})

	var mapErr error
	g.AddPass("upload", device.QueueGraphics, []Usage{Use(v, device.StateConstantBuffer)},
		func(reg *Registry, cl device.CommandList) {
			data, err := reg.Map(v)
			if err != nil {
				mapErr = err
				return
			}
			if len(data) != 16 {
				t.Errorf("mapped %d bytes, want 16", len(data))
			}
			for i := range data {
				data[i] = byte(i + 1)
			}
			reg.Unmap(v)
		})
	execute(t, g)
	if mapErr != nil {
		t.Fatalf("Map: %v", mapErr)
	}

	buf := g.Registry().Buffer(h).(*software.Buffer)
	if buf.Mapped() {
		t.Error("buffer still mapped after Unmap")
	}
	bytes := buf.Bytes()
	if bytes[63] != 0 || bytes[64] != 1 || bytes[79] != 16 || bytes[80] != 0 {
		t.Errorf("bytes[63:81] = %v, want the view range filled", bytes[63:81])
	}
}

func TestRegistryMapDeviceLocal(t *testing.T) {
	g, _ := newTestGraph(t)
	h := g.CreateBuffer(BufferDescription{Name: "vertices", Size: 64})
	v := g.DefaultBufferView(h)
	g.AddPass("draw", device.QueueGraphics, []Usage{Use(v, device.StateVertexBuffer)}, nil)
	execute(t, g)

	if _, err := g.Registry().Map(v); !errors.Is(err, device.ErrNotHostVisible) {
		t.Errorf("Map err = %v, want ErrNotHostVisible", err)
	}
}
