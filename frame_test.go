// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/framegraph/backend/software"
	"github.com/gogpu/framegraph/bindless"
	"github.com/gogpu/framegraph/device"
)

// drawFrame declares one image written by a graphics pass and executes the
// frame. It returns the concrete image the frame allocated.
func drawFrame(t *testing.T, g *Graph, name string) *software.Image {
	t.Helper()
	h := g.CreateImage(colorImage(name))
	v := g.DefaultImageView(h)
	g.AddPass(name, device.QueueGraphics, []Usage{Use(v, device.StateColorAttachment)}, nil)
	execute(t, g)
	img, ok := g.Registry().Image(h).(*software.Image)
	if !ok {
		t.Fatalf("%s: image not materialized", name)
	}
	return img
}

func TestNextFrameWaitsBeforeDestroy(t *testing.T) {
	dev := software.New(software.WithManualCompletion())
	g := New(dev)

	imgA := drawFrame(t, g, "a")
	if err := g.NextFrame(); err != nil {
		t.Fatalf("NextFrame into empty slot: %v", err)
	}
	if imgA.Destroyed() {
		t.Fatal("frame 0 image destroyed while its slot is still in flight")
	}
	imgB := drawFrame(t, g, "b")

	done := make(chan error, 1)
	go func() { done <- g.NextFrame() }()

	select {
	case err := <-done:
		t.Fatalf("NextFrame returned %v before the GPU completed frame 0", err)
	case <-time.After(20 * time.Millisecond):
	}
	if imgA.Destroyed() {
		t.Fatal("frame 0 image destroyed before completion was observed")
	}

	dev.Complete(device.QueueGraphics, 1)
	if err := <-done; err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	if !imgA.Destroyed() {
		t.Error("frame 0 image not destroyed after its slot was reclaimed")
	}
	if imgB.Destroyed() {
		t.Error("frame 1 image destroyed while in flight")
	}

	waitAt, destroyAt := -1, -1
	for i, e := range dev.Events() {
		switch {
		case e.Kind == software.EventWait && e.Queue == device.QueueGraphics && e.Value == 1:
			waitAt = i
		case e.Kind == software.EventDestroyImage && e.Object == imgA.ID():
			destroyAt = i
		}
	}
	if waitAt < 0 || destroyAt < 0 || waitAt > destroyAt {
		t.Errorf("wait at event %d, destroy at event %d; wait must come first", waitAt, destroyAt)
	}
}

func TestNextFrameTimeout(t *testing.T) {
	dev := software.New(software.WithManualCompletion())
	g := New(dev, WithWaitTimeout(10*time.Millisecond))

	imgA := drawFrame(t, g, "a")
	if err := g.NextFrame(); err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	drawFrame(t, g, "b")

	err := g.NextFrame()
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("NextFrame err = %v, want ErrWaitTimeout", err)
	}
	if imgA.Destroyed() {
		t.Error("image destroyed after a failed wait")
	}
	if g.Slot() != 1 || g.Frame() != 1 {
		t.Errorf("slot/frame = %d/%d, want 1/1 after failed wait", g.Slot(), g.Frame())
	}

	dev.CompleteAll()
	if err := g.NextFrame(); err != nil {
		t.Fatalf("retried NextFrame: %v", err)
	}
	if !imgA.Destroyed() {
		t.Error("image not destroyed after retry")
	}
	if g.Slot() != 0 || g.Frame() != 2 {
		t.Errorf("slot/frame = %d/%d, want 0/2", g.Slot(), g.Frame())
	}
}

func TestThreeFramesInFlight(t *testing.T) {
	dev := software.New()
	g := New(dev, WithFramesInFlight(3))

	var imgs []*software.Image
	for i, name := range []string{"a", "b", "c"} {
		imgs = append(imgs, drawFrame(t, g, name))
		if err := g.NextFrame(); err != nil {
			t.Fatalf("NextFrame %d: %v", i, err)
		}
	}
	// Slot 0 was reclaimed by the third NextFrame, slots 1 and 2 are in flight.
	if !imgs[0].Destroyed() || imgs[1].Destroyed() || imgs[2].Destroyed() {
		t.Errorf("destroyed = %v %v %v, want true false false",
			imgs[0].Destroyed(), imgs[1].Destroyed(), imgs[2].Destroyed())
	}
}

func TestNextFrameClearsTables(t *testing.T) {
	g, _ := newTestGraph(t)
	drawFrame(t, g, "a")
	if err := g.NextFrame(); err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	if len(g.resources) != 0 || len(g.views) != 0 || g.PassCount() != 0 || len(g.Batches()) != 0 {
		t.Errorf("tables not cleared: %d resources, %d views, %d passes, %d batches",
			len(g.resources), len(g.views), g.PassCount(), len(g.Batches()))
	}
	if h := g.CreateImage(colorImage("fresh")); h.index() != 0 || h == 1 {
		t.Errorf("first handle of new frame = %#x, want index 1 of generation 1", h)
	}
}

func TestImportedObjectsSurviveRecycling(t *testing.T) {
	g, dev := newTestGraph(t)
	img, _ := dev.CreateImage(&device.ImageDescriptor{Label: "swapchain", MipLevelCount: 1})
	state := NewExternalState(1)

	for range 4 {
		v := g.DefaultImageView(g.ImportImage(img, "swapchain", state))
		g.AddPass("draw", device.QueueGraphics, []Usage{Use(v, device.StateColorAttachment)}, nil)
		execute(t, g)
		if err := g.NextFrame(); err != nil {
			t.Fatalf("NextFrame: %v", err)
		}
	}
	if img.(*software.Image).Destroyed() {
		t.Fatal("imported image destroyed by the graph")
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := dev.LiveObjects(); got != 1 {
		t.Errorf("LiveObjects = %d, want 1 (the imported image)", got)
	}
}

func TestBindlessIndicesRecycled(t *testing.T) {
	reg := bindless.New(8)
	g, _ := newTestGraph(t, WithDescriptorRegistry(reg))

	v := g.DefaultImageView(g.CreateImage(colorImage("albedo")))
	g.AddPass("draw", device.QueueGraphics, []Usage{Use(v, device.StateColorAttachment)}, nil)
	g.AddPass("sample", device.QueueGraphics, []Usage{Use(v, device.StateTextureRead)}, nil)
	execute(t, g)

	if idx := g.Registry().BindlessHandle(v, device.DescriptorSampledImage); idx == 0 {
		t.Error("sampled view has no bindless index")
	}
	if idx := g.Registry().BindlessHandle(v, device.DescriptorStorageImage); idx != 0 {
		t.Errorf("storage index = %d, want 0 (never used as storage)", idx)
	}
	if n := reg.Len(device.DescriptorSampledImage); n != 1 {
		t.Fatalf("registered = %d, want 1", n)
	}

	for range 2 {
		if err := g.NextFrame(); err != nil {
			t.Fatalf("NextFrame: %v", err)
		}
	}
	if n := reg.Len(device.DescriptorSampledImage); n != 0 {
		t.Errorf("registered after recycling = %d, want 0", n)
	}
}

func TestBindlessExhaustion(t *testing.T) {
	reg := bindless.NewWithCapacities([device.DescriptorKindCount]uint32{2, 2, 2, 2})
	g, _ := newTestGraph(t, WithDescriptorRegistry(reg))

	a := g.DefaultImageView(g.CreateImage(colorImage("a")))
	b := g.DefaultImageView(g.CreateImage(colorImage("b")))
	g.AddPass("sample", device.QueueGraphics, []Usage{
		Use(a, device.StateTextureRead),
		Use(b, device.StateTextureRead),
	}, nil)
	execute(t, g)

	ia := g.Registry().BindlessHandle(a, device.DescriptorSampledImage)
	ib := g.Registry().BindlessHandle(b, device.DescriptorSampledImage)
	if ia == 0 || ib != 0 {
		t.Errorf("indices = %d, %d; want non-zero, 0", ia, ib)
	}
	if g.Registry().ImageView(b) == nil {
		t.Error("view without bindless index was not created")
	}
}

func TestAllocationFailureIsRecoverable(t *testing.T) {
	dev := software.New(software.WithObjectLimit(1))
	g := New(dev)

	ha := g.CreateImage(colorImage("a"))
	hb := g.CreateImage(colorImage("b"))
	va, vb := g.DefaultImageView(ha), g.DefaultImageView(hb)
	g.AddPass("draw", device.QueueGraphics, []Usage{
		Use(va, device.StateColorAttachment),
		Use(vb, device.StateColorAttachment),
	}, func(reg *Registry, cl device.CommandList) {
		if reg.Image(hb) != nil || reg.ImageView(vb) != nil {
			t.Error("failed allocation resolved to an object")
		}
	})
	if err := g.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if g.Registry().Image(ha) == nil {
		t.Error("first image not allocated")
	}
	barriers := dev.Submissions()[0].Barriers()
	if len(barriers) != 1 || barriers[0].Image != g.Registry().Image(ha) {
		t.Errorf("device barriers = %+v, want only the allocated image", barriers)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if dev.LiveObjects() != 0 {
		t.Errorf("LiveObjects = %d after Close", dev.LiveObjects())
	}
}
