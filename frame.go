// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/device"
)

// resourceObject is the concrete object backing one resource in a slot.
type resourceObject struct {
	image    device.Image
	buffer   device.Buffer
	external bool
}

// viewObject is the concrete view backing one view handle in a slot.
type viewObject struct {
	image    device.ImageView
	buffer   device.BufferView
	bindless [device.DescriptorKindCount]uint32
}

// frameResources holds the objects of one frame-in-flight slot and the
// per-queue timeline values its work signals.
type frameResources struct {
	resources []resourceObject
	views     []viewObject
	waits     [device.QueueCount]uint64
}

// wait blocks until every queue reaches the slot's recorded values.
func (f *frameResources) wait(dev device.Device, o *graphOptions) error {
	for q := range f.waits {
		v := f.waits[q]
		if v == 0 {
			continue
		}
		ok, err := dev.Wait(device.QueueType(q), v, o.waitTimeout)
		if err != nil {
			return fmt.Errorf("framegraph: wait %v queue for %d: %w", device.QueueType(q), v, err)
		}
		if !ok {
			return fmt.Errorf("%w: %v queue value %d after %v", ErrWaitTimeout, device.QueueType(q), v, o.waitTimeout)
		}
	}
	f.waits = [device.QueueCount]uint64{}
	return nil
}

// release destroys the slot's non-external objects and returns its
// bindless indices.
func (f *frameResources) release(dev device.Device, descriptors DescriptorRegistry) {
	for i := range f.views {
		v := &f.views[i]
		if descriptors != nil {
			for k, idx := range v.bindless {
				if idx != 0 {
					descriptors.Release(device.DescriptorKind(k), idx)
				}
			}
		}
		if v.image != nil {
			dev.DestroyImageView(v.image)
		}
		if v.buffer != nil {
			dev.DestroyBufferView(v.buffer)
		}
		*v = viewObject{}
	}
	for i := range f.resources {
		r := &f.resources[i]
		if !r.external {
			if r.image != nil {
				dev.DestroyImage(r.image)
			}
			if r.buffer != nil {
				dev.DestroyBuffer(r.buffer)
			}
		}
		*r = resourceObject{}
	}
	f.views = f.views[:0]
	f.resources = f.resources[:0]
}

// NextFrame ends the current frame and starts declaring the next one.
//
// It moves to the next slot of the frames-in-flight ring, waits until the
// work that slot submitted frames ago has completed, destroys the slot's
// transient objects and clears every declaration table. If the wait fails
// the graph stays on the current frame and NextFrame may be retried.
func (g *Graph) NextFrame() error {
	if g.closed {
		return ErrClosed
	}
	next := (g.slot + 1) % len(g.slots)
	s := &g.slots[next]
	if err := s.wait(g.dev, &g.opts); err != nil {
		return err
	}
	s.release(g.dev, g.opts.descriptors)

	g.slot = next
	g.frame++
	g.reset()
	return nil
}

// Close waits for every slot's work, destroys all transient objects and
// releases all bindless indices. The graph cannot be used afterwards.
func (g *Graph) Close() error {
	if g.closed {
		return ErrClosed
	}
	for i := range g.slots {
		if err := g.slots[i].wait(g.dev, &g.opts); err != nil {
			return err
		}
	}
	for i := range g.slots {
		g.slots[i].release(g.dev, g.opts.descriptors)
	}
	g.reset()
	g.closed = true
	Logger().Info("framegraph: graph closed", "frames", g.frame)
	return nil
}
