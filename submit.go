// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/device"
)

// batch is a run of consecutive same-queue passes recorded into one command
// list and submitted with one signal.
type batch struct {
	queue device.QueueType

	// first and last are inclusive pass indices. Both are -1 for a batch
	// that only releases imported resources.
	first int
	last  int

	waits      [device.QueueCount]uint64
	waitStages [device.QueueCount]device.PipelineStage
	signal     uint64
}

func (b *batch) external() bool { return b.first < 0 }

// semaphoreWaits returns the batch's non-zero waits.
func (b *batch) semaphoreWaits() []device.SemaphoreWait {
	var waits []device.SemaphoreWait
	for q, v := range b.waits {
		if v == 0 {
			continue
		}
		stages := b.waitStages[q]
		if stages == device.StageNone {
			stages = device.StageAllCommands
		}
		waits = append(waits, device.SemaphoreWait{Queue: device.QueueType(q), Value: v, Stages: stages})
	}
	return waits
}

// buildBatches groups passes into batches and assigns every batch a signal
// value on its queue's timeline.
func (g *Graph) buildBatches() {
	var counter, extSignal [device.QueueCount]uint64
	for q := range counter {
		if g.dev.HasQueue(device.QueueType(q)) {
			g.base[q] = g.dev.Timeline(device.QueueType(q))
		}
		counter[q] = g.base[q]
	}

	for q := range g.extRelease {
		if len(g.extRelease[q]) == 0 {
			continue
		}
		counter[q]++
		extSignal[q] = counter[q]
		g.batches = append(g.batches, batch{queue: device.QueueType(q), first: -1, last: -1, signal: counter[q]})
	}

	for i := range g.passes {
		p := &g.passes[i]
		if i == 0 || p.queue != g.passes[i-1].queue || p.hasWait() || len(g.passes[i-1].after) > 0 {
			counter[p.queue]++
			g.batches = append(g.batches, batch{queue: p.queue, first: i, signal: counter[p.queue]})
		}
		b := &g.batches[len(g.batches)-1]
		b.last = i
		p.batch = len(g.batches) - 1
		p.signalValue = b.signal

		for q := range p.waitPass {
			if device.QueueType(q) == p.queue {
				continue
			}
			var v uint64
			if wp := p.waitPass[q]; wp > 0 {
				v = g.passes[wp-1].signalValue
			}
			if p.waitExternal[q] {
				v = max(v, extSignal[q])
			}
			if p.waitBase[q] {
				v = max(v, g.base[q])
			}
			if v > 0 {
				b.waits[q] = max(b.waits[q], v)
				b.waitStages[q] |= p.waitStages[q]
			}
		}
	}
}

// submit records and submits every batch in order.
func (g *Graph) submit() error {
	f := &g.slots[g.slot]
	for i := range g.batches {
		b := &g.batches[i]
		label := fmt.Sprintf("%s/%d/%v", g.opts.label, i, b.queue)
		cl, err := g.dev.BeginCommandList(b.queue, label)
		if err != nil {
			return fmt.Errorf("framegraph: begin command list %s: %w", label, err)
		}

		if b.external() {
			cl.Barrier(g.deviceBarriers(g.extRelease[b.queue]))
		} else {
			for pi := b.first; pi <= b.last; pi++ {
				p := &g.passes[pi]
				cl.Barrier(g.deviceBarriers(p.before))
				if p.record != nil {
					p.record(&g.registry, cl)
				}
				cl.Barrier(g.deviceBarriers(p.after))
			}
		}

		if err := cl.End(); err != nil {
			return fmt.Errorf("framegraph: end command list %s: %w", label, err)
		}
		if err := g.dev.Submit(cl, b.semaphoreWaits(), b.signal); err != nil {
			return fmt.Errorf("framegraph: submit %s: %w", label, err)
		}
		f.waits[b.queue] = max(f.waits[b.queue], b.signal)
	}
	return nil
}

// deviceBarriers converts synthesized barriers into device barriers.
// Barriers of consecutive mip levels of one layer with identical
// transitions merge into one range. Barriers of objects that failed to
// allocate are dropped. The result is only valid until the next call.
func (g *Graph) deviceBarriers(list []Barrier) []device.Barrier {
	out := g.scratch[:0]
	objs := g.slots[g.slot].resources
	var prev *Barrier
	for i := range list {
		b := &list[i]
		obj := &objs[b.Resource.index()]
		if obj.image == nil && obj.buffer == nil {
			continue
		}

		if obj.image != nil {
			r := &g.resources[b.Resource.index()]
			mip := b.Subresource % r.mipLevels
			layer := b.Subresource / r.mipLevels
			if prev != nil && mergeable(prev, b) {
				last := &out[len(out)-1]
				rng := &last.Range
				if rng.BaseArrayLayer == layer && rng.BaseMipLevel+rng.MipLevelCount == mip {
					rng.MipLevelCount++
					prev = b
					continue
				}
			}
			out = append(out, device.Barrier{
				Image: obj.image,
				Range: device.SubresourceRange{
					BaseMipLevel:    mip,
					MipLevelCount:   1,
					BaseArrayLayer:  layer,
					ArrayLayerCount: 1,
				},
			})
		} else {
			out = append(out, device.Barrier{Buffer: obj.buffer})
		}

		d := &out[len(out)-1]
		d.StateBefore, d.StateAfter = b.StateBefore, b.StateAfter
		d.StageBefore, d.StageAfter = b.StageBefore, b.StageAfter
		d.SrcQueue, d.DstQueue = b.SrcQueue, b.DstQueue
		d.Flags = b.Flags
		prev = b
	}
	g.scratch = out
	return out
}

func mergeable(a, b *Barrier) bool {
	return a.Resource == b.Resource &&
		a.StateBefore == b.StateBefore && a.StateAfter == b.StateAfter &&
		a.StageBefore == b.StageBefore && a.StageAfter == b.StageAfter &&
		a.SrcQueue == b.SrcQueue && a.DstQueue == b.DstQueue &&
		a.Flags == b.Flags
}

// BatchInfo describes one submitted batch.
type BatchInfo struct {
	Queue device.QueueType

	// Passes lists the pass indices in the batch. It is empty for a batch
	// that only releases imported resources to another queue.
	Passes []int

	Waits  []device.SemaphoreWait
	Signal uint64
}

// Batches returns the batches of the executed frame in submission order.
func (g *Graph) Batches() []BatchInfo {
	out := make([]BatchInfo, 0, len(g.batches))
	for i := range g.batches {
		b := &g.batches[i]
		info := BatchInfo{Queue: b.queue, Waits: b.semaphoreWaits(), Signal: b.signal}
		if !b.external() {
			for p := b.first; p <= b.last; p++ {
				info.Passes = append(info.Passes, p)
			}
		}
		out = append(out, info)
	}
	return out
}
