// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/framegraph/device"

// access is where a subresource was last left: by which pass (or -1 for
// the frame's seed state), on which queue, in which state.
type access struct {
	pass  int
	queue device.QueueType
	state device.ResourceState
	stage device.PipelineStage
}

// synthesize walks every subresource's usage list and attaches barriers
// and queue dependencies to the passes.
func (g *Graph) synthesize() {
	for i := range g.resources {
		r := &g.resources[i]
		if r.culled {
			continue
		}
		for s := range r.subresources() {
			g.walk(g.resourceHandle(i), r, s)
		}
	}
}

// walk synthesizes the barrier chain of subresource s of r.
func (g *Graph) walk(h ResourceHandle, r *resource, s uint32) {
	usages := g.ledger.usages(r.ledgerOffset + s)
	if len(usages) == 0 {
		return
	}

	var persisted *SubresourceState
	if r.isExternal() {
		persisted = &r.external.Subresources[s]
	}

	prev := access{pass: -1, queue: usages[0].Queue}
	if persisted != nil && persisted.State != device.StateUndefined {
		prev.queue = persisted.Queue
		prev.state = persisted.State
		prev.stage = persisted.Stage
	}

	reads := r.readStates()
	first := true
	for i := 0; i < len(usages); {
		cur := usages[i]
		last := i
		if coalescible(&cur, reads) {
			for j := i + 1; j < len(usages); j++ {
				next := &usages[j]
				if next.Queue != cur.Queue || !coalescible(next, reads) {
					break
				}
				cur.State |= next.State
				cur.Stage |= next.Stage
				last = j
			}
			cur.FinalState, cur.FinalStage = cur.State, cur.Stage
		}

		owner := &g.passes[cur.Pass]
		b := Barrier{
			Resource:    h,
			Subresource: s,
			Producer:    prev.pass,
			StateBefore: prev.state,
			StateAfter:  cur.State,
			StageBefore: prev.stage,
			StageAfter:  cur.Stage,
			SrcQueue:    prev.queue,
			DstQueue:    cur.Queue,
		}
		if first {
			b.Flags |= device.BarrierFirstAccess
		}

		if prev.queue != cur.Queue {
			if !r.concurrent() {
				b.Flags |= device.BarrierAcquire
				release := b
				release.Flags = b.Flags&^device.BarrierAcquire | device.BarrierRelease
				if prev.pass < 0 {
					g.extRelease[prev.queue] = append(g.extRelease[prev.queue], release)
				} else {
					p := &g.passes[prev.pass]
					p.after = append(p.after, release)
				}
			}
			switch {
			case prev.pass >= 0:
				owner.dependOn(prev.queue, prev.pass, cur.Stage)
			case r.concurrent():
				owner.waitBase[prev.queue] = true
				owner.waitStages[prev.queue] |= cur.Stage
			default:
				owner.waitExternal[prev.queue] = true
				owner.waitStages[prev.queue] |= cur.Stage
			}
		}
		owner.before = append(owner.before, b)

		prev = access{pass: usages[last].Pass, queue: cur.Queue, state: cur.State, stage: cur.Stage}
		if cur.split() {
			owner.after = append(owner.after, Barrier{
				Resource:    h,
				Subresource: s,
				Producer:    cur.Pass,
				StateBefore: cur.State,
				StateAfter:  cur.FinalState,
				StageBefore: cur.Stage,
				StageAfter:  cur.FinalStage,
				SrcQueue:    cur.Queue,
				DstQueue:    cur.Queue,
			})
			prev.state, prev.stage = cur.FinalState, cur.FinalStage
		}

		first = false
		i = last + 1
	}

	if persisted != nil {
		*persisted = SubresourceState{Queue: prev.queue, State: prev.state, Stage: prev.stage}
	}
}

// coalescible reports whether u may merge with adjacent readers: it only
// reads, within the resource kind's read set, and holds its state after
// the pass.
func coalescible(u *SubResourceUsage, reads device.ResourceState) bool {
	return !u.split() && u.State&^reads == 0
}
