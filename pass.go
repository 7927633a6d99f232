// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/device"
)

// RecordFunc records a pass's commands. It runs during Execute, after the
// pass's before-barriers and before its after-barriers, with a Registry
// bound to the current frame slot.
type RecordFunc func(reg *Registry, cl device.CommandList)

// Usage declares how a pass accesses a view.
type Usage struct {
	View  ResourceViewHandle
	State device.ResourceState

	// Stage defaults to device.DefaultStage(State, queue).
	Stage device.PipelineStage

	// FinalState, when set, is the state the subresources are moved to
	// after the pass. FinalStage defaults like Stage.
	FinalState device.ResourceState
	FinalStage device.PipelineStage
}

// Use returns a usage of view in state.
func Use(view ResourceViewHandle, state device.ResourceState) Usage {
	return Usage{View: view, State: state}
}

// At returns u accessed at stage.
func (u Usage) At(stage device.PipelineStage) Usage {
	u.Stage = stage
	return u
}

// Then returns u followed by a transition to state after the pass.
func (u Usage) Then(state device.ResourceState, stage device.PipelineStage) Usage {
	u.FinalState = state
	u.FinalStage = stage
	return u
}

// Barrier is a synthesized transition of one subresource.
type Barrier struct {
	Resource    ResourceHandle
	Subresource uint32

	// Producer is the pass that left the subresource in StateBefore, or -1
	// for the state seeded at frame start.
	Producer int

	StateBefore device.ResourceState
	StateAfter  device.ResourceState
	StageBefore device.PipelineStage
	StageAfter  device.PipelineStage

	SrcQueue device.QueueType
	DstQueue device.QueueType

	Flags device.BarrierFlags
}

// String returns a compact description of the barrier.
func (b Barrier) String() string {
	s := fmt.Sprintf("r%d[%d] %v -> %v", b.Resource, b.Subresource, b.StateBefore, b.StateAfter)
	if b.SrcQueue != b.DstQueue {
		s += fmt.Sprintf(" %v->%v", b.SrcQueue, b.DstQueue)
	}
	if b.Flags != 0 {
		s += " " + b.Flags.String()
	}
	return s
}

// passData is one row of the per-frame pass table.
type passData struct {
	name   string
	queue  device.QueueType
	record RecordFunc

	before []Barrier
	after  []Barrier

	// waitPass holds, per source queue, 1 + the index of the latest
	// producer this pass must wait for, or 0.
	waitPass     [device.QueueCount]int
	waitExternal [device.QueueCount]bool
	waitBase     [device.QueueCount]bool
	waitStages   [device.QueueCount]device.PipelineStage

	batch       int
	signalValue uint64
}

func (p *passData) hasWait() bool {
	for q := range p.waitPass {
		if p.waitPass[q] > 0 || p.waitExternal[q] || p.waitBase[q] {
			return true
		}
	}
	return false
}

// dependOn records that the pass waits on src for producer.
func (p *passData) dependOn(src device.QueueType, producer int, stages device.PipelineStage) {
	p.waitPass[src] = max(p.waitPass[src], producer+1)
	p.waitStages[src] |= stages
}

// AddPass declares a pass on queue that accesses usages and records its
// commands with record. record may be nil.
func (g *Graph) AddPass(name string, queue device.QueueType, usages []Usage, record RecordFunc) {
	g.checkDeclaring()
	if !g.dev.HasQueue(queue) {
		invariant("pass %q targets %v queue, which the device does not expose", name, queue)
	}

	idx := len(g.passes)
	for _, u := range usages {
		v := g.view(u.View)
		r := g.resource(v.resource)
		if u.State == device.StateUndefined || u.State&^r.validStates() != 0 {
			invariant("pass %q uses %v %q in state %v", name, r.kind, r.name, u.State)
		}
		if u.FinalState&^r.validStates() != 0 {
			invariant("pass %q leaves %v %q in state %v", name, r.kind, r.name, u.FinalState)
		}

		su := SubResourceUsage{
			Pass:  idx,
			Queue: queue,
			State: u.State,
			Stage: u.Stage,
		}
		if su.Stage == device.StageNone {
			su.Stage = device.DefaultStage(u.State, queue)
		}
		su.FinalState, su.FinalStage = su.State, su.Stage
		if u.FinalState != device.StateUndefined {
			su.FinalState = u.FinalState
			su.FinalStage = u.FinalStage
			if su.FinalStage == device.StageNone {
				su.FinalStage = device.DefaultStage(u.FinalState, queue)
			}
		}

		if r.kind == KindBuffer {
			g.ledger.record(r.ledgerOffset, su)
			continue
		}
		rng := v.image.Range
		for layer := rng.BaseArrayLayer; layer < rng.BaseArrayLayer+rng.ArrayLayerCount; layer++ {
			for mip := rng.BaseMipLevel; mip < rng.BaseMipLevel+rng.MipLevelCount; mip++ {
				g.ledger.record(r.ledgerOffset+r.subresource(mip, layer), su)
			}
		}
	}

	g.passes = append(g.passes, passData{
		name:   name,
		queue:  queue,
		record: record,
		batch:  -1,
	})
}

// PassInfo describes a declared pass and, after Execute, its synthesized
// synchronization.
type PassInfo struct {
	Name   string
	Queue  device.QueueType
	Before []Barrier
	After  []Barrier

	// Batch is the index into Batches, or -1 before Execute.
	Batch int

	// Signal is the timeline value the pass's batch signals.
	Signal uint64
}

// PassCount returns the number of passes declared this frame.
func (g *Graph) PassCount() int { return len(g.passes) }

// Pass returns information about the i-th declared pass.
func (g *Graph) Pass(i int) PassInfo {
	if i < 0 || i >= len(g.passes) {
		invariant("pass index %d out of range (%d passes)", i, len(g.passes))
	}
	p := &g.passes[i]
	return PassInfo{
		Name:   p.name,
		Queue:  p.queue,
		Before: append([]Barrier(nil), p.before...),
		After:  append([]Barrier(nil), p.after...),
		Batch:  p.batch,
		Signal: p.signalValue,
	}
}
