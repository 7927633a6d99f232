// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"github.com/gogpu/framegraph/device"
)

// Graph schedules one frame of GPU work at a time.
//
// Each frame follows the same cycle: declare resources, views and passes,
// call Execute, then NextFrame. Declaration order is the only source of
// ordering; passes are never reordered.
//
// A Graph is not safe for concurrent use. Record callbacks run on the
// goroutine that calls Execute.
type Graph struct {
	dev  device.Device
	opts graphOptions

	resources []resource
	views     []view
	passes    []passData
	ledger    ledger

	// extRelease holds, per source queue, release barriers for imported
	// resources that the frame acquires on another queue.
	extRelease [device.QueueCount][]Barrier
	batches    []batch
	base       [device.QueueCount]uint64

	slots    []frameResources
	slot     int
	frame    uint64
	registry Registry

	executed bool
	closed   bool
	stats    FrameStats
	scratch  []device.Barrier
}

// New creates a graph that schedules work on dev.
func New(dev device.Device, opts ...Option) *Graph {
	if dev == nil {
		invariant("nil device")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.framesInFlight != 2 && o.framesInFlight != 3 {
		invariant("frames in flight must be 2 or 3, got %d", o.framesInFlight)
	}

	g := &Graph{
		dev:   dev,
		opts:  o,
		slots: make([]frameResources, o.framesInFlight),
	}
	g.registry = Registry{g: g}

	Logger().Info("framegraph: graph created",
		"framesInFlight", o.framesInFlight,
		"bindless", o.descriptors != nil)
	return g
}

// Device returns the device the graph schedules on.
func (g *Graph) Device() device.Device { return g.dev }

// Frame returns the number of frames completed with NextFrame.
func (g *Graph) Frame() uint64 { return g.frame }

// Slot returns the index of the current frame slot.
func (g *Graph) Slot() int { return g.slot }

// Registry returns the accessor for the current frame's concrete objects.
// It is valid after Execute until NextFrame.
func (g *Graph) Registry() *Registry { return &g.registry }

func (g *Graph) checkDeclaring() {
	if g.closed {
		invariant("declaration on a closed graph")
	}
	if g.executed {
		invariant("declaration after Execute; call NextFrame first")
	}
}

// Execute materializes the frame's resources, synthesizes barriers and
// semaphore values, and submits every pass in declaration order.
//
// Execute runs at most once per frame. A device error aborts the rest of
// the submission; work already submitted is still tracked by the frame
// slot and reclaimed by NextFrame.
func (g *Graph) Execute() error {
	if g.closed {
		return ErrClosed
	}
	if g.executed {
		invariant("Execute called twice in one frame")
	}
	g.executed = true

	g.materialize()
	g.synthesize()
	g.buildBatches()
	err := g.submit()

	g.stats = g.collectStats()
	Logger().Debug("framegraph: frame executed",
		"frame", g.frame,
		"resources", g.stats.Resources,
		"culled", g.stats.Culled,
		"passes", g.stats.Passes,
		"batches", g.stats.Batches,
		"barriers", g.stats.Barriers)
	return err
}

// reset clears every per-frame declaration table. Backing arrays are kept
// for the next frame.
func (g *Graph) reset() {
	g.resources = g.resources[:0]
	g.views = g.views[:0]
	g.passes = g.passes[:0]
	g.ledger.reset()
	for q := range g.extRelease {
		g.extRelease[q] = g.extRelease[q][:0]
	}
	g.batches = g.batches[:0]
	g.base = [device.QueueCount]uint64{}
	g.executed = false
}
