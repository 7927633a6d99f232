// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/device"
)

// FrameStats summarizes the last executed frame.
type FrameStats struct {
	Frame     uint64
	Resources int
	Culled    int
	Views     int
	Passes    int
	Batches   int

	// Barriers counts synthesized subresource barriers, before and after
	// passes and external releases.
	Barriers int
	Acquires int
	Releases int

	// Waits counts cross-queue semaphore waits over all batches.
	Waits int
}

// String returns a human-readable summary of the statistics.
func (s FrameStats) String() string {
	return fmt.Sprintf("Frame[%d: %d resources (%d culled), %d views, %d passes, %d batches, %d barriers (%d acquire, %d release), %d waits]",
		s.Frame,
		s.Resources,
		s.Culled,
		s.Views,
		s.Passes,
		s.Batches,
		s.Barriers,
		s.Acquires,
		s.Releases,
		s.Waits)
}

// Stats returns statistics of the frame executed last.
func (g *Graph) Stats() FrameStats { return g.stats }

func (g *Graph) collectStats() FrameStats {
	s := FrameStats{
		Frame:     g.frame,
		Resources: len(g.resources),
		Views:     len(g.views),
		Passes:    len(g.passes),
		Batches:   len(g.batches),
	}
	for i := range g.resources {
		if g.resources[i].culled {
			s.Culled++
		}
	}
	count := func(list []Barrier) {
		s.Barriers += len(list)
		for i := range list {
			if list[i].Flags&device.BarrierAcquire != 0 {
				s.Acquires++
			}
			if list[i].Flags&device.BarrierRelease != 0 {
				s.Releases++
			}
		}
	}
	for i := range g.passes {
		count(g.passes[i].before)
		count(g.passes[i].after)
	}
	for q := range g.extRelease {
		count(g.extRelease[q])
	}
	for i := range g.batches {
		for _, v := range g.batches[i].waits {
			if v != 0 {
				s.Waits++
			}
		}
	}
	return s
}
