// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "github.com/gogpu/framegraph/device"

// SubResourceUsage is one pass's access to one subresource.
type SubResourceUsage struct {
	Pass  int
	Queue device.QueueType

	// State and Stage are the access the pass performs.
	State device.ResourceState
	Stage device.PipelineStage

	// FinalState and FinalStage are what the subresource holds after the
	// pass. They equal State and Stage unless the pass declared a split
	// transition.
	FinalState device.ResourceState
	FinalStage device.PipelineStage
}

func (u *SubResourceUsage) split() bool {
	return u.FinalState != u.State || u.FinalStage != u.Stage
}

// ledger holds one usage list per subresource of every declared resource.
// A resource's lists start at its ledgerOffset. Slots and their backing
// arrays are reused across frames.
type ledger struct {
	slots [][]SubResourceUsage
}

// alloc reserves n empty slots and returns the offset of the first.
func (l *ledger) alloc(n uint32) uint32 {
	off := uint32(len(l.slots))
	for range n {
		if len(l.slots) < cap(l.slots) {
			l.slots = l.slots[:len(l.slots)+1]
			last := len(l.slots) - 1
			l.slots[last] = l.slots[last][:0]
		} else {
			l.slots = append(l.slots, nil)
		}
	}
	return off
}

// record appends u to slot. A second usage of the slot by the same pass is
// folded into the first.
func (l *ledger) record(slot uint32, u SubResourceUsage) {
	list := l.slots[slot]
	if n := len(list); n > 0 && list[n-1].Pass == u.Pass {
		prev := &list[n-1]
		prev.State |= u.State
		prev.Stage |= u.Stage
		prev.FinalState |= u.FinalState
		prev.FinalStage |= u.FinalStage
		return
	}
	l.slots[slot] = append(list, u)
}

// usages returns the usage list of slot.
func (l *ledger) usages(slot uint32) []SubResourceUsage {
	return l.slots[slot]
}

// empty reports whether every slot in [off, off+n) is empty.
func (l *ledger) empty(off, n uint32) bool {
	for i := off; i < off+n; i++ {
		if len(l.slots[i]) > 0 {
			return false
		}
	}
	return true
}

func (l *ledger) reset() {
	l.slots = l.slots[:0]
}
