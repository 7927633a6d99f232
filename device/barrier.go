// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

// BarrierFlags qualify a Barrier.
type BarrierFlags uint8

// Barrier flags.
const (
	// BarrierFirstAccess marks the first access to a subresource in the
	// submission. StateBefore is the state left by earlier frames or
	// StateUndefined.
	BarrierFirstAccess BarrierFlags = 1 << iota

	// BarrierAcquire marks the acquire half of a queue ownership transfer,
	// recorded on DstQueue.
	BarrierAcquire

	// BarrierRelease marks the release half of a queue ownership transfer,
	// recorded on SrcQueue.
	BarrierRelease
)

// String returns the flag names joined by '|'.
func (f BarrierFlags) String() string {
	if f == 0 {
		return "-"
	}
	return joinBits(uint32(f), []string{"FIRST_ACCESS", "ACQUIRE", "RELEASE"})
}

// Barrier is a state transition of an image subresource range or a whole
// buffer, optionally moving queue ownership from SrcQueue to DstQueue.
// Exactly one of Image and Buffer is set.
type Barrier struct {
	Image  Image
	Buffer Buffer

	// Range is the affected image subresource range. Unused for buffers.
	Range SubresourceRange

	StateBefore ResourceState
	StateAfter  ResourceState
	StageBefore PipelineStage
	StageAfter  PipelineStage

	SrcQueue QueueType
	DstQueue QueueType

	Flags BarrierFlags
}

// IsOwnershipTransfer reports whether b is one half of a queue ownership
// transfer.
func (b *Barrier) IsOwnershipTransfer() bool {
	return b.Flags&(BarrierAcquire|BarrierRelease) != 0
}
