// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "fmt"

// QueueType identifies a hardware queue family.
type QueueType uint8

// Queue types.
const (
	QueueGraphics QueueType = iota
	QueueCompute
	QueueTransfer

	// QueueCount is the number of queue types.
	QueueCount = 3
)

// String returns the queue name.
func (q QueueType) String() string {
	switch q {
	case QueueGraphics:
		return "graphics"
	case QueueCompute:
		return "compute"
	case QueueTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("QueueType(%d)", uint8(q))
	}
}

// Valid reports whether q is one of the defined queue types.
func (q QueueType) Valid() bool { return q < QueueCount }
