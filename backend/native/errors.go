// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/wgpu/hal"
)

// Package errors for the native backend.
var (
	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrListState is returned when a command list is submitted twice or
	// before End.
	ErrListState = errors.New("native: command list is not ready for submission")

	// ErrNonMonotonicSignal is returned by Submit when the signal value
	// does not exceed the queue's timeline.
	ErrNonMonotonicSignal = errors.New("native: signal value is not increasing")

	// ErrForeignObject is returned when an object from another device is used.
	ErrForeignObject = errors.New("native: object does not belong to this device")

	// ErrDestroyed is returned by operations on a destroyed device.
	ErrDestroyed = errors.New("native: device destroyed")
)

// halError annotates a HAL error with the matching device error so callers
// can test for device.ErrOutOfMemory and device.ErrDeviceLost.
func halError(op string, err error) error {
	switch {
	case errors.Is(err, hal.ErrDeviceOutOfMemory):
		return fmt.Errorf("native: %s: %w: %w", op, device.ErrOutOfMemory, err)
	case errors.Is(err, hal.ErrDeviceLost):
		return fmt.Errorf("native: %s: %w: %w", op, device.ErrDeviceLost, err)
	default:
		return fmt.Errorf("native: %s: %w", op, err)
	}
}
