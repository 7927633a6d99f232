// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"time"

	"github.com/gogpu/framegraph/device"
)

// Default configuration values.
const (
	// DefaultFramesInFlight is the default number of frame slots.
	DefaultFramesInFlight = 2

	// DefaultWaitTimeout bounds how long NextFrame and Close block on a
	// frame slot.
	DefaultWaitTimeout = 5 * time.Second

	// DefaultLabel prefixes command list labels.
	DefaultLabel = "framegraph"
)

// DescriptorRegistry turns views into shader-visible bindless indices.
// A zero index means the registry is exhausted; the view then has no
// bindless handle for the frame.
//
// bindless.Registry is the stock implementation.
type DescriptorRegistry interface {
	RegisterImage(kind device.DescriptorKind, view device.ImageView) uint32
	RegisterBuffer(kind device.DescriptorKind, view device.BufferView) uint32
	Release(kind device.DescriptorKind, idx uint32)
}

// Option configures a Graph during creation.
//
// Example:
//
//	g := framegraph.New(dev,
//		framegraph.WithFramesInFlight(3),
//		framegraph.WithDescriptorRegistry(bindless.New(0)),
//	)
type Option func(*graphOptions)

// graphOptions holds optional configuration for Graph creation.
type graphOptions struct {
	framesInFlight int
	descriptors    DescriptorRegistry
	waitTimeout    time.Duration
	label          string
}

// defaultOptions returns the default graph options.
func defaultOptions() graphOptions {
	return graphOptions{
		framesInFlight: DefaultFramesInFlight,
		waitTimeout:    DefaultWaitTimeout,
		label:          DefaultLabel,
	}
}

// WithFramesInFlight sets the number of frame slots. It must be 2 or 3.
func WithFramesInFlight(n int) Option {
	return func(o *graphOptions) {
		o.framesInFlight = n
	}
}

// WithDescriptorRegistry sets the registry shader-visible views are
// registered with. Without one, every bindless handle is 0.
func WithDescriptorRegistry(r DescriptorRegistry) Option {
	return func(o *graphOptions) {
		o.descriptors = r
	}
}

// WithWaitTimeout sets how long NextFrame and Close wait for a frame
// slot's work before failing with ErrWaitTimeout.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *graphOptions) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

// WithLabel sets the prefix of command list labels.
func WithLabel(label string) Option {
	return func(o *graphOptions) {
		o.label = label
	}
}
