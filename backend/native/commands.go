// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// CommandList records into a HAL command encoder. Record callbacks reach
// the encoder through Encoder to begin render and compute passes.
type CommandList struct {
	dev       *Device
	encoder   hal.CommandEncoder
	label     string
	cmd       hal.CommandBuffer
	ended     bool
	submitted bool

	// Reused across Barrier calls.
	textures []hal.TextureBarrier
	buffers  []hal.BufferBarrier
}

// Queue implements device.CommandList.
func (c *CommandList) Queue() device.QueueType { return device.QueueGraphics }

// Label returns the label the list was begun with.
func (c *CommandList) Label() string { return c.label }

// Encoder returns the HAL encoder commands are recorded into.
func (c *CommandList) Encoder() hal.CommandEncoder { return c.encoder }

// Barrier implements device.CommandList. Image barriers become texture
// usage transitions, buffer barriers buffer usage transitions. Release
// halves of ownership transfers are dropped: the device exposes a single
// queue, so the matching acquire performs the whole transition.
func (c *CommandList) Barrier(b []device.Barrier) {
	if len(b) == 0 {
		return
	}
	if c.ended {
		panic("native: Barrier after End")
	}
	c.textures = c.textures[:0]
	c.buffers = c.buffers[:0]
	for i := range b {
		bar := &b[i]
		if bar.Flags&device.BarrierRelease != 0 {
			continue
		}
		switch {
		case bar.Image != nil:
			img, ok := bar.Image.(*Image)
			if !ok {
				continue
			}
			c.textures = append(c.textures, hal.TextureBarrier{
				Texture: img.tex,
				Range: hal.TextureRange{
					Aspect:          gputypes.TextureAspectAll,
					BaseMipLevel:    bar.Range.BaseMipLevel,
					MipLevelCount:   bar.Range.MipLevelCount,
					BaseArrayLayer:  bar.Range.BaseArrayLayer,
					ArrayLayerCount: bar.Range.ArrayLayerCount,
				},
				Usage: hal.TextureUsageTransition{
					OldUsage: device.TextureUsageFor(bar.StateBefore),
					NewUsage: device.TextureUsageFor(bar.StateAfter),
				},
			})
		case bar.Buffer != nil:
			buf, ok := bar.Buffer.(*Buffer)
			if !ok {
				continue
			}
			c.buffers = append(c.buffers, hal.BufferBarrier{
				Buffer: buf.buf,
				Usage: hal.BufferUsageTransition{
					OldUsage: device.BufferUsageFor(bar.StateBefore),
					NewUsage: device.BufferUsageFor(bar.StateAfter),
				},
			})
		}
	}
	if len(c.textures) > 0 {
		c.encoder.TransitionTextures(c.textures)
	}
	if len(c.buffers) > 0 {
		c.encoder.TransitionBuffers(c.buffers)
	}
}

// End implements device.CommandList.
func (c *CommandList) End() error {
	if c.ended {
		return fmt.Errorf("%w: %q already ended", ErrListState, c.label)
	}
	cmd, err := c.encoder.EndEncoding()
	if err != nil {
		return halError("end encoding "+c.label, err)
	}
	c.cmd = cmd
	c.ended = true
	return nil
}
