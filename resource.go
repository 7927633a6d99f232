// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/gputypes"
)

// ResourceHandle identifies a resource declared in the current frame.
// The low bits hold a 1-based index into the frame's resource table, the
// high bits the generation of the frame that declared it. A handle stays
// valid until NextFrame.
type ResourceHandle uint32

// Handle layout: generation above handleIndexBits, table index below.
const (
	handleIndexBits = 20
	handleIndexMask = 1<<handleIndexBits - 1
	handleGenMask   = 1<<(32-handleIndexBits) - 1
)

// handleIndex returns the 0-based table index encoded in a handle, or false
// if the handle is null, out of range or was declared in another frame.
func handleIndex(h, gen uint32, n int) (int, bool) {
	i := int(h & handleIndexMask)
	if i == 0 || i > n || h>>handleIndexBits != gen {
		return 0, false
	}
	return i - 1, true
}

// InvalidResource is the null resource handle.
const InvalidResource ResourceHandle = 0

// Valid reports whether h is not the null handle.
func (h ResourceHandle) Valid() bool { return h != InvalidResource }

func (h ResourceHandle) index() uint32 { return uint32(h)&handleIndexMask - 1 }

// ResourceKind distinguishes images from buffers.
type ResourceKind uint8

// Resource kinds.
const (
	KindImage ResourceKind = iota
	KindBuffer
)

// String returns the kind name.
func (k ResourceKind) String() string {
	if k == KindBuffer {
		return "buffer"
	}
	return "image"
}

// ImageDescription describes a transient image.
type ImageDescription struct {
	Name string

	// Dimension defaults to 2D.
	Dimension gputypes.TextureDimension

	Width  uint32
	Height uint32

	// Depth is the depth of 3D images, ignored otherwise.
	Depth uint32

	Format gputypes.TextureFormat

	// SampleCount, MipLevelCount and ArrayLayerCount treat 0 as 1.
	SampleCount     uint32
	MipLevelCount   uint32
	ArrayLayerCount uint32

	// Usage is ORed with the usage implied by the declared states.
	Usage gputypes.TextureUsage
}

// BufferDescription describes a transient buffer.
type BufferDescription struct {
	Name string
	Size uint64

	// Usage is ORed with the usage implied by the declared states.
	Usage gputypes.BufferUsage

	// Concurrent buffers may be used from several queues without ownership
	// transfers. Only stage and state barriers are emitted for them.
	Concurrent bool

	// HostVisible buffers can be mapped through the Registry.
	HostVisible bool
}

// SubresourceState is the queue, state and pipeline stage one subresource
// was left in.
type SubresourceState struct {
	Queue device.QueueType
	State device.ResourceState
	Stage device.PipelineStage
}

// ExternalState is caller-owned state of an imported resource, one record
// per subresource. Image subresources are ordered by array layer, then mip
// level. A buffer has a single record.
//
// The graph reads it when the frame's barriers are synthesized and
// overwrites it with the state the frame leaves the resource in. It never
// allocates or retains the records beyond the frame.
type ExternalState struct {
	Subresources []SubresourceState
}

// NewExternalState returns state for a resource with n subresources, all
// undefined on the graphics queue.
func NewExternalState(n uint32) *ExternalState {
	return &ExternalState{Subresources: make([]SubresourceState, n)}
}

// resource is one row of the per-frame resource table.
type resource struct {
	kind   ResourceKind
	name   string
	image  device.ImageDescriptor
	buffer device.BufferDescriptor

	// external resources are owned by the caller and never destroyed.
	external       *ExternalState
	importedImage  device.Image
	importedBuffer device.Buffer

	ledgerOffset uint32
	mipLevels    uint32
	arrayLayers  uint32

	culled       bool
	textureUsage gputypes.TextureUsage
	bufferUsage  gputypes.BufferUsage
}

func (r *resource) isExternal() bool { return r.external != nil }

func (r *resource) subresources() uint32 { return r.mipLevels * r.arrayLayers }

// subresource returns the ledger-relative index of (mip, layer).
func (r *resource) subresource(mip, layer uint32) uint32 {
	return layer*r.mipLevels + mip
}

// concurrent reports whether cross-queue access skips ownership transfers.
func (r *resource) concurrent() bool {
	return r.kind == KindBuffer && r.buffer.Concurrent
}

// readStates returns the states consecutive readers of r may merge.
func (r *resource) readStates() device.ResourceState {
	if r.kind == KindBuffer {
		return device.BufferReadStates
	}
	return device.ImageReadStates
}

// validStates returns every state r may be declared in.
func (r *resource) validStates() device.ResourceState {
	if r.kind == KindBuffer {
		return device.BufferStates
	}
	return device.ImageStates
}

func orOne(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

func imageDescriptor(desc *ImageDescription) device.ImageDescriptor {
	d := device.ImageDescriptor{
		Label:         desc.Name,
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		MipLevelCount: orOne(desc.MipLevelCount),
		SampleCount:   orOne(desc.SampleCount),
		Usage:         desc.Usage,
		Size: gputypes.Extent3D{
			Width:              orOne(desc.Width),
			Height:             orOne(desc.Height),
			DepthOrArrayLayers: orOne(desc.ArrayLayerCount),
		},
	}
	switch desc.Dimension {
	case gputypes.TextureDimensionUndefined:
		d.Dimension = gputypes.TextureDimension2D
	case gputypes.TextureDimension3D:
		d.Size.DepthOrArrayLayers = orOne(desc.Depth)
	}
	return d
}

// CreateImage declares a transient image and returns its handle.
func (g *Graph) CreateImage(desc ImageDescription) ResourceHandle {
	g.checkDeclaring()
	d := imageDescriptor(&desc)
	return g.addResource(resource{
		kind:        KindImage,
		name:        desc.Name,
		image:       d,
		mipLevels:   d.MipLevels(),
		arrayLayers: d.ArrayLayers(),
	})
}

// CreateBuffer declares a transient buffer and returns its handle.
func (g *Graph) CreateBuffer(desc BufferDescription) ResourceHandle {
	g.checkDeclaring()
	if desc.Size == 0 {
		invariant("buffer %q has zero size", desc.Name)
	}
	return g.addResource(resource{
		kind: KindBuffer,
		name: desc.Name,
		buffer: device.BufferDescriptor{
			Label:       desc.Name,
			Size:        desc.Size,
			Usage:       desc.Usage,
			HostVisible: desc.HostVisible,
			Concurrent:  desc.Concurrent,
		},
		mipLevels:   1,
		arrayLayers: 1,
	})
}

// ImportImage declares a caller-owned image. state must hold one record
// per subresource of img and outlives the frame.
func (g *Graph) ImportImage(img device.Image, name string, state *ExternalState) ResourceHandle {
	g.checkDeclaring()
	if img == nil {
		invariant("import of nil image %q", name)
	}
	d := img.Descriptor()
	if state == nil || uint32(len(state.Subresources)) < d.Subresources() {
		invariant("image %q needs external state for %d subresources", name, d.Subresources())
	}
	return g.addResource(resource{
		kind:          KindImage,
		name:          name,
		image:         d,
		external:      state,
		importedImage: img,
		mipLevels:     d.MipLevels(),
		arrayLayers:   d.ArrayLayers(),
	})
}

// ImportBuffer declares a caller-owned buffer. state must hold one record
// and outlives the frame.
func (g *Graph) ImportBuffer(buf device.Buffer, name string, state *ExternalState) ResourceHandle {
	g.checkDeclaring()
	if buf == nil {
		invariant("import of nil buffer %q", name)
	}
	if state == nil || len(state.Subresources) < 1 {
		invariant("buffer %q needs external state", name)
	}
	return g.addResource(resource{
		kind:           KindBuffer,
		name:           name,
		buffer:         buf.Descriptor(),
		external:       state,
		importedBuffer: buf,
		mipLevels:      1,
		arrayLayers:    1,
	})
}

func (g *Graph) addResource(r resource) ResourceHandle {
	if len(g.resources) == handleIndexMask {
		invariant("more than %d resources in one frame", handleIndexMask)
	}
	r.ledgerOffset = g.ledger.alloc(r.subresources())
	g.resources = append(g.resources, r)
	return g.resourceHandle(len(g.resources) - 1)
}

// generation is stamped into every handle declared this frame.
func (g *Graph) generation() uint32 { return uint32(g.frame) & handleGenMask }

func (g *Graph) resourceHandle(i int) ResourceHandle {
	return ResourceHandle(g.generation()<<handleIndexBits | uint32(i+1))
}

// resource returns the record for h, panicking on invalid or stale handles.
func (g *Graph) resource(h ResourceHandle) *resource {
	i, ok := handleIndex(uint32(h), g.generation(), len(g.resources))
	if !ok {
		if h != InvalidResource && uint32(h)>>handleIndexBits != g.generation() {
			invariant("stale resource handle %#x from an earlier frame", uint32(h))
		}
		invariant("invalid resource handle %#x (%d declared)", uint32(h), len(g.resources))
	}
	return &g.resources[i]
}
