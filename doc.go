// Package framegraph provides a per-frame GPU resource and dependency
// scheduler (render graph) for the GoGPU ecosystem.
//
// # Overview
//
// Client code declares logical images and buffers, views over them and an
// ordered list of passes, each stating how it accesses its views. Execute
// then culls resources no pass uses, creates device objects for the rest,
// synthesizes the barriers every subresource needs between passes
// (including queue ownership transfers), groups passes into queue
// submissions with timeline semaphore waits, and invokes each pass's
// record callback. NextFrame recycles a ring of frame slots so the CPU can
// prepare frames while the GPU still executes earlier ones.
//
// # Quick Start
//
//	g := framegraph.New(dev, framegraph.WithDescriptorRegistry(bindless.New(0)))
//
//	color := g.CreateImage(framegraph.ImageDescription{
//		Name: "color", Width: 1280, Height: 720,
//		Format: gputypes.TextureFormatRGBA8Unorm,
//	})
//	colorView := g.DefaultImageView(color)
//
//	g.AddPass("gbuffer", device.QueueGraphics,
//		[]framegraph.Usage{framegraph.Use(colorView, device.StateColorAttachment)},
//		func(reg *framegraph.Registry, cl device.CommandList) { /* draw */ })
//	g.AddPass("blur", device.QueueCompute,
//		[]framegraph.Usage{framegraph.Use(colorView, device.StateTextureRead)},
//		func(reg *framegraph.Registry, cl device.CommandList) { /* dispatch */ })
//
//	if err := g.Execute(); err != nil { ... }
//	if err := g.NextFrame(); err != nil { ... }
//
// # Handles
//
// ResourceHandle and ResourceViewHandle are 1-based indices into tables
// that are rebuilt every frame, tagged with the generation of the frame
// that declared them. 0 is the null handle. Declaring with a handle of an
// earlier frame panics, and the Registry resolves it to nil.
//
// # Synchronization
//
// Barriers are derived from each subresource's usage list alone, in
// declaration order. Consecutive reads on one queue share one barrier.
// When a subresource moves between queues, the producing queue releases it
// and the consuming queue acquires it after waiting on the producer's
// timeline value. Concurrent buffers skip the ownership transfer but keep
// the wait.
//
// Imported resources carry caller-owned ExternalState: it seeds the first
// barrier of the frame and receives the state the frame leaves behind.
//
// # Errors
//
// Misuse (stale handles, wrong resource kinds, unsupported queues,
// declaring after Execute) panics. Allocation failures are logged and
// leave nil objects and zero bindless indices for the frame. Device
// failures are returned from Execute, NextFrame and Close.
//
// # Backends
//
// The graph depends only on the device package. backend/native runs on
// gogpu/wgpu HAL devices; backend/software records and validates
// submissions without a GPU.
package framegraph

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
