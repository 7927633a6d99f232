// Command fgdemo builds a deferred-shading frame graph and reports what the
// scheduler derived for it.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	_ "github.com/gogpu/framegraph/backend/native"
	"github.com/gogpu/framegraph/bindless"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// shaderCache is implemented by devices that compile WGSL, such as the
// native backend.
type shaderCache interface {
	ShaderModule(label, source string) (hal.ShaderModule, error)
}

// ssaoWGSL estimates occlusion from linear depth. Depth and occlusion are
// bound as storage buffers in the compute pass.
const ssaoWGSL = `
struct Params {
    width: u32,
    height: u32,
    radius: f32,
    bias: f32,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> depth: array<f32>;
@group(0) @binding(2) var<storage, read_write> ao: array<f32>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let count = params.width * params.height;
    if (id.x >= count) {
        return;
    }
    let d = depth[id.x];
    let next = depth[min(id.x + 1u, count - 1u)];
    let prev = depth[max(id.x, 1u) - 1u];
    var occluded: f32 = 0.0;
    occluded = occluded + select(0.0, 0.5, next + params.bias < d);
    occluded = occluded + select(0.0, 0.5, prev + params.bias < d);
    ao[id.x] = clamp(1.0 - occluded * params.radius, 0.0, 1.0);
}
`

func main() {
	var (
		backendName = flag.String("backend", "", "device backend (native, software); empty selects the best available")
		width       = flag.Int("width", 1280, "render width")
		height      = flag.Int("height", 720, "render height")
		frames      = flag.Int("frames", 3, "frames to execute")
		inFlight    = flag.Int("inflight", framegraph.DefaultFramesInFlight, "frames in flight (2 or 3)")
		mode        = flag.String("mode", "stats", "output: stats, barriers or dot")
		output      = flag.String("output", "-", "output file, - for stdout")
		verbose     = flag.Bool("v", false, "log scheduler activity")
	)
	flag.Parse()

	if *verbose {
		framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	dev, name, err := openDevice(*backendName)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	log.Printf("Using %s backend\n", name)

	out := io.Writer(os.Stdout)
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	g := framegraph.New(dev,
		framegraph.WithFramesInFlight(*inFlight),
		framegraph.WithDescriptorRegistry(bindless.New(0)),
		framegraph.WithLabel("fgdemo"),
	)

	backbuffer, err := dev.CreateImage(&device.ImageDescriptor{
		Label:         "backbuffer",
		Dimension:     gputypes.TextureDimension2D,
		Size:          gputypes.Extent3D{Width: uint32(*width), Height: uint32(*height), DepthOrArrayLayers: 1},
		Format:        gputypes.TextureFormatBGRA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		log.Fatalf("Failed to create backbuffer: %v", err)
	}
	defer dev.DestroyImage(backbuffer)
	backbufferState := framegraph.NewExternalState(1)

	for i := range *frames {
		declareFrame(g, uint32(*width), uint32(*height), backbuffer, backbufferState)
		if err := g.Execute(); err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
		if i == *frames-1 {
			if err := report(out, g, *mode); err != nil {
				log.Fatalf("Failed to write report: %v", err)
			}
		}
		if err := g.NextFrame(); err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
	}

	if err := g.Close(); err != nil {
		log.Fatalf("Failed to close graph: %v", err)
	}
}

func openDevice(name string) (device.Device, string, error) {
	if name == "" {
		return backend.Default()
	}
	dev, err := backend.Get(name)
	return dev, name, err
}

// declareFrame declares shadow, G-buffer, ambient occlusion, lighting and
// tonemap passes. Ambient occlusion runs on the compute queue when the
// device has one.
func declareFrame(g *framegraph.Graph, w, h uint32, backbuffer device.Image, state *framegraph.ExternalState) {
	aoQueue := device.QueueGraphics
	if g.Device().HasQueue(device.QueueCompute) {
		aoQueue = device.QueueCompute
	}

	shadow := g.CreateImage(framegraph.ImageDescription{
		Name: "shadow", Width: 2048, Height: 2048,
		Format: gputypes.TextureFormatDepth32Float,
	})
	albedo := g.CreateImage(framegraph.ImageDescription{
		Name: "albedo", Width: w, Height: h,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	normals := g.CreateImage(framegraph.ImageDescription{
		Name: "normals", Width: w, Height: h,
		Format: gputypes.TextureFormatRGBA16Float,
	})
	depth := g.CreateImage(framegraph.ImageDescription{
		Name: "depth", Width: w, Height: h,
		Format: gputypes.TextureFormatDepth32Float,
	})
	ao := g.CreateImage(framegraph.ImageDescription{
		Name: "ao", Width: w / 2, Height: h / 2,
		Format: gputypes.TextureFormatR32Float,
	})
	hdr := g.CreateImage(framegraph.ImageDescription{
		Name: "hdr", Width: w, Height: h,
		Format: gputypes.TextureFormatRGBA16Float,
	})
	// Declared but never used: culled.
	g.CreateImage(framegraph.ImageDescription{
		Name: "debug", Width: w, Height: h,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	camera := g.CreateBuffer(framegraph.BufferDescription{Name: "camera", Size: 256, HostVisible: true})
	out := g.ImportImage(backbuffer, "backbuffer", state)

	shadowV := g.DefaultImageView(shadow)
	albedoV := g.DefaultImageView(albedo)
	normalsV := g.DefaultImageView(normals)
	depthV := g.DefaultImageView(depth)
	aoV := g.DefaultImageView(ao)
	hdrV := g.DefaultImageView(hdr)
	cameraV := g.DefaultBufferView(camera)
	outV := g.DefaultImageView(out)

	g.AddPass("shadow", device.QueueGraphics, []framegraph.Usage{
		framegraph.Use(shadowV, device.StateDepthWrite),
		framegraph.Use(cameraV, device.StateConstantBuffer),
	}, func(reg *framegraph.Registry, cl device.CommandList) {
		if data, err := reg.Map(cameraV); err == nil && data != nil {
			data[0]++
			reg.Unmap(cameraV)
		}
	})
	g.AddPass("gbuffer", device.QueueGraphics, []framegraph.Usage{
		framegraph.Use(albedoV, device.StateColorAttachment),
		framegraph.Use(normalsV, device.StateColorAttachment),
		framegraph.Use(depthV, device.StateDepthWrite),
		framegraph.Use(cameraV, device.StateConstantBuffer),
	}, nil)
	g.AddPass("ssao", aoQueue, []framegraph.Usage{
		framegraph.Use(normalsV, device.StateTextureRead),
		framegraph.Use(depthV, device.StateTextureRead),
		framegraph.Use(aoV, device.StateRWTexture),
	}, func(reg *framegraph.Registry, cl device.CommandList) {
		sc, ok := g.Device().(shaderCache)
		if !ok {
			return
		}
		if _, err := sc.ShaderModule("ssao", ssaoWGSL); err != nil {
			log.Printf("ssao: %v", err)
		}
	})
	g.AddPass("lighting", device.QueueGraphics, []framegraph.Usage{
		framegraph.Use(albedoV, device.StateTextureRead),
		framegraph.Use(normalsV, device.StateTextureRead),
		framegraph.Use(shadowV, device.StateTextureRead),
		framegraph.Use(aoV, device.StateTextureRead),
		framegraph.Use(hdrV, device.StateColorAttachment),
	}, nil)
	g.AddPass("tonemap", device.QueueGraphics, []framegraph.Usage{
		framegraph.Use(hdrV, device.StateTextureRead),
		framegraph.Use(outV, device.StateColorAttachment).Then(device.StatePresent, device.StageBottomOfPipe),
	}, nil)
}

func report(w io.Writer, g *framegraph.Graph, mode string) error {
	switch mode {
	case "stats":
		_, err := fmt.Fprintln(w, g.Stats())
		return err
	case "barriers":
		for i := range g.PassCount() {
			p := g.Pass(i)
			fmt.Fprintf(w, "%s (%v, batch %d, signal %d)\n", p.Name, p.Queue, p.Batch, p.Signal)
			for _, b := range p.Before {
				fmt.Fprintf(w, "  before %v\n", b)
			}
			for _, b := range p.After {
				fmt.Fprintf(w, "  after  %v\n", b)
			}
		}
		for _, b := range g.Batches() {
			if _, err := fmt.Fprintf(w, "batch %v passes=%v waits=%v signal=%d\n", b.Queue, b.Passes, b.Waits, b.Signal); err != nil {
				return err
			}
		}
		return nil
	case "dot":
		return g.WriteDOT(w)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
