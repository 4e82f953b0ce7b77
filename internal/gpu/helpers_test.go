//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// countingDevice records buffer lifetimes and the render passes encoded
// through it.
type countingDevice struct {
	hal.Device

	created   []hal.Buffer
	destroyed []hal.Buffer
	freed     int
	passes    []*recordingPass
}

func (d *countingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	b, err := d.Device.CreateBuffer(desc)
	if err == nil {
		d.created = append(d.created, b)
	}
	return b, err
}

func (d *countingDevice) DestroyBuffer(b hal.Buffer) {
	d.destroyed = append(d.destroyed, b)
	d.Device.DestroyBuffer(b)
}

func (d *countingDevice) FreeCommandBuffer(c hal.CommandBuffer) {
	d.freed++
	d.Device.FreeCommandBuffer(c)
}

func (d *countingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, device: d}, nil
}

func (d *countingDevice) isDestroyed(b hal.Buffer) bool {
	for _, x := range d.destroyed {
		if x == b {
			return true
		}
	}
	return false
}

type recordingEncoder struct {
	hal.CommandEncoder
	device *countingDevice
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	p := &recordingPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), desc: desc}
	e.device.passes = append(e.device.passes, p)
	return p
}

type drawCall struct {
	vertexCount, instanceCount, firstVertex, firstInstance uint32
}

// recordingPass captures draw state set on a render pass.
type recordingPass struct {
	hal.RenderPassEncoder
	desc     *hal.RenderPassDescriptor
	pipeline hal.RenderPipeline
	vertices hal.Buffer
	draws    []drawCall
	ended    bool
}

func (p *recordingPass) SetPipeline(pl hal.RenderPipeline) {
	p.pipeline = pl
	p.RenderPassEncoder.SetPipeline(pl)
}

func (p *recordingPass) SetVertexBuffer(slot uint32, b hal.Buffer, off uint64) {
	p.vertices = b
	p.RenderPassEncoder.SetVertexBuffer(slot, b, off)
}

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draws = append(p.draws, drawCall{vertexCount, instanceCount, firstVertex, firstInstance})
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *recordingPass) End() {
	p.ended = true
	p.RenderPassEncoder.End()
}

// laggingQueue reports submissions as complete only up to completed.
type laggingQueue struct {
	hal.Queue
	completed uint64
}

func (q *laggingQueue) PollCompleted() uint64 { return q.completed }

// createTarget creates color and depth views on device.
func createTarget(t *testing.T, device hal.Device, w, h uint32) Target {
	t.Helper()
	color, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_color",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("create color texture: %v", err)
	}
	depth, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_depth",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth32Float,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("create depth texture: %v", err)
	}
	colorView, err := device.CreateTextureView(color, &hal.TextureViewDescriptor{Label: "test_color_view"})
	if err != nil {
		t.Fatalf("create color view: %v", err)
	}
	depthView, err := device.CreateTextureView(depth, &hal.TextureViewDescriptor{Label: "test_depth_view"})
	if err != nil {
		t.Fatalf("create depth view: %v", err)
	}
	return Target{Color: colorView, Depth: depthView}
}
