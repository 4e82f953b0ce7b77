package glyphbrush

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/goregular"
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

// newTestBrush creates a brush with the Go Regular font on a noop device
// that records buffers and render passes. Both are released at cleanup.
func newTestBrush(t *testing.T, opts ...Option) (*Brush, *countingDevice) {
	t.Helper()
	b, dev, _ := newFaultyBrush(t, opts...)
	return b, dev
}

// newFaultyBrush is newTestBrush that also returns the queue, so texture
// writes can be made to fail.
func newFaultyBrush(t *testing.T, opts ...Option) (*Brush, *countingDevice, *failingQueue) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	dev := &countingDevice{Device: device}
	q := &failingQueue{Queue: queue}
	b, err := New(dev, q, append([]Option{WithFont(goregular.TTF)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(b.Destroy)
	return b, dev, q
}

// failingQueue counts texture writes. The next failWrites writes fail with
// errDeviceLost.
type failingQueue struct {
	hal.Queue

	writes     int
	failWrites int
}

func (q *failingQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if q.failWrites > 0 {
		q.failWrites--
		return errDeviceLost
	}
	q.writes++
	return q.Queue.WriteTexture(dst, data, layout, size)
}

// testSection is s in black at scale 20, positioned at (4, 4).
func testSection(s string, z float32) Section {
	return Section{
		ScreenPosition: Point{X: 4, Y: 4},
		Z:              z,
		Text:           []SectionText{{Text: s, Scale: 20, Color: [4]float32{0, 0, 0, 1}}},
	}
}

var errDeviceLost = errors.New("device lost")

// countingDevice records buffer lifetimes and the render passes encoded
// through it. The next failBuffers buffers labeled failLabel fail with
// errDeviceLost.
type countingDevice struct {
	hal.Device

	created   []hal.Buffer
	destroyed []hal.Buffer
	passes    []*recordingPass

	failLabel   string
	failBuffers int
}

func (d *countingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if d.failBuffers > 0 && desc.Label == d.failLabel {
		d.failBuffers--
		return nil, errDeviceLost
	}
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

func (d *countingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, device: d}, nil
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

// recordingPass captures the draws issued on a render pass.
type recordingPass struct {
	hal.RenderPassEncoder
	desc     *hal.RenderPassDescriptor
	vertices hal.Buffer
	draws    []drawCall
}

func (p *recordingPass) SetVertexBuffer(slot uint32, b hal.Buffer, off uint64) {
	p.vertices = b
	p.RenderPassEncoder.SetVertexBuffer(slot, b, off)
}

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draws = append(p.draws, drawCall{vertexCount, instanceCount, firstVertex, firstInstance})
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// createTarget creates BGRA8 color and Depth32Float depth views of w x h.
func createTarget(t *testing.T, device hal.Device, w, h uint32) Target {
	t.Helper()
	view := func(label string, format gputypes.TextureFormat) hal.TextureView {
		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         label,
			Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			t.Fatalf("create %s texture: %v", label, err)
		}
		v, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
		if err != nil {
			t.Fatalf("create %s view: %v", label, err)
		}
		return v
	}
	return Target{
		Color:  view("test_color", gputypes.TextureFormatBGRA8Unorm),
		Depth:  view("test_depth", gputypes.TextureFormatDepth32Float),
		Width:  w,
		Height: h,
	}
}
