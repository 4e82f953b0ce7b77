package glyphbrush

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyphbrush/internal/gpu"
	"github.com/gogpu/glyphbrush/text"
)

// State is the phase of a Brush's draw cycle.
type State int

const (
	// StateIdle accepts Queue and KeepCached calls.
	StateIdle State = iota

	// StateResolving is laying out, rasterizing and uploading the queue.
	// Queueing from a layout callback in this state panics.
	StateResolving

	// StateReady has an up to date draw buffer and is encoding the draw.
	StateReady
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResolving:
		return "Resolving"
	case StateReady:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Brush draws queued text sections with the GPU.
//
// Sections are queued between frames and drawn by DrawQueued, which lays
// them out, uploads new glyphs to the atlas, rebuilds the instance buffer
// when the queue changed and encodes one render pass with one draw call.
// The pass loads the target's color and depth, so text composites over
// whatever is already drawn and is depth tested by each section's Z.
//
// A Brush is used from one goroutine.
type Brush struct {
	engine  *text.Engine[gpu.Vertex]
	session *gpu.GlyphSession
	state   State
}

// New creates a brush drawing with device and queue.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Brush, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sources := make([]*text.FontSource, 0, len(o.fonts))
	for i, data := range o.fonts {
		src, err := text.NewFontSource(data)
		if err != nil {
			return nil, fmt.Errorf("glyphbrush: font %d: %w", i, err)
		}
		sources = append(sources, src)
	}

	engine, err := text.NewEngine[gpu.Vertex](o.engine, sources...)
	if err != nil {
		return nil, err
	}

	w, h := engine.TextureDimensions()
	session, err := gpu.NewGlyphSession(device, queue, w, h, o.pipeline)
	if err != nil {
		return nil, &DeviceError{Op: "create glyph session", Err: err}
	}

	Logger().Info("glyphbrush: brush created",
		"atlas_width", w, "atlas_height", h, "fonts", len(sources),
		"color_format", o.pipeline.ColorFormat, "depth_format", o.pipeline.DepthFormat)

	return &Brush{engine: engine, session: session}, nil
}

// NewFromProvider creates a brush on a host's device. The provider must
// also expose its HAL device and queue through HalDevice and HalQueue.
// The provider's surface format is the default color format; a
// WithColorFormat option overrides it.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Brush, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}

	if format := provider.SurfaceFormat(); format != gputypes.TextureFormatUndefined {
		opts = append([]Option{WithColorFormat(format)}, opts...)
	}
	return New(device, queue, opts...)
}

// State returns the current draw cycle phase.
func (b *Brush) State() State { return b.state }

// Queue adds a section to the next DrawQueued, laid out with its Layout.
// Sections are drawn in queue order.
func (b *Brush) Queue(s Section) {
	b.mustIdle("Queue")
	b.engine.Queue(s)
}

// QueueCustomLayout adds a section laid out by p.
func (b *Brush) QueueCustomLayout(s Section, p GlyphPositioner) {
	b.mustIdle("QueueCustomLayout")
	b.engine.QueueCustomLayout(s, p)
}

// KeepCached keeps the glyphs of s in the atlas during the next DrawQueued
// without drawing them.
func (b *Brush) KeepCached(s Section) {
	b.mustIdle("KeepCached")
	b.engine.KeepCached(s)
}

// KeepCachedCustomLayout is KeepCached with a custom positioner.
func (b *Brush) KeepCachedCustomLayout(s Section, p GlyphPositioner) {
	b.mustIdle("KeepCachedCustomLayout")
	b.engine.KeepCachedCustomLayout(s, p)
}

// DiscardQueued drops the queued sections, typically after DrawQueued
// failed with AtlasTooSmallError.
func (b *Brush) DiscardQueued() {
	b.mustIdle("DiscardQueued")
	b.engine.DiscardQueued()
}

func (b *Brush) mustIdle(op string) {
	if b.state == StateResolving {
		panic("glyphbrush: " + op + " called while the queue is being resolved")
	}
}

// AddFont parses a TTF or OTF font and registers it.
func (b *Brush) AddFont(data []byte) (FontID, error) {
	return b.engine.AddFont(data)
}

// Fonts returns the registered fonts indexed by FontID.
func (b *Brush) Fonts() []*text.FontSource { return b.engine.Fonts() }

// GlyphBounds returns the pixel bounds of the ink s would draw, or false
// if it would draw nothing.
func (b *Brush) GlyphBounds(s Section) (Rect, bool) {
	return b.engine.GlyphBounds(s)
}

// GlyphBoundsCustomLayout is GlyphBounds with a custom positioner.
func (b *Brush) GlyphBoundsCustomLayout(s Section, p GlyphPositioner) (Rect, bool) {
	return b.engine.GlyphBoundsCustomLayout(s, p)
}

// AtlasSize returns the glyph atlas dimensions.
func (b *Brush) AtlasSize() (width, height uint32) {
	return b.engine.TextureDimensions()
}

// DrawQueued draws the queued sections into target with IdentityMatrix.
func (b *Brush) DrawQueued(target Target) error {
	return b.DrawQueuedWithTransform(IdentityMatrix, target)
}

// DrawQueuedWithTransform draws the queued sections into target, applying
// the column-major transform to their clip space positions.
// Transform.ClipMatrix builds one from a pixel space transform.
//
// When the queue matches the previous frame the existing instance buffer
// is drawn again. When the glyphs do not fit in the atlas it returns an
// *AtlasTooSmallError, keeps the queue and leaves the atlas and instance
// buffer as they were. When the device fails it returns a *DeviceError and
// drops the queue; the next DrawQueued uploads and rebuilds everything it
// draws.
func (b *Brush) DrawQueuedWithTransform(transform [16]float32, target Target) error {
	if b.session == nil {
		return ErrBrushDestroyed
	}
	if err := target.validate(); err != nil {
		return err
	}

	b.session.Reclaim()

	b.state = StateResolving
	defer func() { b.state = StateIdle }()

	action, err := b.engine.ProcessQueued(target.Width, target.Height, b.session.Upload, gpu.FormatVertex)
	if err != nil {
		var tooSmall *text.TextureTooSmallError
		if errors.As(err, &tooSmall) {
			return atlasTooSmall(tooSmall)
		}
		b.engine.DiscardQueued()
		return b.deviceFailed("upload glyphs", err)
	}

	if action.Kind == text.ActionDraw {
		if err := b.session.ReplaceVertices(action.Vertices); err != nil {
			return b.deviceFailed("replace vertices", err)
		}
	}
	Logger().Debug("glyphbrush: queue resolved",
		"action", action.Kind, "instances", b.session.DrawBuffer().Count())

	b.state = StateReady
	if _, err := b.session.Render(gpu.Target{Color: target.Color, Depth: target.Depth}, transform); err != nil {
		return b.deviceFailed("render glyphs", err)
	}
	return nil
}

// deviceFailed makes the next frame rebuild its vertices, since this one
// may never have reached the GPU.
func (b *Brush) deviceFailed(op string, err error) error {
	b.engine.Invalidate()
	Logger().Warn("glyphbrush: draw failed", "op", op, "err", err)
	return &DeviceError{Op: op, Err: err}
}

// Destroy waits for the device to finish and releases every GPU resource
// the brush owns. Safe to call more than once.
func (b *Brush) Destroy() {
	if b.session == nil {
		return
	}
	b.session.Destroy()
	b.session = nil
	Logger().Info("glyphbrush: brush destroyed")
}
