package main

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyphbrush"
)

// renderer is a brush plus the offscreen color and depth attachments it
// draws into.
type renderer struct {
	device hal.Device
	brush  *glyphbrush.Brush
	target glyphbrush.Target

	textures []hal.Texture
}

func newRenderer(device hal.Device, queue hal.Queue, sc Scene, fonts [][]byte) (*renderer, error) {
	opts := []glyphbrush.Option{glyphbrush.WithFonts(fonts...)}
	if sc.Atlas > 0 {
		opts = append(opts, glyphbrush.WithInitialCacheSize(sc.Atlas, sc.Atlas))
	}
	brush, err := glyphbrush.New(device, queue, opts...)
	if err != nil {
		return nil, err
	}

	r := &renderer{device: device, brush: brush}
	color, err := r.attachment("demo_color", gputypes.TextureFormatBGRA8Unorm, sc.Width, sc.Height)
	if err != nil {
		r.destroy()
		return nil, err
	}
	depth, err := r.attachment("demo_depth", gputypes.TextureFormatDepth32Float, sc.Width, sc.Height)
	if err != nil {
		r.destroy()
		return nil, err
	}
	r.target = glyphbrush.Target{Color: color, Depth: depth, Width: sc.Width, Height: sc.Height}
	return r, nil
}

func (r *renderer) attachment(label string, format gputypes.TextureFormat, w, h uint32) (hal.TextureView, error) {
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	r.textures = append(r.textures, tex)
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return view, nil
}

// draw queues sections in order and draws them in one pass.
func (r *renderer) draw(sections []glyphbrush.Section) error {
	for _, s := range sections {
		r.brush.Queue(s)
	}
	err := r.brush.DrawQueued(r.target)
	if err != nil {
		r.brush.DiscardQueued()
	}
	return err
}

func (r *renderer) destroy() {
	r.brush.Destroy()
	if r.target.Color != nil {
		r.device.DestroyTextureView(r.target.Color)
	}
	if r.target.Depth != nil {
		r.device.DestroyTextureView(r.target.Depth)
	}
	for _, t := range r.textures {
		r.device.DestroyTexture(t)
	}
	r.textures = nil
	r.target = glyphbrush.Target{}
}
