//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Atlas-related errors.
var (
	// ErrAtlasClosed is returned when operating on a destroyed atlas.
	ErrAtlasClosed = errors.New("gpu: glyph atlas is destroyed")

	// ErrRegionOutOfBounds is returned when an upload rectangle is outside
	// the atlas.
	ErrRegionOutOfBounds = errors.New("gpu: region is outside atlas bounds")

	// ErrUploadSize is returned when the upload data does not hold exactly
	// one byte per texel of the rectangle.
	ErrUploadSize = errors.New("gpu: upload data size does not match region")

	// ErrInvalidAtlasSize is returned for zero atlas dimensions.
	ErrInvalidAtlasSize = errors.New("gpu: invalid atlas size")
)

// AtlasFormat is the texel format of the glyph atlas: one 8-bit coverage
// channel per texel.
const AtlasFormat = gputypes.TextureFormatR8Unorm

// GlyphAtlas owns the single glyph cache texture and its view.
//
// The atlas never decides what goes where. The layout engine calls Upload
// with a rectangle and the coverage bytes for it, and the atlas copies them
// to the GPU. Its dimensions are fixed for its whole life.
type GlyphAtlas struct {
	device hal.Device
	queue  hal.Queue

	texture hal.Texture
	view    hal.TextureView

	width  uint32
	height uint32

	uploads int
}

// NewGlyphAtlas creates an R8 texture of the given size and a 2D view of it.
// Partially created resources are released on failure.
func NewGlyphAtlas(device hal.Device, queue hal.Queue, width, height uint32) (*GlyphAtlas, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidAtlasSize, width, height)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyph_atlas",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        AtlasFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create atlas texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "glyph_atlas_view",
		Format:        AtlasFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create atlas texture view: %w", err)
	}

	slogger().Info("glyph atlas created", "width", width, "height", height)

	return &GlyphAtlas{
		device:  device,
		queue:   queue,
		texture: tex,
		view:    view,
		width:   width,
		height:  height,
	}, nil
}

// Upload writes single-channel coverage data into rect. Rows are tightly
// packed: the row pitch is rect.Dx() bytes. An empty rectangle is a no-op.
func (a *GlyphAtlas) Upload(rect image.Rectangle, data []byte) error {
	if a.texture == nil {
		return ErrAtlasClosed
	}
	if rect.Empty() {
		return nil
	}
	if rect.Min.X < 0 || rect.Min.Y < 0 ||
		rect.Max.X > int(a.width) || rect.Max.Y > int(a.height) {
		return fmt.Errorf("%w: %v in %dx%d", ErrRegionOutOfBounds, rect, a.width, a.height)
	}

	w, h := uint32(rect.Dx()), uint32(rect.Dy()) //nolint:gosec // bounded by atlas size
	if len(data) != int(w*h) {
		return fmt.Errorf("%w: %v needs %d bytes, got %d", ErrUploadSize, rect, w*h, len(data))
	}

	err := a.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  a.texture,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(rect.Min.X), Y: uint32(rect.Min.Y)}, //nolint:gosec // checked non-negative above
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write atlas region %v: %w", rect, err)
	}
	a.uploads++
	return nil
}

// View returns the texture view bound by the glyph pipeline.
func (a *GlyphAtlas) View() hal.TextureView { return a.view }

// Size returns the atlas dimensions in texels.
func (a *GlyphAtlas) Size() (width, height uint32) { return a.width, a.height }

// Uploads returns the number of successful Upload calls.
func (a *GlyphAtlas) Uploads() int { return a.uploads }

// Destroy releases the view and texture. Safe to call more than once.
func (a *GlyphAtlas) Destroy() {
	if a.device == nil {
		return
	}
	if a.view != nil {
		a.device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.texture != nil {
		a.device.DestroyTexture(a.texture)
		a.texture = nil
	}
}
