package glyphbrush

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyphbrush/internal/gpu"
	"github.com/gogpu/glyphbrush/text"
)

// Option configures a Brush during creation.
//
// Example:
//
//	brush, err := glyphbrush.New(device, queue,
//	    glyphbrush.WithFont(goregular.TTF),
//	    glyphbrush.WithInitialCacheSize(1024, 1024),
//	    glyphbrush.WithColorFormat(gputypes.TextureFormatRGBA8Unorm),
//	)
type Option func(*options)

// options holds optional configuration for Brush creation.
type options struct {
	fonts    [][]byte
	engine   text.EngineConfig
	pipeline gpu.PipelineConfig
}

// defaultOptions returns a 512x512 atlas drawing into BGRA8 color with a
// Depth32Float depth buffer and no fonts.
func defaultOptions() options {
	return options{
		engine:   text.DefaultEngineConfig(),
		pipeline: gpu.DefaultPipelineConfig(),
	}
}

// WithFont adds a TTF or OTF font. Fonts get FontIDs in the order they are
// added, so the first font is the default FontID 0.
func WithFont(data []byte) Option {
	return func(o *options) {
		o.fonts = append(o.fonts, data)
	}
}

// WithFonts adds several fonts in order. See WithFont.
func WithFonts(data ...[]byte) Option {
	return func(o *options) {
		o.fonts = append(o.fonts, data...)
	}
}

// WithInitialCacheSize sets the glyph atlas dimensions in pixels.
// The atlas is never resized; a frame that does not fit fails with
// AtlasTooSmallError.
func WithInitialCacheSize(width, height uint32) Option {
	return func(o *options) {
		o.engine.CacheWidth = width
		o.engine.CacheHeight = height
	}
}

// WithEngineConfig replaces the whole layout engine configuration,
// including the cache size set by an earlier WithInitialCacheSize.
func WithEngineConfig(cfg text.EngineConfig) Option {
	return func(o *options) {
		o.engine = cfg
	}
}

// WithColorFormat sets the format of the color attachment glyphs are drawn
// into. It must match Target.Color.
func WithColorFormat(format gputypes.TextureFormat) Option {
	return func(o *options) {
		o.pipeline.ColorFormat = format
	}
}

// WithDepthFormat sets the format of the depth attachment. It must match
// Target.Depth.
func WithDepthFormat(format gputypes.TextureFormat) Option {
	return func(o *options) {
		o.pipeline.DepthFormat = format
	}
}

// WithMultisample sets the sample count of both attachments.
// Values below 1 are treated as 1.
func WithMultisample(count uint32) Option {
	return func(o *options) {
		o.pipeline.SampleCount = max(count, 1)
	}
}
