// Package glyphbrush draws text with the GPU through gogpu/wgpu.
//
// # Overview
//
// glyphbrush queues sections of text, lays them out and rasterizes their
// glyphs on the CPU, keeps the glyphs in a single-channel atlas texture and
// draws every glyph of a frame as one instanced quad in a single draw call.
// Each section has a depth, so text can be drawn in front of or behind
// other geometry sharing the depth buffer.
//
// # Quick Start
//
//	brush, err := glyphbrush.New(device, queue, glyphbrush.WithFont(goregular.TTF))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer brush.Destroy()
//
//	brush.Queue(glyphbrush.Section{
//	    ScreenPosition: glyphbrush.Point{X: 30, Y: 30},
//	    Z:              0.5,
//	    Text: []glyphbrush.SectionText{{
//	        Text:  "Hello glyphbrush",
//	        Scale: 40,
//	        Color: [4]float32{1, 1, 1, 1},
//	    }},
//	})
//	err = brush.DrawQueued(glyphbrush.Target{
//	    Color: colorView, Depth: depthView, Width: 800, Height: 600,
//	})
//
// # Frames
//
// Every DrawQueued consumes the queue. When the queue is identical to the
// previous frame the existing instance buffer is drawn again without any
// layout, upload or buffer work. Replaced instance buffers and submitted
// command buffers are destroyed only once the GPU reports their submission
// complete.
//
// # Atlas
//
// The atlas size is fixed at creation (WithInitialCacheSize, 512x512 by
// default). A frame whose glyphs do not fit fails with *AtlasTooSmallError
// carrying a suggested size; nothing is uploaded and the queue is kept.
//
// # Architecture
//
// The library is organized into:
//   - glyphbrush: Brush, options, errors, transforms
//   - text: fonts, shaping, layout, glyph cache planning (no GPU)
//   - internal/gpu: atlas texture, instance buffer, pipeline, render pass
//   - internal/cache: frame-scoped LRU cache for section layouts
//
// # Logging
//
// Nothing is logged by default. SetLogger installs a *slog.Logger for the
// whole library.
package glyphbrush
