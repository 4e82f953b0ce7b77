//go:build !nogpu

// Package gpu holds the GPU side of glyphbrush on top of gogpu/wgpu HAL.
//
// Key components:
//
//   - GlyphAtlas: the single-channel R8Unorm texture glyph coverage is
//     written into
//   - FrameDrawBuffer: one instance buffer per frame, replaced whole
//   - ReleaseQueue: buffers and command buffers parked until the GPU
//     reports the submission that used them complete
//   - GlyphPipeline: shader, layouts, sampler, transform uniform and the
//     render pipeline drawing one instanced quad per glyph
//   - GlyphSession: ties the above together and encodes one render pass
//     with one draw call per frame
//
// # Vertex format
//
// Each instance is 13 float32 values (52 bytes): the clip-space left-top
// corner with depth, the right-bottom corner, the atlas left-top and
// right-bottom corners, and RGBA. FormatVertex clips a glyph to its
// section bounds and adjusts the atlas corners to match.
//
// # Resource lifetime
//
// Nothing the GPU may still read is destroyed immediately. Replaced
// buffers and submitted command buffers are tagged with a submission index
// and destroyed once hal.Queue.PollCompleted passes it, or after WaitIdle
// in GlyphSession.Destroy.
package gpu
