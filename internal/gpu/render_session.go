//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrSessionDestroyed is returned when using a destroyed session.
var ErrSessionDestroyed = errors.New("gpu: glyph session is destroyed")

// Target is the pair of attachments a glyph pass renders into. Both views
// are loaded and stored, so glyphs composite over whatever is already there.
type Target struct {
	Color hal.TextureView
	Depth hal.TextureView
}

// GlyphSession owns every GPU resource of one glyph renderer: the atlas,
// the pipeline, the frame draw buffer and the queue of retired objects
// waiting for the GPU.
//
// A session is used from one goroutine.
type GlyphSession struct {
	device hal.Device
	queue  hal.Queue

	atlas    *GlyphAtlas
	pipeline *GlyphPipeline
	release  *ReleaseQueue
	draw     *FrameDrawBuffer

	submits uint64
}

// NewGlyphSession creates the atlas at the given size and the pipeline
// sampling from it.
func NewGlyphSession(device hal.Device, queue hal.Queue, atlasWidth, atlasHeight uint32, config PipelineConfig) (*GlyphSession, error) {
	atlas, err := NewGlyphAtlas(device, queue, atlasWidth, atlasHeight)
	if err != nil {
		return nil, err
	}
	pipeline, err := NewGlyphPipeline(device, queue, atlas.View(), config)
	if err != nil {
		atlas.Destroy()
		return nil, err
	}
	release := NewReleaseQueue(device)
	return &GlyphSession{
		device:   device,
		queue:    queue,
		atlas:    atlas,
		pipeline: pipeline,
		release:  release,
		draw:     NewFrameDrawBuffer(device, queue, release),
	}, nil
}

// Reclaim destroys retired buffers and command buffers whose submissions
// have completed.
func (s *GlyphSession) Reclaim() int {
	if s.release == nil {
		return 0
	}
	n := s.release.Collect(s.queue.PollCompleted())
	if n > 0 {
		slogger().Debug("glyph resources reclaimed", "count", n, "pending", s.release.Pending())
	}
	return n
}

// Upload writes coverage bytes into the atlas.
func (s *GlyphSession) Upload(rect image.Rectangle, data []byte) error {
	if s.atlas == nil {
		return ErrSessionDestroyed
	}
	return s.atlas.Upload(rect, data)
}

// ReplaceVertices swaps the frame draw buffer for one holding vertices.
func (s *GlyphSession) ReplaceVertices(vertices []Vertex) error {
	if s.draw == nil {
		return ErrSessionDestroyed
	}
	return s.draw.Replace(vertices)
}

// DrawBuffer returns the frame draw buffer.
func (s *GlyphSession) DrawBuffer() *FrameDrawBuffer { return s.draw }

// Atlas returns the glyph atlas.
func (s *GlyphSession) Atlas() *GlyphAtlas { return s.atlas }

// Pipeline returns the glyph pipeline.
func (s *GlyphSession) Pipeline() *GlyphPipeline { return s.pipeline }

// Submits returns the number of command buffers submitted so far.
func (s *GlyphSession) Submits() uint64 { return s.submits }

// PendingReleases returns how many retired objects await GPU completion.
func (s *GlyphSession) PendingReleases() int {
	if s.release == nil {
		return 0
	}
	return s.release.Pending()
}

// Render encodes one render pass drawing the current draw buffer into
// target with the given transform and submits it. Nothing is encoded when
// the draw buffer is empty; the returned bool reports whether a pass was
// submitted.
func (s *GlyphSession) Render(target Target, transform [16]float32) (bool, error) {
	if s.pipeline == nil || s.draw == nil {
		return false, ErrSessionDestroyed
	}
	if s.draw.Empty() {
		return false, nil
	}
	if err := s.pipeline.SetTransform(transform); err != nil {
		return false, err
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glyph_encoder",
	})
	if err != nil {
		return false, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glyph_frame"); err != nil {
		return false, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "glyph_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    target.Color,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            target.Depth,
			DepthLoadOp:     gputypes.LoadOpLoad,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
			StencilReadOnly: true,
		},
	})
	if err := s.pipeline.Record(rp, s.draw.Buffer(), s.draw.Count()); err != nil {
		rp.End()
		encoder.DiscardEncoding()
		return false, err
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return false, fmt.Errorf("end encoding: %w", err)
	}

	index, err := s.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		s.device.FreeCommandBuffer(cmdBuf)
		return false, fmt.Errorf("submit: %w", err)
	}
	s.submits++
	s.release.Submitted(index)
	s.release.CommandBuffer(cmdBuf, index)

	slogger().Debug("glyph pass submitted", "instances", s.draw.Count(), "submission", index)
	return true, nil
}

// Destroy waits for the device to go idle and releases everything the
// session owns. Safe to call more than once.
func (s *GlyphSession) Destroy() {
	if s.device == nil {
		return
	}
	if err := s.device.WaitIdle(); err != nil {
		slogger().Warn("wait idle before glyph teardown", "err", err)
	}
	if s.draw != nil {
		s.draw.Clear()
		s.draw = nil
	}
	if s.release != nil {
		if n := s.release.Drain(); n > 0 {
			slogger().Debug("glyph resources drained", "count", n)
		}
		s.release = nil
	}
	if s.pipeline != nil {
		s.pipeline.Destroy()
		s.pipeline = nil
	}
	if s.atlas != nil {
		s.atlas.Destroy()
		s.atlas = nil
	}
	s.device = nil
}
