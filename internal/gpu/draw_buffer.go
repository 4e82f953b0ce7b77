//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// retired is a GPU object waiting for a submission to complete.
type retired struct {
	index  uint64
	buffer hal.Buffer
	cmd    hal.CommandBuffer
}

// ReleaseQueue holds buffers and command buffers until the GPU is done with
// them. Each entry is tagged with the submission index that last referenced
// it and destroyed once hal.Queue.PollCompleted reaches that index.
type ReleaseQueue struct {
	device  hal.Device
	last    uint64
	pending []retired
}

// NewReleaseQueue creates an empty release queue for device.
func NewReleaseQueue(device hal.Device) *ReleaseQueue {
	return &ReleaseQueue{device: device}
}

// Submitted records the index returned by the most recent hal.Queue.Submit.
func (q *ReleaseQueue) Submitted(index uint64) {
	if index > q.last {
		q.last = index
	}
}

// Buffer retires a buffer. It may still be read by any submission made so
// far, so it is held until the latest one completes.
func (q *ReleaseQueue) Buffer(b hal.Buffer) {
	if b == nil {
		return
	}
	q.pending = append(q.pending, retired{index: q.last, buffer: b})
}

// CommandBuffer retires a command buffer submitted under index.
func (q *ReleaseQueue) CommandBuffer(c hal.CommandBuffer, index uint64) {
	if c == nil {
		return
	}
	q.pending = append(q.pending, retired{index: index, cmd: c})
}

// Collect destroys every entry whose submission index is at most completed
// and returns how many were released.
func (q *ReleaseQueue) Collect(completed uint64) int {
	kept := q.pending[:0]
	n := 0
	for _, r := range q.pending {
		if r.index > completed {
			kept = append(kept, r)
			continue
		}
		q.destroy(r)
		n++
	}
	clear(q.pending[len(kept):])
	q.pending = kept
	return n
}

// Drain destroys everything regardless of submission state. Callers must
// have waited for the device to go idle first.
func (q *ReleaseQueue) Drain() int {
	n := len(q.pending)
	for _, r := range q.pending {
		q.destroy(r)
	}
	q.pending = nil
	return n
}

// Pending returns the number of objects not yet released.
func (q *ReleaseQueue) Pending() int { return len(q.pending) }

func (q *ReleaseQueue) destroy(r retired) {
	if r.buffer != nil {
		q.device.DestroyBuffer(r.buffer)
	}
	if r.cmd != nil {
		q.device.FreeCommandBuffer(r.cmd)
	}
}

// FrameDrawBuffer owns the one vertex buffer holding every visible glyph of
// the current frame. It is replaced wholesale whenever the glyph list changes
// and never written in place afterwards.
type FrameDrawBuffer struct {
	device  hal.Device
	queue   hal.Queue
	release *ReleaseQueue

	buffer hal.Buffer
	count  uint32
}

// NewFrameDrawBuffer creates an empty draw buffer. Replaced buffers are
// handed to release.
func NewFrameDrawBuffer(device hal.Device, queue hal.Queue, release *ReleaseQueue) *FrameDrawBuffer {
	return &FrameDrawBuffer{
		device:  device,
		queue:   queue,
		release: release,
	}
}

// Replace swaps in a buffer holding vertices. An empty slice leaves the draw
// buffer empty. On failure the previous buffer stays current.
func (b *FrameDrawBuffer) Replace(vertices []Vertex) error {
	if len(vertices) == 0 {
		b.Clear()
		return nil
	}

	data := vertexBytes(vertices)
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyph_vertices",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create glyph vertex buffer (%d bytes): %w", len(data), err)
	}
	if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
		b.device.DestroyBuffer(buf)
		return fmt.Errorf("upload glyph vertices: %w", err)
	}

	b.release.Buffer(b.buffer)
	b.buffer = buf
	b.count = uint32(len(vertices)) //nolint:gosec // vertex count fits in uint32

	slogger().Debug("glyph vertex buffer replaced", "vertices", b.count, "bytes", len(data))
	return nil
}

// Clear retires the current buffer, if any, leaving the draw buffer empty.
func (b *FrameDrawBuffer) Clear() {
	if b.buffer == nil {
		return
	}
	b.release.Buffer(b.buffer)
	b.buffer = nil
	b.count = 0
}

// Buffer returns the current vertex buffer, or nil when empty.
func (b *FrameDrawBuffer) Buffer() hal.Buffer { return b.buffer }

// Count returns the number of glyph instances in the current buffer.
func (b *FrameDrawBuffer) Count() uint32 { return b.count }

// Empty reports whether there is nothing to draw.
func (b *FrameDrawBuffer) Empty() bool { return b.buffer == nil }
