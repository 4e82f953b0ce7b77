package glyphbrush

import "github.com/gogpu/wgpu/hal"

// SizeProvider reports a window's drawable size in physical pixels.
// gpucontext.WindowProvider satisfies it.
type SizeProvider interface {
	Size() (width, height int)
}

// ViewportSize returns the drawable size of w for use as Target.Width and
// Target.Height. It returns ErrMissingViewport when w is nil or reports an
// empty size, as a minimized window does.
func ViewportSize(w SizeProvider) (width, height uint32, err error) {
	if w == nil {
		return 0, 0, ErrMissingViewport
	}
	iw, ih := w.Size()
	if iw <= 0 || ih <= 0 {
		return 0, 0, ErrMissingViewport
	}
	return uint32(iw), uint32(ih), nil //nolint:gosec // checked positive above
}

// Target is where DrawQueued renders: a color view and a depth view of
// the same size, Width x Height pixels. Existing contents of both are kept
// and glyphs are depth tested against them.
type Target struct {
	Color hal.TextureView
	Depth hal.TextureView

	Width, Height uint32
}

func (t Target) validate() error {
	if t.Color == nil || t.Depth == nil || t.Width == 0 || t.Height == 0 {
		return ErrMissingViewport
	}
	return nil
}
