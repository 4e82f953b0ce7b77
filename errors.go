package glyphbrush

import (
	"errors"
	"fmt"

	"github.com/gogpu/glyphbrush/text"
)

// Sentinel errors for glyphbrush.
var (
	// ErrAtlasTooSmall is matched by AtlasTooSmallError.
	ErrAtlasTooSmall = errors.New("glyphbrush: glyph atlas too small")

	// ErrDeviceResource is matched by DeviceError.
	ErrDeviceResource = errors.New("glyphbrush: device resource failure")

	// ErrMissingViewport is returned when a draw target or window has no
	// usable size or is missing an attachment.
	ErrMissingViewport = errors.New("glyphbrush: missing viewport")

	// ErrBrushDestroyed is returned when using a brush after Destroy.
	ErrBrushDestroyed = errors.New("glyphbrush: brush is destroyed")

	// ErrNoHALProvider is returned by NewFromProvider when the provider does
	// not expose its HAL device and queue.
	ErrNoHALProvider = errors.New("glyphbrush: provider does not expose HAL types")
)

// AtlasTooSmallError reports that the glyphs of one frame do not fit in the
// atlas texture. The atlas, the draw buffer and the queued sections are left
// as they were. Growing the atlas is up to the caller: create a new Brush
// with WithInitialCacheSize(SuggestedWidth, SuggestedHeight).
type AtlasTooSmallError struct {
	Width, Height                   uint32
	SuggestedWidth, SuggestedHeight uint32

	err error
}

func (e *AtlasTooSmallError) Error() string {
	return fmt.Sprintf("glyphbrush: glyph atlas %dx%d too small, suggested %dx%d",
		e.Width, e.Height, e.SuggestedWidth, e.SuggestedHeight)
}

// Is reports whether target is ErrAtlasTooSmall.
func (e *AtlasTooSmallError) Is(target error) bool {
	return target == ErrAtlasTooSmall
}

// Unwrap returns the layout engine error, if any.
func (e *AtlasTooSmallError) Unwrap() error { return e.err }

func atlasTooSmall(err *text.TextureTooSmallError) *AtlasTooSmallError {
	return &AtlasTooSmallError{
		Width:           err.Width,
		Height:          err.Height,
		SuggestedWidth:  err.SuggestedWidth,
		SuggestedHeight: err.SuggestedHeight,
		err:             err,
	}
}

// DeviceError wraps a failure to create, write or submit a GPU resource.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return "glyphbrush: " + e.Op + ": " + e.Err.Error()
}

// Is reports whether target is ErrDeviceResource.
func (e *DeviceError) Is(target error) bool {
	return target == ErrDeviceResource
}

// Unwrap returns the underlying device error.
func (e *DeviceError) Unwrap() error { return e.Err }
