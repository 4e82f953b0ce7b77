package text

import (
	"errors"
	"fmt"
)

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrUnknownFont is returned for a FontID that was never registered.
	ErrUnknownFont = errors.New("text: unknown font id")

	// ErrTextureTooSmall is the sentinel matched by TextureTooSmallError.
	ErrTextureTooSmall = errors.New("text: glyph texture too small")

	// ErrInvalidDimensions is returned when ProcessQueued gets a zero
	// screen size.
	ErrInvalidDimensions = errors.New("text: screen dimensions must be non-zero")
)

// TextureTooSmallError reports that the glyphs needed for one frame do not
// fit in the cache texture, even after discarding everything else. Suggested
// is a texture size that would fit them.
//
// Nothing was uploaded and the cache is unchanged when this is returned.
type TextureTooSmallError struct {
	Width, Height                   uint32
	SuggestedWidth, SuggestedHeight uint32
}

func (e *TextureTooSmallError) Error() string {
	return fmt.Sprintf("text: glyph texture %dx%d too small, need %dx%d",
		e.Width, e.Height, e.SuggestedWidth, e.SuggestedHeight)
}

// Is reports whether target is ErrTextureTooSmall.
func (e *TextureTooSmallError) Is(target error) bool {
	return target == ErrTextureTooSmall
}

// ConfigError describes an invalid EngineConfig field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "text: invalid config field " + e.Field + ": " + e.Reason
}
