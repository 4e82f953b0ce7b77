package text

import (
	"github.com/chewxy/math32"
)

// GlyphID is a unique identifier for a glyph within a font.
// The glyph ID is assigned by the font file and is font-specific.
type GlyphID uint16

// Point is a position in pixel space. Y grows downwards.
type Point struct {
	X, Y float32
}

// Rect is an axis-aligned rectangle. Min is inclusive, Max is exclusive.
type Rect struct {
	Min, Max Point
}

// Width returns Max.X - Min.X. The result is negative for rectangles
// whose edges are flipped, as happens in clip space.
func (r Rect) Width() float32 { return r.Max.X - r.Min.X }

// Height returns Max.Y - Min.Y. See Width for the sign convention.
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Overlaps reports whether r and s share any area.
func (r Rect) Overlaps(s Rect) bool {
	return r.Min.X < s.Max.X && s.Min.X < r.Max.X &&
		r.Min.Y < s.Max.Y && s.Min.Y < r.Max.Y
}

// Union returns the smallest rectangle containing both r and s.
// An empty rectangle is ignored.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{
		Min: Point{X: math32.Min(r.Min.X, s.Min.X), Y: math32.Min(r.Min.Y, s.Min.Y)},
		Max: Point{X: math32.Max(r.Max.X, s.Max.X), Y: math32.Max(r.Max.Y, s.Max.Y)},
	}
}

// PositionedGlyph is a glyph placed at a baseline origin in pixel space.
type PositionedGlyph struct {
	// Font is the registry id of the font the glyph comes from.
	Font FontID

	// ID is the glyph index in that font.
	ID GlyphID

	// Scale is the pixel height the glyph is rendered at.
	Scale float32

	// Position is the glyph origin on the baseline.
	Position Point
}

// SectionGlyph ties a positioned glyph back to the SectionText it came from.
type SectionGlyph struct {
	// TextIndex is the index into Section.Text.
	TextIndex int

	// ByteIndex is the byte offset of the glyph's cluster in that text.
	ByteIndex int

	Glyph PositionedGlyph
}

// GlyphVertex is everything needed to turn one drawn glyph into GPU vertex
// data. It is produced by Engine.ProcessQueued and handed to the caller's
// vertex callback.
type GlyphVertex struct {
	// TexCoords is the glyph's rectangle in the atlas, normalized to 0..1.
	TexCoords Rect

	// PixelCoords is where the rasterized glyph lands on screen, in pixels.
	PixelCoords Rect

	// Bounds is the section's clipping rectangle, in pixels.
	Bounds Rect

	// ScreenWidth and ScreenHeight are the target dimensions in pixels.
	ScreenWidth  float32
	ScreenHeight float32

	// Color is RGBA, each component 0..1.
	Color [4]float32

	// Z is the depth value of the section.
	Z float32
}
