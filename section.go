package glyphbrush

import "github.com/gogpu/glyphbrush/text"

// Aliases of the layout types most callers need, so simple programs only
// import glyphbrush.
type (
	// Section is a block of styled text with a position, bounds and depth.
	Section = text.Section

	// SectionText is one run of a Section with its own font, scale and color.
	SectionText = text.SectionText

	// Layout is the built-in line wrapping and alignment policy.
	Layout = text.Layout

	// HAlign is the horizontal alignment of a Layout.
	HAlign = text.HAlign

	// VAlign is the vertical alignment of a Layout.
	VAlign = text.VAlign

	// GlyphPositioner lays out sections for QueueCustomLayout.
	GlyphPositioner = text.GlyphPositioner

	// FontID identifies a font registered with the brush.
	FontID = text.FontID

	// Point is a position in screen pixels.
	Point = text.Point

	// Rect is a rectangle in screen pixels.
	Rect = text.Rect
)

// Alignment re-exports.
const (
	HAlignLeft   = text.HAlignLeft
	HAlignCenter = text.HAlignCenter
	HAlignRight  = text.HAlignRight

	VAlignTop    = text.VAlignTop
	VAlignCenter = text.VAlignCenter
	VAlignBottom = text.VAlignBottom
)
