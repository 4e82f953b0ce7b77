package text

import (
	"image"
	"image/draw"

	"github.com/chewxy/math32"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// glyphMask is a rasterized glyph coverage mask.
type glyphMask struct {
	// Mask holds one coverage byte per pixel, row-major, Stride == width.
	Mask *image.Alpha

	// Offset is the position of the mask's top-left pixel relative to the
	// glyph origin snapped to whole pixels.
	Offset image.Point
}

// empty reports whether the glyph has nothing to draw, as for spaces.
func (m glyphMask) empty() bool {
	return m.Mask == nil || m.Mask.Rect.Empty()
}

// rasterizeGlyph fills the outline of glyph id at ppem into an alpha mask.
// subX shifts the outline right by a fraction of a pixel.
func rasterizeGlyph(src *FontSource, id GlyphID, ppem, subX float32) (glyphMask, error) {
	segs, err := src.outline(id, ppem)
	if err != nil {
		return glyphMask{}, err
	}
	if !hasArea(segs) {
		return glyphMask{}, nil
	}

	b := segs.Bounds()
	minX := int(math32.Floor(fixedToFloat(b.Min.X) + subX))
	minY := int(math32.Floor(fixedToFloat(b.Min.Y)))
	maxX := int(math32.Ceil(fixedToFloat(b.Max.X) + subX))
	maxY := int(math32.Ceil(fixedToFloat(b.Max.Y)))
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return glyphMask{}, nil
	}

	dx := subX - float32(minX)
	dy := -float32(minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return fixedToFloat(p.X) + dx, fixedToFloat(p.Y) + dy
	}

	r := vector.NewRasterizer(w, h)
	r.DrawOp = draw.Src
	started := false
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				r.ClosePath()
			}
			started = true
			r.MoveTo(pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			r.LineTo(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			x1, y1 := pt(s.Args[0])
			x2, y2 := pt(s.Args[1])
			r.QuadTo(x1, y1, x2, y2)
		case sfnt.SegmentOpCubeTo:
			x1, y1 := pt(s.Args[0])
			x2, y2 := pt(s.Args[1])
			x3, y3 := pt(s.Args[2])
			r.CubeTo(x1, y1, x2, y2, x3, y3)
		}
	}
	if started {
		r.ClosePath()
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	return glyphMask{Mask: dst, Offset: image.Pt(minX, minY)}, nil
}

// hasArea reports whether the outline contains anything but moves.
func hasArea(segs sfnt.Segments) bool {
	for _, s := range segs {
		if s.Op != sfnt.SegmentOpMoveTo {
			return true
		}
	}
	return false
}
