package text

import "hash/maphash"

// HAlign specifies where lines sit relative to the section's screen X.
type HAlign int

const (
	// HAlignLeft starts lines at the screen X (default).
	HAlignLeft HAlign = iota
	// HAlignCenter centers lines on the screen X.
	HAlignCenter
	// HAlignRight ends lines at the screen X.
	HAlignRight
)

// String returns the string representation of the alignment.
func (a HAlign) String() string {
	switch a {
	case HAlignLeft:
		return "Left"
	case HAlignCenter:
		return "Center"
	case HAlignRight:
		return "Right"
	default:
		return unknownStr
	}
}

// VAlign specifies where the block of lines sits relative to the section's
// screen Y.
type VAlign int

const (
	// VAlignTop puts the top of the first line at the screen Y (default).
	VAlignTop VAlign = iota
	// VAlignCenter centers the block on the screen Y.
	VAlignCenter
	// VAlignBottom puts the bottom of the last line at the screen Y.
	VAlignBottom
)

// String returns the string representation of the alignment.
func (a VAlign) String() string {
	switch a {
	case VAlignTop:
		return "Top"
	case VAlignCenter:
		return "Center"
	case VAlignBottom:
		return "Bottom"
	default:
		return unknownStr
	}
}

const unknownStr = "Unknown"

// Layout is the built-in GlyphPositioner. The zero value wraps at the
// section's width bound and aligns to the top left.
type Layout struct {
	// SingleLine draws one line. It ends at the first hard break or at the
	// first word that would cross the width bound.
	SingleLine bool

	HAlign HAlign
	VAlign VAlign
}

// SectionGeometry is the resolved placement of a section.
type SectionGeometry struct {
	ScreenPosition Point

	// Bounds is the width and height limit. Unbounded is +Inf.
	Bounds Point
}

// GlyphPositioner turns section texts into positioned glyphs.
//
// Implementations must be deterministic: the same geometry and texts must
// give the same glyphs, because results are cached by HashLayout.
type GlyphPositioner interface {
	// CalculateGlyphs positions every glyph of texts.
	CalculateGlyphs(fonts *FontSet, geom SectionGeometry, texts []SectionText) []SectionGlyph

	// BoundsRect returns the clipping rectangle for geom.
	BoundsRect(geom SectionGeometry) Rect

	// HashLayout writes anything that changes positioning into h.
	HashLayout(h *maphash.Hash)
}

// CalculateGlyphs implements GlyphPositioner.
func (l Layout) CalculateGlyphs(fonts *FontSet, geom SectionGeometry, texts []SectionText) []SectionGlyph {
	lines := breakLines(fonts, texts, geom.Bounds.X, l.SingleLine)
	return l.place(lines, geom.ScreenPosition)
}

// BoundsRect implements GlyphPositioner. The rectangle is anchored at the
// screen position the same way lines are.
func (l Layout) BoundsRect(geom SectionGeometry) Rect {
	x, y := geom.ScreenPosition.X, geom.ScreenPosition.Y
	w, h := geom.Bounds.X, geom.Bounds.Y

	var r Rect
	switch l.HAlign {
	case HAlignCenter:
		r.Min.X, r.Max.X = x-w/2, x+w/2
	case HAlignRight:
		r.Min.X, r.Max.X = x-w, x
	default:
		r.Min.X, r.Max.X = x, x+w
	}
	switch l.VAlign {
	case VAlignCenter:
		r.Min.Y, r.Max.Y = y-h/2, y+h/2
	case VAlignBottom:
		r.Min.Y, r.Max.Y = y-h, y
	default:
		r.Min.Y, r.Max.Y = y, y+h
	}
	return r
}

// HashLayout implements GlyphPositioner.
func (l Layout) HashLayout(h *maphash.Hash) {
	var b [3]byte
	if l.SingleLine {
		b[0] = 1
	}
	b[1] = byte(l.HAlign)
	b[2] = byte(l.VAlign)
	_, _ = h.Write(b[:])
}

// place converts broken lines into absolute glyph positions.
func (l Layout) place(lines []line, pos Point) []SectionGlyph {
	if len(lines) == 0 {
		return nil
	}

	var total float32
	for i, ln := range lines {
		total += ln.metrics.Ascent + ln.metrics.Descent
		if i < len(lines)-1 {
			total += ln.metrics.LineGap
		}
	}

	top := pos.Y
	switch l.VAlign {
	case VAlignCenter:
		top -= total / 2
	case VAlignBottom:
		top -= total
	}

	n := 0
	for _, ln := range lines {
		n += len(ln.glyphs)
	}
	out := make([]SectionGlyph, 0, n)

	for _, ln := range lines {
		baseline := top + ln.metrics.Ascent
		left := pos.X
		switch l.HAlign {
		case HAlignCenter:
			left -= ln.width / 2
		case HAlignRight:
			left -= ln.width
		}
		for _, g := range ln.glyphs {
			sg := g
			sg.Glyph.Position.X += left
			sg.Glyph.Position.Y += baseline
			out = append(out, sg)
		}
		top = baseline + ln.metrics.Descent + ln.metrics.LineGap
	}
	return out
}
