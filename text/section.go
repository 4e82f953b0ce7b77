package text

import (
	"encoding/binary"
	"hash/maphash"
	"math"

	"golang.org/x/text/unicode/norm"
)

// DefaultScale is the pixel height used for SectionText with a zero Scale.
const DefaultScale = 16

// hashSeed is shared by every section hash in the process so that equal
// sections hash equally across frames.
var hashSeed = maphash.MakeSeed()

// SectionText is one styled run of text inside a Section.
type SectionText struct {
	// Text is the string to draw. It is NFC-normalized before shaping.
	Text string

	// Scale is the pixel height from the font's ascent to its descent.
	// Zero means DefaultScale.
	Scale float32

	// Color is RGBA, each component 0..1. It is used verbatim, so the zero
	// value is fully transparent.
	Color [4]float32

	// Font is the registry id of the font to draw with.
	Font FontID
}

func (t SectionText) scale() float32 {
	if t.Scale <= 0 {
		return DefaultScale
	}
	return t.Scale
}

// Section is a block of text laid out and drawn together.
type Section struct {
	// ScreenPosition is the layout anchor in pixels. Where it lies relative
	// to the text depends on Layout's alignment.
	ScreenPosition Point

	// Bounds is the maximum width and height of the section in pixels.
	// Glyphs outside are clipped. A zero or negative component is
	// unbounded.
	Bounds Point

	// Z is the depth value written for every glyph of the section.
	Z float32

	// Layout controls wrapping and alignment.
	Layout Layout

	Text []SectionText
}

// Geometry returns the section's position and bounds with unbounded
// components resolved to +Inf.
func (s *Section) Geometry() SectionGeometry {
	b := s.Bounds
	if b.X <= 0 {
		b.X = float32(math.Inf(1))
	}
	if b.Y <= 0 {
		b.Y = float32(math.Inf(1))
	}
	return SectionGeometry{ScreenPosition: s.ScreenPosition, Bounds: b}
}

// cloneTexts copies texts with NFC text and resolved scales, so later
// changes by the caller do not reach queued sections.
func cloneTexts(texts []SectionText) []SectionText {
	out := make([]SectionText, len(texts))
	for i, t := range texts {
		t.Scale = t.scale()
		if !norm.NFC.IsNormalString(t.Text) {
			t.Text = norm.NFC.String(t.Text)
		}
		out[i] = t
	}
	return out
}

// layoutHash hashes everything that affects glyph positions: the text,
// fonts, scales, geometry and positioner. Color and Z are excluded.
func layoutHash(geom SectionGeometry, texts []SectionText, p GlyphPositioner) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	writePoint(&h, geom.ScreenPosition)
	writePoint(&h, geom.Bounds)
	p.HashLayout(&h)
	writeInt(&h, int64(len(texts)))
	for _, t := range texts {
		writeInt(&h, int64(t.Font))
		writeFloat(&h, t.scale())
		writeInt(&h, int64(len(t.Text)))
		_, _ = h.WriteString(t.Text)
	}
	return h.Sum64()
}

// drawHash extends a layout hash with the per-glyph draw attributes.
func drawHash(layout uint64, z float32, texts []SectionText) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	writeInt(&h, int64(layout)) //nolint:gosec // bit pattern only
	writeFloat(&h, z)
	for _, t := range texts {
		for _, c := range t.Color {
			writeFloat(&h, c)
		}
	}
	return h.Sum64()
}

func writePoint(h *maphash.Hash, p Point) {
	writeFloat(h, p.X)
	writeFloat(h, p.Y)
}

func writeFloat(h *maphash.Hash, v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	_, _ = h.Write(b[:])
}

func writeInt(h *maphash.Hash, v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v)) //nolint:gosec // bit pattern only
	_, _ = h.Write(b[:])
}
