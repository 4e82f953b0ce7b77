package text

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// VMetrics are the vertical metrics of a font at a given scale, in pixels.
// Descent is positive and measured downwards from the baseline.
type VMetrics struct {
	Ascent  float32
	Descent float32
	LineGap float32
}

// LineHeight returns the baseline-to-baseline distance.
func (m VMetrics) LineHeight() float32 { return m.Ascent + m.Descent + m.LineGap }

// FontSource is a parsed font file. It carries two views of the same bytes:
// an x/image sfnt.Font for metrics and outlines, and a go-text font.Font
// for shaping.
//
// FontSource is safe for concurrent use.
// FontSource must not be copied after creation (enforced by copyCheck).
type FontSource struct {
	// addr is used for copy protection (Ebitengine pattern).
	// It must point to the FontSource itself.
	addr *FontSource

	data   []byte
	sfnt   *opentype.Font
	shaped *font.Font
	name   string

	unitsPerEm float32
	// Font-unit vertical metrics.
	ascent, descent, lineGap float32

	// mu guards buf, which sfnt needs for every outline query.
	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewFontSource parses TTF or OTF data. The data slice is copied internally
// and can be reused after this call.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	f, err := opentype.Parse(dataCopy)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	face, err := font.ParseTTF(bytes.NewReader(dataCopy))
	if err != nil {
		return nil, fmt.Errorf("text: failed to load font for shaping: %w", err)
	}

	s := &FontSource{
		data:       dataCopy,
		sfnt:       f,
		shaped:     face.Font,
		unitsPerEm: float32(f.UnitsPerEm()),
	}
	s.addr = s

	upem := fixed.I(int(f.UnitsPerEm()))
	m, err := f.Metrics(&s.buf, upem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font metrics: %w", err)
	}
	s.ascent = fixedToFloat(m.Ascent)
	s.descent = fixedToFloat(m.Descent)
	s.lineGap = fixedToFloat(m.Height) - s.ascent - s.descent
	if s.lineGap < 0 {
		s.lineGap = 0
	}
	if s.ascent+s.descent <= 0 {
		// Degenerate hhea; fall back to the em square.
		s.ascent, s.descent = s.unitsPerEm, 0
	}

	s.name = extractFontName(f, &s.buf)
	return s, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string) (*FontSource, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font file: %w", err)
	}
	return NewFontSource(data)
}

// Name returns the font family name.
func (s *FontSource) Name() string {
	s.copyCheck()
	return s.name
}

// PPEM converts a scale, the pixel distance from the highest ascender to the
// lowest descender, into pixels per em.
func (s *FontSource) PPEM(scale float32) float32 {
	s.copyCheck()
	return scale * s.unitsPerEm / (s.ascent + s.descent)
}

// VMetrics returns the vertical metrics at scale.
func (s *FontSource) VMetrics(scale float32) VMetrics {
	s.copyCheck()
	k := scale / (s.ascent + s.descent)
	return VMetrics{
		Ascent:  s.ascent * k,
		Descent: s.descent * k,
		LineGap: s.lineGap * k,
	}
}

// outline loads the glyph's path at ppem. Coordinates are in pixels with the
// origin on the baseline and Y pointing down.
func (s *FontSource) outline(id GlyphID, ppem float32) (sfnt.Segments, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs, err := s.sfnt.LoadGlyph(&s.buf, sfnt.GlyphIndex(id), floatToFixed(ppem), nil)
	if err != nil {
		return nil, err
	}
	// The buffer is reused by the next call.
	out := make(sfnt.Segments, len(segs))
	copy(out, segs)
	return out, nil
}

// copyCheck panics if FontSource was copied by value.
// This is the Ebitengine pattern for preventing accidental copies.
func (s *FontSource) copyCheck() {
	if s.addr != s {
		panic("text: FontSource must not be copied by value")
	}
}

// extractFontName returns the family name, then the full name, then a
// placeholder.
func extractFontName(f *opentype.Font, buf *sfnt.Buffer) string {
	if name, err := f.Name(buf, sfnt.NameIDFamily); err == nil && name != "" {
		return name
	}
	if name, err := f.Name(buf, sfnt.NameIDFull); err == nil && name != "" {
		return name
	}
	return "Unknown Font"
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
