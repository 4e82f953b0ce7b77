package text

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func goRegular(t testing.TB) *FontSource {
	t.Helper()
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource(goregular): %v", err)
	}
	return src
}

func testFontSet(t testing.TB) *FontSet {
	t.Helper()
	fs := NewFontSet()
	fs.Add(goRegular(t))
	return fs
}

// glyphIndex returns the glyph id the font maps r to.
func glyphIndex(t testing.TB, src *FontSource, r rune) GlyphID {
	t.Helper()
	var buf sfnt.Buffer
	idx, err := src.sfnt.GlyphIndex(&buf, r)
	if err != nil || idx == 0 {
		t.Fatalf("GlyphIndex(%q) = %d, %v", r, idx, err)
	}
	return GlyphID(idx)
}

func texts(s ...string) []SectionText {
	out := make([]SectionText, len(s))
	for i, v := range s {
		out[i] = SectionText{Text: v, Scale: 20, Color: [4]float32{0, 0, 0, 1}}
	}
	return out
}
