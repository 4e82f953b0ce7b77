package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

// FontID identifies a font registered with a FontSet. The first font added
// is FontID 0, which is also the zero value used by SectionText.
type FontID int

// ShapedGlyph is one glyph produced by shaping a run of text.
type ShapedGlyph struct {
	ID GlyphID

	// Cluster is the index of the first rune of the glyph's cluster in the
	// shaped rune slice.
	Cluster int

	// Advance, XOffset and YOffset are in pixels. YOffset points up.
	Advance float32
	XOffset float32
	YOffset float32
}

// FontSet is the font registry of an Engine. It shapes text with go-text's
// HarfBuzz port.
//
// FontSet is safe for concurrent use. HarfbuzzShaper instances are pooled
// because they hold mutable buffers.
type FontSet struct {
	mu    sync.RWMutex
	fonts []*FontSource

	shaperPool sync.Pool
}

// NewFontSet creates an empty font set.
func NewFontSet() *FontSet {
	return &FontSet{
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Add registers a font and returns its id.
func (fs *FontSet) Add(src *FontSource) FontID {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.fonts = append(fs.fonts, src)
	return FontID(len(fs.fonts) - 1)
}

// AddBytes parses data and registers it.
func (fs *FontSet) AddBytes(data []byte) (FontID, error) {
	src, err := NewFontSource(data)
	if err != nil {
		return 0, err
	}
	return fs.Add(src), nil
}

// Font returns the font registered under id.
func (fs *FontSet) Font(id FontID) (*FontSource, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if id < 0 || int(id) >= len(fs.fonts) {
		return nil, false
	}
	return fs.fonts[id], true
}

// Fonts returns the registered fonts indexed by FontID.
func (fs *FontSet) Fonts() []*FontSource {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]*FontSource, len(fs.fonts))
	copy(out, fs.fonts)
	return out
}

// Len returns the number of registered fonts.
func (fs *FontSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.fonts)
}

// Shape shapes runes left to right with font id at the given scale.
func (fs *FontSet) Shape(id FontID, runes []rune, scale float32) ([]ShapedGlyph, error) {
	src, ok := fs.Font(id)
	if !ok {
		return nil, ErrUnknownFont
	}
	if len(runes) == 0 {
		return nil, nil
	}

	// font.Face is not safe for concurrent use; font.Font is. A face per
	// call is cheap.
	face := font.NewFace(src.shaped)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      floatToFixed(src.PPEM(scale)),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := fs.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	fs.shaperPool.Put(hb)

	return convertGlyphs(output.Glyphs), nil
}

// detectScript inspects the runes and returns the script of the first
// non-space character. This is a simple heuristic; for mixed-script text,
// users should split runs by script before shaping.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func convertGlyphs(glyphs []shaping.Glyph) []ShapedGlyph {
	out := make([]ShapedGlyph, len(glyphs))
	for i, g := range glyphs {
		out[i] = ShapedGlyph{
			ID:      GlyphID(g.GlyphID), //nolint:gosec // sfnt glyph ids are 16-bit
			Cluster: g.TextIndex(),
			Advance: fixedToFloat(g.Advance),
			XOffset: fixedToFloat(g.XOffset),
			YOffset: fixedToFloat(g.YOffset),
		}
	}
	return out
}
