// Package text is the glyph layout and caching engine behind glyphbrush.
//
// It turns queued text sections into glyph vertices without touching the
// GPU:
//
//   - FontSource: a parsed TTF/OTF font (golang.org/x/image for outlines and
//     metrics, go-text/typesetting for shaping)
//   - FontSet: the font registry, indexed by FontID
//   - Section / SectionText: styled text with position, bounds and depth
//   - Layout: the built-in GlyphPositioner (wrapping, alignment)
//   - Engine: queues sections, keeps glyphs in a single cache texture and
//     produces vertices through caller-supplied callbacks
//
// # Example usage
//
//	src, err := text.NewFontSource(goregular.TTF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := text.NewEngine[MyVertex](text.DefaultEngineConfig(), src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine.Queue(text.Section{
//	    ScreenPosition: text.Point{X: 10, Y: 10},
//	    Text: []text.SectionText{{Text: "Hello", Scale: 24, Color: [4]float32{1, 1, 1, 1}}},
//	})
//	action, err := engine.ProcessQueued(800, 600, uploadToTexture, toMyVertex)
//
// # Cache texture
//
// The cache texture is one single-channel 8-bit image of fixed size. Glyphs
// are shelf packed. When a frame's new glyphs do not fit, the texture is
// repacked with only that frame's glyphs; when even that fails,
// ProcessQueued returns a *TextureTooSmallError and changes nothing. When an
// upload fails, every placement is forgotten and the next call clears the
// texture and uploads again.
//
// # Scale
//
// SectionText.Scale is the pixel distance from the font's ascender to its
// descender, not the em size. FontSource.PPEM converts between the two.
package text
