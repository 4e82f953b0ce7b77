package text

import (
	"errors"
	"image"
	"testing"
)

func newTestEngine(t *testing.T, mutate func(*EngineConfig)) *Engine[GlyphVertex] {
	t.Helper()
	cfg := DefaultEngineConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine[GlyphVertex](cfg, goRegular(t))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func identity(v GlyphVertex) GlyphVertex { return v }

// frameLog counts successful uploads and vertex callbacks. The failAt'th
// upload, counted from 1, fails with errUpload.
type frameLog struct {
	uploads  int
	vertices int
	calls    int
	failAt   int
}

func (f *frameLog) upload(r image.Rectangle, data []byte) error {
	if len(data) != r.Dx()*r.Dy() {
		panic("upload data does not match its rectangle")
	}
	f.calls++
	if f.calls == f.failAt {
		return errUpload
	}
	f.uploads++
	return nil
}

func (f *frameLog) vertex(v GlyphVertex) GlyphVertex {
	f.vertices++
	return v
}

func TestEngineSingleGlyph(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Queue(Section{
		ScreenPosition: Point{X: 0, Y: 0},
		Bounds:         Point{X: 100, Y: 100},
		Z:              0.5,
		Text:           []SectionText{{Text: "A", Scale: 10, Color: [4]float32{1, 1, 1, 1}}},
	})

	var log frameLog
	action, err := e.ProcessQueued(100, 100, log.upload, log.vertex)
	if err != nil {
		t.Fatalf("ProcessQueued: %v", err)
	}
	if action.Kind != ActionDraw {
		t.Fatalf("Kind = %v, want Draw", action.Kind)
	}
	if len(action.Vertices) != 1 || log.vertices != 1 {
		t.Fatalf("got %d vertices (%d callbacks), want exactly 1", len(action.Vertices), log.vertices)
	}
	if log.uploads == 0 {
		t.Error("the glyph should have been uploaded")
	}

	v := action.Vertices[0]
	if v.Z != 0.5 {
		t.Errorf("Z = %v, want 0.5", v.Z)
	}
	if v.ScreenWidth != 100 || v.ScreenHeight != 100 {
		t.Errorf("screen = %vx%v, want 100x100", v.ScreenWidth, v.ScreenHeight)
	}
	if v.Color != [4]float32{1, 1, 1, 1} {
		t.Errorf("Color = %v", v.Color)
	}
	tc := v.TexCoords
	if tc.Min.X < 0 || tc.Min.Y < 0 || tc.Max.X > 1 || tc.Max.Y > 1 || tc.Empty() {
		t.Errorf("TexCoords = %+v, want a non-empty rect inside [0,1]", tc)
	}
	screen := Rect{Max: Point{X: 100, Y: 100}}
	if !v.PixelCoords.Overlaps(screen) || v.PixelCoords.Max.Y > 10 {
		t.Errorf("PixelCoords = %+v, want a small rect at the top left", v.PixelCoords)
	}
	if v.Bounds != (Rect{Max: Point{X: 100, Y: 100}}) {
		t.Errorf("Bounds = %+v", v.Bounds)
	}
}

func TestEngineRedraw(t *testing.T) {
	e := newTestEngine(t, nil)
	section := Section{Text: texts("hello")}

	e.Queue(section)
	if a, err := e.ProcessQueued(200, 100, (&frameLog{}).upload, identity); err != nil || a.Kind != ActionDraw {
		t.Fatalf("first frame = %v, %v; want Draw", a.Kind, err)
	}

	var log frameLog
	e.Queue(section)
	a, err := e.ProcessQueued(200, 100, log.upload, log.vertex)
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != ActionRedraw || a.Vertices != nil {
		t.Errorf("unchanged frame = %v with %d vertices, want Redraw", a.Kind, len(a.Vertices))
	}
	if log.uploads != 0 || log.vertices != 0 {
		t.Errorf("Redraw ran callbacks: %+v", log)
	}
	if e.QueueLen() != 0 {
		t.Errorf("queue not cleared after Redraw: %d", e.QueueLen())
	}

	// A new color needs new vertices but no new glyphs.
	recolored := Section{Text: texts("hello")}
	recolored.Text[0].Color = [4]float32{1, 0, 0, 1}
	e.Queue(recolored)
	log = frameLog{}
	a, err = e.ProcessQueued(200, 100, log.upload, log.vertex)
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != ActionDraw || log.uploads != 0 {
		t.Errorf("recolored frame = %v with %d uploads, want Draw with none", a.Kind, log.uploads)
	}

	// A different screen size redraws too.
	e.Queue(recolored)
	if a, _ := e.ProcessQueued(201, 100, log.upload, identity); a.Kind != ActionDraw {
		t.Errorf("resized frame = %v, want Draw", a.Kind)
	}
}

func TestEngineEmptyQueue(t *testing.T) {
	e := newTestEngine(t, nil)

	var log frameLog
	a, err := e.ProcessQueued(64, 64, log.upload, log.vertex)
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != ActionDraw || len(a.Vertices) != 0 || log.uploads != 0 {
		t.Errorf("empty frame = %v, %d vertices, %d uploads", a.Kind, len(a.Vertices), log.uploads)
	}
	if a, _ := e.ProcessQueued(64, 64, log.upload, log.vertex); a.Kind != ActionRedraw {
		t.Errorf("second empty frame = %v, want Redraw", a.Kind)
	}
}

func TestEngineTextureTooSmall(t *testing.T) {
	e := newTestEngine(t, func(c *EngineConfig) {
		c.CacheWidth, c.CacheHeight = 16, 16
	})
	e.Queue(Section{Text: []SectionText{{Text: "M", Scale: 60, Color: [4]float32{1, 1, 1, 1}}}})

	var log frameLog
	_, err := e.ProcessQueued(200, 200, log.upload, log.vertex)
	if !errors.Is(err, ErrTextureTooSmall) {
		t.Fatalf("error = %v, want ErrTextureTooSmall", err)
	}
	var tooSmall *TextureTooSmallError
	if !errors.As(err, &tooSmall) || tooSmall.SuggestedWidth < 32 || tooSmall.SuggestedHeight < 32 {
		t.Errorf("suggestion = %+v, want a larger texture", tooSmall)
	}
	if log.uploads != 0 || log.vertices != 0 {
		t.Errorf("failed frame ran callbacks: %+v", log)
	}
	if e.QueueLen() != 1 {
		t.Errorf("QueueLen() = %d, want the queue kept", e.QueueLen())
	}

	e.DiscardQueued()
	a, err := e.ProcessQueued(200, 200, log.upload, log.vertex)
	if err != nil || a.Kind != ActionDraw || len(a.Vertices) != 0 {
		t.Errorf("frame after discard = %v, %d vertices, %v", a.Kind, len(a.Vertices), err)
	}
}

func TestEngineClipsOutsideBounds(t *testing.T) {
	e := newTestEngine(t, nil)
	// "cd" wraps to a second line, which is below the height bound.
	e.Queue(Section{Bounds: Point{X: 30, Y: 18}, Text: texts("ab cd")})

	a, err := e.ProcessQueued(100, 100, (&frameLog{}).upload, identity)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Vertices) != 2 {
		t.Errorf("got %d vertices, want 2 (second line is outside the bounds)", len(a.Vertices))
	}
}

func TestEngineKeepCached(t *testing.T) {
	e := newTestEngine(t, nil)
	e.KeepCached(Section{Text: texts("xyz")})

	var log frameLog
	a, err := e.ProcessQueued(100, 100, log.upload, log.vertex)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Vertices) != 0 || log.uploads == 0 {
		t.Errorf("KeepCached frame = %d vertices, %d uploads; want 0 and some", len(a.Vertices), log.uploads)
	}

	log = frameLog{}
	e.Queue(Section{Text: texts("xyz")})
	if _, err := e.ProcessQueued(100, 100, log.upload, log.vertex); err != nil {
		t.Fatal(err)
	}
	if log.uploads != 0 || log.vertices != 3 {
		t.Errorf("drawing cached glyphs = %+v, want 3 vertices and no uploads", log)
	}
}

func TestEngineQueueOrder(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Queue(Section{Z: 0.2, Text: texts("a")})
	e.Queue(Section{Z: 1.0, Text: texts("b")})

	a, err := e.ProcessQueued(100, 100, (&frameLog{}).upload, identity)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Vertices) != 2 || a.Vertices[0].Z != 0.2 || a.Vertices[1].Z != 1.0 {
		t.Errorf("vertices = %+v, want z 0.2 then 1.0", a.Vertices)
	}
}

// fixedPositioner puts one glyph at (10, 20) whatever the text.
type fixedPositioner struct {
	Layout
	id GlyphID
}

func (p fixedPositioner) CalculateGlyphs(_ *FontSet, _ SectionGeometry, texts []SectionText) []SectionGlyph {
	return []SectionGlyph{{Glyph: PositionedGlyph{ID: p.id, Scale: texts[0].Scale, Position: Point{X: 10, Y: 20}}}}
}

func TestEngineCustomLayout(t *testing.T) {
	e := newTestEngine(t, nil)
	id := glyphIndex(t, e.Fonts()[0], 'X')
	e.QueueCustomLayout(Section{Text: texts("ignored")}, fixedPositioner{id: id})

	a, err := e.ProcessQueued(100, 100, (&frameLog{}).upload, identity)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Vertices) != 1 {
		t.Fatalf("custom positioner produced %d vertices, want 1", len(a.Vertices))
	}
	px := a.Vertices[0].PixelCoords
	if px.Min.X < 9 || px.Max.Y > 21 || px.Min.Y >= 20 {
		t.Errorf("PixelCoords = %+v, want a glyph standing on (10, 20)", px)
	}
}

func TestEngineGlyphBounds(t *testing.T) {
	e := newTestEngine(t, nil)

	r, ok := e.GlyphBounds(Section{ScreenPosition: Point{X: 10, Y: 10}, Text: texts("Hi")})
	if !ok {
		t.Fatal("GlyphBounds reported nothing for visible text")
	}
	if r.Min.X < 9 || r.Min.Y < 10 || r.Width() <= 0 || r.Height() <= 0 || r.Height() > 20 {
		t.Errorf("GlyphBounds = %+v", r)
	}

	if _, ok := e.GlyphBounds(Section{Text: texts("   ")}); ok {
		t.Error("whitespace should have no glyph bounds")
	}
	if e.QueueLen() != 0 {
		t.Error("GlyphBounds must not queue anything")
	}
}

func TestEngineInvalidDimensions(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.ProcessQueued(0, 10, nil, identity); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("error = %v, want ErrInvalidDimensions", err)
	}
}

func TestEngineFonts(t *testing.T) {
	e := newTestEngine(t, nil)
	if len(e.Fonts()) != 1 {
		t.Fatalf("Fonts() = %d, want 1", len(e.Fonts()))
	}
	if _, err := e.AddFont(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("AddFont(nil) = %v, want ErrEmptyFontData", err)
	}
	id := e.AddFontSource(goRegular(t))
	if id != 1 || len(e.Fonts()) != 2 {
		t.Errorf("AddFontSource id = %d with %d fonts", id, len(e.Fonts()))
	}
	w, h := e.TextureDimensions()
	if w != 512 || h != 512 {
		t.Errorf("TextureDimensions() = %dx%d, want 512x512", w, h)
	}
}

func TestEngineUnknownFontIsSkipped(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Queue(Section{Text: []SectionText{{Text: "a", Font: 7}, {Text: "b", Color: [4]float32{0, 0, 0, 1}}}})

	a, err := e.ProcessQueued(100, 100, (&frameLog{}).upload, identity)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Vertices) != 1 {
		t.Errorf("got %d vertices, want only the known font's glyph", len(a.Vertices))
	}
}

func TestEngineConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
		field  string
	}{
		{"default", func(*EngineConfig) {}, ""},
		{"narrow", func(c *EngineConfig) { c.CacheWidth = 8 }, "CacheWidth"},
		{"huge", func(c *EngineConfig) { c.CacheHeight = 16384 }, "CacheHeight"},
		{"padding", func(c *EngineConfig) { c.Padding = -1 }, "Padding"},
		{"subpixel", func(c *EngineConfig) { c.Subpixel = 3 }, "Subpixel"},
		{"layout cache", func(c *EngineConfig) { c.LayoutCacheSize = -1 }, "LayoutCacheSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("Validate() = %v, want ConfigError on %s", err, tt.field)
			}
		})
	}

	if _, err := NewEngine[GlyphVertex](EngineConfig{}); err == nil {
		t.Error("NewEngine with a zero config should fail")
	}
}

func TestActionKindString(t *testing.T) {
	if ActionDraw.String() != "Draw" || ActionRedraw.String() != "Redraw" || ActionKind(5).String() != "Unknown" {
		t.Error("unexpected ActionKind names")
	}
}

func TestEngineUploadErrorKeepsQueue(t *testing.T) {
	e := newTestEngine(t, nil)
	s := Section{Bounds: Point{X: 100, Y: 100}, Text: []SectionText{{Text: "H", Scale: 20}}}
	e.Queue(s)

	if _, err := e.ProcessQueued(100, 100, (&frameLog{failAt: 2}).upload, identity); !errors.Is(err, errUpload) {
		t.Fatalf("ProcessQueued error = %v, want %v", err, errUpload)
	}
	if e.QueueLen() != 1 {
		t.Fatalf("QueueLen() = %d after a failed upload, want 1", e.QueueLen())
	}

	var log frameLog
	a, err := e.ProcessQueued(100, 100, log.upload, log.vertex)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if a.Kind != ActionDraw || len(a.Vertices) != 1 {
		t.Fatalf("retry = %v with %d vertices, want Draw with 1", a.Kind, len(a.Vertices))
	}
	if log.uploads != 2 {
		t.Errorf("retry uploads = %d, want a clear and the glyph", log.uploads)
	}

	// The same section at another depth draws from the re-uploaded glyph.
	s.Z = 0.5
	e.Queue(s)
	log = frameLog{}
	a, err = e.ProcessQueued(100, 100, log.upload, log.vertex)
	if err != nil || a.Kind != ActionDraw || len(a.Vertices) != 1 || log.uploads != 0 {
		t.Errorf("next frame = %v, %d vertices, %d uploads, err %v; want Draw, 1, 0, nil",
			a.Kind, len(a.Vertices), log.uploads, err)
	}
}

func TestEngineInvalidate(t *testing.T) {
	e := newTestEngine(t, nil)
	s := Section{Bounds: Point{X: 100, Y: 100}, Text: []SectionText{{Text: "ab", Scale: 20}}}

	e.Queue(s)
	if _, err := e.ProcessQueued(100, 100, (&frameLog{}).upload, identity); err != nil {
		t.Fatal(err)
	}

	e.Queue(s)
	e.Invalidate()
	var log frameLog
	a, err := e.ProcessQueued(100, 100, log.upload, log.vertex)
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != ActionDraw || len(a.Vertices) != 2 || log.uploads != 0 {
		t.Errorf("invalidated frame = %v, %d vertices, %d uploads; want Draw, 2, 0", a.Kind, len(a.Vertices), log.uploads)
	}

	e.Queue(s)
	if a, _ := e.ProcessQueued(100, 100, log.upload, log.vertex); a.Kind != ActionRedraw {
		t.Errorf("frame after the rebuild = %v, want Redraw", a.Kind)
	}
}
