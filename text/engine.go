package text

import (
	"errors"
	"hash/maphash"
	"image"

	"github.com/gogpu/glyphbrush/internal/cache"
)

// ActionKind tells the caller what to do with the result of ProcessQueued.
type ActionKind int

const (
	// ActionDraw carries a new vertex list that replaces the previous one.
	ActionDraw ActionKind = iota

	// ActionRedraw means nothing changed since the last ActionDraw; the
	// previous vertices can be drawn again as they are.
	ActionRedraw
)

// String returns the string representation of the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionDraw:
		return "Draw"
	case ActionRedraw:
		return "Redraw"
	default:
		return unknownStr
	}
}

// Action is the result of processing the queue.
type Action[V any] struct {
	Kind ActionKind

	// Vertices is set for ActionDraw, one per visible glyph, in queue order.
	// It may be empty.
	Vertices []V
}

// queuedSection is a section accepted by Queue or KeepCached.
type queuedSection struct {
	geom       SectionGeometry
	z          float32
	texts      []SectionText
	positioner GlyphPositioner
	draw       bool

	layoutHash uint64
	drawHash   uint64
}

// Engine lays out queued sections, keeps their glyphs in a cache texture and
// turns them into vertices of type V.
//
// The engine never touches the GPU. It reports texture changes through the
// upload callback and vertex data through the vertex callback given to
// ProcessQueued.
//
// Engine is not safe for concurrent use.
type Engine[V any] struct {
	cfg     EngineConfig
	fonts   *FontSet
	glyphs  *glyphCache
	layouts *cache.FrameCache[uint64, []SectionGlyph]

	queue []queuedSection

	lastFrame uint64
	drawn     bool
}

// NewEngine creates an engine with cfg and registers fonts in order, so the
// first one is FontID 0.
func NewEngine[V any](cfg EngineConfig, fonts ...*FontSource) (*Engine[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fs := NewFontSet()
	for _, f := range fonts {
		fs.Add(f)
	}
	return &Engine[V]{
		cfg:     cfg,
		fonts:   fs,
		glyphs:  newGlyphCache(cfg),
		layouts: cache.New[uint64, []SectionGlyph](cfg.LayoutCacheSize),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine[V]) Config() EngineConfig { return e.cfg }

// AddFont parses data and registers it, returning its id.
func (e *Engine[V]) AddFont(data []byte) (FontID, error) {
	return e.fonts.AddBytes(data)
}

// AddFontSource registers an already parsed font.
func (e *Engine[V]) AddFontSource(src *FontSource) FontID {
	return e.fonts.Add(src)
}

// Fonts returns the registered fonts indexed by FontID.
func (e *Engine[V]) Fonts() []*FontSource { return e.fonts.Fonts() }

// FontSet returns the engine's font registry.
func (e *Engine[V]) FontSet() *FontSet { return e.fonts }

// TextureDimensions returns the size of the glyph cache texture the caller
// must provide.
func (e *Engine[V]) TextureDimensions() (width, height uint32) {
	return e.cfg.CacheWidth, e.cfg.CacheHeight
}

// Queue adds a section to be drawn by the next ProcessQueued, laid out with
// its own Layout.
func (e *Engine[V]) Queue(s Section) {
	e.enqueue(s, s.Layout, true)
}

// QueueCustomLayout adds a section laid out by p.
func (e *Engine[V]) QueueCustomLayout(s Section, p GlyphPositioner) {
	e.enqueue(s, p, true)
}

// KeepCached keeps the glyphs of s resident in the cache texture during the
// next ProcessQueued without drawing them.
func (e *Engine[V]) KeepCached(s Section) {
	e.enqueue(s, s.Layout, false)
}

// KeepCachedCustomLayout is KeepCached with a custom positioner.
func (e *Engine[V]) KeepCachedCustomLayout(s Section, p GlyphPositioner) {
	e.enqueue(s, p, false)
}

// QueueLen returns the number of sections waiting for ProcessQueued.
func (e *Engine[V]) QueueLen() int { return len(e.queue) }

// DiscardQueued drops every queued section. The next ProcessQueued then
// draws nothing.
func (e *Engine[V]) DiscardQueued() {
	e.queue = e.queue[:0]
}

func (e *Engine[V]) enqueue(s Section, p GlyphPositioner, draw bool) {
	if p == nil {
		p = s.Layout
	}
	q := queuedSection{
		geom:       s.Geometry(),
		z:          s.Z,
		texts:      cloneTexts(s.Text),
		positioner: p,
		draw:       draw,
	}
	q.layoutHash = layoutHash(q.geom, q.texts, p)
	q.drawHash = drawHash(q.layoutHash, q.z, q.texts)
	e.queue = append(e.queue, q)
}

// ProcessQueued lays out and rasterizes every queued section for a screen
// of width x height pixels.
//
// New or moved glyphs are written to the cache texture through upload,
// which receives a rectangle of the texture and its coverage bytes, one
// per pixel, row-major with no padding. Every drawn glyph is turned into a
// vertex with toVertex.
//
// If the queue matches the previous call, ActionRedraw is returned and no
// callback runs. If the glyphs do not fit, a *TextureTooSmallError is
// returned before any upload and the queue is kept. If upload fails, its
// error is returned, the queue is kept and the glyph placements are
// forgotten so the next call uploads them again. Otherwise the queue is
// cleared.
func (e *Engine[V]) ProcessQueued(
	width, height uint32,
	upload func(rect image.Rectangle, data []byte) error,
	toVertex func(GlyphVertex) V,
) (Action[V], error) {
	if width == 0 || height == 0 {
		return Action[V]{}, ErrInvalidDimensions
	}

	frame := e.frameHash(width, height)
	if e.drawn && frame == e.lastFrame {
		e.queue = e.queue[:0]
		return Action[V]{Kind: ActionRedraw}, nil
	}

	var keys []glyphKey
	var draws []drawGlyph
	for si := range e.queue {
		q := &e.queue[si]
		bounds := q.positioner.BoundsRect(q.geom)
		for _, sg := range e.layout(q) {
			k, origin := e.glyphs.key(sg.Glyph)
			g, err := e.glyphs.glyph(e.fonts, k)
			if err != nil {
				slogger().Warn("text: skipping glyph", "font", int(k.font), "glyph", int(k.id), "err", err)
				continue
			}
			px := g.pixelRect(origin)
			if px.Empty() {
				continue
			}
			if q.draw && !rectFromImage(px).Overlaps(bounds) {
				continue
			}
			keys = append(keys, k)
			if q.draw {
				draws = append(draws, drawGlyph{glyph: g, pixel: px, section: si, text: sg.TextIndex})
			}
		}
	}

	if err := e.glyphs.prepare(keys, upload); err != nil {
		var tooSmall *TextureTooSmallError
		if errors.As(err, &tooSmall) {
			slogger().Warn("text: glyph texture too small",
				"width", tooSmall.Width, "height", tooSmall.Height,
				"suggested_width", tooSmall.SuggestedWidth, "suggested_height", tooSmall.SuggestedHeight)
		} else {
			e.drawn = false
		}
		return Action[V]{}, err
	}

	sw, sh := float32(width), float32(height)
	vertices := make([]V, 0, len(draws))
	for _, d := range draws {
		q := &e.queue[d.section]
		vertices = append(vertices, toVertex(GlyphVertex{
			TexCoords:    e.glyphs.texCoords(d.glyph),
			PixelCoords:  rectFromImage(d.pixel),
			Bounds:       q.positioner.BoundsRect(q.geom),
			ScreenWidth:  sw,
			ScreenHeight: sh,
			Color:        q.texts[d.text].Color,
			Z:            q.z,
		}))
	}

	slogger().Debug("text: processed queue",
		"sections", len(e.queue), "glyphs", len(keys), "vertices", len(vertices))

	e.queue = e.queue[:0]
	e.layouts.EndFrame()
	e.lastFrame = frame
	e.drawn = true
	return Action[V]{Kind: ActionDraw, Vertices: vertices}, nil
}

// Invalidate makes the next ProcessQueued build vertices even if the queue
// matches the previous frame. Call it when the vertices of that frame never
// reached the GPU.
func (e *Engine[V]) Invalidate() { e.drawn = false }

// GlyphBounds returns the pixel bounds of the ink of s, laid out with its
// own Layout. Glyphs entirely outside the section bounds are ignored. It
// reports false when nothing would be drawn.
func (e *Engine[V]) GlyphBounds(s Section) (Rect, bool) {
	return e.GlyphBoundsCustomLayout(s, s.Layout)
}

// GlyphBoundsCustomLayout is GlyphBounds with a custom positioner.
func (e *Engine[V]) GlyphBoundsCustomLayout(s Section, p GlyphPositioner) (Rect, bool) {
	if p == nil {
		p = s.Layout
	}
	q := queuedSection{geom: s.Geometry(), texts: cloneTexts(s.Text), positioner: p}
	q.layoutHash = layoutHash(q.geom, q.texts, p)

	bounds := p.BoundsRect(q.geom)
	var out Rect
	for _, sg := range e.layout(&q) {
		k, origin := e.glyphs.key(sg.Glyph)
		g, err := e.glyphs.glyph(e.fonts, k)
		if err != nil {
			continue
		}
		r := rectFromImage(g.pixelRect(origin))
		if r.Empty() || !r.Overlaps(bounds) {
			continue
		}
		out = out.Union(r)
	}
	return out, !out.Empty()
}

// drawGlyph is one glyph that becomes a vertex.
type drawGlyph struct {
	glyph   *cachedGlyph
	pixel   image.Rectangle
	section int
	text    int
}

// layout returns the cached glyph positions of q.
func (e *Engine[V]) layout(q *queuedSection) []SectionGlyph {
	return e.layouts.GetOrCreate(q.layoutHash, func() []SectionGlyph {
		return q.positioner.CalculateGlyphs(e.fonts, q.geom, q.texts)
	})
}

// frameHash identifies the queue contents and screen size.
func (e *Engine[V]) frameHash(width, height uint32) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	writeInt(&h, int64(width))
	writeInt(&h, int64(height))
	for i := range e.queue {
		q := &e.queue[i]
		writeInt(&h, int64(q.drawHash)) //nolint:gosec // bit pattern only
		if q.draw {
			_ = h.WriteByte(1)
		} else {
			_ = h.WriteByte(0)
		}
	}
	return h.Sum64()
}

func rectFromImage(r image.Rectangle) Rect {
	return Rect{
		Min: Point{X: float32(r.Min.X), Y: float32(r.Min.Y)},
		Max: Point{X: float32(r.Max.X), Y: float32(r.Max.Y)},
	}
}
