package text

import (
	"cmp"
	"image"
	"math"
	"slices"
)

// glyphKey identifies one rasterization of a glyph.
type glyphKey struct {
	font  FontID
	id    GlyphID
	scale uint32 // float32 bits
	sub   uint8  // subpixel step
}

func (k glyphKey) compare(o glyphKey) int {
	return cmp.Or(
		cmp.Compare(k.font, o.font),
		cmp.Compare(k.id, o.id),
		cmp.Compare(k.scale, o.scale),
		cmp.Compare(k.sub, o.sub),
	)
}

// cachedGlyph is a rasterized glyph and, when resident, its atlas rectangle.
type cachedGlyph struct {
	mask     glyphMask
	rect     image.Rectangle
	resident bool
}

// glyphCache decides where rasterized glyphs live in the cache texture.
//
// Placement is planned for the whole frame before anything is uploaded, so
// a frame that does not fit leaves the texture and the cache untouched.
type glyphCache struct {
	width, height int
	padding       int
	mode          SubpixelMode

	alloc   *ShelfAllocator
	entries map[glyphKey]*cachedGlyph

	// clean is false until the texture has been cleared once.
	clean bool
}

func newGlyphCache(cfg EngineConfig) *glyphCache {
	w, h := int(cfg.CacheWidth), int(cfg.CacheHeight)
	return &glyphCache{
		width:   w,
		height:  h,
		padding: cfg.Padding,
		mode:    cfg.Subpixel,
		alloc:   NewShelfAllocator(w, h, cfg.Padding),
		entries: make(map[glyphKey]*cachedGlyph),
	}
}

// key returns the cache key of g and its whole pixel origin.
func (c *glyphCache) key(g PositionedGlyph) (glyphKey, image.Point) {
	x, sub := Quantize(g.Position.X, c.mode)
	y, _ := Quantize(g.Position.Y, SubpixelNone)
	return glyphKey{
		font:  g.Font,
		id:    g.ID,
		scale: math.Float32bits(g.Scale),
		sub:   sub,
	}, image.Pt(x, y)
}

// glyph returns the entry for k, rasterizing it on first use. Rasterizing
// does not touch the texture.
func (c *glyphCache) glyph(fonts *FontSet, k glyphKey) (*cachedGlyph, error) {
	if e, ok := c.entries[k]; ok {
		return e, nil
	}
	src, ok := fonts.Font(k.font)
	if !ok {
		return nil, ErrUnknownFont
	}
	scale := math.Float32frombits(k.scale)
	m, err := rasterizeGlyph(src, k.id, src.PPEM(scale), SubpixelOffset(k.sub, c.mode))
	if err != nil {
		return nil, err
	}
	e := &cachedGlyph{mask: m}
	c.entries[k] = e
	return e, nil
}

// pixelRect returns where the glyph drawn at origin lands on screen.
func (e *cachedGlyph) pixelRect(origin image.Point) image.Rectangle {
	if e.mask.empty() {
		return image.Rectangle{}
	}
	return e.mask.Mask.Rect.Add(origin.Add(e.mask.Offset))
}

// texCoords returns the entry's atlas rectangle normalized to 0..1.
func (c *glyphCache) texCoords(e *cachedGlyph) Rect {
	w, h := float32(c.width), float32(c.height)
	return Rect{
		Min: Point{X: float32(e.rect.Min.X) / w, Y: float32(e.rect.Min.Y) / h},
		Max: Point{X: float32(e.rect.Max.X) / w, Y: float32(e.rect.Max.Y) / h},
	}
}

// prepare makes every glyph in keys resident, uploading new placements
// through upload. Keys must already have entries.
//
// Missing glyphs are first added around the resident ones. If they do not
// fit, the texture is repacked with only this frame's glyphs. If that fails
// too, a TextureTooSmallError is returned and nothing changes. If an upload
// fails, its error is returned and every placement is forgotten, so the
// next call clears the texture and uploads again.
func (c *glyphCache) prepare(keys []glyphKey, upload func(image.Rectangle, []byte) error) error {
	needed := c.drawable(keys)

	var missing []glyphKey
	for _, k := range needed {
		if !c.entries[k].resident {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if alloc, rects, ok := c.pack(c.alloc.Clone(), missing); ok {
		c.alloc = alloc
		if err := c.write(missing, rects, upload); err != nil {
			return err
		}
		slogger().Debug("text: glyphs added", "count", len(missing), "utilization", alloc.Utilization())
		return nil
	}

	alloc, rects, ok := c.pack(NewShelfAllocator(c.width, c.height, c.padding), needed)
	if !ok {
		sw, sh := c.suggest(needed)
		return &TextureTooSmallError{
			Width:           uint32(c.width),  //nolint:gosec // validated config
			Height:          uint32(c.height), //nolint:gosec // validated config
			SuggestedWidth:  uint32(sw),       //nolint:gosec // capped at MaxTextureSize
			SuggestedHeight: uint32(sh),       //nolint:gosec // capped at MaxTextureSize
		}
	}

	// Repacked: everything not needed this frame is gone from the texture.
	keep := make(map[glyphKey]struct{}, len(needed))
	for _, k := range needed {
		keep[k] = struct{}{}
	}
	for k, e := range c.entries {
		e.resident = false
		e.rect = image.Rectangle{}
		if _, ok := keep[k]; !ok {
			delete(c.entries, k)
		}
	}
	c.alloc = alloc
	c.clean = false
	if err := c.write(needed, rects, upload); err != nil {
		return err
	}
	slogger().Debug("text: glyph texture repacked", "count", len(needed), "utilization", alloc.Utilization())
	return nil
}

// drawable returns the unique keys with visible pixels, tallest first.
func (c *glyphCache) drawable(keys []glyphKey) []glyphKey {
	out := make([]glyphKey, 0, len(keys))
	for _, k := range keys {
		if e := c.entries[k]; e != nil && !e.mask.empty() {
			out = append(out, k)
		}
	}
	slices.SortFunc(out, func(a, b glyphKey) int {
		ha := c.entries[a].mask.Mask.Rect.Dy()
		hb := c.entries[b].mask.Mask.Rect.Dy()
		return cmp.Or(cmp.Compare(hb, ha), a.compare(b))
	})
	return slices.Compact(out)
}

// pack places keys with alloc, reporting false if any does not fit.
func (c *glyphCache) pack(alloc *ShelfAllocator, keys []glyphKey) (*ShelfAllocator, []image.Rectangle, bool) {
	rects := make([]image.Rectangle, len(keys))
	for i, k := range keys {
		r := c.entries[k].mask.Mask.Rect
		x, y, ok := alloc.Allocate(r.Dx(), r.Dy())
		if !ok {
			return nil, nil, false
		}
		rects[i] = image.Rect(x, y, x+r.Dx(), y+r.Dy())
	}
	return alloc, rects, true
}

// write clears the texture if needed, then uploads keys at rects.
func (c *glyphCache) write(keys []glyphKey, rects []image.Rectangle, upload func(image.Rectangle, []byte) error) error {
	err := c.clear(upload)
	if err == nil {
		err = c.commit(keys, rects, upload)
	}
	if err != nil {
		c.forget()
	}
	return err
}

// clear zeroes the whole texture once after creation or a repack, so the
// padding around glyphs never holds stale coverage.
func (c *glyphCache) clear(upload func(image.Rectangle, []byte) error) error {
	if c.clean {
		return nil
	}
	if err := upload(image.Rect(0, 0, c.width, c.height), make([]byte, c.width*c.height)); err != nil {
		return err
	}
	c.clean = true
	return nil
}

// commit uploads keys at rects. An entry is resident only once its upload
// succeeded.
func (c *glyphCache) commit(keys []glyphKey, rects []image.Rectangle, upload func(image.Rectangle, []byte) error) error {
	for i, k := range keys {
		e := c.entries[k]
		if err := upload(rects[i], e.mask.Mask.Pix); err != nil {
			return err
		}
		e.rect = rects[i]
		e.resident = true
	}
	return nil
}

// forget drops every placement after a failed upload. The texture contents
// are unknown, so it is cleared again before the next glyph is written.
func (c *glyphCache) forget() {
	c.alloc.Reset()
	for _, e := range c.entries {
		e.resident = false
		e.rect = image.Rectangle{}
	}
	c.clean = false
}

// suggest doubles the texture, smaller side first, until keys fit.
func (c *glyphCache) suggest(keys []glyphKey) (int, int) {
	w, h := c.width, c.height
	for w < MaxTextureSize || h < MaxTextureSize {
		if w <= h && w < MaxTextureSize {
			w = min(w*2, MaxTextureSize)
		} else {
			h = min(h*2, MaxTextureSize)
		}
		if _, _, ok := c.pack(NewShelfAllocator(w, h, c.padding), keys); ok {
			break
		}
	}
	return w, h
}
