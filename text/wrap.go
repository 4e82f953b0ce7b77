package text

import (
	"unicode"

	"github.com/chewxy/math32"
	"github.com/go-text/typesetting/segmenter"
)

// line is a run of glyphs laid out left to right. Glyph X is relative to the
// line start and Y to the baseline.
type line struct {
	glyphs []SectionGlyph

	// width is the visible width: trailing whitespace is not counted.
	width float32
	// advance is the caret position after the last glyph.
	advance float32

	metrics VMetrics
}

func (ln *line) empty() bool { return ln.advance == 0 && len(ln.glyphs) == 0 }

func (ln *line) add(p piece) {
	for _, g := range p.glyphs {
		g.Glyph.Position.X += ln.advance
		ln.glyphs = append(ln.glyphs, g)
	}
	ln.width = ln.advance + p.trimmed
	ln.advance += p.width
	ln.metrics = maxMetrics(ln.metrics, p.metrics)
}

// piece is the text between two line break opportunities, shaped.
type piece struct {
	glyphs  []SectionGlyph
	width   float32
	trimmed float32
	metrics VMetrics
	hard    bool
}

// flatRunes is the concatenation of all section texts with a back reference
// from every rune to its text and byte offset.
type flatRunes struct {
	runes   []rune
	owner   []int
	byteOff []int
}

func flatten(texts []SectionText) flatRunes {
	var f flatRunes
	for i, t := range texts {
		for off, r := range t.Text {
			f.runes = append(f.runes, r)
			f.owner = append(f.owner, i)
			f.byteOff = append(f.byteOff, off)
		}
	}
	return f
}

// breakLines shapes texts and breaks them into lines no wider than
// maxWidth where the line breaking rules allow. A word wider than maxWidth
// gets a line of its own.
func breakLines(fonts *FontSet, texts []SectionText, maxWidth float32, single bool) []line {
	f := flatten(texts)
	if len(f.runes) == 0 {
		return nil
	}

	var seg segmenter.Segmenter
	seg.Init(f.runes)
	it := seg.LineIterator()

	var lines []line
	var cur line
	for it.Next() {
		l := it.Line()
		p := shapePiece(fonts, texts, f, l.Offset, l.Offset+len(l.Text), l.IsMandatoryBreak)

		if !cur.empty() && cur.advance+p.trimmed > maxWidth {
			lines = append(lines, cur)
			if single {
				return lines
			}
			cur = line{}
		}
		cur.add(p)

		if p.hard {
			lines = append(lines, cur)
			if single {
				return lines
			}
			cur = line{}
		}
	}
	if !cur.empty() {
		lines = append(lines, cur)
	}
	return lines
}

// shapePiece shapes runes [start, end). The piece is split into runs of
// the same SectionText, each shaped with its own font and scale.
func shapePiece(fonts *FontSet, texts []SectionText, f flatRunes, start, end int, hard bool) piece {
	p := piece{hard: hard}

	if hard {
		for end > start && isLineTerminator(f.runes[end-1]) {
			// Terminators still give the line its height.
			p.metrics = maxMetrics(p.metrics, textMetrics(fonts, texts[f.owner[end-1]]))
			end--
		}
	}

	wsStart := end
	for wsStart > start && unicode.IsSpace(f.runes[wsStart-1]) {
		wsStart--
	}
	trimmed := float32(-1)

	var caret float32
	for a := start; a < end; {
		owner := f.owner[a]
		b := a + 1
		for b < end && f.owner[b] == owner {
			b++
		}

		t := texts[owner]
		scale := t.scale()
		p.metrics = maxMetrics(p.metrics, textMetrics(fonts, t))

		shaped, err := fonts.Shape(t.Font, f.runes[a:b], scale)
		if err != nil {
			slogger().Warn("text: skipping run", "text", owner, "font", int(t.Font), "err", err)
			a = b
			continue
		}
		for _, g := range shaped {
			idx := a + g.Cluster
			if trimmed < 0 && idx >= wsStart {
				trimmed = caret
			}
			p.glyphs = append(p.glyphs, SectionGlyph{
				TextIndex: owner,
				ByteIndex: f.byteOff[idx],
				Glyph: PositionedGlyph{
					Font:  t.Font,
					ID:    g.ID,
					Scale: scale,
					Position: Point{
						X: caret + g.XOffset,
						Y: -g.YOffset,
					},
				},
			})
			caret += g.Advance
		}
		a = b
	}

	p.width = caret
	if trimmed < 0 {
		trimmed = caret
	}
	p.trimmed = trimmed
	return p
}

func textMetrics(fonts *FontSet, t SectionText) VMetrics {
	src, ok := fonts.Font(t.Font)
	if !ok {
		return VMetrics{}
	}
	return src.VMetrics(t.scale())
}

func maxMetrics(a, b VMetrics) VMetrics {
	return VMetrics{
		Ascent:  math32.Max(a.Ascent, b.Ascent),
		Descent: math32.Max(a.Descent, b.Descent),
		LineGap: math32.Max(a.LineGap, b.LineGap),
	}
}

func isLineTerminator(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
