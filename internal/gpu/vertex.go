package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/glyphbrush/text"
)

// VertexFloats is the number of float32 components in one glyph vertex.
const VertexFloats = 13

// VertexStride is the byte stride of one glyph vertex. Each vertex feeds
// one instance; the shader expands it into a four vertex strip.
//
//	left_top         (vec3<f32>) offset  0 (location 0)
//	right_bottom     (vec2<f32>) offset 12 (location 1)
//	tex_left_top     (vec2<f32>) offset 20 (location 2)
//	tex_right_bottom (vec2<f32>) offset 28 (location 3)
//	color            (vec4<f32>) offset 36 (location 4)
const VertexStride = VertexFloats * 4

// Vertex is one glyph quad in clip space:
// clip min x, clip max y, z, clip max x, clip min y,
// uv min x, uv max y, uv max x, uv min y, r, g, b, a.
type Vertex [VertexFloats]float32

// FormatVertex converts a glyph placement into a Vertex.
//
// Pixel coordinates map to clip space with x' = 2*(x/w - 0.5) and
// y' = 2*(0.5 - y/h), so clip Y runs opposite to pixel Y. Any edge that
// sticks out of the clipping bounds is pulled back onto them and the
// matching texture edge is moved by the same fraction, keeping the glyph
// undistorted. The atlas itself is not flipped, which is why the Y edges
// are compared with the inverted operators below.
//
// Input is not validated: NaN or zero screen sizes propagate.
func FormatVertex(g text.GlyphVertex) Vertex {
	w, h := g.ScreenWidth, g.ScreenHeight
	bounds := toClip(g.Bounds, w, h)
	rect := toClip(g.PixelCoords, w, h)
	uv := g.TexCoords

	if rect.Max.X > bounds.Max.X {
		oldWidth := rect.Width()
		rect.Max.X = bounds.Max.X
		uv.Max.X = uv.Min.X + uv.Width()*rect.Width()/oldWidth
	}
	if rect.Min.X < bounds.Min.X {
		oldWidth := rect.Width()
		rect.Min.X = bounds.Min.X
		uv.Min.X = uv.Max.X - uv.Width()*rect.Width()/oldWidth
	}
	if rect.Max.Y < bounds.Max.Y {
		oldHeight := rect.Height()
		rect.Max.Y = bounds.Max.Y
		uv.Max.Y = uv.Min.Y + uv.Height()*rect.Height()/oldHeight
	}
	if rect.Min.Y > bounds.Min.Y {
		oldHeight := rect.Height()
		rect.Min.Y = bounds.Min.Y
		uv.Min.Y = uv.Max.Y - uv.Height()*rect.Height()/oldHeight
	}

	return Vertex{
		rect.Min.X, rect.Max.Y, g.Z,
		rect.Max.X, rect.Min.Y,
		uv.Min.X, uv.Max.Y,
		uv.Max.X, uv.Min.Y,
		g.Color[0], g.Color[1], g.Color[2], g.Color[3],
	}
}

// toClip maps a pixel-space rectangle to clip space without reordering its
// corners, so the result has Min.Y > Max.Y.
func toClip(r text.Rect, w, h float32) text.Rect {
	return text.Rect{
		Min: text.Point{X: 2 * (r.Min.X/w - 0.5), Y: 2 * (0.5 - r.Min.Y/h)},
		Max: text.Point{X: 2 * (r.Max.X/w - 0.5), Y: 2 * (0.5 - r.Max.Y/h)},
	}
}

// vertexBytes serializes vertices as tightly packed little-endian float32.
func vertexBytes(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	off := 0
	for i := range vertices {
		for _, f := range vertices[i] {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf
}
