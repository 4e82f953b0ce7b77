package glyphbrush

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/glyphbrush/internal/gpu"
)

// IdentityMatrix is the transform DrawQueued uses: glyphs land exactly
// where their sections put them.
var IdentityMatrix = gpu.IdentityMatrix

// Transform is a 2D affine transformation of screen pixels.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Transform struct {
	A, B, C float32
	D, E, F float32
}

// Identity returns the identity transformation.
func Identity() Transform {
	return Transform{A: 1, E: 1}
}

// Translate creates a translation.
func Translate(x, y float32) Transform {
	return Transform{A: 1, C: x, E: 1, F: y}
}

// Scale creates a scaling about the origin.
func Scale(x, y float32) Transform {
	return Transform{A: x, E: y}
}

// Rotate creates a rotation about the origin (angle in radians, clockwise
// on screen since Y points down).
func Rotate(angle float32) Transform {
	sin, cos := math32.Sin(angle), math32.Cos(angle)
	return Transform{
		A: cos, B: -sin,
		D: sin, E: cos,
	}
}

// Multiply returns t * other: other is applied first.
func (t Transform) Multiply(other Transform) Transform {
	return Transform{
		A: t.A*other.A + t.B*other.D,
		B: t.A*other.B + t.B*other.E,
		C: t.A*other.C + t.B*other.F + t.C,
		D: t.D*other.A + t.E*other.D,
		E: t.D*other.B + t.E*other.E,
		F: t.D*other.C + t.E*other.F + t.F,
	}
}

// TransformPoint applies the transformation to a point.
func (t Transform) TransformPoint(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}

// Invert returns the inverse transformation, or the identity when t is not
// invertible.
func (t Transform) Invert() Transform {
	det := t.A*t.E - t.B*t.D
	if math32.Abs(det) < 1e-10 {
		return Identity()
	}
	inv := 1 / det
	return Transform{
		A: t.E * inv,
		B: -t.B * inv,
		C: (t.B*t.F - t.C*t.E) * inv,
		D: -t.D * inv,
		E: t.A * inv,
		F: (t.C*t.D - t.A*t.F) * inv,
	}
}

// IsIdentity reports whether t is the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// ClipMatrix converts t, given in pixels of a width x height target, to the
// column-major clip space matrix DrawQueuedWithTransform expects.
func (t Transform) ClipMatrix(width, height uint32) [16]float32 {
	w, h := float32(width), float32(height)
	toClip := Transform{A: 2 / w, C: -1, E: -2 / h, F: 1}
	toPixel := Transform{A: w / 2, C: w / 2, E: -h / 2, F: h / 2}
	return toClip.Multiply(t).Multiply(toPixel).columns()
}

// columns embeds t in a column-major 4x4 matrix that leaves z and w alone.
func (t Transform) columns() [16]float32 {
	return [16]float32{
		t.A, t.D, 0, 0,
		t.B, t.E, 0, 0,
		0, 0, 1, 0,
		t.C, t.F, 0, 1,
	}
}
