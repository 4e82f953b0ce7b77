package text

import "github.com/chewxy/math32"

// SubpixelMode controls subpixel glyph positioning.
// Glyphs rendered at fractional pixel positions get their own atlas entry
// per quantized offset, trading cache space for smoother text.
type SubpixelMode int

const (
	// SubpixelNone snaps glyph origins to whole pixels.
	SubpixelNone SubpixelMode = 0

	// Subpixel4 uses 4 horizontal positions (0.0, 0.25, 0.5, 0.75).
	Subpixel4 SubpixelMode = 4

	// Subpixel10 uses 10 horizontal positions (0.0, 0.1, ..., 0.9).
	Subpixel10 SubpixelMode = 10
)

// String returns the string representation of the subpixel mode.
func (m SubpixelMode) String() string {
	switch m {
	case SubpixelNone:
		return "None"
	case Subpixel4:
		return "Subpixel4"
	case Subpixel10:
		return "Subpixel10"
	default:
		return "Unknown"
	}
}

// IsEnabled returns true if subpixel positioning is enabled.
func (m SubpixelMode) IsEnabled() bool {
	return m > 0
}

// Divisions returns the number of subpixel divisions.
// Returns 1 for SubpixelNone (no divisions).
func (m SubpixelMode) Divisions() int {
	if m <= 0 {
		return 1
	}
	return int(m)
}

// Quantize splits pos into a whole pixel and a quantized subpixel step.
//
// With Subpixel4:
//   - pos=10.0 returns (10, 0)
//   - pos=10.3 returns (10, 1)
//   - pos=10.99 returns (10, 3)
//
// With SubpixelNone the position is rounded to the nearest pixel.
func Quantize(pos float32, mode SubpixelMode) (intPos int, subPos uint8) {
	if !mode.IsEnabled() {
		return int(math32.Floor(pos + 0.5)), 0
	}

	floor := math32.Floor(pos)
	frac := pos - floor

	sub := int(frac * float32(mode.Divisions()))
	if sub >= mode.Divisions() {
		sub = mode.Divisions() - 1
	}
	if sub < 0 {
		sub = 0
	}
	return int(floor), uint8(sub) //nolint:gosec // sub is bounded [0, mode-1]
}

// SubpixelOffset returns the rendering offset for a subpixel step.
func SubpixelOffset(subPos uint8, mode SubpixelMode) float32 {
	if !mode.IsEnabled() {
		return 0
	}
	return float32(subPos) / float32(mode.Divisions())
}
