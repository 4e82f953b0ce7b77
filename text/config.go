package text

// Texture size limits accepted by EngineConfig. MaxTextureSize is also the
// largest size ever suggested by TextureTooSmallError.
const (
	MinTextureSize = 16
	MaxTextureSize = 8192
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	// CacheWidth and CacheHeight are the glyph cache texture dimensions.
	// The texture is never resized.
	CacheWidth  uint32
	CacheHeight uint32

	// Padding is the empty border, in pixels, kept right of and below every
	// glyph in the texture.
	Padding int

	// Subpixel sets how many horizontal subpixel positions get their own
	// rasterization.
	Subpixel SubpixelMode

	// LayoutCacheSize is the soft limit on cached section layouts.
	// 0 means unlimited.
	LayoutCacheSize int
}

// DefaultEngineConfig returns a 512x512 cache with 1px padding and four
// subpixel positions.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CacheWidth:      512,
		CacheHeight:     512,
		Padding:         1,
		Subpixel:        Subpixel4,
		LayoutCacheSize: 1024,
	}
}

// Validate checks if the configuration is valid.
func (c *EngineConfig) Validate() error {
	if c.CacheWidth < MinTextureSize {
		return &ConfigError{Field: "CacheWidth", Reason: "must be at least 16"}
	}
	if c.CacheWidth > MaxTextureSize {
		return &ConfigError{Field: "CacheWidth", Reason: "must be at most 8192"}
	}
	if c.CacheHeight < MinTextureSize {
		return &ConfigError{Field: "CacheHeight", Reason: "must be at least 16"}
	}
	if c.CacheHeight > MaxTextureSize {
		return &ConfigError{Field: "CacheHeight", Reason: "must be at most 8192"}
	}
	if c.Padding < 0 || c.Padding > 8 {
		return &ConfigError{Field: "Padding", Reason: "must be between 0 and 8"}
	}
	switch c.Subpixel {
	case SubpixelNone, Subpixel4, Subpixel10:
	default:
		return &ConfigError{Field: "Subpixel", Reason: "must be SubpixelNone, Subpixel4 or Subpixel10"}
	}
	if c.LayoutCacheSize < 0 {
		return &ConfigError{Field: "LayoutCacheSize", Reason: "must be non-negative"}
	}
	return nil
}
