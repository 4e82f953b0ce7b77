// Package cache provides the frame-scoped cache used for section layouts.
//
// FrameCache[K, V] keeps what the current frame touches and forgets the
// rest when the frame ends:
//
//	layouts := cache.New[uint64, []text.SectionGlyph](1024)
//	glyphs := layouts.GetOrCreate(hash, compute)
//	// ... end of frame
//	layouts.EndFrame()
//
// A soft limit bounds the entry count within a single frame by evicting the
// least recently used entries.
package cache
