package text

// ShelfAllocator implements shelf-based rectangle packing.
//
// Rectangles are placed left to right on horizontal shelves. A shelf is as
// tall as the tallest item placed on it; when an item fits on no shelf a new
// one is opened below the last. Items are padded on the right and bottom so
// linear sampling never bleeds between neighbours. The padding is not
// reserved past the texture edge, so an item as wide or as tall as the
// texture still fits.
type ShelfAllocator struct {
	width   int
	height  int
	padding int
	shelves []shelf

	usedArea int
}

// shelf represents a horizontal strip in the atlas.
type shelf struct {
	y      int // Y position of shelf top
	height int // Height of the shelf (tallest item so far)
	x      int // Current X position (next free slot)
}

// NewShelfAllocator creates a new allocator for the given dimensions.
func NewShelfAllocator(width, height, padding int) *ShelfAllocator {
	return &ShelfAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// Allocate finds space for a w x h rectangle.
// Returns x, y position and true if space was found, or -1, -1, false if not.
func (a *ShelfAllocator) Allocate(w, h int) (x, y int, ok bool) {
	paddedW := w + a.padding

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.x+w > a.width {
			continue
		}
		if h > s.height {
			// Only the last shelf can grow, and only if there is room below.
			if i != len(a.shelves)-1 || s.y+h > a.height {
				continue
			}
			s.height = h
		}
		x, y = s.x, s.y
		s.x += paddedW
		a.usedArea += w * h
		return x, y, true
	}

	newY := 0
	if len(a.shelves) > 0 {
		last := a.shelves[len(a.shelves)-1]
		newY = last.y + last.height + a.padding
	}
	if newY+h > a.height || w > a.width {
		return -1, -1, false
	}

	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: paddedW})
	a.usedArea += w * h
	return 0, newY, true
}

// Clone returns an independent copy, so a batch of allocations can be tried
// without touching the original.
func (a *ShelfAllocator) Clone() *ShelfAllocator {
	c := *a
	c.shelves = make([]shelf, len(a.shelves), max(cap(a.shelves), 16))
	copy(c.shelves, a.shelves)
	return &c
}

// Reset clears all allocations, allowing the allocator to be reused.
func (a *ShelfAllocator) Reset() {
	a.shelves = a.shelves[:0]
	a.usedArea = 0
}

// Utilization returns the fraction of atlas space used (0.0 to 1.0).
func (a *ShelfAllocator) Utilization() float64 {
	if a.width <= 0 || a.height <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(a.width*a.height)
}

// ShelfCount returns the number of shelves currently in use.
func (a *ShelfAllocator) ShelfCount() int {
	return len(a.shelves)
}
