package motion

// pixelOffset describes one of the 8 neighbors of a mask pixel: its x/y
// displacement and the corresponding displacement in bytes within a packed
// row-major pixel buffer.
type pixelOffset struct {
	x, y int
	p    int
}

// neighborOffsets builds the 8-neighborhood offset table for a buffer of the
// given width. The neighbors are listed left and right first, then the three
// in the row above, then the three in the row below.
func neighborOffsets(width int) [8]pixelOffset {
	coords := [8][2]int{
		{-1, 0}, {1, 0},
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 1}, {0, 1}, {1, 1},
	}
	var offs [8]pixelOffset
	for i, c := range coords {
		offs[i] = pixelOffset{
			x: c[0],
			y: c[1],
			p: c[1]*width*bytesPerPixel + c[0]*bytesPerPixel,
		}
	}
	return offs
}

// neighborOn reports whether the neighbor of the pixel at (x, y) with byte
// offset off described by n is marked moving in buf.
//
// A neighbor only counts when x+dx > 0 and y+dy > 0. The test is strict on
// the low side and has no high side at all, so the leftmost column and top
// row contribute fewer neighbors while lookups past the right edge land on
// the first pixels of the following row. Both quirks are kept intact; only
// the read past the end of the buffer on the bottom row is suppressed.
func neighborOn(buf []byte, x, y, off int, n pixelOffset, size int) bool {
	if x+n.x <= 0 || y+n.y <= 0 {
		return false
	}
	idx := off + n.p
	if idx < 0 || idx >= size {
		return false
	}
	return buf[idx] != 0
}

// erode writes into the eroded buffer a copy of the mask where a moving pixel
// survives only if at least erosionLevel of its neighbors are also moving.
func (e *Extractor) erode() {
	mask := e.mask.Pix()
	out := e.eroded.Pix()
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			off := (y*e.width + x) * bytesPerPixel
			if mask[off] == 0 {
				out[off] = 0
				continue
			}
			neighbors := 0
			for _, n := range e.offs {
				if neighborOn(mask, x, y, off, n, e.size) {
					neighbors++
					if neighbors >= e.erosionLevel {
						break
					}
				}
			}
			if neighbors >= e.erosionLevel {
				out[off] = mask[off]
			} else {
				out[off] = 0
			}
		}
	}
}

// dilate writes the final mask back from the eroded buffer: a pixel that
// survived erosion stays on, and a pixel that is off switches on when any of
// its neighbors is on. The same neighbor test as erode applies, so the
// borders grow back unevenly; pixel (0, 0) in particular can only be lit by
// its lower-right diagonal.
func (e *Extractor) dilate() {
	src := e.eroded.Pix()
	mask := e.mask.Pix()
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			off := (y*e.width + x) * bytesPerPixel
			if src[off] != 0 {
				mask[off] = src[off]
				continue
			}
			on := false
			for _, n := range e.offs {
				if neighborOn(src, x, y, off, n, e.size) {
					on = true
					break
				}
			}
			if on {
				mask[off] = 255
			} else {
				mask[off] = 0
			}
		}
	}
}
