package motion

import "github.com/nvr-ai/go-motion/frames"

// downscale reduces the source frame into dst by averaging each
// downscaleRatio×downscaleRatio block of source pixels per channel. The
// division truncates, so the result is the floor of the block mean.
//
// dst must hold width*height*bytesPerPixel bytes. Source pixels beyond the
// last full block on the right and bottom edges are ignored.
func (e *Extractor) downscale(frame *frames.Frame, dst []byte) {
	src := frame.Pix()
	srcStride := e.srcWidth * bytesPerPixel

	for y := 0; y < e.height; y++ {
		srcTop := y * downscaleRatio * srcStride
		dstRow := y * e.width * bytesPerPixel
		for x := 0; x < e.width; x++ {
			srcLeft := srcTop + x*downscaleRatio*bytesPerPixel
			var sums [bytesPerPixel]uint32
			for by := 0; by < downscaleRatio; by++ {
				off := srcLeft + by*srcStride
				for bx := 0; bx < downscaleRatio; bx++ {
					for c := 0; c < bytesPerPixel; c++ {
						sums[c] += uint32(src[off+c])
					}
					off += bytesPerPixel
				}
			}
			out := dstRow + x*bytesPerPixel
			for c := 0; c < bytesPerPixel; c++ {
				dst[out+c] = byte(sums[c] / downscaleSquare)
			}
		}
	}
}
