// Package frames - Pixel buffer containers shared by the motion extraction pipeline.
//
// A Frame is a contiguous, row-major, unpadded pixel buffer with a fixed
// width, height, and byte depth. Frames either own their storage or act as a
// view over pixels owned by someone else (a decoder, a capture buffer). The
// two cases are split into distinct constructors so that ownership never has
// to be tracked at runtime.
package frames

import (
	"image"

	"github.com/pkg/errors"
)

// ErrDimensionMismatch is returned when two frames that must share the same
// geometry (width, height, depth) do not.
var ErrDimensionMismatch = errors.New("frames: frame dimensions do not match")

// Frame is a W×H pixel buffer with Depth bytes per pixel, stored row-major
// with no padding. The invariant len(pix) == W*H*Depth holds for every Frame.
type Frame struct {
	pix    []byte
	width  int
	height int
	depth  int
	view   bool
}

// New creates a zeroed frame that owns its pixel storage.
//
// Arguments:
// - width: Frame width in pixels.
// - height: Frame height in pixels.
// - depth: Bytes per pixel.
//
// Returns:
// - *Frame: A frame whose buffer is width*height*depth zero bytes.
func New(width, height, depth int) *Frame {
	return &Frame{
		pix:    make([]byte, width*height*depth),
		width:  width,
		height: height,
		depth:  depth,
	}
}

// NewUninitialized creates an owning frame whose contents are unspecified
// until the first write. Callers that overwrite the whole buffer (downscale
// targets, morphology scratch) use this to make the "no meaningful contents
// yet" intent explicit.
func NewUninitialized(width, height, depth int) *Frame {
	// Go zeroes allocations, so this only differs from New by intent.
	return New(width, height, depth)
}

// NewCopy creates an owning frame initialized with a copy of pix.
//
// Arguments:
// - pix: Source pixels; must hold at least width*height*depth bytes.
// - width, height, depth: Frame geometry.
func NewCopy(pix []byte, width, height, depth int) *Frame {
	f := New(width, height, depth)
	copy(f.pix, pix)
	return f
}

// NewView creates a frame aliasing pix without copying. The caller keeps
// ownership of the storage and must keep it alive for the lifetime of the
// view. Writes through the view are visible to the owner and vice versa.
func NewView(pix []byte, width, height, depth int) *Frame {
	return &Frame{
		pix:    pix[:width*height*depth],
		width:  width,
		height: height,
		depth:  depth,
		view:   true,
	}
}

// Clone returns an owning deep copy of f. Cloning a view yields an
// independent owning frame.
func (f *Frame) Clone() *Frame {
	return NewCopy(f.pix, f.width, f.height, f.depth)
}

// Wipe overwrites every byte of the frame with value.
func (f *Frame) Wipe(value byte) {
	for i := range f.pix {
		f.pix[i] = value
	}
}

// Pixel returns the depth-sized byte slice for the pixel at (x, y).
//
// No bounds checking is performed beyond the slice expression itself; callers
// in hot loops are expected to pass coordinates inside the frame.
func (f *Frame) Pixel(x, y int) []byte {
	off := (y*f.width + x) * f.depth
	return f.pix[off : off+f.depth]
}

// Pix exposes the raw backing bytes. The per-pixel stages of the extractor
// iterate over this directly rather than going through Pixel.
func (f *Frame) Pix() []byte { return f.pix }

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.height }

// Depth returns the number of bytes per pixel.
func (f *Frame) Depth() int { return f.depth }

// TotalSize returns the size of the pixel buffer in bytes.
func (f *Frame) TotalSize() int { return len(f.pix) }

// IsView reports whether the frame aliases externally owned pixels.
func (f *Frame) IsView() bool { return f.view }

// CopyFrom copies the contents of other into f. Both frames must have the
// same width, height, and depth.
//
// Returns:
// - error: ErrDimensionMismatch (wrapped) if the geometries disagree.
func (f *Frame) CopyFrom(other *Frame) error {
	if f.width != other.width || f.height != other.height || f.depth != other.depth {
		return errors.Wrapf(ErrDimensionMismatch,
			"cannot copy %dx%dx%d into %dx%dx%d",
			other.width, other.height, other.depth, f.width, f.height, f.depth)
	}
	copy(f.pix, other.pix)
	return nil
}

// FromImage converts any image.Image into an owning 3-byte RGB frame.
// Alpha is dropped; the 16-bit channels reported by image.Color are reduced
// to 8 bits.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewUninitialized(b.Dx(), b.Dy(), 3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			f.pix[i+0] = byte(r >> 8)
			f.pix[i+1] = byte(g >> 8)
			f.pix[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return f
}
