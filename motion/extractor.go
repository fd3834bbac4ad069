package motion

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motion/frames"
)

const (
	// downscaleRatio is the fixed integer ratio the source frame is reduced by
	// before analysis. Both dimensions are divided by it; remainder pixels at
	// the right and bottom edges are discarded.
	downscaleRatio  = 3
	downscaleSquare = downscaleRatio * downscaleRatio

	// bytesPerPixel is the pixel depth the extractor works in. The mask keeps
	// the same depth so it can double as a displayable RGB image: byte 0 is
	// the motion channel, bytes 1 and 2 are user scratch.
	bytesPerPixel = 3

	defaultSensitivity = 26
	defaultErosion     = 5
)

// Extractor maintains a per-pixel background model over a downscaled view of
// the incoming video and emits one binary motion mask per input frame.
//
// All buffers are allocated at construction and reused for every frame. The
// extractor holds no locks and spawns no goroutines; it is not safe for
// concurrent use.
type Extractor struct {
	fps float64

	// Configuration, mutated only through the setter surface.
	motionThreshold int
	stableCap       uint32
	erosionLevel    int

	// Source geometry, fixed at construction.
	srcWidth  int
	srcHeight int

	// Downscaled geometry.
	width  int
	height int
	area   int
	size   int

	// Per-pixel state. current, reference, stable, and record are parallel:
	// entry p of each describes downscaled pixel p.
	current   *frames.Frame
	reference *frames.Frame
	stable    []uint32
	record    []uint32

	mask    *frames.Frame
	eroded  *frames.Frame
	scratch []byte
	offs    [8]pixelOffset

	firstFrame bool

	// Throughput counter, active only when benchmarking was requested.
	benchmarking  bool
	lastMark      time.Time
	framesCounted uint
	detectorFPS   uint
}

// New creates an extractor for a stream of srcWidth×srcHeight RGB frames at
// the given frame rate.
//
// Arguments:
// - srcWidth: Source frame width in pixels; must be at least the downscale ratio.
// - srcHeight: Source frame height in pixels; must be at least the downscale ratio.
// - fps: Source frame rate; must be positive. The default settle time is one
//   second, so the stability cap starts at ceil(fps) frames.
// - benchmark: Enables the per-second throughput counter exposed by DetectorFPS.
//
// Returns:
// - *Extractor: The ready-to-use extractor.
// - error: ErrOutOfRange (wrapped) if a precondition is violated.
func New(srcWidth, srcHeight int, fps float64, benchmark bool) (*Extractor, error) {
	if srcWidth < downscaleRatio || srcHeight < downscaleRatio {
		return nil, errors.Wrapf(ErrOutOfRange,
			"source dimensions %dx%d are below the %d pixel minimum",
			srcWidth, srcHeight, downscaleRatio)
	}
	if fps <= 0 {
		return nil, errors.Wrapf(ErrOutOfRange, "frame rate %v must be positive", fps)
	}

	e := &Extractor{
		fps:             fps,
		motionThreshold: defaultSensitivity,
		stableCap:       uint32(math.Ceil(fps)),
		erosionLevel:    defaultErosion,
		srcWidth:        srcWidth,
		srcHeight:       srcHeight,
		width:           srcWidth / downscaleRatio,
		height:          srcHeight / downscaleRatio,
		benchmarking:    benchmark,
		lastMark:        time.Now(),
	}
	e.area = e.width * e.height
	e.size = e.area * bytesPerPixel

	e.current = frames.NewUninitialized(e.width, e.height, bytesPerPixel)
	e.reference = frames.NewUninitialized(e.width, e.height, bytesPerPixel)
	e.mask = frames.NewUninitialized(e.width, e.height, bytesPerPixel)
	e.eroded = frames.NewUninitialized(e.width, e.height, bytesPerPixel)
	e.stable = make([]uint32, e.area)
	e.record = make([]uint32, e.area)
	e.scratch = make([]byte, e.size)
	e.offs = neighborOffsets(e.width)

	e.Reset()
	return e, nil
}

// pixelDiffers reports whether any channel of the two pixels differs by more
// than the motion threshold.
func (e *Extractor) pixelDiffers(a, b []byte) bool {
	for c := 0; c < bytesPerPixel; c++ {
		d := int(a[c]) - int(b[c])
		if d < 0 {
			d = -d
		}
		if d > e.motionThreshold {
			return true
		}
	}
	return false
}

// GenerateMotionMask analyzes one frame and returns the motion mask for it.
//
// The frame must match the source dimensions given at construction and carry
// 3 bytes per pixel. The returned mask is owned by the extractor: byte 0 of
// each pixel is 255 where motion was detected and 0 elsewhere, and the
// contents are only valid until the next call.
//
// Frames must be delivered in presentation order. Skipped or reordered frames
// are not detected; they silently degrade the background model.
//
// Arguments:
// - frame: The source RGB frame to analyze.
//
// Returns:
// - *frames.Frame: The extractor-owned mask, width/downscaleRatio by
//   height/downscaleRatio pixels.
// - error: frames.ErrDimensionMismatch (wrapped) if the frame geometry is wrong.
func (e *Extractor) GenerateMotionMask(frame *frames.Frame) (*frames.Frame, error) {
	if frame.Width() != e.srcWidth || frame.Height() != e.srcHeight || frame.Depth() != bytesPerPixel {
		return nil, errors.Wrapf(frames.ErrDimensionMismatch,
			"extractor expects %dx%dx%d frames, got %dx%dx%d",
			e.srcWidth, e.srcHeight, bytesPerPixel,
			frame.Width(), frame.Height(), frame.Depth())
	}

	if e.benchmarking {
		now := time.Now()
		if now.Sub(e.lastMark) > time.Second {
			e.detectorFPS = e.framesCounted
			e.framesCounted = 0
			e.lastMark = now
		}
		e.framesCounted++
	}

	e.downscale(frame, e.scratch)

	// The first frame seeds both the current and reference images so a
	// screen-wide delta never forms. No motion is reported for it.
	if e.firstFrame {
		copy(e.current.Pix(), e.scratch)
		copy(e.reference.Pix(), e.scratch)
		for p := range e.stable {
			e.stable[p] = 0
			e.record[p] = 0
		}
		mask := e.mask.Pix()
		for off := 0; off < e.size; off += bytesPerPixel {
			mask[off] = 0
		}
		e.firstFrame = false
		return e.mask, nil
	}

	e.updateCurrent()
	e.promoteAndMark()

	if e.erosionLevel > 0 {
		e.erode()
		e.dilate()
	}
	return e.mask, nil
}

// updateCurrent is the first per-pixel pass: compare the downscaled input to
// the current estimate, resetting the stability counter on a significant
// change and nudging the estimate toward the input otherwise.
func (e *Extractor) updateCurrent() {
	cur := e.current.Pix()
	tmp := e.scratch
	for p, off := 0, 0; p < e.area; p, off = p+1, off+bytesPerPixel {
		tp := tmp[off : off+bytesPerPixel]
		cp := cur[off : off+bytesPerPixel]
		if e.pixelDiffers(tp, cp) {
			e.stable[p] = 0
			copy(cp, tp)
			continue
		}
		// The counter saturates one past the cap so a still run can strictly
		// exceed a capped record exactly once per frame.
		if e.stable[p] <= e.stableCap {
			e.stable[p]++
		}
		// Nudge each channel one step toward the input. The comparisons make
		// the byte arithmetic wrap-free: a decrement only happens above 0 and
		// an increment only below 255.
		for c := 0; c < bytesPerPixel; c++ {
			switch {
			case tp[c] > cp[c]:
				cp[c]++
			case tp[c] < cp[c]:
				cp[c]--
			}
		}
	}
}

// promoteAndMark is the second per-pixel pass: pixels that set a new
// stability record replace their background reference, and every pixel whose
// reference and current estimates differ significantly is marked moving.
func (e *Extractor) promoteAndMark() {
	cur := e.current.Pix()
	ref := e.reference.Pix()
	mask := e.mask.Pix()
	for p, off := 0, 0; p < e.area; p, off = p+1, off+bytesPerPixel {
		cp := cur[off : off+bytesPerPixel]
		rp := ref[off : off+bytesPerPixel]
		if e.stable[p] > e.record[p] {
			copy(rp, cp)
			e.record[p] = min(e.stable[p], e.stableCap)
		}
		if e.pixelDiffers(rp, cp) {
			mask[off] = 255
		} else {
			mask[off] = 0
		}
	}
}

// Reset zeroes the stability counters and records and arms the first-frame
// flag, so the next frame reinitializes the current and reference images.
func (e *Extractor) Reset() {
	for p := range e.stable {
		e.stable[p] = 0
		e.record[p] = 0
	}
	e.firstFrame = true
}

// DetectorFPS returns the number of masks generated during the last full
// wall-clock second. It reads zero unless the extractor was constructed with
// benchmarking enabled.
func (e *Extractor) DetectorFPS() uint { return e.detectorFPS }

// MaskWidth returns the width of the generated masks in pixels.
func (e *Extractor) MaskWidth() int { return e.width }

// MaskHeight returns the height of the generated masks in pixels.
func (e *Extractor) MaskHeight() int { return e.height }
