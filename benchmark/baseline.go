package benchmark

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-motion/frames"
)

// Baseline is an OpenCV MOG2 background subtraction pipeline used as a
// reference point for the pure-Go extractor: same frames in, a comparable
// moving-pixel count out. It exists so scenario results can be judged
// against a widely deployed implementation rather than in isolation.
//
// The struct is stateful and reuses its matrices across frames. Always
// call Close when done to release the native resources.
type Baseline struct {
	input      gocv.Mat
	delta      gocv.Mat
	threshold  gocv.Mat
	kernel     gocv.Mat
	subtractor gocv.BackgroundSubtractorMOG2
}

// NewBaseline constructs a ready-to-use MOG2 baseline with a 3x3
// rectangular dilation kernel.
func NewBaseline() *Baseline {
	return &Baseline{
		input:      gocv.NewMat(),
		delta:      gocv.NewMat(),
		threshold:  gocv.NewMat(),
		kernel:     gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		subtractor: gocv.NewBackgroundSubtractorMOG2(),
	}
}

// Apply pushes one frame through subtraction, thresholding, and dilation
// and returns the number of pixels the baseline considers moving.
//
// Arguments:
// - frame: A 3-byte-per-pixel RGB frame.
//
// Returns:
// - int: Count of moving pixels in the baseline's mask.
// - error: An error if the frame cannot be wrapped or a pipeline stage
//   fails.
func (b *Baseline) Apply(frame *frames.Frame) (int, error) {
	mat, err := gocv.NewMatFromBytes(frame.Height(), frame.Width(), gocv.MatTypeCV8UC3, frame.Pix())
	if err != nil {
		return 0, errors.Wrap(err, "wrapping frame")
	}
	defer mat.Close()

	if err := b.subtractor.Apply(mat, &b.delta); err != nil {
		return 0, errors.Wrap(err, "subtracting background")
	}
	gocv.Threshold(b.delta, &b.threshold, 25, 255, gocv.ThresholdBinary)
	if err := gocv.Dilate(b.threshold, &b.threshold, b.kernel); err != nil {
		return 0, errors.Wrap(err, "dilating mask")
	}

	return gocv.CountNonZero(b.threshold), nil
}

// Close releases all native resources held by the baseline.
func (b *Baseline) Close() {
	b.input.Close()
	b.delta.Close()
	b.threshold.Close()
	b.kernel.Close()
	b.subtractor.Close()
}
