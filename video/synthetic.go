package video

import (
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motion/frames"
)

// timeBase is the timestamp resolution the built-in sources use, matching
// the 90 kHz clock common in transport streams.
const timeBase = 90000

// Synthetic generates a deterministic test pattern: a uniform gray field
// with a white square that advances one pixel per frame, wrapping at the
// right edge. Identical construction parameters always produce identical
// frames, which makes the source suitable for repeatable benchmarks and
// golden tests.
type Synthetic struct {
	streamInfo

	fps        float64
	frameCount int
	boxSize    int

	index   int
	frame   *frames.Frame
	current *frames.StreamFrame
}

// NewSynthetic creates a synthetic source of frameCount RGB frames of the
// given geometry.
//
// Arguments:
// - width: Frame width in pixels; must be positive.
// - height: Frame height in pixels; must be positive.
// - fps: Frame rate; must be positive.
// - frameCount: Total frames the source will deliver; must be positive.
//
// Returns:
// - *Synthetic: The ready source.
// - error: An error if a dimension or the frame rate is not positive.
func NewSynthetic(width, height int, fps float64, frameCount int) (*Synthetic, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("video: synthetic dimensions %dx%d must be positive", width, height)
	}
	if fps <= 0 {
		return nil, errors.Errorf("video: synthetic frame rate %v must be positive", fps)
	}
	if frameCount <= 0 {
		return nil, errors.Errorf("video: synthetic frame count %d must be positive", frameCount)
	}

	boxSize := height / 4
	if boxSize < 1 {
		boxSize = 1
	}
	return &Synthetic{
		fps:        fps,
		frameCount: frameCount,
		boxSize:    boxSize,
		frame:      frames.New(width, height, 3),
	}, nil
}

// NextFrame renders the next frame of the pattern. The returned frame
// shares the source's buffer and is overwritten by the following call.
func (s *Synthetic) NextFrame() (*frames.StreamFrame, error) {
	if s.index >= s.frameCount {
		return nil, errors.Wrapf(ErrEndOfStream, "after %d frames", s.frameCount)
	}

	s.render(s.index)
	s.set(s.frame.Width(), s.frame.Height(), s.frame.Depth())
	s.current = frames.NewStreamFrame(s.frame, s.timestampAt(s.index))
	s.index++
	return s.current, nil
}

// CurrentFrame returns the most recently rendered frame without advancing.
func (s *Synthetic) CurrentFrame() (*frames.StreamFrame, error) {
	if s.current == nil {
		return nil, errors.Wrap(ErrNoFrame, "synthetic source has not rendered yet")
	}
	return s.current, nil
}

// FPS returns the frame rate the source was created with.
func (s *Synthetic) FPS() float64 { return s.fps }

// Length returns the stream length in 90 kHz ticks.
func (s *Synthetic) Length() int64 {
	return s.timestampAt(s.frameCount)
}

// Seek repositions the pattern so the next frame delivered is the first one
// whose timestamp is at or after ts.
func (s *Synthetic) Seek(ts int64) error {
	if ts < 0 || ts > s.Length() {
		return errors.Errorf("video: seek target %d is outside [0, %d]", ts, s.Length())
	}
	idx := int(float64(ts) / float64(timeBase) * s.fps)
	if s.timestampAt(idx) < ts {
		idx++
	}
	s.index = idx
	return nil
}

// DurationToTimestamp converts a wall-clock duration to 90 kHz ticks.
func (s *Synthetic) DurationToTimestamp(d time.Duration) int64 {
	return int64(d.Seconds() * timeBase)
}

// TimestampToDuration converts 90 kHz ticks to a wall-clock duration.
func (s *Synthetic) TimestampToDuration(ts int64) time.Duration {
	return time.Duration(float64(ts) / timeBase * float64(time.Second))
}

func (s *Synthetic) timestampAt(index int) int64 {
	return int64(float64(index) / s.fps * timeBase)
}

// render draws frame number index: gray background, white box whose left
// edge sits at index modulo the drawable width.
func (s *Synthetic) render(index int) {
	s.frame.Wipe(128)

	w := s.frame.Width()
	h := s.frame.Height()
	span := w - s.boxSize
	if span < 1 {
		span = 1
	}
	left := index % span
	top := (h - s.boxSize) / 2

	for y := top; y < top+s.boxSize && y < h; y++ {
		for x := left; x < left+s.boxSize && x < w; x++ {
			px := s.frame.Pixel(x, y)
			px[0] = 255
			px[1] = 255
			px[2] = 255
		}
	}
}
