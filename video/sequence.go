package video

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motion/frames"
	"github.com/nvr-ai/go-motion/util"
)

// Sequence reads a directory of numbered still images as a video stream.
// Every frame is decoded lazily on NextFrame; frames whose dimensions
// disagree with the first frame are rescaled to match so the whole stream
// presents one geometry.
type Sequence struct {
	streamInfo

	files []util.FrameFile
	fps   float64

	index   int
	current *frames.StreamFrame
}

// NewSequence opens the sequence stored in dir and plays it back at the
// given frame rate.
//
// Arguments:
// - dir: Directory of still images named with trailing frame numbers.
// - fps: Playback frame rate; must be positive.
//
// Returns:
// - *Sequence: The ready source.
// - error: An error if the rate is not positive, the directory cannot be
//   read, or it contains no usable images.
func NewSequence(dir string, fps float64) (*Sequence, error) {
	if fps <= 0 {
		return nil, errors.Errorf("video: sequence frame rate %v must be positive", fps)
	}
	files, err := util.LoadFrameFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("video: no image files in %s", dir)
	}
	return &Sequence{files: files, fps: fps}, nil
}

// NextFrame decodes and returns the next still in the sequence.
func (s *Sequence) NextFrame() (*frames.StreamFrame, error) {
	if s.index >= len(s.files) {
		return nil, errors.Wrapf(ErrEndOfStream, "after %d frames", len(s.files))
	}

	file := s.files[s.index]
	img, _, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", file.Path)
	}

	if s.width != 0 {
		b := img.Bounds()
		if b.Dx() != s.width || b.Dy() != s.height {
			img = resize.Resize(uint(s.width), uint(s.height), img, resize.Bilinear)
		}
	}

	frame := frames.FromImage(img)
	s.set(frame.Width(), frame.Height(), frame.Depth())
	s.current = frames.NewStreamFrame(frame, s.timestampAt(s.index))
	s.index++
	return s.current, nil
}

// CurrentFrame returns the most recently decoded frame without advancing.
func (s *Sequence) CurrentFrame() (*frames.StreamFrame, error) {
	if s.current == nil {
		return nil, errors.Wrap(ErrNoFrame, "sequence has not been read yet")
	}
	return s.current, nil
}

// FPS returns the playback frame rate.
func (s *Sequence) FPS() float64 { return s.fps }

// Length returns the sequence length in 90 kHz ticks.
func (s *Sequence) Length() int64 {
	return s.timestampAt(len(s.files))
}

// Seek repositions the sequence so the next frame delivered is the first
// one whose timestamp is at or after ts.
func (s *Sequence) Seek(ts int64) error {
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
func (s *Sequence) DurationToTimestamp(d time.Duration) int64 {
	return int64(d.Seconds() * timeBase)
}

// TimestampToDuration converts 90 kHz ticks to a wall-clock duration.
func (s *Sequence) TimestampToDuration(ts int64) time.Duration {
	return time.Duration(float64(ts) / timeBase * float64(time.Second))
}

func (s *Sequence) timestampAt(index int) int64 {
	return int64(float64(index) / s.fps * timeBase)
}
