// Package video - Frame sources for the motion extraction pipeline.
//
// A Source delivers StreamFrames in presentation order together with the
// stream metadata the extractor and its callers need: frame rate, stream
// length, and conversions between wall-clock durations and the source's
// internal timestamp base. Two implementations are provided: a deterministic
// synthetic generator for tests and benchmarks, and a still-image sequence
// reader for recorded footage dumped to a directory.
package video

import (
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motion/frames"
)

var (
	// ErrEndOfStream is returned by NextFrame when the source has no more
	// frames to deliver.
	ErrEndOfStream = errors.New("video: end of stream")

	// ErrNoFrame is returned by geometry accessors before the first
	// successful NextFrame call, and by CurrentFrame when nothing has been
	// read yet.
	ErrNoFrame = errors.New("video: no frame has been read yet")
)

// Source is a sequential reader of video frames.
//
// Implementations own the frames they hand out; a returned StreamFrame is
// valid until the next NextFrame or Seek call on the same source. Sources
// are not safe for concurrent use.
type Source interface {
	// NextFrame advances the stream and returns the new frame, or
	// ErrEndOfStream when the stream is exhausted.
	NextFrame() (*frames.StreamFrame, error)

	// CurrentFrame returns the frame most recently produced by NextFrame
	// without advancing, or ErrNoFrame before the first read.
	CurrentFrame() (*frames.StreamFrame, error)

	// FPS returns the stream's frame rate in frames per second.
	FPS() float64

	// Length returns the total stream length in the source's timestamp
	// base, or 0 when the length is unknown.
	Length() int64

	// Seek repositions the stream so the next NextFrame call delivers the
	// frame at or after the given timestamp.
	Seek(ts int64) error

	// DurationToTimestamp converts a wall-clock duration to the source's
	// timestamp base.
	DurationToTimestamp(d time.Duration) int64

	// TimestampToDuration converts a timestamp in the source's base to a
	// wall-clock duration.
	TimestampToDuration(ts int64) time.Duration

	StreamInfo
}

// StreamInfo exposes the geometry of a stream's frames. The values are only
// known once a frame has been decoded, so every accessor can fail with
// ErrNoFrame.
type StreamInfo interface {
	// FrameWidth returns the width of the stream's frames in pixels.
	FrameWidth() (int, error)

	// FrameHeight returns the height of the stream's frames in pixels.
	FrameHeight() (int, error)

	// FrameDepth returns the bytes per pixel of the stream's frames.
	FrameDepth() (int, error)

	// AspectRatio returns the display aspect ratio of the stream's frames.
	AspectRatio() (float64, error)
}

// streamInfo is the shared StreamInfo implementation: zero geometry until a
// source records its first decoded frame.
type streamInfo struct {
	width  int
	height int
	depth  int
	aspect float64
}

func (s *streamInfo) set(width, height, depth int) {
	s.width = width
	s.height = height
	s.depth = depth
	s.aspect = float64(width) / float64(height)
}

// FrameWidth returns the width of the stream's frames in pixels.
func (s *streamInfo) FrameWidth() (int, error) {
	if s.width == 0 {
		return 0, errors.Wrap(ErrNoFrame, "frame width is not yet known")
	}
	return s.width, nil
}

// FrameHeight returns the height of the stream's frames in pixels.
func (s *streamInfo) FrameHeight() (int, error) {
	if s.height == 0 {
		return 0, errors.Wrap(ErrNoFrame, "frame height is not yet known")
	}
	return s.height, nil
}

// FrameDepth returns the bytes per pixel of the stream's frames.
func (s *streamInfo) FrameDepth() (int, error) {
	if s.depth == 0 {
		return 0, errors.Wrap(ErrNoFrame, "frame depth is not yet known")
	}
	return s.depth, nil
}

// AspectRatio returns the display aspect ratio of the stream's frames.
func (s *streamInfo) AspectRatio() (float64, error) {
	if s.aspect == 0 {
		return 0, errors.Wrap(ErrNoFrame, "aspect ratio is not yet known")
	}
	return s.aspect, nil
}
