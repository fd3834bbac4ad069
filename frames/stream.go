package frames

// StreamFrame is a frame pulled from a video source, carrying the stream
// metadata that a bare pixel buffer does not have: the presentation timestamp
// in the source's time base.
type StreamFrame struct {
	*Frame
	pts int64
}

// NewStreamFrame wraps an existing frame with a presentation timestamp. The
// frame is not copied; the stream frame shares its storage.
func NewStreamFrame(f *Frame, pts int64) *StreamFrame {
	return &StreamFrame{Frame: f, pts: pts}
}

// PTS returns the presentation timestamp of the frame in the source's time
// base. The motion extractor never interprets this value; it is carried
// through for the caller.
func (s *StreamFrame) PTS() int64 { return s.pts }
