package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-motion/frames"
)

// uniformFrame builds a width×height RGB frame filled with one color.
func uniformFrame(width, height int, r, g, b byte) *frames.Frame {
	f := frames.New(width, height, 3)
	pix := f.Pix()
	for off := 0; off < len(pix); off += 3 {
		pix[off+0] = r
		pix[off+1] = g
		pix[off+2] = b
	}
	return f
}

// newTestExtractor builds an extractor with morphology disabled so the raw
// per-pixel mask is observable.
func newTestExtractor(t *testing.T, width, height int, fps float64) *Extractor {
	t.Helper()
	ex, err := New(width, height, fps, false)
	require.NoError(t, err)
	require.NoError(t, ex.SetErosion(0))
	return ex
}

func feed(t *testing.T, ex *Extractor, frame *frames.Frame) *frames.Frame {
	t.Helper()
	mask, err := ex.GenerateMotionMask(frame)
	require.NoError(t, err)
	return mask
}

// requireMaskUniform asserts that byte 0 of every mask pixel equals value.
func requireMaskUniform(t *testing.T, mask *frames.Frame, value byte) {
	t.Helper()
	pix := mask.Pix()
	for off := 0; off < len(pix); off += mask.Depth() {
		require.Equal(t, value, pix[off], "mask byte 0 at offset %d", off)
	}
}

func TestNewRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		fps    float64
	}{
		{name: "width_below_ratio", width: 2, height: 6, fps: 30},
		{name: "height_below_ratio", width: 6, height: 2, fps: 30},
		{name: "zero_fps", width: 6, height: 6, fps: 0},
		{name: "negative_fps", width: 6, height: 6, fps: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.height, tt.fps, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}

func TestGenerateMotionMaskRejectsWrongDimensions(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 30)
	_, err := ex.GenerateMotionMask(frames.New(9, 9, 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, frames.ErrDimensionMismatch)

	// The extractor stays usable after a rejected frame.
	mask := feed(t, ex, uniformFrame(6, 6, 100, 100, 100))
	requireMaskUniform(t, mask, 0)
}

func TestFirstFrameIsSilent(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 30)
	mask := feed(t, ex, uniformFrame(6, 6, 250, 10, 80))
	requireMaskUniform(t, mask, 0)
}

func TestStaticScene(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 30)
	frame := uniformFrame(6, 6, 100, 100, 100)

	for i := 0; i < 5; i++ {
		mask := feed(t, ex, frame)
		requireMaskUniform(t, mask, 0)
	}
	for p := range ex.stable {
		assert.Equal(t, uint32(4), ex.stable[p], "stable at pixel %d", p)
		assert.Equal(t, uint32(4), ex.record[p], "record at pixel %d", p)
	}
}

func TestSuddenChange(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 30)
	still := uniformFrame(6, 6, 100, 100, 100)
	for i := 0; i < 5; i++ {
		feed(t, ex, still)
	}

	mask := feed(t, ex, uniformFrame(6, 6, 200, 100, 100))
	requireMaskUniform(t, mask, 255)

	cur := ex.current.Pix()
	for p := range ex.stable {
		assert.Equal(t, uint32(0), ex.stable[p], "stable at pixel %d", p)
		assert.Equal(t, uint32(4), ex.record[p], "record at pixel %d", p)
		assert.Equal(t, byte(200), cur[p*3+0])
		assert.Equal(t, byte(100), cur[p*3+1])
		assert.Equal(t, byte(100), cur[p*3+2])
	}
}

func TestSlowDriftBelowThreshold(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 30)
	feed(t, ex, uniformFrame(6, 6, 100, 100, 100))

	// Each frame raises channel 0 by one; the nudge keeps the current
	// estimate within one step of the input, so nothing ever crosses the
	// threshold.
	prevStable := make([]uint32, len(ex.stable))
	for step := 1; step <= 30; step++ {
		mask := feed(t, ex, uniformFrame(6, 6, byte(100+step), 100, 100))
		requireMaskUniform(t, mask, 0)

		cur := ex.current.Pix()
		for p := range ex.stable {
			require.Greater(t, ex.stable[p], prevStable[p], "stable must rise at pixel %d", p)
			require.Equal(t, byte(100+step), cur[p*3+0], "current channel 0 tracks the drift")
			prevStable[p] = ex.stable[p]
		}
	}
}

func TestReferencePromotion(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 30)
	frameA := uniformFrame(6, 6, 100, 100, 100)
	frameB := uniformFrame(6, 6, 140, 100, 100)

	for i := 0; i < 30; i++ {
		feed(t, ex, frameA)
	}

	mask := feed(t, ex, frameB)
	requireMaskUniform(t, mask, 255)

	// The prior record was 29 stable frames, so the 30th identical B frame
	// sets a new record, promotes B into the reference, and clears the mask.
	var settled *frames.Frame
	for i := 0; i < 60; i++ {
		settled = feed(t, ex, frameB)
	}
	requireMaskUniform(t, settled, 0)

	ref := ex.reference.Pix()
	for p := 0; p < ex.area; p++ {
		assert.Equal(t, byte(140), ref[p*3+0], "reference channel 0 at pixel %d", p)
	}
}

func TestSettleCapLocksBackground(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 30)
	require.NoError(t, ex.SetSettleTime(2))
	require.EqualValues(t, 60, ex.stableCap)

	frameA := uniformFrame(6, 6, 100, 100, 100)
	frameB := uniformFrame(6, 6, 180, 100, 100)

	// One seeding frame plus 60 still frames pins the record at the cap.
	for i := 0; i < 61; i++ {
		feed(t, ex, frameA)
	}
	for p := range ex.record {
		require.Equal(t, uint32(60), ex.record[p])
	}

	mask := feed(t, ex, frameB)
	requireMaskUniform(t, mask, 255)
	for p := range ex.record {
		require.Equal(t, uint32(60), ex.record[p], "a single change must not move the record")
	}

	// The next still run has to strictly exceed the capped record: motion is
	// still reported through the 60th copy and stops at the 61st.
	for i := 0; i < 60; i++ {
		mask = feed(t, ex, frameB)
		requireMaskUniform(t, mask, 255)
	}
	mask = feed(t, ex, frameB)
	requireMaskUniform(t, mask, 0)
	for p := range ex.record {
		assert.Equal(t, uint32(60), ex.record[p], "record stays clamped at the cap")
	}
}

func TestRecordNeverExceedsCap(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 2)
	frame := uniformFrame(6, 6, 100, 100, 100)
	for i := 0; i < 20; i++ {
		feed(t, ex, frame)
		for p := range ex.record {
			require.LessOrEqual(t, ex.record[p], ex.stableCap)
		}
	}
}

func TestMaskCodomain(t *testing.T) {
	ex, err := New(12, 12, 30, false)
	require.NoError(t, err)

	inputs := []*frames.Frame{
		uniformFrame(12, 12, 100, 100, 100),
		uniformFrame(12, 12, 200, 50, 25),
		uniformFrame(12, 12, 0, 255, 0),
		uniformFrame(12, 12, 200, 50, 25),
	}
	for _, frame := range inputs {
		mask := feed(t, ex, frame)
		pix := mask.Pix()
		for off := 0; off < len(pix); off += mask.Depth() {
			require.Contains(t, []byte{0, 255}, pix[off])
		}
	}
}

func TestRepeatedIdenticalFramesAreQuiet(t *testing.T) {
	ex := newTestExtractor(t, 9, 9, 30)
	frame := uniformFrame(9, 9, 77, 12, 240)

	for i := 0; i < 10; i++ {
		mask := feed(t, ex, frame)
		requireMaskUniform(t, mask, 0)
		for p := range ex.stable {
			require.Equal(t, uint32(i), ex.stable[p])
		}
	}
}

func TestSetterMatchesFreshConstruction(t *testing.T) {
	dirty := newTestExtractor(t, 6, 6, 30)
	for i := 0; i < 10; i++ {
		feed(t, dirty, uniformFrame(6, 6, byte(40+i*20), 10, 10))
	}
	require.NoError(t, dirty.SetSensitivity(40))

	fresh := newTestExtractor(t, 6, 6, 30)
	require.NoError(t, fresh.SetSensitivity(40))

	// Both must now behave identically on the same frame sequence.
	sequence := []*frames.Frame{
		uniformFrame(6, 6, 100, 100, 100),
		uniformFrame(6, 6, 100, 100, 100),
		uniformFrame(6, 6, 150, 100, 100),
		uniformFrame(6, 6, 150, 100, 100),
	}
	for i, frame := range sequence {
		maskDirty := feed(t, dirty, frame)
		maskFresh := feed(t, fresh, frame)
		assert.Equal(t, maskFresh.Pix(), maskDirty.Pix(), "masks diverge at frame %d", i)
	}
}

func TestResetArmsFirstFrame(t *testing.T) {
	ex := newTestExtractor(t, 6, 6, 30)
	feed(t, ex, uniformFrame(6, 6, 100, 100, 100))
	feed(t, ex, uniformFrame(6, 6, 100, 100, 100))

	ex.Reset()
	for p := range ex.stable {
		require.Equal(t, uint32(0), ex.stable[p])
		require.Equal(t, uint32(0), ex.record[p])
	}

	// A wildly different frame right after a reset reseeds the model instead
	// of reporting motion.
	mask := feed(t, ex, uniformFrame(6, 6, 255, 255, 255))
	requireMaskUniform(t, mask, 0)
}

func TestDetectorFPSRequiresBenchmarking(t *testing.T) {
	ex, err := New(6, 6, 30, false)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		feed(t, ex, uniformFrame(6, 6, 100, 100, 100))
	}
	assert.EqualValues(t, 0, ex.DetectorFPS())
}

func TestMaskGeometry(t *testing.T) {
	ex, err := New(20, 11, 30, false)
	require.NoError(t, err)
	assert.Equal(t, 6, ex.MaskWidth())
	assert.Equal(t, 3, ex.MaskHeight())

	mask := feed(t, ex, frames.New(20, 11, 3))
	assert.Equal(t, 6, mask.Width())
	assert.Equal(t, 3, mask.Height())
	assert.Equal(t, 3, mask.Depth())
}
