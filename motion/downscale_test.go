package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-motion/frames"
)

func TestDownscaleAveragesBlocks(t *testing.T) {
	ex, err := New(3, 3, 30, false)
	require.NoError(t, err)

	// One 3x3 block whose channel sums are easy to follow: channel 0 holds
	// 1..9 (sum 45), channel 1 a constant, channel 2 all zero.
	frame := frames.New(3, 3, 3)
	value := byte(1)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			px := frame.Pixel(x, y)
			px[0] = value
			px[1] = 90
			px[2] = 0
			value++
		}
	}

	dst := make([]byte, 3)
	ex.downscale(frame, dst)

	assert.Equal(t, byte(5), dst[0], "45 / 9")
	assert.Equal(t, byte(90), dst[1])
	assert.Equal(t, byte(0), dst[2])
}

func TestDownscaleTruncates(t *testing.T) {
	ex, err := New(3, 3, 30, false)
	require.NoError(t, err)

	// Eight zeros and one 255 sum to 255; 255/9 = 28.33 truncates to 28.
	frame := frames.New(3, 3, 3)
	frame.Pixel(1, 1)[0] = 255

	dst := make([]byte, 3)
	ex.downscale(frame, dst)
	assert.Equal(t, byte(28), dst[0])
}

func TestDownscaleIgnoresTrailingPixels(t *testing.T) {
	// 7x8 source yields a 2x2 analysis grid; the seventh column and the
	// seventh and eighth rows must not influence any output pixel.
	ex, err := New(7, 8, 30, false)
	require.NoError(t, err)
	require.Equal(t, 2, ex.MaskWidth())
	require.Equal(t, 2, ex.MaskHeight())

	frame := uniformFrame(7, 8, 100, 100, 100)
	for y := 0; y < 8; y++ {
		px := frame.Pixel(6, y)
		px[0], px[1], px[2] = 255, 255, 255
	}
	for x := 0; x < 7; x++ {
		for y := 6; y < 8; y++ {
			px := frame.Pixel(x, y)
			px[0], px[1], px[2] = 255, 255, 255
		}
	}

	dst := make([]byte, 2*2*3)
	ex.downscale(frame, dst)
	for i, v := range dst {
		assert.Equal(t, byte(100), v, "byte %d", i)
	}
}

func TestDownscaleGeometryFollowsSource(t *testing.T) {
	tests := []struct {
		srcW, srcH   int
		maskW, maskH int
	}{
		{srcW: 3, srcH: 3, maskW: 1, maskH: 1},
		{srcW: 6, srcH: 6, maskW: 2, maskH: 2},
		{srcW: 640, srcH: 480, maskW: 213, maskH: 160},
		{srcW: 1920, srcH: 1080, maskW: 640, maskH: 360},
	}
	for _, tt := range tests {
		ex, err := New(tt.srcW, tt.srcH, 30, false)
		require.NoError(t, err)
		assert.Equal(t, tt.maskW, ex.MaskWidth(), "%dx%d", tt.srcW, tt.srcH)
		assert.Equal(t, tt.maskH, ex.MaskHeight(), "%dx%d", tt.srcW, tt.srcH)
	}
}
