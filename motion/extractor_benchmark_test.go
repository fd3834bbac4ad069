package motion

import (
	"fmt"
	"testing"

	"github.com/nvr-ai/go-motion/frames"
)

// alternatingFrames returns two frames that differ everywhere, so every
// benchmark iteration exercises the diff-and-reset branch as well as the
// morphology pass.
func alternatingFrames(width, height int) [2]*frames.Frame {
	a := frames.New(width, height, 3)
	b := frames.New(width, height, 3)
	apix, bpix := a.Pix(), b.Pix()
	for i := range apix {
		apix[i] = 40
		bpix[i] = 200
	}
	return [2]*frames.Frame{a, b}
}

func BenchmarkGenerateMotionMask(b *testing.B) {
	resolutions := []struct {
		width, height int
	}{
		{640, 480},
		{1280, 720},
		{1920, 1080},
	}

	for _, res := range resolutions {
		b.Run(fmt.Sprintf("static_%dx%d", res.width, res.height), func(b *testing.B) {
			ex, err := New(res.width, res.height, 30, false)
			if err != nil {
				b.Fatal(err)
			}
			frame := frames.New(res.width, res.height, 3)
			frame.Wipe(128)

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := ex.GenerateMotionMask(frame); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(fmt.Sprintf("alternating_%dx%d", res.width, res.height), func(b *testing.B) {
			ex, err := New(res.width, res.height, 30, false)
			if err != nil {
				b.Fatal(err)
			}
			pair := alternatingFrames(res.width, res.height)

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := ex.GenerateMotionMask(pair[i%2]); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDownscale(b *testing.B) {
	ex, err := New(1920, 1080, 30, false)
	if err != nil {
		b.Fatal(err)
	}
	frame := frames.New(1920, 1080, 3)
	frame.Wipe(99)
	dst := make([]byte, ex.MaskWidth()*ex.MaskHeight()*3)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ex.downscale(frame, dst)
	}
}

func BenchmarkMorphology(b *testing.B) {
	ex, err := New(1920, 1080, 30, false)
	if err != nil {
		b.Fatal(err)
	}
	// Checkerboard mask: every moving pixel has only its four diagonal
	// neighbors moving, so the first erode examines all eight neighbors of
	// each moving pixel and clears it. The mask is not restored between
	// iterations; from then on erode sees an empty mask and dilate examines
	// the full neighborhood of every pixel.
	pix := ex.mask.Pix()
	for p, off := 0, 0; off < len(pix); p, off = p+1, off+bytesPerPixel {
		if (p/ex.width+p%ex.width)%2 == 0 {
			pix[off] = 255
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ex.erode()
		ex.dilate()
	}
}
