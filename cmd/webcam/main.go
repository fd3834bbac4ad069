// Live demo: run the motion extractor against a local capture device and
// display the mask, scaled up to the capture size, in a window. The mask
// bytes are shown as BGR, so motion regions show up blue; everything the
// background model has absorbed stays black.
package main

import (
	"flag"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-motion/frames"
	"github.com/nvr-ai/go-motion/motion"
)

func main() {
	var (
		deviceID     int
		fps          float64
		sensitivity  int
		settleTime   float64
		erosionLevel int
	)
	flag.IntVar(&deviceID, "device", 0, "Video capture device ID")
	flag.Float64Var(&fps, "fps", 30, "Capture frame rate assumed for the settle-time conversion")
	flag.IntVar(&sensitivity, "sensitivity", 26, "Per-channel difference threshold")
	flag.Float64Var(&settleTime, "settle", 1, "Seconds a region must hold still to join the background")
	flag.IntVar(&erosionLevel, "erosion", 5, "Neighbors required to survive erosion; 0 disables morphology")
	flag.Parse()

	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		fmt.Printf("Error opening capture device %d: %v\n", deviceID, err)
		return
	}
	defer webcam.Close()

	window := gocv.NewWindow("Motion Mask")
	defer window.Close()

	img := gocv.NewMat()
	defer img.Close()

	// The extractor wants to know the frame geometry up front, so pull one
	// frame before constructing it.
	if ok := webcam.Read(&img); !ok || img.Empty() {
		fmt.Printf("Cannot read device %d\n", deviceID)
		return
	}

	ex, err := motion.New(img.Cols(), img.Rows(), fps, true)
	if err != nil {
		fmt.Printf("Error creating extractor: %v\n", err)
		return
	}
	if err := ex.SetSensitivity(sensitivity); err != nil {
		fmt.Println(err)
		return
	}
	if err := ex.SetSettleTime(settleTime); err != nil {
		fmt.Println(err)
		return
	}
	if err := ex.SetErosion(erosionLevel); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("start reading camera device: %v (%dx%d, mask %dx%d)\n",
		deviceID, img.Cols(), img.Rows(), ex.MaskWidth(), ex.MaskHeight())
	for {
		if ok := webcam.Read(&img); !ok {
			fmt.Printf("cannot read device %v\n", deviceID)
			return
		}
		if img.Empty() {
			continue
		}

		// The extractor compares channels symmetrically, so the Mat's BGR
		// order can be fed through without a conversion pass.
		pixels, err := img.DataPtrUint8()
		if err != nil {
			fmt.Printf("cannot access frame pixels: %v\n", err)
			return
		}
		frame := frames.NewView(pixels, img.Cols(), img.Rows(), 3)

		mask, err := ex.GenerateMotionMask(frame)
		if err != nil {
			fmt.Printf("mask generation failed: %v\n", err)
			return
		}

		moving := 0
		pix := mask.Pix()
		for off := 0; off < len(pix); off += mask.Depth() {
			if pix[off] != 0 {
				moving++
			}
		}
		fmt.Printf("moving pixels: %d | detector FPS: %d\n", moving, ex.DetectorFPS())

		display, err := gocv.NewMatFromBytes(mask.Height(), mask.Width(), gocv.MatTypeCV8UC3, mask.Pix())
		if err != nil {
			fmt.Printf("cannot wrap mask: %v\n", err)
			return
		}
		gocv.Resize(display, &display, image.Pt(img.Cols(), img.Rows()), 0, 0, gocv.InterpolationNearestNeighbor)
		window.IMShow(display)
		display.Close()

		if window.WaitKey(1) == 27 {
			return
		}
	}
}
