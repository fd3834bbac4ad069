package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motion/benchmark"
	"github.com/nvr-ai/go-motion/frames"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/video"
)

const (
	// DefaultOutputDir is where mask images land when -save-masks is set.
	DefaultOutputDir = "motion_masks"
)

func main() {
	var (
		sequenceDir  string
		fps          float64
		frameCount   int
		sensitivity  int
		settleTime   float64
		erosionLevel int
		settingsPath string
		outputDir    string
		saveMasks    bool
		runBenchmark bool
	)
	flag.StringVar(&sequenceDir, "dir", "", "Directory of numbered still images; empty runs the synthetic pattern")
	flag.Float64Var(&fps, "fps", 30, "Frame rate of the source")
	flag.IntVar(&frameCount, "frames", 300, "Frame count for the synthetic source")
	flag.IntVar(&sensitivity, "sensitivity", 26, "Per-channel difference threshold")
	flag.Float64Var(&settleTime, "settle", 1, "Seconds a region must hold still to join the background")
	flag.IntVar(&erosionLevel, "erosion", 5, "Neighbors required to survive erosion; 0 disables morphology")
	flag.StringVar(&settingsPath, "settings", "", "JSON settings file; loaded if present, written with the active settings otherwise")
	flag.StringVar(&outputDir, "output-dir", DefaultOutputDir, "Output directory for saved masks")
	flag.BoolVar(&saveMasks, "save-masks", false, "Write each motion mask that has moving pixels as a PNG")
	flag.BoolVar(&runBenchmark, "benchmark", false, "Run the quick benchmark scenarios and exit")
	flag.Parse()

	if runBenchmark {
		suite := benchmark.NewSuite("benchmark_results")
		suite.AddScenarioSet(benchmark.QuickScenarios())
		if err := suite.RunAllScenarios(context.Background()); err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
		return
	}

	src, err := openSource(sequenceDir, fps, frameCount)
	if err != nil {
		log.Fatalf("Error opening source: %v", err)
	}

	first, err := src.NextFrame()
	if err != nil {
		log.Fatalf("Error reading first frame: %v", err)
	}

	ex, err := motion.New(first.Width(), first.Height(), src.FPS(), true)
	if err != nil {
		log.Fatalf("Error creating extractor: %v", err)
	}
	if err := configure(ex, sensitivity, settleTime, erosionLevel, settingsPath); err != nil {
		log.Fatalf("Error configuring extractor: %v", err)
	}

	if saveMasks {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			log.Fatalf("Error creating output directory: %v", err)
		}
	}

	settings := ex.Settings()
	fmt.Printf("Motion Extraction Started\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("Source: %s\n", func() string {
		if sequenceDir != "" {
			return sequenceDir
		}
		return fmt.Sprintf("synthetic (%d frames)", frameCount)
	}())
	fmt.Printf("Frame size: %dx%d @ %.1f fps\n", first.Width(), first.Height(), src.FPS())
	fmt.Printf("Mask size: %dx%d\n", ex.MaskWidth(), ex.MaskHeight())
	fmt.Printf("Sensitivity: %d\n", settings.Sensitivity)
	fmt.Printf("Settle time: %.2fs\n", settings.SettleTime)
	fmt.Printf("Erosion level: %d\n", settings.ErosionLevel)
	fmt.Printf("=====================================\n\n")

	frame := first
	for counter := 0; ; counter++ {
		mask, err := ex.GenerateMotionMask(frame.Frame)
		if err != nil {
			log.Fatalf("Error on frame %d: %v", counter, err)
		}

		moving := countMoving(mask)
		fmt.Printf("[Frame %d] PTS: %d | Detector FPS: %d | Moving pixels: %d\n",
			counter, frame.PTS(), ex.DetectorFPS(), moving)

		if saveMasks && moving > 0 {
			path := filepath.Join(outputDir, fmt.Sprintf("mask_%06d.png", counter))
			if err := writeMask(mask, path); err != nil {
				fmt.Printf("Failed to save mask: %v\n", err)
			}
		}

		frame, err = src.NextFrame()
		if errors.Is(err, video.ErrEndOfStream) {
			fmt.Printf("\nEnd of stream after %d frames\n", counter+1)
			break
		}
		if err != nil {
			log.Fatalf("Error reading frame: %v", err)
		}
	}
}

// openSource picks the frame source the flags describe.
func openSource(dir string, fps float64, frameCount int) (video.Source, error) {
	if dir != "" {
		return video.NewSequence(dir, fps)
	}
	return video.NewSynthetic(640, 480, fps, frameCount)
}

// configure applies the command line tuning, then lets an optional settings
// file override it. A missing file is created from the active settings so
// the next run starts from the same place.
func configure(ex *motion.Extractor, sensitivity int, settleTime float64, erosionLevel int, settingsPath string) error {
	if err := ex.SetSensitivity(sensitivity); err != nil {
		return err
	}
	if err := ex.SetSettleTime(settleTime); err != nil {
		return err
	}
	if err := ex.SetErosion(erosionLevel); err != nil {
		return err
	}

	if settingsPath == "" {
		return nil
	}
	data, err := os.ReadFile(settingsPath)
	if os.IsNotExist(err) {
		saved, err := ex.SaveSettings()
		if err != nil {
			return err
		}
		return os.WriteFile(settingsPath, saved, 0o644)
	}
	if err != nil {
		return errors.Wrapf(err, "reading settings %s", settingsPath)
	}
	return ex.LoadSettings(data)
}

// countMoving returns the number of moving pixels in a mask.
func countMoving(mask *frames.Frame) int {
	pix := mask.Pix()
	count := 0
	for off := 0; off < len(pix); off += mask.Depth() {
		if pix[off] != 0 {
			count++
		}
	}
	return count
}

// writeMask saves the motion channel of a mask as a grayscale PNG.
func writeMask(mask *frames.Frame, path string) error {
	img := image.NewGray(image.Rect(0, 0, mask.Width(), mask.Height()))
	pix := mask.Pix()
	for p, off := 0, 0; off < len(pix); p, off = p+1, off+mask.Depth() {
		img.Pix[p] = pix[off]
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer file.Close()
	return errors.Wrap(png.Encode(file, img), "encoding mask")
}
