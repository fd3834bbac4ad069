package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motion/frames"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/video"
)

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios []Scenario
	outputDir string
	mu        sync.RWMutex
	results   []Metrics
}

// NewSuite creates a suite that writes its result files into outputDir.
func NewSuite(outputDir string) *Suite {
	return &Suite{
		outputDir: outputDir,
		scenarios: make([]Scenario, 0),
		results:   make([]Metrics, 0),
	}
}

// AddScenario adds a scenario to the suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of a set to the suite
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	for _, scenario := range set.Scenarios {
		bs.AddScenario(scenario)
	}
}

// newExtractor builds the extractor a scenario describes.
func newExtractor(scenario Scenario) (*motion.Extractor, error) {
	ex, err := motion.New(scenario.Width, scenario.Height, scenario.FPS, false)
	if err != nil {
		return nil, err
	}
	if err := ex.SetSensitivity(scenario.Sensitivity); err != nil {
		return nil, err
	}
	if err := ex.SetSettleTime(scenario.SettleTime); err != nil {
		return nil, err
	}
	if err := ex.SetErosion(scenario.ErosionLevel); err != nil {
		return nil, err
	}
	return ex, nil
}

// maskHasMotion reports whether any pixel of the mask is marked moving.
func maskHasMotion(mask *frames.Frame) bool {
	pix := mask.Pix()
	for off := 0; off < len(pix); off += mask.Depth() {
		if pix[off] != 0 {
			return true
		}
	}
	return false
}

// RunScenario executes a single scenario: warmup frames first, then timed
// mask generation over the synthetic stream, with memory captured around
// the timed section.
//
// Arguments:
// - ctx: Cancels the run between frames.
// - scenario: The configuration to measure.
//
// Returns:
// - *Metrics: The measured run, nil on setup failure.
// - error: An error if the extractor or source cannot be built, or ctx is
//   canceled.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*Metrics, error) {
	ex, err := newExtractor(scenario)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s: building extractor", scenario.Name)
	}
	src, err := video.NewSynthetic(scenario.Width, scenario.Height, scenario.FPS,
		scenario.WarmupRuns+scenario.FrameCount)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s: building source", scenario.Name)
	}

	metrics := &Metrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	// Warmup runs
	for i := 0; i < scenario.WarmupRuns; i++ {
		frame, err := src.NextFrame()
		if err != nil {
			break
		}
		if _, err := ex.GenerateMotionMask(frame.Frame); err != nil {
			continue // Skip warmup errors
		}
	}

	// Capture initial memory stats
	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	startTime := time.Now()
	latencies := make([]float32, 0, scenario.FrameCount)
	motionFrames := 0
	failures := 0

	for i := 0; i < scenario.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "scenario %s canceled", scenario.Name)
		}

		frame, err := src.NextFrame()
		if err != nil {
			failures++
			continue
		}

		frameStart := time.Now()
		mask, err := ex.GenerateMotionMask(frame.Frame)
		if err != nil {
			failures++
			continue
		}
		latencies = append(latencies, float32(time.Since(frameStart).Seconds()*1000))

		if maskHasMotion(mask) {
			motionFrames++
		}
	}

	totalDuration := time.Since(startTime)

	// Capture final memory stats
	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	metrics.TotalDuration = totalDuration
	metrics.FramesProcessed = len(latencies)
	metrics.FramesPerSecond = float64(len(latencies)) / totalDuration.Seconds()
	metrics.MotionFrames = motionFrames
	metrics.LatencyStats = ComputeLatencyStats(latencies)
	metrics.ErrorRate = float64(failures) / float64(scenario.FrameCount)

	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}

	metrics.CPUStats = CPUMetrics{
		NumCPU: runtime.NumCPU(),
	}

	return metrics, nil
}

// BaselineResult summarizes one run of the OpenCV MOG2 baseline over the
// same synthetic stream a scenario describes.
type BaselineResult struct {
	Scenario        Scenario      `json:"scenario"`
	TotalDuration   time.Duration `json:"total_duration"`
	FramesProcessed int           `json:"frames_processed"`
	FramesPerSecond float64       `json:"frames_per_second"`
	MotionFrames    int           `json:"motion_frames"`
}

// RunBaseline plays the scenario's synthetic stream through the OpenCV MOG2
// baseline instead of the extractor, so the two can be compared on equal
// input. Only throughput and motion counts are collected; the baseline has
// no equivalent of the extractor's tunable parameters.
func (bs *Suite) RunBaseline(ctx context.Context, scenario Scenario) (*BaselineResult, error) {
	src, err := video.NewSynthetic(scenario.Width, scenario.Height, scenario.FPS,
		scenario.WarmupRuns+scenario.FrameCount)
	if err != nil {
		return nil, errors.Wrapf(err, "baseline %s: building source", scenario.Name)
	}

	base := NewBaseline()
	defer base.Close()

	for i := 0; i < scenario.WarmupRuns; i++ {
		frame, err := src.NextFrame()
		if err != nil {
			break
		}
		if _, err := base.Apply(frame.Frame); err != nil {
			return nil, errors.Wrapf(err, "baseline %s: warmup", scenario.Name)
		}
	}

	result := &BaselineResult{Scenario: scenario}
	start := time.Now()
	for i := 0; i < scenario.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "baseline %s canceled", scenario.Name)
		}
		frame, err := src.NextFrame()
		if err != nil {
			break
		}
		moving, err := base.Apply(frame.Frame)
		if err != nil {
			return nil, errors.Wrapf(err, "baseline %s: frame %d", scenario.Name, i)
		}
		result.FramesProcessed++
		if moving > 0 {
			result.MotionFrames++
		}
	}
	result.TotalDuration = time.Since(start)
	result.FramesPerSecond = float64(result.FramesProcessed) / result.TotalDuration.Seconds()
	return result, nil
}

// RunAllScenarios executes every configured scenario in order and saves the
// results. A failing scenario is reported and skipped; it does not stop the
// run.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	bs.mu.Lock()
	scenarios := make([]Scenario, len(bs.scenarios))
	copy(scenarios, bs.scenarios)
	bs.mu.Unlock()

	for _, scenario := range scenarios {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			fmt.Printf("Scenario %s failed: %v\n", scenario.Name, err)
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		fmt.Printf("Scenario %s completed: %.2f FPS\n", scenario.Name, metrics.FramesPerSecond)
	}

	return bs.SaveResults()
}

// SaveResults persists the collected results as timestamped JSON and CSV
// files in the suite's output directory.
func (bs *Suite) SaveResults() error {
	bs.mu.RLock()
	results := make([]Metrics, len(bs.results))
	copy(results, bs.results)
	bs.mu.RUnlock()

	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return errors.Wrap(err, "writing results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := bs.saveSummaryCSV(summaryFile, results); err != nil {
		return errors.Wrap(err, "saving summary CSV")
	}

	fmt.Printf("Results saved to: %s\n", resultsFile)
	fmt.Printf("Summary saved to: %s\n", summaryFile)

	return nil
}

func (bs *Suite) saveSummaryCSV(filename string, results []Metrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	header := "Scenario,Resolution,FPS,Mean_Latency_ms,StdDev_Latency_ms,Motion_Frames,Avg_Memory_MB,Error_Rate\n"
	if _, err := file.WriteString(header); err != nil {
		return err
	}

	for _, result := range results {
		avgMemoryMB := float64(result.MemoryStats.AllocBytes) / (1024 * 1024)
		line := fmt.Sprintf("%s,%dx%d,%.2f,%.3f,%.3f,%d,%.2f,%.4f\n",
			result.Scenario.Name,
			result.Scenario.Width,
			result.Scenario.Height,
			result.FramesPerSecond,
			result.LatencyStats.MeanMs,
			result.LatencyStats.StdDevMs,
			result.MotionFrames,
			avgMemoryMB,
			result.ErrorRate,
		)
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}

	return nil
}

// GetResults returns all collected results
func (bs *Suite) GetResults() []Metrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]Metrics, len(bs.results))
	copy(results, bs.results)
	return results
}
