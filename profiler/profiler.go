// Package profiler - Lightweight runtime monitoring for long benchmark runs.
//
// A RuntimeProfiler samples the Go runtime in the background and prints a
// periodic status report: memory in use, GC activity, goroutine count, and
// whatever per-operation timings the host recorded. The benchmark tool runs
// one alongside a scenario sweep so a throughput regression can be traced to
// allocation pressure rather than guessed at.
package profiler

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Options configures a RuntimeProfiler. Zero fields fall back to defaults.
type Options struct {
	// ReportInterval is how often a status report is printed (default 2s).
	ReportInterval time.Duration
	// SampleInterval is how often runtime stats are sampled (default 250ms).
	SampleInterval time.Duration
	// MaxSamples bounds the per-operation sample history (default 1024).
	MaxSamples int
}

// RuntimeProfiler samples runtime statistics on a background goroutine and
// aggregates operation timings recorded by the host. All methods are safe
// for concurrent use.
type RuntimeProfiler struct {
	reportInterval time.Duration
	sampleInterval time.Duration
	maxSamples     int

	mu         sync.Mutex
	running    bool
	done       chan struct{}
	wg         sync.WaitGroup
	startTime  time.Time
	memStats   runtime.MemStats
	lastGC     uint32
	operations map[string]*timing
}

type timing struct {
	durations []time.Duration
	total     time.Duration
	min       time.Duration
	max       time.Duration
	count     int64
}

// New creates a profiler with the given options. It does not start sampling
// until Start is called.
func New(opts Options) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.SampleInterval == 0 {
		opts.SampleInterval = 250 * time.Millisecond
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 1024
	}
	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		operations:     make(map[string]*timing),
	}
}

// Start launches the background sampling and reporting loops. Calling Start
// on a running profiler is a no-op.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.running {
		return
	}
	rp.running = true
	rp.startTime = time.Now()
	rp.done = make(chan struct{})

	rp.wg.Add(1)
	go rp.loop()
}

// Stop halts sampling and waits for the background goroutine to finish. A
// final report is printed on the way out.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	close(rp.done)
	rp.mu.Unlock()

	rp.wg.Wait()
	rp.report()
}

// StartOperation begins timing a named operation and returns the function to
// call when it completes.
//
// Usage:
//
//	stop := prof.StartOperation("generate_mask")
//	mask, err := ex.GenerateMotionMask(frame)
//	stop()
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.record(name, time.Since(start))
	}
}

func (rp *RuntimeProfiler) record(name string, d time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	t, ok := rp.operations[name]
	if !ok {
		t = &timing{min: d, max: d}
		rp.operations[name] = t
	}
	t.durations = append(t.durations, d)
	if len(t.durations) > rp.maxSamples {
		t.total -= t.durations[0]
		t.durations = t.durations[1:]
	}
	t.total += d
	t.count++
	if d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
}

func (rp *RuntimeProfiler) loop() {
	defer rp.wg.Done()

	sample := time.NewTicker(rp.sampleInterval)
	defer sample.Stop()
	report := time.NewTicker(rp.reportInterval)
	defer report.Stop()

	for {
		select {
		case <-rp.done:
			return
		case <-sample.C:
			rp.mu.Lock()
			runtime.ReadMemStats(&rp.memStats)
			rp.mu.Unlock()
		case <-report.C:
			rp.report()
		}
	}
}

func (rp *RuntimeProfiler) report() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	fmt.Printf("[profiler %s] up %v | goroutines %d | heap %s | sys %s",
		time.Now().Format("15:04:05"),
		time.Since(rp.startTime).Truncate(time.Millisecond),
		runtime.NumGoroutine(),
		formatBytes(rp.memStats.HeapAlloc),
		formatBytes(rp.memStats.Sys))
	if rp.memStats.NumGC > rp.lastGC {
		fmt.Printf(" | gc +%d (%.3f%% cpu)",
			rp.memStats.NumGC-rp.lastGC, rp.memStats.GCCPUFraction*100)
		rp.lastGC = rp.memStats.NumGC
	}
	fmt.Println()

	names := make([]string, 0, len(rp.operations))
	for name := range rp.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := rp.operations[name]
		if len(t.durations) == 0 {
			continue
		}
		avg := t.total / time.Duration(len(t.durations))
		fmt.Printf("  %s: avg=%v min=%v max=%v count=%d\n",
			name,
			avg.Truncate(time.Microsecond),
			t.min.Truncate(time.Microsecond),
			t.max.Truncate(time.Microsecond),
			t.count)
	}
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
