// Package benchmark - Throughput and latency measurement for the motion
// extraction pipeline.
//
// A Suite plays synthetic video through an Extractor configured per
// Scenario and records how fast masks come out, how the per-frame latency
// is distributed, and what the run cost in memory. Results serialize to
// JSON and CSV for comparison across machines and revisions.
package benchmark

import (
	"time"

	"github.com/chewxy/math32"
)

// Metrics captures the outcome of one scenario run.
type Metrics struct {
	Scenario        Scenario       `json:"scenario"`
	Timestamp       time.Time      `json:"timestamp"`
	TotalDuration   time.Duration  `json:"total_duration"`
	FramesProcessed int            `json:"frames_processed"`
	FramesPerSecond float64        `json:"frames_per_second"`
	MotionFrames    int            `json:"motion_frames"`
	LatencyStats    LatencyMetrics `json:"latency_stats"`
	MemoryStats     MemoryMetrics  `json:"memory_stats"`
	CPUStats        CPUMetrics     `json:"cpu_stats"`
	ErrorRate       float64        `json:"error_rate"`
}

// LatencyMetrics summarizes the per-frame mask generation times of a run,
// in milliseconds.
type LatencyMetrics struct {
	MeanMs   float32 `json:"mean_ms"`
	StdDevMs float32 `json:"std_dev_ms"`
	MinMs    float32 `json:"min_ms"`
	MaxMs    float32 `json:"max_ms"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU int `json:"num_cpu"`
}

// ComputeLatencyStats reduces a run's per-frame latency samples to summary
// statistics. An empty sample set yields zeroed metrics.
func ComputeLatencyStats(samples []float32) LatencyMetrics {
	if len(samples) == 0 {
		return LatencyMetrics{}
	}

	var sum float32
	stats := LatencyMetrics{MinMs: samples[0], MaxMs: samples[0]}
	for _, s := range samples {
		sum += s
		if s < stats.MinMs {
			stats.MinMs = s
		}
		if s > stats.MaxMs {
			stats.MaxMs = s
		}
	}
	stats.MeanMs = sum / float32(len(samples))

	var sq float32
	for _, s := range samples {
		d := s - stats.MeanMs
		sq += d * d
	}
	stats.StdDevMs = math32.Sqrt(sq / float32(len(samples)))

	return stats
}
