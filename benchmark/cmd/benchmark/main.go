package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/nvr-ai/go-motion/benchmark"
	"github.com/nvr-ai/go-motion/profiler"
)

func main() {
	var (
		scenarioFile = flag.String("scenarios", "", "Path to a scenario set JSON file")
		outputDir    = flag.String("output", "./benchmark_results", "Output directory for results")
		quick        = flag.Bool("quick", false, "Run the quick smoke-test scenarios")
		resolutions  = flag.Bool("resolutions", false, "Sweep mask throughput across source resolutions")
		erosion      = flag.Bool("erosion", false, "Sweep the cost of the morphology pass")
		baseline     = flag.Bool("baseline", false, "Also run the OpenCV MOG2 baseline for comparison")
		profile      = flag.Bool("profile", false, "Emit periodic runtime profiler reports during the run")
		timeout      = flag.Duration("timeout", 30*time.Minute, "Benchmark timeout duration")
	)
	flag.Parse()

	suite := benchmark.NewSuite(*outputDir)

	if *scenarioFile != "" {
		set, err := benchmark.LoadScenarioSet(*scenarioFile)
		if err != nil {
			log.Fatalf("Failed to load scenario file: %v", err)
		}
		suite.AddScenarioSet(set)
		fmt.Printf("Loaded %d scenarios from %s\n", len(set.Scenarios), *scenarioFile)
	} else {
		if *quick {
			suite.AddScenarioSet(benchmark.QuickScenarios())
		}
		if *resolutions {
			suite.AddScenarioSet(benchmark.ResolutionSweep())
		}
		if *erosion {
			suite.AddScenarioSet(benchmark.ErosionSweep())
		}
		if !*quick && !*resolutions && !*erosion {
			suite.AddScenarioSet(benchmark.QuickScenarios())
			fmt.Println("No scenario set requested; running the quick set")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var prof *profiler.RuntimeProfiler
	if *profile {
		prof = profiler.New(profiler.Options{ReportInterval: 5 * time.Second})
		prof.Start()
		defer prof.Stop()
	}

	fmt.Println("Starting benchmark execution...")
	start := time.Now()

	if err := suite.RunAllScenarios(ctx); err != nil {
		log.Fatalf("Benchmark execution failed: %v", err)
	}

	fmt.Printf("Benchmark completed in %v\n", time.Since(start))

	results := suite.GetResults()
	fmt.Printf("\n=== BENCHMARK RESULTS SUMMARY ===\n")
	fmt.Printf("Total scenarios: %d\n", len(results))
	fmt.Printf("Results saved to: %s\n", *outputDir)

	var bestFPS float64
	var bestScenario string
	for _, result := range results {
		if result.FramesPerSecond > bestFPS {
			bestFPS = result.FramesPerSecond
			bestScenario = result.Scenario.Name
		}
		fmt.Printf("  %s: %.2f FPS, %.3f ms mean latency (%.2f MB memory)\n",
			result.Scenario.Name,
			result.FramesPerSecond,
			result.LatencyStats.MeanMs,
			float64(result.MemoryStats.AllocBytes)/(1024*1024))
	}
	fmt.Printf("\nBest performing scenario: %s (%.2f FPS)\n", bestScenario, bestFPS)

	if *baseline {
		fmt.Printf("\n=== OPENCV MOG2 BASELINE ===\n")
		for _, result := range results {
			comparison, err := suite.RunBaseline(ctx, result.Scenario)
			if err != nil {
				fmt.Printf("  %s: baseline failed: %v\n", result.Scenario.Name, err)
				continue
			}
			fmt.Printf("  %s: baseline %.2f FPS vs extractor %.2f FPS\n",
				result.Scenario.Name, comparison.FramesPerSecond, result.FramesPerSecond)
		}
	}
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Benchmark tool for the motion extraction pipeline.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -quick\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -resolutions -erosion -output ./results\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -scenarios ./scenarios.json -baseline -profile\n", filepath.Base(os.Args[0]))
	}
}
