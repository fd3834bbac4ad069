package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Scenario defines one benchmark configuration: the stream geometry the
// synthetic source generates and the extractor settings applied to it.
type Scenario struct {
	Name         string  `json:"name"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	FPS          float64 `json:"fps"`
	FrameCount   int     `json:"frame_count"`
	Sensitivity  int     `json:"sensitivity"`
	SettleTime   float64 `json:"settle_time"`
	ErosionLevel int     `json:"erosion_level"`
	WarmupRuns   int     `json:"warmup_runs"`
}

// ScenarioBuilder helps build scenarios with a fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a builder seeded with the defaults the
// extractor itself uses.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:         name,
			Width:        640,
			Height:       480,
			FPS:          30,
			FrameCount:   300,
			Sensitivity:  26,
			SettleTime:   1,
			ErosionLevel: 5,
			WarmupRuns:   30,
		},
	}
}

// WithResolution sets the source frame dimensions
func (sb *ScenarioBuilder) WithResolution(width, height int) *ScenarioBuilder {
	sb.scenario.Width = width
	sb.scenario.Height = height
	return sb
}

// WithFPS sets the source frame rate
func (sb *ScenarioBuilder) WithFPS(fps float64) *ScenarioBuilder {
	sb.scenario.FPS = fps
	return sb
}

// WithFrameCount sets how many frames the scenario processes
func (sb *ScenarioBuilder) WithFrameCount(count int) *ScenarioBuilder {
	sb.scenario.FrameCount = count
	return sb
}

// WithSensitivity sets the extractor's difference threshold
func (sb *ScenarioBuilder) WithSensitivity(sensitivity int) *ScenarioBuilder {
	sb.scenario.Sensitivity = sensitivity
	return sb
}

// WithSettleTime sets the extractor's settle time in seconds
func (sb *ScenarioBuilder) WithSettleTime(seconds float64) *ScenarioBuilder {
	sb.scenario.SettleTime = seconds
	return sb
}

// WithErosion sets the extractor's erosion level
func (sb *ScenarioBuilder) WithErosion(level int) *ScenarioBuilder {
	sb.scenario.ErosionLevel = level
	return sb
}

// WithWarmupRuns sets the number of frames processed before timing starts
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related scenarios
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// commonResolutions is the geometry sweep used by the predefined sets.
var commonResolutions = [][2]int{
	{320, 240},
	{640, 480},
	{1280, 720},
	{1920, 1080},
}

// ResolutionSweep returns scenarios measuring how mask throughput scales
// with the source frame size at default extractor settings.
func ResolutionSweep() *ScenarioSet {
	scenarios := make([]Scenario, 0, len(commonResolutions))
	for _, res := range commonResolutions {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("resolution_%dx%d", res[0], res[1])).
			WithResolution(res[0], res[1]).
			Build())
	}
	return &ScenarioSet{
		Name:        "Resolution Sweep",
		Description: "Mask throughput across source resolutions at default settings",
		Scenarios:   scenarios,
	}
}

// ErosionSweep returns scenarios measuring the cost of the morphology pass,
// from disabled through the strictest neighbor requirement.
func ErosionSweep() *ScenarioSet {
	levels := []int{0, 2, 5, 8}
	scenarios := make([]Scenario, 0, len(levels))
	for _, level := range levels {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("erosion_%d", level)).
			WithResolution(1280, 720).
			WithErosion(level).
			Build())
	}
	return &ScenarioSet{
		Name:        "Erosion Sweep",
		Description: "Morphology cost from disabled to the full 8-neighbor requirement",
		Scenarios:   scenarios,
	}
}

// QuickScenarios returns a small set for smoke-testing a build.
func QuickScenarios() *ScenarioSet {
	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Short runs at the two most common stream sizes",
		Scenarios: []Scenario{
			NewScenarioBuilder("quick_640x480").
				WithResolution(640, 480).
				WithFrameCount(100).
				WithWarmupRuns(10).
				Build(),
			NewScenarioBuilder("quick_1280x720").
				WithResolution(1280, 720).
				WithFrameCount(100).
				WithWarmupRuns(10).
				Build(),
		},
	}
}

// SaveScenarioSet saves a scenario set to a JSON file
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(scenarioSet, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling scenario set")
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "writing scenario file")
	}
	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario file")
	}
	var scenarioSet ScenarioSet
	if err := json.Unmarshal(data, &scenarioSet); err != nil {
		return nil, errors.Wrap(err, "unmarshaling scenario set")
	}
	return &scenarioSet, nil
}
