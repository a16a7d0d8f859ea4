// Package testutil holds the RapidCheck helper shared by this module's
// property-based tests, and the intensity knob it reads so CI can run
// more iterations than a local quick pass without editing test files.
package testutil

import (
	"os"
	"strings"
	"time"
)

// TestIntensity selects how much work a property test does per run.
type TestIntensity int

const (
	IntensityQuick TestIntensity = iota
	IntensityThorough
)

func (ti TestIntensity) String() string {
	if ti == IntensityThorough {
		return "thorough"
	}
	return "quick"
}

// TestConfig holds the intensity-derived settings for property tests.
// RapidCheck reads IterationCount and VerboseOutput; Timeout is not read.
type TestConfig struct {
	Intensity      TestIntensity
	IterationCount int
	Timeout        time.Duration
	VerboseOutput  bool
}

// GetTestConfig derives a TestConfig from TEST_INTENSITY and VERBOSE_TESTS,
// defaulting to a quick run suitable for local iteration.
func GetTestConfig() TestConfig {
	config := TestConfig{Intensity: IntensityQuick}
	if strings.ToLower(os.Getenv("TEST_INTENSITY")) == "thorough" {
		config.Intensity = IntensityThorough
	}

	switch config.Intensity {
	case IntensityThorough:
		config.IterationCount = 200
		config.Timeout = 5 * time.Minute
	default:
		config.IterationCount = 20
		config.Timeout = 30 * time.Second
	}

	verbose := strings.ToLower(os.Getenv("VERBOSE_TESTS"))
	config.VerboseOutput = verbose == "1" || verbose == "true"
	return config
}
