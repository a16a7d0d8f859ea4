package testutil

import (
	"fmt"
	"os"
	"testing"

	"pgregory.net/rapid"
)

// GetRapidCheckConfig sets RAPID_CHECKS so rapid.Check runs the iteration
// count implied by the current test intensity.
func GetRapidCheckConfig(t *testing.T) {
	config := GetTestConfig()
	os.Setenv("RAPID_CHECKS", fmt.Sprintf("%d", config.IterationCount))
	if config.VerboseOutput {
		t.Logf("rapid property test configured with %d iterations (intensity: %s)",
			config.IterationCount, config.Intensity)
	}
}

// RapidCheck wraps rapid.Check with this module's configured iteration
// count and, in verbose mode, a warning if the test has no deadline, since an unbounded
// property test can otherwise run forever on a hang.
func RapidCheck(t *testing.T, fn func(*rapid.T)) {
	t.Helper()

	config := GetTestConfig()
	GetRapidCheckConfig(t)

	if _, hasDeadline := t.Deadline(); !hasDeadline && config.VerboseOutput {
		t.Logf("WARNING: no test deadline set; run with -timeout for safety")
	}

	rapid.Check(t, fn)
}
