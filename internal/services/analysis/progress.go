package analysis

import "time"

// Phase labels by progress band. The backend exposes no streaming interface,
// so progress is estimated from wall-clock time and mapped to the pipeline
// stage the agents are most likely in.
var phaseBands = []struct {
	below float64
	label string
}{
	{15, "Initializing AI agents"},
	{30, "Analyzing market data"},
	{45, "Evaluating fundamentals"},
	{60, "Processing sentiment signals"},
	{75, "Assessing risk factors"},
	{90, "Synthesizing recommendations"},
}

const finalPhaseLabel = "Finalizing analysis"

// simulatedProgress estimates run progress from elapsed time: linear toward
// the ceiling over the window, clamped there until true completion jumps the
// run to 100.
func simulatedProgress(elapsed, window time.Duration, ceiling float64) float64 {
	if window <= 0 {
		return ceiling
	}
	progress := float64(elapsed) / float64(window) * ceiling
	if progress > ceiling {
		return ceiling
	}
	if progress < 0 {
		return 0
	}
	return progress
}

// phaseForProgress returns the human label for a progress percentage
func phaseForProgress(progress float64) string {
	for _, band := range phaseBands {
		if progress < band.below {
			return band.label
		}
	}
	return finalPhaseLabel
}
