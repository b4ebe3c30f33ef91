package analysis

import (
	"math"
	"testing"
	"time"
)

func TestSimulatedProgress(t *testing.T) {
	window := 80 * time.Second
	ceiling := 95.0

	tests := []struct {
		name     string
		elapsed  time.Duration
		expected float64
	}{
		{"start", 0, 0},
		{"quarter window", 20 * time.Second, 23.75},
		{"half window", 40 * time.Second, 47.5},
		{"full window", 80 * time.Second, 95},
		{"beyond window clamps at ceiling", 5 * time.Minute, 95},
		{"negative elapsed clamps at zero", -time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := simulatedProgress(tt.elapsed, window, ceiling)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("simulatedProgress(%v) = %v, want %v", tt.elapsed, got, tt.expected)
			}
		})
	}
}

func TestSimulatedProgressZeroWindow(t *testing.T) {
	if got := simulatedProgress(time.Second, 0, 95); got != 95 {
		t.Errorf("expected ceiling for zero window, got %v", got)
	}
}

func TestPhaseForProgress(t *testing.T) {
	tests := []struct {
		progress float64
		expected string
	}{
		{0, "Initializing AI agents"},
		{14.9, "Initializing AI agents"},
		{15, "Analyzing market data"},
		{29.9, "Analyzing market data"},
		{30, "Evaluating fundamentals"},
		{45, "Processing sentiment signals"},
		{60, "Assessing risk factors"},
		{75, "Synthesizing recommendations"},
		{90, "Finalizing analysis"},
		{95, "Finalizing analysis"},
		{100, "Finalizing analysis"},
	}

	for _, tt := range tests {
		if got := phaseForProgress(tt.progress); got != tt.expected {
			t.Errorf("phaseForProgress(%v) = %q, want %q", tt.progress, got, tt.expected)
		}
	}
}
