package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreKPI(t *testing.T) {
	tests := []struct {
		name     string
		goal     float64
		result   float64
		weight   float64
		wantPct  float64
		wantWC   float64
	}{
		{"zero goal excluded", 0, 500, 30, 0, 0},
		{"negative goal excluded", -100, 500, 30, 0, 0},
		{"exact hit", 1000, 1000, 25, 100, 0.25},
		{"partial", 1000, 600, 40, 60, 0.40},
		{"overshoot capped", 1000, 2500, 100, 100, 1.0},
		{"negative result not floored", 1000, -200, 20, -20, 0.20},
		{"zero weight still active", 1000, 900, 0, 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreKPI(tt.goal, tt.result, tt.weight)
			assert.InDelta(t, tt.wantPct, got.AchievementPct, 0.001)
			assert.InDelta(t, tt.wantWC, got.WeightContribution, 0.001)
		})
	}
}

func TestScoreKPICapProperty(t *testing.T) {
	// Even extreme over-performance never exceeds full credit.
	for _, mult := range []float64{1.01, 2, 10, 1000} {
		got := ScoreKPI(500, 500*mult, 50)
		assert.LessOrEqual(t, got.AchievementPct, 100.0)
	}
}
