package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestCalculator() *Calculator {
	return NewCalculator(Config{BaseFare: 2.50, PerMileRate: 1.75})
}

func TestEstimatePrice(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name          string
		distanceMiles float64
		wantTotal     float64
	}{
		{"zero distance is the base fare", 0, 2.50},
		{"one mile", 1, 4.25},
		{"typical city trip", 3.2, 8.10},
		{"long trip", 12.5, 24.38},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := calc.EstimatePrice(tt.distanceMiles)
			assert.InDelta(t, tt.wantTotal, est.Total, 1e-9)
			assert.Equal(t, 2.50, est.BaseFare)
		})
	}
}

func TestEstimatePrice_NegativeDistanceClampedToZero(t *testing.T) {
	est := newTestCalculator().EstimatePrice(-4)

	assert.Zero(t, est.DistanceMiles)
	assert.Zero(t, est.DistanceFare)
	assert.Equal(t, 2.50, est.Total)
}

func TestEstimatePrice_RoundsToCents(t *testing.T) {
	est := newTestCalculator().EstimatePrice(0.333)

	// 0.333 * 1.75 = 0.58275
	assert.Equal(t, 0.58, est.DistanceFare)
	assert.Equal(t, 3.08, est.Total)
	assert.Equal(t, 0.33, est.DistanceMiles)
}
