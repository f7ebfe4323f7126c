package replenishment

import (
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		units  []float64
		window int
		want   float64
	}{
		{"trailing window", []float64{1, 2, 3, 4}, 3, 3},
		{"history shorter than window", []float64{1, 2}, 7, 1.5},
		{"exact window", []float64{2, 4, 6}, 3, 4},
		{"empty history", nil, 7, 0},
		{"zero window degrades to one", []float64{1, 2, 9}, 0, 9},
		{"negative window degrades to one", []float64{1, 2, 9}, -3, 9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, MovingAverage(tc.units, tc.window), 1e-12)
		})
	}
}

func TestComputeFeatures_ScenarioA(t *testing.T) {
	fs := ComputeFeatures(22, []float64{6, 5, 4, 5, 5, 6, 4}, 3, 2, 7,
		[]domain.OpenPurchaseOrder{{Quantity: 30}})

	assert.InDelta(t, 5.0, fs.Velocity, 1e-12)
	assert.InDelta(t, 5.0, fs.EffectiveVelocity, 1e-12)
	assert.InDelta(t, 5.0, fs.NeedDays, 1e-12)
	assert.InDelta(t, 4.4, fs.DaysOfCover, 1e-9)
	assert.InDelta(t, 25.0, fs.ReorderPoint, 1e-9)
	assert.InDelta(t, 30.0, fs.IncomingWithinLeadTime, 1e-12)
	assert.Equal(t, 12, fs.RiskScore)
}

func TestComputeFeatures_ScenarioB(t *testing.T) {
	fs := ComputeFeatures(10, []float64{3, 2, 1, 2, 2, 0, 0}, 4, 2, 7,
		[]domain.OpenPurchaseOrder{{Quantity: 0}})

	assert.InDelta(t, 10.0/7.0, fs.Velocity, 1e-9)
	assert.InDelta(t, 6.0, fs.NeedDays, 1e-12)
	assert.InDelta(t, 7.0, fs.DaysOfCover, 1e-9)
	assert.InDelta(t, 60.0/7.0, fs.ReorderPoint, 1e-9)
	assert.Zero(t, fs.IncomingWithinLeadTime)
	assert.Equal(t, 0, fs.RiskScore)
}

func TestComputeFeatures_ScenarioC(t *testing.T) {
	fs := ComputeFeatures(5, []float64{10, 10, 10, 10, 10, 10, 10}, 3, 2, 7, nil)

	assert.InDelta(t, 10.0, fs.Velocity, 1e-12)
	assert.InDelta(t, 0.5, fs.DaysOfCover, 1e-12)
	assert.InDelta(t, 50.0, fs.ReorderPoint, 1e-12)
	assert.Zero(t, fs.IncomingWithinLeadTime)
	assert.Equal(t, 90, fs.RiskScore)
}

func TestComputeFeatures_NoSalesUsesEPSFloor(t *testing.T) {
	fs := ComputeFeatures(10, nil, 3, 2, 7, nil)

	assert.Zero(t, fs.Velocity)
	assert.Equal(t, EPS, fs.EffectiveVelocity)
	assert.False(t, math.IsInf(fs.DaysOfCover, 0))
	assert.False(t, math.IsNaN(fs.DaysOfCover))
	assert.InDelta(t, 1e10, fs.DaysOfCover, 1)
	assert.Equal(t, 0, fs.RiskScore)

	zeros := ComputeFeatures(0, []float64{0, 0, 0}, 3, 2, 7, nil)
	assert.Zero(t, zeros.DaysOfCover)
	assert.Equal(t, 0, zeros.RiskScore)
}

func TestComputeFeatures_IncomingIgnoresETA(t *testing.T) {
	d := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	fs := ComputeFeatures(0, []float64{1}, 1, 0, 7, []domain.OpenPurchaseOrder{
		{Quantity: 12, ETA: &d},
		{Quantity: 8},
		{Quantity: 0},
	})
	assert.InDelta(t, 20.0, fs.IncomingWithinLeadTime, 1e-12)
}

func TestComputeFeatures_ZeroNeedWindow(t *testing.T) {
	fs := ComputeFeatures(0, []float64{4}, 0, 0, 7, nil)
	assert.Zero(t, fs.NeedDays)
	assert.Equal(t, 0, fs.RiskScore)
}

func TestComputeFeatures_RiskMonotoneInOnHand(t *testing.T) {
	sales := []float64{4, 7, 3, 5, 6, 2, 8}
	prev := -1
	for onHand := 60.0; onHand >= 0; onHand -= 0.5 {
		fs := ComputeFeatures(onHand, sales, 5, 3, 7, nil)
		require.GreaterOrEqual(t, fs.RiskScore, prev, "on_hand=%v", onHand)
		prev = fs.RiskScore
	}
	assert.Equal(t, 100, prev)
}

func TestComputeFeatures_RiskBounds(t *testing.T) {
	histories := [][]float64{nil, {0}, {1}, {100, 0, 50}, {1e6}, {0.001, 0.002}}
	for _, h := range histories {
		for _, onHand := range []float64{0, 1, 10, 1e4} {
			for _, lt := range []float64{0, 1, 14} {
				fs := ComputeFeatures(onHand, h, lt, 2, 7, nil)
				assert.GreaterOrEqual(t, fs.RiskScore, 0)
				assert.LessOrEqual(t, fs.RiskScore, 100)
			}
		}
	}
}
