// Package replenishment computes stockout risk and reorder quantities for a
// single inventory position. Every function here is pure: no I/O, no clock,
// no shared state, so positions can be evaluated concurrently.
//
// Callers must supply non-negative quantities and a policy with
// min order qty <= max order qty. These preconditions are not checked here;
// see domain.PolicyParameters.Validate.
package replenishment

import (
	"math"

	"github.com/andresuchdata/shelfwatch/internal/domain"
)

// EPS floors velocity so that days of cover stays finite when nothing sold.
const EPS = 1e-9

// MovingAverage returns the mean of the most recent window entries of units,
// or of all of them when the history is shorter. An empty history yields 0.
func MovingAverage(units []float64, window int) float64 {
	if len(units) == 0 {
		return 0
	}
	if window < 1 {
		window = 1
	}

	slice := units
	if len(units) > window {
		slice = units[len(units)-window:]
	}

	var sum float64
	for _, u := range slice {
		sum += u
	}
	return sum / float64(len(slice))
}

// ComputeFeatures derives the feature set of one position.
func ComputeFeatures(
	onHand float64,
	sales []float64,
	leadTimeDays float64,
	safetyBufferDays float64,
	velocityWindowDays int,
	openPOs []domain.OpenPurchaseOrder,
) domain.FeatureSet {
	fs := domain.FeatureSet{}

	// 1. Velocity = trailing moving average of daily sales
	fs.Velocity = MovingAverage(sales, velocityWindowDays)

	// 2. Effective velocity never drops below EPS
	fs.EffectiveVelocity = math.Max(fs.Velocity, EPS)

	// 3. Days of cover
	fs.DaysOfCover = onHand / fs.EffectiveVelocity

	// 4. Need window = lead time + safety buffer
	fs.NeedDays = leadTimeDays + safetyBufferDays

	// 5. Reorder point in units
	fs.ReorderPoint = fs.EffectiveVelocity * fs.NeedDays

	// 6. Incoming supply counts every open PO, whatever its ETA
	for _, po := range openPOs {
		if po.Quantity > 0 {
			fs.IncomingWithinLeadTime += po.Quantity
		}
	}

	// 7-8. Risk = uncovered share of the need window, 0 without a sales signal
	if fs.Velocity <= EPS {
		fs.RiskScore = 0
	} else {
		coverGap := math.Max(0, fs.NeedDays-fs.DaysOfCover) / math.Max(fs.NeedDays, EPS)
		fs.RiskScore = int(math.Round(100 * math.Min(1, coverGap)))
	}

	return fs
}
