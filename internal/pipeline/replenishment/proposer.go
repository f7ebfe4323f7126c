package replenishment

import (
	"math"

	"github.com/andresuchdata/shelfwatch/internal/domain"
)

// CeilToMultiple rounds x up to the next multiple. Negative x is treated as 0.
// A multiple of 1 or less rounds up to the next whole unit.
func CeilToMultiple(x, multiple float64) float64 {
	x = math.Max(0, x)
	if multiple <= 1 {
		return math.Ceil(x)
	}
	return math.Ceil(x/multiple) * multiple
}

// ProposeQuantity returns the order quantity that brings the position back to
// its target stock. It does not look at the risk threshold; callers invoke it
// only for positions that need replenishment.
//
// The result is clamped to [minQty, maxQty] with max applied first, so a
// policy with minQty > maxQty yields minQty.
func ProposeQuantity(onHand float64, features domain.FeatureSet, reorderMultiple, minQty, maxQty float64) float64 {
	// 1. Target stock at the end of the need window
	target := features.ReorderPoint + features.NeedDays*math.Max(features.Velocity, EPS)

	// 2. Shortfall against on hand plus incoming
	raw := target - (onHand + features.IncomingWithinLeadTime)

	// 3. Round up to the pack multiple
	rounded := CeilToMultiple(raw, reorderMultiple)

	// 4. Clamp to the order bounds
	clamped := math.Max(minQty, math.Min(rounded, maxQty))

	// 5. Never negative
	return math.Max(0, clamped)
}
