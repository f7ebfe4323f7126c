package replenishment

import "github.com/andresuchdata/shelfwatch/internal/domain"

// Decide maps a feature set to an action and quantity under the given policy.
func Decide(onHand float64, features domain.FeatureSet, policy domain.PolicyParameters) domain.Decision {
	if float64(features.RiskScore) < policy.RiskThreshold {
		return domain.Decision{Action: domain.ActionNoop, OrderQty: 0}
	}

	qty := ProposeQuantity(onHand, features, policy.ReorderMultiple, policy.MinOrderQty, policy.MaxOrderQty)
	return domain.Decision{Action: domain.ActionReplenish, OrderQty: qty}
}

// Evaluate runs the feature calculator and the proposer for one position.
func Evaluate(in domain.PositionInput, policy domain.PolicyParameters) domain.Evaluation {
	pos := in.Position
	features := ComputeFeatures(
		pos.OnHand,
		in.Sales.Units,
		in.Supply.LeadTimeDays,
		policy.SafetyBufferDays,
		policy.VelocityWindowDays,
		in.Supply.OpenPurchaseOrders,
	)

	eval := domain.Evaluation{
		SKUID:      pos.SKUID,
		LocationID: pos.LocationID,
		OnHand:     pos.OnHand,
		Features:   features,
		Decision:   Decide(pos.OnHand, features, policy),
		Catalog:    in.Catalog,
	}

	if eval.Decision.Action == domain.ActionReplenish {
		eval.Explanation = &domain.Explanation{
			DaysOfCover:  features.DaysOfCover,
			NeedDays:     features.NeedDays,
			Velocity:     features.Velocity,
			Incoming:     features.IncomingWithinLeadTime,
			ReorderPoint: features.ReorderPoint,
		}
	}

	return eval
}
