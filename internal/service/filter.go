package service

import (
	"strings"

	"github.com/andresuchdata/shelfwatch/internal/domain"
)

// FilterEvaluations keeps the evaluations matching every set field of filter.
func FilterEvaluations(evals []domain.Evaluation, filter domain.EvaluationFilter) []domain.Evaluation {
	skus := toSet(filter.SKUIDs)
	locations := toSet(filter.LocationIDs)

	out := make([]domain.Evaluation, 0, len(evals))
	for _, e := range evals {
		if filter.Action != "" && e.Decision.Action != filter.Action {
			continue
		}
		if len(skus) > 0 && !skus[strings.ToUpper(e.SKUID)] {
			continue
		}
		if len(locations) > 0 && !locations[strings.ToUpper(e.LocationID)] {
			continue
		}
		if e.Features.RiskScore < filter.MinRisk {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Summarize counts decisions and totals the proposed quantities.
func Summarize(evals []domain.Evaluation) domain.EvaluationSummary {
	var s domain.EvaluationSummary
	for _, e := range evals {
		s.Total++
		switch e.Decision.Action {
		case domain.ActionReplenish:
			s.Replenish++
			s.TotalOrderQty += e.Decision.OrderQty
		default:
			s.Noop++
		}
		if e.Features.RiskScore > s.MaxRiskScore {
			s.MaxRiskScore = e.Features.RiskScore
		}
	}
	return s
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[strings.ToUpper(v)] = true
		}
	}
	return set
}
