package replenishment

import (
	"fmt"

	"github.com/andresuchdata/shelfwatch/internal/domain"
)

// Alert is the human-readable notice for a position that needs stock.
type Alert struct {
	Title      string              `json:"title"`
	DocVsNeed  string              `json:"doc_vs_need"`
	Suggestion string              `json:"suggestion"`
	Why        *domain.Explanation `json:"why,omitempty"`
}

// BuildAlert formats an alert for a replenish evaluation. It returns nil for
// any other action.
func BuildAlert(e domain.Evaluation) *Alert {
	if e.Decision.Action != domain.ActionReplenish {
		return nil
	}

	alert := &Alert{
		Title:     fmt.Sprintf("%s@%s - risk %d", e.SKUID, e.LocationID, e.Features.RiskScore),
		DocVsNeed: fmt.Sprintf("DOC=%.1fd < Need=%.1fd", e.Features.DaysOfCover, e.Features.NeedDays),
		Why:       e.Explanation,
	}

	if e.Decision.OrderQty > 0 {
		alert.Suggestion = fmt.Sprintf("Order %s units", formatQty(e.Decision.OrderQty))
	} else {
		alert.Suggestion = "No positive qty after constraints"
	}

	return alert
}

func formatQty(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}
