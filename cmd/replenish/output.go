package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/pipeline/replenishment"
)

func writeTable(w io.Writer, evals []domain.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tLOCATION\tON_HAND\tVELOCITY\tDOC\tNEED\tROP\tINCOMING\tRISK\tACTION\tORDER_QTY")
	for _, e := range evals {
		f := e.Features
		fmt.Fprintf(tw, "%s\t%s\t%g\t%.2f\t%.1f\t%.1f\t%.1f\t%g\t%d\t%s\t%g\n",
			e.SKUID, e.LocationID, e.OnHand, f.Velocity, displayCover(f.DaysOfCover), f.NeedDays,
			f.ReorderPoint, f.IncomingWithinLeadTime, f.RiskScore, e.Decision.Action, e.Decision.OrderQty)
	}
	return tw.Flush()
}

// displayCover caps the EPS-inflated cover of positions without sales.
func displayCover(doc float64) float64 {
	if doc > 9999 {
		return 9999
	}
	return doc
}

func writeJSON(w io.Writer, evals []domain.Evaluation, summary domain.EvaluationSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Items   []domain.Evaluation      `json:"items"`
		Summary domain.EvaluationSummary `json:"summary"`
	}{Items: evals, Summary: summary})
}

func writeAlerts(w io.Writer, evals []domain.Evaluation) error {
	for _, e := range evals {
		alert := replenishment.BuildAlert(e)
		if alert == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s\n  %s\n  %s\n", alert.Title, alert.DocVsNeed, alert.Suggestion); err != nil {
			return err
		}
	}
	return nil
}
