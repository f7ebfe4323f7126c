package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/pipeline/replenishment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvaluations() []domain.Evaluation {
	policy := domain.DefaultPolicy()
	return []domain.Evaluation{
		replenishment.Evaluate(domain.PositionInput{
			Position: domain.InventoryPosition{SKUID: "A123", LocationID: "SFO1", OnHand: 22},
			Sales:    domain.SalesHistory{Units: []float64{6, 5, 4, 5, 5, 6, 4}},
			Supply:   domain.SupplyState{LeadTimeDays: 3, OpenPurchaseOrders: []domain.OpenPurchaseOrder{{Quantity: 30}}},
		}, policy),
		replenishment.Evaluate(domain.PositionInput{
			Position: domain.InventoryPosition{SKUID: "C900", LocationID: "LAX2", OnHand: 5},
			Sales:    domain.SalesHistory{Units: []float64{10, 10, 10, 10, 10, 10, 10}},
			Supply:   domain.SupplyState{LeadTimeDays: 3},
		}, policy),
		replenishment.Evaluate(domain.PositionInput{
			Position: domain.InventoryPosition{SKUID: "D1", LocationID: "LAX2", OnHand: 3},
		}, policy),
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, sampleEvaluations()))

	out := buf.String()
	assert.Contains(t, out, "ORDER_QTY")
	assert.Regexp(t, `A123\s+SFO1\s+22\s+5\.00\s+4\.4\s+5\.0\s+25\.0\s+30\s+12\s+noop\s+0`, out)
	assert.Regexp(t, `C900\s+LAX2\s+5\s+10\.00\s+0\.5\s+5\.0\s+50\.0\s+0\s+90\s+replenish\s+95`, out)
	assert.Regexp(t, `D1\s+LAX2\s+3\s+0\.00\s+9999\.0`, out)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	evals := sampleEvaluations()
	require.NoError(t, writeJSON(&buf, evals, domain.EvaluationSummary{Total: 3, Replenish: 1, Noop: 2}))

	var decoded struct {
		Items   []domain.Evaluation      `json:"items"`
		Summary domain.EvaluationSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Items, 3)
	assert.Equal(t, 1, decoded.Summary.Replenish)
	assert.Equal(t, 95.0, decoded.Items[1].Decision.OrderQty)
}

func TestWriteAlerts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAlerts(&buf, sampleEvaluations()))

	assert.Contains(t, buf.String(), "C900@LAX2 - risk 90")
	assert.Contains(t, buf.String(), "Order 95 units")
	assert.NotContains(t, buf.String(), "A123")
}
