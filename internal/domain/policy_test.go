package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 60.0, p.RiskThreshold)
	assert.Equal(t, 2.0, p.SafetyBufferDays)
	assert.Equal(t, 7, p.VelocityWindowDays)
	assert.Equal(t, 1.0, p.ReorderMultiple)
	assert.Equal(t, 0.0, p.MinOrderQty)
	assert.Equal(t, 500.0, p.MaxOrderQty)
	assert.NoError(t, p.Validate())
}

func TestPolicyParameters_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *PolicyParameters)
	}{
		{"threshold above 100", func(p *PolicyParameters) { p.RiskThreshold = 101 }},
		{"negative threshold", func(p *PolicyParameters) { p.RiskThreshold = -1 }},
		{"negative buffer", func(p *PolicyParameters) { p.SafetyBufferDays = -2 }},
		{"zero window", func(p *PolicyParameters) { p.VelocityWindowDays = 0 }},
		{"zero multiple", func(p *PolicyParameters) { p.ReorderMultiple = 0 }},
		{"negative min", func(p *PolicyParameters) { p.MinOrderQty = -1 }},
		{"min above max", func(p *PolicyParameters) { p.MinOrderQty = 50; p.MaxOrderQty = 10 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultPolicy()
			tc.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidPolicy)
		})
	}
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(" Replenish ")
	assert.True(t, ok)
	assert.Equal(t, ActionReplenish, a)

	_, ok = ParseAction("snooze")
	assert.False(t, ok)

	assert.Equal(t, "No action", ActionLabel(ActionNoop))
	assert.Equal(t, "Unknown", ActionLabel(Action("x")))
}

func TestSnapshot_Inputs(t *testing.T) {
	a := InventoryPosition{SKUID: "A123", LocationID: "SFO1", OnHand: 22}
	b := InventoryPosition{SKUID: "A124", LocationID: "SFO1", OnHand: 10}
	s := &Snapshot{
		Positions: []InventoryPosition{a, b},
		Sales:     map[PositionKey]SalesHistory{a.Key(): {Units: []float64{1, 2}}},
		Supply:    map[PositionKey]SupplyState{b.Key(): {LeadTimeDays: 4}},
		Catalog:   map[string]CatalogItem{"A123": {SKUID: "A123", PackSize: 6}},
	}

	inputs := s.Inputs()
	assert.Len(t, inputs, 2)
	assert.Equal(t, "A123", inputs[0].Position.SKUID)
	assert.Equal(t, []float64{1, 2}, inputs[0].Sales.Units)
	assert.Equal(t, 6, inputs[0].Catalog.PackSize)
	assert.Nil(t, inputs[1].Catalog)
	assert.Empty(t, inputs[1].Sales.Units)
	assert.Equal(t, 4.0, inputs[1].Supply.LeadTimeDays)
	assert.Equal(t, "A124|SFO1", b.Key().String())
}
