// internal/domain/models.go
package domain

import (
	"encoding/json"
	"time"
)

// InventoryPosition is the on-hand stock of a SKU at a location
type InventoryPosition struct {
	SKUID       string    `json:"sku_id" db:"sku_id"`
	LocationID  string    `json:"location_id" db:"location_id"`
	OnHand      float64   `json:"on_hand" db:"on_hand"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// Key returns the (sku, location) key of the position.
func (p InventoryPosition) Key() PositionKey {
	return PositionKey{SKUID: p.SKUID, LocationID: p.LocationID}
}

// PositionKey identifies an inventory position
type PositionKey struct {
	SKUID      string `json:"sku_id"`
	LocationID string `json:"location_id"`
}

func (k PositionKey) String() string {
	return k.SKUID + "|" + k.LocationID
}

// SalesHistory holds daily unit sales, oldest first
type SalesHistory struct {
	SKUID      string    `json:"sku_id"`
	LocationID string    `json:"location_id"`
	Units      []float64 `json:"units"`
}

// OpenPurchaseOrder is a purchase order that has not been received yet
type OpenPurchaseOrder struct {
	Quantity float64    `json:"qty"`
	ETA      *time.Time `json:"eta,omitempty"`
}

// UnmarshalJSON reads the quantity from "qty" or "quantity". A missing
// quantity decodes as 0.
func (o *OpenPurchaseOrder) UnmarshalJSON(data []byte) error {
	var raw struct {
		Qty      *float64   `json:"qty"`
		Quantity *float64   `json:"quantity"`
		ETA      *time.Time `json:"eta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = OpenPurchaseOrder{ETA: raw.ETA}
	switch {
	case raw.Qty != nil:
		o.Quantity = *raw.Qty
	case raw.Quantity != nil:
		o.Quantity = *raw.Quantity
	}
	return nil
}

// SupplyState describes the supplier side of a position
type SupplyState struct {
	SKUID              string              `json:"sku_id"`
	LocationID         string              `json:"location_id"`
	LeadTimeDays       float64             `json:"lead_time_days"`
	OpenPurchaseOrders []OpenPurchaseOrder `json:"open_pos"`
}

// UnmarshalJSON accepts "open_purchase_orders" as well as "open_pos".
func (s *SupplyState) UnmarshalJSON(data []byte) error {
	type plain SupplyState
	var raw struct {
		plain
		PurchaseOrders []OpenPurchaseOrder `json:"open_purchase_orders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = SupplyState(raw.plain)
	if s.OpenPurchaseOrders == nil {
		s.OpenPurchaseOrders = raw.PurchaseOrders
	}
	return nil
}

// CatalogItem is reference metadata for a SKU. It is carried alongside
// evaluations but never read by the replenishment engine.
type CatalogItem struct {
	SKUID               string `json:"sku_id" db:"sku_id"`
	SubstitutionGroupID string `json:"substitution_group_id" db:"substitution_group_id"`
	PackSize            int    `json:"pack_size" db:"pack_size"`
	UOM                 string `json:"uom" db:"uom"`
}

// FeatureSet holds the engineered metrics for one position
type FeatureSet struct {
	Velocity               float64 `json:"velocity"`
	EffectiveVelocity      float64 `json:"effective_velocity"`
	DaysOfCover            float64 `json:"days_of_cover"`
	NeedDays               float64 `json:"need_days"`
	ReorderPoint           float64 `json:"reorder_point"`
	IncomingWithinLeadTime float64 `json:"incoming_within_lead_time"`
	RiskScore              int     `json:"risk_score"`
}

// Decision is the replenishment action for one position
type Decision struct {
	Action   Action  `json:"action"`
	OrderQty float64 `json:"order_qty"`
}

// Explanation lists the figures a replenish decision was based on
type Explanation struct {
	DaysOfCover  float64 `json:"doc"`
	NeedDays     float64 `json:"need_days"`
	Velocity     float64 `json:"velocity"`
	Incoming     float64 `json:"incoming"`
	ReorderPoint float64 `json:"rop"`
}

// Evaluation is the full result of evaluating one position
type Evaluation struct {
	SKUID       string       `json:"sku_id"`
	LocationID  string       `json:"location_id"`
	OnHand      float64      `json:"on_hand"`
	Features    FeatureSet   `json:"features"`
	Decision    Decision     `json:"decision"`
	Explanation *Explanation `json:"why,omitempty"`
	Catalog     *CatalogItem `json:"catalog,omitempty"`
}

// Snapshot is a loaded, read-only set of input records
type Snapshot struct {
	Positions []InventoryPosition
	Sales     map[PositionKey]SalesHistory
	Supply    map[PositionKey]SupplyState
	Catalog   map[string]CatalogItem
	LoadedAt  time.Time
}

// PositionInput bundles the records needed to evaluate one position
type PositionInput struct {
	Position InventoryPosition `json:"position"`
	Sales    SalesHistory      `json:"sales"`
	Supply   SupplyState       `json:"supply"`
	Catalog  *CatalogItem      `json:"catalog,omitempty"`
}

// Inputs joins the snapshot records per position, in position order.
// Positions without sales or supply records get empty ones.
func (s *Snapshot) Inputs() []PositionInput {
	inputs := make([]PositionInput, 0, len(s.Positions))
	for _, pos := range s.Positions {
		key := pos.Key()
		in := PositionInput{
			Position: pos,
			Sales:    s.Sales[key],
			Supply:   s.Supply[key],
		}
		if item, ok := s.Catalog[pos.SKUID]; ok {
			in.Catalog = &item
		}
		inputs = append(inputs, in)
	}
	return inputs
}

// EvaluationSummary counts evaluations by decision
type EvaluationSummary struct {
	Total         int     `json:"total"`
	Replenish     int     `json:"replenish"`
	Noop          int     `json:"noop"`
	TotalOrderQty float64 `json:"total_order_qty"`
	MaxRiskScore  int     `json:"max_risk_score"`
}

// EvaluationFilter narrows the evaluations returned to a caller
type EvaluationFilter struct {
	Action      Action   `json:"action"`
	SKUIDs      []string `json:"sku_ids"`
	LocationIDs []string `json:"location_ids"`
	MinRisk     int      `json:"min_risk"`
}
