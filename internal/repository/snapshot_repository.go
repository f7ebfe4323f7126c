package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/domain"
)

// SnapshotSource loads the records the replenishment engine evaluates.
// Implementations only read; nothing is written back.
type SnapshotSource interface {
	Name() string
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// salesPoint is one day of sales for a position, before ordering
type salesPoint struct {
	SKUID      string    `db:"sku_id"`
	LocationID string    `db:"location_id"`
	Date       time.Time `db:"sales_date"`
	Units      float64   `db:"units_sold"`
}

// openPORow is one open purchase order for a position
type openPORow struct {
	SKUID      string     `db:"sku_id"`
	LocationID string     `db:"location_id"`
	Quantity   float64    `db:"qty"`
	ETA        *time.Time `db:"eta"`
}

// leadTimeRow is the supplier lead time for a position
type leadTimeRow struct {
	SKUID        string  `db:"sku_id"`
	LocationID   string  `db:"location_id"`
	LeadTimeDays float64 `db:"lead_time_days"`
}

// groupSales orders sales chronologically per position, oldest first.
func groupSales(points []salesPoint) map[domain.PositionKey]domain.SalesHistory {
	sorted := append([]salesPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make(map[domain.PositionKey]domain.SalesHistory)
	for _, p := range sorted {
		key := domain.PositionKey{SKUID: p.SKUID, LocationID: p.LocationID}
		h := out[key]
		h.SKUID, h.LocationID = p.SKUID, p.LocationID
		h.Units = append(h.Units, p.Units)
		out[key] = h
	}
	return out
}

// groupSupply merges lead times and open POs per position.
func groupSupply(leadTimes []leadTimeRow, orders []openPORow) map[domain.PositionKey]domain.SupplyState {
	out := make(map[domain.PositionKey]domain.SupplyState, len(leadTimes))
	for _, lt := range leadTimes {
		key := domain.PositionKey{SKUID: lt.SKUID, LocationID: lt.LocationID}
		s := out[key]
		s.SKUID, s.LocationID = lt.SKUID, lt.LocationID
		s.LeadTimeDays = lt.LeadTimeDays
		out[key] = s
	}
	for _, po := range orders {
		key := domain.PositionKey{SKUID: po.SKUID, LocationID: po.LocationID}
		s := out[key]
		s.SKUID, s.LocationID = po.SKUID, po.LocationID
		s.OpenPurchaseOrders = append(s.OpenPurchaseOrders, domain.OpenPurchaseOrder{
			Quantity: po.Quantity,
			ETA:      po.ETA,
		})
		out[key] = s
	}
	return out
}

// dedupePositions keeps the first record per (sku, location) and rejects
// negative on-hand quantities.
func dedupePositions(rows []domain.InventoryPosition) ([]domain.InventoryPosition, error) {
	seen := make(map[domain.PositionKey]struct{}, len(rows))
	out := make([]domain.InventoryPosition, 0, len(rows))
	for _, row := range rows {
		if row.OnHand < 0 {
			return nil, fmt.Errorf("position %s: negative on_hand %v", row.Key(), row.OnHand)
		}
		if _, ok := seen[row.Key()]; ok {
			continue
		}
		seen[row.Key()] = struct{}{}
		out = append(out, row)
	}
	return out, nil
}
