package repository

import (
	"context"
	"fmt"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/repository/postgres"
	"github.com/rs/zerolog/log"
)

const (
	inventoryQuery = `
		SELECT sku_id, location_id, on_hand, last_updated
		FROM inventory_positions
		ORDER BY sku_id, location_id
	`
	salesQuery = `
		SELECT sku_id, location_id, sales_date, units_sold
		FROM daily_sales
		WHERE sales_date >= CURRENT_DATE - $1::int
		ORDER BY sales_date
	`
	leadTimeQuery = `
		SELECT sku_id, location_id, lead_time_days
		FROM supply_states
	`
	openPOQuery = `
		SELECT sku_id, location_id, qty, eta
		FROM open_purchase_orders
		WHERE status = 'open'
		ORDER BY eta NULLS LAST
	`
	catalogQuery = `
		SELECT sku_id, substitution_group_id, pack_size, uom
		FROM catalog_items
	`
)

// readTxRunner runs fn inside one read-only transaction. *postgres.DB
// satisfies it.
type readTxRunner interface {
	WithReadTx(ctx context.Context, fn func(q postgres.Querier) error) error
}

// PostgresSource reads a snapshot from the inventory, sales and supply tables.
type PostgresSource struct {
	db           readTxRunner
	lookbackDays int
}

// NewPostgresSource reads sales going back lookbackDays. The engine windows
// the history itself, so the lookback only bounds the amount fetched.
func NewPostgresSource(db readTxRunner, lookbackDays int) *PostgresSource {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}
	return &PostgresSource{db: db, lookbackDays: lookbackDays}
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func (s *PostgresSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	var (
		positions []domain.InventoryPosition
		points    []salesPoint
		leadTimes []leadTimeRow
		orders    []openPORow
		catalog   []domain.CatalogItem
	)

	err := s.db.WithReadTx(ctx, func(tx postgres.Querier) error {
		if err := tx.SelectContext(ctx, &positions, inventoryQuery); err != nil {
			return fmt.Errorf("error getting inventory positions: %w", err)
		}
		if err := tx.SelectContext(ctx, &points, salesQuery, s.lookbackDays); err != nil {
			return fmt.Errorf("error getting daily sales: %w", err)
		}
		if err := tx.SelectContext(ctx, &leadTimes, leadTimeQuery); err != nil {
			return fmt.Errorf("error getting supply states: %w", err)
		}
		if err := tx.SelectContext(ctx, &orders, openPOQuery); err != nil {
			return fmt.Errorf("error getting open purchase orders: %w", err)
		}
		if err := tx.SelectContext(ctx, &catalog, catalogQuery); err != nil {
			return fmt.Errorf("error getting catalog items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	positions, err = dedupePositions(positions)
	if err != nil {
		return nil, err
	}

	catalogBySKU := make(map[string]domain.CatalogItem, len(catalog))
	for _, item := range catalog {
		catalogBySKU[item.SKUID] = item
	}

	log.Debug().
		Int("positions", len(positions)).
		Int("sales_points", len(points)).
		Int("open_pos", len(orders)).
		Msg("snapshot loaded from postgres")

	return &domain.Snapshot{
		Positions: positions,
		Sales:     groupSales(points),
		Supply:    groupSupply(leadTimes, orders),
		Catalog:   catalogBySKU,
	}, nil
}
