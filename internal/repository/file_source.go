package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	InventoryFile = "inventory_snapshot.csv"
	SalesFile     = "sales.csv"
	SupplyFile    = "supply.json"
	CatalogFile   = "catalog.csv"
)

// FileSource reads a snapshot from CSV and JSON exports in a directory.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Name() string {
	return "file:" + s.dir
}

func (s *FileSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	positions, err := s.readInventory()
	if err != nil {
		return nil, err
	}

	points, err := s.readSales()
	if err != nil {
		return nil, err
	}

	leadTimes, orders, err := s.readSupply()
	if err != nil {
		return nil, err
	}

	catalog, err := s.readCatalog()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("dir", s.dir).
		Int("positions", len(positions)).
		Int("sales_points", len(points)).
		Int("open_pos", len(orders)).
		Msg("snapshot files loaded")

	return &domain.Snapshot{
		Positions: positions,
		Sales:     groupSales(points),
		Supply:    groupSupply(leadTimes, orders),
		Catalog:   catalog,
	}, nil
}

func (s *FileSource) readInventory() ([]domain.InventoryPosition, error) {
	records, cols, err := readCSV(filepath.Join(s.dir, InventoryFile), "sku_id", "location_id", "on_hand")
	if err != nil {
		return nil, err
	}

	rows := make([]domain.InventoryPosition, 0, len(records))
	for i, rec := range records {
		onHand, err := parseFloat(rec[cols["on_hand"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: on_hand: %w", InventoryFile, i+2, err)
		}
		pos := domain.InventoryPosition{
			SKUID:      strings.TrimSpace(rec[cols["sku_id"]]),
			LocationID: strings.TrimSpace(rec[cols["location_id"]]),
			OnHand:     onHand,
		}
		if ts, err := parseTime(cols.get(rec, "last_updated")); err == nil && ts != nil {
			pos.LastUpdated = *ts
		}
		rows = append(rows, pos)
	}

	return dedupePositions(rows)
}

func (s *FileSource) readSales() ([]salesPoint, error) {
	records, cols, err := readCSV(filepath.Join(s.dir, SalesFile), "ts", "sku_id", "location_id", "units_sold")
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	points := make([]salesPoint, 0, len(records))
	for i, rec := range records {
		ts, err := parseTime(rec[cols["ts"]])
		if err != nil || ts == nil {
			return nil, fmt.Errorf("%s line %d: invalid ts %q", SalesFile, i+2, rec[cols["ts"]])
		}
		units, err := parseFloat(rec[cols["units_sold"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: units_sold: %w", SalesFile, i+2, err)
		}
		points = append(points, salesPoint{
			SKUID:      strings.TrimSpace(rec[cols["sku_id"]]),
			LocationID: strings.TrimSpace(rec[cols["location_id"]]),
			Date:       *ts,
			Units:      units,
		})
	}
	return points, nil
}

type supplyRecord struct {
	SKUID        string  `json:"sku_id"`
	LocationID   string  `json:"location_id"`
	LeadTimeDays float64 `json:"lead_time_days"`
	OpenPOs      []struct {
		Qty      *float64 `json:"qty"`
		Quantity *float64 `json:"quantity"`
		ETA      *string  `json:"eta"`
	} `json:"open_pos"`
}

func (s *FileSource) readSupply() ([]leadTimeRow, []openPORow, error) {
	payload, err := os.ReadFile(filepath.Join(s.dir, SupplyFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", SupplyFile, err)
	}

	var items []supplyRecord
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", SupplyFile, err)
	}

	var (
		leadTimes []leadTimeRow
		orders    []openPORow
	)
	for _, it := range items {
		leadTimes = append(leadTimes, leadTimeRow{SKUID: it.SKUID, LocationID: it.LocationID, LeadTimeDays: it.LeadTimeDays})
		for _, po := range it.OpenPOs {
			row := openPORow{SKUID: it.SKUID, LocationID: it.LocationID}
			switch {
			case po.Qty != nil:
				row.Quantity = *po.Qty
			case po.Quantity != nil:
				row.Quantity = *po.Quantity
			}
			if po.ETA != nil {
				eta, err := parseTime(*po.ETA)
				if err != nil {
					return nil, nil, fmt.Errorf("%s: %s@%s eta: %w", SupplyFile, it.SKUID, it.LocationID, err)
				}
				row.ETA = eta
			}
			orders = append(orders, row)
		}
	}
	return leadTimes, orders, nil
}

func (s *FileSource) readCatalog() (map[string]domain.CatalogItem, error) {
	records, cols, err := readCSV(filepath.Join(s.dir, CatalogFile), "sku_id")
	if errors.Is(err, os.ErrNotExist) {
		return map[string]domain.CatalogItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.CatalogItem, len(records))
	for _, rec := range records {
		item := domain.CatalogItem{
			SKUID:               cols.get(rec, "sku_id"),
			SubstitutionGroupID: cols.get(rec, "substitution_group_id"),
			UOM:                 cols.get(rec, "uom"),
		}
		if n, err := strconv.Atoi(cols.get(rec, "pack_size")); err == nil {
			item.PackSize = n
		}
		out[item.SKUID] = item
	}
	return out, nil
}

// readCSV returns the data rows of a CSV file and its header index.
func readCSV(path string, required ...string) ([][]string, columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%s: empty file", filepath.Base(path))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", filepath.Base(path), err)
	}

	cols := make(columns, len(header))
	for i, col := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, nil, fmt.Errorf("%s: missing required column: %s", filepath.Base(path), col)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	// Rows must reach every required column; optional ones go through columns.get.
	need := 0
	for _, col := range required {
		if idx := cols[col]; idx >= need {
			need = idx + 1
		}
	}
	valid := records[:0]
	for i, rec := range records {
		if len(rec) < need {
			log.Warn().Str("file", filepath.Base(path)).Int("line", i+2).Int("fields", len(rec)).
				Msg("skipping row missing required columns")
			continue
		}
		valid = append(valid, rec)
	}
	return valid, cols, nil
}

// columns maps lower-cased header names to field indexes.
type columns map[string]int

// get returns the trimmed field for col, or "" when the column is absent
// from the header or the row is short.
func (c columns) get(rec []string, col string) string {
	if idx, ok := c[col]; ok && idx < len(rec) {
		return strings.TrimSpace(rec[idx])
	}
	return ""
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// parseTime accepts the timestamp layouts used in exports. Empty and "null"
// return nil without error.
func parseTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized time %q", s)
}
