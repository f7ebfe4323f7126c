package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/config"
	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix     = "shelfwatch:snapshot"
	snapshotScanBatchSize = 100
)

// SnapshotCache keeps loaded input snapshots so that re-evaluating under a
// new policy does not hit the source again. Evaluations are never cached.
type SnapshotCache interface {
	Get(ctx context.Context, source string) (*domain.Snapshot, bool, error)
	Set(ctx context.Context, source string, snapshot *domain.Snapshot) error
	InvalidateAll(ctx context.Context) error
}

type redisSnapshotCache struct {
	client redisKV
	ttl    time.Duration
}

type noopSnapshotCache struct{}

func NewSnapshotCache(cfg config.CacheConfig) (SnapshotCache, error) {
	if !cfg.Enabled {
		return &noopSnapshotCache{}, nil
	}

	client, err := dialRedis(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisSnapshotCache(client, snapshotTTL(cfg)), nil
}

// NewRedisSnapshotCache wraps an existing client.
func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) SnapshotCache {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &redisSnapshotCache{client: client, ttl: ttl}
}

func NewNoopSnapshotCache() SnapshotCache {
	return &noopSnapshotCache{}
}

// snapshotPayload is the wire form of a snapshot; struct-keyed maps do not
// encode to JSON so the per-position records travel as slices.
type snapshotPayload struct {
	Positions []domain.InventoryPosition `json:"positions"`
	Sales     []domain.SalesHistory      `json:"sales"`
	Supply    []domain.SupplyState       `json:"supply"`
	Catalog   []domain.CatalogItem       `json:"catalog"`
	LoadedAt  time.Time                  `json:"loaded_at"`
}

func encodeSnapshot(s *domain.Snapshot) ([]byte, error) {
	p := snapshotPayload{Positions: s.Positions, LoadedAt: s.LoadedAt}
	for _, pos := range s.Positions {
		key := pos.Key()
		if h, ok := s.Sales[key]; ok {
			h.SKUID, h.LocationID = key.SKUID, key.LocationID
			p.Sales = append(p.Sales, h)
		}
		if sup, ok := s.Supply[key]; ok {
			sup.SKUID, sup.LocationID = key.SKUID, key.LocationID
			p.Supply = append(p.Supply, sup)
		}
	}
	for _, item := range s.Catalog {
		p.Catalog = append(p.Catalog, item)
	}
	return json.Marshal(p)
}

func decodeSnapshot(payload []byte) (*domain.Snapshot, error) {
	var p snapshotPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	s := &domain.Snapshot{
		Positions: p.Positions,
		Sales:     make(map[domain.PositionKey]domain.SalesHistory, len(p.Sales)),
		Supply:    make(map[domain.PositionKey]domain.SupplyState, len(p.Supply)),
		Catalog:   make(map[string]domain.CatalogItem, len(p.Catalog)),
		LoadedAt:  p.LoadedAt,
	}
	for _, h := range p.Sales {
		s.Sales[domain.PositionKey{SKUID: h.SKUID, LocationID: h.LocationID}] = h
	}
	for _, sup := range p.Supply {
		s.Supply[domain.PositionKey{SKUID: sup.SKUID, LocationID: sup.LocationID}] = sup
	}
	for _, item := range p.Catalog {
		s.Catalog[item.SKUID] = item
	}
	return s, nil
}

func (c *redisSnapshotCache) Get(ctx context.Context, source string) (*domain.Snapshot, bool, error) {
	payload, err := c.client.Get(ctx, buildSnapshotKey(source)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	snapshot, err := decodeSnapshot(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode snapshot cache: %w", err)
	}
	return snapshot, true, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, source string, snapshot *domain.Snapshot) error {
	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot cache: %w", err)
	}

	if err := c.client.Set(ctx, buildSnapshotKey(source), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSnapshotCache) InvalidateAll(ctx context.Context) error {
	return purgePrefix(ctx, c.client, snapshotKeyPrefix, snapshotScanBatchSize)
}

func (n *noopSnapshotCache) Get(ctx context.Context, source string) (*domain.Snapshot, bool, error) {
	return nil, false, nil
}

func (n *noopSnapshotCache) Set(ctx context.Context, source string, snapshot *domain.Snapshot) error {
	return nil
}

func (n *noopSnapshotCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSnapshotKey(source string) string {
	sum := sha1.Sum([]byte(source))
	return fmt.Sprintf("%s:%s", snapshotKeyPrefix, hex.EncodeToString(sum[:]))
}
