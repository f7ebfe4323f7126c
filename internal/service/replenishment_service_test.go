package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snapshot *domain.Snapshot
	err      error
	loads    int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

type memoryCache struct {
	entries map[string]*domain.Snapshot
	getErr  error
}

func (m *memoryCache) Get(ctx context.Context, source string) (*domain.Snapshot, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	s, ok := m.entries[source]
	return s, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, source string, snapshot *domain.Snapshot) error {
	m.entries[source] = snapshot
	return nil
}

func (m *memoryCache) InvalidateAll(ctx context.Context) error {
	m.entries = map[string]*domain.Snapshot{}
	return nil
}

// demoSnapshot holds the three reference positions: A (noop, risk 12),
// B (noop, risk 0) and C (replenish, risk 90).
func demoSnapshot() *domain.Snapshot {
	a := domain.InventoryPosition{SKUID: "A123", LocationID: "SFO1", OnHand: 22}
	b := domain.InventoryPosition{SKUID: "A124", LocationID: "SFO1", OnHand: 10}
	c := domain.InventoryPosition{SKUID: "C900", LocationID: "LAX2", OnHand: 5}
	return &domain.Snapshot{
		Positions: []domain.InventoryPosition{a, b, c},
		Sales: map[domain.PositionKey]domain.SalesHistory{
			a.Key(): {Units: []float64{6, 5, 4, 5, 5, 6, 4}},
			b.Key(): {Units: []float64{3, 2, 1, 2, 2, 0, 0}},
			c.Key(): {Units: []float64{10, 10, 10, 10, 10, 10, 10}},
		},
		Supply: map[domain.PositionKey]domain.SupplyState{
			a.Key(): {LeadTimeDays: 3, OpenPurchaseOrders: []domain.OpenPurchaseOrder{{Quantity: 30}}},
			b.Key(): {LeadTimeDays: 4, OpenPurchaseOrders: []domain.OpenPurchaseOrder{{Quantity: 0}}},
			c.Key(): {LeadTimeDays: 3},
		},
	}
}

func newTestService(src *fakeSource, c *memoryCache) *ReplenishmentService {
	svc := NewReplenishmentService(src, c, pipeline.NewWorker(pipeline.Config{WorkerCount: 2}))
	svc.now = func() time.Time { return time.Date(2025, 8, 18, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestReplenishmentService_Evaluate(t *testing.T) {
	svc := newTestService(&fakeSource{snapshot: demoSnapshot()}, &memoryCache{entries: map[string]*domain.Snapshot{}})

	evals, err := svc.Evaluate(context.Background(), domain.DefaultPolicy(), domain.EvaluationFilter{})
	require.NoError(t, err)
	require.Len(t, evals, 3)

	assert.Equal(t, "A123", evals[0].SKUID)
	assert.Equal(t, 12, evals[0].Features.RiskScore)
	assert.Equal(t, domain.ActionNoop, evals[0].Decision.Action)
	assert.Equal(t, 0, evals[1].Features.RiskScore)
	assert.Equal(t, domain.ActionReplenish, evals[2].Decision.Action)
	assert.Equal(t, 95.0, evals[2].Decision.OrderQty)
}

func TestReplenishmentService_PolicyChangeRecomputes(t *testing.T) {
	src := &fakeSource{snapshot: demoSnapshot()}
	svc := newTestService(src, &memoryCache{entries: map[string]*domain.Snapshot{}})
	ctx := context.Background()

	policy := domain.DefaultPolicy()
	first, err := svc.Summary(ctx, policy, domain.EvaluationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Replenish)

	policy.RiskThreshold = 10
	policy.ReorderMultiple = 6
	second, err := svc.Summary(ctx, policy, domain.EvaluationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Replenish)
	assert.Equal(t, 1, second.Noop)
	assert.Equal(t, 90, second.MaxRiskScore)
	// A: target 50 - (22+30) < 0 -> 0; C: 95 -> 96
	assert.Equal(t, 96.0, second.TotalOrderQty)

	assert.Equal(t, 1, src.loads, "snapshot is loaded once and reused")
}

func TestReplenishmentService_CacheErrorFallsBackToSource(t *testing.T) {
	src := &fakeSource{snapshot: demoSnapshot()}
	svc := newTestService(src, &memoryCache{entries: map[string]*domain.Snapshot{}, getErr: errors.New("redis down")})

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.loads)
	assert.Equal(t, time.Date(2025, 8, 18, 10, 0, 0, 0, time.UTC), snap.LoadedAt)
}

func TestReplenishmentService_Refresh(t *testing.T) {
	src := &fakeSource{snapshot: demoSnapshot()}
	svc := newTestService(src, &memoryCache{entries: map[string]*domain.Snapshot{}})
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(ctx))
	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.loads)
}

func TestReplenishmentService_Errors(t *testing.T) {
	boom := errors.New("disk gone")
	svc := newTestService(&fakeSource{err: boom}, &memoryCache{entries: map[string]*domain.Snapshot{}})

	_, err := svc.Evaluate(context.Background(), domain.DefaultPolicy(), domain.EvaluationFilter{})
	assert.ErrorIs(t, err, boom)

	bad := domain.DefaultPolicy()
	bad.MinOrderQty = 600
	_, err = svc.Evaluate(context.Background(), bad, domain.EvaluationFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
}

func TestReplenishmentService_Alerts(t *testing.T) {
	svc := newTestService(&fakeSource{snapshot: demoSnapshot()}, &memoryCache{entries: map[string]*domain.Snapshot{}})

	alerts, err := svc.Alerts(context.Background(), domain.DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "C900@LAX2 - risk 90", alerts[0].Title)
	assert.Equal(t, "Order 95 units", alerts[0].Suggestion)
}

func TestNewReplenishmentService_Defaults(t *testing.T) {
	svc := NewReplenishmentService(&fakeSource{snapshot: demoSnapshot()}, nil, nil)

	evals, err := svc.Evaluate(context.Background(), domain.DefaultPolicy(), domain.EvaluationFilter{Action: domain.ActionReplenish})
	require.NoError(t, err)
	assert.Len(t, evals, 1)
}
