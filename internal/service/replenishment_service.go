package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/cache"
	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/pipeline"
	"github.com/andresuchdata/shelfwatch/internal/pipeline/replenishment"
	"github.com/andresuchdata/shelfwatch/internal/repository"
	"github.com/rs/zerolog/log"
)

// ReplenishmentService evaluates the current snapshot under a caller-supplied
// policy. Each call recomputes every evaluation; only the input snapshot is
// cached.
type ReplenishmentService struct {
	source repository.SnapshotSource
	cache  cache.SnapshotCache
	worker *pipeline.Worker
	now    func() time.Time
}

func NewReplenishmentService(source repository.SnapshotSource, cacheImpl cache.SnapshotCache, worker *pipeline.Worker) *ReplenishmentService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSnapshotCache()
	}
	if worker == nil {
		worker = pipeline.NewWorker(pipeline.DefaultConfig())
	}
	return &ReplenishmentService{source: source, cache: cacheImpl, worker: worker, now: time.Now}
}

// Snapshot returns the current input snapshot, from cache when available.
func (s *ReplenishmentService) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	name := s.source.Name()
	if snapshot, ok, err := s.cache.Get(ctx, name); err == nil && ok {
		return snapshot, nil
	} else if err != nil {
		log.Warn().Err(err).Str("source", name).Msg("replenishment: cache get snapshot failed")
	}

	snapshot, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot from %s: %w", name, err)
	}
	snapshot.LoadedAt = s.now()

	if err := s.cache.Set(ctx, name, snapshot); err != nil {
		log.Warn().Err(err).Str("source", name).Msg("replenishment: cache set snapshot failed")
	}

	return snapshot, nil
}

// Refresh drops cached snapshots so the next call reloads from the source.
func (s *ReplenishmentService) Refresh(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// Evaluate evaluates every position in the snapshot and returns those that
// match filter, in snapshot order.
func (s *ReplenishmentService) Evaluate(ctx context.Context, policy domain.PolicyParameters, filter domain.EvaluationFilter) ([]domain.Evaluation, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	evals, err := s.EvaluateInputs(ctx, snapshot.Inputs(), policy)
	if err != nil {
		return nil, err
	}

	return FilterEvaluations(evals, filter), nil
}

// EvaluateInputs evaluates caller-supplied records without touching the source.
func (s *ReplenishmentService) EvaluateInputs(ctx context.Context, inputs []domain.PositionInput, policy domain.PolicyParameters) ([]domain.Evaluation, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	evals, metrics, err := s.worker.EvaluateAll(ctx, inputs, policy)
	if err != nil {
		return nil, fmt.Errorf("evaluate positions: %w", err)
	}

	log.Info().
		Int("positions", metrics.Positions).
		Int("replenish", metrics.Replenish).
		Float64("risk_threshold", policy.RiskThreshold).
		Dur("duration", metrics.Duration).
		Msg("replenishment evaluated")

	return evals, nil
}

// Summary evaluates the snapshot and counts decisions.
func (s *ReplenishmentService) Summary(ctx context.Context, policy domain.PolicyParameters, filter domain.EvaluationFilter) (domain.EvaluationSummary, error) {
	evals, err := s.Evaluate(ctx, policy, filter)
	if err != nil {
		return domain.EvaluationSummary{}, err
	}
	return Summarize(evals), nil
}

// Alerts evaluates the snapshot and formats an alert per replenish decision.
func (s *ReplenishmentService) Alerts(ctx context.Context, policy domain.PolicyParameters) ([]replenishment.Alert, error) {
	evals, err := s.Evaluate(ctx, policy, domain.EvaluationFilter{Action: domain.ActionReplenish})
	if err != nil {
		return nil, err
	}

	alerts := make([]replenishment.Alert, 0, len(evals))
	for _, e := range evals {
		if a := replenishment.BuildAlert(e); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts, nil
}
