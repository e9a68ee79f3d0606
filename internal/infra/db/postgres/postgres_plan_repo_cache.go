package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
	"client-portal-provisioning/internal/infra/metrics"
	red "client-portal-provisioning/internal/infra/redis"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

// planRepoCacheDecorator caches plan lookups in Redis. Plans change rarely
// (catalog edits), so a TTL plus write-through invalidation is enough.
type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, cache red.RedisClient, ttl time.Duration) repository.PlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &planRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func planKey(id string) string { return fmt.Sprintf("plan:%s", id) }

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Plan, error) {
	// Inside a transaction, read through to keep the tx's view consistent.
	if !inTx(qx) {
		if val, err := d.cache.Get(ctx, planKey(id)); err == nil {
			var plan model.Plan
			if json.Unmarshal([]byte(val), &plan) == nil {
				metrics.IncCacheRequest("plan", "hit")
				return &plan, nil
			}
		}
		metrics.IncCacheRequest("plan", "miss")
	}

	plan, err := d.inner.FindByID(ctx, qx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(plan); err == nil {
		_ = d.cache.Set(ctx, planKey(id), b, d.ttl)
	}
	return plan, nil
}

func (d *planRepoCacheDecorator) Save(ctx context.Context, qx repository.Tx, plan *model.Plan) error {
	if err := d.inner.Save(ctx, qx, plan); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, planKey(plan.ID))
	return nil
}

func (d *planRepoCacheDecorator) ListAll(ctx context.Context, qx repository.Tx) ([]*model.Plan, error) {
	return d.inner.ListAll(ctx, qx)
}
