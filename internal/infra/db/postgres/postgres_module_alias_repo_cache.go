package postgres

import (
	"context"
	"fmt"
	"time"

	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
	"client-portal-provisioning/internal/infra/metrics"
	red "client-portal-provisioning/internal/infra/redis"
)

var _ repository.ModuleAliasRepository = (*aliasRepoCacheDecorator)(nil)

// aliasRepoCacheDecorator caches alias resolution. The alias table is
// static or slowly-changing; sync consults it once per entitled code.
type aliasRepoCacheDecorator struct {
	inner repository.ModuleAliasRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewModuleAliasRepoCacheDecorator(inner repository.ModuleAliasRepository, cache red.RedisClient, ttl time.Duration) repository.ModuleAliasRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &aliasRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func aliasKey(code string) string { return fmt.Sprintf("module_alias:%s", code) }

func (d *aliasRepoCacheDecorator) Resolve(ctx context.Context, qx repository.Tx, code string) (string, error) {
	if !inTx(qx) {
		if canonical, err := d.cache.Get(ctx, aliasKey(code)); err == nil && canonical != "" {
			metrics.IncCacheRequest("module_alias", "hit")
			return canonical, nil
		}
		metrics.IncCacheRequest("module_alias", "miss")
	}

	canonical, err := d.inner.Resolve(ctx, qx, code)
	if err != nil {
		return "", err
	}
	_ = d.cache.Set(ctx, aliasKey(code), canonical, d.ttl)
	return canonical, nil
}

func (d *aliasRepoCacheDecorator) Save(ctx context.Context, qx repository.Tx, alias *model.ModuleAlias) error {
	if err := d.inner.Save(ctx, qx, alias); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, aliasKey(alias.Alias))
	return nil
}

func (d *aliasRepoCacheDecorator) ListAll(ctx context.Context, qx repository.Tx) ([]*model.ModuleAlias, error) {
	return d.inner.ListAll(ctx, qx)
}
