//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"

	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
	red "client-portal-provisioning/internal/infra/redis"
)

// fakeTx satisfies pgx.Tx for executor-dispatch tests; none of its methods
// are ever called.
type fakeTx struct{ pgx.Tx }

// --- Mocks for Cache Decorator Tests ---

// mockInnerPlanRepo mocks the database repository that the Plan decorator wraps.
type mockInnerPlanRepo struct {
	SaveFunc     func(ctx context.Context, qx repository.Tx, plan *model.Plan) error
	FindByIDFunc func(ctx context.Context, qx repository.Tx, id string) (*model.Plan, error)
	ListAllFunc  func(ctx context.Context, qx repository.Tx) ([]*model.Plan, error)
}

func (m *mockInnerPlanRepo) Save(ctx context.Context, qx repository.Tx, plan *model.Plan) error {
	return m.SaveFunc(ctx, qx, plan)
}
func (m *mockInnerPlanRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Plan, error) {
	return m.FindByIDFunc(ctx, qx, id)
}
func (m *mockInnerPlanRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.Plan, error) {
	return m.ListAllFunc(ctx, qx)
}

// mockInnerAliasRepo mocks the database repository that the alias decorator wraps.
type mockInnerAliasRepo struct {
	SaveFunc    func(ctx context.Context, qx repository.Tx, alias *model.ModuleAlias) error
	ResolveFunc func(ctx context.Context, qx repository.Tx, code string) (string, error)
	ListAllFunc func(ctx context.Context, qx repository.Tx) ([]*model.ModuleAlias, error)
}

func (m *mockInnerAliasRepo) Save(ctx context.Context, qx repository.Tx, alias *model.ModuleAlias) error {
	return m.SaveFunc(ctx, qx, alias)
}
func (m *mockInnerAliasRepo) Resolve(ctx context.Context, qx repository.Tx, code string) (string, error) {
	return m.ResolveFunc(ctx, qx, code)
}
func (m *mockInnerAliasRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.ModuleAlias, error) {
	return m.ListAllFunc(ctx, qx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc  func(ctx context.Context, key string) (string, error)
	SetFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc  func(ctx context.Context, keys ...string) error
	PingFunc func(ctx context.Context) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Close() error                   { return nil }
