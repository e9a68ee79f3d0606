//go:build !integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
)

func TestModuleAliasRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolve should return from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "invoicing", nil
			},
		}
		innerCalled := false
		mockInner := &mockInnerAliasRepo{
			ResolveFunc: func(ctx context.Context, qx repository.Tx, code string) (string, error) {
				innerCalled = true
				return "", nil
			},
		}

		decorator := NewModuleAliasRepoCacheDecorator(mockInner, mockRedis, time.Hour)

		got, err := decorator.Resolve(ctx, nil, "billing")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if got != "invoicing" {
			t.Errorf("expected invoicing, got %s", got)
		}
	})

	t.Run("Resolve should fall through and populate on miss", func(t *testing.T) {
		var setKey, setVal string
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", errors.New("redis: nil")
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, _ time.Duration) error {
				setKey = key
				setVal, _ = value.(string)
				return nil
			},
		}
		mockInner := &mockInnerAliasRepo{
			ResolveFunc: func(ctx context.Context, qx repository.Tx, code string) (string, error) {
				return "invoicing", nil
			},
		}

		decorator := NewModuleAliasRepoCacheDecorator(mockInner, mockRedis, time.Hour)

		got, err := decorator.Resolve(ctx, nil, "billing")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "invoicing" {
			t.Errorf("expected invoicing, got %s", got)
		}
		if setKey != "module_alias:billing" || setVal != "invoicing" {
			t.Errorf("expected the resolution to be cached, got %q=%q", setKey, setVal)
		}
	})

	t.Run("resolution failures are not cached", func(t *testing.T) {
		setCalled := false
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", errors.New("redis: nil")
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, _ time.Duration) error {
				setCalled = true
				return nil
			},
		}
		resolveErr := errors.New("unknown module")
		mockInner := &mockInnerAliasRepo{
			ResolveFunc: func(ctx context.Context, qx repository.Tx, code string) (string, error) {
				return "", resolveErr
			},
		}

		decorator := NewModuleAliasRepoCacheDecorator(mockInner, mockRedis, time.Hour)

		if _, err := decorator.Resolve(ctx, nil, "telepathy"); !errors.Is(err, resolveErr) {
			t.Fatalf("expected the inner error, got %v", err)
		}
		if setCalled {
			t.Error("a failed resolution must not be cached")
		}
	})

	t.Run("Save should invalidate the alias key", func(t *testing.T) {
		var deletedKeys []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deletedKeys = append(deletedKeys, keys...)
				return nil
			},
		}
		mockInner := &mockInnerAliasRepo{
			SaveFunc: func(ctx context.Context, qx repository.Tx, alias *model.ModuleAlias) error {
				return nil
			},
		}

		decorator := NewModuleAliasRepoCacheDecorator(mockInner, mockRedis, time.Hour)

		alias := &model.ModuleAlias{Alias: "billing", Canonical: "invoicing", EffectiveAt: time.Now()}
		if err := decorator.Save(ctx, nil, alias); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deletedKeys) != 1 || deletedKeys[0] != "module_alias:billing" {
			t.Fatalf("expected the alias key to be invalidated, got %v", deletedKeys)
		}
	})
}
