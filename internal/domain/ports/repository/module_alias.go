package repository

import (
	"context"

	"client-portal-provisioning/internal/domain/model"
)

// ModuleAliasRepository resolves historical module codes to canonical ones.
// The alias table is static or slowly-changing; implementations may cache.
type ModuleAliasRepository interface {
	Save(ctx context.Context, qx Tx, alias *model.ModuleAlias) error
	// Resolve maps one code to its canonical form. Codes with no alias row
	// resolve to themselves when a module with that code exists; unknown codes
	// return domain.ErrNotFound.
	Resolve(ctx context.Context, qx Tx, code string) (string, error)
	ListAll(ctx context.Context, qx Tx) ([]*model.ModuleAlias, error)
}

// ModuleRepository is the canonical module catalog.
type ModuleRepository interface {
	Save(ctx context.Context, qx Tx, m *model.Module) error
	FindByCode(ctx context.Context, qx Tx, code string) (*model.Module, error)
}
