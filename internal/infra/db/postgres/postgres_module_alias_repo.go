package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
)

var (
	_ repository.ModuleAliasRepository = (*moduleAliasRepo)(nil)
	_ repository.ModuleRepository     = (*moduleRepo)(nil)
)

type moduleAliasRepo struct{ pool *pgxpool.Pool }

func NewModuleAliasRepo(pool *pgxpool.Pool) *moduleAliasRepo {
	return &moduleAliasRepo{pool: pool}
}

func (r *moduleAliasRepo) Save(ctx context.Context, qx repository.Tx, alias *model.ModuleAlias) error {
	const q = `
INSERT INTO module_aliases (alias, canonical, effective_at)
VALUES ($1,$2,$3)
ON CONFLICT (alias, effective_at) DO UPDATE SET canonical=$2;`

	if _, err := execSQL(ctx, r.pool, qx, q, alias.Alias, alias.Canonical, alias.EffectiveAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// Resolve maps a code through the latest alias row; codes without an alias
// resolve to themselves when they exist in the module catalog.
func (r *moduleAliasRepo) Resolve(ctx context.Context, qx repository.Tx, code string) (string, error) {
	const q = `
SELECT canonical FROM module_aliases
 WHERE alias=$1
 ORDER BY effective_at DESC
 LIMIT 1;`

	row, err := pickRow(ctx, r.pool, qx, q, code)
	if err != nil {
		return "", err
	}
	var canonical string
	if err := row.Scan(&canonical); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrReadDatabaseRow
		}
		// No alias row: the code must be a canonical module itself.
		const qm = `SELECT code FROM modules WHERE code=$1;`
		row, err := pickRow(ctx, r.pool, qx, qm, code)
		if err != nil {
			return "", err
		}
		if err := row.Scan(&canonical); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", domain.ErrNotFound
			}
			return "", domain.ErrReadDatabaseRow
		}
	}
	return canonical, nil
}

func (r *moduleAliasRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.ModuleAlias, error) {
	const q = `SELECT alias, canonical, effective_at FROM module_aliases ORDER BY alias, effective_at DESC;`
	rows, err := queryRows(ctx, r.pool, qx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.ModuleAlias
	for rows.Next() {
		a := &model.ModuleAlias{}
		if err := rows.Scan(&a.Alias, &a.Canonical, &a.EffectiveAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, a)
	}
	return out, nil
}

type moduleRepo struct{ pool *pgxpool.Pool }

func NewModuleRepo(pool *pgxpool.Pool) *moduleRepo {
	return &moduleRepo{pool: pool}
}

func (r *moduleRepo) Save(ctx context.Context, qx repository.Tx, m *model.Module) error {
	const q = `
INSERT INTO modules (code, display_name)
VALUES ($1,$2)
ON CONFLICT (code) DO UPDATE SET display_name=$2;`

	if _, err := execSQL(ctx, r.pool, qx, q, m.Code, m.DisplayName); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *moduleRepo) FindByCode(ctx context.Context, qx repository.Tx, code string) (*model.Module, error) {
	const q = `SELECT code, display_name FROM modules WHERE code=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, code)
	if err != nil {
		return nil, err
	}
	m := &model.Module{}
	if err := row.Scan(&m.Code, &m.DisplayName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}
