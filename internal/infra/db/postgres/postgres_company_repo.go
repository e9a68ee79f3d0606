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

// Read-only views over rows owned by the CRUD layer.

var (
	_ repository.CompanyRepository = (*companyRepo)(nil)
	_ repository.ClientRepository  = (*clientRepo)(nil)
)

type companyRepo struct{ pool *pgxpool.Pool }

func NewCompanyRepo(pool *pgxpool.Pool) *companyRepo {
	return &companyRepo{pool: pool}
}

func (r *companyRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Company, error) {
	const q = `SELECT id, name, created_at, deleted_at FROM companies WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	c := &model.Company{}
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

type clientRepo struct{ pool *pgxpool.Pool }

func NewClientRepo(pool *pgxpool.Pool) *clientRepo {
	return &clientRepo{pool: pool}
}

func (r *clientRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Client, error) {
	const q = `SELECT id, company_id, name, email, created_at FROM clients WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	c := &model.Client{}
	if err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}
