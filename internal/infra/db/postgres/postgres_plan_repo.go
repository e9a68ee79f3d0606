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

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

func (r *planRepo) Save(ctx context.Context, qx repository.Tx, plan *model.Plan) error {
	const q = `
INSERT INTO plans (id, name, price, currency, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET name=$2, price=$3, currency=$4;`

	if _, err := execSQL(ctx, r.pool, qx, q, plan.ID, plan.Name, plan.Price, plan.Currency, plan.CreatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}

	// Entitlements are replaced wholesale; position preserves the plan's
	// ordered module list.
	if _, err := execSQL(ctx, r.pool, qx, `DELETE FROM plan_modules WHERE plan_id=$1;`, plan.ID); err != nil {
		return domain.ErrOperationFailed
	}
	for i, code := range plan.ModuleCodes {
		const qm = `INSERT INTO plan_modules (plan_id, module_code, position) VALUES ($1,$2,$3);`
		if _, err := execSQL(ctx, r.pool, qx, qm, plan.ID, code, i); err != nil {
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Plan, error) {
	const q = `SELECT id, name, price, currency, created_at FROM plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}

	p := &model.Plan{}
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Currency, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}

	codes, err := r.moduleCodes(ctx, qx, p.ID)
	if err != nil {
		return nil, err
	}
	p.ModuleCodes = codes
	return p, nil
}

func (r *planRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.Plan, error) {
	const q = `SELECT id, name, price, currency, created_at FROM plans ORDER BY price ASC;`
	rows, err := queryRows(ctx, r.pool, qx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Plan
	for rows.Next() {
		p := &model.Plan{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Currency, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	for _, p := range out {
		codes, err := r.moduleCodes(ctx, qx, p.ID)
		if err != nil {
			return nil, err
		}
		p.ModuleCodes = codes
	}
	return out, nil
}

func (r *planRepo) moduleCodes(ctx context.Context, qx repository.Tx, planID string) ([]string, error) {
	const q = `SELECT module_code FROM plan_modules WHERE plan_id=$1 ORDER BY position ASC;`
	rows, err := queryRows(ctx, r.pool, qx, q, planID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		codes = append(codes, c)
	}
	return codes, nil
}
