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

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, company_id, plan_id, status, start_at, created_at`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	if err := row.Scan(&s.ID, &s.CompanyID, &s.PlanID, &s.Status, &s.StartAt, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *subscriptionRepo) Insert(ctx context.Context, qx repository.Tx, sub *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (id, company_id, plan_id, status, start_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`

	if _, err := execSQL(ctx, r.pool, qx, q, sub.ID, sub.CompanyID, sub.PlanID, sub.Status, sub.StartAt, sub.CreatedAt); err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		case err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) FindActiveByCompany(ctx context.Context, qx repository.Tx, companyID string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE company_id=$1 AND status='active' LIMIT 1;`
	row, err := pickRow(ctx, r.pool, qx, q, companyID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) UpdatePlan(ctx context.Context, qx repository.Tx, id string, planID string) error {
	const q = `UPDATE subscriptions SET plan_id=$2 WHERE id=$1 AND status='active';`
	cmd, err := execSQL(ctx, r.pool, qx, q, id, planID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
