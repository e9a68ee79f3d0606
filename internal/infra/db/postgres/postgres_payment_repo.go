package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, company_id, amount, currency, status, meta, external_ref, created_at, updated_at, paid_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	var meta []byte
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Amount, &p.Currency, &p.Status, &meta, &p.ExternalRef, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &p.Meta); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, qx repository.Tx, p *model.Payment) error {
	meta, err := json.Marshal(p.Meta)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO payments (id, company_id, amount, currency, status, meta, external_ref, created_at, updated_at, paid_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  company_id=$2, amount=$3, currency=$4, status=$5, meta=$6, external_ref=$7, updated_at=$9, paid_at=$10;`

	if _, err := execSQL(ctx, r.pool, qx, q, p.ID, p.CompanyID, p.Amount, p.Currency, p.Status, meta, p.ExternalRef, p.CreatedAt, p.UpdatedAt, p.PaidAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	if inTx(qx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// MarkPaid only fires on pending rows, so re-confirmations and races report
// rather than overwrite.
func (r *paymentRepo) MarkPaid(ctx context.Context, qx repository.Tx, id string, externalRef string, paidAt time.Time) (bool, error) {
	const q = `
UPDATE payments
   SET status='paid', external_ref=$2, paid_at=$3, updated_at=NOW()
 WHERE id=$1 AND status='pending';`

	cmd, err := execSQL(ctx, r.pool, qx, q, id, externalRef, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, qx repository.Tx, id string, status model.PaymentStatus) error {
	const q = `UPDATE payments SET status=$2, updated_at=NOW() WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, qx, q, id, status); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) ListPaidUnprovisioned(ctx context.Context, qx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT ` + paymentColumns + `
  FROM payments p
 WHERE p.status='paid'
   AND p.paid_at < $1
   AND NOT EXISTS (SELECT 1 FROM invoices i WHERE i.payment_id = p.id)
 ORDER BY p.paid_at ASC
 LIMIT $2;`

	rows, err := queryRows(ctx, r.pool, qx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
