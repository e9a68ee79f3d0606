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

var _ repository.InvoiceRepository = (*invoiceRepo)(nil)

type invoiceRepo struct{ pool *pgxpool.Pool }

func NewInvoiceRepo(pool *pgxpool.Pool) *invoiceRepo {
	return &invoiceRepo{pool: pool}
}

const invoiceColumns = `id, number, company_id, payment_id, amount, currency, status, created_at`

func (r *invoiceRepo) Insert(ctx context.Context, qx repository.Tx, inv *model.Invoice) error {
	const q = `
INSERT INTO invoices (id, number, company_id, payment_id, amount, currency, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	if _, err := execSQL(ctx, r.pool, qx, q, inv.ID, inv.Number, inv.CompanyID, inv.PaymentID, inv.Amount, inv.Currency, inv.Status, inv.CreatedAt); err != nil {
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

func (r *invoiceRepo) FindByPaymentID(ctx context.Context, qx repository.Tx, paymentID string) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE payment_id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, paymentID)
	if err != nil {
		return nil, err
	}

	inv := &model.Invoice{}
	if err := row.Scan(&inv.ID, &inv.Number, &inv.CompanyID, &inv.PaymentID, &inv.Amount, &inv.Currency, &inv.Status, &inv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return inv, nil
}
