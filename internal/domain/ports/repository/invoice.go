package repository

import (
	"context"

	"client-portal-provisioning/internal/domain/model"
)

type InvoiceRepository interface {
	// Insert fails with domain.ErrAlreadyExists when an invoice for the same
	// payment already exists (unique constraint on payment_id).
	Insert(ctx context.Context, qx Tx, inv *model.Invoice) error
	FindByPaymentID(ctx context.Context, qx Tx, paymentID string) (*model.Invoice, error)
}
