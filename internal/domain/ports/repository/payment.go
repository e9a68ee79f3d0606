package repository

import (
	"context"
	"time"

	"client-portal-provisioning/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, qx Tx, p *model.Payment) error
	// FindByID locks the row (FOR UPDATE) when qx carries a transaction.
	FindByID(ctx context.Context, qx Tx, id string) (*model.Payment, error)
	// MarkPaid transitions pending -> paid atomically; returns false when the
	// payment was not in pending (already paid, orphaned, cancelled).
	MarkPaid(ctx context.Context, qx Tx, id string, externalRef string, paidAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, qx Tx, id string, status model.PaymentStatus) error
	// ListPaidUnprovisioned returns paid payments older than the cutoff with
	// no invoice attributed to them, for reconciliation tooling.
	ListPaidUnprovisioned(ctx context.Context, qx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}
