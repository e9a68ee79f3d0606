package model

import (
	"time"

	"client-portal-provisioning/internal/domain"
)

type InvoiceStatus string

const (
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is the billing document generated once a payment is confirmed.
// Exactly one invoice exists per payment; Number is the human-facing
// document number (ULID, sortable by issue time).
type Invoice struct {
	ID        string // UUID
	Number    string // ULID
	CompanyID string
	PaymentID string
	Amount    int64
	Currency  string
	Status    InvoiceStatus
	CreatedAt time.Time
}

// NewInvoice constructs a paid invoice for a confirmed payment.
func NewInvoice(id, number, companyID, paymentID string, amount int64, currency string) (*Invoice, error) {
	if id == "" || number == "" || companyID == "" || paymentID == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Invoice{
		ID:        id,
		Number:    number,
		CompanyID: companyID,
		PaymentID: paymentID,
		Amount:    amount,
		Currency:  currency,
		Status:    InvoiceStatusPaid,
		CreatedAt: time.Now(),
	}, nil
}
