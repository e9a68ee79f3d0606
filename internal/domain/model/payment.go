package model

import (
	"time"

	"client-portal-provisioning/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created by checkout; awaiting confirmation
	PaymentStatusPaid      PaymentStatus = "paid"      // confirmed settled at the gateway
	PaymentStatusOrphaned  PaymentStatus = "orphaned"  // referenced company was deleted; terminal
	PaymentStatusCancelled PaymentStatus = "cancelled" // admin/user cancel
)

// PaymentMeta is the structured metadata blob written at checkout time
// (stored as JSONB). It carries the references provisioning needs; none of
// them are guessed when absent.
type PaymentMeta struct {
	PlanID    string        `json:"plan_id,omitempty"`
	CompanyID string        `json:"company_id,omitempty"`
	ClientID  string        `json:"client_id,omitempty"`
	Amount    int64         `json:"amount,omitempty"`   // expected amount, minor units
	Currency  string        `json:"currency,omitempty"` // expected currency
	Checkout  *CheckoutMeta `json:"checkout,omitempty"`
}

// CheckoutMeta is display-oriented checkout state. Its plan reference is a
// copy of the top-level one; the two must agree.
type CheckoutMeta struct {
	PlanID   string `json:"plan_id,omitempty"`
	PlanName string `json:"plan_name,omitempty"`
}

// ResolvePlanID returns the plan reference to provision against. The
// top-level field wins; a disagreement with the nested checkout copy means
// the metadata was hand-edited and must be corrected by an operator.
func (m PaymentMeta) ResolvePlanID() (string, error) {
	nested := ""
	if m.Checkout != nil {
		nested = m.Checkout.PlanID
	}
	switch {
	case m.PlanID == "" && nested == "":
		return "", domain.NewValidationError("plan_id", "payment metadata is missing plan_id")
	case m.PlanID == "":
		return nested, nil
	case nested != "" && nested != m.PlanID:
		return "", domain.NewValidationError("plan_id", "top-level and checkout plan_id disagree")
	default:
		return m.PlanID, nil
	}
}

// Payment records the money side of a purchase, tracked through
// pending/paid/orphaned/cancelled.
type Payment struct {
	ID          string // UUID
	CompanyID   *string
	Amount      int64 // minor units, integer to avoid float errors
	Currency    string
	Status      PaymentStatus
	Meta        PaymentMeta
	ExternalRef *string // gateway transaction reference, set on confirmation
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
}

// Terminal reports whether the payment can never be provisioned again
// without manual intervention.
func (p *Payment) Terminal() bool {
	return p.Status == PaymentStatusOrphaned || p.Status == PaymentStatusCancelled
}
