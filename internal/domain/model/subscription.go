package model

import (
	"time"

	"client-portal-provisioning/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a company's entitlement to a plan. A company has at most
// one active subscription at a time (enforced by a partial unique index).
type Subscription struct {
	ID        string // UUID
	CompanyID string
	PlanID    string
	Status    SubscriptionStatus
	StartAt   time.Time
	CreatedAt time.Time
}

// NewSubscription creates an active subscription starting now.
func NewSubscription(id, companyID string, plan *Plan) (*Subscription, error) {
	if id == "" || companyID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:        id,
		CompanyID: companyID,
		PlanID:    plan.ID,
		Status:    SubscriptionStatusActive,
		StartAt:   now,
		CreatedAt: now,
	}, nil
}
