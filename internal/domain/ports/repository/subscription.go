package repository

import (
	"context"

	"client-portal-provisioning/internal/domain/model"
)

type SubscriptionRepository interface {
	// Insert fails with domain.ErrAlreadyExists when the company already has
	// an active subscription (partial unique index).
	Insert(ctx context.Context, qx Tx, sub *model.Subscription) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.Subscription, error)
	FindActiveByCompany(ctx context.Context, qx Tx, companyID string) (*model.Subscription, error)
	// UpdatePlan switches an active subscription to another plan (upgrades and
	// downgrades; the module synchronizer reconciles workspace access after).
	UpdatePlan(ctx context.Context, qx Tx, id string, planID string) error
}
