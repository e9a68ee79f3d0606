package model

import (
	"time"

	"client-portal-provisioning/internal/domain"
)

// Workspace is a client-facing portal instance scoped to one client of one
// company. ActiveModules maps canonical module codes to enabled; it is
// recomputed as a whole on every sync, never patched incrementally, so plan
// downgrades revoke access.
type Workspace struct {
	ID             string // UUID
	ClientID       string
	CompanyID      string
	SubscriptionID string
	ActiveModules  map[string]bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewWorkspace creates a workspace with no modules enabled yet; the module
// synchronizer populates ActiveModules from the subscription's plan.
func NewWorkspace(id, clientID, companyID, subscriptionID string) (*Workspace, error) {
	if id == "" || clientID == "" || companyID == "" || subscriptionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Workspace{
		ID:             id,
		ClientID:       clientID,
		CompanyID:      companyID,
		SubscriptionID: subscriptionID,
		ActiveModules:  map[string]bool{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
