package model

import (
	"time"

	"client-portal-provisioning/internal/domain"
)

// Plan is a purchasable tier: price plus the ordered list of module codes
// it entitles. Codes may be historical aliases; the synchronizer resolves
// them to canonical codes before touching a workspace.
type Plan struct {
	ID          string
	Name        string
	Price       int64 // minor units
	Currency    string
	ModuleCodes []string
	CreatedAt   time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, price int64, currency string, moduleCodes []string) (*Plan, error) {
	if id == "" || name == "" || price <= 0 || currency == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:          id,
		Name:        name,
		Price:       price,
		Currency:    currency,
		ModuleCodes: moduleCodes,
		CreatedAt:   time.Now(),
	}, nil
}
