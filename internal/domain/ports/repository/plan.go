package repository

import (
	"context"

	"client-portal-provisioning/internal/domain/model"
)

// PlanRepository is the read-mostly port for plan lookup. Plans are owned by
// catalog tooling; this subsystem reads them and the seed command writes them.
type PlanRepository interface {
	Save(ctx context.Context, qx Tx, plan *model.Plan) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.Plan, error)
	ListAll(ctx context.Context, qx Tx) ([]*model.Plan, error)
}
