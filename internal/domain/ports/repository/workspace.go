package repository

import (
	"context"

	"client-portal-provisioning/internal/domain/model"
)

type WorkspaceRepository interface {
	// Insert fails with domain.ErrAlreadyExists when the company already has
	// a workspace (unique constraint on company_id).
	Insert(ctx context.Context, qx Tx, ws *model.Workspace) error
	// FindByID locks the row when qx carries a transaction.
	FindByID(ctx context.Context, qx Tx, id string) (*model.Workspace, error)
	FindByCompany(ctx context.Context, qx Tx, companyID string) (*model.Workspace, error)
	// ReplaceActiveModules overwrites the whole module map. Full replace, not
	// merge: absent codes are revoked.
	ReplaceActiveModules(ctx context.Context, qx Tx, id string, modules map[string]bool) error
}
