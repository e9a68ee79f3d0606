package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
)

var _ repository.WorkspaceRepository = (*workspaceRepo)(nil)

type workspaceRepo struct{ pool *pgxpool.Pool }

func NewWorkspaceRepo(pool *pgxpool.Pool) *workspaceRepo {
	return &workspaceRepo{pool: pool}
}

const workspaceColumns = `id, client_id, company_id, subscription_id, active_modules, created_at, updated_at`

func scanWorkspace(row pgx.Row) (*model.Workspace, error) {
	ws := &model.Workspace{}
	var modules []byte
	if err := row.Scan(&ws.ID, &ws.ClientID, &ws.CompanyID, &ws.SubscriptionID, &modules, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	ws.ActiveModules = map[string]bool{}
	if len(modules) > 0 {
		if err := json.Unmarshal(modules, &ws.ActiveModules); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return ws, nil
}

func (r *workspaceRepo) Insert(ctx context.Context, qx repository.Tx, ws *model.Workspace) error {
	modules, err := json.Marshal(ws.ActiveModules)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO workspaces (id, client_id, company_id, subscription_id, active_modules, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	if _, err := execSQL(ctx, r.pool, qx, q, ws.ID, ws.ClientID, ws.CompanyID, ws.SubscriptionID, modules, ws.CreatedAt, ws.UpdatedAt); err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		case err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *workspaceRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Workspace, error) {
	q := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id=$1`
	if inTx(qx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanWorkspace(row)
}

func (r *workspaceRepo) FindByCompany(ctx context.Context, qx repository.Tx, companyID string) (*model.Workspace, error) {
	const q = `SELECT ` + workspaceColumns + ` FROM workspaces WHERE company_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, qx, q, companyID)
	if err != nil {
		return nil, err
	}
	return scanWorkspace(row)
}

func (r *workspaceRepo) ReplaceActiveModules(ctx context.Context, qx repository.Tx, id string, modules map[string]bool) error {
	b, err := json.Marshal(modules)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `UPDATE workspaces SET active_modules=$2, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, qx, q, id, b)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
