// File: internal/usecase/module_sync_uc.go
package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/ports/repository"
	"client-portal-provisioning/internal/infra/metrics"
)

// Compile-time check
var _ ModuleSyncUseCase = (*moduleSyncUC)(nil)

type SyncResult struct {
	ModulesEnabled int
}

type ModuleSyncUseCase interface {
	// Sync recomputes the workspace's enabled-module set from its
	// subscription's plan: resolve each entitled code through the alias table,
	// then overwrite active_modules with exactly the canonical set. Full
	// replace, so plan downgrades revoke access.
	Sync(ctx context.Context, workspaceID string) (*SyncResult, error)
}

type moduleSyncUC struct {
	wss     repository.WorkspaceRepository
	subs    repository.SubscriptionRepository
	plans   repository.PlanRepository
	aliases repository.ModuleAliasRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewModuleSyncUseCase(
	wss repository.WorkspaceRepository,
	subs repository.SubscriptionRepository,
	plans repository.PlanRepository,
	aliases repository.ModuleAliasRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *moduleSyncUC {
	return &moduleSyncUC{wss: wss, subs: subs, plans: plans, aliases: aliases, tm: tm, log: logger}
}

func (u *moduleSyncUC) Sync(ctx context.Context, workspaceID string) (*SyncResult, error) {
	if workspaceID == "" {
		return nil, domain.NewValidationError("workspace_id", "workspace_id is required")
	}

	// The catalog is resolved outside the write transaction: plans and
	// aliases are read-only collaborators here, so the cache decorators can
	// serve them and the row lock is held only for the replace itself.
	active, err := u.resolveEntitlements(ctx, workspaceID)
	if err != nil {
		metrics.IncModuleSync("failed")
		return nil, err
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
		ws, err := u.wss.FindByID(ctx, qx, workspaceID) // row lock
		if err != nil {
			if err == domain.ErrNotFound {
				return domain.NewNotFoundError("workspace", workspaceID)
			}
			return err
		}
		return u.wss.ReplaceActiveModules(ctx, qx, ws.ID, active)
	})
	if err != nil {
		metrics.IncModuleSync("failed")
		return nil, err
	}

	res := &SyncResult{ModulesEnabled: len(active)}
	metrics.IncModuleSync("ok")
	metrics.ObserveModulesEnabled(res.ModulesEnabled)
	u.log.Info().Str("workspace_id", workspaceID).Int("modules_enabled", res.ModulesEnabled).Msg("module sync complete")
	return res, nil
}

// resolveEntitlements computes the canonical module set the workspace's
// current plan entitles. Pure reads, no transaction.
func (u *moduleSyncUC) resolveEntitlements(ctx context.Context, workspaceID string) (map[string]bool, error) {
	ws, err := u.wss.FindByID(ctx, repository.NoTX, workspaceID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewNotFoundError("workspace", workspaceID)
		}
		return nil, err
	}
	sub, err := u.subs.FindByID(ctx, repository.NoTX, ws.SubscriptionID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewNotFoundError("subscription", ws.SubscriptionID)
		}
		return nil, err
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, sub.PlanID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewNotFoundError("plan", sub.PlanID)
		}
		return nil, err
	}

	// Canonical union: historical spellings of the same module collapse to
	// one entry.
	active := make(map[string]bool, len(plan.ModuleCodes))
	for _, code := range plan.ModuleCodes {
		canonical, err := u.aliases.Resolve(ctx, repository.NoTX, code)
		if err != nil {
			if err == domain.ErrNotFound {
				return nil, domain.NewNotFoundError("module", code)
			}
			return nil, err
		}
		active[canonical] = true
	}
	return active, nil
}
