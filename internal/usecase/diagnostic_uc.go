// File: internal/usecase/diagnostic_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
)

// Compile-time check
var _ DiagnosticUseCase = (*diagnosticUC)(nil)

// Diagnosis is a completeness report derived purely from persisted state, so
// operators can tell "not yet attempted" from "attempted and partially
// failed" without re-running side effects. Ids are included so tooling can
// jump straight to rows.
type Diagnosis struct {
	PaymentStatus      model.PaymentStatus
	InvoiceExists      bool
	SubscriptionExists bool
	WorkspaceExists    bool
	WorkflowComplete   bool
	InvoiceID          string
	SubscriptionID     string
	WorkspaceID        string
}

type DiagnosticUseCase interface {
	// Diagnose never creates or mutates anything.
	Diagnose(ctx context.Context, paymentID string) (*Diagnosis, error)
	// Repair re-drives provisioning and module sync. Safe to call
	// unconditionally; relies entirely on their idempotency guarantees.
	Repair(ctx context.Context, actor model.Actor, paymentID string) (*ProvisionResult, error)
	// ListUnprovisioned lists paid payments older than the cutoff that still
	// have no invoice, for reconciliation tooling to feed into Repair.
	ListUnprovisioned(ctx context.Context, olderThan time.Time, limit int) ([]*model.Payment, error)
}

type diagnosticUC struct {
	payments  repository.PaymentRepository
	invoices  repository.InvoiceRepository
	subs      repository.SubscriptionRepository
	wss       repository.WorkspaceRepository
	provision ProvisioningUseCase
	sync      ModuleSyncUseCase
	log       *zerolog.Logger
}

func NewDiagnosticUseCase(
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	subs repository.SubscriptionRepository,
	wss repository.WorkspaceRepository,
	provision ProvisioningUseCase,
	sync ModuleSyncUseCase,
	logger *zerolog.Logger,
) *diagnosticUC {
	return &diagnosticUC{
		payments:  payments,
		invoices:  invoices,
		subs:      subs,
		wss:       wss,
		provision: provision,
		sync:      sync,
		log:       logger,
	}
}

func (u *diagnosticUC) Diagnose(ctx context.Context, paymentID string) (*Diagnosis, error) {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewNotFoundError("payment", paymentID)
		}
		return nil, err
	}

	d := &Diagnosis{PaymentStatus: p.Status}

	if inv, err := u.invoices.FindByPaymentID(ctx, repository.NoTX, p.ID); err == nil {
		d.InvoiceExists = true
		d.InvoiceID = inv.ID
	} else if err != domain.ErrNotFound {
		return nil, err
	}

	// Subscription and workspace hang off the company named by the metadata;
	// if the reference is absent they trivially do not exist for this payment.
	if companyID := p.Meta.CompanyID; companyID != "" {
		if sub, err := u.subs.FindActiveByCompany(ctx, repository.NoTX, companyID); err == nil {
			d.SubscriptionExists = true
			d.SubscriptionID = sub.ID
		} else if err != domain.ErrNotFound {
			return nil, err
		}
		if ws, err := u.wss.FindByCompany(ctx, repository.NoTX, companyID); err == nil {
			d.WorkspaceExists = true
			d.WorkspaceID = ws.ID
		} else if err != domain.ErrNotFound {
			return nil, err
		}
	}

	d.WorkflowComplete = p.Status == model.PaymentStatusPaid &&
		d.InvoiceExists && d.SubscriptionExists && d.WorkspaceExists
	return d, nil
}

func (u *diagnosticUC) Repair(ctx context.Context, actor model.Actor, paymentID string) (*ProvisionResult, error) {
	res, err := u.provision.Provision(ctx, actor, paymentID)
	if err != nil && errors.Is(err, domain.ErrConflict) {
		// A concurrent attempt won; its rows are committed, re-read them.
		u.log.Info().Str("payment_id", paymentID).Msg("provisioning raced; retrying once")
		res, err = u.provision.Provision(ctx, actor, paymentID)
	}
	if err != nil {
		return nil, err
	}
	if res.WorkspaceID != "" {
		if _, err := u.sync.Sync(ctx, res.WorkspaceID); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (u *diagnosticUC) ListUnprovisioned(ctx context.Context, olderThan time.Time, limit int) ([]*model.Payment, error) {
	return u.payments.ListPaidUnprovisioned(ctx, repository.NoTX, olderThan, limit)
}
