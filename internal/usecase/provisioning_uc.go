// File: internal/usecase/provisioning_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
	"client-portal-provisioning/internal/infra/metrics"
)

// Compile-time check
var _ ProvisioningUseCase = (*provisioningUC)(nil)

// Skipped records which entities already existed and were therefore not
// recreated. Ids in ProvisionResult are the surviving rows either way.
type Skipped struct {
	Invoice      bool
	Subscription bool
	Workspace    bool
}

type ProvisionResult struct {
	InvoiceID      string
	SubscriptionID string
	WorkspaceID    string
	Skipped        Skipped
}

type ProvisioningUseCase interface {
	// Provision ensures exactly one Invoice, Subscription, and Workspace exist
	// for a paid payment. Idempotent: N sequential or racing calls converge to
	// one triple; racing losers get a conflict and observe the winner's rows
	// on retry.
	Provision(ctx context.Context, actor model.Actor, paymentID string) (*ProvisionResult, error)
}

type provisioningUC struct {
	payments  repository.PaymentRepository
	invoices  repository.InvoiceRepository
	subs      repository.SubscriptionRepository
	wss       repository.WorkspaceRepository
	plans     repository.PlanRepository
	companies repository.CompanyRepository
	clients   repository.ClientRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewProvisioningUseCase(
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	subs repository.SubscriptionRepository,
	wss repository.WorkspaceRepository,
	plans repository.PlanRepository,
	companies repository.CompanyRepository,
	clients repository.ClientRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *provisioningUC {
	return &provisioningUC{
		payments:  payments,
		invoices:  invoices,
		subs:      subs,
		wss:       wss,
		plans:     plans,
		companies: companies,
		clients:   clients,
		tm:        tm,
		log:       logger,
	}
}

func (u *provisioningUC) Provision(ctx context.Context, actor model.Actor, paymentID string) (*ProvisionResult, error) {
	if !actor.CanProvision() {
		return nil, domain.NewValidationError("actor", "caller is not allowed to provision")
	}
	if paymentID == "" {
		return nil, domain.NewValidationError("payment_id", "payment_id is required")
	}

	var (
		res          *ProvisionResult
		orphanedComp string
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, qx, paymentID) // row lock for the whole tx
		if err != nil {
			if err == domain.ErrNotFound {
				return domain.NewNotFoundError("payment", paymentID)
			}
			return err
		}

		if p.Status == model.PaymentStatusOrphaned {
			return domain.NewOrphanedPaymentError(p.ID, p.Meta.CompanyID)
		}
		if p.Status != model.PaymentStatusPaid {
			return domain.NewValidationError("status", "payment is "+string(p.Status)+", not paid")
		}

		planID, err := p.Meta.ResolvePlanID()
		if err != nil {
			return err
		}
		if p.Meta.CompanyID == "" {
			return domain.NewValidationError("company_id", "payment metadata is missing company_id")
		}
		if p.Meta.ClientID == "" {
			return domain.NewValidationError("client_id", "payment metadata is missing client_id")
		}

		company, err := u.companies.FindByID(ctx, qx, p.Meta.CompanyID)
		if err != nil && err != domain.ErrNotFound {
			return err
		}
		if !company.Exists() {
			// Mark inside this tx so the state flip commits; the error is
			// returned to the caller after commit.
			if err := u.payments.UpdateStatus(ctx, qx, p.ID, model.PaymentStatusOrphaned); err != nil {
				return err
			}
			orphanedComp = p.Meta.CompanyID
			return nil
		}
		if _, err := u.clients.FindByID(ctx, qx, p.Meta.ClientID); err != nil {
			if err == domain.ErrNotFound {
				return domain.NewNotFoundError("client", p.Meta.ClientID)
			}
			return err
		}
		// Verify the plan before creating anything: an unknown plan id is
		// hand-edited metadata, and letting it ride to the subscription insert
		// would surface as an untyped foreign-key failure.
		plan, err := u.plans.FindByID(ctx, qx, planID)
		if err != nil {
			if err == domain.ErrNotFound {
				return domain.NewNotFoundError("plan", planID)
			}
			return err
		}

		r := &ProvisionResult{}

		// Invoice: natural key is the payment itself.
		inv, err := u.invoices.FindByPaymentID(ctx, qx, p.ID)
		switch err {
		case nil:
			r.InvoiceID = inv.ID
			r.Skipped.Invoice = true
		case domain.ErrNotFound:
			fresh, err := model.NewInvoice(uuid.NewString(), newInvoiceNumber(), p.Meta.CompanyID, p.ID, p.Amount, p.Currency)
			if err != nil {
				return err
			}
			if err := u.invoices.Insert(ctx, qx, fresh); err != nil {
				return mapInsertErr(err, "invoice")
			}
			r.InvoiceID = fresh.ID
		default:
			return err
		}

		// Subscription: natural key is the company (one active at a time).
		sub, err := u.subs.FindActiveByCompany(ctx, qx, p.Meta.CompanyID)
		switch err {
		case nil:
			r.SubscriptionID = sub.ID
			r.Skipped.Subscription = true
		case domain.ErrNotFound:
			fresh, err := model.NewSubscription(uuid.NewString(), p.Meta.CompanyID, plan)
			if err != nil {
				return err
			}
			if err := u.subs.Insert(ctx, qx, fresh); err != nil {
				return mapInsertErr(err, "subscription")
			}
			sub = fresh
			r.SubscriptionID = fresh.ID
		default:
			return err
		}

		// Workspace: natural key is the company as well.
		ws, err := u.wss.FindByCompany(ctx, qx, p.Meta.CompanyID)
		switch err {
		case nil:
			r.WorkspaceID = ws.ID
			r.Skipped.Workspace = true
		case domain.ErrNotFound:
			fresh, err := model.NewWorkspace(uuid.NewString(), p.Meta.ClientID, p.Meta.CompanyID, sub.ID)
			if err != nil {
				return err
			}
			if err := u.wss.Insert(ctx, qx, fresh); err != nil {
				return mapInsertErr(err, "workspace")
			}
			r.WorkspaceID = fresh.ID
		default:
			return err
		}

		res = r
		return nil
	})
	if err != nil {
		metrics.IncProvisioning(string(domain.ErrKind(err)))
		return nil, err
	}
	if orphanedComp != "" {
		metrics.IncProvisioning("orphaned")
		u.log.Warn().Str("payment_id", paymentID).Str("company_id", orphanedComp).Msg("payment orphaned: company deleted")
		return nil, domain.NewOrphanedPaymentError(paymentID, orphanedComp)
	}

	metrics.IncProvisioning("ok")
	u.log.Info().
		Str("payment_id", paymentID).
		Str("invoice_id", res.InvoiceID).
		Str("subscription_id", res.SubscriptionID).
		Str("workspace_id", res.WorkspaceID).
		Bool("invoice_skipped", res.Skipped.Invoice).
		Bool("subscription_skipped", res.Skipped.Subscription).
		Bool("workspace_skipped", res.Skipped.Workspace).
		Msg("provisioning complete")
	return res, nil
}

// mapInsertErr turns a unique-constraint race into a conflict the caller
// retries; the winner's rows will be observed as existing on that retry.
func mapInsertErr(err error, entity string) error {
	if err == domain.ErrAlreadyExists {
		return domain.NewConflictError(entity + " was created by a concurrent provisioning attempt")
	}
	return err
}

func newInvoiceNumber() string {
	return "INV-" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
