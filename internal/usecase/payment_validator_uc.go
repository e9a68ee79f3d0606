// File: internal/usecase/payment_validator_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
	"client-portal-provisioning/internal/infra/metrics"
)

// Compile-time check
var _ PaymentValidatorUseCase = (*paymentValidatorUC)(nil)

// ValidationResult reports the payment's state after validation. AlreadyPaid
// signals downstream that provisioning should still be (re-)attempted: a
// prior attempt may have failed after the status flip.
type ValidationResult struct {
	Status      model.PaymentStatus
	AlreadyPaid bool
}

type PaymentValidatorUseCase interface {
	// Validate confirms a payment against the gateway's proof. It is the only
	// writer of the pending -> paid transition.
	Validate(ctx context.Context, paymentID, externalRef string) (*ValidationResult, error)
}

type paymentValidatorUC struct {
	payments repository.PaymentRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewPaymentValidatorUseCase(payments repository.PaymentRepository, tm repository.TransactionManager, logger *zerolog.Logger) *paymentValidatorUC {
	return &paymentValidatorUC{payments: payments, tm: tm, log: logger}
}

func (u *paymentValidatorUC) Validate(ctx context.Context, paymentID, externalRef string) (*ValidationResult, error) {
	if paymentID == "" {
		return nil, domain.NewValidationError("payment_id", "payment_id is required")
	}

	var res *ValidationResult
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, qx, paymentID)
		if err != nil {
			if err == domain.ErrNotFound {
				return domain.NewNotFoundError("payment", paymentID)
			}
			return err
		}

		// Re-confirmations are no-ops; never regress a paid payment.
		if p.Status == model.PaymentStatusPaid {
			res = &ValidationResult{Status: p.Status, AlreadyPaid: true}
			return nil
		}
		if p.Terminal() {
			return domain.NewValidationError("status", "payment is "+string(p.Status)+" and cannot be validated")
		}

		if externalRef == "" {
			return domain.NewValidationError("external_ref", "gateway reference is required")
		}
		// Sanity against checkout-time metadata: the settled amount/currency
		// must match what checkout recorded.
		if p.Meta.Amount != 0 && p.Meta.Amount != p.Amount {
			return domain.NewValidationError("amount", "settled amount does not match checkout metadata")
		}
		if p.Meta.Currency != "" && p.Meta.Currency != p.Currency {
			return domain.NewValidationError("currency", "settled currency does not match checkout metadata")
		}

		ok, err := u.payments.MarkPaid(ctx, qx, p.ID, externalRef, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			// Lost a race despite the row lock; treat as already confirmed.
			res = &ValidationResult{Status: model.PaymentStatusPaid, AlreadyPaid: true}
			return nil
		}
		res = &ValidationResult{Status: model.PaymentStatusPaid, AlreadyPaid: false}
		return nil
	})
	if err != nil {
		metrics.IncPaymentValidation("failed")
		return nil, err
	}
	if res.AlreadyPaid {
		metrics.IncPaymentValidation("already_paid")
	} else {
		metrics.IncPaymentValidation("confirmed")
		u.log.Info().Str("payment_id", paymentID).Msg("payment confirmed")
	}
	return res, nil
}
