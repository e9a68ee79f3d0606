//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"client-portal-provisioning/internal/domain/model"
)

// seedCompanyAndClient inserts a live company with one client and returns
// their ids.
func seedCompanyAndClient(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	companyID := uuid.NewString()
	clientID := uuid.NewString()
	if _, err := testPool.Exec(ctx,
		`INSERT INTO companies (id, name) VALUES ($1, 'Acme')`, companyID); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	if _, err := testPool.Exec(ctx,
		`INSERT INTO clients (id, company_id, name) VALUES ($1, $2, 'Jo')`, clientID, companyID); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return companyID, clientID
}

func seedPlan(t *testing.T, id string, codes []string) *model.Plan {
	t.Helper()
	plan := &model.Plan{ID: id, Name: id, Price: 4900, Currency: "EUR", ModuleCodes: codes}
	if err := NewPlanRepo(testPool).Save(context.Background(), nil, plan); err != nil {
		t.Fatalf("seed plan %s: %v", id, err)
	}
	return plan
}

func newTestPayment(companyID, clientID, planID string) *model.Payment {
	now := time.Now()
	return &model.Payment{
		ID:        uuid.NewString(),
		CompanyID: &companyID,
		Amount:    4900,
		Currency:  "EUR",
		Status:    model.PaymentStatusPending,
		Meta: model.PaymentMeta{
			PlanID:    planID,
			CompanyID: companyID,
			ClientID:  clientID,
			Amount:    4900,
			Currency:  "EUR",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// seedPaidPayment saves a payment already in the paid state, paidAt minutes
// in the past.
func seedPaidPayment(t *testing.T, companyID, clientID, planID string, paidAgo time.Duration) *model.Payment {
	t.Helper()
	p := newTestPayment(companyID, clientID, planID)
	p.Status = model.PaymentStatusPaid
	paidAt := time.Now().Add(-paidAgo)
	p.PaidAt = &paidAt
	if err := NewPaymentRepo(testPool).Save(context.Background(), nil, p); err != nil {
		t.Fatalf("seed paid payment: %v", err)
	}
	return p
}
