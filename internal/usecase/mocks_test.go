//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// snapshotter lets the mock transaction manager emulate rollback: state is
// captured before the callback and restored when it returns an error.
type snapshotter interface {
	snapshot() interface{}
	restore(interface{})
}

// mockTxManager runs the callback against the shared in-memory stores and
// rolls their state back on error, mirroring the real DB transaction
// boundary closely enough for atomicity tests. depth counts open
// transactions so tests can tell whether a repo call ran inside one.
type mockTxManager struct {
	stores []snapshotter
	depth  int
}

func newMockTxManager(stores ...snapshotter) *mockTxManager {
	return &mockTxManager{stores: stores}
}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, qx repository.Tx) error) error {
	snaps := make([]interface{}, len(m.stores))
	for i, s := range m.stores {
		snaps[i] = s.snapshot()
	}
	m.depth++
	err := fn(ctx, nil)
	m.depth--
	if err != nil {
		for i, s := range m.stores {
			s.restore(snaps[i])
		}
		return err
	}
	return nil
}

// ----- payments -----

type memPaymentRepo struct {
	mu       sync.RWMutex
	store    map[string]*model.Payment
	invoices *memInvoiceRepo // for the unprovisioned query
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *memPaymentRepo) snapshot() interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[string]*model.Payment, len(m.store))
	for k, v := range m.store {
		c := *v
		cp[k] = &c
	}
	return cp
}

func (m *memPaymentRepo) restore(s interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s.(map[string]*model.Payment)
}

func (m *memPaymentRepo) Save(ctx context.Context, qx repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) MarkPaid(ctx context.Context, qx repository.Tx, id string, externalRef string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = model.PaymentStatusPaid
	p.ExternalRef = &externalRef
	p.PaidAt = &paidAt
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *memPaymentRepo) UpdateStatus(ctx context.Context, qx repository.Tx, id string, status model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memPaymentRepo) ListPaidUnprovisioned(ctx context.Context, qx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status != model.PaymentStatusPaid || p.PaidAt == nil || !p.PaidAt.Before(olderThan) {
			continue
		}
		if m.invoices != nil {
			if _, err := m.invoices.FindByPaymentID(ctx, qx, p.ID); err == nil {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ----- invoices -----

type memInvoiceRepo struct {
	mu        sync.RWMutex
	byPayment map[string]*model.Invoice
	InsertErr error // simulate insert failure / unique violation
	// InsertFunc, when set, runs before the default insert; a non-nil return
	// short-circuits it.
	InsertFunc func(ctx context.Context, qx repository.Tx, inv *model.Invoice) error
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{byPayment: make(map[string]*model.Invoice)}
}

func (m *memInvoiceRepo) snapshot() interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[string]*model.Invoice, len(m.byPayment))
	for k, v := range m.byPayment {
		c := *v
		cp[k] = &c
	}
	return cp
}

func (m *memInvoiceRepo) restore(s interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPayment = s.(map[string]*model.Invoice)
}

func (m *memInvoiceRepo) Insert(ctx context.Context, qx repository.Tx, inv *model.Invoice) error {
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, qx, inv); err != nil {
			return err
		}
	}
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byPayment[inv.PaymentID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *inv
	m.byPayment[inv.PaymentID] = &cp
	return nil
}

func (m *memInvoiceRepo) FindByPaymentID(ctx context.Context, qx repository.Tx, paymentID string) (*model.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.byPayment[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

// ----- subscriptions -----

type memSubscriptionRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Subscription
	InsertErr error
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubscriptionRepo) snapshot() interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[string]*model.Subscription, len(m.store))
	for k, v := range m.store {
		c := *v
		cp[k] = &c
	}
	return cp
}

func (m *memSubscriptionRepo) restore(s interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s.(map[string]*model.Subscription)
}

func (m *memSubscriptionRepo) Insert(ctx context.Context, qx repository.Tx, sub *model.Subscription) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store {
		if s.CompanyID == sub.CompanyID && s.Status == model.SubscriptionStatusActive {
			return domain.ErrAlreadyExists
		}
	}
	cp := *sub
	m.store[sub.ID] = &cp
	return nil
}

func (m *memSubscriptionRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptionRepo) FindActiveByCompany(ctx context.Context, qx repository.Tx, companyID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.CompanyID == companyID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSubscriptionRepo) UpdatePlan(ctx context.Context, qx repository.Tx, id string, planID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok || s.Status != model.SubscriptionStatusActive {
		return domain.ErrNotFound
	}
	s.PlanID = planID
	return nil
}

// ----- workspaces -----

type memWorkspaceRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Workspace
	InsertErr error
}

func newMemWorkspaceRepo() *memWorkspaceRepo {
	return &memWorkspaceRepo{store: make(map[string]*model.Workspace)}
}

func (m *memWorkspaceRepo) snapshot() interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[string]*model.Workspace, len(m.store))
	for k, v := range m.store {
		c := *v
		c.ActiveModules = copyModules(v.ActiveModules)
		cp[k] = &c
	}
	return cp
}

func (m *memWorkspaceRepo) restore(s interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s.(map[string]*model.Workspace)
}

func copyModules(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memWorkspaceRepo) Insert(ctx context.Context, qx repository.Tx, ws *model.Workspace) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.store {
		if w.CompanyID == ws.CompanyID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *ws
	cp.ActiveModules = copyModules(ws.ActiveModules)
	m.store[ws.ID] = &cp
	return nil
}

func (m *memWorkspaceRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *w
	cp.ActiveModules = copyModules(w.ActiveModules)
	return &cp, nil
}

func (m *memWorkspaceRepo) FindByCompany(ctx context.Context, qx repository.Tx, companyID string) (*model.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.store {
		if w.CompanyID == companyID {
			cp := *w
			cp.ActiveModules = copyModules(w.ActiveModules)
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memWorkspaceRepo) ReplaceActiveModules(ctx context.Context, qx repository.Tx, id string, modules map[string]bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	w.ActiveModules = copyModules(modules)
	w.UpdatedAt = time.Now()
	return nil
}

// ----- plans -----

type memPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[string]*model.Plan)}
}

func (m *memPlanRepo) Save(ctx context.Context, qx repository.Tx, plan *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *plan
	cp.ModuleCodes = append([]string(nil), plan.ModuleCodes...)
	m.store[plan.ID] = &cp
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	cp.ModuleCodes = append([]string(nil), p.ModuleCodes...)
	return &cp, nil
}

func (m *memPlanRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Plan, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// ----- module aliases -----

type memAliasRepo struct {
	mu        sync.RWMutex
	aliases   map[string]string // alias -> canonical (latest row)
	canonical map[string]bool   // module catalog
}

func newMemAliasRepo() *memAliasRepo {
	return &memAliasRepo{aliases: make(map[string]string), canonical: make(map[string]bool)}
}

func (m *memAliasRepo) addModule(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canonical[code] = true
}

func (m *memAliasRepo) Save(ctx context.Context, qx repository.Tx, alias *model.ModuleAlias) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[alias.Alias] = alias.Canonical
	return nil
}

func (m *memAliasRepo) Resolve(ctx context.Context, qx repository.Tx, code string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if canonical, ok := m.aliases[code]; ok {
		return canonical, nil
	}
	if m.canonical[code] {
		return code, nil
	}
	return "", domain.ErrNotFound
}

func (m *memAliasRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.ModuleAlias, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.ModuleAlias
	for a, c := range m.aliases {
		out = append(out, &model.ModuleAlias{Alias: a, Canonical: c})
	}
	return out, nil
}

// ----- companies / clients -----

type memCompanyRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Company
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{store: make(map[string]*model.Company)}
}

func (m *memCompanyRepo) add(c *model.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[c.ID] = c
}

func (m *memCompanyRepo) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
}

func (m *memCompanyRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type memClientRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{store: make(map[string]*model.Client)}
}

func (m *memClientRepo) add(c *model.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[c.ID] = c
}

func (m *memClientRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}
