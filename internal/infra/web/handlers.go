package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"client-portal-provisioning/internal/domain"
	"client-portal-provisioning/internal/domain/model"
	"client-portal-provisioning/internal/infra/logging"
	"client-portal-provisioning/internal/usecase"
)

// resultPayload is the structured result consumed by the webhook receiver
// and the ops tooling.
type resultPayload struct {
	Success        bool          `json:"success"`
	InvoiceID      string        `json:"invoice_id,omitempty"`
	SubscriptionID string        `json:"subscription_id,omitempty"`
	WorkspaceID    string        `json:"workspace_id,omitempty"`
	Skipped        *skippedJSON  `json:"skipped,omitempty"`
	Error          *errorPayload `json:"error,omitempty"`
}

type skippedJSON struct {
	Invoice      bool `json:"invoice"`
	Subscription bool `json:"subscription"`
	Workspace    bool `json:"workspace"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Entity  string `json:"entity,omitempty"`
	ID      string `json:"id,omitempty"`
}

type confirmRequest struct {
	ExternalRef string `json:"external_ref"`
}

// handleConfirm drives the full workflow for a gateway confirmation:
// validate, provision, sync.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")
	ctx := logging.WithPaymentID(r.Context(), paymentID)

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON body"))
		return
	}

	if _, err := s.validator.Validate(ctx, paymentID, req.ExternalRef); err != nil {
		writeError(w, err)
		return
	}
	actor := model.Actor{ID: "gateway-webhook", Role: model.ActorRoleWebhook}
	res, err := s.diagnostic.Repair(ctx, actor, paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")
	d, err := s.diagnostic.Diagnose(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payment_status":      d.PaymentStatus,
		"invoice_exists":      d.InvoiceExists,
		"subscription_exists": d.SubscriptionExists,
		"workspace_exists":    d.WorkspaceExists,
		"workflow_complete":   d.WorkflowComplete,
		"invoice_id":          d.InvoiceID,
		"subscription_id":     d.SubscriptionID,
		"workspace_id":        d.WorkspaceID,
	})
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")
	ctx := logging.WithPaymentID(r.Context(), paymentID)
	actor := model.Actor{ID: operatorFrom(ctx), Role: model.ActorRoleOperator}
	res, err := s.diagnostic.Repair(ctx, actor, paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleUnprovisioned(w http.ResponseWriter, r *http.Request) {
	olderThan := time.Now().Add(-15 * time.Minute)
	if v := r.URL.Query().Get("older_than"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, domain.NewValidationError("older_than", "must be RFC3339"))
			return
		}
		olderThan = t
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, domain.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	payments, err := s.diagnostic.ListUnprovisioned(r.Context(), olderThan, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	ids := make([]string, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.ID)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payment_ids": ids})
}

func writeResult(w http.ResponseWriter, res *usecase.ProvisionResult) {
	writeJSON(w, http.StatusOK, resultPayload{
		Success:        true,
		InvoiceID:      res.InvoiceID,
		SubscriptionID: res.SubscriptionID,
		WorkspaceID:    res.WorkspaceID,
		Skipped: &skippedJSON{
			Invoice:      res.Skipped.Invoice,
			Subscription: res.Skipped.Subscription,
			Workspace:    res.Skipped.Workspace,
		},
	})
}

// writeError maps the error taxonomy onto HTTP statuses. Operator tooling
// gets the explicit kind and offending field/entity, never a generic 500
// for workflow errors.
func writeError(w http.ResponseWriter, err error) {
	var e *domain.Error
	if !errors.As(err, &e) {
		writeJSON(w, http.StatusInternalServerError, resultPayload{
			Success: false,
			Error:   &errorPayload{Kind: "internal", Message: "internal error"},
		})
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case domain.KindValidation:
		status = http.StatusUnprocessableEntity
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindOrphanedPayment:
		status = http.StatusGone
	}
	writeJSON(w, status, resultPayload{
		Success: false,
		Error: &errorPayload{
			Kind:    string(e.Kind),
			Message: e.Message,
			Field:   e.Field,
			Entity:  e.Entity,
			ID:      e.EntityID,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
