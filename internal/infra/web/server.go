package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"client-portal-provisioning/internal/infra/logging"
	"client-portal-provisioning/internal/usecase"
)

// Server exposes the provisioning workflow over HTTP: the gateway webhook
// confirm route and the operator diagnose/repair routes. It owns no wire
// protocol beyond the result shape; the heavy lifting is in the usecases.
type Server struct {
	validator  usecase.PaymentValidatorUseCase
	diagnostic usecase.DiagnosticUseCase
	auth       *AuthManager
	webhookSec string
	log        *zerolog.Logger
}

func NewServer(
	validator usecase.PaymentValidatorUseCase,
	diagnostic usecase.DiagnosticUseCase,
	auth *AuthManager,
	webhookSecret string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		validator:  validator,
		diagnostic: diagnostic,
		auth:       auth,
		webhookSec: webhookSecret,
		log:        logger,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(traceID, requestLog(s.log), recoverer(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.With(WebhookGuard(s.webhookSec)).Post("/{paymentID}/confirm", s.handleConfirm)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Guard)
			r.Get("/{paymentID}/diagnosis", s.handleDiagnose)
			r.Post("/{paymentID}/repair", s.handleRepair)
			r.Get("/unprovisioned", s.handleUnprovisioned)
		})
	})
	return r
}

// ===== middleware =====

type ctxKey string

const ctxOperator ctxKey = "operator"

func withOperator(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxOperator, subject)
}

func operatorFrom(ctx context.Context) string {
	if v := ctx.Value(ctxOperator); v != nil {
		return v.(string)
	}
	return ""
}

func traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLog(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logging.With(r.Context(), logger)
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", time.Since(start)).
				Msg("http_request")
		})
	}
}

func recoverer(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
