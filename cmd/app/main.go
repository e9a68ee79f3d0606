// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"client-portal-provisioning/internal/config"
	pg "client-portal-provisioning/internal/infra/db/postgres"
	"client-portal-provisioning/internal/infra/logging"
	"client-portal-provisioning/internal/infra/metrics"
	red "client-portal-provisioning/internal/infra/redis"
	"client-portal-provisioning/internal/infra/web"
	"client-portal-provisioning/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	invoiceRepo := pg.NewInvoiceRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	wsRepo := pg.NewWorkspaceRepo(pool)
	companyRepo := pg.NewCompanyRepo(pool)
	clientRepo := pg.NewClientRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL)
	aliasRepo := pg.NewModuleAliasRepoCacheDecorator(pg.NewModuleAliasRepo(pool), redisClient, cfg.Redis.TTL)

	// ---- Use cases ----
	validatorUC := usecase.NewPaymentValidatorUseCase(paymentRepo, tm, logger)
	provisionUC := usecase.NewProvisioningUseCase(paymentRepo, invoiceRepo, subRepo, wsRepo, planRepo, companyRepo, clientRepo, tm, logger)
	syncUC := usecase.NewModuleSyncUseCase(wsRepo, subRepo, planRepo, aliasRepo, tm, logger)
	diagUC := usecase.NewDiagnosticUseCase(paymentRepo, invoiceRepo, subRepo, wsRepo, provisionUC, syncUC, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Ops.JWTSecret, cfg.Ops.TokenTTL)
	srv := web.NewServer(validatorUC, diagUC, auth, cfg.Webhook.Secret, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
