package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/arjun-kudva/microbank/internal/clock"
	"github.com/arjun-kudva/microbank/internal/config"
	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/handler"
	"github.com/arjun-kudva/microbank/internal/logging"
	"github.com/arjun-kudva/microbank/internal/middleware"
	"github.com/arjun-kudva/microbank/internal/repository"
	"github.com/arjun-kudva/microbank/internal/service"
	"github.com/arjun-kudva/microbank/internal/service/scheme"
	"github.com/arjun-kudva/microbank/internal/txnid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("microbank-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	clk := clock.System()

	customerRepo := repository.NewCustomerRepository(db)
	schemeRepo := repository.NewSchemeRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	idemRepo := repository.NewIdempotencyRepository(db)

	ids := txnid.NewGenerator(seqRepo, clk)
	schemeSvc := scheme.NewService(customerRepo, schemeRepo, txnRepo, ledgerRepo, ids, db, clk, cfg)
	customerSvc := service.NewCustomerService(customerRepo, ids, clk)

	sweepInterval := time.Duration(cfg.MaturitySweepIntervalS) * time.Second
	maturity := service.NewMaturityProcessor(schemeRepo, db, clk, slog.Default(), sweepInterval)
	go maturity.Start(ctx)

	mux := buildMux(db, cfg, schemeSvc, customerSvc, staffRepo, idemRepo)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// buildMux wires routes. Agents (any authenticated staff) record money
// movement; decisions are supervisor-only; mutating routes require an
// Idempotency-Key.
func buildMux(
	db *sql.DB,
	cfg *config.Config,
	schemeSvc *scheme.Service,
	customerSvc *service.CustomerService,
	staffRepo *repository.StaffRepository,
	idemRepo *repository.IdempotencyRepository,
) http.Handler {
	jwtExpiry := time.Duration(cfg.JWTExpiryH) * time.Hour

	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(staffRepo, cfg.JWTSecret, jwtExpiry)
	customerHandler := handler.NewCustomerHandler(customerSvc)
	schemeHandler := handler.NewSchemeHandler(schemeSvc)
	txnHandler := handler.NewTransactionHandler(schemeSvc)

	authn := middleware.Auth(cfg.JWTSecret)
	supervisorOnly := middleware.RequireRole(domain.StaffRoleSupervisor)
	idempotent := middleware.Idempotency(idemRepo)

	agent := func(h http.HandlerFunc) http.Handler {
		return authn(middleware.Logging(idempotent(h)))
	}
	agentRead := func(h http.HandlerFunc) http.Handler {
		return authn(middleware.Logging(h))
	}
	supervisor := func(h http.HandlerFunc) http.Handler {
		return authn(supervisorOnly(middleware.Logging(idempotent(h))))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("POST /api/v1/auth/login", middleware.Logging(http.HandlerFunc(authHandler.Login)))

	mux.Handle("POST /api/v1/customers", agent(customerHandler.Create))
	mux.Handle("GET /api/v1/customers/{customerID}", agentRead(customerHandler.GetByID))
	mux.Handle("GET /api/v1/customers/{customerID}/schemes", agentRead(schemeHandler.ListByCustomer))
	mux.Handle("POST /api/v1/customers/{customerID}/schemes", agent(schemeHandler.Open))
	mux.Handle("POST /api/v1/customers/{customerID}/schemes/{accountNumber}/payout", agent(schemeHandler.Payout))

	mux.Handle("GET /api/v1/schemes/{accountNumber}", agentRead(schemeHandler.GetByAccountNumber))

	mux.Handle("POST /api/v1/transactions", agent(txnHandler.Record))
	mux.Handle("GET /api/v1/transactions", agentRead(txnHandler.List))
	mux.Handle("GET /api/v1/transactions/{transactionID}", agentRead(txnHandler.GetByID))
	mux.Handle("POST /api/v1/transactions/{transactionID}/decision", supervisor(txnHandler.Decide))

	return middleware.Recovery(middleware.Tracing(mux))
}
