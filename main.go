package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"burger-order-api/config"
	"burger-order-api/handlers"
	"burger-order-api/logger"
	"burger-order-api/middleware"
	"burger-order-api/notify"
	"burger-order-api/pricing"
	"burger-order-api/routes"
	"burger-order-api/seed"
	"burger-order-api/service"
	"burger-order-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const shutdownTimeout = 15 * time.Second

func main() {
	seedFile := flag.String("seed", "", "YAML catalog to load before serving")
	flag.Parse()

	if err := run(*seedFile); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(seedFile string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if seedFile != "" {
		cfg.SeedFile = seedFile
	}

	log := logger.New(cfg.LogConfig())
	slog.SetDefault(log)

	gin.SetMode(cfg.GinMode)
	decimal.MarshalJSONWithoutQuotes = true

	db, err := config.OpenDB(cfg.DBPath, log)
	if err != nil {
		return err
	}

	machine, err := statemachine.New(cfg.Lifecycle)
	if err != nil {
		return err
	}
	engine := pricing.New(cfg.Pricing)

	var sender notify.Sender = notify.NewLogSender(log)
	if cfg.SMTPEnabled() {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		})
	}
	dispatcher := notify.NewDispatcher(sender, log, cfg.EmailWorkers, cfg.EmailQueue)

	authSvc := service.NewAuthService(db, dispatcher, log)
	catalogSvc := service.NewCatalogService(db, engine, log)
	orderSvc := service.NewOrderService(db, engine, machine, dispatcher, log, service.OrderOptions{
		DeliveryETA:  cfg.DeliveryETA,
		ReserveStock: cfg.ReserveStock,
	})
	reviewSvc := service.NewReviewService(db, log)
	adminSvc := service.NewAdminService(db, log)

	ctx := context.Background()
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}
	if cfg.SeedFile != "" {
		file, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := seed.NewSeeder(db, catalogSvc, log).Apply(ctx, file); err != nil {
			return err
		}
	}

	tokens := middleware.NewAuth(cfg.JWTSecret, cfg.JWTTTL, authSvc)
	h, err := handlers.New(handlers.Deps{
		Auth:    authSvc,
		Catalog: catalogSvc,
		Orders:  orderSvc,
		Reviews: reviewSvc,
		Admin:   adminSvc,
		Machine: machine,
		Tokens:  tokens,
		Log:     log,
	})
	if err != nil {
		return err
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	routes.SetupRoutes(r, h, tokens, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server running", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case sig := <-stop:
		log.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn("Email queue not fully drained", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
	return nil
}
