package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cheertaboi/referral-service/internal/api"
	"github.com/Cheertaboi/referral-service/internal/cache"
	"github.com/Cheertaboi/referral-service/internal/config"
	"github.com/Cheertaboi/referral-service/internal/logging"
	"github.com/Cheertaboi/referral-service/internal/mail"
	"github.com/Cheertaboi/referral-service/internal/repository"
	"github.com/Cheertaboi/referral-service/internal/service"
	"github.com/Cheertaboi/referral-service/pkg/db"
)

const codeCacheTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	log := logging.New(cfg.LogFile)
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}

	conn, err := db.NewPostgresConnection(cfg.Postgres)
	if err != nil {
		log.Errorf("db connect: %v", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(ctx, conn); err != nil {
		cancel()
		log.Errorf("db migrate: %v", err)
		os.Exit(1)
	}
	cancel()

	var codes cache.CodeCache = cache.NewMemoryCodeCache()
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCodeCache(cfg.RedisURL, codeCacheTTL, log)
		if err != nil {
			log.Warnf("redis unavailable, using in-process code cache: %v", err)
		} else {
			defer rc.Close()
			codes = rc
		}
	}

	var mailer mail.Mailer = mail.NewLogMailer(log)
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.Sender)
	} else {
		log.Warnf("SMTP_HOST not set, discount emails will only be logged")
	}

	// repos & services
	customerRepo := repository.NewCustomerRepo(conn)
	transactionRepo := repository.NewTransactionRepo(conn)
	settingsRepo := repository.NewSettingsRepo(conn)
	txManager := repository.NewTxManager(conn)

	registry := service.NewRegistry(customerRepo, codes)
	settings := service.NewSettingsService(settingsRepo)
	referrals := service.NewReferralService(txManager, customerRepo, transactionRepo, registry, settings, mailer, log).
		WithTimeout(cfg.RequestTimeout)
	customers := service.NewCustomerService(customerRepo, transactionRepo, registry, referrals, log).
		WithTimeout(cfg.RequestTimeout)

	warmCtx, warmCancel := context.WithTimeout(context.Background(), time.Minute)
	if n, err := registry.Warm(warmCtx, 4); err != nil {
		log.Warnf("referral code cache warm-up failed: %v", err)
	} else {
		log.Infof("referral code cache warmed with %d codes", n)
	}
	warmCancel()

	handler := api.NewRouter(api.Services{
		Customers: customers,
		Referrals: referrals,
		Settings:  settings,
	}, cfg.AdminJWTSecret, log)
	if cfg.AdminJWTSecret == "" {
		log.Warnf("ADMIN_JWT_SECRET not set, /admin is unauthenticated")
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Infof("starting referral-service on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("listen: %s", err)
		os.Exit(1)
	}

	<-idleConnsClosed
	log.Infof("server stopped")
}
