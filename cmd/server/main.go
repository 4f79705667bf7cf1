package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charity/internal/config"
	"charity/internal/db"
	"charity/internal/handlers"
	"charity/internal/logging"
	"charity/internal/mailer"
	"charity/internal/money"
	"charity/internal/scheduler"
	"charity/internal/services"
	"charity/internal/store"
	"charity/internal/websocket"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	cancelConnect()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect database")
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	transactions := store.NewTransactionStore(database)
	applications := store.NewApplicationStore(database)
	branches := store.NewBranchStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	ledger := services.NewLedgerService(txRunner, accounts, transactions, audit, users, hub, logger)
	applicationService := services.NewApplicationService(txRunner, applications, branches, users, audit, logger, cfg.MaxAttachmentBytes)
	directory := services.NewDirectoryService(txRunner, services.DirectoryStores{
		Branches:     branches,
		Activities:   store.NewActivityStore(database),
		Resources:    store.NewResourceStore(database),
		Users:        users,
		Donations:    store.NewDonationStore(database),
		Regional:     store.NewRegionalStore(database),
		Stories:      store.NewStoryStore(database),
		Reports:      store.NewReportStore(database),
		Transactions: transactions,
		Applications: applications,
		Audit:        audit,
		AuditLog:     audit,
	}, logger, cfg.MaxAttachmentBytes)
	authService := services.NewAuthService(txRunner, users, accounts, store.NewResetStore(database), audit,
		mailer.New(cfg.SendGridAPIKey, cfg.MailFrom, logger),
		services.AuthConfig{
			JWTSecret:          cfg.JWTSecret,
			TokenTTL:           cfg.TokenTTL,
			ResetTokenTTL:      cfg.ResetTokenTTL,
			MaxAttachmentBytes: cfg.MaxAttachmentBytes,
			ExposeResetToken:   !cfg.IsProduction(),
		}, logger)

	if cfg.SeedAdminEmail != "" {
		created, err := authService.SeedAdmin(context.Background(), cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminName)
		if err != nil {
			logger.WithError(err).Fatal("failed to seed master admin")
		}
		if created {
			logger.WithField("email", cfg.SeedAdminEmail).Info("master admin created")
		}
	}

	var autoPay *scheduler.AutoPay
	if cfg.AutoPaySchedule != "" {
		amount, err := money.ParseMinor(cfg.AutoPayAmount)
		if err != nil {
			logger.WithError(err).Fatal("invalid AUTOPAY_AMOUNT")
		}
		autoPay, err = scheduler.NewAutoPay(cfg.AutoPaySchedule, amount, ledger, logger)
		if err != nil {
			logger.WithError(err).Fatal("invalid auto-pay schedule")
		}
		autoPay.Start()
		logger.WithField("next_run", autoPay.Next()).Info("auto-pay collection scheduled")
	}

	handler := handlers.New(cfg, handlers.Deps{
		Auth:         authService,
		Ledger:       ledger,
		Applications: applicationService,
		Directory:    directory,
		Users:        users,
		Hub:          hub,
		Logger:       logger,
	})
	stop := make(chan struct{})
	handler.StartCleanup(stop)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("charity API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	logger.Info("shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if autoPay != nil {
		if err := autoPay.Stop(ctx); err != nil {
			logger.WithError(err).Warn("auto-pay job did not finish before shutdown")
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}
