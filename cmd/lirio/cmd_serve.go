package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/lirio/internal/scheduler"
	"github.com/mamadbah2/lirio/internal/server/handlers"
	"github.com/mamadbah2/lirio/internal/server/router"
	commandsvc "github.com/mamadbah2/lirio/internal/service/commands"
	whatsappsvc "github.com/mamadbah2/lirio/internal/service/whatsapp"
	"github.com/mamadbah2/lirio/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/lirio/pkg/clients/whatsapp"
	"github.com/mamadbah2/lirio/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the WhatsApp webhook and the scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	log := a.logger

	if _, err := a.initialize(ctx); err != nil {
		return err
	}

	var messagingSvc whatsappsvc.MessagingService
	var webhookHandler *handlers.WebhookHandler
	if a.cfg.WhatsApp.Enabled() {
		var aiClient anthropic.Client
		if a.cfg.AI.AnthropicKey != "" {
			aiClient = anthropic.NewClient(a.cfg.AI.AnthropicKey, a.cfg.AI.BaseURL)
			log.Info("anthropic ai client enabled")
		} else {
			log.Warn("anthropic api key missing, free-text messages get the command help")
		}

		dispatcher := commandsvc.NewService(a.farm, a.reporting, logger.Named(log, "svc.commands"))
		meta := whatsappsvc.NewMetaWhatsAppService(a.cfg.WhatsApp, whatsappclient.NewClient(a.cfg.WhatsApp), aiClient, dispatcher, logger.Named(log, "svc.whatsapp"))
		messagingSvc = meta
		webhookHandler = handlers.NewWebhookHandler(meta, logger.Named(log, "handlers.whatsapp"))
	} else {
		log.Warn("whatsapp not configured, webhook and chat notifications disabled")
	}

	var backuper scheduler.Backuper
	if a.cfg.Backup.Enabled() {
		svc, err := a.backup(ctx)
		if err != nil {
			return err
		}
		backuper = svc
	}

	sched, err := scheduler.NewScheduler(*a.cfg, a.reporting, messagingSvc, backuper, logger.Named(log, "scheduler"))
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Farm:    handlers.NewFarmHandler(a.farm, logger.Named(log, "handlers.farm")),
		Reports: handlers.NewReportHandler(a.reporting, logger.Named(log, "handlers.reports")),
		Webhook: webhookHandler,
	}, nil, logger.Named(log, "router"))

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}
