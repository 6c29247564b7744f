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

	"telegram-pix-packs/internal/application"
	"telegram-pix-packs/internal/config"
	"telegram-pix-packs/internal/domain/ports/adapter"
	payAdapters "telegram-pix-packs/internal/infra/adapters/payment"
	tele "telegram-pix-packs/internal/infra/adapters/telegram"
	pg "telegram-pix-packs/internal/infra/db/postgres"
	"telegram-pix-packs/internal/infra/logging"
	"telegram-pix-packs/internal/infra/metrics"
	red "telegram-pix-packs/internal/infra/redis"
	"telegram-pix-packs/internal/infra/sched"
	"telegram-pix-packs/internal/infra/web"
	"telegram-pix-packs/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop payment gateway)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	store := pg.NewPaymentRepo(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("schema init failed")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = payAdapters.NewNoopPaymentGateway()
		logger.Info().Msg("payment gateway: noop (dev)")
	} else {
		gateway, err = payAdapters.NewMercadoPagoGateway(cfg.Payment.MercadoPago)
		if err != nil {
			logger.Fatal().Err(err).Msg("mercadopago gateway init failed")
		}
	}

	// ---- Use cases ----
	catalog := cfg.Catalog()
	paymentUC := usecase.NewPaymentUseCase(store, gateway, catalog, logger)
	statsUC := usecase.NewStatsUseCase(store, catalog, logger)

	// ---- Facade + Telegram ----
	facade := application.NewBotFacade(paymentUC, statsUC, catalog)
	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}
	go func() {
		if err := bot.StartPolling(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin/reporting API ----
	if cfg.Admin.Port > 0 {
		srv := web.NewServer(statsUC, cfg.Admin.APIKey, cfg.Admin.JWTSecret, cfg.Admin.SessionTTL, !cfg.Runtime.Dev, logger)
		server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: srv.Router()}
		go func() {
			logger.Info().Str("addr", server.Addr).Msg("admin api listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("admin api server error")
			}
		}()
		defer server.Close()
	}

	// ---- Stale payment reconciler ----
	reconciler := sched.NewPaymentReconciler(paymentUC, store, bot, cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger)
	go reconciler.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	bot.StopPolling()
	cancel()
}
