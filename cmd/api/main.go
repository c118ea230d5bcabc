// Mercatto Payments Microservice
//
// This is the main entry point for the payment orchestration service.
// It wires up all dependencies and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mercatto/mercatto-payments/config"
	"github.com/mercatto/mercatto-payments/internal/adapters/atlas"
	"github.com/mercatto/mercatto-payments/internal/adapters/mercadopago"
	"github.com/mercatto/mercatto-payments/internal/api"
	"github.com/mercatto/mercatto-payments/internal/core/ports"
	"github.com/mercatto/mercatto-payments/internal/core/service"
	"github.com/mercatto/mercatto-payments/internal/idempotency"
	"github.com/mercatto/mercatto-payments/internal/platform/storefront"
	"github.com/mercatto/mercatto-payments/internal/registry"
	"github.com/mercatto/mercatto-payments/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Logging)

	log.WithFields(logger.Fields{
		"port":     cfg.Server.Port,
		"provider": cfg.Providers.Default,
	}).Info("starting mercatto-payments service")

	if err := validateConfig(cfg, log); err != nil {
		log.WithField("error", err.Error()).Fatal("configuration error")
	}

	// Wire up dependencies (manual dependency injection)
	//
	// Provider adapters
	mpAdapter, err := mercadopago.New(cfg.Providers.MercadoPago, cfg.Webhook.Secret, log)
	if err != nil {
		log.WithField("error", err.Error()).Fatal("failed to build Mercado Pago adapter")
	}
	atlasAdapter := atlas.New(cfg.Providers.Atlas, cfg.Webhook.Secret, cfg.Providers.CallTimeout, log)

	providers := registry.New(cfg.Providers.Default, mpAdapter, atlasAdapter)

	// Webhook deduplication store
	var events ports.EventStore
	if cfg.Redis.Addr != "" {
		redisStore := idempotency.NewRedisStore(cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStore.Ping(ctx); err != nil {
			cancel()
			log.WithField("error", err.Error()).Fatal("redis unreachable")
		}
		cancel()
		events = redisStore
		log.WithField("addr", cfg.Redis.Addr).Info("using redis event store")
	} else {
		events = idempotency.NewMemoryStore()
		log.Warn("REDIS_ADDR not set, using in-memory event store")
	}

	// Service layer
	notifier := storefront.NewClient(cfg.Storefront.BaseURL, cfg.Storefront.APIKey)
	payouts := service.NewPayoutService(atlasAdapter, service.NewMemoryTransferStore(), log)
	gateway := service.NewGateway(providers, cfg.Providers.CallTimeout, log)
	webhooks := service.NewWebhookService(providers, events, payouts, notifier, log)

	// API layer
	handler := api.NewHandler(gateway, payouts, webhooks)
	router := api.SetupRouter(handler, cfg.Server.GinMode)

	// Start server in a goroutine
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	go func() {
		log.WithField("addr", serverAddr).Info("server listening")
		if err := router.Run(serverAddr); err != nil {
			log.WithField("error", err.Error()).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
}

// validateConfig checks that required configuration values are set.
func validateConfig(cfg *config.Config, log *logger.Logger) error {
	if cfg.Webhook.Secret == "" {
		// The webhook endpoint fails closed without it; boot anyway so
		// direct payments keep working, but make the gap loud.
		log.Warn("WEBHOOK_SECRET not set, webhook endpoint will reject all deliveries")
	}
	if cfg.Providers.MercadoPago.AccessToken == "" {
		log.Warn("MP_ACCESS_TOKEN not set")
	}
	if cfg.Providers.Atlas.APIKey == "" {
		log.Warn("ATLAS_API_KEY not set")
	}
	if cfg.Providers.Default == "" {
		return fmt.Errorf("PAYMENT_PROVIDER is required")
	}
	return nil
}
