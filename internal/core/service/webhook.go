package service

import (
	"context"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/core/ports"
	"github.com/mercatto/mercatto-payments/internal/registry"
	"github.com/mercatto/mercatto-payments/pkg/logger"
)

// Webhook processing outcomes returned to the HTTP layer.
const (
	WebhookProcessed = "processed"
	WebhookDuplicate = "duplicate"
)

// WebhookService authenticates, parses, deduplicates and applies inbound
// provider notifications. Body parsing happens strictly after signature
// acceptance; a parse failure is distinct from an authentication failure.
type WebhookService struct {
	providers *registry.Registry
	events    ports.EventStore
	payouts   *PayoutService
	notifier  ports.CheckoutNotifier
	log       *logger.Logger
}

// NewWebhookService creates the webhook processing service.
func NewWebhookService(
	providers *registry.Registry,
	events ports.EventStore,
	payouts *PayoutService,
	notifier ports.CheckoutNotifier,
	log *logger.Logger,
) *WebhookService {
	return &WebhookService{
		providers: providers,
		events:    events,
		payouts:   payouts,
		notifier:  notifier,
		log:       log,
	}
}

// Process handles one webhook delivery. Providers deliver at least once;
// deliveries are deduplicated by their event identity, so the same
// authenticated event mutates downstream state exactly once while later
// lifecycle events for the same resource still get through.
func (s *WebhookService) Process(ctx context.Context, provider string, rawBody []byte, signatureHeader string) (string, error) {
	adapter, err := s.providers.Get(provider)
	if err != nil {
		return "", err
	}

	if err := adapter.VerifyWebhook(rawBody, signatureHeader); err != nil {
		s.log.WithFields(logger.Fields{"provider": provider}).
			Warn("webhook signature rejected")
		return "", err
	}

	event, err := adapter.ParseWebhook(rawBody)
	if err != nil {
		return "", err
	}

	// Notification variants without an inline status require a follow-up
	// read against the provider. The read happens before the dedupe slot is
	// consumed: if it fails here the delivery stays unconsumed and the
	// provider's retry gets a clean attempt.
	if event.Type == domain.EventPayment && event.Status == "" {
		status, raw, err := adapter.GetPaymentStatus(ctx, event.TransactionID)
		if err != nil {
			return "", err
		}
		event.Status = string(status)
		event.RawStatus = raw
	}

	// Deduplication is per delivery, not per resource: one transfer emits
	// several lifecycle events and each must apply exactly once.
	first, err := s.events.MarkProcessed(ctx, event.Provider+":"+event.DedupeKey())
	if err != nil {
		return "", domain.NewError(domain.KindProvider, domain.ErrProviderCall,
			"event store unavailable", "EVENT_STORE_ERROR")
	}
	if !first {
		s.log.WithFields(logger.Fields{
			"provider":       provider,
			"transaction_id": event.TransactionID,
		}).Info("duplicate webhook delivery ignored")
		return WebhookDuplicate, nil
	}

	if event.Type == domain.EventPayout {
		s.payouts.ApplyEvent(*event)
	}

	// The storefront backend owns order state; it receives the
	// authenticated, normalized, idempotency-keyed event.
	if err := s.notifier.NotifyEvent(ctx, *event); err != nil {
		s.log.WithFields(logger.Fields{
			"provider":       provider,
			"transaction_id": event.TransactionID,
			"error":          err.Error(),
		}).Error("storefront notification failed")
	}

	s.log.WithFields(logger.Fields{
		"provider":       provider,
		"transaction_id": event.TransactionID,
		"status":         event.Status,
	}).Info("webhook processed")

	return WebhookProcessed, nil
}
