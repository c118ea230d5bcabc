// Package service implements the core business logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/registry"
	"github.com/mercatto/mercatto-payments/internal/validation"
	"github.com/mercatto/mercatto-payments/pkg/logger"
)

// Gateway is the single entry point checkout code calls for direct
// payments. It enforces instrument validation before any adapter is
// invoked and translates every adapter failure into the normalized
// PaymentResponse shape, so call sites never handle provider-specific
// errors.
type Gateway struct {
	providers   *registry.Registry
	log         *logger.Logger
	callTimeout time.Duration
}

// NewGateway creates the payment gateway facade.
func NewGateway(providers *registry.Registry, callTimeout time.Duration, log *logger.Logger) *Gateway {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Gateway{providers: providers, log: log, callTimeout: callTimeout}
}

// ProcessCardPayment validates and submits a credit card payment.
// Invalid card numbers never leave the process.
func (g *Gateway) ProcessCardPayment(ctx context.Context, provider string, req domain.CreditCardPayment) (*domain.PaymentResponse, error) {
	if resp := g.validateRequest(req.PaymentRequest); resp != nil {
		return resp, nil
	}
	if !validation.ValidCardNumber(req.CardNumber) {
		return domain.Declined("invalid card number"), nil
	}
	if req.Installments < 1 {
		return domain.Declined("installments must be at least 1"), nil
	}

	adapter, err := g.providers.Get(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	resp, err := adapter.CreateCardPayment(ctx, req)
	return g.translate(adapter.Name(), resp, err)
}

// ProcessPixPayment validates and submits a PIX payment. On success the
// response carries the QR code payload.
func (g *Gateway) ProcessPixPayment(ctx context.Context, provider string, req domain.PixPayment) (*domain.PaymentResponse, error) {
	if resp := g.validateRequest(req.PaymentRequest); resp != nil {
		return resp, nil
	}

	adapter, err := g.providers.Get(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	resp, err := adapter.CreatePixPayment(ctx, req)
	return g.translate(adapter.Name(), resp, err)
}

// ProcessBoletoPayment validates and submits a boleto payment.
func (g *Gateway) ProcessBoletoPayment(ctx context.Context, provider string, req domain.BoletoPayment) (*domain.PaymentResponse, error) {
	if resp := g.validateRequest(req.PaymentRequest); resp != nil {
		return resp, nil
	}

	adapter, err := g.providers.Get(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	resp, err := adapter.CreateBoletoPayment(ctx, req)
	return g.translate(adapter.Name(), resp, err)
}

// validateRequest runs the pre-adapter checks shared by every payment type.
// A non-nil response means the request was rejected before any network call.
func (g *Gateway) validateRequest(req domain.PaymentRequest) *domain.PaymentResponse {
	if !req.Amount.IsPositive() {
		return domain.Declined("amount must be positive")
	}
	if !validation.ValidTaxID(req.Customer.TaxID) {
		return domain.Declined("invalid document number")
	}
	return nil
}

// translate converts adapter-level failures into the PaymentResponse shape.
// Unsupported-capability errors pass through so callers can branch on the
// kind without inspecting message text.
func (g *Gateway) translate(provider string, resp *domain.PaymentResponse, err error) (*domain.PaymentResponse, error) {
	if err == nil {
		return resp, nil
	}

	if domain.KindOf(err) == domain.KindUnsupported {
		return nil, err
	}

	g.log.WithFields(logger.Fields{
		"provider": provider,
		"error":    err.Error(),
	}).Error("provider call failed")

	declined := domain.Declined(err.Error())
	if errors.Is(err, domain.ErrProviderTimeout) {
		// A timeout is retryable with a fresh idempotency key, unlike a
		// provider decline.
		declined.Message = "provider did not respond in time"
		declined.Retryable = true
	}
	return declined, nil
}
