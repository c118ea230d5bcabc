// Package ports defines the interfaces (ports) for the payment service.
// These are contracts that adapters must implement.
package ports

import (
	"context"
	"net/http"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

// ProviderAdapter is the capability union every provider integration plugs
// into. An adapter implements a subset; every unimplemented operation must
// return domain.ErrCapabilityNotSupported immediately so callers can branch
// on the error kind without inspecting message text.
type ProviderAdapter interface {
	// Name returns the provider identifier used by the registry.
	Name() string

	// Direct payment capabilities.
	CreateCardPayment(ctx context.Context, req domain.CreditCardPayment) (*domain.PaymentResponse, error)
	CreatePixPayment(ctx context.Context, req domain.PixPayment) (*domain.PaymentResponse, error)
	CreateBoletoPayment(ctx context.Context, req domain.BoletoPayment) (*domain.PaymentResponse, error)

	// GetPaymentStatus reads the current status of a payment by its provider
	// transaction id. Returns the normalized status and the provider's raw
	// status value.
	GetPaymentStatus(ctx context.Context, transactionID string) (domain.PaymentStatus, string, error)

	// Cross-border payout capabilities.
	CreateQuote(ctx context.Context, sourceCurrency, targetCurrency string, sourceAmount string) (*domain.Quote, error)
	GetRecipientRequirements(ctx context.Context, currency string) ([]domain.RecipientField, error)
	CreateRecipient(ctx context.Context, recipient domain.Recipient) (*domain.Recipient, error)
	CreateTransfer(ctx context.Context, quoteID, recipientID, idempotencyKey, reference string) (*domain.Transfer, error)
	FundTransfer(ctx context.Context, transferID string) (domain.TransferStatus, error)
	GetTransferStatus(ctx context.Context, transferID string) (domain.TransferStatus, error)
	CancelTransfer(ctx context.Context, transferID string) error

	// Webhook capabilities. VerifyWebhook authenticates the exact raw bytes;
	// ParseWebhook runs only after acceptance.
	VerifyWebhook(rawBody []byte, signatureHeader string) error
	ParseWebhook(rawBody []byte) (*domain.WebhookEvent, error)
}

// Rest abstracts the HTTP transport an adapter uses: method, path, headers
// and JSON body in; status code and body bytes out. Retries, TLS and
// connection pooling belong to the implementation behind this port.
type Rest interface {
	Do(ctx context.Context, method, path string, headers http.Header, body any) (int, []byte, error)
}

// EventStore deduplicates webhook deliveries. MarkProcessed returns true
// exactly once per key under concurrent duplicate delivery.
type EventStore interface {
	MarkProcessed(ctx context.Context, key string) (bool, error)
}

// CheckoutNotifier forwards authenticated payment/payout events to the
// storefront backend, which owns order state.
type CheckoutNotifier interface {
	NotifyEvent(ctx context.Context, event domain.WebhookEvent) error
}

// TransferStore persists payout state between the asynchronous steps of a
// transfer's lifecycle.
type TransferStore interface {
	Save(transfer *domain.Transfer)
	Get(id string) (*domain.Transfer, bool)
	GetByIdempotencyKey(key string) (*domain.Transfer, bool)
	GetByProviderReference(ref string) (*domain.Transfer, bool)
}
