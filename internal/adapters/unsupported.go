// Package adapters holds shared building blocks for provider adapters.
package adapters

import (
	"context"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

// Unsupported implements every ProviderAdapter capability by failing fast
// with domain.ErrCapabilityNotSupported. Concrete adapters embed it and
// override only the operations their provider actually supports.
type Unsupported struct {
	Provider string
}

func (u Unsupported) unsupported(op string) error {
	return domain.NewError(domain.KindUnsupported, domain.ErrCapabilityNotSupported,
		op+" is not supported by provider "+u.Provider, "CAPABILITY_NOT_SUPPORTED")
}

func (u Unsupported) CreateCardPayment(context.Context, domain.CreditCardPayment) (*domain.PaymentResponse, error) {
	return nil, u.unsupported("card payment")
}

func (u Unsupported) CreatePixPayment(context.Context, domain.PixPayment) (*domain.PaymentResponse, error) {
	return nil, u.unsupported("pix payment")
}

func (u Unsupported) CreateBoletoPayment(context.Context, domain.BoletoPayment) (*domain.PaymentResponse, error) {
	return nil, u.unsupported("boleto payment")
}

func (u Unsupported) GetPaymentStatus(context.Context, string) (domain.PaymentStatus, string, error) {
	return "", "", u.unsupported("payment status")
}

func (u Unsupported) CreateQuote(context.Context, string, string, string) (*domain.Quote, error) {
	return nil, u.unsupported("quote creation")
}

func (u Unsupported) GetRecipientRequirements(context.Context, string) ([]domain.RecipientField, error) {
	return nil, u.unsupported("recipient requirements")
}

func (u Unsupported) CreateRecipient(context.Context, domain.Recipient) (*domain.Recipient, error) {
	return nil, u.unsupported("recipient creation")
}

func (u Unsupported) CreateTransfer(context.Context, string, string, string, string) (*domain.Transfer, error) {
	return nil, u.unsupported("transfer creation")
}

func (u Unsupported) FundTransfer(context.Context, string) (domain.TransferStatus, error) {
	return "", u.unsupported("transfer funding")
}

func (u Unsupported) GetTransferStatus(context.Context, string) (domain.TransferStatus, error) {
	return "", u.unsupported("transfer status")
}

func (u Unsupported) CancelTransfer(context.Context, string) error {
	return u.unsupported("transfer cancellation")
}

func (u Unsupported) VerifyWebhook([]byte, string) error {
	return u.unsupported("webhook verification")
}

func (u Unsupported) ParseWebhook([]byte) (*domain.WebhookEvent, error) {
	return nil, u.unsupported("webhook parsing")
}
