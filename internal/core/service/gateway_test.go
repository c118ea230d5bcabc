package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/registry"
)

const (
	validCPF   = "52998224725"
	invalidCPF = "52998224724"
)

func pixRequest(taxID string) domain.PixPayment {
	return domain.PixPayment{
		PaymentRequest: domain.PaymentRequest{
			Amount:   decimal.RequireFromString("150.00"),
			Currency: "BRL",
			Customer: domain.Customer{
				Name:  "Ana Souza",
				Email: "ana@example.com",
				TaxID: taxID,
			},
		},
	}
}

func TestGateway_PixPayment(t *testing.T) {
	adapter := newFakePaymentAdapter("mercadopago")
	adapter.pixResp = &domain.PaymentResponse{
		Success:       true,
		TransactionID: "9001",
		Status:        domain.StatusPending,
		QRCode:        "00020126580014br.gov.bcb.pix",
	}
	gateway := NewGateway(registry.New("mercadopago", adapter), time.Second, testLogger())

	t.Run("valid tax id reaches the provider", func(t *testing.T) {
		resp, err := gateway.ProcessPixPayment(context.Background(), "", pixRequest(validCPF))
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, domain.StatusPending, resp.Status)
		assert.NotEmpty(t, resp.QRCode)
		assert.Equal(t, 1, adapter.calls)
	})

	t.Run("invalid tax id is declined with zero network calls", func(t *testing.T) {
		adapter.calls = 0
		resp, err := gateway.ProcessPixPayment(context.Background(), "", pixRequest(invalidCPF))
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, domain.StatusDeclined, resp.Status)
		assert.Contains(t, resp.Message, "invalid document")
		assert.Equal(t, 0, adapter.calls)
	})

	t.Run("non-positive amount is declined locally", func(t *testing.T) {
		adapter.calls = 0
		req := pixRequest(validCPF)
		req.Amount = decimal.Zero
		resp, err := gateway.ProcessPixPayment(context.Background(), "", req)
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, 0, adapter.calls)
	})
}

func TestGateway_CardPayment(t *testing.T) {
	adapter := newFakePaymentAdapter("mercadopago")
	adapter.cardResp = &domain.PaymentResponse{
		Success:       true,
		TransactionID: "9002",
		Status:        domain.StatusApproved,
	}
	gateway := NewGateway(registry.New("mercadopago", adapter), time.Second, testLogger())

	card := func(number string) domain.CreditCardPayment {
		return domain.CreditCardPayment{
			PaymentRequest: pixRequest(validCPF).PaymentRequest,
			CardNumber:     number,
			HolderName:     "ANA SOUZA",
			ExpiryMonth:    12,
			ExpiryYear:     2028,
			CVV:            "123",
			Installments:   1,
		}
	}

	t.Run("luhn-valid card is submitted", func(t *testing.T) {
		resp, err := gateway.ProcessCardPayment(context.Background(), "", card("4111111111111111"))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 1, adapter.calls)
	})

	t.Run("luhn-invalid card never leaves the process", func(t *testing.T) {
		adapter.calls = 0
		resp, err := gateway.ProcessCardPayment(context.Background(), "", card("4111111111111112"))
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, domain.StatusDeclined, resp.Status)
		assert.Equal(t, 0, adapter.calls)
	})
}

func TestGateway_TranslatesProviderFailures(t *testing.T) {
	t.Run("timeout is retryable, distinct from a decline", func(t *testing.T) {
		adapter := newFakePaymentAdapter("mercadopago")
		adapter.pixErr = domain.NewError(domain.KindProvider, domain.ErrProviderTimeout,
			"deadline exceeded", "PROVIDER_TIMEOUT")
		gateway := NewGateway(registry.New("mercadopago", adapter), time.Second, testLogger())

		resp, err := gateway.ProcessPixPayment(context.Background(), "", pixRequest(validCPF))
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.True(t, resp.Retryable)
	})

	t.Run("provider error becomes a structured decline", func(t *testing.T) {
		adapter := newFakePaymentAdapter("mercadopago")
		adapter.pixErr = domain.NewError(domain.KindProvider, domain.ErrProviderCall,
			"upstream said no", "MP_PAYMENT_ERROR")
		gateway := NewGateway(registry.New("mercadopago", adapter), time.Second, testLogger())

		resp, err := gateway.ProcessPixPayment(context.Background(), "", pixRequest(validCPF))
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.False(t, resp.Retryable)
		assert.Contains(t, resp.Message, "upstream said no")
	})

	t.Run("unsupported capability passes through for branching", func(t *testing.T) {
		payoutOnly := newFakePayoutAdapter()
		gateway := NewGateway(registry.New("atlas", payoutOnly), time.Second, testLogger())

		_, err := gateway.ProcessPixPayment(context.Background(), "", pixRequest(validCPF))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCapabilityNotSupported)
		assert.Equal(t, domain.KindUnsupported, domain.KindOf(err))
	})

	t.Run("unknown named provider", func(t *testing.T) {
		adapter := newFakePaymentAdapter("mercadopago")
		gateway := NewGateway(registry.New("mercadopago", adapter), time.Second, testLogger())

		_, err := gateway.ProcessPixPayment(context.Background(), "stripe", pixRequest(validCPF))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	})
}
