package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mercatto/mercatto-payments/config"
	"github.com/mercatto/mercatto-payments/internal/adapters"
	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/signature"
	"github.com/mercatto/mercatto-payments/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(config.LoggingConfig{Level: "error", Format: "text"})
}

// fakePaymentAdapter serves the direct-payment capabilities and counts
// network calls so tests can assert that invalid instruments never reach
// the provider.
type fakePaymentAdapter struct {
	adapters.Unsupported

	name  string
	calls int

	pixResp  *domain.PaymentResponse
	pixErr   error
	cardResp *domain.PaymentResponse
	cardErr  error

	webhookSecret string
	parsedEvent   *domain.WebhookEvent

	// parsedQueue, when set, yields one event per ParseWebhook call so a
	// test can deliver a sequence of distinct notifications.
	parsedQueue []*domain.WebhookEvent

	statusResult domain.PaymentStatus
	rawStatus    string
	statusErr    error
}

func newFakePaymentAdapter(name string) *fakePaymentAdapter {
	return &fakePaymentAdapter{
		Unsupported: adapters.Unsupported{Provider: name},
		name:        name,
	}
}

func (f *fakePaymentAdapter) Name() string { return f.name }

func (f *fakePaymentAdapter) CreateCardPayment(_ context.Context, _ domain.CreditCardPayment) (*domain.PaymentResponse, error) {
	f.calls++
	return f.cardResp, f.cardErr
}

func (f *fakePaymentAdapter) CreatePixPayment(_ context.Context, _ domain.PixPayment) (*domain.PaymentResponse, error) {
	f.calls++
	return f.pixResp, f.pixErr
}

func (f *fakePaymentAdapter) GetPaymentStatus(_ context.Context, _ string) (domain.PaymentStatus, string, error) {
	f.calls++
	if f.statusErr != nil {
		return "", "", f.statusErr
	}
	return f.statusResult, f.rawStatus, nil
}

func (f *fakePaymentAdapter) VerifyWebhook(rawBody []byte, header string) error {
	return signature.NewVerifier(f.webhookSecret).Verify(rawBody, header)
}

func (f *fakePaymentAdapter) ParseWebhook(_ []byte) (*domain.WebhookEvent, error) {
	if len(f.parsedQueue) > 0 {
		event := *f.parsedQueue[0]
		f.parsedQueue = f.parsedQueue[1:]
		return &event, nil
	}
	event := *f.parsedEvent
	return &event, nil
}

// fakePayoutAdapter serves the payout capabilities with scripted results.
type fakePayoutAdapter struct {
	adapters.Unsupported

	quoteExpiry   time.Time
	requirements  []domain.RecipientField
	transferCalls int
	fundCalls     int
	cancelCalls   int
	liveStatus    domain.TransferStatus

	// onFund runs inside FundTransfer, before it returns. Used to simulate
	// a cancellation racing an in-flight funding call.
	onFund func()
}

func newFakePayoutAdapter() *fakePayoutAdapter {
	return &fakePayoutAdapter{
		Unsupported: adapters.Unsupported{Provider: "atlas"},
		quoteExpiry: time.Now().Add(30 * time.Minute),
		requirements: []domain.RecipientField{
			{Key: "iban", Label: "IBAN", Type: "text", Required: true},
			{Key: "bic", Label: "BIC", Type: "text", Required: false},
		},
		liveStatus: domain.TransferPendingApproval,
	}
}

func (f *fakePayoutAdapter) Name() string { return "atlas" }

func (f *fakePayoutAdapter) CreateQuote(_ context.Context, source, target, amount string) (*domain.Quote, error) {
	return &domain.Quote{
		ID:             "q-1",
		SourceCurrency: source,
		TargetCurrency: target,
		SourceAmount:   decimal.RequireFromString(amount),
		Rate:           decimal.RequireFromString("5.43"),
		Fee:            decimal.RequireFromString("3.50"),
		ExpiresAt:      f.quoteExpiry,
	}, nil
}

func (f *fakePayoutAdapter) GetRecipientRequirements(_ context.Context, _ string) ([]domain.RecipientField, error) {
	return f.requirements, nil
}

func (f *fakePayoutAdapter) CreateRecipient(_ context.Context, recipient domain.Recipient) (*domain.Recipient, error) {
	created := recipient
	created.ID = "r-1"
	created.Complete = true
	return &created, nil
}

func (f *fakePayoutAdapter) CreateTransfer(_ context.Context, quoteID, recipientID, idempotencyKey, reference string) (*domain.Transfer, error) {
	f.transferCalls++
	now := time.Now()
	return &domain.Transfer{
		ID:             "tr-1",
		QuoteID:        quoteID,
		RecipientID:    recipientID,
		IdempotencyKey: idempotencyKey,
		Status:         domain.TransferPendingApproval,
		Reference:      reference,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (f *fakePayoutAdapter) FundTransfer(_ context.Context, _ string) (domain.TransferStatus, error) {
	f.fundCalls++
	if f.onFund != nil {
		f.onFund()
	}
	return domain.TransferProcessing, nil
}

func (f *fakePayoutAdapter) GetTransferStatus(_ context.Context, _ string) (domain.TransferStatus, error) {
	return f.liveStatus, nil
}

func (f *fakePayoutAdapter) CancelTransfer(_ context.Context, _ string) error {
	f.cancelCalls++
	return nil
}

// fakeNotifier counts downstream mutations.
type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.WebhookEvent
}

func (n *fakeNotifier) NotifyEvent(_ context.Context, event domain.WebhookEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}
