package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/core/ports"
	"github.com/mercatto/mercatto-payments/pkg/logger"
)

// PayoutService governs the multi-step lifecycle of a cross-border payout:
// quote, recipient, transfer, funding, settlement. Each step re-validates
// the invariants the previous steps established.
type PayoutService struct {
	adapter   ports.ProviderAdapter
	transfers ports.TransferStore
	log       *logger.Logger

	// now is swappable in tests.
	now func() time.Time

	mu         sync.RWMutex
	quotes     map[string]domain.Quote
	recipients map[string]domain.Recipient
}

// NewPayoutService creates a payout service over the given payout-capable
// adapter.
func NewPayoutService(adapter ports.ProviderAdapter, transfers ports.TransferStore, log *logger.Logger) *PayoutService {
	return &PayoutService{
		adapter:    adapter,
		transfers:  transfers,
		log:        log,
		now:        time.Now,
		quotes:     make(map[string]domain.Quote),
		recipients: make(map[string]domain.Recipient),
	}
}

// CreateQuote requests a rate/fee offer and remembers it for expiry
// re-validation at transfer creation.
func (s *PayoutService) CreateQuote(ctx context.Context, sourceCurrency, targetCurrency, sourceAmount string) (*domain.Quote, error) {
	quote, err := s.adapter.CreateQuote(ctx, sourceCurrency, targetCurrency, sourceAmount)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.quotes[quote.ID] = *quote
	s.mu.Unlock()

	s.log.WithFields(logger.Fields{
		"quote_id":   quote.ID,
		"source":     sourceCurrency,
		"target":     targetCurrency,
		"expires_at": quote.ExpiresAt,
	}).Info("payout quote created")

	return quote, nil
}

// GetRecipientRequirements discovers the dynamic fields required for
// recipients of the given currency.
func (s *PayoutService) GetRecipientRequirements(ctx context.Context, currency string) ([]domain.RecipientField, error) {
	return s.adapter.GetRecipientRequirements(ctx, currency)
}

// CreateRecipient validates the recipient against the provider's dynamic
// requirements and registers it. A recipient is complete only when every
// required field for its currency is filled.
func (s *PayoutService) CreateRecipient(ctx context.Context, recipient domain.Recipient) (*domain.Recipient, error) {
	requirements, err := s.adapter.GetRecipientRequirements(ctx, recipient.Currency)
	if err != nil {
		return nil, err
	}

	if missing := recipient.Validate(requirements); len(missing) > 0 {
		return nil, domain.NewError(domain.KindValidation, domain.ErrRecipientIncomplete,
			"missing required fields: "+strings.Join(missing, ", "), "RECIPIENT_INCOMPLETE")
	}

	created, err := s.adapter.CreateRecipient(ctx, recipient)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.recipients[created.ID] = *created
	s.mu.Unlock()

	return created, nil
}

// CreateTransfer creates a transfer from an unexpired quote to a complete
// recipient. An expired quote fails with the distinct quote-expired kind so
// the caller re-requests a quote instead of retrying blindly.
func (s *PayoutService) CreateTransfer(ctx context.Context, quoteID, recipientID, idempotencyKey, reference string) (*domain.Transfer, error) {
	// A retried request returns the existing transfer, never a duplicate.
	if existing, ok := s.transfers.GetByIdempotencyKey(idempotencyKey); ok {
		return existing, nil
	}

	s.mu.RLock()
	quote, quoteKnown := s.quotes[quoteID]
	recipient, recipientKnown := s.recipients[recipientID]
	s.mu.RUnlock()

	if !quoteKnown || quote.Expired(s.now()) {
		return nil, domain.NewError(domain.KindState, domain.ErrQuoteExpired,
			"quote "+quoteID+" is expired or unknown", "QUOTE_EXPIRED")
	}
	if !recipientKnown || !recipient.Complete {
		return nil, domain.NewError(domain.KindValidation, domain.ErrRecipientIncomplete,
			"recipient "+recipientID+" is not fully validated", "RECIPIENT_INCOMPLETE")
	}

	transfer, err := s.adapter.CreateTransfer(ctx, quoteID, recipientID, idempotencyKey, reference)
	if err != nil {
		return nil, err
	}

	s.transfers.Save(transfer)

	s.log.WithFields(logger.Fields{
		"transfer_id": transfer.ID,
		"quote_id":    quoteID,
		"status":      transfer.Status,
	}).Info("transfer created")

	return transfer, nil
}

// FundTransfer pays for a transfer. Only valid from active; calling it from
// any other state is a client error and must not be retried automatically.
func (s *PayoutService) FundTransfer(ctx context.Context, transferID string) (*domain.Transfer, error) {
	transfer, ok := s.transfers.Get(transferID)
	if !ok {
		return nil, domain.NewError(domain.KindState, domain.ErrTransferNotFound,
			"transfer "+transferID+" not found", "TRANSFER_NOT_FOUND")
	}

	if transfer.Status.Terminal() {
		return nil, domain.NewError(domain.KindState, domain.ErrTransferFinalized,
			"transfer "+transferID+" already finalized", "TRANSFER_FINALIZED")
	}
	if transfer.Status != domain.TransferActive {
		return nil, domain.NewError(domain.KindState, domain.ErrInvalidTransition,
			"funding requires an active transfer, current status is "+string(transfer.Status),
			"INVALID_TRANSITION")
	}

	if _, err := s.adapter.FundTransfer(ctx, transferID); err != nil {
		return nil, err
	}

	// The state may have moved to cancelled while the call was in flight;
	// in that case the funding result is discarded.
	current, ok := s.transfers.Get(transferID)
	if !ok || current.Status == domain.TransferCancelled {
		s.log.WithFields(logger.Fields{"transfer_id": transferID}).
			Warn("discarding funding result for cancelled transfer")
		return current, nil
	}

	if err := current.Transition(domain.TransferProcessing, s.now()); err != nil {
		return nil, err
	}
	s.transfers.Save(current)

	return current, nil
}

// GetTransfer returns the locally tracked transfer.
func (s *PayoutService) GetTransfer(transferID string) (*domain.Transfer, error) {
	transfer, ok := s.transfers.Get(transferID)
	if !ok {
		return nil, domain.NewError(domain.KindState, domain.ErrTransferNotFound,
			"transfer "+transferID+" not found", "TRANSFER_NOT_FOUND")
	}
	return transfer, nil
}

// GetLiveStatus reads the provider's view of the transfer. Pure read: valid
// from any state including terminal ones, and never mutates local state.
func (s *PayoutService) GetLiveStatus(ctx context.Context, transferID string) (domain.TransferStatus, error) {
	return s.adapter.GetTransferStatus(ctx, transferID)
}

// CancelTransfer abandons a payout at any non-terminal state.
func (s *PayoutService) CancelTransfer(ctx context.Context, transferID string) (*domain.Transfer, error) {
	transfer, ok := s.transfers.Get(transferID)
	if !ok {
		return nil, domain.NewError(domain.KindState, domain.ErrTransferNotFound,
			"transfer "+transferID+" not found", "TRANSFER_NOT_FOUND")
	}
	if transfer.Status.Terminal() {
		return nil, domain.NewError(domain.KindState, domain.ErrTransferFinalized,
			"transfer "+transferID+" already finalized in status "+string(transfer.Status),
			"TRANSFER_FINALIZED")
	}

	if err := s.adapter.CancelTransfer(ctx, transferID); err != nil {
		return nil, err
	}

	if err := transfer.Transition(domain.TransferCancelled, s.now()); err != nil {
		return nil, err
	}
	s.transfers.Save(transfer)

	s.log.WithFields(logger.Fields{"transfer_id": transferID}).Info("transfer cancelled")

	return transfer, nil
}

// ApplyEvent merges an authenticated settlement notification into the state
// machine. Out-of-order or stale notifications are logged and ignored; the
// delivery itself was already deduplicated upstream.
func (s *PayoutService) ApplyEvent(event domain.WebhookEvent) {
	transfer, ok := s.transfers.GetByProviderReference(event.TransactionID)
	if !ok {
		s.log.WithFields(logger.Fields{
			"provider":    event.Provider,
			"transfer_id": event.TransactionID,
		}).Warn("webhook for unknown transfer ignored")
		return
	}

	target := domain.TransferStatus(event.Status)
	if target == transfer.Status {
		return
	}

	if err := transfer.Transition(target, s.now()); err != nil {
		s.log.WithFields(logger.Fields{
			"transfer_id": transfer.ID,
			"from":        transfer.Status,
			"to":          target,
			"raw_status":  event.RawStatus,
		}).Warn("ignoring out-of-order transfer notification")
		return
	}
	s.transfers.Save(transfer)

	s.log.WithFields(logger.Fields{
		"transfer_id": transfer.ID,
		"status":      transfer.Status,
	}).Info("transfer state advanced by webhook")
}
