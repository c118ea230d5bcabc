package atlas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	appconfig "github.com/mercatto/mercatto-payments/config"
	"github.com/mercatto/mercatto-payments/internal/adapters"
	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/core/ports"
	"github.com/mercatto/mercatto-payments/internal/signature"
	"github.com/mercatto/mercatto-payments/pkg/logger"
)

// ProviderName identifies this adapter in the registry.
const ProviderName = "atlas"

// Adapter implements ports.ProviderAdapter for the Atlas payout API.
// Direct-payment capabilities are not supported by this provider.
type Adapter struct {
	adapters.Unsupported

	rest      ports.Rest
	profileID string
	verifier  *signature.Verifier
	log       *logger.Logger
}

// New creates an Atlas adapter with the default HTTP transport.
func New(cfg appconfig.AtlasConfig, webhookSecret string, callTimeout time.Duration, log *logger.Logger) *Adapter {
	return NewWithRest(newRestClient(cfg, callTimeout), cfg.ProfileID, webhookSecret, log)
}

// NewWithRest creates an Atlas adapter over an explicit transport.
// Tests inject a fake ports.Rest here.
func NewWithRest(rest ports.Rest, profileID, webhookSecret string, log *logger.Logger) *Adapter {
	return &Adapter{
		Unsupported: adapters.Unsupported{Provider: ProviderName},
		rest:        rest,
		profileID:   profileID,
		verifier:    signature.NewVerifier(webhookSecret),
		log:         log,
	}
}

// Name returns the provider identifier.
func (a *Adapter) Name() string { return ProviderName }

type quoteResponse struct {
	ID             string `json:"id"`
	SourceCurrency string `json:"source_currency"`
	TargetCurrency string `json:"target_currency"`
	Rate           string `json:"rate"`
	Fee            string `json:"fee"`
	SourceAmount   string `json:"source_amount"`
	TargetAmount   string `json:"target_amount"`
	ExpiresAt      string `json:"expires_at"`
}

// CreateQuote requests a time-bounded rate/fee offer.
func (a *Adapter) CreateQuote(ctx context.Context, sourceCurrency, targetCurrency, sourceAmount string) (*domain.Quote, error) {
	body := map[string]string{
		"profile_id":      a.profileID,
		"source_currency": sourceCurrency,
		"target_currency": targetCurrency,
		"source_amount":   sourceAmount,
	}

	status, respBody, err := a.rest.Do(ctx, http.MethodPost, "/v1/quotes", nil, body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, providerError("quote creation", status, respBody)
	}

	var raw quoteResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, malformedResponse("quote")
	}

	quote := &domain.Quote{
		ID:             raw.ID,
		SourceCurrency: raw.SourceCurrency,
		TargetCurrency: raw.TargetCurrency,
		Rate:           parseDecimal(raw.Rate),
		Fee:            parseDecimal(raw.Fee),
		SourceAmount:   parseDecimal(raw.SourceAmount),
		TargetAmount:   parseDecimal(raw.TargetAmount),
	}
	if expires, err := time.Parse(time.RFC3339, raw.ExpiresAt); err == nil {
		quote.ExpiresAt = expires
	}
	return quote, nil
}

// GetRecipientRequirements discovers the dynamic fields Atlas requires for
// recipients of the given currency.
func (a *Adapter) GetRecipientRequirements(ctx context.Context, currency string) ([]domain.RecipientField, error) {
	path := "/v1/recipient-requirements?currency=" + currency
	status, respBody, err := a.rest.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, providerError("recipient requirements", status, respBody)
	}

	var raw []struct {
		Key           string   `json:"key"`
		Label         string   `json:"label"`
		Type          string   `json:"type"`
		Required      bool     `json:"required"`
		AllowedValues []string `json:"allowed_values"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, malformedResponse("recipient requirements")
	}

	fields := make([]domain.RecipientField, 0, len(raw))
	for _, f := range raw {
		fields = append(fields, domain.RecipientField{
			Key:           f.Key,
			Label:         f.Label,
			Type:          f.Type,
			Required:      f.Required,
			AllowedValues: f.AllowedValues,
		})
	}
	return fields, nil
}

// CreateRecipient registers the beneficiary with Atlas. The recipient must
// already be complete for its currency; the payout service validates that
// against GetRecipientRequirements before calling here.
func (a *Adapter) CreateRecipient(ctx context.Context, recipient domain.Recipient) (*domain.Recipient, error) {
	body := map[string]any{
		"profile_id":          a.profileID,
		"currency":            recipient.Currency,
		"account_holder_name": recipient.AccountHolderName,
		"details":             recipient.Fields,
	}

	status, respBody, err := a.rest.Do(ctx, http.MethodPost, "/v1/recipients", nil, body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, providerError("recipient creation", status, respBody)
	}

	var raw struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, malformedResponse("recipient")
	}

	created := recipient
	created.ID = raw.ID
	created.ProfileID = a.profileID
	created.Complete = true
	return &created, nil
}

type transferResponse struct {
	ID        string `json:"id"`
	QuoteID   string `json:"quote_id"`
	TargetID  string `json:"target_account"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	CreatedAt string `json:"created_at"`
}

// CreateTransfer creates a transfer against an unexpired quote. The
// idempotency key travels both as a header and in the body so a retried
// request never creates a duplicate transfer.
func (a *Adapter) CreateTransfer(ctx context.Context, quoteID, recipientID, idempotencyKey, reference string) (*domain.Transfer, error) {
	headers := http.Header{}
	headers.Set("Idempotency-Key", idempotencyKey)

	body := map[string]string{
		"quote_id":                quoteID,
		"target_account":          recipientID,
		"customer_transaction_id": idempotencyKey,
		"reference":               reference,
	}

	status, respBody, err := a.rest.Do(ctx, http.MethodPost, "/v1/transfers", headers, body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, providerError("transfer creation", status, respBody)
	}

	var raw transferResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, malformedResponse("transfer")
	}

	now := time.Now().UTC()
	return &domain.Transfer{
		ID:             raw.ID,
		QuoteID:        quoteID,
		RecipientID:    recipientID,
		IdempotencyKey: idempotencyKey,
		Status:         a.mapTransferStatus(raw.Status),
		Reference:      raw.Reference,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// FundTransfer pays for an active transfer from the profile balance.
func (a *Adapter) FundTransfer(ctx context.Context, transferID string) (domain.TransferStatus, error) {
	path := fmt.Sprintf("/v1/transfers/%s/payments", transferID)
	body := map[string]string{"type": "BALANCE"}

	status, respBody, err := a.rest.Do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", providerError("transfer funding", status, respBody)
	}

	var raw struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return "", malformedResponse("funding")
	}
	return a.mapTransferStatus(raw.Status), nil
}

// GetTransferStatus is a pure read, valid from any state.
func (a *Adapter) GetTransferStatus(ctx context.Context, transferID string) (domain.TransferStatus, error) {
	status, respBody, err := a.rest.Do(ctx, http.MethodGet, "/v1/transfers/"+transferID, nil, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", providerError("transfer status", status, respBody)
	}

	var raw transferResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return "", malformedResponse("transfer")
	}
	return a.mapTransferStatus(raw.Status), nil
}

// CancelTransfer cancels a transfer that has not reached a terminal state.
func (a *Adapter) CancelTransfer(ctx context.Context, transferID string) error {
	path := fmt.Sprintf("/v1/transfers/%s/cancel", transferID)
	status, respBody, err := a.rest.Do(ctx, http.MethodPut, path, nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return providerError("transfer cancellation", status, respBody)
	}
	return nil
}

// mapTransferStatus translates Atlas's status vocabulary onto the payout
// state set. Unknown values normalize to processing, the non-terminal state
// a funded transfer sits in, and the raw value is logged.
func (a *Adapter) mapTransferStatus(native string) domain.TransferStatus {
	switch native {
	case "created", "draft":
		return domain.TransferDraft
	case "incoming_payment_waiting", "waiting_for_approval":
		return domain.TransferPendingApproval
	case "active", "funds_required":
		return domain.TransferActive
	case "processing", "funds_converted", "outgoing_payment_queued":
		return domain.TransferProcessing
	case "outgoing_payment_sent":
		return domain.TransferSent
	case "bounced_back", "funds_refunded":
		return domain.TransferFundsReturned
	case "cancelled":
		return domain.TransferCancelled
	default:
		a.log.WithFields(logger.Fields{
			"provider": ProviderName,
			"status":   native,
		}).Warn("unmapped transfer status, normalizing to processing")
		return domain.TransferProcessing
	}
}

// providerError surfaces a non-2xx Atlas response with its body preserved
// for diagnostics. 5xx responses are retryable with a fresh idempotency key.
func providerError(op string, status int, body []byte) error {
	return domain.NewError(domain.KindProvider, domain.ErrProviderCall,
		fmt.Sprintf("%s failed with status %d: %s", op, status, string(body)),
		"ATLAS_ERROR")
}

func malformedResponse(what string) error {
	return domain.NewError(domain.KindProvider, domain.ErrProviderCall,
		"malformed "+what+" response", "ATLAS_DECODE_ERROR")
}

func parseDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
