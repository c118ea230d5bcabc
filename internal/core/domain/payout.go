package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a time-bounded exchange-rate and fee offer for a payout.
// A quote is unusable once the current time reaches ExpiresAt.
type Quote struct {
	ID             string          `json:"id"`
	SourceCurrency string          `json:"source_currency"`
	TargetCurrency string          `json:"target_currency"`
	Rate           decimal.Decimal `json:"rate"`
	Fee            decimal.Decimal `json:"fee"`
	SourceAmount   decimal.Decimal `json:"source_amount"`
	TargetAmount   decimal.Decimal `json:"target_amount"`
	ExpiresAt      time.Time       `json:"expires_at"`
}

// Expired reports whether the quote can no longer back a transfer.
func (q Quote) Expired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// RecipientField describes one provider-required dynamic field for a
// currency/account-type combination.
type RecipientField struct {
	Key           string   `json:"key"`
	Label         string   `json:"label"`
	Type          string   `json:"type"` // "text", "select", "date"
	Required      bool     `json:"required"`
	AllowedValues []string `json:"allowed_values,omitempty"`
}

// Recipient is the validated beneficiary of a cross-border payout.
// Complete is set only when every required field for the target
// currency/type combination is filled.
type Recipient struct {
	ID                string            `json:"id"`
	ProfileID         string            `json:"profile_id"`
	Currency          string            `json:"currency"`
	AccountHolderName string            `json:"account_holder_name"`
	Fields            map[string]string `json:"fields"`
	Complete          bool              `json:"complete"`
}

// Validate checks the recipient's fields against the provider requirements.
func (r Recipient) Validate(requirements []RecipientField) []string {
	var missing []string
	for _, f := range requirements {
		if !f.Required {
			continue
		}
		if v, ok := r.Fields[f.Key]; !ok || v == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

// WebhookEventType distinguishes payment notifications from payout
// settlement notifications.
type WebhookEventType string

const (
	EventPayment WebhookEventType = "payment"
	EventPayout  WebhookEventType = "payout"
)

// WebhookEvent is an authenticated, parsed provider notification.
// It is produced only after signature acceptance.
type WebhookEvent struct {
	Provider      string           `json:"provider"`
	TransactionID string           `json:"transaction_id"`
	Type          WebhookEventType `json:"type"`

	// EventID is the provider's delivery identifier when the wire format
	// carries one. Distinct lifecycle events for one resource have distinct
	// EventIDs; redeliveries of the same event share one.
	EventID string `json:"event_id,omitempty"`

	// Status is the normalized status; RawStatus preserves the provider's
	// native value for diagnostics.
	Status     string    `json:"status"`
	RawStatus  string    `json:"raw_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DedupeKey identifies one delivery for idempotency purposes. A resource
// emits several events over its lifecycle (approval, settlement), so the
// resource id alone can never be the key: that would swallow later events
// as duplicates of the first.
func (e WebhookEvent) DedupeKey() string {
	if e.EventID != "" {
		return e.EventID
	}
	return e.TransactionID + ":" + e.RawStatus
}
