package atlas

import (
	"encoding/json"
	"time"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

// stateChangeEvent is the wire shape of an Atlas transfer notification.
// The top-level id identifies the event itself; one transfer emits several
// over its lifecycle.
type stateChangeEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"` // "transfers#state-change"
	Data      struct {
		Resource struct {
			ID string `json:"id"`
		} `json:"resource"`
		CurrentState string `json:"current_state"`
	} `json:"data"`
	OccurredAt string `json:"occurred_at"`
}

// VerifyWebhook authenticates the raw notification bytes.
func (a *Adapter) VerifyWebhook(rawBody []byte, signatureHeader string) error {
	return a.verifier.Verify(rawBody, signatureHeader)
}

// ParseWebhook decodes an already-authenticated state-change notification.
func (a *Adapter) ParseWebhook(rawBody []byte) (*domain.WebhookEvent, error) {
	var e stateChangeEvent
	if err := json.Unmarshal(rawBody, &e); err != nil {
		return nil, domain.NewError(domain.KindValidation, domain.ErrMalformedPayload,
			"body is not valid JSON", "WEBHOOK_PARSE_ERROR")
	}
	if e.Data.Resource.ID == "" {
		return nil, domain.NewError(domain.KindValidation, domain.ErrMalformedPayload,
			"payload missing resource id", "WEBHOOK_PARSE_ERROR")
	}

	occurredAt, err := time.Parse(time.RFC3339, e.OccurredAt)
	if err != nil {
		occurredAt = time.Now().UTC()
	}

	return &domain.WebhookEvent{
		Provider:      ProviderName,
		TransactionID: e.Data.Resource.ID,
		EventID:       e.ID,
		Type:          domain.EventPayout,
		Status:        string(a.mapTransferStatus(e.Data.CurrentState)),
		RawStatus:     e.Data.CurrentState,
		OccurredAt:    occurredAt,
	}, nil
}
