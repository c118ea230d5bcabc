package mercadopago

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

// notification is the wire shape of a Mercado Pago webhook body. The
// top-level id identifies the delivery; data.id identifies the payment.
type notification struct {
	ID          int64  `json:"id"`
	Action      string `json:"action"`
	DateCreated string `json:"date_created"`
	Data        struct {
		ID     string `json:"id"`
		Status string `json:"status,omitempty"`
	} `json:"data"`
}

// ParseWebhook decodes an already-authenticated notification body.
// Runs strictly after VerifyWebhook; a parse failure here is a malformed
// payload, not an authentication failure.
func (a *Adapter) ParseWebhook(rawBody []byte) (*domain.WebhookEvent, error) {
	var n notification
	if err := json.Unmarshal(rawBody, &n); err != nil {
		return nil, domain.NewError(domain.KindValidation, domain.ErrMalformedPayload,
			"body is not valid JSON", "WEBHOOK_PARSE_ERROR")
	}
	if n.Data.ID == "" {
		return nil, domain.NewError(domain.KindValidation, domain.ErrMalformedPayload,
			"payload missing data.id", "WEBHOOK_PARSE_ERROR")
	}

	occurredAt, err := time.Parse(time.RFC3339, n.DateCreated)
	if err != nil {
		occurredAt = time.Now().UTC()
	}

	event := &domain.WebhookEvent{
		Provider:      ProviderName,
		TransactionID: n.Data.ID,
		Type:          domain.EventPayment,
		RawStatus:     n.Action,
		OccurredAt:    occurredAt,
	}
	if n.ID != 0 {
		event.EventID = strconv.FormatInt(n.ID, 10)
	}

	// Some notification variants carry the status inline; the rest leave it
	// for a follow-up GetPaymentStatus call.
	if n.Data.Status != "" {
		event.RawStatus = n.Data.Status
		event.Status = string(a.mapStatus(n.Data.Status))
	}

	return event, nil
}

// GetPaymentStatus fetches the payment's current status from Mercado Pago.
func (a *Adapter) GetPaymentStatus(ctx context.Context, transactionID string) (domain.PaymentStatus, string, error) {
	id, err := strconv.Atoi(transactionID)
	if err != nil {
		return "", "", domain.NewError(domain.KindValidation, domain.ErrProviderCall,
			"invalid payment id format", "INVALID_PAYMENT_ID")
	}

	result, err := a.payments.Get(ctx, id)
	if err != nil {
		return "", "", wrapCallError(ctx, err, "failed to get payment info", "MP_PAYMENT_ERROR")
	}

	return a.mapStatus(result.Status), result.Status, nil
}
