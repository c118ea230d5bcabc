// Package storefront implements the CheckoutNotifier port by calling the
// storefront backend, which owns order state.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

// Client notifies the storefront backend of authenticated payment and
// payout events.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new storefront backend client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// eventPayload is the wire shape sent to the storefront backend.
type eventPayload struct {
	Provider      string `json:"provider"`
	TransactionID string `json:"transaction_id"`
	EventType     string `json:"event_type"`
	Status        string `json:"status"`
	RawStatus     string `json:"raw_status"`
	OccurredAt    string `json:"occurred_at"`
}

// NotifyEvent sends an authenticated event to the storefront backend.
// POST /api/internal/payments/events/
func (c *Client) NotifyEvent(ctx context.Context, event domain.WebhookEvent) error {
	url := fmt.Sprintf("%s/api/internal/payments/events/", c.baseURL)

	payload := eventPayload{
		Provider:      event.Provider,
		TransactionID: event.TransactionID,
		EventType:     string(event.Type),
		Status:        event.Status,
		RawStatus:     event.RawStatus,
		OccurredAt:    event.OccurredAt.Format(time.RFC3339),
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Internal-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storefront backend returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
