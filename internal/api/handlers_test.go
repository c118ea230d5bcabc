package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/mercatto/mercatto-payments/config"
	"github.com/mercatto/mercatto-payments/internal/adapters"
	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/core/service"
	"github.com/mercatto/mercatto-payments/internal/idempotency"
	"github.com/mercatto/mercatto-payments/internal/registry"
	"github.com/mercatto/mercatto-payments/internal/signature"
	"github.com/mercatto/mercatto-payments/pkg/logger"
)

const (
	testProvider = "fake"
	testSecret   = "whsec_handlers"
)

// fakeAdapter implements the direct-payment and webhook capabilities used by
// the HTTP layer. Everything else reports unsupported.
type fakeAdapter struct {
	adapters.Unsupported

	verifier *signature.Verifier
	pixCalls int
}

func newFakeAdapter(secret string) *fakeAdapter {
	return &fakeAdapter{
		Unsupported: adapters.Unsupported{Provider: testProvider},
		verifier:    signature.NewVerifier(secret),
	}
}

func (f *fakeAdapter) Name() string { return testProvider }

func (f *fakeAdapter) CreatePixPayment(_ context.Context, _ domain.PixPayment) (*domain.PaymentResponse, error) {
	f.pixCalls++
	return &domain.PaymentResponse{
		Success:       true,
		TransactionID: "tx-1",
		Status:        domain.StatusPending,
		QRCode:        "00020126pix-payload",
	}, nil
}

func (f *fakeAdapter) VerifyWebhook(rawBody []byte, signatureHeader string) error {
	return f.verifier.Verify(rawBody, signatureHeader)
}

func (f *fakeAdapter) ParseWebhook(rawBody []byte) (*domain.WebhookEvent, error) {
	var n struct {
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(rawBody, &n); err != nil || n.TransactionID == "" {
		return nil, domain.NewError(domain.KindValidation, domain.ErrMalformedPayload,
			"unparseable notification", "WEBHOOK_PARSE_ERROR")
	}
	return &domain.WebhookEvent{
		Provider:      testProvider,
		TransactionID: n.TransactionID,
		Type:          domain.EventPayment,
		Status:        n.Status,
		RawStatus:     n.Status,
		OccurredAt:    time.Now().UTC(),
	}, nil
}

func (f *fakeAdapter) GetPaymentStatus(_ context.Context, _ string) (domain.PaymentStatus, string, error) {
	return domain.StatusApproved, "approved", nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.WebhookEvent
}

func (f *fakeNotifier) NotifyEvent(_ context.Context, event domain.WebhookEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func newTestRouter(t *testing.T, secret string) (*gin.Engine, *fakeAdapter, *fakeNotifier) {
	t.Helper()

	log := logger.New(appconfig.LoggingConfig{Level: "error", Format: "text"})
	adapter := newFakeAdapter(secret)
	providers := registry.New(testProvider, adapter)

	gateway := service.NewGateway(providers, 5*time.Second, log)
	payouts := service.NewPayoutService(adapter, service.NewMemoryTransferStore(), log)
	notifier := &fakeNotifier{}
	webhooks := service.NewWebhookService(providers, idempotency.NewMemoryStore(), payouts, notifier, log)

	handler := NewHandler(gateway, payouts, webhooks)
	return SetupRouter(handler, gin.TestMode), adapter, notifier
}

func doRequest(router *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func webhookBody(transactionID, status string) []byte {
	body, _ := json.Marshal(map[string]string{
		"transaction_id": transactionID,
		"status":         status,
	})
	return body
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWebhook_GETNotAllowed(t *testing.T) {
	router, _, _ := newTestRouter(t, testSecret)

	w := doRequest(router, http.MethodGet, "/webhooks/"+testProvider, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWebhook_SecretNotConfigured(t *testing.T) {
	router, _, notifier := newTestRouter(t, "")

	body := webhookBody("tx-1", "approved")
	w := doRequest(router, http.MethodPost, "/webhooks/"+testProvider, body, map[string]string{
		SignatureHeader: signature.Sign(testSecret, body),
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SECRET_NOT_CONFIGURED", decodeError(t, w).Code)
	assert.Zero(t, notifier.count())
}

func TestWebhook_MissingSignature(t *testing.T) {
	router, _, _ := newTestRouter(t, testSecret)

	w := doRequest(router, http.MethodPost, "/webhooks/"+testProvider, webhookBody("tx-1", "approved"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SIGNATURE_MISSING", decodeError(t, w).Code)
}

func TestWebhook_EmptyBody(t *testing.T) {
	router, _, _ := newTestRouter(t, testSecret)

	w := doRequest(router, http.MethodPost, "/webhooks/"+testProvider, nil, map[string]string{
		SignatureHeader: signature.Sign(testSecret, nil),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_BadSignature(t *testing.T) {
	router, _, notifier := newTestRouter(t, testSecret)
	body := webhookBody("tx-1", "approved")

	w := doRequest(router, http.MethodPost, "/webhooks/"+testProvider, body, map[string]string{
		SignatureHeader: signature.Sign("wrong-secret", body),
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SIGNATURE_MISMATCH", decodeError(t, w).Code)
	assert.Zero(t, notifier.count())

	// A rejected delivery must not consume the idempotency slot: the
	// correctly signed retry still counts as first.
	w = doRequest(router, http.MethodPost, "/webhooks/"+testProvider, body, map[string]string{
		SignatureHeader: signature.Sign(testSecret, body),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"processed"}`, w.Body.String())
	assert.Equal(t, 1, notifier.count())
}

func TestWebhook_SignedButUnparseable(t *testing.T) {
	router, _, notifier := newTestRouter(t, testSecret)
	body := []byte(`<xml/>`)

	w := doRequest(router, http.MethodPost, "/webhooks/"+testProvider, body, map[string]string{
		SignatureHeader: signature.Sign(testSecret, body),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "WEBHOOK_PARSE_ERROR", decodeError(t, w).Code)
	assert.Zero(t, notifier.count())
}

func TestWebhook_ProcessedThenDuplicate(t *testing.T) {
	router, _, notifier := newTestRouter(t, testSecret)
	body := webhookBody("tx-1", "approved")
	headers := map[string]string{SignatureHeader: signature.Sign(testSecret, body)}

	w := doRequest(router, http.MethodPost, "/webhooks/"+testProvider, body, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"processed"}`, w.Body.String())

	w = doRequest(router, http.MethodPost, "/webhooks/"+testProvider, body, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"duplicate"}`, w.Body.String())

	assert.Equal(t, 1, notifier.count())
}

func TestWebhook_PrefixedSignatureAccepted(t *testing.T) {
	router, _, _ := newTestRouter(t, testSecret)
	body := webhookBody("tx-2", "approved")

	w := doRequest(router, http.MethodPost, "/webhooks/"+testProvider, body, map[string]string{
		SignatureHeader: "sha256=" + signature.Sign(testSecret, body),
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhook_UnknownProvider(t *testing.T) {
	router, _, _ := newTestRouter(t, testSecret)
	body := webhookBody("tx-1", "approved")

	w := doRequest(router, http.MethodPost, "/webhooks/stripe", body, map[string]string{
		SignatureHeader: signature.Sign(testSecret, body),
	})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestCreatePixPayment(t *testing.T) {
	router, adapter, _ := newTestRouter(t, testSecret)

	body, _ := json.Marshal(gin.H{
		"amount":   150.00,
		"currency": "BRL",
		"customer": gin.H{
			"name":   "Maria Souza",
			"email":  "maria@example.com",
			"tax_id": "529.982.247-25",
		},
	})

	w := doRequest(router, http.MethodPost, "/api/v1/payments/pix", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.PaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, domain.StatusPending, resp.Status)
	assert.NotEmpty(t, resp.QRCode)
	assert.Equal(t, 1, adapter.pixCalls)
}

func TestCreatePixPayment_InvalidTaxID(t *testing.T) {
	router, adapter, _ := newTestRouter(t, testSecret)

	body, _ := json.Marshal(gin.H{
		"amount":   150.00,
		"currency": "BRL",
		"customer": gin.H{
			"name":   "Maria Souza",
			"email":  "maria@example.com",
			"tax_id": "529.982.247-24",
		},
	})

	w := doRequest(router, http.MethodPost, "/api/v1/payments/pix", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Structurally valid requests that fail business validation come back
	// as declined responses, not transport errors.
	var resp domain.PaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, domain.StatusDeclined, resp.Status)
	assert.Zero(t, adapter.pixCalls)
}

func TestCreatePixPayment_MalformedBody(t *testing.T) {
	router, _, _ := newTestRouter(t, testSecret)

	w := doRequest(router, http.MethodPost, "/api/v1/payments/pix", []byte(`{"amount":`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCardPaymentUnsupportedByProvider(t *testing.T) {
	router, _, _ := newTestRouter(t, testSecret)

	body, _ := json.Marshal(gin.H{
		"amount":       99.90,
		"currency":     "BRL",
		"card_number":  "4111111111111111",
		"holder_name":  "MARIA SOUZA",
		"expiry_month": 12,
		"expiry_year":  2030,
		"cvv":          "123",
		"customer": gin.H{
			"name":   "Maria Souza",
			"email":  "maria@example.com",
			"tax_id": "52998224725",
		},
	})

	// The fake provider only supports PIX; capability gaps surface as 501
	// so callers can fall back to another method.
	w := doRequest(router, http.MethodPost, "/api/v1/payments/card", body, nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "CAPABILITY_NOT_SUPPORTED", decodeError(t, w).Code)
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t, testSecret)

	w := doRequest(router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
