// Package api contains the HTTP handlers and routing for the payment service.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/core/service"
)

// SignatureHeader carries the webhook HMAC, optionally "sha256="-prefixed.
const SignatureHeader = "X-Signature"

// Handler contains the HTTP handlers for the payment API.
type Handler struct {
	gateway  *service.Gateway
	payouts  *service.PayoutService
	webhooks *service.WebhookService
}

// NewHandler creates a new API handler.
func NewHandler(gateway *service.Gateway, payouts *service.PayoutService, webhooks *service.WebhookService) *Handler {
	return &Handler{gateway: gateway, payouts: payouts, webhooks: webhooks}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
}

// customerRequest is the customer block shared by every payment request.
type customerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	TaxID string `json:"tax_id" binding:"required"`
	Phone string `json:"phone"`
}

// addressRequest is a billing or shipping address.
type addressRequest struct {
	Street  string `json:"street"`
	Number  string `json:"number"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// paymentRequestBody is the shared body of the payment endpoints.
type paymentRequestBody struct {
	Provider        string          `json:"provider"` // empty selects the configured default
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Currency        string          `json:"currency" binding:"required,len=3"`
	Description     string          `json:"description"`
	Customer        customerRequest `json:"customer" binding:"required"`
	BillingAddress  addressRequest  `json:"billing_address"`
	ShippingAddress *addressRequest `json:"shipping_address"`
}

func (b paymentRequestBody) toDomain() domain.PaymentRequest {
	req := domain.PaymentRequest{
		Amount:      b.Amount,
		Currency:    b.Currency,
		Description: b.Description,
		Customer: domain.Customer{
			Name:  b.Customer.Name,
			Email: b.Customer.Email,
			TaxID: b.Customer.TaxID,
			Phone: b.Customer.Phone,
		},
		BillingAddress: domain.Address(b.BillingAddress),
	}
	if b.ShippingAddress != nil {
		addr := domain.Address(*b.ShippingAddress)
		req.ShippingAddress = &addr
	}
	return req
}

// cardPaymentRequest is the JSON body for POST /payments/card.
type cardPaymentRequest struct {
	paymentRequestBody
	CardNumber   string `json:"card_number" binding:"required"`
	HolderName   string `json:"holder_name" binding:"required"`
	ExpiryMonth  int    `json:"expiry_month" binding:"required,min=1,max=12"`
	ExpiryYear   int    `json:"expiry_year" binding:"required"`
	CVV          string `json:"cvv" binding:"required"`
	Installments int    `json:"installments"`
}

// CreateCardPayment handles POST /api/v1/payments/card.
func (h *Handler) CreateCardPayment(c *gin.Context) {
	var req cardPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Installments == 0 {
		req.Installments = 1
	}

	resp, err := h.gateway.ProcessCardPayment(c.Request.Context(), req.Provider, domain.CreditCardPayment{
		PaymentRequest: req.toDomain(),
		CardNumber:     req.CardNumber,
		HolderName:     req.HolderName,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            req.CVV,
		Installments:   req.Installments,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// pixPaymentRequest is the JSON body for POST /payments/pix.
type pixPaymentRequest struct {
	paymentRequestBody
	ExpiresInSeconds int `json:"expires_in_seconds"`
}

// CreatePixPayment handles POST /api/v1/payments/pix.
func (h *Handler) CreatePixPayment(c *gin.Context) {
	var req pixPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.gateway.ProcessPixPayment(c.Request.Context(), req.Provider, domain.PixPayment{
		PaymentRequest: req.toDomain(),
		ExpiresIn:      time.Duration(req.ExpiresInSeconds) * time.Second,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// boletoPaymentRequest is the JSON body for POST /payments/boleto.
type boletoPaymentRequest struct {
	paymentRequestBody
	DueDate string `json:"due_date"` // RFC 3339, optional
}

// CreateBoletoPayment handles POST /api/v1/payments/boleto.
func (h *Handler) CreateBoletoPayment(c *gin.Context) {
	var req boletoPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	payment := domain.BoletoPayment{PaymentRequest: req.toDomain()}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			badRequest(c, errors.New("due_date must be RFC 3339"))
			return
		}
		payment.DueDate = due
	}

	resp, err := h.gateway.ProcessBoletoPayment(c.Request.Context(), req.Provider, payment)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// quoteRequest is the JSON body for POST /payouts/quotes.
type quoteRequest struct {
	SourceCurrency string `json:"source_currency" binding:"required,len=3"`
	TargetCurrency string `json:"target_currency" binding:"required,len=3"`
	SourceAmount   string `json:"source_amount" binding:"required"`
}

// CreateQuote handles POST /api/v1/payouts/quotes.
func (h *Handler) CreateQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	quote, err := h.payouts.CreateQuote(c.Request.Context(), req.SourceCurrency, req.TargetCurrency, req.SourceAmount)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetRecipientRequirements handles GET /api/v1/payouts/recipients/requirements.
func (h *Handler) GetRecipientRequirements(c *gin.Context) {
	currency := c.Query("currency")
	if currency == "" {
		badRequest(c, errors.New("currency query parameter is required"))
		return
	}

	fields, err := h.payouts.GetRecipientRequirements(c.Request.Context(), currency)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currency": currency, "fields": fields})
}

// recipientRequest is the JSON body for POST /payouts/recipients.
type recipientRequest struct {
	Currency          string            `json:"currency" binding:"required,len=3"`
	AccountHolderName string            `json:"account_holder_name" binding:"required"`
	Fields            map[string]string `json:"fields"`
}

// CreateRecipient handles POST /api/v1/payouts/recipients.
func (h *Handler) CreateRecipient(c *gin.Context) {
	var req recipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	recipient, err := h.payouts.CreateRecipient(c.Request.Context(), domain.Recipient{
		Currency:          req.Currency,
		AccountHolderName: req.AccountHolderName,
		Fields:            req.Fields,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipient)
}

// transferRequest is the JSON body for POST /payouts/transfers.
type transferRequest struct {
	QuoteID        string `json:"quote_id" binding:"required"`
	RecipientID    string `json:"recipient_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
	Reference      string `json:"reference"`
}

// CreateTransfer handles POST /api/v1/payouts/transfers.
func (h *Handler) CreateTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	transfer, err := h.payouts.CreateTransfer(c.Request.Context(), req.QuoteID, req.RecipientID, req.IdempotencyKey, req.Reference)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// FundTransfer handles POST /api/v1/payouts/transfers/:id/fund.
func (h *Handler) FundTransfer(c *gin.Context) {
	transfer, err := h.payouts.FundTransfer(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// GetTransfer handles GET /api/v1/payouts/transfers/:id.
// The read is side-effect-free and valid from any state.
func (h *Handler) GetTransfer(c *gin.Context) {
	transfer, err := h.payouts.GetTransfer(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := gin.H{"transfer": transfer}
	if live, err := h.payouts.GetLiveStatus(c.Request.Context(), transfer.ID); err == nil {
		resp["provider_status"] = live
	}
	c.JSON(http.StatusOK, resp)
}

// CancelTransfer handles POST /api/v1/payouts/transfers/:id/cancel.
func (h *Handler) CancelTransfer(c *gin.Context) {
	transfer, err := h.payouts.CancelTransfer(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// HandleWebhook handles POST /webhooks/:provider.
// The raw body is read before any parsing: signature verification requires
// the exact bytes transmitted, never a re-serialized structure.
func (h *Handler) HandleWebhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		badRequest(c, errors.New("unable to read request body"))
		return
	}

	status, err := h.webhooks.Process(
		c.Request.Context(),
		c.Param("provider"),
		rawBody,
		c.GetHeader(SignatureHeader),
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "mercatto-payments",
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   "Invalid request body: " + err.Error(),
		Kind:    string(domain.KindValidation),
		Code:    "VALIDATION_ERROR",
	})
}

// handleServiceError maps domain error kinds to HTTP responses. Callers
// branch on the kind and code; message text is diagnostic only.
func handleServiceError(c *gin.Context, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		statusCode := http.StatusInternalServerError

		switch domainErr.Kind {
		case domain.KindValidation:
			statusCode = http.StatusBadRequest
		case domain.KindAuth:
			switch {
			case errors.Is(err, domain.ErrSecretNotConfigured):
				statusCode = http.StatusInternalServerError
			case errors.Is(err, domain.ErrSignatureMissing):
				statusCode = http.StatusBadRequest
			default:
				statusCode = http.StatusUnauthorized
			}
		case domain.KindState:
			if errors.Is(err, domain.ErrTransferNotFound) {
				statusCode = http.StatusNotFound
			} else {
				statusCode = http.StatusConflict
			}
		case domain.KindUnsupported:
			statusCode = http.StatusNotImplemented
		case domain.KindProvider:
			if errors.Is(err, domain.ErrProviderTimeout) {
				statusCode = http.StatusGatewayTimeout
			} else {
				statusCode = http.StatusBadGateway
			}
		}

		c.JSON(statusCode, ErrorResponse{
			Success: false,
			Error:   domainErr.Message,
			Kind:    string(domainErr.Kind),
			Code:    domainErr.Code,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   "Internal server error",
		Code:    "INTERNAL_ERROR",
	})
}
