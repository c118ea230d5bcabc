// Package domain contains the core business entities for the payment service.
// This is the innermost layer - no dependencies on frameworks or providers.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer identifies the paying customer.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"tax_id"` // CPF or CNPJ, digits only after normalization
	Phone string `json:"phone,omitempty"`
}

// Address is a billing or shipping address.
type Address struct {
	Street  string `json:"street"`
	Number  string `json:"number"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// LineItem is one itemized entry of a checkout.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitAmount  decimal.Decimal `json:"unit_amount"`
}

// PaymentRequest represents a validated checkout request.
// Specialized payment types embed it.
type PaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"` // ISO 4217
	Description     string          `json:"description"`
	Customer        Customer        `json:"customer"`
	BillingAddress  Address         `json:"billing_address"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	Items           []LineItem      `json:"items,omitempty"`
}

// NormalizedTaxID returns the customer tax id with punctuation stripped.
func (r PaymentRequest) NormalizedTaxID() string {
	replacer := strings.NewReplacer(".", "", "-", "", "/", "", " ", "")
	return replacer.Replace(r.Customer.TaxID)
}

// CreditCardPayment is a card checkout request.
type CreditCardPayment struct {
	PaymentRequest
	CardNumber   string `json:"card_number"`
	HolderName   string `json:"holder_name"`
	ExpiryMonth  int    `json:"expiry_month"`
	ExpiryYear   int    `json:"expiry_year"`
	CVV          string `json:"cvv"`
	Installments int    `json:"installments"` // >= 1
}

// PixPayment is an instant PIX checkout request.
type PixPayment struct {
	PaymentRequest
	ExpiresIn time.Duration `json:"expires_in,omitempty"` // QR code validity
}

// BoletoPayment is a boleto checkout request.
type BoletoPayment struct {
	PaymentRequest
	DueDate time.Time `json:"due_date,omitempty"`
}

// PaymentResponse is the normalized result every adapter produces.
// Invariant: Success == false implies Status is declined or cancelled.
type PaymentResponse struct {
	Success       bool          `json:"success"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Status        PaymentStatus `json:"status"`
	Message       string        `json:"message,omitempty"`

	// Provider-specific payloads.
	QRCode       string `json:"qr_code,omitempty"`
	QRCodeBase64 string `json:"qr_code_base64,omitempty"`
	BoletoURL    string `json:"boleto_url,omitempty"`
	BarCode      string `json:"bar_code,omitempty"`

	// Retryable marks failures where the caller may retry with a fresh
	// idempotency key (timeouts, provider 5xx). Declines are never retryable.
	Retryable bool `json:"retryable,omitempty"`
}

// Declined builds the failure response for a rejected payment.
func Declined(message string) *PaymentResponse {
	return &PaymentResponse{Success: false, Status: StatusDeclined, Message: message}
}
