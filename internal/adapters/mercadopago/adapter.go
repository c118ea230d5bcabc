// Package mercadopago implements the direct-payment capabilities of the
// provider adapter using the official Mercado Pago SDK. Payout capabilities
// are not supported by this provider.
package mercadopago

import (
	"context"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/cardtoken"
	sdkconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	appconfig "github.com/mercatto/mercatto-payments/config"
	"github.com/mercatto/mercatto-payments/internal/adapters"
	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/signature"
	"github.com/mercatto/mercatto-payments/pkg/logger"
)

// ProviderName identifies this adapter in the registry.
const ProviderName = "mercadopago"

// Adapter implements ports.ProviderAdapter for Mercado Pago.
type Adapter struct {
	adapters.Unsupported

	payments payment.Client
	tokens   cardtoken.Client
	verifier *signature.Verifier
	log      *logger.Logger
}

// New creates a Mercado Pago adapter. Construction is eager-once: the SDK
// configuration is built here and reused for the process lifetime.
func New(cfg appconfig.MercadoPagoConfig, webhookSecret string, log *logger.Logger) (*Adapter, error) {
	sdkCfg, err := sdkconfig.New(cfg.AccessToken)
	if err != nil {
		return nil, domain.NewError(domain.KindProvider, domain.ErrProviderCall,
			"failed to configure Mercado Pago SDK", "MP_CONFIG_ERROR")
	}

	return &Adapter{
		Unsupported: adapters.Unsupported{Provider: ProviderName},
		payments:    payment.NewClient(sdkCfg),
		tokens:      cardtoken.NewClient(sdkCfg),
		verifier:    signature.NewVerifier(webhookSecret),
		log:         log,
	}, nil
}

// Name returns the provider identifier.
func (a *Adapter) Name() string { return ProviderName }

// CreateCardPayment tokenizes the card and submits a direct card payment.
// The card number reaches this method already Luhn-validated by the facade.
func (a *Adapter) CreateCardPayment(ctx context.Context, req domain.CreditCardPayment) (*domain.PaymentResponse, error) {
	token, err := a.tokens.Create(ctx, cardtoken.Request{
		CardNumber:      req.CardNumber,
		ExpirationMonth: strconv.Itoa(req.ExpiryMonth),
		ExpirationYear:  strconv.Itoa(req.ExpiryYear),
		SecurityCode:    req.CVV,
		Cardholder: &cardtoken.CardholderRequest{
			Name: req.HolderName,
			Identification: &cardtoken.IdentificationRequest{
				Type:   taxIDType(req.NormalizedTaxID()),
				Number: req.NormalizedTaxID(),
			},
		},
	})
	if err != nil {
		return nil, wrapCallError(ctx, err, "card tokenization failed", "MP_TOKEN_ERROR")
	}

	amount, _ := req.Amount.Float64()
	result, err := a.payments.Create(ctx, payment.Request{
		TransactionAmount: amount,
		Token:             token.ID,
		Description:       req.Description,
		Installments:      req.Installments,
		Payer: &payment.PayerRequest{
			Email: req.Customer.Email,
			Identification: &payment.IdentificationRequest{
				Type:   taxIDType(req.NormalizedTaxID()),
				Number: req.NormalizedTaxID(),
			},
		},
	})
	if err != nil {
		return nil, wrapCallError(ctx, err, "card payment failed", "MP_PAYMENT_ERROR")
	}

	return a.normalize(result), nil
}

// CreatePixPayment submits a PIX payment and returns the QR code payload.
func (a *Adapter) CreatePixPayment(ctx context.Context, req domain.PixPayment) (*domain.PaymentResponse, error) {
	amount, _ := req.Amount.Float64()
	result, err := a.payments.Create(ctx, payment.Request{
		TransactionAmount: amount,
		Description:       req.Description,
		PaymentMethodID:   "pix",
		Payer: &payment.PayerRequest{
			Email: req.Customer.Email,
			Identification: &payment.IdentificationRequest{
				Type:   taxIDType(req.NormalizedTaxID()),
				Number: req.NormalizedTaxID(),
			},
		},
	})
	if err != nil {
		return nil, wrapCallError(ctx, err, "pix payment failed", "MP_PAYMENT_ERROR")
	}

	resp := a.normalize(result)
	resp.QRCode = result.PointOfInteraction.TransactionData.QRCode
	resp.QRCodeBase64 = result.PointOfInteraction.TransactionData.QRCodeBase64
	return resp, nil
}

// CreateBoletoPayment submits a boleto payment and returns the ticket URL.
func (a *Adapter) CreateBoletoPayment(ctx context.Context, req domain.BoletoPayment) (*domain.PaymentResponse, error) {
	amount, _ := req.Amount.Float64()
	result, err := a.payments.Create(ctx, payment.Request{
		TransactionAmount: amount,
		Description:       req.Description,
		PaymentMethodID:   "bolbradesco",
		Payer: &payment.PayerRequest{
			Email:     req.Customer.Email,
			FirstName: req.Customer.Name,
			Identification: &payment.IdentificationRequest{
				Type:   taxIDType(req.NormalizedTaxID()),
				Number: req.NormalizedTaxID(),
			},
		},
	})
	if err != nil {
		return nil, wrapCallError(ctx, err, "boleto payment failed", "MP_PAYMENT_ERROR")
	}

	resp := a.normalize(result)
	resp.BoletoURL = result.TransactionDetails.ExternalResourceURL
	return resp, nil
}

// normalize maps an SDK payment response onto the internal contract.
func (a *Adapter) normalize(result *payment.Response) *domain.PaymentResponse {
	status := a.mapStatus(result.Status)
	return &domain.PaymentResponse{
		Success:       status != domain.StatusDeclined && status != domain.StatusCancelled,
		TransactionID: strconv.Itoa(result.ID),
		Status:        status,
		Message:       result.StatusDetail,
	}
}

// mapStatus translates Mercado Pago's status vocabulary onto the internal
// enumeration. Unknown statuses normalize to pending so a benign provider
// addition never aborts a payment flow; the raw value is logged.
func (a *Adapter) mapStatus(native string) domain.PaymentStatus {
	switch native {
	case "approved":
		return domain.StatusApproved
	case "pending", "in_mediation":
		return domain.StatusPending
	case "in_process", "authorized":
		return domain.StatusProcessing
	case "rejected":
		return domain.StatusDeclined
	case "cancelled", "refunded", "charged_back":
		return domain.StatusCancelled
	default:
		a.log.WithFields(logger.Fields{
			"provider": ProviderName,
			"status":   native,
		}).Warn("unmapped provider status, normalizing to pending")
		return domain.StatusPending
	}
}

// VerifyWebhook authenticates the raw notification bytes.
func (a *Adapter) VerifyWebhook(rawBody []byte, signatureHeader string) error {
	return a.verifier.Verify(rawBody, signatureHeader)
}

// taxIDType picks the identification type from the digit count.
func taxIDType(taxID string) string {
	if len(taxID) == 14 {
		return "CNPJ"
	}
	return "CPF"
}

// wrapCallError classifies an SDK error, distinguishing timeouts from other
// provider failures so callers know what is retryable.
func wrapCallError(ctx context.Context, err error, message, code string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return domain.NewError(domain.KindProvider, domain.ErrProviderTimeout,
			message, "PROVIDER_TIMEOUT")
	}
	return domain.NewError(domain.KindProvider, domain.ErrProviderCall,
		message+": "+err.Error(), code)
}
