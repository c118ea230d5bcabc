// Package signature authenticates inbound webhooks with HMAC-SHA256 over
// the exact raw request body. Verification never operates on re-serialized
// payloads; key order or whitespace changes would alter the digest.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

// Verifier checks webhook signatures against a pre-shared secret.
type Verifier struct {
	secret string
}

// NewVerifier creates a verifier for the given shared secret. An empty
// secret is a server misconfiguration; Verify fails closed.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify authenticates rawBody against the signature header value.
// The header may carry an optional case-insensitive "sha256=" prefix.
// Error kinds distinguish misconfiguration (auth/SECRET_NOT_CONFIGURED),
// missing input (auth/SIGNATURE_MISSING) and mismatch (auth/SIGNATURE_MISMATCH)
// so the HTTP layer can answer 500, 400 and 401 respectively.
func (v *Verifier) Verify(rawBody []byte, signatureHeader string) error {
	if v.secret == "" {
		return domain.NewError(domain.KindAuth, domain.ErrSecretNotConfigured,
			"cannot authenticate webhook", "SECRET_NOT_CONFIGURED")
	}
	if len(rawBody) == 0 {
		return domain.NewError(domain.KindAuth, domain.ErrSignatureMissing,
			"empty request body", "SIGNATURE_MISSING")
	}

	received := stripPrefix(strings.TrimSpace(signatureHeader))
	if received == "" {
		return domain.NewError(domain.KindAuth, domain.ErrSignatureMissing,
			"missing signature header", "SIGNATURE_MISSING")
	}

	receivedMAC, err := hex.DecodeString(received)
	if err != nil {
		return domain.NewError(domain.KindAuth, domain.ErrSignatureMismatch,
			"signature is not valid hex", "SIGNATURE_MISMATCH")
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(rawBody)
	expectedMAC := mac.Sum(nil)

	// hmac.Equal is constant-time for equal-length inputs; the length check
	// happens first so comparison cost never depends on content.
	if len(receivedMAC) != len(expectedMAC) || !hmac.Equal(receivedMAC, expectedMAC) {
		return domain.NewError(domain.KindAuth, domain.ErrSignatureMismatch,
			"signature does not match payload", "SIGNATURE_MISMATCH")
	}

	return nil
}

// Sign computes the hex HMAC-SHA256 of body with secret. Used by tests and
// by outbound calls that must sign their own payloads.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// stripPrefix removes an optional "sha256=" prefix, case-insensitively.
func stripPrefix(header string) string {
	const prefix = "sha256="
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return header
}
