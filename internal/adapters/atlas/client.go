// Package atlas implements the cross-border payout capabilities of the
// provider adapter against the Atlas remittance API.
package atlas

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	appconfig "github.com/mercatto/mercatto-payments/config"
	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

// restClient is the HTTP transport behind the ports.Rest abstraction.
// Retries and connection pooling are collaborator concerns; this client
// only shapes requests and enforces the call timeout.
type restClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// newRestClient creates the Atlas HTTP client.
func newRestClient(cfg appconfig.AtlasConfig, timeout time.Duration) *restClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &restClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do issues a JSON request and returns the status code and raw body.
func (c *restClient) Do(ctx context.Context, method, path string, headers http.Header, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, domain.NewError(domain.KindProvider, domain.ErrProviderCall,
				"failed to marshal request body", "MARSHAL_ERROR")
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, domain.NewError(domain.KindProvider, domain.ErrProviderCall,
			"failed to create request", "REQUEST_ERROR")
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, nil, domain.NewError(domain.KindProvider, domain.ErrProviderTimeout,
				"atlas call timed out", "PROVIDER_TIMEOUT")
		}
		return 0, nil, domain.NewError(domain.KindProvider, domain.ErrProviderCall,
			"request failed: "+err.Error(), "HTTP_ERROR")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, domain.NewError(domain.KindProvider, domain.ErrProviderCall,
			"failed to read response body", "READ_ERROR")
	}

	return resp.StatusCode, respBody, nil
}
