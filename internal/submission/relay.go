package submission

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/google/uuid"
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RelayTransport posts the quote as a urlencoded form to a mail relay.
type RelayTransport struct {
	client HTTPClient
	url    string
	log    *slog.Logger
}

// NewRelayTransport creates a relay transport with a default HTTP client.
func NewRelayTransport(relayURL string, log *slog.Logger) *RelayTransport {
	const timeout = 15
	return NewRelayTransportWithClient(&http.Client{Timeout: timeout * time.Second}, relayURL, log)
}

// NewRelayTransportWithClient creates a relay transport with a custom HTTP client.
func NewRelayTransportWithClient(client HTTPClient, relayURL string, log *slog.Logger) *RelayTransport {
	return &RelayTransport{client: client, url: relayURL, log: log}
}

// Send posts fields to the relay. Any 2xx answer is an accepted receipt.
func (rt *RelayTransport) Send(ctx context.Context, fields url.Values) (*models.Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rt.url, strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := rt.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		rt.log.ErrorContext(ctx, "Mail relay refused quote", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: relay returned status %d", ErrRejected, resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	receipt := &models.Receipt{ID: uuid.NewString(), Status: resp.StatusCode, Accepted: true}
	rt.log.InfoContext(ctx, "Quote delivered to mail relay", "receipt", receipt.ID, "status", resp.StatusCode)

	return receipt, nil
}
