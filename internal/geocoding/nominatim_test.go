package geocoding_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func respond(status int, body string) *mockHTTPClient {
	return &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
			}, nil
		},
	}
}

func TestNominatimProvider_Suggest(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful search", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "12 Main St", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "5", req.URL.Query().Get("limit"))
				assert.Equal(t, "au", req.URL.Query().Get("countrycodes"))
				assert.Equal(
					t,
					"Hestia-Quote-Form/1.0 (https://github.com/UnknownOlympus/hestia)",
					req.Header.Get("User-Agent"),
				)

				responseBody := `[{"place_id":3141,"display_name":"12, Main Street, Brisbane, Queensland, 4000, Australia",
					"address":{"house_number":"12","road":"Main Street","suburb":"Brisbane","state":"Queensland","postcode":"4000"}},
					{"place_id":2718,"display_name":""}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "au", logger)
		suggestions, err := provider.Suggest(ctx, "12 Main St")

		require.NoError(t, err)
		require.Equal(t, []models.Suggestion{{
			ID:        "3141",
			Formatted: "12, Main Street, Brisbane, Queensland, 4000, Australia",
			Line1:     "12 Main Street",
			Line2:     "Brisbane Queensland 4000",
		}}, suggestions)
	})

	t.Run("no country filter", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.False(t, req.URL.Query().Has("countrycodes"))
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(`[]`))}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		suggestions, err := provider.Suggest(ctx, "anything")

		require.NoError(t, err)
		assert.Empty(t, suggestions)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(
			respond(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), "au", logger)
		suggestions, err := provider.Suggest(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, suggestions)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(respond(http.StatusOK, `invalid json`), "au", logger)
		suggestions, err := provider.Suggest(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, suggestions)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("HTTP client error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, errors.New("network error")
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "au", logger)
		suggestions, err := provider.Suggest(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, suggestions)
		assert.Contains(t, err.Error(), "failed to execute search request")
	})
}
