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
	"golang.org/x/time/rate"
)

const geoapifyBody = `{"type":"FeatureCollection","features":[
	{"properties":{"formatted":"12 Main Street, Brisbane City QLD 4000, Australia","address_line1":"12 Main Street",
	"address_line2":"Brisbane City QLD 4000, Australia","place_id":"51abc"}},
	{"properties":{"formatted":"","place_id":"51def"}}
]}`

func newGeoapify(client geocoding.HTTPClient) *geocoding.GeoapifyProvider {
	return geocoding.NewGeoapifyProviderWithClient(client, "secret", "au", rate.NewLimiter(rate.Inf, 1), slog.Default())
}

func TestGeoapifyProvider_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("successful autocomplete", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Equal(t, "api.geoapify.com", req.URL.Host)
				assert.Equal(t, "/v1/geocode/autocomplete", req.URL.Path)
				assert.Equal(t, "12 Main", req.URL.Query().Get("text"))
				assert.Equal(t, "secret", req.URL.Query().Get("apiKey"))
				assert.Equal(t, "countrycode:au", req.URL.Query().Get("filter"))

				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(geoapifyBody)),
				}, nil
			},
		}

		suggestions, err := newGeoapify(mockClient).Suggest(ctx, "12 Main")

		require.NoError(t, err)
		require.Equal(t, []models.Suggestion{{
			ID:        "51abc",
			Formatted: "12 Main Street, Brisbane City QLD 4000, Australia",
			Line1:     "12 Main Street",
			Line2:     "Brisbane City QLD 4000, Australia",
		}}, suggestions)
	})

	t.Run("unauthorized", func(t *testing.T) {
		suggestions, err := newGeoapify(respond(http.StatusUnauthorized, `{}`)).Suggest(ctx, "12 Main")

		require.ErrorIs(t, err, geocoding.ErrGeoapifyUnauthorized)
		require.Nil(t, suggestions)
	})

	t.Run("server error", func(t *testing.T) {
		suggestions, err := newGeoapify(respond(http.StatusInternalServerError, `boom`)).Suggest(ctx, "12 Main")

		require.ErrorContains(t, err, "geoapify API returned status 500")
		require.Nil(t, suggestions)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := newGeoapify(respond(http.StatusOK, `{`)).Suggest(ctx, "12 Main")

		require.ErrorContains(t, err, "failed to decode geoapify response")
	})

	t.Run("transport error", func(t *testing.T) {
		client := &mockHTTPClient{doFunc: func(_ *http.Request) (*http.Response, error) {
			return nil, errors.New("network error")
		}}

		_, err := newGeoapify(client).Suggest(ctx, "12 Main")

		require.ErrorContains(t, err, "failed to execute autocomplete request")
	})

	t.Run("rate limiter honours cancellation", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Limit(1), 1)
		require.True(t, limiter.Allow())
		provider := geocoding.NewGeoapifyProviderWithClient(respond(http.StatusOK, geoapifyBody), "k", "au", limiter, slog.Default())

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := provider.Suggest(cctx, "12 Main")

		require.ErrorContains(t, err, "rate limit exceeded")
	})
}
