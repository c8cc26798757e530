package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/hestia/internal/models"
	"golang.org/x/time/rate"
)

// GeoapifyBaseURL -- Geoapify autocomplete endpoint.
const GeoapifyBaseURL = "https://api.geoapify.com/v1/geocode/autocomplete"

// GeoapifyProvider implements address autocompletion using the Geoapify API.
type GeoapifyProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Geoapify API
	apiKey  string        // API key with autocomplete access
	country string        // ISO country code results are filtered to
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// Common errors for Geoapify provider.
var (
	ErrGeoapifyUnauthorized = errors.New("geoapify API unauthorized (invalid API key)")
)

// geoapifyResponse is the GeoJSON feature collection returned by the API.
type geoapifyResponse struct {
	Features []struct {
		Properties struct {
			Formatted    string `json:"formatted"`
			AddressLine1 string `json:"address_line1"`
			AddressLine2 string `json:"address_line2"`
			PlaceID      string `json:"place_id"`
		} `json:"properties"`
	} `json:"features"`
}

// NewGeoapifyProvider creates a new Geoapify provider.
func NewGeoapifyProvider(apiKey, country string, rateLimit int, log *slog.Logger) *GeoapifyProvider {
	const timeout = 10

	return NewGeoapifyProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		apiKey,
		country,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewGeoapifyProviderWithClient allows injecting custom HTTP client.
func NewGeoapifyProviderWithClient(
	client HTTPClient,
	apiKey string,
	country string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *GeoapifyProvider {
	return &GeoapifyProvider{
		client:  client,
		baseURL: GeoapifyBaseURL,
		apiKey:  apiKey,
		country: country,
		log:     log,
		limiter: limiter,
	}
}

// Suggest returns the addresses Geoapify proposes for the partial text.
func (gp *GeoapifyProvider) Suggest(ctx context.Context, text string) ([]models.Suggestion, error) {
	if err := gp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	gp.log.DebugContext(ctx, "Autocomplete using Geoapify", "text", text)

	reqURL, err := url.Parse(gp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("text", text)
	query.Set("apiKey", gp.apiKey)
	if gp.country != "" {
		query.Set("filter", "countrycode:"+gp.country)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := gp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute autocomplete request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrGeoapifyUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		gp.log.ErrorContext(ctx, "Geoapify API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("geoapify API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result geoapifyResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geoapify response: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(result.Features))
	for _, feature := range result.Features {
		props := feature.Properties
		if props.Formatted == "" {
			continue
		}
		suggestions = append(suggestions, models.Suggestion{
			ID:        props.PlaceID,
			Formatted: props.Formatted,
			Line1:     props.AddressLine1,
			Line2:     props.AddressLine2,
		})
	}

	gp.log.DebugContext(ctx, "Geoapify returned suggestions", "text", text, "count", len(suggestions))

	return suggestions, nil
}
