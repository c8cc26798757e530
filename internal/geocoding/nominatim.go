package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/models"
)

const (
	nominatimBaseURL   = "https://nominatim.openstreetmap.org/search"
	nominatimUserAgent = "Hestia-Quote-Form/1.0 (https://github.com/UnknownOlympus/hestia)"
	nominatimLimit     = 5
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Nominatim API
	country string       // Country code passed as countrycodes
	log     *slog.Logger // Logger for logging operations
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// nominatimResponse represents one search hit of the Nominatim API.
type nominatimResponse struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		Suburb      string `json:"suburb"`
		State       string `json:"state"`
		Postcode    string `json:"postcode"`
	} `json:"address"`
}

// NewNominatimProvider creates a new Nominatim search provider.
// Uses the public Nominatim API endpoint by default.
func NewNominatimProvider(country string, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, country, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, country string, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:  client,
		baseURL: nominatimBaseURL,
		country: country,
		log:     log,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: nominatimUserAgent,
	}
}

// Suggest searches Nominatim for the partial address.
//
// Note: Nominatim has a rate limit of 1 request/second for fair use.
// For production use with high volume, prefer a commercial provider.
func (np *NominatimProvider) Suggest(ctx context.Context, text string) ([]models.Suggestion, error) {
	np.log.DebugContext(ctx, "Autocomplete using Nominatim", "text", text)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", text)
	query.Set("format", "json")
	query.Set("limit", strconv.Itoa(nominatimLimit))
	query.Set("addressdetails", "1")
	if np.country != "" {
		query.Set("countrycodes", np.country)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(results))
	for _, res := range results {
		if res.DisplayName == "" {
			continue
		}
		line1 := strings.TrimSpace(res.Address.HouseNumber + " " + res.Address.Road)
		line2 := strings.Join(nonEmpty(res.Address.Suburb, res.Address.State, res.Address.Postcode), " ")
		suggestions = append(suggestions, models.Suggestion{
			ID:        strconv.FormatInt(res.PlaceID, 10),
			Formatted: res.DisplayName,
			Line1:     line1,
			Line2:     line2,
		})
	}

	return suggestions, nil
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
