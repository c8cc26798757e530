package geocoding

import (
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of address autocomplete provider.
type ProviderType string

const (
	// ProviderTypeGeoapify represents Geoapify autocomplete provider.
	ProviderTypeGeoapify ProviderType = "geoapify"
	// ProviderTypeGoogle represents Google Places autocomplete provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim search provider.
	ProviderTypeNominatim ProviderType = "nominatim"
)

const defaultGeoapifyRate = 5

// ProviderConfig holds configuration for creating an autocomplete provider.
type ProviderConfig struct {
	Type      ProviderType // Type of provider to create
	APIKey    string       // API key (used by Geoapify and Google providers)
	Country   string       // ISO 3166-1 alpha-2 code suggestions are restricted to
	RateLimit int          // Rate limit for requests per second
	Logger    *slog.Logger // Logger for the provider
}

// NewProvider creates an autocomplete provider based on the provided configuration.
// It applies the Factory pattern to decouple provider instantiation from business logic.
//
// Supported provider types:
// - "geoapify": Geoapify Autocomplete API (requires API key)
// - "google": Google Places Autocomplete API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGeoapify:
		return newGeoapifyProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return newNominatimProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGeoapifyProvider creates a Geoapify autocomplete provider.
func newGeoapifyProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Geoapify provider")
	}

	if config.RateLimit == 0 {
		config.RateLimit = defaultGeoapifyRate
		config.Logger.Warn("Rate limit for Geoapify API not set, set a default value", "value", config.RateLimit)
	}

	return NewGeoapifyProvider(config.APIKey, config.Country, config.RateLimit, config.Logger), nil
}

// newGoogleProvider creates a Google Places autocomplete provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	// Create Google Maps client with API key and rate limiting
	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}

	// Apply rate limiting if specified
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Country, config.Logger), nil
}

// newNominatimProvider creates a Nominatim search provider.
func newNominatimProvider(config ProviderConfig) (Provider, error) {
	// Nominatim is free and doesn't require an API key
	return NewNominatimProvider(config.Country, config.Logger), nil
}
