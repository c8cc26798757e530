package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/hestia/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Places autocomplete service.
type GoogleProvider struct {
	client  GoogleAPIClient // client is the Google Maps API client
	country string          // country restricts predictions to one country
	log     *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	PlaceAutocomplete(ctx context.Context, r *maps.PlaceAutocompleteRequest) (maps.AutocompleteResponse, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given client, country and logger.
func NewGoogleProvider(client GoogleAPIClient, country string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, country: country, log: log}
}

// Suggest takes a context and the partial address, and returns the address predictions
// of the Google Places Autocomplete API restricted to the configured country.
func (gp *GoogleProvider) Suggest(ctx context.Context, text string) ([]models.Suggestion, error) {
	gp.log.DebugContext(ctx, "Autocomplete using Google Places", "text", text)

	req := &maps.PlaceAutocompleteRequest{
		Input: text,
		Types: maps.AutocompletePlaceTypeAddress,
	}
	if gp.country != "" {
		req.Components = map[maps.Component][]string{maps.ComponentCountry: {gp.country}}
	}

	resp, err := gp.client.PlaceAutocomplete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete address: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(resp.Predictions))
	for _, prediction := range resp.Predictions {
		suggestions = append(suggestions, models.Suggestion{
			ID:        prediction.PlaceID,
			Formatted: prediction.Description,
			Line1:     prediction.StructuredFormatting.MainText,
			Line2:     prediction.StructuredFormatting.SecondaryText,
		})
	}

	return suggestions, nil
}
