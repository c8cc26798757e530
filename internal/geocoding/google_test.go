package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleSuggest(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, "au", slog.Default())
	ctx := t.Context()

	newRequest := func(text string) *maps.PlaceAutocompleteRequest {
		return &maps.PlaceAutocompleteRequest{
			Input:      text,
			Types:      maps.AutocompletePlaceTypeAddress,
			Components: map[maps.Component][]string{maps.ComponentCountry: {"au"}},
		}
	}

	t.Run("api returns error", func(t *testing.T) {
		text := "12 Mai"

		mockClient.On("PlaceAutocomplete", ctx, newRequest(text)).
			Return(maps.AutocompleteResponse{}, assert.AnError).Once()

		suggestions, err := provider.Suggest(ctx, text)

		require.Nil(t, suggestions)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		text := "zzzz"

		mockClient.On("PlaceAutocomplete", ctx, newRequest(text)).
			Return(maps.AutocompleteResponse{}, nil).Once()

		suggestions, err := provider.Suggest(ctx, text)

		require.NoError(t, err)
		require.Empty(t, suggestions)
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull autocomplete", func(t *testing.T) {
		text := "12 Main"
		prediction := maps.AutocompletePrediction{
			Description: "12 Main Street, Brisbane QLD 4000, Australia",
			PlaceID:     "ChIJ123",
		}
		prediction.StructuredFormatting.MainText = "12 Main Street"
		prediction.StructuredFormatting.SecondaryText = "Brisbane QLD 4000, Australia"

		mockClient.On("PlaceAutocomplete", ctx, newRequest(text)).
			Return(maps.AutocompleteResponse{Predictions: []maps.AutocompletePrediction{prediction}}, nil).Once()

		suggestions, err := provider.Suggest(ctx, text)

		require.NoError(t, err)
		require.Equal(t, []models.Suggestion{{
			ID:        "ChIJ123",
			Formatted: "12 Main Street, Brisbane QLD 4000, Australia",
			Line1:     "12 Main Street",
			Line2:     "Brisbane QLD 4000, Australia",
		}}, suggestions)
		mockClient.AssertExpectations(t)
	})
}
